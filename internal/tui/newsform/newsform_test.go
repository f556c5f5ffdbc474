// ABOUTME: Tests for the multi-step news editor
// ABOUTME: Validates step flow, prefill for edits, and whole-form validation

package newsform

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kabar-app/kabar/internal/client"
	"github.com/kabar-app/kabar/internal/tui/filepicker"
)

var testCategories = []client.Category{
	{ID: 3, Name: "Teknologi"},
	{ID: 5, Name: "Olahraga"},
}

func validForm() *Form {
	f := New(testCategories, nil)
	f.title = "Tim nasional lolos ke final"
	f.body = "Pertandingan berlangsung ketat hingga menit terakhir."
	f.categoryID = 5
	return f
}

func TestNewDefaultsToFirstCategory(t *testing.T) {
	f := New(testCategories, nil)

	if f.Step() != 1 {
		t.Errorf("expected step 1, got %d", f.Step())
	}
	if f.categoryID != 3 {
		t.Errorf("expected first category, got %d", f.categoryID)
	}
	if f.Editing() {
		t.Error("new form should not be editing")
	}
}

func TestEditPrefills(t *testing.T) {
	item := client.NewsItem{
		ID:         9,
		Title:      "Harga cabai naik tajam",
		Body:       "Pedagang mengeluhkan pasokan yang berkurang.",
		CategoryID: 5,
		Image:      "https://cdn.example.com/cabai.jpg",
	}
	f := Edit(item, testCategories, nil)

	if !f.Editing() {
		t.Fatal("expected editing")
	}
	if f.title != item.Title || f.body != item.Body || f.categoryID != 5 {
		t.Error("expected fields to be prefilled")
	}
	if !strings.Contains(f.View(), "Edit news") {
		t.Error("expected edit label in progress panel")
	}
}

func TestAdvanceThroughSteps(t *testing.T) {
	f := validForm()

	f.advanceStep()
	if f.Step() != stepContent {
		t.Fatalf("expected content step, got %d", f.Step())
	}
	f.advanceStep()
	if f.Step() != stepImage {
		t.Fatalf("expected image step, got %d", f.Step())
	}
	if f.picker == nil {
		t.Fatal("expected image picker")
	}
	if f.CapturesInput() {
		t.Error("picker list should not capture input")
	}
}

func TestAdvanceWithoutCategories(t *testing.T) {
	f := New(nil, nil)
	f.advanceStep()

	if f.Step() != stepHeadline {
		t.Errorf("expected to stay on headline, got %d", f.Step())
	}
	if !strings.Contains(f.err, "No categories") {
		t.Errorf("expected category error, got %q", f.err)
	}
}

func TestCompleteWithLocalFile(t *testing.T) {
	f := validForm()
	f.step = stepImage

	_, cmd := f.Update(filepicker.ImageSelectedMsg{Source: filepicker.SourceFile, Path: "/tmp/photo.png"})
	if cmd == nil {
		t.Fatal("expected command")
	}
	msg, ok := cmd().(CompleteMsg)
	if !ok {
		t.Fatalf("expected CompleteMsg, err %q", f.err)
	}
	if msg.ImagePath != "/tmp/photo.png" || msg.Form.Image != "" {
		t.Errorf("unexpected image fields: %+v", msg)
	}
	if msg.Form.CategoryID != 5 {
		t.Errorf("expected category 5, got %d", msg.Form.CategoryID)
	}
	if !f.Submitting() {
		t.Error("expected submitting state")
	}

	if _, cmd := f.Update(tea.KeyMsg{Type: tea.KeyEsc}); cmd != nil {
		t.Error("keys should be ignored while submitting")
	}
}

func TestCompleteKeepsCurrentImage(t *testing.T) {
	f := validForm()
	f.newsID = 2
	f.step = stepImage

	cmd := f.complete(filepicker.ImageSelectedMsg{Source: filepicker.SourceKeep, URL: "https://cdn.example.com/a.png"})
	msg := cmd().(CompleteMsg)
	if msg.Form.Image != "https://cdn.example.com/a.png" || msg.NewsID != 2 {
		t.Errorf("unexpected result: %+v", msg)
	}
}

func TestCompleteTrimsAndRejectsShortTitle(t *testing.T) {
	f := validForm()
	f.title = "  Pendek  "
	f.step = stepImage

	f.complete(filepicker.ImageSelectedMsg{Source: filepicker.SourceNone})

	if f.Step() != stepHeadline {
		t.Errorf("expected to return to headline step, got %d", f.Step())
	}
	if !strings.Contains(f.err, "title") {
		t.Errorf("expected title message, got %q", f.err)
	}
	if f.Submitting() {
		t.Error("should not be submitting")
	}
}

func TestCompleteRejectsShortContent(t *testing.T) {
	f := validForm()
	f.body = "pendek"
	f.step = stepImage

	f.complete(filepicker.ImageSelectedMsg{Source: filepicker.SourceNone})

	if f.Step() != stepContent {
		t.Errorf("expected to return to content step, got %d", f.Step())
	}
}

func TestPickerCancelReturnsToContent(t *testing.T) {
	f := validForm()
	f.advanceStep()
	f.advanceStep()

	f.Update(filepicker.CancelledMsg{})
	if f.Step() != stepContent {
		t.Errorf("expected content step, got %d", f.Step())
	}
}

func TestEscCancelsOnFirstStep(t *testing.T) {
	f := validForm()
	_, cmd := f.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if cmd == nil {
		t.Fatal("expected command")
	}
	if _, ok := cmd().(CancelledMsg); !ok {
		t.Error("expected CancelledMsg")
	}
}

func TestSetErrorReturnsToImageStep(t *testing.T) {
	f := validForm()
	f.submitting = true

	f.SetError("image upload failed")
	if f.Submitting() || f.Step() != stepImage {
		t.Error("expected editable image step")
	}
	if !strings.Contains(f.View(), "image upload failed") {
		t.Error("expected error in view")
	}
}

func TestProgressRendersSteps(t *testing.T) {
	f := validForm()
	view := f.View()
	for _, name := range stepNames {
		if !strings.Contains(view, name) {
			t.Errorf("expected step %q in view", name)
		}
	}
	if !strings.Contains(view, "Publish news") {
		t.Error("expected add label")
	}
}
