// ABOUTME: Tests for the image picker component
// ABOUTME: Validates navigation, selection, and state transitions

package filepicker

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
)

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01\x08\x06\x00\x00\x00")

func writePNG(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "photo.png")
	if err := os.WriteFile(path, pngHeader, 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func runCmd(t *testing.T, cmd tea.Cmd) tea.Msg {
	t.Helper()
	if cmd == nil {
		t.Fatal("expected command to be returned")
	}
	return cmd()
}

func TestNew(t *testing.T) {
	fp := New([]string{"/path/to/photo.png"}, "")

	if fp.state != stateList {
		t.Errorf("expected initial state stateList, got %d", fp.state)
	}
	if fp.listItemCount() != 3 {
		t.Errorf("expected 3 items, got %d", fp.listItemCount())
	}
}

func TestKeepOptionOnlyWithCurrentImage(t *testing.T) {
	if New(nil, "").hasKeep() {
		t.Error("expected no keep option without a current image")
	}
	fp := New(nil, "https://cdn.example.com/a.png")
	if !fp.hasKeep() {
		t.Fatal("expected keep option")
	}
	if !strings.Contains(fp.View(), "Keep current image") {
		t.Error("expected keep option in view")
	}
}

func TestNavigateDownAndUp(t *testing.T) {
	fp := New([]string{"/a.png", "/b.png"}, "")

	model, _ := fp.Update(tea.KeyMsg{Type: tea.KeyDown})
	fp = model.(*FilePicker)
	if fp.cursor != 1 {
		t.Errorf("expected cursor 1, got %d", fp.cursor)
	}

	model, _ = fp.Update(tea.KeyMsg{Type: tea.KeyUp})
	fp = model.(*FilePicker)
	if fp.cursor != 0 {
		t.Errorf("expected cursor 0, got %d", fp.cursor)
	}

	model, _ = fp.Update(tea.KeyMsg{Type: tea.KeyUp})
	if model.(*FilePicker).cursor != 0 {
		t.Error("cursor should not go above the first item")
	}
}

func TestSelectRecentImage(t *testing.T) {
	path := writePNG(t)
	fp := New([]string{path}, "")

	_, cmd := fp.Update(tea.KeyMsg{Type: tea.KeyEnter})
	msg, ok := runCmd(t, cmd).(ImageSelectedMsg)
	if !ok {
		t.Fatalf("expected ImageSelectedMsg")
	}
	if msg.Source != SourceFile || msg.Path != path {
		t.Errorf("unexpected selection: %+v", msg)
	}
}

func TestSelectRecentNonImage(t *testing.T) {
	path := filepath.Join(t.TempDir(), "notes.txt")
	os.WriteFile(path, []byte("not an image at all"), 0o644)
	fp := New([]string{path}, "")

	_, cmd := fp.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("expected no command for a non-image")
	}
	if !strings.Contains(fp.err, "Not an image") {
		t.Errorf("expected not-an-image error, got %q", fp.err)
	}
}

func TestSelectKeepCurrent(t *testing.T) {
	fp := New(nil, "https://cdn.example.com/a.png")

	_, cmd := fp.Update(tea.KeyMsg{Type: tea.KeyEnter})
	msg := runCmd(t, cmd).(ImageSelectedMsg)
	if msg.Source != SourceKeep || msg.URL != "https://cdn.example.com/a.png" {
		t.Errorf("unexpected selection: %+v", msg)
	}
}

func TestSelectNoImage(t *testing.T) {
	fp := New([]string{"/a.png"}, "")
	fp.cursor = 2

	_, cmd := fp.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if msg := runCmd(t, cmd).(ImageSelectedMsg); msg.Source != SourceNone {
		t.Errorf("expected SourceNone, got %v", msg.Source)
	}
}

func TestEnterURL(t *testing.T) {
	fp := New(nil, "")

	model, _ := fp.Update(tea.KeyMsg{Type: tea.KeyEnter})
	fp = model.(*FilePicker)
	if !fp.InputActive() {
		t.Fatal("expected input state")
	}

	fp.textInput.SetValue("https://cdn.example.com/b.jpg")
	_, cmd := fp.Update(tea.KeyMsg{Type: tea.KeyEnter})
	msg := runCmd(t, cmd).(ImageSelectedMsg)
	if msg.Source != SourceURL || msg.URL != "https://cdn.example.com/b.jpg" {
		t.Errorf("unexpected selection: %+v", msg)
	}
}

func TestEnterEmptyInput(t *testing.T) {
	fp := New(nil, "")
	fp.state = stateInput

	_, cmd := fp.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if cmd != nil {
		t.Error("expected no command for empty input")
	}
	if fp.err == "" {
		t.Error("expected an error message")
	}
}

func TestEnterMissingFile(t *testing.T) {
	fp := New(nil, "")
	fp.state = stateInput
	fp.textInput.SetValue("/nonexistent/photo.png")

	fp.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !strings.Contains(fp.err, "File not found") {
		t.Errorf("expected file not found, got %q", fp.err)
	}
	if !strings.Contains(fp.View(), "File not found") {
		t.Error("expected error in view")
	}
}

func TestBackFromInputReturnsToList(t *testing.T) {
	fp := New(nil, "")
	fp.state = stateInput

	model, _ := fp.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if model.(*FilePicker).state != stateList {
		t.Error("expected state stateList after Esc")
	}
}

func TestBackFromListReturnsCancelMsg(t *testing.T) {
	fp := New(nil, "")

	_, cmd := fp.Update(tea.KeyMsg{Type: tea.KeyEsc})
	if _, ok := runCmd(t, cmd).(CancelledMsg); !ok {
		t.Error("expected CancelledMsg")
	}
}

func TestViewWithZeroWidth(t *testing.T) {
	// View() must not panic before a WindowSizeMsg arrives
	fp := New([]string{"/path/to/a/very/long/directory/name/photo.png"}, "")
	if fp.View() == "" {
		t.Error("View() returned empty string")
	}
}

func TestSourceString(t *testing.T) {
	tests := []struct {
		source   Source
		expected string
	}{
		{SourceNone, "none"},
		{SourceFile, "file"},
		{SourceURL, "url"},
		{SourceKeep, "keep"},
		{Source(99), "unknown"},
	}

	for _, tc := range tests {
		t.Run(tc.expected, func(t *testing.T) {
			if got := tc.source.String(); got != tc.expected {
				t.Errorf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, _ := os.UserHomeDir()

	tests := []struct {
		input    string
		expected string
	}{
		{"~/Pictures/a.png", home + "/Pictures/a.png"},
		{"~", home},
		{"/absolute/a.png", "/absolute/a.png"},
		{"relative/a.png", "relative/a.png"},
	}

	for _, tc := range tests {
		t.Run(tc.input, func(t *testing.T) {
			if got := expandPath(tc.input); got != tc.expected {
				t.Errorf("expandPath(%q) = %q, want %q", tc.input, got, tc.expected)
			}
		})
	}
}
