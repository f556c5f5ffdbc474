// ABOUTME: Tests for the welcome menu
// ABOUTME: Validates options, selection messages, and choice names

package welcome

import (
	"strings"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
)

func TestMenuOptions(t *testing.T) {
	m := New()

	if len(m.options) != 3 {
		t.Fatalf("expected 3 options, got %d", len(m.options))
	}
	if m.options[0].value != ChoiceSignIn {
		t.Errorf("expected sign in first, got %v", m.options[0].value)
	}
	if m.selected != ChoiceSignIn {
		t.Errorf("expected sign in preselected, got %v", m.selected)
	}
}

func TestViewShowsBrandAndOptions(t *testing.T) {
	m := New()
	m.Init()

	view := m.View()
	for _, want := range []string{"Kabar", "Sign in", "Create an account", "Quit"} {
		if !strings.Contains(view, want) {
			t.Errorf("expected view to contain %q", want)
		}
	}
}

func TestCompletedFormEmitsChoice(t *testing.T) {
	m := New()
	m.Init()

	m.selected = ChoiceSignUp
	m.form.State = huh.StateCompleted
	_, cmd := m.Update(tea.KeyMsg{Type: tea.KeyEnter})

	choice, ok := findChoice(cmd)
	if !ok {
		t.Fatal("expected a ChoiceMsg")
	}
	if choice.Choice != ChoiceSignUp {
		t.Errorf("expected sign up, got %v", choice.Choice)
	}
	if m.form.State != huh.StateNormal {
		t.Error("expected the menu to be rebuilt for reuse")
	}
}

// findChoice runs cmd, unpacking batches, until a ChoiceMsg appears
func findChoice(cmd tea.Cmd) (ChoiceMsg, bool) {
	if cmd == nil {
		return ChoiceMsg{}, false
	}
	switch msg := cmd().(type) {
	case ChoiceMsg:
		return msg, true
	case tea.BatchMsg:
		for _, c := range msg {
			if found, ok := findChoice(c); ok {
				return found, true
			}
		}
	}
	return ChoiceMsg{}, false
}

func TestChoiceString(t *testing.T) {
	tests := []struct {
		choice   Choice
		expected string
	}{
		{ChoiceSignIn, "sign-in"},
		{ChoiceSignUp, "sign-up"},
		{ChoiceQuit, "quit"},
		{Choice(99), "unknown"},
	}

	for _, tc := range tests {
		t.Run(tc.expected, func(t *testing.T) {
			if got := tc.choice.String(); got != tc.expected {
				t.Errorf("expected %q, got %q", tc.expected, got)
			}
		})
	}
}
