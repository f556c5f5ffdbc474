// ABOUTME: Yes/no confirmation dialog used before deletes and logout
// ABOUTME: Wraps a huh confirm field so y/n and arrow keys both work

package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/kabar-app/kabar/internal/client"
	"github.com/kabar-app/kabar/internal/tui/styles"
)

type confirmDialog struct {
	form  *huh.Form
	value bool
	onYes tea.Cmd
}

func newConfirm(title, affirmative string, onYes tea.Cmd) *confirmDialog {
	d := &confirmDialog{onYes: onYes}
	d.form = huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title(title).
				Affirmative(affirmative).
				Negative("Cancel").
				Value(&d.value),
		),
	).WithTheme(styles.FormTheme()).WithShowHelp(false)
	return d
}

func (d *confirmDialog) Init() tea.Cmd {
	return d.form.Init()
}

// Update returns done once the dialog is answered or dismissed; cmd then
// carries the confirmed action, if any.
func (d *confirmDialog) Update(msg tea.Msg) (bool, tea.Cmd) {
	if key, ok := msg.(tea.KeyMsg); ok && key.String() == "esc" {
		return true, nil
	}

	form, cmd := d.form.Update(msg)
	if f, ok := form.(*huh.Form); ok {
		d.form = f
	}

	switch d.form.State {
	case huh.StateCompleted:
		if d.value {
			return true, d.onYes
		}
		return true, nil
	case huh.StateAborted:
		return true, nil
	}
	return false, cmd
}

func (d *confirmDialog) View() string {
	return styles.ActivePanel.Render(d.form.View())
}

// isDataMsg reports whether msg carries a query or mutation result, which
// pages handle even while a dialog has focus.
func isDataMsg(msg tea.Msg) bool {
	switch msg.(type) {
	case mutatedMsg, toastMsg, navigateMsg:
		return true
	case loadedMsg[[]client.NewsItem], loadedMsg[[]client.Category], loadedMsg[[]client.Motivation],
		loadedMsg[*client.NewsItem], loadedMsg[*client.CategoryWithNews]:
		return true
	}
	return false
}
