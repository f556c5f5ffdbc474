// ABOUTME: Profile screen with account details, contribution counts, and logout
// ABOUTME: Renaming updates the stored session only; the server profile is untouched

package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kabar-app/kabar/internal/client"
	"github.com/kabar-app/kabar/internal/query"
	"github.com/kabar-app/kabar/internal/session"
	"github.com/kabar-app/kabar/internal/tui/icons"
	"github.com/kabar-app/kabar/internal/tui/styles"
	"github.com/kabar-app/kabar/internal/tui/widgets"
	"github.com/kabar-app/kabar/internal/validation"
)

type profilePage struct {
	env *env

	news        query.State[[]client.NewsItem]
	motivations query.State[[]client.Motivation]

	rename  textinput.Model
	editing bool
	err     string
	confirm *confirmDialog

	width  int
	height int
}

func newProfilePage(e *env) *profilePage {
	ti := textinput.New()
	ti.Prompt = "Name: "
	ti.CharLimit = 20
	return &profilePage{env: e, rename: ti}
}

func (p *profilePage) Init() tea.Cmd {
	p.news = initial[[]client.NewsItem](p.env, newsListKey())
	p.motivations = initial[[]client.Motivation](p.env, motivationListKey())
	return p.load(false)
}

func (p *profilePage) load(force bool) tea.Cmd {
	return tea.Batch(
		fetch(p.env, newsListKey(), p.env.client.ListNews, force),
		fetch(p.env, motivationListKey(), p.env.client.ListMotivations, force),
	)
}

func (p *profilePage) Update(msg tea.Msg) (page, tea.Cmd) {
	if p.confirm != nil && !isDataMsg(msg) {
		done, cmd := p.confirm.Update(msg)
		if done {
			p.confirm = nil
		}
		return p, cmd
	}

	switch msg := msg.(type) {
	case loadedMsg[[]client.NewsItem]:
		if msg.key == newsListKey() {
			p.news = msg.state
		}
		return p, nil
	case loadedMsg[[]client.Motivation]:
		if msg.key == motivationListKey() {
			p.motivations = msg.state
		}
		return p, nil
	case mutatedMsg:
		if msg.action == "logout" && msg.err != nil {
			return p, toastError(msg.err)
		}
		return p, nil
	case tea.KeyMsg:
		if p.editing {
			return p, p.handleRename(msg)
		}
		switch msg.String() {
		case "n":
			p.startRename()
			return p, textinput.Blink
		case "r":
			return p, p.load(true)
		case "l":
			p.confirm = newConfirm("Sign out of kabar?", "Sign out", p.logout())
			return p, p.confirm.Init()
		}
	}

	if p.editing {
		var cmd tea.Cmd
		p.rename, cmd = p.rename.Update(msg)
		return p, cmd
	}
	return p, nil
}

func (p *profilePage) startRename() {
	p.editing = true
	p.err = ""
	if u := p.env.user(); u != nil {
		p.rename.SetValue(u.Name)
	}
	p.rename.CursorEnd()
	p.rename.Focus()
}

func (p *profilePage) handleRename(msg tea.KeyMsg) tea.Cmd {
	switch msg.String() {
	case "esc":
		p.editing = false
		p.err = ""
		p.rename.Blur()
		return nil
	case "enter":
		name := strings.TrimSpace(p.rename.Value())
		if err := validation.Var("name", name, validation.Rule(validation.SignUp{}, "name")); err != nil {
			p.err = err.Error()
			return nil
		}
		if err := p.env.session.SetUserData(session.UserPatch{Name: &name}); err != nil {
			p.env.logger.Warn("Failed to update profile", "error", err)
			p.err = err.Error()
			return nil
		}
		p.editing = false
		p.err = ""
		p.rename.Blur()
		return toast("Name updated")
	}

	var cmd tea.Cmd
	p.rename, cmd = p.rename.Update(msg)
	return cmd
}

func (p *profilePage) logout() tea.Cmd {
	s := p.env.session
	return func() tea.Msg {
		return mutatedMsg{action: "logout", err: s.Logout()}
	}
}

// owned counts items whose owner is the signed-in user
func owned[T any](items []T, owner func(T) int, userID int) int {
	n := 0
	for _, it := range items {
		if owner(it) == userID {
			n++
		}
	}
	return n
}

func (p *profilePage) View() string {
	u := p.env.user()
	if u == nil {
		return styles.Meta.Render("Not signed in")
	}

	var b strings.Builder
	b.WriteString(styles.Title.Render(icons.Profile.String() + " " + u.Name))
	b.WriteString("  ")
	b.WriteString(widgets.RoleBadge(u.Role))
	b.WriteString("\n")
	b.WriteString(styles.KeyStyle.Render("Email: "))
	b.WriteString(styles.ValueStyle.Render(u.Email))
	b.WriteString("\n\n")

	cfg := widgets.DefaultMetricBlockConfig()
	newsBlock := p.countBlock(icons.Category, "News", p.news.Status, func() int {
		return owned(p.news.Data, func(n client.NewsItem) int { return n.UserID }, u.ID)
	}, "articles published", cfg)
	motBlock := p.countBlock(icons.Motivation, "Motivation", p.motivations.Status, func() int {
		return owned(p.motivations.Data, func(m client.Motivation) int { return m.UserID }, u.ID)
	}, "posts shared", cfg)
	b.WriteString(lipgloss.JoinHorizontal(lipgloss.Top, newsBlock, "  ", motBlock))
	b.WriteString("\n\n")

	if p.editing {
		b.WriteString(styles.ActivePanel.Render(p.rename.View()))
		b.WriteString("\n")
		if p.err != "" {
			b.WriteString(styles.StatusCritical.Render(icons.Critical.String() + " " + p.err))
			b.WriteString("\n")
		}
	}
	if p.confirm != nil {
		b.WriteString(p.confirm.View())
	}
	return b.String()
}

func (p *profilePage) countBlock(icon icons.Icon, title string, status query.Status, count func() int, label string, cfg widgets.MetricBlockConfig) string {
	switch status {
	case query.StatusSuccess:
		return widgets.CountBlock(icon, title, count(), label, cfg)
	case query.StatusError:
		return widgets.MetricBlock(icon, title, "-", "could not load", cfg)
	default:
		return widgets.MetricBlock(icon, title, "...", label, cfg)
	}
}

func (p *profilePage) SetSize(w, h int)   { p.width, p.height = w, h }
func (p *profilePage) CapturesInput() bool { return p.editing || p.confirm != nil }
func (p *profilePage) Title() string       { return "Profile" }

func (p *profilePage) Shortcuts() []string {
	switch {
	case p.confirm != nil:
		return []string{"y Confirm", "n Cancel"}
	case p.editing:
		return []string{"enter Save", "esc Cancel"}
	}
	return []string{"n Rename", "r Refresh", "l Sign out"}
}

