// ABOUTME: Motivation feed with add, edit, and delete actions
// ABOUTME: Edit and delete are offered only on posts the user owns, or to admins

package tui

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kabar-app/kabar/internal/client"
	"github.com/kabar-app/kabar/internal/navguard"
	"github.com/kabar-app/kabar/internal/query"
	"github.com/kabar-app/kabar/internal/tui/feed"
	"github.com/kabar-app/kabar/internal/tui/icons"
	"github.com/kabar-app/kabar/internal/tui/styles"
)

type motivationsPage struct {
	env     *env
	state   query.State[[]client.Motivation]
	cursor  int
	confirm *confirmDialog
	width   int
	height  int
}

func newMotivationsPage(e *env) *motivationsPage {
	return &motivationsPage{env: e}
}

func motivationListKey() query.Key { return query.NewKey(resMotivations) }

func motivationRoute(id int) string {
	return routeMotivations + "/" + strconv.Itoa(id)
}

func (p *motivationsPage) Init() tea.Cmd {
	p.state = initial[[]client.Motivation](p.env, motivationListKey())
	return p.load(false)
}

func (p *motivationsPage) load(force bool) tea.Cmd {
	return fetch(p.env, motivationListKey(), p.env.client.ListMotivations, force)
}

func (p *motivationsPage) selected() (client.Motivation, bool) {
	if p.cursor < 0 || p.cursor >= len(p.state.Data) {
		return client.Motivation{}, false
	}
	return p.state.Data[p.cursor], true
}

func (p *motivationsPage) canModify(m client.Motivation) bool {
	return p.env.user().CanModify(m.UserID)
}

func (p *motivationsPage) Update(msg tea.Msg) (page, tea.Cmd) {
	if p.confirm != nil && !isDataMsg(msg) {
		done, cmd := p.confirm.Update(msg)
		if done {
			p.confirm = nil
		}
		return p, cmd
	}

	switch msg := msg.(type) {
	case loadedMsg[[]client.Motivation]:
		if msg.key == motivationListKey() {
			p.state = msg.state
			if p.cursor >= len(p.state.Data) {
				p.cursor = max(0, len(p.state.Data)-1)
			}
		}
		return p, nil

	case mutatedMsg:
		if msg.action != "delete-motivation" {
			return p, nil
		}
		if msg.err != nil {
			return p, toastError(msg.err)
		}
		return p, tea.Batch(toast("Motivation deleted"), p.load(false))

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			p.state.Status = query.StatusLoading
			return p, p.load(true)
		case "a":
			return p, navigate(routeAddMotivation, navguard.Push)
		case "e":
			if m, ok := p.selected(); ok && p.canModify(m) {
				return p, navigate(motivationRoute(m.ID)+"/edit", navguard.Push)
			}
		case "d":
			if m, ok := p.selected(); ok && p.canModify(m) {
				p.confirm = newConfirm("Delete this motivation?", "Delete", p.delete(m.ID))
				return p, p.confirm.Init()
			}
		default:
			p.cursor = listCursor(msg.String(), p.cursor, len(p.state.Data))
		}
	}
	return p, nil
}

func (p *motivationsPage) delete(id int) tea.Cmd {
	c := p.env.client
	return mutate(p.env, "delete-motivation", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.DeleteMotivation(ctx, id)
	}, resMotivations)
}

func (p *motivationsPage) View() string {
	var b strings.Builder
	b.WriteString(styles.Section.Render(icons.Motivation.String() + " Daily motivation"))
	b.WriteString("\n\n")

	body := p.height - 3
	if p.confirm != nil {
		body -= 6
	}
	switch {
	case p.state.IsLoading() && len(p.state.Data) == 0:
		b.WriteString(feed.Skeleton(3, p.width))
	case p.state.IsError() && len(p.state.Data) == 0:
		b.WriteString(feed.ErrorPanel(describe(p.state.Err), p.width))
	case len(p.state.Data) == 0:
		b.WriteString(feed.EmptyPanel("No motivations yet. Press a to share one", p.width))
	default:
		b.WriteString(styles.Meta.Render(fmt.Sprintf("%d posts", len(p.state.Data))))
		b.WriteString("\n")
		b.WriteString(feed.MotivationList(p.state.Data, p.cursor, p.width, body, p.env.now(), p.canModify))
	}

	if p.confirm != nil {
		b.WriteString("\n")
		b.WriteString(p.confirm.View())
	}
	return b.String()
}

func (p *motivationsPage) SetSize(w, h int)   { p.width, p.height = w, h }
func (p *motivationsPage) CapturesInput() bool { return p.confirm != nil }
func (p *motivationsPage) Title() string       { return "Motivation" }

func (p *motivationsPage) Shortcuts() []string {
	if p.confirm != nil {
		return []string{"y Confirm", "n Cancel"}
	}
	s := []string{"↑↓ Move", "a Add", "r Refresh"}
	if m, ok := p.selected(); ok && p.canModify(m) {
		s = append(s, "e Edit", "d Delete")
	}
	return s
}
