// ABOUTME: News detail screen with a scrollable article body
// ABOUTME: Authors and admins can edit or delete the article from here

package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kabar-app/kabar/internal/client"
	"github.com/kabar-app/kabar/internal/navguard"
	"github.com/kabar-app/kabar/internal/query"
	"github.com/kabar-app/kabar/internal/tui/feed"
	"github.com/kabar-app/kabar/internal/tui/icons"
	"github.com/kabar-app/kabar/internal/tui/styles"
	"github.com/kabar-app/kabar/internal/tui/widgets"
)

// headerLines is the space taken around the article body
const headerLines = 7

type detailPage struct {
	env     *env
	id      int
	state   query.State[*client.NewsItem]
	body    viewport.Model
	confirm *confirmDialog
	width   int
	height  int
}

func newDetailPage(e *env, id int) *detailPage {
	return &detailPage{env: e, id: id, body: viewport.New(0, 0)}
}

func (p *detailPage) key() query.Key {
	return query.NewKey(resNewsDetail, p.id)
}

func (p *detailPage) Init() tea.Cmd {
	p.state = initial[*client.NewsItem](p.env, p.key())
	p.refreshBody()
	return p.load(false)
}

func (p *detailPage) load(force bool) tea.Cmd {
	id := p.id
	c := p.env.client
	return fetch(p.env, p.key(), func(ctx context.Context) (*client.NewsItem, error) {
		return c.GetNews(ctx, id)
	}, force)
}

// errorText describes the last failed load
func (p *detailPage) errorText() string {
	if !p.state.IsError() {
		return ""
	}
	if client.IsNotFound(p.state.Err) {
		return "This article no longer exists"
	}
	return describe(p.state.Err)
}

func (p *detailPage) canModify() bool {
	item := p.state.Data
	return item != nil && p.env.user().CanModify(item.UserID)
}

func (p *detailPage) Update(msg tea.Msg) (page, tea.Cmd) {
	if p.confirm != nil && !isDataMsg(msg) {
		done, cmd := p.confirm.Update(msg)
		if done {
			p.confirm = nil
		}
		return p, cmd
	}

	switch msg := msg.(type) {
	case loadedMsg[*client.NewsItem]:
		if msg.key == p.key() {
			p.state = msg.state
			p.refreshBody()
		}
		return p, nil

	case mutatedMsg:
		if msg.action != "delete-news" {
			return p, nil
		}
		if msg.err != nil {
			return p, toastError(msg.err)
		}
		return p, tea.Batch(toast("News deleted"), goBack())

	case tea.KeyMsg:
		switch msg.String() {
		case "r":
			p.state.Status = query.StatusLoading
			p.refreshBody()
			return p, p.load(true)
		case "e":
			if p.canModify() {
				return p, navigate(newsRoute(p.id)+"/edit", navguard.Push)
			}
		case "d":
			if p.canModify() {
				p.confirm = newConfirm("Delete this article?", "Delete", p.delete())
				return p, p.confirm.Init()
			}
		case "esc", "b":
			return p, goBack()
		}
	}

	var cmd tea.Cmd
	p.body, cmd = p.body.Update(msg)
	return p, cmd
}

func (p *detailPage) delete() tea.Cmd {
	id := p.id
	c := p.env.client
	return mutate(p.env, "delete-news", func(ctx context.Context) (struct{}, error) {
		return struct{}{}, c.DeleteNews(ctx, id)
	}, newsResources...)
}

func (p *detailPage) refreshBody() {
	p.body.Width = max(20, p.width-4)
	p.body.Height = max(3, p.height-headerLines)
	if p.state.Data != nil && p.state.IsError() {
		p.body.Height = max(3, p.body.Height-1)
	}
	if p.state.Data == nil {
		p.body.SetContent("")
		return
	}
	wrapped := lipgloss.NewStyle().Width(p.body.Width).Render(p.state.Data.Body)
	p.body.SetContent(wrapped)
}

func (p *detailPage) View() string {
	item := p.state.Data
	switch {
	case item == nil && p.state.IsError():
		return feed.ErrorPanel(p.errorText(), p.width)
	case item == nil:
		return styles.Skeleton(max(10, p.width-20)) + "\n\n" + feed.Skeleton(3, p.width)
	}

	var b strings.Builder
	b.WriteString(styles.Title.Render(item.Title))
	b.WriteString("\n")
	meta := fmt.Sprintf("%s %s  %s %s  %s %s",
		icons.ForCategory(item.CategoryName()).String(), item.CategoryName(),
		icons.Author.String(), item.AuthorName(),
		icons.Clock.String(), feed.TimeAgo(item.CreatedAt, p.env.now()))
	b.WriteString(styles.Meta.Render(meta))
	b.WriteString("\n")
	// A failed refresh keeps the last copy on screen under a warning.
	if msg := p.errorText(); msg != "" {
		b.WriteString(styles.StatusCritical.Render(icons.Warning.String() + " " + msg))
		b.WriteString(styles.Meta.Render("  r Try again"))
		b.WriteString("\n")
	}
	if item.Image != "" {
		b.WriteString(styles.Meta.Render(icons.Image.String() + " " + feed.Truncate(item.Image, max(20, p.width-6))))
		b.WriteString("\n")
	}
	b.WriteString("\n")
	b.WriteString(p.body.View())
	if p.body.TotalLineCount() > p.body.Height {
		b.WriteString("\n")
		b.WriteString(widgets.ReadingProgress(p.body.ScrollPercent(), p.body.Width))
	}

	if p.confirm != nil {
		b.WriteString("\n")
		b.WriteString(p.confirm.View())
	}
	return b.String()
}

func (p *detailPage) SetSize(w, h int) {
	p.width, p.height = w, h
	p.refreshBody()
}

func (p *detailPage) CapturesInput() bool { return p.confirm != nil }
func (p *detailPage) Title() string       { return "Article" }

func (p *detailPage) Shortcuts() []string {
	if p.confirm != nil {
		return []string{"y Confirm", "n Cancel"}
	}
	s := []string{"↑↓ Scroll", "r Refresh"}
	if p.canModify() {
		s = append(s, "e Edit", "d Delete")
	}
	return append(s, "b Back")
}
