// ABOUTME: Category screen listing the news filed under one category
// ABOUTME: Uses the category endpoint with its news embedded

package tui

import (
	"context"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kabar-app/kabar/internal/client"
	"github.com/kabar-app/kabar/internal/navguard"
	"github.com/kabar-app/kabar/internal/query"
	"github.com/kabar-app/kabar/internal/tui/feed"
	"github.com/kabar-app/kabar/internal/tui/icons"
	"github.com/kabar-app/kabar/internal/tui/styles"
)

type categoryPage struct {
	env    *env
	id     int
	state  query.State[*client.CategoryWithNews]
	cursor int
	width  int
	height int
}

func newCategoryPage(e *env, id int) *categoryPage {
	return &categoryPage{env: e, id: id}
}

func (p *categoryPage) key() query.Key {
	return query.NewKey(resCategory, p.id)
}

func (p *categoryPage) Init() tea.Cmd {
	p.state = initial[*client.CategoryWithNews](p.env, p.key())
	return p.load(false)
}

func (p *categoryPage) load(force bool) tea.Cmd {
	id := p.id
	c := p.env.client
	return fetch(p.env, p.key(), func(ctx context.Context) (*client.CategoryWithNews, error) {
		return c.GetCategory(ctx, id, true)
	}, force)
}

func (p *categoryPage) news() []client.NewsItem {
	if p.state.Data == nil {
		return nil
	}
	return p.state.Data.News
}

func (p *categoryPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg[*client.CategoryWithNews]:
		if msg.key == p.key() {
			p.state = msg.state
			if n := len(p.news()); p.cursor >= n {
				p.cursor = max(0, n-1)
			}
		}
	case tea.KeyMsg:
		news := p.news()
		switch msg.String() {
		case "enter":
			if len(news) > 0 {
				return p, navigate(newsRoute(news[p.cursor].ID), navguard.Push)
			}
		case "r":
			p.state.Status = query.StatusLoading
			return p, p.load(true)
		case "esc", "b":
			return p, goBack()
		default:
			p.cursor = listCursor(msg.String(), p.cursor, len(news))
		}
	}
	return p, nil
}

func (p *categoryPage) View() string {
	var b strings.Builder

	name := "Category"
	if p.state.Data != nil {
		name = p.state.Data.Name
	}
	b.WriteString(styles.Title.Render(icons.ForCategory(name).String() + " " + name))
	b.WriteString("\n\n")

	news := p.news()
	switch {
	case p.state.Data == nil && p.state.IsError():
		b.WriteString(feed.ErrorPanel(describe(p.state.Err), p.width))
	case p.state.Data == nil:
		b.WriteString(feed.Skeleton(4, p.width))
	case len(news) == 0:
		b.WriteString(feed.EmptyPanel("No news in this category yet", p.width))
	default:
		b.WriteString(feed.NewsList(news, p.cursor, p.width, p.height-3, p.env.now()))
	}
	return b.String()
}

func (p *categoryPage) SetSize(w, h int)    { p.width, p.height = w, h }
func (p *categoryPage) CapturesInput() bool { return false }

func (p *categoryPage) Title() string {
	if p.state.Data != nil {
		return p.state.Data.Name
	}
	return "Category"
}

func (p *categoryPage) Shortcuts() []string {
	return []string{"↑↓ Navigate", "Enter Read", "r Refresh", "b Back"}
}
