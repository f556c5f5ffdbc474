// ABOUTME: Home screen with trending news, the category strip, and the latest feed
// ABOUTME: Admins get the add-news action

package tui

import (
	"fmt"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kabar-app/kabar/internal/client"
	"github.com/kabar-app/kabar/internal/navguard"
	"github.com/kabar-app/kabar/internal/query"
	"github.com/kabar-app/kabar/internal/tui/feed"
	"github.com/kabar-app/kabar/internal/tui/icons"
	"github.com/kabar-app/kabar/internal/tui/styles"
)

// trendingInterval is how long each trending article stays on screen
const trendingInterval = 5 * time.Second

// trendingTitleWords caps the trending headline length
const trendingTitleWords = 10

type trendingTickMsg struct {
	seq int
}

type homePage struct {
	env *env

	news query.State[[]client.NewsItem]
	cats query.State[[]client.Category]

	cursor    int
	catCursor int
	trend     int
	tickSeq   int

	width  int
	height int
}

func newHomePage(e *env) *homePage {
	return &homePage{env: e}
}

func newsListKey() query.Key     { return query.NewKey(resNews) }
func categoryListKey() query.Key { return query.NewKey(resCategories) }

func (p *homePage) Init() tea.Cmd {
	p.news = initial[[]client.NewsItem](p.env, newsListKey())
	p.cats = initial[[]client.Category](p.env, categoryListKey())
	p.tickSeq++
	return tea.Batch(p.load(false), p.tick())
}

func (p *homePage) load(force bool) tea.Cmd {
	return tea.Batch(
		fetch(p.env, newsListKey(), p.env.client.ListNews, force),
		fetch(p.env, categoryListKey(), p.env.client.ListCategories, force),
	)
}

func (p *homePage) tick() tea.Cmd {
	seq := p.tickSeq
	return tea.Tick(trendingInterval, func(time.Time) tea.Msg { return trendingTickMsg{seq: seq} })
}

func (p *homePage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg[[]client.NewsItem]:
		if msg.key == newsListKey() {
			p.news = msg.state
			p.clamp()
		}
	case loadedMsg[[]client.Category]:
		if msg.key == categoryListKey() {
			p.cats = msg.state
			p.clamp()
		}
	case trendingTickMsg:
		if msg.seq != p.tickSeq {
			return p, nil
		}
		if n := len(p.news.Data); n > 0 {
			p.trend = (p.trend + 1) % n
		}
		return p, p.tick()
	case tea.KeyMsg:
		return p, p.handleKey(msg)
	}
	return p, nil
}

func (p *homePage) clamp() {
	if n := len(p.news.Data); p.cursor >= n {
		p.cursor = max(0, n-1)
	}
	if n := len(p.news.Data); p.trend >= n {
		p.trend = 0
	}
	if n := len(p.cats.Data); p.catCursor >= n {
		p.catCursor = max(0, n-1)
	}
}

func (p *homePage) handleKey(msg tea.KeyMsg) tea.Cmd {
	news := p.news.Data
	cats := p.cats.Data

	switch msg.String() {
	case "left", "h":
		if p.catCursor > 0 {
			p.catCursor--
		}
	case "right", "l":
		if p.catCursor < len(cats)-1 {
			p.catCursor++
		}
	case "c":
		if len(cats) > 0 {
			return navigate(categoryRoute(cats[p.catCursor].ID), navguard.Push)
		}
	case "enter":
		if len(news) > 0 {
			return navigate(newsRoute(news[p.cursor].ID), navguard.Push)
		}
	case "t":
		if len(news) > 0 {
			return navigate(newsRoute(news[p.trend].ID), navguard.Push)
		}
	case "[":
		if n := len(news); n > 0 {
			p.trend = (p.trend - 1 + n) % n
		}
	case "]":
		if n := len(news); n > 0 {
			p.trend = (p.trend + 1) % n
		}
	case "r":
		p.news.Status = query.StatusLoading
		p.cats.Status = query.StatusLoading
		return p.load(true)
	case "a":
		if p.env.user().IsAdmin() {
			return navigate(routeAddNews, navguard.Push)
		}
	default:
		p.cursor = listCursor(msg.String(), p.cursor, len(news))
	}
	return nil
}

func (p *homePage) View() string {
	var b strings.Builder

	name := "reader"
	if u := p.env.user(); u != nil && u.Name != "" {
		name = u.Name
	}
	b.WriteString(styles.Title.Render("Welcome, " + name))
	b.WriteString("\n")
	b.WriteString(styles.Meta.Render("Discover today's news"))
	b.WriteString("\n\n")

	b.WriteString(styles.Section.Render(icons.Refresh.String() + " Trending today"))
	b.WriteString("\n")
	b.WriteString(p.viewTrending())
	b.WriteString("\n\n")

	b.WriteString(styles.Section.Render(icons.Category.String() + " Categories"))
	b.WriteString("\n")
	switch {
	case p.cats.IsError() && len(p.cats.Data) == 0:
		b.WriteString(styles.StatusCritical.Render(describe(p.cats.Err) + " (r to retry)"))
	case len(p.cats.Data) == 0 && !p.cats.IsSuccess():
		b.WriteString(styles.Skeleton(min(40, p.width-4)))
	default:
		b.WriteString(feed.CategoryStrip(p.cats.Data, p.catCursor, p.width-2, true))
	}
	b.WriteString("\n\n")

	b.WriteString(styles.Section.Render(icons.Home.String() + " Latest news"))
	b.WriteString("\n")
	used := strings.Count(b.String(), "\n") + 1
	b.WriteString(p.viewLatest(p.height - used))

	return b.String()
}

func (p *homePage) viewTrending() string {
	news := p.news.Data
	switch {
	case len(news) == 0 && p.news.IsError():
		return feed.ErrorPanel(describe(p.news.Err), p.width)
	case len(news) == 0 && !p.news.IsSuccess():
		return styles.Panel.Render(styles.Skeleton(max(10, p.width-12)) + "\n" + styles.Skeleton(max(10, p.width/3)))
	case len(news) == 0:
		return feed.EmptyPanel("Nothing trending yet", p.width)
	}

	item := news[p.trend%len(news)]
	title := styles.Selected.Render(feed.TruncateWords(item.Title, trendingTitleWords))
	meta := styles.Meta.Render(fmt.Sprintf("%s • %s • %d/%d",
		item.CategoryName(), feed.TimeAgo(item.CreatedAt, p.env.now()), p.trend%len(news)+1, len(news)))
	return styles.ActivePanel.Width(max(20, p.width-4)).Render(title + "\n" + meta)
}

func (p *homePage) viewLatest(height int) string {
	news := p.news.Data
	switch {
	case len(news) == 0 && p.news.IsError():
		return feed.ErrorPanel(describe(p.news.Err), p.width)
	case len(news) == 0 && !p.news.IsSuccess():
		return feed.Skeleton(3, p.width)
	case len(news) == 0:
		return feed.EmptyPanel("No news yet", p.width)
	}
	return feed.NewsList(news, p.cursor, p.width, max(3, height), p.env.now())
}

func (p *homePage) SetSize(w, h int)    { p.width, p.height = w, h }
func (p *homePage) Title() string       { return "Home" }
func (p *homePage) CapturesInput() bool { return false }

func (p *homePage) Shortcuts() []string {
	s := []string{"↑↓ News", "←→ Categories", "Enter Read", "c Category", "t Trending", "r Refresh"}
	if p.env.user().IsAdmin() {
		s = append(s, "a Add news")
	}
	return s
}
