// ABOUTME: Search screen with a debounced query box over the news endpoint
// ABOUTME: Results arrive from the searcher; superseded ones never reach the screen

package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/kabar-app/kabar/internal/client"
	"github.com/kabar-app/kabar/internal/navguard"
	"github.com/kabar-app/kabar/internal/query"
	"github.com/kabar-app/kabar/internal/tui/feed"
	"github.com/kabar-app/kabar/internal/tui/icons"
	"github.com/kabar-app/kabar/internal/tui/styles"
)

// searchResultMsg carries one searcher delivery back to its page
type searchResultMsg struct {
	owner  *searchPage
	result query.SearchResult[[]client.NewsItem]
	closed bool
}

type searchPage struct {
	env      *env
	searcher *query.Searcher[[]client.NewsItem]
	input    textinput.Model
	result   query.SearchResult[[]client.NewsItem]
	minLen   int
	cursor   int
	waiting  bool
	done     chan struct{}
	width    int
	height   int
}

func newSearchPage(e *env) *searchPage {
	ti := textinput.New()
	ti.Placeholder = "Search news..."
	ti.Prompt = icons.Search.String() + " "
	ti.CharLimit = 100

	minLen := query.DefaultMinSearchLength
	opts := []query.SearchOption{}
	if e.cfg != nil {
		minLen = e.cfg.SearchMinLen
		opts = append(opts, query.WithDebounce(e.cfg.SearchDebounce), query.WithMinLength(minLen))
	}

	p := &searchPage{
		env:      e,
		searcher: query.NewSearcher(e.cache, resSearchNews, e.client.SearchNews, opts...),
		input:    ti,
		minLen:   minLen,
		done:     make(chan struct{}),
	}
	p.result.State.Status = query.StatusSuccess
	return p
}

func (p *searchPage) Init() tea.Cmd {
	p.input.Focus()
	return tea.Batch(textinput.Blink, p.wait())
}

// wait reads the next searcher delivery. Only one read is outstanding at a
// time; the router hands the result back here even when another page is on top.
func (p *searchPage) wait() tea.Cmd {
	if p.waiting {
		return nil
	}
	p.waiting = true
	results := p.searcher.Results()
	done := p.done
	return func() tea.Msg {
		select {
		case r := <-results:
			return searchResultMsg{owner: p, result: r}
		case <-done:
			return searchResultMsg{owner: p, closed: true}
		}
	}
}

// Close stops pending searches when the page leaves the stack
func (p *searchPage) Close() {
	p.searcher.Close()
	select {
	case <-p.done:
	default:
		close(p.done)
	}
}

func (p *searchPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case searchResultMsg:
		if msg.owner != p {
			return p, nil
		}
		p.waiting = false
		if msg.closed {
			return p, nil
		}
		if p.searcher.Current(msg.result) {
			p.result = msg.result
			if n := len(p.result.State.Data); p.cursor >= n {
				p.cursor = max(0, n-1)
			}
		}
		return p, p.wait()

	case tea.KeyMsg:
		switch msg.String() {
		case "esc":
			if p.input.Focused() {
				p.input.Blur()
				return p, nil
			}
			return p, goBack()
		case "/":
			if !p.input.Focused() {
				p.input.Focus()
				return p, textinput.Blink
			}
		case "up", "down":
			p.cursor = listCursor(msg.String(), p.cursor, len(p.result.State.Data))
			return p, nil
		case "enter":
			if items := p.result.State.Data; len(items) > 0 {
				return p, navigate(newsRoute(items[p.cursor].ID), navguard.Push)
			}
			return p, nil
		case "ctrl+r":
			p.searcher.Input(p.input.Value())
			return p, nil
		}
		if !p.input.Focused() {
			switch msg.String() {
			case "r":
				p.searcher.Input(p.input.Value())
			case "j", "k":
				p.cursor = listCursor(msg.String(), p.cursor, len(p.result.State.Data))
			}
			return p, nil
		}
	}

	before := p.input.Value()
	var cmd tea.Cmd
	p.input, cmd = p.input.Update(msg)
	if p.input.Value() != before {
		p.cursor = 0
		p.searcher.Input(p.input.Value())
	}
	return p, cmd
}

func (p *searchPage) View() string {
	var b strings.Builder
	b.WriteString(p.input.View())
	b.WriteString("\n\n")

	q := strings.TrimSpace(p.input.Value())
	st := p.result.State
	switch {
	case len([]rune(q)) <= p.minLen:
		b.WriteString(styles.Meta.Render(fmt.Sprintf("Type at least %d characters to search", p.minLen+1)))
	case st.IsLoading():
		b.WriteString(feed.Skeleton(3, p.width))
	case st.IsError():
		b.WriteString(feed.ErrorPanel(describe(st.Err), p.width))
	case len(st.Data) == 0:
		b.WriteString(feed.EmptyPanel(fmt.Sprintf("No news matches %q", q), p.width))
	default:
		b.WriteString(styles.Meta.Render(fmt.Sprintf("%d results for %q", len(st.Data), p.result.Query)))
		b.WriteString("\n\n")
		b.WriteString(feed.NewsList(st.Data, p.cursor, p.width, p.height-5, p.env.now()))
	}
	return b.String()
}

func (p *searchPage) SetSize(w, h int) {
	p.width, p.height = w, h
	p.input.Width = max(20, w-8)
}

func (p *searchPage) CapturesInput() bool { return p.input.Focused() }
func (p *searchPage) Title() string       { return "Search" }

func (p *searchPage) Shortcuts() []string {
	if p.input.Focused() {
		return []string{"↑↓ Results", "Enter Read", "ctrl+r Retry", "Esc Leave input"}
	}
	return []string{"/ Search", "j/k Results", "Enter Read", "r Retry", "Esc Back"}
}
