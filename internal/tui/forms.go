// ABOUTME: Screens hosting the news and motivation editors
// ABOUTME: Loads what the editor needs, uploads images, and saves through the cache

package tui

import (
	"context"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kabar-app/kabar/internal/client"
	"github.com/kabar-app/kabar/internal/query"
	"github.com/kabar-app/kabar/internal/storage"
	"github.com/kabar-app/kabar/internal/tui/feed"
	"github.com/kabar-app/kabar/internal/tui/motivationform"
	"github.com/kabar-app/kabar/internal/tui/newsform"
	"github.com/kabar-app/kabar/internal/tui/styles"
)

// newsFormPage adds an article, or edits one when id is set
type newsFormPage struct {
	env  *env
	id   int
	cats query.State[[]client.Category]
	item query.State[*client.NewsItem]
	form *newsform.Form

	width  int
	height int
}

func newNewsFormPage(e *env, id int) *newsFormPage {
	return &newsFormPage{env: e, id: id}
}

func (p *newsFormPage) itemKey() query.Key {
	return query.NewKey(resNewsDetail, p.id)
}

func (p *newsFormPage) Init() tea.Cmd {
	if p.form != nil {
		return p.form.Init()
	}
	p.cats = initial[[]client.Category](p.env, categoryListKey())
	cmds := []tea.Cmd{fetch(p.env, categoryListKey(), p.env.client.ListCategories, false)}
	if p.id != 0 {
		p.item = initial[*client.NewsItem](p.env, p.itemKey())
		id := p.id
		c := p.env.client
		cmds = append(cmds, fetch(p.env, p.itemKey(), func(ctx context.Context) (*client.NewsItem, error) {
			return c.GetNews(ctx, id)
		}, false))
	}
	return tea.Batch(cmds...)
}

// ready builds the editor once its inputs have loaded
func (p *newsFormPage) ready() tea.Cmd {
	if p.form != nil || !p.cats.IsSuccess() {
		return nil
	}
	recent := p.recentImages()
	if p.id == 0 {
		p.form = newsform.New(p.cats.Data, recent)
	} else {
		if !p.item.IsSuccess() || p.item.Data == nil {
			return nil
		}
		p.form = newsform.Edit(*p.item.Data, p.cats.Data, recent)
	}
	p.form.SetWidth(p.width)
	return p.form.Init()
}

func (p *newsFormPage) recentImages() []string {
	if p.env.recent == nil {
		return nil
	}
	return p.env.recent.List()
}

func (p *newsFormPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg[[]client.Category]:
		if msg.key == categoryListKey() {
			p.cats = msg.state
			return p, p.ready()
		}
		return p, nil
	case loadedMsg[*client.NewsItem]:
		if msg.key == p.itemKey() {
			p.item = msg.state
			return p, p.ready()
		}
		return p, nil
	case newsform.CancelledMsg:
		return p, goBack()
	case newsform.CompleteMsg:
		return p, p.save(msg)
	case mutatedMsg:
		if msg.action != "save-news" || p.form == nil {
			return p, nil
		}
		if msg.err != nil {
			return p, tea.Batch(p.form.SetError(describe(msg.err)), toastError(msg.err))
		}
		text := "News published"
		if p.form.Editing() {
			text = "News updated"
		}
		return p, tea.Batch(toast(text), goBack())
	}

	if p.form == nil {
		if key, ok := msg.(tea.KeyMsg); ok {
			switch key.String() {
			case "esc":
				return p, goBack()
			case "r":
				return p, p.retry()
			}
		}
		return p, nil
	}

	model, cmd := p.form.Update(msg)
	p.form = model.(*newsform.Form)
	return p, cmd
}

func (p *newsFormPage) retry() tea.Cmd {
	p.cats.Status = query.StatusLoading
	cmds := []tea.Cmd{fetch(p.env, categoryListKey(), p.env.client.ListCategories, true)}
	if p.id != 0 {
		p.item.Status = query.StatusLoading
		id := p.id
		c := p.env.client
		cmds = append(cmds, fetch(p.env, p.itemKey(), func(ctx context.Context) (*client.NewsItem, error) {
			return c.GetNews(ctx, id)
		}, true))
	}
	return tea.Batch(cmds...)
}

// save uploads a picked file first, then creates or updates the article
func (p *newsFormPage) save(msg newsform.CompleteMsg) tea.Cmd {
	e := p.env
	return mutate(e, "save-news", func(ctx context.Context) (*client.NewsItem, error) {
		input := client.NewsInput{
			Title:      msg.Form.Title,
			Body:       msg.Form.Body,
			CategoryID: msg.Form.CategoryID,
			Image:      msg.Form.Image,
		}
		if msg.ImagePath != "" {
			url, err := uploadImage(ctx, e, msg.ImagePath)
			if err != nil {
				return nil, err
			}
			input.Image = url
		}
		if msg.NewsID != 0 {
			return e.client.UpdateNews(ctx, msg.NewsID, input)
		}
		return e.client.CreateNews(ctx, input)
	}, newsResources...)
}

// uploadImage stores a local image and remembers it for the next pick
func uploadImage(ctx context.Context, e *env, path string) (string, error) {
	if e.uploader == nil {
		return "", storage.ErrNotConfigured
	}
	url, err := e.uploader.UploadFile(ctx, storage.DefaultFolder, path)
	if err != nil {
		return "", err
	}
	if e.recent != nil {
		if err := e.recent.Add(path); err != nil {
			e.logger.Warn("Failed to save recent image", "path", path, "error", err)
		}
	}
	return url, nil
}

func (p *newsFormPage) View() string {
	if p.form != nil {
		return p.form.View()
	}
	switch {
	case p.cats.IsError():
		return feed.ErrorPanel("Could not load categories: "+describe(p.cats.Err), p.width)
	case p.id != 0 && p.item.IsError():
		msg := describe(p.item.Err)
		if client.IsNotFound(p.item.Err) {
			msg = "This article no longer exists"
		}
		return feed.ErrorPanel(msg, p.width)
	}
	return styles.Meta.Render("Preparing editor...") + "\n\n" + feed.Skeleton(2, p.width)
}

func (p *newsFormPage) SetSize(w, h int) {
	p.width, p.height = w, h
	if p.form != nil {
		p.form.SetWidth(w)
	}
}

func (p *newsFormPage) CapturesInput() bool {
	return p.form != nil && p.form.CapturesInput()
}

func (p *newsFormPage) Title() string {
	if p.id != 0 {
		return "Edit news"
	}
	return "Add news"
}

func (p *newsFormPage) Shortcuts() []string {
	if p.form == nil {
		return []string{"r Retry", "esc Back"}
	}
	return []string{"tab Next field", "enter Continue", "esc Back"}
}

// motivationFormPage adds a motivation, or edits one when id is set
type motivationFormPage struct {
	env   *env
	id    int
	state query.State[*client.Motivation]
	form  *motivationform.Form

	width  int
	height int
}

func newMotivationFormPage(e *env, id int) *motivationFormPage {
	p := &motivationFormPage{env: e, id: id}
	if id == 0 {
		p.form = motivationform.New()
	}
	return p
}

func (p *motivationFormPage) key() query.Key {
	return query.NewKey(resMotivations, p.id)
}

func (p *motivationFormPage) Init() tea.Cmd {
	if p.form != nil {
		return p.form.Init()
	}
	p.state = initial[*client.Motivation](p.env, p.key())
	return p.load(false)
}

func (p *motivationFormPage) load(force bool) tea.Cmd {
	id := p.id
	c := p.env.client
	return fetch(p.env, p.key(), func(ctx context.Context) (*client.Motivation, error) {
		return c.GetMotivation(ctx, id)
	}, force)
}

func (p *motivationFormPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case loadedMsg[*client.Motivation]:
		if msg.key != p.key() {
			return p, nil
		}
		p.state = msg.state
		if p.form == nil && p.state.IsSuccess() && p.state.Data != nil {
			p.form = motivationform.Edit(p.id, p.state.Data.Text)
			return p, p.form.Init()
		}
		return p, nil
	case motivationform.CancelledMsg:
		return p, goBack()
	case motivationform.SubmitMsg:
		return p, p.save(msg)
	case mutatedMsg:
		if msg.action != "save-motivation" || p.form == nil {
			return p, nil
		}
		if msg.err != nil {
			return p, tea.Batch(p.form.SetError(describe(msg.err)), toastError(msg.err))
		}
		text := "Motivation shared"
		if p.form.Editing() {
			text = "Motivation updated"
		}
		return p, tea.Batch(toast(text), goBack())
	}

	if p.form == nil {
		if key, ok := msg.(tea.KeyMsg); ok {
			switch key.String() {
			case "esc":
				return p, goBack()
			case "r":
				p.state.Status = query.StatusLoading
				return p, p.load(true)
			}
		}
		return p, nil
	}

	model, cmd := p.form.Update(msg)
	p.form = model.(*motivationform.Form)
	return p, cmd
}

func (p *motivationFormPage) save(msg motivationform.SubmitMsg) tea.Cmd {
	e := p.env
	return mutate(e, "save-motivation", func(ctx context.Context) (*client.Motivation, error) {
		if msg.ID != 0 {
			return e.client.UpdateMotivation(ctx, msg.ID, client.MotivationInput{Text: msg.Text})
		}
		input := client.MotivationInput{Text: msg.Text}
		if u := e.user(); u != nil {
			input.UserID = u.ID
		}
		return e.client.CreateMotivation(ctx, input)
	}, resMotivations)
}

func (p *motivationFormPage) View() string {
	if p.form != nil {
		return p.form.View()
	}
	if p.state.IsError() {
		msg := describe(p.state.Err)
		if client.IsNotFound(p.state.Err) {
			msg = "This motivation no longer exists"
		}
		return feed.ErrorPanel(msg, p.width)
	}
	return feed.Skeleton(1, p.width)
}

func (p *motivationFormPage) SetSize(w, h int) { p.width, p.height = w, h }

func (p *motivationFormPage) CapturesInput() bool {
	return p.form != nil && !p.form.Submitting()
}

func (p *motivationFormPage) Title() string {
	if p.id != 0 {
		return "Edit motivation"
	}
	return "Add motivation"
}

func (p *motivationFormPage) Shortcuts() []string {
	if p.form == nil {
		return []string{"r Retry", "esc Back"}
	}
	return []string{"enter Save", "esc Cancel"}
}

