// ABOUTME: Root bubbletea model for the TUI application
// ABOUTME: Owns the page stack, follows session changes, and draws the frame

package tui

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/kabar-app/kabar/internal/client"
	"github.com/kabar-app/kabar/internal/config"
	"github.com/kabar-app/kabar/internal/navguard"
	"github.com/kabar-app/kabar/internal/query"
	"github.com/kabar-app/kabar/internal/session"
	"github.com/kabar-app/kabar/internal/storage"
	"github.com/kabar-app/kabar/internal/tui/authform"
	"github.com/kabar-app/kabar/internal/tui/icons"
	"github.com/kabar-app/kabar/internal/tui/recentfiles"
	"github.com/kabar-app/kabar/internal/tui/styles"
)

// Layout constants
const (
	minTerminalWidth = 80 // Frame never draws narrower than this
	frameOverhead    = 3  // Header, toast line, and footer
)

// toastDuration is how long a notification stays visible
const toastDuration = 3 * time.Second

// tab is a top-level destination reachable with a number key
type tab struct {
	key   string
	route string
	label string
	icon  icons.Icon
}

var tabs = []tab{
	{"1", routeHome, "Home", icons.Home},
	{"2", routeSearch, "Search", icons.Search},
	{"3", routeMotivations, "Motivation", icons.Motivation},
	{"4", routeProfile, "Profile", icons.Profile},
}

// sessionChangedMsg carries one transition from the session manager
type sessionChangedMsg struct {
	transition session.Transition
}

// closer is implemented by pages holding background work
type closer interface {
	Close()
}

// Deps are the services the TUI runs against
type Deps struct {
	Client  *client.Client
	Session *session.Manager
	Cache   *query.Cache
	// Uploader is nil when image storage is not configured
	Uploader *storage.Uploader
	Recent   *recentfiles.RecentFiles
	Config   *config.Config
	Logger   *slog.Logger
	Now      func() time.Time
	// GuardOptions tune the navigation guard, mostly for tests
	GuardOptions []navguard.Option
}

// App is the root model for the TUI
type App struct {
	env   *env
	guard *navguard.Guard

	stack   []page
	pending tea.Cmd
	ready   bool
	authed  bool

	width  int
	height int

	toastText string
	toastErr  bool
	toastID   int
}

// New creates the TUI application. Pages are built once the session
// manager reports its first state.
func New(ctx context.Context, deps Deps) *App {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	cfg := deps.Config
	if cfg == nil {
		cfg = &config.Config{
			SearchDebounce: query.DefaultDebounce,
			SearchMinLen:   query.DefaultMinSearchLength,
			NavCooldown:    navguard.DefaultCooldown,
		}
	}

	a := &App{
		env: &env{
			ctx:      ctx,
			client:   deps.Client,
			session:  deps.Session,
			cache:    deps.Cache,
			uploader: deps.Uploader,
			recent:   deps.Recent,
			cfg:      cfg,
			logger:   logger,
			now:      now,
		},
	}
	opts := append([]navguard.Option{
		navguard.WithCooldown(cfg.NavCooldown),
		navguard.WithLogger(logger),
	}, deps.GuardOptions...)
	a.guard = navguard.New(a, opts...)
	return a
}

// Init implements tea.Model
func (a *App) Init() tea.Cmd {
	return tea.Batch(tea.SetWindowTitle("kabar"), a.watchSession())
}

// watchSession waits for the next session transition
func (a *App) watchSession() tea.Cmd {
	changes := a.env.session.Changes()
	ctx := a.env.ctx
	return func() tea.Msg {
		select {
		case t := <-changes:
			return sessionChangedMsg{transition: t}
		case <-ctx.Done():
			return nil
		}
	}
}

// Update implements tea.Model
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		for _, p := range a.stack {
			p.SetSize(a.contentWidth(), a.contentHeight())
		}
		return a, nil

	case sessionChangedMsg:
		cmd := a.handleSession(msg.transition)
		return a, tea.Batch(cmd, a.watchSession())

	case navigateMsg:
		return a, a.route(msg.target, msg.method)

	case toastMsg:
		a.toastID++
		a.toastText = msg.text
		a.toastErr = msg.isErr
		id := a.toastID
		return a, tea.Tick(toastDuration, func(time.Time) tea.Msg { return toastExpiredMsg{id: id} })

	case toastExpiredMsg:
		if msg.id == a.toastID {
			a.toastText = ""
		}
		return a, nil

	case searchResultMsg:
		_, cmd := msg.owner.Update(msg)
		return a, cmd

	case tea.KeyMsg:
		if cmd, handled := a.handleGlobalKey(msg); handled {
			return a, cmd
		}
	}

	top := a.top()
	if top == nil {
		return a, nil
	}
	updated, cmd := top.Update(msg)
	a.stack[len(a.stack)-1] = updated
	return a, cmd
}

// handleGlobalKey handles keys that work on every screen
func (a *App) handleGlobalKey(msg tea.KeyMsg) (tea.Cmd, bool) {
	if msg.String() == "ctrl+c" {
		return tea.Quit, true
	}
	top := a.top()
	if top == nil {
		return nil, msg.String() == "q"
	}
	if top.CapturesInput() {
		return nil, false
	}
	if msg.String() == "q" {
		return tea.Quit, true
	}
	if !a.authed {
		return nil, false
	}
	for _, t := range tabs {
		if msg.String() == t.key {
			return a.route(t.route, navguard.Replace), true
		}
	}
	return nil, false
}

// route sends a user request through the guard
func (a *App) route(target string, m navguard.Method) tea.Cmd {
	ok, err := a.guard.NavigateSafely(target, m)
	if err != nil {
		a.env.logger.Warn("Navigation failed", "target", target, "method", m.String(), "error", err)
		return toastError(err)
	}
	if !ok {
		a.env.logger.Debug("Navigation dropped", "target", target, "method", m.String())
		return nil
	}
	cmd := a.pending
	a.pending = nil
	return cmd
}

// Navigate implements navguard.Navigator over the page stack
func (a *App) Navigate(target string, m navguard.Method) error {
	if m == navguard.Back {
		if len(a.stack) <= 1 {
			return nil
		}
		a.closePage(a.stack[len(a.stack)-1])
		a.stack = a.stack[:len(a.stack)-1]
		a.pending = a.top().Init()
		return nil
	}

	p, err := a.build(target)
	if err != nil {
		return err
	}
	p.SetSize(a.contentWidth(), a.contentHeight())
	if m == navguard.Replace && len(a.stack) > 0 {
		a.closePage(a.stack[len(a.stack)-1])
		a.stack[len(a.stack)-1] = p
	} else {
		a.stack = append(a.stack, p)
	}
	a.env.logger.Debug("Navigated", "target", target, "method", m.String(), "depth", len(a.stack))
	a.pending = p.Init()
	return nil
}

// build creates the page for target, enforcing sign-in and admin rules
func (a *App) build(target string) (page, error) {
	switch target {
	case routeWelcome:
		return newWelcomePage(), nil
	case routeSignIn:
		return newAuthPage(a.env, authform.ModeSignIn), nil
	case routeSignUp:
		return newAuthPage(a.env, authform.ModeSignUp), nil
	}

	if !a.authed {
		return nil, fmt.Errorf("sign in to open %s", target)
	}

	switch target {
	case routeHome:
		return newHomePage(a.env), nil
	case routeSearch:
		return newSearchPage(a.env), nil
	case routeMotivations:
		return newMotivationsPage(a.env), nil
	case routeProfile:
		return newProfilePage(a.env), nil
	case routeAddMotivation:
		return newMotivationFormPage(a.env, 0), nil
	case routeAddNews:
		if !a.env.user().IsAdmin() {
			return nil, fmt.Errorf("only admins can publish news")
		}
		return newNewsFormPage(a.env, 0), nil
	}

	kind, id, rest, ok := parseRoute(target)
	if ok {
		switch {
		case kind+"/" == routeNewsPrefix && rest == "":
			return newDetailPage(a.env, id), nil
		case kind+"/" == routeNewsPrefix && rest == "edit":
			return newNewsFormPage(a.env, id), nil
		case kind+"/" == routeCategoryPrefix && rest == "":
			return newCategoryPage(a.env, id), nil
		case kind == routeMotivations && rest == "edit":
			return newMotivationFormPage(a.env, id), nil
		}
	}
	return nil, fmt.Errorf("unknown screen %q", target)
}

// handleSession resets the stack to the root screen for the new state.
// Cached data belongs to the previous user and is dropped.
func (a *App) handleSession(t session.Transition) tea.Cmd {
	a.env.logger.Info("Session changed",
		"from", t.From.String(), "to", t.To.String(), "reason", string(t.Reason))

	a.env.cache.Clear()
	a.authed = t.To == session.Authenticated
	a.ready = true

	root := routeWelcome
	if a.authed {
		root = routeHome
	}
	for _, p := range a.stack {
		a.closePage(p)
	}
	a.stack = nil

	p, err := a.build(root)
	if err != nil {
		a.env.logger.Error("Failed to build root screen", "target", root, "error", err)
		return tea.Quit
	}
	p.SetSize(a.contentWidth(), a.contentHeight())
	a.stack = []page{p}

	cmds := []tea.Cmd{p.Init()}
	switch t.Reason {
	case session.ReasonLogin:
		if t.User != nil {
			cmds = append(cmds, toast("Welcome, "+t.User.Name))
		}
	case session.ReasonLogout:
		cmds = append(cmds, toast("Signed out"))
	case session.ReasonUnauthorized:
		cmds = append(cmds, func() tea.Msg {
			return toastMsg{text: "Your session has ended, please sign in again", isErr: true}
		})
	case session.ReasonExpired:
		cmds = append(cmds, func() tea.Msg {
			return toastMsg{text: "Your session expired, please sign in again", isErr: true}
		})
	}
	return tea.Batch(cmds...)
}

func (a *App) closePage(p page) {
	if c, ok := p.(closer); ok {
		c.Close()
	}
}

func (a *App) top() page {
	if len(a.stack) == 0 {
		return nil
	}
	return a.stack[len(a.stack)-1]
}

// View implements tea.Model
func (a *App) View() string {
	var content string
	if top := a.top(); top != nil && a.ready {
		content = top.View()
	} else {
		content = styles.Meta.Render(icons.Clock.String() + " Restoring your session...")
	}
	return a.wrapWithFrame(content)
}

// frameWidth is the drawn width; one column short of the terminal so the
// corner characters never wrap.
func (a *App) frameWidth() int {
	return max(minTerminalWidth, a.width-1)
}

// contentWidth is the width available to a page
func (a *App) contentWidth() int {
	return a.frameWidth() - 2
}

// contentHeight is the height available to a page
func (a *App) contentHeight() int {
	h := a.height - frameOverhead
	if a.authed {
		h--
	}
	return max(5, h)
}

// renderHeader creates the header bar with app branding and context
func (a *App) renderHeader() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
	contextStyle := lipgloss.NewStyle().Foreground(styles.Secondary)

	leftText := fmt.Sprintf(" %s %s ", icons.App.String(), titleStyle.Render("Kabar"))
	if top := a.top(); top != nil && a.ready {
		leftText += contextStyle.Render(top.Title()) + " "
	}

	rightText := ""
	if u := a.env.session.User(); u != nil && a.authed {
		rightText = " " + contextStyle.Render(u.Name) + " "
	}

	leftWidth := lipgloss.Width(leftText)
	rightWidth := lipgloss.Width(rightText)
	fillWidth := width - 4 - leftWidth - rightWidth // -4 for ╭─ and ─╮
	if fillWidth < 0 {
		fillWidth = 0
	}

	header := "╭─" + leftText + strings.Repeat("─", fillWidth) + rightText + "─╮"
	return borderStyle.Render(header)
}

// renderTabs shows the top-level destinations, highlighting the current one
func (a *App) renderTabs() string {
	current := ""
	if len(a.stack) > 0 {
		current = a.stack[0].Title()
	}
	var parts []string
	for _, t := range tabs {
		label := t.key + " " + t.icon.String() + " " + t.label
		if t.label == current {
			parts = append(parts, styles.ActiveChip.Render(label))
		} else {
			parts = append(parts, styles.Chip.Render(label))
		}
	}
	return " " + lipgloss.JoinHorizontal(lipgloss.Top, parts...)
}

// renderFooter creates the footer with keyboard shortcuts for the top page
func (a *App) renderFooter() string {
	width := a.frameWidth()

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	keyStyle := lipgloss.NewStyle().Foreground(styles.Primary)
	labelStyle := lipgloss.NewStyle().Foreground(styles.Muted)

	var shortcuts []string
	if top := a.top(); top != nil && a.ready {
		shortcuts = append(shortcuts, top.Shortcuts()...)
		if !top.CapturesInput() && a.authed {
			shortcuts = append(shortcuts, "1-4 Tabs", "q Quit")
		}
	} else {
		shortcuts = []string{"ctrl+c Quit"}
	}

	var styledShortcuts []string
	for _, s := range shortcuts {
		parts := strings.SplitN(s, " ", 2)
		if len(parts) == 2 {
			styledShortcuts = append(styledShortcuts, keyStyle.Render(parts[0])+" "+labelStyle.Render(parts[1]))
		} else {
			styledShortcuts = append(styledShortcuts, s)
		}
	}

	leftText := " " + strings.Join(styledShortcuts, "  ") + " "
	leftPlainText := " " + strings.Join(shortcuts, "  ") + " "

	// Drop shortcuts from the end until they fit
	for lipgloss.Width(leftPlainText) > width-4 && len(shortcuts) > 1 {
		shortcuts = shortcuts[:len(shortcuts)-1]
		styledShortcuts = styledShortcuts[:len(styledShortcuts)-1]
		leftText = " " + strings.Join(styledShortcuts, "  ") + " "
		leftPlainText = " " + strings.Join(shortcuts, "  ") + " "
	}

	fillWidth := width - 4 - lipgloss.Width(leftPlainText) // -4 for ╰─ and ─╯
	if fillWidth < 0 {
		fillWidth = 0
	}

	footer := "╰─" + leftText + strings.Repeat("─", fillWidth) + "─╯"
	return borderStyle.Render(footer)
}

// renderToast draws the current notification, or an empty line
func (a *App) renderToast() string {
	if a.toastText == "" {
		return ""
	}
	if a.toastErr {
		return styles.ToastError.Render(icons.Critical.String() + " " + a.toastText)
	}
	return styles.ToastOK.Render(icons.CheckOK.String() + " " + a.toastText)
}

// wrapWithFrame wraps content with header, tabs, toast, and footer
func (a *App) wrapWithFrame(content string) string {
	var sb strings.Builder

	sb.WriteString(a.renderHeader())
	sb.WriteString("\n")
	if a.authed && a.ready {
		sb.WriteString(a.renderTabs())
		sb.WriteString("\n")
	}
	body := lipgloss.NewStyle().
		PaddingLeft(1).
		Height(a.contentHeight()).
		MaxHeight(a.contentHeight()).
		Render(content)
	sb.WriteString(body)
	sb.WriteString("\n")
	sb.WriteString(a.renderToast())
	sb.WriteString("\n")
	sb.WriteString(a.renderFooter())

	return sb.String()
}

// Run starts the TUI and blocks until the user quits
func Run(ctx context.Context, deps Deps) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	app := New(ctx, deps)
	p := tea.NewProgram(
		app,
		tea.WithAltScreen(),
		tea.WithContext(ctx),
	)
	_, err := p.Run()
	for _, pg := range app.stack {
		app.closePage(pg)
	}
	return err
}
