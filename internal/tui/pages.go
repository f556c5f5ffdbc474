// ABOUTME: Page contract, shared messages, and command helpers for every screen
// ABOUTME: Bridges the query cache and the router into bubbletea commands

package tui

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/kabar-app/kabar/internal/client"
	"github.com/kabar-app/kabar/internal/config"
	"github.com/kabar-app/kabar/internal/navguard"
	"github.com/kabar-app/kabar/internal/query"
	"github.com/kabar-app/kabar/internal/session"
	"github.com/kabar-app/kabar/internal/storage"
	"github.com/kabar-app/kabar/internal/tui/recentfiles"
)

// Route targets
const (
	routeWelcome        = "welcome"
	routeSignIn         = "sign-in"
	routeSignUp         = "sign-up"
	routeHome           = "home"
	routeSearch         = "search"
	routeMotivations    = "motivations"
	routeProfile        = "profile"
	routeAddNews        = "news/add"
	routeAddMotivation  = "motivations/add"
	routeCategoryPrefix = "category/"
	routeNewsPrefix     = "news/"
)

// Cache resources
const (
	resNews        = "news"
	resNewsDetail  = "newsDetail"
	resSearchNews  = "searchNews"
	resCategories  = "categories"
	resCategory    = "category"
	resMotivations = "motivations"
)

// newsResources are invalidated by any news write
var newsResources = []string{resNews, resNewsDetail, resSearchNews, resCategory}

// page is one screen on the navigation stack
type page interface {
	Init() tea.Cmd
	Update(tea.Msg) (page, tea.Cmd)
	View() string
	SetSize(width, height int)
	Title() string
	Shortcuts() []string
	// CapturesInput reports whether plain keys belong to a text field,
	// which disables single-key global shortcuts.
	CapturesInput() bool
}

// env is what screens need from the application
type env struct {
	ctx      context.Context
	client   *client.Client
	session  *session.Manager
	cache    *query.Cache
	uploader *storage.Uploader
	recent   *recentfiles.RecentFiles
	cfg      *config.Config
	logger   *slog.Logger
	now      func() time.Time
}

// user returns the signed-in user, or nil
func (e *env) user() *client.User {
	return e.session.User()
}

// navigateMsg asks the router to move through the navigation guard
type navigateMsg struct {
	target string
	method navguard.Method
}

// toastMsg shows a transient notification
type toastMsg struct {
	text  string
	isErr bool
}

// toastExpiredMsg hides the toast with the matching id
type toastExpiredMsg struct {
	id int
}

// loadedMsg carries a query result back to the page that asked for it
type loadedMsg[T any] struct {
	key   query.Key
	state query.State[T]
}

// mutatedMsg reports the outcome of a write
type mutatedMsg struct {
	action string
	err    error
}

func navigate(target string, m navguard.Method) tea.Cmd {
	return func() tea.Msg { return navigateMsg{target: target, method: m} }
}

func goBack() tea.Cmd {
	return navigate("", navguard.Back)
}

func toast(text string) tea.Cmd {
	return func() tea.Msg { return toastMsg{text: text} }
}

func toastError(err error) tea.Cmd {
	return func() tea.Msg { return toastMsg{text: describe(err), isErr: true} }
}

// describe turns err into text for the user. API errors use the server's
// message when it has one; local failures show their own text.
func describe(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *client.APIError
	if errors.As(err, &apiErr) {
		return client.Message(err)
	}
	if errors.Is(err, context.Canceled) {
		return "Request canceled"
	}
	return err.Error()
}

// fetch runs a cached query. force bypasses freshness for manual retries.
func fetch[T any](e *env, key query.Key, fn func(context.Context) (T, error), force bool, opts ...query.FetchOption) tea.Cmd {
	return func() tea.Msg {
		var st query.State[T]
		if force {
			st = query.Refetch(e.ctx, e.cache, key, fn, opts...)
		} else {
			st = query.Fetch(e.ctx, e.cache, key, fn, opts...)
		}
		if st.Err != nil {
			e.logger.Warn("Query failed", "key", key.String(), "error", st.Err)
		}
		return loadedMsg[T]{key: key, state: st}
	}
}

// initial returns cached data to paint immediately, or a loading state
func initial[T any](e *env, key query.Key) query.State[T] {
	if st, ok := query.Peek[T](e.cache, key); ok && st.IsSuccess() {
		return st
	}
	return query.Loading[T]()
}

// mutate runs a write and invalidates the given resources on success
func mutate[T any](e *env, action string, fn func(context.Context) (T, error), invalidates ...string) tea.Cmd {
	return func() tea.Msg {
		_, err := query.Mutate(e.ctx, e.cache, fn, query.MutateOptions[T]{
			Invalidates: invalidates,
			OnError: func(err error) {
				e.logger.Warn("Mutation failed", "action", action, "error", err)
			},
		})
		return mutatedMsg{action: action, err: err}
	}
}

// parseRoute splits "news/12/edit" into ("news", 12, "edit")
func parseRoute(target string) (string, int, string, bool) {
	parts := strings.Split(target, "/")
	if len(parts) < 2 {
		return "", 0, "", false
	}
	id, err := strconv.Atoi(parts[1])
	if err != nil || id <= 0 {
		return "", 0, "", false
	}
	rest := strings.Join(parts[2:], "/")
	return parts[0], id, rest, true
}

func newsRoute(id int) string {
	return routeNewsPrefix + strconv.Itoa(id)
}

func categoryRoute(id int) string {
	return routeCategoryPrefix + strconv.Itoa(id)
}

// listCursor moves a cursor over n rows for the usual navigation keys
func listCursor(key string, cursor, n int) int {
	switch key {
	case "up", "k":
		if cursor > 0 {
			cursor--
		}
	case "down", "j":
		if cursor < n-1 {
			cursor++
		}
	case "home", "g":
		cursor = 0
	case "end", "G":
		if n > 0 {
			cursor = n - 1
		}
	}
	return cursor
}
