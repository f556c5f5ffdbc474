// ABOUTME: Welcome, sign-in, and sign-up screens
// ABOUTME: Sign-in goes through the session manager; the router reacts to its transitions

package tui

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/kabar-app/kabar/internal/client"
	"github.com/kabar-app/kabar/internal/navguard"
	"github.com/kabar-app/kabar/internal/tui/authform"
	"github.com/kabar-app/kabar/internal/tui/welcome"
)

type welcomePage struct {
	menu *welcome.Menu
}

func newWelcomePage() *welcomePage {
	return &welcomePage{menu: welcome.New()}
}

func (p *welcomePage) Init() tea.Cmd { return p.menu.Init() }

func (p *welcomePage) Update(msg tea.Msg) (page, tea.Cmd) {
	if choice, ok := msg.(welcome.ChoiceMsg); ok {
		switch choice.Choice {
		case welcome.ChoiceSignIn:
			return p, navigate(routeSignIn, navguard.Push)
		case welcome.ChoiceSignUp:
			return p, navigate(routeSignUp, navguard.Push)
		default:
			return p, tea.Quit
		}
	}
	model, cmd := p.menu.Update(msg)
	p.menu = model.(*welcome.Menu)
	return p, cmd
}

func (p *welcomePage) View() string        { return p.menu.View() }
func (p *welcomePage) SetSize(w, h int)    { p.menu.Update(tea.WindowSizeMsg{Width: w, Height: h}) }
func (p *welcomePage) Title() string       { return "Welcome" }
func (p *welcomePage) CapturesInput() bool { return false }
func (p *welcomePage) Shortcuts() []string {
	return []string{"↑↓ Navigate", "Enter Select", "q Quit"}
}

// signInResultMsg reports the outcome of a sign-in attempt
type signInResultMsg struct {
	err error
}

// signUpResultMsg reports the outcome of a registration
type signUpResultMsg struct {
	email string
	err   error
}

type authPage struct {
	env  *env
	form *authform.Form
}

func newAuthPage(e *env, mode authform.Mode) *authPage {
	return &authPage{env: e, form: authform.New(mode)}
}

func (p *authPage) Init() tea.Cmd { return p.form.Init() }

func (p *authPage) Update(msg tea.Msg) (page, tea.Cmd) {
	switch msg := msg.(type) {
	case authform.SubmitMsg:
		if msg.Mode == authform.ModeSignUp {
			return p, p.register(msg)
		}
		return p, p.signIn(msg)

	case signInResultMsg:
		if msg.err != nil {
			return p, tea.Batch(p.form.SetError(describe(msg.err)), toastError(msg.err))
		}
		// The router moves to home when the session manager reports the login.
		return p, nil

	case signUpResultMsg:
		if msg.err != nil {
			return p, tea.Batch(p.form.SetError(describe(msg.err)), toastError(msg.err))
		}
		p.form = authform.New(authform.ModeSignIn)
		p.form.SetEmail(msg.email)
		return p, tea.Batch(p.form.Init(), toast("Account created, please sign in"))

	case authform.SwitchMsg:
		target := routeSignIn
		if msg.To == authform.ModeSignUp {
			target = routeSignUp
		}
		return p, navigate(target, navguard.Replace)

	case authform.CancelledMsg:
		return p, goBack()
	}

	model, cmd := p.form.Update(msg)
	p.form = model.(*authform.Form)
	return p, cmd
}

func (p *authPage) signIn(msg authform.SubmitMsg) tea.Cmd {
	e := p.env
	return func() tea.Msg {
		err := e.session.Login(e.ctx, msg.SignIn.Email, msg.SignIn.Password)
		return signInResultMsg{err: err}
	}
}

func (p *authPage) register(msg authform.SubmitMsg) tea.Cmd {
	e := p.env
	return func() tea.Msg {
		err := e.client.Register(e.ctx, client.RegisterInput{
			Name:     msg.SignUp.Name,
			Email:    msg.SignUp.Email,
			Password: msg.SignUp.Password,
		})
		if err != nil {
			e.logger.Warn("Registration failed", "error", err)
		} else {
			e.logger.Info("Account registered", "email", msg.SignUp.Email)
		}
		return signUpResultMsg{email: msg.SignUp.Email, err: err}
	}
}

func (p *authPage) View() string { return p.form.View() }

func (p *authPage) SetSize(w, h int) {
	p.form.Update(tea.WindowSizeMsg{Width: w, Height: h})
}

func (p *authPage) Title() string {
	if p.form.Mode() == authform.ModeSignUp {
		return "Create account"
	}
	return "Sign in"
}

func (p *authPage) CapturesInput() bool { return true }

func (p *authPage) Shortcuts() []string {
	return []string{"Tab Next field", "Enter Submit", "ctrl+t Switch", "Esc Back"}
}
