// ABOUTME: Account commands: login, logout, register, and whoami
// ABOUTME: The session is shared with the TUI through the config directory

package cmd

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/kabar-app/kabar/internal/client"
	"github.com/kabar-app/kabar/internal/session"
	"github.com/kabar-app/kabar/internal/validation"
	"github.com/spf13/cobra"
)

// passwordEnv supplies the password when --password is omitted
const passwordEnv = "KABAR_PASSWORD"

var (
	loginEmail    string
	loginPassword string

	registerName     string
	registerEmail    string
	registerPassword string
)

var loginCmd = &cobra.Command{
	Use:   "login",
	Short: "Sign in and remember the session",
	Long: `Sign in with email and password. The session is stored in the config
directory and reused by every other command and the TUI.

Exit codes:
  0 - Signed in
  1 - Invalid input
  2 - Error (wrong credentials, connectivity)`,
	Args: cobra.NoArgs,
	Run: runWithServices(func(ctx context.Context, svc *services, w io.Writer, _ []string) int {
		return runLogin(ctx, svc, w, loginEmail, passwordOrEnv(loginPassword))
	}),
}

var logoutCmd = &cobra.Command{
	Use:   "logout",
	Short: "Forget the stored session",
	Args:  cobra.NoArgs,
	Run: runWithServices(func(ctx context.Context, svc *services, w io.Writer, _ []string) int {
		return runLogout(ctx, svc, w)
	}),
}

var registerCmd = &cobra.Command{
	Use:   "register",
	Short: "Create an account",
	Args:  cobra.NoArgs,
	Run: runWithServices(func(ctx context.Context, svc *services, w io.Writer, _ []string) int {
		return runRegister(ctx, svc, w, registerName, registerEmail, passwordOrEnv(registerPassword))
	}),
}

var whoamiCmd = &cobra.Command{
	Use:   "whoami",
	Short: "Show the signed-in user",
	Args:  cobra.NoArgs,
	Run: runWithServices(func(ctx context.Context, svc *services, w io.Writer, _ []string) int {
		return runWhoami(ctx, svc, w)
	}),
}

func init() {
	rootCmd.AddCommand(loginCmd, logoutCmd, registerCmd, whoamiCmd)

	loginCmd.Flags().StringVar(&loginEmail, "email", "", "Account email")
	loginCmd.Flags().StringVar(&loginPassword, "password", "", "Account password (or set "+passwordEnv+")")

	registerCmd.Flags().StringVar(&registerName, "name", "", "Display name (3 to 20 characters)")
	registerCmd.Flags().StringVar(&registerEmail, "email", "", "Account email")
	registerCmd.Flags().StringVar(&registerPassword, "password", "", "Password (or set "+passwordEnv+")")
}

func passwordOrEnv(flag string) string {
	if flag != "" {
		return flag
	}
	return os.Getenv(passwordEnv)
}

func runLogin(ctx context.Context, svc *services, w io.Writer, email, password string) int {
	form := validation.SignIn{Email: email, Password: password}
	if err := validation.Struct(&form); err != nil {
		return fail(w, err)
	}

	if err := svc.session.Login(ctx, form.Email, form.Password); err != nil {
		return fail(w, err)
	}

	u := svc.session.User()
	if IsJSONOutput() {
		return writeJSON(w, u)
	}
	fmt.Fprintf(w, "Signed in as %s <%s>\n", u.Name, u.Email)
	return exitOK
}

func runLogout(ctx context.Context, svc *services, w io.Writer) int {
	if svc.session.Init(ctx) != session.Authenticated {
		fmt.Fprintln(w, "Not signed in")
		return exitOK
	}
	if err := svc.session.Logout(); err != nil {
		return fail(w, err)
	}
	fmt.Fprintln(w, "Signed out")
	return exitOK
}

func runRegister(ctx context.Context, svc *services, w io.Writer, name, email, password string) int {
	form := validation.SignUp{Name: name, Email: email, Password: password, ConfirmPassword: password}
	if err := validation.Struct(&form); err != nil {
		return fail(w, err)
	}

	err := svc.client.Register(ctx, client.RegisterInput{
		Name:     form.Name,
		Email:    form.Email,
		Password: form.Password,
	})
	if err != nil {
		return fail(w, err)
	}

	if IsJSONOutput() {
		return writeJSON(w, map[string]string{"name": form.Name, "email": form.Email})
	}
	fmt.Fprintf(w, "Account created for %s. Sign in with 'kabar login --email %s'\n", form.Name, form.Email)
	return exitOK
}

func runWhoami(ctx context.Context, svc *services, w io.Writer) int {
	u, err := requireUser(ctx, svc)
	if err != nil {
		return fail(w, err)
	}
	if IsJSONOutput() {
		return writeJSON(w, u)
	}
	fmt.Fprintln(w, formatUserHuman(u))
	return exitOK
}

// formatUserHuman formats a user for human readability
func formatUserHuman(u *client.User) string {
	role := u.Role
	if role == "" {
		role = "USER"
	}
	return fmt.Sprintf(`Name:   %s
Email:  %s
Role:   %s`, u.Name, u.Email, role)
}
