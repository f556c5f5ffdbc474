// ABOUTME: Motivation commands: list, add, update, and delete
// ABOUTME: Users may change their own posts, admins may change any

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/kabar-app/kabar/internal/client"
	"github.com/kabar-app/kabar/internal/validation"
	"github.com/spf13/cobra"
)

var (
	motivationAddText    string
	motivationUpdateText string
)

var motivationsCmd = &cobra.Command{
	Use:     "motivations",
	Aliases: []string{"motivation", "motivasi"},
	Short:   "Read and share motivations",
}

var motivationsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List motivations",
	Args:  cobra.NoArgs,
	Run: runWithServices(func(ctx context.Context, svc *services, w io.Writer, _ []string) int {
		return runMotivationsList(ctx, svc, w)
	}),
}

var motivationsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Share a motivation",
	Args:  cobra.NoArgs,
	Run: runWithServices(func(ctx context.Context, svc *services, w io.Writer, _ []string) int {
		return runMotivationsAdd(ctx, svc, w, motivationAddText)
	}),
}

var motivationsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Edit a motivation",
	Args:  cobra.ExactArgs(1),
	Run: runWithServices(func(ctx context.Context, svc *services, w io.Writer, args []string) int {
		return runMotivationsUpdate(ctx, svc, w, args[0], motivationUpdateText)
	}),
}

var motivationsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a motivation",
	Args:  cobra.ExactArgs(1),
	Run: runWithServices(func(ctx context.Context, svc *services, w io.Writer, args []string) int {
		return runMotivationsDelete(ctx, svc, w, args[0])
	}),
}

func init() {
	rootCmd.AddCommand(motivationsCmd)
	motivationsCmd.AddCommand(motivationsListCmd, motivationsAddCmd, motivationsUpdateCmd, motivationsDeleteCmd)

	motivationsAddCmd.Flags().StringVar(&motivationAddText, "text", "", "Motivation text (3 to 200 characters)")
	motivationsUpdateCmd.Flags().StringVar(&motivationUpdateText, "text", "", "New text (10 to 500 characters)")
}

func runMotivationsList(ctx context.Context, svc *services, w io.Writer) int {
	if _, err := requireUser(ctx, svc); err != nil {
		return fail(w, err)
	}
	items, err := svc.client.ListMotivations(ctx)
	if err != nil {
		return fail(w, err)
	}
	if IsJSONOutput() {
		return writeJSON(w, items)
	}
	if len(items) == 0 {
		fmt.Fprintln(w, "No motivations yet")
		return exitOK
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tAUTHOR\tMOTIVATION")
	for _, m := range items {
		author := "Unknown"
		if m.User != nil && m.User.Name != "" {
			author = m.User.Name
		}
		fmt.Fprintf(tw, "%d\t%s\t%s\n", m.ID, author, truncate(strings.ReplaceAll(m.Text, "\n", " "), 60))
	}
	tw.Flush()
	return exitOK
}

func runMotivationsAdd(ctx context.Context, svc *services, w io.Writer, text string) int {
	form := validation.Motivation{Text: text}
	if err := validation.Struct(&form); err != nil {
		return fail(w, err)
	}
	u, err := requireUser(ctx, svc)
	if err != nil {
		return fail(w, err)
	}

	m, err := svc.client.CreateMotivation(ctx, client.MotivationInput{Text: form.Text, UserID: u.ID})
	if err != nil {
		return fail(w, err)
	}
	if IsJSONOutput() {
		return writeJSON(w, m)
	}
	fmt.Fprintf(w, "Shared motivation #%d\n", m.ID)
	return exitOK
}

func runMotivationsUpdate(ctx context.Context, svc *services, w io.Writer, arg, text string) int {
	id, err := parseID(arg)
	if err != nil {
		return fail(w, err)
	}
	form := validation.MotivationUpdate{Text: text}
	if err := validation.Struct(&form); err != nil {
		return fail(w, err)
	}
	if code, ok := checkMotivationOwner(ctx, svc, w, id); !ok {
		return code
	}

	m, err := svc.client.UpdateMotivation(ctx, id, client.MotivationInput{Text: form.Text})
	if err != nil {
		return fail(w, err)
	}
	if IsJSONOutput() {
		return writeJSON(w, m)
	}
	fmt.Fprintf(w, "Updated motivation #%d\n", m.ID)
	return exitOK
}

func runMotivationsDelete(ctx context.Context, svc *services, w io.Writer, arg string) int {
	id, err := parseID(arg)
	if err != nil {
		return fail(w, err)
	}
	if code, ok := checkMotivationOwner(ctx, svc, w, id); !ok {
		return code
	}

	if err := svc.client.DeleteMotivation(ctx, id); err != nil {
		return fail(w, err)
	}
	if IsJSONOutput() {
		return writeJSON(w, map[string]any{"deleted": id})
	}
	fmt.Fprintf(w, "Deleted motivation #%d\n", id)
	return exitOK
}

// checkMotivationOwner fails unless the signed-in user may change motivation id
func checkMotivationOwner(ctx context.Context, svc *services, w io.Writer, id int) (int, bool) {
	u, err := requireUser(ctx, svc)
	if err != nil {
		return fail(w, err), false
	}
	m, err := svc.client.GetMotivation(ctx, id)
	if err != nil {
		return fail(w, err), false
	}
	if !u.CanModify(m.UserID) {
		return fail(w, errors.New("you can only change your own motivations")), false
	}
	return exitOK, true
}
