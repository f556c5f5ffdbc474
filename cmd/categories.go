// ABOUTME: Category commands: list and show
// ABOUTME: show includes the category's news

package cmd

import (
	"context"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var categoriesCmd = &cobra.Command{
	Use:     "categories",
	Aliases: []string{"category", "kategori"},
	Short:   "Browse news categories",
}

var categoriesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List categories",
	Args:  cobra.NoArgs,
	Run: runWithServices(func(ctx context.Context, svc *services, w io.Writer, _ []string) int {
		return runCategoriesList(ctx, svc, w)
	}),
}

var categoriesShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show a category and its news",
	Args:  cobra.ExactArgs(1),
	Run: runWithServices(func(ctx context.Context, svc *services, w io.Writer, args []string) int {
		return runCategoriesShow(ctx, svc, w, args[0])
	}),
}

func init() {
	rootCmd.AddCommand(categoriesCmd)
	categoriesCmd.AddCommand(categoriesListCmd, categoriesShowCmd)
}

func runCategoriesList(ctx context.Context, svc *services, w io.Writer) int {
	if _, err := requireUser(ctx, svc); err != nil {
		return fail(w, err)
	}
	cats, err := svc.client.ListCategories(ctx)
	if err != nil {
		return fail(w, err)
	}
	if IsJSONOutput() {
		return writeJSON(w, cats)
	}

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME")
	for _, c := range cats {
		fmt.Fprintf(tw, "%d\t%s\n", c.ID, c.Name)
	}
	tw.Flush()
	return exitOK
}

func runCategoriesShow(ctx context.Context, svc *services, w io.Writer, arg string) int {
	id, err := parseID(arg)
	if err != nil {
		return fail(w, err)
	}
	if _, err := requireUser(ctx, svc); err != nil {
		return fail(w, err)
	}
	cat, err := svc.client.GetCategory(ctx, id, true)
	if err != nil {
		return fail(w, err)
	}
	if IsJSONOutput() {
		return writeJSON(w, cat)
	}

	fmt.Fprintf(w, "%s (%d articles)\n\n", cat.Name, len(cat.News))
	if len(cat.News) == 0 {
		fmt.Fprintln(w, "No news in this category yet")
		return exitOK
	}
	writeNewsTable(w, cat.News)
	return exitOK
}
