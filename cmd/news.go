// ABOUTME: News commands: list, search, show, add, update, and delete
// ABOUTME: Publishing and editing are checked against the signed-in user's role

package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/kabar-app/kabar/internal/client"
	"github.com/kabar-app/kabar/internal/storage"
	"github.com/kabar-app/kabar/internal/validation"
	"github.com/spf13/cobra"
)

// errAdminOnly is returned when a non-admin tries to publish
var errAdminOnly = errors.New("only admins can publish news")

// newsFlags are the editable fields shared by add and update
type newsFlags struct {
	title    string
	content  string
	category int
	image    string
}

var (
	newsListCategory int
	newsAdd          newsFlags
	newsUpdate       newsFlags
)

var newsCmd = &cobra.Command{
	Use:     "news",
	Aliases: []string{"berita"},
	Short:   "Browse and manage news",
}

var newsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the latest news",
	Args:  cobra.NoArgs,
	Run: runWithServices(func(ctx context.Context, svc *services, w io.Writer, _ []string) int {
		return runNewsList(ctx, svc, w, newsListCategory)
	}),
}

var newsSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Search news by title",
	Args:  cobra.MinimumNArgs(1),
	Run: runWithServices(func(ctx context.Context, svc *services, w io.Writer, args []string) int {
		return runNewsSearch(ctx, svc, w, strings.Join(args, " "))
	}),
}

var newsShowCmd = &cobra.Command{
	Use:   "show <id>",
	Short: "Show one article",
	Args:  cobra.ExactArgs(1),
	Run: runWithServices(func(ctx context.Context, svc *services, w io.Writer, args []string) int {
		return runNewsShow(ctx, svc, w, args[0])
	}),
}

var newsAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Publish an article (admins only)",
	Long: `Publish an article. --image accepts either an image URL or a local file,
which is uploaded to object storage first.

Exit codes:
  0 - Published
  1 - Invalid input
  2 - Error (not signed in, not an admin, backend failure)`,
	Args: cobra.NoArgs,
	Run: runWithServices(func(ctx context.Context, svc *services, w io.Writer, _ []string) int {
		return runNewsAdd(ctx, svc, w, newsAdd)
	}),
}

var newsUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Edit an article; only the given fields change",
	Args:  cobra.ExactArgs(1),
	Run: runWithServices(func(ctx context.Context, svc *services, w io.Writer, args []string) int {
		return runNewsUpdate(ctx, svc, w, args[0], newsUpdate)
	}),
}

var newsDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete an article",
	Args:  cobra.ExactArgs(1),
	Run: runWithServices(func(ctx context.Context, svc *services, w io.Writer, args []string) int {
		return runNewsDelete(ctx, svc, w, args[0])
	}),
}

func init() {
	rootCmd.AddCommand(newsCmd)
	newsCmd.AddCommand(newsListCmd, newsSearchCmd, newsShowCmd, newsAddCmd, newsUpdateCmd, newsDeleteCmd)

	newsListCmd.Flags().IntVar(&newsListCategory, "category", 0, "Only show news in this category id")

	bindNewsFlags(newsAddCmd, &newsAdd)
	bindNewsFlags(newsUpdateCmd, &newsUpdate)
}

func bindNewsFlags(cmd *cobra.Command, f *newsFlags) {
	cmd.Flags().StringVar(&f.title, "title", "", "Title (10 to 100 characters)")
	cmd.Flags().StringVar(&f.content, "content", "", "Article body")
	cmd.Flags().IntVar(&f.category, "category", 0, "Category id")
	cmd.Flags().StringVar(&f.image, "image", "", "Image URL or local image file")
}

func runNewsList(ctx context.Context, svc *services, w io.Writer, categoryID int) int {
	if _, err := requireUser(ctx, svc); err != nil {
		return fail(w, err)
	}

	var items []client.NewsItem
	if categoryID > 0 {
		cat, err := svc.client.GetCategory(ctx, categoryID, true)
		if err != nil {
			return fail(w, err)
		}
		items = cat.News
	} else {
		var err error
		if items, err = svc.client.ListNews(ctx); err != nil {
			return fail(w, err)
		}
	}

	if IsJSONOutput() {
		return writeJSON(w, items)
	}
	writeNewsTable(w, items)
	return exitOK
}

func runNewsSearch(ctx context.Context, svc *services, w io.Writer, q string) int {
	q = strings.TrimSpace(q)
	if len([]rune(q)) <= svc.cfg.SearchMinLen {
		return fail(w, validation.Errors{
			"query": fmt.Sprintf("search needs at least %d characters", svc.cfg.SearchMinLen+1),
		})
	}
	if _, err := requireUser(ctx, svc); err != nil {
		return fail(w, err)
	}

	items, err := svc.client.SearchNews(ctx, q)
	if err != nil {
		return fail(w, err)
	}
	if IsJSONOutput() {
		return writeJSON(w, items)
	}
	if len(items) == 0 {
		fmt.Fprintf(w, "No news matches %q\n", q)
		return exitOK
	}
	writeNewsTable(w, items)
	return exitOK
}

func runNewsShow(ctx context.Context, svc *services, w io.Writer, arg string) int {
	id, err := parseID(arg)
	if err != nil {
		return fail(w, err)
	}
	if _, err := requireUser(ctx, svc); err != nil {
		return fail(w, err)
	}

	item, err := svc.client.GetNews(ctx, id)
	if err != nil {
		return fail(w, err)
	}
	if IsJSONOutput() {
		return writeJSON(w, item)
	}
	fmt.Fprintln(w, formatNewsHuman(item))
	return exitOK
}

func runNewsAdd(ctx context.Context, svc *services, w io.Writer, f newsFlags) int {
	u, err := requireUser(ctx, svc)
	if err != nil {
		return fail(w, err)
	}
	if !u.IsAdmin() {
		return fail(w, errAdminOnly)
	}

	form := validation.News{Title: f.title, Body: f.content, CategoryID: f.category}
	if err := validation.Struct(&form); err != nil {
		return fail(w, err)
	}

	image, err := resolveImage(ctx, svc, f.image)
	if err != nil {
		return fail(w, err)
	}

	item, err := svc.client.CreateNews(ctx, client.NewsInput{
		Title:      form.Title,
		Body:       form.Body,
		CategoryID: form.CategoryID,
		Image:      image,
	})
	if err != nil {
		return fail(w, err)
	}
	if IsJSONOutput() {
		return writeJSON(w, item)
	}
	fmt.Fprintf(w, "Published #%d %s\n", item.ID, item.Title)
	return exitOK
}

func runNewsUpdate(ctx context.Context, svc *services, w io.Writer, arg string, f newsFlags) int {
	id, err := parseID(arg)
	if err != nil {
		return fail(w, err)
	}

	input, err := newsPatch(f)
	if err != nil {
		return fail(w, err)
	}
	if input == (client.NewsInput{}) && f.image == "" {
		return fail(w, validation.Errors{"news": "nothing to update; pass --title, --content, --category or --image"})
	}

	u, err := requireUser(ctx, svc)
	if err != nil {
		return fail(w, err)
	}
	current, err := svc.client.GetNews(ctx, id)
	if err != nil {
		return fail(w, err)
	}
	if !u.CanModify(current.UserID) {
		return fail(w, errors.New("you can only edit your own news"))
	}

	if input.Image, err = resolveImage(ctx, svc, f.image); err != nil {
		return fail(w, err)
	}

	item, err := svc.client.UpdateNews(ctx, id, input)
	if err != nil {
		return fail(w, err)
	}
	if IsJSONOutput() {
		return writeJSON(w, item)
	}
	fmt.Fprintf(w, "Updated #%d %s\n", item.ID, item.Title)
	return exitOK
}

func runNewsDelete(ctx context.Context, svc *services, w io.Writer, arg string) int {
	id, err := parseID(arg)
	if err != nil {
		return fail(w, err)
	}
	u, err := requireUser(ctx, svc)
	if err != nil {
		return fail(w, err)
	}
	current, err := svc.client.GetNews(ctx, id)
	if err != nil {
		return fail(w, err)
	}
	if !u.CanModify(current.UserID) {
		return fail(w, errors.New("you can only delete your own news"))
	}

	if err := svc.client.DeleteNews(ctx, id); err != nil {
		return fail(w, err)
	}
	if IsJSONOutput() {
		return writeJSON(w, map[string]any{"deleted": id})
	}
	fmt.Fprintf(w, "Deleted #%d\n", id)
	return exitOK
}

// newsPatch validates only the fields that were given
func newsPatch(f newsFlags) (client.NewsInput, error) {
	var input client.NewsInput
	errs := validation.Errors{}
	check := func(field string, value any) {
		if err := validation.Var(field, value, validation.Rule(validation.News{}, field)); err != nil {
			errs[field] = err.Error()
		}
	}

	if f.title != "" {
		input.Title = strings.TrimSpace(f.title)
		check("title", input.Title)
	}
	if f.content != "" {
		input.Body = strings.TrimSpace(f.content)
		check("content", input.Body)
	}
	if f.category != 0 {
		input.CategoryID = f.category
		check("category", input.CategoryID)
	}
	if len(errs) > 0 {
		return client.NewsInput{}, errs
	}
	return input, nil
}

// resolveImage returns image unchanged when it is a URL. A local path is
// checked and uploaded, and the public URL is returned.
func resolveImage(ctx context.Context, svc *services, image string) (string, error) {
	image = strings.TrimSpace(image)
	if image == "" {
		return "", nil
	}
	if validation.Var("image", image, validation.Rule(validation.News{}, "image")) == nil {
		return image, nil
	}

	if err := storage.CheckImage(image); err != nil {
		return "", validation.Errors{"image": err.Error()}
	}
	if svc.uploader == nil {
		return "", storage.ErrNotConfigured
	}
	url, err := svc.uploader.UploadFile(ctx, storage.DefaultFolder, image)
	if err != nil {
		return "", err
	}
	svc.logger.Info("Uploaded image", "path", image, "url", url)
	return url, nil
}

func writeNewsTable(w io.Writer, items []client.NewsItem) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tTITLE\tCATEGORY\tAUTHOR\tPUBLISHED")
	for _, n := range items {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\t%s\n",
			n.ID, truncate(n.Title, 48), n.CategoryName(), n.AuthorName(), n.CreatedAt.Format("2006-01-02"))
	}
	tw.Flush()
}

// formatNewsHuman formats an article for human readability
func formatNewsHuman(n *client.NewsItem) string {
	image := n.Image
	if image == "" {
		image = "-"
	}
	return fmt.Sprintf(`%s

Category:   %s
Author:     %s
Published:  %s
Image:      %s

%s`,
		n.Title,
		n.CategoryName(),
		n.AuthorName(),
		n.CreatedAt.Format("2006-01-02 15:04"),
		image,
		n.Body)
}

// truncate shortens s to max runes with an ellipsis
func truncate(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return string(r[:max-1]) + "…"
}
