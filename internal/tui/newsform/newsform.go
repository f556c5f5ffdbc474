// ABOUTME: Multi-step add and edit form for news articles
// ABOUTME: Uses huh forms and the image picker with a visual progress indicator

package newsform

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"
	"github.com/kabar-app/kabar/internal/client"
	"github.com/kabar-app/kabar/internal/tui/filepicker"
	"github.com/kabar-app/kabar/internal/tui/icons"
	"github.com/kabar-app/kabar/internal/tui/styles"
	"github.com/kabar-app/kabar/internal/validation"
)

// CompleteMsg is sent when every step passes validation.
// ImagePath is a local file that still has to be uploaded; Form.Image
// already holds the URL for a typed or kept image.
type CompleteMsg struct {
	NewsID    int
	Form      validation.News
	ImagePath string
}

// CancelledMsg is sent when the form is abandoned
type CancelledMsg struct{}

// Step names for progress indicator
var stepNames = []string{"Headline", "Content", "Image"}

const (
	stepHeadline = iota + 1
	stepContent
	stepImage
)

// Form manages the news editor flow as a bubbletea model
type Form struct {
	newsID     int
	categories []client.Category
	recent     []string
	currentURL string

	form   *huh.Form
	picker *filepicker.FilePicker
	step   int
	width  int
	err    string

	submitting bool

	title      string
	body       string
	categoryID int
}

// New creates an add form
func New(categories []client.Category, recent []string) *Form {
	f := &Form{categories: categories, recent: recent, step: stepHeadline}
	if len(categories) > 0 {
		f.categoryID = categories[0].ID
	}
	f.form = f.createHeadlineForm()
	return f
}

// Edit creates a form prefilled from an existing article
func Edit(item client.NewsItem, categories []client.Category, recent []string) *Form {
	f := &Form{
		newsID:     item.ID,
		categories: categories,
		recent:     recent,
		currentURL: item.Image,
		step:       stepHeadline,
		title:      item.Title,
		body:       item.Body,
		categoryID: item.CategoryID,
	}
	f.form = f.createHeadlineForm()
	return f
}

// Editing reports whether the form updates an existing article
func (f *Form) Editing() bool {
	return f.newsID != 0
}

// Step returns the current step, starting at 1
func (f *Form) Step() int {
	return f.step
}

// Submitting reports whether the upload or save is running
func (f *Form) Submitting() bool {
	return f.submitting
}

// CapturesInput reports whether keystrokes belong to a text field
func (f *Form) CapturesInput() bool {
	if f.step == stepImage {
		return f.picker != nil && f.picker.InputActive()
	}
	return true
}

// SetError returns to the image step with msg after a failed save
func (f *Form) SetError(msg string) tea.Cmd {
	f.err = msg
	f.submitting = false
	f.step = stepImage
	f.picker = filepicker.New(f.recent, f.currentURL)
	return f.picker.Init()
}

func rule(field string) func(string) error {
	tag := validation.Rule(validation.News{}, field)
	return func(s string) error {
		return validation.Var(field, strings.TrimSpace(s), tag)
	}
}

func (f *Form) categoryOptions() []huh.Option[int] {
	options := make([]huh.Option[int], 0, len(f.categories))
	for _, c := range f.categories {
		options = append(options, huh.NewOption(icons.ForCategory(c.Name).String()+" "+c.Name, c.ID))
	}
	return options
}

func (f *Form) createHeadlineForm() *huh.Form {
	catTag := validation.Rule(validation.News{}, "category")
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Description("10 to 100 characters").
				Placeholder("What happened?").
				CharLimit(100).
				Value(&f.title).
				Validate(rule("title")),
			huh.NewSelect[int]().
				Title("Category").
				Description("Use ↑/↓ to select, Enter to confirm").
				Options(f.categoryOptions()...).
				Value(&f.categoryID).
				Validate(func(id int) error {
					return validation.Var("category", id, catTag)
				}),
		).Title(fmt.Sprintf("Step 1: %s", stepNames[0])),
	).WithTheme(styles.FormTheme()).WithShowHelp(false)
}

func (f *Form) createContentForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewText().
				Title("Content").
				Description("At least 10 characters").
				Lines(10).
				CharLimit(10000).
				Value(&f.body).
				Validate(rule("content")),
		).Title(fmt.Sprintf("Step 2: %s", stepNames[1])),
	).WithTheme(styles.FormTheme()).WithShowHelp(false)
}

// Init implements tea.Model
func (f *Form) Init() tea.Cmd {
	return f.form.Init()
}

// Update implements tea.Model
func (f *Form) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		f.width = msg.Width

	case tea.KeyMsg:
		if f.submitting {
			return f, nil
		}
		// The picker handles esc itself so it can leave its path input.
		if msg.String() == "esc" && f.step != stepImage {
			return f, func() tea.Msg { return CancelledMsg{} }
		}
		f.err = ""

	case filepicker.CancelledMsg:
		// Back from the image step to the content step
		f.step = stepContent
		f.picker = nil
		f.form = f.createContentForm()
		return f, f.form.Init()

	case filepicker.ImageSelectedMsg:
		return f, f.complete(msg)
	}

	if f.submitting {
		return f, nil
	}

	if f.step == stepImage {
		if f.picker == nil {
			return f, nil
		}
		model, cmd := f.picker.Update(msg)
		f.picker = model.(*filepicker.FilePicker)
		return f, cmd
	}

	form, cmd := f.form.Update(msg)
	if hf, ok := form.(*huh.Form); ok {
		f.form = hf
	}
	if f.form.State == huh.StateCompleted {
		return f, f.advanceStep()
	}
	return f, cmd
}

func (f *Form) advanceStep() tea.Cmd {
	switch f.step {
	case stepHeadline:
		if len(f.categories) == 0 {
			f.err = "No categories available; try again later"
			f.form = f.createHeadlineForm()
			return f.form.Init()
		}
		f.step = stepContent
		f.form = f.createContentForm()
		return f.form.Init()
	case stepContent:
		f.step = stepImage
		f.picker = filepicker.New(f.recent, f.currentURL)
		if f.width > 0 {
			f.picker.Update(tea.WindowSizeMsg{Width: f.width})
		}
		return f.picker.Init()
	}
	return nil
}

// complete validates the whole article and emits CompleteMsg
func (f *Form) complete(choice filepicker.ImageSelectedMsg) tea.Cmd {
	out := CompleteMsg{
		NewsID: f.newsID,
		Form: validation.News{
			Title:      f.title,
			Body:       f.body,
			CategoryID: f.categoryID,
		},
	}
	switch choice.Source {
	case filepicker.SourceFile:
		out.ImagePath = choice.Path
	case filepicker.SourceURL, filepicker.SourceKeep:
		out.Form.Image = choice.URL
	}

	if err := validation.Struct(&out.Form); err != nil {
		return f.failValidation(err)
	}

	f.submitting = true
	return func() tea.Msg { return out }
}

// failValidation returns to the first step holding an invalid field
func (f *Form) failValidation(err error) tea.Cmd {
	f.err = err.Error()
	f.picker = nil
	if errs, ok := err.(validation.Errors); ok && errs.Field("title") == "" && errs.Field("category") == "" {
		if errs.Field("content") != "" {
			f.step = stepContent
			f.form = f.createContentForm()
			return f.form.Init()
		}
		f.step = stepImage
		f.picker = filepicker.New(f.recent, f.currentURL)
		return f.picker.Init()
	}
	f.step = stepHeadline
	f.form = f.createHeadlineForm()
	return f.form.Init()
}

// SetWidth sets the form width for proper rendering
func (f *Form) SetWidth(width int) {
	f.width = width
}

// View implements tea.Model
func (f *Form) View() string {
	var sb strings.Builder

	sb.WriteString(f.renderProgress())
	sb.WriteString("\n\n")

	if f.step == stepImage && f.picker != nil {
		sb.WriteString(styles.Section.Render(fmt.Sprintf("Step 3: %s", stepNames[2])))
		sb.WriteString("\n")
		sb.WriteString(f.picker.View())
	} else {
		sb.WriteString(f.form.View())
	}

	if f.submitting {
		label := "Publishing..."
		if f.Editing() {
			label = "Saving changes..."
		}
		sb.WriteString("\n")
		sb.WriteString(styles.Meta.Render(label))
	}
	if f.err != "" {
		sb.WriteString("\n")
		sb.WriteString(styles.StatusCritical.Render(icons.Critical.String() + " " + f.err))
	}

	return sb.String()
}

// renderProgress renders the step progress indicator
func (f *Form) renderProgress() string {
	width := f.width - 1
	if width < 60 {
		width = 60
	}

	borderStyle := lipgloss.NewStyle().Foreground(styles.Muted)
	titleStyle := lipgloss.NewStyle().Foreground(styles.Primary)

	var steps []string
	for i, name := range stepNames {
		stepNum := i + 1
		var indicator string
		var nameStyle lipgloss.Style

		switch {
		case stepNum < f.step:
			indicator = lipgloss.NewStyle().Foreground(styles.Secondary).Render(icons.CheckOK.String())
			nameStyle = lipgloss.NewStyle().Foreground(styles.Muted)
		case stepNum == f.step:
			indicator = lipgloss.NewStyle().Foreground(styles.Primary).Bold(true).Render("●")
			nameStyle = lipgloss.NewStyle().Foreground(styles.Primary).Bold(true)
		default:
			indicator = lipgloss.NewStyle().Foreground(styles.Muted).Render("○")
			nameStyle = lipgloss.NewStyle().Foreground(styles.Muted)
		}

		steps = append(steps, fmt.Sprintf("%s %s", indicator, nameStyle.Render(name)))
	}
	stepsLine := strings.Join(steps, "    ")

	// "│  " + bar + " │" is 5 columns of chrome
	barWidth := width - 5
	filledWidth := (f.step * barWidth) / len(stepNames)
	filledBar := lipgloss.NewStyle().Foreground(styles.Primary).Render(strings.Repeat("━", filledWidth))
	emptyBar := lipgloss.NewStyle().Foreground(styles.Surface).Render(strings.Repeat("─", barWidth-filledWidth))

	label := "Publish news"
	if f.Editing() {
		label = "Edit news"
	}
	styledTitle := titleStyle.Render(label)
	topBorder := "┌─ " + styledTitle + " " + strings.Repeat("─", max(0, width-5-lipgloss.Width(label))) + "┐"
	stepsLinePadded := "│ " + stepsLine + strings.Repeat(" ", max(0, width-4-lipgloss.Width(stepsLine))) + " │"
	progressLine := "│  " + filledBar + emptyBar + " │"
	bottomBorder := "└" + strings.Repeat("─", width-2) + "┘"

	return borderStyle.Render(strings.Join([]string{
		topBorder,
		stepsLinePadded,
		progressLine,
		bottomBorder,
	}, "\n"))
}
