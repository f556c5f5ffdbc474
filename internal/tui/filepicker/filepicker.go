// ABOUTME: Image picker TUI component for the news form
// ABOUTME: Offers recent images, a path or URL input, keeping the current image, or none

package filepicker

import (
	"errors"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/kabar-app/kabar/internal/storage"
	"github.com/kabar-app/kabar/internal/tui/styles"
)

type state int

const (
	stateList state = iota
	stateInput
)

// Source describes where the chosen image comes from
type Source int

const (
	SourceNone Source = iota
	SourceFile
	SourceURL
	SourceKeep
)

// String returns the string representation of a Source
func (s Source) String() string {
	switch s {
	case SourceNone:
		return "none"
	case SourceFile:
		return "file"
	case SourceURL:
		return "url"
	case SourceKeep:
		return "keep"
	default:
		return "unknown"
	}
}

// ImageSelectedMsg is sent when the user settles on an image choice.
// Path is set for SourceFile, URL for SourceURL and SourceKeep.
type ImageSelectedMsg struct {
	Source Source
	Path   string
	URL    string
}

// CancelledMsg is sent when the user backs out of the picker
type CancelledMsg struct{}

// FilePicker is the image selection component
type FilePicker struct {
	recentFiles []string
	currentURL  string
	cursor      int
	state       state
	textInput   textinput.Model
	err         string
	width       int
	height      int
}

// New creates a picker. currentURL is the article's existing image, if any.
func New(recentFiles []string, currentURL string) *FilePicker {
	ti := textinput.New()
	ti.Placeholder = "~/Pictures/photo.jpg or https://..."
	ti.CharLimit = 512
	ti.Width = 60

	return &FilePicker{
		recentFiles: recentFiles,
		currentURL:  currentURL,
		state:       stateList,
		textInput:   ti,
	}
}

// Init implements tea.Model
func (fp *FilePicker) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (fp *FilePicker) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		fp.width = msg.Width
		fp.height = msg.Height
		return fp, nil

	case tea.KeyMsg:
		fp.err = ""

		switch fp.state {
		case stateList:
			return fp.updateList(msg)
		case stateInput:
			return fp.updateInput(msg)
		}
	}

	if fp.state == stateInput {
		var cmd tea.Cmd
		fp.textInput, cmd = fp.textInput.Update(msg)
		return fp, cmd
	}
	return fp, nil
}

// InputActive reports whether the path input has focus
func (fp *FilePicker) InputActive() bool {
	return fp.state == stateInput
}

func (fp *FilePicker) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "up", "k":
		if fp.cursor > 0 {
			fp.cursor--
		}
	case "down", "j":
		if fp.cursor < fp.listItemCount()-1 {
			fp.cursor++
		}
	case "enter":
		return fp.selectListItem()
	case "esc", "b":
		return fp, func() tea.Msg { return CancelledMsg{} }
	}

	return fp, nil
}

func (fp *FilePicker) updateInput(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc":
		fp.state = stateList
		fp.textInput.SetValue("")
		fp.textInput.Blur()
		return fp, nil
	case "enter":
		value := strings.TrimSpace(fp.textInput.Value())
		if value == "" {
			fp.err = "Please enter a file path or image URL"
			return fp, nil
		}
		if isURL(value) {
			return fp, selected(ImageSelectedMsg{Source: SourceURL, URL: value})
		}
		return fp.pickFile(value)
	}

	var cmd tea.Cmd
	fp.textInput, cmd = fp.textInput.Update(msg)
	return fp, cmd
}

// options after the recent images: [keep current], enter path, no image
func (fp *FilePicker) hasKeep() bool {
	return fp.currentURL != ""
}

func (fp *FilePicker) listItemCount() int {
	count := len(fp.recentFiles) + 2
	if fp.hasKeep() {
		count++
	}
	return count
}

func (fp *FilePicker) selectListItem() (tea.Model, tea.Cmd) {
	idx := fp.cursor
	if fp.hasKeep() {
		if idx == 0 {
			return fp, selected(ImageSelectedMsg{Source: SourceKeep, URL: fp.currentURL})
		}
		idx--
	}

	recentCount := len(fp.recentFiles)
	switch {
	case idx < recentCount:
		return fp.pickFile(fp.recentFiles[idx])
	case idx == recentCount:
		fp.state = stateInput
		fp.textInput.Focus()
		return fp, textinput.Blink
	default:
		return fp, selected(ImageSelectedMsg{Source: SourceNone})
	}
}

func (fp *FilePicker) pickFile(path string) (tea.Model, tea.Cmd) {
	expanded := expandPath(path)

	if err := storage.CheckImage(expanded); err != nil {
		switch {
		case os.IsNotExist(err):
			fp.err = "File not found: " + path
		case os.IsPermission(err):
			fp.err = "Cannot read file: permission denied"
		case errors.Is(err, storage.ErrTooLarge):
			fp.err = "Image is larger than 10 MB"
		case errors.Is(err, storage.ErrNotImage):
			fp.err = "Not an image: " + filepath.Base(path)
		default:
			fp.err = "Error reading file: " + err.Error()
		}
		return fp, nil
	}

	return fp, selected(ImageSelectedMsg{Source: SourceFile, Path: expanded})
}

func selected(msg ImageSelectedMsg) tea.Cmd {
	return func() tea.Msg { return msg }
}

func isURL(s string) bool {
	u, err := url.Parse(s)
	return err == nil && (u.Scheme == "http" || u.Scheme == "https") && u.Host != ""
}

// expandPath expands ~ to home directory
func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return home + path[1:]
		}
	} else if path == "~" {
		if home, err := os.UserHomeDir(); err == nil {
			return home
		}
	}
	return path
}

// SetError sets an error message to display
func (fp *FilePicker) SetError(msg string) {
	fp.err = msg
}

// View implements tea.Model
func (fp *FilePicker) View() string {
	if fp.state == stateInput {
		return fp.viewInput()
	}
	return fp.viewList()
}

func (fp *FilePicker) row(b *strings.Builder, idx int, label string) {
	cursor := "  "
	style := styles.Normal
	if idx == fp.cursor {
		cursor = "> "
		style = styles.Selected
	}
	b.WriteString(cursor + style.Render(label) + "\n")
}

func (fp *FilePicker) viewList() string {
	var b strings.Builder

	b.WriteString(styles.Subtitle.Render("Choose an image"))
	b.WriteString("\n\n")

	idx := 0
	if fp.hasKeep() {
		fp.row(&b, idx, "Keep current image")
		idx++
	}

	if len(fp.recentFiles) > 0 {
		b.WriteString(styles.Meta.Render("Recent images:"))
		b.WriteString("\n")
		for _, path := range fp.recentFiles {
			display := path
			// Long paths keep their tail, which holds the file name.
			if fp.width > 20 && len(display) > fp.width-10 {
				display = "..." + display[len(display)-(fp.width-13):]
			}
			fp.row(&b, idx, display)
			idx++
		}

		dividerWidth := min(40, fp.width-4)
		if dividerWidth < 1 {
			dividerWidth = 40
		}
		b.WriteString(styles.Meta.Render(strings.Repeat("─", dividerWidth)))
		b.WriteString("\n")
	}

	fp.row(&b, idx, "Enter path or URL...")
	fp.row(&b, idx+1, "No image")

	if fp.err != "" {
		b.WriteString("\n")
		b.WriteString(styles.StatusCritical.Render("Error: " + fp.err))
	}

	return b.String()
}

func (fp *FilePicker) viewInput() string {
	var b strings.Builder

	b.WriteString(styles.Subtitle.Render("Image path or URL"))
	b.WriteString("\n\n")
	b.WriteString(fp.textInput.View())
	b.WriteString("\n")
	b.WriteString(styles.Meta.Render("JPEG, PNG, GIF or WebP up to 10 MB"))

	if fp.err != "" {
		b.WriteString("\n\n")
		b.WriteString(styles.StatusCritical.Render("Error: " + fp.err))
	}

	return b.String()
}
