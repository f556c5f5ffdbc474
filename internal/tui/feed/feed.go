// ABOUTME: Rendering for news and motivation lists shared by every screen
// ABOUTME: Covers rows, scrolling windows, skeletons, and error and empty panels

package feed

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	"github.com/kabar-app/kabar/internal/client"
	"github.com/kabar-app/kabar/internal/tui/icons"
	"github.com/kabar-app/kabar/internal/tui/styles"
)

// newsRowHeight is the number of lines a news row occupies, including spacing
const newsRowHeight = 3

// motivationRowHeight is the number of lines a motivation row occupies
const motivationRowHeight = 4

// Truncate shortens s to max runes, adding an ellipsis when cut
func Truncate(s string, max int) string {
	r := []rune(s)
	if max <= 0 {
		return ""
	}
	if len(r) <= max {
		return s
	}
	if max <= 3 {
		return string(r[:max])
	}
	return string(r[:max-3]) + "..."
}

// TruncateWords keeps the first n words of s
func TruncateWords(s string, n int) string {
	words := strings.Fields(s)
	if len(words) <= n {
		return strings.Join(words, " ")
	}
	return strings.Join(words[:n], " ") + "..."
}

// Window returns the [start, end) slice of a list of total rows that keeps
// cursor visible when only visible rows fit.
func Window(total, cursor, visible int) (int, int) {
	if visible <= 0 || total <= visible {
		return 0, total
	}
	start := cursor - visible/2
	if start < 0 {
		start = 0
	}
	if start+visible > total {
		start = total - visible
	}
	return start, start + visible
}

func cursorMark(selected bool) string {
	if selected {
		return styles.Selected.Render("▌ ")
	}
	return "  "
}

// NewsRow renders one article with its category, author, and age
func NewsRow(item client.NewsItem, selected bool, width int, now time.Time) string {
	titleStyle := styles.Normal
	if selected {
		titleStyle = styles.Selected
	}
	inner := max(10, width-2)

	imageMark := ""
	if item.Image != "" {
		imageMark = icons.Image.String() + " "
	}
	title := titleStyle.Render(imageMark + Truncate(item.Title, inner-lipgloss.Width(imageMark)))
	meta := styles.Meta.Render(Truncate(fmt.Sprintf("%s • by %s • %s",
		item.CategoryName(), item.AuthorName(), TimeAgo(item.CreatedAt, now)), inner))

	return cursorMark(selected) + title + "\n" + cursorMark(selected) + meta + "\n"
}

// NewsList renders a scrollable list of articles within height lines
func NewsList(items []client.NewsItem, cursor, width, height int, now time.Time) string {
	if len(items) == 0 {
		return ""
	}
	visible := height / newsRowHeight
	if visible < 1 {
		visible = 1
	}
	start, end := Window(len(items), cursor, visible)

	var sb strings.Builder
	for i := start; i < end; i++ {
		sb.WriteString(NewsRow(items[i], i == cursor, width, now))
		if i < end-1 {
			sb.WriteString("\n")
		}
	}
	if end < len(items) {
		sb.WriteString(styles.Meta.Render(fmt.Sprintf("  … %d more", len(items)-end)))
	}
	return sb.String()
}

// MotivationRow renders one motivation with its author and role
func MotivationRow(m client.Motivation, selected, canModify bool, width int, now time.Time) string {
	inner := max(10, width-2)
	textStyle := styles.Normal
	if selected {
		textStyle = styles.Selected
	}

	author := "Unknown author"
	role := ""
	if m.User != nil {
		if m.User.Name != "" {
			author = m.User.Name
		}
		role = strings.ToLower(m.User.Role)
	}

	text := lipgloss.NewStyle().Width(inner).Render(textStyle.Render("“" + m.Text + "”"))
	lines := strings.Split(text, "\n")
	if len(lines) > 2 {
		lines = lines[:2]
		lines[1] = Truncate(lines[1], inner-1) + "…"
	}

	meta := fmt.Sprintf("%s %s", icons.Author.String(), author)
	if role != "" {
		meta += " (" + role + ")"
	}
	meta += " • " + TimeAgo(m.CreatedAt, now)
	if canModify {
		meta += " • " + icons.Edit.String() + " " + icons.Delete.String()
	}

	var sb strings.Builder
	for _, l := range lines {
		sb.WriteString(cursorMark(selected) + l + "\n")
	}
	sb.WriteString(cursorMark(selected) + styles.Meta.Render(Truncate(meta, inner)) + "\n")
	return sb.String()
}

// MotivationList renders a scrollable list of motivations
func MotivationList(items []client.Motivation, cursor, width, height int, now time.Time, canModify func(client.Motivation) bool) string {
	if len(items) == 0 {
		return ""
	}
	visible := height / motivationRowHeight
	if visible < 1 {
		visible = 1
	}
	start, end := Window(len(items), cursor, visible)

	var sb strings.Builder
	for i := start; i < end; i++ {
		sb.WriteString(MotivationRow(items[i], i == cursor, canModify(items[i]), width, now))
		if i < end-1 {
			sb.WriteString("\n")
		}
	}
	if end < len(items) {
		sb.WriteString(styles.Meta.Render(fmt.Sprintf("  … %d more", len(items)-end)))
	}
	return sb.String()
}

// CategoryStrip renders categories as chips, highlighting selected
func CategoryStrip(cats []client.Category, selected, width int, focused bool) string {
	if len(cats) == 0 {
		return styles.Meta.Render("No categories yet")
	}
	var chips []string
	used := 0
	start := 0
	// Scroll so the selected chip stays in view.
	for start < selected {
		total := 0
		for i := start; i <= selected; i++ {
			total += chipWidth(cats[i])
		}
		if total <= width {
			break
		}
		start++
	}
	for i := start; i < len(cats); i++ {
		label := icons.ForCategory(cats[i].Name).String() + " " + cats[i].Name
		style := styles.Chip
		if i == selected && focused {
			style = styles.ActiveChip
		}
		chip := style.Render(label)
		if used+lipgloss.Width(chip) > width && len(chips) > 0 {
			break
		}
		chips = append(chips, chip)
		used += lipgloss.Width(chip)
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, chips...)
}

func chipWidth(c client.Category) int {
	return lipgloss.Width(styles.Chip.Render(icons.ForCategory(c.Name).String() + " " + c.Name))
}

// Skeleton renders placeholder rows while data loads
func Skeleton(rows, width int) string {
	if rows < 1 {
		rows = 1
	}
	w := max(10, width-4)
	var sb strings.Builder
	for i := 0; i < rows; i++ {
		sb.WriteString("  " + styles.Skeleton(w*3/4) + "\n")
		sb.WriteString("  " + styles.Skeleton(w/3) + "\n")
		if i < rows-1 {
			sb.WriteString("\n")
		}
	}
	return sb.String()
}

// ErrorPanel renders a failure with a retry hint
func ErrorPanel(message string, width int) string {
	body := styles.StatusCritical.Render(icons.Warning.String()+" "+message) + "\n\n" +
		styles.KeyStyle.Render("r") + styles.Meta.Render(" Try again")
	return styles.ErrorPanel.Width(max(20, width-4)).Render(body)
}

// EmptyPanel renders an empty-state message
func EmptyPanel(message string, width int) string {
	return styles.Panel.Width(max(20, width-4)).Render(styles.Meta.Render(icons.Info.String() + " " + message))
}
