// ABOUTME: Icon system with Nerd Font detection and Unicode fallback
// ABOUTME: Provides consistent iconography across different terminal capabilities

package icons

import (
	"os"
	"strings"
	"sync"
)

var (
	useNerdFonts     bool
	nerdFontDetected sync.Once
)

// detectNerdFonts checks if Nerd Fonts should be used
func detectNerdFonts() bool {
	// Explicit override via environment variable
	if env := os.Getenv("KABAR_NERD_FONTS"); env != "" {
		return env == "1" || strings.ToLower(env) == "true"
	}

	term := os.Getenv("TERM")
	termProgram := os.Getenv("TERM_PROGRAM")

	// Terminals that commonly ship with a Nerd Font configured
	nerdFontTerminals := []string{
		"iTerm.app",
		"alacritty",
		"WezTerm",
		"kitty",
		"ghostty",
	}

	for _, t := range nerdFontTerminals {
		if strings.Contains(termProgram, t) || strings.Contains(term, strings.ToLower(t)) {
			return true
		}
	}

	if os.Getenv("NERD_FONTS") == "1" {
		return true
	}

	// Default to Unicode fallback for maximum compatibility
	return false
}

// HasNerdFonts returns true if Nerd Fonts are available
func HasNerdFonts() bool {
	nerdFontDetected.Do(func() {
		useNerdFonts = detectNerdFonts()
	})
	return useNerdFonts
}

// Icon represents an icon with Nerd Font and Unicode fallback variants
type Icon struct {
	NerdFont string
	Fallback string
}

// String returns the appropriate icon based on font availability
func (i Icon) String() string {
	if HasNerdFonts() {
		return i.NerdFont
	}
	return i.Fallback
}

// Icon definitions - Nerd Font codepoints with Unicode fallbacks
var (
	// Application
	App = Icon{"󰎕", "◈"} // nf-md-newspaper

	// Tabs
	Home       = Icon{"󰋜", "⌂"} // nf-md-home
	Search     = Icon{"󰍉", "⌕"} // nf-md-magnify
	Motivation = Icon{"󰛨", "✦"} // nf-md-lightbulb_on
	Profile    = Icon{"󰀄", "☺"} // nf-md-account

	// Categories
	Technology    = Icon{"󰌢", "⌨"} // nf-md-laptop
	Economy       = Icon{"󰄔", "$"} // nf-md-cash
	Sports        = Icon{"󰒸", "⚽"} // nf-md-soccer
	Entertainment = Icon{"󰈰", "♫"} // nf-md-filmstrip
	Politics      = Icon{"󰀘", "⚖"} // nf-md-bank
	Category      = Icon{"󰎕", "▤"} // nf-md-newspaper

	// Status indicators
	CheckOK  = Icon{"", "✓"} // nf-oct-check_circle
	Warning  = Icon{"", "⚠"} // nf-oct-alert
	Critical = Icon{"", "✗"} // nf-oct-x_circle
	Info     = Icon{"", "ℹ"} // nf-oct-info

	// Actions
	Refresh = Icon{"󰑓", "↻"} // nf-md-refresh
	Add     = Icon{"󰐕", "+"} // nf-md-plus
	Edit    = Icon{"󰏫", "✎"} // nf-md-pencil
	Delete  = Icon{"󰆴", "⌫"} // nf-md-delete
	Back    = Icon{"󰁍", "←"} // nf-md-arrow_left
	Quit    = Icon{"󰗼", "×"} // nf-md-exit_to_app
	Image   = Icon{"󰋩", "▣"} // nf-md-image
	Author  = Icon{"󰏪", "✍"} // nf-md-pen
	Clock   = Icon{"󰥔", "◷"} // nf-md-clock_outline
)

// ForCategory returns the icon for a category name
func ForCategory(name string) Icon {
	switch name {
	case "Teknologi":
		return Technology
	case "Ekonomi":
		return Economy
	case "Olahraga":
		return Sports
	case "Hiburan":
		return Entertainment
	case "Politik":
		return Politics
	default:
		return Category
	}
}
