package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// DefaultThemeName is used when prefs name no known theme.
const DefaultThemeName = "Nightfox"

// Theme is a terminal palette.
type Theme struct {
	Name string

	Text    string
	Muted   string
	Faint   string
	Accent  string
	Success string
	Warning string
	Danger  string
	Info    string

	// StatusColors maps import job and start-import states to badge colors.
	StatusColors map[string]string
	// RarityColors maps item rarity (3, 4, 5) to text colors.
	RarityColors map[int]string
}

// Styles returns lipgloss styles for this theme.
func (t Theme) Styles() Styles {
	return Styles{
		Text:        lipgloss.NewStyle().Foreground(lipgloss.Color(t.Text)),
		MutedText:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.Muted)),
		FaintText:   lipgloss.NewStyle().Foreground(lipgloss.Color(t.Faint)),
		AccentText:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.Accent)),
		SuccessText: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Success)).Bold(true),
		WarningText: lipgloss.NewStyle().Foreground(lipgloss.Color(t.Warning)),
		DangerText:  lipgloss.NewStyle().Foreground(lipgloss.Color(t.Danger)).Bold(true),
		InfoText:    lipgloss.NewStyle().Foreground(lipgloss.Color(t.Info)),
		Heading:     lipgloss.NewStyle().Foreground(lipgloss.Color(t.Accent)).Bold(true),

		statusColors: t.StatusColors,
		rarityColors: t.RarityColors,
		text:         t.Text,
		muted:        t.Muted,
	}
}

// Styles contains pre-built lipgloss styles for a theme.
type Styles struct {
	Text        lipgloss.Style
	MutedText   lipgloss.Style
	FaintText   lipgloss.Style
	AccentText  lipgloss.Style
	SuccessText lipgloss.Style
	WarningText lipgloss.Style
	DangerText  lipgloss.Style
	InfoText    lipgloss.Style
	Heading     lipgloss.Style

	statusColors map[string]string
	rarityColors map[int]string
	text         string
	muted        string
}

// StatusStyle returns a badge style for a backend state such as "QUEUED".
func (s Styles) StatusStyle(state string) lipgloss.Style {
	color := s.statusColors[strings.ToUpper(strings.TrimSpace(state))]
	if color == "" {
		color = s.muted
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color)).Bold(true)
}

// RarityStyle returns the text style for an item of the given rarity.
func (s Styles) RarityStyle(rarity int) lipgloss.Style {
	color := s.rarityColors[rarity]
	if color == "" {
		color = s.text
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(color))
}

var themes = map[string]Theme{
	"Nightfox": nightfoxTheme(),
	"Kanagawa": kanagawaTheme(),
	"Slate":    slateTheme(),
}

var themeOrder = []string{"Nightfox", "Kanagawa", "Slate"}

// GetTheme returns a theme by name, falling back to the default.
func GetTheme(name string) Theme {
	if t, ok := themes[name]; ok {
		return t
	}
	return themes[DefaultThemeName]
}

// NextTheme returns the next theme name in the cycle.
func NextTheme(current string) string {
	for i, name := range themeOrder {
		if name == current {
			return themeOrder[(i+1)%len(themeOrder)]
		}
	}
	return themeOrder[0]
}

// ThemeNames returns available theme names.
func ThemeNames() []string {
	return append([]string(nil), themeOrder...)
}

func nightfoxTheme() Theme {
	// Nightfox palette: https://github.com/EdenEast/nightfox.nvim
	return Theme{
		Name:    "Nightfox",
		Text:    "#cdcecf", // fg1
		Muted:   "#738091", // comment
		Faint:   "#71839b", // fg3
		Accent:  "#719cd6", // blue
		Success: "#81b29a", // green
		Warning: "#dbc074", // yellow
		Danger:  "#c94f6d", // red
		Info:    "#63cdcf", // cyan

		StatusColors: map[string]string{
			"NO_JOB":               "#738091",
			"QUEUED":               "#63cdcf",
			"ACTIVE":               "#719cd6",
			"COMPLETED_RATE_LIMIT": "#81b29a",
			"NOT_AUTHENTICATED":    "#dbc074",
			"CREATED":              "#81b29a",
			"MISSING_AUTHKEY":      "#dbc074",
			"AUTHKEY_INVALID":      "#c94f6d",
		},
		RarityColors: map[int]string{
			3: "#719cd6",
			4: "#9d79d6", // magenta
			5: "#f4a261", // orange
		},
	}
}

func kanagawaTheme() Theme {
	// Kanagawa palette: https://github.com/rebelot/kanagawa.nvim
	return Theme{
		Name:    "Kanagawa",
		Text:    "#DCD7BA", // fujiWhite
		Muted:   "#C8C093", // oldWhite
		Faint:   "#727169", // fujiGray
		Accent:  "#7E9CD8", // crystalBlue
		Success: "#98BB6C", // springGreen
		Warning: "#E6C384", // carpYellow
		Danger:  "#E46876", // waveRed
		Info:    "#7FB4CA", // springBlue

		StatusColors: map[string]string{
			"NO_JOB":               "#727169",
			"QUEUED":               "#7FB4CA",
			"ACTIVE":               "#7E9CD8",
			"COMPLETED_RATE_LIMIT": "#98BB6C",
			"NOT_AUTHENTICATED":    "#E6C384",
			"CREATED":              "#98BB6C",
			"MISSING_AUTHKEY":      "#E6C384",
			"AUTHKEY_INVALID":      "#E46876",
		},
		RarityColors: map[int]string{
			3: "#7E9CD8",
			4: "#957FB8", // oniViolet
			5: "#FFA066", // surimiOrange
		},
	}
}

func slateTheme() Theme {
	// Tailwind CSS Slate/Sky palette: https://tailwindcss.com/docs/colors
	return Theme{
		Name:    "Slate",
		Text:    "#f1f5f9", // slate-100
		Muted:   "#94a3b8", // slate-400
		Faint:   "#64748b", // slate-500
		Accent:  "#38bdf8", // sky-400
		Success: "#22c55e", // green-500
		Warning: "#f59e0b", // amber-500
		Danger:  "#ef4444", // red-500
		Info:    "#06b6d4", // cyan-500

		StatusColors: map[string]string{
			"NO_JOB":               "#64748b",
			"QUEUED":               "#38bdf8",
			"ACTIVE":               "#0ea5e9",
			"COMPLETED_RATE_LIMIT": "#16a34a",
			"NOT_AUTHENTICATED":    "#f59e0b",
			"CREATED":              "#22c55e",
			"MISSING_AUTHKEY":      "#f59e0b",
			"AUTHKEY_INVALID":      "#dc2626",
		},
		RarityColors: map[int]string{
			3: "#38bdf8",
			4: "#a855f7", // purple-500
			5: "#f59e0b", // amber-500
		},
	}
}
