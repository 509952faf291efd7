package tui

import "github.com/charmbracelet/lipgloss"

// Color palette
var (
	Primary   = lipgloss.Color("#FFB347") // Warm orange
	Secondary = lipgloss.Color("#6C757D")
	Text      = lipgloss.Color("#FFFFFF")
	TextMuted = lipgloss.Color("#888888")
	Border    = lipgloss.Color("#333333")
	Highlight = lipgloss.Color("#FFB347")
	Accent    = lipgloss.Color("#95E1A3") // Green
	Warning   = lipgloss.Color("#FF6B6B") // Red
)

// Styles
var (
	HeaderStyle = lipgloss.NewStyle().
			Bold(true).
			Foreground(Primary).
			Padding(0, 1)

	SidebarStyle = lipgloss.NewStyle().
			Width(24).
			BorderStyle(lipgloss.NormalBorder()).
			BorderRight(true).
			BorderForeground(Border).
			Padding(1, 1)

	RecipeListStyle = lipgloss.NewStyle().
			Padding(1, 2)

	CategoryItemStyle = lipgloss.NewStyle().
				Padding(0, 1)

	CategoryItemSelectedStyle = lipgloss.NewStyle().
					Padding(0, 1).
					Bold(true).
					Foreground(Highlight)

	RecipeItemStyle = lipgloss.NewStyle().
			Foreground(Text)

	RecipeItemSelectedStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(Highlight)

	MutedStyle = lipgloss.NewStyle().
			Foreground(TextMuted)

	MessageStyle = lipgloss.NewStyle().
			Foreground(Warning).
			Padding(0, 1)

	FooterStyle = lipgloss.NewStyle().
			Foreground(Secondary).
			Padding(0, 1)

	DetailTitleStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(Primary)

	DetailSectionStyle = lipgloss.NewStyle().
				Bold(true).
				Foreground(Accent)
)
