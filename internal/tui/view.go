package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/existflow/carnet/internal/model"
)

// View renders the TUI
func (m Model) View() string {
	if m.mode == ModeHelp {
		return m.viewHelp()
	}
	if m.mode == ModeDetail && m.detail != nil {
		return m.viewDetail()
	}

	header := HeaderStyle.Render("🍲 Carnet · " + m.sessionLine())
	sidebar := m.viewSidebar()
	list := m.viewRecipeList()
	body := lipgloss.JoinHorizontal(lipgloss.Top, sidebar, list)

	footer := FooterStyle.Render("j/k move · tab switch pane · enter open · / search · r refresh · ? help · q quit")
	if m.mode == ModeFilter {
		footer = FooterStyle.Render("Search: ") + m.input.View()
	}
	if m.message != "" {
		footer = MessageStyle.Render(m.message)
	}

	return lipgloss.JoinVertical(lipgloss.Left, header, body, footer)
}

func (m Model) sessionLine() string {
	if m.session.IsLoading {
		return "connecting..."
	}
	if m.session.IsAuthenticated {
		return m.session.User.Username
	}
	return "not logged in"
}

func (m Model) viewSidebar() string {
	var b strings.Builder

	items := []string{"All recipes"}
	for _, cat := range m.categories {
		label := cat.Name
		if cat.Icon != "" {
			label = cat.Icon + " " + label
		}
		items = append(items, label)
	}

	for i, label := range items {
		style := CategoryItemStyle
		if i == m.catCursor {
			style = CategoryItemSelectedStyle
			if m.pane == PaneSidebar {
				label = "▸ " + label
			}
		}
		b.WriteString(style.Render(label) + "\n")
	}

	return SidebarStyle.Render(b.String())
}

func (m Model) viewRecipeList() string {
	var b strings.Builder

	b.WriteString(MutedStyle.Render(fmt.Sprintf("%d recipe(s)", m.total)) + "\n\n")

	if len(m.recipes) == 0 {
		b.WriteString(MutedStyle.Render("Nothing here yet."))
		return RecipeListStyle.Render(b.String())
	}

	for i, r := range m.recipes {
		line := r.Title
		if r.TotalMinutes() > 0 {
			line += MutedStyle.Render(fmt.Sprintf("  (%d min)", r.TotalMinutes()))
		}

		style := RecipeItemStyle
		if i == m.recCursor && m.pane == PaneRecipeList {
			style = RecipeItemSelectedStyle
			line = "▸ " + line
		} else {
			line = "  " + line
		}
		b.WriteString(style.Render(line) + "\n")
	}

	return RecipeListStyle.Render(b.String())
}

func (m Model) viewDetail() string {
	r := m.detail
	var b strings.Builder

	b.WriteString(DetailTitleStyle.Render(r.Title) + "\n")
	b.WriteString(MutedStyle.Render(m.detailMeta(r)) + "\n\n")

	if r.Description != "" {
		b.WriteString(r.Description + "\n\n")
	}

	if len(r.Prerequisites) > 0 {
		b.WriteString(DetailSectionStyle.Render("Before you start") + "\n")
		for _, p := range r.Prerequisites {
			b.WriteString("  • " + p.Text + "\n")
		}
		b.WriteString("\n")
	}

	if len(r.Ingredients) > 0 {
		b.WriteString(DetailSectionStyle.Render("Ingredients") + "\n")
		for _, ing := range r.Ingredients {
			if ing.Quantity > 0 {
				b.WriteString(fmt.Sprintf("  • %g %s %s\n", ing.Quantity, ing.Unit, ing.Name))
			} else {
				b.WriteString("  • " + ing.Name + "\n")
			}
		}
		b.WriteString("\n")
	}

	if len(r.Steps) > 0 {
		b.WriteString(DetailSectionStyle.Render("Steps") + "\n")
		for _, step := range r.Steps {
			b.WriteString(fmt.Sprintf("  %d. %s\n", step.Position, step.Text))
		}
	}

	b.WriteString("\n" + FooterStyle.Render("esc back · q quit"))
	return RecipeListStyle.Render(b.String())
}

func (m Model) detailMeta(r *model.Recipe) string {
	parts := []string{}
	if r.Servings > 0 {
		parts = append(parts, fmt.Sprintf("%d servings", r.Servings))
	}
	if r.PrepMinutes > 0 {
		parts = append(parts, fmt.Sprintf("prep %d min", r.PrepMinutes))
	}
	if r.CookMinutes > 0 {
		parts = append(parts, fmt.Sprintf("cook %d min", r.CookMinutes))
	}
	return strings.Join(parts, " · ")
}

func (m Model) viewHelp() string {
	help := `
🍲 Carnet · keys

  j / k        move up and down
  tab, h, l    switch pane
  enter        open recipe
  /            search (enter to apply, esc to cancel)
  esc          clear search / close detail
  r            refresh from server
  ?            toggle this help
  q            quit

Press any key to close.
`
	return RecipeListStyle.Render(help)
}
