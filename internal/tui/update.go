package tui

import (
	"errors"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/existflow/carnet/internal/api"
	"github.com/existflow/carnet/internal/logger"
)

// Update handles messages
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case sessionResolvedMsg:
		m.session = msg.session
		return m, nil

	case categoriesLoadedMsg:
		m.categories = msg.categories
		if m.catCursor > len(m.categories) {
			m.catCursor = 0
		}
		return m, nil

	case recipesLoadedMsg:
		m.recipes = msg.recipes
		m.total = msg.total
		if m.recCursor >= len(m.recipes) {
			m.recCursor = 0
		}
		return m, nil

	case recipeDetailMsg:
		m.detail = msg.recipe
		m.mode = ModeDetail
		return m, nil

	case errMsg:
		logger.Error("TUI data load failed", logger.F("error", msg.err))
		var apiErr *api.APIError
		if errors.As(msg.err, &apiErr) {
			m.message = apiErr.Detail
		} else {
			m.message = "Une erreur est survenue. Veuillez réessayer."
		}
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch m.mode {
	case ModeFilter:
		return m.handleFilterKey(msg)
	case ModeDetail:
		return m.handleDetailKey(msg)
	case ModeHelp:
		m.mode = ModeNormal
		return m, nil
	}
	return m.handleNormalKey(msg)
}

func (m Model) handleNormalKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "q", "ctrl+c":
		return m, tea.Quit

	case "?":
		m.mode = ModeHelp
		return m, nil

	case "tab", "h", "l":
		if m.pane == PaneSidebar {
			m.pane = PaneRecipeList
		} else {
			m.pane = PaneSidebar
		}
		return m, nil

	case "j", "down":
		if m.pane == PaneSidebar {
			if m.catCursor < len(m.categories) {
				m.catCursor++
				m.recCursor = 0
				return m, m.loadRecipes()
			}
		} else if m.recCursor < len(m.recipes)-1 {
			m.recCursor++
		}
		return m, nil

	case "k", "up":
		if m.pane == PaneSidebar {
			if m.catCursor > 0 {
				m.catCursor--
				m.recCursor = 0
				return m, m.loadRecipes()
			}
		} else if m.recCursor > 0 {
			m.recCursor--
		}
		return m, nil

	case "/":
		m.mode = ModeFilter
		m.input.SetValue(m.filterText)
		m.input.Focus()
		return m, nil

	case "enter":
		if m.pane == PaneSidebar {
			m.pane = PaneRecipeList
			return m, nil
		}
		if len(m.recipes) > 0 {
			return m, m.loadDetail(m.recipes[m.recCursor].ID)
		}
		return m, nil

	case "r":
		// Force refresh, dropping cached pages
		m.cache.InvalidatePrefix("recipes/")
		m.cache.InvalidatePrefix("categories/")
		m.message = ""
		return m, tea.Batch(m.loadCategories(), m.loadRecipes())

	case "esc":
		if m.filterText != "" {
			m.filterText = ""
			return m, m.loadRecipes()
		}
		return m, nil
	}

	return m, nil
}

func (m Model) handleFilterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "enter":
		m.filterText = m.input.Value()
		m.input.Blur()
		m.mode = ModeNormal
		m.recCursor = 0
		return m, m.loadRecipes()

	case "esc":
		m.input.Blur()
		m.mode = ModeNormal
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

func (m Model) handleDetailKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "q", "enter", "backspace":
		m.detail = nil
		m.mode = ModeNormal
	case "ctrl+c":
		return m, tea.Quit
	}
	return m, nil
}
