package tui

import (
	"context"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/existflow/carnet/internal/api"
	"github.com/existflow/carnet/internal/logger"
	"github.com/existflow/carnet/internal/model"
	"github.com/existflow/carnet/internal/query"
	"github.com/existflow/carnet/internal/session"
)

// Pane represents which pane is focused
type Pane int

const (
	PaneSidebar Pane = iota
	PaneRecipeList
)

// Mode represents the current UI mode
type Mode int

const (
	ModeNormal Mode = iota
	ModeFilter
	ModeDetail
	ModeHelp
)

// Model is the main TUI model
type Model struct {
	api   *api.Client
	store *session.Store
	cache *query.Cache

	categories []model.Category
	recipes    []model.Recipe
	total      int
	detail     *model.Recipe
	session    session.Session

	// UI state
	width      int
	height     int
	pane       Pane
	mode       Mode
	catCursor  int // 0 = "All recipes", categories start at 1
	recCursor  int
	filterText string

	input   textinput.Model
	message string
}

// NewModel creates a new TUI model
func NewModel(client *api.Client, store *session.Store, cache *query.Cache) Model {
	logger.Info("Initializing TUI model")

	ti := textinput.New()
	ti.Placeholder = "Search recipes..."
	ti.CharLimit = 128
	ti.Width = 40

	return Model{
		api:   client,
		store: store,
		cache: cache,
		pane:  PaneSidebar,
		mode:  ModeNormal,
		input: ti,
	}
}

// Messages

type sessionResolvedMsg struct {
	session session.Session
}

type categoriesLoadedMsg struct {
	categories []model.Category
}

type recipesLoadedMsg struct {
	recipes []model.Recipe
	total   int
}

type recipeDetailMsg struct {
	recipe *model.Recipe
}

type errMsg struct {
	err error
}

// Init kicks off session resolution and the first data load
func (m Model) Init() tea.Cmd {
	return tea.Batch(m.resolveSession(), m.loadCategories(), m.loadRecipes())
}

func (m Model) resolveSession() tea.Cmd {
	return func() tea.Msg {
		m.store.Init(context.Background())
		return sessionResolvedMsg{session: m.store.Current()}
	}
}

func (m Model) loadCategories() tea.Cmd {
	return func() tea.Msg {
		key := query.Key("categories", "list")
		v, err := m.cache.Fetch(context.Background(), key, func(ctx context.Context) (any, error) {
			return m.api.ListCategories(ctx)
		})
		if err != nil {
			return errMsg{err}
		}
		return categoriesLoadedMsg{categories: v.([]model.Category)}
	}
}

// currentFilter builds the recipe filter from the selected category and
// search text
func (m Model) currentFilter() api.RecipeFilter {
	var filter api.RecipeFilter
	if m.catCursor > 0 && m.catCursor <= len(m.categories) {
		id := m.categories[m.catCursor-1].ID
		filter.CategoryID = &id
	}
	if m.filterText != "" {
		search := m.filterText
		filter.Search = &search
	}
	perPage := 100
	filter.PerPage = &perPage
	return filter
}

func (m Model) loadRecipes() tea.Cmd {
	filter := m.currentFilter()
	return func() tea.Msg {
		key := query.Key("recipes", "list", filter.Values().Encode())
		v, err := m.cache.Fetch(context.Background(), key, func(ctx context.Context) (any, error) {
			return m.api.ListRecipes(ctx, filter)
		})
		if err != nil {
			return errMsg{err}
		}
		page := v.(*model.RecipePage)
		return recipesLoadedMsg{recipes: page.Items, total: page.Total}
	}
}

func (m Model) loadDetail(id string) tea.Cmd {
	return func() tea.Msg {
		key := query.Key("recipes", "detail", id)
		v, err := m.cache.Fetch(context.Background(), key, func(ctx context.Context) (any, error) {
			return m.api.GetRecipe(ctx, id)
		})
		if err != nil {
			return errMsg{err}
		}
		return recipeDetailMsg{recipe: v.(*model.Recipe)}
	}
}
