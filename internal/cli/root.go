package cli

import (
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/existflow/carnet/internal/api"
	"github.com/existflow/carnet/internal/config"
	"github.com/existflow/carnet/internal/logger"
	"github.com/existflow/carnet/internal/query"
	"github.com/existflow/carnet/internal/session"
	"github.com/existflow/carnet/internal/tui"
	"github.com/spf13/cobra"
)

var (
	logLevel   string
	logFile    string
	logConsole bool
	serverURL  string
)

var rootCmd = &cobra.Command{
	Use:   "carnet",
	Short: "Carnet - family recipe book in your terminal",
	Long: `Carnet is the terminal client of a family recipe-sharing server:
browse, add and share recipes, organized by category.

Run 'carnet' without arguments to launch the interactive browser.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			cfg = config.DefaultConfig()
		}

		if cmd.Flags().Changed("log-level") {
			cfg.LogLevel = logLevel
		}
		if cmd.Flags().Changed("log-file") {
			cfg.LogFile = logFile
		}
		if cmd.Flags().Changed("log-console") {
			cfg.LogConsole = logConsole
		}

		logConfig := logger.DefaultConfig()
		logConfig.Level = logger.ParseLevel(cfg.LogLevel)
		logConfig.FilePath = cfg.LogFile
		logConfig.Console = cfg.LogConsole

		if err := logger.Init(logConfig); err != nil {
			return fmt.Errorf("failed to initialize logger: %w", err)
		}

		logger.Info("Carnet started", logger.F("command", cmd.Name()))
		return nil
	},

	RunE: func(cmd *cobra.Command, args []string) error {
		app, err := newApp()
		if err != nil {
			return err
		}

		logger.Info("Launching TUI")
		m := tui.NewModel(app.API, app.Store, app.Cache)
		p := tea.NewProgram(m, tea.WithAltScreen())

		if _, err := p.Run(); err != nil {
			logger.Error("TUI error", logger.F("error", err))
			return fmt.Errorf("failed to run TUI: %w", err)
		}

		logger.Info("TUI exited normally")
		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		logger.Info("Carnet exiting", logger.F("command", cmd.Name()))
		logger.Close()
	},
}

// App bundles the wired client-side components. Everything is injected
// top-down; no package-level singletons.
type App struct {
	Config *config.Config
	API    *api.Client
	Store  *session.Store
	Cache  *query.Cache
}

func newApp() (*App, error) {
	cfg, err := config.Load()
	if err != nil {
		cfg = config.DefaultConfig()
	}

	if serverURL != "" {
		cfg.ServerURL = serverURL
	}

	dir, err := config.Dir()
	if err != nil {
		return nil, err
	}

	client := api.New(cfg.ServerURL)
	return &App{
		Config: cfg,
		API:    client,
		Store:  session.NewStore(client, session.NewTokenStorage(dir)),
		Cache:  query.New(30 * time.Second),
	}, nil
}

// requireAuth resolves the session and returns the bearer token, or an
// error telling the user to log in
func (a *App) requireAuth(cmd *cobra.Command) (string, error) {
	a.Store.Init(cmd.Context())
	current := a.Store.Current()
	if !current.IsAuthenticated {
		return "", fmt.Errorf("non connecté. Lancez 'carnet auth login'")
	}
	return current.Token, nil
}

// display maps an error to what the user should read: the server's
// detail message for API errors, the error itself otherwise
func display(err error) error {
	var apiErr *api.APIError
	if errors.As(err, &apiErr) {
		return errors.New(apiErr.Detail)
	}
	return err
}

// Execute runs the root command
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (DEBUG, INFO, WARN, ERROR)")
	rootCmd.PersistentFlags().StringVar(&logFile, "log-file", "", "Path to log file")
	rootCmd.PersistentFlags().BoolVar(&logConsole, "log-console", false, "Enable console logging")
	rootCmd.PersistentFlags().StringVar(&serverURL, "server", "", "Recipe server URL (overrides config)")

	rootCmd.AddCommand(authCmd)
	rootCmd.AddCommand(recipeCmd)
	rootCmd.AddCommand(categoryCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(inviteCmd)
	rootCmd.AddCommand(configCmd)
}
