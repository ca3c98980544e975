package cli

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/budeshi/budeshi/internal/config"
	"github.com/budeshi/budeshi/internal/intelligence"
	"github.com/budeshi/budeshi/internal/llm"
	"github.com/budeshi/budeshi/internal/metrics"
	"github.com/budeshi/budeshi/internal/money"
	"github.com/budeshi/budeshi/internal/repository"
	"github.com/budeshi/budeshi/internal/service"
	"github.com/spf13/cobra"
)

// Resolver answers chat messages and reports which path it would take.
// *intelligence.Orchestrator implements it.
type Resolver interface {
	service.Responder
	SelectPath(ctx context.Context) intelligence.Path
}

// App holds the wired services commands run against.
type App struct {
	Config   *config.Config
	Logger   *slog.Logger
	Money    *money.Formatter
	Projects service.ProjectService
	Resolver Resolver
	Metrics  *metrics.Metrics
	UseCases service.UseCaseObserver

	// Turns persists chat history; nil keeps conversations in memory.
	Turns repository.TurnRepo
	// StoredKey is the persisted API key; nil when no settings store exists.
	StoredKey   *llm.StoredCredential
	Credentials llm.CredentialSource

	IsInteractive func() bool
	Close         func() error
}

func (a *App) interactive() bool {
	return a.IsInteractive != nil && a.IsInteractive()
}

// Builder wires an App from loaded configuration.
type Builder func(ctx context.Context, cfg *config.Config) (*App, error)

// cmdState carries the App built in PersistentPreRunE to subcommands.
type cmdState struct {
	build Builder
	app   *App
}

// NewRootCmd creates the top-level "budeshi" command. The App is built once
// flags are parsed, so --config and the override flags apply to it.
func NewRootCmd(build Builder) *cobra.Command {
	state := &cmdState{build: build}
	var configPath string

	root := &cobra.Command{
		Use:           "budeshi",
		Short:         "Ask questions about government procurement projects",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(configPath, cmd.Flags())
			if err != nil {
				return err
			}
			app, err := state.build(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			state.app = app
			return nil
		},
		PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
			if state.app == nil || state.app.Close == nil {
				return nil
			}
			return state.app.Close()
		},
	}
	root.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ./budeshi.yaml or ~/.budeshi/budeshi.yaml)")
	config.AddFlags(root.PersistentFlags())

	root.AddCommand(
		newAskCmd(state),
		newChatCmd(state),
		newProjectsCmd(state),
		newKeyCmd(state),
		newServeCmd(state),
	)
	return root
}

var errNoSettings = errors.New("the API key can only be stored with the sqlite backend; set BUDESHI_LLM_API_KEY instead")

func requireStoredKey(app *App) (*llm.StoredCredential, error) {
	if app.StoredKey == nil {
		return nil, errNoSettings
	}
	return app.StoredKey, nil
}

func printf(cmd *cobra.Command, format string, args ...any) {
	fmt.Fprintf(cmd.OutOrStdout(), format, args...)
}
