package cli

import (
	"context"
	"database/sql"
	"errors"
	"os"

	"github.com/budeshi/budeshi/internal/config"
	"github.com/budeshi/budeshi/internal/dataset"
	"github.com/budeshi/budeshi/internal/db"
	"github.com/budeshi/budeshi/internal/domain"
	"github.com/budeshi/budeshi/internal/intelligence"
	"github.com/budeshi/budeshi/internal/llm"
	"github.com/budeshi/budeshi/internal/logging"
	"github.com/budeshi/budeshi/internal/metrics"
	"github.com/budeshi/budeshi/internal/repository"
	"github.com/budeshi/budeshi/internal/service"
	"github.com/mattn/go-isatty"
)

// Wire is the production Builder. Logs go to stderr so stdout stays clean
// for answers and exports.
func Wire(ctx context.Context, cfg *config.Config) (*App, error) {
	logger, err := logging.New(os.Stderr, cfg.Log.Level, cfg.Log.Format)
	if err != nil {
		return nil, err
	}
	formatter, err := cfg.Formatter()
	if err != nil {
		return nil, err
	}
	mode, err := cfg.Mode()
	if err != nil {
		return nil, err
	}

	var seed []domain.Project
	if cfg.Store.Seed {
		if cfg.Store.DatasetPath != "" {
			seed, err = dataset.Load(cfg.Store.DatasetPath)
		} else {
			seed, err = dataset.Seed()
		}
		if err != nil {
			return nil, err
		}
	}

	app := &App{
		Config: cfg,
		Logger: logger,
		Money:  formatter,
		IsInteractive: func() bool {
			return isatty.IsTerminal(os.Stdin.Fd()) || isatty.IsCygwinTerminal(os.Stdin.Fd())
		},
	}

	// Conversations and the stored key need SQLite; the memory and remote
	// backends still open one when a db path is configured.
	var database *sql.DB
	backend := repository.Backend(cfg.Store.Backend)
	if backend == repository.BackendSQLite || cfg.Store.DBPath != "" {
		database, err = db.OpenDB(cfg.Store.DBPath)
		if err != nil {
			return nil, err
		}
		app.Close = database.Close
		app.Turns = repository.NewSQLiteTurnRepo(database)
		app.StoredKey = llm.NewStoredCredential(repository.NewSQLiteSettingRepo(database))
	}

	projects, err := repository.NewProjectRepo(ctx, repository.StoreOptions{
		Backend:   backend,
		DB:        database,
		RemoteURL: cfg.Store.RemoteURL,
		Seed:      seed,
	})
	if err != nil {
		return nil, errors.Join(err, closeApp(app))
	}

	m := metrics.New()
	app.Metrics = m
	app.UseCases = service.NewLogUseCaseObserver(logger)

	creds := llm.CredentialChain{llm.StaticCredential(cfg.LLM.APIKey)}
	if app.StoredKey != nil {
		creds = append(creds, app.StoredKey)
	}
	app.Credentials = creds

	var callObserver llm.Observer = m
	if cfg.LLM.LogCalls {
		callObserver = llm.MultiObserver{m, llm.NewLogObserver(logger)}
	}
	client := llm.NewOpenAIClient(cfg.Completion(), creds, callObserver)

	app.Projects = service.NewProjectService(projects, formatter, app.UseCases)
	app.Resolver = intelligence.NewOrchestrator(intelligence.Deps{
		Store:       projects,
		Client:      client,
		Credentials: creds,
		Money:       formatter,
		Mode:        mode,
		Observer:    m,
		Logger:      logger,
	})
	return app, nil
}

func closeApp(app *App) error {
	if app.Close == nil {
		return nil
	}
	return app.Close()
}
