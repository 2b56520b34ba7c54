package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/desertthunder/ytingest/internal/registry"
	"github.com/desertthunder/ytingest/internal/repositories"
	"github.com/desertthunder/ytingest/internal/server"
	"github.com/desertthunder/ytingest/internal/services"
	"github.com/desertthunder/ytingest/internal/shared"
	"github.com/desertthunder/ytingest/internal/tasks"
	"github.com/urfave/cli/v3"
)

// Serve wires the pipeline to its adapters and runs the API until SIGINT or SIGTERM.
//
// Jobs that are still running when the signal arrives get the shutdown window to finish.
func (r *Runner) Serve(ctx context.Context, cmd *cli.Command) error {
	config, err := r.loadConfig(cmd.String("config"))
	if err != nil {
		return err
	}
	if port := cmd.Int("port"); port > 0 {
		config.Server.Port = port
	}
	if err := config.Validate(); err != nil {
		return err
	}
	if err := shared.ConfigureLogLevel(r.logger, config.Log.Level); err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	source, err := services.NewYTDLPSource(services.YTDLPOpts{
		Binary:      config.Source.YTDLPPath,
		TempDir:     config.Source.TempDir,
		CookiesPath: config.Source.CookiesPath,
		ProxyURL:    config.Source.ProxyURL,
		Logger:      shared.WithLogger(r.logger, "component", "ytdlp"),
	})
	if err != nil {
		return err
	}

	sink, err := services.NewCloudinarySink(config.Cloudinary, shared.WithLogger(r.logger, "component", "cloudinary"))
	if err != nil {
		return err
	}

	api := services.NewAPIService(
		config.Catalog.BaseURL,
		services.NewHTTPClient(config.Catalog.Timeout(), config.Catalog.APIToken),
	).WithRateLimit(config.Catalog.RequestsPerSecond)
	catalog := services.NewCatalogService(api, shared.WithLogger(r.logger, "component", "catalog"))

	reg := registry.New(shared.WithLogger(r.logger, "component", "registry"), nil)
	reg.StartJanitor(ctx, config.Registry.CleanupInterval(), config.Registry.MaxTasks)

	opts := tasks.PipelineOpts{
		Source:  source,
		Sink:    sink,
		Catalog: catalog,
		Tracker: reg,
		Logger:  shared.WithLogger(r.logger, "component", "pipeline"),
	}

	if config.Database.Path != "" {
		db, err := shared.NewDatabase(config.Database.Path)
		if err != nil {
			return fmt.Errorf("failed to open database: %w", err)
		}
		defer db.Close()

		shared.ConfigureDatabase(db, config.Database.MaxOpenConns, config.Database.MaxIdleConns)
		if err := shared.RunMigrations(db); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		opts.Recorder = repositories.NewSongLedger(repositories.NewSongRepository(db))
		r.logger.Info("publish ledger enabled", "path", config.Database.Path)
	}

	// Jobs are not cancelled by the signal. Server.Serve drains them.
	jobCtx, cancelJobs := context.WithCancel(context.WithoutCancel(ctx))
	defer cancelJobs()

	dispatcher := tasks.NewDispatcher(jobCtx, tasks.NewPipeline(opts), config.Dispatcher.MaxConcurrentJobs, r.logger)

	router := server.NewBasicRouter()
	router.Use(server.DefaultMiddleware(shared.WithLogger(r.logger, "component", "http"))...)
	router.Handler(server.NewTaskHandler(reg, dispatcher, r.logger))

	srv := server.NewServer(server.ServerOpts{
		Addr:            config.Server.Addr(),
		Router:          router,
		Jobs:            dispatcher,
		ShutdownTimeout: config.Server.ShutdownTimeout(),
		Logger:          r.logger,
	})

	if err := srv.ListenAndServe(ctx); err != nil {
		return fmt.Errorf("server error: %w", err)
	}
	r.logger.Info("server stopped")
	return nil
}
