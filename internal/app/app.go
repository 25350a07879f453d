package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/errgroup"

	"multichat/backend/internal/api"
	"multichat/backend/internal/config"
	"multichat/backend/internal/database"
	"multichat/backend/internal/llm"
	"multichat/backend/internal/model"
	"multichat/backend/internal/repository"
	"multichat/backend/internal/service"
)

// App holds the wired services shared by the HTTP server and the CLI.
type App struct {
	Config *config.Config
	Logger *slog.Logger
	DB     *sql.DB

	Chats    *service.ChatService
	Settings *service.SettingsService
	Models   *service.ModelService
	Sessions *service.SessionManager

	Runtime *llm.RuntimeClient
	Engines *llm.EngineManager
	Server  *http.Server
}

// NewApp opens the database and wires every dependency. It does not touch
// the network; call Run to serve.
func NewApp(cfg *config.Config, logger *slog.Logger) (*App, error) {
	if logger == nil {
		logger = slog.Default()
	}

	db, err := database.InitDB(cfg.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize database: %w", err)
	}
	logger.Info("Successfully connected to SQLite database.", "path", cfg.DatabasePath)

	chatService := service.NewChatService(repository.NewSQLiteChatRepository(db))
	settingsService := service.NewSettingsService(repository.NewSQLiteSettingsRepository(db))

	runtime := llm.NewRuntimeClient(cfg.RuntimeURL, cfg.EngineKeepAlive)
	engines := llm.NewEngineManager(llm.NewRuntimeLoader(runtime))
	modelService := service.NewModelService(runtime)

	registry := llm.NewRegistry()
	registry.Register(model.APIOllama, llm.NewRemoteAdapter(model.APIOllama))
	registry.Register(model.APIOnDevice, llm.NewOnDeviceAdapter(model.APIOnDevice, engines))

	sessions := service.NewSessionManager(chatService, settingsService, registry, logger)

	router := api.NewRouter(api.Handlers{
		Chats:    api.NewChatHandler(chatService),
		Sessions: api.NewSessionHandler(sessions),
		Settings: api.NewSettingsHandler(settingsService),
		Setup:    api.NewSetupHandler(settingsService, modelService),
		Models:   api.NewModelHandler(modelService),
	}, cfg.RequestTimeout)

	server := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.AppPort),
		Handler:           router,
		ReadHeaderTimeout: 20 * time.Second,
		WriteTimeout:      0, // Disabled for streaming endpoints
		IdleTimeout:       120 * time.Second,
	}

	return &App{
		Config:   cfg,
		Logger:   logger,
		DB:       db,
		Chats:    chatService,
		Settings: settingsService,
		Models:   modelService,
		Sessions: sessions,
		Runtime:  runtime,
		Engines:  engines,
		Server:   server,
	}, nil
}

// Run serves HTTP until ctx is cancelled or the server fails, then shuts
// down gracefully.
func (a *App) Run(ctx context.Context) error {
	a.checkRuntime(ctx)

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		a.Logger.Info("Starting server", "addr", a.Server.Addr)
		if err := a.Server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		a.Logger.Info("Shutting down server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), a.Config.ShutdownTimeout)
		defer cancel()
		return a.Server.Shutdown(shutdownCtx)
	})
	return g.Wait()
}

// Close stops live sessions, unloads the engine and closes the database.
func (a *App) Close() error {
	a.Sessions.CloseAll()
	a.Engines.Release()
	if err := a.DB.Close(); err != nil {
		return fmt.Errorf("failed to close database connection: %w", err)
	}
	return nil
}

// checkRuntime only warns: remote backends work without the local runtime.
func (a *App) checkRuntime(ctx context.Context) {
	pingCtx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := a.Runtime.Ping(pingCtx); err != nil {
		a.Logger.Warn("Local model runtime is not reachable, on-device chats will fail", "url", a.Config.RuntimeURL, "error", err)
		return
	}
	a.Logger.Info("Local model runtime is ready.", "url", a.Config.RuntimeURL)
}

// LogConfigSource reports where the configuration came from.
func LogConfigSource(logger *slog.Logger, cfg *config.Config) {
	if cfg.ConfigFile != "" {
		logger.Info("Successfully loaded configuration from file.", "file", cfg.ConfigFile)
		return
	}
	logger.Info("Configuration file not found. Using environment variables and defaults.")
}
