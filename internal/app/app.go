// Package app provides application-level orchestration and dependency injection.
// This package wires together all components and manages the application lifecycle.
package app

import (
	"context"
	"io"
	"log/slog"
	"net/url"
	"os"
	"sync"

	"fyne.io/fyne/v2"
	fyneapp "fyne.io/fyne/v2/app"
	"github.com/cockroachdb/errors"

	"github.com/tejashwikalptaru/tunebox/internal/adapter/audio/beep"
	"github.com/tejashwikalptaru/tunebox/internal/adapter/audio/mock"
	"github.com/tejashwikalptaru/tunebox/internal/adapter/eventbus"
	"github.com/tejashwikalptaru/tunebox/internal/adapter/localfs"
	"github.com/tejashwikalptaru/tunebox/internal/adapter/manifest"
	"github.com/tejashwikalptaru/tunebox/internal/adapter/repository/memory"
	fyneui "github.com/tejashwikalptaru/tunebox/internal/adapter/ui/fyne"
	"github.com/tejashwikalptaru/tunebox/internal/config"
	"github.com/tejashwikalptaru/tunebox/internal/logger"
	"github.com/tejashwikalptaru/tunebox/internal/ports"
	"github.com/tejashwikalptaru/tunebox/internal/service"
)

// Application is the root application structure that holds all dependencies.
// It follows the Dependency Injection pattern with constructor-based injection.
//
// The Application struct is responsible for:
// - Creating and wiring all dependencies
// - Managing the application lifecycle (startup, shutdown)
// - Providing a clean entry point for the command line
type Application struct {
	// Core dependencies
	settings  *config.Config
	logger    *slog.Logger
	logCloser io.Closer
	fyneApp   fyne.App

	// Infrastructure
	eventBus *eventbus.SyncEventBus
	registry *memory.LocatorRepository
	resolver *manifest.Resolver
	player   ports.MediaPlayer

	// Services
	libraryService *service.LibraryService
	playlist       *service.PlaylistManager
	controller     *service.PlaybackController

	// UI
	presenter  *fyneui.Presenter
	mainWindow *fyneui.MainWindow

	// Startup work
	openPaths []string
	ctx       context.Context
	cancel    context.CancelFunc
	bg        sync.WaitGroup

	shutdownOnce sync.Once
	shutdownErr  error
}

// Config holds application construction options.
type Config struct {
	// Settings is the loaded configuration file
	Settings *config.Config

	// OpenPaths are files or folders added to the playlist at startup
	OpenPaths []string

	// TestFyneApp allows injecting a test Fyne app for testing (nil for production)
	TestFyneApp fyne.App
}

// DefaultConfig returns the default application configuration.
func DefaultConfig() (Config, error) {
	settings, err := config.Default()
	if err != nil {
		return Config{}, err
	}
	return Config{Settings: settings}, nil
}

// NewApplication creates a new application with all dependencies wired.
// This is the main dependency injection function.
func NewApplication(cfg Config) (*Application, error) {
	if cfg.Settings == nil {
		defaults, err := DefaultConfig()
		if err != nil {
			return nil, err
		}
		cfg.Settings = defaults.Settings
	}
	settings := cfg.Settings

	ctx, cancel := context.WithCancel(context.Background())
	app := &Application{
		settings:  settings,
		openPaths: cfg.OpenPaths,
		ctx:       ctx,
		cancel:    cancel,
	}

	// Step 1: Create logger
	app.logger, app.logCloser = logger.NewLogger(logger.Config{
		Level:      logger.ParseLevel(settings.Log.Level),
		Format:     settings.Log.Format,
		File:       settings.Log.File,
		MaxSizeMB:  settings.Log.MaxSizeMB,
		MaxBackups: settings.Log.MaxBackups,
		MaxAgeDays: settings.Log.MaxAgeDays,
	})
	app.logger.Info("initializing application",
		slog.String("app_id", settings.App.ID),
		slog.String("app_name", settings.App.Name),
		slog.String("version", GetVersionInfo().FullString()))

	// Step 2: Create Fyne application
	if cfg.TestFyneApp != nil {
		app.fyneApp = cfg.TestFyneApp
	} else {
		app.fyneApp = fyneapp.NewWithID(settings.App.ID)
	}

	// Step 3: Create an event bus
	app.eventBus = eventbus.NewSyncEventBus()
	app.eventBus.SetLogger(app.logger.With(slog.String("component", "eventbus")))

	// Step 4: Create the locator registry and resolver
	app.registry = memory.NewLocatorRepository(app.logger.With(slog.String("component", "locators")))
	resolver, err := manifest.NewResolver(app.registry, resolverConfig(settings.Manifest),
		app.logger.With(slog.String("component", "resolver")))
	if err != nil {
		app.closeEarly()
		return nil, errors.Wrap(err, "failed to create locator resolver")
	}
	app.resolver = resolver

	// Step 5: Create the media player
	if settings.UseMockAudio() {
		player := mock.NewPlayer(app.eventBus)
		player.SetLogger(app.logger.With(slog.String("player", "mock")))
		app.player = player
	} else {
		player, err := beep.NewPlayer(beep.Config{
			SampleRate:     settings.Player.SampleRate,
			BufferDuration: settings.Player.BufferDuration,
			TickInterval:   settings.Player.TickInterval,
		}, app.resolver, app.eventBus, app.logger.With(slog.String("player", "beep")))
		if err != nil {
			app.closeEarly()
			return nil, errors.Wrap(err, "failed to initialize media player")
		}
		app.player = player
	}

	// Step 6: Create services (with dependency injection)
	app.libraryService = service.NewLibraryService(
		app.logger.With(slog.String("service", "library")),
		localfs.NewChooser(app.logger.With(slog.String("component", "localfs"))),
		app.eventBus,
	)

	manifestSource, origin := manifest.NewSource(
		settings.Manifest.URL,
		settings.Manifest.Root,
		settings.Manifest.Path,
		settings.Manifest.Timeout,
	)
	app.logger.Info("manifest source selected", slog.String("origin", origin))

	app.playlist = service.NewPlaylistManager(
		app.logger.With(slog.String("service", "playlist")),
		app.eventBus,
		manifestSource,
		app.registry,
		app.libraryService,
	)

	app.controller = service.NewPlaybackController(
		app.logger.With(slog.String("service", "playback")),
		app.player,
		app.playlist,
		app.eventBus,
		service.ControllerOptions{
			InitialVolume:         settings.Player.Volume(),
			ReconcileRejectedPlay: settings.Player.ReconcileRejectedPlay,
		},
	)

	// Step 7: Create UI
	app.mainWindow = fyneui.NewMainWindow(app.fyneApp)

	// Step 8: Create Presenter and wire with UI
	app.presenter = fyneui.NewPresenter(
		app.logger.With(slog.String("component", "presenter")),
		app.controller,
		app.playlist,
		app.libraryService,
		app.resolver,
		app.eventBus,
		app.mainWindow,
	)

	// Connect presenter to the main window
	app.mainWindow.SetPresenter(app.presenter)

	// Stop startup work as soon as the window starts closing
	app.mainWindow.SetOnBeforeClose(func() {
		app.logger.Info("main window closing")
		app.cancel()
	})

	return app, nil
}

// resolverConfig derives where manifest paths are read from. A configured
// manifest URL makes its origin the base for relative locators.
func resolverConfig(cfg config.ManifestConfig) manifest.ResolverConfig {
	rc := manifest.ResolverConfig{
		BaseURL: cfg.BaseURL,
		Timeout: cfg.Timeout,
	}
	if cfg.URL == "" {
		rc.Root = cfg.Root
		return rc
	}
	if rc.BaseURL == "" {
		if u, err := url.Parse(cfg.URL); err == nil && u.Host != "" {
			rc.BaseURL = (&url.URL{Scheme: u.Scheme, Host: u.Host}).String()
		}
	}
	return rc
}

// closeEarly releases what was created before a construction failure.
func (a *Application) closeEarly() {
	a.cancel()
	if a.eventBus != nil {
		_ = a.eventBus.Close()
	}
	if a.logCloser != nil {
		_ = a.logCloser.Close()
	}
}

// Preload loads the manifest and then opens the startup paths.
// Failures are logged; the player stays usable with whatever was loaded.
func (a *Application) Preload(ctx context.Context) {
	a.playlist.LoadManifest(ctx)

	var files []string
	for _, path := range a.openPaths {
		if ctx.Err() != nil {
			return
		}
		info, err := os.Stat(path)
		if err != nil {
			a.logger.Warn("skipping startup path", slog.String("path", path), slog.Any("error", err))
			continue
		}
		if info.IsDir() {
			if err := a.presenter.OnFolderOpened(path); err != nil {
				a.logger.Warn("failed to open folder", slog.String("path", path), slog.Any("error", err))
			}
			continue
		}
		files = append(files, path)
	}

	if len(files) > 0 {
		if err := a.presenter.OnFilesOpened(files); err != nil {
			a.logger.Warn("failed to open files", slog.Int("count", len(files)), slog.Any("error", err))
		}
	}
}

// Run starts the application.
// It blocks until the main window is closed.
func (a *Application) Run() error {
	a.logger.Info("TuneBox started")

	a.bg.Add(1)
	go func() {
		defer a.bg.Done()
		a.Preload(a.ctx)
	}()

	// Show and run UI (blocks until the window is closed)
	a.mainWindow.ShowAndRun()
	return nil
}

// GetServices returns the core services.
func (a *Application) GetServices() (*service.PlaybackController, *service.PlaylistManager, *service.LibraryService) {
	return a.controller, a.playlist, a.libraryService
}

// GetEventBus returns the application event bus.
func (a *Application) GetEventBus() ports.EventBus {
	return a.eventBus
}

// GetFyneApp returns the Fyne application.
func (a *Application) GetFyneApp() fyne.App {
	return a.fyneApp
}

// GetPresenter returns the UI presenter.
func (a *Application) GetPresenter() *fyneui.Presenter {
	return a.presenter
}

// Shutdown gracefully shuts down the application.
// It's safe to call multiple times (idempotent).
func (a *Application) Shutdown() error {
	a.shutdownOnce.Do(func() {
		a.logger.Info("shutting down application")

		// Stop startup work
		a.cancel()
		a.bg.Wait()

		// Shutdown UI and presenter
		if a.presenter != nil {
			a.presenter.Shutdown()
		}
		if a.mainWindow != nil {
			a.mainWindow.Close()
		}

		var errs error

		// Shutdown services (in reverse order of creation)
		if a.controller != nil {
			if err := a.controller.Shutdown(); err != nil {
				a.logger.Warn("failed to shutdown playback controller", slog.Any("error", err))
				errs = errors.CombineErrors(errs, err)
			}
		}

		if a.playlist != nil {
			if err := a.playlist.Shutdown(); err != nil {
				a.logger.Warn("failed to shutdown playlist manager", slog.Any("error", err))
				errs = errors.CombineErrors(errs, err)
			}
		}

		if a.libraryService != nil {
			if err := a.libraryService.Shutdown(); err != nil {
				a.logger.Warn("failed to shutdown library service", slog.Any("error", err))
				errs = errors.CombineErrors(errs, err)
			}
		}

		if err := a.eventBus.Close(); err != nil {
			errs = errors.CombineErrors(errs, err)
		}

		a.logger.Info("application shutdown complete")
		if err := a.logCloser.Close(); err != nil {
			errs = errors.CombineErrors(errs, err)
		}
		a.shutdownErr = errs
	})
	return a.shutdownErr
}
