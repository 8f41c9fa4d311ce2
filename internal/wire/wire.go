// Package wire assembles the routeslip application from its configuration.
package wire

import (
	"context"
	"database/sql"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"

	cliadapter "github.com/example/routeslip/internal/adapters/cli"
	"github.com/example/routeslip/internal/adapters/filesystem"
	"github.com/example/routeslip/internal/adapters/sqlite"
	"github.com/example/routeslip/internal/adapters/tesseract"
	"github.com/example/routeslip/internal/app"
	"github.com/example/routeslip/internal/config"
	"github.com/example/routeslip/internal/core/extract"
	"github.com/example/routeslip/internal/db"
	"github.com/example/routeslip/internal/logger"
	"github.com/example/routeslip/internal/ports/primary"
)

// App holds the services of one running routeslip instance.
type App struct {
	Config   *config.Config
	Logger   logger.Logger
	Registry *prometheus.Registry
	Metrics  *app.Metrics

	Deliveries primary.DeliveryService
	Reorder    primary.ReorderService
	Capture    primary.CaptureService
	History    primary.LogService

	store    *app.DeliveryServiceImpl
	database *sql.DB
}

// New opens the store named by cfg and wires every service over it.
func New(ctx context.Context, cfg *config.Config) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	log, err := logger.NewZapLogger(cfg.Log.Level)
	if err != nil {
		return nil, err
	}

	database, err := db.Open(cfg.Store.Path)
	if err != nil {
		return nil, fmt.Errorf("failed to open store: %w", err)
	}

	// Create repository adapters (secondary ports) - sqlite adapters with injected DB
	deliveryRepo := sqlite.NewDeliveryRepository(database)
	eventRepo := sqlite.NewDeliveryEventRepository(database)
	logWriter := sqlite.NewLogWriterAdapter(eventRepo)

	registry := prometheus.NewRegistry()
	metrics := app.NewMetrics(registry)

	images := filesystem.NewImageResolver("")
	store := app.NewDeliveryService(deliveryRepo, images, logWriter, log, metrics)

	var frames *filesystem.InboxFrameSource
	if cfg.Capture.Inbox != "" {
		frames, err = filesystem.NewInboxFrameSource(cfg.Capture.Inbox)
		if err != nil {
			database.Close()
			return nil, err
		}
	}

	captureOpts := app.CaptureOptions{
		Extractor: extract.New(extract.Options{
			InvoiceMaxLen:  cfg.Extract.InvoiceMaxLen,
			Boilerplate:    cfg.Extract.Boilerplate,
			StreetSuffixes: cfg.Extract.StreetSuffixes,
		}),
		Recognizer: tesseract.NewRecognizer(cfg.OCR.Languages),
		Workers:    cfg.Capture.Workers,
		Logger:     log,
		Metrics:    metrics,
	}
	if frames != nil {
		captureOpts.Frames = frames
	}

	log.Debugf(ctx, "opened store %s", cfg.Store.Path)

	return &App{
		Config:     cfg,
		Logger:     log,
		Registry:   registry,
		Metrics:    metrics,
		Deliveries: store,
		Reorder:    app.NewReorderService(store),
		Capture:    app.NewCaptureService(store, captureOpts),
		History:    app.NewLogService(eventRepo),
		store:      store,
		database:   database,
	}, nil
}

// DeliveryAdapter returns a worklist adapter writing to out.
func (a *App) DeliveryAdapter(out io.Writer) *cliadapter.DeliveryAdapter {
	return cliadapter.NewDeliveryAdapter(a.Deliveries, a.Reorder, out)
}

// CaptureAdapter returns a capture review adapter reading answers from in.
func (a *App) CaptureAdapter(in io.Reader, out io.Writer) *cliadapter.CaptureAdapter {
	return cliadapter.NewCaptureAdapter(a.Capture, in, out)
}

// HistoryAdapter returns an audit trail adapter writing to out.
func (a *App) HistoryAdapter(out io.Writer) *cliadapter.HistoryAdapter {
	return cliadapter.NewHistoryAdapter(a.History, out)
}

// Seed fills an empty store with sample deliveries.
func (a *App) Seed() error {
	return db.SeedFixtures(a.database)
}

// Close ends watchers, flushes the logger and closes the store.
func (a *App) Close() error {
	a.store.Close()
	// Sync on a terminal stderr reports EINVAL on some platforms.
	_ = a.Logger.Sync()
	return a.database.Close()
}
