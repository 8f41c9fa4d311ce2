// Package cli provides the routeslip commands.
package cli

import (
	gocontext "context"
	"fmt"
	"io"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"

	"github.com/example/routeslip/internal/config"
	"github.com/example/routeslip/internal/ctxutil"
	"github.com/example/routeslip/internal/wire"
)

// Session owns the application opened for one invocation. A shell session
// keeps it open across commands so pending candidates and watchers survive.
type Session struct {
	app         *wire.App
	dumpMetrics bool

	// shellCtx is set while a shell runs; watchers started inside the
	// shell live until it exits.
	shellCtx gocontext.Context
	watching bool
}

// NewSession returns a session with no store open yet.
func NewSession() *Session {
	return &Session{}
}

// open loads the configuration in dir and wires the application once.
func (s *Session) open(dir string) (*wire.App, error) {
	if s.app != nil {
		return s.app, nil
	}

	cfg, err := config.LoadConfig(dir)
	if err != nil {
		return nil, err
	}

	app, err := wire.New(gocontext.Background(), cfg)
	if err != nil {
		return nil, err
	}
	s.app = app
	return s.app, nil
}

// App returns the open application.
func (s *Session) App() (*wire.App, error) {
	if s.app == nil {
		return nil, fmt.Errorf("no open store; run from a workspace or pass --dir")
	}
	return s.app, nil
}

// Context creates a context.Background() with the operator id embedded.
// CLI commands should use this instead of context.Background() directly.
func (s *Session) Context() gocontext.Context {
	ctx := gocontext.Background()
	if s.app != nil && s.app.Config.Operator.ID != "" {
		return ctxutil.WithActorID(ctx, s.app.Config.Operator.ID)
	}
	return ctx
}

// Close closes the open application, printing its metrics to w first
// when --metrics was given. Closing an unopened session is a no-op.
func (s *Session) Close(w io.Writer) error {
	if s.app == nil {
		return nil
	}
	app := s.app
	s.app = nil

	if s.dumpMetrics {
		if err := writeMetrics(w, app.Registry); err != nil {
			app.Close()
			return err
		}
	}
	return app.Close()
}

func writeMetrics(w io.Writer, gatherer prometheus.Gatherer) error {
	families, err := gatherer.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, mf := range families {
		if _, err := expfmt.MetricFamilyToText(w, mf); err != nil {
			return fmt.Errorf("failed to write metrics: %w", err)
		}
	}
	return nil
}
