// Package di assembles the application's dependency graph.
package di

import (
	"context"
	"net/http"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"stackecho/application/ports"
	"stackecho/application/session"
	"stackecho/infrastructure/config"
	"stackecho/infrastructure/messaging"
	"stackecho/infrastructure/observability"
	"stackecho/interfaces/websocket"
)

// Container holds all application dependencies
type Container struct {
	Config     *config.Config
	Logger     *zap.Logger
	LogLevel   zap.AtomicLevel
	Snapshots  ports.SnapshotStore
	Sessions   *session.Manager
	Dispatcher *messaging.Dispatcher
	Hub        *websocket.Hub
	Metrics    *observability.Collector
	Tracing    *observability.Tracing
	Watcher    *config.Watcher
	Handler    http.Handler
}

// RunWorkers runs the background loops until ctx is done, including the
// idle session sweep. The dispatcher drains its queue before returning.
func (c *Container) RunWorkers(ctx context.Context) error {
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error { return c.Dispatcher.Run(ctx) })
	g.Go(func() error { return c.Hub.Run(ctx) })
	g.Go(func() error { return c.Sessions.Run(ctx) })
	if c.Watcher != nil {
		g.Go(func() error { return c.Watcher.Run(ctx) })
	}

	return g.Wait()
}
