package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/h-ikeda/strust/internal/server"
	"github.com/h-ikeda/strust/internal/watch"
)

// Watch performs the initial build-start invocation and then rebuilds on
// every relevant source change until ctx is cancelled. A failed rebuild is
// reported and the session continues; the previous artifact stays on disk.
// A spawn error on the initial build ends the session.
func Watch(ctx context.Context, opts Options) error {
	rt, err := newRuntime(ctx, opts)
	if err != nil {
		return err
	}
	defer rt.close()

	outcome, err := rt.orch.OnBuildStart(ctx)
	if err != nil {
		// An unlaunchable toolchain cannot succeed on a later change
		// either; end the session instead of watching uselessly.
		return err
	}
	if !outcome.Succeeded() {
		rt.log.Warn("initial build failed, watching anyway", "exit_code", outcome.ExitCode)
	}

	if addr := rt.cfg.StatusAddr; addr != "" && addr != "off" {
		srv := &http.Server{
			Addr:    addr,
			Handler: server.NewHandler(rt.store, rt.metrics.Registry(), rt.log),
		}
		go func() {
			rt.log.Info("status server listening", "addr", addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				rt.log.Error("status server stopped", "err", err)
			}
		}()
		defer func() {
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
			defer cancel()
			srv.Shutdown(shutdownCtx)
		}()
	}

	w, err := watch.New(rt.cfg.CrateDir, rt.orch, rt.log)
	if err != nil {
		return err
	}
	defer w.Close()

	rt.log.Info("watching for source changes",
		"dir", rt.cfg.CrateDir, "ext", rt.cfg.SourceExt)

	if err := w.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		return err
	}
	return nil
}
