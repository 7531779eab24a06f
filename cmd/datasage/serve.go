package main

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/datasage-ai/datasage/internal/httpapi"
	"github.com/datasage-ai/datasage/internal/pipeline"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the report API over HTTP",
	RunE:  runServe,
}

func runServe(cmd *cobra.Command, args []string) error {
	rt, err := newRuntime()
	if err != nil {
		return err
	}

	wf, closeStore, err := rt.workflowFor(cfg.Database.DSN)
	if err != nil {
		return err
	}
	defer closeStore()

	// Requests naming a different store get a workflow of their own, opened
	// for that request only. The default store stays open for the server's
	// lifetime.
	run := func(ctx context.Context, question, dsn string) (pipeline.State, error) {
		if dsn == "" || dsn == cfg.Database.DSN {
			return wf.Run(ctx, question)
		}
		perStore, closePerStore, err := rt.workflowFor(dsn)
		if err != nil {
			return pipeline.State{}, err
		}
		defer closePerStore()
		return perStore.Run(ctx, question)
	}

	addr := serveAddr
	if addr == "" {
		addr = cfg.Server.Addr
	}

	srv := httpapi.NewServer(httpapi.Config{
		ReportsDir:     cfg.Output.ReportsDir,
		RequestTimeout: cfg.Server.RequestTimeout,
	}, run, logger)

	return srv.ListenAndServe(cmd.Context(), addr)
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides config)")
}
