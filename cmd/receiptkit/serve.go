package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"

	"github.com/wudi/receiptkit/server"
)

func newServeCmd(a *app) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the capture and split payment API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if a.cfg.Log.Level != "debug" {
				gin.SetMode(gin.ReleaseMode)
			}
			if cmd.Flags().Changed("addr") {
				a.cfg.Server.Addr = addr
			}
			norm := a.normalizer()
			srv := server.New(a.scanner(norm), norm, server.Options{
				Addr:            a.cfg.Server.Addr,
				MaxUploadBytes:  a.cfg.Server.MaxUploadBytes,
				ReadTimeout:     a.cfg.Server.ReadTimeout,
				ShutdownTimeout: a.cfg.Server.ShutdownTimeout,
				Logger:          a.logger,
				Metrics:         a.metrics,
				Limits:          a.limits(),
			})
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.ListenAndServe(ctx)
		},
	}
	cmd.Flags().StringVar(&addr, "addr", "", "listen address (overrides server.addr)")
	return cmd
}
