package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Elonsoft/defparser/internal/reload"
	"github.com/Elonsoft/defparser/internal/server"
)

func newServeCmd(a *app) *cobra.Command {
	var (
		port  int
		watch bool
	)
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP validation server",
		Long: `Defines every configured parser and serves them over HTTP until interrupted.
With --watch the parsers are rebuilt when a schema file changes or the
process receives SIGHUP; a schema that fails to compile keeps the previous
parsers in service.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			if cmd.Flags().Changed("port") {
				a.cfg.Server.Port = port
			}
			reg, err := a.registry()
			if err != nil {
				return err
			}

			opts := server.Options{Logger: a.logger, MaxBodyBytes: a.cfg.Server.MaxBodyBytes}
			if a.cfg.Metrics.Enabled {
				opts.MetricsPath = a.cfg.Metrics.Path
			}

			srv := server.New(reg, opts)

			if watch {
				sources, err := a.sources()
				if err != nil {
					return err
				}
				files := make([]string, 0, len(sources))
				for _, src := range sources {
					files = append(files, src.Path)
				}
				w, err := reload.New(files, a.registry, a.logger)
				if err != nil {
					return err
				}
				w.OnChange(srv.SetRegistry)
				if err := w.Start(); err != nil {
					return err
				}
				w.WatchSignals()
				defer w.Stop()
			}

			// Cancelled on interrupt or terminate signals.
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return srv.Run(ctx, a.cfg.Server)
		},
	}
	cmd.Flags().IntVarP(&port, "port", "P", 8080, "Port to listen on (overrides the configuration)")
	cmd.Flags().BoolVarP(&watch, "watch", "w", false, "Reload the parsers when a schema file changes or on SIGHUP")
	return cmd
}
