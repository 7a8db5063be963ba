package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/swdee/go-cvtrack/server"
	"golang.org/x/sync/errgroup"
)

// shutdownTimeout is how long in flight requests are given to finish
const shutdownTimeout = 2 * time.Minute

func newServeCommand(configPath *string) *cobra.Command {

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the video processing HTTP service",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, *configPath)

			if err != nil {
				return err
			}

			srv, err := server.New(cfg)

			if err != nil {
				return err
			}

			defer srv.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt,
				syscall.SIGTERM)
			defer stop()

			return serve(ctx, cfg.Server.Addr, srv.Handler())
		},
	}

	fs := cmd.Flags()
	fs.String("addr", ":5000", "Address to listen on")
	fs.String("upload-dir", "uploads", "Directory uploaded videos are saved to")
	fs.String("output-dir", "outputs", "Directory processed videos are written to")
	fs.Int("pool-size", 2, "Detectors per target, limits concurrent videos")
	fs.Int64("max-upload-mb", 512, "Maximum upload size in megabytes")
	fs.Bool("keep-files", false, "Keep uploaded and processed videos on disk")

	return cmd
}

// serve runs the HTTP server until ctx is cancelled then shuts it down
func serve(ctx context.Context, addr string, handler http.Handler) error {

	httpSrv := &http.Server{
		Addr:              addr,
		Handler:           handler,
		ReadHeaderTimeout: 10 * time.Second,
	}

	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		log.Printf("Listening on %s", addr)

		if err := httpSrv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
			return err
		}

		return nil
	})

	g.Go(func() error {
		<-ctx.Done()
		log.Printf("Shutting down server")

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()

		return httpSrv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
