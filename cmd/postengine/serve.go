package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/silicogen/postengine"
	"github.com/silicogen/postengine/views"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the blog over HTTP",
	Long: `serve loads the content directory, then serves the blog, its feed, sitemap,
search and admin pages until interrupted. With watch enabled, edits to the
content directory are picked up without a restart.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := appConfig.SiteConfig()
		if serveAddr != "" {
			cfg.Addr = serveAddr
		}
		app := postengine.New(cfg, views.Default(), postengine.WithStaticDir(appConfig.StaticDir))
		defer app.Close()

		if err := app.Setup(); err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		errc := make(chan error, 1)
		go func() {
			fmt.Fprintf(cmd.OutOrStdout(), "Serving %s on %s\n", cfg.Name, app.Config.Addr)
			errc <- app.Echo.Start(app.Config.Addr)
		}()

		select {
		case err := <-errc:
			if !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		case <-ctx.Done():
		}

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return app.Echo.Shutdown(shutdownCtx)
	},
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "listen address (overrides config)")
}
