package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/joeblew999/plat-style/internal/server"
)

const shutdownTimeout = 5 * time.Second

// Options defines all CLI flags and env vars for the style server.
// Flags: --host, --port, --data-dir, --asset-dir, --style, --pixel-ratio, --cache-mb, --db, --debug
// Env vars: SERVICE_HOST, SERVICE_PORT, SERVICE_DATA_DIR, SERVICE_ASSET_DIR, SERVICE_STYLE, ...
type Options struct {
	Host       string `doc:"Host to bind to" default:"0.0.0.0"`
	Port       int    `doc:"Port to listen on" short:"p" default:"8087"`
	DataDir    string `doc:"Directory for snapshot data" default:".data"`
	AssetDir   string `doc:"Root directory for asset:// and file:// URLs" default:"assets"`
	Style      string `doc:"Style URL to load when no snapshot exists"`
	PixelRatio int    `doc:"Device pixel ratio for sprites (1 or 2)" default:"1"`
	CacheMB    int    `doc:"Resource cache size in MiB (0 disables)" default:"64"`
	DB         bool   `doc:"Persist snapshots in DuckDB" default:"true"`
	Debug      bool   `doc:"Enable debug logging"`
}

func newLogger(opts *Options) *slog.Logger {
	level := slog.LevelInfo
	if opts.Debug {
		level = slog.LevelDebug
	}
	return slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))
}

func newServer(opts *Options, logger *slog.Logger) *server.Server {
	return server.New(server.Config{
		Host:       opts.Host,
		Port:       fmt.Sprintf("%d", opts.Port),
		DataDir:    opts.DataDir,
		AssetDir:   opts.AssetDir,
		StyleURL:   opts.Style,
		PixelRatio: float32(opts.PixelRatio),
		CacheMB:    opts.CacheMB,
		EnableDB:   opts.DB,
		Logger:     logger,
	})
}

func main() {
	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		logger := newLogger(opts)
		srv := newServer(opts, logger)
		httpSrv := &http.Server{
			Addr:    fmt.Sprintf("%s:%d", opts.Host, opts.Port),
			Handler: srv,
		}

		hooks.OnStart(func() {
			if err := srv.Init(context.Background()); err != nil {
				logger.Error("initial style not loaded", "error", err)
			}

			displayHost := opts.Host
			if displayHost == "0.0.0.0" {
				displayHost = "localhost"
			}
			baseURL := fmt.Sprintf("http://%s:%d", displayHost, opts.Port)

			fmt.Println()
			fmt.Printf("plat-style API server starting...\n")
			fmt.Printf("  Server:  %s\n", baseURL)
			fmt.Printf("  Assets:  %s\n", opts.AssetDir)
			fmt.Printf("  Data:    %s\n", opts.DataDir)
			fmt.Println()
			fmt.Printf("  Events:  %s/api/v1/editor/events\n", baseURL)
			fmt.Printf("  Docs:    %s/docs\n", baseURL)
			fmt.Printf("  OpenAPI: %s/openapi.json\n", baseURL)
			fmt.Println()

			if err := httpSrv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Error("server error", "error", err)
				os.Exit(1)
			}
		})

		hooks.OnStop(func() {
			ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			httpSrv.Shutdown(ctx)
			if err := srv.Close(); err != nil {
				logger.Warn("close failed", "error", err)
			}
		})
	})

	cli.Root().Use = "style"
	cli.Root().Short = "Map style document server"
	cli.Root().Version = "0.1.0"

	// spec subcommand: export OpenAPI spec
	specCmd := &cobra.Command{
		Use:   "spec",
		Short: "Export OpenAPI spec (JSON by default, --yaml for YAML)",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			opts.DB = false
			srv := newServer(opts, slog.New(slog.DiscardHandler))
			defer srv.Close()
			spec := srv.OpenAPI()

			useYAML, _ := cmd.Flags().GetBool("yaml")

			var output []byte
			var err error
			if useYAML {
				output, err = yaml.Marshal(spec)
			} else {
				output, err = json.MarshalIndent(spec, "", "  ")
			}
			if err != nil {
				fmt.Fprintf(os.Stderr, "Error marshaling spec: %v\n", err)
				os.Exit(1)
			}
			fmt.Println(string(output))
		}),
	}
	specCmd.Flags().BoolP("yaml", "y", false, "Output as YAML instead of JSON")
	cli.Root().AddCommand(specCmd)

	cli.Root().AddCommand(newInspectCmd())

	cli.Run()
}
