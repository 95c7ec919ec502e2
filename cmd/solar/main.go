package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/danielgtaylor/huma/v2/humacli"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/joeblew999/plat-solar/internal/server"
)

// Options defines all CLI flags and env vars for the viewer server.
// Flags: --host, --port, --data-dir, --web-dir, --dataset, --log-level
// Env vars: SERVICE_HOST, SERVICE_PORT, SERVICE_DATA_DIR, SERVICE_WEB_DIR,
// SERVICE_DATASET, SERVICE_LOG_LEVEL
type Options struct {
	Host     string `doc:"Host to bind to" default:"0.0.0.0"`
	Port     int    `doc:"Port to listen on" short:"p" default:"8087"`
	DataDir  string `doc:"Directory for detection result files" default:".data"`
	WebDir   string `doc:"Path to web/ directory" default:"web"`
	Dataset  string `doc:"Results file inside the data directory" default:"solar_panels_final_results.geojson"`
	LogLevel string `doc:"Log level (debug, info, warn, error)" default:"info"`
}

func newLogger(level string) zerolog.Logger {
	zerolog.TimeFieldFormat = time.RFC3339Nano
	zerolog.SetGlobalLevel(parseLevel(level))
	return zerolog.New(os.Stdout).With().Timestamp().Str("service", "plat-solar").Logger()
}

func parseLevel(level string) zerolog.Level {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "trace":
		return zerolog.TraceLevel
	case "debug":
		return zerolog.DebugLevel
	case "warn", "warning":
		return zerolog.WarnLevel
	case "error":
		return zerolog.ErrorLevel
	default:
		return zerolog.InfoLevel
	}
}

func newServer(opts *Options) *server.Server {
	return server.New(server.Config{
		Host:    opts.Host,
		Port:    fmt.Sprintf("%d", opts.Port),
		DataDir: opts.DataDir,
		WebDir:  opts.WebDir,
		Dataset: opts.Dataset,
		Logger:  newLogger(opts.LogLevel),
	})
}

func main() {
	// A .env next to the binary can fill the SERVICE_* vars in dev.
	_ = godotenv.Load()

	var srv *http.Server

	cli := humacli.New(func(hooks humacli.Hooks, opts *Options) {
		hooks.OnStart(func() {
			logger := newLogger(opts.LogLevel)
			app := newServer(opts)

			addr := fmt.Sprintf("%s:%d", opts.Host, opts.Port)
			displayHost := opts.Host
			if displayHost == "0.0.0.0" {
				displayHost = "localhost"
			}
			baseURL := fmt.Sprintf("http://%s:%d", displayHost, opts.Port)

			logger.Info().Str("url", baseURL).Str("data_dir", opts.DataDir).
				Str("dataset", opts.Dataset).Msg("plat-solar server starting")
			logger.Info().Str("viewer", baseURL+"/viewer").
				Str("docs", baseURL+"/docs").Str("openapi", baseURL+"/openapi.json").
				Msg("pages")

			srv = &http.Server{
				Addr:              addr,
				Handler:           app,
				ReadHeaderTimeout: 5 * time.Second,
			}
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				logger.Fatal().Err(err).Msg("server error")
			}
		})

		hooks.OnStop(func() {
			if srv == nil {
				return
			}
			ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			_ = srv.Shutdown(ctx)
		})
	})

	cli.Root().Use = "solar"
	cli.Root().Short = "Solar-panel detection results viewer"
	cli.Root().Version = "0.1.0"

	// spec subcommand: export OpenAPI spec
	specCmd := &cobra.Command{
		Use:   "spec",
		Short: "Export OpenAPI spec (JSON by default, --yaml for YAML)",
		Run: humacli.WithOptions(func(cmd *cobra.Command, args []string, opts *Options) {
			app := newServer(opts)
			spec := app.OpenAPI()

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

	cli.Run()
}
