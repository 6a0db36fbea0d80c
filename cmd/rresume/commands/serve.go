package commands

import (
	"context"
	"os/signal"
	"syscall"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jasonyy2018/rresume/internal/server"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the AI import routes over HTTP",
	Long: `Start an HTTP server exposing the pipeline:

  POST /api/ai/test-connection
  POST /api/ai/parse-pdf
  POST /api/ai/parse-docx
  POST /api/ai/improve-content
  POST /api/import
  GET  /health

Every request carries its own provider credentials.`,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	flags := serveCmd.Flags()
	flags.String("addr", ":8080", "listen address")
	flags.String("body-limit", "16MiB", "max request body size (e.g. 16MiB)")

	_ = viper.BindPFlag("addr", flags.Lookup("addr"))
	_ = viper.BindPFlag("body_limit", flags.Lookup("body-limit"))
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg := server.DefaultConfig()
	limit, err := humanize.ParseBytes(viper.GetString("body_limit"))
	if err != nil {
		return err
	}
	cfg.BodyLimit = int(limit)
	if t := viper.GetDuration("parse_timeout"); t > 0 {
		// Leave room to write the response after the longest parse.
		cfg.WriteTimeout = t + cfg.ReadTimeout
	}

	return server.New(newService(), cfg).Listen(ctx, viper.GetString("addr"))
}
