// Package commands implements the CLI commands for rresume.
package commands

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/jasonyy2018/rresume/internal/logger"
	"github.com/jasonyy2018/rresume/internal/output"
	"github.com/jasonyy2018/rresume/pkg/ai"
	"github.com/jasonyy2018/rresume/pkg/llm"
)

var rootCmd = &cobra.Command{
	Use:   "rresume",
	Short: "AI-assisted resume import pipeline",
	Long: `rresume turns resume files into structured resume documents.

PDF and Word files are read by a language model; Reactive Resume and
JSON Resume exports are converted directly. The same pipeline is
available over HTTP with "rresume serve".

Examples:
  # Check that a provider answers
  rresume test-connection -p openai -m gpt-4o

  # Parse a PDF with Gemini
  rresume parse cv.pdf -p gemini

  # Convert a JSON Resume export without any model
  rresume import resume.json --type json-resume-json

  # Rewrite a paragraph for a job posting
  rresume improve "Worked on backend" --job-description job.txt`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logger.Init(logger.Options{
			Debug: viper.GetBool("debug"),
			Quiet: viper.GetBool("quiet"),
			JSON:  viper.GetBool("log_json"),
		})
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default $HOME/.rresume.yaml)")
	pf.Bool("debug", false, "enable debug logging")
	pf.BoolP("quiet", "q", false, "only log errors")
	pf.Bool("log-json", false, "log as JSON")

	pf.StringP("provider", "p", "", "AI provider: "+strings.Join(llm.Names(), ", ")+" (auto-detects from env vars)")
	pf.StringP("model", "m", "", "model name (provider default when empty)")
	pf.StringP("api-key", "k", "", "API key (or use the provider's env var)")
	pf.String("base-url", "", "custom API base URL")
	pf.Duration("parse-timeout", 10*time.Minute, "cap on a document parse")
	pf.Duration("improve-timeout", 2*time.Minute, "cap on a content rewrite")

	_ = viper.BindPFlag("config", pf.Lookup("config"))
	_ = viper.BindPFlag("debug", pf.Lookup("debug"))
	_ = viper.BindPFlag("quiet", pf.Lookup("quiet"))
	_ = viper.BindPFlag("log_json", pf.Lookup("log-json"))
	_ = viper.BindPFlag("provider", pf.Lookup("provider"))
	_ = viper.BindPFlag("model", pf.Lookup("model"))
	_ = viper.BindPFlag("api_key", pf.Lookup("api-key"))
	_ = viper.BindPFlag("base_url", pf.Lookup("base-url"))
	_ = viper.BindPFlag("parse_timeout", pf.Lookup("parse-timeout"))
	_ = viper.BindPFlag("improve_timeout", pf.Lookup("improve-timeout"))
}

func initConfig() {
	if cfgFile := viper.GetString("config"); cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.AddConfigPath(".")
		viper.SetConfigName(".rresume")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("RRESUME")
	viper.AutomaticEnv()

	// Read config file (ignore error if not found)
	_ = viper.ReadInConfig()
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

// credentials resolves the provider settings from flags, config and env.
// Without an explicit provider the first one with a key in the environment wins.
func credentials() (ai.Credentials, error) {
	var (
		id  llm.ID
		key = viper.GetString("api_key")
	)
	if name := viper.GetString("provider"); name != "" {
		parsed, err := llm.ParseID(name)
		if err != nil {
			return ai.Credentials{}, err
		}
		id = parsed
		if key == "" {
			if env := llm.APIKeyEnv(id); env != "" {
				key = os.Getenv(env)
			}
		}
	} else {
		detected, envKey := llm.DetectProvider()
		id = detected
		if key == "" {
			key = envKey
		}
		logger.Debug("auto-detected provider", "provider", id)
	}

	return ai.Credentials{
		Provider: id,
		Model:    viper.GetString("model"),
		APIKey:   key,
		BaseURL:  viper.GetString("base_url"),
	}, nil
}

func newService() *ai.Service {
	return ai.New(
		ai.WithParseTimeout(viper.GetDuration("parse_timeout")),
		ai.WithImproveTimeout(viper.GetDuration("improve_timeout")),
		ai.WithObserver(llm.LogObserver{}),
	)
}

// writeResult prints v to stdout or the --output file.
func writeResult(cmd *cobra.Command, v any) error {
	formatStr, _ := cmd.Flags().GetString("format")
	format, err := output.ParseFormat(formatStr)
	if err != nil {
		return err
	}

	w := os.Stdout
	if path, _ := cmd.Flags().GetString("output"); path != "" {
		f, err := os.Create(path)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer f.Close()
		w = f
		defer func() {
			if info, err := f.Stat(); err == nil {
				logger.Info("wrote output", "path", path, "size", humanize.IBytes(uint64(info.Size())))
			}
		}()
	}
	return output.Write(w, format, v)
}

func addOutputFlags(cmd *cobra.Command, defaultFormat output.Format) {
	cmd.Flags().StringP("output", "o", "", "output file (default: stdout)")
	cmd.Flags().String("format", string(defaultFormat), "output format: json, yaml, text")
}
