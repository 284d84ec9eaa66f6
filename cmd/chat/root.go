package main

import (
	"errors"
	"fmt"
	"log/slog"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/petasbytes/chat-cli/internal/config"
	"github.com/petasbytes/chat-cli/internal/logger"
	"github.com/petasbytes/chat-cli/internal/responses"
	"github.com/petasbytes/chat-cli/internal/session"
	"github.com/petasbytes/chat-cli/tools"
)

var (
	cfgFile string
	cfg     *config.Config
	log     *slog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive chat with tool dispatch and file references",
	Long: `chat is an interactive terminal client for a remote conversational
model. It expands @path file references in your input, lets the model
edit files through a sandboxed tool set, and tracks token usage across
the session.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A local .env is a convenience, not a requirement.
		godotenv.Load()

		var err error
		cfg, err = config.Load(cmd)
		if err != nil {
			if errors.Is(err, config.ErrMissingAPIKey) {
				return fmt.Errorf("OPENAI_API_KEY is not set; export it or add it to .env")
			}
			return err
		}

		log = logger.Setup(cfg.LogLevel)
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		client := responses.NewClient(cfg.APIKey, cfg.BaseURL, log)
		sess := session.New(session.Options{
			Model:         cfg.Model,
			Client:        client,
			Tools:         tools.Registry(),
			Observer:      newConsoleObserver(os.Stdout),
			Logger:        log,
			SearchEnabled: cfg.WebSearch,
			HistoryLimit:  cfg.HistoryLimit,
		})
		return runREPL(cmd.Context(), sess)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is $HOME/.chat-cli/config.yaml)")
	rootCmd.PersistentFlags().String("model", config.DefaultModel, "model name")
	rootCmd.PersistentFlags().String("base_url", config.DefaultBaseURL, "service base URL")
	rootCmd.PersistentFlags().String("log_level", config.DefaultLogLevel, "log level (trace, debug, info, warn, error)")
	rootCmd.PersistentFlags().Bool("web_search", config.DefaultWebSearch, "enable web search at startup")
	rootCmd.PersistentFlags().Int("history_limit", config.DefaultHistoryLimit, "max history items fetched by /history")
}
