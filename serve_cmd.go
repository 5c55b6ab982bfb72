package main

import (
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"

	"github.com/speakdoc/speakdoc/internal/server"
	"github.com/speakdoc/speakdoc/internal/speech"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the speakdoc web API",
	Long: "\nRun the JSON HTTP API: document upload and web-page extraction," +
		"\nvoice listing, and background speech synthesis with task tracking.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, err := server.LoadConfig()
		if err != nil {
			return err
		}
		if cfg.Engine == "" {
			cfg.Engine = engineName
		}

		// An engine failure degrades the server instead of killing it:
		// extraction endpoints stay up, synthesis answers 503.
		engine, err := speech.New(cfg.Engine, cfg.GoogleCreds)
		if err != nil {
			log.Warn("starting without a speech engine", "err", err)
			engine = nil
		} else {
			defer engine.Close() //nolint:errcheck
		}

		srv, err := server.New(cfg, engine)
		if err != nil {
			return err
		}
		return srv.ListenAndServe(cmd.Context())
	},
}
