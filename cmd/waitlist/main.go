package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/osa911/waitlist/internal/config"
	"github.com/osa911/waitlist/internal/logging"
	"github.com/osa911/waitlist/internal/server"
	"github.com/osa911/waitlist/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "waitlist",
	Short: "Waitlist - inquiry form backend",
	Long: `Waitlist serves the marketing site's inquiry form: it issues form
sessions, screens submissions for abuse and stores accepted inquiries.`,
	SilenceUsage: true,
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.Load()
		if err != nil {
			return err
		}
		if port, _ := cmd.Flags().GetString("port"); port != "" {
			cfg.Port = port
		}
		if memory, _ := cmd.Flags().GetBool("memory"); memory {
			cfg.Persistence = "memory"
		}

		logging.Configure(logging.ServiceConfig(cfg.LogLevel, cfg.LogFile))
		logger := logging.GetLogger()
		defer logger.Close()

		logger.Info("Starting waitlist %s in %s mode", version.Info(), cfg.Environment)

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		return server.Run(ctx, cfg, logger)
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "waitlist version: %s\n", version.Info())
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(versionCmd)

	serveCmd.Flags().String("port", "", "Port to listen on (overrides API_PORT)")
	serveCmd.Flags().Bool("memory", false, "Keep inquiries in memory instead of Firestore")

	initConfigCommands()
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
