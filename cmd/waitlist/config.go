package main

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"github.com/osa911/waitlist/internal/config/firebase"
	"github.com/osa911/waitlist/internal/logging"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Inspect the Firebase configuration",
	Long:  `Resolve the public Firebase configuration the way the site does and print it.`,
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Resolve and print the Firebase configuration",
	Long: `Resolve the Firebase configuration through the provider chain: the
remote endpoint at --origin (skipped for loopback origins), then FIREBASE_*
environment variables, then the embedded defaults.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		origin, _ := cmd.Flags().GetString("origin")
		timeout, _ := cmd.Flags().GetDuration("timeout")

		loader := firebase.NewDefaultLoader(origin, logging.NewNopLogger())

		ctx, cancel := context.WithTimeout(cmd.Context(), timeout)
		defer cancel()

		s := spinner.New(spinner.CharSets[14], 120*time.Millisecond)
		s.Writer = cmd.ErrOrStderr()
		s.Suffix = " Resolving Firebase configuration..."
		s.Start()
		cfg, err := loader.Load(ctx)
		s.Stop()

		out := cmd.OutOrStdout()
		for _, attempt := range loader.Attempts() {
			status := "ok"
			if attempt.Err != nil {
				status = attempt.Err.Error()
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "  %-8s %s\n", attempt.Source, status)
		}
		if err != nil {
			return fmt.Errorf("%s: %w", firebase.UnavailableMessage, err)
		}

		data, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return fmt.Errorf("failed to marshal config: %w", err)
		}
		fmt.Fprintln(out, string(data))
		return nil
	},
}

// initConfigCommands sets up all config-related commands
func initConfigCommands() {
	configCmd.AddCommand(configShowCmd)

	configShowCmd.Flags().String("origin", "http://localhost:8080", "Site origin serving "+firebase.ConfigEndpointPath)
	configShowCmd.Flags().Duration("timeout", 15*time.Second, "Give up after this long")
}
