package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

var noColor bool

var rootCmd = &cobra.Command{
	Use:   "aura",
	Short: "Aura, a supportive PCOD/PCOS companion",
	Long: `Aura turns symptom checklists, period logs and lifestyle answers into
gentle, personalised guidance from a text-completion service.

Run "aura start" to serve the HTTP API, then use the other commands as a client.`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.PersistentFlags().BoolVar(&noColor, "no-color", os.Getenv("NO_COLOR") != "", "disable colored output")

	rootCmd.AddCommand(startCmd)
	rootCmd.AddCommand(stopCmd)
	rootCmd.AddCommand(statusCmd)
	rootCmd.AddCommand(mcpCmd)

	rootCmd.AddCommand(chatCmd)
	rootCmd.AddCommand(assessCmd)
	rootCmd.AddCommand(logPeriodCmd)
	rootCmd.AddCommand(tipsCmd)
	rootCmd.AddCommand(learnCmd)
	rootCmd.AddCommand(expertsCmd)
	rootCmd.AddCommand(profileCmd)
	rootCmd.AddCommand(configCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, colorize(colorRed, "error: "+err.Error()))
		os.Exit(1)
	}
}
