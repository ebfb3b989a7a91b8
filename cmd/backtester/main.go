package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"breakout20/internal/universe"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "backtester",
	Short: "Run the breakout backtest over the configured instrument lists",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runBacktest(cmd.Context(), configPath)
	},
	SilenceUsage: true,
}

var listsCmd = &cobra.Command{
	Use:   "lists [dir]",
	Short: "Generate the bundled instrument list files",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		dir := "data"
		if len(args) == 1 {
			dir = args[0]
		}
		return universe.Generate(dir)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to the run configuration")
	rootCmd.AddCommand(listsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
