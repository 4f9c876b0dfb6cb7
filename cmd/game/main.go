package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "game",
	Short: "Integrity Trail, a game about the choices public officials make",
	Long: `Integrity Trail puts you in five positions of public trust. Every decision moves your integrity,
money, power and reputation, and earlier decisions come back as headlines and changed scenarios.`,
	SilenceUsage: true,
	RunE:         runPlay,
}

func init() {
	rootCmd.AddCommand(playCmd, simulateCmd, resetCmd, reportCmd, validateCmd, slotsCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
