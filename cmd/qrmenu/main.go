// Command qrmenu runs the QR menu server and its maintenance tasks.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	// Migrations and seeders register themselves from init().
	_ "github.com/shashiranjanraj/qrmenu/database/migrations"
	_ "github.com/shashiranjanraj/qrmenu/database/seeders"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:           "qrmenu",
	Short:         "QR menu server",
	Long:          "qrmenu serves restaurant menus behind QR codes and the owner API that manages them.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(routeListCmd)

	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(migrateRollbackCmd)
	rootCmd.AddCommand(migrateStatusCmd)
	rootCmd.AddCommand(seedCmd)
}
