package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/go-arcade/oneupdate/pkg/version"
)

/**
 * @file: main.go
 * @description: oneupdatectl, command line client of a governing site
 */

var (
	server string
	token  string
)

var rootCmd = &cobra.Command{
	Use:   "oneupdatectl",
	Short: "oneupdatectl manages plugins across a OneUpdate fleet",
	Long:  "oneupdatectl talks to the api of a OneUpdate governing site",
	Run: func(cmd *cobra.Command, args []string) {
		_ = cmd.Help()
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&server, "server", envOr("ONEUPDATE_SERVER", "http://127.0.0.1:8080"), "governing site base url")
	rootCmd.PersistentFlags().StringVar(&token, "token", os.Getenv("ONEUPDATE_TOKEN"), "admin bearer token")

	rootCmd.AddCommand(version.VersionCmd)
	rootCmd.AddCommand(tokenCmd())
	rootCmd.AddCommand(fleetCmd())
	rootCmd.AddCommand(actionCmd())
	rootCmd.AddCommand(sitesCmd())
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
