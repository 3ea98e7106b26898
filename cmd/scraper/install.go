package main

import (
	"github.com/spf13/cobra"

	"go-jobscraper/internal/browser"
)

var installCmd = &cobra.Command{
	Use:   "install",
	Short: "Download the playwright driver and chromium",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		return browser.InstallChromium()
	},
}

func init() {
	rootCmd.AddCommand(installCmd)
}
