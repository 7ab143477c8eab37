package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var Version = "0.1.0"

var configPath string

var rootCmd = &cobra.Command{
	Use:     "beambar",
	Version: Version,
	Short:   "beambar generates an i3bar status line from reactive blocks",
	Long:    "beambar renders status-bar blocks over the i3bar JSON protocol, refreshing them on kernel change notifications instead of polling",
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default <user-config-dir>/beambar/beambar.yaml)")
	rootCmd.AddCommand(startCmd)
}
