package main

import (
	"fmt"
	"os"

	"github.com/saslab/sasdevices/internal/version"
	"github.com/spf13/cobra"
)

var cfgFile string

var rootCmd = &cobra.Command{
	Use:   "sasdevices",
	Short: "Enumerate SAS topology and cluster devices by enclosure",
	Long: `sasdevices walks the kernel's SAS device classes and reports hosts,
expanders and end devices. Multipath devices are deduplicated by their
logical unit identifier and clustered into enclosure groups, so a
24-bay shelf of identical disks prints as one summary line instead of
48 device rows.`,
	Run: runReport,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the sasdevices version",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Println(version.Version)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is /etc/sasdevices/config.yaml)")

	rootCmd.Flags().BoolP("verbose", "v", false, "list every logical unit instead of folded summaries")
	rootCmd.Flags().Bool("json", false, "Output as JSON")
	rootCmd.Flags().Bool("no-color", false, "disable warning highlighting")

	rootCmd.AddCommand(snapshotCmd)
	rootCmd.AddCommand(historyCmd)
	rootCmd.AddCommand(versionCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
