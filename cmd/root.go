// Package cmd implements CLI commands using cobra framework.
package cmd

import (
	"github.com/spf13/cobra"
)

var (
	// Global flags
	configFile string
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "vjtap",
	Short: "vjtap - Van Jacobson TCP/IP header decompressor for PPP captures",
	Long: `vjtap rebuilds the full IPv4/TCP headers of Van Jacobson (RFC 1144)
compressed PPP traffic.

It replays a pcap or pcapng capture of a PPP link, keeps the per-direction
connection slot tables the way the receiving peer would, and writes every
reconstructed datagram to the console and/or a raw-IP pcap file.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	// Global flags
	rootCmd.PersistentFlags().StringVarP(&configFile, "config", "c", "",
		"config file path (defaults and VJTAP_* environment only when empty)")

	// Add subcommands
	rootCmd.AddCommand(decodeCmd)
	rootCmd.AddCommand(validateCmd)
}
