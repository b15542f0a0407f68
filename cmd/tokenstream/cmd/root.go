/*
Copyright © 2025 NAME HERE <EMAIL ADDRESS>
*/
package cmd

import (
	"os"

	"github.com/spf13/cobra"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:   "tokenstream",
	Short: "TokenStream - binary token/length/payload record codec",
	Long: `tokenstream encodes and decodes TokenStream records (the
<token><length><payload> chunk format) and serves a REST API over records
kept in a Pebble-backed manifest store.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately. This is called by main.main(). It only needs to happen
// once to the rootCmd.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
