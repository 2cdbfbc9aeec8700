package cmd

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	globalVerbose bool
	globalQuiet   bool
)

var rootCmd = &cobra.Command{
	Use:     "chainbreaker",
	Short:   "Forensic reader for legacy macOS Apple DB keychain files",
	Version: "0.1.0-dev",
	Long: `chainbreaker is a read-only command-line tool for parsing the legacy
macOS "Apple DB" keychain file format. Given a keychain file and, optionally,
an unlock secret (password, hex key, or unlock-file), it decrypts the
database key and dumps the contained credentials and keying material.`,
}

// Execute adds all child commands to the root command and sets flags
// appropriately.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&globalVerbose, "debug", "d", false, "enable verbose diagnostic output")
	rootCmd.PersistentFlags().BoolVarP(&globalQuiet, "quiet", "q", false, "suppress all non-essential output")
	rootCmd.AddCommand(dumpCmd)
}
