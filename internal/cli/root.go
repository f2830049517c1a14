package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
)

var version = "0.1.0"

// RootCmd represents the base command when called without any subcommands.
var RootCmd = &cobra.Command{
	Use:     "fetchctl",
	Short:   "Progress-aware HTTP fetching from the terminal",
	Version: version,
	Long: `Fetchctl dispatches HTTP requests with incremental progress and
chunked response streaming: tail a server-sent stream line by line,
or download a file with live progress reporting.`,
	Run: func(cmd *cobra.Command, args []string) {
		cmd.Help()
	},
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the RootCmd.
func Execute() {
	if err := RootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	RootCmd.AddCommand(tailCmd)
	RootCmd.AddCommand(getCmd)

	RootCmd.PersistentFlags().StringArray("header", nil, "Request header in 'Key: Value' form (repeatable)")
	RootCmd.PersistentFlags().Duration("timeout", 0, "Overall request timeout (0 means none)")
	RootCmd.PersistentFlags().Bool("no-color", false, "Disable colored output")
}

// parseHeaders converts 'Key: Value' strings into a header map.
func parseHeaders(raw []string) map[string][]string {
	headers := make(map[string][]string)
	for _, header := range raw {
		parts := strings.SplitN(header, ":", 2)
		if len(parts) == 2 {
			key := strings.TrimSpace(parts[0])
			headers[key] = append(headers[key], strings.TrimSpace(parts[1]))
		}
	}
	return headers
}
