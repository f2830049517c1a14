package cli

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/outpostkit/fetch"
	"github.com/outpostkit/fetch/download"
)

var getCmd = &cobra.Command{
	Use:   "get URL",
	Short: "Make a GET request, optionally saving the body to a file",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		headers, _ := cmd.Flags().GetStringArray("header")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		noColor, _ := cmd.Flags().GetBool("no-color")
		output, _ := cmd.Flags().GetString("output")

		var opts []fetch.Option
		if timeout > 0 {
			opts = append(opts, fetch.WithTimeout(timeout))
		}

		d, err := fetch.New(opts...)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		ctx := context.Background()
		r := d.Dispatch(ctx, args[0],
			fetch.WithHeaders(parseHeaders(headers)),
			fetch.WithChunking(output != ""),
			fetch.WithExpectStatus(http.StatusOK),
		)

		if output != "" {
			logger := slog.New(slog.NewTextHandler(os.Stderr, nil))
			if err := download.Stream(ctx, r, output, logger, download.WithProgress()); err != nil {
				fmt.Fprintf(os.Stderr, "Error: %v\n", err)
				os.Exit(1)
			}
			return
		}

		resp, err := r.Response()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		os.Stdout.Write(resp.Body)
		statusColor(resp.StatusCode, noColor).Fprintf(os.Stderr, "\n%d %s\n", resp.StatusCode, http.StatusText(resp.StatusCode))
	},
}

func init() {
	getCmd.Flags().StringP("output", "o", "", "Write the response body to the given file")
}
