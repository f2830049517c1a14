package cli

import (
	"context"
	"fmt"
	"net/http"
	"os"

	"github.com/spf13/cobra"

	"github.com/outpostkit/fetch"
	"github.com/outpostkit/fetch/transport"
)

var tailCmd = &cobra.Command{
	Use:   "tail URL",
	Short: "Stream a URL, printing each chunk as it arrives",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		headers, _ := cmd.Flags().GetStringArray("header")
		timeout, _ := cmd.Flags().GetDuration("timeout")
		noColor, _ := cmd.Flags().GetBool("no-color")

		opts := []fetch.Option{
			fetch.WithDefaults(fetch.Defaults{Chunking: true}),
		}
		if timeout > 0 {
			opts = append(opts, fetch.WithTimeout(timeout))
		}

		d, err := fetch.New(opts...)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		r := d.Dispatch(context.Background(), args[0],
			fetch.WithHeaders(parseHeaders(headers)),
			fetch.WithExpectStatus(http.StatusOK),
		)
		r.OnProgress(func(ev transport.ProgressEvent, chunk []byte) {
			if len(chunk) > 0 {
				os.Stdout.Write(chunk)
			}
		})

		resp, err := r.Response()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}

		statusColor(resp.StatusCode, noColor).Fprintf(os.Stderr, "\n%d %s\n", resp.StatusCode, http.StatusText(resp.StatusCode))
	},
}
