package cmd

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ssargent/tokenstream/pkg/tsio"
)

var inspectMaxDepth int

// inspectCmd represents the inspect command
var inspectCmd = &cobra.Command{
	Use:   "inspect [file]",
	Short: "Dump the chunk structure of a TokenStream record",
	Long: `Walk a TokenStream-encoded record's raw <token><length><payload>
chunks without a declared schema, printing each chunk's token, payload
length, and nesting depth. A chunk's payload is shown expanded as nested
chunks when it parses cleanly as its own token stream, and as a byte count
otherwise.

Reads from the given file, or from stdin if no file is given.

Example:
  tokenstream inspect manifest.ts`,
	Args: cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		input, err := openInput(args)
		if err != nil {
			cmd.Printf("Error: %v\n", err)
			return
		}
		defer input.Close()

		raw, err := io.ReadAll(input)
		if err != nil {
			cmd.Printf("Error reading input: %v\n", err)
			return
		}

		inspectChunks(cmd.OutOrStdout(), raw, 0)
	},
}

func init() {
	rootCmd.AddCommand(inspectCmd)
	inspectCmd.Flags().IntVar(&inspectMaxDepth, "max-depth", 8, "Maximum nesting depth to expand before treating a chunk as opaque")
}

// inspectChunks decodes data as a flat run of <token><length><payload>
// chunks, printing one line per chunk and recursing into payloads that
// themselves parse cleanly as a token stream. A payload that does not
// parse, or that would exceed --max-depth, is reported as an opaque byte
// count — the only way to tell a nested sub-stream from a scalar payload
// without the token map that produced it.
func inspectChunks(w io.Writer, data []byte, depth int) {
	indent := strings.Repeat("  ", depth)
	r := tsio.NewReader(data)

	for !r.EOS() {
		token := r.GetToken()
		if r.BadStream() {
			fmt.Fprintf(w, "%s<malformed chunk header>\n", indent)
			return
		}
		length := r.RemainingInElement()
		payload := r.GetBytes()

		fmt.Fprintf(w, "%stoken=%d length=%d\n", indent, token, length)

		if depth >= inspectMaxDepth || len(payload) == 0 {
			continue
		}
		if nested, ok := tryParseAsChunks(payload); ok {
			inspectChunks(w, nested, depth+1)
		}
	}
}

// tryParseAsChunks reports whether payload parses end-to-end as a clean
// token stream (no error latch trip, cursor lands exactly at the end), in
// which case it is returned unchanged for the caller to recurse into.
func tryParseAsChunks(payload []byte) ([]byte, bool) {
	r := tsio.NewReader(payload)
	for !r.EOS() {
		r.GetToken()
		if r.BadStream() {
			return nil, false
		}
		r.Skip()
	}
	if !r.VerifyEOS() {
		return nil, false
	}
	return payload, true
}
