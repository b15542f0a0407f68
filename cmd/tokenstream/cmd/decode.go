package cmd

import (
	"encoding/json"
	"io"

	"github.com/spf13/cobra"

	"github.com/ssargent/tokenstream/pkg/manifest"
)

var decodeOutput string

// decodeCmd represents the decode command
var decodeCmd = &cobra.Command{
	Use:   "decode [file]",
	Short: "Decode TokenStream bytes into a JSON manifest",
	Long: `Read a TokenStream-encoded manifest record and write it back out as
JSON.

Reads from the given file, or from stdin if no file is given.

Example:
  tokenstream decode manifest.ts > manifest.json
  cat manifest.ts | tokenstream decode`,
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

		m, err := manifest.Decode(raw)
		if err != nil {
			cmd.Printf("Error decoding manifest: %v\n", err)
			return
		}

		encoded, err := json.MarshalIndent(m, "", "  ")
		if err != nil {
			cmd.Printf("Error rendering manifest as JSON: %v\n", err)
			return
		}

		out, err := openOutput(decodeOutput)
		if err != nil {
			cmd.Printf("Error: %v\n", err)
			return
		}
		defer out.Close()

		if _, err := out.Write(append(encoded, '\n')); err != nil {
			cmd.Printf("Error writing decoded manifest: %v\n", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(decodeCmd)
	decodeCmd.Flags().StringVarP(&decodeOutput, "output", "o", "", "Output file (default: stdout)")
}
