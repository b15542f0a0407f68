package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/ssargent/tokenstream/pkg/manifest"
)

var encodeOutput string

// encodeCmd represents the encode command
var encodeCmd = &cobra.Command{
	Use:   "encode [file]",
	Short: "Encode a JSON manifest into TokenStream bytes",
	Long: `Read a JSON-encoded manifest record and write its TokenStream wire
encoding.

Reads from the given file, or from stdin if no file is given.

Example:
  tokenstream encode manifest.json > manifest.ts
  cat manifest.json | tokenstream encode --output manifest.ts`,
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

		var m manifest.Manifest
		if err := json.Unmarshal(raw, &m); err != nil {
			cmd.Printf("Error parsing manifest JSON: %v\n", err)
			return
		}

		out, err := openOutput(encodeOutput)
		if err != nil {
			cmd.Printf("Error: %v\n", err)
			return
		}
		defer out.Close()

		if _, err := out.Write(manifest.Encode(&m)); err != nil {
			cmd.Printf("Error writing encoded manifest: %v\n", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(encodeCmd)
	encodeCmd.Flags().StringVarP(&encodeOutput, "output", "o", "", "Output file (default: stdout)")
}

// openInput returns args[0] opened for reading, or stdin when no file was
// given.
func openInput(args []string) (*os.File, error) {
	if len(args) == 0 || args[0] == "-" {
		return os.Stdin, nil
	}
	f, err := os.Open(args[0])
	if err != nil {
		return nil, fmt.Errorf("failed to open input file: %w", err)
	}
	return f, nil
}

// openOutput returns path opened for writing, or stdout when path is empty.
func openOutput(path string) (*os.File, error) {
	if path == "" || path == "-" {
		return os.Stdout, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("failed to create output file: %w", err)
	}
	return f, nil
}
