package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/promptform/promptform/internal/form"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "promptform",
		Short:         "PromptForm form scoring service",
		Long:          "PromptForm serves form definitions, scores responses and checks outcome ranges.",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("env-file", ".env", "Optional dotenv file loaded before reading the environment")

	root.AddCommand(newServeCmd())
	root.AddCommand(newScoreCmd())
	root.AddCommand(newRangesCmd())
	return root
}

// readDefinition loads a form definition from path ("-" for stdin). A
// stored form record ({"definition": ...}) is accepted as well.
func readDefinition(cmd *cobra.Command, path string) (form.Definition, error) {
	raw, err := readInput(cmd, path)
	if err != nil {
		return form.Definition{}, err
	}
	var rec struct {
		Definition json.RawMessage `json:"definition"`
	}
	if json.Unmarshal(raw, &rec) == nil && len(rec.Definition) > 0 && rec.Definition[0] == '{' {
		raw = rec.Definition
	}
	def, err := form.ParseDefinition(raw)
	if err != nil {
		return form.Definition{}, fmt.Errorf("%s: %w", path, err)
	}
	return def, nil
}

func readInput(cmd *cobra.Command, path string) ([]byte, error) {
	if path == "" {
		return nil, fmt.Errorf("missing input file")
	}
	if path == "-" {
		return io.ReadAll(cmd.InOrStdin())
	}
	return os.ReadFile(path)
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
