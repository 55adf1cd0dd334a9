package main

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/promptform/promptform/internal/form"
	"github.com/promptform/promptform/internal/grading"
)

func newScoreCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "score",
		Short: "Score a payload against a form definition",
		Example: `  promptform score --form quiz.json --payload answers.json
  cat answers.json | promptform score --form quiz.json --payload -`,
		RunE: func(cmd *cobra.Command, args []string) error {
			formPath, _ := cmd.Flags().GetString("form")
			payloadPath, _ := cmd.Flags().GetString("payload")
			mode, _ := cmd.Flags().GetString("mode")
			verbose, _ := cmd.Flags().GetBool("verbose")

			def, err := readDefinition(cmd, formPath)
			if err != nil {
				return err
			}
			sub := form.Payload{}
			if payloadPath != "" {
				raw, err := readInput(cmd, payloadPath)
				if err != nil {
					return err
				}
				if err := json.Unmarshal(raw, &sub); err != nil {
					return fmt.Errorf("%s: invalid payload: %w", payloadPath, err)
				}
			}

			opts := []grading.Option{}
			if verbose {
				opts = append(opts, grading.WithLogger(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelDebug}))))
			}
			engine := grading.NewEngine(opts...)

			var res form.Result
			switch strings.ToLower(mode) {
			case "", "auto":
				res = engine.Calculate(def, sub)
			case "knowledge":
				res = engine.Knowledge(def, sub)
			case "outcome":
				res = engine.Outcome(def, sub)
			default:
				return fmt.Errorf("unknown mode %q (want auto, knowledge or outcome)", mode)
			}
			return printJSON(cmd, res)
		},
	}
	cmd.Flags().String("form", "", "Form definition JSON file (- for stdin)")
	cmd.Flags().String("payload", "", "Submission payload JSON file (- for stdin)")
	cmd.Flags().String("mode", "auto", "Scoring mode: auto, knowledge or outcome")
	cmd.Flags().BoolP("verbose", "v", false, "Print scoring traces to stderr")
	_ = cmd.MarkFlagRequired("form")
	return cmd
}
