package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/promptform/promptform/internal/grading"
)

var errRangesInvalid = errors.New("outcome ranges are invalid")

func newRangesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "ranges",
		Short: "Check or compute outcome score ranges",
	}

	check := &cobra.Command{
		Use:   "check",
		Short: "Validate a form's result page ranges against its maximum score",
		RunE: func(cmd *cobra.Command, args []string) error {
			formPath, _ := cmd.Flags().GetString("form")
			fix, _ := cmd.Flags().GetBool("fix")
			def, err := readDefinition(cmd, formPath)
			if err != nil {
				return err
			}
			top := grading.MaxScore(def)
			if fix {
				def.ResultPages = grading.RedistributePages(def.ResultPages, top)
				if note := grading.CrowdedNote(len(def.ResultPages), top); note != "" {
					fmt.Fprintln(cmd.ErrOrStderr(), "warning: "+note)
				}
				return printJSON(cmd, def)
			}
			rep := grading.ValidateOutcomeRanges(def.ResultPages, top)
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "max score: %g\n", top)
			if rep.Valid {
				fmt.Fprintln(out, "ranges OK")
				return nil
			}
			for _, issue := range rep.Issues {
				fmt.Fprintln(out, "- "+issue)
			}
			return errRangesInvalid
		},
	}
	check.Flags().String("form", "", "Form definition JSON file (- for stdin)")
	check.Flags().Bool("fix", false, "Print the definition with evenly redistributed ranges instead")
	_ = check.MarkFlagRequired("form")

	distribute := &cobra.Command{
		Use:   "distribute",
		Short: "Split [0, max] into even contiguous ranges",
		RunE: func(cmd *cobra.Command, args []string) error {
			top, _ := cmd.Flags().GetFloat64("max")
			count, _ := cmd.Flags().GetInt("count")
			if count <= 0 {
				return fmt.Errorf("--count must be positive")
			}
			return printJSON(cmd, grading.DistributeEvenly(top, count))
		},
	}
	distribute.Flags().Float64("max", 0, "Maximum achievable score")
	distribute.Flags().Int("count", 1, "Number of outcome ranges")
	_ = distribute.MarkFlagRequired("max")

	cmd.AddCommand(check, distribute)
	return cmd
}
