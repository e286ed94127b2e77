package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"llasm/internal/driver"
)

var roundtripCmd = &cobra.Command{
	Use:   "roundtrip [flags] file.ll...",
	Short: "Print each module and check that it parses back to the same structure",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runRoundTrip,
}

func init() {
	roundtripCmd.Flags().Bool("show", false, "print the re-emitted text of failing files")
}

func runRoundTrip(cmd *cobra.Command, args []string) error {
	s := settingsFrom(cmd)
	show, err := cmd.Flags().GetBool("show")
	if err != nil {
		return fmt.Errorf("failed to get show flag: %w", err)
	}

	opts := driver.Options{MaxDiagnostics: s.MaxDiagnostics, AlignAttr: s.AlignAttr}
	out := cmd.OutOrStdout()
	failed := 0
	for _, path := range args {
		res, err := driver.RoundTrip(cmd.Context(), path, opts)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		switch {
		case res.First.Failed():
			failed++
			if err := printDiagnostics(os.Stderr, res.First.Bag, res.First.FileSet, s, "pretty", args); err != nil {
				return err
			}
		case !res.OK():
			failed++
			reason := "printing is not stable"
			if res.Diff != nil {
				reason = res.Diff.Error()
			}
			fmt.Fprintf(out, "%s: FAIL: %s\n", path, reason)
			if show {
				fmt.Fprint(out, res.Printed)
			}
		default:
			if !s.Quiet {
				fmt.Fprintf(out, "%s: ok\n", path)
			}
		}
	}
	if failed > 0 {
		return errFailed
	}
	return nil
}
