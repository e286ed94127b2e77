package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"llasm/internal/driver"
	"llasm/internal/ir"
	"llasm/internal/source"
)

var parseCmd = &cobra.Command{
	Use:   "parse [flags] file.ll",
	Short: "Parse an LLVM IR file and print the module",
	Long:  `Parse reads one .ll file, resolves every forward reference and prints the module back (or a summary)`,
	Args:  cobra.ExactArgs(1),
	RunE:  runParse,
}

func init() {
	parseCmd.Flags().String("format", "ir", "output format (ir|summary|json|none)")
	parseCmd.Flags().String("diag-format", "pretty", "diagnostics format (pretty|short|json|sarif)")
	parseCmd.Flags().Bool("verify", false, "run the post-parse sanity checks")
}

type summaryPayload struct {
	File       string   `json:"file"`
	Module     string   `json:"module"`
	Triple     string   `json:"triple,omitempty"`
	Normalized string   `json:"normalized,omitempty"` // bom|crlf when the input was rewritten
	Stats      ir.Stats `json:"stats"`
}

func runParse(cmd *cobra.Command, args []string) error {
	s := settingsFrom(cmd)

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	diagFormat, err := cmd.Flags().GetString("diag-format")
	if err != nil {
		return fmt.Errorf("failed to get diag-format flag: %w", err)
	}
	if err := validDiagFormat(diagFormat); err != nil {
		return err
	}
	verify, err := cmd.Flags().GetBool("verify")
	if err != nil {
		return fmt.Errorf("failed to get verify flag: %w", err)
	}

	res, err := driver.Parse(cmd.Context(), args[0], driver.Options{
		MaxDiagnostics: s.MaxDiagnostics,
		AlignAttr:      s.AlignAttr,
	})
	if err != nil {
		return fmt.Errorf("parse failed: %w", err)
	}
	if s.Timings {
		defer printTimingReport(os.Stderr, res.Timing)
	}

	if res.Failed() {
		if err := printDiagnostics(os.Stderr, res.Bag, res.FileSet, s, diagFormat, args); err != nil {
			return err
		}
		return errFailed
	}
	if verify {
		if err := ir.Verify(res.Module); err != nil {
			return fmt.Errorf("verify: %w", err)
		}
	}

	out := cmd.OutOrStdout()
	switch format {
	case "ir":
		_, err = fmt.Fprint(out, ir.Print(res.Module))
		return err
	case "summary":
		st := res.Module.Stats()
		fmt.Fprintf(out, "%s: %d types, %d globals, %d aliases, %d functions (%d declarations), %d blocks, %d instructions, %d metadata nodes\n",
			res.File.Path, st.Types, st.Globals, st.Aliases, st.Functions, st.Decls, st.Blocks, st.Instrs, st.MDNodes)
		return nil
	case "json":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(summaryPayload{
			File:       res.File.Path,
			Module:     res.Module.Name,
			Triple:     res.Module.Triple,
			Normalized: (res.File.Flags &^ source.FileVirtual).String(),
			Stats:      res.Module.Stats(),
		})
	case "none":
		return nil
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}
