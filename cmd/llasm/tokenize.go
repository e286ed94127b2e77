package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"llasm/internal/diagfmt"
	"llasm/internal/driver"
)

var tokenizeCmd = &cobra.Command{
	Use:   "tokenize [flags] file.ll",
	Short: "Tokenize an LLVM IR file",
	Long:  `Tokenize breaks an .ll file into tokens; lexical errors are reported but do not stop the scan`,
	Args:  cobra.ExactArgs(1),
	RunE:  runTokenize,
}

func init() {
	tokenizeCmd.Flags().String("format", "pretty", "output format (pretty|json)")
}

func runTokenize(cmd *cobra.Command, args []string) error {
	s := settingsFrom(cmd)

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}

	result, err := driver.Tokenize(cmd.Context(), args[0], driver.Options{MaxDiagnostics: s.MaxDiagnostics})
	if err != nil {
		return fmt.Errorf("tokenization failed: %w", err)
	}

	// Выводим диагностику в stderr, если есть
	if result.Bag.HasErrors() || result.Bag.HasWarnings() {
		if err := printDiagnostics(os.Stderr, result.Bag, result.FileSet, s, "pretty", args); err != nil {
			return err
		}
	}
	if result.Suppressed > 0 && !s.Quiet {
		fmt.Fprintf(os.Stderr, "(%d repeated diagnostics suppressed)\n", result.Suppressed)
	}

	switch format {
	case "pretty":
		return diagfmt.FormatTokensPretty(cmd.OutOrStdout(), result.Tokens, result.FileSet)
	case "json":
		return diagfmt.FormatTokensJSON(cmd.OutOrStdout(), result.Tokens)
	default:
		return fmt.Errorf("unknown format: %s", format)
	}
}
