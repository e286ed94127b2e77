package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"llasm/internal/diag"
	"llasm/internal/driver"
	"llasm/internal/source"
)

var checkCmd = &cobra.Command{
	Use:   "check [flags] path...",
	Short: "Parse many .ll files in parallel and report errors",
	Long:  `Check reads every .ll file under the given paths, each as an independent module, and reports the first error of each failing file`,
	Args:  cobra.MinimumNArgs(1),
	RunE:  runCheck,
}

func init() {
	checkCmd.Flags().String("format", "pretty", "diagnostics format (pretty|short|json|sarif)")
	checkCmd.Flags().Int("jobs", 0, "max parallel workers (0=auto)")
	checkCmd.Flags().String("ui", "off", "live per-file progress view while parsing (auto|on|off)")
	checkCmd.Flags().Bool("disk-cache", false, "reuse results of unchanged files from the on-disk cache")
}

func runCheck(cmd *cobra.Command, args []string) error {
	s := settingsFrom(cmd)

	format, err := cmd.Flags().GetString("format")
	if err != nil {
		return fmt.Errorf("failed to get format flag: %w", err)
	}
	if err := validDiagFormat(format); err != nil {
		return err
	}
	if cmd.Flags().Changed("jobs") {
		if s.Jobs, err = cmd.Flags().GetInt("jobs"); err != nil {
			return fmt.Errorf("failed to get jobs flag: %w", err)
		}
	}
	uiValue, err := cmd.Flags().GetString("ui")
	if err != nil {
		return fmt.Errorf("failed to get ui flag: %w", err)
	}
	mode, err := parseProgressMode(uiValue)
	if err != nil {
		return err
	}
	useDiskCache, err := cmd.Flags().GetBool("disk-cache")
	if err != nil {
		return fmt.Errorf("failed to get disk-cache flag: %w", err)
	}

	var files []string
	for _, arg := range args {
		found, err := driver.ListFiles(arg)
		if err != nil {
			return fmt.Errorf("failed to list %s: %w", arg, err)
		}
		files = append(files, found...)
	}
	if len(files) == 0 {
		if !s.Quiet {
			fmt.Fprintln(cmd.OutOrStdout(), "no .ll files found")
		}
		return nil
	}

	opts := driver.Options{
		MaxDiagnostics: s.MaxDiagnostics,
		AlignAttr:      s.AlignAttr,
		Jobs:           s.Jobs,
	}
	if useDiskCache || s.CacheEnabled {
		cache, err := openCache(s)
		if err != nil {
			fmt.Fprintf(os.Stderr, "llasm: disk cache disabled: %v\n", err)
		} else {
			opts.Cache = cache
		}
	}

	fs, results, err := runCheckFiles(cmd, files, opts, showProgress(mode, len(files), s.Quiet))
	if err != nil {
		return err
	}

	all := diag.NewBag(0)
	for i := range results {
		all.Merge(results[i].Bag)
	}
	if err := printDiagnostics(os.Stderr, all, fs, s, format, args); err != nil {
		return err
	}

	failed, cached := driver.Summarize(results)
	if s.Timings {
		printBatchTimings(os.Stderr, results)
	}
	if !s.Quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "checked %d file(s): %d failed, %d cached\n", len(results), failed, cached)
	}
	if failed > 0 {
		return errFailed
	}
	return nil
}

func runCheckFiles(cmd *cobra.Command, files []string, opts driver.Options, live bool) (*source.FileSet, []driver.FileResult, error) {
	if live {
		return runCheckWithUI(cmd.Context(), "llasm check", files, opts)
	}
	return driver.ParseFiles(cmd.Context(), files, opts)
}
