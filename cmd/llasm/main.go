package main

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"llasm/internal/version"
)

var rootCmd = &cobra.Command{
	Use:   "llasm",
	Short: "Reader for LLVM 3.3 textual IR",
	Long:  `llasm parses LLVM 3.3 assembly (.ll) into an in-memory module and reports the first error precisely`,
	// ошибки печатаем сами, usage только для ошибок флагов
	SilenceUsage:      true,
	SilenceErrors:     true,
	PersistentPreRunE: setupCommand,
	PersistentPostRun: teardownCommand,
}

type settingsKey struct{}

var traceCleanup func(failed bool)

// errFailed сигнализирует, что диагностики уже напечатаны и нужен только код выхода.
var errFailed = errors.New("failed")

func init() {
	rootCmd.Version = version.Version

	rootCmd.AddCommand(parseCmd)
	rootCmd.AddCommand(checkCmd)
	rootCmd.AddCommand(tokenizeCmd)
	rootCmd.AddCommand(roundtripCmd)
	rootCmd.AddCommand(statsCmd)
	rootCmd.AddCommand(cacheCmd)
	rootCmd.AddCommand(versionCmd)

	// Глобальные флаги
	rootCmd.PersistentFlags().String("color", "auto", "colorize output (auto|on|off)")
	rootCmd.PersistentFlags().Bool("quiet", false, "suppress non-essential output")
	rootCmd.PersistentFlags().Bool("timings", false, "show timing information")
	rootCmd.PersistentFlags().Int("max-diagnostics", 100, "maximum number of diagnostics to show")
	rootCmd.PersistentFlags().String("config", "", "path to llasm.toml (default: search upwards from the working directory)")
	rootCmd.PersistentFlags().String("align-attr", "migrate", "align=N inside attribute groups (migrate|reject)")
	rootCmd.PersistentFlags().String("trace", "", "trace output file (\"-\" for stderr)")
	rootCmd.PersistentFlags().String("trace-level", "off", "trace level (off|error|phase|detail|debug)")
	rootCmd.PersistentFlags().String("trace-mode", "stream", "trace storage (stream|ring|both)")
	rootCmd.PersistentFlags().Int("trace-ring-size", 4096, "ring buffer size for --trace-mode=ring")
	rootCmd.PersistentFlags().Duration("trace-heartbeat", 0, "emit heartbeat events at this interval (0 disables)")
}

// main executes the root command; any error exits with status 1.
func main() {
	err := rootCmd.ExecuteContext(context.Background())
	// PersistentPostRun не вызывается после ошибки RunE
	finishTrace(err != nil)
	if err != nil {
		if !errors.Is(err, errFailed) {
			fmt.Fprintf(os.Stderr, "llasm: %v\n", err)
		}
		os.Exit(1)
	}
}

func setupCommand(cmd *cobra.Command, _ []string) error {
	s, err := resolveSettings(cmd)
	if err != nil {
		return err
	}
	cleanup, err := setupTracing(cmd, s)
	if err != nil {
		return err
	}
	traceCleanup = cleanup
	cmd.SetContext(context.WithValue(cmd.Context(), settingsKey{}, s))
	return nil
}

func teardownCommand(_ *cobra.Command, _ []string) {
	finishTrace(false)
}

func finishTrace(failed bool) {
	if traceCleanup != nil {
		traceCleanup(failed)
		traceCleanup = nil
	}
}

// settingsFrom returns the settings resolved by setupCommand.
func settingsFrom(cmd *cobra.Command) *settings {
	if s, ok := cmd.Context().Value(settingsKey{}).(*settings); ok {
		return s
	}
	return defaultSettings()
}

// isTerminal проверяет, является ли файл терминалом
func isTerminal(f *os.File) bool {
	return term.IsTerminal(int(f.Fd()))
}
