package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"llasm/internal/driver"
	"llasm/internal/ir"
)

var statsCmd = &cobra.Command{
	Use:   "stats [flags] path...",
	Short: "Count entities across .ll files",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runStats,
}

func init() {
	statsCmd.Flags().String("lang", "en", "BCP 47 tag used for number formatting")
}

type statRow struct {
	label string
	value func(ir.Stats) int
}

var statRows = []statRow{
	{"types", func(s ir.Stats) int { return s.Types }},
	{"globals", func(s ir.Stats) int { return s.Globals }},
	{"aliases", func(s ir.Stats) int { return s.Aliases }},
	{"functions", func(s ir.Stats) int { return s.Functions }},
	{"declarations", func(s ir.Stats) int { return s.Decls }},
	{"blocks", func(s ir.Stats) int { return s.Blocks }},
	{"instructions", func(s ir.Stats) int { return s.Instrs }},
	{"metadata nodes", func(s ir.Stats) int { return s.MDNodes }},
	{"named metadata", func(s ir.Stats) int { return s.NamedMD }},
	{"attribute groups", func(s ir.Stats) int { return s.AttrGroups }},
}

func addStats(a, b ir.Stats) ir.Stats {
	a.Types += b.Types
	a.Globals += b.Globals
	a.Aliases += b.Aliases
	a.Functions += b.Functions
	a.Decls += b.Decls
	a.Blocks += b.Blocks
	a.Instrs += b.Instrs
	a.MDNodes += b.MDNodes
	a.NamedMD += b.NamedMD
	a.AttrGroups += b.AttrGroups
	return a
}

func runStats(cmd *cobra.Command, args []string) error {
	s := settingsFrom(cmd)
	langTag, err := cmd.Flags().GetString("lang")
	if err != nil {
		return fmt.Errorf("failed to get lang flag: %w", err)
	}
	tag, err := language.Parse(langTag)
	if err != nil {
		return fmt.Errorf("invalid --lang %q: %w", langTag, err)
	}

	var files []string
	for _, arg := range args {
		found, err := driver.ListFiles(arg)
		if err != nil {
			return fmt.Errorf("failed to list %s: %w", arg, err)
		}
		files = append(files, found...)
	}
	fs, results, err := driver.ParseFiles(cmd.Context(), files, driver.Options{
		MaxDiagnostics: s.MaxDiagnostics,
		AlignAttr:      s.AlignAttr,
		Jobs:           s.Jobs,
	})
	if err != nil {
		return err
	}

	var total ir.Stats
	parsed := 0
	for i := range results {
		if results[i].Failed() {
			if err := printDiagnostics(os.Stderr, results[i].Bag, fs, s, "short", args); err != nil {
				return err
			}
			continue
		}
		parsed++
		total = addStats(total, results[i].Stats)
	}

	p := message.NewPrinter(tag)
	out := cmd.OutOrStdout()
	p.Fprintf(out, "%d of %d file(s) parsed\n", parsed, len(results))
	for _, row := range statRows {
		p.Fprintf(out, "  %-18s %12d\n", row.label, row.value(total))
	}
	if parsed < len(results) {
		return errFailed
	}
	return nil
}
