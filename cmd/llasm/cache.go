package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"llasm/internal/driver"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Manage the on-disk parse cache",
}

var cacheCleanCmd = &cobra.Command{
	Use:   "clean",
	Short: "Remove every cached parse result",
	Args:  cobra.NoArgs,
	RunE:  runCacheClean,
}

var cachePathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the cache directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		cache, err := openCache(settingsFrom(cmd))
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(cmd.OutOrStdout(), cache.Dir())
		return err
	},
}

func init() {
	cacheCmd.AddCommand(cacheCleanCmd)
	cacheCmd.AddCommand(cachePathCmd)
}

// openCache opens the directory from settings or the XDG default.
func openCache(s *settings) (*driver.DiskCache, error) {
	if s.CacheDir != "" {
		return driver.OpenDiskCacheAt(s.CacheDir)
	}
	return driver.OpenDiskCache("llasm")
}

func runCacheClean(cmd *cobra.Command, _ []string) error {
	s := settingsFrom(cmd)
	cache, err := openCache(s)
	if err != nil {
		return err
	}
	if err := cache.DropAll(); err != nil {
		return fmt.Errorf("failed to clean %s: %w", cache.Dir(), err)
	}
	if !s.Quiet {
		fmt.Fprintf(cmd.OutOrStdout(), "removed %s\n", cache.Dir())
	}
	return nil
}
