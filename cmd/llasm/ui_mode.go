package main

import (
	"fmt"
	"os"
	"strings"
)

// progressMode is the --ui setting of llasm check.
type progressMode uint8

const (
	progressAuto progressMode = iota
	progressOn
	progressOff
)

// progressMinFiles: меньше файлов не стоит полноэкранного вида.
const progressMinFiles = 4

func parseProgressMode(value string) (progressMode, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "", "auto":
		return progressAuto, nil
	case "on", "always":
		return progressOn, nil
	case "off", "never":
		return progressOff, nil
	}
	return progressAuto, fmt.Errorf("--ui: %q is not one of auto, on, off", value)
}

// showProgress decides whether a batch of files gets the live view.
// Auto mode wants an interactive stdout, a batch worth watching and no
// --quiet.
func showProgress(mode progressMode, files int, quiet bool) bool {
	switch mode {
	case progressOn:
		return true
	case progressOff:
		return false
	}
	if quiet || files < progressMinFiles {
		return false
	}
	return isTerminal(os.Stdout)
}
