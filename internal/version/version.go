package version

import "github.com/fatih/color"

// Version information for the llasm CLI.
// These variables can be overridden at build time via -ldflags.

var (
	versionMajorColor = color.New(color.FgYellow, color.Bold)
	versionMinorColor = color.New(color.FgGreen, color.Bold)
	versionPatchColor = color.New(color.FgBlue, color.Bold)

	Major = "0"
	Minor = "3"
	Patch = "3"
	// Suffix is appended after the patch number ("-dev" for local builds).
	Suffix = "-dev"

	// Version is the coloured form used by cobra's --version.
	Version = Colored()

	// GitCommit is an optional git commit hash.
	GitCommit = ""

	// GitMessage is an optional git commit message.
	GitMessage = ""

	// BuildDate is an optional build date in ISO-8601.
	BuildDate = ""
)

// Plain returns the version without colour codes.
func Plain() string {
	return Major + "." + Minor + "." + Patch + Suffix
}

// Colored returns the version with each component tinted; colour is
// dropped automatically when stdout is not a terminal.
func Colored() string {
	return versionMajorColor.Sprint(Major) + "." + versionMinorColor.Sprint(Minor) + "." + versionPatchColor.Sprint(Patch) + Suffix
}
