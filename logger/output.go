package logger

// OutputCategory defines a category of output that can be enabled/disabled.
//
// Unlike log levels (which filter by severity), output categories control
// WHAT types of information are displayed regardless of severity.
type OutputCategory int

const (
	// Level 0 (default) - Always shown
	OutputResults     OutputCategory = iota // Success line, artifact path
	OutputDiagnostics                       // Compiler diagnostics and errors

	// Level 1 (-v)
	OutputStages // Pipeline stage transitions
	OutputConfig // Which config file was used

	// Level 2 (-vv)
	OutputTiming    // Stage durations
	OutputToolchain // go command lines and environment

	// Level 3 (-vvv)
	OutputGeneratedSource // Full generated wrapper source
	OutputToolchainOutput // Raw go build output
)

// categoryLevels maps each output category to its minimum verbosity level
var categoryLevels = map[OutputCategory]int{
	OutputResults:     VerbosityUser,
	OutputDiagnostics: VerbosityUser,

	OutputStages: VerbosityInfo,
	OutputConfig: VerbosityInfo,

	OutputTiming:    VerbosityDebug,
	OutputToolchain: VerbosityDebug,

	OutputGeneratedSource: VerbosityTrace,
	OutputToolchainOutput: VerbosityTrace,
}

// ShouldOutput returns true if the given category should be shown at the given verbosity
func ShouldOutput(verbosity int, category OutputCategory) bool {
	minLevel, ok := categoryLevels[category]
	if !ok {
		// Unknown category, default to highest verbosity required
		return verbosity >= VerbosityTrace
	}
	return verbosity >= minLevel
}
