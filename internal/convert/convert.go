// Package convert drives the external geospatial tools that perform the
// actual format conversions. The tools are opaque collaborators; this package
// only assembles arguments, checks outcomes, and surfaces diagnostics.
package convert

import "fmt"

// ToolError reports a conversion tool that exited non-zero, carrying the
// tool's own diagnostic text.
type ToolError struct {
	Tool     string
	ExitCode int
	Stderr   string
}

func (e *ToolError) Error() string {
	return fmt.Sprintf("%s failed (exit %d): %s", e.Tool, e.ExitCode, e.Stderr)
}
