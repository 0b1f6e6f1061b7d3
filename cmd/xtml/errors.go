package main

import (
	"fmt"
	"io"

	"github.com/xtml-lang/xtml/pkgs/errors"
)

// FormatError formats an error for CLI output with colors
func FormatError(w io.Writer, err error, useColor bool) {
	if err == nil {
		return
	}

	switch e := err.(type) {
	case *errors.BuildError:
		formatBuildError(w, e, useColor)
	default:
		_, _ = fmt.Fprintf(w, "%s%s\n", Colorize("Error: ", ColorRed, useColor), err.Error())
	}
}

// formatBuildError shows the error kind, message and the source snippet
// it arose from.
func formatBuildError(w io.Writer, err *errors.BuildError, useColor bool) {
	_, _ = fmt.Fprintf(w, "%s%s: %s\n", Colorize("Error: ", ColorRed, useColor), Colorize(err.Kind, ColorYellow, useColor), err.Message)

	if err.Cause != nil {
		_, _ = fmt.Fprintf(w, "  %s\n", Colorize(fmt.Sprintf("caused by: %v", err.Cause), ColorGray, useColor))
	}
	if err.Snippet != "" {
		_, _ = fmt.Fprintf(w, "%s\n%s\n", Colorize("Source:", ColorCyan, useColor), err.Snippet)
	}
}
