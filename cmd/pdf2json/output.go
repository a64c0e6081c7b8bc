package main

import (
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/yourorg/pdf2json/pkg/errors"
)

// Command output goes through these so tests can capture it.
var (
	stdout io.Writer = color.Output
	stderr io.Writer = color.Error
)

var (
	successf = color.New(color.FgGreen, color.Bold).SprintfFunc()
	infof    = color.New(color.FgCyan).SprintfFunc()
	warnf    = color.New(color.FgYellow).SprintfFunc()
	errorf   = color.New(color.FgRed, color.Bold).SprintfFunc()
)

func printSuccess(format string, args ...interface{}) {
	fmt.Fprintln(stdout, successf(format, args...))
}

func printInfo(format string, args ...interface{}) {
	fmt.Fprintln(stdout, infof(format, args...))
}

func printWarn(format string, args ...interface{}) {
	fmt.Fprintln(stderr, warnf(format, args...))
}

// printError prints the user-facing message of err and, for application
// errors, their details.
func printError(err error) {
	if errors.CodeOf(err) == "" {
		fmt.Fprintln(stderr, errorf("Error: %v", err))
		return
	}
	appErr := errors.FromError(err)
	fmt.Fprintln(stderr, errorf("Error: %s", appErr.Message))
	if appErr.Details != "" {
		fmt.Fprintln(stderr, warnf("  %s", appErr.Details))
	}
	if verbose && appErr.Err != nil {
		fmt.Fprintln(stderr, warnf("  cause: %v", appErr.Err))
	}
}
