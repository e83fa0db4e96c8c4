// Copyright 2026 KrakLabs
//
// SPDX-License-Identifier: AGPL-3.0-only

// Package errors provides structured error handling for the jnkn CLI.
//
// It defines UserError, a type that carries structured error context -
// what went wrong, why, and how to fix it - plus a set of exit codes so
// every command fails consistently.
package errors

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/fatih/color"
)

// Exit codes for different error categories.
const (
	// ExitSuccess indicates successful execution.
	ExitSuccess = 0

	// ExitConfig indicates a configuration error: missing/invalid
	// .jnkn/config.yaml, unparseable project manifest, bad flag combination.
	ExitConfig = 1

	// ExitParse indicates a parsing-engine error distinct from an extractor
	// reporting a per-file failure (which is recorded, not fatal): the
	// engine itself could not run, e.g. a fatal extractor panic recovery.
	ExitParse = 2

	// ExitStore indicates a persistent-store error: the sqlite database
	// file is locked, corrupted, or a transaction could not commit.
	ExitStore = 3

	// ExitInput indicates invalid user input: bad arguments, a node id
	// that doesn't parse, a query with no results where one was required.
	ExitInput = 4

	// ExitPermission indicates permission denied: file access, locked
	// directories.
	ExitPermission = 5

	// ExitNotFound indicates a resource not found: unknown node id,
	// missing manifest dependency.
	ExitNotFound = 6

	// ExitResolution indicates a stitching/resolution error: the
	// confidence calculator or rule engine hit an unrecoverable state.
	ExitResolution = 7

	// ExitNotImplemented indicates a feature that is intentionally
	// unimplemented rather than silently skipped (e.g. git-sourced
	// manifest dependencies).
	ExitNotImplemented = 8

	// ExitInternal indicates an internal error: a bug, not user error.
	ExitInternal = 10
)

// UserError represents an error with structured context for end users.
//
// It carries three levels of information: Message (what went wrong),
// Cause (why), and Fix (how to resolve it), plus an ExitCode and an
// optional wrapped Err for errors.Is/As compatibility.
type UserError struct {
	Message  string
	Cause    string
	Fix      string
	ExitCode int
	Err      error
}

// Error implements the error interface.
func (e *UserError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

// Unwrap returns the underlying error for errors.Is/As.
func (e *UserError) Unwrap() error {
	return e.Err
}

// NewConfigError creates a configuration error with exit code ExitConfig.
func NewConfigError(msg, cause, fix string, err error) *UserError {
	return &UserError{Message: msg, Cause: cause, Fix: fix, ExitCode: ExitConfig, Err: err}
}

// NewParseError creates a parsing-engine error with exit code ExitParse.
func NewParseError(msg, cause, fix string, err error) *UserError {
	return &UserError{Message: msg, Cause: cause, Fix: fix, ExitCode: ExitParse, Err: err}
}

// NewStoreError creates a persistent-store error with exit code ExitStore.
func NewStoreError(msg, cause, fix string, err error) *UserError {
	return &UserError{Message: msg, Cause: cause, Fix: fix, ExitCode: ExitStore, Err: err}
}

// NewInputError creates an input validation error with exit code ExitInput.
// Input errors typically do not wrap an underlying error.
func NewInputError(msg, cause, fix string) *UserError {
	return &UserError{Message: msg, Cause: cause, Fix: fix, ExitCode: ExitInput, Err: nil}
}

// NewPermissionError creates a permission error with exit code ExitPermission.
func NewPermissionError(msg, cause, fix string, err error) *UserError {
	return &UserError{Message: msg, Cause: cause, Fix: fix, ExitCode: ExitPermission, Err: err}
}

// NewNotFoundError creates a not-found error with exit code ExitNotFound.
// Not found errors typically do not wrap an underlying error.
func NewNotFoundError(msg, cause, fix string) *UserError {
	return &UserError{Message: msg, Cause: cause, Fix: fix, ExitCode: ExitNotFound, Err: nil}
}

// NewResolutionError creates a stitching/resolution error with exit code
// ExitResolution.
func NewResolutionError(msg, cause, fix string, err error) *UserError {
	return &UserError{Message: msg, Cause: cause, Fix: fix, ExitCode: ExitResolution, Err: err}
}

// NewNotImplementedError creates an error for a feature that is
// intentionally unimplemented, with exit code ExitNotImplemented. Use this
// rather than silently no-op'ing (e.g. git-sourced manifest dependencies).
func NewNotImplementedError(msg, cause, fix string) *UserError {
	return &UserError{Message: msg, Cause: cause, Fix: fix, ExitCode: ExitNotImplemented, Err: nil}
}

// NewInternalError creates an internal error with exit code ExitInternal.
func NewInternalError(msg, cause, fix string, err error) *UserError {
	return &UserError{Message: msg, Cause: cause, Fix: fix, ExitCode: ExitInternal, Err: err}
}

var (
	colorError = color.New(color.FgRed, color.Bold)
	colorCause = color.New(color.FgYellow)
	colorFix   = color.New(color.FgGreen)
)

// Format returns a formatted error message for terminal display, honoring
// the NO_COLOR environment variable and the noColor parameter.
func (e *UserError) Format(noColor bool) string {
	originalNoColor := color.NoColor
	defer func() { color.NoColor = originalNoColor }()

	if noColor || os.Getenv("NO_COLOR") != "" {
		color.NoColor = true
	}

	var out strings.Builder
	out.WriteString(colorError.Sprint("Error: "))
	out.WriteString(e.Message)
	out.WriteString("\n")

	if e.Cause != "" {
		out.WriteString(colorCause.Sprint("Cause: "))
		out.WriteString(e.Cause)
		out.WriteString("\n")
	}

	if e.Fix != "" {
		out.WriteString(colorFix.Sprint("Fix:   "))
		out.WriteString(e.Fix)
		out.WriteString("\n")
	}

	return out.String()
}

// ErrorJSON is the JSON-serializable form of a UserError, for --json mode.
type ErrorJSON struct {
	Error    string `json:"error"`
	Cause    string `json:"cause,omitempty"`
	Fix      string `json:"fix,omitempty"`
	ExitCode int    `json:"exit_code"`
}

// ToJSON converts the UserError to its JSON-serializable form.
func (e *UserError) ToJSON() ErrorJSON {
	return ErrorJSON{Error: e.Message, Cause: e.Cause, Fix: e.Fix, ExitCode: e.ExitCode}
}

// FatalError prints the error and exits with the appropriate code. A nil
// err is a no-op; for any other err it never returns.
func FatalError(err error, jsonOutput bool) {
	if err == nil {
		return
	}

	if ue, ok := err.(*UserError); ok {
		if jsonOutput {
			enc := json.NewEncoder(os.Stderr)
			enc.SetIndent("", "  ")
			_ = enc.Encode(ue.ToJSON())
		} else {
			fmt.Fprint(os.Stderr, ue.Format(false))
		}
		os.Exit(ue.ExitCode)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	os.Exit(ExitInternal)
}
