// Package errors extends the standard library errors package with lightweight annotations:
// a Wrap that attaches slog attributes and a caller location to an error, and a SlogError
// helper that turns the full chain into a single structured log attribute.
package errors

import (
	"errors"
	"fmt"
	"log/slog"
	"runtime"
	"strconv"
	"strings"
)

// Re-exported so that callers only need to import this package for error handling.
var (
	New   = errors.New
	Is    = errors.Is
	As    = errors.As
	Join  = errors.Join
	Unwrap = errors.Unwrap
)

// sentinel is a comparable leaf error created with NewSentinel, suitable for errors.Is checks.
type sentinel struct {
	msg string
}

func (s *sentinel) Error() string { return s.msg }

// NewSentinel creates a new comparable leaf error, analogous to errors.New but distinct so
// that call sites can tell "a sentinel we defined" apart from an ad-hoc fmt.Errorf value.
func NewSentinel(msg string) error {
	return &sentinel{msg: msg}
}

// annotatedError wraps a cause with a short context string, structured slog attributes, and
// the file:line of the Wrap call site.
type annotatedError struct {
	cause   error
	context string
	attrs   []slog.Attr
	file    string
	line    int
}

// Wrap annotates err with context and optional slog attributes. It records the caller's
// file and line so SlogError can report where the error was raised without a full stack
// trace. Wrap(nil, ...) returns nil so call sites can wrap unconditionally.
func Wrap(err error, context string, attrs ...slog.Attr) error {
	if err == nil {
		return nil
	}
	_, file, line, _ := runtime.Caller(1)
	return &annotatedError{
		cause:   err,
		context: context,
		attrs:   attrs,
		file:    shortFile(file),
		line:    line,
	}
}

func (e *annotatedError) Error() string {
	return e.context + ": " + e.cause.Error()
}

func (e *annotatedError) Unwrap() error {
	return e.cause
}

// DecoratePanic converts a recover() result into an error with its own call-site location,
// so a recovered panic can flow through the same logging path as any other error.
func DecoratePanic(recovered any) error {
	if recovered == nil {
		return nil
	}
	_, file, line, _ := runtime.Caller(1)
	var msg string
	if err, ok := recovered.(error); ok {
		msg = err.Error()
	} else {
		msg = fmt.Sprint(recovered)
	}
	return &annotatedError{
		cause:   NewSentinel(msg),
		context: "panic",
		attrs:   nil,
		file:    shortFile(file),
		line:    line,
	}
}

// SlogError renders err (and its full Unwrap chain) as a single "error" group attribute
// containing the message, the innermost annotation's source location, and every slog
// attribute collected while wrapping. Nil is tolerated and yields an empty group.
func SlogError(err error) slog.Attr {
	if err == nil {
		return slog.Attr{Key: "error", Value: slog.GroupValue()}
	}

	values := []slog.Attr{slog.String("message", err.Error())}

	var annotations []slog.Attr
	var location string
	for cur := err; cur != nil; cur = errors.Unwrap(cur) {
		if ae, ok := cur.(*annotatedError); ok { //nolint:errorlint // we need the concrete type to read attrs.
			annotations = append(annotations, ae.attrs...)
			if ae.file != "" {
				location = ae.file + ":" + strconv.Itoa(ae.line)
			}
		}
	}

	if location != "" {
		values = append(values, slog.String("location", location))
	}
	if len(annotations) > 0 {
		group := make([]any, 0, len(annotations))
		for _, a := range annotations {
			group = append(group, a)
		}
		values = append(values, slog.Group("annotations", group...))
	}

	return slog.Attr{Key: "error", Value: slog.GroupValue(values...)}
}

// shortFile trims a compiled-in absolute path down to its base name, matching the
// "file.go:line" shape tests and log readers expect.
func shortFile(file string) string {
	if idx := strings.LastIndexByte(file, '/'); idx >= 0 {
		return file[idx+1:]
	}
	return file
}
