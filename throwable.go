package mongolog

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"

	pkgerrors "github.com/pkg/errors"
)

const (
	maxStackDepth = 64
	maxCauses     = 32
)

type stackTracer interface {
	StackTrace() pkgerrors.StackTrace
}

// RenderThrowable renders err as a stack-trace text: a "<type>: <message>"
// header, the frames of the error (or of the caller when the error carries
// none) and a "Caused by:" section for every wrapped error.
// It returns "" for a nil error.
func RenderThrowable(err error) string {
	if err == nil {
		return ""
	}
	return renderThrowable(err, callers(1))
}

func renderThrowable(err error, site pkgerrors.StackTrace) string {
	var b strings.Builder

	writeHeader(&b, err)
	if st := stackOf(err); len(st) > 0 {
		fmt.Fprintf(&b, "%+v", st)
	} else {
		fmt.Fprintf(&b, "%+v", site)
	}

	prev := errorText(err)
	for _, cause := range causes(err) {
		st := stackOf(cause)
		// pkg/errors splits Wrap into a message layer and a stack layer that
		// report the same text; printing both adds nothing.
		if len(st) == 0 && errorText(cause) == prev {
			continue
		}
		b.WriteString("\nCaused by: ")
		writeHeader(&b, cause)
		if len(st) > 0 {
			fmt.Fprintf(&b, "%+v", st)
		}
		prev = errorText(cause)
	}

	b.WriteByte('\n')
	return b.String()
}

func writeHeader(b *strings.Builder, err error) {
	fmt.Fprintf(b, "%T: %s", err, errorText(err))
}

// errorText is err.Error(), or "<nil>" when err holds a nil pointer, map,
// slice, func or chan.
func errorText(err error) string {
	if isNilValue(err) {
		return "<nil>"
	}
	return err.Error()
}

func isNilValue(err error) bool {
	v := reflect.ValueOf(err)
	switch v.Kind() {
	case reflect.Ptr, reflect.Map, reflect.Slice, reflect.Func, reflect.Chan, reflect.Interface:
		return v.IsNil()
	}
	return false
}

func stackOf(err error) pkgerrors.StackTrace {
	if isNilValue(err) {
		return nil
	}
	if st, ok := err.(stackTracer); ok {
		return st.StackTrace()
	}
	return nil
}

// causes walks the wrap tree depth first, following both Unwrap() error and
// Unwrap() []error. The walk stops after maxCauses errors so a
// self-referencing chain cannot loop forever.
func causes(err error) []error {
	var out []error
	var walk func(error)
	walk = func(e error) {
		for _, next := range unwrap(e) {
			if len(out) >= maxCauses {
				return
			}
			if next == nil {
				continue
			}
			out = append(out, next)
			walk(next)
		}
	}
	walk(err)
	return out
}

func unwrap(err error) []error {
	if isNilValue(err) {
		return nil
	}
	switch u := err.(type) {
	case interface{ Unwrap() error }:
		if next := u.Unwrap(); next != nil {
			return []error{next}
		}
	case interface{ Unwrap() []error }:
		return u.Unwrap()
	}
	return nil
}

// callers returns the stack starting skip frames above its own caller.
func callers(skip int) pkgerrors.StackTrace {
	var pcs [maxStackDepth]uintptr
	n := runtime.Callers(skip+2, pcs[:])
	st := make(pkgerrors.StackTrace, n)
	for i := 0; i < n; i++ {
		st[i] = pkgerrors.Frame(pcs[i])
	}
	return st
}
