package logger

import (
	"fmt"
	"runtime"
	"strings"
)

// CaptureStacktrace captures the current call stack
// skip: frames to skip (CaptureStacktrace itself and its callers)
// depth: maximum frames (0 means 32)
func CaptureStacktrace(skip int, depth int) string {
	if depth <= 0 {
		depth = 32
	}

	pcs := make([]uintptr, depth*2)
	n := runtime.Callers(skip, pcs)
	if n == 0 {
		return ""
	}

	frames := runtime.CallersFrames(pcs[:n])
	lines := make([]string, 0, depth)
	for len(lines) < depth {
		frame, more := frames.Next()
		lines = append(lines, fmt.Sprintf("%s\n\t%s:%d", frame.Function, frame.File, frame.Line))
		if !more {
			break
		}
	}

	return strings.Join(lines, "\n")
}

// shouldCaptureStacktrace reports whether a log of the given level carries a stack
func shouldCaptureStacktrace(level string, cfg ManagerConfig) bool {
	if !cfg.EnableStacktrace {
		return false
	}
	return ParseLevel(level) >= ParseLevel(cfg.StacktraceLevel)
}
