// Package nlog is a small severity-leveled logger used by every sink,
// verifier, and collaborator in this module. It favors the teacher's calling
// convention (Infof/Warningf/Errorf, depth-aware, explicit Flush) over
// pulling in a structured-logging dependency nothing else here needs.
/*
 * Copyright (c) 2023, NVIDIA CORPORATION. All rights reserved.
 */
package nlog

import (
	"fmt"
	"io"
	"os"
	"runtime"
	"sync"
	"time"
)

type severity int

const (
	sevInfo severity = iota
	sevWarn
	sevErr
)

func (s severity) String() string {
	switch s {
	case sevWarn:
		return "W"
	case sevErr:
		return "E"
	default:
		return "I"
	}
}

var (
	mu     sync.Mutex
	out    io.Writer = os.Stderr
	title  string
	role   string
	logDir string
)

// SetOutput redirects all subsequent log lines; tests use this to capture
// output instead of writing to stderr.
func SetOutput(w io.Writer) {
	mu.Lock()
	out = w
	mu.Unlock()
}

// SetLogDirRole tags subsequent lines with a process role (e.g. "sink",
// "verifier") and records a log directory for collaborators that want to
// locate on-disk logs; nlog itself never rotates or writes files, matching
// the pared-down ambient logging this module needs.
func SetLogDirRole(dir, r string) {
	mu.Lock()
	logDir, role = dir, r
	mu.Unlock()
}

func SetTitle(s string) {
	mu.Lock()
	title = s
	mu.Unlock()
}

func LogDir() string { mu.Lock(); defer mu.Unlock(); return logDir }

func log(sev severity, depth int, format string, args ...any) {
	var msg string
	if format == "" {
		msg = fmt.Sprintln(args...)
	} else {
		msg = fmt.Sprintf(format, args...)
	}
	_, file, line, ok := runtime.Caller(depth + 2)
	if !ok {
		file, line = "???", 0
	} else {
		file = trimPath(file)
	}
	mu.Lock()
	defer mu.Unlock()
	prefix := role
	if title != "" {
		if prefix != "" {
			prefix += "/"
		}
		prefix += title
	}
	if prefix != "" {
		prefix = "[" + prefix + "] "
	}
	fmt.Fprintf(out, "%s%s %s %s:%d] %s", prefix, sev, time.Now().Format("0102 15:04:05.000000"), file, line, msg)
	if len(msg) == 0 || msg[len(msg)-1] != '\n' {
		fmt.Fprintln(out)
	}
}

func trimPath(file string) string {
	for i := len(file) - 1; i >= 0; i-- {
		if file[i] == '/' {
			return file[i+1:]
		}
	}
	return file
}

func InfoDepth(depth int, args ...any)    { log(sevInfo, depth, "", args...) }
func Infoln(args ...any)                  { log(sevInfo, 0, "", args...) }
func Infof(format string, args ...any)    { log(sevInfo, 0, format, args...) }
func Warningln(args ...any)               { log(sevWarn, 0, "", args...) }
func Warningf(format string, args ...any) { log(sevWarn, 0, format, args...) }
func ErrorDepth(depth int, args ...any)   { log(sevErr, depth, "", args...) }
func Errorln(args ...any)                 { log(sevErr, 0, "", args...) }
func Errorf(format string, args ...any)   { log(sevErr, 0, format, args...) }

// Flush is a no-op placeholder retained for call-site parity with the
// teacher's buffered/rotating logger; this module's logger writes
// synchronously and has nothing to flush.
func Flush(_ ...bool) {}
