// Package cos provides the error taxonomy and small low-level utilities
// shared by every package in this module.
/*
 * Copyright (c) 2018-2023, NVIDIA CORPORATION. All rights reserved.
 */
package cos

import (
	"errors"
	"fmt"
	"os"
	"sync"
	ratomic "sync/atomic"

	"github.com/iotmesh/datasink/cmn/debug"
)

// Error taxonomy (spec §7):
//   - ErrChannelClosed — producer lost its consumer.
//   - ErrIO            — filesystem error, tagged with the phase it occurred in.
//   - ErrEncode        — framer/compressor failure; treated like ErrIO.
//   - ErrConfig        — RPC or signing failure talking to the org/config service.
//   - ErrDebit/ErrBurn — ledger failures.
//   - ErrWriter        — a valid/invalid packet writer rejected a record.
type (
	ErrChannelClosed struct {
		What string
	}

	IOPhase string

	ErrIO struct {
		Phase IOPhase
		Path  string
		Err   error
	}

	ErrEncode struct {
		Path string
		Err  error
	}

	ErrConfig struct {
		Op  string // failed operation, e.g. get_org, enable, fetch_org, ledger.query
		Err error
	}

	ErrDebit struct {
		Payer string
		Err   error
	}

	ErrBurn struct {
		Payer string
		Err   error
	}

	ErrWriter struct {
		Stream string // valid | invalid
		Err    error
	}
)

const (
	PhaseWrite    IOPhase = "write"
	PhasePromote  IOPhase = "promote"
	PhaseShutdown IOPhase = "shutdown"
	PhaseRecover  IOPhase = "recover"
)

func NewErrChannelClosed(what string) *ErrChannelClosed { return &ErrChannelClosed{What: what} }
func (e *ErrChannelClosed) Error() string               { return e.What + ": channel closed, no receiver" }

func NewErrIO(phase IOPhase, path string, err error) *ErrIO { return &ErrIO{phase, path, err} }
func (e *ErrIO) Error() string {
	return fmt.Sprintf("io error during %s (%s): %v", e.Phase, e.Path, e.Err)
}
func (e *ErrIO) Unwrap() error { return e.Err }

func NewErrEncode(path string, err error) *ErrEncode { return &ErrEncode{path, err} }
func (e *ErrEncode) Error() string                   { return fmt.Sprintf("encode error (%s): %v", e.Path, e.Err) }
func (e *ErrEncode) Unwrap() error                    { return e.Err }

func NewErrConfig(op string, err error) *ErrConfig { return &ErrConfig{op, err} }
func (e *ErrConfig) Error() string                 { return fmt.Sprintf("config service %s: %v", e.Op, e.Err) }
func (e *ErrConfig) Unwrap() error                  { return e.Err }

func NewErrDebit(payer string, err error) *ErrDebit { return &ErrDebit{payer, err} }
func (e *ErrDebit) Error() string                   { return fmt.Sprintf("debit check for %s: %v", e.Payer, e.Err) }
func (e *ErrDebit) Unwrap() error                    { return e.Err }

func NewErrBurn(payer string, err error) *ErrBurn { return &ErrBurn{payer, err} }
func (e *ErrBurn) Error() string                 { return fmt.Sprintf("burn accumulation for %s: %v", e.Payer, e.Err) }
func (e *ErrBurn) Unwrap() error                  { return e.Err }

func NewErrWriter(stream string, err error) *ErrWriter { return &ErrWriter{stream, err} }
func (e *ErrWriter) Error() string {
	return fmt.Sprintf("%s packet writer: %v", e.Stream, e.Err)
}
func (e *ErrWriter) Unwrap() error { return e.Err }

// Errs aggregates up to maxErrs distinct errors for non-fatal batch
// reporting (the sink's run loop logs per-record errors, keeps going, and
// returns them joined when it stops).
type Errs struct {
	errs []error
	cnt  int64
	mu   sync.Mutex
}

const maxErrs = 8

func (e *Errs) Add(err error) {
	debug.Assert(err != nil)
	e.mu.Lock()
	for _, added := range e.errs {
		if added.Error() == err.Error() {
			e.mu.Unlock()
			return
		}
	}
	if len(e.errs) < maxErrs {
		e.errs = append(e.errs, err)
		ratomic.StoreInt64(&e.cnt, int64(len(e.errs)))
	}
	e.mu.Unlock()
}

func (e *Errs) Cnt() int { return int(ratomic.LoadInt64(&e.cnt)) }

func (e *Errs) JoinErr() (cnt int, err error) {
	if cnt = e.Cnt(); cnt > 0 {
		e.mu.Lock()
		err = errors.Join(e.errs...)
		e.mu.Unlock()
	}
	return
}

func (e *Errs) Error() string {
	cnt, err := e.JoinErr()
	if cnt == 0 {
		return ""
	}
	return err.Error()
}

// Plural returns "s" unless n == 1, for natural-language log messages.
func Plural(n int) string {
	if n == 1 {
		return ""
	}
	return "s"
}

// Exitf prints a fatal message and exits the process; used only by
// collaborators that genuinely cannot continue (never by the sink or
// verifier run loops themselves, which are resilient/fail-fast per spec §7
// rather than process-fatal).
func Exitf(f string, a ...any) {
	fmt.Fprintf(os.Stderr, "FATAL ERROR: "+f+"\n", a...)
	os.Exit(1)
}
