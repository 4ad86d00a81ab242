// Package awriter implements the active-file writer (spec §4.B): a
// composition of a length-delimited framer, a gzip encoder, and a buffered
// file writer. It is modeled on the teacher's cmn/archive tar/gzip writer
// stack (baseW -> gzip.Writer -> underlying io.Writer), generalized from
// archive entries to flat length-prefixed frames.
/*
 * Copyright (c) 2018-2023, NVIDIA CORPORATION. All rights reserved.
 */
package awriter

import (
	"bufio"
	"encoding/binary"
	"os"

	"github.com/klauspost/compress/gzip"

	"github.com/iotmesh/datasink/cmn/cos"
)

const bufSize = 64 * 1024

// Writer is the outermost-first composition:
// framer -> gzip.Writer -> bufio.Writer -> *os.File.
// Write is not re-entrant (spec §5): exactly one goroutine drives a sink's
// active file at a time.
type Writer struct {
	path string
	file *os.File
	buf  *bufio.Writer
	gz   *gzip.Writer
	hdr  [4]byte
}

// Open creates (or truncates) path and wraps it in the writer stack. The
// file is opened write-only/create, matching spec's "open a new tmp file".
func Open(path string) (*Writer, error) {
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, cos.NewErrIO(cos.PhaseWrite, path, err)
	}
	buf := bufio.NewWriterSize(f, bufSize)
	gz := gzip.NewWriter(buf)
	return &Writer{path: path, file: f, buf: buf, gz: gz}, nil
}

// Write prepends a big-endian 4-byte length to b and appends it to the
// gzip stream. Returns the total frame-prefixed length accepted
// (len(b)+4 on success) so callers accumulating bytes_written (spec §3's
// active-file invariant) count what was actually appended, prefix
// included.
func (w *Writer) Write(b []byte) (int, error) {
	binary.BigEndian.PutUint32(w.hdr[:], uint32(len(b)))
	if _, err := w.gz.Write(w.hdr[:]); err != nil {
		return 0, cos.NewErrEncode(w.path, err)
	}
	if _, err := w.gz.Write(b); err != nil {
		return 0, cos.NewErrEncode(w.path, err)
	}
	return len(b) + 4, nil
}

// Shutdown flushes the framer (nothing buffered above gzip), finalizes the
// gzip trailer, flushes the buffered writer, and fsyncs the file descriptor
// — the exact sequence spec §4.B requires so the file is a complete,
// independently decodable gzip stream afterward.
func (w *Writer) Shutdown() error {
	if err := w.gz.Close(); err != nil {
		_ = w.file.Close()
		return cos.NewErrEncode(w.path, err)
	}
	if err := w.buf.Flush(); err != nil {
		_ = w.file.Close()
		return cos.NewErrIO(cos.PhaseShutdown, w.path, err)
	}
	if err := w.file.Sync(); err != nil {
		_ = w.file.Close()
		return cos.NewErrIO(cos.PhaseShutdown, w.path, err)
	}
	if err := w.file.Close(); err != nil {
		return cos.NewErrIO(cos.PhaseShutdown, w.path, err)
	}
	return nil
}
