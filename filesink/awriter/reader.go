package awriter

import (
	"encoding/binary"
	"errors"
	"io"

	"github.com/klauspost/compress/gzip"
)

// ReadFrames decompresses r as a gzip stream and yields each
// length-delimited frame to fn in order. It tolerates a truncated tail: a
// short/partial length prefix or a short payload at EOF ends iteration
// without error, per spec §4.B/§5 ("downstream must be tolerant of
// truncated tail frames... the length-delimited framing makes this
// detection trivial").
func ReadFrames(r io.Reader, fn func([]byte) error) error {
	gz, err := gzip.NewReader(r)
	if err != nil {
		if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
			return nil
		}
		return err
	}
	defer gz.Close()

	var hdr [4]byte
	for {
		if _, err := io.ReadFull(gz, hdr[:]); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			return err
		}
		n := binary.BigEndian.Uint32(hdr[:])
		payload := make([]byte, n)
		if _, err := io.ReadFull(gz, payload); err != nil {
			if errors.Is(err, io.EOF) || errors.Is(err, io.ErrUnexpectedEOF) {
				return nil
			}
			return err
		}
		if err := fn(payload); err != nil {
			return err
		}
	}
}
