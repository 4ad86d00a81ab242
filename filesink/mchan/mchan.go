// Package mchan implements the bounded, back-pressured channel (spec §4.A)
// that carries already-encoded record bytes from producers to a file sink.
// It is a thin typed wrapper over a Go channel: the language's native
// channel already gives FIFO order and blocking send/recv, so there is
// nothing to build beyond making "no more senders" observable to the
// receiver and a send on a closed channel an error instead of a panic,
// matching the teacher's habit of wrapping raw
// channels in a small named type rather than passing `chan []byte` around.
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package mchan

import "github.com/iotmesh/datasink/cmn/cos"

// DefaultCapacity matches spec's channel_capacity default.
const DefaultCapacity = 50

// Chan is a bounded FIFO of encoded record bytes. The zero value is not
// usable; construct with New.
type Chan struct {
	buf chan []byte
}

// New creates a channel with the given capacity (<=0 defaults to
// DefaultCapacity).
func New(capacity int) *Chan {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Chan{buf: make(chan []byte, capacity)}
}

// Sender is the producer-facing half: Send blocks (providing back-pressure)
// until there's room, or returns ErrChannelClosed once the channel has been
// closed through a Sender. A receiver that stops reading is not detected.
type Sender struct{ c *Chan }

// Receiver is the consumer-facing half.
type Receiver struct{ c *Chan }

// Split returns independent sender/receiver handles over the same
// underlying channel, so a producer and a sink manager never share the raw
// channel type directly.
func (c *Chan) Split() (Sender, Receiver) { return Sender{c}, Receiver{c} }

// Send enqueues already-encoded bytes, blocking if the channel is full.
// Returns *cos.ErrChannelClosed if the channel has already been closed by
// Close. A sink that stops running does not close the channel, so after it
// is gone Send keeps filling the buffer and then blocks.
func (s Sender) Send(b []byte) (err error) {
	defer func() {
		if recover() != nil {
			err = cos.NewErrChannelClosed("mchan.Send")
		}
	}()
	s.c.buf <- b
	return nil
}

// Close signals end-of-stream to the receiver; the sink's run loop observes
// this as a graceful-shutdown condition (spec §4.C "End-of-stream on the
// input channel is treated as a graceful shutdown").
func (s Sender) Close() { close(s.c.buf) }

// Recv returns the next message, or ok=false once the channel is closed and
// drained — the distinguishable "no more senders" condition from spec §4.A.
func (r Receiver) Recv() (b []byte, ok bool) {
	b, ok = <-r.c.buf
	return
}

// C exposes the raw receive channel for use in a select statement alongside
// shutdown and rollover-tick events (spec §4.C run loop).
func (r Receiver) C() <-chan []byte { return r.c.buf }
