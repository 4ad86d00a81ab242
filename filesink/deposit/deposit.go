// Package deposit implements the upload-handoff channel (spec §4.D): a
// fire-and-forget notification channel informing an uploader that a file is
// ready in the target directory. The sink never deletes promoted files and
// never blocks indefinitely on this channel — a full channel is logged and
// dropped, because the uploader is expected to drain eventually and
// re-announces on its own startup (spec §4.C "Seal+promote").
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package deposit

// DefaultCapacity matches spec's channel_capacity default.
const DefaultCapacity = 50

// Chan carries absolute paths of promoted files to an uploader.
type Chan struct {
	c chan string
}

func New(capacity int) *Chan {
	if capacity <= 0 {
		capacity = DefaultCapacity
	}
	return &Chan{c: make(chan string, capacity)}
}

// TrySend is non-blocking; ok=false means the channel is full (the sink
// logs and continues per spec, never treating this as fatal).
func (d *Chan) TrySend(path string) (ok bool) {
	select {
	case d.c <- path:
		return true
	default:
		return false
	}
}

// C exposes the receive side for the uploader.
func (d *Chan) C() <-chan string { return d.c }
