//go:build !mono

// Package mono provides low-level monotonic time, used by hk to schedule
// its registered callbacks.
/*
 * Copyright (c) 2018-2021, NVIDIA CORPORATION. All rights reserved.
 */
package mono

import "time"

// NanoTime returns a monotonic-clock reading in nanoseconds. The default
// build uses time.Now's monotonic component; build with -tags mono to link
// runtime.nanotime directly (see fast_nanotime.go).
func NanoTime() int64 { return int64(time.Since(start)) }

// start anchors NanoTime; time.Since reads the monotonic component of both
// instants, so wall-clock adjustments do not affect the result.
var start = time.Now()
