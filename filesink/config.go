package filesink

import (
	"time"

	"github.com/iotmesh/datasink/filesink/deposit"
	"github.com/iotmesh/datasink/filesink/mchan"
)

// Defaults per spec §4.C/§6.
const (
	DefaultMaxSize      = 50_000_000
	DefaultRollInterval = 3 * time.Minute
)

// Config is the per-sink configuration surface enumerated in spec §6.
type Config struct {
	TargetDir       string // required
	TmpDir          string // default: TargetDir/tmp
	Tag             string // required, ASCII token, prefix of every filename
	MaxSize         int64  // default DefaultMaxSize
	RollInterval    time.Duration // default DefaultRollInterval
	Deposit         *deposit.Chan // optional
	ChannelCapacity int           // default mchan.DefaultCapacity; only used by NewWithChan
}

func (c *Config) setDefaults() {
	if c.TmpDir == "" {
		c.TmpDir = c.TargetDir + "/tmp"
	}
	if c.MaxSize <= 0 {
		c.MaxSize = DefaultMaxSize
	}
	if c.RollInterval <= 0 {
		c.RollInterval = DefaultRollInterval
	}
	if c.ChannelCapacity <= 0 {
		c.ChannelCapacity = mchan.DefaultCapacity
	}
}
