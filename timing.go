// FILE: lixenwraith/settings/timing.go
package settings

import "time"

// File watching intervals (ordered by frequency)
const (
	MinPollInterval     = 100 * time.Millisecond // Hard floor for file stat polling
	DefaultDebounce     = 500 * time.Millisecond // File change coalescence period
	DefaultPollInterval = time.Second            // Standard file monitoring frequency
)

// DefaultWatchBuffer is the capacity of a watch channel.
const DefaultWatchBuffer = 16
