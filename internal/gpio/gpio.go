// Package gpio delivers receiver signal edges with hardware abstraction.
// The real implementation uses Linux GPIO character device edge events.
// The fake implementation allows testing without hardware.
package gpio

import "github.com/sweeney/msf-receiver/internal/msf"

// Edge is one transition of the demodulated receiver line.
type Edge struct {
	// Dir is the transition direction after any configured inversion,
	// so Falling always ends the carrier-off part of a second.
	Dir msf.EdgeDirection

	// Micros is the kernel event timestamp in microseconds. It is
	// monotonic and wraps at 2^32; consumers must subtract modulo 2^32.
	Micros uint32
}

// Watcher delivers edges from the receiver line.
type Watcher interface {
	// Edges returns the channel edge events arrive on. The channel
	// closes when the watcher shuts down.
	Edges() <-chan Edge

	// Close releases GPIO resources.
	Close() error
}

// Default wiring for a receiver module on a Raspberry Pi (BCM numbering).
const (
	DefaultChip = "gpiochip0"
	DefaultPin  = 4
)
