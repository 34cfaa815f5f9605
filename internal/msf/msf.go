// Package msf decodes the 60 kHz MSF time signal from a stream of
// demodulated signal edges. This package is pure state-machine logic with
// NO external dependencies (no GPIO, MQTT, OS, or time.Sleep): edges arrive
// as (direction, microsecond timestamp) pairs, and every failure mode is
// represented in-band as an unknown bit rather than an error.
//
// MSF broadcasts two bits per second on parallel channels A and B. Each
// second starts with a carrier-off ("active") interval whose length encodes
// the bit pair; the remainder of the second is carrier-on ("passive"). A
// 500 ms active interval marks the begin of a minute, and the fixed pattern
// 01111110 in the last eight A bits marks its end. Leap seconds stretch or
// shrink a minute to 61 or 59 seconds.
package msf

// Bit is the tri-state value of one channel for one second. The zero value
// is BitUnknown: not yet determined, or corrupted. Unknown propagates
// through every downstream computation and is never coerced to a default.
type Bit uint8

const (
	BitUnknown Bit = iota
	BitZero
	BitOne
)

func (b Bit) String() string {
	switch b {
	case BitZero:
		return "0"
	case BitOne:
		return "1"
	default:
		return "?"
	}
}

// Check is the tri-state outcome of a parity test.
type Check uint8

const (
	CheckUnknown Check = iota
	CheckOK
	CheckBad
)

func (c Check) String() string {
	switch c {
	case CheckOK:
		return "ok"
	case CheckBad:
		return "bad"
	default:
		return "unknown"
	}
}

// EdgeDirection tags a transition of the demodulated input line. A Falling
// edge ends the active part of a second's cycle; a Rising edge ends the
// passive part.
type EdgeDirection uint8

const (
	Rising EdgeDirection = iota + 1
	Falling
)

// secondMicros is the nominal length of one second.
const secondMicros = 1_000_000

// BitBufferLen is the capacity of the per-minute bit buffers: 61 seconds
// for a positive leap second plus one guard slot so a missed minute marker
// cannot index out of range.
const BitBufferLen = 62

// Config holds the classifier's timing windows, all in microseconds.
// An active interval Δ classifies as bit A=0 below Active0Limit, A=1 B=0
// below ActiveALimit, A=1 B=1 below ActiveABLimit, and as the begin-of-
// minute marker below MinuteLimit, but only when the preceding passive
// interval clears the matching MinGap threshold, which is what rejects torn
// cycles as unknown instead of guessing.
type Config struct {
	// SpikeLimit is the initial spike-rejection threshold; edges closer
	// together than this are absorbed as noise.
	SpikeLimit uint32
	// Active0Limit is the upper bound for a 0-bit active interval.
	Active0Limit uint32
	// ActiveALimit is the upper bound for an A=1, B=0 active interval.
	ActiveALimit uint32
	// ActiveABLimit is the upper bound for an A=1, B=1 active interval.
	ActiveABLimit uint32
	// MinuteLimit is the upper bound for the begin-of-minute marker.
	MinuteLimit uint32
	// PassiveRunaway is the passive interval length beyond which the
	// signal is considered lost.
	PassiveRunaway uint32
	// MinGapZero is the minimum preceding passive interval for a 0-bit
	// (also the passive length that signals a new second).
	MinGapZero uint32
	// MinGapOne is the minimum preceding passive interval for a 1-bit.
	MinGapOne uint32
	// MinGapMarker is the minimum preceding passive interval for the
	// begin-of-minute marker. The historical receiver drafts disagree on
	// this value; see WideMarkerConfig.
	MinGapMarker uint32
}

// DefaultConfig returns the timing windows of the most complete receiver
// lineage: marker and 1-bit preconditions both at one second minus
// ActiveABLimit.
func DefaultConfig() Config {
	c := Config{
		SpikeLimit:     30_000,
		Active0Limit:   150_000,
		ActiveALimit:   250_000,
		ActiveABLimit:  350_000,
		MinuteLimit:    550_000,
		PassiveRunaway: 1_500_000,
	}
	c.MinGapZero = secondMicros - c.MinuteLimit
	c.MinGapOne = secondMicros - c.ActiveABLimit
	c.MinGapMarker = secondMicros - c.ActiveABLimit
	return c
}

// WideMarkerConfig returns DefaultConfig with the alternative begin-of-
// minute precondition (one second minus Active0Limit) found in a parallel
// receiver draft. The two derivations differ only here; which one a given
// antenna/receiver chain needs is a deployment choice, so both are kept.
func WideMarkerConfig() Config {
	c := DefaultConfig()
	c.MinGapMarker = secondMicros - c.Active0Limit
	return c
}
