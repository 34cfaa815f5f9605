// Package mqtt provides MQTT publishing with abstraction for testing.
package mqtt

import (
	"encoding/json"
	"time"

	"github.com/sweeney/msf-receiver/internal/msf"
	"github.com/sweeney/msf-receiver/internal/radiotime"
)

// Topic is the MQTT topic for decoded minute events.
const Topic = "time/msf/receiver/events"

// TopicSystem is the MQTT topic for system lifecycle events.
const TopicSystem = "time/msf/receiver/system"

// Publisher publishes events to MQTT.
type Publisher interface {
	// Publish sends a decoded minute to the broker.
	// Returns error if publishing fails (should not crash the process).
	Publish(event TimeEvent) error

	// PublishSystem sends a system lifecycle event to the broker.
	PublishSystem(event SystemEvent) error

	// Close disconnects from the broker.
	Close() error
}

// ConnectionStatus reports whether the MQTT connection is active.
type ConnectionStatus interface {
	IsConnected() bool
}

// TimeEvent is one decoded minute, published at the minute boundary.
type TimeEvent struct {
	Timestamp    time.Time          // local receive time, not broadcast time
	DateTime     radiotime.DateTime // accumulated broadcast calendar
	Parities     [4]msf.Check
	DUT1         int8
	DUT1Known    bool
	MinuteLength uint8
	Strict       bool // whether strict validity gating was in effect
}

// SystemEvent represents a system lifecycle event (e.g., startup, shutdown, heartbeat).
type SystemEvent struct {
	Timestamp  time.Time
	Event      string // e.g., "STARTUP", "SHUTDOWN", "HEARTBEAT"
	Reason     string // e.g., "SIGTERM", "SIGINT" (shutdown only)
	RawPayload []byte // Pre-formatted JSON payload; if set, FormatSystemPayload returns it directly
	Retained   bool   // Whether the message should be retained by the broker
}

// Payload represents the MQTT message payload structure.
type Payload struct {
	MSF TimePayload `json:"msf"`
}

// TimePayload contains the decoded minute details. Calendar fields the
// receiver has not (or not validly) decoded yet are null, never zero.
type TimePayload struct {
	Timestamp    string      `json:"timestamp"`
	Year         *uint8      `json:"year"`
	Month        *uint8      `json:"month"`
	Day          *uint8      `json:"day"`
	Weekday      *uint8      `json:"weekday"`
	Hour         *uint8      `json:"hour"`
	Minute       *uint8      `json:"minute"`
	DST          *DSTPayload `json:"dst"`
	DUT1         *int8       `json:"dut1"`
	Parities     [4]string   `json:"parities"`
	MinuteLength uint8       `json:"minute_length"`
	Strict       bool        `json:"strict"`
}

// DSTPayload contains the daylight saving time flags.
type DSTPayload struct {
	Summer    bool `json:"summer"`
	Announced bool `json:"announced"`
	Jumped    bool `json:"jumped"`
}

// FormatTimePayload creates the JSON payload for a decoded minute.
func FormatTimePayload(event TimeEvent) ([]byte, error) {
	dt := event.DateTime
	inner := TimePayload{
		Timestamp:    event.Timestamp.UTC().Format(time.RFC3339),
		Year:         fieldPtr(dt.Year()),
		Month:        fieldPtr(dt.Month()),
		Day:          fieldPtr(dt.Day()),
		Weekday:      fieldPtr(dt.Weekday()),
		Hour:         fieldPtr(dt.Hour()),
		Minute:       fieldPtr(dt.Minute()),
		MinuteLength: event.MinuteLength,
		Strict:       event.Strict,
	}
	if dst, ok := dt.DST(); ok {
		inner.DST = &DSTPayload{
			Summer:    dst&radiotime.DSTSummer != 0,
			Announced: dst&radiotime.DSTAnnounced != 0,
			Jumped:    dst&radiotime.DSTJump != 0,
		}
	}
	if event.DUT1Known {
		dut1 := event.DUT1
		inner.DUT1 = &dut1
	}
	for i, p := range event.Parities {
		inner.Parities[i] = p.String()
	}
	return json.Marshal(Payload{MSF: inner})
}

func fieldPtr(value uint8, ok bool) *uint8 {
	if !ok {
		return nil
	}
	v := value
	return &v
}

// SystemPayload represents the MQTT message payload for system events.
// Used for simple events (LWT, RECONNECTED) that don't carry a full status snapshot.
type SystemPayload struct {
	System SystemPayloadInner `json:"system"`
}

// SystemPayloadInner contains the system event details.
type SystemPayloadInner struct {
	Timestamp string `json:"timestamp"`
	Event     string `json:"event"`
	Reason    string `json:"reason,omitempty"`
}

// FormatSystemPayload creates the JSON payload for a system event.
// If event.RawPayload is set, it is returned directly (used for full status snapshots).
func FormatSystemPayload(event SystemEvent) ([]byte, error) {
	if event.RawPayload != nil {
		return event.RawPayload, nil
	}

	payload := SystemPayload{
		System: SystemPayloadInner{
			Timestamp: event.Timestamp.UTC().Format(time.RFC3339),
			Event:     event.Event,
			Reason:    event.Reason,
		},
	}
	return json.Marshal(payload)
}
