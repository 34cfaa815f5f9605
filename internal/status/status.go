// Package status provides a thread-safe status tracker for the msf-receiver
// daemon. It is designed to be read by HTTP handlers and the live websocket
// feed.
package status

import (
	"sync"
	"time"

	"github.com/sweeney/msf-receiver/internal/msf"
	"github.com/sweeney/msf-receiver/internal/radiotime"
)

// NetworkInfo contains network state. This is a local copy to avoid
// importing internal/mqtt from status.
type NetworkInfo struct {
	Type       string
	IP         string
	Status     string
	Gateway    string
	WifiStatus string
	SSID       string
}

// Config contains daemon configuration for display.
type Config struct {
	Broker           string
	HTTPPort         string
	GPIOChip         string
	GPIOPin          int
	HeartbeatMinutes int
	Strict           bool
	SpikeLimitMicros uint32
}

// TimeStatus is the last decoded broadcast minute.
type TimeStatus struct {
	Decoded      bool // false until the first minute boundary
	DecodedAt    time.Time
	DateTime     radiotime.DateTime
	Parities     [4]msf.Check
	DUT1         int8
	DUT1Known    bool
	MinuteLength uint8
}

// Counts tracks reception statistics since startup.
type Counts struct {
	SecondsObserved uint64
	MinutesDecoded  uint64
	MinutesValid    uint64
	SignalLosses    uint64
}

// Snapshot is a point-in-time view of daemon state. It is a value type,
// safe to use after the lock is released.
type Snapshot struct {
	Time          TimeStatus
	SignalPresent bool
	Second        uint8
	FirstMinute   bool
	Counts        Counts
	StartTime     time.Time
	Now           time.Time
	MQTTConnected bool
	Network       *NetworkInfo
	Config        Config
}

// Uptime returns the duration since the daemon started.
func (s Snapshot) Uptime() time.Duration {
	return s.Now.Sub(s.StartTime)
}

// Tracker holds mutable daemon state behind an RWMutex.
type Tracker struct {
	mu   sync.RWMutex
	snap Snapshot
}

// NewTracker creates a Tracker with the given start time and config.
func NewTracker(startTime time.Time, cfg Config) *Tracker {
	return &Tracker{
		snap: Snapshot{
			StartTime:   startTime,
			FirstMinute: true,
			Config:      cfg,
		},
	}
}

// UpdateTime records a decoded minute. valid reports whether the decode
// passed the configured validity gate with a consistent calendar.
// Called from runLoop at every minute boundary.
func (t *Tracker) UpdateTime(ts TimeStatus, valid bool) {
	t.mu.Lock()
	t.snap.Time = ts
	t.snap.Counts.MinutesDecoded++
	if valid {
		t.snap.Counts.MinutesValid++
	}
	t.mu.Unlock()
}

// UpdateProgress records the running second-of-minute.
// Called from runLoop on every new second.
func (t *Tracker) UpdateProgress(second uint8, firstMinute bool) {
	t.mu.Lock()
	t.snap.Second = second
	t.snap.FirstMinute = firstMinute
	t.snap.Counts.SecondsObserved++
	t.mu.Unlock()
}

// SetSignal records receiver signal presence. A present-to-lost transition
// counts as a signal loss.
func (t *Tracker) SetSignal(present bool) {
	t.mu.Lock()
	if t.snap.SignalPresent && !present {
		t.snap.Counts.SignalLosses++
	}
	t.snap.SignalPresent = present
	t.mu.Unlock()
}

// SetMQTTConnected sets the MQTT connection status.
func (t *Tracker) SetMQTTConnected(connected bool) {
	t.mu.Lock()
	t.snap.MQTTConnected = connected
	t.mu.Unlock()
}

// SetNetwork sets the network info.
func (t *Tracker) SetNetwork(info *NetworkInfo) {
	t.mu.Lock()
	t.snap.Network = info
	t.mu.Unlock()
}

// Snapshot returns a point-in-time copy of the daemon state.
// The Now field is set to the current time at the moment of the call.
func (t *Tracker) Snapshot() Snapshot {
	t.mu.RLock()
	s := t.snap
	t.mu.RUnlock()
	s.Now = time.Now()
	return s
}
