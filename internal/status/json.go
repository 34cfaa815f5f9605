package status

import (
	"encoding/json"
	"time"

	"github.com/sweeney/msf-receiver/internal/radiotime"
)

// StatusJSON is the top-level JSON envelope for status output.
type StatusJSON struct {
	Status StatusInner `json:"status"`
}

// StatusInner contains the status details.
type StatusInner struct {
	Event         string       `json:"event,omitempty"`
	Reason        string       `json:"reason,omitempty"`
	Signal        bool         `json:"signal"`
	Second        uint8        `json:"second"`
	Synchronized  bool         `json:"synchronized"`
	Time          *TimeJSON    `json:"time"`
	UptimeSeconds int64        `json:"uptime_seconds"`
	StartTime     string       `json:"start_time"`
	Timestamp     string       `json:"timestamp"`
	MQTT          MQTTStatus   `json:"mqtt"`
	Counts        CountsJSON   `json:"counts"`
	Network       *NetworkJSON `json:"network,omitempty"`
	Config        ConfigJSON   `json:"config"`
}

// TimeJSON is the JSON representation of the last decoded minute.
// Calendar fields not validly decoded yet are null.
type TimeJSON struct {
	DecodedAt    string    `json:"decoded_at"`
	Year         *uint8    `json:"year"`
	Month        *uint8    `json:"month"`
	Day          *uint8    `json:"day"`
	Weekday      *uint8    `json:"weekday"`
	Hour         *uint8    `json:"hour"`
	Minute       *uint8    `json:"minute"`
	DUT1         *int8     `json:"dut1"`
	Summer       *bool     `json:"summer"`
	Parities     [4]string `json:"parities"`
	MinuteLength uint8     `json:"minute_length"`
}

// MQTTStatus reports MQTT connection state.
type MQTTStatus struct {
	Connected bool   `json:"connected"`
	Broker    string `json:"broker"`
}

// CountsJSON is the JSON representation of reception statistics.
type CountsJSON struct {
	SecondsObserved uint64 `json:"seconds_observed"`
	MinutesDecoded  uint64 `json:"minutes_decoded"`
	MinutesValid    uint64 `json:"minutes_valid"`
	SignalLosses    uint64 `json:"signal_losses"`
}

// NetworkJSON is the JSON representation of network info.
type NetworkJSON struct {
	Type       string `json:"type"`
	IP         string `json:"ip"`
	Status     string `json:"status"`
	Gateway    string `json:"gateway"`
	WifiStatus string `json:"wifi_status"`
	SSID       string `json:"ssid"`
}

// ConfigJSON is the JSON representation of daemon config.
type ConfigJSON struct {
	Broker           string `json:"broker"`
	HTTPPort         string `json:"http_port"`
	GPIOChip         string `json:"gpio_chip"`
	GPIOPin          int    `json:"gpio_pin"`
	HeartbeatMinutes int    `json:"heartbeat_minutes"`
	Strict           bool   `json:"strict"`
	SpikeLimitMicros uint32 `json:"spike_limit_us"`
}

func buildTime(ts TimeStatus) *TimeJSON {
	if !ts.Decoded {
		return nil
	}
	dt := ts.DateTime
	tj := &TimeJSON{
		DecodedAt:    ts.DecodedAt.UTC().Format(time.RFC3339),
		Year:         fieldPtr(dt.Year()),
		Month:        fieldPtr(dt.Month()),
		Day:          fieldPtr(dt.Day()),
		Weekday:      fieldPtr(dt.Weekday()),
		Hour:         fieldPtr(dt.Hour()),
		Minute:       fieldPtr(dt.Minute()),
		MinuteLength: ts.MinuteLength,
	}
	if ts.DUT1Known {
		dut1 := ts.DUT1
		tj.DUT1 = &dut1
	}
	if dst, ok := dt.DST(); ok {
		summer := dst&radiotime.DSTSummer != 0
		tj.Summer = &summer
	}
	for i, p := range ts.Parities {
		tj.Parities[i] = p.String()
	}
	return tj
}

func fieldPtr(value uint8, ok bool) *uint8 {
	if !ok {
		return nil
	}
	v := value
	return &v
}

func buildInner(snap Snapshot) StatusInner {
	return StatusInner{
		Signal:        snap.SignalPresent,
		Second:        snap.Second,
		Synchronized:  !snap.FirstMinute,
		Time:          buildTime(snap.Time),
		UptimeSeconds: int64(snap.Uptime().Truncate(time.Second).Seconds()),
		StartTime:     snap.StartTime.UTC().Format(time.RFC3339),
		Timestamp:     snap.Now.UTC().Format(time.RFC3339),
		MQTT:          MQTTStatus{Connected: snap.MQTTConnected, Broker: snap.Config.Broker},
		Counts: CountsJSON{
			SecondsObserved: snap.Counts.SecondsObserved,
			MinutesDecoded:  snap.Counts.MinutesDecoded,
			MinutesValid:    snap.Counts.MinutesValid,
			SignalLosses:    snap.Counts.SignalLosses,
		},
		Config: ConfigJSON{
			Broker:           snap.Config.Broker,
			HTTPPort:         snap.Config.HTTPPort,
			GPIOChip:         snap.Config.GPIOChip,
			GPIOPin:          snap.Config.GPIOPin,
			HeartbeatMinutes: snap.Config.HeartbeatMinutes,
			Strict:           snap.Config.Strict,
			SpikeLimitMicros: snap.Config.SpikeLimitMicros,
		},
	}
}

func buildNetwork(snap Snapshot, inner *StatusInner) {
	if snap.Network != nil {
		inner.Network = &NetworkJSON{
			Type:       snap.Network.Type,
			IP:         snap.Network.IP,
			Status:     snap.Network.Status,
			Gateway:    snap.Network.Gateway,
			WifiStatus: snap.Network.WifiStatus,
			SSID:       snap.Network.SSID,
		}
	}
}

// FormatJSON returns the JSON status for the web endpoint (no event/reason).
func FormatJSON(snap Snapshot) []byte {
	inner := buildInner(snap)
	buildNetwork(snap, &inner)

	data, _ := json.MarshalIndent(StatusJSON{Status: inner}, "", "  ")
	return data
}

// FormatStatusEvent returns the JSON status for an MQTT system event.
func FormatStatusEvent(snap Snapshot, event, reason string) []byte {
	inner := buildInner(snap)
	inner.Event = event
	inner.Reason = reason
	buildNetwork(snap, &inner)

	data, _ := json.Marshal(StatusJSON{Status: inner})
	return data
}
