package status

import (
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sweeney/msf-receiver/internal/msf"
	"github.com/sweeney/msf-receiver/internal/radiotime"
)

func decodedTime(at time.Time) TimeStatus {
	dt := radiotime.New(0)
	dt.SetYear(22, true, true, false)
	dt.SetMonth(10, true, true, false)
	dt.SetDay(23, true, true, false)
	dt.SetWeekday(6, true, true, false)
	dt.SetHour(14, true, true, false)
	dt.SetMinute(58, true, true, false)
	dt.SetDST(true, false, true, false)
	return TimeStatus{
		Decoded:      true,
		DecodedAt:    at,
		DateTime:     dt,
		Parities:     [4]msf.Check{msf.CheckOK, msf.CheckOK, msf.CheckOK, msf.CheckOK},
		DUT1:         -2,
		DUT1Known:    true,
		MinuteLength: 60,
	}
}

func TestNewTracker(t *testing.T) {
	start := time.Date(2022, 10, 23, 14, 0, 0, 0, time.UTC)
	cfg := Config{Broker: "tcp://localhost:1883", HTTPPort: ":80", GPIOPin: 4}
	tr := NewTracker(start, cfg)

	snap := tr.Snapshot()
	if !snap.StartTime.Equal(start) {
		t.Errorf("StartTime: got %v, want %v", snap.StartTime, start)
	}
	if snap.Config.GPIOPin != 4 {
		t.Errorf("Config.GPIOPin: got %d, want 4", snap.Config.GPIOPin)
	}
	if !snap.FirstMinute {
		t.Error("expected FirstMinute=true initially")
	}
	if snap.Time.Decoded {
		t.Error("expected no decoded time initially")
	}
	if snap.SignalPresent {
		t.Error("expected SignalPresent=false initially")
	}
	if snap.MQTTConnected {
		t.Error("expected MQTTConnected=false initially")
	}
}

func TestUpdateTimeCountsMinutes(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.UpdateTime(decodedTime(time.Now()), true)
	tr.UpdateTime(decodedTime(time.Now()), false)

	snap := tr.Snapshot()
	if !snap.Time.Decoded {
		t.Error("expected a decoded time")
	}
	if snap.Counts.MinutesDecoded != 2 {
		t.Errorf("MinutesDecoded: got %d, want 2", snap.Counts.MinutesDecoded)
	}
	if snap.Counts.MinutesValid != 1 {
		t.Errorf("MinutesValid: got %d, want 1", snap.Counts.MinutesValid)
	}
	minute, ok := snap.Time.DateTime.Minute()
	if !ok || minute != 58 {
		t.Errorf("minute: got %d (known %v), want 58", minute, ok)
	}
}

func TestUpdateProgress(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	for s := uint8(0); s < 10; s++ {
		tr.UpdateProgress(s, true)
	}

	snap := tr.Snapshot()
	if snap.Second != 9 {
		t.Errorf("Second: got %d, want 9", snap.Second)
	}
	if snap.Counts.SecondsObserved != 10 {
		t.Errorf("SecondsObserved: got %d, want 10", snap.Counts.SecondsObserved)
	}
}

func TestSetSignalCountsLosses(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	tr.SetSignal(true)
	tr.SetSignal(true) // no transition
	tr.SetSignal(false)
	tr.SetSignal(false) // still lost, not another loss
	tr.SetSignal(true)
	tr.SetSignal(false)

	snap := tr.Snapshot()
	if snap.Counts.SignalLosses != 2 {
		t.Errorf("SignalLosses: got %d, want 2", snap.Counts.SignalLosses)
	}
	if snap.SignalPresent {
		t.Error("expected SignalPresent=false")
	}
}

func TestSetMQTTConnected(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	tr.SetMQTTConnected(true)
	if !tr.Snapshot().MQTTConnected {
		t.Error("expected MQTTConnected=true")
	}
}

func TestConcurrentAccess(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(2)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				tr.UpdateProgress(uint8(j%60), false)
				tr.SetSignal(j%2 == 0)
			}
		}()
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				_ = tr.Snapshot()
			}
		}()
	}
	wg.Wait()

	snap := tr.Snapshot()
	if snap.Counts.SecondsObserved != 400 {
		t.Errorf("SecondsObserved: got %d, want 400", snap.Counts.SecondsObserved)
	}
}

func TestFormatJSONDecoded(t *testing.T) {
	start := time.Date(2022, 10, 23, 14, 0, 0, 0, time.UTC)
	tr := NewTracker(start, Config{Broker: "tcp://broker:1883", HTTPPort: ":8080"})
	tr.UpdateTime(decodedTime(start.Add(59*time.Minute)), true)
	tr.UpdateProgress(0, false)
	tr.SetSignal(true)
	tr.SetMQTTConnected(true)

	var parsed StatusJSON
	if err := json.Unmarshal(FormatJSON(tr.Snapshot()), &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	inner := parsed.Status
	if inner.Event != "" {
		t.Errorf("web status must not carry an event, got %q", inner.Event)
	}
	if !inner.Signal || !inner.Synchronized {
		t.Errorf("expected signal and synchronized, got %+v", inner)
	}
	if inner.Time == nil {
		t.Fatal("expected a time block")
	}
	if inner.Time.Minute == nil || *inner.Time.Minute != 58 {
		t.Errorf("minute: got %v, want 58", inner.Time.Minute)
	}
	if inner.Time.DUT1 == nil || *inner.Time.DUT1 != -2 {
		t.Errorf("dut1: got %v, want -2", inner.Time.DUT1)
	}
	if inner.Time.Summer == nil || !*inner.Time.Summer {
		t.Errorf("summer: got %v, want true", inner.Time.Summer)
	}
	if inner.MQTT.Broker != "tcp://broker:1883" || !inner.MQTT.Connected {
		t.Errorf("unexpected mqtt block: %+v", inner.MQTT)
	}
	if inner.Counts.MinutesValid != 1 {
		t.Errorf("minutes_valid: got %d, want 1", inner.Counts.MinutesValid)
	}
}

func TestFormatJSONBeforeFirstDecode(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})

	var raw map[string]map[string]any
	if err := json.Unmarshal(FormatJSON(tr.Snapshot()), &raw); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	v, present := raw["status"]["time"]
	if !present {
		t.Fatal("time field missing, want explicit null")
	}
	if v != nil {
		t.Errorf("time: got %v, want null before the first decode", v)
	}
}

func TestFormatStatusEvent(t *testing.T) {
	tr := NewTracker(time.Now(), Config{})
	payload := FormatStatusEvent(tr.Snapshot(), "STARTUP", "")

	var parsed StatusJSON
	if err := json.Unmarshal(payload, &parsed); err != nil {
		t.Fatalf("invalid JSON: %v", err)
	}
	if parsed.Status.Event != "STARTUP" {
		t.Errorf("event: got %q, want STARTUP", parsed.Status.Event)
	}
}

func TestNewMetricsRegisters(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := NewMetrics(reg)

	m.EdgesHandled.Inc()
	m.SignalPresent.Set(1)
	m.ParityFailures.WithLabelValues("4").Inc()
	m.DUT1.Set(-0.2)

	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	found := map[string]bool{}
	for _, f := range families {
		found[f.GetName()] = true
	}
	for _, name := range []string{
		"msf_edges_total", "msf_signal_present",
		"msf_parity_failures_total", "msf_dut1_seconds",
	} {
		if !found[name] {
			t.Errorf("metric %s not registered", name)
		}
	}
}
