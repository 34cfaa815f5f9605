// Command msf-receiver decodes the MSF 60 kHz time signal from a GPIO
// receiver module and publishes decoded minutes to MQTT.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sweeney/msf-receiver/internal/config"
	"github.com/sweeney/msf-receiver/internal/gpio"
	"github.com/sweeney/msf-receiver/internal/msf"
	"github.com/sweeney/msf-receiver/internal/mqtt"
	"github.com/sweeney/msf-receiver/internal/radiotime"
	"github.com/sweeney/msf-receiver/internal/status"
	"github.com/sweeney/msf-receiver/internal/web"
)

// silenceTimeout is how long the receiver line may stay quiet before the
// signal counts as lost. A healthy MSF second has at least two edges.
const silenceTimeout = 2500 * time.Millisecond

func main() {
	configPath := flag.String("config", "", "YAML config file (flags override its values)")
	broker := flag.String("broker", "", "MQTT broker address")
	clientID := flag.String("client-id", "", "MQTT client ID (random suffix when empty)")
	chip := flag.String("chip", "", "GPIO chip name")
	pin := flag.Int("pin", -1, "GPIO line offset of the receiver signal")
	invert := flag.Bool("invert", false, "Invert the receiver signal polarity")
	httpAddr := flag.String("http", "", "HTTP status address (\"off\" to disable)")
	heartbeat := flag.Int("heartbeat", -1, "Heartbeat interval in minutes (0 to disable)")
	strict := flag.Bool("strict", false, "Require all parities plus DUT1 and the end-of-minute marker")
	spikeLimit := flag.Uint("spike-limit", 0, "Spike rejection limit in microseconds (0 to disable)")
	marker := flag.String("marker", "", `Minute marker convention ("default" or "wide")`)

	flag.Parse()

	cfg := config.Default()
	if *configPath != "" {
		var err error
		cfg, err = config.Load(*configPath)
		if err != nil {
			log.Fatalf("fatal: %v", err)
		}
	}

	flag.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "broker":
			cfg.Broker = *broker
		case "client-id":
			cfg.ClientID = *clientID
		case "chip":
			cfg.GPIOChip = *chip
		case "pin":
			cfg.GPIOPin = *pin
		case "invert":
			cfg.GPIOInvert = *invert
		case "http":
			if *httpAddr == "off" {
				cfg.HTTPAddr = ""
			} else {
				cfg.HTTPAddr = *httpAddr
			}
		case "heartbeat":
			cfg.HeartbeatMinutes = *heartbeat
		case "strict":
			cfg.Strict = *strict
		case "spike-limit":
			cfg.SpikeLimitMicros = uint32(*spikeLimit)
		case "marker":
			cfg.MarkerConvention = *marker
		}
	})
	if err := cfg.Validate(); err != nil {
		log.Fatalf("fatal: %v", err)
	}

	if err := run(cfg); err != nil {
		log.Fatalf("fatal: %v", err)
	}
}

func run(cfg config.Config) error {
	watcher, err := gpio.NewRealWatcher(cfg.GPIOChip, cfg.GPIOPin, cfg.GPIOInvert)
	if err != nil {
		return fmt.Errorf("init gpio: %w", err)
	}
	defer watcher.Close()

	publisher, err := mqtt.NewRealPublisher(cfg.Broker, cfg.ClientID)
	if err != nil {
		return fmt.Errorf("init mqtt: %w", err)
	}
	defer publisher.Close()

	// Tracker before STARTUP so the event carries a full snapshot.
	tracker := status.NewTracker(time.Now(), status.Config{
		Broker:           cfg.Broker,
		HTTPPort:         cfg.HTTPAddr,
		GPIOChip:         cfg.GPIOChip,
		GPIOPin:          cfg.GPIOPin,
		HeartbeatMinutes: cfg.HeartbeatMinutes,
		Strict:           cfg.Strict,
		SpikeLimitMicros: cfg.SpikeLimitMicros,
	})
	if net := readNetworkInfo(); net != nil {
		tracker.SetNetwork(net)
	}

	reg := prometheus.NewRegistry()
	metrics := status.NewMetrics(reg)

	snap := tracker.Snapshot()
	startupEvent := mqtt.SystemEvent{
		Timestamp:  snap.Now,
		Event:      "STARTUP",
		Retained:   true,
		RawPayload: status.FormatStatusEvent(snap, "STARTUP", ""),
	}
	if err := publisher.PublishSystem(startupEvent); err != nil {
		log.Printf("failed to publish startup event: %v", err)
	} else {
		log.Printf("published startup event")
	}

	var broadcast func([]byte)
	if cfg.HTTPAddr != "" {
		srv := web.New(cfg.HTTPAddr, tracker, reg)
		go func() {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				log.Printf("http server error: %v", err)
			}
		}()
		defer srv.Shutdown(context.Background())
		broadcast = srv.Broadcast
		log.Printf("http status server listening on %s", cfg.HTTPAddr)
	}

	log.Printf("started: chip=%s pin=%d broker=%s strict=%v heartbeat=%dm",
		cfg.GPIOChip, cfg.GPIOPin, cfg.Broker, cfg.Strict, cfg.HeartbeatMinutes)

	var heartbeatC <-chan time.Time
	if cfg.HeartbeatMinutes > 0 {
		ticker := time.NewTicker(time.Duration(cfg.HeartbeatMinutes) * time.Minute)
		defer ticker.Stop()
		heartbeatC = ticker.C
	}

	sigCh := make(chan os.Signal, 1)
	signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)

	return runLoop(watcher, publisher, publisher, tracker, metrics, broadcast, cfg, time.Now, heartbeatC, sigCh)
}

func runLoop(watcher gpio.Watcher, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, metrics *status.Metrics, broadcast func([]byte), cfg config.Config, now func() time.Time, heartbeat <-chan time.Time, sig <-chan os.Signal) error {
	decoder := msf.NewDecoder(cfg.DecoderConfig())
	if cfg.SpikeLimitMicros > 0 {
		decoder.SetSpikeLimit(cfg.SpikeLimitMicros)
	}

	silence := time.NewTimer(silenceTimeout)
	defer silence.Stop()
	signalPresent := false

	for {
		select {
		case s := <-sig:
			log.Printf("received %v, shutting down", s)
			signalName := "UNKNOWN"
			if s == syscall.SIGINT {
				signalName = "SIGINT"
			} else if s == syscall.SIGTERM {
				signalName = "SIGTERM"
			}
			event := mqtt.SystemEvent{
				Timestamp: now(),
				Event:     "SHUTDOWN",
				Reason:    signalName,
				Retained:  true,
			}
			if mqttStatus != nil {
				tracker.SetMQTTConnected(mqttStatus.IsConnected())
			}
			event.RawPayload = status.FormatStatusEvent(tracker.Snapshot(), "SHUTDOWN", signalName)
			if err := publisher.PublishSystem(event); err != nil {
				log.Printf("failed to publish shutdown event: %v", err)
			} else {
				log.Printf("published shutdown event")
			}
			return nil

		case <-silence.C:
			if signalPresent {
				signalPresent = false
				tracker.SetSignal(false)
				metrics.SignalPresent.Set(0)
				metrics.SignalLosses.Inc()
				log.Printf("signal lost: no edges for %v", silenceTimeout)
			}
			silence.Reset(silenceTimeout)

		case <-heartbeat:
			if mqttStatus != nil {
				tracker.SetMQTTConnected(mqttStatus.IsConnected())
			}
			// Refresh network info for heartbeat.
			if net := readNetworkInfo(); net != nil {
				tracker.SetNetwork(net)
			}
			snap := tracker.Snapshot()
			hbEvent := mqtt.SystemEvent{
				Timestamp:  snap.Now,
				Event:      "HEARTBEAT",
				RawPayload: status.FormatStatusEvent(snap, "HEARTBEAT", ""),
			}
			if err := publisher.PublishSystem(hbEvent); err != nil {
				log.Printf("heartbeat publish error: %v", err)
			}

		case edge, ok := <-watcher.Edges():
			if !ok {
				log.Printf("edge source closed")
				return nil
			}
			metrics.EdgesHandled.Inc()
			if !signalPresent {
				signalPresent = true
				tracker.SetSignal(true)
				metrics.SignalPresent.Set(1)
			}
			if !silence.Stop() {
				select {
				case <-silence.C:
				default:
				}
			}
			silence.Reset(silenceTimeout)

			decoder.HandleEdge(edge.Dir, edge.Micros)
			if decoder.NewMinute() {
				// Sampled before DecodeTime: a minute marker that
				// arrives out of step means the minute was not fully
				// received and must not be published.
				atBoundary := decoder.Second()+1 == decoder.MinuteLength()
				decoder.DecodeTime(cfg.Strict)
				if atBoundary {
					publishMinute(decoder, publisher, mqttStatus, tracker, metrics, broadcast, cfg, now)
				}
			}
			if decoder.NewSecond() || decoder.NewMinute() {
				decoder.IncreaseSecond()
				tracker.UpdateProgress(decoder.Second(), decoder.FirstMinute())
				metrics.SecondsObserved.Inc()
				metrics.SecondOfMinute.Set(float64(decoder.Second()))
			}
		}
	}
}

func publishMinute(decoder *msf.Decoder, publisher mqtt.Publisher, mqttStatus mqtt.ConnectionStatus, tracker *status.Tracker, metrics *status.Metrics, broadcast func([]byte), cfg config.Config, now func() time.Time) {
	ts := now()
	dt := decoder.DateTime()
	dut1, dut1Known := decoder.DUT1()
	parities := [4]msf.Check{
		decoder.Parity1(), decoder.Parity2(), decoder.Parity3(), decoder.Parity4(),
	}
	minuteLength := decoder.MinuteLength()

	event := mqtt.TimeEvent{
		Timestamp:    ts,
		DateTime:     dt,
		Parities:     parities,
		DUT1:         dut1,
		DUT1Known:    dut1Known,
		MinuteLength: minuteLength,
		Strict:       cfg.Strict,
	}
	log.Printf("minute: %s", describeMinute(dt))
	if err := publisher.Publish(event); err != nil {
		log.Printf("publish error: %v", err)
	}

	valid := dt.IsValid()
	tracker.UpdateTime(status.TimeStatus{
		Decoded:      true,
		DecodedAt:    ts,
		DateTime:     dt,
		Parities:     parities,
		DUT1:         dut1,
		DUT1Known:    dut1Known,
		MinuteLength: minuteLength,
	}, valid)
	metrics.MinutesDecoded.Inc()
	if valid {
		metrics.MinutesValid.Inc()
	}
	for i, p := range parities {
		if p == msf.CheckBad {
			metrics.ParityFailures.WithLabelValues(strconv.Itoa(i + 1)).Inc()
		}
	}
	if dut1Known {
		metrics.DUT1.Set(float64(dut1) / 10)
	}
	if mqttStatus != nil {
		tracker.SetMQTTConnected(mqttStatus.IsConnected())
	}
	if broadcast != nil {
		broadcast(status.FormatJSON(tracker.Snapshot()))
	}
}

// describeMinute renders the decoded minute for the log, with "--" for
// fields that did not survive their parity check.
func describeMinute(dt radiotime.DateTime) string {
	field := func(value uint8, ok bool) string {
		if !ok {
			return "--"
		}
		return strconv.Itoa(int(value))
	}
	year, yearOK := dt.Year()
	month, monthOK := dt.Month()
	day, dayOK := dt.Day()
	hour, hourOK := dt.Hour()
	minute, minuteOK := dt.Minute()
	return fmt.Sprintf("20%s-%s-%s %s:%s",
		field(year, yearOK), field(month, monthOK), field(day, dayOK),
		field(hour, hourOK), field(minute, minuteOK))
}

// pi-helper env var names (written to /run/pi-helper.env).
const (
	envNetworkType       = "NETWORK_TYPE"
	envNetworkIP         = "NETWORK_IP"
	envNetworkStatus     = "NETWORK_STATUS"
	envNetworkGateway    = "NETWORK_GATEWAY"
	envNetworkWifiStatus = "NETWORK_WIFI_STATUS"
	envNetworkWifiSSID   = "NETWORK_WIFI_SSID"
)

func readNetworkInfo() *status.NetworkInfo {
	s := os.Getenv(envNetworkStatus)
	if s == "" {
		return nil
	}
	return &status.NetworkInfo{
		Type:       os.Getenv(envNetworkType),
		IP:         os.Getenv(envNetworkIP),
		Status:     s,
		Gateway:    os.Getenv(envNetworkGateway),
		WifiStatus: os.Getenv(envNetworkWifiStatus),
		SSID:       os.Getenv(envNetworkWifiSSID),
	}
}
