package status

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds the Prometheus collectors for the receiver.
type Metrics struct {
	EdgesHandled    prometheus.Counter // Total GPIO edges fed to the decoder
	SecondsObserved prometheus.Counter // Total broadcast seconds observed
	MinutesDecoded  prometheus.Counter // Total minute boundaries decoded
	MinutesValid    prometheus.Counter // Decoded minutes passing the validity gate
	SignalLosses    prometheus.Counter // Present-to-lost signal transitions

	ParityFailures *prometheus.CounterVec // Failed parity checks by group (1-4)

	SignalPresent  prometheus.Gauge // Current signal presence (1=present, 0=lost)
	MQTTConnected  prometheus.Gauge // Current MQTT connection status (1=connected)
	SecondOfMinute prometheus.Gauge // Current second-of-minute counter
	DUT1           prometheus.Gauge // Last decoded DUT1 in seconds
}

// NewMetrics creates and registers the receiver metrics with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		EdgesHandled: factory.NewCounter(prometheus.CounterOpts{
			Name: "msf_edges_total",
			Help: "Total GPIO edges fed to the decoder",
		}),
		SecondsObserved: factory.NewCounter(prometheus.CounterOpts{
			Name: "msf_seconds_total",
			Help: "Total broadcast seconds observed",
		}),
		MinutesDecoded: factory.NewCounter(prometheus.CounterOpts{
			Name: "msf_minutes_decoded_total",
			Help: "Total minute boundaries decoded",
		}),
		MinutesValid: factory.NewCounter(prometheus.CounterOpts{
			Name: "msf_minutes_valid_total",
			Help: "Decoded minutes that passed the validity gate",
		}),
		SignalLosses: factory.NewCounter(prometheus.CounterOpts{
			Name: "msf_signal_losses_total",
			Help: "Times the receiver signal went away",
		}),
		ParityFailures: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "msf_parity_failures_total",
			Help: "Failed parity checks by group",
		}, []string{"group"}),
		SignalPresent: factory.NewGauge(prometheus.GaugeOpts{
			Name: "msf_signal_present",
			Help: "Whether receiver edges are currently arriving (1=present)",
		}),
		MQTTConnected: factory.NewGauge(prometheus.GaugeOpts{
			Name: "msf_mqtt_connected",
			Help: "Whether the MQTT broker connection is up (1=connected)",
		}),
		SecondOfMinute: factory.NewGauge(prometheus.GaugeOpts{
			Name: "msf_second_of_minute",
			Help: "Current second-of-minute counter",
		}),
		DUT1: factory.NewGauge(prometheus.GaugeOpts{
			Name: "msf_dut1_seconds",
			Help: "Last decoded DUT1 offset in seconds",
		}),
	}
}
