package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/msf-receiver/internal/radiotime"
	"github.com/sweeney/msf-receiver/internal/status"
)

var weekdayNames = [7]string{
	"Sunday", "Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday",
}

// indexView is the template model, with all radio fields pre-rendered so
// the template stays free of multi-value method calls.
type indexView struct {
	Signal       bool
	Synchronized bool
	Second       uint8

	Decoded      bool
	DecodedAt    string
	Time         string
	Date         string
	Weekday      string
	DUT1         string
	Season       string
	Parities     [4]string
	MinuteLength uint8

	MQTTConnected bool
	Broker        string
	Network       *status.NetworkInfo

	Uptime    time.Duration
	StartTime time.Time
	Counts    status.Counts
	Config    status.Config
}

func buildView(snap status.Snapshot) indexView {
	v := indexView{
		Signal:        snap.SignalPresent,
		Synchronized:  !snap.FirstMinute,
		Second:        snap.Second,
		Decoded:       snap.Time.Decoded,
		MQTTConnected: snap.MQTTConnected,
		Broker:        snap.Config.Broker,
		Network:       snap.Network,
		Uptime:        snap.Uptime(),
		StartTime:     snap.StartTime,
		Counts:        snap.Counts,
		Config:        snap.Config,
	}
	if !snap.Time.Decoded {
		return v
	}

	dt := snap.Time.DateTime
	v.DecodedAt = snap.Time.DecodedAt.UTC().Format(time.RFC3339)
	v.Time = hhmm(dt)
	v.Date = yyyymmdd(dt)
	if wd, ok := dt.Weekday(); ok && int(wd) < len(weekdayNames) {
		v.Weekday = weekdayNames[wd]
	} else {
		v.Weekday = "unknown"
	}
	if snap.Time.DUT1Known {
		v.DUT1 = fmt.Sprintf("%+.1f s", float64(snap.Time.DUT1)/10)
	} else {
		v.DUT1 = "unknown"
	}
	if dst, ok := dt.DST(); ok {
		if dst&radiotime.DSTSummer != 0 {
			v.Season = "summer time"
		} else {
			v.Season = "winter time"
		}
	} else {
		v.Season = "unknown"
	}
	for i, p := range snap.Time.Parities {
		v.Parities[i] = p.String()
	}
	v.MinuteLength = snap.Time.MinuteLength
	return v
}

func hhmm(dt radiotime.DateTime) string {
	hour, hourOK := dt.Hour()
	minute, minuteOK := dt.Minute()
	if !hourOK || !minuteOK {
		return "--:--"
	}
	return fmt.Sprintf("%02d:%02d", hour, minute)
}

func yyyymmdd(dt radiotime.DateTime) string {
	year, yearOK := dt.Year()
	month, monthOK := dt.Month()
	day, dayOK := dt.Day()
	if !yearOK || !monthOK || !dayOK {
		return "unknown"
	}
	return fmt.Sprintf("20%02d-%02d-%02d", year, month, day)
}

var indexTmpl = template.Must(template.New("index").Funcs(template.FuncMap{
	"uptime": func(d time.Duration) string {
		d = d.Truncate(time.Second)
		days := int(d.Hours()) / 24
		h := int(d.Hours()) % 24
		m := int(d.Minutes()) % 60
		s := int(d.Seconds()) % 60
		if days > 0 {
			return fmt.Sprintf("%dd %dh %dm %ds", days, h, m, s)
		}
		if h > 0 {
			return fmt.Sprintf("%dh %dm %ds", h, m, s)
		}
		if m > 0 {
			return fmt.Sprintf("%dm %ds", m, s)
		}
		return fmt.Sprintf("%ds", s)
	},
}).Parse(indexHTML))

const indexHTML = `<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>MSF Receiver</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.clock { font-size: 2em; font-weight: bold; }
.ok { color: green; }
.bad { color: red; }
.unknown { color: orange; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>MSF Receiver</h1>

<h2>Time</h2>
{{if .Decoded}}
<p class="clock" id="clock">{{.Time}}</p>
<table>
<tr><th>Date</th><td id="date">{{.Date}}</td></tr>
<tr><th>Weekday</th><td id="weekday">{{.Weekday}}</td></tr>
<tr><th>Season</th><td id="season">{{.Season}}</td></tr>
<tr><th>DUT1</th><td id="dut1">{{.DUT1}}</td></tr>
<tr><th>Parities</th><td id="parities">{{range .Parities}}{{.}} {{end}}</td></tr>
<tr><th>Minute length</th><td>{{.MinuteLength}}s</td></tr>
<tr><th>Decoded at</th><td id="decoded-at">{{.DecodedAt}}</td></tr>
</table>
{{else}}
<p class="unknown">No minute decoded yet.</p>
{{end}}

<h2>Reception</h2>
<table>
<tr><th>Signal</th><td id="signal" class="{{if .Signal}}ok{{else}}bad{{end}}">{{if .Signal}}present{{else}}lost{{end}}</td></tr>
<tr><th>Synchronized</th><td id="sync" class="{{if .Synchronized}}ok{{else}}unknown{{end}}">{{if .Synchronized}}yes{{else}}no{{end}}</td></tr>
<tr><th>Second of minute</th><td id="second">{{.Second}}</td></tr>
<tr><th>Seconds observed</th><td>{{.Counts.SecondsObserved}}</td></tr>
<tr><th>Minutes decoded</th><td>{{.Counts.MinutesDecoded}}</td></tr>
<tr><th>Minutes valid</th><td>{{.Counts.MinutesValid}}</td></tr>
<tr><th>Signal losses</th><td>{{.Counts.SignalLosses}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Broker}}</td></tr>
{{if .Network}}<tr><th>Network</th><td>{{.Network.Status}} ({{.Network.Type}}{{if .Network.SSID}}, {{.Network.SSID}}{{end}})</td></tr>
<tr><th>IP</th><td>{{.Network.IP}}</td></tr>{{end}}
</table>

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>GPIO</th><td>{{.Config.GPIOChip}} pin {{.Config.GPIOPin}}</td></tr>
<tr><th>Spike limit</th><td>{{.Config.SpikeLimitMicros}}us</td></tr>
<tr><th>Strict</th><td>{{if .Config.Strict}}yes{{else}}no{{end}}</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMinutes 0}}disabled{{else}}{{.Config.HeartbeatMinutes}}m{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPPort}}</td></tr>
</table>

<p><a href="/index.json">JSON</a> &middot; <a href="/metrics">Metrics</a></p>

<script>
(function () {
  var proto = location.protocol === "https:" ? "wss://" : "ws://";
  var ws;

  function setText(id, value) {
    var el = document.getElementById(id);
    if (el && value !== null && value !== undefined) { el.textContent = value; }
  }

  function apply(status) {
    setText("signal", status.signal ? "present" : "lost");
    setText("sync", status.synchronized ? "yes" : "no");
    setText("second", status.second);
    if (status.time) {
      if (status.time.hour !== null && status.time.minute !== null) {
        setText("clock", String(status.time.hour).padStart(2, "0") + ":" +
          String(status.time.minute).padStart(2, "0"));
      }
      setText("decoded-at", status.time.decoded_at);
      setText("parities", status.time.parities.join(" "));
    }
  }

  function connect() {
    ws = new WebSocket(proto + location.host + "/ws");
    ws.onmessage = function (ev) {
      try { apply(JSON.parse(ev.data).status); } catch (e) {}
    };
    ws.onclose = function () { setTimeout(connect, 5000); };
  }
  connect();
})();
</script>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot) {
	indexTmpl.Execute(w, buildView(snap))
}
