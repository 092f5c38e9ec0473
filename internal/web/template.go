package web

import (
	"fmt"
	"html/template"
	"io"
	"time"

	"github.com/sweeney/segclock/internal/history"
	"github.com/sweeney/segclock/internal/status"
)

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
<title>Segment Clock</title>
<style>
body { font-family: monospace; max-width: 600px; margin: 2em auto; padding: 0 1em; }
h1 { font-size: 1.4em; }
table { border-collapse: collapse; width: 100%; margin: 1em 0; }
td, th { text-align: left; padding: 4px 8px; border-bottom: 1px solid #ddd; }
th { width: 40%; }
.face { font-size: 3em; letter-spacing: 0.1em; margin: 0.3em 0; }
.running { color: green; font-weight: bold; }
.unset { color: orange; font-weight: bold; }
.stabilizing { color: #888; }
.armed { color: green; }
.disarmed { color: #888; }
.sounding { color: red; font-weight: bold; }
.connected { color: green; }
.disconnected { color: red; }
</style>
</head>
<body>
<h1>Segment Clock</h1>

<div class="face">{{.Time}}:{{printf "%02d" .Seconds}}</div>

<h2>State</h2>
<table>
<tr><th>Mode</th><td class="{{if eq .Mode "RUNNING"}}running{{else if eq .Mode "UNSET"}}unset{{else}}stabilizing{{end}}">{{.Mode}}</td></tr>
<tr><th>Alarm</th><td>{{.Alarm}}</td></tr>
<tr><th>Armed</th><td class="{{if .Armed}}armed{{else}}disarmed{{end}}">{{if .Armed}}yes{{else}}no{{end}}</td></tr>
<tr><th>Tone</th><td class="{{if .Sounding}}sounding{{end}}">{{if .Sounding}}sounding{{else}}silent{{end}}</td></tr>
</table>

<h2>Connectivity</h2>
<table>
<tr><th>MQTT</th><td class="{{if .MQTTConnected}}connected{{else}}disconnected{{end}}">{{if .MQTTConnected}}connected{{else}}disconnected{{end}}</td></tr>
<tr><th>Broker</th><td>{{.Config.Broker}}</td></tr>
</table>

<h2>Event Counts</h2>
<table>
<tr><th>Time set</th><td>{{.Counts.TimeSet}}</td></tr>
<tr><th>Alarm armed</th><td>{{.Counts.Armed}}</td></tr>
<tr><th>Alarm disarmed</th><td>{{.Counts.Disarmed}}</td></tr>
<tr><th>Alarm fired</th><td>{{.Counts.Fired}}</td></tr>
<tr><th>Alarm cleared</th><td>{{.Counts.Cleared}}</td></tr>
</table>

{{if .Events}}<h2>Recent Events</h2>
<table>
<tr><th>When</th><td>Event</td><td>Clock</td><td>Alarm</td></tr>
{{range .Events}}<tr><th>{{.Timestamp.UTC.Format "01-02 15:04:05"}}</th><td>{{.Type}}</td><td>{{.Time}}</td><td>{{.Alarm}}{{if .Armed}} *{{end}}</td></tr>
{{end}}</table>
{{end}}

<h2>System</h2>
<table>
<tr><th>Uptime</th><td>{{uptime .Uptime}}</td></tr>
<tr><th>Started</th><td>{{.StartTime.UTC.Format "2006-01-02T15:04:05Z"}}</td></tr>
<tr><th>Tick</th><td>{{.Config.TickMs}}ms</td></tr>
<tr><th>Second</th><td>{{.Config.SecondMs}}ms</td></tr>
<tr><th>Heartbeat</th><td>{{if eq .Config.HeartbeatMs 0}}disabled{{else}}{{.Config.HeartbeatMs}}ms{{end}}</td></tr>
<tr><th>HTTP</th><td>{{.Config.HTTPAddr}}</td></tr>
{{if .Config.HistoryPath}}<tr><th>History</th><td>{{.Config.HistoryPath}}</td></tr>{{end}}
</table>

<p><a href="/index.json">JSON</a>{{if .Events}} &middot; <a href="/events.json">events</a>{{end}}</p>
</body>
</html>
`

func renderHTML(w io.Writer, snap status.Snapshot, events []history.Entry) {
	// Snapshot has Uptime() method but template needs a Duration field,
	// and Sounding is derived from the tone level.
	data := struct {
		status.Snapshot
		Uptime   time.Duration
		Sounding bool
		Events   []history.Entry
	}{
		Snapshot: snap,
		Uptime:   snap.Uptime(),
		Sounding: snap.ToneLevel > 0,
		Events:   events,
	}
	indexTmpl.Execute(w, data)
}
