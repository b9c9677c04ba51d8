package handlers

import (
	"fmt"
	"html/template"
	"net/http"
	"strings"

	"go.uber.org/zap"

	"kilowatt-backend/internal/configurator"
)

// formatEUR renders an amount the Italian way: "€ 1.234,50".
func formatEUR(v float64) string {
	s := fmt.Sprintf("%.2f", v)
	intPart, dec, _ := strings.Cut(s, ".")
	neg := strings.HasPrefix(intPart, "-")
	intPart = strings.TrimPrefix(intPart, "-")

	var b strings.Builder
	for i, c := range intPart {
		if i > 0 && (len(intPart)-i)%3 == 0 {
			b.WriteByte('.')
		}
		b.WriteRune(c)
	}
	out := "€ " + b.String() + "," + dec
	if neg {
		out = "-" + out
	}
	return out
}

var summaryPage = template.Must(template.New("summary").Funcs(template.FuncMap{
	"eur": formatEUR,
}).Parse(`<!DOCTYPE html>
<html lang="it">
<head>
	<meta charset="utf-8">
	<title>Riepilogo preventivo – Kilowatt</title>
	<meta name="viewport" content="width=device-width, initial-scale=1">
	<style>
		body {
			margin: 0;
			font-family: system-ui, -apple-system, BlinkMacSystemFont, "Segoe UI", sans-serif;
			background: #f3f4f6;
			color: #111827;
		}
		.wrapper { max-width: 720px; margin: 0 auto; padding: 32px 24px; }
		.card {
			background: #ffffff;
			border-radius: 16px;
			box-shadow: 0 20px 45px rgba(15, 23, 42, 0.18);
			padding: 24px;
		}
		h1 { font-size: 22px; margin: 0 0 16px 0; }
		h2 { font-size: 15px; margin: 20px 0 8px 0; color: #4b5563; }
		table { width: 100%; border-collapse: collapse; }
		td { padding: 6px 0; border-bottom: 1px solid #e5e7eb; }
		td.price { text-align: right; white-space: nowrap; }
		.empty { color: #6b7280; font-size: 13px; }
		.total { display: flex; justify-content: space-between; font-weight: 600; margin-top: 20px; font-size: 18px; }
		.message { margin-top: 16px; font-size: 13px; }
		.message.error { color: #b91c1c; }
		@media print { body { background: #fff; } .card { box-shadow: none; } }
	</style>
</head>
<body>
	<div class="wrapper">
		<div class="card">
			<h1>Riepilogo preventivo</h1>

			<h2>Noleggio attrezzatura</h2>
			{{if .Summary.Products}}
			<table>
				{{range .Summary.Products}}
				<tr><td>{{.Name}}</td><td class="price">{{eur .PriceDay}} / giorno</td></tr>
				{{end}}
			</table>
			{{else}}
			<p class="empty">Nessun prodotto selezionato.</p>
			{{end}}

			<h2>Servizi digitali</h2>
			{{if .Summary.Services}}
			<table>
				{{range .Summary.Services}}
				<tr><td>{{.Name}}</td><td class="price">{{eur .Price}}</td></tr>
				{{end}}
			</table>
			{{else}}
			<p class="empty">Nessun servizio selezionato.</p>
			{{end}}

			<div class="total"><span>Totale</span><span>{{eur .Summary.Total}}</span></div>

			{{with .Message}}
			<p class="message{{if .Error}} error{{end}}">{{.Text}}</p>
			{{end}}
		</div>
	</div>
</body>
</html>`))

type summaryPageData struct {
	Summary configurator.Summary
	Message *configurator.Message
}

// GET /quote/summary, printable version of the last wizard step
func (e *Env) HandleQuoteSummaryPage(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		http.Error(w, "method not allowed", http.StatusMethodNotAllowed)
		return
	}
	if !e.requireSessions(w) {
		return
	}

	wiz := e.Sessions.Wizard(w, r)
	data := summaryPageData{
		Summary: wiz.Summary(),
		Message: wiz.State().Message,
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := summaryPage.Execute(w, data); err != nil {
		e.logger().Error("render summary page", zap.Error(err))
	}
}
