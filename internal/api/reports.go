package api

import (
	"html/template"
	"log/slog"
	"net/http"
	"regexp"
	"sort"
	"strings"

	"github.com/erazemk/bodega/internal/index"
	"github.com/erazemk/bodega/internal/media"
	"github.com/erazemk/bodega/internal/model"
	"github.com/erazemk/bodega/internal/saleslog"
)

// ReportsHandler renders the daily HTML report and the dashboard page.
type ReportsHandler struct {
	Index     *index.Index
	Sales     *saleslog.Log
	SaleGroup string
}

var dateRE = regexp.MustCompile(`^\d{4}-\d{2}-\d{2}$`)

type reportPhoto struct {
	ID        string
	Record    model.Record
	Sizes     string
	Partial   bool
	PhotoPath string
}

type reportData struct {
	Date      string
	Confirmed []reportPhoto
	Pending   int
	Returned  int
	Summary   *saleslog.Summary
}

// Daily handles GET /reportes/{fecha}.
func (h *ReportsHandler) Daily(w http.ResponseWriter, r *http.Request) {
	date := r.PathValue("fecha")
	if !dateRE.MatchString(date) {
		http.Error(w, "invalid date", http.StatusBadRequest)
		return
	}

	records, err := h.Index.ListByStatus("")
	if err != nil {
		slog.Error("listing records for report", "error", err)
		http.Error(w, "failed to build report", http.StatusInternalServerError)
		return
	}

	data := reportData{Date: date}
	for _, rec := range records {
		if rec.Date != date {
			continue
		}
		switch rec.Status {
		case model.StatusPending:
			data.Pending++
			continue
		case model.StatusReturned:
			data.Returned++
		}
		data.Confirmed = append(data.Confirmed, reportPhoto{
			ID:        index.Key(rec.ChatID, rec.MessageID),
			Record:    rec,
			Sizes:     strings.Join(rec.Attributes.Sizes, ", "),
			Partial:   rec.Status == model.StatusReturned && len(rec.ReturnedItems) > 0,
			PhotoPath: "/fotos/" + media.SafeName(rec.Group) + "/" + rec.Date + "/" + rec.File,
		})
	}
	sort.Slice(data.Confirmed, func(i, j int) bool {
		return data.Confirmed[i].Record.SubmittedAt.Before(data.Confirmed[j].Record.SubmittedAt)
	})

	if summary, err := h.Sales.ComputeTotal(h.SaleGroup, date); err == nil {
		data.Summary = summary
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	if err := reportTemplate.Execute(w, data); err != nil {
		slog.Error("rendering report", "error", err)
	}
}

// Dashboard handles GET /, redirecting to today's report.
func (h *ReportsHandler) Dashboard(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	http.Redirect(w, r, "/reportes/"+saleslog.Today(), http.StatusSeeOther)
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html lang="es">
<head>
<meta charset="UTF-8">
<meta name="viewport" content="width=device-width, initial-scale=1.0">
<title>Reporte Bodega - {{.Date}}</title>
<style>
body { font-family: sans-serif; margin: 2rem; background: #f5f5f5; }
h1 { margin-bottom: 0.5rem; }
.stats { display: flex; gap: 1rem; margin-bottom: 1.5rem; }
.stat { background: #fff; border-radius: 8px; padding: 1rem; box-shadow: 0 1px 3px rgba(0,0,0,0.15); }
.stat strong { display: block; font-size: 1.5rem; }
table { width: 100%; border-collapse: collapse; background: #fff; }
th, td { padding: 0.5rem 0.75rem; border-bottom: 1px solid #ddd; text-align: left; }
tr.devuelta { background: #fde8e8; }
img { max-height: 80px; border-radius: 4px; }
.badge { padding: 0.15rem 0.5rem; border-radius: 4px; font-size: 0.8rem; }
.badge.confirmado { background: #d4edda; }
.badge.devuelto { background: #f8d7da; }
</style>
</head>
<body>
<h1>Reporte Bodega - {{.Date}}</h1>
<div class="stats">
<div class="stat"><strong>{{len .Confirmed}}</strong> confirmadas</div>
<div class="stat"><strong>{{.Pending}}</strong> pendientes</div>
<div class="stat"><strong>{{.Returned}}</strong> devueltas</div>
{{if .Summary}}<div class="stat"><strong>${{.Summary.Total}}</strong> en {{.Summary.Count}} ventas</div>{{end}}
</div>
<table>
<tr><th>Foto</th><th>Archivo</th><th>Usuario</th><th>Tallas</th><th>Color</th><th>Estado</th><th>Confirmada por</th></tr>
{{range .Confirmed}}
<tr{{if eq .Record.Status "devuelto"}} class="devuelta"{{end}}>
<td><img src="{{.PhotoPath}}" alt="{{.Record.File}}"></td>
<td>{{.Record.File}}</td>
<td>{{.Record.SubmittedBy}}</td>
<td>{{.Sizes}}</td>
<td>{{.Record.Attributes.Color}}</td>
<td><span class="badge {{.Record.Status}}">{{.Record.Status}}{{if .Partial}} (parcial){{end}}</span></td>
<td>{{.Record.ConfirmedBy}}</td>
</tr>
{{end}}
</table>
</body>
</html>
`))
