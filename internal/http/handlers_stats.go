package http

import (
	"bytes"
	"html/template"
	"net/http"
	"strconv"

	"satang/internal/core"
	applog "satang/internal/log"
)

type statsRow struct {
	Category string
	Color    string
	Amount   string
	Width    int // percent of the largest category, for the bar legend
}

// handleStats renders the stats partial: totals, the category donut, and the
// rate override control. Everything is recomputed from the current snapshot
// on every request.
func (s *Server) handleStats(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	sum := s.svc.Summarize()

	var maxTotal float64
	for _, c := range sum.ByCategory {
		if c.Total > maxTotal {
			maxTotal = c.Total
		}
	}

	data := struct {
		TotalTHB string
		TotalHKD string
		Rate     string
		Pie      template.HTML
		Rows     []statsRow
		Empty    bool
	}{
		TotalTHB: core.FormatTHB(sum.TotalTHB),
		TotalHKD: core.FormatHKD(sum.TotalHKD),
		Rate:     strconv.FormatFloat(sum.Rate, 'f', -1, 64),
		Pie:      renderPie(sum.ByCategory),
		Empty:    len(sum.ByCategory) == 0,
	}
	for _, c := range sum.ByCategory {
		width := 0
		if maxTotal > 0 {
			width = int(c.Total/maxTotal*100 + 0.5)
			if width > 0 && width < 2 { // keep tiny slices visible
				width = 2
			}
			if width > 100 {
				width = 100
			}
		}
		data.Rows = append(data.Rows, statsRow{
			Category: string(c.Category),
			Color:    categoryColor(c.Category),
			Amount:   core.FormatTHB(c.Total),
			Width:    width,
		})
	}

	if s.templates == nil {
		InternalServerError("Stats unavailable").Write(w)
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "stats.html", data); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "Stats template execution failed",
			applog.FieldError, err,
			applog.FieldOperation, applog.OpRender,
			"template", "stats.html")
		InternalServerError("Could not render stats").Write(w)
		return
	}
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleSetRate(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	v, err := strconv.ParseFloat(sanitizeInput(r.Form.Get("rate")), 64)
	if err != nil {
		UnprocessableEntityError("Invalid rate").Write(w)
		return
	}
	if err := s.svc.SetRate(r.Context(), v); err != nil {
		UnprocessableEntityError("Rate must be a positive number").Write(w)
		return
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Exchange rate overridden", applog.FieldRate, v)
	NewHTMXResponse().
		TriggerRateChanged(v).
		TriggerSuccessNotification("Rate updated").
		BodyHTML(`<div class="success">Rate set to ` + template.HTMLEscapeString(strconv.FormatFloat(v, 'f', -1, 64)) + `</div>`).
		Write(w)
}

func (s *Server) handleRefreshRate(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}

	// Failure is a reported outcome: the previous value stays in effect.
	if !s.svc.RefreshRate(r.Context()) {
		NewHTMXResponse().
			TriggerNotification(NotificationWarning, "Live rate unavailable, keeping current value", 4000).
			BodyHTML(`<div class="warning">Live rate unavailable</div>`).
			Write(w)
		return
	}

	v := s.svc.Rate()
	NewHTMXResponse().
		TriggerRateChanged(v).
		TriggerSuccessNotification("Live rate fetched").
		BodyHTML(`<div class="success">Rate updated to ` + template.HTMLEscapeString(strconv.FormatFloat(v, 'f', -1, 64)) + `</div>`).
		Write(w)
}
