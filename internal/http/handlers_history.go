package http

import (
	"bytes"
	"net/http"
	"time"

	"satang/internal/core"
	applog "satang/internal/log"
)

type historyItem struct {
	ID          string
	Description string
	Category    string
	Time        string // HH:MM
	AmountTHB   string // payer's own share
	AmountHKD   string // share converted at the current rate
	IsCard      bool
	IsSplit     bool
	SplitCount  int
}

type historyDay struct {
	Heading string // "2006.01.02 / Monday"
	Items   []historyItem
}

// handleHistory renders the day-grouped history partial. HKD values are
// recomputed from the current rate, not the per-record frozen one.
func (s *Server) handleHistory(w http.ResponseWriter, r *http.Request) {
	if resp := RequireMethod(r, http.MethodGet); resp != nil {
		resp.Write(w)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")

	rate := s.svc.Rate()
	groups := s.svc.History()

	data := struct {
		Days  []historyDay
		Empty bool
	}{Empty: len(groups) == 0}

	for _, g := range groups {
		day := historyDay{Heading: dayHeading(g.Day)}
		for _, e := range g.Expenses {
			day.Items = append(day.Items, historyItem{
				ID:          e.ID,
				Description: itemLabel(e),
				Category:    string(e.Category),
				Time:        e.Time().In(s.svc.Location()).Format("15:04"),
				AmountTHB:   core.FormatTHB(e.SplitTHB),
				AmountHKD:   core.FormatHKD(core.ToDisplayCurrency(e.SplitTHB, rate)),
				IsCard:      e.Payment == core.CreditCard,
				IsSplit:     e.IsSplit,
				SplitCount:  e.SplitCount,
			})
		}
		data.Days = append(data.Days, day)
	}

	if s.templates == nil {
		InternalServerError("History unavailable").Write(w)
		return
	}
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "history.html", data); err != nil {
		applog.FromContext(r.Context()).ErrorContext(r.Context(), "History template execution failed",
			applog.FieldError, err,
			applog.FieldOperation, applog.OpRender,
			"template", "history.html")
		InternalServerError("Could not render history").Write(w)
		return
	}
	_, _ = buf.WriteTo(w)
}

// itemLabel falls back to the category name when no description was entered.
func itemLabel(e core.Expense) string {
	if e.Description != "" {
		return e.Description
	}
	return string(e.Category)
}

func dayHeading(day string) string {
	t, err := time.Parse("2006-01-02", day)
	if err != nil {
		return day
	}
	return t.Format("2006.01.02 / Monday")
}
