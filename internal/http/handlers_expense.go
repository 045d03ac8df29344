package http

import (
	"bytes"
	"encoding/base64"
	"errors"
	"html/template"
	"io"
	"net/http"

	"satang/internal/core"
	applog "satang/internal/log"
	"satang/internal/services"
)

const maxReceiptBytes = 8 << 20 // 8MB upload cap

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	logger := applog.FromContext(r.Context())
	if s.templates == nil {
		logger.ErrorContext(r.Context(), "Templates not loaded", applog.FieldPath, r.URL.Path)
		http.Error(w, "templates not loaded", http.StatusInternalServerError)
		return
	}

	data := struct {
		Categories  []core.Category
		Rate        float64
		ScanEnabled bool
	}{
		Categories:  core.Categories(),
		Rate:        s.svc.Rate(),
		ScanEnabled: s.svc.ScanEnabled(),
	}

	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, "index.html", data); err != nil {
		logger.ErrorContext(r.Context(), "Index template execution failed",
			applog.FieldError, err,
			applog.FieldOperation, applog.OpRender,
			"template", "index.html")
		http.Error(w, "could not render page", http.StatusInternalServerError)
		return
	}
	_, _ = buf.WriteTo(w)
}

func (s *Server) handleCreateExpense(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	in := services.LogInput{
		Amount:      r.Form.Get("amount"),
		Description: sanitizeInput(r.Form.Get("description")),
		Category:    sanitizeInput(r.Form.Get("category")),
		Payment:     sanitizeInput(r.Form.Get("payment")),
		IsSplit:     parseBool(r.Form.Get("split")),
		SplitCount:  parseIntDefault(r.Form.Get("split_count"), 2),
	}

	e, err := s.svc.Log(r.Context(), in)
	if err != nil {
		// Nothing is created; the partial just reports the bad field.
		msg := "Invalid amount"
		if errors.Is(err, core.ErrInvalidSplitCount) {
			msg = "Invalid split count"
		}
		UnprocessableEntityError(msg).Write(w)
		return
	}

	applog.FromContext(r.Context()).InfoContext(r.Context(), "Expense logged",
		applog.FieldOperation, applog.OpCreate,
		applog.FieldExpenseID, e.ID,
		applog.FieldAmountTHB, e.AmountTHB,
		applog.FieldAmountHKD, e.AmountHKD,
		applog.FieldCategory, string(e.Category),
		applog.FieldSplitCount, e.SplitCount)

	NewHTMXResponse().
		TriggerExpenseCreated(e.ID).
		TriggerFormReset().
		TriggerSuccessNotification("Expense logged").
		BodyHTML(`<div class="success">Logged ` + template.HTMLEscapeString(core.FormatTHB(e.SplitTHB)) +
			` (` + template.HTMLEscapeString(string(e.Category)) + `)</div>`).
		Write(w)
}

func (s *Server) handleDeleteExpense(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}
	if resp := ParseFormOrFail(r); resp != nil {
		resp.Write(w)
		return
	}

	logger := applog.FromContext(r.Context())
	id := sanitizeInput(r.Form.Get("id"))
	if id == "" {
		BadRequestError("Missing expense id").Write(w)
		return
	}

	// Deleting an unknown id is a no-op, not an error.
	if !s.svc.Delete(r.Context(), id) {
		logger.WarnContext(r.Context(), "Delete of unknown expense ignored",
			applog.FieldOperation, applog.OpDelete,
			applog.FieldExpenseID, id)
		NewHTMXResponse().BodyHTML(``).Write(w)
		return
	}

	logger.InfoContext(r.Context(), "Expense deleted",
		applog.FieldOperation, applog.OpDelete,
		applog.FieldExpenseID, id)
	NewHTMXResponse().
		TriggerExpenseDeleted(id).
		TriggerSuccessNotification("Record removed").
		BodyHTML(``).
		Write(w)
}

func (s *Server) handleScanReceipt(w http.ResponseWriter, r *http.Request) {
	if resp := RequirePOST(r); resp != nil {
		resp.Write(w)
		return
	}

	if err := r.ParseMultipartForm(maxReceiptBytes); err != nil {
		BadRequestError("Invalid upload").Write(w)
		return
	}
	file, header, err := r.FormFile("receipt")
	if err != nil {
		BadRequestError("Missing receipt image").Write(w)
		return
	}
	defer file.Close()

	raw, err := io.ReadAll(io.LimitReader(file, maxReceiptBytes))
	if err != nil {
		BadRequestError("Unreadable receipt image").Write(w)
		return
	}

	logger := applog.FromContext(r.Context())
	result, err := s.svc.ScanReceipt(r.Context(), base64.StdEncoding.EncodeToString(raw), header.Header.Get("Content-Type"))
	if err != nil {
		// Collaborator failure, as opposed to a readable-but-useless image.
		logger.WarnContext(r.Context(), "Receipt scan failed",
			applog.FieldOperation, applog.OpScan,
			applog.FieldError, err)
		NewHTMXResponse().
			TriggerErrorNotification("Receipt scan failed").
			BodyHTML(``).
			Write(w)
		return
	}
	if result == nil {
		// Could not extract, or feature unavailable: leave the form untouched.
		NewHTMXResponse().
			TriggerNotification(NotificationWarning, "Could not read receipt", 4000).
			BodyHTML(``).
			Write(w)
		return
	}

	logger.InfoContext(r.Context(), "Receipt scanned",
		applog.FieldOperation, applog.OpScan,
		applog.FieldAmountTHB, result.AmountTHB,
		applog.FieldCategory, string(result.Category))

	NewHTMXResponse().
		Trigger("scan:result", map[string]interface{}{
			"amount":      result.AmountTHB,
			"category":    string(result.Category),
			"description": result.Description,
		}).
		BodyHTML(``).
		Write(w)
}
