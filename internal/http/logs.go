package http

import (
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"

	"github.com/MATTHEWPURBA/management-system/internal/model"
	"github.com/MATTHEWPURBA/management-system/internal/service"
)

type logEntryView struct {
	ID          string    `json:"id"`
	UserID      *string   `json:"user_id"`
	Action      string    `json:"action"`
	Description string    `json:"description"`
	LoggedAt    time.Time `json:"logged_at"`
}

func toLogEntryView(entry model.ActivityLogEntry) logEntryView {
	view := logEntryView{
		ID:          entry.ID.String(),
		Action:      entry.Action,
		Description: entry.Description,
		LoggedAt:    entry.LoggedAt,
	}
	if entry.UserID != nil {
		id := entry.UserID.String()
		view.UserID = &id
	}
	return view
}

func (s *Server) handleListLogs(w http.ResponseWriter, r *http.Request) {
	actor, _ := principalFrom(r.Context())

	filter, fields := parseLogFilter(r)
	if len(fields) > 0 {
		writeJSON(w, http.StatusUnprocessableEntity, envelope{
			Success: false,
			Message: "Validation failed",
			Errors:  fields,
		})
		return
	}

	page := 1
	if raw := r.URL.Query().Get("page"); raw != "" {
		if parsed, err := strconv.Atoi(raw); err == nil && parsed > 0 {
			page = parsed
		}
	}

	result, err := s.logs.List(r.Context(), actor, filter, page)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	entries := make([]logEntryView, len(result.Entries))
	for i, entry := range result.Entries {
		entries[i] = toLogEntryView(entry)
	}
	writeSuccess(w, http.StatusOK, "", map[string]any{
		"entries":   entries,
		"page":      result.Page,
		"per_page":  result.PerPage,
		"total":     result.Total,
		"last_page": result.LastPage,
	})
}

func parseLogFilter(r *http.Request) (service.LogFilter, map[string][]string) {
	fields := map[string][]string{}
	var filter service.LogFilter

	if raw := r.URL.Query().Get("from_date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			fields["from_date"] = append(fields["from_date"], "from_date must be a date in YYYY-MM-DD format")
		} else {
			filter.From = &parsed
		}
	}
	if raw := r.URL.Query().Get("to_date"); raw != "" {
		parsed, err := time.Parse("2006-01-02", raw)
		if err != nil {
			fields["to_date"] = append(fields["to_date"], "to_date must be a date in YYYY-MM-DD format")
		} else {
			// Inclusive upper bound: cover the whole named day.
			end := parsed.AddDate(0, 0, 1).Add(-time.Nanosecond)
			filter.To = &end
		}
	}
	filter.Action = r.URL.Query().Get("action")
	if raw := r.URL.Query().Get("user_id"); raw != "" {
		parsed, err := uuid.Parse(raw)
		if err != nil {
			fields["user_id"] = append(fields["user_id"], "user_id must be a valid user id")
		} else {
			filter.UserID = &parsed
		}
	}
	return filter, fields
}
