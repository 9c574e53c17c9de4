package http

import (
	"net/http"
	"strconv"

	audit "surety/pkg/platform/audit"
	"surety/pkg/platform/httputil"
)

const defaultAuditLimit = 100

// handleAuditEvents serves the in-process audit trail for operators:
// GET /audit/events?subject=<id>&limit=<n>. With a subject it returns that
// entity's full trail in append order; without one, the most recent events.
func handleAuditEvents(store audit.Store) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if store == nil {
			httputil.WriteJSON(w, http.StatusOK, []audit.Event{})
			return
		}

		var (
			events []audit.Event
			err    error
		)
		if subject := r.URL.Query().Get("subject"); subject != "" {
			events, err = store.ListBySubject(r.Context(), subject)
		} else {
			limit := defaultAuditLimit
			if raw := r.URL.Query().Get("limit"); raw != "" {
				if n, parseErr := strconv.Atoi(raw); parseErr == nil && n > 0 {
					limit = n
				}
			}
			events, err = store.ListRecent(r.Context(), limit)
		}
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		if events == nil {
			events = []audit.Event{}
		}
		httputil.WriteJSON(w, http.StatusOK, events)
	}
}
