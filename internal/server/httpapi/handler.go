// Package httpapi is the HTTP adapter over the tool services: JSON in and
// out, one route set per tool, no business logic of its own.
package httpapi

import (
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/dmitrijs2005/sharebin/internal/common"
	"github.com/dmitrijs2005/sharebin/internal/logging"
	"github.com/dmitrijs2005/sharebin/internal/server/services"
	"github.com/dmitrijs2005/sharebin/internal/timex"
)

// tokenHeader carries capability tokens. Tokens never travel in URLs so they
// cannot end up in request logs.
const tokenHeader = "X-Share-Token"

// Handler is the HTTP adapter serving the REST API for all six tools.
type Handler struct {
	notes    *services.NoteService
	secrets  *services.SecretService
	polls    *services.PollService
	expenses *services.ExpenseService
	shares   *services.FileShareService
	lists    *services.BringListService

	defaultTTL time.Duration
	maxTTL     time.Duration
	logger     logging.Logger
}

// NewHandler creates a Handler with all required dependencies. defaultTTL is
// applied where a lifetime is mandatory but the request names none; maxTTL
// caps every requested lifetime.
func NewHandler(
	notes *services.NoteService,
	secrets *services.SecretService,
	polls *services.PollService,
	expenses *services.ExpenseService,
	shares *services.FileShareService,
	lists *services.BringListService,
	defaultTTL, maxTTL time.Duration,
	logger logging.Logger,
) *Handler {
	return &Handler{
		notes:      notes,
		secrets:    secrets,
		polls:      polls,
		expenses:   expenses,
		shares:     shares,
		lists:      lists,
		defaultTTL: defaultTTL,
		maxTTL:     maxTTL,
		logger:     logger,
	}
}

// NewServeMux creates an http.Handler with all routes registered and wrapped
// with logging and recovery middleware.
func NewServeMux(h *Handler, logger logging.Logger) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /api/notes", h.CreateNote)
	mux.HandleFunc("GET /api/notes/{id}", h.GetNote)
	mux.HandleFunc("PUT /api/notes/{id}", h.UpdateNote)
	mux.HandleFunc("DELETE /api/notes/{id}", h.DeleteNote)

	mux.HandleFunc("POST /api/secrets", h.CreateSecret)
	mux.HandleFunc("POST /api/secrets/{id}/reveal", h.RevealSecret)

	mux.HandleFunc("POST /api/polls", h.CreatePoll)
	mux.HandleFunc("GET /api/polls/{id}", h.GetPoll)
	mux.HandleFunc("POST /api/polls/{id}/responses", h.RespondPoll)

	mux.HandleFunc("POST /api/expenses", h.CreateExpense)
	mux.HandleFunc("GET /api/expenses/{id}", h.GetExpense)
	mux.HandleFunc("POST /api/expenses/{id}/entries", h.AddExpenseEntry)
	mux.HandleFunc("DELETE /api/expenses/{id}/entries/{index}", h.RemoveExpenseEntry)

	mux.HandleFunc("POST /api/shares", h.CreateFileShare)
	mux.HandleFunc("GET /api/shares/{id}", h.GetFileShare)
	mux.HandleFunc("DELETE /api/shares/{id}", h.RemoveFileShare)

	mux.HandleFunc("POST /api/bringlists", h.CreateBringList)
	mux.HandleFunc("GET /api/bringlists/{id}", h.GetBringList)
	mux.HandleFunc("POST /api/bringlists/{id}/needs/{line}/claims", h.ClaimNeed)
	mux.HandleFunc("DELETE /api/bringlists/{id}/needs/{line}/claims", h.UnclaimNeed)
	mux.HandleFunc("POST /api/bringlists/{id}/items", h.AddCustomItem)
	mux.HandleFunc("DELETE /api/bringlists/{id}/items", h.RemoveCustomItem)

	mux.HandleFunc("GET /api/health", h.Health)

	// Recovery innermost so panics are caught before logging.
	wrapped := recoveryMiddleware(logger, mux)
	wrapped = loggingMiddleware(logger, wrapped)

	return wrapped
}

// Health reports liveness.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// serviceError translates a service error into an HTTP response. Taxonomy
// errors carry messages safe to echo; anything else is logged and hidden
// behind a generic 500.
func (h *Handler) serviceError(w http.ResponseWriter, r *http.Request, err error) {
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		h.logger.Error(r.Context(), "request failed", "path", r.URL.Path, "error", err)
		writeError(w, status, "internal server error")
		return
	}
	writeError(w, status, err.Error())
}

// decodeJSON decodes the request body into dst, rejecting unknown fields.
func decodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()
	if err := dec.Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid request payload", common.ErrInvalidInput)
	}
	return nil
}

// ttlOf converts an optional request TTL to the service representation,
// capping it at the configured maximum. nil stays nil: the object never
// expires.
func (h *Handler) ttlOf(d *timex.Duration) (*time.Duration, error) {
	if d == nil {
		return nil, nil
	}
	v := d.Duration
	if v <= 0 {
		return nil, fmt.Errorf("%w: ttl must be positive", common.ErrInvalidInput)
	}
	if h.maxTTL > 0 && v > h.maxTTL {
		v = h.maxTTL
	}
	return &v, nil
}
