package reporting

import (
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"

	dErrors "regula/pkg/domain-errors"
	"regula/pkg/platform/httputil"
	"regula/pkg/requestcontext"
)

// defaultRenewalWindowDays matches the supervision dashboard's standard
// renewal lookahead.
const defaultRenewalWindowDays = 90

// Handler exposes the reporting projections.
type Handler struct {
	service     *Service
	defaultDays int
}

// HandlerOption configures a Handler.
type HandlerOption func(*Handler)

// WithDefaultWindow overrides the renewals-due lookahead used when the
// request does not carry a days parameter.
func WithDefaultWindow(days int) HandlerOption {
	return func(h *Handler) {
		if days > 0 {
			h.defaultDays = days
		}
	}
}

// NewHandler constructs a reporting handler.
func NewHandler(service *Service, opts ...HandlerOption) *Handler {
	h := &Handler{service: service, defaultDays: defaultRenewalWindowDays}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Register mounts reporting endpoints on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/reports/dashboard", h.HandleDashboard)
	r.Get("/reports/renewals-due", h.HandleRenewalsDue)
}

func (h *Handler) HandleDashboard(w http.ResponseWriter, r *http.Request) {
	dashboard, err := h.service.Dashboard(r.Context(), requestcontext.Now(r.Context()))
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, dashboard)
}

func (h *Handler) HandleRenewalsDue(w http.ResponseWriter, r *http.Request) {
	daysOut := h.defaultDays
	if raw := r.URL.Query().Get("days"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed <= 0 {
			httputil.WriteError(w, dErrors.Newf(dErrors.CodeBadRequest, "invalid days value %q", raw))
			return
		}
		daysOut = parsed
	}

	asOf := requestcontext.Now(r.Context())
	if raw := r.URL.Query().Get("as_of"); raw != "" {
		parsed, err := time.Parse(time.DateOnly, raw)
		if err != nil {
			httputil.WriteError(w, dErrors.Newf(dErrors.CodeBadRequest, "invalid as_of date %q", raw))
			return
		}
		asOf = parsed
	}

	alerts, err := h.service.RenewalsDue(r.Context(), daysOut, asOf)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, map[string][]RenewalAlert{"renewals_due": alerts})
}
