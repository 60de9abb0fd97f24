package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"ContentActivation/internal/audit"
	"ContentActivation/internal/domain"
)

// Activator runs one activation attempt.
type Activator interface {
	Activate(ctx context.Context, req domain.ActivationRequest) (domain.ActivationAttempt, error)
}

// PlatformInfo describes the configured destination for GET /api/platforms.
type PlatformInfo struct {
	Active    string   `json:"active"`
	Available []string `json:"available"`
	Lists     []string `json:"lists,omitempty"`
}

// Deps are the collaborators of the HTTP surface. History and Metrics are optional.
type Deps struct {
	Activator Activator
	History   audit.Reader
	Platforms PlatformInfo
	Metrics   http.Handler
	Logger    *slog.Logger
}

type handler struct {
	activator Activator
	history   audit.Reader
	platforms PlatformInfo
	logger    *slog.Logger
}

// NewRouter builds the chi router with every endpoint mounted.
func NewRouter(deps Deps) http.Handler {
	logger := deps.Logger
	if logger == nil {
		logger = slog.Default()
	}
	h := &handler{
		activator: deps.Activator,
		history:   deps.History,
		platforms: deps.Platforms,
		logger:    logger.With("component", "http"),
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)

	r.Get("/health", func(w http.ResponseWriter, _ *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	if deps.Metrics != nil {
		r.Handle("/metrics", deps.Metrics)
	}

	r.Route("/api", func(r chi.Router) {
		r.Post("/activations", h.handleActivate)
		r.Get("/activations/latest/{entryID}", h.handleLatest)
		r.Get("/platforms", h.handlePlatforms)
	})
	return r
}

type activationBody struct {
	EntryID           string `json:"entry_id"`
	ListID            string `json:"list_id"`
	EnrichmentEnabled *bool  `json:"enrichment_enabled"`
}

// ActivationResponse is the body returned by POST /api/activations.
type ActivationResponse struct {
	ActivationID string                   `json:"activation_id"`
	Success      bool                     `json:"success"`
	State        domain.State             `json:"state"`
	Stage        string                   `json:"stage,omitempty"`
	Message      string                   `json:"message,omitempty"`
	CampaignID   string                   `json:"campaign_id,omitempty"`
	Errors       []domain.ErrorEntry      `json:"errors"`
	Validation   domain.ValidationSummary `json:"validation_results"`
	Enrichment   *domain.EnrichmentResult `json:"ai_enrichment,omitempty"`
	BrandVoice   *domain.BrandVoiceResult `json:"brand_voice_analysis,omitempty"`
	Publishing   *domain.PublishingResult `json:"platform_publishing,omitempty"`
}

func (h *handler) handleActivate(w http.ResponseWriter, r *http.Request) {
	var body activationBody
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, 1<<20))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	body.EntryID = strings.TrimSpace(body.EntryID)
	body.ListID = strings.TrimSpace(body.ListID)
	if body.EntryID == "" || body.ListID == "" {
		writeError(w, http.StatusBadRequest, "entry_id and list_id are required")
		return
	}

	req := domain.ActivationRequest{ContentID: body.EntryID, ListID: body.ListID, EnrichmentEnabled: true}
	if body.EnrichmentEnabled != nil {
		req.EnrichmentEnabled = *body.EnrichmentEnabled
	}

	attempt, err := h.activator.Activate(r.Context(), req)
	resp := ActivationResponse{
		ActivationID: attempt.ID,
		Success:      attempt.Success,
		State:        attempt.State,
		Errors:       attempt.Errors,
		Validation:   attempt.Validation,
		Enrichment:   attempt.Enrichment,
		BrandVoice:   attempt.BrandVoice,
		Publishing:   attempt.Publishing,
	}
	if resp.Errors == nil {
		resp.Errors = []domain.ErrorEntry{}
	}
	if attempt.Publishing != nil {
		resp.CampaignID = attempt.Publishing.CampaignID
	}

	status := http.StatusOK
	if err != nil {
		status = http.StatusInternalServerError
		var aErr *domain.ActivationError
		if errors.As(err, &aErr) {
			resp.Stage = aErr.Stage
			resp.Message = aErr.Message
			switch aErr.State {
			case domain.StateRejected, domain.StateBlocked:
				status = http.StatusUnprocessableEntity
			case domain.StatePublishFailed:
				status = http.StatusBadGateway
			}
		} else {
			resp.Message = err.Error()
			h.logger.Error("activation failed unexpectedly", "entry_id", req.ContentID, "error", err)
		}
	}
	writeJSON(w, status, resp)
}

func (h *handler) handleLatest(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		writeError(w, http.StatusNotFound, "activation history is not available")
		return
	}
	entryID := chi.URLParam(r, "entryID")
	rec, err := h.history.Latest(r.Context(), entryID)
	switch {
	case errors.Is(err, audit.ErrNotFound):
		writeError(w, http.StatusNotFound, "no activation recorded for entry "+entryID)
	case err != nil:
		h.logger.Error("read activation history", "entry_id", entryID, "error", err)
		writeError(w, http.StatusInternalServerError, "could not read activation history")
	default:
		writeJSON(w, http.StatusOK, rec)
	}
}

func (h *handler) handlePlatforms(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.platforms)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
