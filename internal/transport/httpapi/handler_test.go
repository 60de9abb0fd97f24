package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"ContentActivation/internal/audit"
	"ContentActivation/internal/domain"
)

type fakeActivator struct {
	attempt domain.ActivationAttempt
	err     error
	got     domain.ActivationRequest
}

func (f *fakeActivator) Activate(_ context.Context, req domain.ActivationRequest) (domain.ActivationAttempt, error) {
	f.got = req
	return f.attempt, f.err
}

type fakeHistory struct {
	rec audit.Record
	err error
}

func (f fakeHistory) Latest(context.Context, string) (audit.Record, error) {
	return f.rec, f.err
}

func post(t *testing.T, h http.Handler, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/api/activations", strings.NewReader(body))
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestActivateStatusCodes(t *testing.T) {
	t.Parallel()

	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"success", nil, http.StatusOK},
		{"rejected", &domain.ActivationError{Stage: domain.StageValidation, State: domain.StateRejected, Message: "tags invalid"}, http.StatusUnprocessableEntity},
		{"blocked", &domain.ActivationError{Stage: domain.StageBrandVoice, State: domain.StateBlocked, Message: "score too low"}, http.StatusUnprocessableEntity},
		{"publish failed", &domain.ActivationError{Stage: domain.StagePublishing, State: domain.StatePublishFailed, Message: "platform down"}, http.StatusBadGateway},
		{"unexpected", errors.New("boom"), http.StatusInternalServerError},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()
			act := &fakeActivator{attempt: domain.ActivationAttempt{ID: "act-1", Success: tc.err == nil}, err: tc.err}
			rec := post(t, NewRouter(Deps{Activator: act}), `{"entry_id":"e1","list_id":"L1"}`)
			assert.Equal(t, tc.status, rec.Code)

			var resp ActivationResponse
			require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
			assert.Equal(t, "act-1", resp.ActivationID)
			assert.NotNil(t, resp.Errors)
			if tc.err != nil {
				assert.NotEmpty(t, resp.Message)
			}
		})
	}
}

func TestActivateDefaultsEnrichmentOn(t *testing.T) {
	t.Parallel()

	act := &fakeActivator{}
	h := NewRouter(Deps{Activator: act})

	post(t, h, `{"entry_id":"e1","list_id":"L1"}`)
	assert.True(t, act.got.EnrichmentEnabled)

	post(t, h, `{"entry_id":"e1","list_id":"L1","enrichment_enabled":false}`)
	assert.False(t, act.got.EnrichmentEnabled)
}

func TestActivateMalformedRequest(t *testing.T) {
	t.Parallel()

	h := NewRouter(Deps{Activator: &fakeActivator{}})
	for _, body := range []string{`{`, `{"entry_id":"e1"}`, `{"entry_id":"e1","list_id":"L1","extra":1}`} {
		rec := post(t, h, body)
		assert.Equal(t, http.StatusBadRequest, rec.Code, body)
	}
}

func TestLatest(t *testing.T) {
	t.Parallel()

	h := NewRouter(Deps{Activator: &fakeActivator{}, History: fakeHistory{rec: audit.Record{ActivationID: "act-9", Errors: []string{}}}})
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/activations/latest/e1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"activation_id":"act-9"`)

	missing := NewRouter(Deps{Activator: &fakeActivator{}, History: fakeHistory{err: audit.ErrNotFound}})
	rec = httptest.NewRecorder()
	missing.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/activations/latest/e1", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestHealthPlatformsAndMetrics(t *testing.T) {
	t.Parallel()

	metrics := http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { _, _ = w.Write([]byte("ok_metric 1\n")) })
	h := NewRouter(Deps{
		Activator: &fakeActivator{},
		Platforms: PlatformInfo{Active: "mock", Available: []string{"mock", "webhook"}},
		Metrics:   metrics,
	})

	for path, want := range map[string]string{
		"/health":        `"status":"ok"`,
		"/api/platforms": `"active":"mock"`,
		"/metrics":       "ok_metric 1",
	} {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
		assert.Contains(t, rec.Body.String(), want, path)
	}
}
