package api_test

import (
	"context"
	"net/http"
	"testing"

	"github.com/phrazzld/paramstore/internal/api"
	"github.com/phrazzld/paramstore/internal/api/shared"
	"github.com/phrazzld/paramstore/internal/domain"
	"github.com/phrazzld/paramstore/internal/envelope"
	"github.com/phrazzld/paramstore/internal/service"
	"github.com/phrazzld/paramstore/internal/validators"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicEndpoints(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	s.create(t, &domain.Parameter{Name: "Site name", ValueType: domain.TypeStr, Value: "Acme", IsGlobal: true})
	s.create(t, &domain.Parameter{Name: "Internal", ValueType: domain.TypeStr, Value: "hidden"})

	status, body := s.do(t, http.MethodGet, "/health", "", true)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, "ok", decode[api.HealthResponse](t, body).Status)

	status, body = s.do(t, http.MethodGet, "/api/globals", "", true)
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, map[string]string{"SITE_NAME": "Acme"}, decode[map[string]string](t, body))

	status, body = s.do(t, http.MethodGet, "/metrics", "", true)
	assert.Equal(t, http.StatusOK, status)
	assert.Contains(t, string(body), "paramstore_http_requests_total")
}

func TestProtectedEndpointsRequireToken(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	for _, path := range []string{"/api/parameters", "/api/validators", "/api/parameters/ANY"} {
		status, body := s.do(t, http.MethodGet, path, "", true)
		assert.Equal(t, http.StatusUnauthorized, status, path)
		assert.Equal(t, "Authorization header required", decode[shared.ErrorResponse](t, body).Error)
	}
}

func TestListAndGetParameters(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	s.create(t, &domain.Parameter{Name: "Max users", ValueType: domain.TypeInt, Value: "10"})
	s.create(t, &domain.Parameter{Name: "Api token", ValueType: domain.TypeStr, Value: "s3cret", EnableCypher: true})

	status, body := s.do(t, http.MethodGet, "/api/parameters", "", false)
	require.Equal(t, http.StatusOK, status)
	records := decode[[]service.Record](t, body)
	require.Len(t, records, 2)
	assert.Equal(t, "MAX_USERS", records[0].Slug)
	assert.Equal(t, "s3cret", records[1].Value)

	status, body = s.do(t, http.MethodGet, "/api/parameters/MAX_USERS", "", false)
	require.Equal(t, http.StatusOK, status)
	rec := decode[service.Record](t, body)
	assert.Equal(t, "10", rec.Value)
	assert.Equal(t, domain.TypeInt, rec.ValueType)

	status, body = s.do(t, http.MethodGet, "/api/parameters/NOPE", "", false)
	assert.Equal(t, http.StatusNotFound, status)
	assert.Equal(t, "Parameter not found", decode[shared.ErrorResponse](t, body).Error)
}

func TestSetValue(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestServer(t)
	p := s.create(t, &domain.Parameter{Name: "Max users", ValueType: domain.TypeInt, Value: "10", EnableHistory: true})
	_, err := s.svc.AddValidator(ctx, p, validators.MaxValue, map[string]any{"limit_value": 100})
	require.NoError(t, err)

	tests := []struct {
		name       string
		body       string
		wantStatus int
		wantValue  string
	}{
		{"integer", `{"value": 42}`, http.StatusOK, "42"},
		{"validator rejects", `{"value": 500}`, http.StatusUnprocessableEntity, ""},
		{"wrong JSON type", `{"value": "many"}`, http.StatusBadRequest, ""},
		{"fractional", `{"value": 1.5}`, http.StatusBadRequest, ""},
		{"missing value", `{}`, http.StatusBadRequest, ""},
		{"unknown field", `{"value": 1, "extra": true}`, http.StatusBadRequest, ""},
		{"not JSON", `value=1`, http.StatusBadRequest, ""},
	}
	// Subtests share one parameter, so they run in order.
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, body := s.do(t, http.MethodPut, "/api/parameters/MAX_USERS/value", tt.body, false)
			require.Equal(t, tt.wantStatus, status, string(body))
			if tt.wantValue != "" {
				assert.Equal(t, tt.wantValue, decode[service.Record](t, body).Value)
				return
			}
			assert.NotEmpty(t, decode[shared.ErrorResponse](t, body).Error)
		})
	}

	status, body := s.do(t, http.MethodPut, "/api/parameters/MAX_USERS/value", `{"value": 500}`, false)
	require.Equal(t, http.StatusUnprocessableEntity, status)
	assert.Contains(t, decode[shared.ErrorResponse](t, body).Error, "MAX_USERS")

	stored, err := s.svc.Get(ctx, "MAX_USERS")
	require.NoError(t, err)
	assert.Equal(t, "42", stored.Value)

	status, body = s.do(t, http.MethodGet, "/api/parameters/MAX_USERS/history", "", false)
	require.Equal(t, http.StatusOK, status)
	history := decode[[]api.HistoryEntry](t, body)
	require.Len(t, history, 1)
	assert.Equal(t, "10", history[0].Value)
	assert.False(t, history[0].Encrypted)
}

func TestSetValueTypedConversion(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	s.create(t, &domain.Parameter{Name: "Launch", ValueType: domain.TypeDate, Value: "2024-01-01"})
	s.create(t, &domain.Parameter{Name: "Hosts", ValueType: domain.TypeList, Value: "a"})
	s.create(t, &domain.Parameter{Name: "Enabled", ValueType: domain.TypeBool, Value: "0"})

	tests := []struct {
		slug  string
		body  string
		value string
	}{
		{"LAUNCH", `{"value": "2025-03-04"}`, "2025-03-04"},
		{"HOSTS", `{"value": ["a", "b"]}`, "a, b"},
		{"ENABLED", `{"value": true}`, "1"},
	}
	for _, tt := range tests {
		t.Run(tt.slug, func(t *testing.T) {
			status, body := s.do(t, http.MethodPut, "/api/parameters/"+tt.slug+"/value", tt.body, false)
			require.Equal(t, http.StatusOK, status, string(body))
			p, err := s.svc.Get(context.Background(), tt.slug)
			require.NoError(t, err)
			assert.Equal(t, tt.value, p.Value)
		})
	}
}

func TestHistoryHidesEncryptedValues(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestServer(t)
	p := s.create(t, &domain.Parameter{
		Name: "Password", ValueType: domain.TypeStr, Value: "first",
		EnableCypher: true, EnableHistory: true,
	})
	require.NoError(t, s.svc.SetStr(ctx, p, "second"))

	status, body := s.do(t, http.MethodGet, "/api/parameters/PASSWORD/history", "", false)
	require.Equal(t, http.StatusOK, status)
	history := decode[[]api.HistoryEntry](t, body)
	require.Len(t, history, 1)
	assert.True(t, history[0].Encrypted)
	assert.Empty(t, history[0].Value)
	assert.NotContains(t, string(body), envelope.Prefix)
}

func TestDeleteParameter(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)
	s.create(t, &domain.Parameter{Name: "Gone", ValueType: domain.TypeStr, Value: "x"})

	status, _ := s.do(t, http.MethodDelete, "/api/parameters/GONE", "", false)
	assert.Equal(t, http.StatusNoContent, status)

	status, _ = s.do(t, http.MethodDelete, "/api/parameters/GONE", "", false)
	assert.Equal(t, http.StatusNotFound, status)
}

func TestImport(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := newTestServer(t)
	s.create(t, &domain.Parameter{Name: "Existing", ValueType: domain.TypeStr, Value: "old"})

	payload := `[
		{"name": "Existing", "value": "new"},
		{"name": "Fresh", "value_type": "INT", "value": "7",
		 "validators": [{"validator_type": "MinValueValidator", "validator_params": {"limit_value": 1}}]}
	]`

	status, body := s.do(t, http.MethodPost, "/api/parameters/import?update=false", payload, false)
	require.Equal(t, http.StatusOK, status, string(body))
	assert.Equal(t, 2, decode[api.ImportResponse](t, body).Count)

	existing, err := s.svc.Get(ctx, "EXISTING")
	require.NoError(t, err)
	assert.Equal(t, "old", existing.Value)

	fresh, err := s.svc.Get(ctx, "FRESH")
	require.NoError(t, err)
	attached, err := s.svc.Validators(ctx, fresh)
	require.NoError(t, err)
	require.Len(t, attached, 1)

	status, _ = s.do(t, http.MethodPost, "/api/parameters/import", payload, false)
	require.Equal(t, http.StatusOK, status)
	existing, err = s.svc.Get(ctx, "EXISTING")
	require.NoError(t, err)
	assert.Equal(t, "new", existing.Value)

	yamlBody := "- name: From yaml\n  value: hello\n"
	status, body = s.do(t, http.MethodPost, "/api/parameters/import", yamlBody, false, "Content-Type", "application/yaml")
	require.Equal(t, http.StatusOK, status, string(body))
	_, err = s.svc.Get(ctx, "FROM_YAML")
	assert.NoError(t, err)

	status, _ = s.do(t, http.MethodPost, "/api/parameters/import?update=maybe", payload, false)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodPost, "/api/parameters/import", `{"not": "a list"}`, false)
	assert.Equal(t, http.StatusBadRequest, status)

	status, _ = s.do(t, http.MethodPost, "/api/parameters/import", `[{"name": "Bad", "value_type": "NOPE"}]`, false)
	assert.Equal(t, http.StatusBadRequest, status)
}

func TestValidatorsEndpoint(t *testing.T) {
	t.Parallel()
	s := newTestServer(t)

	status, body := s.do(t, http.MethodGet, "/api/validators", "", false)
	require.Equal(t, http.StatusOK, status)
	list := decode[[]api.ValidatorInfo](t, body)
	require.NotEmpty(t, list)

	names := make([]string, 0, len(list))
	for _, v := range list {
		names = append(names, v.Name)
	}
	assert.IsNonDecreasing(t, names)
	assert.Contains(t, names, validators.MinValue)
}
