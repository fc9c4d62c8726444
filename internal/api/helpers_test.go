package api_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/phrazzld/paramstore/internal/api"
	"github.com/phrazzld/paramstore/internal/config"
	"github.com/phrazzld/paramstore/internal/domain"
	"github.com/phrazzld/paramstore/internal/envelope"
	"github.com/phrazzld/paramstore/internal/platform/metrics"
	"github.com/phrazzld/paramstore/internal/platform/sqlstore"
	"github.com/phrazzld/paramstore/internal/service"
	"github.com/phrazzld/paramstore/internal/service/auth"
	"github.com/phrazzld/paramstore/internal/testdb"
	"github.com/stretchr/testify/require"
)

type testServer struct {
	svc     *service.ParameterService
	metrics *metrics.Metrics
	server  *httptest.Server
	token   string
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()

	key, err := envelope.GenerateKey()
	require.NoError(t, err)

	st := sqlstore.NewParameterStore(testdb.Open(t), nil)
	svc, err := service.NewParameterService(st, nil, envelope.NewKeyringFromKey(key), nil, nil)
	require.NoError(t, err)

	jwtService, err := auth.NewJWTService(config.AuthConfig{
		JWTSecret:            "test-secret-that-is-long-enough-for-testing",
		TokenLifetimeMinutes: 5,
	})
	require.NoError(t, err)
	token, err := jwtService.GenerateToken(context.Background(), "ops")
	require.NoError(t, err)

	m := metrics.New()
	server := httptest.NewServer(api.NewRouter(api.RouterDeps{
		Service:    svc,
		JWTService: jwtService,
		Metrics:    m,
	}))
	t.Cleanup(server.Close)

	return &testServer{svc: svc, metrics: m, server: server, token: token}
}

func (s *testServer) create(t *testing.T, p *domain.Parameter) *domain.Parameter {
	t.Helper()
	require.NoError(t, s.svc.Create(context.Background(), p))
	return p
}

// do sends a request, authenticated unless anonymous is set, and returns
// the status and body.
func (s *testServer) do(t *testing.T, method, path, body string, anonymous bool, headers ...string) (int, []byte) {
	t.Helper()

	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req, err := http.NewRequest(method, s.server.URL+path, reader)
	require.NoError(t, err)
	if !anonymous {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}

	resp, err := s.server.Client().Do(req)
	require.NoError(t, err)
	defer resp.Body.Close()
	data, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, data
}

func decode[T any](t *testing.T, data []byte) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(data, &v), string(data))
	return v
}
