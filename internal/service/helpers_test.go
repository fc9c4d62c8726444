package service_test

import (
	"context"
	"database/sql"
	"sync"
	"testing"

	"github.com/phrazzld/paramstore/internal/domain"
	"github.com/phrazzld/paramstore/internal/envelope"
	"github.com/phrazzld/paramstore/internal/events"
	"github.com/phrazzld/paramstore/internal/platform/sqlstore"
	"github.com/phrazzld/paramstore/internal/service"
	"github.com/phrazzld/paramstore/internal/testdb"
	"github.com/phrazzld/paramstore/internal/validators"
	"github.com/stretchr/testify/require"
)

type fixture struct {
	db      *sql.DB
	store   *sqlstore.ParameterStore
	svc     *service.ParameterService
	key     envelope.Key
	emitted *eventLog
}

type eventLog struct {
	mu     sync.Mutex
	events []*events.ParameterEvent
}

func (l *eventLog) HandleEvent(_ context.Context, e *events.ParameterEvent) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.events = append(l.events, e)
	return nil
}

func (l *eventLog) types() []string {
	l.mu.Lock()
	defer l.mu.Unlock()
	out := make([]string, 0, len(l.events))
	for _, e := range l.events {
		out = append(out, e.Type)
	}
	return out
}

func newKey(t *testing.T) envelope.Key {
	t.Helper()
	k, err := envelope.GenerateKey()
	require.NoError(t, err)
	return k
}

// newFixture opens a fresh database and a service holding a random key.
func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := testdb.Open(t)
	f := &fixture{db: db, store: sqlstore.NewParameterStore(db, nil), key: newKey(t)}
	f.svc, f.emitted = f.serviceWith(t, envelope.NewKeyringFromKey(f.key), nil)
	return f
}

// serviceWith builds another service over the same database.
func (f *fixture) serviceWith(t *testing.T, keyring *envelope.Keyring, registry *validators.Registry) (*service.ParameterService, *eventLog) {
	t.Helper()
	emitter := events.NewInMemoryEventEmitter(nil)
	log := &eventLog{}
	emitter.RegisterHandler(log)
	svc, err := service.NewParameterService(f.store, registry, keyring, emitter, nil)
	require.NoError(t, err)
	return svc, log
}

// create stores a parameter through the service and returns it.
func (f *fixture) create(t *testing.T, name string, vt domain.ValueType, value string, opts ...func(*domain.Parameter)) *domain.Parameter {
	t.Helper()
	p := &domain.Parameter{Name: name, ValueType: vt, Value: value}
	for _, opt := range opts {
		opt(p)
	}
	require.NoError(t, f.svc.Create(context.Background(), p))
	return p
}

func encrypted(p *domain.Parameter) { p.EnableCypher = true }
func tracked(p *domain.Parameter) { p.EnableHistory = true }
func global(p *domain.Parameter) { p.IsGlobal = true }
