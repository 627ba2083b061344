package answer

import (
	"context"
	"sync"

	"github.com/kailas-cloud/brewdesk/internal/domain/conversation"
	"github.com/kailas-cloud/brewdesk/internal/domain/evidence"
	"github.com/kailas-cloud/brewdesk/internal/domain/intent"
	"github.com/kailas-cloud/brewdesk/internal/domain/outlet"
	"github.com/kailas-cloud/brewdesk/internal/domain/query"
	"github.com/kailas-cloud/brewdesk/internal/usecase/compose"
	"github.com/kailas-cloud/brewdesk/internal/usecase/retrieval"
)

// --- Mocks ---

type mockRouter struct {
	decision intent.Decision
}

func (m *mockRouter) Route(_ context.Context, _ string, _ conversation.Context) intent.Decision {
	return m.decision
}

type mockIndex struct {
	mu    sync.Mutex
	items []evidence.Evidence
	err   error
	calls int
	opts  retrieval.Options
	fn    func(ctx context.Context) ([]evidence.Evidence, error)
}

func (m *mockIndex) SearchWithOptions(ctx context.Context, _ string, opts retrieval.Options) ([]evidence.Evidence, error) {
	m.mu.Lock()
	m.calls++
	m.opts = opts
	m.mu.Unlock()
	if m.fn != nil {
		return m.fn(ctx)
	}
	return m.items, m.err
}

type mockTranslator struct {
	q   query.Query
	err error
}

func (m *mockTranslator) Translate(_ string, _ query.Schema) (query.Query, error) {
	return m.q, m.err
}

type mockStore struct {
	mu      sync.Mutex
	records []outlet.Record
	err     error
	calls   int
	fn      func(ctx context.Context) ([]outlet.Record, error)
}

func (m *mockStore) Execute(ctx context.Context, _ query.Query) ([]outlet.Record, error) {
	m.mu.Lock()
	m.calls++
	m.mu.Unlock()
	if m.fn != nil {
		return m.fn(ctx)
	}
	return m.records, m.err
}

type mockComposer struct {
	calls int
	in    compose.Input
	res   compose.Result
}

func (m *mockComposer) Compose(_ context.Context, in compose.Input) compose.Result {
	m.calls++
	m.in = in
	if m.res.Text == "" {
		m.res.Text = "composed"
		m.res.Generated = true
	}
	return m.res
}

// --- Helpers ---

type fixture struct {
	router     *mockRouter
	index      *mockIndex
	translator *mockTranslator
	store      *mockStore
	composer   *mockComposer
}

func newFixture(in intent.Intent) *fixture {
	return &fixture{
		router:     &mockRouter{decision: intent.Decision{Intent: in, Confidence: 0.9}},
		index:      &mockIndex{},
		translator: &mockTranslator{q: nameQuery()},
		store:      &mockStore{},
		composer:   &mockComposer{},
	}
}

func (f *fixture) service(cfg Config) *Service {
	return New(f.router, f.index, f.translator, f.store, query.DefaultSchema(), f.composer, cfg)
}

func nameQuery() query.Query {
	f, err := query.NewSubstring(query.FieldName, "Pavilion")
	if err != nil {
		panic(err)
	}
	q, err := query.New([]query.Filter{f})
	if err != nil {
		panic(err)
	}
	return q
}
