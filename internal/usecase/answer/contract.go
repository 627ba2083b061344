package answer

import (
	"context"

	"github.com/kailas-cloud/brewdesk/internal/domain/conversation"
	"github.com/kailas-cloud/brewdesk/internal/domain/evidence"
	"github.com/kailas-cloud/brewdesk/internal/domain/intent"
	"github.com/kailas-cloud/brewdesk/internal/domain/outlet"
	"github.com/kailas-cloud/brewdesk/internal/domain/query"
	"github.com/kailas-cloud/brewdesk/internal/usecase/compose"
	"github.com/kailas-cloud/brewdesk/internal/usecase/retrieval"
)

// Router picks the answering path.
type Router interface {
	Route(ctx context.Context, question string, convo conversation.Context) intent.Decision
}

// ProductIndex searches product knowledge.
type ProductIndex interface {
	SearchWithOptions(ctx context.Context, text string, opts retrieval.Options) ([]evidence.Evidence, error)
}

// Translator turns a question into a structured outlet query.
type Translator interface {
	Translate(question string, schema query.Schema) (query.Query, error)
}

// OutletStore executes structured outlet queries.
type OutletStore interface {
	Execute(ctx context.Context, q query.Query) ([]outlet.Record, error)
}

// Composer produces the final answer text.
type Composer interface {
	Compose(ctx context.Context, in compose.Input) compose.Result
}
