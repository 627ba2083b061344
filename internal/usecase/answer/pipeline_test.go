package answer

import (
	"context"
	"strings"
	"testing"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/brewdesk/internal/domain"
	"github.com/kailas-cloud/brewdesk/internal/domain/chunk"
	"github.com/kailas-cloud/brewdesk/internal/domain/intent"
	"github.com/kailas-cloud/brewdesk/internal/domain/outlet"
	"github.com/kailas-cloud/brewdesk/internal/domain/query"
	outletrepo "github.com/kailas-cloud/brewdesk/internal/repository/outlet"
	"github.com/kailas-cloud/brewdesk/internal/usecase/compose"
	"github.com/kailas-cloud/brewdesk/internal/usecase/retrieval"
	"github.com/kailas-cloud/brewdesk/internal/usecase/route"
	"github.com/kailas-cloud/brewdesk/internal/usecase/translate"
)

// keywordEmbedder maps text onto a tiny deterministic vector space.
type keywordEmbedder struct{}

func (keywordEmbedder) Embed(_ context.Context, text string) (domain.EmbeddingResult, error) {
	lower := strings.ToLower(text)
	v := []float32{0, 0, 0.1}
	if strings.Contains(lower, "seasonal") || strings.Contains(lower, "drink") {
		v[0] = 1
	}
	if strings.Contains(lower, "tumbler") || strings.Contains(lower, "cup") {
		v[1] = 1
	}
	return domain.EmbeddingResult{Embedding: v}, nil
}

type recordingGenerator struct {
	err   error
	text  string
	calls int
	last  domain.GenerationRequest
}

func (g *recordingGenerator) Generate(_ context.Context, req domain.GenerationRequest) (domain.GenerationResult, error) {
	g.calls++
	g.last = req
	if g.err != nil {
		return domain.GenerationResult{}, g.err
	}
	return domain.GenerationResult{Text: g.text}, nil
}

const seasonalText = "Seasonal drinks: Pandan Latte and Gula Melaka Frappe are back for a limited time."

func newPipeline(t *testing.T, gen *recordingGenerator) *Service {
	t.Helper()

	chunks := []chunk.Chunk{
		chunk.New("drinks-seasonal", seasonalText, []float32{1, 0, 0.1}, nil),
		chunk.New("tumbler-allday", "ZUS All-Day Cup 500ml tumbler.", []float32{0, 1, 0.1},
			map[string]string{chunk.MetaPrice: "RM 55.00"}),
	}
	index, err := retrieval.New(chunks, keywordEmbedder{}, 3)
	if err != nil {
		t.Fatalf("index: %v", err)
	}

	iv, _ := outlet.NewInterval(8*60, 21*60+40)
	hours := map[outlet.Day]outlet.Interval{}
	for _, d := range outlet.AllDays {
		hours[d] = iv
	}
	records := []outlet.Record{
		{ID: "1", Name: "ZUS Coffee Pavilion Kuala Lumpur", Address: "Pavilion KL, Jalan Bukit Bintang", Hours: hours},
		{ID: "2", Name: "ZUS Coffee SS2", Address: "Jalan SS 2/67, Petaling Jaya", Hours: hours},
	}
	schema := query.DefaultSchema()
	store := outletrepo.NewMemoryStore(records, schema, zap.NewNop())

	friday := time.Date(2026, 10, 16, 15, 30, 0, 0, time.UTC)
	tr, err := translate.New(schema, translate.WithClock(func() time.Time { return friday }))
	if err != nil {
		t.Fatalf("translator: %v", err)
	}

	cfg := compose.DefaultConfig()
	cfg.Timeout = time.Second
	return New(route.New(), index, tr, store, schema, compose.New(gen, "test", cfg), DefaultConfig())
}

func TestPipeline_OutletHoursScenario(t *testing.T) {
	gen := &recordingGenerator{err: domain.ErrGenerationUnavailable}
	svc := newPipeline(t, gen)

	resp, err := svc.Answer(context.Background(), Request{
		Question: "What are the opening hours for the outlet in Pavilion Kuala Lumpur?",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.UsedIntent != intent.Outlet {
		t.Fatalf("expected outlet intent, got %q", resp.UsedIntent)
	}
	if len(resp.EvidenceRefs) != 1 || resp.EvidenceRefs[0] != "1" {
		t.Fatalf("expected only the Pavilion outlet, got %v", resp.EvidenceRefs)
	}
	if !strings.Contains(resp.Answer, "8:00 AM–9:40 PM") {
		t.Errorf("answer should contain the outlet hours, got %q", resp.Answer)
	}
	if !resp.Degraded || resp.Generated {
		t.Errorf("generation failure must degrade: %+v", resp)
	}
}

func TestPipeline_SeasonalDrinksFallbackIsTopChunk(t *testing.T) {
	gen := &recordingGenerator{err: domain.ErrGenerationUnavailable}
	svc := newPipeline(t, gen)

	resp, err := svc.Answer(context.Background(), Request{Question: "Tell me about the new seasonal drinks."})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.UsedIntent != intent.Product {
		t.Fatalf("expected product intent, got %q", resp.UsedIntent)
	}
	if resp.Answer != seasonalText {
		t.Errorf("fallback must be the top chunk verbatim, got %q", resp.Answer)
	}
	if resp.EvidenceRefs[0] != "drinks-seasonal" {
		t.Errorf("unexpected ranking %v", resp.EvidenceRefs)
	}
}

func TestPipeline_WeatherCannotHelp(t *testing.T) {
	gen := &recordingGenerator{text: "sunny"}
	svc := newPipeline(t, gen)

	resp, err := svc.Answer(context.Background(), Request{Question: "What's the weather today?"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.UsedIntent != intent.Unsupported || resp.Answer != compose.CannotHelp {
		t.Fatalf("unexpected response %+v", resp)
	}
	if gen.calls != 0 {
		t.Fatal("generation must not run for unsupported questions")
	}
}

func TestPipeline_GeneratedAnswerSeesEvidence(t *testing.T) {
	gen := &recordingGenerator{text: "The Pavilion outlet opens at 8 AM."}
	svc := newPipeline(t, gen)

	resp, err := svc.Answer(context.Background(), Request{
		Question: "What are the opening hours for the outlet in Pavilion Kuala Lumpur?",
		Summary:  "The user is planning a visit to KL.",
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !resp.Generated || resp.Answer != "The Pavilion outlet opens at 8 AM." {
		t.Fatalf("unexpected response %+v", resp)
	}
	prompt := gen.last.Prompt
	if !strings.Contains(prompt, "The user is planning a visit to KL.") || !strings.Contains(prompt, "ZUS Coffee Pavilion Kuala Lumpur") {
		t.Errorf("prompt missing context:\n%s", prompt)
	}
	if gen.calls != 1 {
		t.Errorf("expected a single generation call, got %d", gen.calls)
	}
}

func TestPipeline_PriceFilteredProducts(t *testing.T) {
	gen := &recordingGenerator{err: domain.ErrGenerationUnavailable}
	svc := newPipeline(t, gen)

	resp, err := svc.Answer(context.Background(), Request{Question: "Any tumbler under RM 20?"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if resp.Answer != compose.NoProducts {
		t.Fatalf("expected price-range empty message, got %q", resp.Answer)
	}
	if gen.calls != 0 {
		t.Error("no generation call without evidence")
	}
}
