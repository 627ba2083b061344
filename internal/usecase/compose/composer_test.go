package compose

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/kailas-cloud/brewdesk/internal/domain"
	"github.com/kailas-cloud/brewdesk/internal/domain/conversation"
	"github.com/kailas-cloud/brewdesk/internal/domain/evidence"
	"github.com/kailas-cloud/brewdesk/internal/domain/outlet"
)

// --- Mocks ---

type mockGenerator struct {
	errs     []error
	text     string
	calls    int
	requests []domain.GenerationRequest
	block    bool
}

func (m *mockGenerator) Generate(ctx context.Context, req domain.GenerationRequest) (domain.GenerationResult, error) {
	m.calls++
	m.requests = append(m.requests, req)
	if m.block {
		<-ctx.Done()
		return domain.GenerationResult{}, ctx.Err()
	}
	if len(m.errs) >= m.calls && m.errs[m.calls-1] != nil {
		return domain.GenerationResult{}, m.errs[m.calls-1]
	}
	return domain.GenerationResult{Text: m.text}, nil
}

// --- Helpers ---

func pavilion() outlet.Record {
	iv, _ := outlet.NewInterval(8*60, 21*60+40)
	hours := make(map[outlet.Day]outlet.Interval, 7)
	for _, d := range outlet.AllDays {
		hours[d] = iv
	}
	return outlet.Record{
		ID:      "7",
		Name:    "ZUS Coffee Pavilion Kuala Lumpur",
		Address: "Lot 1.00, Pavilion KL, Jalan Bukit Bintang",
		Hours:   hours,
	}
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Timeout = time.Second
	return cfg
}

// --- Tests ---

func TestCompose_GeneratesOnce(t *testing.T) {
	gen := &mockGenerator{text: "  It opens at 8 AM.  "}
	c := New(gen, "test", testConfig())

	res := c.Compose(context.Background(), Input{
		Question: "When does Pavilion open?",
		Records:  []outlet.Record{pavilion()},
	})

	if !res.Generated || res.Degraded {
		t.Fatalf("expected generated answer, got %+v", res)
	}
	if res.Text != "It opens at 8 AM." {
		t.Errorf("unexpected text %q", res.Text)
	}
	if gen.calls != 1 || res.Attempts != 1 {
		t.Errorf("expected exactly one call, got %d", gen.calls)
	}
	if gen.requests[0].System != DefaultSystemPrompt {
		t.Errorf("system prompt not applied")
	}
}

func TestCompose_PromptOrder(t *testing.T) {
	gen := &mockGenerator{text: "ok"}
	c := New(gen, "test", testConfig())

	convo := conversation.New("User likes tumblers.", []conversation.Turn{
		{Role: conversation.User, Text: "hi"},
		{Role: conversation.Assistant, Text: "hello"},
	})
	c.Compose(context.Background(), Input{
		Question:     "Anything near Pavilion?",
		Conversation: convo,
		Evidence: []evidence.Evidence{
			evidence.New("b", "low chunk", 0.2),
			evidence.New("a", "high chunk", 0.9),
		},
		Records: []outlet.Record{pavilion()},
	})

	prompt := gen.requests[0].Prompt
	order := []string{"User likes tumblers.", "user: hi", "high chunk", "low chunk", "Pavilion Kuala Lumpur", "Question: Anything near Pavilion?"}
	last := -1
	for _, s := range order {
		idx := strings.Index(prompt, s)
		if idx < 0 {
			t.Fatalf("prompt missing %q:\n%s", s, prompt)
		}
		if idx <= last {
			t.Fatalf("%q out of order in prompt:\n%s", s, prompt)
		}
		last = idx
	}
	if !strings.HasSuffix(prompt, "Question: Anything near Pavilion?") {
		t.Errorf("question must close the prompt")
	}
}

func TestCompose_RetriesTransientOnce(t *testing.T) {
	gen := &mockGenerator{
		errs: []error{fmt.Errorf("%w: 503", domain.ErrTransient)},
		text: "second time lucky",
	}
	c := New(gen, "test", testConfig())

	res := c.Compose(context.Background(), Input{
		Question: "q",
		Evidence: []evidence.Evidence{evidence.New("c1", "chunk", 0.5)},
	})

	if gen.calls != 2 || res.Attempts != 2 {
		t.Fatalf("expected 2 calls, got %d", gen.calls)
	}
	if res.Text != "second time lucky" || !res.Generated {
		t.Fatalf("unexpected result %+v", res)
	}
}

func TestCompose_NoRetryOnPermanentError(t *testing.T) {
	gen := &mockGenerator{errs: []error{errors.New("401 unauthorized")}}
	c := New(gen, "test", testConfig())

	res := c.Compose(context.Background(), Input{
		Question: "q",
		Evidence: []evidence.Evidence{evidence.New("c1", "chunk text", 0.5)},
	})

	if gen.calls != 1 {
		t.Fatalf("expected 1 call, got %d", gen.calls)
	}
	if !res.Degraded || res.Generated || res.Text != "chunk text" {
		t.Fatalf("expected fallback, got %+v", res)
	}
}

func TestCompose_RetryDisabled(t *testing.T) {
	gen := &mockGenerator{errs: []error{domain.ErrTransient}}
	cfg := testConfig()
	cfg.RetryOnce = false
	c := New(gen, "test", cfg)

	res := c.Compose(context.Background(), Input{
		Question: "q",
		Evidence: []evidence.Evidence{evidence.New("c1", "chunk", 0.5)},
	})

	if gen.calls != 1 || !res.Degraded {
		t.Fatalf("expected single failed call, got %d calls, %+v", gen.calls, res)
	}
}

func TestCompose_SecondTransientFallsBack(t *testing.T) {
	gen := &mockGenerator{errs: []error{domain.ErrTransient, domain.ErrTransient}}
	c := New(gen, "test", testConfig())

	res := c.Compose(context.Background(), Input{
		Question: "q",
		Evidence: []evidence.Evidence{evidence.New("c1", "top", 0.9), evidence.New("c2", "second", 0.1)},
	})

	if gen.calls != 2 {
		t.Fatalf("expected 2 calls, got %d", gen.calls)
	}
	if res.Text != "top" || !res.Degraded {
		t.Fatalf("expected top chunk fallback, got %+v", res)
	}
}

func TestCompose_TimeoutFallsBack(t *testing.T) {
	gen := &mockGenerator{block: true}
	cfg := testConfig()
	cfg.Timeout = 20 * time.Millisecond
	c := New(gen, "test", cfg)

	start := time.Now()
	res := c.Compose(context.Background(), Input{
		Question: "When does Pavilion open?",
		Records:  []outlet.Record{pavilion()},
	})

	if elapsed := time.Since(start); elapsed > time.Second {
		t.Fatalf("timeout not enforced: %v", elapsed)
	}
	if !res.Degraded {
		t.Fatal("expected degraded answer")
	}
	if !strings.Contains(res.Text, "8:00 AM") {
		t.Errorf("fallback should contain hours, got %q", res.Text)
	}
	if gen.calls != 2 {
		t.Errorf("timeout is transient, expected one retry, got %d calls", gen.calls)
	}
}

func TestCompose_CancelledParentNoRetry(t *testing.T) {
	gen := &mockGenerator{block: true}
	c := New(gen, "test", testConfig())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	res := c.Compose(ctx, Input{
		Question: "q",
		Evidence: []evidence.Evidence{evidence.New("c1", "chunk", 0.5)},
	})

	if gen.calls != 1 || !res.Degraded {
		t.Fatalf("expected single call and fallback, got %d, %+v", gen.calls, res)
	}
}

func TestCompose_EmptyCompletionFallsBack(t *testing.T) {
	gen := &mockGenerator{text: "   "}
	c := New(gen, "test", testConfig())

	res := c.Compose(context.Background(), Input{
		Question: "q",
		Evidence: []evidence.Evidence{evidence.New("c1", "chunk", 0.5)},
	})
	if !res.Degraded || res.Text != "chunk" {
		t.Fatalf("expected fallback, got %+v", res)
	}
}

func TestCompose_NoEvidenceSkipsGeneration(t *testing.T) {
	gen := &mockGenerator{text: "should not be used"}
	c := New(gen, "test", testConfig())

	res := c.Compose(context.Background(), Input{Question: "q"})
	if gen.calls != 0 {
		t.Fatalf("expected no generation call, got %d", gen.calls)
	}
	if res.Text != NoResults {
		t.Errorf("expected no-results message, got %q", res.Text)
	}

	res = c.Compose(context.Background(), Input{Question: "q", EmptyMessage: NoProducts})
	if res.Text != NoProducts {
		t.Errorf("expected custom empty message, got %q", res.Text)
	}
}

func TestCompose_NilGeneratorFallsBack(t *testing.T) {
	c := New(nil, "none", testConfig())

	res := c.Compose(context.Background(), Input{
		Question: "q",
		Evidence: []evidence.Evidence{evidence.New("c1", "chunk", 0.5)},
	})
	if !res.Degraded || res.Attempts != 0 {
		t.Fatalf("expected fallback without attempts, got %+v", res)
	}
}

func TestPrompt_TruncationDropsProductTailFirst(t *testing.T) {
	var items []evidence.Evidence
	for i := range 5 {
		items = append(items, evidence.New(fmt.Sprintf("c%d", i), strings.Repeat("x", 100), 0.9-float64(i)/10))
	}
	records := []outlet.Record{pavilion(), {ID: "8", Name: "ZUS Coffee SS2"}}

	full, _ := New(nil, "", Config{}).Prompt(Input{Question: "q", Evidence: items, Records: records})

	cfg := Config{ContextBudget: len(full) - 150}
	prompt, res := New(nil, "", cfg).Prompt(Input{Question: "q", Evidence: items, Records: records})

	if len([]rune(prompt)) > cfg.ContextBudget {
		t.Fatalf("prompt %d exceeds budget %d", len(prompt), cfg.ContextBudget)
	}
	if res.TruncatedRecords != 0 {
		t.Fatalf("outlet rows dropped before product evidence: %+v", res)
	}
	if res.TruncatedEvidence == 0 || res.RetainedEvidence+res.TruncatedEvidence != 5 {
		t.Fatalf("unexpected counts %+v", res)
	}
	for i := range res.RetainedEvidence {
		if !strings.Contains(prompt, fmt.Sprintf("(c%d,", i)) {
			t.Errorf("retained set is not a rank prefix: missing c%d", i)
		}
	}
	if strings.Contains(prompt, fmt.Sprintf("(c%d,", res.RetainedEvidence)) {
		t.Errorf("dropped item still present")
	}
}

func TestPrompt_TruncationThenOutletTail(t *testing.T) {
	records := []outlet.Record{
		{ID: "1", Name: "First " + strings.Repeat("a", 80)},
		{ID: "2", Name: "Second " + strings.Repeat("b", 80)},
		{ID: "3", Name: "Third " + strings.Repeat("c", 80)},
	}
	items := []evidence.Evidence{evidence.New("c1", strings.Repeat("y", 50), 0.5)}
	summary := conversation.New("keep me", nil)

	prompt, res := New(nil, "", Config{ContextBudget: 200}).Prompt(Input{
		Question:     "keep this question",
		Conversation: summary,
		Evidence:     items,
		Records:      records,
	})

	if res.RetainedEvidence != 0 {
		t.Fatalf("product evidence should be dropped first: %+v", res)
	}
	if res.RetainedRecords == 0 || res.RetainedRecords == 3 {
		t.Fatalf("expected partial outlet retention, got %+v", res)
	}
	if !strings.Contains(prompt, "First") {
		t.Errorf("earliest outlet row must be kept")
	}
	if strings.Contains(prompt, "Third") {
		t.Errorf("latest outlet row must go first")
	}
	if !strings.Contains(prompt, "keep me") || !strings.Contains(prompt, "keep this question") {
		t.Errorf("summary and question are never dropped")
	}
}

func TestPrompt_TinyBudgetKeepsQuestionAndSummary(t *testing.T) {
	prompt, res := New(nil, "", Config{ContextBudget: 5}).Prompt(Input{
		Question:     "question survives",
		Conversation: conversation.New("summary survives", nil),
		Evidence:     []evidence.Evidence{evidence.New("c1", "x", 1)},
	})
	if res.RetainedEvidence != 0 {
		t.Fatalf("expected all evidence dropped")
	}
	if !strings.Contains(prompt, "question survives") || !strings.Contains(prompt, "summary survives") {
		t.Fatalf("protected sections missing: %q", prompt)
	}
}

func TestFallback(t *testing.T) {
	if got := Fallback(nil, nil); got != NoResults {
		t.Errorf("empty fallback = %q", got)
	}

	items := []evidence.Evidence{evidence.New("c1", "Seasonal drink: Pandan Latte.", 0.8)}
	if got := Fallback(items, nil); got != "Seasonal drink: Pandan Latte." {
		t.Errorf("product fallback must be verbatim, got %q", got)
	}

	got := Fallback(items, []outlet.Record{pavilion()})
	if !strings.HasPrefix(got, "Here is the outlet I found:") {
		t.Errorf("unexpected header: %q", got)
	}
	if !strings.Contains(got, "Monday–Sunday: 8:00 AM–9:40 PM") || !strings.HasSuffix(got, "Pandan Latte.") {
		t.Errorf("unexpected mixed fallback: %q", got)
	}
}

func TestFallback_CapsRecords(t *testing.T) {
	var records []outlet.Record
	for i := range 12 {
		records = append(records, outlet.Record{ID: fmt.Sprint(i), Name: fmt.Sprintf("Outlet %d", i)})
	}
	got := Fallback(nil, records)
	if !strings.Contains(got, "Here are the 12 outlets I found:") || !strings.Contains(got, "…and 2 more.") {
		t.Fatalf("unexpected fallback: %q", got)
	}
	if strings.Contains(got, "Outlet 10") {
		t.Errorf("records beyond the cap must be omitted")
	}
}
