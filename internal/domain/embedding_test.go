package domain

import (
	"context"
	"errors"
	"testing"
)

type stubEmbedder struct {
	result EmbeddingResult
	err    error
	got    string
	calls  int
}

func (s *stubEmbedder) Embed(_ context.Context, text string) (EmbeddingResult, error) {
	s.got = text
	s.calls++
	return s.result, s.err
}

func TestQueryEmbedder_PrependsInstruction(t *testing.T) {
	inner := &stubEmbedder{result: EmbeddingResult{Embedding: []float32{0.1, 0.2, 0.3}}}
	emb := NewQueryEmbedder(inner, "query: ")

	result, err := emb.Embed(context.Background(), "seasonal drinks")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.got != "query: seasonal drinks" {
		t.Errorf("expected prepended text, got %q", inner.got)
	}
	if len(result.Embedding) != 3 {
		t.Errorf("expected 3-element vector, got %d", len(result.Embedding))
	}
}

func TestQueryEmbedder_CollapsesWhitespace(t *testing.T) {
	inner := &stubEmbedder{}
	emb := NewQueryEmbedder(inner, "")

	if _, err := emb.Embed(context.Background(), "  outlets in\tSS2 \n open late "); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if inner.got != "outlets in SS2 open late" {
		t.Errorf("got %q", inner.got)
	}
}

func TestQueryEmbedder_BlankTextRejected(t *testing.T) {
	inner := &stubEmbedder{}
	emb := NewQueryEmbedder(inner, "query: ")

	_, err := emb.Embed(context.Background(), " \n\t ")
	if !errors.Is(err, ErrInvalidArgument) {
		t.Fatalf("expected ErrInvalidArgument, got %v", err)
	}
	if inner.calls != 0 {
		t.Errorf("inner embedder should not be called, got %d calls", inner.calls)
	}
}

func TestQueryEmbedder_ErrorPropagation(t *testing.T) {
	innerErr := errors.New("provider down")
	emb := NewQueryEmbedder(&stubEmbedder{err: innerErr}, "")

	_, err := emb.Embed(context.Background(), "hello")
	if !errors.Is(err, innerErr) {
		t.Errorf("expected wrapped inner error, got %v", err)
	}
}

type healthyEmbedder struct {
	stubEmbedder
	err error
}

func (h *healthyEmbedder) HealthCheck(_ context.Context) error { return h.err }

func TestQueryEmbedder_HealthCheckDelegates(t *testing.T) {
	emb := NewQueryEmbedder(&healthyEmbedder{err: errors.New("down")}, "")
	if err := emb.HealthCheck(context.Background()); err == nil {
		t.Fatal("expected delegated health error")
	}
}

func TestQueryEmbedder_HealthCheckWithoutSupport(t *testing.T) {
	emb := NewQueryEmbedder(&stubEmbedder{}, "")
	if err := emb.HealthCheck(context.Background()); err != nil {
		t.Fatalf("expected nil, got %v", err)
	}
}

func TestNormalizeQuery(t *testing.T) {
	cases := map[string]string{
		"":                 "",
		"  ":               "",
		"a  b":             "a b",
		"\tPavilion\nKL  ": "Pavilion KL",
	}
	for in, want := range cases {
		if got := NormalizeQuery(in); got != want {
			t.Errorf("NormalizeQuery(%q) = %q, want %q", in, got, want)
		}
	}
}
