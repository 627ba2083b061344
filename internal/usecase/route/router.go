// Package route classifies a question into an answering path.
package route

import (
	"context"
	"math"
	"strings"
	"unicode"

	"go.uber.org/zap"

	"github.com/kailas-cloud/brewdesk/internal/domain/conversation"
	"github.com/kailas-cloud/brewdesk/internal/domain/intent"
	"github.com/kailas-cloud/brewdesk/internal/logger"
	"github.com/kailas-cloud/brewdesk/internal/usecase/retrieval"
)

const (
	// followUpTurns is how many earlier user turns are consulted for anaphora.
	followUpTurns = 3
	// followUpDiscount lowers confidence for decisions borrowed from history.
	followUpDiscount = 0.8
	// dominance is the score ratio above which one side wins outright.
	dominance = 2.0
	// unsupportedConfidence is reported when no cue is found anywhere.
	unsupportedConfidence = 0.5
)

type classifyFunc func(question string, convo conversation.Context) (intent.Decision, error)

// Router is a stateless lexical intent classifier.
type Router struct {
	classify classifyFunc
}

// New creates a Router.
func New() *Router {
	return &Router{classify: classify}
}

// Route returns the decision for the question. It never fails: a classifier
// error or panic degrades to intent.Fallback().
func (r *Router) Route(ctx context.Context, question string, convo conversation.Context) (d intent.Decision) {
	log := logger.FromContext(ctx)
	defer func() {
		if rec := recover(); rec != nil {
			log.Error("Intent classification panicked", zap.Any("panic", rec))
			d = intent.Fallback()
		}
	}()

	d, err := r.classify(question, convo)
	if err != nil {
		log.Warn("Intent classification failed, routing to both", zap.Error(err))
		return intent.Fallback()
	}

	log.Debug("Intent routed",
		zap.String("intent", string(d.Intent)),
		zap.Float64("confidence", d.Confidence),
	)
	return d
}

type scores struct {
	product float64
	outlet  float64
}

func (s scores) empty() bool { return s.product == 0 && s.outlet == 0 }

func classify(question string, convo conversation.Context) (intent.Decision, error) {
	s := score(question)
	if s.empty() && hasAnaphora(normalize(question)) {
		for _, prev := range convo.LastUserTexts(followUpTurns) {
			if ps := score(prev); !ps.empty() {
				return decide(ps, followUpDiscount)
			}
		}
	}
	return decide(s, 1)
}

func decide(s scores, discount float64) (intent.Decision, error) {
	hi, lo := math.Max(s.product, s.outlet), math.Min(s.product, s.outlet)

	switch {
	case lo > 0 && hi < dominance*lo:
		return intent.NewDecision(intent.Both, discount*(1-(hi-lo)/(hi+lo)))
	case s.product > s.outlet:
		return intent.NewDecision(intent.Product, discount*margin(s.product, s.outlet))
	case s.outlet > s.product:
		return intent.NewDecision(intent.Outlet, discount*margin(s.outlet, s.product))
	}
	// Equal non-zero scores are Both above, so only a question without cues is left.
	return intent.NewDecision(intent.Unsupported, unsupportedConfidence)
}

// margin maps a winning score to (0, 1): stronger and more lopsided evidence
// yields higher confidence.
func margin(win, lose float64) float64 {
	return (win - lose) / (win + 1)
}

func score(question string) scores {
	text := normalize(question)
	var s scores
	for cue, w := range productCues {
		if containsPhrase(text, cue) {
			s.product += w
		}
	}
	for cue, w := range outletCues {
		if containsPhrase(text, cue) {
			s.outlet += w
		}
	}
	if priceExpr.MatchString(question) || retrieval.ParsePriceRange(question) != nil {
		s.product += priceWeight
	}
	if placeExpr.MatchString(question) {
		s.outlet += placeWeight
	}
	return s
}

func hasAnaphora(text string) bool {
	for _, cue := range anaphoraCues {
		if containsPhrase(text, cue) {
			return true
		}
	}
	return false
}

// normalize lowercases and replaces punctuation (except hyphens) with spaces,
// padding the result so phrases can be matched on word boundaries.
func normalize(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 2)
	b.WriteByte(' ')
	space := true
	for _, r := range strings.ToLower(s) {
		if unicode.IsLetter(r) || unicode.IsDigit(r) || r == '-' {
			b.WriteRune(r)
			space = false
			continue
		}
		if !space {
			b.WriteByte(' ')
			space = true
		}
	}
	if !space {
		b.WriteByte(' ')
	}
	return b.String()
}

func containsPhrase(text, phrase string) bool {
	return strings.Contains(text, " "+phrase+" ")
}
