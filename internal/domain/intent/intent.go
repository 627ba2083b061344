package intent

import "fmt"

// Intent is the answering path chosen for a question.
type Intent string

// Intents.
const (
	Product     Intent = "product"
	Outlet      Intent = "outlet"
	Both        Intent = "both"
	Unsupported Intent = "unsupported"
)

// Valid reports whether i is a known intent.
func (i Intent) Valid() bool {
	switch i {
	case Product, Outlet, Both, Unsupported:
		return true
	}
	return false
}

// WantsProducts reports whether the product branch should run.
func (i Intent) WantsProducts() bool { return i == Product || i == Both }

// WantsOutlets reports whether the outlet branch should run.
func (i Intent) WantsOutlets() bool { return i == Outlet || i == Both }

// Decision is the router output.
type Decision struct {
	Intent     Intent
	Confidence float64
}

// NewDecision validates the intent and clamps confidence into [0, 1].
func NewDecision(i Intent, confidence float64) (Decision, error) {
	if !i.Valid() {
		return Decision{}, fmt.Errorf("unknown intent %q", i)
	}
	if confidence < 0 || confidence != confidence {
		confidence = 0
	}
	if confidence > 1 {
		confidence = 1
	}
	return Decision{Intent: i, Confidence: confidence}, nil
}

// Fallback is the decision used when classification fails: over-retrieve.
func Fallback() Decision { return Decision{Intent: Both} }
