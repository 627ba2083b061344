package brewdesk

// Product is one prebuilt corpus chunk. Embedding must have the dimension
// given to WithEmbedder.
type Product struct {
	ID        string
	Text      string
	Embedding []float32
	// Metadata may carry "price" ("RM 55.00") for price-range questions.
	Metadata map[string]string
}

// Outlet is one store location in the scraped fixture shape.
type Outlet struct {
	ID       string
	Name     string
	Address  string
	MapsURL  string
	Services []string
	// OpeningHours maps day names to ranges such as "8 am–9:40 pm" or "Closed".
	OpeningHours map[string]string
}

// Turn is one prior utterance; Role is "user" or "assistant".
type Turn struct {
	Role string
	Text string
}

// Answer is the result of one question.
type Answer struct {
	ID           string
	Text         string
	Intent       string // product, outlet, both, unsupported
	Confidence   float64
	EvidenceRefs []string
	// Degraded is set when a retrieval branch failed or the fallback answer was used.
	Degraded  bool
	Generated bool
}
