package chi

// ErrorCode is a machine-readable error code returned in error bodies.
type ErrorCode string

// Error codes.
const (
	ErrorCodeBadRequest             ErrorCode = "bad_request"
	ErrorCodeInvalidArgument        ErrorCode = "invalid_argument"
	ErrorCodeUnauthorized           ErrorCode = "unauthorized"
	ErrorCodeSchemaViolation        ErrorCode = "schema_violation"
	ErrorCodeDimensionMismatch      ErrorCode = "dimension_mismatch"
	ErrorCodeSchemaVersionMismatch  ErrorCode = "schema_version_mismatch"
	ErrorCodeEmbeddingProviderError ErrorCode = "embedding_provider_error"
	ErrorCodeInternalError          ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx response.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// TurnPayload is one prior utterance supplied by the caller.
type TurnPayload struct {
	Role string `json:"role"`
	Text string `json:"text"`
}

// AnswerRequest is the body of POST /v1/answer.
type AnswerRequest struct {
	Question            string        `json:"question"`
	ConversationSummary string        `json:"conversation_summary,omitempty"`
	RecentTurns         []TurnPayload `json:"recent_turns,omitempty"`
}

// AnswerResponse is the body of a successful POST /v1/answer.
type AnswerResponse struct {
	ID           string   `json:"id"`
	Answer       string   `json:"answer"`
	UsedIntent   string   `json:"used_intent"`
	EvidenceRefs []string `json:"evidence_refs"`
	Degraded     bool     `json:"degraded"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
