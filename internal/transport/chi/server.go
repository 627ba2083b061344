package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/brewdesk/internal/domain"
	"github.com/kailas-cloud/brewdesk/internal/domain/conversation"
	answeruc "github.com/kailas-cloud/brewdesk/internal/usecase/answer"
	healthuc "github.com/kailas-cloud/brewdesk/internal/usecase/health"
)

const (
	maxBodyBytes    = 64 << 10
	maxRecentTurns  = 20
	maxSummaryChars = 4000
)

// Answerer answers one question.
type Answerer interface {
	Answer(ctx context.Context, req answeruc.Request) (answeruc.Response, error)
}

// HealthReporter aggregates dependency health.
type HealthReporter interface {
	Check(ctx context.Context) healthuc.Report
}

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error) bool

// Server holds the HTTP handlers.
type Server struct {
	answers       Answerer
	health        HealthReporter
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates an HTTP API server.
func NewServer(answers Answerer, health HealthReporter, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		answers: answers,
		health:  health,
		logger:  logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrInvalidArgument, http.StatusBadRequest, ErrorCodeInvalidArgument),
		sentinelHandler(domain.ErrSchemaViolation, http.StatusInternalServerError, ErrorCodeSchemaViolation),
		sentinelHandler(domain.ErrDimensionMismatch, http.StatusInternalServerError, ErrorCodeDimensionMismatch),
		sentinelHandler(domain.ErrSchemaVersionMismatch,
			http.StatusInternalServerError, ErrorCodeSchemaVersionMismatch),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, ErrorCodeEmbeddingProviderError),
	}
	return s
}

// Answer handles POST /v1/answer.
func (s *Server) Answer(w http.ResponseWriter, r *http.Request) {
	var body AnswerRequest
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err := dec.Decode(&body); err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "Invalid request body")
		return
	}

	req, err := answerRequestFromAPI(body)
	if err != nil {
		writeError(w, http.StatusBadRequest, ErrorCodeInvalidArgument, err.Error())
		return
	}

	resp, err := s.answers.Answer(r.Context(), req)
	if err != nil {
		s.handleDomainError(r.Context(), w, err)
		return
	}

	writeJSON(w, http.StatusOK, answerResponseToAPI(resp))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status: string(report.Status),
		Checks: checks,
	})
}

func answerRequestFromAPI(body AnswerRequest) (answeruc.Request, error) {
	if len(body.RecentTurns) > maxRecentTurns {
		return answeruc.Request{}, fmt.Errorf("recent_turns: at most %d turns allowed", maxRecentTurns)
	}
	if len([]rune(body.ConversationSummary)) > maxSummaryChars {
		return answeruc.Request{}, fmt.Errorf("conversation_summary: at most %d characters allowed", maxSummaryChars)
	}

	turns := make([]conversation.Turn, 0, len(body.RecentTurns))
	for i, t := range body.RecentTurns {
		role := conversation.Role(t.Role)
		if role != conversation.User && role != conversation.Assistant {
			return answeruc.Request{}, fmt.Errorf("recent_turns[%d].role: must be user or assistant", i)
		}
		turns = append(turns, conversation.Turn{Role: role, Text: t.Text})
	}

	return answeruc.Request{
		Question: body.Question,
		Summary:  body.ConversationSummary,
		Turns:    turns,
	}, nil
}

func answerResponseToAPI(resp answeruc.Response) AnswerResponse {
	refs := resp.EvidenceRefs
	if refs == nil {
		refs = []string{}
	}
	return AnswerResponse{
		ID:           resp.ID,
		Answer:       resp.Answer,
		UsedIntent:   string(resp.UsedIntent),
		EvidenceRefs: refs,
		Degraded:     resp.Degraded,
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
// Invalid arguments echo the full message; other sentinels expose only their own text.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		msg := sentinel.Error()
		if errors.Is(sentinel, domain.ErrInvalidArgument) {
			msg = err.Error()
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(ctx context.Context, w http.ResponseWriter, err error) {
	log := s.logger.With(zap.String("request_id", chiMiddleware.GetReqID(ctx)))
	for _, h := range s.errorHandlers {
		if h(w, err) {
			if errors.Is(err, domain.ErrInvalidArgument) {
				log.Info("Rejected request", zap.Error(err))
			} else {
				log.Error("Answer failed", zap.Error(err))
			}
			return
		}
	}
	log.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}
