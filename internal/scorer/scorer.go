// Package scorer judges whether a posting aligns with a user profile via the
// reasoning service. The design is fail-closed: anything short of a clear
// affirmative resolves to not-aligned, so scorer trouble never produces a
// notification.
package scorer

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/campusnotify/noticecrawl/internal/domain"
	"github.com/campusnotify/noticecrawl/internal/llm"
	"github.com/campusnotify/noticecrawl/internal/logger"
)

// Reason tags for non-affirmative outcomes.
const (
	ReasonNoProfile       = "no-profile"
	ReasonDisabled        = "openai-disabled"
	ReasonError           = "openai-error"
	ReasonInvalidResponse = "openai-invalid-response"
	ReasonNoAnswer        = "no-answer"
)

// alignmentSystemPrompt pins the reasoning service to a binary verdict.
const alignmentSystemPrompt = "You are an alignment checker. Respond only YES or NO."

// Scorer is the relevance-scoring contract consumed by the pipeline.
type Scorer interface {
	Score(ctx context.Context, profileText, title, link string) domain.ScoreResult
}

// LLMScorer implements Scorer against the reasoning service.
type LLMScorer struct {
	completer llm.Completer
	log       logger.Interface
}

var _ Scorer = (*LLMScorer)(nil)

// New wires the scorer. A nil completer means the service is unconfigured;
// every posting then scores not-aligned with ReasonDisabled.
func New(completer llm.Completer, log logger.Interface) *LLMScorer {
	return &LLMScorer{completer: completer, log: log}
}

// Score asks for a YES/NO verdict on one (profile, posting) pair.
func (s *LLMScorer) Score(ctx context.Context, profileText, title, link string) domain.ScoreResult {
	if strings.TrimSpace(profileText) == "" {
		return domain.ScoreResult{Aligned: false, Reason: ReasonNoProfile}
	}
	if s.completer == nil {
		return domain.ScoreResult{Aligned: false, Reason: ReasonDisabled}
	}

	prompt := fmt.Sprintf(`Candidate profile:
%s

Notice title: %s
Notice link: %s

Does this notice strongly align with the candidate's interests and background? Reply with exactly YES or NO.`,
		profileText, title, link)

	answer, err := s.completer.Complete(ctx, alignmentSystemPrompt, prompt)
	if err != nil {
		s.log.Error("alignment scoring failed", "title", title, "error", err)
		if errors.Is(err, llm.ErrInvalidResponse) {
			return domain.ScoreResult{Aligned: false, Reason: ReasonInvalidResponse}
		}
		if errors.Is(err, llm.ErrDisabled) {
			return domain.ScoreResult{Aligned: false, Reason: ReasonDisabled}
		}
		return domain.ScoreResult{Aligned: false, Reason: ReasonError}
	}

	verdict := strings.ToUpper(strings.TrimSpace(answer))
	switch {
	case strings.HasPrefix(verdict, "YES"):
		return domain.ScoreResult{Aligned: true, Reason: verdict}
	case strings.HasPrefix(verdict, "NO"):
		return domain.ScoreResult{Aligned: false, Reason: verdict}
	case verdict == "":
		return domain.ScoreResult{Aligned: false, Reason: ReasonNoAnswer}
	default:
		s.log.Warn("alignment answer was not YES/NO", "title", title, "answer", verdict)
		return domain.ScoreResult{Aligned: false, Reason: verdict}
	}
}
