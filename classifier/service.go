package classifier

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/hupe1980/agentcrew/completion"
	"github.com/hupe1980/agentcrew/core"
	"github.com/hupe1980/agentcrew/internal/util"
	"github.com/hupe1980/agentcrew/logging"
)

// intentPayload is the structured output requested from the completion
// service during classification.
type intentPayload struct {
	Intent     string            `json:"intent" description:"one of the known intent kinds"`
	Confidence float64           `json:"confidence" description:"classification confidence between 0 and 1"`
	Parameters map[string]string `json:"parameters,omitempty" description:"extracted parameters such as project_id"`
	Reasoning  string            `json:"reasoning,omitempty" description:"short justification"`
}

// ServiceClassifierOptions configures a ServiceClassifier.
type ServiceClassifierOptions struct {
	// Timeout bounds the classification completion call.
	Timeout time.Duration
	// MaxHistoryMessages limits how much session history is folded into the
	// classification prompt for context.
	MaxHistoryMessages int
	// Logger (defaults to NoOp logger if nil).
	Logger logging.Logger
}

// ServiceClassifier classifies intent through the completion service with a
// deterministic heuristic fallback. Classify never fails: the external model
// is the only source of semantic understanding, but malformed output or an
// unavailable backend must not crash or block the routing layer.
type ServiceClassifier struct {
	svc      completion.Service
	fallback *Heuristic
	opts     ServiceClassifierOptions
}

// NewServiceClassifier constructs a classifier over the given completion service.
func NewServiceClassifier(svc completion.Service, optFns ...func(o *ServiceClassifierOptions)) *ServiceClassifier {
	opts := ServiceClassifierOptions{
		Timeout:            15 * time.Second,
		MaxHistoryMessages: 6,
		Logger:             logging.NoOpLogger{},
	}

	for _, fn := range optFns {
		fn(&opts)
	}

	return &ServiceClassifier{
		svc:      svc,
		fallback: NewHeuristic(),
		opts:     opts,
	}
}

// Classify converts user input plus conversational context into an Intent.
// The returned intent always carries a kind; parse and completion failures
// are recovered locally and never surfaced to the caller.
func (c *ServiceClassifier) Classify(ctx context.Context, userInput string, history []core.Message) core.Intent {
	raw, err := c.svc.Complete(ctx, completion.Request{
		Prompt:         c.buildPrompt(userInput, history),
		System:         classificationSystem,
		ResponseSchema: util.CreateSchema(intentPayload{}),
		Timeout:        c.opts.Timeout,
	})
	if err != nil {
		c.opts.Logger.Warn("intent classification completion failed, using heuristic", "error", err)
		return c.fallback.Classify(userInput)
	}

	var payload intentPayload
	if err := util.DecodeJSONObject(raw, &payload); err != nil || payload.Intent == "" {
		c.opts.Logger.Warn("intent classification returned malformed output, using heuristic", "error", err)
		return c.fallback.Classify(userInput)
	}

	intent := core.Intent{
		Kind:       payload.Intent,
		Confidence: clamp01(payload.Confidence),
		Parameters: payload.Parameters,
		Reasoning:  payload.Reasoning,
	}
	if intent.Parameters == nil {
		if params := ExtractParameters(userInput); len(params) > 0 {
			intent.Parameters = params
		}
	}
	return intent
}

const classificationSystem = `You classify project-management assistant requests into exactly one intent kind:
project_creation, document_generation, risk_analysis, stakeholder_management, schedule_management, budget_analysis, reporting, general.
Requests may be in English or Spanish.`

// buildPrompt folds a window of recent history into the classification
// prompt so follow-up messages classify in context.
func (c *ServiceClassifier) buildPrompt(userInput string, history []core.Message) string {
	var b strings.Builder
	if n := len(history); n > 0 {
		start := 0
		if n > c.opts.MaxHistoryMessages {
			start = n - c.opts.MaxHistoryMessages
		}
		b.WriteString("Recent conversation:\n")
		for _, m := range history[start:] {
			fmt.Fprintf(&b, "%s: %s\n", m.Role, m.Content)
		}
		b.WriteString("\n")
	}
	fmt.Fprintf(&b, "Classify this request: %s", userInput)
	return b.String()
}

func clamp01(v float64) float64 {
	switch {
	case v < 0:
		return 0
	case v > 1:
		return 1
	default:
		return v
	}
}
