package evaluation

import (
	"errors"
	"fmt"
)

// ErrInvalidTransition is returned by Next for a state/signal pair the
// machine does not define.
var ErrInvalidTransition = errors.New("evaluation: invalid state transition")

// State is a node in the evaluation state machine.
type State int

const (
	// StateAskQuestion generates and records the next question.
	StateAskQuestion State = iota
	// StateAwaitResponse is the suspension point: the machine yields to the
	// caller and waits for the next user message.
	StateAwaitResponse
	// StateAnalyzeResponse analyzes the latest response and merges its
	// strengths and weaknesses into the run.
	StateAnalyzeResponse
	// StateDetermineLevel produces the terminal classification. This state
	// cannot fail the run.
	StateDetermineLevel
	// StateTerminal is the final state; no further transitions exist.
	StateTerminal
)

// String returns the state name.
func (s State) String() string {
	switch s {
	case StateAskQuestion:
		return "ask_question"
	case StateAwaitResponse:
		return "await_response"
	case StateAnalyzeResponse:
		return "analyze_response"
	case StateDetermineLevel:
		return "determine_level"
	case StateTerminal:
		return "terminal"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Signal is an event driving a state transition.
type Signal int

const (
	// SignalQuestionAsked fires after a question has been generated.
	SignalQuestionAsked Signal = iota
	// SignalResponseReceived fires when the caller delivers a user response.
	SignalResponseReceived
	// SignalContinue fires when analysis decides another question is needed.
	SignalContinue
	// SignalFinish fires when the question budget is spent or analysis
	// signals early finish.
	SignalFinish
	// SignalLevelDetermined fires once the terminal level exists.
	SignalLevelDetermined
)

// String returns the signal name.
func (s Signal) String() string {
	switch s {
	case SignalQuestionAsked:
		return "question_asked"
	case SignalResponseReceived:
		return "response_received"
	case SignalContinue:
		return "continue"
	case SignalFinish:
		return "finish"
	case SignalLevelDetermined:
		return "level_determined"
	default:
		return fmt.Sprintf("unknown(%d)", int(s))
	}
}

// Next is the pure transition function. It holds the complete transition
// table and has no side effects, so the machine's shape is testable without
// any orchestration in place.
func Next(state State, signal Signal) (State, error) {
	switch {
	case state == StateAskQuestion && signal == SignalQuestionAsked:
		return StateAwaitResponse, nil
	case state == StateAwaitResponse && signal == SignalResponseReceived:
		return StateAnalyzeResponse, nil
	case state == StateAnalyzeResponse && signal == SignalContinue:
		return StateAskQuestion, nil
	case state == StateAnalyzeResponse && signal == SignalFinish:
		return StateDetermineLevel, nil
	case state == StateDetermineLevel && signal == SignalLevelDetermined:
		return StateTerminal, nil
	default:
		return state, fmt.Errorf("%w: %s on %s", ErrInvalidTransition, signal, state)
	}
}
