package evaluation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNext_ValidTransitions(t *testing.T) {
	tests := []struct {
		state  State
		signal Signal
		want   State
	}{
		{StateAskQuestion, SignalQuestionAsked, StateAwaitResponse},
		{StateAwaitResponse, SignalResponseReceived, StateAnalyzeResponse},
		{StateAnalyzeResponse, SignalContinue, StateAskQuestion},
		{StateAnalyzeResponse, SignalFinish, StateDetermineLevel},
		{StateDetermineLevel, SignalLevelDetermined, StateTerminal},
	}

	for _, tt := range tests {
		t.Run(tt.state.String()+"_"+tt.signal.String(), func(t *testing.T) {
			got, err := Next(tt.state, tt.signal)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestNext_InvalidTransitions(t *testing.T) {
	tests := []struct {
		state  State
		signal Signal
	}{
		{StateAskQuestion, SignalResponseReceived},
		{StateAwaitResponse, SignalQuestionAsked},
		{StateAwaitResponse, SignalContinue},
		{StateAnalyzeResponse, SignalQuestionAsked},
		{StateTerminal, SignalContinue},
		{StateTerminal, SignalQuestionAsked},
	}

	for _, tt := range tests {
		t.Run(tt.state.String()+"_"+tt.signal.String(), func(t *testing.T) {
			got, err := Next(tt.state, tt.signal)
			assert.ErrorIs(t, err, ErrInvalidTransition)
			assert.Equal(t, tt.state, got)
		})
	}
}

func TestParseLevel(t *testing.T) {
	for _, valid := range []string{"novice", "advanced_beginner", "competent", "proficient", "expert"} {
		level, ok := ParseLevel(valid)
		assert.True(t, ok)
		assert.Equal(t, Level(valid), level)
	}

	_, ok := ParseLevel("grandmaster")
	assert.False(t, ok)
	_, ok = ParseLevel("")
	assert.False(t, ok)
}
