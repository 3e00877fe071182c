package evaluation

import (
	"sort"
)

// Level is a Dreyfus-model competency classification.
type Level string

const (
	// LevelNovice is rule-based performance with no situational perception.
	LevelNovice Level = "novice"
	// LevelAdvancedBeginner recognizes recurring situational aspects.
	LevelAdvancedBeginner Level = "advanced_beginner"
	// LevelCompetent plans deliberately and prioritizes. Also the default
	// when the final classification cannot be parsed.
	LevelCompetent Level = "competent"
	// LevelProficient perceives situations holistically.
	LevelProficient Level = "proficient"
	// LevelExpert operates on deep tacit understanding.
	LevelExpert Level = "expert"
)

// DefaultLevel is used when the terminal classification payload cannot be
// parsed; DetermineLevel must never fail the run.
const DefaultLevel = LevelCompetent

// ParseLevel maps a raw string onto a known Level, reporting whether it
// matched.
func ParseLevel(s string) (Level, bool) {
	switch Level(s) {
	case LevelNovice, LevelAdvancedBeginner, LevelCompetent, LevelProficient, LevelExpert:
		return Level(s), true
	default:
		return "", false
	}
}

// Analysis is the per-turn output of the response analysis step.
type Analysis struct {
	EstimatedLevel Level    `json:"estimated_level" description:"one of novice, advanced_beginner, competent, proficient, expert"`
	Confidence     float64  `json:"confidence" description:"analysis confidence between 0 and 1"`
	Strengths      []string `json:"strengths,omitempty" description:"strengths demonstrated in the response"`
	Weaknesses     []string `json:"weaknesses,omitempty" description:"gaps or weaknesses in the response"`
}

// Turn is one question/response exchange. Analysis is nil until the response
// has been analyzed, and stays nil if the analysis payload could not be
// parsed.
type Turn struct {
	Question string
	Response string
	Analysis *Analysis
}

// Report is the terminal value of an evaluation run.
type Report struct {
	Level           Level    `json:"level"`
	Confidence      float64  `json:"confidence"`
	Strengths       []string `json:"strengths"`
	Weaknesses      []string `json:"weaknesses"`
	Recommendations []string `json:"recommendations,omitempty"`
	QuestionsAsked  int      `json:"questions_asked"`
}

// Run is the state of one evaluation. A run is owned by exactly one caller
// at a time and is never shared across workers, so it carries no lock;
// advancing it concurrently is a caller bug.
type Run struct {
	sessionID       string
	state           State
	questionCount   int
	maxQuestions    int
	turns           []Turn
	strengths       map[string]struct{}
	weaknesses      map[string]struct{}
	level           Level
	confidence      float64
	recommendations []string
}

// SessionID returns the session this run is bound to.
func (r *Run) SessionID() string { return r.sessionID }

// State returns the run's current machine state.
func (r *Run) State() State { return r.state }

// QuestionCount returns how many questions have been asked so far.
func (r *Run) QuestionCount() int { return r.questionCount }

// MaxQuestions returns the run's hard question bound.
func (r *Run) MaxQuestions() int { return r.maxQuestions }

// Turns returns a snapshot of the exchanges so far.
func (r *Run) Turns() []Turn {
	out := make([]Turn, len(r.turns))
	copy(out, r.turns)
	return out
}

// CurrentQuestion returns the most recent question, or "" before the first
// one is asked.
func (r *Run) CurrentQuestion() string {
	if len(r.turns) == 0 {
		return ""
	}
	return r.turns[len(r.turns)-1].Question
}

// Report builds the terminal report. Only meaningful once the run is in
// StateTerminal.
func (r *Run) Report() *Report {
	return &Report{
		Level:           r.level,
		Confidence:      r.confidence,
		Strengths:       sortedSet(r.strengths),
		Weaknesses:      sortedSet(r.weaknesses),
		Recommendations: r.recommendations,
		QuestionsAsked:  r.questionCount,
	}
}

// mergeAnalysis records the turn analysis and unions its strengths and
// weaknesses into the run. A finding identified once stays recorded.
func (r *Run) mergeAnalysis(a *Analysis) {
	if len(r.turns) > 0 {
		r.turns[len(r.turns)-1].Analysis = a
	}
	if a == nil {
		return
	}
	for _, s := range a.Strengths {
		r.strengths[s] = struct{}{}
	}
	for _, w := range a.Weaknesses {
		r.weaknesses[w] = struct{}{}
	}
}

func sortedSet(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for v := range set {
		out = append(out, v)
	}
	sort.Strings(out)
	return out
}
