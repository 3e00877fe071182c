package classifier

import (
	"regexp"

	"github.com/hupe1980/agentcrew/core"
)

// Intent kinds produced by classification. The orchestrator's routing table
// is total over these; unknown kinds route to general conversation.
const (
	KindProjectCreation       = "project_creation"
	KindDocumentGeneration    = "document_generation"
	KindRiskAnalysis          = "risk_analysis"
	KindStakeholderManagement = "stakeholder_management"
	KindScheduleManagement    = "schedule_management"
	KindBudgetAnalysis        = "budget_analysis"
	KindReporting             = "reporting"
	KindGeneral               = "general"
)

// FallbackConfidence is the confidence assigned when no pattern matches and
// the input is classified as general conversation.
const FallbackConfidence = 0.5

// kindPattern is one weighted signal for an intent kind.
type kindPattern struct {
	kind   string
	weight float64
	re     *regexp.Regexp
}

// Patterns cover English and Spanish phrasing; the assistant's user base is
// bilingual.
var kindPatterns = []kindPattern{
	{KindProjectCreation, 0.9, regexp.MustCompile(`(?i)\b(create|new|start|crear|nuevo|iniciar)\b.*\b(project|proyecto)\b`)},
	{KindDocumentGeneration, 0.9, regexp.MustCompile(`(?i)\b(charter|acta)\b`)},
	{KindDocumentGeneration, 0.8, regexp.MustCompile(`(?i)\b(wbs|work breakdown|edt)\b`)},
	{KindDocumentGeneration, 0.6, regexp.MustCompile(`(?i)\b(document|documento|generate|generar)\b`)},
	{KindRiskAnalysis, 0.9, regexp.MustCompile(`(?i)\b(risk|risks|riesgo|riesgos)\b`)},
	{KindRiskAnalysis, 0.7, regexp.MustCompile(`(?i)\b(mitigat|conting)`)},
	{KindStakeholderManagement, 0.9, regexp.MustCompile(`(?i)\b(stakeholder|stakeholders|interesado|interesados)\b`)},
	{KindScheduleManagement, 0.8, regexp.MustCompile(`(?i)\b(schedule|timeline|cronograma|calendario)\b`)},
	{KindScheduleManagement, 0.6, regexp.MustCompile(`(?i)\b(milestone|deadline|hito|plazo)\b`)},
	{KindBudgetAnalysis, 0.9, regexp.MustCompile(`(?i)\b(budget|cost|costs|presupuesto|costo|costos)\b`)},
	{KindBudgetAnalysis, 0.7, regexp.MustCompile(`(?i)\b(estimate|estimation|estimaci[oó]n|estimar)\b`)},
	{KindReporting, 0.8, regexp.MustCompile(`(?i)\b(report|status|informe|reporte|estado)\b`)},
}

// projectIDPatterns extract a numeric project reference into parameters.
var projectIDPatterns = []*regexp.Regexp{
	regexp.MustCompile(`(?i)\bproyecto\s+(\d+)\b`),
	regexp.MustCompile(`(?i)\bproject\s+(\d+)\b`),
	regexp.MustCompile(`(?i)\bid\s+(\d+)\b`),
}

// Heuristic is the deterministic local fallback classifier. It never fails:
// input that matches no pattern yields {kind: general, confidence: 0.5}.
type Heuristic struct{}

// NewHeuristic constructs the fallback classifier.
func NewHeuristic() *Heuristic { return &Heuristic{} }

// Classify scores the input against the weighted pattern table and returns
// the best-scoring intent. Multiple matches for the same kind accumulate
// with diminishing returns so confidence stays in [0,1].
func (h *Heuristic) Classify(input string) core.Intent {
	scores := make(map[string]float64)
	for _, p := range kindPatterns {
		if p.re.MatchString(input) {
			// Accumulate toward 1.0 without exceeding it.
			scores[p.kind] = scores[p.kind] + (1-scores[p.kind])*p.weight
		}
	}

	kind := KindGeneral
	confidence := FallbackConfidence
	best := 0.0
	for k, score := range scores {
		if score > best || (score == best && k < kind) {
			kind = k
			best = score
			confidence = score
		}
	}

	intent := core.Intent{
		Kind:       kind,
		Confidence: confidence,
		Reasoning:  "keyword heuristic",
	}
	if params := ExtractParameters(input); len(params) > 0 {
		intent.Parameters = params
	}
	return intent
}

// ExtractParameters pulls structured parameters out of free-form input.
// Currently limited to a numeric project reference ("project 13",
// "proyecto 13", "id 7").
func ExtractParameters(input string) map[string]string {
	for _, re := range projectIDPatterns {
		if m := re.FindStringSubmatch(input); len(m) == 2 {
			return map[string]string{"project_id": m[1]}
		}
	}
	return nil
}
