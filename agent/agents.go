package agent

import (
	"github.com/hupe1980/agentcrew/completion"
	"github.com/hupe1980/agentcrew/core"
)

const charterInstruction = `You are a senior project management consultant specializing in project
initiation and planning. You produce project charters, work breakdown
structures and status reports in clean markdown. Be concrete: name
objectives, scope boundaries, milestones and owners. When the request
references a project id, tailor the output to that project.`

const riskInstruction = `You are a risk management specialist for projects. You produce risk
registers with probability, impact and mitigation columns, and stakeholder
maps with influence/interest classification. Rank entries by severity and
keep recommendations actionable.`

const costInstruction = `You are a project cost and schedule analyst. You produce cost estimates
with stated assumptions, budget breakdowns by category, and schedule
optimization recommendations. State figures as estimates with explicit
confidence ranges, never as guarantees.`

const generalInstruction = `You are a helpful project management assistant. Answer questions
conversationally and concisely. If a request would be better served by a
specialist deliverable (charter, risk register, cost estimate), say so and
ask for the details you would need.`

// NewCharterAgent covers project initiation: charters, work breakdown
// structures and status reports. Successful charter output is persisted as
// charter.md when a deliverable store is configured.
func NewCharterAgent(service completion.Service, optFns ...func(o *CompletionAgentOptions)) *CompletionAgent {
	caps := []core.Capability{
		core.CapabilityProjectCharter,
		core.CapabilityWBSCreation,
		core.CapabilityReportGeneration,
	}
	return NewCompletionAgent(
		"charter_agent",
		"Creates project charters, work breakdown structures and status reports",
		caps,
		service,
		StaticInstruction(charterInstruction),
		append([]func(o *CompletionAgentOptions){func(o *CompletionAgentOptions) {
			o.DeliverableName = "charter.md"
		}}, optFns...)...,
	)
}

// NewRiskAgent covers risk registers and stakeholder mapping.
func NewRiskAgent(service completion.Service, optFns ...func(o *CompletionAgentOptions)) *CompletionAgent {
	caps := []core.Capability{
		core.CapabilityRiskRegister,
		core.CapabilityStakeholderMapping,
	}
	return NewCompletionAgent(
		"risk_agent",
		"Analyzes project risks and maps stakeholders",
		caps,
		service,
		StaticInstruction(riskInstruction),
		append([]func(o *CompletionAgentOptions){func(o *CompletionAgentOptions) {
			o.DeliverableName = "risk_register.md"
		}}, optFns...)...,
	)
}

// NewCostAgent covers cost estimation, budget management and schedule
// optimization.
func NewCostAgent(service completion.Service, optFns ...func(o *CompletionAgentOptions)) *CompletionAgent {
	caps := []core.Capability{
		core.CapabilityCostEstimation,
		core.CapabilityBudgetManagement,
		core.CapabilityScheduleOptimization,
	}
	return NewCompletionAgent(
		"cost_agent",
		"Estimates costs, manages budgets and optimizes schedules",
		caps,
		service,
		StaticInstruction(costInstruction),
		append([]func(o *CompletionAgentOptions){func(o *CompletionAgentOptions) {
			o.DeliverableName = "cost_estimate.md"
		}}, optFns...)...,
	)
}

// NewGeneralAgent is the conversational catch-all. Every registry should
// have one so low-confidence and unmatched requests still get an answer.
func NewGeneralAgent(service completion.Service, optFns ...func(o *CompletionAgentOptions)) *CompletionAgent {
	caps := []core.Capability{core.CapabilityGeneralConversation}
	return NewCompletionAgent(
		"general_agent",
		"Handles general project management conversation",
		caps,
		service,
		StaticInstruction(generalInstruction),
		optFns...,
	)
}
