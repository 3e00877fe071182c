package core

// Capability is a tagged skill an agent can perform. Capabilities are
// enumerated at build time; the routing layer maps classified intents onto
// exactly one capability and resolves it against the registry.
type Capability string

const (
	// CapabilityProjectCharter covers project charter generation.
	CapabilityProjectCharter Capability = "project_charter"
	// CapabilityWBSCreation covers work-breakdown-structure creation.
	CapabilityWBSCreation Capability = "wbs_creation"
	// CapabilityRiskRegister covers risk register generation.
	CapabilityRiskRegister Capability = "risk_register"
	// CapabilityStakeholderMapping covers stakeholder analysis and mapping.
	CapabilityStakeholderMapping Capability = "stakeholder_mapping"
	// CapabilityCostEstimation covers cost estimate generation.
	CapabilityCostEstimation Capability = "cost_estimation"
	// CapabilityBudgetManagement covers budget breakdowns and tracking.
	CapabilityBudgetManagement Capability = "budget_management"
	// CapabilityScheduleOptimization covers schedule analysis and optimization.
	CapabilityScheduleOptimization Capability = "schedule_optimization"
	// CapabilityReportGeneration covers status report generation.
	CapabilityReportGeneration Capability = "report_generation"
	// CapabilityGeneralConversation is the catch-all capability for requests
	// that match no specialist. Every registry should have at least one agent
	// advertising it.
	CapabilityGeneralConversation Capability = "general_conversation"
)

// String returns the string representation of the capability.
func (c Capability) String() string { return string(c) }
