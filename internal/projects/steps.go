package projects

// StepDefinition describes one of the fixed regulatory milestones every
// project passes through.
type StepDefinition struct {
	ID          int    `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
}

// StepDefinitions is the universal 8-step approval workflow. The order is
// fixed and the table is never mutated at runtime.
var StepDefinitions = []StepDefinition{
	{ID: 1, Title: "Application Submitted", Description: "Submit initial application to GEDA"},
	{ID: 2, Title: "GEDA Letter", Description: "Receive approval letter from GEDA"},
	{ID: 3, Title: "Document Verified", Description: "Verify all required documentation"},
	{ID: 4, Title: "Feasibility Approved", Description: "Technical feasibility check and approval"},
	{ID: 5, Title: "CEI Approval", Description: "Chief Electrical Inspector approval"},
	{ID: 6, Title: "Work Starts", Description: "Initiation of installation work"},
	{ID: 7, Title: "CEI Inspection", Description: "Final inspection by Chief Electrical Inspector"},
	{ID: 8, Title: "Meter Installation", Description: "Submit meter installation application"},
}

// ValidStepID reports whether id names one of the fixed workflow steps.
func ValidStepID(id int) bool {
	return id >= 1 && id <= len(StepDefinitions)
}

// NewSteps returns a fresh, all-incomplete step list, one entry per
// definition and in definition order.
func NewSteps() []ProjectStep {
	steps := make([]ProjectStep, len(StepDefinitions))
	for i, def := range StepDefinitions {
		steps[i] = ProjectStep{StepID: def.ID}
	}
	return steps
}
