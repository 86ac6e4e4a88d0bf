package model

// Plan identifiers
const (
	PlanPro   = "pro"
	PlanMax5  = "max5"
	PlanMax20 = "max20"
)

// PlanDefinition is a named subscription tier and its token quota per window
type PlanDefinition struct {
	Name        string
	DisplayName string
	TokenLimit  int
}

// The max5 limit anchors the table; pro and max20 are the literal 1/5 and 4x
// multiples the tier names imply.
var planTable = map[string]PlanDefinition{
	PlanPro:   {Name: PlanPro, DisplayName: "Pro", TokenLimit: 17600000},
	PlanMax5:  {Name: PlanMax5, DisplayName: "Max 5x", TokenLimit: 88000000},
	PlanMax20: {Name: PlanMax20, DisplayName: "Max 20x", TokenLimit: 352000000},
}

// planOrder fixes menu and help ordering
var planOrder = []string{PlanPro, PlanMax5, PlanMax20}

// FindPlan looks up a plan by identifier
func FindPlan(name string) (PlanDefinition, bool) {
	plan, ok := planTable[name]
	return plan, ok
}

// PlanOrDefault returns the named plan, falling back to max5 for unknown
// identifiers
func PlanOrDefault(name string) PlanDefinition {
	if plan, ok := planTable[name]; ok {
		return plan
	}
	return planTable[PlanMax5]
}

// Plans returns all plan definitions in display order
func Plans() []PlanDefinition {
	out := make([]PlanDefinition, 0, len(planOrder))
	for _, name := range planOrder {
		out = append(out, planTable[name])
	}
	return out
}

// PlanAfter returns the plan following name in display order, wrapping
// around at the end. Unknown names cycle to the first plan.
func PlanAfter(name string) PlanDefinition {
	for i, candidate := range planOrder {
		if candidate == name {
			return planTable[planOrder[(i+1)%len(planOrder)]]
		}
	}
	return planTable[planOrder[0]]
}
