package enums

import "fmt"

// PlanModel states whether the contracted plan is residential or business.
type PlanModel string

const (
	PlanModelCPF  PlanModel = "CPF"
	PlanModelCNPJ PlanModel = "CNPJ"
)

var validPlanModels = []PlanModel{PlanModelCPF, PlanModelCNPJ}

func (p PlanModel) String() string {
	return string(p)
}

func (p PlanModel) IsValid() bool {
	for _, candidate := range validPlanModels {
		if candidate == p {
			return true
		}
	}
	return false
}

// ParsePlanModel converts raw input into a PlanModel.
func ParsePlanModel(value string) (PlanModel, error) {
	for _, candidate := range validPlanModels {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid plan model %q", value)
}
