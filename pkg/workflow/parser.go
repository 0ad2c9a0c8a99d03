package workflow

import (
	"errors"
	"fmt"

	"github.com/leadforge/leadforge/pkg/model"
)

const (
	StepCreateActivity = "create_activity"
	StepUpdateField    = "update_field"
	StepNotify         = "notify"
	StepWait           = "wait"
)

var stepTypes = map[string]struct{}{
	StepCreateActivity: {},
	StepUpdateField:    {},
	StepNotify:         {},
	StepWait:           {},
}

var ErrNoSteps = errors.New("workflow has no steps")

type StepSpec struct {
	StepType   string                 `json:"step_type"`
	Config     map[string]interface{} `json:"config"`
	Conditions map[string]interface{} `json:"conditions"`
}

// ParseSteps validates a workflow create request's step list and assigns
// step order by position.
func ParseSteps(specs []StepSpec) ([]model.WorkflowStep, error) {
	if len(specs) == 0 {
		return nil, ErrNoSteps
	}

	steps := make([]model.WorkflowStep, 0, len(specs))
	for i, spec := range specs {
		if _, ok := stepTypes[spec.StepType]; !ok {
			return nil, fmt.Errorf("step %d: unsupported step type %q", i, spec.StepType)
		}

		step := model.WorkflowStep{
			StepOrder:  i,
			StepType:   spec.StepType,
			Config:     model.JSONB(spec.Config),
			Conditions: model.JSONB(spec.Conditions),
		}
		if step.Config == nil {
			step.Config = model.JSONB{}
		}
		if step.Conditions == nil {
			step.Conditions = model.JSONB{}
		}
		steps = append(steps, step)
	}

	return steps, nil
}
