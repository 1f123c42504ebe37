package measure

import (
	"time"

	"github.com/askiada/go-flow/pkg/pipeline/model"
)

type pipelineMeasure struct {
	Measure
}

func (pm *pipelineMeasure) New() error {
	pm.AddMetric(model.StartStep.Name)
	pm.AddMetric(model.EndStep.Name)

	return nil
}

func (pm *pipelineMeasure) BeforeRun(run *model.RunInfo) error {
	return nil
}

func (pm *pipelineMeasure) BeforeStep(parentStep, step *model.StepInfo) error {
	pm.AddMetric(step.Name)

	return nil
}

func (pm *pipelineMeasure) AfterStep(step *model.StepInfo, elapsed time.Duration, err error) error {
	mt := pm.AddMetric(step.Name)
	mt.AddDuration(elapsed)
	if err != nil {
		mt.AddFailure()
	}

	return nil
}

func (pm *pipelineMeasure) Finish(run *model.RunInfo) error {
	mt := pm.AddMetric(model.EndStep.Name)
	mt.AddDuration(run.Elapsed)
	mt.SetTotalDuration(run.Elapsed)
	if run.Err != nil {
		mt.AddFailure()
	}

	return nil
}

// PipelineMeasure returns an option recording step durations into measure.
func PipelineMeasure(measure Measure) model.PipelineOption {
	return &pipelineMeasure{measure}
}
