package drawer

import (
	"time"

	"github.com/pkg/errors"

	"github.com/askiada/go-flow/pkg/pipeline/measure"
	"github.com/askiada/go-flow/pkg/pipeline/model"
)

type pipelineDrawer struct {
	Drawer
	m measure.Measure
}

func (pd *pipelineDrawer) New() error {
	err := pd.AddStep(model.StartStep.Name)
	if err != nil {
		return errors.Wrap(err, "unable to add start step to drawer")
	}
	err = pd.AddStep(model.EndStep.Name)
	if err != nil {
		return errors.Wrap(err, "unable to add end step to drawer")
	}

	return nil
}

func (pd *pipelineDrawer) BeforeRun(run *model.RunInfo) error {
	return nil
}

func (pd *pipelineDrawer) BeforeStep(parentStep, step *model.StepInfo) error {
	err := pd.AddStep(step.Name)
	if err != nil {
		return err
	}

	return pd.AddLink(parentStep.Name, step.Name)
}

func (pd *pipelineDrawer) AfterStep(step *model.StepInfo, elapsed time.Duration, err error) error {
	return nil
}

func (pd *pipelineDrawer) Finish(run *model.RunInfo) error {
	if run.Last != nil {
		err := pd.AddLink(run.Last.Name, model.EndStep.Name)
		if err != nil {
			return errors.Wrap(err, "unable to link last step to end step")
		}
	}

	err := pd.SetTotalTime(model.EndStep.Name, run.Elapsed)
	if err != nil {
		return errors.Wrap(err, "unable to set total time")
	}

	if pd.m != nil {
		err = pd.AddMeasure(pd.m)
		if err != nil {
			return errors.Wrap(err, "unable to add measure")
		}
	}

	err = pd.Draw()
	if err != nil {
		return errors.Wrap(err, "unable to draw pipeline")
	}

	return nil
}

// PipelineDrawer returns an option drawing the steps of every run, coloured by measure when set.
func PipelineDrawer(drawer Drawer, measure measure.Measure) model.PipelineOption {
	return &pipelineDrawer{drawer, measure}
}
