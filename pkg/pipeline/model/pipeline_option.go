package model

import (
	"time"

	"github.com/sirupsen/logrus"
)

// PipelineOption defines the interface for pipeline options.
type PipelineOption interface {
	// New initialises the pipeline option.
	New() error
	// BeforeRun runs before the first step of a run.
	BeforeRun(run *RunInfo) error

	pipelineStepOption

	// Finish runs once the run outcome is known, before it is reported to the caller.
	Finish(run *RunInfo) error
}

// pipelineStepOption defines the interface for step options at the pipeline level.
type pipelineStepOption interface {
	// BeforeStep runs before the step is executed. parentStep is the step that handed control to
	// step: the previous step of the level, the enclosing nested or forking step, or StartStep.
	BeforeStep(parentStep, step *StepInfo) error
	// AfterStep runs when the step hands control back to the engine.
	AfterStep(step *StepInfo, elapsed time.Duration, err error) error
}

// LoggerProvider is implemented by options that hand a logger to the engine.
type LoggerProvider interface {
	Logger() logrus.FieldLogger
}
