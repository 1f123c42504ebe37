// Package logger logs pipeline runs and steps with logrus.
package logger

import (
	"time"

	"github.com/sirupsen/logrus"

	"github.com/askiada/go-flow/pkg/pipeline/model"
)

type pipelineLogger struct {
	log logrus.FieldLogger
}

// PipelineLogger returns an option logging every run and step to log. The engine uses the same
// logger for its own warnings.
func PipelineLogger(log logrus.FieldLogger) model.PipelineOption {
	return &pipelineLogger{log: log}
}

func (pl *pipelineLogger) New() error {
	return nil
}

func (pl *pipelineLogger) Logger() logrus.FieldLogger {
	return pl.log
}

func (pl *pipelineLogger) BeforeRun(run *model.RunInfo) error {
	pl.log.WithFields(RunFields(run.ID)).Info("pipeline started")

	return nil
}

func (pl *pipelineLogger) BeforeStep(parentStep, step *model.StepInfo) error {
	pl.log.WithFields(StepFields(step)).WithField("parent", parentStep.Name).Debug("step started")

	return nil
}

func (pl *pipelineLogger) AfterStep(step *model.StepInfo, elapsed time.Duration, err error) error {
	entry := pl.log.WithFields(StepFields(step)).WithField("elapsed", elapsed.String())
	if err != nil {
		entry.WithError(err).Warn("step failed")

		return nil
	}
	entry.Debug("step done")

	return nil
}

func (pl *pipelineLogger) Finish(run *model.RunInfo) error {
	entry := pl.log.WithFields(RunFields(run.ID)).WithField("elapsed", run.Elapsed.String())
	if run.Err != nil {
		entry.WithError(run.Err).Error("pipeline failed")

		return nil
	}
	entry.Info("pipeline finished")

	return nil
}

var _ model.LoggerProvider = (*pipelineLogger)(nil)
