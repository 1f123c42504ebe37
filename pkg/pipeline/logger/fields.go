package logger

import (
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/askiada/go-flow/pkg/pipeline/model"
)

func RunFields(id uuid.UUID) logrus.Fields {
	return logrus.Fields{"run_id": id.String()}
}

func StepFields(step *model.StepInfo) logrus.Fields {
	fields := logrus.Fields{
		"run_id": step.RunID.String(),
		"step":   step.Name,
		"path":   step.Path,
		"kind":   string(step.Kind),
	}
	if step.Branch >= 0 {
		fields["branch"] = step.Branch
	}

	return fields
}
