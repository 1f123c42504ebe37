package drawer

import (
	"time"

	"github.com/askiada/go-flow/pkg/pipeline/measure"
)

// Drawer is an interface that defines the methods for drawing a pipeline.
type Drawer interface {
	// AddStep adds a step to the pipeline drawer. Adding a step twice is not an error.
	AddStep(stepName string) error
	// AddLink adds a link between parent and child steps. Adding a link twice is not an error.
	AddLink(parentStepName, childStepName string) error
	// Draw writes the pipeline graph.
	Draw() error
	// SetTotalTime sets the total time for the step.
	SetTotalTime(stepName string, totalTime time.Duration) error
	// AddMeasure adds a measure to the pipeline drawer.
	AddMeasure(measure measure.Measure) error
}
