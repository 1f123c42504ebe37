package drawer

import (
	"sort"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"

	"github.com/askiada/go-flow/pkg/pipeline/measure"
	"github.com/askiada/go-flow/pkg/pipeline/model"
)

// Bottleneck is a step on the path from start to end with its average duration.
type Bottleneck struct {
	StepName string
	Avg      time.Duration
	Failures int64
}

// Bottlenecks returns the steps of the shortest path from start to end, slowest first.
func (d *SVGDrawer) Bottlenecks(msr measure.Measure) ([]Bottleneck, error) {
	d.mu.Lock()
	defer d.mu.Unlock()

	path, err := graph.ShortestPath(d.graph, model.StartStep.Name, model.EndStep.Name)
	if err != nil {
		return nil, errors.Wrap(err, "unable to find a path from start to end")
	}

	out := make([]Bottleneck, len(path))
	for i, stepName := range path {
		out[i] = Bottleneck{StepName: stepName}
		mt := msr.GetMetric(stepName)
		if mt == nil {
			continue
		}
		out[i].Avg = mt.AVGDuration()
		out[i].Failures = mt.Failures()
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Avg > out[j].Avg
	})

	return out, nil
}
