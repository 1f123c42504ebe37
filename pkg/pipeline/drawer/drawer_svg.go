package drawer

import (
	"fmt"
	"io"
	"os"
	"sort"
	"sync"
	"text/template"
	"time"

	"github.com/dominikbraun/graph"
	"github.com/pkg/errors"
	"gopkg.in/go-playground/colors.v1" //nolint

	"github.com/askiada/go-flow/pkg/pipeline/measure"
)

// SVGDrawer draws the pipeline steps as a directed graph in the DOT language, ready to be
// rendered to SVG with graphviz.
type SVGDrawer struct {
	mu    sync.Mutex
	graph   graph.Graph[string, string]
	open    func() (io.WriteCloser, error)
	options []DOTOption
}

// DOTOption customises the DOT description written by Draw.
type DOTOption func(*description)

// NewSVGDrawer creates a drawer writing to the file svgFileName.
func NewSVGDrawer(svgFileName string, options ...DOTOption) *SVGDrawer {
	return &SVGDrawer{
		graph:   graph.New(graph.StringHash, graph.Directed()),
		options: options,
		open: func() (io.WriteCloser, error) {
			file, err := os.Create(svgFileName)
			if err != nil {
				return nil, errors.Wrapf(err, "unable to create file %s", svgFileName)
			}

			return file, nil
		},
	}
}

// NewWriterDrawer creates a drawer writing to wrt.
func NewWriterDrawer(wrt io.Writer, options ...DOTOption) *SVGDrawer {
	return &SVGDrawer{
		graph:   graph.New(graph.StringHash, graph.Directed()),
		options: options,
		open: func() (io.WriteCloser, error) {
			return nopCloser{wrt}, nil
		},
	}
}

type nopCloser struct {
	io.Writer
}

func (nopCloser) Close() error { return nil }

// AddStep adds a step to the pipeline graph.
func (d *SVGDrawer) AddStep(name string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	err := d.graph.AddVertex(name)
	if err != nil && !errors.Is(err, graph.ErrVertexAlreadyExists) {
		return errors.Wrap(err, "unable to add vertex")
	}

	return nil
}

// AddLink adds a link between parent and children steps.
func (d *SVGDrawer) AddLink(parentName, childrenName string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	err := d.graph.AddEdge(parentName, childrenName)
	if err != nil && !errors.Is(err, graph.ErrEdgeAlreadyExists) {
		return errors.Wrapf(err, "unable to add edge from %s to %s", parentName, childrenName)
	}

	return nil
}

// Draw writes the pipeline graph.
func (d *SVGDrawer) Draw() error {
	d.mu.Lock()
	defer d.mu.Unlock()

	wrt, err := d.open()
	if err != nil {
		return err
	}

	err = dot(d.graph, wrt, d.options...)
	if err != nil {
		_ = wrt.Close()

		return errors.Wrap(err, "unable to write dot graph")
	}

	return errors.Wrap(wrt.Close(), "unable to close dot graph")
}

// SetTotalTime sets the total time for the step.
func (d *SVGDrawer) SetTotalTime(stepName string, totalTime time.Duration) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	_, properties, err := d.graph.VertexWithProperties(stepName)
	if err != nil {
		return errors.Wrapf(err, "unable to get %s vertex properties", stepName)
	}

	properties.Attributes["xlabel"] = totalTime.String()

	return nil
}

const maxRGB = 240

// AddMeasure labels every step with its average duration and colours it from blue (fastest)
// to red (slowest).
func (d *SVGDrawer) AddMeasure(msr measure.Measure) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	metrics := msr.AllMetrics()

	var minValue, maxValue time.Duration
	first := true
	for _, mt := range metrics {
		avg := mt.AVGDuration()
		if avg == 0 {
			continue
		}
		if first || avg < minValue {
			minValue = avg
		}
		if first || avg > maxValue {
			maxValue = avg
		}
		first = false
	}

	for name, mt := range metrics {
		_, properties, err := d.graph.VertexWithProperties(name)
		if errors.Is(err, graph.ErrVertexNotFound) {
			continue
		}
		if err != nil {
			return errors.Wrap(err, "unable to get vertex properties")
		}

		avg := mt.AVGDuration()
		if avg == 0 {
			continue
		}

		label := fmt.Sprintf("%s x%d", avg, mt.Count())
		if failures := mt.Failures(); failures > 0 {
			label += fmt.Sprintf(", %d failed", failures)
		}
		if total := mt.GetTotalDuration(); total > 0 {
			label += ", end: " + total.String()
		}
		properties.Attributes["xlabel"] = label

		colour, err := heat(avg, minValue, maxValue)
		if err != nil {
			return err
		}
		properties.Attributes["color"] = colour
	}

	return nil
}

func heat(value, minValue, maxValue time.Duration) (string, error) {
	fraction := 1.0
	if maxValue > minValue {
		fraction = float64(value-minValue) / float64(maxValue-minValue)
	}

	red := maxRGB * fraction
	blue := maxRGB - red

	colour, err := colors.RGB(uint8(red), 0, uint8(blue)) //nolint
	if err != nil {
		return "", errors.Wrap(err, "unable to get colour")
	}

	return colour.ToHEX().String(), nil
}

//nolint:lll //this is a template
const dotTemplate = `strict {{.GraphType}} {
	{{range $k, $v := .Attributes}}
		{{$k}}="{{$v}}";
	{{end}}
	{{range $s := .Statements}}
		"{{.Source}}" {{if .Target}}{{$.EdgeOperator}} "{{.Target}}" [ {{range $k, $v := .EdgeAttributes}}{{$k}}="{{$v}}", {{end}} weight={{.EdgeWeight}} ]{{else}}[ {{range $k, $v := .HTMLAttributes}}{{$k}}={{$v}}, {{end}} {{range $k, $v := .SourceAttributes}}{{$k}}="{{$v}}", {{end}} weight={{.SourceWeight}} ]{{end}};
	{{end}}
	}
	`

type description struct {
	GraphType    string
	Attributes   map[string]string
	EdgeOperator string
	Statements   []statement
}

type statement struct {
	Source           string
	Target           string
	SourceAttributes map[string]string
	HTMLAttributes   map[string]string
	EdgeAttributes   map[string]string
	SourceWeight     int
	EdgeWeight       int
}

func dot(g graph.Graph[string, string], wrt io.Writer, options ...DOTOption) error {
	desc, err := generateDOT(g, options...)
	if err != nil {
		return errors.Wrap(err, "failed to generate DOT description")
	}

	return renderDOT(wrt, desc)
}

// GraphAttribute sets a graph level DOT attribute.
func GraphAttribute(key, value string) DOTOption {
	return func(d *description) {
		d.Attributes[key] = value
	}
}

// generateDOT describes the graph with vertices and edges in sorted order, so that the same
// pipeline always renders the same file.
func generateDOT(gra graph.Graph[string, string], options ...DOTOption) (description, error) {
	desc := description{
		GraphType:    "graph",
		Attributes:   make(map[string]string),
		EdgeOperator: "--",
		Statements:   make([]statement, 0),
	}

	for _, option := range options {
		option(&desc)
	}

	if gra.Traits().IsDirected {
		desc.GraphType = "digraph"
		desc.EdgeOperator = "->"
	}

	adjacencyMap, err := gra.AdjacencyMap()
	if err != nil {
		return desc, errors.Wrap(err, "unable to get adjacency map")
	}

	for _, vertex := range sortedKeys(adjacencyMap) {
		_, sourceProperties, err := gra.VertexWithProperties(vertex)
		if err != nil {
			return desc, errors.Wrap(err, "unable to get vertex properties")
		}

		attributes := make(map[string]string, len(sourceProperties.Attributes))
		htmlAttributes := make(map[string]string)
		for k, v := range sourceProperties.Attributes {
			if k == "xlabel" {
				htmlAttributes["label"] = fmt.Sprintf(`<%s <BR /> <FONT POINT-SIZE="12">%s</FONT>>`, vertex, v)

				continue
			}
			attributes[k] = v
		}

		desc.Statements = append(desc.Statements, statement{
			Source:           vertex,
			SourceWeight:     sourceProperties.Weight,
			SourceAttributes: attributes,
			HTMLAttributes:   htmlAttributes,
		})

		adjacencies := adjacencyMap[vertex]
		for _, adjacency := range sortedKeys(adjacencies) {
			edge := adjacencies[adjacency]
			desc.Statements = append(desc.Statements, statement{
				Source:         vertex,
				Target:         adjacency,
				EdgeWeight:     edge.Properties.Weight,
				EdgeAttributes: edge.Properties.Attributes,
			})
		}
	}

	return desc, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	return keys
}

func renderDOT(wrt io.Writer, desc description) error {
	tpl, err := template.New("dotTemplate").Parse(dotTemplate)
	if err != nil {
		return errors.Wrap(err, "failed to parse template")
	}

	err = tpl.Execute(wrt, desc)
	if err != nil {
		return errors.Wrap(err, "unable to execute template")
	}

	return nil
}

var _ Drawer = (*SVGDrawer)(nil)
