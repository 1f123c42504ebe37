package model

import (
	"time"

	"github.com/google/uuid"
)

// StepKind tells how a step is executed.
type StepKind string

const (
	FuncStepKind       StepKind = "func"
	DescriptorStepKind StepKind = "descriptor"
	NestedStepKind     StepKind = "nested"
)

// StepInfo describes one invocation of a step.
type StepInfo struct {
	// RunID identifies the run the step belongs to.
	RunID uuid.UUID
	// ID is unique per invocation: a step visited by three fork branches gets three IDs.
	ID uuid.UUID
	// ParentID is the ID of the nested or forking step that started the level, uuid.Nil at the top.
	ParentID uuid.UUID
	// Path locates the step in the step tree, "1.0.2" being the third step of the first nested
	// list held at index 1 of the top level.
	Path string
	// Name is the descriptor name when one was set, the path otherwise.
	Name  string
	Kind  StepKind
	Index int
	Depth int
	// Branch is the fork item index, -1 outside a fork.
	Branch int
}

// RunInfo describes one execution of a top level step list.
type RunInfo struct {
	ID      uuid.UUID
	Started time.Time
	Elapsed time.Duration
	// Last is the last top level step that ran, nil when none did.
	Last *StepInfo
	Err  error
}

var (
	StartStep = &StepInfo{Name: "start", Path: "start", Branch: -1}
	EndStep   = &StepInfo{Name: "end", Path: "end", Branch: -1}
)
