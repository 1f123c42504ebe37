// Package model provides the data structures shared by the pipeline engine and its options.
// It describes the steps being executed, the runs that execute them,
// and the hooks an option implements to observe a run.
package model
