// Package pipeline provides a sequential pipeline execution engine.
//
// A pipeline is an ordered list of steps sharing a context of named values. Each step receives a
// Flow and tells the engine how to proceed: Next merges data into the context and runs the
// following step, Error aborts, Ignore skips the remaining steps, Fork runs the remaining steps
// once per item of a collection and Intercept registers a teardown callback run when the level
// completes.
//
// A Steps value used as a step runs as a nested level. It starts from a snapshot of the enclosing
// context and reports to the enclosing level only through its outcome: an error aborts the
// enclosing level, an ignore issued by its last step skips the enclosing level too.
//
// Steps written with Wrap declare the context values they need by name:
//
//	load := pipeline.Wrap(func(id string, f *pipeline.Flow) {
//		f.Next(pipeline.Data{"user": lookup(id)})
//	}, "id", "flow")
//
// The engine is continuation passing and single threaded per level: a step may call its flow
// from another goroutine once some asynchronous work is done, and nothing runs at that level in
// the meantime. Fork branches run one after the other unless ForkConcurrent is used.
package pipeline
