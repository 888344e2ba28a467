// Package workers runs the agent's background components as one unit.
//
// The sync engine, the periodic sync job and the reachability prober all
// implement [Worker]; [Workers] starts them in order and stops them in
// reverse order so that a component never outlives the ones it depends on.
package workers

import "context"

// Worker is a background component with an explicit lifecycle.
//
// Start must return once the component is running; the work itself happens
// in goroutines owned by the worker. Stop must block until those goroutines
// have exited and must be safe to call more than once.
type Worker interface {
	Start(ctx context.Context) error
	Stop()
}
