package alerts

import "context"

type Notifier interface {
	// Notify — reports a failure in the named component to the ops channel
	Notify(ctx context.Context, component string, err error, details string) error
}
