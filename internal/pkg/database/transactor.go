package database

import "context"

// Transactor runs fn as one unit of work. Store calls made with the context
// passed to fn join the transaction; fn's error rolls everything back.
type Transactor interface {
	WithinTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
