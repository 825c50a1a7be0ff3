package repository

import "context"

// TransactionManager runs fn inside a single database transaction.
// The transaction travels in the context; repository methods invoked
// through that context participate in it, and any error from fn rolls
// the whole transaction back.
type TransactionManager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
