// Package tx defines the transaction contract domain services depend
// on. The PostgreSQL implementation lives in
// infrastructure/storage/postgres.
package tx

import (
	"context"
)

// Manager runs a function inside a database transaction. An error
// from fn rolls the transaction back; nil commits it. Nested calls
// reuse the transaction already in context.
type Manager interface {
	RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}

// ReadOnlyManager extends Manager for queries that never write.
type ReadOnlyManager interface {
	Manager

	ReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}
