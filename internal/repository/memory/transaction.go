package memory

import (
	"context"

	"folio/internal/domain/repositories"
)

// TransactionManager runs fn directly. In-memory repositories apply each
// write immediately, so nothing is rolled back when fn fails.
type TransactionManager struct{}

// NewTransactionManager creates a pass-through transaction manager.
func NewTransactionManager() repositories.TransactionManager {
	return TransactionManager{}
}

// ExecTx calls fn with ctx.
func (TransactionManager) ExecTx(ctx context.Context, fn repositories.TxFn) error {
	return fn(ctx)
}
