package repositories

import "context"

// TxFn runs inside a unit of work; repositories pick the tx up from ctx
type TxFn func(ctx context.Context) error

// TransactionManager runs a read-check-write sequence on content atomically
type TransactionManager interface {
	ExecTx(ctx context.Context, fn TxFn) error
}
