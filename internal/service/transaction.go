package service

import "context"

// TransactionManager runs state writes that must land together, such as a
// refund and the payment it updates, in a single transaction. A non-nil
// error from fn rolls everything back.
type TransactionManager interface {
	WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error
}
