package repository

import (
	"context"

	"gorm.io/gorm"

	"github.com/tailorcraft/payment-service/internal/domain/repository"
)

type txKey struct{}

// transactionManager carries an open gorm transaction through the
// context so the repositories in this package join it transparently.
type transactionManager struct {
	db *gorm.DB
}

func NewTransactionManager(db *gorm.DB) repository.TransactionManager {
	return &transactionManager{db: db}
}

func (tm *transactionManager) RunInTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return tm.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return fn(context.WithValue(ctx, txKey{}, tx))
	})
}

// extractTx returns the transaction carried by ctx, or fallback when
// the caller is not inside one.
func extractTx(ctx context.Context, fallback *gorm.DB) *gorm.DB {
	if tx, ok := ctx.Value(txKey{}).(*gorm.DB); ok {
		return tx
	}
	return fallback
}
