package services

import (
	"gorm.io/gorm"

	"github.com/yungbote/clanhub-backend/internal/pkg/dbctx"
)

// inTx runs fn in a transaction, nesting as a savepoint when dbc already
// carries one.
func inTx(db *gorm.DB, dbc dbctx.Context, fn func(dbc dbctx.Context) error) error {
	run := func(tx *gorm.DB) error { return fn(dbc.WithTx(tx)) }
	if dbc.Tx != nil {
		return dbc.Tx.Transaction(run)
	}
	return dbc.Conn(db).Transaction(run)
}

const (
	defaultPageLimit = 50
	maxPageLimit     = 200
)

// NormalizePage applies the default and maximum page size.
func NormalizePage(limit, offset int) (int, int) {
	if limit <= 0 {
		limit = defaultPageLimit
	}
	if limit > maxPageLimit {
		limit = maxPageLimit
	}
	if offset < 0 {
		offset = 0
	}
	return limit, offset
}
