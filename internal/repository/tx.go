package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// withTx выполняет fn внутри одной транзакции: мутация узла и весь
// каскад по потомкам фиксируются одним коммитом либо откатываются
// целиком. Снимок Postgres — единственная точка фиксации, читатель
// не увидит наполовину переименованное поддерево.
func withTx(ctx context.Context, db *sqlx.DB, fn func(tx *sqlx.Tx) error) error {
	tx, err := db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}

	return tx.Commit()
}
