// Package repository holds the SQL for every table. Each method runs on
// the transaction bound to ctx when there is one, otherwise on the pool.
package repository

import (
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"
)

// notFound tags a no-rows error with its table so the error handler can
// answer "<Entity> not found".
func notFound(table string, err error) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return fmt.Errorf("table:%s: %w", table, err)
	}
	return err
}
