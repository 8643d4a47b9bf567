package repositories

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

// upsert executes an INSERT ... ON CONFLICT statement and checks that a row was written.
func upsert(ctx context.Context, db *sql.DB, query string, args ...any) error {
	result, err := db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get affected rows: %w", err)
	}
	if rows == 0 {
		return fmt.Errorf("no rows written")
	}
	return nil
}

func now() time.Time {
	return time.Now().UTC()
}
