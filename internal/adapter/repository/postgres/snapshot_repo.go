package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/simaogato/virtualcfo-backend/internal/domain"
)

// snapshotRepository implements domain.SnapshotRepository
type snapshotRepository struct {
	db *DB
}

// NewSnapshotRepository creates a new snapshot repository
func NewSnapshotRepository(db *DB) domain.SnapshotRepository {
	return &snapshotRepository{db: db}
}

// Save replaces every stored line item of the session in a single database transaction
// A session row is always written so an empty dataset can still be restored
func (r *snapshotRepository) Save(ctx context.Context, sessionID uuid.UUID, tables domain.Tables) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	upsertSessionQuery := `
		INSERT INTO statement_sessions (session_id, updated_at)
		VALUES ($1, NOW())
		ON CONFLICT (session_id) DO UPDATE SET updated_at = NOW()
	`
	if _, err := dbTx.ExecContext(ctx, upsertSessionQuery, sessionID); err != nil {
		return fmt.Errorf("failed to upsert session: %w", err)
	}

	for _, table := range []string{"statement_line_items", "statement_periods"} {
		if _, err := dbTx.ExecContext(ctx, "DELETE FROM "+table+" WHERE session_id = $1", sessionID); err != nil {
			return fmt.Errorf("failed to clear %s: %w", table, err)
		}
	}

	insertPeriodQuery := `
		INSERT INTO statement_periods (session_id, statement, period)
		VALUES ($1, $2, $3)
	`

	insertQuery := `
		INSERT INTO statement_line_items (session_id, statement, period, line_item, value)
		VALUES ($1, $2, $3, $4, $5)
	`

	for _, kind := range domain.StatementKinds {
		for period, items := range tables.Table(kind) {
			if _, err := dbTx.ExecContext(ctx, insertPeriodQuery, sessionID, string(kind), period.String()); err != nil {
				return fmt.Errorf("failed to insert period %s/%s: %w", kind, period, err)
			}
			for item, value := range items {
				_, err = dbTx.ExecContext(ctx, insertQuery,
					sessionID,
					string(kind),
					period.String(),
					string(item),
					value.String(),
				)
				if err != nil {
					return fmt.Errorf("failed to insert line item %s/%s/%s: %w", kind, period, item, err)
				}
			}
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// Get rebuilds the stored statements of a session
func (r *snapshotRepository) Get(ctx context.Context, sessionID uuid.UUID) (domain.Tables, error) {
	var exists bool
	err := r.db.QueryRowContext(ctx,
		`SELECT EXISTS (SELECT 1 FROM statement_sessions WHERE session_id = $1)`, sessionID,
	).Scan(&exists)
	if err != nil {
		return domain.Tables{}, fmt.Errorf("failed to query session: %w", err)
	}
	if !exists {
		return domain.Tables{}, fmt.Errorf("session %s: %w", sessionID, domain.ErrSessionNotFound)
	}

	tables := domain.Tables{
		Income:   make(domain.StatementTable),
		Balance:  make(domain.StatementTable),
		CashFlow: make(domain.StatementTable),
	}

	if err := r.loadPeriods(ctx, sessionID, tables); err != nil {
		return domain.Tables{}, err
	}

	query := `
		SELECT statement, period, line_item, value
		FROM statement_line_items
		WHERE session_id = $1
	`

	rows, err := r.db.QueryContext(ctx, query, sessionID)
	if err != nil {
		return domain.Tables{}, fmt.Errorf("failed to query line items: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var statementStr, periodStr, itemStr, valueStr string
		if err := rows.Scan(&statementStr, &periodStr, &itemStr, &valueStr); err != nil {
			return domain.Tables{}, fmt.Errorf("failed to scan line item: %w", err)
		}

		kind, err := domain.ParseStatementKind(statementStr)
		if err != nil {
			return domain.Tables{}, err
		}

		period, err := domain.ParsePeriod(periodStr)
		if err != nil {
			return domain.Tables{}, err
		}

		value, err := decimal.NewFromString(valueStr)
		if err != nil {
			return domain.Tables{}, fmt.Errorf("failed to parse value %q: %w", valueStr, err)
		}

		table := tables.Table(kind)
		row, ok := table[period]
		if !ok {
			row = make(map[domain.LineItem]decimal.Decimal)
			table[period] = row
		}
		row[domain.LineItem(itemStr)] = value
	}

	if err := rows.Err(); err != nil {
		return domain.Tables{}, fmt.Errorf("error iterating line items: %w", err)
	}

	return tables, nil
}

// Delete removes the session and all its line items
func (r *snapshotRepository) Delete(ctx context.Context, sessionID uuid.UUID) error {
	dbTx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer dbTx.Rollback()

	for _, table := range []string{"statement_line_items", "statement_periods", "statement_sessions"} {
		if _, err := dbTx.ExecContext(ctx, "DELETE FROM "+table+" WHERE session_id = $1", sessionID); err != nil {
			return fmt.Errorf("failed to delete from %s: %w", table, err)
		}
	}

	if err := dbTx.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	return nil
}

// loadPeriods registers every stored period, including periods whose rows are empty
func (r *snapshotRepository) loadPeriods(ctx context.Context, sessionID uuid.UUID, tables domain.Tables) error {
	rows, err := r.db.QueryContext(ctx,
		`SELECT statement, period FROM statement_periods WHERE session_id = $1`, sessionID)
	if err != nil {
		return fmt.Errorf("failed to query periods: %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var statementStr, periodStr string
		if err := rows.Scan(&statementStr, &periodStr); err != nil {
			return fmt.Errorf("failed to scan period: %w", err)
		}

		kind, err := domain.ParseStatementKind(statementStr)
		if err != nil {
			return err
		}
		period, err := domain.ParsePeriod(periodStr)
		if err != nil {
			return err
		}

		tables.Table(kind)[period] = make(map[domain.LineItem]decimal.Decimal)
	}

	if err := rows.Err(); err != nil {
		return fmt.Errorf("error iterating periods: %w", err)
	}
	return nil
}
