package ledger

import (
	"context"
	"database/sql"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	"github.com/iotmesh/datasink/cmn/cos"
	"github.com/iotmesh/datasink/orgcache"
)

// Row mirrors a single pending_burns row (spec §3).
type Row struct {
	Payer      orgcache.Payer
	Amount     int64
	LastBurnAt time.Time
}

// Store is the Postgres-backed pending_burns accumulator, reached through
// database/sql with pgx registered as the driver (jackc/pgx/v5/stdlib).
type Store struct {
	db *sql.DB
}

// Open connects to Postgres via the pgx stdlib driver and ensures the
// pending_burns table exists.
func Open(ctx context.Context, dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, cos.NewErrConfig("ledger.open", err)
	}
	if err := db.PingContext(ctx); err != nil {
		return nil, cos.NewErrConfig("ledger.ping", err)
	}
	s := &Store{db: db}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, err
	}
	return s, nil
}

// NewStore wraps an already-open *sql.DB, for tests against a driver
// other than pgx (e.g. sqlite) that still speaks database/sql.
func NewStore(db *sql.DB) *Store { return &Store{db: db} }

func (s *Store) ensureSchema(ctx context.Context) error {
	const ddl = `
CREATE TABLE IF NOT EXISTS pending_burns (
	payer_id     TEXT PRIMARY KEY,
	amount       BIGINT NOT NULL CHECK (amount >= 0),
	last_burn_at TIMESTAMPTZ NOT NULL
)`
	if _, err := s.db.ExecContext(ctx, ddl); err != nil {
		return cos.NewErrConfig("ledger.migrate", err)
	}
	return nil
}

func (s *Store) Close() error { return s.db.Close() }

// Burn implements spec §4.F "burn": upsert into pending_burns, adding to
// any existing amount and advancing last_burn_at to now.
func (s *Store) Burn(ctx context.Context, payer orgcache.Payer, amount int64) error {
	const q = `
INSERT INTO pending_burns (payer_id, amount, last_burn_at)
VALUES ($1, $2, now())
ON CONFLICT (payer_id) DO UPDATE
SET amount = pending_burns.amount + EXCLUDED.amount,
    last_burn_at = EXCLUDED.last_burn_at`
	if _, err := s.db.ExecContext(ctx, q, string(payer), amount); err != nil {
		return cos.NewErrBurn(string(payer), err)
	}
	return nil
}

// OldestAboveThreshold returns the oldest-by-last_burn_at row whose amount
// is >= threshold, or ok=false if none qualifies.
func (s *Store) OldestAboveThreshold(ctx context.Context, threshold int64) (Row, bool, error) {
	const q = `
SELECT payer_id, amount, last_burn_at FROM pending_burns
WHERE amount >= $1
ORDER BY last_burn_at ASC
LIMIT 1`
	var row Row
	var payer string
	err := s.db.QueryRowContext(ctx, q, threshold).Scan(&payer, &row.Amount, &row.LastBurnAt)
	if err == sql.ErrNoRows {
		return Row{}, false, nil
	}
	if err != nil {
		return Row{}, false, cos.NewErrConfig("ledger.query", err)
	}
	row.Payer = orgcache.Payer(payer)
	return row, true, nil
}

// Settle subtracts amount from payer's row, deleting it if the remainder
// is zero; called after a burn transaction confirms on-chain.
func (s *Store) Settle(ctx context.Context, payer orgcache.Payer, amount int64) error {
	const q = `
UPDATE pending_burns SET amount = amount - $2 WHERE payer_id = $1`
	if _, err := s.db.ExecContext(ctx, q, string(payer), amount); err != nil {
		return cos.NewErrBurn(string(payer), err)
	}
	const del = `DELETE FROM pending_burns WHERE payer_id = $1 AND amount <= 0`
	if _, err := s.db.ExecContext(ctx, del, string(payer)); err != nil {
		return cos.NewErrBurn(string(payer), err)
	}
	return nil
}
