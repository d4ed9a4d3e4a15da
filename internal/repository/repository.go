package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/lib/pq"

	"github.com/kwchan/bank-ivr/internal/models"
)

// ErrNotFound is returned when the directory holds no matching record.
var ErrNotFound = errors.New("record not found")

// Repository provides read-only lookups against the account directory.
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// FindAccountByFormattedID retrieves an account by its canonical
// NNN-NNNNNNN-N identifier.
func (r *Repository) FindAccountByFormattedID(ctx context.Context, id string) (*models.AccountRecord, error) {
	rec := &models.AccountRecord{}
	query := `
		SELECT ref, account_id, pin, balance, owner_ref
		FROM ivr.accounts
		WHERE account_id = $1`
	err := r.db.QueryRowContext(ctx, query, id).
		Scan(&rec.Ref, &rec.AccountID, &rec.PIN, &rec.Balance, &rec.OwnerRef)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find account: %w", err)
	}
	return rec, nil
}

// FindCustomerByRef retrieves a customer with their owned account
// references and pre-registered transfer account references. The latter
// list may be empty.
func (r *Repository) FindCustomerByRef(ctx context.Context, ref string) (*models.CustomerRecord, error) {
	cust := &models.CustomerRecord{}
	query := `
		SELECT ref, name
		FROM ivr.customers
		WHERE ref = $1`
	err := r.db.QueryRowContext(ctx, query, ref).Scan(&cust.Ref, &cust.Name)
	if err == sql.ErrNoRows {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to find customer: %w", err)
	}

	cust.AccountRefs, err = r.queryRefs(ctx, `
		SELECT ref FROM ivr.accounts WHERE owner_ref = $1 ORDER BY ref`, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to load owned accounts: %w", err)
	}
	cust.AllowedTransferRefs, err = r.queryRefs(ctx, `
		SELECT account_ref FROM ivr.allowed_transfers WHERE customer_ref = $1 ORDER BY account_ref`, ref)
	if err != nil {
		return nil, fmt.Errorf("failed to load allowed transfer accounts: %w", err)
	}
	return cust, nil
}

func (r *Repository) queryRefs(ctx context.Context, query, arg string) ([]string, error) {
	rows, err := r.db.QueryContext(ctx, query, arg)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var refs []string
	for rows.Next() {
		var ref string
		if err := rows.Scan(&ref); err != nil {
			return nil, err
		}
		refs = append(refs, ref)
	}
	return refs, rows.Err()
}

// FindAccountsByRefs retrieves up to limit accounts matching the given
// directory references.
func (r *Repository) FindAccountsByRefs(ctx context.Context, refs []string, limit int) ([]models.AccountRecord, error) {
	if len(refs) == 0 {
		return nil, nil
	}
	query := `
		SELECT ref, account_id, pin, balance, owner_ref
		FROM ivr.accounts
		WHERE ref = ANY($1)
		ORDER BY account_id
		LIMIT $2`
	rows, err := r.db.QueryContext(ctx, query, pq.Array(refs), limit)
	if err != nil {
		return nil, fmt.Errorf("failed to find accounts: %w", err)
	}
	defer rows.Close()

	var records []models.AccountRecord
	for rows.Next() {
		var rec models.AccountRecord
		if err := rows.Scan(&rec.Ref, &rec.AccountID, &rec.PIN, &rec.Balance, &rec.OwnerRef); err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		records = append(records, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read accounts: %w", err)
	}
	return records, nil
}
