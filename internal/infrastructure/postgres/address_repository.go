package postgres

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/samber/oops"

	"storeadmin/backend/internal/domain/address"
)

const addressColumns = `id, user_id, full_name, phone, address_line1, COALESCE(address_line2, ''),
city, state, postal_code, country, is_default, type, created_at, updated_at`

const clearDefaultAddressSQL = `
UPDATE addresses SET is_default = FALSE, updated_at = $3
WHERE user_id = $1 AND id <> $2 AND is_default
`

const defaultSwitchAttempts = 3

// AddressRepository persists addresses in PostgreSQL.
type AddressRepository struct {
	db Pool
}

// NewAddressRepository constructs a repository.
func NewAddressRepository(db Pool) *AddressRepository {
	return &AddressRepository{db: db}
}

var _ address.Repository = (*AddressRepository)(nil)

// Create inserts a, clearing the user's previous default in the same transaction.
func (r *AddressRepository) Create(ctx context.Context, a *address.Address) error {
	const query = `
INSERT INTO addresses (id, user_id, full_name, phone, address_line1, address_line2,
    city, state, postal_code, country, is_default, type, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, NULLIF($6, ''), $7, $8, $9, $10, $11, $12, $13, $14)
`
	err := r.saveWithDefault(ctx, a, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx, query,
			a.ID, a.UserID, a.FullName, a.Phone, a.AddressLine1, a.AddressLine2,
			a.City, a.State, a.PostalCode, a.Country, a.IsDefault, string(a.Type),
			a.CreatedAt, a.UpdatedAt,
		)
		return err
	})
	if err != nil {
		if errors.Is(err, address.ErrDefaultConflict) {
			return err
		}
		return oops.Code("ADDRESS_CREATE_FAILED").With("user_id", a.UserID).Wrapf(err, "insert address")
	}
	return nil
}

// GetByID fetches an address owned by userID.
func (r *AddressRepository) GetByID(ctx context.Context, userID, id string) (*address.Address, error) {
	query := `SELECT ` + addressColumns + ` FROM addresses WHERE id = $1 AND user_id = $2`
	a, err := scanAddress(r.db.QueryRow(ctx, query, id, userID))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, address.ErrAddressNotFound
		}
		return nil, oops.Code("ADDRESS_QUERY_FAILED").With("address_id", id).Wrapf(err, "get address")
	}
	return a, nil
}

// ListByUser returns a user's addresses, default first.
func (r *AddressRepository) ListByUser(ctx context.Context, userID string) ([]*address.Address, error) {
	query := `SELECT ` + addressColumns + ` FROM addresses WHERE user_id = $1 ORDER BY is_default DESC, created_at DESC`
	rows, err := r.db.Query(ctx, query, userID)
	if err != nil {
		return nil, oops.Code("ADDRESS_QUERY_FAILED").With("user_id", userID).Wrapf(err, "list addresses")
	}
	defer rows.Close()

	out := make([]*address.Address, 0)
	for rows.Next() {
		a, err := scanAddress(rows)
		if err != nil {
			return nil, oops.Code("ADDRESS_QUERY_FAILED").Wrapf(err, "scan address")
		}
		out = append(out, a)
	}
	if err := rows.Err(); err != nil {
		return nil, oops.Code("ADDRESS_QUERY_FAILED").Wrapf(err, "iterate addresses")
	}
	return out, nil
}

// Update saves a, clearing the user's other default in the same transaction.
func (r *AddressRepository) Update(ctx context.Context, a *address.Address) error {
	const query = `
UPDATE addresses
SET full_name = $3, phone = $4, address_line1 = $5, address_line2 = NULLIF($6, ''),
    city = $7, state = $8, postal_code = $9, country = $10, is_default = $11,
    type = $12, updated_at = $13
WHERE id = $1 AND user_id = $2
`
	err := r.saveWithDefault(ctx, a, func(tx pgx.Tx) error {
		ct, err := tx.Exec(ctx, query,
			a.ID, a.UserID, a.FullName, a.Phone, a.AddressLine1, a.AddressLine2,
			a.City, a.State, a.PostalCode, a.Country, a.IsDefault, string(a.Type),
			a.UpdatedAt,
		)
		if err != nil {
			return err
		}
		if ct.RowsAffected() == 0 {
			return address.ErrAddressNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, address.ErrAddressNotFound) || errors.Is(err, address.ErrDefaultConflict) {
			return err
		}
		return oops.Code("ADDRESS_UPDATE_FAILED").With("address_id", a.ID).Wrapf(err, "update address")
	}
	return nil
}

// saveWithDefault runs save in a transaction that first clears the user's
// other default when a is the default. A concurrent writer can claim the
// default between the clear and the save; the transaction is then retried.
func (r *AddressRepository) saveWithDefault(ctx context.Context, a *address.Address, save func(pgx.Tx) error) error {
	var err error
	for attempt := 0; attempt < defaultSwitchAttempts; attempt++ {
		err = withTx(ctx, r.db, func(tx pgx.Tx) error {
			if a.IsDefault {
				if _, err := tx.Exec(ctx, clearDefaultAddressSQL, a.UserID, a.ID, a.UpdatedAt); err != nil {
					return err
				}
			}
			return save(tx)
		})
		if !isDefaultConflict(err) {
			return err
		}
	}
	return address.ErrDefaultConflict
}

// Delete removes an address owned by userID.
func (r *AddressRepository) Delete(ctx context.Context, userID, id string) error {
	ct, err := r.db.Exec(ctx, `DELETE FROM addresses WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return oops.Code("ADDRESS_DELETE_FAILED").With("address_id", id).Wrapf(err, "delete address")
	}
	if ct.RowsAffected() == 0 {
		return address.ErrAddressNotFound
	}
	return nil
}

func scanAddress(row pgx.Row) (*address.Address, error) {
	var (
		a   address.Address
		typ string
	)
	err := row.Scan(
		&a.ID, &a.UserID, &a.FullName, &a.Phone, &a.AddressLine1, &a.AddressLine2,
		&a.City, &a.State, &a.PostalCode, &a.Country, &a.IsDefault, &typ,
		&a.CreatedAt, &a.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	a.Type = address.Type(typ)
	return &a, nil
}
