package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/ericfisherdev/anonbox/internal/domain/model"
	"github.com/ericfisherdev/anonbox/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.AccountStore = (*AccountRepo)(nil)

// AccountRepo is the SQLite implementation of the AccountStore port interface.
type AccountRepo struct {
	db *DB
}

// NewAccountRepo creates a new AccountRepo backed by the given DB.
func NewAccountRepo(db *DB) *AccountRepo {
	return &AccountRepo{db: db}
}

const accountColumns = `id, handle, contact_address, credential_hash, accepting_messages, verification_state, created_at`

// Create inserts a new account. Uniqueness violations on handle or contact
// address map to the corresponding port sentinel.
func (r *AccountRepo) Create(ctx context.Context, a model.Account) error {
	const query = `INSERT INTO accounts (` + accountColumns + `) VALUES (?, ?, ?, ?, ?, ?, ?)`

	state := a.Verification
	if state == "" {
		state = model.VerificationPending
	}

	_, err := r.db.Writer.ExecContext(ctx, query,
		a.ID, a.Handle, a.ContactAddress, a.CredentialHash,
		boolToInt(a.AcceptingMessages), string(state), formatTime(a.CreatedAt),
	)
	if err != nil {
		msg := err.Error()
		switch {
		case strings.Contains(msg, "UNIQUE constraint failed: accounts.handle"):
			return fmt.Errorf("create account %s: %w", a.Handle, driven.ErrHandleExists)
		case strings.Contains(msg, "UNIQUE constraint failed: accounts.contact_address"):
			return fmt.Errorf("create account %s: %w", a.Handle, driven.ErrContactExists)
		}
		return fmt.Errorf("create account %s: %w", a.Handle, err)
	}

	return nil
}

// GetByHandle retrieves an account by exact, case-sensitive handle match.
func (r *AccountRepo) GetByHandle(ctx context.Context, handle string) (*model.Account, error) {
	return r.getOne(ctx, "handle", handle)
}

// GetByID retrieves an account by id.
func (r *AccountRepo) GetByID(ctx context.Context, id string) (*model.Account, error) {
	return r.getOne(ctx, "id", id)
}

// GetByContact retrieves an account by contact address.
func (r *AccountRepo) GetByContact(ctx context.Context, contact string) (*model.Account, error) {
	return r.getOne(ctx, "contact_address", contact)
}

// getOne runs a single-row lookup on one of the unique columns. column is
// always a constant supplied by this file.
func (r *AccountRepo) getOne(ctx context.Context, column, value string) (*model.Account, error) {
	query := `SELECT ` + accountColumns + ` FROM accounts WHERE ` + column + ` = ?`

	account, err := scanAccount(r.db.Reader.QueryRowContext(ctx, query, value))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("get account by %s: %w", column, driven.ErrAccountNotFound)
	}
	if err != nil {
		return nil, fmt.Errorf("get account by %s: %w", column, err)
	}

	return account, nil
}

// SetAccepting updates the acceptance latch in place.
func (r *AccountRepo) SetAccepting(ctx context.Context, id string, accepting bool) error {
	const query = `UPDATE accounts SET accepting_messages = ? WHERE id = ?`
	return r.updateOne(ctx, "set accepting", query, boolToInt(accepting), id)
}

// SetVerification updates the verification state.
func (r *AccountRepo) SetVerification(ctx context.Context, id string, state model.VerificationState) error {
	if !state.Valid() {
		return fmt.Errorf("set verification: invalid state %q", state)
	}
	const query = `UPDATE accounts SET verification_state = ? WHERE id = ?`
	return r.updateOne(ctx, "set verification", query, string(state), id)
}

// ReplaceCredential overwrites the stored credential hash.
func (r *AccountRepo) ReplaceCredential(ctx context.Context, id, credentialHash string) error {
	const query = `UPDATE accounts SET credential_hash = ? WHERE id = ?`
	return r.updateOne(ctx, "replace credential", query, credentialHash, id)
}

// updateOne executes a single-account UPDATE and reports ErrAccountNotFound
// when no row matched.
func (r *AccountRepo) updateOne(ctx context.Context, op, query string, args ...any) error {
	result, err := r.db.Writer.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("check rows affected: %w", err)
	}

	if rows == 0 {
		return fmt.Errorf("%s: %w", op, driven.ErrAccountNotFound)
	}

	return nil
}

func scanAccount(s scanner) (*model.Account, error) {
	var a model.Account
	var accepting int
	var state, createdAt string

	err := s.Scan(&a.ID, &a.Handle, &a.ContactAddress, &a.CredentialHash, &accepting, &state, &createdAt)
	if err != nil {
		return nil, err
	}

	a.AcceptingMessages = accepting != 0
	a.Verification = model.VerificationState(state)

	a.CreatedAt, err = parseTime(createdAt)
	if err != nil {
		return nil, fmt.Errorf("parse created_at: %w", err)
	}

	return &a, nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
