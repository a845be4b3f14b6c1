package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/iliyamo/spark-meetup/internal/model"
)

type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,name,email,phone,password_hash,account_number,always_available,login_method,role,created_at,updated_at,last_signed_in"

func scanUser(s scanner) (model.User, error) {
	var u model.User
	var role string
	err := s.Scan(&u.ID, &u.Name, &u.Email, &u.Phone, &u.PasswordHash, &u.AccountNumber,
		&u.AlwaysAvailable, &u.LoginMethod, &role, &u.CreatedAt, &u.UpdatedAt, &u.LastSignedIn)
	u.Role = model.Role(role)
	return u, err
}

// Create inserts user and returns its ID. The email is stored exactly as given.
func (r *UserRepo) Create(ctx context.Context, u model.User) (uint64, error) {
	if u.LoginMethod == "" {
		u.LoginMethod = model.LoginMethodLocal
	}
	if u.Role == "" {
		u.Role = model.RoleUser
	}
	res, err := r.DB.ExecContext(ctx,
		"INSERT INTO users (name,email,phone,password_hash,account_number,always_available,login_method,role,created_at,updated_at,last_signed_in) VALUES (?,?,?,?,?,?,?,?,?,?,?)",
		u.Name, u.Email, u.Phone, u.PasswordHash, u.AccountNumber, u.AlwaysAvailable, u.LoginMethod, string(u.Role),
		u.CreatedAt.UTC(), u.CreatedAt.UTC(), u.CreatedAt.UTC())
	if err != nil {
		if errors.Is(mapError(err), ErrDuplicate) {
			return 0, ErrEmailExists
		}
		return 0, err
	}
	return lastID(res)
}

// GetByEmail fetches a user by exact email.
func (r *UserRepo) GetByEmail(ctx context.Context, email string) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE email=? LIMIT 1", email))
	return u, mapError(err)
}

// GetByID fetches a user by id.
func (r *UserRepo) GetByID(ctx context.Context, id uint64) (model.User, error) {
	u, err := scanUser(r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE id=? LIMIT 1", id))
	return u, mapError(err)
}

// UpdateProfile overwrites the mutable profile columns.
func (r *UserRepo) UpdateProfile(ctx context.Context, u model.User, now time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET name=?, phone=?, account_number=?, always_available=?, updated_at=? WHERE id=?",
		u.Name, u.Phone, u.AccountNumber, u.AlwaysAvailable, now.UTC(), u.ID)
	return mapError(err)
}

// UpdatePassword stores a new password hash.
func (r *UserRepo) UpdatePassword(ctx context.Context, id uint64, hash string, now time.Time) error {
	return updatePassword(ctx, r.DB, id, hash, now)
}

// UpdatePasswordTx is UpdatePassword inside an open transaction.
func (r *UserRepo) UpdatePasswordTx(ctx context.Context, tx *sql.Tx, id uint64, hash string, now time.Time) error {
	return updatePassword(ctx, tx, id, hash, now)
}

func updatePassword(ctx context.Context, q querier, id uint64, hash string, now time.Time) error {
	_, err := q.ExecContext(ctx,
		"UPDATE users SET password_hash=?, updated_at=? WHERE id=?", hash, now.UTC(), id)
	return mapError(err)
}

// TouchLastSignedIn records a successful login.
func (r *UserRepo) TouchLastSignedIn(ctx context.Context, id uint64, at time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET last_signed_in=? WHERE id=?", at.UTC(), id)
	return mapError(err)
}

// SetRole changes a user's role and forces the local login method, which is
// what an operator promoting an account to admin expects.
func (r *UserRepo) SetRole(ctx context.Context, id uint64, role model.Role, now time.Time) error {
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET role=?, login_method=?, updated_at=? WHERE id=?",
		string(role), model.LoginMethodLocal, now.UTC(), id)
	return mapError(err)
}
