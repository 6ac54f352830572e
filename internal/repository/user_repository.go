package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/kleanly/kleanly-api/internal/model"
	"github.com/kleanly/kleanly-api/internal/utils"
)

// UserRepo is the credential store: accounts, password hashes and flags.
type UserRepo struct{ DB *sql.DB }

func NewUserRepo(db *sql.DB) *UserRepo { return &UserRepo{DB: db} }

const userColumns = "id,username,hashed_password,email,push_token,is_admin,is_driver"

// Create hashes the password and inserts the user.  The id is set to the
// username.
func (r *UserRepo) Create(ctx context.Context, u model.User, password string, cost int) error {
	if _, err := r.GetByUsername(ctx, u.Username); err == nil {
		return ErrUsernameExists
	} else if err != ErrNotFound {
		return err
	}
	hash, err := utils.HashPassword(password, cost)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx,
		"INSERT INTO users ("+userColumns+") VALUES (?,?,?,?,?,?,?)",
		u.Username, u.Username, hash, u.Email, u.PushToken, u.IsAdmin, u.IsDriver)
	if err != nil {
		if isDuplicate(err) {
			return ErrUsernameExists
		}
		return err
	}
	return nil
}

// GetByUsername fetches a user by username.
func (r *UserRepo) GetByUsername(ctx context.Context, username string) (model.User, error) {
	row := r.DB.QueryRowContext(ctx,
		"SELECT "+userColumns+" FROM users WHERE username=? LIMIT 1", username)
	return scanUser(row)
}

// Update applies the non-nil fields of p to the user with the given
// username.  Renaming onto a taken username yields ErrUsernameExists.
func (r *UserRepo) Update(ctx context.Context, username string, p model.UserPatch) error {
	if _, err := r.GetByUsername(ctx, username); err != nil {
		return err
	}
	if p.Empty() {
		return nil
	}
	var (
		sets []string
		args []any
	)
	add := func(col string, v any) {
		sets = append(sets, col+"=?")
		args = append(args, v)
	}
	if p.PasswordHash != nil {
		add("hashed_password", *p.PasswordHash)
	}
	if p.IsAdmin != nil {
		add("is_admin", *p.IsAdmin)
	}
	if p.IsDriver != nil {
		add("is_driver", *p.IsDriver)
	}
	if p.Username != nil {
		add("username", *p.Username)
	}
	if p.Email != nil {
		add("email", *p.Email)
	}
	if p.PushToken != nil {
		add("push_token", *p.PushToken)
	}
	args = append(args, username)
	_, err := r.DB.ExecContext(ctx,
		"UPDATE users SET "+strings.Join(sets, ",")+" WHERE username=?", args...)
	if err != nil && isDuplicate(err) {
		return ErrUsernameExists
	}
	return err
}

func scanUser(row *sql.Row) (model.User, error) {
	var (
		u     model.User
		token sql.NullString
	)
	err := row.Scan(&u.ID, &u.Username, &u.PasswordHash, &u.Email, &token, &u.IsAdmin, &u.IsDriver)
	if err != nil {
		return model.User{}, notFound(err)
	}
	if token.Valid {
		u.PushToken = &token.String
	}
	return u, nil
}
