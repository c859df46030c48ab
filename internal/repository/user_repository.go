package repository

import (
	"context"
	"database/sql"
	"time"

	"taskify/internal/models"
)

type UserRepository interface {
	Store[models.User]
	GetByEmail(ctx context.Context, email string) (*models.User, error)
	UpdateProfile(ctx context.Context, id string, name, lastName string, age *int) (*models.User, error)
	UpdateAvatarURL(ctx context.Context, id string, avatarURL string) error
	UpdatePasswordHash(ctx context.Context, id string, passwordHash string) error
	SetResetToken(ctx context.Context, id string, tokenHash string, expiresAt time.Time) error
	// ClearResetToken withdraws tokenHash if it is still the account's current token.
	ClearResetToken(ctx context.Context, id string, tokenHash string) error
	RedeemResetToken(ctx context.Context, tokenHash string, passwordHash string, now time.Time) (string, error)
}

const userColumns = `id, name, last_name, age, email, avatar_url, password_hash, reset_token, reset_token_expiry, created_at, updated_at`

var userTable = Table[models.User]{
	Name:       "users",
	Columns:    []string{"name", "last_name", "age", "email", "avatar_url", "password_hash", "reset_token", "reset_token_expiry"},
	Filterable: []string{"email", "name", "last_name"},
	OrderBy:    "created_at DESC",
	ID:         func(u *models.User) *string { return &u.ID },
	Values: func(u *models.User) []any {
		return []any{u.Name, u.LastName, u.Age, u.Email, u.AvatarURL, u.PasswordHash, u.ResetTokenHash, u.ResetTokenExpiry}
	},
	Stamps: func(u *models.User) (*time.Time, *time.Time) { return &u.CreatedAt, &u.UpdatedAt },
	Scan:   scanUser,
}

func scanUser(row rowScanner, u *models.User) error {
	var resetToken sql.NullString
	var resetExpiry sql.NullTime
	err := row.Scan(&u.ID, &u.Name, &u.LastName, &u.Age, &u.Email, &u.AvatarURL, &u.PasswordHash,
		&resetToken, &resetExpiry, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return err
	}
	u.ResetTokenHash, u.ResetTokenExpiry = nil, nil
	if resetToken.Valid && resetExpiry.Valid {
		u.ResetTokenHash = &resetToken.String
		u.ResetTokenExpiry = &resetExpiry.Time
	}
	return nil
}

type userRepository struct {
	Store[models.User]
	db *sql.DB
}

func NewUserRepository(db *sql.DB) UserRepository {
	return &userRepository{Store: NewStore(db, userTable), db: db}
}

func (r *userRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE email = $1`

	var u models.User
	if err := scanUser(r.db.QueryRowContext(ctx, query, email), &u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *userRepository) UpdateProfile(ctx context.Context, id string, name, lastName string, age *int) (*models.User, error) {
	query := `
		UPDATE users
		SET name = $1,
			last_name = $2,
			age = COALESCE($3, age),
			updated_at = NOW()
		WHERE id = $4
		RETURNING ` + userColumns

	var u models.User
	if err := scanUser(r.db.QueryRowContext(ctx, query, name, lastName, age, id), &u); err != nil {
		return nil, translate(err)
	}
	return &u, nil
}

func (r *userRepository) UpdateAvatarURL(ctx context.Context, id string, avatarURL string) error {
	return r.execOne(ctx, `UPDATE users SET avatar_url = $1, updated_at = NOW() WHERE id = $2`, avatarURL, id)
}

// UpdatePasswordHash replaces the hash and drops any outstanding reset token.
func (r *userRepository) UpdatePasswordHash(ctx context.Context, id string, passwordHash string) error {
	query := `
		UPDATE users
		SET password_hash = $1, reset_token = NULL, reset_token_expiry = NULL, updated_at = NOW()
		WHERE id = $2`
	return r.execOne(ctx, query, passwordHash, id)
}

func (r *userRepository) SetResetToken(ctx context.Context, id string, tokenHash string, expiresAt time.Time) error {
	query := `UPDATE users SET reset_token = $1, reset_token_expiry = $2, updated_at = NOW() WHERE id = $3`
	return r.execOne(ctx, query, tokenHash, expiresAt, id)
}

func (r *userRepository) ClearResetToken(ctx context.Context, id string, tokenHash string) error {
	query := `
		UPDATE users
		SET reset_token = NULL, reset_token_expiry = NULL, updated_at = NOW()
		WHERE id = $1 AND reset_token = $2`
	return r.execOne(ctx, query, id, tokenHash)
}

// RedeemResetToken swaps in passwordHash for the account holding an unexpired
// tokenHash and clears the token in the same statement, so a token can win at
// most once. It returns the account id, or ErrNotFound.
func (r *userRepository) RedeemResetToken(ctx context.Context, tokenHash string, passwordHash string, now time.Time) (string, error) {
	query := `
		UPDATE users
		SET password_hash = $1, reset_token = NULL, reset_token_expiry = NULL, updated_at = NOW()
		WHERE reset_token = $2 AND reset_token_expiry > $3
		RETURNING id`

	var id string
	if err := r.db.QueryRowContext(ctx, query, passwordHash, tokenHash, now).Scan(&id); err != nil {
		return "", translate(err)
	}
	return id, nil
}

func (r *userRepository) execOne(ctx context.Context, query string, args ...any) error {
	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
