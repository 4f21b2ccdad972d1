package sqlitestore

import (
	"context"
	"database/sql"

	"civicmap/internal/entities"
	"civicmap/internal/ids"
	"civicmap/internal/ofdberrors"
)

// UserRepo adapts Store to repo.UserRepo.
type UserRepo struct{ s *Store }

func NewUserRepo(s *Store) *UserRepo { return &UserRepo{s: s} }

func (r *UserRepo) GetUserByEmail(ctx context.Context, email string) (entities.Account, error) {
	acc, err := r.scanByEmail(ctx, email)
	if err == sql.ErrNoRows {
		return entities.Account{}, ofdberrors.NewNotFound()
	}
	if err != nil {
		return entities.Account{}, ofdberrors.WrapRepo(err, "get user by email")
	}
	return acc, nil
}

func (r *UserRepo) TryGetUserByEmail(ctx context.Context, email string) (*entities.Account, error) {
	acc, err := r.scanByEmail(ctx, email)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, ofdberrors.WrapRepo(err, "try get user by email")
	}
	return &acc, nil
}

func (r *UserRepo) scanByEmail(ctx context.Context, email string) (entities.Account, error) {
	row := r.s.db.QueryRowContext(ctx, `
		SELECT id, email, username, password_hash, email_confirmed, role
		FROM users WHERE email = ?`, email)
	var (
		id, userEmail, username, hash string
		confirmed                     int
		role                          int
	)
	if err := row.Scan(&id, &userEmail, &username, &hash, &confirmed, &role); err != nil {
		return entities.Account{}, err
	}
	return entities.Account{
		ID: ids.ID(id), Email: userEmail, Username: username, PasswordHash: hash,
		EmailConfirmed: confirmed != 0, Role: entities.Role(role),
	}, nil
}

func (r *UserRepo) CreateUser(ctx context.Context, user entities.Account) error {
	_, err := r.s.db.ExecContext(ctx, `
		INSERT INTO users (id, email, username, password_hash, email_confirmed, role)
		VALUES (?, ?, ?, ?, ?, ?)`,
		string(user.ID), user.Email, user.Username, user.PasswordHash, boolToInt(user.EmailConfirmed), int(user.Role))
	return ofdberrors.WrapRepo(err, "create user")
}

func (r *UserRepo) UpdateUser(ctx context.Context, user entities.Account) error {
	res, err := r.s.db.ExecContext(ctx, `
		UPDATE users SET username=?, password_hash=?, email_confirmed=?, role=? WHERE email=?`,
		user.Username, user.PasswordHash, boolToInt(user.EmailConfirmed), int(user.Role), user.Email)
	if err != nil {
		return ofdberrors.WrapRepo(err, "update user")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ofdberrors.NewNotFound()
	}
	return nil
}

func (r *UserRepo) DeleteUserByEmail(ctx context.Context, email string) error {
	res, err := r.s.db.ExecContext(ctx, `DELETE FROM users WHERE email = ?`, email)
	if err != nil {
		return ofdberrors.WrapRepo(err, "delete user")
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return ofdberrors.NewNotFound()
	}
	return nil
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}

// UserTokenRepo adapts Store to repo.UserTokenRepo.
type UserTokenRepo struct{ s *Store }

func NewUserTokenRepo(s *Store) *UserTokenRepo { return &UserTokenRepo{s: s} }

func (r *UserTokenRepo) ReplaceToken(ctx context.Context, token entities.UserToken) error {
	tx, err := r.s.db.BeginTx(ctx, nil)
	if err != nil {
		return ofdberrors.WrapRepo(err, "begin tx")
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM user_tokens WHERE email = ?`, token.Email); err != nil {
		return ofdberrors.WrapRepo(err, "clear existing token")
	}
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO user_tokens (email, user_id, nonce, expires_at) VALUES (?, ?, ?, ?)`,
		token.Email, string(token.UserID), token.Nonce, formatTime(token.ExpiresAt.Time())); err != nil {
		return ofdberrors.WrapRepo(err, "insert token")
	}
	return ofdberrors.WrapRepo(tx.Commit(), "commit token replace")
}

func (r *UserTokenRepo) ConsumeToken(ctx context.Context, email, nonce string) (entities.UserToken, error) {
	tx, err := r.s.db.BeginTx(ctx, nil)
	if err != nil {
		return entities.UserToken{}, ofdberrors.WrapRepo(err, "begin tx")
	}
	defer tx.Rollback()

	row := tx.QueryRowContext(ctx, `
		SELECT email, user_id, nonce, expires_at FROM user_tokens WHERE email = ? AND nonce = ?`, email, nonce)
	var tokenEmail, userID, tokenNonce, expiresAt string
	if err := row.Scan(&tokenEmail, &userID, &tokenNonce, &expiresAt); err == sql.ErrNoRows {
		return entities.UserToken{}, ofdberrors.NewNotFound()
	} else if err != nil {
		return entities.UserToken{}, ofdberrors.WrapRepo(err, "consume token")
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM user_tokens WHERE email = ?`, email); err != nil {
		return entities.UserToken{}, ofdberrors.WrapRepo(err, "delete consumed token")
	}
	expires, err := parseTime(expiresAt)
	if err != nil {
		return entities.UserToken{}, ofdberrors.WrapRepo(err, "parse token expiry")
	}
	if err := tx.Commit(); err != nil {
		return entities.UserToken{}, ofdberrors.WrapRepo(err, "commit token consume")
	}
	return entities.UserToken{
		UserID: ids.ID(userID), Email: tokenEmail, Nonce: tokenNonce, ExpiresAt: ids.FromTime(expires),
	}, nil
}
