package usecases

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"time"

	"civicmap/internal/authsvc"
	"civicmap/internal/entities"
	"civicmap/internal/ids"
	"civicmap/internal/ofdberrors"
	"civicmap/internal/repo"
)

// tokenTTL is how long a registration/reset token stays valid.
const tokenTTL = 24 * time.Hour

// Users bundles the repositories user/auth writes need.
type Users struct {
	User  repo.UserRepo
	Token repo.UserTokenRepo
}

// Register implements spec.md §4.8's registration half: creates a Guest
// account with a bcrypt password hash and issues a confirmation token.
func Register(ctx context.Context, repos Users, email, password string) (entities.UserToken, error) {
	if err := validate.Var(email, "email"); err != nil {
		return entities.UserToken{}, ofdberrors.NewParameter(ofdberrors.Email)
	}
	if existing, _ := repos.User.TryGetUserByEmail(ctx, email); existing != nil {
		return entities.UserToken{}, ofdberrors.NewParameter(ofdberrors.UserExists)
	}

	hash, err := authsvc.HashPassword(password)
	if err != nil {
		return entities.UserToken{}, ofdberrors.Internal(err, "hash password")
	}

	normalized := entities.NormalizeEmail(email)
	account := entities.Account{
		ID:       ids.NewID(),
		Email:    normalized,
		Username: entities.UsernameFromEmail(normalized),
		PasswordHash: hash,
		Role:     entities.Guest,
	}
	if err := repos.User.CreateUser(ctx, account); err != nil {
		return entities.UserToken{}, err
	}

	token := entities.UserToken{
		UserID:    account.ID,
		Email:     normalized,
		Nonce:     newNonce(),
		ExpiresAt: ids.FromTime(time.Now().Add(tokenTTL)),
	}
	if err := repos.Token.ReplaceToken(ctx, token); err != nil {
		return entities.UserToken{}, err
	}
	return token, nil
}

// ConfirmEmail implements spec.md §4.8: consuming the token within expiry
// confirms the email and promotes Guest → User.
func ConfirmEmail(ctx context.Context, repos Users, email, nonce string) error {
	token, err := repos.Token.ConsumeToken(ctx, entities.NormalizeEmail(email), nonce)
	if err != nil {
		return ofdberrors.NewParameter(ofdberrors.TokenInvalid)
	}
	if token.Expired(ids.Now()) {
		return ofdberrors.NewParameter(ofdberrors.TokenInvalid)
	}

	account, err := repos.User.GetUserByEmail(ctx, token.Email)
	if err != nil {
		return err
	}
	account.EmailConfirmed = true
	if account.Role == entities.Guest {
		account.Role = entities.User
	}
	return repos.User.UpdateUser(ctx, account)
}

// Login implements spec.md §4.8: verifies (email, password) and returns
// the canonical username, or a Credentials error.
func Login(ctx context.Context, userRepo repo.UserRepo, email, password string) (string, error) {
	account, err := userRepo.GetUserByEmail(ctx, entities.NormalizeEmail(email))
	if err != nil {
		return "", ofdberrors.NewParameter(ofdberrors.Credentials)
	}
	if !authsvc.VerifyPassword(account.PasswordHash, password) {
		return "", ofdberrors.NewParameter(ofdberrors.Credentials)
	}
	if !account.EmailConfirmed {
		return "", ofdberrors.NewParameter(ofdberrors.EmailNotConfirmed)
	}
	return account.Username, nil
}

// RequestPasswordReset issues a fresh token for an existing account,
// replacing any token already outstanding (spec.md §3 UserToken:
// "insertion replaces existing").
func RequestPasswordReset(ctx context.Context, repos Users, email string) (entities.UserToken, error) {
	account, err := repos.User.GetUserByEmail(ctx, entities.NormalizeEmail(email))
	if err != nil {
		return entities.UserToken{}, err
	}
	token := entities.UserToken{
		UserID:    account.ID,
		Email:     account.Email,
		Nonce:     newNonce(),
		ExpiresAt: ids.FromTime(time.Now().Add(tokenTTL)),
	}
	if err := repos.Token.ReplaceToken(ctx, token); err != nil {
		return entities.UserToken{}, err
	}
	return token, nil
}

// ResetPassword implements spec.md §4.8: requires a valid unexpired token
// and invalidates it on success by virtue of ConsumeToken being single-use.
func ResetPassword(ctx context.Context, repos Users, email, nonce, newPassword string) error {
	token, err := repos.Token.ConsumeToken(ctx, entities.NormalizeEmail(email), nonce)
	if err != nil {
		return ofdberrors.NewParameter(ofdberrors.TokenInvalid)
	}
	if token.Expired(ids.Now()) {
		return ofdberrors.NewParameter(ofdberrors.TokenInvalid)
	}

	account, err := repos.User.GetUserByEmail(ctx, token.Email)
	if err != nil {
		return err
	}
	hash, err := authsvc.HashPassword(newPassword)
	if err != nil {
		return ofdberrors.Internal(err, "hash password")
	}
	account.PasswordHash = hash
	return repos.User.UpdateUser(ctx, account)
}

func newNonce() string {
	buf := make([]byte, 16)
	_, _ = rand.Read(buf)
	return hex.EncodeToString(buf)
}
