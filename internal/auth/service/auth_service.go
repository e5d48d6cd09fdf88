package service

import (
	"context"
	"errors"
	"time"

	"github.com/ponton1/jwt-rbac-docker-starter/internal/auth/domain"
	"github.com/ponton1/jwt-rbac-docker-starter/internal/auth/repository"
	"github.com/ponton1/jwt-rbac-docker-starter/internal/common/clock"
	commoncrypto "github.com/ponton1/jwt-rbac-docker-starter/internal/common/crypto"
	commonerrors "github.com/ponton1/jwt-rbac-docker-starter/internal/common/errors"
	"github.com/ponton1/jwt-rbac-docker-starter/internal/common/logger"
)

// AuthService drives the refresh-token lifecycle: Issued -> Active ->
// {Rotated | Revoked | Expired}, all three terminal. A token leaves Active
// exactly once, via the ledger's conditional revoke.
type AuthService struct {
	users         repository.UserRepository
	refreshTokens repository.RefreshTokenRepository
	txManager     repository.TxManager
	issuer        *TokenIssuer
	hasher        commoncrypto.PasswordHasher
	idGenerator   commoncrypto.IDGenerator
	clock         clock.Clock
	log           *logger.Logger
}

func NewAuthService(
	users repository.UserRepository,
	refreshTokens repository.RefreshTokenRepository,
	txManager repository.TxManager,
	issuer *TokenIssuer,
	hasher commoncrypto.PasswordHasher,
	idGenerator commoncrypto.IDGenerator,
	clk clock.Clock,
	log *logger.Logger,
) *AuthService {
	return &AuthService{
		users:         users,
		refreshTokens: refreshTokens,
		txManager:     txManager,
		issuer:        issuer,
		hasher:        hasher,
		idGenerator:   idGenerator,
		clock:         clk,
		log:           log,
	}
}

type RegisterInput struct {
	Email    string
	Password string
	Role     string
}

type LoginInput struct {
	Email    string
	Password string
}

type TokenPair struct {
	AccessToken  string `json:"accessToken"`
	RefreshToken string `json:"refreshToken"`
}

// SanitizedUser is the user shape that crosses the service boundary.
// The password hash never leaves this package.
type SanitizedUser struct {
	ID           string    `json:"id"`
	Email        string    `json:"email"`
	Role         string    `json:"role"`
	TokenVersion int       `json:"tokenVersion"`
	CreatedAt    time.Time `json:"createdAt"`
}

type AuthResult struct {
	User   SanitizedUser `json:"user"`
	Tokens TokenPair     `json:"tokens"`
}

func (s *AuthService) Register(ctx context.Context, input RegisterInput) (AuthResult, error) {
	email := NormalizeEmail(input.Email)

	if err := validateRegister(email, input.Password); err != nil {
		return AuthResult{}, err
	}

	role := input.Role
	if role == "" {
		role = domain.RoleUser
	}

	hash, err := s.hasher.Hash(input.Password)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"email":  email,
			"action": "register_hash_failed",
		}).Errorf("register failed: password hash error: %v", err)
		return AuthResult{}, commonerrors.ErrInternalError.WithCause(err)
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		return AuthResult{}, commonerrors.ErrInternalError.WithCause(err)
	}

	user := domain.User{
		ID:           id,
		Email:        email,
		PasswordHash: hash,
		Role:         role,
		TokenVersion: 1,
		CreatedAt:    s.clock.Now(),
	}

	if err := s.users.Create(ctx, user); err != nil {
		if errors.Is(err, repository.ErrEmailAlreadyExists) {
			s.log.WithFields(ctx, logger.Fields{
				"email":  email,
				"action": "register_email_taken",
			}).Warn("register failed: email already registered")
			return AuthResult{}, ErrEmailTaken
		}
		s.log.WithFields(ctx, logger.Fields{
			"email":  email,
			"action": "register_create_failed",
		}).Errorf("register failed: %v", err)
		return AuthResult{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	tokens, err := s.issueAndStoreTokens(ctx, user)
	if err != nil {
		return AuthResult{}, err
	}

	s.log.WithFields(ctx, logger.Fields{
		"user_id": user.ID,
		"action":  "register_success",
	}).Info("register success")

	return AuthResult{User: sanitizeUser(user), Tokens: tokens}, nil
}

func (s *AuthService) Login(ctx context.Context, input LoginInput) (AuthResult, error) {
	email := NormalizeEmail(input.Email)

	if err := validateLogin(email, input.Password); err != nil {
		return AuthResult{}, err
	}

	user, err := s.users.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, repository.ErrUserNotFound) {
			s.log.WithFields(ctx, logger.Fields{
				"email":  email,
				"action": "login_user_not_found",
			}).Warn("login failed: not found")
			return AuthResult{}, ErrInvalidCredentials
		}
		return AuthResult{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	if err := s.hasher.Compare(user.PasswordHash, input.Password); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"email":  email,
			"action": "login_invalid_password",
		}).Warn("login failed: invalid password")
		return AuthResult{}, ErrInvalidCredentials
	}

	tokens, err := s.issueAndStoreTokens(ctx, user)
	if err != nil {
		return AuthResult{}, err
	}

	s.log.WithFields(ctx, logger.Fields{
		"user_id": user.ID,
		"action":  "login_success",
	}).Info("login success")

	return AuthResult{User: sanitizeUser(user), Tokens: tokens}, nil
}

// Refresh consumes a refresh token and rotates it. The presented token's
// ledger row is locked for the duration, so two concurrent calls with the
// same token serialize and only one rotation wins.
func (s *AuthService) Refresh(ctx context.Context, rawToken string) (TokenPair, error) {
	if rawToken == "" {
		return TokenPair{}, ErrRefreshTokenRequired
	}

	claims, err := s.issuer.ParseRefreshToken(rawToken)
	if err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"action": "refresh_token_verify_failed",
		}).Warnf("refresh failed: %v", err)
		return TokenPair{}, ErrInvalidRefreshToken
	}

	hash := HashRefreshToken(rawToken)

	var pair TokenPair
	var denial error

	err = s.txManager.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		stored, err := tx.FindRefreshTokenForUpdate(ctx, hash)
		if errors.Is(err, repository.ErrRefreshTokenNotFound) {
			denial = ErrRefreshTokenRevoked
			return nil
		}
		if err != nil {
			return err
		}

		if stored.Revoked() {
			denial = ErrRefreshTokenRevoked
			return nil
		}

		// Ledger expiry is checked independently of the signed exp claim.
		if s.clock.Now().After(stored.ExpiresAt) {
			incrementRefreshTokensExpired()
			denial = ErrRefreshTokenExpired
			return nil
		}

		user, err := tx.FindUserByID(ctx, claims.UserID)
		if errors.Is(err, repository.ErrUserNotFound) {
			// The subject is gone; retire the orphaned token.
			if _, revokeErr := tx.RevokeRefreshToken(ctx, hash, nil); revokeErr != nil {
				return revokeErr
			}
			denial = ErrRefreshUserNotFound
			return nil
		}
		if err != nil {
			return err
		}

		if claims.TokenVersion != user.TokenVersion {
			if _, revokeErr := tx.RevokeRefreshToken(ctx, hash, nil); revokeErr != nil {
				return revokeErr
			}
			incrementRefreshTokensRevoked()
			denial = ErrTokenRevoked
			return nil
		}

		// Rotate. The new pair is minted from the user's current
		// tokenVersion, not the claim's.
		accessToken, record, err := s.mintPair(user)
		if err != nil {
			return err
		}

		if err := tx.CreateRefreshToken(ctx, record); err != nil {
			return err
		}

		won, err := tx.RevokeRefreshToken(ctx, hash, &record.ID)
		if err != nil {
			return err
		}
		if !won {
			// Another rotation got there first; rolling back discards
			// the record created above.
			return ErrRefreshTokenRevoked
		}

		pair = TokenPair{AccessToken: accessToken, RefreshToken: record.RawToken}
		return nil
	})
	if err != nil {
		return TokenPair{}, err
	}
	if denial != nil {
		return TokenPair{}, denial
	}

	incrementRefreshTokensRotated()
	s.log.WithFields(ctx, logger.Fields{
		"user_id": claims.UserID,
		"action":  "refresh_success",
	}).Info("refresh token rotated")

	return pair, nil
}

// Logout revokes a single refresh token. A second call with the same token
// finds the row already revoked and fails; that asymmetry is deliberate.
func (s *AuthService) Logout(ctx context.Context, rawToken string) error {
	if rawToken == "" {
		return ErrRefreshTokenRequired
	}

	hash := HashRefreshToken(rawToken)

	// The lookup identifies the owner; the conditional revoke below is
	// still the arbiter under concurrency.
	stored, err := s.refreshTokens.FindByTokenHash(ctx, hash)
	if errors.Is(err, repository.ErrRefreshTokenNotFound) {
		return ErrRefreshTokenAlreadyRevoked
	}
	if err != nil {
		return commonerrors.ErrDatabaseError.WithCause(err)
	}

	won, err := s.refreshTokens.Revoke(ctx, hash, nil)
	if err != nil {
		return commonerrors.ErrDatabaseError.WithCause(err)
	}
	if !won {
		return ErrRefreshTokenAlreadyRevoked
	}

	incrementRefreshTokensRevoked()
	s.log.WithFields(ctx, logger.Fields{
		"user_id": stored.UserID,
		"action":  "logout_success",
	}).Info("refresh token revoked")

	return nil
}

// LogoutAll bumps the user's tokenVersion and revokes every live ledger row
// in one transaction. Outstanding access tokens die at the gate's next
// version check; outstanding refresh tokens die on next use.
func (s *AuthService) LogoutAll(ctx context.Context, userID string) error {
	var denial error

	err := s.txManager.WithTx(ctx, func(ctx context.Context, tx repository.Tx) error {
		version, err := tx.IncrementTokenVersion(ctx, userID)
		if errors.Is(err, repository.ErrUserNotFound) {
			denial = ErrUserNotFound
			return nil
		}
		if err != nil {
			return err
		}

		if err := tx.RevokeAllRefreshTokens(ctx, userID); err != nil {
			return err
		}

		s.log.WithFields(ctx, logger.Fields{
			"user_id":       userID,
			"token_version": version,
			"action":        "logout_all",
		}).Info("all sessions revoked")
		return nil
	})
	if err != nil {
		return err
	}
	if denial != nil {
		return denial
	}

	incrementTokenVersionBumps()
	return nil
}

// issueAndStoreTokens mints a pair and persists the refresh digest outside
// any transaction; register and login have no prior row to contend on.
func (s *AuthService) issueAndStoreTokens(ctx context.Context, user domain.User) (TokenPair, error) {
	accessToken, record, err := s.mintPair(user)
	if err != nil {
		return TokenPair{}, err
	}

	if err := s.refreshTokens.Create(ctx, record); err != nil {
		s.log.WithFields(ctx, logger.Fields{
			"user_id": user.ID,
			"action":  "store_refresh_token_failed",
		}).Errorf("failed to store refresh token: %v", err)
		return TokenPair{}, commonerrors.ErrDatabaseError.WithCause(err)
	}

	return TokenPair{AccessToken: accessToken, RefreshToken: record.RawToken}, nil
}

func (s *AuthService) mintPair(user domain.User) (string, domain.RefreshToken, error) {
	accessToken, err := s.issuer.IssueAccessToken(user)
	if err != nil {
		return "", domain.RefreshToken{}, commonerrors.ErrInternalError.WithCause(err)
	}

	rawRefresh, expiresAt, err := s.issuer.IssueRefreshToken(user)
	if err != nil {
		return "", domain.RefreshToken{}, commonerrors.ErrInternalError.WithCause(err)
	}

	id, err := s.idGenerator.NewID()
	if err != nil {
		return "", domain.RefreshToken{}, commonerrors.ErrInternalError.WithCause(err)
	}

	record := domain.RefreshToken{
		ID:        id,
		UserID:    user.ID,
		TokenHash: HashRefreshToken(rawRefresh),
		ExpiresAt: expiresAt,
		CreatedAt: s.clock.Now(),
		RawToken:  rawRefresh,
	}

	return accessToken, record, nil
}

func sanitizeUser(user domain.User) SanitizedUser {
	return SanitizedUser{
		ID:           user.ID,
		Email:        user.Email,
		Role:         user.Role,
		TokenVersion: user.TokenVersion,
		CreatedAt:    user.CreatedAt,
	}
}
