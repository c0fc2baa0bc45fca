package auth

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"log/slog"
	"time"

	"shelfapi/internal/platform/crypto"
	"shelfapi/internal/session"
	"shelfapi/internal/user"
)

var (
	ErrUnauthorized = errors.New("unauthorized")
)

const (
	AccessTokenTTL   = 15 * time.Minute
	RefreshTokenTTL  = 30 * 24 * time.Hour
	RememberMeTTL    = 90 * 24 * time.Hour
	refreshTokenSize = 32
)

type Users interface {
	Authenticate(ctx context.Context, email, password string) (user.User, error)
	GetByID(ctx context.Context, id string) (user.User, error)
}

type Sessions interface {
	Create(ctx context.Context, s *session.Session) error
	GetByTokenHash(ctx context.Context, hash string) (session.Session, error)
	DeleteByTokenHash(ctx context.Context, hash string) error
	AddToBlacklist(ctx context.Context, jti, userID string, expiresAt time.Time) error
}

// Tokens is the credential pair handed to clients.
type Tokens struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	ExpiresIn    int    `json:"expires_in"`
}

type Service struct {
	secret   string
	users    Users
	sessions Sessions
	logger   *slog.Logger
	now      func() time.Time
}

func NewService(secret string, users Users, sessions Sessions, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		secret:   secret,
		users:    users,
		sessions: sessions,
		logger:   logger.With("component", "auth"),
		now:      time.Now,
	}
}

func hashToken(token string) string {
	hash := sha256.Sum256([]byte(token))
	return hex.EncodeToString(hash[:])
}

func refreshTTL(rememberMe bool) time.Duration {
	if rememberMe {
		return RememberMeTTL
	}
	return RefreshTokenTTL
}

// issue signs an access token and stores a new refresh session.
func (s *Service) issue(ctx context.Context, u user.User, rememberMe bool, userAgent, ipAddress string) (Tokens, error) {
	accessToken, _, err := crypto.GenerateToken(s.secret, u.ID, u.Role, AccessTokenTTL)
	if err != nil {
		return Tokens{}, err
	}

	refreshToken, err := crypto.RandomToken(refreshTokenSize)
	if err != nil {
		return Tokens{}, err
	}

	sess := &session.Session{
		UserID:           u.ID,
		RefreshTokenHash: hashToken(refreshToken),
		UserAgent:        userAgent,
		IPAddress:        ipAddress,
		RememberMe:       rememberMe,
		ExpiresAt:        s.now().Add(refreshTTL(rememberMe)),
	}
	if err := s.sessions.Create(ctx, sess); err != nil {
		return Tokens{}, err
	}

	return Tokens{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresIn:    int(AccessTokenTTL.Seconds()),
	}, nil
}

func (s *Service) Login(ctx context.Context, email, password string, rememberMe bool, userAgent, ipAddress string) (Tokens, error) {
	u, err := s.users.Authenticate(ctx, email, password)
	if err != nil {
		if errors.Is(err, user.ErrNotFound) {
			return Tokens{}, ErrUnauthorized
		}
		return Tokens{}, err
	}
	tokens, err := s.issue(ctx, u, rememberMe, userAgent, ipAddress)
	if err != nil {
		return Tokens{}, err
	}
	s.logger.Info("user logged in", "user_id", u.ID, "remember_me", rememberMe)
	return tokens, nil
}

// RefreshToken rotates the refresh token: the presented one is consumed.
func (s *Service) RefreshToken(ctx context.Context, refreshToken string) (Tokens, error) {
	tokenHash := hashToken(refreshToken)
	sess, err := s.sessions.GetByTokenHash(ctx, tokenHash)
	if err != nil {
		return Tokens{}, ErrUnauthorized
	}

	u, err := s.users.GetByID(ctx, sess.UserID)
	if err != nil {
		return Tokens{}, ErrUnauthorized
	}

	if err := s.sessions.DeleteByTokenHash(ctx, tokenHash); err != nil {
		return Tokens{}, err
	}

	return s.issue(ctx, u, sess.RememberMe, sess.UserAgent, sess.IPAddress)
}

// Logout blacklists the access token's JTI until it would have expired.
func (s *Service) Logout(ctx context.Context, token string, userID string) error {
	claims, err := crypto.ParseToken(s.secret, token)
	if err != nil {
		return ErrUnauthorized
	}

	expiresAt := s.now().Add(AccessTokenTTL)
	if claims.ExpiresAt != nil {
		expiresAt = claims.ExpiresAt.Time
	}

	if err := s.sessions.AddToBlacklist(ctx, claims.ID, userID, expiresAt); err != nil {
		return err
	}
	s.logger.Info("user logged out", "user_id", userID)
	return nil
}
