package session

import (
	"context"
	"log/slog"
	"time"
)

type Service struct {
	repo          Repository
	blacklistRepo BlacklistRepository
	logger        *slog.Logger
}

func NewService(repo Repository, blacklistRepo BlacklistRepository, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{
		repo:          repo,
		blacklistRepo: blacklistRepo,
		logger:        logger.With("component", "session"),
	}
}

func (s *Service) ListByUserID(ctx context.Context, userID string) ([]Session, error) {
	return s.repo.ListByUserID(ctx, userID)
}

func (s *Service) DeleteForUser(ctx context.Context, sessionID, userID string) error {
	return s.repo.DeleteForUser(ctx, sessionID, userID)
}

func (s *Service) Create(ctx context.Context, session *Session) error {
	return s.repo.Create(ctx, session)
}

func (s *Service) GetByTokenHash(ctx context.Context, hash string) (Session, error) {
	return s.repo.GetByTokenHash(ctx, hash)
}

func (s *Service) DeleteByTokenHash(ctx context.Context, hash string) error {
	return s.repo.DeleteByTokenHash(ctx, hash)
}

func (s *Service) AddToBlacklist(ctx context.Context, jti, userID string, expiresAt time.Time) error {
	return s.blacklistRepo.AddToken(ctx, jti, userID, expiresAt)
}

func (s *Service) IsBlacklisted(ctx context.Context, jti string) (bool, error) {
	return s.blacklistRepo.IsBlacklisted(ctx, jti)
}

// Cleanup deletes expired sessions and blacklist entries.
func (s *Service) Cleanup(ctx context.Context) {
	if n, err := s.repo.CleanupExpired(ctx); err != nil {
		s.logger.Warn("session cleanup failed", "error", err)
	} else if n > 0 {
		s.logger.Info("expired sessions removed", "count", n)
	}
	if n, err := s.blacklistRepo.CleanupExpired(ctx); err != nil {
		s.logger.Warn("blacklist cleanup failed", "error", err)
	} else if n > 0 {
		s.logger.Info("expired blacklist entries removed", "count", n)
	}
}

// RunCleanup calls Cleanup every interval until ctx is done.
func (s *Service) RunCleanup(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.Cleanup(ctx)
		}
	}
}
