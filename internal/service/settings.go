package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tsvetelinpenkovv/obms-stocksync/internal/domain"
	"github.com/tsvetelinpenkovv/obms-stocksync/internal/repository"
)

const settingsCacheKey = "stocksync:settings:stock"

// Settings manages the operator-configured role status mapping with an
// optional Redis read-through cache. The cache is invalidated on save and its
// short TTL bounds staleness across instances; every transition still reads
// settings through Current, so changes apply on the next call.
type Settings struct {
	repo     repository.SettingsRepository
	audit    repository.AuditRepository
	cache    *redis.Client
	cacheTTL time.Duration
	logger   *slog.Logger
}

// NewSettings creates the settings service. cache may be nil.
func NewSettings(repo repository.SettingsRepository, audit repository.AuditRepository, cache *redis.Client, cacheTTL time.Duration, logger *slog.Logger) *Settings {
	return &Settings{
		repo:     repo,
		audit:    audit,
		cache:    cache,
		cacheTTL: cacheTTL,
		logger:   logger,
	}
}

// Current returns the active stock settings. Cache failures fall through to
// the store.
func (s *Settings) Current(ctx context.Context) (domain.StockSettings, error) {
	if s.cache != nil {
		raw, err := s.cache.Get(ctx, settingsCacheKey).Bytes()
		if err == nil {
			var cached domain.StockSettings
			if jsonErr := json.Unmarshal(raw, &cached); jsonErr == nil {
				return cached, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			s.logger.WarnContext(ctx, "settings cache read failed", slog.String("error", err.Error()))
		}
	}

	settings, err := s.repo.GetStockSettings(ctx)
	if err != nil {
		return domain.StockSettings{}, fmt.Errorf("load stock settings: %w", err)
	}

	s.cacheSet(ctx, settings)
	return settings, nil
}

// Update validates and persists new stock settings, invalidating the cache
// and recording the change in the audit log.
func (s *Settings) Update(ctx context.Context, settings domain.StockSettings) error {
	if err := settings.Validate(); err != nil {
		return err
	}

	before, err := s.repo.GetStockSettings(ctx)
	if err != nil {
		return fmt.Errorf("load current stock settings: %w", err)
	}

	if err := s.repo.SaveStockSettings(ctx, settings); err != nil {
		return fmt.Errorf("save stock settings: %w", err)
	}

	if s.cache != nil {
		if err := s.cache.Del(ctx, settingsCacheKey).Err(); err != nil {
			s.logger.WarnContext(ctx, "settings cache invalidation failed", slog.String("error", err.Error()))
		}
	}

	if err := s.audit.RecordAuditEvent(ctx, "settings.stock_updated", "stock_settings", "stock", before, settings); err != nil {
		s.logger.WarnContext(ctx, "failed to record settings audit event", slog.String("error", err.Error()))
	}

	s.logger.InfoContext(ctx, "stock settings updated",
		slog.String("reserve_status", string(settings.ReserveStatus)),
		slog.String("deduction_status", string(settings.DeductionStatus)),
		slog.String("restore_status", string(settings.RestoreStatus)),
	)
	return nil
}

func (s *Settings) cacheSet(ctx context.Context, settings domain.StockSettings) {
	if s.cache == nil {
		return
	}
	raw, err := json.Marshal(settings)
	if err != nil {
		return
	}
	if err := s.cache.Set(ctx, settingsCacheKey, raw, s.cacheTTL).Err(); err != nil {
		s.logger.WarnContext(ctx, "settings cache write failed", slog.String("error", err.Error()))
	}
}
