// Package flags selects the serving model for a request from the
// feature_flags table, with an environment override for emergency
// rollback and a deterministic percentage rollout keyed on the user id.
package flags

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"time"

	"showbook/internal/database"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
)

const (
	// FlagModelKey ключ флага с конфигурацией модели
	FlagModelKey = "ai:model"

	cacheKey = "flags:ai:model"
)

// modelFlag is the JSON shape stored under the ai:model flag.
type modelFlag struct {
	Model         string  `json:"model"`
	Percent       float64 `json:"percent"`
	ModelFallback string  `json:"model_fallback"`
}

type Selector struct {
	db           *database.DB
	redis        *redis.Client
	envOverride  string
	defaultModel string
	cacheTTL     time.Duration
	logger       *zerolog.Logger
}

func NewSelector(db *database.DB, redisClient *redis.Client, envOverride, defaultModel string, cacheTTL time.Duration, logger *zerolog.Logger) *Selector {
	return &Selector{
		db:           db,
		redis:        redisClient,
		envOverride:  envOverride,
		defaultModel: defaultModel,
		cacheTTL:     cacheTTL,
		logger:       logger,
	}
}

// ModelForRequest resolves the model for a request.
// Priority: env override -> feature_flags table -> default.
// Any store failure degrades to the default; a request never fails here.
func (s *Selector) ModelForRequest(ctx context.Context, userID string) string {
	// Быстрый откат через окружение
	if override := os.Getenv(s.envOverride); override != "" {
		return override
	}

	raw, err := s.flagValue(ctx)
	if errors.Is(err, database.ErrFlagNotFound) {
		return s.defaultModel
	}
	if err != nil {
		s.logger.Error().Err(err).Str("flag", FlagModelKey).Msg("read model flag")
		return s.defaultModel
	}

	var flag modelFlag
	if err := json.Unmarshal([]byte(raw), &flag); err != nil {
		s.logger.Error().Err(err).Str("flag", FlagModelKey).Msg("parse model flag")
		return s.defaultModel
	}

	if flag.Percent > 0 {
		if flag.Percent >= 100 {
			return flag.Model
		}
		if bucketFor(userID) <= int(flag.Percent) {
			return flag.Model
		}
		if flag.ModelFallback != "" {
			return flag.ModelFallback
		}
		return s.defaultModel
	}

	if flag.Model != "" {
		return flag.Model
	}
	return s.defaultModel
}

func (s *Selector) flagValue(ctx context.Context) (string, error) {
	if s.redis != nil {
		if val, err := s.redis.Get(ctx, cacheKey).Result(); err == nil {
			return val, nil
		}
	}

	val, err := s.db.GetFeatureFlag(ctx, FlagModelKey)
	if err != nil {
		return "", err
	}

	if s.redis != nil {
		if err := s.redis.Set(ctx, cacheKey, val, s.cacheTTL).Err(); err != nil {
			s.logger.Warn().Err(err).Msg("cache model flag")
		}
	}
	return val, nil
}

// bucketFor maps a user id onto 1..100 deterministically, so a given user
// always lands on the same side of the rollout percentage.
func bucketFor(userID string) int {
	if userID == "" {
		userID = "anon"
	}
	h := int64(hashString(userID))
	if h < 0 {
		h = -h
	}
	return int(h%100) + 1
}

// hashString is the 31-multiplier string hash with int32 overflow
// semantics; changing it would reshuffle every user's bucket.
func hashString(s string) int32 {
	var h int32
	for _, c := range s {
		h = (h << 5) - h + int32(c)
	}
	return h
}
