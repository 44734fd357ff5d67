package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const summaryKeyPrefix = "exerciseSummary:"

// Summary caches computed per-user exercise summaries in redis. Failures
// are logged and swallowed: the cache is an optimization, never a source
// of truth, and callers recompute on any miss.
type Summary struct {
	rdb *redis.Client
	ttl time.Duration
	log *zap.Logger
}

func NewSummary(rdb *redis.Client, ttl time.Duration, logger *zap.Logger) *Summary {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Summary{rdb: rdb, ttl: ttl, log: logger}
}

func (s *Summary) Get(ctx context.Context, userBasicInfoID string) (map[string]interface{}, bool) {
	raw, err := s.rdb.Get(ctx, summaryKeyPrefix+userBasicInfoID).Bytes()
	if err != nil {
		if err != redis.Nil {
			s.log.Warn("summary cache read failed",
				zap.String("userBasicInfoId", userBasicInfoID), zap.Error(err))
		}
		return nil, false
	}
	var summary map[string]interface{}
	if err := json.Unmarshal(raw, &summary); err != nil {
		s.log.Warn("summary cache entry corrupt",
			zap.String("userBasicInfoId", userBasicInfoID), zap.Error(err))
		return nil, false
	}
	return summary, true
}

func (s *Summary) Set(ctx context.Context, userBasicInfoID string, summary map[string]interface{}) {
	raw, err := json.Marshal(summary)
	if err != nil {
		s.log.Warn("summary cache encode failed",
			zap.String("userBasicInfoId", userBasicInfoID), zap.Error(err))
		return
	}
	if err := s.rdb.Set(ctx, summaryKeyPrefix+userBasicInfoID, raw, s.ttl).Err(); err != nil {
		s.log.Warn("summary cache write failed",
			zap.String("userBasicInfoId", userBasicInfoID), zap.Error(err))
	}
}
