// Package cache adds a Redis read-through layer in front of student profile reads.
package cache

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"

	"admissions-engine/internal/common/logger"
	"admissions-engine/internal/models"
	"admissions-engine/internal/store"
)

const studentKeyPrefix = "student:profile:"

// StudentKey is the Redis key holding a cached student profile.
func StudentKey(id string) string {
	return studentKeyPrefix + id
}

// Students caches StudentRepository.Get. Redis failures fall through to the
// wrapped repository and are only logged.
type Students struct {
	next   store.StudentRepository
	redis  redis.Cmdable
	ttl    time.Duration
	logger logger.Logger
}

func NewStudents(next store.StudentRepository, rdb redis.Cmdable, ttl time.Duration, log logger.Logger) *Students {
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	return &Students{next: next, redis: rdb, ttl: ttl, logger: log}
}

// Wrap swaps s.Students for a cached version and returns s.
func Wrap(s *store.Store, rdb redis.Cmdable, ttl time.Duration, log logger.Logger) *store.Store {
	s.Students = NewStudents(s.Students, rdb, ttl, log)
	return s
}

func (c *Students) Create(ctx context.Context, s *models.Student) error {
	if err := c.next.Create(ctx, s); err != nil {
		return err
	}
	c.invalidate(ctx, s.ID)
	return nil
}

func (c *Students) Get(ctx context.Context, id string) (*models.Student, error) {
	key := StudentKey(id)
	if val, err := c.redis.Get(ctx, key).Result(); err == nil {
		var s models.Student
		if err := json.Unmarshal([]byte(val), &s); err == nil {
			return &s, nil
		}
	} else if err != redis.Nil {
		c.logger.Warn("student cache read failed", map[string]interface{}{
			"studentId": id,
			"error":     err.Error(),
		})
	}

	s, err := c.next.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	data, _ := json.Marshal(s)
	if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
		c.logger.Warn("student cache write failed", map[string]interface{}{
			"studentId": id,
			"error":     err.Error(),
		})
	}
	return s, nil
}

func (c *Students) ListIDs(ctx context.Context) ([]string, error) {
	return c.next.ListIDs(ctx)
}

// PutGradeSnapshot writes through and drops the cached profile.
func (c *Students) PutGradeSnapshot(ctx context.Context, studentID, institutionID string, snap models.GradeSnapshot) error {
	if err := c.next.PutGradeSnapshot(ctx, studentID, institutionID, snap); err != nil {
		return err
	}
	c.invalidate(ctx, studentID)
	return nil
}

func (c *Students) invalidate(ctx context.Context, id string) {
	if err := c.redis.Del(ctx, StudentKey(id)).Err(); err != nil {
		c.logger.Warn("student cache invalidation failed", map[string]interface{}{
			"studentId": id,
			"error":     err.Error(),
		})
	}
}
