package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/DeveloperForam/test-house-design/internal/models"
	"github.com/DeveloperForam/test-house-design/pkg/redis"
)

// ErrRequestInFlight means another request with the same key has not finished yet.
var ErrRequestInFlight = errors.New("a request with this idempotency key is already in progress")

const (
	IdempotencyTTL = 24 * time.Hour
	inFlightTTL    = 30 * time.Second
)

// IdempotencyStore remembers the payment each Idempotency-Key produced so a
// retried add-payment returns the original instead of recording twice.
type IdempotencyStore struct {
	kv     KV
	logger *zap.Logger
}

func NewIdempotencyStore(kv KV, logger *zap.Logger) *IdempotencyStore {
	return &IdempotencyStore{kv: kv, logger: logger}
}

// Do returns the stored payment for key if there is one. Otherwise it runs fn
// while holding the key and stores its result. replayed reports which happened.
func (s *IdempotencyStore) Do(ctx context.Context, key string, fn func() (*models.Payment, error)) (p *models.Payment, replayed bool, err error) {
	if cached, err := s.lookup(ctx, key); err == nil {
		return cached, true, nil
	} else if !errors.Is(err, redis.ErrKeyNotFound) {
		return nil, false, err
	}

	acquired, err := s.kv.SetNX(ctx, s.lockKey(key), "1", inFlightTTL)
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire idempotency key: %w", err)
	}
	if !acquired {
		return nil, false, ErrRequestInFlight
	}
	defer func() {
		if err := s.kv.Delete(context.Background(), s.lockKey(key)); err != nil {
			s.logger.Warn("failed to release idempotency key", zap.String("key", key), zap.Error(err))
		}
	}()

	p, err = fn()
	if err != nil {
		return nil, false, err
	}

	data, err := json.Marshal(p)
	if err != nil {
		return nil, false, err
	}
	if err := s.kv.Set(ctx, s.resultKey(key), data, IdempotencyTTL); err != nil {
		s.logger.Error("failed to store idempotent payment", zap.String("key", key), zap.Error(err))
	}
	return p, false, nil
}

func (s *IdempotencyStore) lookup(ctx context.Context, key string) (*models.Payment, error) {
	data, err := s.kv.Get(ctx, s.resultKey(key))
	if err != nil {
		return nil, err
	}
	var payment models.Payment
	if err := json.Unmarshal([]byte(data), &payment); err != nil {
		return nil, err
	}
	return &payment, nil
}

func (s *IdempotencyStore) resultKey(key string) string {
	return fmt.Sprintf("idempotency:payment:%s", key)
}

func (s *IdempotencyStore) lockKey(key string) string {
	return fmt.Sprintf("idempotency:payment:%s:lock", key)
}
