package cache

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/tablecart/internal/constants"
	"github.com/tablecart/internal/logger"

	"github.com/redis/go-redis/v9"
	"github.com/sony/gobreaker/v2"
)

// ErrSlotUnavailable Redis 槽位熔断中
var ErrSlotUnavailable = errors.New("cart slot unavailable")

// CartSlotOptions Redis 购物车槽位配置
type CartSlotOptions struct {
	Prefix           string
	TTL              time.Duration
	FailureThreshold int
	OpenTimeout      time.Duration
}

type slotResult struct {
	value []byte
	found bool
}

// CartSlot 基于 Redis 的购物车槽位（带过期时间与熔断）
type CartSlot struct {
	client  *redis.Client
	prefix  string
	ttl     time.Duration
	breaker *gobreaker.CircuitBreaker[slotResult]
}

// NewCartSlot 创建 Redis 槽位
func NewCartSlot(client *redis.Client, options CartSlotOptions) *CartSlot {
	prefix := strings.TrimSpace(options.Prefix)
	if prefix == "" {
		prefix = constants.RedisPrefixDefault
	}
	ttl := options.TTL
	if ttl <= 0 {
		ttl = 72 * time.Hour
	}
	threshold := options.FailureThreshold
	if threshold <= 0 {
		threshold = 5
	}
	openTimeout := options.OpenTimeout
	if openTimeout <= 0 {
		openTimeout = 30 * time.Second
	}

	breaker := gobreaker.NewCircuitBreaker[slotResult](gobreaker.Settings{
		Name:        "cart_slot_redis",
		MaxRequests: 1,
		Timeout:     openTimeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= uint32(threshold)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			logger.Warnw("cart_slot_breaker_state_changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
	return &CartSlot{client: client, prefix: prefix, ttl: ttl, breaker: breaker}
}

// Load 读取快照
func (s *CartSlot) Load(ctx context.Context, key string) ([]byte, bool, error) {
	result, err := s.breaker.Execute(func() (slotResult, error) {
		value, err := s.client.Get(ctx, s.key(key)).Bytes()
		if errors.Is(err, redis.Nil) {
			return slotResult{}, nil
		}
		if err != nil {
			return slotResult{}, err
		}
		return slotResult{value: value, found: true}, nil
	})
	if err != nil {
		return nil, false, s.wrap("load", err)
	}
	return result.value, result.found, nil
}

// Save 写入快照并刷新过期时间
func (s *CartSlot) Save(ctx context.Context, key string, value []byte) error {
	_, err := s.breaker.Execute(func() (slotResult, error) {
		return slotResult{}, s.client.Set(ctx, s.key(key), value, s.ttl).Err()
	})
	return s.wrap("save", err)
}

// Delete 删除快照
func (s *CartSlot) Delete(ctx context.Context, key string) error {
	_, err := s.breaker.Execute(func() (slotResult, error) {
		return slotResult{}, s.client.Del(ctx, s.key(key)).Err()
	})
	return s.wrap("delete", err)
}

// State 熔断器状态
func (s *CartSlot) State() gobreaker.State {
	return s.breaker.State()
}

func (s *CartSlot) key(key string) string {
	return fmt.Sprintf("%s:%s", s.prefix, strings.TrimSpace(key))
}

func (s *CartSlot) wrap(op string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("redis cart slot %s: %w: %v", op, ErrSlotUnavailable, err)
	}
	return fmt.Errorf("redis cart slot %s: %w", op, err)
}
