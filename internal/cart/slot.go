package cart

import (
	"context"
	"fmt"
	"strings"
	"sync"
)

// SlotKeyVersion 快照格式版本，旧版本的数据不会被当作当前格式解析
const SlotKeyVersion = "v2"

// Slot 购物车持久化槽位
type Slot interface {
	Load(ctx context.Context, key string) ([]byte, bool, error)
	Save(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
}

// SlotKey 生成店铺维度的槽位 key
func SlotKey(storefrontID string) string {
	return fmt.Sprintf("cart:%s:%s", strings.TrimSpace(storefrontID), SlotKeyVersion)
}

// MemorySlot 进程内槽位
type MemorySlot struct {
	mu     sync.RWMutex
	values map[string][]byte
}

// NewMemorySlot 创建进程内槽位
func NewMemorySlot() *MemorySlot {
	return &MemorySlot{values: make(map[string][]byte)}
}

// Load 读取
func (m *MemorySlot) Load(_ context.Context, key string) ([]byte, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	value, ok := m.values[key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), value...), true, nil
}

// Save 写入
func (m *MemorySlot) Save(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.values[key] = append([]byte(nil), value...)
	return nil
}

// Delete 删除
func (m *MemorySlot) Delete(_ context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.values, key)
	return nil
}

// ScopedSlot 为底层槽位增加命名空间（例如会话ID）
type ScopedSlot struct {
	inner     Slot
	namespace string
}

// NewScopedSlot 创建带命名空间的槽位
func NewScopedSlot(inner Slot, namespace string) *ScopedSlot {
	return &ScopedSlot{inner: inner, namespace: strings.TrimSpace(namespace)}
}

func (s *ScopedSlot) key(key string) string {
	if s.namespace == "" {
		return key
	}
	return fmt.Sprintf("session:%s:%s", s.namespace, key)
}

// Load 读取
func (s *ScopedSlot) Load(ctx context.Context, key string) ([]byte, bool, error) {
	return s.inner.Load(ctx, s.key(key))
}

// Save 写入
func (s *ScopedSlot) Save(ctx context.Context, key string, value []byte) error {
	return s.inner.Save(ctx, s.key(key), value)
}

// Delete 删除
func (s *ScopedSlot) Delete(ctx context.Context, key string) error {
	return s.inner.Delete(ctx, s.key(key))
}
