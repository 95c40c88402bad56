package inmemory

import (
	"sync"
	"time"

	seniorsdomain "osca-hub-go/internal/domain/seniors"
)

type InMemorySeniorsCache struct {
	mu    sync.RWMutex
	items map[string]seniorsItem
}

type seniorsItem struct {
	value     []seniorsdomain.Senior
	total     int64
	expiresAt time.Time
}

func NewInMemorySeniorsCache() *InMemorySeniorsCache {
	return &InMemorySeniorsCache{
		items: make(map[string]seniorsItem),
	}
}

func (c *InMemorySeniorsCache) GetByBarangay(barangayCode string) ([]seniorsdomain.Senior, int64, bool) {
	now := time.Now()

	c.mu.RLock()
	item, ok := c.items[barangayCode]
	c.mu.RUnlock()
	if !ok {
		return nil, 0, false
	}

	if !item.expiresAt.After(now) {
		c.mu.Lock()
		item, ok = c.items[barangayCode]
		if ok && !item.expiresAt.After(now) {
			delete(c.items, barangayCode)
		}
		c.mu.Unlock()
		return nil, 0, false
	}

	return cloneSeniors(item.value), item.total, true
}

func (c *InMemorySeniorsCache) SetByBarangay(barangayCode string, items []seniorsdomain.Senior, total int64, ttl time.Duration) {
	if ttl <= 0 {
		c.DeleteByBarangay(barangayCode)
		return
	}

	c.mu.Lock()
	c.items[barangayCode] = seniorsItem{
		value:     cloneSeniors(items),
		total:     total,
		expiresAt: time.Now().Add(ttl),
	}
	c.mu.Unlock()
}

func (c *InMemorySeniorsCache) DeleteByBarangay(barangayCode string) {
	c.mu.Lock()
	delete(c.items, barangayCode)
	c.mu.Unlock()
}

func cloneSeniors(items []seniorsdomain.Senior) []seniorsdomain.Senior {
	if items == nil {
		return nil
	}
	cloned := make([]seniorsdomain.Senior, len(items))
	copy(cloned, items)
	return cloned
}
