package services

import (
	"sync"
	"time"

	"github.com/SscSPs/rental_ledger/internal/core/domain"
	lru "github.com/hashicorp/golang-lru/v2"
)

// balanceKey identifies one cached balance query.
type balanceKey struct {
	code      string
	from      string
	asOf      string
	basis     domain.Basis
	residence string
}

func newBalanceKey(q domain.BalanceQuery) balanceKey {
	k := balanceKey{
		code:      q.AccountCode,
		asOf:      q.AsOf.Format(time.DateOnly),
		basis:     q.Basis,
		residence: q.ResidenceID,
	}
	if q.From != nil {
		k.from = q.From.Format(time.DateOnly)
	}
	return k
}

// balanceCache memoizes rolled-up balances. A nil cache is valid and never hits.
//
// Every invalidation bumps gen. A result computed before an invalidation is
// only stored if gen has not moved since the caller read it.
type balanceCache struct {
	mu      sync.Mutex
	gen     uint64
	entries *lru.Cache[balanceKey, domain.AccountBalance]
}

// newBalanceCache returns nil when size is not positive.
func newBalanceCache(size int) *balanceCache {
	if size <= 0 {
		return nil
	}
	c, err := lru.New[balanceKey, domain.AccountBalance](size)
	if err != nil {
		return nil
	}
	return &balanceCache{entries: c}
}

func (c *balanceCache) get(q domain.BalanceQuery) (domain.AccountBalance, bool) {
	if c == nil {
		return domain.AccountBalance{}, false
	}
	return c.entries.Get(newBalanceKey(q))
}

// generation returns the current invalidation generation.
func (c *balanceCache) generation() uint64 {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.gen
}

// put stores b if no invalidation happened since gen was read. It reports
// whether the balance was stored.
func (c *balanceCache) put(q domain.BalanceQuery, b domain.AccountBalance, gen uint64) bool {
	if c == nil {
		return false
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gen != gen {
		return false
	}
	c.entries.Add(newBalanceKey(q), b)
	return true
}

// invalidateFrom purges every balance whose as-of date is on or after date.
// Balances ending before date cannot include an entry dated date.
func (c *balanceCache) invalidateFrom(date time.Time) int {
	if c == nil {
		return 0
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	cutoff := domain.DateOnly(date).Format(time.DateOnly)
	purged := 0
	for _, k := range c.entries.Keys() {
		if k.asOf >= cutoff {
			c.entries.Remove(k)
			purged++
		}
	}
	return purged
}

func (c *balanceCache) purge() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.gen++
	c.entries.Purge()
}

func (c *balanceCache) len() int {
	if c == nil {
		return 0
	}
	return c.entries.Len()
}
