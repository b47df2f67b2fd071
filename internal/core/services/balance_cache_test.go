package services

import (
	"testing"
	"time"

	"github.com/SscSPs/rental_ledger/internal/core/domain"
	"github.com/stretchr/testify/assert"
)

func TestBalanceCache_InvalidateFrom(t *testing.T) {
	c := newBalanceCache(16)
	jan := domain.BalanceQuery{AccountCode: "1100", AsOf: time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), Basis: domain.BasisAccrual}
	feb := jan
	feb.AsOf = time.Date(2025, 2, 28, 0, 0, 0, 0, time.UTC)
	c.put(jan, domain.AccountBalance{AccountCode: "1100"}, c.generation())
	c.put(feb, domain.AccountBalance{AccountCode: "1100"}, c.generation())

	purged := c.invalidateFrom(time.Date(2025, 2, 10, 15, 30, 0, 0, time.UTC))

	assert.Equal(t, 1, purged)
	_, ok := c.get(jan)
	assert.True(t, ok, "balances ending before the posting date stay cached")
	_, ok = c.get(feb)
	assert.False(t, ok)

	c.purge()
	assert.Equal(t, 0, c.len())
}

func TestBalanceCache_SkipsPutAfterInvalidation(t *testing.T) {
	c := newBalanceCache(16)
	q := domain.BalanceQuery{AccountCode: "1100", AsOf: time.Date(2025, 1, 31, 0, 0, 0, 0, time.UTC), Basis: domain.BasisAccrual}

	gen := c.generation()
	c.invalidateFrom(time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC))
	assert.False(t, c.put(q, domain.AccountBalance{AccountCode: "1100"}, gen))
	_, ok := c.get(q)
	assert.False(t, ok, "a balance read before the invalidation must not be cached")

	assert.True(t, c.put(q, domain.AccountBalance{AccountCode: "1100"}, c.generation()))
	_, ok = c.get(q)
	assert.True(t, ok)
}

func TestBalanceCache_DisabledIsNoop(t *testing.T) {
	c := newBalanceCache(0)
	assert.Nil(t, c)

	q := domain.BalanceQuery{AccountCode: "1000", AsOf: time.Now()}
	assert.False(t, c.put(q, domain.AccountBalance{}, c.generation()))
	_, ok := c.get(q)
	assert.False(t, ok)
	assert.Equal(t, 0, c.invalidateFrom(time.Now()))
}

func TestUUIDGenerator_IssuesDistinctIDs(t *testing.T) {
	g := UUIDGenerator{}
	a, b := g.NewID(), g.NewID()
	assert.NotEqual(t, a, b)
	assert.Len(t, a, 36)
}
