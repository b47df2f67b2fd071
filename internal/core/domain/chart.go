package domain

import (
	"sort"
	"strings"
)

// Chart is an immutable snapshot of the chart of accounts with a resolved
// parent/child index.
//
// A child is linked to its parent by ParentCode. Accounts without a
// ParentCode may, when prefix fallback is enabled, inherit the longest
// existing code P such that their own code starts with "P-". The explicit
// link always wins.
type Chart struct {
	accounts       map[string]Account
	order          []string
	parent         map[string]string
	children       map[string][]string
	prefixFallback bool
}

// NewChart indexes accounts. Accounts are ordered by code.
func NewChart(accounts []Account, prefixFallback bool) *Chart {
	c := &Chart{
		accounts:       make(map[string]Account, len(accounts)),
		parent:         make(map[string]string, len(accounts)),
		children:       make(map[string][]string),
		prefixFallback: prefixFallback,
	}
	for _, a := range accounts {
		c.accounts[a.Code] = a
		c.order = append(c.order, a.Code)
	}
	sort.Strings(c.order)

	for _, code := range c.order {
		p := c.resolveParent(c.accounts[code])
		if p == "" {
			continue
		}
		c.parent[code] = p
		c.children[p] = append(c.children[p], code)
	}
	return c
}

func (c *Chart) resolveParent(a Account) string {
	if a.ParentCode != "" {
		if _, ok := c.accounts[a.ParentCode]; ok {
			return a.ParentCode
		}
		return ""
	}
	if !c.prefixFallback {
		return ""
	}
	return c.PrefixParent(a.Code)
}

// PrefixParent returns the longest other code P for which code matches
// ^P-.*$, or "" when none exists.
func (c *Chart) PrefixParent(code string) string {
	best := ""
	for other := range c.accounts {
		if other == code || len(other) <= len(best) {
			continue
		}
		if strings.HasPrefix(code, other+"-") {
			best = other
		}
	}
	return best
}

// Lookup returns the account for code.
func (c *Chart) Lookup(code string) (Account, bool) {
	a, ok := c.accounts[code]
	return a, ok
}

// Accounts returns every account ordered by code.
func (c *Chart) Accounts() []Account {
	out := make([]Account, 0, len(c.order))
	for _, code := range c.order {
		out = append(out, c.accounts[code])
	}
	return out
}

// Parent returns the effective parent code of code.
func (c *Chart) Parent(code string) string {
	return c.parent[code]
}

// Children returns the direct children of code, ordered by code. Inactive
// children are included only when includeInactive is set.
func (c *Chart) Children(code string, includeInactive bool) []Account {
	var out []Account
	for _, child := range c.children[code] {
		a := c.accounts[child]
		if !a.IsActive && !includeInactive {
			continue
		}
		out = append(out, a)
	}
	return out
}

// Subtree returns code followed by all of its descendants in depth-first
// order. Inactive accounts stay in the tree; their history still rolls up.
func (c *Chart) Subtree(code string) []string {
	var out []string
	seen := make(map[string]bool)
	var walk func(string)
	walk = func(cur string) {
		if seen[cur] {
			return
		}
		seen[cur] = true
		out = append(out, cur)
		for _, child := range c.Children(cur, true) {
			walk(child.Code)
		}
	}
	if _, ok := c.accounts[code]; ok {
		walk(code)
	}
	return out
}

// Roots returns the accounts of type t that have no effective parent,
// inactive ones included.
func (c *Chart) Roots(t AccountType) []Account {
	var out []Account
	for _, code := range c.order {
		a := c.accounts[code]
		if a.Type != t {
			continue
		}
		if c.parent[code] != "" {
			continue
		}
		out = append(out, a)
	}
	return out
}

// CodesWithRole returns the accounts carrying role, inactive ones included.
func (c *Chart) CodesWithRole(role AccountRole) []string {
	var out []string
	for _, code := range c.order {
		a := c.accounts[code]
		if a.Role == role {
			out = append(out, code)
		}
	}
	return out
}

// WouldCycle reports whether linking child under parent creates a cycle.
func (c *Chart) WouldCycle(child, parent string) bool {
	seen := make(map[string]bool)
	for cur := parent; cur != ""; cur = c.parent[cur] {
		if cur == child || seen[cur] {
			return true
		}
		seen[cur] = true
	}
	return false
}

// ParentChange is a proposed ParentCode assignment.
type ParentChange struct {
	Code       string `json:"code"`
	ParentCode string `json:"parentCode"`
}

// PrefixBackfill lists the ParentCode assignments implied by the legacy code
// prefix convention for accounts that have no explicit parent yet. Changes
// whose type would not match the parent are skipped.
func (c *Chart) PrefixBackfill() []ParentChange {
	var out []ParentChange
	for _, code := range c.order {
		a := c.accounts[code]
		if a.ParentCode != "" {
			continue
		}
		p := c.PrefixParent(code)
		if p == "" || c.accounts[p].Type != a.Type {
			continue
		}
		out = append(out, ParentChange{Code: code, ParentCode: p})
	}
	return out
}
