package chartfile

import (
	"fmt"
	"io"
	"strings"

	"github.com/SscSPs/rental_ledger/internal/core/domain"
	"gopkg.in/yaml.v3"
)

// yamlChart is the on-disk YAML layout. Children may be nested under their
// parent instead of naming it with parent.
type yamlChart struct {
	Accounts []yamlAccount `yaml:"accounts"`
}

type yamlAccount struct {
	Code        string        `yaml:"code"`
	Name        string        `yaml:"name"`
	Type        string        `yaml:"type"`
	Category    string        `yaml:"category,omitempty"`
	Parent      string        `yaml:"parent,omitempty"`
	Role        string        `yaml:"role,omitempty"`
	Description string        `yaml:"description,omitempty"`
	Inactive    bool          `yaml:"inactive,omitempty"`
	Children    []yamlAccount `yaml:"children,omitempty"`
}

// ReadAccountsYAML reads a YAML chart. Nested children inherit their
// parent's code and, when omitted, its type.
func ReadAccountsYAML(r io.Reader) ([]domain.Account, error) {
	var doc yamlChart
	if err := yaml.NewDecoder(r).Decode(&doc); err != nil {
		if err == io.EOF {
			return nil, nil
		}
		return nil, fmt.Errorf("reading accounts YAML: %w", err)
	}

	var out []domain.Account
	var walk func(items []yamlAccount, parent *domain.Account) error
	walk = func(items []yamlAccount, parent *domain.Account) error {
		for _, y := range items {
			acct := domain.Account{
				Code:        strings.TrimSpace(y.Code),
				Name:        y.Name,
				Type:        domain.AccountType(strings.ToUpper(y.Type)),
				Category:    y.Category,
				ParentCode:  y.Parent,
				Role:        domain.AccountRole(strings.ToUpper(y.Role)),
				Description: y.Description,
				IsActive:    !y.Inactive,
			}
			if parent != nil {
				acct.ParentCode = parent.Code
				if acct.Type == "" {
					acct.Type = parent.Type
				}
				if acct.Category == "" {
					acct.Category = parent.Category
				}
			}
			if err := validate(acct); err != nil {
				return err
			}
			out = append(out, acct)
			if err := walk(y.Children, &acct); err != nil {
				return err
			}
		}
		return nil
	}
	if err := walk(doc.Accounts, nil); err != nil {
		return nil, err
	}
	return out, nil
}

// ReadAccounts dispatches on the file name extension.
func ReadAccounts(name string, r io.Reader) ([]domain.Account, error) {
	lower := strings.ToLower(name)
	switch {
	case strings.HasSuffix(lower, ".csv"):
		return ReadAccountsCSV(r)
	case strings.HasSuffix(lower, ".yaml"), strings.HasSuffix(lower, ".yml"):
		return ReadAccountsYAML(r)
	}
	return nil, fmt.Errorf("unsupported chart file %q: expected .csv, .yaml or .yml", name)
}

// SortParentsFirst orders accounts so every parent precedes its children.
// Accounts whose parent is not in the slice keep their relative order.
func SortParentsFirst(accounts []domain.Account) []domain.Account {
	byCode := make(map[string]domain.Account, len(accounts))
	for _, a := range accounts {
		byCode[a.Code] = a
	}
	done := make(map[string]bool, len(accounts))
	out := make([]domain.Account, 0, len(accounts))
	var visit func(a domain.Account, depth int)
	visit = func(a domain.Account, depth int) {
		if done[a.Code] || depth > len(accounts) {
			return
		}
		if p, ok := byCode[a.ParentCode]; ok && p.Code != a.Code {
			visit(p, depth+1)
		}
		if !done[a.Code] {
			done[a.Code] = true
			out = append(out, a)
		}
	}
	for _, a := range accounts {
		visit(a, 0)
	}
	return out
}
