package vectorindex

import (
	"regexp"
	"strings"
	"sync"
	"unicode"
)

const collectionPrefix = "kb_"

var collectionNameRe = regexp.MustCompile(`[^a-zA-Z0-9._-]`)

// Factory builds the index for one tenant's collection name.
type Factory func(collection string) (Index, error)

// Provider hands out one lazily-created Index per tenant. Creation is
// idempotent under concurrent first access.
type Provider struct {
	factory Factory

	mu      sync.RWMutex
	indexes map[string]Index
}

// NewProvider creates a provider around the given factory.
func NewProvider(factory Factory) *Provider {
	return &Provider{
		factory: factory,
		indexes: make(map[string]Index),
	}
}

// For returns the tenant's index, creating it on first access.
func (p *Provider) For(tenantID string) (Index, error) {
	p.mu.RLock()
	idx, exists := p.indexes[tenantID]
	p.mu.RUnlock()
	if exists {
		return idx, nil
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	// Re-check under the write lock; another goroutine may have won the race.
	if idx, exists := p.indexes[tenantID]; exists {
		return idx, nil
	}

	idx, err := p.factory(CollectionName(tenantID))
	if err != nil {
		return nil, err
	}
	p.indexes[tenantID] = idx
	return idx, nil
}

// CollectionName sanitizes a tenant id into a valid collection name:
// prefixed, restricted to [a-zA-Z0-9._-], alphanumeric at both ends,
// at least 3 characters.
func CollectionName(tenantID string) string {
	name := strings.ToLower(strings.TrimSpace(tenantID))
	name = collectionNameRe.ReplaceAllString(name, "-")

	base := collectionPrefix + name
	if len(base) < 3 {
		base = collectionPrefix + "tenant"
	}
	if !isAlnum(rune(base[0])) {
		base = "kb" + base
	}
	if !isAlnum(rune(base[len(base)-1])) {
		base += "0"
	}
	return base
}

func isAlnum(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
