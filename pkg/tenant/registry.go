// Package tenant maps API keys to tenant identities and persists the
// tenant set durably across restarts.
package tenant

import (
	"crypto/hmac"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sync"
	"time"

	"atlas/pkg/models"
)

// tenantIDPattern defines the valid format for tenant ids: 3-64 characters,
// lowercase alphanumeric with inner hyphens and underscores.
var tenantIDPattern = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]{1,62}[a-z0-9]$`)

const (
	registryFileName = "tenants.json"
	apiKeyBytes      = 32
	dirPerm          = 0750
	filePerm         = 0600
)

// Registry owns the tenant set. API keys are never stored; only their
// salted HMAC-SHA256 hashes are persisted, and every mutation is written
// to disk atomically before it is reported as successful.
type Registry struct {
	path string
	salt []byte

	mu       sync.RWMutex
	tenants  map[string]*models.Tenant
	keyIndex map[string]string // api_key_hash -> tenant_id
}

// NewRegistry loads (or initializes) the tenant registry stored under dataDir.
func NewRegistry(dataDir, salt string) (*Registry, error) {
	if err := os.MkdirAll(dataDir, dirPerm); err != nil {
		return nil, fmt.Errorf("failed to create data directory: %w", err)
	}

	r := &Registry{
		path:     filepath.Join(dataDir, registryFileName),
		salt:     []byte(salt),
		tenants:  make(map[string]*models.Tenant),
		keyIndex: make(map[string]string),
	}
	if err := r.load(); err != nil {
		return nil, err
	}
	return r, nil
}

// registryFile is the on-disk shape of the tenant set.
type registryFile struct {
	Tenants map[string]*models.Tenant `json:"tenants"`
}

func (r *Registry) load() error {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return r.persistLocked()
	}
	if err != nil {
		return fmt.Errorf("failed to read tenant registry: %w", err)
	}

	var file registryFile
	if err := json.Unmarshal(data, &file); err != nil {
		return fmt.Errorf("failed to parse tenant registry: %w", err)
	}
	for tid, t := range file.Tenants {
		r.tenants[tid] = t
		r.keyIndex[t.APIKeyHash] = tid
	}
	return nil
}

// persistLocked writes the full tenant set atomically (temp file + rename).
// Callers must hold the write lock.
func (r *Registry) persistLocked() error {
	out := registryFile{Tenants: r.tenants}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode tenant registry: %w", err)
	}

	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, filePerm); err != nil {
		return fmt.Errorf("failed to write tenant registry: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("failed to replace tenant registry: %w", err)
	}
	return nil
}

// ValidateTenantID checks if the tenant id is valid.
func ValidateTenantID(tenantID string) error {
	if !tenantIDPattern.MatchString(tenantID) {
		return ErrInvalidTenantID
	}
	return nil
}

// hashAPIKey derives the stored hash for an API key.
func (r *Registry) hashAPIKey(apiKey string) string {
	mac := hmac.New(sha256.New, r.salt)
	mac.Write([]byte(apiKey))
	return hex.EncodeToString(mac.Sum(nil))
}

// generateAPIKey returns a fresh high-entropy URL-safe key.
func generateAPIKey() (string, error) {
	buf := make([]byte, apiKeyBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate api key: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}

// Create registers a new tenant and returns its API key. The key is shown
// exactly once; only its hash survives. The registry file is persisted
// before the call reports success.
func (r *Registry) Create(tenantID, name string) (string, error) {
	if err := ValidateTenantID(tenantID); err != nil {
		return "", err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.tenants[tenantID]; exists {
		return "", ErrAlreadyExists
	}

	apiKey, err := generateAPIKey()
	if err != nil {
		return "", err
	}
	keyHash := r.hashAPIKey(apiKey)

	r.tenants[tenantID] = &models.Tenant{
		TenantID:   tenantID,
		Name:       name,
		APIKeyHash: keyHash,
		CreatedAt:  float64(time.Now().UnixMilli()) / 1000.0,
		Limits:     map[string]int{},
	}
	r.keyIndex[keyHash] = tenantID

	if err := r.persistLocked(); err != nil {
		// Roll back the in-memory state so a failed persist is not half-applied.
		delete(r.tenants, tenantID)
		delete(r.keyIndex, keyHash)
		return "", err
	}
	return apiKey, nil
}

// Rotate replaces the tenant's API key and returns the new key once.
func (r *Registry) Rotate(tenantID string) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, exists := r.tenants[tenantID]
	if !exists {
		return "", ErrNotFound
	}

	apiKey, err := generateAPIKey()
	if err != nil {
		return "", err
	}

	oldHash := t.APIKeyHash
	t.APIKeyHash = r.hashAPIKey(apiKey)

	// Rebuild the reverse index from scratch.
	r.keyIndex = make(map[string]string, len(r.tenants))
	for tid, tn := range r.tenants {
		r.keyIndex[tn.APIKeyHash] = tid
	}

	if err := r.persistLocked(); err != nil {
		t.APIKeyHash = oldHash
		r.keyIndex = make(map[string]string, len(r.tenants))
		for tid, tn := range r.tenants {
			r.keyIndex[tn.APIKeyHash] = tid
		}
		return "", err
	}
	return apiKey, nil
}

// Resolve maps a presented API key to its tenant id. The comparison against
// stored hashes is constant-time; a wrong key takes the same scan as a
// right one.
func (r *Registry) Resolve(apiKey string) (string, bool) {
	presented := []byte(r.hashAPIKey(apiKey))

	r.mu.RLock()
	defer r.mu.RUnlock()

	matched := ""
	for hash, tid := range r.keyIndex {
		// hmac.Equal on every entry keeps the scan timing independent of
		// where (or whether) the key matches.
		if hmac.Equal(presented, []byte(hash)) {
			matched = tid
		}
	}
	return matched, matched != ""
}

// Get returns the tenant record for an id.
func (r *Registry) Get(tenantID string) (*models.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	t, exists := r.tenants[tenantID]
	if !exists {
		return nil, ErrNotFound
	}
	clone := *t
	return &clone, nil
}

// Count returns the number of registered tenants.
func (r *Registry) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.tenants)
}
