package models

// Tenant is an isolated customer namespace with its own documents, vector
// collection and API key. Owned by the tenant registry; never deleted.
type Tenant struct {
	TenantID   string         `json:"tenant_id"`
	Name       string         `json:"name"`
	APIKeyHash string         `json:"api_key_hash"`
	CreatedAt  float64        `json:"created_at"`
	Limits     map[string]int `json:"limits,omitempty"`
}
