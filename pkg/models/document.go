package models

// Metadata is a free-form bag of caller-supplied document attributes.
// Values are restricted by convention to JSON scalars and arrays of scalars.
type Metadata map[string]any

// RawDocument is one immutable record in a tenant's day-partitioned raw file.
type RawDocument struct {
	DocID     string   `json:"doc_id"`
	TenantID  string   `json:"tenant_id"`
	Source    string   `json:"source"`
	Text      string   `json:"text,omitempty"`
	Metadata  Metadata `json:"metadata"`
	CreatedAt string   `json:"created_at"`
	SHA256    string   `json:"sha256"`
	Variant   string   `json:"variant,omitempty"`
}

// RawIndexEntry is the per-document metadata kept in a tenant's index file,
// keyed by doc id. The date names the day file holding the full record.
type RawIndexEntry struct {
	Date      string `json:"date"`
	Source    string `json:"source"`
	SHA256    string `json:"sha256"`
	Bytes     int    `json:"bytes"`
	CreatedAt string `json:"created_at"`
}

// RawListEntry is one item returned by a paginated document listing.
type RawListEntry struct {
	DocID     string `json:"doc_id"`
	Source    string `json:"source"`
	CreatedAt string `json:"created_at"`
	Bytes     int    `json:"bytes"`
	SHA256    string `json:"sha256"`
}

// Chunk is a bounded slice of a normalized document, the unit indexed for
// retrieval. ChunkID is a pure function of (tenant, source, index, text).
type Chunk struct {
	ChunkID    string   `json:"chunk_id"`
	TenantID   string   `json:"tenant_id"`
	DocID      string   `json:"doc_id"`
	Source     string   `json:"source"`
	ChunkIndex int      `json:"chunk_index"`
	Text       string   `json:"text"`
	Metadata   Metadata `json:"metadata"`
}
