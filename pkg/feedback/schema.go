package feedback

// Schema contains the SQL statements to create the feedback database schema.
const Schema = `
-- Feedback table: one row per user verdict on a generated answer
CREATE TABLE IF NOT EXISTS feedback (
    id         TEXT PRIMARY KEY,
    tenant_id  TEXT NOT NULL,
    label      TEXT NOT NULL CHECK (label IN ('up', 'down')),
    query      TEXT NOT NULL,
    answer     TEXT NOT NULL,
    comment    TEXT,
    created_at DATETIME NOT NULL
);

-- Indexes for performance
CREATE INDEX IF NOT EXISTS idx_feedback_tenant ON feedback(tenant_id);
CREATE INDEX IF NOT EXISTS idx_feedback_created ON feedback(tenant_id, created_at);
`

// LabelUp marks an answer as helpful.
const LabelUp = "up"

// LabelDown marks an answer as unhelpful.
const LabelDown = "down"
