package postgres

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/tejpal123456789/trading-agnetic-workflow/internal/adapters/embeddings"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/domain/memory"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/errors"
)

// Compile-time check
var _ memory.Store = (*MemoryStore)(nil)

const memorySchema = `
	CREATE EXTENSION IF NOT EXISTS vector;

	CREATE TABLE IF NOT EXISTS agent_memories (
		id              UUID PRIMARY KEY,
		role            TEXT NOT NULL,
		offset_id       INTEGER NOT NULL,
		situation       TEXT NOT NULL,
		recommendation  TEXT NOT NULL,
		embedding       vector NOT NULL,
		embedding_model TEXT NOT NULL,
		created_at      TIMESTAMPTZ NOT NULL DEFAULT NOW(),
		UNIQUE (role, offset_id)
	);

	CREATE INDEX IF NOT EXISTS agent_memories_role_idx ON agent_memories (role, embedding_model);`

// EnsureSchema creates the memory table and the pgvector extension when missing.
func EnsureSchema(ctx context.Context, db DBTX) error {
	if _, err := db.ExecContext(ctx, memorySchema); err != nil {
		return errors.Wrap(err, "ensure memory schema")
	}
	return nil
}

// MemoryStore implements memory.Store for one role on top of pgvector.
type MemoryStore struct {
	db       DBTX
	role     memory.Role
	embedder embeddings.Provider
}

// NewMemoryStore creates a store scoped to role.
func NewMemoryStore(db DBTX, role memory.Role, embedder embeddings.Provider) *MemoryStore {
	return &MemoryStore{db: db, role: role, embedder: embedder}
}

// MemoryStoreFactory adapts NewMemoryStore to memory.StoreFactory.
func MemoryStoreFactory(db DBTX, embedder embeddings.Provider) memory.StoreFactory {
	return func(role memory.Role) (memory.Store, error) {
		return NewMemoryStore(db, role, embedder), nil
	}
}

// Add inserts pairs with consecutive offsets after the role's current maximum.
func (r *MemoryStore) Add(ctx context.Context, pairs []memory.Pair) error {
	if len(pairs) == 0 {
		return nil
	}

	situations := make([]string, len(pairs))
	for i, p := range pairs {
		situations[i] = p.Situation
	}
	vectors, err := r.embedder.GenerateBatchEmbeddings(ctx, situations)
	if err != nil {
		return errors.Wrapf(err, "embed %d situations", len(pairs))
	}

	query := `
		INSERT INTO agent_memories (
			id, role, offset_id, situation, recommendation, embedding, embedding_model, created_at
		) VALUES (
			$1, $2,
			(SELECT COALESCE(MAX(offset_id) + 1, 0) FROM agent_memories WHERE role = $2),
			$3, $4, $5, $6, $7
		)`

	now := time.Now().UTC()
	for i, p := range pairs {
		_, err := r.db.ExecContext(ctx, query,
			uuid.New(), r.role, p.Situation, p.Recommendation,
			pgvector.NewVector(vectors[i]), r.embedder.Name(), now,
		)
		if err != nil {
			return errors.Wrapf(err, "insert %s record", r.role.StoreName())
		}
	}
	return nil
}

// Query performs semantic search using pgvector cosine distance.
func (r *MemoryStore) Query(ctx context.Context, situation string, k int) ([]string, error) {
	if k <= 0 {
		return []string{}, nil
	}

	vec, err := r.embedder.GenerateEmbedding(ctx, situation)
	if err != nil {
		return nil, errors.Wrap(err, "embed query")
	}

	query := `
		SELECT recommendation
		FROM agent_memories
		WHERE role = $1 AND embedding_model = $2
		ORDER BY embedding <=> $3, offset_id
		LIMIT $4`

	recs := []string{}
	if err := r.db.SelectContext(ctx, &recs, query, r.role, r.embedder.Name(), pgvector.NewVector(vec), k); err != nil {
		return nil, errors.Wrapf(err, "query %s", r.role.StoreName())
	}
	return recs, nil
}

func (r *MemoryStore) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM agent_memories WHERE role = $1`, r.role); err != nil {
		return 0, errors.Wrapf(err, "count %s", r.role.StoreName())
	}
	return n, nil
}

// Records returns the role's records in insertion order.
func (r *MemoryStore) Records(ctx context.Context) ([]memory.Record, error) {
	var records []memory.Record
	query := `
		SELECT id, role, offset_id, situation, recommendation, embedding, embedding_model, created_at
		FROM agent_memories
		WHERE role = $1
		ORDER BY offset_id`
	if err := r.db.SelectContext(ctx, &records, query, r.role); err != nil {
		return nil, errors.Wrapf(err, "list %s", r.role.StoreName())
	}
	return records, nil
}
