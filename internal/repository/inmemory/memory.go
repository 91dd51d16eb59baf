package inmemory

import (
	"context"
	"math"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"

	"github.com/tejpal123456789/trading-agnetic-workflow/internal/adapters/embeddings"
	"github.com/tejpal123456789/trading-agnetic-workflow/internal/domain/memory"
	"github.com/tejpal123456789/trading-agnetic-workflow/pkg/errors"
)

// Compile-time check
var _ memory.Store = (*MemoryStore)(nil)

// MemoryStore keeps one role's records in process and ranks them by cosine similarity.
type MemoryStore struct {
	role     memory.Role
	embedder embeddings.Provider

	mu      sync.RWMutex
	records []memory.Record
}

// NewMemoryStore creates an empty store for role.
func NewMemoryStore(role memory.Role, embedder embeddings.Provider) *MemoryStore {
	return &MemoryStore{role: role, embedder: embedder}
}

// Factory adapts NewMemoryStore to memory.StoreFactory.
func Factory(embedder embeddings.Provider) memory.StoreFactory {
	return func(role memory.Role) (memory.Store, error) {
		return NewMemoryStore(role, embedder), nil
	}
}

func (s *MemoryStore) Add(ctx context.Context, pairs []memory.Pair) error {
	if len(pairs) == 0 {
		return nil
	}

	situations := make([]string, len(pairs))
	for i, p := range pairs {
		situations[i] = p.Situation
	}
	vectors, err := s.embedder.GenerateBatchEmbeddings(ctx, situations)
	if err != nil {
		return errors.Wrapf(err, "embed %d situations", len(pairs))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	for i, p := range pairs {
		s.records = append(s.records, memory.Record{
			ID:             uuid.New(),
			Role:           s.role,
			Offset:         len(s.records),
			Situation:      p.Situation,
			Recommendation: p.Recommendation,
			Embedding:      pgvector.NewVector(vectors[i]),
			EmbeddingModel: s.embedder.Name(),
			CreatedAt:      now,
		})
	}
	return nil
}

func (s *MemoryStore) Query(ctx context.Context, situation string, k int) ([]string, error) {
	if k <= 0 {
		return []string{}, nil
	}

	s.mu.RLock()
	records := s.records
	s.mu.RUnlock()
	if len(records) == 0 {
		return []string{}, nil
	}

	query, err := s.embedder.GenerateEmbedding(ctx, situation)
	if err != nil {
		return nil, errors.Wrap(err, "embed query")
	}

	type scored struct {
		offset int
		score  float64
		text   string
	}
	ranked := make([]scored, 0, len(records))
	for _, r := range records {
		ranked = append(ranked, scored{offset: r.Offset, score: cosine(query, r.Embedding.Slice()), text: r.Recommendation})
	}
	// ties resolve to the older record
	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].score > ranked[j].score
	})

	if k > len(ranked) {
		k = len(ranked)
	}
	out := make([]string, k)
	for i := 0; i < k; i++ {
		out[i] = ranked[i].text
	}
	return out, nil
}

func (s *MemoryStore) Count(_ context.Context) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.records), nil
}

// Records returns a copy of all records in insertion order.
func (s *MemoryStore) Records() []memory.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]memory.Record(nil), s.records...)
}

func cosine(a, b []float32) float64 {
	if len(a) != len(b) {
		return 0
	}
	var dot, na, nb float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		na += float64(a[i]) * float64(a[i])
		nb += float64(b[i]) * float64(b[i])
	}
	if na == 0 || nb == 0 {
		return 0
	}
	return dot / (math.Sqrt(na) * math.Sqrt(nb))
}
