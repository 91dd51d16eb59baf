package memory

import (
	"time"

	"github.com/google/uuid"
	"github.com/pgvector/pgvector-go"
)

// Role scopes a memory store. Each decision-making role learns only from its own history.
type Role string

const (
	RoleBull        Role = "bull"
	RoleBear        Role = "bear"
	RoleTrader      Role = "trader"
	RoleInvestJudge Role = "invest_judge"
	RoleRiskManager Role = "risk_manager"
)

// Roles lists the five memory-bearing roles in reflection order.
func Roles() []Role {
	return []Role{RoleBull, RoleBear, RoleTrader, RoleInvestJudge, RoleRiskManager}
}

// Valid checks if role is one of the five memory-bearing roles
func (r Role) Valid() bool {
	switch r {
	case RoleBull, RoleBear, RoleTrader, RoleInvestJudge, RoleRiskManager:
		return true
	}
	return false
}

// String returns string representation
func (r Role) String() string {
	return string(r)
}

// StoreName is the collection name of the role's store, e.g. "bull_memory".
func (r Role) StoreName() string {
	return string(r) + "_memory"
}

// Record is an immutable (situation, recommendation) pair.
// Offset is the insertion position within the role's store and doubles as its public id.
type Record struct {
	ID             uuid.UUID `db:"id"`
	Role           Role      `db:"role"`
	Offset         int       `db:"offset_id"`
	Situation      string    `db:"situation"`
	Recommendation string    `db:"recommendation"`

	// Embedding metadata, so vectors from different models are never compared
	Embedding      pgvector.Vector `db:"embedding"`
	EmbeddingModel string          `db:"embedding_model"`

	CreatedAt time.Time `db:"created_at"`
}

// Pair is the input of Store.Add.
type Pair struct {
	Situation      string
	Recommendation string
}
