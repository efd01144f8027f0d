package eval

import (
	"context"
	"math/rand"

	"github.com/sporkfish/sporkfish-go/pkg/board"
)

// Random is a randomized noise generator, used to add a small amount of variety to an
// otherwise deterministic evaluator so that e.g. self-play doesn't repeat. The limit
// specifies the range in centipawns [-limit/2; limit/2]. The zero value always returns zero.
type Random struct {
	rand  *rand.Rand
	limit int
}

func NewRandom(limit int, seed int64) Random {
	return Random{
		limit: limit,
		rand:  rand.New(rand.NewSource(seed)),
	}
}

func (n Random) Evaluate(ctx context.Context, b *board.Board) Score {
	if n.limit <= 0 {
		return 0
	}
	return Score(n.rand.Intn(n.limit) - n.limit/2)
}
