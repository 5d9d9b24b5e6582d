package proposer

import (
	"context"
	"fmt"
	"math/rand"
	"time"
)

// Scripted replays a fixed move list, one move per call, regardless of the
// request. Used by tests and dry runs. Once the script is exhausted further
// calls fail like a dead transport.
type Scripted struct {
	moves []string
	next  int
}

func NewScripted(moves ...string) *Scripted {
	return &Scripted{moves: append([]string(nil), moves...)}
}

func (p *Scripted) ProposeMove(_ context.Context, _ Request) (Response, error) {
	if p.next >= len(p.moves) {
		return Response{}, fmt.Errorf("scripted proposer exhausted after %d moves", len(p.moves))
	}
	move := p.moves[p.next]
	p.next++
	return Response{MoveText: move}, nil
}

// Random picks uniformly among the legal moves in the request. A zero seed
// seeds from the clock.
type Random struct {
	rng *rand.Rand
}

func NewRandom(seed int64) *Random {
	if seed == 0 {
		seed = time.Now().UnixNano()
	}
	return &Random{rng: rand.New(rand.NewSource(seed))}
}

func (p *Random) ProposeMove(_ context.Context, req Request) (Response, error) {
	if len(req.LegalSAN) == 0 {
		return Response{}, fmt.Errorf("no legal moves in request")
	}
	return Response{MoveText: req.LegalSAN[p.rng.Intn(len(req.LegalSAN))]}, nil
}
