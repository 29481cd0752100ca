package words

import "math/rand/v2"

// Pool hands out round content without repeating an entry within one game.
// Once every candidate has been used the full list is sampled again.
type Pool[T any] struct {
	items []T
	key   func(T) string
	tier  func(T) int
	rng   *rand.Rand
	used  map[string]struct{}
}

func NewPool[T any](items []T, key func(T) string, tier func(T) int, rng *rand.Rand) *Pool[T] {
	if tier == nil {
		tier = func(T) int { return 0 }
	}
	return &Pool[T]{
		items: append([]T(nil), items...),
		key:   key,
		tier:  tier,
		rng:   rng,
		used:  make(map[string]struct{}),
	}
}

func (p *Pool[T]) Len() int {
	return len(p.items)
}

// Reset forgets every pick, typically at game start.
func (p *Pool[T]) Reset() {
	p.used = make(map[string]struct{})
}

// Replace swaps the candidate list and forgets prior picks.
func (p *Pool[T]) Replace(items []T) {
	p.items = append([]T(nil), items...)
	p.Reset()
}

func (p *Pool[T]) Used() int {
	return len(p.used)
}

// Pick returns an unused entry. Tier < 0 means any tier.
func (p *Pool[T]) Pick(tier int) (T, bool) {
	var zero T
	if len(p.items) == 0 {
		return zero, false
	}
	candidates := p.filter(func(item T) bool {
		_, seen := p.used[p.key(item)]
		return !seen && (tier < 0 || p.tier(item) == tier)
	})
	if len(candidates) == 0 && tier >= 0 {
		candidates = p.filter(func(item T) bool {
			_, seen := p.used[p.key(item)]
			return !seen
		})
	}
	if len(candidates) == 0 {
		candidates = p.items
	}
	choice := candidates[p.intn(len(candidates))]
	p.used[p.key(choice)] = struct{}{}
	return choice, true
}

func (p *Pool[T]) filter(keep func(T) bool) []T {
	out := make([]T, 0, len(p.items))
	for _, item := range p.items {
		if keep(item) {
			out = append(out, item)
		}
	}
	return out
}

func (p *Pool[T]) intn(n int) int {
	if p.rng != nil {
		return p.rng.IntN(n)
	}
	return rand.IntN(n)
}
