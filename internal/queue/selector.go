package queue

import (
	"math"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/spec-kit/callcenter-service/internal/domain"
)

// Result is the outcome of one selection. Found is false when the
// telephoniste has nothing left to call.
type Result struct {
	Contact        *domain.Contact
	TotalAvailable int
	Found          bool
}

// Selector picks the next contact a telephoniste should call. It keeps no
// state between calls except its random source.
type Selector struct {
	mu  sync.Mutex
	rnd *rand.Rand
}

// NewSelector builds a selector. A nil source uses a randomly seeded one.
func NewSelector(src rand.Source) *Selector {
	if src == nil {
		src = rand.NewPCG(rand.Uint64(), rand.Uint64())
	}
	return &Selector{rnd: rand.New(src)}
}

// StartOfDay returns local midnight of now's calendar day in now's location.
func StartOfDay(now time.Time) time.Time {
	y, m, d := now.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, now.Location())
}

type candidate struct {
	contact  *domain.Contact
	order    int
	hasCalls bool
}

// Select filters contacts down to those assigned to telephonisteID, not in
// an excluded status and not worked by them since midnight, then orders
// them by status order, uncalled first, with ties shuffled.
func (s *Selector) Select(telephonisteID string, contacts []*domain.Contact, statuses map[string]*domain.ContactStatus, now time.Time) Result {
	midnight := StartOfDay(now)

	candidates := make([]candidate, 0, len(contacts))
	for _, c := range contacts {
		if c == nil || !c.IsAssignedTo(telephonisteID) {
			continue
		}
		order := math.MaxInt
		if c.StatusID != nil {
			if status, ok := statuses[*c.StatusID]; ok {
				if status.ExcludeFromCallList {
					continue
				}
				order = status.Order
			}
		}
		if c.WorkedBy(telephonisteID, midnight) {
			continue
		}
		candidates = append(candidates, candidate{contact: c, order: order, hasCalls: len(c.CallHistory) > 0})
	}

	if len(candidates) == 0 {
		return Result{}
	}

	sort.SliceStable(candidates, func(i, j int) bool {
		return less(candidates[i], candidates[j])
	})
	s.shuffleTies(candidates)

	return Result{Contact: candidates[0].contact, TotalAvailable: len(candidates), Found: true}
}

func less(a, b candidate) bool {
	if a.order != b.order {
		return a.order < b.order
	}
	return !a.hasCalls && b.hasCalls
}

// shuffleTies runs Fisher-Yates over every run of equal keys.
func (s *Selector) shuffleTies(candidates []candidate) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for start := 0; start < len(candidates); {
		end := start + 1
		for end < len(candidates) && !less(candidates[start], candidates[end]) {
			end++
		}
		for i := end - 1; i > start; i-- {
			j := start + s.rnd.IntN(i-start+1)
			candidates[i], candidates[j] = candidates[j], candidates[i]
		}
		start = end
	}
}
