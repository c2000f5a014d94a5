package llm

import (
	"sync"
	"time"

	"github.com/aibradaa-labs/council/internal/domain"
)

// Budget is the spend ledger for paid inference tiers. Reservation against
// the ceiling is a single check-and-increment under one mutex so concurrent
// routing calls cannot jointly slip past the ceiling.
type Budget struct {
	mu          sync.Mutex
	ceiling     float64
	period      time.Duration
	spent       float64
	periodStart time.Time

	now func() time.Time // test override
}

func NewBudget(ceiling float64, period time.Duration) *Budget {
	return &Budget{
		ceiling:     ceiling,
		period:      period,
		periodStart: time.Now(),
		now:         time.Now,
	}
}

// rollover resets the counter when the billing period has elapsed.
// Caller must hold mu.
func (b *Budget) rollover() {
	now := b.now()
	if b.period > 0 && now.Sub(b.periodStart) >= b.period {
		b.spent = 0
		b.periodStart = now
	}
}

// Reserve commits estimate against the ceiling before a paid attempt is
// made. Returns ErrBudgetExhausted, committing nothing, if the estimate
// does not fit under the ceiling.
func (b *Budget) Reserve(estimate float64) error {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.rollover()
	if b.spent+estimate > b.ceiling {
		return domain.ErrBudgetExhausted
	}
	b.spent += estimate
	return nil
}

// Commit settles a reservation at the attempt's actual cost. A backend
// reporting an actual cost above the reservation pushes spend past the
// ceiling; the overshoot is kept on the ledger, so Exhausted reports true
// and further paid attempts are refused until the period rolls over.
func (b *Budget) Commit(estimate, actual float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.spent += actual - estimate
	if b.spent < 0 {
		b.spent = 0
	}
}

// Release returns a reservation after a failed attempt.
func (b *Budget) Release(estimate float64) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.spent -= estimate
	if b.spent < 0 {
		b.spent = 0
	}
}

// Exhausted reports whether no further paid spend fits under the ceiling.
func (b *Budget) Exhausted() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rollover()
	return b.spent >= b.ceiling
}

// Spent returns the running total for the current period.
func (b *Budget) Spent() float64 {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rollover()
	return b.spent
}
