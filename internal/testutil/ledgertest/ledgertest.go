// Package ledgertest assembles a complete ledger over in-memory sqlite and
// the in-memory payment adapter.
package ledgertest

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"gorm.io/gorm"

	"microlend-escrow/internal/adapter/payment"
	"microlend-escrow/internal/adapter/repository/mysql"
	"microlend-escrow/internal/domain/event"
	"microlend-escrow/internal/testutil/testdb"
	"microlend-escrow/internal/usecase"
	"microlend-escrow/pkg/txguard"
)

var (
	Owner    = common.HexToAddress("0x00000000000000000000000000000000000000f0")
	Borrower = common.HexToAddress("0x00000000000000000000000000000000000000b1")
	LenderA  = common.HexToAddress("0x00000000000000000000000000000000000000a1")
	LenderB  = common.HexToAddress("0x00000000000000000000000000000000000000a2")
	Stranger = common.HexToAddress("0x00000000000000000000000000000000000000c3")

	KYC         = common.HexToHash("0x01")
	Explanation = common.HexToHash("0x02")
)

const (
	DefaultPlatformFeeRate = 100
	DefaultLatePenaltyRate = 500
)

// Start is the initial ledger time.
var Start = time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

type Clock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *Clock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *Clock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

// Set moves the clock to a unix second.
func (c *Clock) Set(unix int64) {
	c.mu.Lock()
	c.t = time.Unix(unix, 0).UTC()
	c.mu.Unlock()
}

// Recorder keeps every published event.
type Recorder struct {
	mu     sync.Mutex
	events []event.Event
}

func (r *Recorder) Publish(_ context.Context, evs ...event.Event) error {
	r.mu.Lock()
	r.events = append(r.events, evs...)
	r.mu.Unlock()
	return nil
}

func (r *Recorder) Events() []event.Event {
	r.mu.Lock()
	defer r.mu.Unlock()
	return append([]event.Event(nil), r.events...)
}

func (r *Recorder) Names() []event.Name {
	var out []event.Name
	for _, ev := range r.Events() {
		out = append(out, ev.Name)
	}
	return out
}

// Last returns the most recent event with name, or false.
func (r *Recorder) Last(name event.Name) (event.Event, bool) {
	evs := r.Events()
	for i := len(evs) - 1; i >= 0; i-- {
		if evs[i].Name == name {
			return evs[i], true
		}
	}
	return event.Event{}, false
}

type Env struct {
	DB       *gorm.DB
	Payments *payment.Memory
	Events   *Recorder
	Clock    *Clock
	Deps     usecase.Deps
}

// New returns a ledger with the default rates already configured.
func New(t *testing.T) *Env {
	t.Helper()
	db := testdb.Open(t)
	env := &Env{
		DB:       db,
		Payments: payment.NewMemory(),
		Events:   &Recorder{},
		Clock:    &Clock{t: Start},
	}
	settings := mysql.NewSettingsRepository(db)
	if err := settings.EnsureDefaults(context.Background(), DefaultPlatformFeeRate, DefaultLatePenaltyRate); err != nil {
		t.Fatalf("ensure defaults: %v", err)
	}
	env.Deps = usecase.Deps{
		UoW:           mysql.NewGormUoW(db),
		Loans:         mysql.NewLoanRepository(db),
		Contributions: mysql.NewContributionRepository(db),
		Settings:      settings,
		Guard:         txguard.New(),
		Events:        env.Events,
		Payments:      env.Payments,
		Owner:         Owner,
		Clock:         env.Clock.Now,
	}
	return env
}
