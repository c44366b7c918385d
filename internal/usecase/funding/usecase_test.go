package funding_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"microlend-escrow/internal/domain/event"
	domain "microlend-escrow/internal/domain/loan"
	"microlend-escrow/internal/domain/payment"
	"microlend-escrow/internal/testutil/ledgertest"
	"microlend-escrow/internal/usecase/funding"
	"microlend-escrow/internal/usecase/loan"
	"microlend-escrow/pkg/txguard"
)

func newLoan(t *testing.T, env *ledgertest.Env, principal uint64) uint64 {
	t.Helper()
	dto, err := loan.NewUsecase(env.Deps).Create(context.Background(), loan.CreateLoanInput{
		Borrower:        ledgertest.Borrower,
		Principal:       principal,
		TermDays:        365,
		InterestRate:    1000,
		KYCHash:         ledgertest.KYC,
		ExplanationHash: ledgertest.Explanation,
		RiskCategory:    "Low",
	})
	require.NoError(t, err)
	return dto.LoanID
}

func TestFund_PartialThenFull(t *testing.T) {
	env := ledgertest.New(t)
	id := newLoan(t, env, 1000)
	uc := funding.NewUsecase(env.Deps)
	ctx := context.Background()

	res, err := uc.Fund(ctx, id, ledgertest.LenderA, 600)
	require.NoError(t, err)
	assert.Equal(t, funding.FundResult{LoanID: id, Accepted: 600, TotalFunded: 600, Status: "pending"}, *res)

	env.Clock.Advance(time.Hour)
	res, err = uc.Fund(ctx, id, ledgertest.LenderB, 400)
	require.NoError(t, err)
	assert.Equal(t, "funded", res.Status)
	assert.Equal(t, uint64(1000), res.TotalFunded)

	got, err := loan.NewUsecase(env.Deps).Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "funded", got.Status)
	assert.Equal(t, env.Clock.Now().Unix(), got.FundedAt)

	assert.Equal(t, []event.Name{
		event.LoanCreated, event.LoanFunded, event.LoanFunded, event.LoanFullyFunded,
	}, env.Events.Names())
	assert.Empty(t, env.Payments.Transfers())
}

func TestFund_RefundsExcess(t *testing.T) {
	env := ledgertest.New(t)
	id := newLoan(t, env, 1000)
	uc := funding.NewUsecase(env.Deps)
	ctx := context.Background()

	_, err := uc.Fund(ctx, id, ledgertest.LenderA, 700)
	require.NoError(t, err)
	res, err := uc.Fund(ctx, id, ledgertest.LenderB, 500)
	require.NoError(t, err)

	assert.Equal(t, uint64(300), res.Accepted)
	assert.Equal(t, uint64(200), res.Refunded)
	assert.Equal(t, "funded", res.Status)

	transfers := env.Payments.Transfers()
	require.Len(t, transfers, 1)
	assert.Equal(t, ledgertest.LenderB, transfers[0].To)
	assert.Equal(t, uint64(200), transfers[0].Amount)
	assert.Contains(t, transfers[0].Ref, "refund:1:")

	ev, ok := env.Events.Last(event.LoanFunded)
	require.True(t, ok)
	assert.Equal(t, event.Funded{Lender: ledgertest.LenderB, Amount: 300, TotalFunded: 1000}, ev.Data)
}

func TestFund_RefundFailureRollsBack(t *testing.T) {
	env := ledgertest.New(t)
	id := newLoan(t, env, 1000)
	uc := funding.NewUsecase(env.Deps)
	ctx := context.Background()
	env.Payments.Reject[ledgertest.LenderA] = true

	_, err := uc.Fund(ctx, id, ledgertest.LenderA, 1500)
	require.ErrorIs(t, err, domain.ErrRefundFailed)

	got, err := loan.NewUsecase(env.Deps).Contributions(ctx, id)
	require.NoError(t, err)
	assert.Zero(t, got.TotalFunded)
	assert.Empty(t, got.Contributions)

	l, err := loan.NewUsecase(env.Deps).Get(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, "pending", l.Status)
	assert.Zero(t, l.FundedAt)
	assert.Equal(t, []event.Name{event.LoanCreated}, env.Events.Names())

	// the same lender can fund once the transfer path recovers
	delete(env.Payments.Reject, ledgertest.LenderA)
	res, err := uc.Fund(ctx, id, ledgertest.LenderA, 1500)
	require.NoError(t, err)
	assert.Equal(t, uint64(500), res.Refunded)
}

func TestFund_Rejections(t *testing.T) {
	env := ledgertest.New(t)
	id := newLoan(t, env, 1000)
	uc := funding.NewUsecase(env.Deps)
	ctx := context.Background()

	_, err := uc.Fund(ctx, 99, ledgertest.LenderA, 10)
	assert.ErrorIs(t, err, domain.ErrNotFound)

	_, err = uc.Fund(ctx, id, ledgertest.LenderA, 0)
	assert.ErrorIs(t, err, domain.ErrInvalidAmount)

	_, err = uc.Fund(ctx, id, ledgertest.Borrower, 10)
	assert.ErrorIs(t, err, domain.ErrBorrowerCannotFund)

	_, err = uc.Fund(ctx, id, ledgertest.LenderA, 1000)
	require.NoError(t, err)

	// funded loans are no longer Pending
	_, err = uc.Fund(ctx, id, ledgertest.LenderB, 1)
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)
}

func TestFund_ReentrantRefundIsRejected(t *testing.T) {
	env := ledgertest.New(t)
	id := newLoan(t, env, 1000)
	uc := funding.NewUsecase(env.Deps)

	var inner error
	env.Payments.Hook = func(ctx context.Context, tr payment.Transfer) error {
		// a malicious recipient calls back into the ledger
		_, inner = uc.Fund(ctx, id, ledgertest.LenderB, 10)
		return inner
	}

	_, err := uc.Fund(context.Background(), id, ledgertest.LenderA, 1200)
	require.ErrorIs(t, inner, txguard.ErrReentrantCall)
	require.ErrorIs(t, err, domain.ErrRefundFailed)

	got, err := loan.NewUsecase(env.Deps).Contributions(context.Background(), id)
	require.NoError(t, err)
	assert.Empty(t, got.Contributions)
}

func TestFund_ConcurrentNeverExceedsPrincipal(t *testing.T) {
	env := ledgertest.New(t)
	id := newLoan(t, env, 1000)
	uc := funding.NewUsecase(env.Deps)
	ctx := context.Background()

	amounts := []uint64{300, 300, 300, 300, 300}
	var wg sync.WaitGroup
	results := make([]*funding.FundResult, len(amounts))
	errs := make([]error, len(amounts))
	for i, amount := range amounts {
		wg.Add(1)
		go func(i int, amount uint64) {
			defer wg.Done()
			lender := ledgertest.LenderA
			if i%2 == 1 {
				lender = ledgertest.LenderB
			}
			results[i], errs[i] = uc.Fund(ctx, id, lender, amount)
		}(i, amount)
	}
	wg.Wait()

	var accepted, refunded uint64
	for i := range amounts {
		if errs[i] != nil {
			assert.ErrorIs(t, errs[i], domain.ErrInvalidStatus)
			continue
		}
		accepted += results[i].Accepted
		refunded += results[i].Refunded
	}
	assert.Equal(t, uint64(1000), accepted)
	assert.Equal(t, uint64(200), refunded)

	got, err := loan.NewUsecase(env.Deps).Contributions(ctx, id)
	require.NoError(t, err)
	assert.Equal(t, uint64(1000), got.TotalFunded)
}

type publishFunc func(ctx context.Context, evs ...event.Event) error

func (f publishFunc) Publish(ctx context.Context, evs ...event.Event) error { return f(ctx, evs...) }

func TestFund_GuardFreeWhilePublishing(t *testing.T) {
	env := ledgertest.New(t)
	id := newLoan(t, env, 1000)

	d := env.Deps
	var (
		enterErr error
		heldCtx  bool
	)
	d.Events = publishFunc(func(ctx context.Context, evs ...event.Event) error {
		heldCtx = d.Guard.Held(ctx)
		// another writer must get in while subscribers are slow
		wait, cancel := context.WithTimeout(context.Background(), 200*time.Millisecond)
		defer cancel()
		_, release, err := d.Guard.Enter(wait)
		enterErr = err
		release()
		return nil
	})

	_, err := funding.NewUsecase(d).Fund(context.Background(), id, ledgertest.LenderA, 100)
	require.NoError(t, err)
	assert.NoError(t, enterErr)
	assert.False(t, heldCtx)
}
