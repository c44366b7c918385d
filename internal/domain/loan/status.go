package loan

import "fmt"

type Status string

const (
	StatusPending   Status = "pending"
	StatusFunded    Status = "funded"
	StatusDisbursed Status = "disbursed"
	StatusRepaid    Status = "repaid"
	StatusDefaulted Status = "defaulted"
)

// transitions is the complete lifecycle graph. Anything not listed is illegal.
var transitions = map[Status][]Status{
	StatusPending:   {StatusFunded},
	StatusFunded:    {StatusDisbursed},
	StatusDisbursed: {StatusRepaid, StatusDefaulted},
}

func CanTransition(from, to Status) bool {
	for _, s := range transitions[from] {
		if s == to {
			return true
		}
	}
	return false
}

// Settled loans no longer change status but still pay out to lenders.
func (s Status) Settled() bool { return s == StatusRepaid || s == StatusDefaulted }

func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusFunded, StatusDisbursed, StatusRepaid, StatusDefaulted:
		return true
	}
	return false
}

// TransitionTo moves the loan along one legal edge.
func (l *Loan) TransitionTo(next Status) error {
	if !CanTransition(l.Status, next) {
		return fmt.Errorf("%w: loan %d %s -> %s", ErrInvalidTransition, l.ID, l.Status, next)
	}
	l.Status = next
	return nil
}

// RequireStatus fails with ErrInvalidStatus unless the loan is in one of allowed.
func (l *Loan) RequireStatus(allowed ...Status) error {
	for _, s := range allowed {
		if l.Status == s {
			return nil
		}
	}
	return fmt.Errorf("%w: loan %d is %s", ErrInvalidStatus, l.ID, l.Status)
}
