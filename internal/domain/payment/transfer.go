// Package payment is the port to the external money-transfer primitive.
package payment

import (
	"context"
	"errors"

	"github.com/ethereum/go-ethereum/common"
)

var ErrTransferFailed = errors.New("transfer failed")

// Transfer pays Amount to To. Ref identifies the ledger operation that
// produced it.
type Transfer struct {
	To     common.Address `json:"to"`
	Amount uint64         `json:"amount"`
	Ref    string         `json:"reference"`
}

// Transferer either fully performs a transfer or returns an error.
type Transferer interface {
	Transfer(ctx context.Context, t Transfer) error
}
