package id

import (
	"strconv"
	"strings"

	"github.com/google/uuid"
)

// NewID32 returns exactly 32 hex characters (no separators/prefixes).
func NewID32() string {
	return strings.ReplaceAll(uuid.NewString(), "-", "")
}

// TransferRef builds the reference sent with a payout so the gateway can
// de-duplicate a retried transfer of the same operation.
func TransferRef(op string, loanID uint64, opID string) string {
	return op + ":" + strconv.FormatUint(loanID, 10) + ":" + opID
}
