package entities

import (
	"time"
)

// Transaction is a normalized account transaction as returned by the block explorer.
// Amounts are kept as base-unit integer strings.
type Transaction struct {
	Hash        string
	From        string
	To          string
	Value       string
	Gas         string
	GasUsed     string
	GasPrice    string
	Timestamp   int64
	BlockNumber uint64
}

// Time returns the transaction timestamp in UTC
func (t Transaction) Time() time.Time {
	return time.Unix(t.Timestamp, 0).UTC()
}
