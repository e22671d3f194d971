package utils

import (
	"fmt"
	"sync/atomic"
	"time"
)

// ReferencePrefix is the fixed prefix of every order reference. The full
// reference ("KM" + 8 digits) is what customers put in the bank-transfer memo
// field and what the SMS webhook parser searches for.
const ReferencePrefix = "KM"

var lastRefSeq atomic.Int64

// NewOrderReference returns the next order reference. The digit part is
// seeded from the unix clock and forced strictly monotonic, so references
// never repeat within a process even for orders created in the same second.
// A unique index on the column backs this across processes.
func NewOrderReference(now time.Time) string {
	candidate := now.Unix() % 100000000
	for {
		prev := lastRefSeq.Load()
		if candidate <= prev {
			candidate = prev + 1
		}
		if lastRefSeq.CompareAndSwap(prev, candidate) {
			break
		}
	}
	return fmt.Sprintf("%s%08d", ReferencePrefix, candidate)
}
