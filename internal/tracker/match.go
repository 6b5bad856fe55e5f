package tracker

import (
	"strings"
	"time"

	"github.com/Additional-Code/tableside/internal/entity"
)

// OrderView is the tracker's read model of one remote order record.
type OrderView struct {
	ID          int64
	Number      string
	TableNumber int
	Status      entity.Status
	CreatedAt   time.Time
}

// stripHash drops a single leading "#" marker.
func stripHash(number string) string {
	return strings.TrimPrefix(strings.TrimSpace(number), "#")
}

// Match locates the remote record for a locally tracked order number. Order
// numbers are low-cardinality random integers that may be stored with or
// without the "#" prefix, so lookup runs a fallback chain, stopping at the
// first stage that yields candidates:
//
//  1. exact equality of the stored numbers
//  2. equality after stripping a leading "#" from both sides
//  3. substring containment either way on the stripped forms
//
// When a stage leaves more than one candidate the most recently created one
// wins: numbers recycle over days and the newest record is the one this
// session placed.
func Match(number string, orders []OrderView) (OrderView, bool) {
	for _, stage := range []func(string, OrderView) bool{
		matchExact,
		matchStripped,
		matchContains,
	} {
		var (
			best  OrderView
			found bool
		)
		for _, o := range orders {
			if !stage(number, o) {
				continue
			}
			if !found || o.CreatedAt.After(best.CreatedAt) {
				best = o
				found = true
			}
		}
		if found {
			return best, true
		}
	}
	return OrderView{}, false
}

func matchExact(number string, o OrderView) bool {
	return o.Number == number
}

func matchStripped(number string, o OrderView) bool {
	return stripHash(o.Number) == stripHash(number)
}

// matchContains is the last-resort stage for representation drift the strip
// stage misses: lost zero padding ("#042" stored as "42") or a storage
// prefix glued onto the number ("ORD-042"). Plain substring containment
// would mis-assign short numbers to longer ones ("#7" swallowing "#73"), so
// containment only counts when the shorter form is a suffix of the longer
// and everything left in front of it is padding, never significant digits.
func matchContains(number string, o OrderView) bool {
	local := stripHash(number)
	remote := stripHash(o.Number)
	if local == "" || remote == "" {
		return false
	}
	return suffixWithPadding(remote, local) || suffixWithPadding(local, remote)
}

// suffixWithPadding reports whether short is a suffix of long with only
// zeros or non-digit characters remaining in front. "042"/"42" and
// "ORD-042"/"042" qualify; "73"/"7" and "173"/"73" do not.
func suffixWithPadding(long, short string) bool {
	if len(long) <= len(short) || !strings.HasSuffix(long, short) {
		return false
	}
	for _, r := range long[:len(long)-len(short)] {
		if r >= '1' && r <= '9' {
			return false
		}
	}
	return true
}

// sameOrder reports whether the remote record is the tracked order itself,
// using the same fallback chain so the queue computation excludes the order
// under every representation drift Match tolerates.
func sameOrder(number string, o OrderView) bool {
	return matchExact(number, o) || matchStripped(number, o) || matchContains(number, o)
}

// QueuePosition ranks a pending tracked order among all pending orders by
// creation time: 1 plus the count of other pending records created strictly
// earlier. Non-pending orders have no queue position.
func QueuePosition(number string, matched OrderView, orders []OrderView) int {
	if matched.Status != entity.StatusPending {
		return 0
	}
	position := 1
	for _, o := range orders {
		if o.Status != entity.StatusPending {
			continue
		}
		if sameOrder(number, o) {
			continue
		}
		if o.CreatedAt.Before(matched.CreatedAt) {
			position++
		}
	}
	return position
}
