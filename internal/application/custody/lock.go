package custody

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/corebank/backend/internal/domain/shared"
	"github.com/google/uuid"
)

// ErrLockNotAcquired is returned when a key stays busy past the wait budget
var ErrLockNotAcquired = shared.NewKindError(shared.KindConflict, "LOCK_NOT_ACQUIRED", "Resource is busy, retry later")

// KeyLocker serializes work per key. Release must be called exactly once.
type KeyLocker interface {
	Acquire(ctx context.Context, key string) (release func(), err error)
}

// DayKey serializes accounting day transitions of one branch and date
func DayKey(branchID uuid.UUID, date time.Time) string {
	return fmt.Sprintf("acctday:%s:%s", branchID, date.Format(shared.DateLayout))
}

// DayBranchKey serializes day transitions of one branch across dates, so
// that at most one day is open per branch
func DayBranchKey(branchID uuid.UUID) string {
	return fmt.Sprintf("acctday:%s", branchID)
}

// CeilingKey serializes request creation per teller and direction
func CeilingKey(tellerID uuid.UUID, reqType string) string {
	return fmt.Sprintf("ceiling:%s:%s", tellerID, reqType)
}

// CeilingRequestKey serializes decisions on one request
func CeilingRequestKey(requestID uuid.UUID) string {
	return fmt.Sprintf("ceiling-request:%s", requestID)
}

// CustodianKey serializes balance mutations of one custodian
func CustodianKey(custodianID uuid.UUID) string {
	return fmt.Sprintf("custodian:%s", custodianID)
}

// AssignmentKey serializes assignments within a branch
func AssignmentKey(branchID uuid.UUID) string {
	return fmt.Sprintf("assignment:%s", branchID)
}

// AcquireAll takes every key in a stable order so that two callers
// locking overlapping sets cannot deadlock.
func AcquireAll(ctx context.Context, locker KeyLocker, keys ...string) (func(), error) {
	sorted := make([]string, 0, len(keys))
	seen := make(map[string]struct{}, len(keys))
	for _, k := range keys {
		if _, dup := seen[k]; dup {
			continue
		}
		seen[k] = struct{}{}
		sorted = append(sorted, k)
	}
	sort.Strings(sorted)

	releases := make([]func(), 0, len(sorted))
	releaseAll := func() {
		for i := len(releases) - 1; i >= 0; i-- {
			releases[i]()
		}
	}
	for _, k := range sorted {
		release, err := locker.Acquire(ctx, k)
		if err != nil {
			releaseAll()
			return nil, err
		}
		releases = append(releases, release)
	}
	return releaseAll, nil
}
