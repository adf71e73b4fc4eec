package cash

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// DefaultFaceValues is the note/coin table used when none is configured
var DefaultFaceValues = []int64{10000, 5000, 2000, 1000, 500, 200, 100, 50, 20, 10, 5, 2, 1}

// MaxDenominationCount bounds the count of one face value in a movement
// or an inventory
const MaxDenominationCount int64 = 1_000_000_000

// DenominationSet maps a face value to a note/coin count
type DenominationSet map[int64]int64

// Total returns sum(count * faceValue)
func (s DenominationSet) Total() decimal.Decimal {
	total := decimal.Zero
	for face, count := range s {
		total = total.Add(lineTotal(face, count))
	}
	return total
}

func lineTotal(face, count int64) decimal.Decimal {
	return decimal.NewFromInt(face).Mul(decimal.NewFromInt(count))
}

// CheckCounts rejects negative counts and counts above MaxDenominationCount
func (s DenominationSet) CheckCounts() error {
	for face, count := range s {
		if count < 0 {
			return ErrDenominationMismatch.WithMessage(fmt.Sprintf("Count for face value %d is negative", face))
		}
		if count > MaxDenominationCount {
			return ErrDenominationCountOutOfRange.WithMessage(fmt.Sprintf(
				"Count %d for face value %d exceeds %d", count, face, MaxDenominationCount))
		}
	}
	return nil
}

// Clone returns an independent copy without zero entries
func (s DenominationSet) Clone() DenominationSet {
	out := make(DenominationSet, len(s))
	for face, count := range s {
		if count != 0 {
			out[face] = count
		}
	}
	return out
}

// Covers reports whether every requested count is available in s
func (s DenominationSet) Covers(requested DenominationSet) bool {
	for face, count := range requested {
		if s[face] < count {
			return false
		}
	}
	return true
}

// Add returns s + other, failing when a count leaves the accepted range
func (s DenominationSet) Add(other DenominationSet) (DenominationSet, error) {
	if err := other.CheckCounts(); err != nil {
		return nil, err
	}
	out := s.Clone()
	for face, count := range other {
		if out[face] > MaxDenominationCount-count {
			return nil, ErrDenominationCountOutOfRange.WithMessage(fmt.Sprintf(
				"Holding of face value %d would exceed %d", face, MaxDenominationCount))
		}
		out[face] += count
	}
	return out.Clone(), nil
}

// Sub returns s - other, failing when any denomination would go negative
func (s DenominationSet) Sub(other DenominationSet) (DenominationSet, error) {
	if !s.Covers(other) {
		return nil, ErrInsufficientCashAtHand
	}
	out := s.Clone()
	for face, count := range other {
		out[face] -= count
	}
	return out.Clone(), nil
}

// Value implements driver.Valuer for JSON storage
func (s DenominationSet) Value() (driver.Value, error) {
	if s == nil {
		return "{}", nil
	}
	b, err := json.Marshal(s)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

// Scan implements sql.Scanner for JSON storage
func (s *DenominationSet) Scan(value interface{}) error {
	if value == nil {
		*s = DenominationSet{}
		return nil
	}
	var data []byte
	switch v := value.(type) {
	case []byte:
		data = v
	case string:
		data = []byte(v)
	default:
		return errors.New("failed to scan DenominationSet: unsupported type")
	}
	out := DenominationSet{}
	if err := json.Unmarshal(data, &out); err != nil {
		return err
	}
	*s = out
	return nil
}

// DenominationRecord is the immutable audit row tying one denomination of a
// cash movement to its reference. Every record of a reference carries the
// same grand total.
type DenominationRecord struct {
	ID         uuid.UUID
	Reference  string
	FaceValue  int64
	Count      int64
	LineTotal  decimal.Decimal
	GrandTotal decimal.Decimal
	CreatedAt  time.Time
}

// Ledger holds the face-value table and the algorithms over it
type Ledger struct {
	faceValues []int64
}

// NewLedger creates a ledger over the given face values (any order)
func NewLedger(faceValues []int64) (*Ledger, error) {
	if len(faceValues) == 0 {
		return nil, fmt.Errorf("face value table is empty")
	}
	seen := make(map[int64]struct{}, len(faceValues))
	values := make([]int64, 0, len(faceValues))
	for _, v := range faceValues {
		if v <= 0 {
			return nil, fmt.Errorf("face value %d must be positive", v)
		}
		if _, dup := seen[v]; dup {
			return nil, fmt.Errorf("face value %d listed twice", v)
		}
		seen[v] = struct{}{}
		values = append(values, v)
	}
	sort.Slice(values, func(i, j int) bool { return values[i] > values[j] })
	return &Ledger{faceValues: values}, nil
}

// DefaultLedger returns a ledger over DefaultFaceValues
func DefaultLedger() *Ledger {
	l, _ := NewLedger(DefaultFaceValues)
	return l
}

// FaceValues returns the table, largest first
func (l *Ledger) FaceValues() []int64 {
	out := make([]int64, len(l.faceValues))
	copy(out, l.faceValues)
	return out
}

func (l *Ledger) known(face int64) bool {
	for _, v := range l.faceValues {
		if v == face {
			return true
		}
	}
	return false
}

// Decompose suggests a breakdown of amount, largest face value first.
// Only system generated movements use it; tellers supply their own counts.
func (l *Ledger) Decompose(amount decimal.Decimal) (DenominationSet, error) {
	units, err := wholeUnits(amount)
	if err != nil {
		return nil, err
	}
	set := DenominationSet{}
	remaining := units
	for _, face := range l.faceValues {
		if remaining == 0 {
			break
		}
		if n := remaining / face; n > 0 {
			set[face] = n
			remaining -= n * face
		}
	}
	if remaining != 0 {
		return nil, ErrDenominationMismatch.WithMessage(
			fmt.Sprintf("Amount %s cannot be represented with the configured face values", amount.String()))
	}
	return set, nil
}

// Validate checks that set describes exactly amount
func (l *Ledger) Validate(amount decimal.Decimal, set DenominationSet) error {
	if _, err := wholeUnits(amount); err != nil {
		return err
	}
	for face := range set {
		if !l.known(face) {
			return ErrUnknownFaceValue.WithMessage(fmt.Sprintf("Face value %d is not in the configured table", face))
		}
	}
	if err := set.CheckCounts(); err != nil {
		return err
	}
	if total := set.Total(); !total.Equal(amount) {
		return ErrDenominationMismatch.WithMessage(
			fmt.Sprintf("Denominations total %s but amount is %s", total.String(), amount.String()))
	}
	return nil
}

// Materialize emits one record per non-zero denomination, largest first
func (l *Ledger) Materialize(set DenominationSet, reference string) []DenominationRecord {
	grand := set.Total()
	now := time.Now()
	records := make([]DenominationRecord, 0, len(set))
	for _, face := range l.faceValues {
		count := set[face]
		if count == 0 {
			continue
		}
		records = append(records, DenominationRecord{
			ID:         uuid.New(),
			Reference:  reference,
			FaceValue:  face,
			Count:      count,
			LineTotal:  lineTotal(face, count),
			GrandTotal: grand,
			CreatedAt:  now,
		})
	}
	return records
}

var maxUnits = decimal.NewFromInt(math.MaxInt64)

func wholeUnits(amount decimal.Decimal) (int64, error) {
	if amount.IsNegative() || !amount.Equal(amount.Truncate(0)) || amount.GreaterThan(maxUnits) {
		return 0, ErrInvalidAmount
	}
	return amount.IntPart(), nil
}
