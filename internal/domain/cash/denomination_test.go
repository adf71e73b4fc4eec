package cash

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLedger_Decompose(t *testing.T) {
	ledger := DefaultLedger()

	t.Run("greedy largest first", func(t *testing.T) {
		set, err := ledger.Decompose(decimal.NewFromInt(18788))
		require.NoError(t, err)
		assert.Equal(t, DenominationSet{10000: 1, 5000: 1, 2000: 1, 1000: 1, 500: 1, 200: 1, 50: 1, 20: 1, 10: 1, 5: 1, 2: 1, 1: 1}, set)
	})

	t.Run("decomposition always validates", func(t *testing.T) {
		for _, v := range []int64{0, 1, 3, 99, 150000, 500000, 123457, 9999999} {
			amount := decimal.NewFromInt(v)
			set, err := ledger.Decompose(amount)
			require.NoError(t, err)
			assert.NoError(t, ledger.Validate(amount, set), "amount %d", v)
			assert.True(t, set.Total().Equal(amount))
		}
	})

	t.Run("rejects fractional amount", func(t *testing.T) {
		_, err := ledger.Decompose(decimal.RequireFromString("10.5"))
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("unrepresentable without unit coin", func(t *testing.T) {
		l, err := NewLedger([]int64{500, 100})
		require.NoError(t, err)
		_, err = l.Decompose(decimal.NewFromInt(150))
		assert.ErrorIs(t, err, ErrDenominationMismatch)
	})
}

func TestLedger_Validate(t *testing.T) {
	ledger := DefaultLedger()
	amount := decimal.NewFromInt(150000)

	t.Run("exact match", func(t *testing.T) {
		assert.NoError(t, ledger.Validate(amount, DenominationSet{10000: 15}))
	})

	t.Run("off by one count", func(t *testing.T) {
		err := ledger.Validate(amount, DenominationSet{10000: 14, 5000: 1, 1000: 1})
		assert.ErrorIs(t, err, ErrDenominationMismatch)
		err = ledger.Validate(amount, DenominationSet{10000: 16})
		assert.ErrorIs(t, err, ErrDenominationMismatch)
	})

	t.Run("unknown face value", func(t *testing.T) {
		err := ledger.Validate(decimal.NewFromInt(300), DenominationSet{300: 1})
		assert.ErrorIs(t, err, ErrUnknownFaceValue)
	})

	t.Run("negative count", func(t *testing.T) {
		err := ledger.Validate(decimal.NewFromInt(9000), DenominationSet{10000: 1, 1000: -1})
		assert.ErrorIs(t, err, ErrDenominationMismatch)
	})

	t.Run("fractional amount", func(t *testing.T) {
		err := ledger.Validate(decimal.RequireFromString("100.01"), DenominationSet{100: 1})
		assert.ErrorIs(t, err, ErrInvalidAmount)
	})

	t.Run("count whose product wraps int64", func(t *testing.T) {
		// 10000 * 2^60 wraps to 0 in int64 arithmetic
		forged := DenominationSet{10000: 1 << 60, 100: 1}
		assert.False(t, forged.Total().Equal(decimal.NewFromInt(100)))
		err := ledger.Validate(decimal.NewFromInt(100), forged)
		assert.ErrorIs(t, err, ErrDenominationCountOutOfRange)
	})

	t.Run("count above the bound", func(t *testing.T) {
		set := DenominationSet{1: MaxDenominationCount + 1}
		err := ledger.Validate(decimal.NewFromInt(MaxDenominationCount+1), set)
		assert.ErrorIs(t, err, ErrDenominationCountOutOfRange)
	})
}

func TestDenominationSet_TotalIsExact(t *testing.T) {
	set := DenominationSet{10000: MaxDenominationCount, 5000: MaxDenominationCount}
	want := decimal.NewFromInt(15000).Mul(decimal.NewFromInt(MaxDenominationCount))
	assert.True(t, set.Total().Equal(want), "got %s", set.Total())
}

func TestDenominationSet_Add(t *testing.T) {
	have := DenominationSet{10000: 2}

	sum, err := have.Add(DenominationSet{10000: 1, 500: 3})
	require.NoError(t, err)
	assert.Equal(t, DenominationSet{10000: 3, 500: 3}, sum)
	assert.Equal(t, DenominationSet{10000: 2}, have, "receiver must not change")

	_, err = have.Add(DenominationSet{10000: 1 << 60})
	assert.ErrorIs(t, err, ErrDenominationCountOutOfRange)

	_, err = DenominationSet{10000: MaxDenominationCount}.Add(DenominationSet{10000: 1})
	assert.ErrorIs(t, err, ErrDenominationCountOutOfRange)
}

func TestLedger_Materialize(t *testing.T) {
	ledger := DefaultLedger()
	records := ledger.Materialize(DenominationSet{10000: 2, 500: 0, 100: 3}, "WD-1")

	require.Len(t, records, 2)
	assert.Equal(t, int64(10000), records[0].FaceValue)
	assert.Equal(t, int64(100), records[1].FaceValue)
	for _, r := range records {
		assert.Equal(t, "WD-1", r.Reference)
		assert.True(t, r.GrandTotal.Equal(decimal.NewFromInt(20300)))
	}
	assert.True(t, records[1].LineTotal.Equal(decimal.NewFromInt(300)))
}

func TestNewLedger(t *testing.T) {
	_, err := NewLedger(nil)
	assert.Error(t, err)
	_, err = NewLedger([]int64{100, 0})
	assert.Error(t, err)
	_, err = NewLedger([]int64{100, 100})
	assert.Error(t, err)

	l, err := NewLedger([]int64{1, 100, 10})
	require.NoError(t, err)
	assert.Equal(t, []int64{100, 10, 1}, l.FaceValues())
}

func TestDenominationSet_ScanValue(t *testing.T) {
	set := DenominationSet{10000: 3, 50: 2}
	v, err := set.Value()
	require.NoError(t, err)

	var out DenominationSet
	require.NoError(t, out.Scan(v))
	assert.Equal(t, set, out)

	require.NoError(t, out.Scan([]byte(`{"1000":4}`)))
	assert.Equal(t, DenominationSet{1000: 4}, out)

	assert.Error(t, out.Scan(42))
}

func TestDenominationSet_Sub(t *testing.T) {
	have := DenominationSet{10000: 2, 1000: 5}

	left, err := have.Sub(DenominationSet{10000: 1, 1000: 5})
	require.NoError(t, err)
	assert.Equal(t, DenominationSet{10000: 1}, left)

	_, err = have.Sub(DenominationSet{5000: 2})
	assert.ErrorIs(t, err, ErrInsufficientCashAtHand)
	assert.Equal(t, DenominationSet{10000: 2, 1000: 5}, have, "receiver must not change")
}
