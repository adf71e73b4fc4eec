package posting

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func d(v int64) decimal.Decimal { return decimal.NewFromInt(v) }

func TestNewCommissionScheme(t *testing.T) {
	t.Run("sums to 100", func(t *testing.T) {
		s, err := NewCommissionScheme("STD", "Standard", Shares{d(30), d(20), d(40), d(5), d(5)})
		require.NoError(t, err)
		assert.Equal(t, "STD", s.Code)
	})

	t.Run("sums to 99 is rejected", func(t *testing.T) {
		_, err := NewCommissionScheme("BAD", "Bad", Shares{d(30), d(20), d(39), d(5), d(5)})
		assert.ErrorIs(t, err, ErrInvalidShareConfiguration)
	})

	t.Run("sums to 101 is rejected", func(t *testing.T) {
		_, err := NewCommissionScheme("BAD", "Bad", Shares{d(30), d(20), d(41), d(5), d(5)})
		assert.ErrorIs(t, err, ErrInvalidShareConfiguration)
	})

	t.Run("fractional shares", func(t *testing.T) {
		third := decimal.RequireFromString("33.5")
		_, err := NewCommissionScheme("FR", "Fractional", Shares{third, third, decimal.RequireFromString("33"), d(0), d(0)})
		require.NoError(t, err)
	})

	t.Run("negative share", func(t *testing.T) {
		_, err := NewCommissionScheme("NEG", "Negative", Shares{d(110), d(-10), d(0), d(0), d(0)})
		assert.ErrorIs(t, err, ErrInvalidShareConfiguration)
	})

	t.Run("update keeps old shares on failure", func(t *testing.T) {
		s, err := NewCommissionScheme("STD", "Standard", Shares{d(30), d(20), d(40), d(5), d(5)})
		require.NoError(t, err)
		err = s.UpdateShares(Shares{d(50), d(49), d(0), d(0), d(0)})
		assert.ErrorIs(t, err, ErrInvalidShareConfiguration)
		assert.True(t, s.Shares.HeadOffice.Equal(d(40)))
	})
}

func TestCommissionScheme_Split(t *testing.T) {
	s, err := NewCommissionScheme("STD", "Standard", Shares{d(30), d(20), d(40), d(5), d(5)})
	require.NoError(t, err)

	t.Run("even split", func(t *testing.T) {
		split := s.Split(d(1000))
		assert.True(t, split.SourceBranch.Equal(d(300)))
		assert.True(t, split.DestinationBranch.Equal(d(200)))
		assert.True(t, split.HeadOffice.Equal(d(400)))
		assert.True(t, split.PartnerOne.Equal(d(50)))
		assert.True(t, split.PartnerTwo.Equal(d(50)))
	})

	t.Run("remainder goes to head office", func(t *testing.T) {
		split := s.Split(d(33))
		assert.True(t, split.Total().Equal(d(33)))
		// 9 + 6 + 1 + 1 taken by the others
		assert.True(t, split.HeadOffice.Equal(d(16)))
	})

	t.Run("zero fee", func(t *testing.T) {
		assert.True(t, s.Split(decimal.Zero).Total().IsZero())
	})
}
