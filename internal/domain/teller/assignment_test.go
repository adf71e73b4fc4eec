package teller

import (
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestTeller(t *testing.T, branch uuid.UUID, primary bool) *Teller {
	t.Helper()
	tl, err := NewTeller(branch, "T-01", "Counter 1", primary)
	require.NoError(t, err)
	return tl
}

func TestAssign(t *testing.T) {
	branch := uuid.New()
	user := uuid.New()

	baseReq := func(tl *Teller, primary bool) AssignRequest {
		return AssignRequest{UserID: user, UserBranchID: branch, BranchID: branch, TellerID: tl.ID, IsPrimary: primary}
	}

	t.Run("sub teller", func(t *testing.T) {
		tl := newTestTeller(t, branch, false)
		a, err := Assign(baseReq(tl, false), tl, ActiveState{})
		require.NoError(t, err)
		assert.False(t, a.IsPrimary)
		assert.True(t, a.IsActive())
	})

	t.Run("primary teller entity upgrades request", func(t *testing.T) {
		tl := newTestTeller(t, branch, true)
		a, err := Assign(baseReq(tl, false), tl, ActiveState{})
		require.NoError(t, err)
		assert.True(t, a.IsPrimary)
	})

	t.Run("already active on this teller", func(t *testing.T) {
		tl := newTestTeller(t, branch, false)
		existing := &Assignment{UserID: user, TellerID: tl.ID}
		_, err := Assign(baseReq(tl, false), tl, ActiveState{UserOnTeller: existing, TellerHolder: existing, UserSub: existing})
		assert.ErrorIs(t, err, ErrAlreadyActive)
	})

	t.Run("second primary", func(t *testing.T) {
		tl := newTestTeller(t, branch, false)
		_, err := Assign(baseReq(tl, true), tl, ActiveState{BranchPrimary: &Assignment{UserID: uuid.New()}})
		assert.ErrorIs(t, err, ErrPrimaryAlreadyAssigned)
	})

	t.Run("teller held by someone else", func(t *testing.T) {
		tl := newTestTeller(t, branch, false)
		_, err := Assign(baseReq(tl, false), tl, ActiveState{TellerHolder: &Assignment{UserID: uuid.New()}})
		assert.ErrorIs(t, err, ErrTellerAlreadyAssigned)
	})

	t.Run("second sub teller", func(t *testing.T) {
		tl := newTestTeller(t, branch, false)
		_, err := Assign(baseReq(tl, false), tl, ActiveState{UserSub: &Assignment{UserID: user, TellerID: uuid.New()}})
		assert.ErrorIs(t, err, ErrUserAlreadyHasSubTeller)
	})

	t.Run("second sub allowed when requesting primary", func(t *testing.T) {
		tl := newTestTeller(t, branch, false)
		a, err := Assign(baseReq(tl, true), tl, ActiveState{UserSub: &Assignment{UserID: user, TellerID: uuid.New()}})
		require.NoError(t, err)
		assert.True(t, a.IsPrimary)
	})

	t.Run("cross branch sub teller", func(t *testing.T) {
		tl := newTestTeller(t, branch, false)
		req := baseReq(tl, false)
		req.UserBranchID = uuid.New()
		_, err := Assign(req, tl, ActiveState{})
		assert.ErrorIs(t, err, ErrCrossBranchSubTellerNotAllowed)
	})

	t.Run("checks run in order", func(t *testing.T) {
		tl := newTestTeller(t, branch, false)
		req := baseReq(tl, true)
		req.UserBranchID = uuid.New()
		state := ActiveState{
			BranchPrimary: &Assignment{UserID: uuid.New()},
			TellerHolder:  &Assignment{UserID: uuid.New()},
		}
		_, err := Assign(req, tl, state)
		assert.ErrorIs(t, err, ErrPrimaryAlreadyAssigned)

		req.IsPrimary = false
		state.UserSub = &Assignment{UserID: user}
		_, err = Assign(req, tl, state)
		assert.ErrorIs(t, err, ErrTellerAlreadyAssigned)
	})

	t.Run("teller from another branch", func(t *testing.T) {
		tl := newTestTeller(t, uuid.New(), false)
		_, err := Assign(baseReq(tl, false), tl, ActiveState{})
		assert.Error(t, err)
	})
}

func TestAssignment_End(t *testing.T) {
	branch := uuid.New()
	tl := newTestTeller(t, branch, false)
	a, err := Assign(AssignRequest{UserID: uuid.New(), UserBranchID: branch, BranchID: branch, TellerID: tl.ID}, tl, ActiveState{})
	require.NoError(t, err)

	require.NoError(t, a.End(uuid.New()))
	assert.False(t, a.IsActive())
	assert.NotNil(t, a.EndedAt)
	assert.ErrorIs(t, a.End(uuid.New()), ErrAssignmentNotActive)
}
