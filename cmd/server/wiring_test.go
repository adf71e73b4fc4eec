package main

import (
	"context"
	"testing"
	"time"

	"github.com/corebank/backend/internal/domain/posting"
	"github.com/corebank/backend/internal/infrastructure/cache"
	"github.com/corebank/backend/internal/infrastructure/config"
	"github.com/corebank/backend/internal/infrastructure/lock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestRuleTable(t *testing.T) {
	t.Run("falls back to the built-in chart", func(t *testing.T) {
		table, err := ruleTable(nil)
		require.NoError(t, err)
		assert.Equal(t, len(posting.DefaultRules()), table.Len())
	})

	t.Run("uses configured rules", func(t *testing.T) {
		table, err := ruleTable([]config.RuleConfig{
			{Key: "*@Principal_Deposit", Debit: "1011", Credit: "2101"},
			{Key: "SAV-01@Branch_Commission", Credit: "4101"},
		})
		require.NoError(t, err)
		assert.Equal(t, 2, table.Len())

		rule, ok := table.Resolve(posting.EventKey{Subject: "SAV-01", Attribute: posting.PrincipalDeposit})
		require.True(t, ok)
		assert.Equal(t, "1011", rule.Debit)
	})

	t.Run("rejects duplicate keys", func(t *testing.T) {
		_, err := ruleTable([]config.RuleConfig{
			{Key: "*@Principal_Deposit", Debit: "1011"},
			{Key: "*@Principal_Deposit", Debit: "1012"},
		})
		assert.Error(t, err)
	})
}

func TestSchemeRequest(t *testing.T) {
	req := schemeRequest(config.SchemeConfig{
		Code:         "DEFAULT",
		Name:         "Default",
		SourceBranch: 40,
		HeadOffice:   40,
		PartnerOne:   10,
		PartnerTwo:   10,
	})

	assert.Equal(t, "DEFAULT", req.Code)
	assert.NoError(t, req.Shares.Validate())
	assert.True(t, req.Shares.DestinationBranch.IsZero())
}

func TestSharedState_Memory(t *testing.T) {
	cfg := &config.Config{Lock: config.LockConfig{Backend: "memory", WaitTimeout: time.Second}}

	locker, store, closeFn, err := sharedState(context.Background(), cfg, zap.NewNop())
	require.NoError(t, err)
	assert.IsType(t, &lock.MemoryLocker{}, locker)
	assert.IsType(t, &cache.MemoryIdempotencyStore{}, store)
	assert.NoError(t, closeFn())
}
