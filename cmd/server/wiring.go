package main

import (
	"context"
	"fmt"

	"github.com/corebank/backend/internal/application/custody"
	postingapp "github.com/corebank/backend/internal/application/posting"
	"github.com/corebank/backend/internal/domain/posting"
	"github.com/corebank/backend/internal/infrastructure/cache"
	"github.com/corebank/backend/internal/infrastructure/config"
	"github.com/corebank/backend/internal/infrastructure/lock"
	"github.com/corebank/backend/internal/interfaces/http/handler"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// ruleTable builds the account rule table, falling back to the built-in
// chart when none is configured
func ruleTable(rules []config.RuleConfig) (*posting.RuleTable, error) {
	if len(rules) == 0 {
		return posting.NewRuleTable(posting.DefaultRules())
	}
	entries := make(map[string]posting.AccountRule, len(rules))
	for _, r := range rules {
		if _, dup := entries[r.Key]; dup {
			return nil, fmt.Errorf("posting rule %s configured twice", r.Key)
		}
		entries[r.Key] = posting.AccountRule{Debit: r.Debit, Credit: r.Credit}
	}
	return posting.NewRuleTable(entries)
}

// schemeRequest converts the configured default scheme
func schemeRequest(s config.SchemeConfig) postingapp.SchemeRequest {
	return postingapp.SchemeRequest{
		Code: s.Code,
		Name: s.Name,
		Shares: posting.Shares{
			SourceBranch:      decimal.NewFromFloat(s.SourceBranch),
			DestinationBranch: decimal.NewFromFloat(s.DestinationBranch),
			HeadOffice:        decimal.NewFromFloat(s.HeadOffice),
			PartnerOne:        decimal.NewFromFloat(s.PartnerOne),
			PartnerTwo:        decimal.NewFromFloat(s.PartnerTwo),
		},
	}
}

// sharedState returns the key locker and idempotency store of the
// configured backend with a function releasing them. Redis backs both when
// selected so every replica sees the same keys.
func sharedState(ctx context.Context, cfg *config.Config, log *zap.Logger) (custody.KeyLocker, handler.IdempotencyStore, func() error, error) {
	if cfg.Lock.Backend != "redis" {
		store := cache.NewMemoryIdempotencyStore(0)
		return lock.NewMemoryLocker(cfg.Lock.WaitTimeout), store, store.Close, nil
	}
	client, err := lock.NewRedisClient(ctx, cfg.Redis.Addr(), cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return nil, nil, nil, err
	}
	locker := lock.NewRedisLocker(client, lock.RedisOptions{
		KeyPrefix:     cfg.Lock.KeyPrefix,
		TTL:           cfg.Lock.TTL,
		RetryInterval: cfg.Lock.RetryInterval,
		WaitTimeout:   cfg.Lock.WaitTimeout,
	}, log)
	return locker, cache.NewRedisIdempotencyStore(client, ""), client.Close, nil
}
