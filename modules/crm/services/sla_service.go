package services

import (
	"context"
	"time"

	"github.com/vantagecrm/vantage/modules/crm/domain/aggregates/kase"
	"github.com/vantagecrm/vantage/pkg/composables"
	"github.com/vantagecrm/vantage/pkg/eventbus"
)

const slaSweepBatchSize = 200

// SLAService marks open cases past their due time as breached. The
// sweep runs tenant-agnostic from the worker, so it uses a plain
// transaction rather than a tenant one.
type SLAService struct {
	repo      kase.Repository
	publisher eventbus.EventBus
}

func NewSLAService(repo kase.Repository, publisher eventbus.EventBus) *SLAService {
	return &SLAService{repo: repo, publisher: publisher}
}

// Sweep returns the number of cases newly marked breached.
func (s *SLAService) Sweep(ctx context.Context, asOf time.Time) (int, error) {
	var marked int
	err := composables.InTx(ctx, func(txCtx context.Context) error {
		overdue, err := s.repo.GetSLAOverdue(txCtx, asOf, slaSweepBatchSize)
		if err != nil {
			return err
		}
		for _, c := range overdue {
			updated, err := s.repo.Update(txCtx, c.MarkSLABreached())
			if err != nil {
				return err
			}
			s.publisher.Publish(kase.SLABreachedEvent{Result: updated})
			marked++
		}
		return nil
	})
	return marked, err
}
