package services

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/vantagecrm/vantage/modules/crm/domain/aggregates/kase"
)

type sweepCaseRepo struct {
	memCaseRepo
	overdue []kase.Case
	updated []kase.Case
}

func (m *sweepCaseRepo) GetSLAOverdue(_ context.Context, asOf time.Time, _ int) ([]kase.Case, error) {
	var out []kase.Case
	for _, c := range m.overdue {
		if c.Status().IsOpen() && !c.SLABreached() && c.SLADueAt().Before(asOf) {
			out = append(out, c)
		}
	}
	return out, nil
}

func (m *sweepCaseRepo) Update(_ context.Context, e kase.Case) (kase.Case, error) {
	m.updated = append(m.updated, e)
	return e, nil
}

type countingPublisher struct {
	stubPublisher
	events []interface{}
}

func (p *countingPublisher) Publish(args ...interface{}) {
	p.events = append(p.events, args...)
}

func TestSLAService_SweepMarksOverdueOpenCases(t *testing.T) {
	tenantID := uuid.New()
	now := time.Now()

	overdue := kase.New(tenantID, "server down", kase.WithSLADueAt(now.Add(-time.Hour)))
	future := kase.New(tenantID, "feature request", kase.WithSLADueAt(now.Add(time.Hour)))
	closed := kase.New(tenantID, "old ticket",
		kase.WithSLADueAt(now.Add(-time.Hour)),
		kase.WithStatus(kase.StatusClosed),
	)
	already := kase.New(tenantID, "known breach",
		kase.WithSLADueAt(now.Add(-time.Hour)),
		kase.WithSLABreached(true),
	)

	repo := &sweepCaseRepo{overdue: []kase.Case{overdue, future, closed, already}}
	pub := &countingPublisher{}
	svc := NewSLAService(repo, pub)

	marked, err := svc.Sweep(testCtx(tenantID), now)
	require.NoError(t, err)
	require.Equal(t, 1, marked)
	require.Len(t, repo.updated, 1)
	require.Equal(t, overdue.ID(), repo.updated[0].ID())
	require.True(t, repo.updated[0].SLABreached())

	require.Len(t, pub.events, 1)
	ev, ok := pub.events[0].(kase.SLABreachedEvent)
	require.True(t, ok)
	require.Equal(t, overdue.ID(), ev.Result.ID())
}

func TestSLAService_SweepEmpty(t *testing.T) {
	repo := &sweepCaseRepo{}
	svc := NewSLAService(repo, &countingPublisher{})

	marked, err := svc.Sweep(testCtx(uuid.New()), time.Now())
	require.NoError(t, err)
	require.Equal(t, 0, marked)
	require.Empty(t, repo.updated)
}
