package requests

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"miko/ledger-portal/ledger-portal-backend/internal/blockchain"
	"miko/ledger-portal/ledger-portal-backend/internal/ledger"
)

type stubFetcher struct {
	requests []ledger.RequestRecord
	fail     bool
}

func (f *stubFetcher) FetchTrees(ctx context.Context) ([]ledger.TreeRecord, error) {
	return nil, errors.New("not used")
}

func (f *stubFetcher) FetchListings(ctx context.Context) ([]ledger.Listing, error) {
	return nil, errors.New("not used")
}

func (f *stubFetcher) FetchRequests(ctx context.Context) ([]ledger.RequestRecord, error) {
	if f.fail {
		return nil, errors.New("ledger unreachable")
	}
	return f.requests, nil
}

func newViewService(fetcher *stubFetcher) *Service {
	sync := blockchain.NewService(fetcher, blockchain.TTLs{Requests: time.Minute}, nil)
	return NewService(sync)
}

func TestListPendingFiltersByStatus(t *testing.T) {
	service := newViewService(&stubFetcher{requests: []ledger.RequestRecord{
		{ID: 0, Status: ledger.RequestStatusPending},
		{ID: 1, Status: ledger.RequestStatusApproved},
		{ID: 2, Status: ledger.RequestStatusPending},
		{ID: 3, Status: ledger.RequestStatusRejected},
	}})

	pending, stale := service.ListPending(context.Background())

	assert.False(t, stale)
	require.Len(t, pending, 2)
	assert.Equal(t, int64(0), pending[0].ID)
	assert.Equal(t, int64(2), pending[1].ID)
}

func TestListByStatus(t *testing.T) {
	service := newViewService(&stubFetcher{requests: []ledger.RequestRecord{
		{ID: 1, Status: ledger.RequestStatusApproved, RatePPM: 2_500_000},
		{ID: 3, Status: ledger.RequestStatusRejected},
	}})

	approved, _ := service.ListByStatus(context.Background(), StatusApproved)
	require.Len(t, approved, 1)
	assert.Equal(t, int64(1), approved[0].ID)

	rejected, _ := service.ListByStatus(context.Background(), StatusRejected)
	require.Len(t, rejected, 1)
}

func TestGetByID(t *testing.T) {
	service := newViewService(&stubFetcher{requests: []ledger.RequestRecord{
		{ID: 5, Status: ledger.RequestStatusPending, Requester: "0xdef"},
	}})

	record, _, found := service.Get(context.Background(), 5)
	require.True(t, found)
	assert.Equal(t, "0xdef", record.Requester)

	_, _, found = service.Get(context.Background(), 6)
	assert.False(t, found)
}

func TestViewsEmptyWhenLedgerDownWithNoPriorData(t *testing.T) {
	service := newViewService(&stubFetcher{fail: true})

	pending, stale := service.ListPending(context.Background())

	assert.Empty(t, pending)
	assert.True(t, stale)
}
