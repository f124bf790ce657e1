package requests

import (
	"context"

	"miko/ledger-portal/ledger-portal-backend/internal/blockchain"
	"miko/ledger-portal/ledger-portal-backend/internal/ledger"
)

// Service provides query views over the synchronized request collection for
// the validator UI. All views read the same cached snapshot the sync layer
// maintains; staleness is propagated so callers can flag degraded data.
type Service struct {
	sync    *blockchain.Service
	machine *StateMachine
}

// NewService creates a request view service.
func NewService(sync *blockchain.Service) *Service {
	return &Service{sync: sync, machine: NewStateMachine()}
}

// Machine exposes the lifecycle state machine for transition validation.
func (s *Service) Machine() *StateMachine {
	return s.machine
}

// ListPending returns requests awaiting a validator decision.
func (s *Service) ListPending(ctx context.Context) ([]ledger.RequestRecord, bool) {
	return s.ListByStatus(ctx, StatusPending)
}

// ListByStatus returns requests in the given state.
func (s *Service) ListByStatus(ctx context.Context, status Status) ([]ledger.RequestRecord, bool) {
	all, res := s.sync.Requests(ctx, false)
	filtered := make([]ledger.RequestRecord, 0, len(all))
	for _, r := range all {
		if r.Status == int(status) {
			filtered = append(filtered, r)
		}
	}
	return filtered, res.Stale
}

// Get returns a single request by id, if present in the mirrored collection.
func (s *Service) Get(ctx context.Context, id int64) (*ledger.RequestRecord, bool, bool) {
	all, res := s.sync.Requests(ctx, false)
	for i := range all {
		if all[i].ID == id {
			return &all[i], res.Stale, true
		}
	}
	return nil, res.Stale, false
}
