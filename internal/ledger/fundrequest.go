package ledger

import (
	"context"

	"crowdfund_ledger/internal/cache"
	"crowdfund_ledger/internal/domain"
	"crowdfund_ledger/internal/store"

	"github.com/sirupsen/logrus"
)

// CreateFundRequest opens a new active request owned by ownerID
func (s *Service) CreateFundRequest(ctx context.Context, ownerID string, draft domain.FundRequestDraft) (*domain.FundRequest, error) {
	var request *domain.FundRequest
	err := s.commit(ctx, "create_request", func(tx store.Tx) error {
		r, err := domain.NewFundRequest(ownerID, draft, s.now())
		if err != nil {
			return err
		}
		request = r
		return tx.CreateFundRequest(ctx, r)
	})
	fields := logrus.Fields{"owner_id": ownerID, "target_amount": draft.TargetAmount.String()}
	if err == nil {
		fields["fund_request_id"] = request.ID
	} else {
		request = nil
	}
	s.audit("create_request", "Fund request created", fields, err)
	return request, err
}

// FundRequest returns a request, possibly from a snapshot. The bool reports a cache hit.
func (s *Service) FundRequest(ctx context.Context, id string) (*domain.FundRequest, bool, error) {
	r, hit, err := cached(ctx, s, cache.FundRequestKey(id), func() (domain.FundRequest, error) {
		r, err := s.store.GetFundRequest(ctx, id)
		if err != nil {
			return domain.FundRequest{}, err
		}
		return *r, nil
	})
	if err != nil {
		return nil, false, err
	}
	return &r, hit, nil
}

// FundRequests lists requests matching filter, newest first
func (s *Service) FundRequests(ctx context.Context, filter store.FundRequestFilter, page store.Page) (List[domain.FundRequest], error) {
	rows, total, err := s.store.ListFundRequests(ctx, filter, page)
	if err != nil {
		return List[domain.FundRequest]{}, err
	}
	return newList(rows, total, page), nil
}

// CancelFundRequest cancels an active request on behalf of its owner
func (s *Service) CancelFundRequest(ctx context.Context, requestID, requesterID string) (*domain.FundRequest, error) {
	r, err := s.updateRequest(ctx, "cancel_request", requestID, func(tx store.Tx, r *domain.FundRequest) error {
		return r.Cancel(requesterID, s.now())
	})
	s.audit("cancel_request", "Fund request cancelled", logrus.Fields{"fund_request_id": requestID, "user_id": requesterID}, err)
	return r, err
}

// AttachDocument appends an already uploaded document URI to the owner's request
func (s *Service) AttachDocument(ctx context.Context, requestID, requesterID, uri string) (*domain.FundRequest, error) {
	r, err := s.updateRequest(ctx, "attach_document", requestID, func(tx store.Tx, r *domain.FundRequest) error {
		return r.AttachDocument(requesterID, uri, s.now())
	})
	s.audit("attach_document", "Fund request document attached", logrus.Fields{"fund_request_id": requestID, "user_id": requesterID}, err)
	return r, err
}

// Endorse records verifierID's endorsement. Replays fail with
// domain.ErrDuplicateEndorsement and leave the count unchanged.
func (s *Service) Endorse(ctx context.Context, requestID, verifierID string) (*domain.FundRequest, error) {
	r, err := s.updateRequest(ctx, "endorse", requestID, func(tx store.Tx, r *domain.FundRequest) error {
		endorsed, err := tx.HasEndorsed(ctx, requestID, verifierID)
		if err != nil {
			return err
		}
		endorsement, err := s.gate.Endorse(r, verifierID, endorsed, s.now())
		if err != nil {
			return err
		}
		return tx.AddEndorsement(ctx, endorsement)
	})
	fields := logrus.Fields{"fund_request_id": requestID, "verifier_id": verifierID}
	if r != nil {
		fields["verification_count"] = r.VerificationCount
		fields["is_verified"] = r.IsVerified
	}
	s.audit("endorse", "Fund request endorsed", fields, err)
	return r, err
}

// updateRequest reads a request, applies change and writes it back in one commit
func (s *Service) updateRequest(ctx context.Context, op, requestID string, change func(store.Tx, *domain.FundRequest) error) (*domain.FundRequest, error) {
	var out *domain.FundRequest
	err := s.commit(ctx, op, func(tx store.Tx) error {
		out = nil
		r, err := tx.GetFundRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if err := change(tx, r); err != nil {
			return err
		}
		if err := tx.UpdateFundRequest(ctx, r); err != nil {
			return err
		}
		out = r
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.forget(ctx, cache.FundRequestKey(requestID))
	return out, nil
}
