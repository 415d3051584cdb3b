package ledger

import (
	"context"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"crowdfund_ledger/internal/cache"
	"crowdfund_ledger/internal/domain"
	"crowdfund_ledger/internal/metrics"
	"crowdfund_ledger/internal/store"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
)

// MaxDonationMessage is the longest message a donor may attach, in characters
const MaxDonationMessage = 500

// Receipt is everything a settled donation produced
type Receipt struct {
	Donation    domain.Donation          `json:"donation"`
	Transaction domain.WalletTransaction `json:"transaction"`
	FundRequest domain.FundRequest       `json:"fund_request"`
	Balance     decimal.Decimal          `json:"balance"`
}

// Donate settles a donation of amount from donorID's wallet into requestID.
// The wallet debit, the request credit (and completion), the donation record
// and the owner's notifications commit together or not at all.
func (s *Service) Donate(ctx context.Context, donorID, requestID string, amount decimal.Decimal, isAnonymous bool, message *string) (*Receipt, error) {
	receipt, err := s.settle(ctx, donorID, requestID, amount, isAnonymous, message)
	fields := logrus.Fields{
		"user_id":         donorID,
		"fund_request_id": requestID,
		"amount":          amount.String(),
		"is_anonymous":    isAnonymous,
	}
	if receipt != nil {
		fields["donation_id"] = receipt.Donation.ID
		fields["status"] = receipt.FundRequest.Status
	}
	s.audit("donation", "Donation settled", fields, err)
	return receipt, err
}

func (s *Service) settle(ctx context.Context, donorID, requestID string, amount decimal.Decimal, isAnonymous bool, message *string) (*Receipt, error) {
	if !domain.ValidAmount(amount) {
		return nil, domain.ErrInvalidAmount
	}
	message, err := normalizeMessage(message)
	if err != nil {
		return nil, err
	}

	var receipt *Receipt
	err = s.commit(ctx, "donation", func(tx store.Tx) error {
		receipt = nil // reset on retry
		now := s.now()

		request, err := tx.GetFundRequest(ctx, requestID)
		if err != nil {
			return err
		}
		if request.Status != domain.StatusActive {
			return domain.ErrRequestNotActive
		}

		wallet, record, err := s.debitForDonation(ctx, tx, donorID, amount, request) // Debit donor first
		if err != nil {
			return err
		}

		completed, err := request.ApplyDonation(amount, now) // Credit the campaign
		if err != nil {
			return err
		}
		if err := tx.UpdateFundRequest(ctx, request); err != nil {
			return err
		}

		donation := domain.NewDonation(request.ID, donorID, amount, isAnonymous, message, now)
		if err := tx.AppendDonation(ctx, donation); err != nil {
			return err
		}
		for _, n := range donationNotices(request, amount, completed, now) { // Notify owner and donor
			if err := tx.CreateNotification(ctx, n); err != nil {
				return err
			}
		}

		receipt = &Receipt{
			Donation:    *donation,
			Transaction: *record,
			FundRequest: *request,
			Balance:     wallet.Balance,
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	metrics.ObserveDonation(amount)
	s.forget(ctx, cache.WalletKey(donorID), cache.FundRequestKey(requestID)) // Drop stale snapshots
	return receipt, nil
}

func normalizeMessage(message *string) (*string, error) {
	if message == nil {
		return nil, nil
	}
	m := strings.TrimSpace(*message)
	if m == "" {
		return nil, nil
	}
	if utf8.RuneCountInString(m) > MaxDonationMessage {
		return nil, fmt.Errorf("%w: message longer than %d characters", domain.ErrInvalidInput, MaxDonationMessage)
	}
	return &m, nil
}

func donationNotices(r *domain.FundRequest, amount decimal.Decimal, completed bool, now time.Time) []*domain.Notification {
	notices := []*domain.Notification{
		domain.NewNotification(r.OwnerID, domain.NotifyDonationReceived,
			"New donation received",
			fmt.Sprintf("Your request %q received a donation of $%s", r.Title, amount.StringFixed(domain.MoneyPlaces)),
			r.ID, now),
	}
	if completed {
		notices = append(notices, domain.NewNotification(r.OwnerID, domain.NotifyRequestFunded,
			"Fund request fully funded",
			fmt.Sprintf("Your request %q reached its target of $%s", r.Title, r.TargetAmount.StringFixed(domain.MoneyPlaces)),
			r.ID, now))
	}
	return notices
}

// DonationsForRequest lists donations to requestID as seen by viewerID;
// anonymous donors are hidden from everyone but themselves
func (s *Service) DonationsForRequest(ctx context.Context, viewerID, requestID string, page store.Page) (List[domain.Donation], error) {
	if _, _, err := s.FundRequest(ctx, requestID); err != nil {
		return List[domain.Donation]{}, err
	}
	rows, total, err := s.store.ListDonations(ctx, store.DonationFilter{FundRequestID: requestID}, page)
	if err != nil {
		return List[domain.Donation]{}, err
	}
	for i := range rows {
		rows[i] = rows[i].VisibleTo(viewerID)
	}
	return newList(rows, total, page), nil
}

// DonationsByDonor lists donorID's own donations
func (s *Service) DonationsByDonor(ctx context.Context, donorID string, page store.Page) (List[domain.Donation], error) {
	rows, total, err := s.store.ListDonations(ctx, store.DonationFilter{DonorID: donorID}, page)
	if err != nil {
		return List[domain.Donation]{}, err
	}
	return newList(rows, total, page), nil
}

// TotalDonated sums every donation donorID has made
func (s *Service) TotalDonated(ctx context.Context, donorID string) (decimal.Decimal, error) {
	return s.store.SumDonations(ctx, store.DonationFilter{DonorID: donorID})
}
