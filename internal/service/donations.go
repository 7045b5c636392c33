package service

import (
	"context"
	"fmt"
	"strings"

	"go.opentelemetry.io/otel/attribute"

	"qrkot/internal/allocation"
	"qrkot/internal/domain"
)

// DonationCreate carries a user's contribution.
type DonationCreate struct {
	FullAmount int64
	Comment    string
}

// CreateDonation records a donation for userID and spreads it over open
// projects, oldest first.
func (s *Service) CreateDonation(ctx context.Context, userID string, in DonationCreate) (donation domain.Donation, err error) {
	ctx, span := s.startSpan(ctx, "CreateDonation")
	defer func() { endSpan(span, err) }()

	userID = strings.TrimSpace(userID)
	if userID == "" {
		return domain.Donation{}, domain.ErrUnauthorized
	}
	if in.FullAmount <= 0 {
		return domain.Donation{}, fmt.Errorf("%w: full_amount must be positive", domain.ErrValidation)
	}

	comment := strings.TrimSpace(in.Comment)

	var touched []domain.Allocatable
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		// Stamp under the allocation lock so creation and close times follow
		// commit order.
		now := s.now()
		donation = domain.Donation{
			Allocatable: domain.NewAllocatable(s.newID(), in.FullAmount, now),
			UserID:      userID,
			Comment:     comment,
		}
		open, err := tx.Projects().ListOpen(ctx)
		if err != nil {
			return fmt.Errorf("load open projects: %w", err)
		}
		donation.Allocatable, touched, err = allocation.Allocate(donation.Allocatable, projectLedgers(open), now)
		if err != nil {
			return err
		}
		if err := tx.Donations().Create(ctx, &donation); err != nil {
			return fmt.Errorf("create donation: %w", err)
		}
		return tx.Projects().SaveAllocations(ctx, touched)
	})
	if err != nil {
		return domain.Donation{}, err
	}

	span.SetAttributes(
		attribute.String("donation.id", donation.ID),
		attribute.Int64("donation.invested", donation.AllocatedAmount),
		attribute.Int("projects.touched", len(touched)),
	)
	s.logger.Info().
		Str("donation_id", donation.ID).
		Str("user_id", userID).
		Int64("full_amount", donation.Amount).
		Int64("invested", donation.AllocatedAmount).
		Int("projects_touched", len(touched)).
		Msg("donation created")
	return donation, nil
}

// ListDonations returns every donation, oldest first.
func (s *Service) ListDonations(ctx context.Context) (donations []domain.Donation, err error) {
	ctx, span := s.startSpan(ctx, "ListDonations")
	defer func() { endSpan(span, err) }()

	return s.store.Donations().List(ctx)
}

// ListUserDonations returns the donations made by userID.
func (s *Service) ListUserDonations(ctx context.Context, userID string) (donations []domain.Donation, err error) {
	ctx, span := s.startSpan(ctx, "ListUserDonations")
	defer func() { endSpan(span, err) }()

	if strings.TrimSpace(userID) == "" {
		return nil, domain.ErrUnauthorized
	}
	return s.store.Donations().ListByUser(ctx, userID)
}

func donationLedgers(items []domain.Donation) []domain.Allocatable {
	out := make([]domain.Allocatable, len(items))
	for i, item := range items {
		out[i] = item.Allocatable
	}
	return out
}
