// Package allocation distributes money between new and open ledger records.
//
// A new project draws from open donations and a new donation feeds open
// projects. Counterparts are served first-in-first-served: every counterpart
// before the last touched one ends up closed, the last touched one may stay
// partially filled and the rest are left alone.
package allocation

import (
	"fmt"
	"time"

	"qrkot/internal/domain"
)

// Allocate matches entity against open counterparts ordered by creation time,
// oldest first. It works on copies: the updated entity is returned together
// with the counterparts whose allocation changed, in input order. now stamps
// ClosedAt on every record saturated by this pass.
//
// Callers must serialize passes over the same pool of open counterparts.
func Allocate(entity domain.Allocatable, open []domain.Allocatable, now time.Time) (domain.Allocatable, []domain.Allocatable, error) {
	if err := validate(entity, open); err != nil {
		return entity, nil, err
	}

	var touched []domain.Allocatable
	remaining := entity.Remaining()
	for _, counterpart := range open {
		if remaining == 0 {
			break
		}
		give := min(remaining, counterpart.Remaining())
		counterpart.AllocatedAmount += give
		entity.AllocatedAmount += give
		remaining -= give
		if counterpart.Remaining() == 0 {
			if err := counterpart.Close(now); err != nil {
				return entity, nil, err
			}
		}
		touched = append(touched, counterpart)
	}

	if remaining == 0 {
		if err := entity.Close(now); err != nil {
			return entity, nil, err
		}
	}
	return entity, touched, nil
}

func validate(entity domain.Allocatable, open []domain.Allocatable) error {
	if entity.Amount <= 0 {
		return fmt.Errorf("%w: %s amount must be positive, got %d", domain.ErrValidation, entity.ID, entity.Amount)
	}
	if entity.AllocatedAmount != 0 || entity.Closed {
		return fmt.Errorf("%w: %s is not a fresh record", domain.ErrValidation, entity.ID)
	}
	for i, c := range open {
		switch {
		case c.Amount <= 0:
			return fmt.Errorf("%w: counterpart %s amount must be positive, got %d", domain.ErrValidation, c.ID, c.Amount)
		case c.Closed:
			return fmt.Errorf("%w: counterpart %s is closed", domain.ErrValidation, c.ID)
		case c.AllocatedAmount < 0 || c.AllocatedAmount >= c.Amount:
			return fmt.Errorf("%w: counterpart %s has allocated %d of %d", domain.ErrValidation, c.ID, c.AllocatedAmount, c.Amount)
		case i > 0 && c.CreatedAt.Before(open[i-1].CreatedAt):
			return fmt.Errorf("%w: counterpart %s is out of creation order", domain.ErrValidation, c.ID)
		}
	}
	return nil
}
