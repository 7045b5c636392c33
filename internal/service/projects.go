package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"

	"go.opentelemetry.io/otel/attribute"

	"qrkot/internal/allocation"
	"qrkot/internal/domain"
)

// ProjectCreate carries the fields required to open a project.
type ProjectCreate struct {
	Name        string
	Description string
	FullAmount  int64
}

// ProjectUpdate carries optional edits; nil fields are left unchanged.
type ProjectUpdate struct {
	Name        *string
	Description *string
	FullAmount  *int64
}

// ListProjects returns every project, oldest first.
func (s *Service) ListProjects(ctx context.Context) (projects []domain.Project, err error) {
	ctx, span := s.startSpan(ctx, "ListProjects")
	defer func() { endSpan(span, err) }()

	return s.store.Projects().List(ctx)
}

// CreateProject opens a project and immediately funds it from donations
// that still hold unspent money.
func (s *Service) CreateProject(ctx context.Context, in ProjectCreate) (project domain.Project, err error) {
	ctx, span := s.startSpan(ctx, "CreateProject")
	defer func() { endSpan(span, err) }()

	name, err := normalizeName(in.Name)
	if err != nil {
		return domain.Project{}, err
	}
	description := strings.TrimSpace(in.Description)
	if description == "" {
		return domain.Project{}, fmt.Errorf("%w: description is required", domain.ErrValidation)
	}
	if in.FullAmount <= 0 {
		return domain.Project{}, fmt.Errorf("%w: full_amount must be positive", domain.ErrValidation)
	}

	var touched []domain.Allocatable
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		now := s.now()
		project = domain.Project{
			Allocatable: domain.NewAllocatable(s.newID(), in.FullAmount, now),
			Name:        name,
			Description: description,
		}
		if err := ensureNameFree(ctx, tx, name, ""); err != nil {
			return err
		}
		open, err := tx.Donations().ListOpen(ctx)
		if err != nil {
			return fmt.Errorf("load open donations: %w", err)
		}
		project.Allocatable, touched, err = allocation.Allocate(project.Allocatable, donationLedgers(open), now)
		if err != nil {
			return err
		}
		if err := tx.Projects().Create(ctx, &project); err != nil {
			return fmt.Errorf("create project: %w", err)
		}
		return tx.Donations().SaveAllocations(ctx, touched)
	})
	if err != nil {
		return domain.Project{}, err
	}

	span.SetAttributes(
		attribute.String("project.id", project.ID),
		attribute.Int64("project.invested", project.AllocatedAmount),
		attribute.Int("donations.touched", len(touched)),
	)
	s.logger.Info().
		Str("project_id", project.ID).
		Int64("full_amount", project.Amount).
		Int64("invested", project.AllocatedAmount).
		Int("donations_touched", len(touched)).
		Msg("project created")
	return project, nil
}

// UpdateProject edits an open project. Raising the full amount widens the
// headroom for future donations; it does not pull from open donations.
func (s *Service) UpdateProject(ctx context.Context, id string, in ProjectUpdate) (project domain.Project, err error) {
	ctx, span := s.startSpan(ctx, "UpdateProject")
	defer func() { endSpan(span, err) }()

	if !validID(id) {
		return domain.Project{}, domain.ErrNotFound
	}
	var name, description string
	if in.Name != nil {
		if name, err = normalizeName(*in.Name); err != nil {
			return domain.Project{}, err
		}
	}
	if in.Description != nil {
		description = strings.TrimSpace(*in.Description)
		if description == "" {
			return domain.Project{}, fmt.Errorf("%w: description cannot be empty", domain.ErrValidation)
		}
	}
	if in.FullAmount != nil && *in.FullAmount <= 0 {
		return domain.Project{}, fmt.Errorf("%w: full_amount must be positive", domain.ErrValidation)
	}

	err = s.store.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		current, err := tx.Projects().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if current.Closed {
			return domain.ErrProjectClosed
		}
		if in.Name != nil && name != current.Name {
			if err := ensureNameFree(ctx, tx, name, current.ID); err != nil {
				return err
			}
			current.Name = name
		}
		if in.Description != nil {
			current.Description = description
		}
		if in.FullAmount != nil {
			if *in.FullAmount < current.AllocatedAmount {
				return fmt.Errorf("%w: invested %d", domain.ErrAmountBelowInvested, current.AllocatedAmount)
			}
			current.Amount = *in.FullAmount
			if current.Remaining() == 0 {
				if err := current.Close(s.now()); err != nil {
					return err
				}
			}
		}
		if err := tx.Projects().Update(ctx, current); err != nil {
			return fmt.Errorf("update project: %w", err)
		}
		project = *current
		return nil
	})
	if err != nil {
		return domain.Project{}, err
	}

	s.logger.Info().Str("project_id", project.ID).Bool("closed", project.Closed).Msg("project updated")
	return project, nil
}

// DeleteProject removes a project that has not received any money and
// returns its last state.
func (s *Service) DeleteProject(ctx context.Context, id string) (project domain.Project, err error) {
	ctx, span := s.startSpan(ctx, "DeleteProject")
	defer func() { endSpan(span, err) }()

	if !validID(id) {
		return domain.Project{}, domain.ErrNotFound
	}
	err = s.store.WithinTx(ctx, func(ctx context.Context, tx domain.Tx) error {
		current, err := tx.Projects().GetByID(ctx, id)
		if err != nil {
			return err
		}
		if current.AllocatedAmount > 0 {
			return domain.ErrAlreadyInvested
		}
		if err := tx.Projects().Delete(ctx, id); err != nil {
			return fmt.Errorf("delete project: %w", err)
		}
		project = *current
		return nil
	})
	if err != nil {
		return domain.Project{}, err
	}

	s.logger.Info().Str("project_id", project.ID).Msg("project deleted")
	return project, nil
}

func normalizeName(raw string) (string, error) {
	name := strings.TrimSpace(raw)
	if name == "" {
		return "", fmt.Errorf("%w: name is required", domain.ErrValidation)
	}
	if utf8.RuneCountInString(name) > maxNameLength {
		return "", fmt.Errorf("%w: name must be at most %d characters", domain.ErrValidation, maxNameLength)
	}
	return name, nil
}

func ensureNameFree(ctx context.Context, tx domain.Tx, name, selfID string) error {
	existing, err := tx.Projects().GetByName(ctx, name)
	switch {
	case errors.Is(err, domain.ErrNotFound):
		return nil
	case err != nil:
		return fmt.Errorf("check project name: %w", err)
	case existing.ID != selfID:
		return domain.ErrDuplicateName
	}
	return nil
}

func projectLedgers(items []domain.Project) []domain.Allocatable {
	out := make([]domain.Allocatable, len(items))
	for i, item := range items {
		out[i] = item.Allocatable
	}
	return out
}
