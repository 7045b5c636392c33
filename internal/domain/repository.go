package domain

import "context"

// ProjectRepository handles charity project persistence.
type ProjectRepository interface {
	List(ctx context.Context) ([]Project, error)
	GetByID(ctx context.Context, id string) (*Project, error)
	// GetByName returns ErrNotFound when no project carries the name.
	GetByName(ctx context.Context, name string) (*Project, error)
	// ListOpen returns projects that are not fully invested, oldest first.
	ListOpen(ctx context.Context) ([]Project, error)
	Create(ctx context.Context, project *Project) error
	Update(ctx context.Context, project *Project) error
	// SaveAllocations writes back allocated amounts and close markers.
	SaveAllocations(ctx context.Context, items []Allocatable) error
	Delete(ctx context.Context, id string) error
}

// DonationRepository handles donation persistence.
type DonationRepository interface {
	List(ctx context.Context) ([]Donation, error)
	ListByUser(ctx context.Context, userID string) ([]Donation, error)
	// ListOpen returns donations that are not fully spent, oldest first.
	ListOpen(ctx context.Context) ([]Donation, error)
	Create(ctx context.Context, donation *Donation) error
	SaveAllocations(ctx context.Context, items []Allocatable) error
}

// Tx groups the repositories bound to one storage transaction.
type Tx interface {
	Projects() ProjectRepository
	Donations() DonationRepository
}

// Store runs work against the backing database. WithinTx commits when fn
// returns nil and rolls back otherwise. Calls to WithinTx that read open
// records for allocation are serialized by the store.
type Store interface {
	WithinTx(ctx context.Context, fn func(ctx context.Context, tx Tx) error) error
	Projects() ProjectRepository
	Donations() DonationRepository
}
