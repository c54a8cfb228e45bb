package agreement

import (
	"context"

	"nestly/internal/domain"
	id "nestly/pkg/domain"
)

// Stores are interface-driven to keep the domain logic testable and to allow
// swapping in-memory, PostgreSQL, or cached persistence without rewiring
// business code. Implementations return sentinel errors (pkg/platform/sentinel)
// for infrastructure facts; the service translates them into domain errors.

// TemplateStore provides read access to agreement templates.
type TemplateStore interface {
	FindByID(ctx context.Context, templateID id.TemplateID) (*Template, error)
	// FindDefault returns the active system template with the highest
	// version, sentinel.ErrNotFound when none is active.
	FindDefault(ctx context.Context) (*Template, error)
}

// AgreementStore persists generated agreements. All mutations are
// single-record upserts; there are no cascading writes.
type AgreementStore interface {
	Create(ctx context.Context, rec *GeneratedAgreement) error
	FindByID(ctx context.Context, agreementID id.AgreementID) (*GeneratedAgreement, error)
	Update(ctx context.Context, rec *GeneratedAgreement) error
}

// MatchReader provides read access to the match collaborator: a match record
// with embedded property, renter, and landlord sub-records.
type MatchReader interface {
	FindByID(ctx context.Context, matchID id.MatchID) (*domain.Match, error)
}
