// Package domain defines typed identifiers shared across the marketplace.
//
// Every identifier is a distinct type over uuid.UUID so the compiler rejects
// cross-entity mixups (passing a MatchID where an AgreementID is expected).
// Parsing is the trust boundary: handlers call ParseX on raw strings and
// services only ever see validated IDs.
package domain

import (
	"github.com/google/uuid"

	dErrors "nestly/pkg/domain-errors"
)

type (
	// AgreementID identifies a generated agreement draft.
	AgreementID uuid.UUID
	// TemplateID identifies an agreement template.
	TemplateID uuid.UUID
	// MatchID identifies a tenant/landlord match.
	MatchID uuid.UUID
	// PropertyID identifies a listed property.
	PropertyID uuid.UUID
	// UserID identifies any marketplace user (landlord, renter, agency).
	UserID uuid.UUID
	// TenancyAgreementID identifies a signable tenancy-agreement record.
	TenancyAgreementID uuid.UUID
	// ClauseID identifies a clause within a template section.
	ClauseID uuid.UUID
)

func (id AgreementID) String() string        { return uuid.UUID(id).String() }
func (id TemplateID) String() string         { return uuid.UUID(id).String() }
func (id MatchID) String() string            { return uuid.UUID(id).String() }
func (id PropertyID) String() string         { return uuid.UUID(id).String() }
func (id UserID) String() string             { return uuid.UUID(id).String() }
func (id TenancyAgreementID) String() string { return uuid.UUID(id).String() }
func (id ClauseID) String() string           { return uuid.UUID(id).String() }

func (id AgreementID) IsNil() bool        { return uuid.UUID(id) == uuid.Nil }
func (id TemplateID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id MatchID) IsNil() bool            { return uuid.UUID(id) == uuid.Nil }
func (id PropertyID) IsNil() bool         { return uuid.UUID(id) == uuid.Nil }
func (id UserID) IsNil() bool             { return uuid.UUID(id) == uuid.Nil }
func (id TenancyAgreementID) IsNil() bool { return uuid.UUID(id) == uuid.Nil }

// Text marshaling keeps IDs as canonical UUID strings in JSON and JSONB
// payloads. Defined types do not inherit uuid.UUID's methods, so without
// these the encoder would emit raw byte arrays.

func (id AgreementID) MarshalText() ([]byte, error)        { return []byte(id.String()), nil }
func (id TemplateID) MarshalText() ([]byte, error)         { return []byte(id.String()), nil }
func (id MatchID) MarshalText() ([]byte, error)            { return []byte(id.String()), nil }
func (id PropertyID) MarshalText() ([]byte, error)         { return []byte(id.String()), nil }
func (id UserID) MarshalText() ([]byte, error)             { return []byte(id.String()), nil }
func (id TenancyAgreementID) MarshalText() ([]byte, error) { return []byte(id.String()), nil }
func (id ClauseID) MarshalText() ([]byte, error)           { return []byte(id.String()), nil }

func (id *AgreementID) UnmarshalText(b []byte) error { return unmarshalUUID((*uuid.UUID)(id), b) }
func (id *TemplateID) UnmarshalText(b []byte) error  { return unmarshalUUID((*uuid.UUID)(id), b) }
func (id *MatchID) UnmarshalText(b []byte) error     { return unmarshalUUID((*uuid.UUID)(id), b) }
func (id *PropertyID) UnmarshalText(b []byte) error  { return unmarshalUUID((*uuid.UUID)(id), b) }
func (id *UserID) UnmarshalText(b []byte) error      { return unmarshalUUID((*uuid.UUID)(id), b) }
func (id *TenancyAgreementID) UnmarshalText(b []byte) error {
	return unmarshalUUID((*uuid.UUID)(id), b)
}
func (id *ClauseID) UnmarshalText(b []byte) error { return unmarshalUUID((*uuid.UUID)(id), b) }

func unmarshalUUID(dst *uuid.UUID, b []byte) error {
	parsed, err := uuid.Parse(string(b))
	if err != nil {
		return err
	}
	*dst = parsed
	return nil
}

// parseUUID enforces the shared invariant: IDs must be valid, non-empty,
// non-nil UUIDs.
func parseUUID(raw, kind string) (uuid.UUID, error) {
	if raw == "" {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id is required")
	}
	parsed, err := uuid.Parse(raw)
	if err != nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id is not a valid UUID")
	}
	if parsed == uuid.Nil {
		return uuid.Nil, dErrors.New(dErrors.CodeInvalidInput, kind+" id must not be the nil UUID")
	}
	return parsed, nil
}

func ParseAgreementID(raw string) (AgreementID, error) {
	parsed, err := parseUUID(raw, "agreement")
	return AgreementID(parsed), err
}

func ParseTemplateID(raw string) (TemplateID, error) {
	parsed, err := parseUUID(raw, "template")
	return TemplateID(parsed), err
}

func ParseMatchID(raw string) (MatchID, error) {
	parsed, err := parseUUID(raw, "match")
	return MatchID(parsed), err
}

func ParsePropertyID(raw string) (PropertyID, error) {
	parsed, err := parseUUID(raw, "property")
	return PropertyID(parsed), err
}

func ParseUserID(raw string) (UserID, error) {
	parsed, err := parseUUID(raw, "user")
	return UserID(parsed), err
}

func ParseTenancyAgreementID(raw string) (TenancyAgreementID, error) {
	parsed, err := parseUUID(raw, "tenancy agreement")
	return TenancyAgreementID(parsed), err
}
