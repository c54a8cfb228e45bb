package agreement

import (
	"time"

	id "nestly/pkg/domain"
)

// FormData is the mutable draft of a tenancy agreement. Every field is
// optional: the wizard enforces presence step by step, and the record must be
// valid for partial persistence at any time so auto-save can tolerate
// incompleteness. Pointer fields distinguish "never set" from zero values,
// which is what makes the per-field merge in Merge well defined.
type FormData struct {
	// Parties
	LandlordName    *string `json:"landlord_name,omitempty"`
	LandlordAddress *string `json:"landlord_address,omitempty"`
	LandlordEmail   *string `json:"landlord_email,omitempty"`
	LandlordPhone   *string `json:"landlord_phone,omitempty"`
	TenantName      *string `json:"tenant_name,omitempty"`
	TenantEmail     *string `json:"tenant_email,omitempty"`
	TenantPhone     *string `json:"tenant_phone,omitempty"`
	AgencyName      *string `json:"agency_name,omitempty"`

	// Property
	PropertyAddress  *string    `json:"property_address,omitempty"`
	PropertyPostcode *string    `json:"property_postcode,omitempty"`
	FurnishingLevel  *string    `json:"furnishing_level,omitempty"`
	TenancyStartDate *time.Time `json:"tenancy_start_date,omitempty"`
	TenancyEndDate   *time.Time `json:"tenancy_end_date,omitempty"`

	// Financial terms
	RentAmount             *float64   `json:"rent_amount,omitempty"`
	RentPaymentDay         *int       `json:"rent_payment_day,omitempty"`
	RentPaymentMethod      *string    `json:"rent_payment_method,omitempty"`
	AdvanceRentMonths      *int       `json:"advance_rent_months,omitempty"`
	DepositAmount          *float64   `json:"deposit_amount,omitempty"`
	DepositWeeks           *float64   `json:"deposit_weeks,omitempty"`
	DepositScheme          *string    `json:"deposit_scheme,omitempty"`
	DepositSchemeReference *string    `json:"deposit_scheme_reference,omitempty"`
	DepositProtectedDate   *time.Time `json:"deposit_protected_date,omitempty"`

	// Occupancy
	MaxOccupants        *int     `json:"max_occupants,omitempty"`
	AdditionalOccupants []string `json:"additional_occupants,omitempty"`

	// Pets
	PetsAllowed *bool   `json:"pets_allowed,omitempty"`
	PetDetails  *string `json:"pet_details,omitempty"`

	// Utilities
	UtilitiesIncluded        *bool   `json:"utilities_included,omitempty"`
	UtilitiesList            *string `json:"utilities_list,omitempty"`
	CouncilTaxResponsibility *string `json:"council_tax_responsibility,omitempty"`
	CouncilTaxBand           *string `json:"council_tax_band,omitempty"`

	// Statutory compliance
	PRSRegistrationNumber     *string    `json:"prs_registration_number,omitempty"`
	OmbudsmanScheme           *string    `json:"ombudsman_scheme,omitempty"`
	OmbudsmanMembershipNumber *string    `json:"ombudsman_membership_number,omitempty"`
	EPCRating                 *string    `json:"epc_rating,omitempty"`
	EPCExpiryDate             *time.Time `json:"epc_expiry_date,omitempty"`
	HasGas                    *bool      `json:"has_gas,omitempty"`
	GasSafetyDate             *time.Time `json:"gas_safety_date,omitempty"`
	EICRDate                  *time.Time `json:"eicr_date,omitempty"`
	SmokeAlarmsConfirmed      *bool      `json:"smoke_alarms_confirmed,omitempty"`
	InventoryIncluded         *bool      `json:"inventory_included,omitempty"`

	// Free text
	SpecialConditions *string `json:"special_conditions,omitempty"`
}

// Merge overlays partial onto f, field by field. Set fields in partial win;
// unset fields keep their current value. Calling Merge repeatedly with
// overlapping partials is idempotent per field (last write wins), which is
// what lets a late-arriving auto-save race a step-transition save safely.
func (f *FormData) Merge(partial FormData) {
	if partial.LandlordName != nil {
		f.LandlordName = partial.LandlordName
	}
	if partial.LandlordAddress != nil {
		f.LandlordAddress = partial.LandlordAddress
	}
	if partial.LandlordEmail != nil {
		f.LandlordEmail = partial.LandlordEmail
	}
	if partial.LandlordPhone != nil {
		f.LandlordPhone = partial.LandlordPhone
	}
	if partial.TenantName != nil {
		f.TenantName = partial.TenantName
	}
	if partial.TenantEmail != nil {
		f.TenantEmail = partial.TenantEmail
	}
	if partial.TenantPhone != nil {
		f.TenantPhone = partial.TenantPhone
	}
	if partial.AgencyName != nil {
		f.AgencyName = partial.AgencyName
	}
	if partial.PropertyAddress != nil {
		f.PropertyAddress = partial.PropertyAddress
	}
	if partial.PropertyPostcode != nil {
		f.PropertyPostcode = partial.PropertyPostcode
	}
	if partial.FurnishingLevel != nil {
		f.FurnishingLevel = partial.FurnishingLevel
	}
	if partial.TenancyStartDate != nil {
		f.TenancyStartDate = partial.TenancyStartDate
	}
	if partial.TenancyEndDate != nil {
		f.TenancyEndDate = partial.TenancyEndDate
	}
	if partial.RentAmount != nil {
		f.RentAmount = partial.RentAmount
	}
	if partial.RentPaymentDay != nil {
		f.RentPaymentDay = partial.RentPaymentDay
	}
	if partial.RentPaymentMethod != nil {
		f.RentPaymentMethod = partial.RentPaymentMethod
	}
	if partial.AdvanceRentMonths != nil {
		f.AdvanceRentMonths = partial.AdvanceRentMonths
	}
	if partial.DepositAmount != nil {
		f.DepositAmount = partial.DepositAmount
	}
	if partial.DepositWeeks != nil {
		f.DepositWeeks = partial.DepositWeeks
	}
	if partial.DepositScheme != nil {
		f.DepositScheme = partial.DepositScheme
	}
	if partial.DepositSchemeReference != nil {
		f.DepositSchemeReference = partial.DepositSchemeReference
	}
	if partial.DepositProtectedDate != nil {
		f.DepositProtectedDate = partial.DepositProtectedDate
	}
	if partial.MaxOccupants != nil {
		f.MaxOccupants = partial.MaxOccupants
	}
	if partial.AdditionalOccupants != nil {
		f.AdditionalOccupants = partial.AdditionalOccupants
	}
	if partial.PetsAllowed != nil {
		f.PetsAllowed = partial.PetsAllowed
	}
	if partial.PetDetails != nil {
		f.PetDetails = partial.PetDetails
	}
	if partial.UtilitiesIncluded != nil {
		f.UtilitiesIncluded = partial.UtilitiesIncluded
	}
	if partial.UtilitiesList != nil {
		f.UtilitiesList = partial.UtilitiesList
	}
	if partial.CouncilTaxResponsibility != nil {
		f.CouncilTaxResponsibility = partial.CouncilTaxResponsibility
	}
	if partial.CouncilTaxBand != nil {
		f.CouncilTaxBand = partial.CouncilTaxBand
	}
	if partial.PRSRegistrationNumber != nil {
		f.PRSRegistrationNumber = partial.PRSRegistrationNumber
	}
	if partial.OmbudsmanScheme != nil {
		f.OmbudsmanScheme = partial.OmbudsmanScheme
	}
	if partial.OmbudsmanMembershipNumber != nil {
		f.OmbudsmanMembershipNumber = partial.OmbudsmanMembershipNumber
	}
	if partial.EPCRating != nil {
		f.EPCRating = partial.EPCRating
	}
	if partial.EPCExpiryDate != nil {
		f.EPCExpiryDate = partial.EPCExpiryDate
	}
	if partial.HasGas != nil {
		f.HasGas = partial.HasGas
	}
	if partial.GasSafetyDate != nil {
		f.GasSafetyDate = partial.GasSafetyDate
	}
	if partial.EICRDate != nil {
		f.EICRDate = partial.EICRDate
	}
	if partial.SmokeAlarmsConfirmed != nil {
		f.SmokeAlarmsConfirmed = partial.SmokeAlarmsConfirmed
	}
	if partial.InventoryIncluded != nil {
		f.InventoryIncluded = partial.InventoryIncluded
	}
	if partial.SpecialConditions != nil {
		f.SpecialConditions = partial.SpecialConditions
	}
}

// Status tracks where a generated agreement sits in its lifecycle.
type Status string

const (
	StatusDraft          Status = "draft"
	StatusGenerated      Status = "generated"
	StatusSentForSigning Status = "sent_for_signing"
	StatusSigned         Status = "signed"
	StatusCancelled      Status = "cancelled"
)

// CanTransitionTo reports whether the status machine allows the move.
// Re-generating from generated is allowed so a landlord can fix a typo and
// produce a fresh PDF before sending.
func (s Status) CanTransitionTo(next Status) bool {
	switch s {
	case StatusDraft:
		return next == StatusGenerated || next == StatusCancelled
	case StatusGenerated:
		return next == StatusGenerated || next == StatusSentForSigning || next == StatusCancelled
	case StatusSentForSigning:
		return next == StatusSigned || next == StatusCancelled
	default:
		return false
	}
}

// GeneratedAgreement is the identity-bearing draft record. It is owned by the
// creating party until signing begins; the counter-party gains read access
// once sent for signing, enforced outside this engine.
type GeneratedAgreement struct {
	ID                 id.AgreementID         `json:"id"`
	TemplateID         id.TemplateID          `json:"template_id"`
	MatchID            id.MatchID             `json:"match_id"`
	LandlordID         id.UserID              `json:"landlord_id"`
	AgencyID           *id.UserID             `json:"agency_id,omitempty"`
	RenterID           id.UserID              `json:"renter_id"`
	PropertyID         id.PropertyID          `json:"property_id"`
	Data               FormData               `json:"agreement_data"`
	Status             Status                 `json:"status"`
	GeneratedPDFPath   *string                `json:"generated_pdf_path,omitempty"`
	TenancyAgreementID *id.TenancyAgreementID `json:"tenancy_agreement_id,omitempty"`
	GeneratedAt        *time.Time             `json:"generated_at,omitempty"`
	CreatedAt          time.Time              `json:"created_at"`
	UpdatedAt          time.Time              `json:"updated_at"`
	CreatedBy          id.UserID              `json:"created_by"`
}

// ClauseCategory groups clauses for display and reporting.
type ClauseCategory string

const (
	CategoryParties    ClauseCategory = "parties"
	CategoryRent       ClauseCategory = "rent"
	CategoryDeposit    ClauseCategory = "deposit"
	CategoryOccupancy  ClauseCategory = "occupancy"
	CategoryPets       ClauseCategory = "pets"
	CategoryUtilities  ClauseCategory = "utilities"
	CategoryCompliance ClauseCategory = "compliance"
	CategoryGeneral    ClauseCategory = "general"
)

// Clause is a titled block of template text. Content may use the fixed
// variable and condition vocabulary understood by SubstituteVariables.
type Clause struct {
	ID           id.ClauseID    `json:"id"`
	Title        string         `json:"title"`
	Content      string         `json:"content"`
	IsMandatory  bool           `json:"is_mandatory"`
	IsProhibited bool           `json:"is_prohibited"`
	RRAReference string         `json:"rra_reference,omitempty"`
	Category     ClauseCategory `json:"category"`
}

// Section holds an ordered list of clauses.
type Section struct {
	Title   string   `json:"title"`
	Clauses []Clause `json:"clauses"`
}

// Template is a versioned agreement template. Exactly one active system
// template represents the current default at any time, selected by highest
// version among active system templates.
type Template struct {
	ID               id.TemplateID `json:"id"`
	Name             string        `json:"name"`
	Version          int           `json:"version"`
	Sections         []Section     `json:"sections"`
	IsSystemTemplate bool          `json:"is_system_template"`
	IsActive         bool          `json:"is_active"`
	CreatedAt        time.Time     `json:"created_at"`
}

// ComplianceError blocks agreement generation. LegalReference cites the
// statute for display; it is documentation, not control flow.
type ComplianceError struct {
	Field          string `json:"field"`
	Message        string `json:"message"`
	LegalReference string `json:"legal_reference"`
}

// ComplianceWarning is advisory. Warnings never affect IsCompliant.
type ComplianceWarning struct {
	Field      string `json:"field"`
	Message    string `json:"message"`
	Suggestion string `json:"suggestion"`
}

// ComplianceResult is the evaluator's verdict over a draft. It is a value,
// never an error: the wizard renders it and gates forward navigation on it.
type ComplianceResult struct {
	IsCompliant bool                `json:"is_compliant"`
	Errors      []ComplianceError   `json:"errors"`
	Warnings    []ComplianceWarning `json:"warnings"`
}
