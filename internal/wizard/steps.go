package wizard

import (
	"nestly/internal/agreement"
)

// Step indexes the fixed ten-step sequence.
type Step int

const (
	StepParties Step = iota
	StepProperty
	StepRentDeposit
	StepOccupants
	StepPets
	StepUtilities
	StepCompliance
	StepSpecialTerms
	StepReview
	StepGenerate

	StepCount = 10
)

var stepTitles = [StepCount]string{
	"Parties",
	"Property",
	"Rent & Deposit",
	"Occupants",
	"Pets",
	"Utilities",
	"Compliance",
	"Special Terms",
	"Review",
	"Generate",
}

func (s Step) Title() string {
	if s < 0 || s >= StepCount {
		return ""
	}
	return stepTitles[s]
}

// FieldError reports a missing or invalid required field on a step. It is
// advisory data for the form, never a Go error.
type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

// ValidateStep runs the required-field validator for one step. Optional steps
// always pass. These gates are about form completeness; statutory compliance
// is the evaluator's job and is checked separately.
func ValidateStep(step Step, form agreement.FormData) []FieldError {
	switch step {
	case StepParties:
		return validateParties(form)
	case StepProperty:
		return validateProperty(form)
	case StepRentDeposit:
		return validateRentDeposit(form)
	case StepPets:
		return validatePets(form)
	case StepUtilities:
		return validateUtilities(form)
	case StepCompliance:
		return validateCompliance(form)
	default:
		// Occupants, Special Terms, Review, and Generate have no required
		// fields.
		return nil
	}
}

func validateParties(form agreement.FormData) []FieldError {
	var errs []FieldError
	if isBlank(form.LandlordName) {
		errs = append(errs, FieldError{Field: "landlord_name", Message: "landlord name is required"})
	}
	if isBlank(form.LandlordAddress) {
		errs = append(errs, FieldError{Field: "landlord_address", Message: "landlord address is required"})
	}
	if isBlank(form.TenantName) {
		errs = append(errs, FieldError{Field: "tenant_name", Message: "tenant name is required"})
	}
	return errs
}

func validateProperty(form agreement.FormData) []FieldError {
	var errs []FieldError
	if isBlank(form.PropertyAddress) {
		errs = append(errs, FieldError{Field: "property_address", Message: "property address is required"})
	}
	if form.TenancyStartDate == nil {
		errs = append(errs, FieldError{Field: "tenancy_start_date", Message: "tenancy start date is required"})
	}
	if isBlank(form.FurnishingLevel) {
		errs = append(errs, FieldError{Field: "furnishing_level", Message: "furnishing level is required"})
	}
	return errs
}

func validateRentDeposit(form agreement.FormData) []FieldError {
	var errs []FieldError
	if form.RentAmount == nil || *form.RentAmount <= 0 {
		errs = append(errs, FieldError{Field: "rent_amount", Message: "rent amount must be greater than zero"})
	}
	if form.DepositAmount == nil || *form.DepositAmount <= 0 {
		errs = append(errs, FieldError{Field: "deposit_amount", Message: "deposit amount must be greater than zero"})
	}
	if isBlank(form.DepositScheme) {
		errs = append(errs, FieldError{Field: "deposit_scheme", Message: "a deposit protection scheme must be selected"})
	}
	return errs
}

func validatePets(form agreement.FormData) []FieldError {
	if form.PetsAllowed == nil {
		return []FieldError{{Field: "pets_allowed", Message: "a decision on pets is required"}}
	}
	if *form.PetsAllowed && isBlank(form.PetDetails) {
		return []FieldError{{Field: "pet_details", Message: "pet details are required when pets are allowed"}}
	}
	return nil
}

func validateUtilities(form agreement.FormData) []FieldError {
	if isBlank(form.CouncilTaxResponsibility) {
		return []FieldError{{Field: "council_tax_responsibility", Message: "a council tax responsibility decision is required"}}
	}
	return nil
}

func validateCompliance(form agreement.FormData) []FieldError {
	var errs []FieldError
	if isBlank(form.PRSRegistrationNumber) {
		errs = append(errs, FieldError{Field: "prs_registration_number", Message: "PRS registration number is required"})
	}
	if isBlank(form.OmbudsmanScheme) {
		errs = append(errs, FieldError{Field: "ombudsman_scheme", Message: "ombudsman scheme is required"})
	}
	if isBlank(form.OmbudsmanMembershipNumber) {
		errs = append(errs, FieldError{Field: "ombudsman_membership_number", Message: "ombudsman membership number is required"})
	}
	if isBlank(form.EPCRating) {
		errs = append(errs, FieldError{Field: "epc_rating", Message: "EPC rating is required"})
	}
	if form.EPCExpiryDate == nil {
		errs = append(errs, FieldError{Field: "epc_expiry_date", Message: "EPC expiry date is required"})
	}
	// Required unless the landlord has said the property has no gas supply.
	if (form.HasGas == nil || *form.HasGas) && form.GasSafetyDate == nil {
		errs = append(errs, FieldError{Field: "gas_safety_date", Message: "gas safety certificate date is required"})
	}
	if form.EICRDate == nil {
		errs = append(errs, FieldError{Field: "eicr_date", Message: "EICR date is required"})
	}
	return errs
}

func isBlank(s *string) bool {
	return s == nil || *s == ""
}
