package agreement

import (
	"fmt"
)

// Statutory constants under the RRA 2025 regime.
const (
	// annualRentThreshold is the annual rent at or above which the deposit
	// cap rises from five to six weeks' rent.
	annualRentThreshold = 50000.0

	// maxAdvanceRentMonths caps rent payable in advance.
	maxAdvanceRentMonths = 1

	// Rent payment day must fall in [1,28] so the day exists in every month.
	minPaymentDay = 1
	maxPaymentDay = 28
)

// MaxDepositWeeks returns the statutory deposit cap in weeks for the given
// monthly rent. The boundary sits exactly at an annual rent of 50000: at or
// above it the cap is six weeks, below it five.
func MaxDepositWeeks(monthlyRent float64) int {
	if monthlyRent*12 >= annualRentThreshold {
		return 6
	}
	return 5
}

// CalculateMaxDeposit computes the maximum lawful deposit for a monthly rent:
// weekly rent (rent x 12 / 52) times the applicable weeks cap.
func CalculateMaxDeposit(monthlyRent float64) float64 {
	weeklyRent := monthlyRent * 12 / 52
	return weeklyRent * float64(MaxDepositWeeks(monthlyRent))
}

// CheckCompliance validates a draft against the RRA 2025 field requirements.
// Pure and deterministic: no I/O, safe to re-run on every form change. All
// applicable rules run on every call; nothing short-circuits, so the UI always
// shows the complete picture.
//
// Rules that depend on two fields (deposit cap, gas safety) skip silently when
// a required input is entirely absent - absence is not failure, only
// presence-with-violation is. The PRS registration, ombudsman membership, and
// EICR rules are the only unconditionally required ones.
func CheckCompliance(form FormData) ComplianceResult {
	result := ComplianceResult{
		Errors:   []ComplianceError{},
		Warnings: []ComplianceWarning{},
	}

	checkDepositCap(form, &result)
	checkDepositWeeks(form, &result)
	checkAdvanceRent(form, &result)
	checkPaymentDay(form, &result)
	checkEPCFloor(form, &result)
	checkPRSRegistration(form, &result)
	checkOmbudsman(form, &result)
	checkGasSafety(form, &result)
	checkEICR(form, &result)
	addAdvisoryWarnings(form, &result)

	result.IsCompliant = len(result.Errors) == 0
	return result
}

// Rule 1: deposit amount must not exceed the weeks-based cap. Needs both
// deposit and rent; skips silently if either is absent.
func checkDepositCap(form FormData, result *ComplianceResult) {
	if form.DepositAmount == nil || form.RentAmount == nil {
		return
	}
	maxDeposit := CalculateMaxDeposit(*form.RentAmount)
	if *form.DepositAmount > maxDeposit {
		weeks := MaxDepositWeeks(*form.RentAmount)
		result.Errors = append(result.Errors, ComplianceError{
			Field: "deposit_amount",
			Message: fmt.Sprintf("deposit of £%.2f exceeds the maximum of £%.2f (%d weeks' rent)",
				*form.DepositAmount, maxDeposit, weeks),
			LegalReference: "Renters' Rights Act 2025, s.14 (tenancy deposit cap)",
		})
	}
}

// Rule 2: the deposit expressed in weeks must not exceed the cap either.
// Recomputed from annual rent with the same £50,000 threshold.
func checkDepositWeeks(form FormData, result *ComplianceResult) {
	if form.DepositWeeks == nil || form.RentAmount == nil {
		return
	}
	maxWeeks := MaxDepositWeeks(*form.RentAmount)
	if *form.DepositWeeks > float64(maxWeeks) {
		result.Errors = append(result.Errors, ComplianceError{
			Field: "deposit_weeks",
			Message: fmt.Sprintf("deposit of %.1f weeks exceeds the maximum of %d weeks for this rent level",
				*form.DepositWeeks, maxWeeks),
			LegalReference: "Renters' Rights Act 2025, s.14 (tenancy deposit cap)",
		})
	}
}

// Advance rent is capped at one month. Skips silently when unset.
func checkAdvanceRent(form FormData, result *ComplianceResult) {
	if form.AdvanceRentMonths == nil {
		return
	}
	if *form.AdvanceRentMonths > maxAdvanceRentMonths {
		result.Errors = append(result.Errors, ComplianceError{
			Field: "advance_rent_months",
			Message: fmt.Sprintf("%d months' rent in advance exceeds the maximum of %d month",
				*form.AdvanceRentMonths, maxAdvanceRentMonths),
			LegalReference: "Renters' Rights Act 2025, s.17 (rent in advance)",
		})
	}
}

// Rule 3: rent payment day must be an integer in [1,28].
func checkPaymentDay(form FormData, result *ComplianceResult) {
	if form.RentPaymentDay == nil {
		return
	}
	day := *form.RentPaymentDay
	if day < minPaymentDay || day > maxPaymentDay {
		result.Errors = append(result.Errors, ComplianceError{
			Field: "rent_payment_day",
			Message: fmt.Sprintf("rent payment day %d must be between %d and %d so it exists in every month",
				day, minPaymentDay, maxPaymentDay),
			LegalReference: "Renters' Rights Act 2025, s.21 (rent payment terms)",
		})
	}
}

// Rule 4: EPC rating floor. Only A, B, and C pass; D through G fail.
func checkEPCFloor(form FormData, result *ComplianceResult) {
	if form.EPCRating == nil {
		return
	}
	switch *form.EPCRating {
	case "D", "E", "F", "G":
		result.Errors = append(result.Errors, ComplianceError{
			Field: "epc_rating",
			Message: fmt.Sprintf("EPC rating %s is below the minimum standard of C for new tenancies",
				*form.EPCRating),
			LegalReference: "Renters' Rights Act 2025, s.42 (minimum energy efficiency)",
		})
	}
}

// Rule 5: PRS registration is unconditionally required, even if the field was
// never touched.
func checkPRSRegistration(form FormData, result *ComplianceResult) {
	if form.PRSRegistrationNumber == nil || *form.PRSRegistrationNumber == "" {
		result.Errors = append(result.Errors, ComplianceError{
			Field:          "prs_registration_number",
			Message:        "landlord must be registered with the Private Rented Sector database before letting",
			LegalReference: "Renters' Rights Act 2025, s.28 (PRS database registration)",
		})
	}
}

// Rule 6: both ombudsman scheme and membership number are unconditionally
// required. A single error covers the pair so an untouched draft reports one
// ombudsman problem, not two.
func checkOmbudsman(form FormData, result *ComplianceResult) {
	if form.OmbudsmanScheme == nil || *form.OmbudsmanScheme == "" {
		result.Errors = append(result.Errors, ComplianceError{
			Field:          "ombudsman_scheme",
			Message:        "landlord must belong to an approved ombudsman redress scheme",
			LegalReference: "Renters' Rights Act 2025, s.31 (landlord redress schemes)",
		})
		return
	}
	if form.OmbudsmanMembershipNumber == nil || *form.OmbudsmanMembershipNumber == "" {
		result.Errors = append(result.Errors, ComplianceError{
			Field:          "ombudsman_membership_number",
			Message:        "ombudsman scheme membership number is required",
			LegalReference: "Renters' Rights Act 2025, s.31 (landlord redress schemes)",
		})
	}
}

// Rule 7: gas safety certificate is required only when the property has gas.
// An absent has_gas flag skips the rule entirely.
func checkGasSafety(form FormData, result *ComplianceResult) {
	if form.HasGas == nil || !*form.HasGas {
		return
	}
	if form.GasSafetyDate == nil {
		result.Errors = append(result.Errors, ComplianceError{
			Field:          "gas_safety_date",
			Message:        "a current gas safety certificate is required for properties with a gas supply",
			LegalReference: "Gas Safety (Installation and Use) Regulations 1998, reg.36",
		})
	}
}

// Rule 8: an EICR date is unconditionally required.
func checkEICR(form FormData, result *ComplianceResult) {
	if form.EICRDate == nil {
		result.Errors = append(result.Errors, ComplianceError{
			Field:          "eicr_date",
			Message:        "an Electrical Installation Condition Report is required for every tenancy",
			LegalReference: "Electrical Safety Standards in the Private Rented Sector Regulations 2020",
		})
	}
}

// Rule 9: advisory warnings. These never affect IsCompliant.
func addAdvisoryWarnings(form FormData, result *ComplianceResult) {
	if form.InventoryIncluded == nil {
		result.Warnings = append(result.Warnings, ComplianceWarning{
			Field:      "inventory_included",
			Message:    "no inventory decision recorded",
			Suggestion: "record whether an inventory and schedule of condition is provided; it protects both parties in deposit disputes",
		})
	}
	if form.DepositProtectedDate == nil {
		result.Warnings = append(result.Warnings, ComplianceWarning{
			Field:      "deposit_protected_date",
			Message:    "deposit protection date not recorded",
			Suggestion: "protect the deposit in an authorised scheme within 30 days of receipt and record the date",
		})
	}
}
