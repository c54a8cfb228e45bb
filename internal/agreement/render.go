package agreement

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"
)

// dateLayout renders dates the way UK tenancy agreements write them.
const dateLayout = "2 January 2006"

// placeholderRE matches {{variable_name}} tokens. Conditional markers
// ({{#if ...}}, {{/if}}) contain characters outside the class so they never
// match here; {{else}} matches but is not in the variable table and is left
// for the conditional pass.
var placeholderRE = regexp.MustCompile(`\{\{\s*([a-zA-Z0-9_]+)\s*\}\}`)

// variableTable is the fixed wire contract consumed by clause authors. The
// names must remain stable: clause content is free text but may only use
// these tokens for dynamic behavior. Each resolver returns the rendered value
// and whether the underlying field is set; unset fields substitute as empty.
var variableTable = map[string]func(FormData) (string, bool){
	"landlord_name":               stringVar(func(f FormData) *string { return f.LandlordName }),
	"landlord_address":            stringVar(func(f FormData) *string { return f.LandlordAddress }),
	"landlord_email":              stringVar(func(f FormData) *string { return f.LandlordEmail }),
	"landlord_phone":              stringVar(func(f FormData) *string { return f.LandlordPhone }),
	"tenant_name":                 stringVar(func(f FormData) *string { return f.TenantName }),
	"tenant_email":                stringVar(func(f FormData) *string { return f.TenantEmail }),
	"tenant_phone":                stringVar(func(f FormData) *string { return f.TenantPhone }),
	"agency_name":                 stringVar(func(f FormData) *string { return f.AgencyName }),
	"property_address":            stringVar(func(f FormData) *string { return f.PropertyAddress }),
	"property_postcode":           stringVar(func(f FormData) *string { return f.PropertyPostcode }),
	"furnishing_level":            stringVar(func(f FormData) *string { return f.FurnishingLevel }),
	"start_date":                  dateVar(func(f FormData) *time.Time { return f.TenancyStartDate }),
	"end_date":                    dateVar(func(f FormData) *time.Time { return f.TenancyEndDate }),
	"rent_amount":                 amountVar(func(f FormData) *float64 { return f.RentAmount }),
	"rent_payment_day":            intVar(func(f FormData) *int { return f.RentPaymentDay }),
	"rent_payment_method":         stringVar(func(f FormData) *string { return f.RentPaymentMethod }),
	"deposit_amount":              amountVar(func(f FormData) *float64 { return f.DepositAmount }),
	"deposit_weeks":               weeksVar(func(f FormData) *float64 { return f.DepositWeeks }),
	"deposit_scheme":              stringVar(func(f FormData) *string { return f.DepositScheme }),
	"deposit_scheme_reference":    stringVar(func(f FormData) *string { return f.DepositSchemeReference }),
	"deposit_protected_date":      dateVar(func(f FormData) *time.Time { return f.DepositProtectedDate }),
	"max_occupants":               intVar(func(f FormData) *int { return f.MaxOccupants }),
	"additional_occupants":        listVar(func(f FormData) []string { return f.AdditionalOccupants }),
	"pet_details":                 stringVar(func(f FormData) *string { return f.PetDetails }),
	"utilities_list":              stringVar(func(f FormData) *string { return f.UtilitiesList }),
	"council_tax_responsibility":  stringVar(func(f FormData) *string { return f.CouncilTaxResponsibility }),
	"council_tax_band":            stringVar(func(f FormData) *string { return f.CouncilTaxBand }),
	"prs_registration_number":     stringVar(func(f FormData) *string { return f.PRSRegistrationNumber }),
	"ombudsman_scheme":            stringVar(func(f FormData) *string { return f.OmbudsmanScheme }),
	"ombudsman_membership_number": stringVar(func(f FormData) *string { return f.OmbudsmanMembershipNumber }),
	"epc_rating":                  stringVar(func(f FormData) *string { return f.EPCRating }),
	"epc_expiry_date":             dateVar(func(f FormData) *time.Time { return f.EPCExpiryDate }),
	"gas_safety_date":             dateVar(func(f FormData) *time.Time { return f.GasSafetyDate }),
	"eicr_date":                   dateVar(func(f FormData) *time.Time { return f.EICRDate }),
	"special_conditions":          stringVar(func(f FormData) *string { return f.SpecialConditions }),
}

func stringVar(get func(FormData) *string) func(FormData) (string, bool) {
	return func(f FormData) (string, bool) {
		if v := get(f); v != nil {
			return *v, true
		}
		return "", false
	}
}

func dateVar(get func(FormData) *time.Time) func(FormData) (string, bool) {
	return func(f FormData) (string, bool) {
		if v := get(f); v != nil {
			return v.Format(dateLayout), true
		}
		return "", false
	}
}

// amountVar renders money in its minimal decimal form: 1200 not 1200.0.
func amountVar(get func(FormData) *float64) func(FormData) (string, bool) {
	return func(f FormData) (string, bool) {
		if v := get(f); v != nil {
			return strconv.FormatFloat(*v, 'f', -1, 64), true
		}
		return "", false
	}
}

// weeksVar renders deposit weeks to one decimal place.
func weeksVar(get func(FormData) *float64) func(FormData) (string, bool) {
	return func(f FormData) (string, bool) {
		if v := get(f); v != nil {
			return fmt.Sprintf("%.1f", *v), true
		}
		return "", false
	}
}

func intVar(get func(FormData) *int) func(FormData) (string, bool) {
	return func(f FormData) (string, bool) {
		if v := get(f); v != nil {
			return strconv.Itoa(*v), true
		}
		return "", false
	}
}

func listVar(get func(FormData) []string) func(FormData) (string, bool) {
	return func(f FormData) (string, bool) {
		if v := get(f); v != nil {
			return strings.Join(v, ", "), true
		}
		return "", false
	}
}

// conditionalBlock holds the precompiled regexes for one condition name. The
// with-else form is applied before the plain form so {{else}} branches are
// consumed first.
type conditionalBlock struct {
	name     string
	eval     func(FormData) bool
	withElse *regexp.Regexp
	plain    *regexp.Regexp
}

func newConditional(name string, eval func(FormData) bool) conditionalBlock {
	quoted := regexp.QuoteMeta(name)
	return conditionalBlock{
		name:     name,
		eval:     eval,
		withElse: regexp.MustCompile(`(?s)\{\{#if ` + quoted + `\}\}(.*?)\{\{else\}\}(.*?)\{\{/if\}\}`),
		plain:    regexp.MustCompile(`(?s)\{\{#if ` + quoted + `\}\}(.*?)\{\{/if\}\}`),
	}
}

// conditionTable is the fixed condition vocabulary, processed in this order.
// Defaults differ per condition: has_gas defaults true (most UK lets have a
// gas supply), everything else defaults false.
var conditionTable = []conditionalBlock{
	newConditional("pets_allowed", func(f FormData) bool {
		return f.PetsAllowed != nil && *f.PetsAllowed
	}),
	newConditional("has_gas", func(f FormData) bool {
		return f.HasGas == nil || *f.HasGas
	}),
	newConditional("utilities_included", func(f FormData) bool {
		return f.UtilitiesIncluded != nil && *f.UtilitiesIncluded
	}),
	newConditional("has_agency", func(f FormData) bool {
		return f.AgencyName != nil && *f.AgencyName != ""
	}),
	newConditional("has_additional_occupants", func(f FormData) bool {
		return len(f.AdditionalOccupants) > 0
	}),
	newConditional("has_end_date", func(f FormData) bool {
		return f.TenancyEndDate != nil
	}),
	newConditional("has_special_conditions", func(f FormData) bool {
		return f.SpecialConditions != nil && *f.SpecialConditions != ""
	}),
}

// SubstituteVariables renders clause content against a draft snapshot. Two
// passes: variable interpolation, then conditional blocks. Pure string
// transform with no error path - tokens outside the fixed vocabulary and any
// malformed markup are left as literal text, since clause authors may
// reference future variables.
func SubstituteVariables(content string, form FormData) string {
	out := substituteValues(content, form)
	return resolveConditionals(out, form)
}

// substituteValues is pass 1: every {{name}} in the variable table is
// replaced by its stringified value, empty when unset. Unknown names pass
// through untouched.
func substituteValues(content string, form FormData) string {
	return placeholderRE.ReplaceAllStringFunc(content, func(m string) string {
		name := placeholderRE.FindStringSubmatch(m)[1]
		resolve, known := variableTable[name]
		if !known {
			return m
		}
		value, _ := resolve(form)
		return value
	})
}

// resolveConditionals is pass 2: each condition's regexes run across the
// whole document independently, shortest span first, which supports multiple
// independent blocks per condition and nested blocks of different names.
func resolveConditionals(content string, form FormData) string {
	for _, cond := range conditionTable {
		truthy := cond.eval(form)
		content = cond.withElse.ReplaceAllStringFunc(content, func(m string) string {
			groups := cond.withElse.FindStringSubmatch(m)
			if truthy {
				return groups[1]
			}
			return groups[2]
		})
		content = cond.plain.ReplaceAllStringFunc(content, func(m string) string {
			if truthy {
				return cond.plain.FindStringSubmatch(m)[1]
			}
			return ""
		})
	}
	return content
}

// RenderTemplate renders a full template against a draft: every section in
// order, every clause except prohibited ones, titles kept as headings. The
// output is the document body handed to PDF generation.
func RenderTemplate(tpl Template, form FormData) string {
	var b strings.Builder
	b.WriteString(tpl.Name)
	b.WriteString("\n")

	for _, section := range tpl.Sections {
		b.WriteString("\n")
		b.WriteString(section.Title)
		b.WriteString("\n")
		for _, clause := range section.Clauses {
			if clause.IsProhibited {
				continue
			}
			b.WriteString("\n")
			b.WriteString(clause.Title)
			b.WriteString("\n")
			b.WriteString(SubstituteVariables(clause.Content, form))
			b.WriteString("\n")
		}
	}
	return b.String()
}
