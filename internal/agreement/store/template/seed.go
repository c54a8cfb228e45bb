package template

import (
	"context"
	"time"

	"github.com/google/uuid"

	"nestly/internal/agreement"
	id "nestly/pkg/domain"
)

// defaultTemplateID is fixed so re-seeding an environment is idempotent.
var defaultTemplateID = id.TemplateID(uuid.MustParse("5b5c1a52-33f7-4b6e-9a57-0f4d2a7c9e01"))

// DefaultTemplate builds the built-in assured tenancy template. Clause
// content uses the substitution vocabulary; prohibited clauses document terms
// the statute bans and are never rendered.
func DefaultTemplate() *agreement.Template {
	return &agreement.Template{
		ID:               defaultTemplateID,
		Name:             "Assured Tenancy Agreement (England)",
		Version:          1,
		IsSystemTemplate: true,
		IsActive:         true,
		CreatedAt:        time.Date(2025, time.June, 1, 0, 0, 0, 0, time.UTC),
		Sections: []agreement.Section{
			{
				Title: "1. Parties and Property",
				Clauses: []agreement.Clause{
					{
						ID:          id.ClauseID(uuid.New()),
						Title:       "Parties",
						Content:     "This agreement is made between {{landlord_name}} of {{landlord_address}} (the Landlord){{#if has_agency}}, acting through {{agency_name}} (the Agent),{{/if}} and {{tenant_name}} (the Tenant).",
						IsMandatory: true,
						Category:    agreement.CategoryParties,
					},
					{
						ID:          id.ClauseID(uuid.New()),
						Title:       "Property",
						Content:     "The Landlord lets the premises at {{property_address}}, {{property_postcode}} (the Property), let {{furnishing_level}}.",
						IsMandatory: true,
						Category:    agreement.CategoryParties,
					},
					{
						ID:           id.ClauseID(uuid.New()),
						Title:        "Term",
						Content:      "The tenancy is an assured periodic tenancy beginning on {{start_date}}.{{#if has_end_date}} The parties anticipate the tenancy ending on or around {{end_date}}, without prejudice to the Tenant's statutory right to remain on a periodic basis.{{/if}}",
						IsMandatory:  true,
						RRAReference: "Renters' Rights Act 2025, s.1",
						Category:     agreement.CategoryGeneral,
					},
					{
						ID:          id.ClauseID(uuid.New()),
						Title:       "Additional occupants",
						Content:     "{{#if has_additional_occupants}}The following persons may also occupy the Property: {{additional_occupants}}.{{else}}No persons other than the Tenant may reside at the Property without the Landlord's written consent.{{/if}}",
						IsMandatory: false,
						Category:    agreement.CategoryOccupancy,
					},
				},
			},
			{
				Title: "2. Rent",
				Clauses: []agreement.Clause{
					{
						ID:          id.ClauseID(uuid.New()),
						Title:       "Rent",
						Content:     "The Tenant shall pay rent of £{{rent_amount}} per calendar month, payable in advance on day {{rent_payment_day}} of each month by {{rent_payment_method}}.",
						IsMandatory: true,
						Category:    agreement.CategoryRent,
					},
					{
						ID:           id.ClauseID(uuid.New()),
						Title:        "Advance rent",
						Content:      "The Landlord shall not require more than one month's rent in advance.",
						IsMandatory:  true,
						RRAReference: "Renters' Rights Act 2025, s.8",
						Category:     agreement.CategoryRent,
					},
					{
						ID:           id.ClauseID(uuid.New()),
						Title:        "Rent review",
						Content:      "Rent may be increased no more than once per year by notice under section 13 of the Housing Act 1988. The Tenant may challenge a proposed increase before the First-tier Tribunal.",
						IsMandatory:  true,
						RRAReference: "Renters' Rights Act 2025, s.7",
						Category:     agreement.CategoryRent,
					},
					{
						ID:           id.ClauseID(uuid.New()),
						Title:        "Rent bidding",
						Content:      "The rent payable shall exceed the advertised rent for the Property.",
						IsProhibited: true,
						RRAReference: "Renters' Rights Act 2025, s.9",
						Category:     agreement.CategoryRent,
					},
				},
			},
			{
				Title: "3. Deposit",
				Clauses: []agreement.Clause{
					{
						ID:           id.ClauseID(uuid.New()),
						Title:        "Deposit",
						Content:      "The Tenant shall pay a deposit of £{{deposit_amount}} ({{deposit_weeks}} weeks' rent), to be protected with {{deposit_scheme}} (reference {{deposit_scheme_reference}}) within 30 days of receipt.{{#if has_special_conditions}} See also the special conditions below.{{/if}}",
						IsMandatory:  true,
						RRAReference: "Tenant Fees Act 2019, sch.1",
						Category:     agreement.CategoryDeposit,
					},
					{
						ID:          id.ClauseID(uuid.New()),
						Title:       "Deposit protection",
						Content:     "The deposit was protected on {{deposit_protected_date}} and the prescribed information served on the Tenant.",
						IsMandatory: false,
						Category:    agreement.CategoryDeposit,
					},
				},
			},
			{
				Title: "4. Pets",
				Clauses: []agreement.Clause{
					{
						ID:           id.ClauseID(uuid.New()),
						Title:        "Pets",
						Content:      "{{#if pets_allowed}}The Tenant may keep the following pets at the Property: {{pet_details}}. The Landlord may require the Tenant to hold insurance covering pet damage.{{else}}The Tenant shall not keep pets at the Property without the Landlord's consent. The Landlord shall not unreasonably refuse a written request to keep a pet.{{/if}}",
						IsMandatory:  true,
						RRAReference: "Renters' Rights Act 2025, s.12",
						Category:     agreement.CategoryPets,
					},
				},
			},
			{
				Title: "5. Utilities and Council Tax",
				Clauses: []agreement.Clause{
					{
						ID:          id.ClauseID(uuid.New()),
						Title:       "Utilities",
						Content:     "{{#if utilities_included}}The rent includes the following utilities: {{utilities_list}}.{{else}}The Tenant is responsible for all utility charges at the Property.{{/if}}",
						IsMandatory: true,
						Category:    agreement.CategoryUtilities,
					},
					{
						ID:          id.ClauseID(uuid.New()),
						Title:       "Council tax",
						Content:     "Council tax (band {{council_tax_band}}) is the responsibility of the {{council_tax_responsibility}}.",
						IsMandatory: true,
						Category:    agreement.CategoryUtilities,
					},
				},
			},
			{
				Title: "6. Statutory Compliance",
				Clauses: []agreement.Clause{
					{
						ID:           id.ClauseID(uuid.New()),
						Title:        "Landlord registration",
						Content:      "The Landlord is registered with the Private Rented Sector Database under number {{prs_registration_number}}.",
						IsMandatory:  true,
						RRAReference: "Renters' Rights Act 2025, s.16",
						Category:     agreement.CategoryCompliance,
					},
					{
						ID:           id.ClauseID(uuid.New()),
						Title:        "Ombudsman membership",
						Content:      "The Landlord is a member of {{ombudsman_scheme}} (membership {{ombudsman_membership_number}}). The Tenant may refer complaints to the scheme free of charge.",
						IsMandatory:  true,
						RRAReference: "Renters' Rights Act 2025, s.15",
						Category:     agreement.CategoryCompliance,
					},
					{
						ID:          id.ClauseID(uuid.New()),
						Title:       "Energy performance",
						Content:     "The Property has an Energy Performance Certificate rating of {{epc_rating}}, valid until {{epc_expiry_date}}.",
						IsMandatory: true,
						Category:    agreement.CategoryCompliance,
					},
					{
						ID:           id.ClauseID(uuid.New()),
						Title:        "Gas safety",
						Content:      "{{#if has_gas}}A gas safety check was carried out on {{gas_safety_date}} and the record provided to the Tenant.{{/if}}",
						IsMandatory:  false,
						RRAReference: "Gas Safety (Installation and Use) Regulations 1998",
						Category:     agreement.CategoryCompliance,
					},
					{
						ID:           id.ClauseID(uuid.New()),
						Title:        "Electrical safety",
						Content:      "An Electrical Installation Condition Report dated {{eicr_date}} has been provided to the Tenant.",
						IsMandatory:  true,
						RRAReference: "Electrical Safety Standards in the Private Rented Sector (England) Regulations 2020",
						Category:     agreement.CategoryCompliance,
					},
					{
						ID:           id.ClauseID(uuid.New()),
						Title:        "No-fault eviction",
						Content:      "The Landlord may recover possession on two months' notice without grounds.",
						IsProhibited: true,
						RRAReference: "Renters' Rights Act 2025, s.2",
						Category:     agreement.CategoryCompliance,
					},
				},
			},
			{
				Title: "7. General",
				Clauses: []agreement.Clause{
					{
						ID:          id.ClauseID(uuid.New()),
						Title:       "Occupancy limit",
						Content:     "No more than {{max_occupants}} persons may occupy the Property.",
						IsMandatory: false,
						Category:    agreement.CategoryOccupancy,
					},
					{
						ID:          id.ClauseID(uuid.New()),
						Title:       "Special conditions",
						Content:     "{{#if has_special_conditions}}{{special_conditions}}{{else}}None.{{/if}}",
						IsMandatory: false,
						Category:    agreement.CategoryGeneral,
					},
				},
			},
		},
	}
}

// Seed writes the default template into a writable store. No-op safe to call
// at every startup: Put replaces by fixed ID.
func Seed(ctx context.Context, store *InMemoryStore) error {
	return store.Put(ctx, DefaultTemplate())
}
