package template

import (
	"time"

	"nestly/internal/agreement"
)

// fullTestForm sets every form field so rendering exercises every variable
// and the true branch of every conditional.
func fullTestForm() agreement.FormData {
	str := func(s string) *string { return &s }
	f64 := func(v float64) *float64 { return &v }
	i := func(v int) *int { return &v }
	b := func(v bool) *bool { return &v }
	date := func(y int, m time.Month, d int) *time.Time {
		t := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
		return &t
	}

	return agreement.FormData{
		LandlordName:              str("Alex Osei"),
		LandlordAddress:           str("4 Queen Square, Bristol"),
		LandlordEmail:             str("alex@example.com"),
		LandlordPhone:             str("07700900001"),
		TenantName:                str("Priya Shah"),
		TenantEmail:               str("priya@example.com"),
		TenantPhone:               str("07700900123"),
		AgencyName:                str("Harbour Lettings"),
		PropertyAddress:           str("12 Harbour Lane, Bristol"),
		PropertyPostcode:          str("BS1 4QA"),
		FurnishingLevel:           str("furnished"),
		TenancyStartDate:          date(2025, time.October, 1),
		TenancyEndDate:            date(2026, time.September, 30),
		RentAmount:                f64(1400),
		RentPaymentDay:            i(1),
		RentPaymentMethod:         str("standing order"),
		AdvanceRentMonths:         i(1),
		DepositAmount:             f64(1614),
		DepositWeeks:              f64(5),
		DepositScheme:             str("DPS"),
		DepositSchemeReference:    str("DPS-1199"),
		DepositProtectedDate:      date(2025, time.October, 5),
		MaxOccupants:              i(3),
		AdditionalOccupants:       []string{"Rohan Shah"},
		PetsAllowed:               b(true),
		PetDetails:                str("one small dog"),
		UtilitiesIncluded:         b(true),
		UtilitiesList:             str("water, broadband"),
		CouncilTaxResponsibility:  str("tenant"),
		CouncilTaxBand:            str("C"),
		PRSRegistrationNumber:     str("PRS-99201"),
		OmbudsmanScheme:           str("Housing Ombudsman"),
		OmbudsmanMembershipNumber: str("HO-7741"),
		EPCRating:                 str("B"),
		EPCExpiryDate:             date(2030, time.January, 1),
		HasGas:                    b(true),
		GasSafetyDate:             date(2025, time.July, 12),
		EICRDate:                  date(2024, time.March, 3),
		SmokeAlarmsConfirmed:      b(true),
		InventoryIncluded:         b(true),
		SpecialConditions:         str("Garden maintained by tenant."),
	}
}
