// Package domain holds the marketplace records the agreement engine reads but
// does not own. Listing CRUD, browsing, and messaging live in other services;
// this engine only needs read access to a match with its embedded property and
// party profiles.
package domain

import (
	"time"

	id "nestly/pkg/domain"
)

// FurnishingLevel enumerates how a property is let.
type FurnishingLevel string

const (
	FurnishingFurnished     FurnishingLevel = "furnished"
	FurnishingPartFurnished FurnishingLevel = "part_furnished"
	FurnishingUnfurnished   FurnishingLevel = "unfurnished"
)

// Property is the listing snapshot embedded in a match. Fields mirror what
// the listing service publishes; several seed the agreement draft directly.
type Property struct {
	ID              id.PropertyID
	Address         string
	Postcode        string
	MonthlyRent     float64
	FurnishingLevel FurnishingLevel
	EPCRating       string
	PRSNumber       string
	HasGas          bool
	CouncilTaxBand  string
}

// LandlordProfile is the landlord party embedded in a match.
type LandlordProfile struct {
	ID      id.UserID
	Name    string
	Address string
	Email   string
	Phone   string
}

// RenterProfile is the tenant party embedded in a match.
type RenterProfile struct {
	ID    id.UserID
	Name  string
	Email string
	Phone string
}

// AgencyProfile is the optional managing agency embedded in a match.
type AgencyProfile struct {
	ID   id.UserID
	Name string
}

// Match joins a renter to a property after both sides accepted. The embedded
// sub-records are denormalized snapshots so the agreement engine never has to
// fan out extra reads.
type Match struct {
	ID        id.MatchID
	Property  Property
	Landlord  LandlordProfile
	Renter    RenterProfile
	Agency    *AgencyProfile
	MatchedAt time.Time
}
