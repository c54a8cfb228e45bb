package generated

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"nestly/internal/agreement"
	id "nestly/pkg/domain"
	"nestly/pkg/platform/sentinel"
)

// PostgresStore persists generated agreements in PostgreSQL. The mutable form
// is a single JSONB column: it is read and written whole on every merge, and
// its schema evolves with the wizard rather than with migrations.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

const agreementColumns = `
	id, template_id, match_id, landlord_id, agency_id, renter_id, property_id,
	agreement_data, status, generated_pdf_path, tenancy_agreement_id,
	generated_at, created_at, updated_at, created_by`

func (s *PostgresStore) Create(ctx context.Context, rec *agreement.GeneratedAgreement) error {
	data, err := json.Marshal(rec.Data)
	if err != nil {
		return fmt.Errorf("marshal agreement data: %w", err)
	}
	query := `
		INSERT INTO generated_agreements (` + agreementColumns + `)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15)
	`
	_, err = s.db.ExecContext(ctx, query,
		rec.ID.String(), rec.TemplateID.String(), rec.MatchID.String(),
		rec.LandlordID.String(), nullID(rec.AgencyID), rec.RenterID.String(), rec.PropertyID.String(),
		data, string(rec.Status), nullString(rec.GeneratedPDFPath), nullTenancyID(rec.TenancyAgreementID),
		nullTime(rec.GeneratedAt), rec.CreatedAt, rec.UpdatedAt, rec.CreatedBy.String())
	if err != nil {
		return fmt.Errorf("create agreement: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, agreementID id.AgreementID) (*agreement.GeneratedAgreement, error) {
	query := `SELECT ` + agreementColumns + ` FROM generated_agreements WHERE id = $1`
	row := s.db.QueryRowContext(ctx, query, agreementID.String())

	var (
		rec                                 agreement.GeneratedAgreement
		rawID, rawTemplate, rawMatch        string
		rawLandlord, rawRenter, rawProperty string
		rawCreatedBy                        string
		rawAgency, rawPDFPath, rawTenancy   sql.NullString
		rawGeneratedAt                      sql.NullTime
		data                                []byte
		status                              string
	)
	err := row.Scan(&rawID, &rawTemplate, &rawMatch, &rawLandlord, &rawAgency, &rawRenter, &rawProperty,
		&data, &status, &rawPDFPath, &rawTenancy, &rawGeneratedAt, &rec.CreatedAt, &rec.UpdatedAt, &rawCreatedBy)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("load agreement: %w", err)
	}

	if rec.ID, err = id.ParseAgreementID(rawID); err != nil {
		return nil, fmt.Errorf("parse agreement id: %w", err)
	}
	if rec.TemplateID, err = id.ParseTemplateID(rawTemplate); err != nil {
		return nil, fmt.Errorf("parse template id: %w", err)
	}
	if rec.MatchID, err = id.ParseMatchID(rawMatch); err != nil {
		return nil, fmt.Errorf("parse match id: %w", err)
	}
	if rec.LandlordID, err = id.ParseUserID(rawLandlord); err != nil {
		return nil, fmt.Errorf("parse landlord id: %w", err)
	}
	if rec.RenterID, err = id.ParseUserID(rawRenter); err != nil {
		return nil, fmt.Errorf("parse renter id: %w", err)
	}
	if rec.PropertyID, err = id.ParsePropertyID(rawProperty); err != nil {
		return nil, fmt.Errorf("parse property id: %w", err)
	}
	if rec.CreatedBy, err = id.ParseUserID(rawCreatedBy); err != nil {
		return nil, fmt.Errorf("parse created by: %w", err)
	}
	if rawAgency.Valid {
		agencyID, err := id.ParseUserID(rawAgency.String)
		if err != nil {
			return nil, fmt.Errorf("parse agency id: %w", err)
		}
		rec.AgencyID = &agencyID
	}
	if rawTenancy.Valid {
		tenancyID, err := id.ParseTenancyAgreementID(rawTenancy.String)
		if err != nil {
			return nil, fmt.Errorf("parse tenancy agreement id: %w", err)
		}
		rec.TenancyAgreementID = &tenancyID
	}
	if rawPDFPath.Valid {
		rec.GeneratedPDFPath = &rawPDFPath.String
	}
	if rawGeneratedAt.Valid {
		generatedAt := rawGeneratedAt.Time
		rec.GeneratedAt = &generatedAt
	}
	rec.Status = agreement.Status(status)
	if err := json.Unmarshal(data, &rec.Data); err != nil {
		return nil, fmt.Errorf("unmarshal agreement data: %w", err)
	}
	return &rec, nil
}

func (s *PostgresStore) Update(ctx context.Context, rec *agreement.GeneratedAgreement) error {
	data, err := json.Marshal(rec.Data)
	if err != nil {
		return fmt.Errorf("marshal agreement data: %w", err)
	}
	query := `
		UPDATE generated_agreements SET
			agreement_data = $2,
			status = $3,
			generated_pdf_path = $4,
			tenancy_agreement_id = $5,
			generated_at = $6,
			updated_at = $7
		WHERE id = $1
	`
	res, err := s.db.ExecContext(ctx, query,
		rec.ID.String(), data, string(rec.Status), nullString(rec.GeneratedPDFPath),
		nullTenancyID(rec.TenancyAgreementID), nullTime(rec.GeneratedAt), rec.UpdatedAt)
	if err != nil {
		return fmt.Errorf("update agreement: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update agreement: %w", err)
	}
	if affected == 0 {
		return sentinel.ErrNotFound
	}
	return nil
}

func nullID(v *id.UserID) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: v.String(), Valid: true}
}

func nullTenancyID(v *id.TenancyAgreementID) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: v.String(), Valid: true}
}

func nullString(v *string) sql.NullString {
	if v == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *v, Valid: true}
}

func nullTime(v *time.Time) sql.NullTime {
	if v == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: *v, Valid: true}
}
