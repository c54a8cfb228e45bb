package template

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"nestly/internal/agreement"
	id "nestly/pkg/domain"
	"nestly/pkg/platform/sentinel"
)

// PostgresStore persists templates in PostgreSQL. Sections are stored as a
// single JSONB document: templates are read whole and versioned whole, so
// there is nothing to gain from relational clause rows.
type PostgresStore struct {
	db *sql.DB
}

func NewPostgres(db *sql.DB) *PostgresStore {
	return &PostgresStore{db: db}
}

func (s *PostgresStore) Put(ctx context.Context, tpl *agreement.Template) error {
	sections, err := json.Marshal(tpl.Sections)
	if err != nil {
		return fmt.Errorf("marshal template sections: %w", err)
	}
	query := `
		INSERT INTO agreement_templates (id, name, version, sections, is_system_template, is_active, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		ON CONFLICT (id) DO UPDATE SET
			name = EXCLUDED.name,
			version = EXCLUDED.version,
			sections = EXCLUDED.sections,
			is_system_template = EXCLUDED.is_system_template,
			is_active = EXCLUDED.is_active
	`
	_, err = s.db.ExecContext(ctx, query,
		tpl.ID.String(), tpl.Name, tpl.Version, sections, tpl.IsSystemTemplate, tpl.IsActive, tpl.CreatedAt)
	if err != nil {
		return fmt.Errorf("put template: %w", err)
	}
	return nil
}

func (s *PostgresStore) FindByID(ctx context.Context, templateID id.TemplateID) (*agreement.Template, error) {
	query := `
		SELECT id, name, version, sections, is_system_template, is_active, created_at
		FROM agreement_templates
		WHERE id = $1
	`
	return s.scanOne(s.db.QueryRowContext(ctx, query, templateID.String()))
}

// FindDefault selects the active system template with the highest version.
func (s *PostgresStore) FindDefault(ctx context.Context) (*agreement.Template, error) {
	query := `
		SELECT id, name, version, sections, is_system_template, is_active, created_at
		FROM agreement_templates
		WHERE is_system_template = TRUE AND is_active = TRUE
		ORDER BY version DESC
		LIMIT 1
	`
	return s.scanOne(s.db.QueryRowContext(ctx, query))
}

func (s *PostgresStore) scanOne(row *sql.Row) (*agreement.Template, error) {
	var (
		tpl      agreement.Template
		rawID    string
		sections []byte
	)
	err := row.Scan(&rawID, &tpl.Name, &tpl.Version, &sections, &tpl.IsSystemTemplate, &tpl.IsActive, &tpl.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, sentinel.ErrNotFound
		}
		return nil, fmt.Errorf("scan template: %w", err)
	}
	tplID, err := id.ParseTemplateID(rawID)
	if err != nil {
		return nil, fmt.Errorf("parse template id: %w", err)
	}
	tpl.ID = tplID
	if err := json.Unmarshal(sections, &tpl.Sections); err != nil {
		return nil, fmt.Errorf("unmarshal template sections: %w", err)
	}
	return &tpl, nil
}
