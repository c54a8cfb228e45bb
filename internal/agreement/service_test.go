package agreement

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nestly/internal/domain"
	id "nestly/pkg/domain"
	dErrors "nestly/pkg/domain-errors"
	audit "nestly/pkg/platform/audit"
	"nestly/pkg/platform/sentinel"
	"nestly/pkg/requestcontext"
)

type fakeTemplateStore struct {
	templates map[id.TemplateID]*Template
	def       *Template
	failWith  error
}

func (f *fakeTemplateStore) FindByID(_ context.Context, templateID id.TemplateID) (*Template, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	tpl, ok := f.templates[templateID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return tpl, nil
}

func (f *fakeTemplateStore) FindDefault(context.Context) (*Template, error) {
	if f.failWith != nil {
		return nil, f.failWith
	}
	if f.def == nil {
		return nil, sentinel.ErrNotFound
	}
	return f.def, nil
}

type fakeAgreementStore struct {
	records    map[id.AgreementID]*GeneratedAgreement
	createErr  error
	updateErr  error
	updateSeen int
}

func newFakeAgreementStore() *fakeAgreementStore {
	return &fakeAgreementStore{records: map[id.AgreementID]*GeneratedAgreement{}}
}

func (f *fakeAgreementStore) Create(_ context.Context, rec *GeneratedAgreement) error {
	if f.createErr != nil {
		return f.createErr
	}
	cp := *rec
	f.records[rec.ID] = &cp
	return nil
}

func (f *fakeAgreementStore) FindByID(_ context.Context, agreementID id.AgreementID) (*GeneratedAgreement, error) {
	rec, ok := f.records[agreementID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	cp := *rec
	return &cp, nil
}

func (f *fakeAgreementStore) Update(_ context.Context, rec *GeneratedAgreement) error {
	f.updateSeen++
	if f.updateErr != nil {
		return f.updateErr
	}
	if _, ok := f.records[rec.ID]; !ok {
		return sentinel.ErrNotFound
	}
	cp := *rec
	f.records[rec.ID] = &cp
	return nil
}

type fakeMatchReader struct {
	matches map[id.MatchID]*domain.Match
}

func (f *fakeMatchReader) FindByID(_ context.Context, matchID id.MatchID) (*domain.Match, error) {
	m, ok := f.matches[matchID]
	if !ok {
		return nil, sentinel.ErrNotFound
	}
	return m, nil
}

type recordingAuditor struct {
	events []audit.Event
	err    error
}

func (r *recordingAuditor) Emit(_ context.Context, event audit.Event) error {
	r.events = append(r.events, event)
	return r.err
}

func sampleMatch() *domain.Match {
	return &domain.Match{
		ID: id.MatchID(uuid.New()),
		Property: domain.Property{
			ID:              id.PropertyID(uuid.New()),
			Address:         "12 Harbour Lane, Bristol",
			Postcode:        "BS1 4QA",
			MonthlyRent:     1400,
			FurnishingLevel: domain.FurnishingFurnished,
			EPCRating:       "B",
			PRSNumber:       "PRS-99201",
			HasGas:          true,
			CouncilTaxBand:  "C",
		},
		Landlord: domain.LandlordProfile{
			ID:      id.UserID(uuid.New()),
			Name:    "Alex Osei",
			Address: "4 Queen Square, Bristol",
			Email:   "alex@example.com",
		},
		Renter: domain.RenterProfile{
			ID:    id.UserID(uuid.New()),
			Name:  "Priya Shah",
			Email: "priya@example.com",
			Phone: "07700900123",
		},
		MatchedAt: time.Date(2025, time.August, 20, 9, 0, 0, 0, time.UTC),
	}
}

func sampleTemplate() *Template {
	return &Template{
		ID:               id.TemplateID(uuid.New()),
		Name:             "Assured Tenancy Agreement",
		Version:          3,
		IsSystemTemplate: true,
		IsActive:         true,
		Sections: []Section{
			{Title: "Parties", Clauses: []Clause{
				{ID: id.ClauseID(uuid.New()), Title: "Parties", Content: "Between {{landlord_name}} and {{tenant_name}}.", IsMandatory: true, Category: CategoryParties},
			}},
		},
	}
}

type serviceFixture struct {
	svc        *Service
	templates  *fakeTemplateStore
	agreements *fakeAgreementStore
	matches    *fakeMatchReader
	auditor    *recordingAuditor
	match      *domain.Match
	template   *Template
}

func newServiceFixture(t *testing.T) *serviceFixture {
	t.Helper()
	match := sampleMatch()
	tpl := sampleTemplate()
	f := &serviceFixture{
		templates:  &fakeTemplateStore{templates: map[id.TemplateID]*Template{tpl.ID: tpl}, def: tpl},
		agreements: newFakeAgreementStore(),
		matches:    &fakeMatchReader{matches: map[id.MatchID]*domain.Match{match.ID: match}},
		auditor:    &recordingAuditor{},
		match:      match,
		template:   tpl,
	}
	f.svc = NewService(f.templates, f.agreements, f.matches, WithAuditor(f.auditor))
	return f
}

func (f *serviceFixture) createDraft(t *testing.T, ctx context.Context) *GeneratedAgreement {
	t.Helper()
	rec, err := f.svc.CreateDraftAgreement(ctx, f.match.ID, f.template.ID, f.match.Landlord.ID)
	require.NoError(t, err)
	return rec
}

func TestGetDefaultTemplate(t *testing.T) {
	f := newServiceFixture(t)

	tpl, err := f.svc.GetDefaultTemplate(context.Background())
	require.NoError(t, err)
	assert.Equal(t, f.template.ID, tpl.ID)

	f.templates.def = nil
	_, err = f.svc.GetDefaultTemplate(context.Background())
	assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
}

func TestCreateDraftAgreement(t *testing.T) {
	t.Run("seeds form from match", func(t *testing.T) {
		f := newServiceFixture(t)
		now := time.Date(2025, time.September, 1, 10, 0, 0, 0, time.UTC)
		ctx := requestcontext.WithTime(context.Background(), now)

		rec := f.createDraft(t, ctx)

		assert.Equal(t, StatusDraft, rec.Status)
		assert.Equal(t, f.match.ID, rec.MatchID)
		assert.Equal(t, f.match.Landlord.ID, rec.LandlordID)
		assert.Equal(t, f.match.Renter.ID, rec.RenterID)
		assert.Nil(t, rec.AgencyID)
		assert.True(t, now.Equal(rec.CreatedAt))

		form := rec.Data
		assert.Equal(t, "Alex Osei", *form.LandlordName)
		assert.Equal(t, "Priya Shah", *form.TenantName)
		assert.Equal(t, "12 Harbour Lane, Bristol", *form.PropertyAddress)
		assert.Equal(t, "furnished", *form.FurnishingLevel)
		assert.Equal(t, 1400.0, *form.RentAmount)
		assert.Equal(t, "B", *form.EPCRating)
		assert.Equal(t, "PRS-99201", *form.PRSRegistrationNumber)
		assert.True(t, *form.HasGas)
		assert.Nil(t, form.LandlordPhone, "blank profile fields stay unset")
	})

	t.Run("carries agency when present", func(t *testing.T) {
		f := newServiceFixture(t)
		agencyID := id.UserID(uuid.New())
		f.match.Agency = &domain.AgencyProfile{ID: agencyID, Name: "Harbour Lettings"}

		rec := f.createDraft(t, context.Background())
		require.NotNil(t, rec.AgencyID)
		assert.Equal(t, agencyID, *rec.AgencyID)
		assert.Equal(t, "Harbour Lettings", *rec.Data.AgencyName)
	})

	t.Run("unknown match is not found", func(t *testing.T) {
		f := newServiceFixture(t)
		_, err := f.svc.CreateDraftAgreement(context.Background(), id.MatchID(uuid.New()), f.template.ID, f.match.Landlord.ID)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("unknown template is not found", func(t *testing.T) {
		f := newServiceFixture(t)
		_, err := f.svc.CreateDraftAgreement(context.Background(), f.match.ID, id.TemplateID(uuid.New()), f.match.Landlord.ID)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})

	t.Run("store failure is internal", func(t *testing.T) {
		f := newServiceFixture(t)
		f.agreements.createErr = errors.New("connection reset")
		_, err := f.svc.CreateDraftAgreement(context.Background(), f.match.ID, f.template.ID, f.match.Landlord.ID)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInternal))
	})

	t.Run("emits draft created audit event", func(t *testing.T) {
		f := newServiceFixture(t)
		rec := f.createDraft(t, context.Background())
		require.Len(t, f.auditor.events, 1)
		assert.Equal(t, string(audit.EventDraftCreated), f.auditor.events[0].Action)
		assert.Equal(t, rec.ID, f.auditor.events[0].AgreementID)
	})
}

func TestUpdateAgreementData(t *testing.T) {
	t.Run("merges partial into stored draft", func(t *testing.T) {
		f := newServiceFixture(t)
		rec := f.createDraft(t, context.Background())

		updated, err := f.svc.UpdateAgreementData(context.Background(), rec.ID, FormData{
			DepositAmount: ptr(1600.0),
			DepositScheme: ptr("DPS"),
		})
		require.NoError(t, err)

		assert.Equal(t, 1600.0, *updated.Data.DepositAmount)
		assert.Equal(t, "DPS", *updated.Data.DepositScheme)
		assert.Equal(t, "Alex Osei", *updated.Data.LandlordName, "seeded fields survive the merge")

		stored, err := f.svc.GetAgreement(context.Background(), rec.ID)
		require.NoError(t, err)
		assert.Equal(t, "DPS", *stored.Data.DepositScheme)
	})

	t.Run("unknown agreement is not found", func(t *testing.T) {
		f := newServiceFixture(t)
		_, err := f.svc.UpdateAgreementData(context.Background(), id.AgreementID(uuid.New()), FormData{})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func TestMarkAgreementGenerated(t *testing.T) {
	t.Run("records pdf and advances status", func(t *testing.T) {
		f := newServiceFixture(t)
		rec := f.createDraft(t, context.Background())

		updated, err := f.svc.MarkAgreementGenerated(context.Background(), rec.ID, "/pdfs/agr-1.pdf")
		require.NoError(t, err)
		assert.Equal(t, StatusGenerated, updated.Status)
		assert.Equal(t, "/pdfs/agr-1.pdf", *updated.GeneratedPDFPath)
		require.NotNil(t, updated.GeneratedAt)
	})

	t.Run("regeneration is allowed", func(t *testing.T) {
		f := newServiceFixture(t)
		rec := f.createDraft(t, context.Background())
		_, err := f.svc.MarkAgreementGenerated(context.Background(), rec.ID, "/pdfs/v1.pdf")
		require.NoError(t, err)

		updated, err := f.svc.MarkAgreementGenerated(context.Background(), rec.ID, "/pdfs/v2.pdf")
		require.NoError(t, err)
		assert.Equal(t, "/pdfs/v2.pdf", *updated.GeneratedPDFPath)
	})

	t.Run("empty pdf path is rejected", func(t *testing.T) {
		f := newServiceFixture(t)
		rec := f.createDraft(t, context.Background())
		_, err := f.svc.MarkAgreementGenerated(context.Background(), rec.ID, "")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})

	t.Run("signed agreement cannot regenerate", func(t *testing.T) {
		f := newServiceFixture(t)
		rec := f.createDraft(t, context.Background())
		f.agreements.records[rec.ID].Status = StatusSigned

		_, err := f.svc.MarkAgreementGenerated(context.Background(), rec.ID, "/pdfs/late.pdf")
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func TestLinkToTenancyAgreement(t *testing.T) {
	t.Run("links and moves to sent for signing", func(t *testing.T) {
		f := newServiceFixture(t)
		rec := f.createDraft(t, context.Background())
		_, err := f.svc.MarkAgreementGenerated(context.Background(), rec.ID, "/pdfs/agr.pdf")
		require.NoError(t, err)

		taID := id.TenancyAgreementID(uuid.New())
		updated, err := f.svc.LinkToTenancyAgreement(context.Background(), rec.ID, taID)
		require.NoError(t, err)
		assert.Equal(t, StatusSentForSigning, updated.Status)
		assert.Equal(t, taID, *updated.TenancyAgreementID)
	})

	t.Run("draft cannot skip generation", func(t *testing.T) {
		f := newServiceFixture(t)
		rec := f.createDraft(t, context.Background())
		_, err := f.svc.LinkToTenancyAgreement(context.Background(), rec.ID, id.TenancyAgreementID(uuid.New()))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})

	t.Run("nil tenancy agreement id is rejected", func(t *testing.T) {
		f := newServiceFixture(t)
		rec := f.createDraft(t, context.Background())
		_, err := f.svc.LinkToTenancyAgreement(context.Background(), rec.ID, id.TenancyAgreementID{})
		assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
	})
}

func TestCancelAgreement(t *testing.T) {
	t.Run("cancels a draft", func(t *testing.T) {
		f := newServiceFixture(t)
		rec := f.createDraft(t, context.Background())

		updated, err := f.svc.CancelAgreement(context.Background(), rec.ID)
		require.NoError(t, err)
		assert.Equal(t, StatusCancelled, updated.Status)

		require.Len(t, f.auditor.events, 2)
		assert.Equal(t, string(audit.EventCancelled), f.auditor.events[1].Action)
	})

	t.Run("signed agreement cannot be cancelled", func(t *testing.T) {
		f := newServiceFixture(t)
		rec := f.createDraft(t, context.Background())
		f.agreements.records[rec.ID].Status = StatusSigned

		_, err := f.svc.CancelAgreement(context.Background(), rec.ID)
		assert.True(t, dErrors.HasCode(err, dErrors.CodeConflict))
	})
}

func TestCheckDraftCompliance(t *testing.T) {
	f := newServiceFixture(t)
	rec := f.createDraft(t, context.Background())

	result, err := f.svc.CheckDraftCompliance(context.Background(), rec.ID)
	require.NoError(t, err)
	assert.False(t, result.IsCompliant, "freshly seeded draft lacks statutory fields")
	assert.True(t, hasErrorOn(*result, "ombudsman_scheme"))
}

func TestRenderDraft(t *testing.T) {
	t.Run("renders against the draft template", func(t *testing.T) {
		f := newServiceFixture(t)
		rec := f.createDraft(t, context.Background())

		doc, err := f.svc.RenderDraft(context.Background(), rec.ID)
		require.NoError(t, err)
		assert.Contains(t, doc, "Between Alex Osei and Priya Shah.")
	})

	t.Run("unknown agreement is not found", func(t *testing.T) {
		f := newServiceFixture(t)
		_, err := f.svc.RenderDraft(context.Background(), id.AgreementID(uuid.New()))
		assert.True(t, dErrors.HasCode(err, dErrors.CodeNotFound))
	})
}

func TestAuditFailureDoesNotFailOperation(t *testing.T) {
	f := newServiceFixture(t)
	f.auditor.err = errors.New("broker unavailable")

	rec, err := f.svc.CreateDraftAgreement(context.Background(), f.match.ID, f.template.ID, f.match.Landlord.ID)
	require.NoError(t, err)
	assert.NotNil(t, rec)
}
