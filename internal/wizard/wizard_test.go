package wizard

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"nestly/internal/agreement"
	"nestly/internal/agreement/store/generated"
	"nestly/internal/agreement/store/match"
	"nestly/internal/agreement/store/template"
	"nestly/internal/domain"
	id "nestly/pkg/domain"
	dErrors "nestly/pkg/domain-errors"
)

// flakyService wraps the real service so tests can inject failures at the
// wizard boundary.
type flakyService struct {
	AgreementService
	mu         sync.Mutex
	failCreate error
	failUpdate error
	updates    int
}

func (f *flakyService) CreateDraftAgreement(ctx context.Context, matchID id.MatchID, templateID id.TemplateID, createdBy id.UserID) (*agreement.GeneratedAgreement, error) {
	f.mu.Lock()
	failErr := f.failCreate
	f.mu.Unlock()
	if failErr != nil {
		return nil, failErr
	}
	return f.AgreementService.CreateDraftAgreement(ctx, matchID, templateID, createdBy)
}

func (f *flakyService) UpdateAgreementData(ctx context.Context, agreementID id.AgreementID, partial agreement.FormData) (*agreement.GeneratedAgreement, error) {
	f.mu.Lock()
	failErr := f.failUpdate
	f.mu.Unlock()
	if failErr != nil {
		return nil, failErr
	}
	f.mu.Lock()
	f.updates++
	f.mu.Unlock()
	return f.AgreementService.UpdateAgreementData(ctx, agreementID, partial)
}

func (f *flakyService) updateCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.updates
}

type stubGenerator struct {
	path string
	err  error
}

func (g *stubGenerator) GeneratePDF(_ context.Context, agreementID id.AgreementID, _ string) (string, error) {
	if g.err != nil {
		return "", g.err
	}
	if g.path != "" {
		return g.path, nil
	}
	return "/pdfs/" + agreementID.String() + ".pdf", nil
}

type wizardFixture struct {
	wizard  *Wizard
	service *flakyService
	match   *domain.Match
}

func newWizardFixture(t *testing.T, opts ...Option) *wizardFixture {
	t.Helper()
	ctx := context.Background()

	templates := template.NewMemory()
	require.NoError(t, template.Seed(ctx, templates))

	m := &domain.Match{
		ID: id.MatchID(uuid.New()),
		Property: domain.Property{
			ID:              id.PropertyID(uuid.New()),
			Address:         "12 Harbour Lane, Bristol",
			Postcode:        "BS1 4QA",
			MonthlyRent:     1400,
			FurnishingLevel: domain.FurnishingFurnished,
			EPCRating:       "B",
			HasGas:          true,
		},
		Landlord: domain.LandlordProfile{ID: id.UserID(uuid.New()), Name: "Alex Osei", Address: "4 Queen Square, Bristol"},
		Renter:   domain.RenterProfile{ID: id.UserID(uuid.New()), Name: "Priya Shah"},
	}
	matches := match.NewMemory()
	require.NoError(t, matches.Put(ctx, m))

	svc := agreement.NewService(templates, generated.NewMemory(), matches)
	flaky := &flakyService{AgreementService: svc}

	opts = append([]Option{
		WithDocumentGenerator(&stubGenerator{}),
		WithAutosaveDebounce(10 * time.Millisecond),
	}, opts...)
	w := New(flaky, opts...)
	t.Cleanup(w.Close)

	return &wizardFixture{wizard: w, service: flaky, match: m}
}

func (f *wizardFixture) initialized(t *testing.T) *Wizard {
	t.Helper()
	require.NoError(t, f.wizard.Init(context.Background(), f.match.ID, f.match.Landlord.ID))
	return f.wizard
}

// completeForm supplies everything the seeded draft is missing, through the
// compliance step.
func completeForm() agreement.FormData {
	rent := 1400.0
	deposit := rent * 12 / 52 * 5
	return agreement.FormData{
		TenancyStartDate:          dateOf(2025, time.October, 1),
		RentAmount:                &rent,
		DepositAmount:             &deposit,
		DepositScheme:             str("DPS"),
		PetsAllowed:               boolean(false),
		CouncilTaxResponsibility:  str("tenant"),
		PRSRegistrationNumber:     str("PRS-99201"),
		OmbudsmanScheme:           str("Housing Ombudsman"),
		OmbudsmanMembershipNumber: str("HO-7741"),
		EPCRating:                 str("B"),
		EPCExpiryDate:             dateOf(2030, time.January, 1),
		GasSafetyDate:             dateOf(2025, time.July, 12),
		EICRDate:                  dateOf(2024, time.March, 3),
		RentPaymentDay:            intPtr(1),
	}
}

func intPtr(v int) *int { return &v }

func TestWizard_Init(t *testing.T) {
	t.Run("opens a seeded draft at step zero", func(t *testing.T) {
		f := newWizardFixture(t)
		w := f.initialized(t)

		assert.Equal(t, StepParties, w.CurrentStep())
		assert.False(t, w.AgreementID().IsNil())
		assert.NoError(t, w.Err())

		form := w.Form()
		assert.Equal(t, "Alex Osei", *form.LandlordName)
		assert.Equal(t, "Priya Shah", *form.TenantName)
		assert.False(t, w.Compliance().IsCompliant, "fresh draft lacks statutory fields")
	})

	t.Run("fresh draft starts with no steps complete", func(t *testing.T) {
		f := newWizardFixture(t)
		w := f.initialized(t)

		// Seeding satisfies the parties validator, but completion is only
		// earned by a successful transition.
		for step := Step(0); step < StepCount; step++ {
			assert.False(t, w.IsComplete(step), "step %d", step)
		}
	})

	t.Run("failure is retryable", func(t *testing.T) {
		f := newWizardFixture(t)
		f.service.failCreate = errors.New("store down")

		err := f.wizard.Init(context.Background(), f.match.ID, f.match.Landlord.ID)
		require.Error(t, err)
		assert.Error(t, f.wizard.Err())

		f.service.mu.Lock()
		f.service.failCreate = nil
		f.service.mu.Unlock()
		require.NoError(t, f.wizard.Retry(context.Background()))
		assert.NoError(t, f.wizard.Err())
		assert.False(t, f.wizard.AgreementID().IsNil())
	})

	t.Run("retry before init is rejected", func(t *testing.T) {
		f := newWizardFixture(t)
		err := f.wizard.Retry(context.Background())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func TestWizard_Resume(t *testing.T) {
	f := newWizardFixture(t)
	w := f.initialized(t)
	agreementID := w.AgreementID()
	w.ApplyChange(context.Background(), agreement.FormData{DepositScheme: str("DPS")})
	_, err := w.svc.UpdateAgreementData(context.Background(), agreementID, agreement.FormData{DepositScheme: str("DPS")})
	require.NoError(t, err)

	resumed := New(f.service, WithAutosaveDebounce(10*time.Millisecond))
	t.Cleanup(resumed.Close)
	require.NoError(t, resumed.Resume(context.Background(), agreementID))
	assert.Equal(t, "DPS", *resumed.Form().DepositScheme)
	assert.True(t, resumed.IsComplete(StepParties), "seeded parties step is already complete")
	assert.False(t, resumed.IsComplete(StepPets), "undecided optional step stays incomplete")
}

func TestWizard_Next(t *testing.T) {
	t.Run("failing validator never advances or marks complete", func(t *testing.T) {
		f := newWizardFixture(t)
		w := f.initialized(t)

		// Step past parties, then stall on property: the seeded draft has no
		// start date.
		fieldErrs, err := w.Next(context.Background())
		require.NoError(t, err)
		require.Empty(t, fieldErrs)
		require.Equal(t, StepProperty, w.CurrentStep())

		fieldErrs, err = w.Next(context.Background())
		require.NoError(t, err)
		assert.NotEmpty(t, fieldErrs)
		assert.Equal(t, StepProperty, w.CurrentStep())
		assert.False(t, w.IsComplete(StepProperty))
	})

	t.Run("valid step advances and marks complete", func(t *testing.T) {
		f := newWizardFixture(t)
		w := f.initialized(t)

		fieldErrs, err := w.Next(context.Background())
		require.NoError(t, err)
		assert.Empty(t, fieldErrs)
		assert.Equal(t, StepProperty, w.CurrentStep())
		assert.True(t, w.IsComplete(StepParties))
	})

	t.Run("persistence failure surfaces and does not advance", func(t *testing.T) {
		f := newWizardFixture(t)
		w := f.initialized(t)
		w.ApplyChange(context.Background(), agreement.FormData{TenantPhone: str("07700900123")})
		f.service.mu.Lock()
		f.service.failUpdate = errors.New("store down")
		f.service.mu.Unlock()

		_, err := w.Next(context.Background())
		require.Error(t, err)
		assert.Equal(t, StepParties, w.CurrentStep())
		assert.False(t, w.IsComplete(StepParties))

		// The unsaved change survives for the retry.
		f.service.mu.Lock()
		f.service.failUpdate = nil
		f.service.mu.Unlock()
		_, err = w.Next(context.Background())
		require.NoError(t, err)
		stored, err := w.svc.GetAgreement(context.Background(), w.AgreementID())
		require.NoError(t, err)
		assert.Equal(t, "07700900123", *stored.Data.TenantPhone)
	})

	t.Run("terminal step has no next", func(t *testing.T) {
		f := newWizardFixture(t)
		w := f.initialized(t)
		w.ApplyChange(context.Background(), completeForm())

		for i := 0; i < StepCount+2; i++ {
			fieldErrs, err := w.Next(context.Background())
			require.NoError(t, err)
			require.Empty(t, fieldErrs)
		}
		assert.Equal(t, StepGenerate, w.CurrentStep())
	})
}

func TestWizard_Previous(t *testing.T) {
	f := newWizardFixture(t)
	w := f.initialized(t)

	_, err := w.Next(context.Background())
	require.NoError(t, err)
	require.Equal(t, StepProperty, w.CurrentStep())

	w.Previous()
	assert.Equal(t, StepParties, w.CurrentStep())
	assert.True(t, w.IsComplete(StepParties), "stepping back keeps completion")

	w.Previous()
	assert.Equal(t, StepParties, w.CurrentStep(), "previous at step zero is a no-op")
}

func TestWizard_JumpToStep(t *testing.T) {
	f := newWizardFixture(t)
	w := f.initialized(t)
	w.ApplyChange(context.Background(), completeForm())

	// Forward jump passes the current step's gate.
	fieldErrs, err := w.JumpToStep(context.Background(), StepRentDeposit)
	require.NoError(t, err)
	assert.Empty(t, fieldErrs)
	assert.Equal(t, StepRentDeposit, w.CurrentStep())
	assert.True(t, w.IsComplete(StepParties))

	// Backward jump is unconditional.
	fieldErrs, err = w.JumpToStep(context.Background(), StepParties)
	require.NoError(t, err)
	assert.Empty(t, fieldErrs)
	assert.Equal(t, StepParties, w.CurrentStep())

	// Forward jump from an invalid step is gated.
	w2 := newWizardFixture(t)
	wz := w2.initialized(t)
	_, err = wz.Next(context.Background())
	require.NoError(t, err)
	fieldErrs, err = wz.JumpToStep(context.Background(), StepReview)
	require.NoError(t, err)
	assert.NotEmpty(t, fieldErrs)
	assert.Equal(t, StepProperty, wz.CurrentStep())

	// Out of range.
	_, err = wz.JumpToStep(context.Background(), Step(12))
	assert.True(t, dErrors.HasCode(err, dErrors.CodeBadRequest))
}

func TestWizard_ApplyChange(t *testing.T) {
	t.Run("compliance recomputes synchronously", func(t *testing.T) {
		f := newWizardFixture(t)
		w := f.initialized(t)

		before := w.Compliance()
		assert.False(t, before.IsCompliant)

		result := w.ApplyChange(context.Background(), completeForm())
		assert.True(t, result.IsCompliant)
		assert.Equal(t, result, w.Compliance())
	})

	t.Run("autosave fires after the quiet period", func(t *testing.T) {
		f := newWizardFixture(t)
		w := f.initialized(t)

		w.ApplyChange(context.Background(), agreement.FormData{DepositScheme: str("DPS")})
		assert.Eventually(t, func() bool {
			stored, err := w.svc.GetAgreement(context.Background(), w.AgreementID())
			return err == nil && stored.Data.DepositScheme != nil && *stored.Data.DepositScheme == "DPS"
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("burst of changes coalesces into one save", func(t *testing.T) {
		f := newWizardFixture(t)
		w := f.initialized(t)

		w.ApplyChange(context.Background(), agreement.FormData{DepositScheme: str("DPS")})
		w.ApplyChange(context.Background(), agreement.FormData{DepositAmount: f64(1600)})
		w.ApplyChange(context.Background(), agreement.FormData{RentPaymentDay: intPtr(1)})

		assert.Eventually(t, func() bool {
			stored, err := w.svc.GetAgreement(context.Background(), w.AgreementID())
			return err == nil && stored.Data.RentPaymentDay != nil
		}, time.Second, 5*time.Millisecond)
		assert.Equal(t, 1, f.service.updateCount())

		stored, err := w.svc.GetAgreement(context.Background(), w.AgreementID())
		require.NoError(t, err)
		assert.Equal(t, "DPS", *stored.Data.DepositScheme)
		assert.Equal(t, 1600.0, *stored.Data.DepositAmount)
	})

	t.Run("autosave failure never interrupts editing", func(t *testing.T) {
		f := newWizardFixture(t)
		w := f.initialized(t)
		f.service.mu.Lock()
		f.service.failUpdate = errors.New("store down")
		f.service.mu.Unlock()

		w.ApplyChange(context.Background(), agreement.FormData{DepositScheme: str("DPS")})
		time.Sleep(50 * time.Millisecond)

		// Editing continues; the form still holds the change locally.
		assert.Equal(t, "DPS", *w.Form().DepositScheme)
	})
}

func TestWizard_Generate(t *testing.T) {
	t.Run("renders, delegates, and records the artifact", func(t *testing.T) {
		f := newWizardFixture(t)
		w := f.initialized(t)
		w.ApplyChange(context.Background(), completeForm())

		rec, err := w.Generate(context.Background())
		require.NoError(t, err)
		assert.Equal(t, agreement.StatusGenerated, rec.Status)
		require.NotNil(t, rec.GeneratedPDFPath)
		assert.Contains(t, *rec.GeneratedPDFPath, rec.ID.String())
	})

	t.Run("non-compliant draft is blocked", func(t *testing.T) {
		f := newWizardFixture(t)
		w := f.initialized(t)

		_, err := w.Generate(context.Background())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})

	t.Run("generator failure is unavailable", func(t *testing.T) {
		f := newWizardFixture(t)
		w := New(f.service,
			WithDocumentGenerator(&stubGenerator{err: errors.New("renderer crashed")}),
			WithAutosaveDebounce(10*time.Millisecond))
		t.Cleanup(w.Close)
		require.NoError(t, w.Init(context.Background(), f.match.ID, f.match.Landlord.ID))
		w.ApplyChange(context.Background(), completeForm())

		_, err := w.Generate(context.Background())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeUnavailable))
	})

	t.Run("missing generator is rejected", func(t *testing.T) {
		f := newWizardFixture(t)
		w := New(f.service, WithAutosaveDebounce(10*time.Millisecond))
		t.Cleanup(w.Close)
		require.NoError(t, w.Init(context.Background(), f.match.ID, f.match.Landlord.ID))
		w.ApplyChange(context.Background(), completeForm())

		_, err := w.Generate(context.Background())
		assert.True(t, dErrors.HasCode(err, dErrors.CodeInvariantViolation))
	})
}

func TestWizard_CloseFlushesPending(t *testing.T) {
	f := newWizardFixture(t)
	w := New(f.service, WithAutosaveDebounce(time.Hour))
	require.NoError(t, w.Init(context.Background(), f.match.ID, f.match.Landlord.ID))

	w.ApplyChange(context.Background(), agreement.FormData{DepositScheme: str("DPS")})
	w.Close()

	stored, err := w.svc.GetAgreement(context.Background(), w.AgreementID())
	require.NoError(t, err)
	assert.Equal(t, "DPS", *stored.Data.DepositScheme)
}
