package agreement

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"nestly/internal/agreement/metrics"
	"nestly/internal/domain"
	id "nestly/pkg/domain"
	dErrors "nestly/pkg/domain-errors"
	audit "nestly/pkg/platform/audit"
	"nestly/pkg/platform/sentinel"
	"nestly/pkg/requestcontext"
)

// AuditEmitter is the slice of the audit publisher the service needs.
type AuditEmitter interface {
	Emit(ctx context.Context, event audit.Event) error
}

// Service orchestrates the agreement draft lifecycle: creating drafts seeded
// from a match, merging partial form updates, and driving status transitions.
// Persistence is delegated to the injected stores; no globals.
type Service struct {
	templates  TemplateStore
	agreements AgreementStore
	matches    MatchReader
	logger     *slog.Logger
	metrics    *metrics.Metrics
	auditor    AuditEmitter
}

type serviceConfig struct {
	logger  *slog.Logger
	metrics *metrics.Metrics
	auditor AuditEmitter
}

// Option configures optional service collaborators.
type Option func(*serviceConfig)

func WithLogger(logger *slog.Logger) Option {
	return func(c *serviceConfig) { c.logger = logger }
}

func WithMetrics(m *metrics.Metrics) Option {
	return func(c *serviceConfig) { c.metrics = m }
}

func WithAuditor(a AuditEmitter) Option {
	return func(c *serviceConfig) { c.auditor = a }
}

func NewService(templates TemplateStore, agreements AgreementStore, matches MatchReader, opts ...Option) *Service {
	cfg := &serviceConfig{}
	for _, opt := range opts {
		opt(cfg)
	}
	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Service{
		templates:  templates,
		agreements: agreements,
		matches:    matches,
		logger:     logger,
		metrics:    cfg.metrics,
		auditor:    cfg.auditor,
	}
}

// GetDefaultTemplate selects the active system template with the highest
// version.
func (s *Service) GetDefaultTemplate(ctx context.Context) (*Template, error) {
	tpl, err := s.templates.FindDefault(ctx)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "no active system template available")
		}
		s.logger.ErrorContext(ctx, "default template lookup failed", "error", err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to load agreement template")
	}
	return tpl, nil
}

// CreateDraftAgreement opens a draft for a match, seeding the form with the
// values already known from the match and its embedded property. The match
// and template loads run in parallel; either missing is a NotFound.
func (s *Service) CreateDraftAgreement(ctx context.Context, matchID id.MatchID, templateID id.TemplateID, createdBy id.UserID) (*GeneratedAgreement, error) {
	start := time.Now()

	var (
		match *domain.Match
		tpl   *Template
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := s.matches.FindByID(gctx, matchID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "match not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load match")
		}
		match = m
		return nil
	})
	g.Go(func() error {
		t, err := s.templates.FindByID(gctx, templateID)
		if err != nil {
			if errors.Is(err, sentinel.ErrNotFound) {
				return dErrors.New(dErrors.CodeNotFound, "template not found")
			}
			return dErrors.Wrap(err, dErrors.CodeInternal, "failed to load agreement template")
		}
		tpl = t
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	now := requestcontext.Now(ctx)
	rec := &GeneratedAgreement{
		ID:         id.AgreementID(uuid.New()),
		TemplateID: tpl.ID,
		MatchID:    match.ID,
		LandlordID: match.Landlord.ID,
		RenterID:   match.Renter.ID,
		PropertyID: match.Property.ID,
		Data:       seedFormData(match),
		Status:     StatusDraft,
		CreatedAt:  now,
		UpdatedAt:  now,
		CreatedBy:  createdBy,
	}
	if match.Agency != nil {
		agencyID := match.Agency.ID
		rec.AgencyID = &agencyID
	}

	if err := s.agreements.Create(ctx, rec); err != nil {
		s.logger.ErrorContext(ctx, "draft creation failed",
			"match_id", matchID,
			"template_id", templateID,
			"error", err,
		)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to create agreement draft")
	}

	s.emitAudit(ctx, rec, audit.EventDraftCreated, "draft opened from match")
	s.metrics.IncrementTransition(string(StatusDraft))
	s.metrics.ObserveCreateDraftLatency(time.Since(start))

	s.logger.InfoContext(ctx, "agreement draft created",
		"agreement_id", rec.ID,
		"match_id", matchID,
		"template_id", tpl.ID,
	)
	return rec, nil
}

// seedFormData pulls the values the marketplace already knows into the draft
// so the landlord never retypes them. Furnishing level is normalized to
// lower case to match the form vocabulary.
func seedFormData(match *domain.Match) FormData {
	prop := match.Property
	form := FormData{
		LandlordName:    ptr(match.Landlord.Name),
		LandlordAddress: ptr(match.Landlord.Address),
		TenantName:      ptr(match.Renter.Name),
		PropertyAddress: ptr(prop.Address),
		FurnishingLevel: ptr(strings.ToLower(string(prop.FurnishingLevel))),
		RentAmount:      ptr(prop.MonthlyRent),
		HasGas:          ptr(prop.HasGas),
	}
	if match.Landlord.Email != "" {
		form.LandlordEmail = ptr(match.Landlord.Email)
	}
	if match.Landlord.Phone != "" {
		form.LandlordPhone = ptr(match.Landlord.Phone)
	}
	if match.Renter.Email != "" {
		form.TenantEmail = ptr(match.Renter.Email)
	}
	if match.Renter.Phone != "" {
		form.TenantPhone = ptr(match.Renter.Phone)
	}
	if match.Agency != nil {
		form.AgencyName = ptr(match.Agency.Name)
	}
	if prop.Postcode != "" {
		form.PropertyPostcode = ptr(prop.Postcode)
	}
	if prop.EPCRating != "" {
		form.EPCRating = ptr(prop.EPCRating)
	}
	if prop.PRSNumber != "" {
		form.PRSRegistrationNumber = ptr(prop.PRSNumber)
	}
	if prop.CouncilTaxBand != "" {
		form.CouncilTaxBand = ptr(prop.CouncilTaxBand)
	}
	return form
}

func ptr[T any](v T) *T { return &v }

// GetAgreement fetches a draft by ID.
func (s *Service) GetAgreement(ctx context.Context, agreementID id.AgreementID) (*GeneratedAgreement, error) {
	return s.fetch(ctx, agreementID, "failed to load agreement")
}

// UpdateAgreementData shallow-merges a partial form update onto the stored
// draft: set fields win, omitted fields are retained. Safe to call repeatedly
// with overlapping partials - the merge is idempotent per field, which is what
// lets the debounced auto-save race explicit step saves.
func (s *Service) UpdateAgreementData(ctx context.Context, agreementID id.AgreementID, partial FormData) (*GeneratedAgreement, error) {
	rec, err := s.fetch(ctx, agreementID, "failed to update agreement")
	if err != nil {
		return nil, err
	}

	rec.Data.Merge(partial)
	rec.UpdatedAt = requestcontext.Now(ctx)

	if err := s.agreements.Update(ctx, rec); err != nil {
		s.logger.ErrorContext(ctx, "agreement update failed", "agreement_id", agreementID, "error", err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to update agreement")
	}

	s.emitAudit(ctx, rec, audit.EventDataUpdated, "form data merged")
	return rec, nil
}

// MarkAgreementGenerated records the PDF artifact and moves the draft to
// generated.
func (s *Service) MarkAgreementGenerated(ctx context.Context, agreementID id.AgreementID, pdfPath string) (*GeneratedAgreement, error) {
	if pdfPath == "" {
		return nil, dErrors.New(dErrors.CodeBadRequest, "pdf path is required")
	}
	rec, err := s.fetch(ctx, agreementID, "failed to mark agreement generated")
	if err != nil {
		return nil, err
	}

	if !rec.Status.CanTransitionTo(StatusGenerated) {
		return nil, dErrors.New(dErrors.CodeConflict, "agreement cannot be generated from status "+string(rec.Status))
	}

	now := requestcontext.Now(ctx)
	rec.Status = StatusGenerated
	rec.GeneratedPDFPath = &pdfPath
	rec.GeneratedAt = &now
	rec.UpdatedAt = now

	if err := s.agreements.Update(ctx, rec); err != nil {
		s.logger.ErrorContext(ctx, "mark generated failed", "agreement_id", agreementID, "error", err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to mark agreement generated")
	}

	s.emitAudit(ctx, rec, audit.EventGenerated, "pdf artifact recorded")
	s.metrics.IncrementTransition(string(StatusGenerated))
	return rec, nil
}

// LinkToTenancyAgreement attaches the signable tenancy-agreement record and
// moves the draft to sent_for_signing.
func (s *Service) LinkToTenancyAgreement(ctx context.Context, agreementID id.AgreementID, tenancyAgreementID id.TenancyAgreementID) (*GeneratedAgreement, error) {
	if tenancyAgreementID.IsNil() {
		return nil, dErrors.New(dErrors.CodeBadRequest, "tenancy agreement id is required")
	}
	rec, err := s.fetch(ctx, agreementID, "failed to link agreement for signing")
	if err != nil {
		return nil, err
	}

	if !rec.Status.CanTransitionTo(StatusSentForSigning) {
		return nil, dErrors.New(dErrors.CodeConflict, "agreement cannot be sent for signing from status "+string(rec.Status))
	}

	rec.Status = StatusSentForSigning
	rec.TenancyAgreementID = &tenancyAgreementID
	rec.UpdatedAt = requestcontext.Now(ctx)

	if err := s.agreements.Update(ctx, rec); err != nil {
		s.logger.ErrorContext(ctx, "link for signing failed", "agreement_id", agreementID, "error", err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to link agreement for signing")
	}

	s.emitAudit(ctx, rec, audit.EventSentForSigning, "linked to tenancy agreement "+tenancyAgreementID.String())
	s.metrics.IncrementTransition(string(StatusSentForSigning))
	return rec, nil
}

// CancelAgreement abandons a draft. Allowed from any state except signed or
// already cancelled.
func (s *Service) CancelAgreement(ctx context.Context, agreementID id.AgreementID) (*GeneratedAgreement, error) {
	rec, err := s.fetch(ctx, agreementID, "failed to cancel agreement")
	if err != nil {
		return nil, err
	}

	if !rec.Status.CanTransitionTo(StatusCancelled) {
		return nil, dErrors.New(dErrors.CodeConflict, "agreement cannot be cancelled from status "+string(rec.Status))
	}

	rec.Status = StatusCancelled
	rec.UpdatedAt = requestcontext.Now(ctx)

	if err := s.agreements.Update(ctx, rec); err != nil {
		s.logger.ErrorContext(ctx, "cancel failed", "agreement_id", agreementID, "error", err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, "failed to cancel agreement")
	}

	s.emitAudit(ctx, rec, audit.EventCancelled, "draft cancelled")
	s.metrics.IncrementTransition(string(StatusCancelled))
	return rec, nil
}

// CheckDraftCompliance runs the compliance evaluator over the stored draft
// and records the outcome metric.
func (s *Service) CheckDraftCompliance(ctx context.Context, agreementID id.AgreementID) (*ComplianceResult, error) {
	rec, err := s.fetch(ctx, agreementID, "failed to load agreement")
	if err != nil {
		return nil, err
	}
	result := CheckCompliance(rec.Data)
	s.metrics.ObserveComplianceCheck(result.IsCompliant, len(result.Errors))
	return &result, nil
}

// RenderDraft renders the draft against its template for preview.
func (s *Service) RenderDraft(ctx context.Context, agreementID id.AgreementID) (string, error) {
	rec, err := s.fetch(ctx, agreementID, "failed to load agreement")
	if err != nil {
		return "", err
	}
	tpl, err := s.templates.FindByID(ctx, rec.TemplateID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return "", dErrors.New(dErrors.CodeNotFound, "template not found")
		}
		return "", dErrors.Wrap(err, dErrors.CodeInternal, "failed to load agreement template")
	}
	return RenderTemplate(*tpl, rec.Data), nil
}

// fetch loads an agreement, translating store errors. failMsg is the fixed
// user-facing message for non-NotFound persistence failures on the calling
// operation.
func (s *Service) fetch(ctx context.Context, agreementID id.AgreementID, failMsg string) (*GeneratedAgreement, error) {
	rec, err := s.agreements.FindByID(ctx, agreementID)
	if err != nil {
		if errors.Is(err, sentinel.ErrNotFound) {
			return nil, dErrors.New(dErrors.CodeNotFound, "agreement not found")
		}
		s.logger.ErrorContext(ctx, "agreement lookup failed", "agreement_id", agreementID, "error", err)
		return nil, dErrors.Wrap(err, dErrors.CodeInternal, failMsg)
	}
	return rec, nil
}

func (s *Service) emitAudit(ctx context.Context, rec *GeneratedAgreement, action audit.AuditEvent, detail string) {
	if s.auditor == nil {
		return
	}
	event := audit.Event{
		AgreementID: rec.ID,
		MatchID:     rec.MatchID,
		ActorID:     requestcontext.UserID(ctx),
		Action:      string(action),
		Detail:      detail,
		RequestID:   requestcontext.RequestID(ctx),
	}
	if err := s.auditor.Emit(ctx, event); err != nil {
		// Audit must not fail the operation.
		s.logger.WarnContext(ctx, "audit emit failed", "action", action, "error", err)
	}
}
