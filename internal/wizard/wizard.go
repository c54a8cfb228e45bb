// Package wizard drives the ten-step agreement flow: sequential, validity
// gated navigation over a draft, synchronous compliance feedback on every
// field change, and a debounced best-effort auto-save.
package wizard

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"nestly/internal/agreement"
	id "nestly/pkg/domain"
	dErrors "nestly/pkg/domain-errors"
)

const defaultAutosaveDebounce = 800 * time.Millisecond

// AgreementService is the slice of the agreement service the wizard drives.
type AgreementService interface {
	GetDefaultTemplate(ctx context.Context) (*agreement.Template, error)
	CreateDraftAgreement(ctx context.Context, matchID id.MatchID, templateID id.TemplateID, createdBy id.UserID) (*agreement.GeneratedAgreement, error)
	GetAgreement(ctx context.Context, agreementID id.AgreementID) (*agreement.GeneratedAgreement, error)
	UpdateAgreementData(ctx context.Context, agreementID id.AgreementID, partial agreement.FormData) (*agreement.GeneratedAgreement, error)
	MarkAgreementGenerated(ctx context.Context, agreementID id.AgreementID, pdfPath string) (*agreement.GeneratedAgreement, error)
	RenderDraft(ctx context.Context, agreementID id.AgreementID) (string, error)
}

// DocumentGenerator produces the PDF artifact for the terminal step. It
// returns the stored artifact path.
type DocumentGenerator interface {
	GeneratePDF(ctx context.Context, agreementID id.AgreementID, document string) (string, error)
}

// Wizard is the per-draft orchestrator. One instance serves one editing
// session; methods are safe for the debounced auto-save goroutine racing user
// actions.
type Wizard struct {
	svc       AgreementService
	generator DocumentGenerator
	logger    *slog.Logger
	autosave  *debouncer

	mu          sync.Mutex
	agreementID id.AgreementID
	form        agreement.FormData
	compliance  agreement.ComplianceResult
	current     Step
	complete    [StepCount]bool
	pending     agreement.FormData
	hasPending  bool
	saveCtx     context.Context
	initErr     error
	reload      func(ctx context.Context) error
	ready       bool
}

type wizardConfig struct {
	generator DocumentGenerator
	logger    *slog.Logger
	debounce  time.Duration
}

type Option func(*wizardConfig)

func WithDocumentGenerator(g DocumentGenerator) Option {
	return func(c *wizardConfig) { c.generator = g }
}

func WithLogger(logger *slog.Logger) Option {
	return func(c *wizardConfig) { c.logger = logger }
}

// WithAutosaveDebounce overrides the quiet period before an auto-save fires.
func WithAutosaveDebounce(d time.Duration) Option {
	return func(c *wizardConfig) { c.debounce = d }
}

func New(svc AgreementService, opts ...Option) *Wizard {
	cfg := &wizardConfig{debounce: defaultAutosaveDebounce}
	for _, opt := range opts {
		opt(cfg)
	}
	logger := cfg.logger
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	w := &Wizard{
		svc:       svc,
		generator: cfg.generator,
		logger:    logger,
		saveCtx:   context.Background(),
	}
	w.autosave = newDebouncer(cfg.debounce, w.autosaveFire)
	return w
}

// Init opens a fresh draft for a match using the current default template.
// Failure leaves the wizard in a retryable error state instead of a usable
// one; Retry re-runs the same initialization.
func (w *Wizard) Init(ctx context.Context, matchID id.MatchID, createdBy id.UserID) error {
	load := func(ctx context.Context) error {
		tpl, err := w.svc.GetDefaultTemplate(ctx)
		if err != nil {
			return err
		}
		rec, err := w.svc.CreateDraftAgreement(ctx, matchID, tpl.ID, createdBy)
		if err != nil {
			return err
		}
		w.adopt(rec, false)
		return nil
	}
	return w.initialize(ctx, load)
}

// Resume reopens an existing draft.
func (w *Wizard) Resume(ctx context.Context, agreementID id.AgreementID) error {
	load := func(ctx context.Context) error {
		rec, err := w.svc.GetAgreement(ctx, agreementID)
		if err != nil {
			return err
		}
		w.adopt(rec, true)
		return nil
	}
	return w.initialize(ctx, load)
}

// Retry re-runs the failed Init or Resume.
func (w *Wizard) Retry(ctx context.Context) error {
	w.mu.Lock()
	reload := w.reload
	w.mu.Unlock()
	if reload == nil {
		return dErrors.New(dErrors.CodeInvariantViolation, "wizard was never initialized")
	}
	return w.initialize(ctx, reload)
}

func (w *Wizard) initialize(ctx context.Context, load func(ctx context.Context) error) error {
	err := load(ctx)

	w.mu.Lock()
	defer w.mu.Unlock()
	w.reload = load
	w.initErr = err
	w.ready = err == nil
	return err
}

// adopt installs a loaded record as wizard state. A fresh draft starts with
// every step unmarked: completion is earned by a successful Next or forward
// jump, even when match seeding already satisfies a step's validator. Resuming
// recomputes the flags from the form so the session lands on accurate markers.
func (w *Wizard) adopt(rec *agreement.GeneratedAgreement, recompute bool) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.agreementID = rec.ID
	w.form = rec.Data
	w.compliance = agreement.CheckCompliance(rec.Data)
	w.current = 0
	w.pending = agreement.FormData{}
	w.hasPending = false
	for step := Step(0); step < StepCount; step++ {
		w.complete[step] = recompute && len(ValidateStep(step, rec.Data)) == 0 && hasAnyData(step, rec.Data)
	}
}

// hasAnyData keeps optional steps unmarked on a fresh draft: a step with no
// required fields only shows complete once the user has moved past it.
func hasAnyData(step Step, form agreement.FormData) bool {
	switch step {
	case StepOccupants, StepSpecialTerms, StepReview, StepGenerate:
		return false
	case StepPets:
		return form.PetsAllowed != nil
	case StepUtilities:
		return form.CouncilTaxResponsibility != nil
	default:
		return true
	}
}

// Err reports the retryable initialization error, nil once ready.
func (w *Wizard) Err() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.initErr
}

func (w *Wizard) AgreementID() id.AgreementID {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.agreementID
}

func (w *Wizard) CurrentStep() Step {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.current
}

func (w *Wizard) IsComplete(step Step) bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	if step < 0 || step >= StepCount {
		return false
	}
	return w.complete[step]
}

// Form returns a snapshot of the working draft.
func (w *Wizard) Form() agreement.FormData {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.form
}

// Compliance returns the result of the latest synchronous check.
func (w *Wizard) Compliance() agreement.ComplianceResult {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.compliance
}

// ApplyChange merges a field change into the working draft. Two independent
// reactions fire: the compliance evaluator runs synchronously and its result
// is returned, and a debounced auto-save is scheduled. The auto-save is best
// effort; a failure is logged and never interrupts editing.
func (w *Wizard) ApplyChange(ctx context.Context, partial agreement.FormData) agreement.ComplianceResult {
	w.mu.Lock()
	w.form.Merge(partial)
	w.pending.Merge(partial)
	w.hasPending = true
	w.compliance = agreement.CheckCompliance(w.form)
	result := w.compliance
	w.saveCtx = context.WithoutCancel(ctx)
	w.mu.Unlock()

	w.autosave.Trigger()
	return result
}

func (w *Wizard) autosaveFire() {
	w.mu.Lock()
	if !w.hasPending {
		w.mu.Unlock()
		return
	}
	partial := w.pending
	w.pending = agreement.FormData{}
	w.hasPending = false
	ctx := w.saveCtx
	agreementID := w.agreementID
	w.mu.Unlock()

	if _, err := w.svc.UpdateAgreementData(ctx, agreementID, partial); err != nil {
		w.logger.Warn("auto-save failed", "agreement_id", agreementID, "error", err)
	}
}

// Next validates the current step. On field errors it returns them and moves
// nothing. On success it persists the pending changes, marks the step
// complete, and advances. The terminal step has no next.
func (w *Wizard) Next(ctx context.Context) ([]FieldError, error) {
	w.mu.Lock()
	step := w.current
	fieldErrs := ValidateStep(step, w.form)
	w.mu.Unlock()

	if len(fieldErrs) > 0 {
		return fieldErrs, nil
	}
	if err := w.saveNow(ctx); err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.complete[step] = true
	if w.current < StepGenerate {
		w.current++
	}
	return nil, nil
}

// Previous steps back. Always allowed; completion flags are kept.
func (w *Wizard) Previous() {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.current > 0 {
		w.current--
	}
}

// JumpToStep moves directly to a step. Backward jumps are unconditional;
// forward jumps pass through the same validity gate as Next.
func (w *Wizard) JumpToStep(ctx context.Context, target Step) ([]FieldError, error) {
	if target < 0 || target >= StepCount {
		return nil, dErrors.New(dErrors.CodeBadRequest, "step out of range")
	}

	w.mu.Lock()
	step := w.current
	if target <= step {
		w.current = target
		w.mu.Unlock()
		return nil, nil
	}
	fieldErrs := ValidateStep(step, w.form)
	w.mu.Unlock()

	if len(fieldErrs) > 0 {
		return fieldErrs, nil
	}
	if err := w.saveNow(ctx); err != nil {
		return nil, err
	}

	w.mu.Lock()
	defer w.mu.Unlock()
	w.complete[step] = true
	w.current = target
	return nil, nil
}

// saveNow flushes pending changes synchronously. Unlike the auto-save, a
// failure here surfaces to the caller: step transitions must not silently
// lose the save that gates them.
func (w *Wizard) saveNow(ctx context.Context) error {
	w.mu.Lock()
	if !w.hasPending {
		w.mu.Unlock()
		return nil
	}
	partial := w.pending
	w.pending = agreement.FormData{}
	w.hasPending = false
	agreementID := w.agreementID
	w.mu.Unlock()

	if _, err := w.svc.UpdateAgreementData(ctx, agreementID, partial); err != nil {
		// Restore so a retry still carries the data.
		w.mu.Lock()
		restored := partial
		restored.Merge(w.pending)
		w.pending = restored
		w.hasPending = true
		w.mu.Unlock()
		return err
	}
	return nil
}

// Generate completes the terminal step: a final compliance gate, then the
// rendered document goes to the PDF collaborator and the artifact is recorded
// on the agreement.
func (w *Wizard) Generate(ctx context.Context) (*agreement.GeneratedAgreement, error) {
	if w.generator == nil {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "no document generator configured")
	}

	w.mu.Lock()
	agreementID := w.agreementID
	result := agreement.CheckCompliance(w.form)
	w.mu.Unlock()

	if !result.IsCompliant {
		return nil, dErrors.New(dErrors.CodeInvariantViolation, "draft has unresolved compliance errors")
	}
	if err := w.saveNow(ctx); err != nil {
		return nil, err
	}

	document, err := w.svc.RenderDraft(ctx, agreementID)
	if err != nil {
		return nil, err
	}
	pdfPath, err := w.generator.GeneratePDF(ctx, agreementID, document)
	if err != nil {
		return nil, dErrors.Wrap(err, dErrors.CodeUnavailable, "document generation failed")
	}
	return w.svc.MarkAgreementGenerated(ctx, agreementID, pdfPath)
}

// Close cancels any scheduled auto-save and flushes unsaved changes.
func (w *Wizard) Close() {
	w.autosave.Flush()
	w.autosave.Stop()
}
