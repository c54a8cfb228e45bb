// Package handler exposes the agreement engine over HTTP for the marketplace
// frontend.
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5"

	"nestly/internal/agreement"
	id "nestly/pkg/domain"
	dErrors "nestly/pkg/domain-errors"
	"nestly/pkg/platform/httputil"
	"nestly/pkg/requestcontext"
)

// Service defines the agreement operations the handler exposes.
type Service interface {
	GetDefaultTemplate(ctx context.Context) (*agreement.Template, error)
	CreateDraftAgreement(ctx context.Context, matchID id.MatchID, templateID id.TemplateID, createdBy id.UserID) (*agreement.GeneratedAgreement, error)
	GetAgreement(ctx context.Context, agreementID id.AgreementID) (*agreement.GeneratedAgreement, error)
	UpdateAgreementData(ctx context.Context, agreementID id.AgreementID, partial agreement.FormData) (*agreement.GeneratedAgreement, error)
	CheckDraftCompliance(ctx context.Context, agreementID id.AgreementID) (*agreement.ComplianceResult, error)
	RenderDraft(ctx context.Context, agreementID id.AgreementID) (string, error)
	MarkAgreementGenerated(ctx context.Context, agreementID id.AgreementID, pdfPath string) (*agreement.GeneratedAgreement, error)
	LinkToTenancyAgreement(ctx context.Context, agreementID id.AgreementID, tenancyAgreementID id.TenancyAgreementID) (*agreement.GeneratedAgreement, error)
	CancelAgreement(ctx context.Context, agreementID id.AgreementID) (*agreement.GeneratedAgreement, error)
}

type Handler struct {
	service Service
	logger  *slog.Logger
}

func New(service Service, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{service: service, logger: logger}
}

// Register mounts the agreement routes on the router.
func (h *Handler) Register(r chi.Router) {
	r.Get("/templates/default", h.handleGetDefaultTemplate)

	r.Route("/agreements", func(r chi.Router) {
		r.Post("/", h.handleCreateDraft)
		r.Route("/{agreementID}", func(r chi.Router) {
			r.Get("/", h.handleGetAgreement)
			r.Patch("/", h.handleUpdateData)
			r.Get("/compliance", h.handleCheckCompliance)
			r.Post("/preview", h.handlePreview)
			r.Post("/generate", h.handleMarkGenerated)
			r.Post("/link", h.handleLink)
			r.Post("/cancel", h.handleCancel)
		})
	})
}

func (h *Handler) handleGetDefaultTemplate(w http.ResponseWriter, r *http.Request) {
	tpl, err := h.service.GetDefaultTemplate(r.Context())
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, tpl)
}

func (h *Handler) handleCreateDraft(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := requestcontext.RequestID(ctx)

	req, ok := httputil.DecodeAndPrepare[createDraftRequest](w, r, h.logger, ctx, requestID)
	if !ok {
		return
	}

	matchID, err := id.ParseMatchID(req.MatchID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}

	var templateID id.TemplateID
	if req.TemplateID != "" {
		templateID, err = id.ParseTemplateID(req.TemplateID)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
	} else {
		tpl, err := h.service.GetDefaultTemplate(ctx)
		if err != nil {
			httputil.WriteError(w, err)
			return
		}
		templateID = tpl.ID
	}

	createdBy := requestcontext.UserID(ctx)
	if createdBy.IsNil() {
		httputil.WriteError(w, dErrors.New(dErrors.CodeUnauthorized, "acting user is required"))
		return
	}

	rec, err := h.service.CreateDraftAgreement(ctx, matchID, templateID, createdBy)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusCreated, rec)
}

func (h *Handler) handleGetAgreement(w http.ResponseWriter, r *http.Request) {
	agreementID, ok := h.pathAgreementID(w, r)
	if !ok {
		return
	}
	rec, err := h.service.GetAgreement(r.Context(), agreementID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) handleUpdateData(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	agreementID, ok := h.pathAgreementID(w, r)
	if !ok {
		return
	}
	partial, ok := httputil.DecodeAndPrepare[agreement.FormData](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	rec, err := h.service.UpdateAgreementData(ctx, agreementID, partial)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) handleCheckCompliance(w http.ResponseWriter, r *http.Request) {
	agreementID, ok := h.pathAgreementID(w, r)
	if !ok {
		return
	}
	result, err := h.service.CheckDraftCompliance(r.Context(), agreementID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, result)
}

func (h *Handler) handlePreview(w http.ResponseWriter, r *http.Request) {
	agreementID, ok := h.pathAgreementID(w, r)
	if !ok {
		return
	}
	document, err := h.service.RenderDraft(r.Context(), agreementID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, previewResponse{Document: document})
}

func (h *Handler) handleMarkGenerated(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	agreementID, ok := h.pathAgreementID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[markGeneratedRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	rec, err := h.service.MarkAgreementGenerated(ctx, agreementID, req.PDFPath)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) handleLink(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	agreementID, ok := h.pathAgreementID(w, r)
	if !ok {
		return
	}
	req, ok := httputil.DecodeAndPrepare[linkRequest](w, r, h.logger, ctx, requestcontext.RequestID(ctx))
	if !ok {
		return
	}
	tenancyID, err := id.ParseTenancyAgreementID(req.TenancyAgreementID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	rec, err := h.service.LinkToTenancyAgreement(ctx, agreementID, tenancyID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) handleCancel(w http.ResponseWriter, r *http.Request) {
	agreementID, ok := h.pathAgreementID(w, r)
	if !ok {
		return
	}
	rec, err := h.service.CancelAgreement(r.Context(), agreementID)
	if err != nil {
		httputil.WriteError(w, err)
		return
	}
	httputil.WriteJSON(w, http.StatusOK, rec)
}

func (h *Handler) pathAgreementID(w http.ResponseWriter, r *http.Request) (id.AgreementID, bool) {
	agreementID, err := id.ParseAgreementID(chi.URLParam(r, "agreementID"))
	if err != nil {
		httputil.WriteError(w, err)
		return id.AgreementID{}, false
	}
	return agreementID, true
}
