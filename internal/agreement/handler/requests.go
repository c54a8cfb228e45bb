package handler

// createDraftRequest opens a draft for a match. TemplateID is optional; the
// current default template is used when omitted.
type createDraftRequest struct {
	MatchID    string `json:"match_id"`
	TemplateID string `json:"template_id,omitempty"`
}

type markGeneratedRequest struct {
	PDFPath string `json:"pdf_path"`
}

type linkRequest struct {
	TenancyAgreementID string `json:"tenancy_agreement_id"`
}

type previewResponse struct {
	Document string `json:"document"`
}
