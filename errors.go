package dealerdocs

import "errors"

// Sentinel errors for library operations.
var (
	// Identifier errors.
	ErrFormat          = errors.New("serial does not fit in 6 digits")
	ErrIdentifierTaken = errors.New("identifier already issued")
	ErrIssueExhausted  = errors.New("could not issue a unique identifier")
	ErrInvalidKind     = errors.New("invalid document kind")

	// Style errors.
	ErrInvalidCompanyRecord = errors.New("invalid company record")

	// Document validation errors.
	ErrInvalidDocument  = errors.New("invalid document")
	ErrInvalidFormat    = errors.New("invalid export format")
	ErrInvalidDirection = errors.New("invalid text direction")

	// Rendering errors.
	ErrTemplateRender = errors.New("document template rendering failed")
	ErrExportTimeout  = errors.New("export exceeded the policy timeout")
	ErrPDFGeneration  = errors.New("PDF generation failed")
	ErrImageCapture   = errors.New("image capture failed")
	ErrBrowserConnect = errors.New("failed to connect to browser")
	ErrPageCreate     = errors.New("failed to create browser page")
	ErrPageLoad       = errors.New("failed to load page")

	// Asset loading errors.
	ErrTemplateNotFound = errors.New("template not found")
	ErrInvalidAssetPath = errors.New("invalid asset path")
)
