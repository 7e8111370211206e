package server

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"go.uber.org/zap"

	"github.com/mahgouba/dealerdocs"
)

// DocumentNumberHeader carries the identifier of a rendered document.
const DocumentNumberHeader = "X-Document-Number"

var (
	errNoSequence        = errors.New("no sequence configured")
	errExhaustedSequence = errors.New("sequence exhausted")
)

// HealthResponse is the GET /health body.
type HealthResponse struct {
	Status    string `json:"status"`
	Timestamp string `json:"timestamp"`
	Version   string `json:"version,omitempty"`
}

// health handles GET /health
func (h *handler) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, HealthResponse{
		Status:    "ok",
		Timestamp: h.opts.Now().UTC().Format(time.RFC3339),
		Version:   h.opts.Version,
	})
}

// PolicyResponse is the GET /policy body. Timeout is a Go duration string.
type PolicyResponse struct {
	dealerdocs.Policy
	Timeout     string `json:"timeout"`
	JPEGQuality int    `json:"jpegQuality"`
}

// policy handles GET /policy
func (h *handler) policy(w http.ResponseWriter, r *http.Request) {
	p := h.opts.Policy
	respondJSON(w, http.StatusOK, PolicyResponse{
		Policy:      p,
		Timeout:     p.Timeout.String(),
		JPEGQuality: p.JPEGQuality(),
	})
}

// IdentifierResponse describes one identifier.
type IdentifierResponse struct {
	Identifier string     `json:"identifier"`
	Kind       string     `json:"kind"`
	Serial     string     `json:"serial"`
	Registered bool       `json:"registered"`
	Source     string     `json:"source,omitempty"`
	CreatedAt  *time.Time `json:"createdAt,omitempty"`
}

func newIdentifierResponse(id dealerdocs.Identifier) IdentifierResponse {
	return IdentifierResponse{
		Identifier: id.String(),
		Kind:       string(id.Kind),
		Serial:     id.Serial,
	}
}

// lookupIdentifier handles GET /identifiers/{formatted}
func (h *handler) lookupIdentifier(w http.ResponseWriter, r *http.Request) {
	formatted := chi.URLParam(r, "formatted")
	id, ok := dealerdocs.ParseIdentifier(formatted)
	if !ok {
		respondError(w, http.StatusBadRequest, fmt.Sprintf("%q is not a formatted identifier", formatted))
		return
	}

	resp := newIdentifierResponse(id)
	if h.opts.Registry != nil {
		rec, err := h.opts.Registry.Lookup(r.Context(), formatted)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		resp.Registered = true
		resp.Source = rec.Source
		resp.CreatedAt = &rec.CreatedAt
	}

	respondJSON(w, http.StatusOK, resp)
}

// issueIdentifier handles POST /identifiers/{kind}?sequential=true
func (h *handler) issueIdentifier(w http.ResponseWriter, r *http.Request) {
	kind, err := dealerdocs.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		h.fail(w, r, err)
		return
	}

	sequential := false
	if v := r.URL.Query().Get("sequential"); v != "" {
		sequential, err = strconv.ParseBool(v)
		if err != nil {
			respondError(w, http.StatusBadRequest, fmt.Sprintf("sequential: %q is not a boolean", v))
			return
		}
	}

	var (
		id     dealerdocs.Identifier
		source string
	)
	switch {
	case sequential:
		if h.opts.Sequencer == nil {
			h.fail(w, r, errNoSequence)
			return
		}
		id, err = h.opts.Sequencer.Next(r.Context(), kind)
		if errors.Is(err, dealerdocs.ErrFormat) {
			err = fmt.Errorf("%w: %w", errExhaustedSequence, err)
		}
		source = "sequence"
	case h.opts.Registry != nil:
		id, err = h.opts.Generator.IssueUnique(r.Context(), kind, h.opts.Registry, 0)
		source = "reserved"
	default:
		id, err = h.opts.Generator.Issue(kind)
	}
	if err != nil {
		h.fail(w, r, err)
		return
	}

	h.logger.Debug("identifier issued",
		zap.String("identifier", id.String()),
		zap.Bool("sequential", sequential),
		zap.String("request_id", RequestIDFrom(r.Context())))

	resp := newIdentifierResponse(id)
	resp.Registered = source != ""
	resp.Source = source
	respondJSON(w, http.StatusCreated, resp)
}

// StyleResponse is the POST /styles/resolve body.
type StyleResponse struct {
	Style      dealerdocs.StyleDescriptor `json:"style"`
	Vars       map[string]string          `json:"vars"`
	BrandClass string                     `json:"brandClass"`
	LogoHeight int                        `json:"logoHeight"`
}

// resolveStyle handles POST /styles/resolve with a YAML or JSON company record.
func (h *handler) resolveStyle(w http.ResponseWriter, r *http.Request) {
	body, err := readBody(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	company, err := dealerdocs.DecodeCompany(body)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	style, err := dealerdocs.Resolve(company)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	respondJSON(w, http.StatusOK, StyleResponse{
		Style:      *style,
		Vars:       style.Vars(),
		BrandClass: dealerdocs.BrandClass(company.Name),
		LogoHeight: style.LogoHeight(),
	})
}

// LogoResponse is the GET /logos/{name} body.
type LogoResponse struct {
	Manufacturer string `json:"manufacturer"`
	Path         string `json:"path"`
	URL          string `json:"url,omitempty"`
}

// lookupLogo handles GET /logos/{name}. Names match exactly.
func (h *handler) lookupLogo(w http.ResponseWriter, r *http.Request) {
	name := chi.URLParam(r, "name")
	path, ok := h.opts.Logos.Lookup(name)
	if !ok {
		respondError(w, http.StatusNotFound, fmt.Sprintf("no logo for manufacturer %q", name))
		return
	}

	resp := LogoResponse{Manufacturer: name, Path: path}
	if h.opts.LogoBaseURL != "" {
		resp.URL = strings.TrimRight(h.opts.LogoBaseURL, "/") + "/" + strings.TrimLeft(path, "/")
	}
	respondJSON(w, http.StatusOK, resp)
}

// previewDocument handles POST /documents/preview. The response is the
// rendered HTML, or the full preview as JSON when the client accepts
// application/json.
func (h *handler) previewDocument(w http.ResponseWriter, r *http.Request) {
	doc, ok := h.decodeDocument(w, r)
	if !ok {
		return
	}

	preview, err := h.opts.Renderer.Preview(r.Context(), doc)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	w.Header().Set(DocumentNumberHeader, preview.Number)
	if strings.Contains(r.Header.Get("Accept"), "application/json") {
		respondJSON(w, http.StatusOK, preview)
		return
	}
	w.Header().Set("Content-Type", dealerdocs.FormatHTML.ContentType())
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte(preview.HTML))
}

// exportDocument handles POST /documents/export?format=pdf|png|jpeg.
// The format defaults to pdf.
func (h *handler) exportDocument(w http.ResponseWriter, r *http.Request) {
	format := dealerdocs.FormatPDF
	if v := r.URL.Query().Get("format"); v != "" {
		f, err := dealerdocs.ParseFormat(v)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		format = f
	}

	doc, ok := h.decodeDocument(w, r)
	if !ok {
		return
	}

	artifact, err := h.opts.Renderer.Export(r.Context(), doc, format)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	w.Header().Set("Content-Type", artifact.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", artifact.Filename()))
	w.Header().Set("Content-Length", strconv.Itoa(len(artifact.Data)))
	w.Header().Set(DocumentNumberHeader, artifact.Preview.Number)
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(artifact.Data)
}

func (h *handler) decodeDocument(w http.ResponseWriter, r *http.Request) (*dealerdocs.Document, bool) {
	body, err := readBody(w, r)
	if err != nil {
		h.fail(w, r, err)
		return nil, false
	}
	doc, err := dealerdocs.DecodeDocument(body)
	if err != nil {
		h.fail(w, r, err)
		return nil, false
	}
	return doc, true
}
