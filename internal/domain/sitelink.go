package domain

import "fmt"

// SiteLink relates a PDF-derived markdown document to the site page it was
// rendered from. It is computed at ingestion and read-only afterward; deleting
// either document invalidates it.
type SiteLink struct {
	PDFDocumentID   string
	SiteDocumentID  string
	MatchConfidence float64
	NavLinks        []NavLink
	SiteTitle       string
	SiteURL         string
}

// ValidateSiteLink validates a SiteLink instance.
func ValidateSiteLink(l *SiteLink) error {
	if l == nil {
		return fmt.Errorf("site link cannot be nil")
	}
	if l.PDFDocumentID == "" {
		return fmt.Errorf("site link PDFDocumentID is required")
	}
	if l.SiteDocumentID == "" {
		return fmt.Errorf("site link SiteDocumentID is required")
	}
	if l.MatchConfidence < 0 || l.MatchConfidence > 1 {
		return fmt.Errorf("site link MatchConfidence must be in [0,1], got %f", l.MatchConfidence)
	}
	return nil
}

// Context converts the link into the SiteContext attached to chunks.
func (l *SiteLink) Context() *SiteContext {
	if l == nil {
		return nil
	}
	return &SiteContext{
		SiteTitle: l.SiteTitle,
		SiteURL:   l.SiteURL,
		NavLinks:  l.NavLinks,
	}
}
