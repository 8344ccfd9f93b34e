// Package sitelink matches PDF-derived markdown documents to the site pages
// they were rendered from and attaches navigation metadata to their chunks.
package sitelink

import (
	"encoding/json"
	"path"
	"regexp"
	"strings"

	"github.com/sitelens/sitelens/internal/domain"
)

// DefaultMinConfidence is the threshold a candidate must clear to be linked.
const DefaultMinConfidence = 0.5

// maxNavLinks caps how many navigation links are carried into site context.
const maxNavLinks = 20

// Linker scores candidate site documents against a PDF-derived document.
type Linker struct {
	minConfidence float64
}

func NewLinker(minConfidence float64) *Linker {
	if minConfidence <= 0 {
		minConfidence = DefaultMinConfidence
	}
	return &Linker{minConfidence: minConfidence}
}

// Link returns the highest-confidence site match for pdf, or nil when no
// candidate clears the threshold. A nil result is not an error; it means the
// document has no site context available.
func (l *Linker) Link(pdf *domain.Document, candidates []*domain.Document) (*domain.SiteLink, error) {
	if pdf == nil || pdf.SourceType != domain.SourceTypePDFMarkdown {
		return nil, nil
	}

	pdfSlug := normalizeSlug(pdf.Path)
	pdfTitle := normalizeTitle(pdf.Title())
	pdfDir := parentDir(pdf.Path)

	var best *domain.Document
	bestScore := 0.0
	for _, cand := range candidates {
		if cand == nil || cand.ID == pdf.ID || cand.SourceType == domain.SourceTypePDFMarkdown {
			continue
		}
		score := matchConfidence(pdfSlug, pdfTitle, pdfDir, cand)
		if score > bestScore {
			best, bestScore = cand, score
		}
	}
	if best == nil || bestScore < l.minConfidence {
		return nil, nil
	}

	link := &domain.SiteLink{
		PDFDocumentID:   pdf.ID,
		SiteDocumentID:  best.ID,
		MatchConfidence: bestScore,
		NavLinks:        extractNavLinks(best),
		SiteTitle:       best.Title(),
		SiteURL:         best.URL(),
	}
	if err := domain.ValidateSiteLink(link); err != nil {
		return nil, err
	}
	return link, nil
}

// Annotate attaches the link's site context to every chunk in place. It is a
// no-op for a nil link so callers can pass the Link result straight through.
func Annotate(chunks []domain.Chunk, link *domain.SiteLink) {
	if link == nil {
		return
	}
	ctx := link.Context()
	for i := range chunks {
		chunks[i].SiteContext = ctx
	}
}

// matchConfidence combines slug similarity, title similarity and directory
// structure into a [0,1] confidence. Slug agreement dominates since filenames
// survive the PDF rendering pipeline more reliably than titles.
func matchConfidence(pdfSlug, pdfTitle, pdfDir string, cand *domain.Document) float64 {
	candSlug := normalizeSlug(cand.Path)

	slugScore := tokenOverlap(pdfSlug, candSlug)
	if pdfSlug != "" && pdfSlug == candSlug {
		slugScore = 1.0
	}

	titleScore := tokenOverlap(pdfTitle, normalizeTitle(cand.Title()))

	dirScore := 0.0
	if pdfDir != "" && pdfDir == parentDir(cand.Path) {
		dirScore = 1.0
	}

	return 0.6*slugScore + 0.25*titleScore + 0.15*dirScore
}

var (
	hashPrefixRE   = regexp.MustCompile(`^[0-9a-f]{8,}_`)
	pageSuffixRE   = regexp.MustCompile(`_\d+$`)
	slugSplitRE    = regexp.MustCompile(`[_\-\s.]+`)
	markdownLinkRE = regexp.MustCompile(`!?\[([^\]]+)\]\(([^)\s]+)\)`)
)

// normalizeSlug reduces a path to a comparable page slug: base name without
// extensions, without the crawler's content-hash prefix and without a trailing
// page number.
func normalizeSlug(p string) string {
	base := path.Base(strings.ReplaceAll(p, "\\", "/"))
	for {
		ext := path.Ext(base)
		if ext == "" || ext == base {
			break
		}
		base = strings.TrimSuffix(base, ext)
	}
	base = strings.ToLower(base)
	base = hashPrefixRE.ReplaceAllString(base, "")
	base = pageSuffixRE.ReplaceAllString(base, "")
	return base
}

func normalizeTitle(t string) string {
	return strings.ToLower(strings.TrimSpace(t))
}

func parentDir(p string) string {
	dir := path.Dir(strings.ReplaceAll(p, "\\", "/"))
	if dir == "." || dir == "/" {
		return ""
	}
	return path.Base(dir)
}

// tokenOverlap is the Jaccard similarity of the two strings' token sets.
func tokenOverlap(a, b string) float64 {
	ta := slugTokens(a)
	tb := slugTokens(b)
	if len(ta) == 0 || len(tb) == 0 {
		return 0
	}
	set := make(map[string]struct{}, len(ta))
	for _, tok := range ta {
		set[tok] = struct{}{}
	}
	shared := 0
	union := len(set)
	seen := make(map[string]struct{}, len(tb))
	for _, tok := range tb {
		if _, dup := seen[tok]; dup {
			continue
		}
		seen[tok] = struct{}{}
		if _, ok := set[tok]; ok {
			shared++
		} else {
			union++
		}
	}
	return float64(shared) / float64(union)
}

func slugTokens(s string) []string {
	parts := slugSplitRE.Split(strings.ToLower(s), -1)
	out := parts[:0]
	for _, p := range parts {
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// navLinkJSON mirrors the crawler's metadata shape, which uses either
// label/url or text/href key pairs depending on the export version.
type navLinkJSON struct {
	Label string `json:"label"`
	Text  string `json:"text"`
	URL   string `json:"url"`
	Href  string `json:"href"`
}

// extractNavLinks reads navigation links from the site document's metadata
// when the crawler provided them, falling back to the page's own markdown
// links.
func extractNavLinks(site *domain.Document) []domain.NavLink {
	if raw, ok := site.Metadata["navigation_links"]; ok && raw != "" {
		var parsed []navLinkJSON
		if err := json.Unmarshal([]byte(raw), &parsed); err == nil {
			links := make([]domain.NavLink, 0, len(parsed))
			for _, nl := range parsed {
				label := nl.Label
				if label == "" {
					label = nl.Text
				}
				url := nl.URL
				if url == "" {
					url = nl.Href
				}
				if label == "" || url == "" {
					continue
				}
				links = append(links, domain.NavLink{Label: label, URL: url})
				if len(links) == maxNavLinks {
					break
				}
			}
			if len(links) > 0 {
				return links
			}
		}
	}

	var links []domain.NavLink
	for _, m := range markdownLinkRE.FindAllStringSubmatch(site.Content, maxNavLinks*2) {
		if strings.HasPrefix(m[0], "!") {
			continue
		}
		label, url := strings.TrimSpace(m[1]), m[2]
		if label == "" || strings.HasPrefix(url, "#") {
			continue
		}
		links = append(links, domain.NavLink{Label: label, URL: url})
		if len(links) == maxNavLinks {
			break
		}
	}
	return links
}
