package scraper

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"net/url"
	"strings"
	"time"

	"campusconnect-backend/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
)

const defaultLinkDelay = 500 * time.Millisecond

// HarvestSummary aggregates the outcome of a harvest run
type HarvestSummary struct {
	Documents int `json:"documents"`
	Links     int `json:"links"`
	Skipped   int `json:"skipped"`
}

// Harvester walks the college site and turns it into documents. It runs the
// specialized collectors first, then a bounded generic crawl, then resolves
// the links the collectors deferred.
type Harvester struct {
	fetcher   *Fetcher
	baseURL   string
	linkDelay time.Duration
	maxDepth  int

	seen    map[string]bool
	items   []models.HarvestItem
	skipped int
}

// HarvesterOption is a functional option for Harvester
type HarvesterOption func(*Harvester)

// WithLinkDelay overrides the politeness delay between link resolutions
func WithLinkDelay(d time.Duration) HarvesterOption {
	return func(h *Harvester) {
		h.linkDelay = d
	}
}

// WithMaxDepth overrides the generic crawl depth
func WithMaxDepth(depth int) HarvesterOption {
	return func(h *Harvester) {
		h.maxDepth = depth
	}
}

// NewHarvester creates a harvester rooted at baseURL
func NewHarvester(fetcher *Fetcher, baseURL string, opts ...HarvesterOption) *Harvester {
	h := &Harvester{
		fetcher:   fetcher,
		baseURL:   strings.TrimRight(baseURL, "/"),
		linkDelay: defaultLinkDelay,
		maxDepth:  crawlMaxDepth,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// Run executes a full harvest and returns the collected documents. Failures
// of individual pages or collectors are logged and counted, never fatal; the
// run only aborts when ctx is cancelled.
func (h *Harvester) Run(ctx context.Context) ([]models.Document, HarvestSummary, error) {
	h.seen = make(map[string]bool)
	h.items = nil
	h.skipped = 0

	collectors := []struct {
		name string
		run  func(context.Context) error
	}{
		{"faculty", h.collectFaculty},
		{"college info", h.collectCollegeInfo},
		{"examination info", h.collectExaminationInfo},
		{"student info", h.collectStudentInfo},
	}

	for _, c := range collectors {
		if err := ctx.Err(); err != nil {
			return nil, HarvestSummary{}, err
		}
		log.Printf("Harvesting %s", c.name)
		if err := c.run(ctx); err != nil {
			if ctx.Err() != nil {
				return nil, HarvestSummary{}, ctx.Err()
			}
			log.Printf("Warning: %s collector failed: %v", c.name, err)
			h.skipped++
		}
	}

	log.Printf("Starting generic crawl of %s", h.baseURL)
	if err := h.crawlGeneric(ctx); err != nil {
		if ctx.Err() != nil {
			return nil, HarvestSummary{}, ctx.Err()
		}
		log.Printf("Warning: generic crawl failed: %v", err)
		h.skipped++
	}

	docs, links := h.partition()

	log.Printf("Resolving %d deferred links", len(links))
	resolved, err := h.resolveLinks(ctx, links)
	if err != nil {
		return nil, HarvestSummary{}, err
	}
	docs = append(docs, resolved...)

	summary := HarvestSummary{
		Documents: len(docs),
		Links:     len(links),
		Skipped:   h.skipped,
	}
	log.Printf("Harvest complete: %d documents, %d links resolved, %d skipped",
		summary.Documents, summary.Links, summary.Skipped)

	return docs, summary, nil
}

// addDocument appends a document unless its source URL was already harvested.
// The first writer wins: a later collector cannot reassign the category of a
// URL an earlier collector already claimed.
func (h *Harvester) addDocument(doc *models.Document) bool {
	if doc.Source != "" && h.seen[doc.Source] {
		return false
	}
	if doc.DocID == uuid.Nil {
		doc.DocID = uuid.New()
	}
	if doc.CrawledAt.IsZero() {
		doc.CrawledAt = time.Now().UTC()
	}
	if doc.Source != "" {
		h.seen[doc.Source] = true
	}
	h.items = append(h.items, models.DocumentItem(doc))
	return true
}

// addLink defers a link for the resolution phase, subject to the same
// first-writer-wins dedup as documents
func (h *Harvester) addLink(link *models.PendingLink) bool {
	if h.seen[link.URL] {
		return false
	}
	h.seen[link.URL] = true
	h.items = append(h.items, models.LinkItem(link))
	return true
}

func (h *Harvester) partition() ([]models.Document, []*models.PendingLink) {
	var docs []models.Document
	var links []*models.PendingLink
	for _, item := range h.items {
		switch {
		case item.Document != nil:
			docs = append(docs, *item.Document)
		case item.Link != nil:
			links = append(links, item.Link)
		}
	}
	return docs, links
}

// resolveLinks fetches each deferred link and extracts its content, waiting
// linkDelay between requests to stay polite
func (h *Harvester) resolveLinks(ctx context.Context, links []*models.PendingLink) ([]models.Document, error) {
	var docs []models.Document
	for i, link := range links {
		if i > 0 && h.linkDelay > 0 {
			select {
			case <-time.After(h.linkDelay):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		}

		doc, err := h.resolveLink(ctx, link)
		if err != nil {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			log.Printf("Warning: failed to resolve link %s: %v", link.URL, err)
			h.skipped++
			continue
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}

func (h *Harvester) resolveLink(ctx context.Context, link *models.PendingLink) (*models.Document, error) {
	res, err := h.fetcher.Fetch(ctx, link.URL)
	if err != nil {
		return nil, err
	}

	var text string
	var docType models.DocType

	switch link.Kind {
	case models.LinkKindPDF:
		if !strings.Contains(res.ContentType, "application/pdf") {
			return nil, fmt.Errorf("expected PDF, got content type %q", res.ContentType)
		}
		text, err = ExtractPDF(res.Body)
		if err != nil {
			return nil, err
		}
		docType = models.DocTypePDFDocument
	case models.LinkKindHTML:
		if !strings.Contains(res.ContentType, "text/html") {
			return nil, fmt.Errorf("expected HTML, got content type %q", res.ContentType)
		}
		_, text, err = ExtractHTML(res.Body)
		if err != nil {
			return nil, err
		}
		docType = models.DocTypeHTMLPage
	default:
		return nil, fmt.Errorf("unknown link kind %q", link.Kind)
	}

	if len(text) < MinContentLength {
		return nil, fmt.Errorf("no substantial content (%d chars)", len(text))
	}

	return &models.Document{
		DocID:     uuid.New(),
		Title:     link.Title,
		Content:   text,
		Category:  link.Category,
		Source:    link.URL,
		DocType:   docType,
		CrawledAt: time.Now().UTC(),
	}, nil
}

// fetchHTML retrieves a URL and parses it as a goquery document
func (h *Harvester) fetchHTML(ctx context.Context, pageURL string) (*goquery.Document, error) {
	res, err := h.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		return nil, err
	}
	if !strings.Contains(res.ContentType, "text/html") {
		return nil, fmt.Errorf("unexpected content type %q for %s", res.ContentType, pageURL)
	}
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(res.Body))
	if err != nil {
		return nil, fmt.Errorf("failed to parse HTML from %s: %w", pageURL, err)
	}
	return doc, nil
}

// collectPage harvests one HTML page as a single document with a fixed
// title and category
func (h *Harvester) collectPage(ctx context.Context, pageURL string, category models.Category, title string) {
	res, err := h.fetcher.Fetch(ctx, pageURL)
	if err != nil {
		log.Printf("Warning: failed to fetch %s: %v", pageURL, err)
		h.skipped++
		return
	}

	_, text, err := ExtractHTML(res.Body)
	if err != nil {
		log.Printf("Warning: failed to extract %s: %v", pageURL, err)
		h.skipped++
		return
	}
	if len(text) < MinContentLength {
		log.Printf("Warning: no substantial content on %s page: %s", title, pageURL)
		h.skipped++
		return
	}

	h.addDocument(&models.Document{
		Title:    title,
		Content:  text,
		Category: category,
		Source:   pageURL,
		DocType:  models.DocTypeHTMLPage,
	})
}

// absoluteURL resolves href against base, returning "" for unusable links
func absoluteURL(base, href string) string {
	href = strings.TrimSpace(href)
	if href == "" {
		return ""
	}
	if strings.HasPrefix(href, "tel:") || strings.HasPrefix(href, "mailto:") || strings.HasPrefix(href, "javascript:") {
		return ""
	}
	baseU, err := url.Parse(base)
	if err != nil {
		return ""
	}
	u, err := baseU.Parse(href)
	if err != nil {
		return ""
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return ""
	}
	u.Fragment = ""
	return u.String()
}

// sameHost reports whether rawURL points at the same host as base
func sameHost(base, rawURL string) bool {
	baseU, err := url.Parse(base)
	if err != nil {
		return false
	}
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return u.Host == baseU.Host
}
