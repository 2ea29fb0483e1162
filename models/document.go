package models

import (
	"time"

	"github.com/google/uuid"
)

// DocType describes the kind of source a document was extracted from
type DocType string

const (
	DocTypeHTMLPage      DocType = "html_page"
	DocTypePDFDocument   DocType = "pdf_document"
	DocTypeTabularRecord DocType = "tabular_record"
)

// Document is a unit of harvested content ready for chunking
type Document struct {
	DocID     uuid.UUID         `json:"doc_id"`
	Title     string            `json:"title"`
	Content   string            `json:"content"`
	Category  Category          `json:"category"`
	Source    string            `json:"source"`
	DocType   DocType           `json:"doc_type"`
	CrawledAt time.Time         `json:"crawled_at"`
	Extra     map[string]string `json:"extra,omitempty"`
}

// LinkKind tells the link resolver how to extract content from a pending link
type LinkKind string

const (
	LinkKindPDF  LinkKind = "pdf_link"
	LinkKindHTML LinkKind = "html_link"
)

// PendingLink is a reference discovered during collection whose content is
// fetched later, in the link-resolution phase
type PendingLink struct {
	URL      string   `json:"url"`
	Title    string   `json:"title"`
	Category Category `json:"category"`
	Kind     LinkKind `json:"kind"`
	FoundOn  string   `json:"found_on"`
}

// HarvestItem is either a resolved document or a pending link.
// Exactly one of the two fields is set.
type HarvestItem struct {
	Document *Document
	Link     *PendingLink
}

// DocumentItem wraps a resolved document as a harvest item
func DocumentItem(doc *Document) HarvestItem {
	return HarvestItem{Document: doc}
}

// LinkItem wraps a pending link as a harvest item
func LinkItem(link *PendingLink) HarvestItem {
	return HarvestItem{Link: link}
}
