package scraper

import (
	"context"
	"log"
	"strings"

	"campusconnect-backend/models"

	"github.com/PuerkitoBio/goquery"
)

// departmentPageCodes are the department pages with dedicated content
var departmentPageCodes = []string{"cse", "it", "ece", "eee", "mech"}

// collectCollegeInfo harvests the about page, the achievements snippets, the
// research cell, the department pages and the placements notice table
func (h *Harvester) collectCollegeInfo(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	// About page
	if doc, err := h.fetchHTML(ctx, h.baseURL+"/about.php"); err != nil {
		log.Printf("Warning: failed to fetch about page: %v", err)
		h.skipped++
	} else if text := SelectionText(doc, ".description.mx-2 p"); len(text) >= MinContentLength {
		h.addDocument(&models.Document{
			Title:    "About GMRIT",
			Content:  text,
			Category: models.CategoryCollegeInfo,
			Source:   h.baseURL + "/about.php",
			DocType:  models.DocTypeHTMLPage,
		})
	}

	// Achievements page carries short rankings/accreditations/placements blurbs
	if doc, err := h.fetchHTML(ctx, h.baseURL+"/newAbout.php"); err != nil {
		log.Printf("Warning: failed to fetch achievements page: %v", err)
		h.skipped++
	} else {
		snippets := []struct {
			heading  string
			title    string
			category models.Category
		}{
			{"Rankings", "Rankings", models.CategoryRanking},
			{"Accreditations", "Accreditations", models.CategoryAccreditation},
			{"Placements", "Placements", models.CategoryPlacementOverview},
		}
		for _, sn := range snippets {
			text := headingParagraph(doc, sn.heading)
			if text == "" {
				continue
			}
			h.addDocument(&models.Document{
				Title:    sn.title,
				Content:  text,
				Category: sn.category,
				Source:   h.baseURL + "/newAbout.php#" + strings.ToLower(sn.heading),
				DocType:  models.DocTypeHTMLPage,
			})
		}
	}

	// Research cell
	if doc, err := h.fetchHTML(ctx, h.baseURL+"/researchcell.php"); err != nil {
		log.Printf("Warning: failed to fetch research cell page: %v", err)
		h.skipped++
	} else if text := SelectionText(doc, ".container"); len(text) >= MinContentLength {
		h.addDocument(&models.Document{
			Title:    "Research & Development Cell",
			Content:  text,
			Category: models.CategoryResearch,
			Source:   h.baseURL + "/researchcell.php",
			DocType:  models.DocTypeHTMLPage,
		})
	}

	// Department pages
	for _, code := range departmentPageCodes {
		if err := ctx.Err(); err != nil {
			return err
		}
		deptURL := h.baseURL + "/department.php?code=" + code
		doc, err := h.fetchHTML(ctx, deptURL)
		if err != nil {
			log.Printf("Warning: failed to fetch department page %s: %v", code, err)
			h.skipped++
			continue
		}
		title := CleanText(doc.Find("h1").First().Text())
		if title == "" {
			title = "Department " + strings.ToUpper(code)
		}
		text := SelectionText(doc, ".container")
		if len(text) < MinContentLength {
			log.Printf("Warning: no substantial content on department page %s", code)
			h.skipped++
			continue
		}
		h.addDocument(&models.Document{
			Title:    title,
			Content:  text,
			Category: models.CategoryDepartmentInfo,
			Source:   deptURL,
			DocType:  models.DocTypeHTMLPage,
			Extra:    map[string]string{"department": code},
		})
	}

	// Placements notice table: rows link to per-notice pages and PDFs
	noticeURL := h.baseURL + "/nb_placements.php"
	if doc, err := h.fetchHTML(ctx, noticeURL); err != nil {
		log.Printf("Warning: failed to fetch placements notices: %v", err)
		h.skipped++
	} else {
		doc.Find("table tbody tr").Each(func(_ int, row *goquery.Selection) {
			linkTag := row.Find("a").First()
			title := CleanText(linkTag.Text())
			href, _ := linkTag.Attr("href")
			target := absoluteURL(noticeURL, href)
			if title == "" || target == "" {
				return
			}
			h.addLink(&models.PendingLink{
				URL:      target,
				Title:    "Placement Notice: " + title,
				Category: models.CategoryPlacementRecord,
				Kind:     linkKindFor(target),
				FoundOn:  noticeURL,
			})
		})
	}

	return nil
}

// headingParagraph returns the cleaned text of the paragraph following the
// first h5 whose text contains heading
func headingParagraph(doc *goquery.Document, heading string) string {
	var out string
	doc.Find("h5").EachWithBreak(func(_ int, s *goquery.Selection) bool {
		if strings.Contains(s.Text(), heading) {
			out = CleanText(s.Next().Text())
			return false
		}
		return true
	})
	return out
}

// linkKindFor picks the resolver for a link by its extension
func linkKindFor(rawURL string) models.LinkKind {
	if strings.HasSuffix(strings.ToLower(rawURL), ".pdf") {
		return models.LinkKindPDF
	}
	return models.LinkKindHTML
}
