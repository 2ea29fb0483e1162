package scraper

import (
	"context"
	"fmt"
	"log"
	"regexp"
	"strings"

	"campusconnect-backend/models"

	"github.com/PuerkitoBio/goquery"
)

// oldQuestionPapersURL lives on a separate portal outside the college domain
const oldQuestionPapersURL = "http://115.241.205.5/wbc/exams/downloadexampapers.aspx"

var windowOpenRe = regexp.MustCompile(`window\.open\('([^']+)'`)

// collectExaminationInfo harvests the examination section: results,
// timetables and notification link lists, academic calendar PDFs, the two
// regulation PDFs, the old-question-papers portal and the evaluation page
func (h *Harvester) collectExaminationInfo(ctx context.Context) error {
	lists := []struct {
		path        string
		category    models.Category
		titlePrefix string
	}{
		{"/examination/results.php", models.CategoryExaminationResults, "Exam Result"},
		{"/examination/timetables.php", models.CategoryExaminationTimetables, "Exam Timetable"},
		{"/examination/notifications.php", models.CategoryCollegeNotifications, "Notification"},
	}
	for _, l := range lists {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := h.collectLinkList(ctx, h.baseURL+l.path, l.category, l.titlePrefix); err != nil {
			log.Printf("Warning: failed to process link list %s: %v", l.path, err)
			h.skipped++
		}
	}

	if err := h.collectAcademicCalendars(ctx); err != nil {
		log.Printf("Warning: failed to collect academic calendars: %v", err)
		h.skipped++
	}

	// Regulations are served as direct PDFs with no index page
	for _, path := range []string{
		"/examination/docs/Autonomy_Regulations_Examinations.pdf",
		"/examination/docs/Transitory_Regulations.pdf",
	} {
		pdfURL := h.baseURL + path
		h.addLink(&models.PendingLink{
			URL:      pdfURL,
			Title:    "Exam Regulation: " + path[strings.LastIndex(path, "/")+1:],
			Category: models.CategoryExaminationRegulations,
			Kind:     models.LinkKindPDF,
			FoundOn:  pdfURL,
		})
	}

	if err := h.collectOldQuestionPapers(ctx); err != nil {
		log.Printf("Warning: failed to collect old question papers: %v", err)
		h.skipped++
	}

	// Evaluation information sits on the examination index page
	h.collectPage(ctx, h.baseURL+"/examination/index.php",
		models.CategoryExaminationEvaluation, "Examination Evaluation Information")

	return nil
}

// collectLinkList defers every same-host content link on a listing page,
// skipping navigation chrome
func (h *Harvester) collectLinkList(ctx context.Context, pageURL string, category models.Category, titlePrefix string) error {
	doc, err := h.fetchHTML(ctx, pageURL)
	if err != nil {
		return err
	}

	found := 0
	doc.Find("a[href]").Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		target := absoluteURL(pageURL, href)
		if target == "" || !sameHost(h.baseURL, target) {
			return
		}

		// Links inside navigation chrome are site furniture, not content
		if s.Closest("nav, header, footer, .sidebar, .menu").Length() > 0 {
			return
		}

		text := CleanText(s.Text())
		if text == "" {
			text = CleanText(s.Parent().Text())
		}
		if text == "" {
			text = CleanText(s.Siblings().Text())
		}
		if text == "" {
			text = fmt.Sprintf("Link %d", i+1)
		}

		if h.addLink(&models.PendingLink{
			URL:      target,
			Title:    titlePrefix + ": " + text,
			Category: category,
			Kind:     linkKindFor(target),
			FoundOn:  pageURL,
		}) {
			found++
		}
	})

	log.Printf("Found %d items on %s", found, pageURL)
	return nil
}

// collectAcademicCalendars picks up calendar PDFs linked by href or opened
// through window.open onclick handlers
func (h *Harvester) collectAcademicCalendars(ctx context.Context) error {
	pageURL := h.baseURL + "/examination/academic_calendars.php"
	doc, err := h.fetchHTML(ctx, pageURL)
	if err != nil {
		return err
	}

	found := 0
	doc.Find(`a[href$=".pdf"], button[onclick*=".pdf"]`).Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		if href == "" {
			if onclick, ok := s.Attr("onclick"); ok {
				if m := windowOpenRe.FindStringSubmatch(onclick); m != nil {
					href = m[1]
				}
			}
		}
		target := absoluteURL(pageURL, href)
		if target == "" {
			return
		}

		title := CleanText(s.Text())
		if title == "" {
			title = fmt.Sprintf("Academic Calendar %d", i+1)
		}

		if h.addLink(&models.PendingLink{
			URL:      target,
			Title:    "Academic Calendar: " + title,
			Category: models.CategoryAcademicCalendar,
			Kind:     models.LinkKindPDF,
			FoundOn:  pageURL,
		}) {
			found++
		}
	})

	log.Printf("Found %d academic calendars", found)
	return nil
}

// collectOldQuestionPapers scrapes the external exam-papers portal. The
// portal mostly hides papers behind form submissions, so when no direct PDF
// links surface a pointer document is stored instead.
func (h *Harvester) collectOldQuestionPapers(ctx context.Context) error {
	doc, err := h.fetchHTML(ctx, oldQuestionPapersURL)
	if err != nil {
		return err
	}

	found := 0
	doc.Find("a[href]").Each(func(_ int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		text := CleanText(s.Text())
		if href == "" || text == "" {
			return
		}
		if !strings.Contains(strings.ToLower(href), ".pdf") || !strings.HasPrefix(href, "http") {
			return
		}
		if h.addLink(&models.PendingLink{
			URL:      strings.TrimSpace(href),
			Title:    "Old Question Paper: " + text,
			Category: models.CategoryOldQuestionPapers,
			Kind:     models.LinkKindPDF,
			FoundOn:  oldQuestionPapersURL,
		}) {
			found++
		}
	})

	if found == 0 {
		log.Printf("Warning: no direct PDF links on old question papers portal, storing pointer document")
		h.addDocument(&models.Document{
			Title: "Old Question Papers Portal Info",
			Content: "Information about old question papers might require selecting options or using a search function on the dedicated portal. " +
				"Please visit the link directly: " + oldQuestionPapersURL,
			Category: models.CategoryOldQuestionPapers,
			Source:   oldQuestionPapersURL,
			DocType:  models.DocTypeHTMLPage,
		})
	}

	return nil
}
