package scraper

import (
	"context"
	"fmt"
	"log"
	"strings"

	"campusconnect-backend/models"

	"github.com/PuerkitoBio/goquery"
)

// collectStudentInfo harvests hostels, the tech magazine, student activity
// pages, the student PDFs, the events listing and a handful of general pages
func (h *Harvester) collectStudentInfo(ctx context.Context) error {
	pages := []struct {
		path     string
		category models.Category
		title    string
	}{
		{"/hostels.php", models.CategoryHostelInfo, "Hostel Facilities"},
		{"/studentActivities/index.php", models.CategoryStudentActivitiesOverview, "Student Activities Overview"},
		{"/studentActivities/studentcouncil.php", models.CategoryStudentCouncil, "Student Council"},
		{"/studentActivities/studentActivityPage.php?type=Professional_Bodies", models.CategoryProfessionalBodies, "Professional Bodies"},
		{"/studentActivities/studentActivityPage.php?type=Student_Clubs", models.CategoryStudentClubs, "Student Clubs"},
		{"/studentActivities/nss.php?type=Extension_Activities", models.CategoryNSSExtension, "NSS & Extension Activities"},
		{"/naac.php", models.CategoryAccreditation, "NAAC Accreditation Information"},
		{"/nba.php", models.CategoryAccreditation, "NBA Accreditation Information"},
		{"/payments/", models.CategoryPaymentsInfo, "Online Payments Information"},
		{"/placements.php", models.CategoryPlacementOverview, "Placement Overview"},
	}
	for _, p := range pages {
		if err := ctx.Err(); err != nil {
			return err
		}
		h.collectPage(ctx, h.baseURL+p.path, p.category, p.title)
	}

	if err := h.collectTechMagazine(ctx); err != nil {
		log.Printf("Warning: failed to collect tech magazine: %v", err)
		h.skipped++
	}

	// Student PDFs served at fixed paths
	pdfs := []struct {
		path     string
		category models.Category
		title    string
	}{
		{"/PDFs/student_activities/it_policy_for_students.pdf", models.CategoryStudentPolicy, "IT Policy for Students"},
		{"/documents/student_incentives.pdf", models.CategoryStudentIncentives, "Student Incentives"},
	}
	for _, p := range pdfs {
		h.addLink(&models.PendingLink{
			URL:      h.baseURL + p.path,
			Title:    p.title,
			Category: p.category,
			Kind:     models.LinkKindPDF,
			FoundOn:  h.baseURL + p.path,
		})
	}

	if err := h.collectEvents(ctx); err != nil {
		log.Printf("Warning: failed to collect events: %v", err)
		h.skipped++
	}

	return nil
}

// collectTechMagazine stores the magazine overview page and defers each
// issue PDF linked from it
func (h *Harvester) collectTechMagazine(ctx context.Context) error {
	pageURL := h.baseURL + "/techmag.php"
	doc, err := h.fetchHTML(ctx, pageURL)
	if err != nil {
		return err
	}

	if text := SelectionText(doc, ".container"); len(text) >= MinContentLength {
		h.addDocument(&models.Document{
			Title:    "Tech Magazine Overview",
			Content:  text,
			Category: models.CategoryTechMagazine,
			Source:   pageURL,
			DocType:  models.DocTypeHTMLPage,
		})
	}

	issues := 0
	doc.Find(`a[href$=".pdf"]`).Each(func(i int, s *goquery.Selection) {
		href, _ := s.Attr("href")
		target := absoluteURL(pageURL, href)
		if target == "" {
			return
		}
		title := CleanText(s.Text())
		if title == "" {
			title = fmt.Sprintf("Tech Magazine Issue %d", i+1)
		}
		if h.addLink(&models.PendingLink{
			URL:      target,
			Title:    "Tech Magazine: " + title,
			Category: models.CategoryTechMagazine,
			Kind:     models.LinkKindPDF,
			FoundOn:  pageURL,
		}) {
			issues++
		}
	})

	log.Printf("Collected tech magazine overview and %d issues", issues)
	return nil
}

// collectEvents parses the events listing into one document per event
func (h *Harvester) collectEvents(ctx context.Context) error {
	pageURL := h.baseURL + "/nb_events.php"
	doc, err := h.fetchHTML(ctx, pageURL)
	if err != nil {
		return err
	}

	count := 0
	doc.Find(".events_list .event_box").Each(func(_ int, s *goquery.Selection) {
		title := CleanText(s.Find(".event_title").Text())
		date := CleanText(s.Find(".event_date").Text())
		description := CleanText(s.Find(".event_description").Text())
		if title == "" || description == "" {
			return
		}

		var builder strings.Builder
		fmt.Fprintf(&builder, "Event Title: %s\nDate: %s\nDescription: %s", title, date, description)

		source := pageURL + "#" + strings.ReplaceAll(title, " ", "_")
		if href, ok := s.Find("a").First().Attr("href"); ok {
			if target := absoluteURL(pageURL, href); target != "" {
				fmt.Fprintf(&builder, "\nRead More: %s", target)
				source = target
			}
		}

		if h.addDocument(&models.Document{
			Title:    "Event: " + title,
			Content:  builder.String(),
			Category: models.CategoryCollegeEvents,
			Source:   source,
			DocType:  models.DocTypeHTMLPage,
			Extra:    map[string]string{"event_date": date},
		}) {
			count++
		}
	})

	log.Printf("Collected %d events", count)
	return nil
}
