package scraper

import (
	"context"
	"fmt"
	"log"
	"strings"

	"campusconnect-backend/models"

	"github.com/PuerkitoBio/goquery"
)

// collectFaculty walks the faculty directory for every department and builds
// one document per faculty member, enriched with the member's profile page
func (h *Harvester) collectFaculty(ctx context.Context) error {
	for _, dept := range models.Departments {
		if err := ctx.Err(); err != nil {
			return err
		}

		dirURL := fmt.Sprintf("%s/facultydirectory.php?dept=%s", h.baseURL, dept)
		doc, err := h.fetchHTML(ctx, dirURL)
		if err != nil {
			log.Printf("Warning: failed to fetch faculty directory for %s: %v", dept, err)
			h.skipped++
			continue
		}

		count := 0
		doc.Find(".faculty_profile_box").Each(func(_ int, s *goquery.Selection) {
			member := h.parseFacultyCard(s, dept)
			if member.name == "" {
				return
			}

			profileText := ""
			if member.profileURL != "" {
				if pdoc, err := h.fetchHTML(ctx, member.profileURL); err != nil {
					log.Printf("Warning: failed to fetch faculty profile %s: %v", member.profileURL, err)
				} else {
					profileText = CleanText(pdoc.Text())
				}
			}

			source := member.profileURL
			if source == "" {
				source = dirURL + "#" + strings.ReplaceAll(member.name, " ", "_")
			}

			content := fmt.Sprintf(
				"Name: %s\nDesignation: %s\nDepartment: %s\nProfile URL: %s\nImage URL: %s\nDetails: %s",
				member.name, member.designation, dept, member.profileURL, member.imageURL, profileText,
			)

			if h.addDocument(&models.Document{
				Title:    member.name,
				Content:  content,
				Category: models.FacultyCategory(dept),
				Source:   source,
				DocType:  models.DocTypeTabularRecord,
				Extra: map[string]string{
					"designation": member.designation,
					"department":  dept,
					"image_url":   member.imageURL,
				},
			}) {
				count++
			}
		})

		log.Printf("Collected %d faculty from %s", count, dept)
	}
	return nil
}

type facultyCard struct {
	name        string
	designation string
	imageURL    string
	profileURL  string
}

func (h *Harvester) parseFacultyCard(s *goquery.Selection, dept string) facultyCard {
	name := CleanText(s.Find(".name_details h4").Text())

	// Designation is split over two paragraphs, padded with non-breaking spaces
	desig1 := CleanText(strings.ReplaceAll(s.Find(".name_details p").Eq(0).Text(), "\u00a0", " "))
	desig2 := CleanText(strings.ReplaceAll(s.Find(".name_details p").Eq(1).Text(), "\u00a0", " "))
	designation := strings.TrimSpace(desig1 + " " + desig2)

	imageURL := ""
	if img, ok := s.Find(".photo img").Attr("src"); ok && img != "" {
		imageURL = h.baseURL + strings.ReplaceAll(img, "~", "")
	}

	profileURL := ""
	if href, ok := s.Find(".more_details a").Attr("href"); ok && href != "" {
		profileURL = h.baseURL + "/" + strings.TrimPrefix(href, "/")
	}

	return facultyCard{
		name:        name,
		designation: designation,
		imageURL:    imageURL,
		profileURL:  profileURL,
	}
}
