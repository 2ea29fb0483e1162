package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"campusconnect-backend/models"

	"github.com/PuerkitoBio/goquery"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestHarvester(baseURL string) *Harvester {
	h := NewHarvester(NewFetcher(), baseURL, WithLinkDelay(0))
	h.seen = make(map[string]bool)
	return h
}

func TestParseFacultyCard(t *testing.T) {
	card := `<div class="faculty_profile_box">
  <div class="photo"><img src="~/images/staff/ravi.jpg"></div>
  <div class="name_details">
    <h4> Dr. K. Ravi Kumar </h4>
    <p>Professor&nbsp;&amp;</p>
    <p>&nbsp;Head of Department</p>
  </div>
  <div class="more_details"><a href="facultyprofile.php?id=42">View Profile</a></div>
</div>`

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(card))
	require.NoError(t, err)

	h := newTestHarvester("https://college.example")
	member := h.parseFacultyCard(doc.Find(".faculty_profile_box"), "cse")

	assert.Equal(t, "Dr. K. Ravi Kumar", member.name)
	assert.Equal(t, "Professor & Head of Department", member.designation)
	assert.Equal(t, "https://college.example/images/staff/ravi.jpg", member.imageURL)
	assert.Equal(t, "https://college.example/facultyprofile.php?id=42", member.profileURL)
}

func TestAddDocumentFirstWriterWins(t *testing.T) {
	h := newTestHarvester("https://college.example")

	first := &models.Document{
		Title:    "Hostels",
		Content:  "hostel details",
		Category: models.CategoryHostelInfo,
		Source:   "https://college.example/hostels.php",
	}
	second := &models.Document{
		Title:    "Hostels again",
		Content:  "crawled later",
		Category: models.CategoryGenericHTML,
		Source:   "https://college.example/hostels.php",
	}

	assert.True(t, h.addDocument(first))
	assert.False(t, h.addDocument(second))

	docs, _ := h.partition()
	require.Len(t, docs, 1)
	assert.Equal(t, models.CategoryHostelInfo, docs[0].Category)
	assert.NotEqual(t, "", docs[0].DocID.String())
	assert.False(t, docs[0].CrawledAt.IsZero())
}

func TestAddLinkDedupAgainstDocuments(t *testing.T) {
	h := newTestHarvester("https://college.example")

	h.addDocument(&models.Document{
		Title:   "Notice",
		Content: "notice body",
		Source:  "https://college.example/notice.pdf",
	})

	added := h.addLink(&models.PendingLink{
		URL:      "https://college.example/notice.pdf",
		Title:    "Notice",
		Category: models.CategoryCollegeNotifications,
		Kind:     models.LinkKindPDF,
	})
	assert.False(t, added)
}

func TestResolveLinkHTML(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><head><title>Results</title></head><body><p>Semester results are announced on the examination portal every December.</p></body></html>")
	}))
	defer srv.Close()

	h := newTestHarvester(srv.URL)
	doc, err := h.resolveLink(context.Background(), &models.PendingLink{
		URL:      srv.URL + "/results.php",
		Title:    "Results Portal",
		Category: models.CategoryExaminationResults,
		Kind:     models.LinkKindHTML,
	})
	require.NoError(t, err)

	assert.Equal(t, "Results Portal", doc.Title)
	assert.Equal(t, models.CategoryExaminationResults, doc.Category)
	assert.Equal(t, models.DocTypeHTMLPage, doc.DocType)
	assert.Contains(t, doc.Content, "Semester results")
}

func TestResolveLinkRejectsWrongContentType(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body>not a pdf at all, but long enough to pass the length check</body></html>")
	}))
	defer srv.Close()

	h := newTestHarvester(srv.URL)
	_, err := h.resolveLink(context.Background(), &models.PendingLink{
		URL:  srv.URL + "/calendar.pdf",
		Kind: models.LinkKindPDF,
	})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected PDF")
}

func TestResolveLinkSkipsThinContent(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body>tiny</body></html>")
	}))
	defer srv.Close()

	h := newTestHarvester(srv.URL)
	_, err := h.resolveLink(context.Background(), &models.PendingLink{
		URL:  srv.URL + "/thin.php",
		Kind: models.LinkKindHTML,
	})
	assert.Error(t, err)
}

func TestCollectPage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body><p>The hostel provides accommodation for eight hundred students across four blocks.</p></body></html>")
	}))
	defer srv.Close()

	h := newTestHarvester(srv.URL)
	h.collectPage(context.Background(), srv.URL+"/hostels.php", models.CategoryHostelInfo, "Hostel Facilities")

	docs, _ := h.partition()
	require.Len(t, docs, 1)
	assert.Equal(t, "Hostel Facilities", docs[0].Title)
	assert.Equal(t, models.CategoryHostelInfo, docs[0].Category)
	assert.Equal(t, srv.URL+"/hostels.php", docs[0].Source)
}

func TestCollectFaculty(t *testing.T) {
	mux := http.NewServeMux()
	mux.HandleFunc("/facultydirectory.php", func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("dept") != "cse" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, `<html><body>
<div class="faculty_profile_box">
  <div class="photo"><img src="~/images/staff/ravi.jpg"></div>
  <div class="name_details"><h4>Dr. K. Ravi Kumar</h4><p>Professor</p><p></p></div>
  <div class="more_details"><a href="facultyprofile.php?id=42">View Profile</a></div>
</div>
</body></html>`)
	})
	mux.HandleFunc("/facultyprofile.php", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body><p>Ph.D. in Computer Science, twenty years of teaching experience.</p></body></html>")
	})
	srv := httptest.NewServer(mux)
	defer srv.Close()

	h := newTestHarvester(srv.URL)
	err := h.collectFaculty(context.Background())
	require.NoError(t, err)

	docs, _ := h.partition()
	require.Len(t, docs, 1)

	doc := docs[0]
	assert.Equal(t, "Dr. K. Ravi Kumar", doc.Title)
	assert.Equal(t, models.CategoryFacultyCSE, doc.Category)
	assert.Equal(t, models.DocTypeTabularRecord, doc.DocType)
	assert.Contains(t, doc.Content, "Name: Dr. K. Ravi Kumar")
	assert.Contains(t, doc.Content, "Designation: Professor")
	assert.Contains(t, doc.Content, "Ph.D. in Computer Science")
	assert.Equal(t, "Professor", doc.Extra["designation"])
	assert.Equal(t, "cse", doc.Extra["department"])
}

func TestAbsoluteURL(t *testing.T) {
	base := "https://college.example/dir/page.php"

	assert.Equal(t, "https://college.example/about.php", absoluteURL(base, "/about.php"))
	assert.Equal(t, "https://college.example/dir/next.php", absoluteURL(base, "next.php"))
	assert.Equal(t, "https://college.example/x.php", absoluteURL(base, "/x.php#section"))
	assert.Equal(t, "", absoluteURL(base, "tel:+911234567890"))
	assert.Equal(t, "", absoluteURL(base, "mailto:info@college.example"))
	assert.Equal(t, "", absoluteURL(base, "javascript:void(0)"))
	assert.Equal(t, "", absoluteURL(base, ""))
}

func TestSameHost(t *testing.T) {
	assert.True(t, sameHost("https://college.example", "https://college.example/page.php"))
	assert.False(t, sameHost("https://college.example", "https://other.example/page.php"))
}
