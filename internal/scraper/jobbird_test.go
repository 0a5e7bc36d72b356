package scraper

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func mustParseHTML(t *testing.T, html string) *goquery.Document {
	t.Helper()
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		t.Fatalf("parse HTML: %v", err)
	}
	return doc
}

func TestJobBirdFetchPostings_Paginates(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/nl/vacature", func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Query().Get("page") {
		case "1":
			fmt.Fprintf(w, `<html><body>
				<article class="vacancy-card">
					<a class="vacancy-card__title" href="%s/vacature/1">Backend Developer</a>
					<span class="vacancy-card__company">Bol.com</span>
					<span class="vacancy-card__location">utrecht, nederland</span>
					<span class="vacancy-card__hours">32 uur</span>
					<span class="vacancy-card__date">01 november 2020</span>
				</article>
				<article class="vacancy-card">
					<a class="vacancy-card__title" href="%s/vacature/gone">Tester</a>
					<span class="vacancy-card__company">KPN</span>
					<span class="vacancy-card__location">Amsterdam</span>
				</article>
			</body></html>`, srv.URL, srv.URL)
		default:
			fmt.Fprint(w, `<html><body><p>Geen resultaten</p></body></html>`)
		}
	})
	mux.HandleFunc("/vacature/gone", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	mux.HandleFunc("/vacature/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body><section class="vacancy-description">Uitdagende rol.</section></body></html>`)
	})

	s := NewJobBirdScraper(srv.Client(), discardLogger())
	s.searchURL = srv.URL + "/nl/vacature?s=ict"

	postings, err := s.FetchPostings(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// The second card's detail page 404s, so only the first card survives.
	if len(postings) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(postings))
	}

	p := postings[0]
	if p.URL != srv.URL+"/vacature/1" {
		t.Errorf("unexpected URL: %s", p.URL)
	}
	if p.Title != "Backend Developer" || p.Company != "Bol.com" || p.Broker != "JobBird" {
		t.Errorf("unexpected posting fields: %+v", p)
	}
	if p.Location != "Utrecht" {
		t.Errorf("expected normalized location Utrecht, got %q", p.Location)
	}
	if p.Hours == nil || *p.Hours != 32 {
		t.Errorf("expected hours 32, got %v", p.Hours)
	}
	if p.PostedAt == nil {
		t.Error("expected parsed posting date")
	}
	if p.About != "Uitdagende rol." {
		t.Errorf("unexpected about: %q", p.About)
	}
}

func TestJobBirdListingsRelativeHref(t *testing.T) {
	doc := mustParseHTML(t, `<article class="vacancy-card">
		<a class="vacancy-card__title" href="/nl/vacature/77">DBA</a>
	</article>`)

	listings := jobbirdListings(doc)
	if len(listings) != 1 {
		t.Fatalf("expected 1 listing, got %d", len(listings))
	}
	if listings[0].url != "https://www.jobbird.com/nl/vacature/77" {
		t.Errorf("expected absolute URL, got %s", listings[0].url)
	}
}

func TestJobBirdFetchPostings_ListingFailureIsFatal(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	s := NewJobBirdScraper(srv.Client(), discardLogger())
	s.searchURL = srv.URL + "/nl/vacature?s=ict"

	if _, err := s.FetchPostings(context.Background()); err == nil {
		t.Fatal("expected an error when the listing fetch fails")
	}
}
