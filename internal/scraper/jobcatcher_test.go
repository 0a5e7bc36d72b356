package scraper

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestJobCatcherFetchPostings(t *testing.T) {
	mux := http.NewServeMux()
	srv := httptest.NewServer(mux)
	defer srv.Close()

	mux.HandleFunc("/search", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if r.URL.Query().Get("itemsperpage") == "0" {
			fmt.Fprint(w, `{"data": [{"amount": 1, "list": []}]}`)
			return
		}
		fmt.Fprintf(w, `{"data": [{"amount": 1, "list": [
			{
				"requestid": 5521,
				"jobrolename": "DevOps Engineer (AWS)",
				"requesterpartyname": "Politie",
				"availability": "36,0",
				"locationname": "DEN HAAG",
				"publishdate": "2020-12-01T09:30:00Z",
				"maximumpurchaseprice": "95"
			}
		]}]}`)
	})
	// The rebuilt detail URL is lowercased with dashes and encoded parens;
	// a prefix route keeps the mux from fighting the escaping.
	mux.HandleFunc("/opdrachten/", func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `<html><body>
			<div><h3>Opdracht</h3></div>
			<div>Beheer van het AWS platform.</div>
		</body></html>`)
	})

	s := NewJobCatcherScraper(srv.Client(), discardLogger())
	s.searchURL = srv.URL + "/search?"
	s.urlPrefix = srv.URL + "/opdrachten/"

	postings, err := s.FetchPostings(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(postings) != 1 {
		t.Fatalf("expected 1 posting, got %d", len(postings))
	}

	p := postings[0]
	if p.Title != "DevOps Engineer (AWS)" || p.Company != "Politie" || p.Broker != "JobCatcher" {
		t.Errorf("unexpected posting fields: %+v", p)
	}
	if p.Hours == nil || *p.Hours != 36 {
		t.Errorf("expected hours 36 from availability \"36,0\", got %v", p.Hours)
	}
	if p.Location != "Den Haag" {
		t.Errorf("expected title-cased location, got %q", p.Location)
	}
	if p.Salary != "95 per uur" {
		t.Errorf("unexpected salary: %q", p.Salary)
	}
	if p.PostedAt == nil {
		t.Error("expected a parsed publish date")
	}
	if p.About == "" {
		t.Error("expected about text from the detail page")
	}
}

func TestJobCatcherURL(t *testing.T) {
	item := jobcatcherItem{
		RequestID: json.Number("5521"),
		RoleName:  "DevOps Engineer (AWS)",
		Requester: "Politie / Landelijke Eenheid",
	}
	want := "https://www.jobcatcher.nl/opdrachten/devops-engineer-%28aws%29/politie---landelijke-eenheid/5521"
	if got := jobcatcherURL(jobcatcherURLPrefix, item); got != want {
		t.Errorf("jobcatcherURL = %q, want %q", got, want)
	}
}

func TestJobCatcherHours(t *testing.T) {
	if got := jobcatcherHours("36,0"); got == nil || *got != 36 {
		t.Errorf("jobcatcherHours(\"36,0\") = %v, want 36", got)
	}
	if got := jobcatcherHours("n.t.b."); got != nil {
		t.Errorf("expected nil hours for unparsable availability, got %d", *got)
	}
}
