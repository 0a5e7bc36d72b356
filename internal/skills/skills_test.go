package skills

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
)

var testCatalog = []string{"Java", "Python", "Kubernetes", "SQL"}

func TestKeywordMatcher(t *testing.T) {
	m := NewKeywordMatcher(testCatalog)

	matched, err := m.Match(context.Background(), "Wij zoeken een ontwikkelaar met ervaring in JAVA en sql.")
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(matched) != 2 {
		t.Fatalf("matched = %v, want Java and SQL", matched)
	}
	if matched[0].Name != "Java" || matched[1].Name != "SQL" {
		t.Errorf("matched = %v, want canonical catalog spellings", matched)
	}
}

func TestKeywordMatcherNoHits(t *testing.T) {
	m := NewKeywordMatcher(testCatalog)

	matched, err := m.Match(context.Background(), "Administratief medewerker gezocht.")
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(matched) != 0 {
		t.Errorf("matched = %v, want none", matched)
	}
}

func TestOpenAIMatcherFiltersToCatalog(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		content, _ := json.Marshal(map[string][]string{
			// "Rust" is not in the catalog and must be dropped; "java"
			// must come back in catalog spelling.
			"skills": {"java", "Kubernetes", "Rust"},
		})
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprintf(w, `{"choices": [{"message": {"role": "assistant", "content": %q}}]}`, content)
	}))
	defer srv.Close()

	m := NewOpenAIMatcher("test-key", srv.URL, "gpt-4o-mini", testCatalog)

	matched, err := m.Match(context.Background(), "Kubernetes platform met Java services, Rust is een pre.")
	if err != nil {
		t.Fatalf("Match: %v", err)
	}
	if len(matched) != 2 {
		t.Fatalf("matched = %v, want 2 catalog skills", matched)
	}
	if matched[0].Name != "Java" || matched[1].Name != "Kubernetes" {
		t.Errorf("matched = %v, want [Java Kubernetes]", matched)
	}
}
