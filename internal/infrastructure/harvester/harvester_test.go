package harvester

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
)

func TestFetchAllFollowsRelativeNextLinks(t *testing.T) {
	t.Parallel()

	var fetched []string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fetched = append(fetched, r.URL.String())
		page := r.URL.Query().Get("page")

		switch page {
		case "", "1":
			fmt.Fprint(w, `{"_items":[{"title_en":"one"},{"title_en":"two"}],"_links":{"next":{"href":"/events?page=2"}}}`)
		case "2":
			fmt.Fprint(w, `{"_items":[{"title_en":"three"}],"_links":{"next":{"href":"/events?page=3"}}}`)
		case "3":
			fmt.Fprint(w, `{"_items":[{"title_en":"four"}],"_links":{"next":{"href":"/events?page=4"}}}`)
		case "4":
			fmt.Fprint(w, `{"_items":[{"title_en":"five"}]}`)
		default:
			t.Errorf("unexpected page %q", page)
		}
	}))
	defer server.Close()

	h := NewHarvester(server.Client())
	events, err := h.FetchAll(context.Background(), server.URL+"/events/", nil)
	if err != nil {
		t.Fatalf("FetchAll returned error: %v", err)
	}

	var titles []string
	for _, e := range events {
		titles = append(titles, e.Text("title_en"))
	}
	want := "one,two,three,four,five"
	if got := strings.Join(titles, ","); got != want {
		t.Fatalf("unexpected items: %s (want %s)", got, want)
	}
	if len(fetched) != 4 {
		t.Fatalf("expected 4 page fetches, got %d: %v", len(fetched), fetched)
	}
}

func TestFetchAllBareListIsTerminal(t *testing.T) {
	t.Parallel()

	var calls int
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls++
		fmt.Fprint(w, `[{"title_en":"only"}]`)
	}))
	defer server.Close()

	h := NewHarvester(server.Client())
	events, err := h.FetchAll(context.Background(), server.URL, nil)
	if err != nil {
		t.Fatalf("FetchAll returned error: %v", err)
	}
	if len(events) != 1 || events[0].Text("title_en") != "only" {
		t.Fatalf("unexpected events: %v", events)
	}
	if calls != 1 {
		t.Fatalf("expected a single fetch, got %d", calls)
	}
}

func TestFetchAllUnknownShapeTerminates(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"message":"no items here"}`)
	}))
	defer server.Close()

	h := NewHarvester(server.Client())
	events, err := h.FetchAll(context.Background(), server.URL, nil)
	if err != nil {
		t.Fatalf("FetchAll returned error: %v", err)
	}
	if len(events) != 0 {
		t.Fatalf("expected no events, got %v", events)
	}
}

func TestFetchAllScalarPageEndsPagination(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			fmt.Fprint(w, `"maintenance"`)
			return
		}
		fmt.Fprint(w, `{"_items":[{"title_en":"one"}],"_links":{"next":{"href":"/events?page=2"}}}`)
	}))
	defer server.Close()

	h := NewHarvester(server.Client())
	events, err := h.FetchAll(context.Background(), server.URL+"/events", nil)
	if err != nil {
		t.Fatalf("FetchAll returned error: %v", err)
	}
	if len(events) != 1 || events[0].Text("title_en") != "one" {
		t.Fatalf("expected the accumulated event, got %v", events)
	}
}

func TestFetchAllAbortsOnErrorStatus(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("page") == "2" {
			http.Error(w, "boom", http.StatusInternalServerError)
			return
		}
		fmt.Fprint(w, `{"_items":[{"title_en":"one"}],"_links":{"next":{"href":"/events?page=2"}}}`)
	}))
	defer server.Close()

	h := NewHarvester(server.Client())
	events, err := h.FetchAll(context.Background(), server.URL+"/events", nil)
	if err == nil {
		t.Fatal("expected error for failing page")
	}
	if events != nil {
		t.Fatalf("expected no partial results, got %v", events)
	}
}

func TestFetchAllAbortsOnMalformedJSON(t *testing.T) {
	t.Parallel()

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, `{"_items": not json`)
	}))
	defer server.Close()

	h := NewHarvester(server.Client())
	if _, err := h.FetchAll(context.Background(), server.URL, nil); err == nil {
		t.Fatal("expected error for malformed response")
	}
}

func TestFetchAllSerializesFilter(t *testing.T) {
	t.Parallel()

	var gotWhere string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotWhere = r.URL.Query().Get("where")
		fmt.Fprint(w, `[]`)
	}))
	defer server.Close()

	filter := map[string]any{"title_en": map[string]any{"$regex": "aper", "$options": "i"}}
	h := NewHarvester(server.Client())
	if _, err := h.FetchAll(context.Background(), server.URL, filter); err != nil {
		t.Fatalf("FetchAll returned error: %v", err)
	}

	var decoded map[string]any
	if err := json.Unmarshal([]byte(gotWhere), &decoded); err != nil {
		t.Fatalf("where parameter is not JSON: %v", err)
	}
	cond, ok := decoded["title_en"].(map[string]any)
	if !ok || cond["$regex"] != "aper" {
		t.Fatalf("unexpected filter payload: %s", gotWhere)
	}
}

func TestDefaultFilterShape(t *testing.T) {
	t.Parallel()

	filter := DefaultFilter()
	or, ok := filter["$or"].([]any)
	if !ok {
		t.Fatal("expected top-level $or list")
	}
	if len(or) != len(filteredFields)*len(filterTerms) {
		t.Fatalf("expected %d conditions, got %d", len(filteredFields)*len(filterTerms), len(or))
	}
	if _, err := json.Marshal(filter); err != nil {
		t.Fatalf("filter must be JSON-serializable: %v", err)
	}
}

func TestBuildQueryURL(t *testing.T) {
	t.Parallel()

	base := "https://api.example.org/events/"
	u, err := buildQueryURL(base, map[string]any{"k": "v"})
	if err != nil {
		t.Fatalf("buildQueryURL returned error: %v", err)
	}
	parsed, err := url.Parse(u)
	if err != nil {
		t.Fatalf("parse result: %v", err)
	}
	if parsed.Query().Get("where") != `{"k":"v"}` {
		t.Fatalf("unexpected where value: %s", parsed.Query().Get("where"))
	}

	plain, err := buildQueryURL(base, nil)
	if err != nil || plain != base {
		t.Fatalf("nil filter must leave the base url verbatim, got %q (%v)", plain, err)
	}
}
