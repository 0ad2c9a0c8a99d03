package scraper

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/leadforge/leadforge/pkg/config"
)

func newTestClient(url string) *Client {
	return NewClient(&config.ScraperConfig{
		APIToken:  "test-token",
		BaseURL:   url,
		MapsActor: "maps-actor",
	})
}

func TestClientRun(t *testing.T) {
	var gotPath, gotAuth string
	var gotBody map[string]interface{}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotAuth = r.Header.Get("Authorization")
		json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		w.Write([]byte(`{"data":{"id":"run-42","status":"RUNNING"}}`))
	}))
	defer server.Close()

	job := &Job{Type: JobMaps, Body: MapsPayload{
		SearchStringsArray:        []string{"roofer"},
		LocationQuery:             "Boise, ID",
		MaxCrawledPlacesPerSearch: 100,
	}}

	result, err := newTestClient(server.URL).Run(context.Background(), job)
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if gotPath != "/acts/maps-actor/runs" {
		t.Fatalf("unexpected path %q", gotPath)
	}
	if gotAuth != "Bearer test-token" {
		t.Fatalf("unexpected auth header %q", gotAuth)
	}
	if gotBody["locationQuery"] != "Boise, ID" {
		t.Fatalf("unexpected payload: %v", gotBody)
	}
	if result.ID != "run-42" {
		t.Fatalf("unexpected run id %q", result.ID)
	}
	if result.Status != "running" {
		t.Fatalf("expected lowercased status, got %q", result.Status)
	}
}

func TestClientRunRejected(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"invalid input"}`, http.StatusBadRequest)
	}))
	defer server.Close()

	job := &Job{Type: JobMaps, Body: MapsPayload{}}
	if _, err := newTestClient(server.URL).Run(context.Background(), job); err == nil {
		t.Fatal("expected error on non-2xx response")
	}
}

func TestClientRunUnconfiguredActor(t *testing.T) {
	job := &Job{Type: JobValidator, Body: ValidatorPayload{Emails: []string{}}}
	if _, err := newTestClient("http://localhost").Run(context.Background(), job); err == nil {
		t.Fatal("expected error for job type without an actor")
	}
}
