package daemonctl_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"bobbin/internal/api"
	"bobbin/internal/daemonctl"
)

func TestClientDecodesStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/api/status" {
			t.Errorf("path = %q", r.URL.Path)
		}
		_ = json.NewEncoder(w).Encode(api.DaemonStatus{Running: true, PID: 42})
	}))
	defer server.Close()

	client, err := daemonctl.New(server.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	status, err := client.Status(context.Background())
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if !status.Running || status.PID != 42 {
		t.Fatalf("status = %+v", status)
	}
}

func TestClientSendsListingRequest(t *testing.T) {
	var gotBody api.ListingRequest
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost || r.URL.Path != "/api/playlists" {
			t.Errorf("%s %s", r.Method, r.URL.Path)
		}
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		_ = json.NewEncoder(w).Encode(api.ListingResponse{ShouldStopProcessing: true})
	}))
	defer server.Close()

	client, err := daemonctl.New(strings.TrimPrefix(server.URL, "http://"))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	resp, err := client.List(context.Background(), "https://video.example/playlist?list=PL1")
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if gotBody.URL != "https://video.example/playlist?list=PL1" {
		t.Fatalf("request body = %+v", gotBody)
	}
	if !resp.ShouldStopProcessing {
		t.Fatalf("response = %+v", resp)
	}
}

func TestClientSurfacesErrorPayloads(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_ = json.NewEncoder(w).Encode(map[string]string{"error": "too many pending listing requests"})
	}))
	defer server.Close()

	client, err := daemonctl.New(server.URL)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = client.List(context.Background(), "https://video.example/playlist?list=PL1")
	if err == nil || !strings.Contains(err.Error(), "too many pending listing requests") {
		t.Fatalf("err = %v", err)
	}
}

func TestClientReportsUnreachableDaemon(t *testing.T) {
	client, err := daemonctl.New("127.0.0.1:1")
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if _, err := client.Status(context.Background()); err == nil {
		t.Fatal("expected connection error")
	}
}
