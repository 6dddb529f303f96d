package main

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/dimfu/mrwordrank/master"
)

func testStatus() *status {
	return newStatus(&master.Report{
		Hosts: []master.HostStatus{
			{Host: "hostA", Reachable: true},
			{Host: "hostB", Reachable: false},
		},
		Entries: []master.Entry{
			{Word: "mange", Count: 2},
			{Word: "chat", Count: 1},
			{Word: "chien", Count: 1},
		},
	})
}

func TestRoutes(t *testing.T) {
	srv := httptest.NewServer(testStatus().Routes())
	defer srv.Close()

	tests := []struct {
		method, path string
		code         int
		body         string
	}{
		{http.MethodGet, "/health", http.StatusOK, "hostA: true\nhostB: false\n"},
		{http.MethodGet, "/count/Mange", http.StatusOK, "mange:2\n"},
		{http.MethodGet, "/count/souris", http.StatusNotFound, "word souris not found\n"},
		{http.MethodGet, "/top?n=2", http.StatusOK, "mange:2\nchat:1\n"},
		{http.MethodGet, "/top", http.StatusOK, "mange:2\nchat:1\nchien:1\n"},
		{http.MethodGet, "/top?n=x", http.StatusBadRequest, "n must be a non negative integer\n"},
		{http.MethodPost, "/health", http.StatusMethodNotAllowed, "Method not allowed\n"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(tt.method, tt.path, nil)
		rec := httptest.NewRecorder()
		testStatus().Routes().ServeHTTP(rec, req)
		if rec.Code != tt.code {
			t.Fatalf("%s %s = %d; expected %d", tt.method, tt.path, rec.Code, tt.code)
		}
		if got := rec.Body.String(); got != tt.body {
			t.Fatalf("%s %s body = %q; expected %q", tt.method, tt.path, got, tt.body)
		}
	}

	resp, err := http.Get(srv.URL + "/count/chat")
	if err != nil {
		t.Fatal(err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("GET /count/chat = %d", resp.StatusCode)
	}
}
