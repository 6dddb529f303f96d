package main

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/dimfu/mrwordrank/master"
	"github.com/dimfu/mrwordrank/shared"
)

// status serves the outcome of a finished run.
type status struct {
	report *master.Report
	counts map[string]int
}

func newStatus(report *master.Report) *status {
	counts := make(map[string]int, len(report.Entries))
	for _, e := range report.Entries {
		counts[e.Word] = e.Count
	}
	return &status{report: report, counts: counts}
}

func (s *status) Health(w http.ResponseWriter, r *http.Request) {
	var msg []string
	for _, h := range s.report.Hosts {
		msg = append(msg, fmt.Sprintf("%s: %v", h.Host, h.Reachable))
	}
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, strings.Join(msg, "\n"))
}

func (s *status) Count(w http.ResponseWriter, r *http.Request) {
	word := strings.ToLower(r.PathValue("word"))
	n, ok := s.counts[word]
	if !ok {
		http.Error(w, fmt.Sprintf("word %s not found", word), http.StatusNotFound)
		return
	}
	w.Header().Set("Content-Type", "text/plain")
	fmt.Fprintln(w, shared.FormatCount(word, n))
}

func (s *status) Top(w http.ResponseWriter, r *http.Request) {
	n := master.TOP_N
	if q := r.URL.Query().Get("n"); q != "" {
		v, err := strconv.Atoi(q)
		if err != nil || v < 0 {
			http.Error(w, "n must be a non negative integer", http.StatusBadRequest)
			return
		}
		n = v
	}
	w.Header().Set("Content-Type", "text/plain")
	for _, l := range master.FormatEntries(s.report.Top(n)) {
		fmt.Fprintln(w, l)
	}
}
