package main

import "net/http"

func (s *status) Routes() http.Handler {
	mux := http.NewServeMux()

	get := func(h http.HandlerFunc) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			switch r.Method {
			case http.MethodGet:
				h(w, r)
			default:
				http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			}
		})
	}

	mux.Handle("/health", get(s.Health))
	mux.Handle("/count/{word}", get(s.Count))
	mux.Handle("/top", get(s.Top))
	return mux
}
