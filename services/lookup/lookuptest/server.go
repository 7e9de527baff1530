// Package lookuptest runs an in-process fake of the OMDb-style provider.
package lookuptest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/gorilla/mux"
)

const APIKey = "test-key"

// Title is a provider record served by the fake.
type Title struct {
	ID           string
	Title        string
	Year         string
	Type         string // movie | series
	Poster       string // "" is served as "N/A"
	TotalSeasons int
}

type Episode struct {
	ID       string
	Title    string
	Released string
}

// Server counts every request by operation: "title", "search", "id" and
// "season".
type Server struct {
	*httptest.Server

	mu         sync.Mutex
	titles     map[string]Title
	seasons    map[string]map[int][]Episode
	calls      map[string]int
	failures   int
	failStatus int
	refusal    string
}

func New(t testing.TB) *Server {
	t.Helper()
	s := &Server{
		titles:  make(map[string]Title),
		seasons: make(map[string]map[int][]Episode),
		calls:   make(map[string]int),
	}

	r := mux.NewRouter()
	r.Use(s.count, s.inject, s.requireKey)
	r.HandleFunc("/", s.handleSeason).Methods(http.MethodGet).Queries("i", "{id}", "Season", "{season}")
	r.HandleFunc("/", s.handleID).Methods(http.MethodGet).Queries("i", "{id}")
	r.HandleFunc("/", s.handleTitle).Methods(http.MethodGet).Queries("t", "{title}")
	r.HandleFunc("/", s.handleSearch).Methods(http.MethodGet).Queries("s", "{query}")

	s.Server = httptest.NewServer(r)
	t.Cleanup(s.Close)
	return s
}

// Endpoint is the base URL clients should be configured with.
func (s *Server) Endpoint() string { return s.URL + "/" }

func (s *Server) AddTitle(title Title) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.titles[title.ID] = title
}

// AddSeason registers a season; calling it with no episodes serves an empty
// but valid season.
func (s *Server) AddSeason(id string, number int, episodes ...Episode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.seasons[id] == nil {
		s.seasons[id] = make(map[int][]Episode)
	}
	s.seasons[id][number] = append([]Episode{}, episodes...)
}

// FailNext makes the next n requests answer with status.
func (s *Server) FailNext(n, status int) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.failures = n
	s.failStatus = status
}

// Refuse makes every request answer with a provider-side refusal such as
// "Request limit reached!". An empty message clears it.
func (s *Server) Refuse(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.refusal = msg
}

func (s *Server) Calls(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[op]
}

func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}

func operation(q map[string][]string) string {
	switch {
	case len(q["Season"]) > 0:
		return "season"
	case len(q["i"]) > 0:
		return "id"
	case len(q["t"]) > 0:
		return "title"
	case len(q["s"]) > 0:
		return "search"
	}
	return "unknown"
}

func (s *Server) count(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		s.calls[operation(r.URL.Query())]++
		s.mu.Unlock()
		next.ServeHTTP(w, r)
	})
}

func (s *Server) inject(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		s.mu.Lock()
		status := 0
		if s.failures > 0 {
			s.failures--
			status = s.failStatus
		}
		refusal := s.refusal
		s.mu.Unlock()

		if status != 0 {
			http.Error(w, http.StatusText(status), status)
			return
		}
		if refusal != "" {
			writeFalse(w, http.StatusOK, refusal)
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) requireKey(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("apikey") != APIKey {
			writeFalse(w, http.StatusUnauthorized, "Invalid API key!")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func (s *Server) handleTitle(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	want := strings.ToLower(strings.TrimSpace(q.Get("t")))
	kind := q.Get("type")

	s.mu.Lock()
	defer s.mu.Unlock()
	for _, id := range s.sortedIDsLocked() {
		title := s.titles[id]
		if strings.ToLower(title.Title) == want && (kind == "" || kind == title.Type) {
			writeJSON(w, titleBody(title))
			return
		}
	}
	writeFalse(w, http.StatusOK, "Movie not found!")
}

func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	want := strings.ToLower(strings.TrimSpace(q.Get("s")))
	kind := q.Get("type")

	s.mu.Lock()
	defer s.mu.Unlock()
	var hits []map[string]string
	for _, id := range s.sortedIDsLocked() {
		title := s.titles[id]
		if strings.Contains(strings.ToLower(title.Title), want) && (kind == "" || kind == title.Type) {
			hits = append(hits, map[string]string{
				"Title":  title.Title,
				"Year":   title.Year,
				"imdbID": title.ID,
				"Type":   title.Type,
				"Poster": poster(title.Poster),
			})
		}
	}
	if len(hits) == 0 {
		writeFalse(w, http.StatusOK, "Movie not found!")
		return
	}
	writeJSON(w, map[string]any{
		"Search":       hits,
		"totalResults": strconv.Itoa(len(hits)),
		"Response":     "True",
	})
}

func (s *Server) handleID(w http.ResponseWriter, r *http.Request) {
	id := r.URL.Query().Get("i")
	s.mu.Lock()
	title, ok := s.titles[id]
	s.mu.Unlock()
	if !ok {
		writeFalse(w, http.StatusOK, "Incorrect IMDb ID.")
		return
	}
	writeJSON(w, titleBody(title))
}

func (s *Server) handleSeason(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	id := q.Get("i")
	number, _ := strconv.Atoi(q.Get("Season"))

	s.mu.Lock()
	title, known := s.titles[id]
	episodes, ok := s.seasons[id][number]
	s.mu.Unlock()
	if !known || !ok {
		writeFalse(w, http.StatusOK, "Series or season not found!")
		return
	}

	list := make([]map[string]string, 0, len(episodes))
	for i, ep := range episodes {
		released := ep.Released
		if released == "" {
			released = "N/A"
		}
		list = append(list, map[string]string{
			"Title":    ep.Title,
			"Released": released,
			"Episode":  strconv.Itoa(i + 1),
			"imdbID":   ep.ID,
		})
	}
	writeJSON(w, map[string]any{
		"Title":        title.Title,
		"Season":       strconv.Itoa(number),
		"totalSeasons": strconv.Itoa(title.TotalSeasons),
		"Episodes":     list,
		"Response":     "True",
	})
}

func (s *Server) sortedIDsLocked() []string {
	ids := make([]string, 0, len(s.titles))
	for id := range s.titles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

func titleBody(t Title) map[string]string {
	body := map[string]string{
		"Title":    t.Title,
		"Year":     t.Year,
		"imdbID":   t.ID,
		"Type":     t.Type,
		"Poster":   poster(t.Poster),
		"Response": "True",
	}
	if t.Type == "series" {
		body["totalSeasons"] = strconv.Itoa(t.TotalSeasons)
	}
	return body
}

func poster(p string) string {
	if p == "" {
		return "N/A"
	}
	return p
}

func writeFalse(w http.ResponseWriter, status int, msg string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]string{"Response": "False", "Error": msg})
}

func writeJSON(w http.ResponseWriter, body any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(body)
}
