// Package web provides an HTTP status server for the segclock daemon.
package web

import (
	"context"
	"log"
	"net"
	"net/http"

	"github.com/sweeney/segclock/internal/history"
	"github.com/sweeney/segclock/internal/status"
)

// EventSource supplies recent clock events for the status page.
// *history.Store satisfies it; nil disables the event views.
type EventSource interface {
	Recent(limit int) ([]history.Entry, error)
}

// Server serves the status page over HTTP.
type Server struct {
	httpServer *http.Server
	tracker    *status.Tracker
	events     EventSource
}

// New creates a Server that reads state from the given tracker.
// events may be nil when no history database is configured.
func New(addr string, tracker *status.Tracker, events EventSource) *Server {
	s := &Server{tracker: tracker, events: events}

	mux := http.NewServeMux()
	mux.HandleFunc("/", s.handleIndex)
	mux.HandleFunc("/index.html", s.handleIndex)
	mux.HandleFunc("/index.json", s.handleJSON)
	mux.HandleFunc("/events.json", s.handleEvents)

	s.httpServer = &http.Server{
		Addr:    addr,
		Handler: mux,
	}
	return s
}

// ListenAndServe starts listening. It blocks until the server is shut down.
func (s *Server) ListenAndServe() error {
	return s.httpServer.ListenAndServe()
}

// Serve accepts connections on the given listener. Useful for tests.
func (s *Server) Serve(ln net.Listener) error {
	return s.httpServer.Serve(ln)
}

// Shutdown gracefully shuts down the server.
func (s *Server) Shutdown(ctx context.Context) error {
	return s.httpServer.Shutdown(ctx)
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" && r.URL.Path != "/index.html" {
		http.NotFound(w, r)
		return
	}
	snap := s.tracker.Snapshot()
	recent := s.recentEvents()
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	renderHTML(w, snap, recent)
}

func (s *Server) handleJSON(w http.ResponseWriter, r *http.Request) {
	snap := s.tracker.Snapshot()
	w.Header().Set("Content-Type", "application/json")
	w.Write(status.FormatJSON(snap))
}

func (s *Server) handleEvents(w http.ResponseWriter, r *http.Request) {
	if s.events == nil {
		http.Error(w, "event history disabled", http.StatusNotFound)
		return
	}
	entries, err := s.events.Recent(50)
	if err != nil {
		log.Printf("web: query events: %v", err)
		http.Error(w, "query failed", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.Write(formatEvents(entries))
}

func (s *Server) recentEvents() []history.Entry {
	if s.events == nil {
		return nil
	}
	entries, err := s.events.Recent(10)
	if err != nil {
		log.Printf("web: query events: %v", err)
		return nil
	}
	return entries
}
