// Package http is the JSON API shell around the engine and the
// repository. It holds no business logic: handlers parse the month
// selector, delegate, and encode.
package http

import (
	"net/http"
	"time"

	"jarfin/internal/core"
	"jarfin/internal/services"
	"jarfin/internal/sweep"
)

type Server struct {
	http.Server

	svc     *services.TransactionService
	sweeper *sweep.Sweeper

	categories []core.Category
	jars       []core.Jar
	mapping    core.CategoryMapping

	started time.Time
}

// NewServer wires the API routes. The jar configuration is fixed at
// construction; handlers never mutate it.
func NewServer(addr string, svc *services.TransactionService, sweeper *sweep.Sweeper) *Server {
	mux := http.NewServeMux()

	s := &Server{
		Server: http.Server{
			Addr:    addr,
			Handler: mux,
		},
		svc:        svc,
		sweeper:    sweeper,
		categories: core.DefaultCategories(),
		jars:       core.DefaultJars(),
		mapping:    core.DefaultMapping(),
		started:    time.Now(),
	}

	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /api/transactions", s.handleListTransactions)
	mux.HandleFunc("POST /api/transactions", s.handleAddTransaction)
	mux.HandleFunc("DELETE /api/transactions/{id}", s.handleDeleteTransaction)
	mux.HandleFunc("GET /api/summary", s.handleSummary)
	mux.HandleFunc("GET /api/jars", s.handleJars)
	mux.HandleFunc("GET /api/buffer", s.handleBufferStatus)
	mux.HandleFunc("POST /api/sweep", s.handleSweep)
	mux.HandleFunc("GET /api/calendar", s.handleCalendar)

	return s
}
