// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package devserver

import (
	"crypto/rand"
	"errors"
	"fmt"
	"html"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/microcosm-cc/bluemonday"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/crypto/bcrypt"

	"github.com/jeranaias/shiftlog-tui/internal/catalog"
	"github.com/jeranaias/shiftlog-tui/internal/model"
)

var (
	// ErrUserExists is returned when registering a taken username.
	ErrUserExists = errors.New("user already exists")

	// ErrInvalidCredentials is returned for a blank username or short password.
	ErrInvalidCredentials = errors.New("username and a password of at least 6 characters are required")
)

// MinPasswordLength is the shortest accepted password.
const MinPasswordLength = 6

type account struct {
	ID           string
	Username     string
	PasswordHash []byte
	Role         model.Role
}

// Options configures a Server.
type Options struct {
	// Secret signs tokens. A random secret is generated when empty.
	Secret []byte

	// TokenTTL defaults to DefaultTokenTTL.
	TokenTTL time.Duration

	// Logger defaults to slog.Default().
	Logger *slog.Logger

	// Registry receives the metrics. A private registry is used when nil.
	Registry *prometheus.Registry

	// Now defaults to time.Now.
	Now func() time.Time
}

// Server is the in-memory report service.
type Server struct {
	mu       sync.RWMutex
	users    map[string]*account
	reports  []model.Report
	catalogs map[catalog.Kind][]catalog.Entry

	secret    []byte
	tokenTTL  time.Duration
	logger    *slog.Logger
	registry  *prometheus.Registry
	metrics   *collector
	sanitizer *bluemonday.Policy
	now       func() time.Time
}

// New creates an empty server.
func New(opts Options) (*Server, error) {
	s := &Server{
		users:     make(map[string]*account),
		catalogs:  make(map[catalog.Kind][]catalog.Entry),
		secret:    opts.Secret,
		tokenTTL:  opts.TokenTTL,
		logger:    opts.Logger,
		registry:  opts.Registry,
		sanitizer: bluemonday.StrictPolicy(),
		now:       opts.Now,
	}
	if len(s.secret) == 0 {
		s.secret = make([]byte, 32)
		if _, err := io.ReadFull(rand.Reader, s.secret); err != nil {
			return nil, fmt.Errorf("failed to generate token secret: %w", err)
		}
	}
	if s.tokenTTL <= 0 {
		s.tokenTTL = DefaultTokenTTL
	}
	if s.logger == nil {
		s.logger = slog.Default()
	}
	if s.registry == nil {
		s.registry = prometheus.NewRegistry()
	}
	if s.now == nil {
		s.now = time.Now
	}
	s.metrics = newCollector(s.registry)
	return s, nil
}

// Handler returns the HTTP handler with the API mounted under /api.
func (s *Server) Handler() http.Handler {
	r := chi.NewRouter()
	r.Use(s.recoverPanics)
	r.Use(s.logRequests)

	r.Handle("/metrics", promhttp.HandlerFor(s.registry, promhttp.HandlerOpts{}))

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/login", s.handleLogin)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)

			r.Get("/myreports", s.handleMyReports)
			r.Post("/reports", s.handleCreateReport)
			r.Delete("/reports/{id}", s.handleDeleteReport)
			r.Get("/catalog/{kind}", s.handleListCatalog)

			r.Group(func(r chi.Router) {
				r.Use(requireAdmin)
				r.Post("/auth/register", s.handleRegister)
				r.Get("/reports", s.handleAllReports)
				r.Post("/catalog/{kind}", s.handleCreateCatalogEntry)
				r.Delete("/catalog/{kind}/{id}", s.handleDeleteCatalogEntry)
			})
		})
	})
	return r
}

// =============================================================================
// STATE
// =============================================================================

// AddUser creates an account.
func (s *Server) AddUser(username, password string, role model.Role) error {
	username = strings.TrimSpace(username)
	if username == "" || len(password) < MinPasswordLength {
		return ErrInvalidCredentials
	}
	if !role.Valid() {
		role = model.RoleUser
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.users[username]; ok {
		return ErrUserExists
	}
	s.users[username] = &account{
		ID:           uuid.NewString(),
		Username:     username,
		PasswordHash: hash,
		Role:         role,
	}
	return nil
}

// AddCatalogEntry stores an entry and returns it with a new ID.
func (s *Server) AddCatalogEntry(kind catalog.Kind, e catalog.Entry) (catalog.Entry, error) {
	if _, err := catalog.ParseKind(string(kind)); err != nil {
		return catalog.Entry{}, err
	}
	e.Name = s.clean(e.Name)
	e.RUT = s.clean(e.RUT)
	e.Position = s.clean(e.Position)
	if err := e.Validate(kind); err != nil {
		return catalog.Entry{}, err
	}
	e.ID = uuid.NewString()

	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalogs[kind] = append(s.catalogs[kind], e)
	return e, nil
}

// Reports returns a copy of every stored report.
func (s *Server) Reports() []model.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return append([]model.Report(nil), s.reports...)
}

// Seed adds an admin account and sample catalogs.
func (s *Server) Seed(adminUser, adminPassword string) error {
	if err := s.AddUser(adminUser, adminPassword, model.RoleAdmin); err != nil && !errors.Is(err, ErrUserExists) {
		return err
	}
	samples := map[catalog.Kind][]catalog.Entry{
		catalog.KindActivities: {
			{Name: "Excavación"}, {Name: "Hormigonado"}, {Name: "Enfierradura"}, {Name: "Moldaje"},
		},
		catalog.KindSegments: {
			{Name: "Tramo 1"}, {Name: "Tramo 2"}, {Name: "Tramo 3"},
		},
		catalog.KindWorkers: {
			{Name: "Juan Pérez", RUT: "12.345.678-9", Position: "Maestro"},
			{Name: "Ana Muñoz", RUT: "15.222.333-K", Position: "Ayudante"},
			{Name: "Luis Ñúñez", RUT: "9.876.543-2", Position: "Operador"},
		},
		catalog.KindSupervisors: {
			{Name: "Marta Soto", RUT: "11.111.111-1"},
		},
	}
	for _, kind := range catalog.Kinds {
		for _, e := range samples[kind] {
			if _, err := s.AddCatalogEntry(kind, e); err != nil {
				return err
			}
		}
	}
	return nil
}

func (s *Server) userExists(username string) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.users[username]
	return ok
}

// clean strips markup from user-supplied text. Entities escaped by the
// sanitizer are decoded again since values are stored as plain text.
func (s *Server) clean(text string) string {
	return strings.TrimSpace(html.UnescapeString(s.sanitizer.Sanitize(text)))
}

func (s *Server) cleanNotes(notes []model.Note) []model.Note {
	out := make([]model.Note, 0, len(notes))
	for _, n := range notes {
		if d := s.clean(n.Description); d != "" {
			out = append(out, model.Note{Description: d})
		}
	}
	return out
}

func (s *Server) cleanReport(r model.Report) model.Report {
	r.Area = s.clean(r.Area)
	r.Shift = s.clean(r.Shift)
	r.Supervisor = s.clean(r.Supervisor)
	team := make([]model.TeamRow, 0, len(r.Team))
	for _, row := range r.Team {
		row.Name = s.clean(row.Name)
		row.RUT = s.clean(row.RUT)
		row.Position = s.clean(row.Position)
		row.EquipmentCode = s.clean(row.EquipmentCode)
		row.Segment = s.clean(row.Segment)
		row.Activity = s.clean(row.Activity)
		if !row.IsEmpty() {
			team = append(team, row)
		}
	}
	r.Team = team
	r.Progress = s.cleanNotes(r.Progress)
	r.Interferences = s.cleanNotes(r.Interferences)
	r.Stoppages = s.cleanNotes(r.Stoppages)
	r.Comments = s.cleanNotes(r.Comments)
	return r
}
