// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package devserver

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"github.com/jeranaias/shiftlog-tui/internal/catalog"
	"github.com/jeranaias/shiftlog-tui/internal/model"
)

const maxBodySize = 1 << 20

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"message": message})
}

func decodeBody(w http.ResponseWriter, r *http.Request, v any) bool {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodySize)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return false
	}
	return true
}

// =============================================================================
// AUTH
// =============================================================================

type credentials struct {
	Username string     `json:"username"`
	Password string     `json:"password"`
	Role     model.Role `json:"role"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if !decodeBody(w, r, &in) {
		return
	}

	s.mu.RLock()
	u := s.users[strings.TrimSpace(in.Username)]
	s.mu.RUnlock()

	if u == nil || bcrypt.CompareHashAndPassword(u.PasswordHash, []byte(in.Password)) != nil {
		s.metrics.recordLogin(false)
		writeError(w, http.StatusUnauthorized, "Usuario o contraseña incorrectos")
		return
	}

	token, err := s.issueToken(u)
	if err != nil {
		s.logger.Error("issue token", slog.String("error", err.Error()))
		writeError(w, http.StatusInternalServerError, "could not issue token")
		return
	}
	s.metrics.recordLogin(true)
	writeJSON(w, http.StatusOK, map[string]string{"token": token, "role": string(u.Role)})
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var in credentials
	if !decodeBody(w, r, &in) {
		return
	}
	err := s.AddUser(in.Username, in.Password, in.Role)
	switch {
	case errors.Is(err, ErrUserExists):
		writeError(w, http.StatusConflict, "El usuario ya existe")
	case errors.Is(err, ErrInvalidCredentials):
		writeError(w, http.StatusBadRequest, err.Error())
	case err != nil:
		writeError(w, http.StatusInternalServerError, "could not create user")
	default:
		writeJSON(w, http.StatusCreated, map[string]string{"message": "Usuario registrado"})
	}
}

// =============================================================================
// REPORTS
// =============================================================================

func (s *Server) handleMyReports(w http.ResponseWriter, r *http.Request) {
	me := caller(r.Context()).Username
	s.mu.RLock()
	out := make([]model.Report, 0)
	for _, rep := range s.reports {
		if rep.Username == me {
			out = append(out, rep)
		}
	}
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleAllReports(w http.ResponseWriter, r *http.Request) {
	s.mu.RLock()
	out := append(make([]model.Report, 0, len(s.reports)), s.reports...)
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateReport(w http.ResponseWriter, r *http.Request) {
	var in model.Report
	if !decodeBody(w, r, &in) {
		return
	}
	rep := s.cleanReport(in)
	if rep.Area == "" || rep.Shift == "" || rep.Supervisor == "" {
		writeError(w, http.StatusBadRequest, "Área, jornada y supervisor son obligatorios")
		return
	}
	if len(rep.Team) == 0 {
		writeError(w, http.StatusBadRequest, "Debe incluir al menos un trabajador")
		return
	}
	rep.ID = uuid.NewString()
	rep.Username = caller(r.Context()).Username
	rep.SubmittedAt = s.now().UTC()

	s.mu.Lock()
	s.reports = append(s.reports, rep)
	s.metrics.reports.Set(float64(len(s.reports)))
	s.mu.Unlock()

	writeJSON(w, http.StatusCreated, rep)
}

func (s *Server) handleDeleteReport(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	who := caller(r.Context())

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, rep := range s.reports {
		if rep.ID != id {
			continue
		}
		if who.Role != model.RoleAdmin && rep.Username != who.Username {
			writeError(w, http.StatusForbidden, "No puede eliminar informes de otro usuario")
			return
		}
		s.reports = append(s.reports[:i], s.reports[i+1:]...)
		s.metrics.reports.Set(float64(len(s.reports)))
		writeJSON(w, http.StatusOK, map[string]string{"message": "Informe eliminado"})
		return
	}
	writeError(w, http.StatusNotFound, "Informe no encontrado")
}

// =============================================================================
// CATALOGS
// =============================================================================

func kindParam(w http.ResponseWriter, r *http.Request) (catalog.Kind, bool) {
	raw := chi.URLParam(r, "kind")
	kind, err := catalog.ParseKind(raw)
	if err != nil || string(kind) != raw {
		writeError(w, http.StatusNotFound, "unknown catalog")
		return "", false
	}
	return kind, true
}

func (s *Server) handleListCatalog(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	s.mu.RLock()
	out := append(make([]catalog.Entry, 0, len(s.catalogs[kind])), s.catalogs[kind]...)
	s.mu.RUnlock()
	writeJSON(w, http.StatusOK, out)
}

func (s *Server) handleCreateCatalogEntry(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	var in catalog.Entry
	if !decodeBody(w, r, &in) {
		return
	}
	created, err := s.AddCatalogEntry(kind, in)
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}
	writeJSON(w, http.StatusCreated, created)
}

func (s *Server) handleDeleteCatalogEntry(w http.ResponseWriter, r *http.Request) {
	kind, ok := kindParam(w, r)
	if !ok {
		return
	}
	id := chi.URLParam(r, "id")

	s.mu.Lock()
	defer s.mu.Unlock()
	entries := s.catalogs[kind]
	for i, e := range entries {
		if e.ID == id {
			s.catalogs[kind] = append(entries[:i], entries[i+1:]...)
			writeJSON(w, http.StatusOK, map[string]string{"message": "Eliminado"})
			return
		}
	}
	writeError(w, http.StatusNotFound, "Elemento no encontrado")
}
