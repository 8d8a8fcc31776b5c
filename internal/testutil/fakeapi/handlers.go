package fakeapi

import (
	"context"
	"encoding/json"
	"net/http"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/gophtasks/internal/client/models"
	"github.com/dmitrijs2005/gophtasks/internal/common"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

type ctxKey string

const userIDKey ctxKey = "userID"

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req models.LoginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	u, ok := s.users[req.Email]
	if !ok && s.autoRegister {
		u = &user{id: uuid.NewString(), email: req.Email, password: req.Password}
		s.users[req.Email] = u
		ok = true
	}
	if !ok || u.password != req.Password {
		writeError(w, http.StatusUnauthorized, "Incorrect email or password")
		return
	}

	pair, err := s.issue(u)
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

func (s *Server) handleRefresh(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	s.refreshCalls++
	gate := s.refreshGate
	s.mu.Unlock()

	if gate != nil {
		select {
		case <-gate:
		case <-r.Context().Done():
			return
		}
	}

	var req models.RefreshRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}

	claims, err := ParseToken(req.RefreshToken, s.secret, jwt.WithTimeFunc(s.now))
	if err != nil || claims.Kind != kindRefresh {
		writeError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if !s.refresh[req.RefreshToken] {
		writeError(w, http.StatusUnauthorized, "Invalid refresh token")
		return
	}
	delete(s.refresh, req.RefreshToken)

	pair, err := s.issue(&user{id: claims.Subject, email: claims.Email})
	if err != nil {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, pair)
}

// authorized checks the bearer token and that it belongs to the {user} in
// the path.
func (s *Server) authorized(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		token, ok := strings.CutPrefix(r.Header.Get(common.AuthorizationHeader), common.BearerPrefix)
		if !ok || token == "" {
			writeError(w, http.StatusUnauthorized, "Not authenticated")
			return
		}

		claims, err := ParseToken(token, s.secret, jwt.WithTimeFunc(s.now))
		s.mu.Lock()
		live := s.access[token]
		s.mu.Unlock()
		if err != nil || claims.Kind != kindAccess || !live {
			writeError(w, http.StatusUnauthorized, "Could not validate credentials")
			return
		}

		if claims.Subject != r.PathValue("user") {
			writeError(w, http.StatusForbidden, "Not authorized to access these tasks")
			return
		}

		next(w, r.WithContext(context.WithValue(r.Context(), userIDKey, claims.Subject)))
	}
}

func (s *Server) handleList(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(userIDKey).(string)
	q := r.URL.Query()

	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit <= 0 {
		limit = models.DefaultPageSize
	}
	offset, _ := strconv.Atoi(q.Get("offset"))

	s.mu.Lock()
	var filtered []models.Task
	for _, t := range s.tasks[userID] {
		if c := q.Get("completed"); c != "" && strconv.FormatBool(t.Completed) != c {
			continue
		}
		filtered = append(filtered, t)
	}
	s.mu.Unlock()

	page := []models.Task{}
	if offset < len(filtered) {
		end := min(offset+limit, len(filtered))
		page = filtered[offset:end]
	}

	writeJSON(w, http.StatusOK, models.TaskListResponse{
		Tasks:  page,
		Total:  len(filtered),
		Offset: offset,
		Limit:  limit,
	})
}

func (s *Server) handleGet(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(userIDKey).(string)

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.find(userID, models.TaskID(r.PathValue("id")))
	if i < 0 {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}
	writeJSON(w, http.StatusOK, s.tasks[userID][i])
}

func (s *Server) handleCreate(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(userIDKey).(string)

	var req models.TaskCreate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := models.Timestamp{Time: s.now().UTC()}
	task := models.Task{
		ID:        s.newID(),
		Title:     req.Title,
		Priority:  models.PriorityMedium,
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if req.Description != nil {
		task.Description = *req.Description
	}
	if req.DueDate != nil {
		d := *req.DueDate
		task.DueDate = &d
	}
	if req.Priority != nil {
		task.Priority = *req.Priority
	}
	if req.Completed != nil {
		task.Completed = *req.Completed
	}

	s.tasks[userID] = append(s.tasks[userID], task)
	writeJSON(w, http.StatusCreated, task)
}

func (s *Server) handleUpdate(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(userIDKey).(string)

	var req models.TaskUpdate
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.find(userID, models.TaskID(r.PathValue("id")))
	if i < 0 {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}

	task := req.Apply(s.tasks[userID][i])
	task.UpdatedAt = models.Timestamp{Time: s.now().UTC()}
	s.tasks[userID][i] = task
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleToggle(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(userIDKey).(string)

	var req models.TaskToggle
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid body")
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.find(userID, models.TaskID(r.PathValue("id")))
	if i < 0 {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}

	task := s.tasks[userID][i]
	task.Completed = req.Completed
	task.UpdatedAt = models.Timestamp{Time: s.now().UTC()}
	s.tasks[userID][i] = task
	writeJSON(w, http.StatusOK, task)
}

func (s *Server) handleDelete(w http.ResponseWriter, r *http.Request) {
	userID := r.Context().Value(userIDKey).(string)

	s.mu.Lock()
	defer s.mu.Unlock()

	i := s.find(userID, models.TaskID(r.PathValue("id")))
	if i < 0 {
		writeError(w, http.StatusNotFound, "Task not found")
		return
	}

	s.tasks[userID] = append(s.tasks[userID][:i], s.tasks[userID][i+1:]...)
	w.WriteHeader(http.StatusNoContent)
}

// find must be called with s.mu held.
func (s *Server) find(userID string, id models.TaskID) int {
	for i, t := range s.tasks[userID] {
		if t.ID == id {
			return i
		}
	}
	return -1
}
