package server

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"medibot-ai/internal/auth"
	"medibot-ai/internal/consultation"
)

type ctxKey string

const ctxKeySession ctxKey = "session"

// requireSession resolves the bearer token to a live session.
func (s *Server) requireSession(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
		sess, ok := s.sessions.Get(token)
		if token == "" || !ok {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		ctx := context.WithValue(r.Context(), ctxKeySession, sess)
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

func sessionFrom(r *http.Request) *auth.Session {
	sess, _ := r.Context().Value(ctxKeySession).(*auth.Session)
	return sess
}

// ensureConsultation heals an empty store by creating a consultation and
// firing the onboarding greeting before any rendering proceeds.
func (s *Server) ensureConsultation(ctx context.Context, sess *auth.Session) (*consultation.Consultation, error) {
	if c := sess.Store.Active(); c != nil {
		return c, nil
	}
	c, err := sess.Store.Create(ctx)
	if err != nil {
		return nil, err
	}
	if _, err := sess.Store.HandleOnboarding(ctx, c, ""); err != nil {
		return nil, err
	}
	return c, nil
}

// ---------------------------------------------------------------------------
// Auth
// ---------------------------------------------------------------------------

type registerRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
	Name     string `json:"name"`
}

func (s *Server) handleRegister(w http.ResponseWriter, r *http.Request) {
	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}
	if req.Email == "" || req.Password == "" {
		http.Error(w, "Email and password are required", http.StatusBadRequest)
		return
	}

	if err := s.users.Register(req.Email, req.Password, req.Name); err != nil {
		if errors.Is(err, auth.ErrUserExists) {
			http.Error(w, "User already exists", http.StatusConflict)
			return
		}
		http.Error(w, "Failed to register", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"status": "registered"})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(w http.ResponseWriter, r *http.Request) {
	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	user, err := s.users.Authenticate(req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			http.Error(w, "Invalid email or password.", http.StatusUnauthorized)
			return
		}
		http.Error(w, "Login failed", http.StatusInternalServerError)
		return
	}

	sess := s.sessions.Start(req.Email, user.Name)
	writeJSON(w, http.StatusOK, map[string]string{
		"token": sess.Token,
		"name":  sess.Name,
	})
}

func (s *Server) handleLogout(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)
	s.sessions.End(sess.Token)
	writeJSON(w, http.StatusOK, map[string]string{"status": "logged_out"})
}

// ---------------------------------------------------------------------------
// Consultations
// ---------------------------------------------------------------------------

type consultationSummary struct {
	ID           int    `json:"id"`
	Title        string `json:"title"`
	CreatedAt    string `json:"created_at"`
	UpdatedAt    string `json:"updated_at"`
	MessageCount int    `json:"message_count"`
}

func (s *Server) handleListConsultations(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	items := make([]consultationSummary, 0, sess.Store.Len())
	for _, c := range sess.Store.List() {
		items = append(items, consultationSummary{
			ID:           c.ID,
			Title:        c.Title,
			CreatedAt:    c.CreatedAt.Format("Jan 02, 15:04"),
			UpdatedAt:    c.UpdatedAt.Format("Jan 02, 15:04"),
			MessageCount: len(c.Messages),
		})
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"consultations": items,
		"active_index":  sess.Store.ActiveIndex(),
	})
}

func (s *Server) handleCreateConsultation(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	c, err := sess.Store.Create(r.Context())
	if err != nil {
		s.logger.Error("create consultation failed", "error", err)
		http.Error(w, "Failed to create consultation", http.StatusInternalServerError)
		return
	}
	// Fire the greeting so the thread opens with the name question.
	if _, err := sess.Store.HandleOnboarding(r.Context(), c, ""); err != nil {
		s.logger.Error("onboarding greeting failed", "error", err)
		http.Error(w, "Failed to create consultation", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusCreated, c)
}

type indexRequest struct {
	Index int `json:"index"`
}

func (s *Server) handleSwitchConsultation(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	var req indexRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if err := sess.Store.Switch(req.Index); err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"active_index": req.Index})
}

type renameRequest struct {
	Index int    `json:"index"`
	Title string `json:"title"`
}

func (s *Server) handleRenameConsultation(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	var req renameRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	if err := sess.Store.Rename(r.Context(), req.Index, req.Title); err != nil {
		if errors.Is(err, consultation.ErrIndexOutOfRange) {
			http.Error(w, err.Error(), http.StatusBadRequest)
			return
		}
		http.Error(w, "Failed to rename consultation", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "renamed"})
}

func (s *Server) handleActiveConsultation(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	c, err := s.ensureConsultation(r.Context(), sess)
	if err != nil {
		s.logger.Error("ensure consultation failed", "error", err)
		http.Error(w, "No consultation selected.", http.StatusInternalServerError)
		return
	}
	writeJSON(w, http.StatusOK, c)
}

// ---------------------------------------------------------------------------
// Chat turn
// ---------------------------------------------------------------------------

type messageRequest struct {
	Text        string `json:"text"`
	ImageBase64 string `json:"image_base64,omitempty"`
}

type messageResponse struct {
	Reply          *consultation.Message `json:"reply"`
	Onboarding     bool                  `json:"onboarding"`
	OnboardingStep int                   `json:"onboarding_step"`
}

func (s *Server) handleMessage(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	var req messageRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "Invalid request", http.StatusBadRequest)
		return
	}

	var imageBytes []byte
	if req.ImageBase64 != "" {
		var err error
		imageBytes, err = base64.StdEncoding.DecodeString(req.ImageBase64)
		if err != nil {
			http.Error(w, "Invalid image encoding", http.StatusBadRequest)
			return
		}
	}

	if _, err := s.ensureConsultation(r.Context(), sess); err != nil {
		s.logger.Error("ensure consultation failed", "error", err)
		http.Error(w, "Processing failed", http.StatusInternalServerError)
		return
	}

	result, err := s.svc.HandleTurn(r.Context(), sess.Store, req.Text, imageBytes)
	if err != nil {
		s.logger.Error("turn failed", "error", err)
		http.Error(w, "Processing failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, messageResponse{
		Reply:          result.Reply,
		Onboarding:     result.Onboarding,
		OnboardingStep: sess.Store.Active().OnboardingStep,
	})
}

// ---------------------------------------------------------------------------
// Report
// ---------------------------------------------------------------------------

func (s *Server) handleReport(w http.ResponseWriter, r *http.Request) {
	sess := sessionFrom(r)

	c := sess.Store.Active()
	if c == nil {
		http.Error(w, "No consultation selected.", http.StatusNotFound)
		return
	}

	pdf, err := s.reports.TranscriptPDF(c)
	if err != nil {
		s.logger.Error("report generation failed", "error", err)
		http.Error(w, "Report generation failed: "+err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=consultation_%d.pdf", c.ID))
	w.Write(pdf)
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}
