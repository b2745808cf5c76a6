package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/dberzins/inkwell/internal/common"
	"github.com/dberzins/inkwell/internal/server/models"
)

func respondJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(payload)
}

func respondError(w http.ResponseWriter, status int, message string) {
	respondJSON(w, status, map[string]string{"error": message})
}

func (s *Server) health(w http.ResponseWriter, r *http.Request) {
	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// --- posts ---

type postView struct {
	ID       int64       `json:"id"`
	Title    string      `json:"title"`
	Subtitle string      `json:"subtitle"`
	Body     string      `json:"body,omitempty"`
	ImageURL string      `json:"image_url"`
	Date     string      `json:"date"`
	Author   *authorView `json:"author,omitempty"`
}

type authorView struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func listItemView(p *models.Post) postView {
	return postView{
		ID:       p.ID,
		Title:    p.Title,
		Subtitle: p.Subtitle,
		ImageURL: p.ImageURL,
		Date:     p.DisplayDate(),
	}
}

func (s *Server) listPosts(w http.ResponseWriter, r *http.Request) {
	posts, err := s.posts.List(r.Context())
	if err != nil {
		s.logger.Error(r.Context(), "list posts failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	views := make([]postView, 0, len(posts))
	for _, p := range posts {
		views = append(views, listItemView(p))
	}
	respondJSON(w, http.StatusOK, map[string]any{"posts": views})
}

func (s *Server) getPost(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	post, err := s.posts.Get(r.Context(), id)
	if err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			respondError(w, http.StatusNotFound, "post not found")
			return
		}
		s.logger.Error(r.Context(), "get post failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	view := listItemView(post)
	view.Body = post.Body

	author, err := s.posts.Author(r.Context(), post)
	if err != nil {
		s.logger.Error(r.Context(), "resolve author failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	view.Author = &authorView{ID: author.ID, Name: author.Name}

	respondJSON(w, http.StatusOK, view)
}

type postRequest struct {
	Title    string `json:"title"`
	Subtitle string `json:"subtitle"`
	Body     string `json:"body"`
	ImageURL string `json:"image_url"`
}

func (s *Server) createPost(w http.ResponseWriter, r *http.Request) {
	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Title == "" || req.Body == "" {
		respondError(w, http.StatusBadRequest, "title and body are required")
		return
	}

	post, err := s.posts.Create(r.Context(), req.Title, req.Subtitle, req.Body, req.ImageURL, callerFrom(r))
	if err != nil {
		if errors.Is(err, common.ErrorDuplicateTitle) {
			respondError(w, http.StatusConflict, "a post with that title already exists")
			return
		}
		s.logger.Error(r.Context(), "create post failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	view := listItemView(post)
	view.Body = post.Body
	respondJSON(w, http.StatusCreated, view)
}

func (s *Server) updatePost(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	var req postRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Title == "" || req.Body == "" {
		respondError(w, http.StatusBadRequest, "title and body are required")
		return
	}

	if err := s.posts.Update(r.Context(), id, req.Title, req.Subtitle, req.Body, req.ImageURL); err != nil {
		switch {
		case errors.Is(err, common.ErrorNotFound):
			respondError(w, http.StatusNotFound, "post not found")
		case errors.Is(err, common.ErrorDuplicateTitle):
			respondError(w, http.StatusConflict, "a post with that title already exists")
		default:
			s.logger.Error(r.Context(), "update post failed", "error", err)
			respondError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "updated"})
}

func (s *Server) deletePost(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid post id")
		return
	}

	if err := s.posts.Delete(r.Context(), id); err != nil {
		if errors.Is(err, common.ErrorNotFound) {
			respondError(w, http.StatusNotFound, "post not found")
			return
		}
		s.logger.Error(r.Context(), "delete post failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "deleted"})
}

// --- auth ---

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type sessionView struct {
	User    *authorView `json:"user"`
	Flashes []string    `json:"flashes"`
}

func (s *Server) register(w http.ResponseWriter, r *http.Request) {
	if callerFrom(r) != nil {
		respondError(w, http.StatusConflict, "You are already logged in.")
		return
	}

	var req registerRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		respondError(w, http.StatusBadRequest, "name, email and password are required")
		return
	}

	user, err := s.users.Register(r.Context(), req.Name, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, common.ErrorDuplicateEmail) {
			respondError(w, http.StatusConflict, "You've already signed up with that email, log in instead!")
			return
		}
		s.logger.Error(r.Context(), "register failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.startSession(w, r, user)
}

func (s *Server) login(w http.ResponseWriter, r *http.Request) {
	if callerFrom(r) != nil {
		respondError(w, http.StatusConflict, "You are already logged in.")
		return
	}

	var req loginRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}

	user, err := s.users.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrorUnknownEmail):
			respondError(w, http.StatusUnauthorized, "That email does not exist, please try again.")
		case errors.Is(err, common.ErrorWrongPassword):
			respondError(w, http.StatusUnauthorized, "Password incorrect, please try again.")
		default:
			s.logger.Error(r.Context(), "login failed", "error", err)
			respondError(w, http.StatusInternalServerError, "internal error")
		}
		return
	}

	s.startSession(w, r, user)
}

// startSession finishes a successful register/login: session row, cookie,
// welcome flash for the next session read.
func (s *Server) startSession(w http.ResponseWriter, r *http.Request, user *models.User) {
	token, err := s.sessions.Start(r.Context(), user.ID)
	if err != nil {
		s.logger.Error(r.Context(), "session start failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	if err := s.sessions.Flash(r.Context(), token, "Welcome, "+user.Name+"!"); err != nil {
		s.logger.Warn(r.Context(), "flash failed", "error", err)
	}

	s.setSessionCookie(w, token)
	respondJSON(w, http.StatusOK, map[string]any{
		"user": authorView{ID: user.ID, Name: user.Name},
	})
}

func (s *Server) logout(w http.ResponseWriter, r *http.Request) {
	if callerFrom(r) == nil {
		respondError(w, http.StatusUnauthorized, "not logged in")
		return
	}

	if err := s.sessions.End(r.Context(), sessionToken(r)); err != nil {
		s.logger.Error(r.Context(), "logout failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}

	s.clearSessionCookie(w)
	respondJSON(w, http.StatusOK, map[string]string{"status": "logged out"})
}

// session reports the current caller and drains the queued flash
// messages; each message is delivered exactly once.
func (s *Server) session(w http.ResponseWriter, r *http.Request) {
	view := sessionView{Flashes: []string{}}

	if caller := callerFrom(r); caller != nil {
		view.User = &authorView{ID: caller.ID, Name: caller.Name}
	}

	flashes, err := s.sessions.DrainFlashes(r.Context(), sessionToken(r))
	if err != nil {
		s.logger.Error(r.Context(), "drain flashes failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	if flashes != nil {
		view.Flashes = flashes
	}

	respondJSON(w, http.StatusOK, view)
}

// --- pages ---

type pageView struct {
	Slug  string `json:"slug"`
	Title string `json:"title"`
	Body  string `json:"body"`
}

var staticPages = map[string]pageView{
	"about": {
		Slug:  "about",
		Title: "About Me",
		Body:  "This is what I do. Hi!",
	},
	"contact": {
		Slug:  "contact",
		Title: "Contact Me",
		Body:  "Have questions? I have answers.",
	},
}

func (s *Server) getPage(w http.ResponseWriter, r *http.Request) {
	page, ok := staticPages[chi.URLParam(r, "slug")]
	if !ok {
		respondError(w, http.StatusNotFound, "page not found")
		return
	}
	respondJSON(w, http.StatusOK, page)
}

// --- images ---

func (s *Server) imageUploadURL(w http.ResponseWriter, r *http.Request) {
	key, url, err := s.images.GetPresignedPutURL(r.Context())
	if err != nil {
		s.logger.Error(r.Context(), "presign upload failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"key": key, "upload_url": url})
}

// imageDownloadURL signs a temporary download URL for a stored image key,
// so the admin UI can preview uploads in a private bucket.
func (s *Server) imageDownloadURL(w http.ResponseWriter, r *http.Request) {
	key := r.URL.Query().Get("key")
	if key == "" {
		respondError(w, http.StatusBadRequest, "key is required")
		return
	}

	url, err := s.images.GetPresignedGetURL(r.Context(), key)
	if err != nil {
		s.logger.Error(r.Context(), "presign download failed", "error", err)
		respondError(w, http.StatusInternalServerError, "internal error")
		return
	}
	respondJSON(w, http.StatusOK, map[string]string{"key": key, "download_url": url})
}

// --- contact ---

type contactRequest struct {
	Name    string `json:"name"`
	Email   string `json:"email"`
	Phone   string `json:"phone"`
	Message string `json:"message"`
}

func (s *Server) contact(w http.ResponseWriter, r *http.Request) {
	var req contactRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondError(w, http.StatusBadRequest, "invalid body")
		return
	}
	if req.Name == "" || req.Email == "" || req.Message == "" {
		respondError(w, http.StatusBadRequest, "name, email and message are required")
		return
	}

	msg := &models.ContactMessage{
		Name:    req.Name,
		Email:   req.Email,
		Phone:   req.Phone,
		Message: req.Message,
	}
	if err := s.mailer.SendContactMessage(r.Context(), msg); err != nil {
		s.logger.Error(r.Context(), "contact relay failed", "error", err)
		respondError(w, http.StatusBadGateway, "failed to send your message, please try again later")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "Successfully sent your message!"})
}
