// Package api serves the identity endpoints over cookie sessions: who am I,
// login, register, and logout.
package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"mime"
	"net/http"
	"time"

	"github.com/alexedwards/scs/v2"

	"git.sr.ht/~jakintosh/cookieauth/internal/service"
	"git.sr.ht/~jakintosh/cookieauth/pkg/identity"
)

const (
	SessionCookieName = "identity.session"
	sessionKeyUserID  = "user_id"
	sessionLifetime   = 14 * 24 * time.Hour
)

const (
	problemTypeBadRequest   = "https://tools.ietf.org/html/rfc9110#section-15.5.1"
	problemTypeUnauthorized = "https://tools.ietf.org/html/rfc9110#section-15.5.2"
	problemTypeServerError  = "https://tools.ietf.org/html/rfc9110#section-15.6.1"
	titleValidation         = "One or more validation errors occurred."
)

type API struct {
	service  *service.Service
	sessions *scs.SessionManager
	log      *slog.Logger
}

type Option func(*API)

func WithLogger(logger *slog.Logger) Option {
	return func(a *API) {
		a.log = logger
	}
}

func New(
	svc *service.Service,
	sessions *scs.SessionManager,
	opts ...Option,
) *API {
	a := &API{
		service:  svc,
		sessions: sessions,
		log:      slog.New(slog.DiscardHandler),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// NewSessionManager returns a cookie session manager persisting to store.
func NewSessionManager(store scs.Store) *scs.SessionManager {
	sm := scs.New()
	sm.Store = store
	sm.Lifetime = sessionLifetime
	sm.Cookie.Name = SessionCookieName
	sm.Cookie.HttpOnly = true
	sm.Cookie.SameSite = http.SameSiteLaxMode
	sm.Cookie.Path = "/"
	return sm
}

func (a *API) userID(r *http.Request) string {
	return a.sessions.GetString(r.Context(), sessionKeyUserID)
}

func (a *API) decodeRequest(req any, w http.ResponseWriter, r *http.Request) bool {
	err := json.NewDecoder(r.Body).Decode(req)
	if err != nil {
		a.logAPIErr(r, "bad json request", "error", err)
		writeProblem(w, identity.ProblemDetails{
			Type:   problemTypeBadRequest,
			Title:  http.StatusText(http.StatusBadRequest),
			Status: http.StatusBadRequest,
			Detail: "The request body is not valid JSON.",
		})
		return false
	}
	return true
}

func returnJSON(data any, w http.ResponseWriter) {
	body, err := json.Marshal(data)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	_, _ = w.Write(body)
}

func writeProblem(w http.ResponseWriter, problem identity.ProblemDetails) {
	body, err := json.Marshal(problem)
	if err != nil {
		w.WriteHeader(http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", identity.ContentTypeProblem)
	w.WriteHeader(problem.Status)
	_, _ = w.Write(body)
}

func (a *API) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var verr *service.ValidationErrors
	switch {
	case errors.As(err, &verr):
		writeProblem(w, validationProblem(verr))
	case errors.Is(err, service.ErrInvalidCredentials),
		errors.Is(err, service.ErrAccountNotFound):
		writeProblem(w, identity.ProblemDetails{
			Type:   problemTypeUnauthorized,
			Title:  http.StatusText(http.StatusUnauthorized),
			Status: http.StatusUnauthorized,
			Detail: "Failed",
		})
	default:
		a.logAPIErr(r, "internal error", "error", err)
		writeProblem(w, identity.ProblemDetails{
			Type:   problemTypeServerError,
			Title:  "An error occurred while processing your request.",
			Status: http.StatusInternalServerError,
		})
	}
}

// validationProblem groups descriptions by code, keeping first-seen order.
func validationProblem(verr *service.ValidationErrors) identity.ProblemDetails {
	index := make(map[string]int)
	fields := []identity.FieldErrors{}
	for _, e := range verr.Errors {
		i, ok := index[e.Code]
		if !ok {
			i = len(fields)
			index[e.Code] = i
			fields = append(fields, identity.FieldErrors{Field: e.Code})
		}
		fields[i].Messages = append(fields[i].Messages, e.Description)
	}

	return identity.ProblemDetails{
		Type:   problemTypeBadRequest,
		Title:  titleValidation,
		Status: http.StatusBadRequest,
		Errors: fields,
	}
}

// requireJSON rejects request bodies that are not declared as JSON.
func (a *API) requireJSON(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method == http.MethodPost {
			mediaType, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))
			if err != nil || mediaType != "application/json" {
				a.logAPIErr(r, "unsupported content type", "content_type", r.Header.Get("Content-Type"))
				w.WriteHeader(http.StatusUnsupportedMediaType)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

func (a *API) logAPIErr(r *http.Request, msg string, args ...any) {
	args = append([]any{"method", r.Method, "uri", r.RequestURI}, args...)
	a.log.WarnContext(r.Context(), msg, args...)
}
