package httpapi

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/goliatone/go-transfers/components/web"
)

// Handlers exposes the web app over net/http.
type Handlers struct {
	App *web.App
	// SecureCookies marks the session cookie Secure.
	SecureCookies bool
}

// New builds handlers for app.
func New(app *web.App) *Handlers {
	return &Handlers{App: app}
}

// Routes returns a mux with the JSON API, event streams and HTML pages.
func (h *Handlers) Routes() http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /api/session", h.withClient(h.HandleSessionState))
	mux.HandleFunc("POST /api/session/login", h.withClient(h.HandleSessionLogin))
	mux.HandleFunc("POST /api/session/register", h.withClient(h.HandleSessionRegister))
	mux.HandleFunc("POST /api/session/logout", h.withClient(h.HandleLogout))

	mux.HandleFunc("POST /api/admin/login", h.withClient(h.HandleAdminLogin))
	mux.HandleFunc("POST /api/admin/logout", h.withClient(h.HandleLogout))
	mux.HandleFunc("GET /api/admin/stats", h.withAdmin(h.HandleStats))
	mux.HandleFunc("GET /api/admin/overview", h.withAdmin(h.HandleOverview))
	mux.HandleFunc("GET /api/admin/preferences", h.withAdmin(h.HandlePreferences))
	mux.HandleFunc("POST /api/admin/preferences", h.withAdmin(h.HandleUpdatePreferences))
	mux.HandleFunc("GET /api/admin/{collection}", h.withAdmin(h.HandleList))
	mux.HandleFunc("POST /api/admin/{collection}/{id}/status", h.withAdmin(h.HandleUpdateStatus))
	mux.HandleFunc("POST /api/admin/drivers/{id}/verify", h.withAdmin(h.HandleVerifyDriver))
	mux.HandleFunc("POST /api/admin/promotions", h.withAdmin(h.HandleAddPromotion))

	mux.HandleFunc("GET /api/chat/conversations", h.withClient(h.HandleInbox))
	mux.HandleFunc("POST /api/chat/conversations", h.withClient(h.HandleStartConversation))
	mux.HandleFunc("GET /api/chat/users/{id}", h.withClient(h.HandleSearchUser))
	mux.HandleFunc("GET /api/chat/conversations/{id}/messages", h.withClient(h.HandleMessages))
	mux.HandleFunc("POST /api/chat/conversations/{id}/messages", h.withClient(h.HandleSendMessage))
	mux.HandleFunc("PATCH /api/chat/conversations/{id}/messages/{message}", h.withClient(h.HandleEditMessage))
	mux.HandleFunc("POST /api/chat/conversations/{id}/read", h.withClient(h.HandleMarkRead))
	mux.HandleFunc("POST /api/chat/conversations/{id}/pin", h.withClient(h.HandleTogglePin))
	mux.HandleFunc("GET /api/chat/events", h.withClient(h.HandleEvents))
	mux.HandleFunc("GET /api/chat/ws", h.withClient(h.HandleWebSocket))
	mux.HandleFunc("GET /api/", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusNotFound, web.ErrorBody{Error: "not found"})
	})

	h.registerPages(mux)
	return logRequests(h.App.Logger(), mux)
}

type clientHandler func(w http.ResponseWriter, r *http.Request, client *web.Client)

// withClient resolves the session cookie and writes back a fresh token
// when one was issued.
func (h *Handlers) withClient(next clientHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var token string
		if cookie, err := r.Cookie(web.SessionCookie); err == nil {
			token = cookie.Value
		}
		client, err := h.App.Resolve(r.Context(), token)
		if err != nil {
			writeError(w, err)
			return
		}
		h.setCookie(w, &client)
		next(w, r, &client)
	}
}

func (h *Handlers) withAdmin(next clientHandler) http.HandlerFunc {
	return h.withClient(func(w http.ResponseWriter, r *http.Request, client *web.Client) {
		if err := web.RequireAdmin(*client); err != nil {
			writeError(w, err)
			return
		}
		next(w, r, client)
	})
}

func (h *Handlers) setCookie(w http.ResponseWriter, client *web.Client) {
	if !client.Issued {
		return
	}
	w.Header().Del("Set-Cookie")
	http.SetCookie(w, &http.Cookie{
		Name:     web.SessionCookie,
		Value:    client.Token,
		Path:     "/",
		HttpOnly: true,
		Secure:   h.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	})
	client.Issued = false
}

func decode(r *http.Request, v any) error {
	if r.Body == nil {
		return fmt.Errorf("%w: empty body", web.ErrBadRequest)
	}
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("%w: %v", web.ErrBadRequest, err)
	}
	return nil
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, err error) {
	writeJSON(w, web.StatusFor(err), web.ErrorBody{Error: err.Error()})
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (s *statusRecorder) WriteHeader(code int) {
	if s.status == 0 {
		s.status = code
	}
	s.ResponseWriter.WriteHeader(code)
}

func (s *statusRecorder) Write(p []byte) (int, error) {
	if s.status == 0 {
		s.status = http.StatusOK
	}
	return s.ResponseWriter.Write(p)
}

func (s *statusRecorder) Flush() {
	if f, ok := s.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (s *statusRecorder) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := s.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("httpapi: response does not support hijacking")
	}
	if s.status == 0 {
		s.status = http.StatusSwitchingProtocols
	}
	return h.Hijack()
}

func (s *statusRecorder) Unwrap() http.ResponseWriter { return s.ResponseWriter }

func logRequests(logger *zap.Logger, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)
		logger.Debug("request",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Int("status", rec.status),
			zap.Duration("duration", time.Since(start)),
		)
	})
}
