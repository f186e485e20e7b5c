package gorouter

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/gofiber/fiber/v2"
	router "github.com/goliatone/go-router"

	"github.com/goliatone/go-transfers/components/web"
)

// Config wires go-router with the transfers web app.
type Config[T any] struct {
	Router        router.Router[T]
	App           *web.App
	SecureCookies bool
	Routes        RouteConfig
}

// RouteConfig customizes the mount points.
type RouteConfig struct {
	API       string
	WebSocket string
}

// NewServer returns a fiber backed server where static segments win over
// parameter siblings, so /admin/stats is matched before /admin/:collection.
func NewServer(opts ...func(*fiber.App) *fiber.App) router.Server[*fiber.App] {
	return router.NewFiberAdapterWithConfig(router.FiberAdapterConfig{
		PathConflictMode: router.PathConflictModePreferStatic,
	}, opts...)
}

// Register mounts JSON, SSE, WebSocket and HTML routes on a go-router router.
func Register[T any](cfg Config[T]) error {
	if cfg.Router == nil {
		return errors.New("gorouter: router is required")
	}
	if cfg.App == nil {
		return errors.New("gorouter: app is required")
	}
	routes := defaultRouteConfig(cfg.Routes)
	h := handlers{app: cfg.App, secure: cfg.SecureCookies}

	api := cfg.Router.Group(routes.API)
	registerSession(api, h)
	registerAdmin(api, h)
	registerChat(api, h)
	registerWebSocket(cfg.Router, h, routes.WebSocket)
	api.Get("/*", func(ctx router.Context) error {
		return ctx.JSON(http.StatusNotFound, web.ErrorBody{Error: "not found"})
	})
	registerForms(cfg.Router, h)
	registerPages(cfg.Router, h)
	return nil
}

type handlers struct {
	app    *web.App
	secure bool
}

type clientHandler func(router.Context, *web.Client) error

// resolve reads the session cookie. WebSocket contexts satisfy Context too.
func (h handlers) resolve(ctx router.Context) (web.Client, error) {
	return h.app.Resolve(ctx.Context(), ctx.Cookies(web.SessionCookie))
}

func (h handlers) client(next clientHandler) router.HandlerFunc {
	return func(ctx router.Context) error {
		client, err := h.resolve(ctx)
		if err != nil {
			return respondError(ctx, err)
		}
		h.setCookie(ctx, &client)
		return next(ctx, &client)
	}
}

func (h handlers) admin(next clientHandler) router.HandlerFunc {
	return h.client(func(ctx router.Context, client *web.Client) error {
		if err := web.RequireAdmin(*client); err != nil {
			return respondError(ctx, err)
		}
		return next(ctx, client)
	})
}

func (h handlers) participant(next func(router.Context, *web.Client, string) error) router.HandlerFunc {
	return h.client(func(ctx router.Context, client *web.Client) error {
		participantID, err := client.ParticipantID()
		if err != nil {
			return respondError(ctx, err)
		}
		return next(ctx, client, participantID)
	})
}

// setCookie writes the session cookie when Resolve or a login issued a
// new token.
func (h handlers) setCookie(ctx router.Context, client *web.Client) {
	if !client.Issued {
		return
	}
	ctx.Cookie(sessionCookie(client.Token, h.secure))
	client.Issued = false
}

func sessionCookie(token string, secure bool) *router.Cookie {
	return &router.Cookie{
		Name:     web.SessionCookie,
		Value:    token,
		Path:     "/",
		HTTPOnly: true,
		Secure:   secure,
		SameSite: router.CookieSameSiteLaxMode,
	}
}

func decodeJSON(ctx router.Context, v any) error {
	body := ctx.Body()
	if len(body) == 0 {
		return fmt.Errorf("%w: empty body", web.ErrBadRequest)
	}
	if err := json.Unmarshal(body, v); err != nil {
		return fmt.Errorf("%w: %v", web.ErrBadRequest, err)
	}
	return nil
}

func respondError(ctx router.Context, err error) error {
	return ctx.JSON(web.StatusFor(err), web.ErrorBody{Error: err.Error()})
}

func defaultRouteConfig(routes RouteConfig) RouteConfig {
	if routes.API == "" {
		routes.API = "/api"
	}
	if routes.WebSocket == "" {
		routes.WebSocket = routes.API + "/chat/ws"
	}
	return routes
}
