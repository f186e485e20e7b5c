package web

import (
	"context"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-transfers/components/admin"
	"github.com/goliatone/go-transfers/components/chat"
	"github.com/goliatone/go-transfers/components/dashboard"
	"github.com/goliatone/go-transfers/components/session"
)

const testSecret = "0123456789abcdef0123456789abcdef"

type stubCharts struct{}

func (stubCharts) RenderBar(_ context.Context, chart dashboard.BarChart) (string, error) {
	return "<div class=\"chart\">" + chart.Kind + "</div>", nil
}

type stubRenderer struct {
	mu   sync.Mutex
	name string
	data any
}

func (r *stubRenderer) Render(name string, data any, out ...io.Writer) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.name = name
	r.data = data
	html := "<html>" + name + "</html>"
	for _, w := range out {
		if w != nil {
			if _, err := io.WriteString(w, html); err != nil {
				return "", err
			}
		}
	}
	return html, nil
}

type fixture struct {
	app      *App
	admin    *admin.Store
	hub      *chat.Hub
	tokens   *session.TokenIssuer
	sessions *session.Manager
	renderer *stubRenderer
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	renderer := &stubRenderer{}
	f := newFixtureWith(t, renderer)
	f.renderer = renderer
	return f
}

func newFixtureWith(t *testing.T, renderer dashboard.Renderer, configure ...func(*Options)) fixture {
	t.Helper()
	manager, err := session.NewManager(session.Options{KV: session.NewMemoryKV()})
	require.NoError(t, err)
	tokens, err := session.NewTokenIssuer(testSecret, time.Hour)
	require.NoError(t, err)
	store, err := admin.NewStore(admin.Options{})
	require.NoError(t, err)
	hub := chat.NewHub(chat.HubOptions{})
	t.Cleanup(hub.Close)

	opts := Options{
		Sessions:  manager,
		Tokens:    tokens,
		Admin:     store,
		Chat:      hub,
		Dashboard: dashboard.NewService(dashboard.Options{Charts: stubCharts{}}),
		Renderer:  renderer,
		Now:       func() time.Time { return time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC) },
	}
	for _, fn := range configure {
		fn(&opts)
	}
	app, err := NewApp(opts)
	require.NoError(t, err)
	return fixture{app: app, admin: store, hub: hub, tokens: tokens, sessions: manager}
}

func (f fixture) client(t *testing.T) Client {
	t.Helper()
	client, err := f.app.Resolve(context.Background(), "")
	require.NoError(t, err)
	return client
}

func (f fixture) adminClient(t *testing.T) Client {
	t.Helper()
	client := f.client(t)
	_, err := f.app.AdminLogin(context.Background(), &client, LoginRequest{Email: "admin@transfers.com", Password: "admin123"})
	require.NoError(t, err)
	return client
}

func (f fixture) riderClient(t *testing.T) Client {
	t.Helper()
	client := f.client(t)
	_, err := f.app.Login(context.Background(), &client, LoginRequest{Email: "ahmed@example.com", Password: "secret"})
	require.NoError(t, err)
	return client
}
