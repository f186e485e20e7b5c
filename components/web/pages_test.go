package web

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/goliatone/go-transfers/components/chat"
)

func TestPageDashboard(t *testing.T) {
	f := newFixture(t)
	client := f.adminClient(t)

	page, err := f.app.Page(context.Background(), client, PageRequest{Path: "/admin"})
	require.NoError(t, err)
	assert.Equal(t, "admin/dashboard", page.Template)
	assert.Equal(t, "rtl", page.Data["dir"])

	overview, ok := page.Data["overview"].(map[string]any)
	require.True(t, ok)
	cards, ok := overview["cards"].([]any)
	require.True(t, ok)
	assert.Len(t, cards, 4)
	first := cards[0].(map[string]any)
	assert.Equal(t, "stat-total-users", first["testId"])
	assert.Contains(t, overview["weeklyChartHtml"], "weekly")

	adminProfile, ok := page.Data["admin"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, "admin@transfers.com", adminProfile["email"])

	nav := page.Data["nav"].([]any)
	assert.Len(t, nav, 1+len(AdminSections))
	assert.Equal(t, true, nav[0].(map[string]any)["active"])
}

func TestPageCollectionFilters(t *testing.T) {
	f := newFixture(t)
	client := f.adminClient(t)

	page, err := f.app.Page(context.Background(), client, PageRequest{Path: "/admin/users", Status: "active"})
	require.NoError(t, err)
	assert.Equal(t, "admin/collection", page.Template)
	assert.Equal(t, "users", page.Data["collection"])

	rows := page.Data["rows"].([]any)
	require.NotEmpty(t, rows)
	columns := page.Data["columns"].([]any)
	for _, raw := range rows {
		row := raw.(map[string]any)
		assert.Equal(t, "active", row["status"])
		assert.Len(t, row["cells"], len(columns))
	}
	assert.EqualValues(t, len(rows), page.Data["total"])
	assert.Equal(t, []any{"active", "banned", "suspended"}, page.Data["statuses"])
}

func TestPageCollectionUsesEnglishNames(t *testing.T) {
	f := newFixture(t)
	client := f.adminClient(t)
	f.admin.ToggleLanguage(context.Background())

	page, err := f.app.Page(context.Background(), client, PageRequest{Path: "/admin/drivers"})
	require.NoError(t, err)
	assert.Equal(t, "ltr", page.Data["dir"])
	row := page.Data["rows"].([]any)[0].(map[string]any)
	assert.Equal(t, row["nameEn"], row["name"])

	columns := page.Data["columns"].([]any)
	labels := make([]string, len(columns))
	for i, c := range columns {
		labels[i] = c.(map[string]any)["label"].(string)
	}
	assert.Contains(t, labels, "Plate")
	assert.Contains(t, labels, "Status")
}

func TestPageUnknownCollection(t *testing.T) {
	f := newFixture(t)
	_, err := f.app.Page(context.Background(), f.adminClient(t), PageRequest{Path: "/admin/reports"})
	assert.ErrorIs(t, err, ErrBadRequest)
}

func TestPageChatOpensConversation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	client := f.riderClient(t)

	sara, err := f.hub.Store("TV23456")
	require.NoError(t, err)
	conv, err := sara.GetOrCreateConversation(ctx, "TV12345")
	require.NoError(t, err)
	_, err = sara.SendMessage(ctx, conv.ID, "مرحبا", "Hello", nil)
	require.NoError(t, err)

	page, err := f.app.Page(ctx, client, PageRequest{Path: "/chat"})
	require.NoError(t, err)
	inbox := page.Data["inbox"].(map[string]any)
	assert.EqualValues(t, 1, inbox["totalUnread"])

	page, err = f.app.Page(ctx, client, PageRequest{Path: "/chat", Conversation: conv.ID})
	require.NoError(t, err)
	assert.Equal(t, "chat", page.Template)
	inbox = page.Data["inbox"].(map[string]any)
	assert.EqualValues(t, 0, inbox["totalUnread"])

	messages := page.Data["messages"].([]any)
	require.Len(t, messages, 1)
	item := messages[0].(map[string]any)
	assert.Equal(t, false, item["mine"])
	assert.Equal(t, conv.ID, chat.ConversationID("TV12345", "TV23456"))
}

func TestPageChatRequiresSignIn(t *testing.T) {
	f := newFixture(t)
	_, err := f.app.Page(context.Background(), f.client(t), PageRequest{Path: "/chat"})
	assert.ErrorIs(t, err, ErrUnauthorized)
}

func TestRenderPage(t *testing.T) {
	f := newFixture(t)
	var out strings.Builder
	html, err := f.app.RenderPage(context.Background(), f.client(t), PageRequest{Path: "/login", Flash: "bad"}, &out)
	require.NoError(t, err)
	assert.Equal(t, "<html>login</html>", html)
	assert.Equal(t, html, out.String())
	assert.Equal(t, "login", f.renderer.name)
	data := f.renderer.data.(map[string]any)
	assert.Equal(t, "bad", data["flash"])
}

func TestFormatCell(t *testing.T) {
	assert.Equal(t, "4.8", formatCell(4.8))
	assert.Equal(t, "12", formatCell(float64(12)))
	assert.Equal(t, "✓", formatCell(true))
	assert.Equal(t, "", formatCell(nil))
}

func TestTemplatesRenderEveryPage(t *testing.T) {
	renderer, err := NewTemplateRenderer()
	require.NoError(t, err)
	f := newFixtureWith(t, renderer)
	ctx := context.Background()

	anon := f.client(t)
	for _, path := range []string{PathHome, PathLogin} {
		html, err := f.app.RenderPage(ctx, anon, PageRequest{Path: path, Flash: "hello"})
		require.NoError(t, err, path)
		assert.Contains(t, html, "<!DOCTYPE html>", path)
		assert.Contains(t, html, `data-testid="flash"`, path)
	}

	operator := f.adminClient(t)
	paths := []string{PathAdmin}
	for _, section := range AdminSections {
		paths = append(paths, PathAdmin+"/"+section)
	}
	for _, path := range paths {
		html, err := f.app.RenderPage(ctx, operator, PageRequest{Path: path})
		require.NoError(t, err, path)
		assert.Contains(t, html, `data-testid="sidebar"`, path)
		assert.Contains(t, html, `dir="rtl"`, path)
	}
	html, err := f.app.RenderPage(ctx, operator, PageRequest{Path: PathAdmin})
	require.NoError(t, err)
	assert.Contains(t, html, `data-testid="stat-total-users"`)
	html, err = f.app.RenderPage(ctx, operator, PageRequest{Path: PathAdmin + "/drivers"})
	require.NoError(t, err)
	assert.Contains(t, html, `data-testid="drivers-table"`)

	rider := f.riderClient(t)
	store, err := f.app.ChatStore(rider)
	require.NoError(t, err)
	conv, err := store.GetOrCreateConversation(ctx, "TV23456")
	require.NoError(t, err)
	_, err = store.SendMessage(ctx, conv.ID, "مرحبا", "Hello", nil)
	require.NoError(t, err)

	html, err = f.app.RenderPage(ctx, rider, PageRequest{Path: PathChat, Conversation: conv.ID})
	require.NoError(t, err)
	assert.Contains(t, html, `data-testid="chat-page"`)
	assert.Contains(t, html, `data-participant="TV12345"`)
	assert.Contains(t, html, "message mine")
}

func TestPageChatShowsTimesInLocation(t *testing.T) {
	riyadh := time.FixedZone("AST", 3*60*60)
	sent := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for _, tc := range []struct {
		name     string
		location *time.Location
		want     string
	}{
		{name: "default utc", want: "09:00"},
		{name: "riyadh", location: riyadh, want: "12:00"},
	} {
		t.Run(tc.name, func(t *testing.T) {
			f := newFixtureWith(t, &stubRenderer{}, func(opts *Options) { opts.Location = tc.location })
			ctx := context.Background()
			rider := f.riderClient(t)
			store, err := f.app.ChatStore(rider)
			require.NoError(t, err)
			require.NoError(t, store.Receive(ctx, chat.Message{ID: "m1", SenderID: "TV23456", Text: "hi", Timestamp: sent}))

			page, err := f.app.Page(ctx, rider, PageRequest{Path: PathChat, Conversation: chat.ConversationID("TV12345", "TV23456")})
			require.NoError(t, err)
			messages := page.Data["messages"].([]any)
			require.Len(t, messages, 1)
			assert.Equal(t, tc.want, messages[0].(map[string]any)["time"])
		})
	}
}
