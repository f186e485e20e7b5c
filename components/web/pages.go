package web

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"

	"github.com/ettle/strcase"

	"github.com/goliatone/go-transfers/components/admin"
	adminqueries "github.com/goliatone/go-transfers/components/admin/queries"
	"github.com/goliatone/go-transfers/components/chat"
	chatqueries "github.com/goliatone/go-transfers/components/chat/queries"
	"github.com/goliatone/go-transfers/components/dashboard"
)

// PageRequest describes a page render after the guard has let it through.
type PageRequest struct {
	Path         string
	Status       string
	Search       string
	Conversation string
	Flash        string
}

// Page is a resolved template plus its view data.
type Page struct {
	Template string
	Data     map[string]any
}

var collectionColumns = map[string][]string{
	admin.CollectionUsers:       {"id", "name", "email", "phone", "status", "rides", "orders", "joined"},
	admin.CollectionDrivers:     {"id", "name", "phone", "vehicle", "plate", "rating", "status", "verified", "trips"},
	admin.CollectionRestaurants: {"id", "name", "cuisine", "status", "rating", "orders", "revenue"},
	admin.CollectionRides:       {"id", "rider", "driver", "from", "to", "fare", "status", "date"},
	admin.CollectionOrders:      {"id", "customer", "restaurant", "items", "total", "status", "date"},
	admin.CollectionPromotions:  {"id", "code", "type", "value", "minOrder", "maxUses", "used", "status", "expiresAt"},
}

// Page builds the template and data for req.
func (a *App) Page(ctx context.Context, client Client, req PageRequest) (Page, error) {
	path := normalizePath(req.Path)
	prefs := a.admin.Preferences()
	data := map[string]any{
		"path":  path,
		"state": client.State(),
		"prefs": prefs,
		"lang":  prefs.Language,
		"dir":   direction(prefs.Language),
		"flash": req.Flash,
		"nav":   navigation(path, prefs.Language),
	}
	if profile, ok := a.admin.Admin(); ok {
		data["admin"] = profile
	}

	var template string
	switch {
	case path == PathHome:
		template = "home"
	case path == PathLogin:
		template = "login"
	case path == PathChat:
		template = "chat"
		if err := a.chatPage(ctx, client, req, data); err != nil {
			return Page{}, err
		}
	case path == PathAdmin:
		template = "admin/dashboard"
		if err := a.dashboardPage(ctx, prefs, data); err != nil {
			return Page{}, err
		}
	case path == PathAdmin+"/settings":
		template = "admin/settings"
	case strings.HasPrefix(path, PathAdmin+"/"):
		template = "admin/collection"
		if err := a.collectionPage(ctx, strings.TrimPrefix(path, PathAdmin+"/"), req, prefs.Language, data); err != nil {
			return Page{}, err
		}
	default:
		return Page{}, fmt.Errorf("%w: no page for %s", ErrBadRequest, path)
	}

	view, err := toViewData(data)
	if err != nil {
		return Page{}, err
	}
	return Page{Template: template, Data: view}, nil
}

// RenderPage renders req with the configured template renderer.
func (a *App) RenderPage(ctx context.Context, client Client, req PageRequest, out ...io.Writer) (string, error) {
	if a.renderer == nil {
		return "", fmt.Errorf("web: template renderer not configured")
	}
	page, err := a.Page(ctx, client, req)
	if err != nil {
		return "", err
	}
	html, err := a.renderer.Render(page.Template, page.Data, out...)
	if err != nil {
		return "", fmt.Errorf("web: render %s: %w", page.Template, err)
	}
	a.telemetry.Record(ctx, "web.page", map[string]any{"template": page.Template, "client_id": client.ID})
	return html, nil
}

func (a *App) dashboardPage(ctx context.Context, prefs admin.Preferences, data map[string]any) error {
	overview, err := a.Overview(ctx, prefs)
	if err != nil {
		return err
	}
	data["overview"] = overview
	return nil
}

// Overview builds the dashboard cards and charts in the operator's locale.
func (a *App) Overview(ctx context.Context, prefs admin.Preferences) (dashboard.Overview, error) {
	stats, err := a.Queries.Stats.Query(ctx, struct{}{})
	if err != nil {
		return dashboard.Overview{}, err
	}
	return a.dashboard.BuildOverview(ctx, stats.Stats, stats.Charts, prefs.Language, prefs.Currency)
}

func (a *App) collectionPage(ctx context.Context, collection string, req PageRequest, lang string, data map[string]any) error {
	columns, ok := collectionColumns[collection]
	if !ok {
		return fmt.Errorf("%w: unknown collection %s", ErrBadRequest, collection)
	}
	result, err := a.Queries.List.Query(ctx, adminqueries.ListInput{
		Collection: collection,
		Status:     req.Status,
		Search:     req.Search,
	})
	if err != nil {
		return err
	}
	rows, err := collectionRows(result, columns, lang)
	if err != nil {
		return err
	}
	headers := make([]map[string]string, len(columns))
	for i, col := range columns {
		headers[i] = map[string]string{"key": col, "label": columnLabel(col, lang)}
	}
	data["collection"] = collection
	data["title"] = dashboard.Label(collection, lang)
	data["columns"] = headers
	data["rows"] = rows
	data["total"] = result.Total
	data["statuses"] = admin.Statuses(collection)
	data["filter"] = map[string]string{"status": req.Status, "search": req.Search}
	return nil
}

func (a *App) chatPage(ctx context.Context, client Client, req PageRequest, data map[string]any) error {
	participantID, err := client.ParticipantID()
	if err != nil {
		return err
	}
	inbox, err := a.Queries.Inbox.Query(ctx, chatqueries.ConversationsInput{ParticipantID: participantID})
	if err != nil {
		return err
	}
	data["inbox"] = inbox
	if req.Conversation == "" {
		return nil
	}
	store, err := a.ChatStore(client)
	if err != nil {
		return err
	}
	if err := store.SetActive(ctx, req.Conversation); err != nil {
		return err
	}
	lang := fmt.Sprint(data["lang"])
	messages, err := a.Queries.Messages.Query(ctx, chatqueries.MessagesInput{
		ParticipantID:  participantID,
		ConversationID: req.Conversation,
		Query:          req.Search,
		Language:       lang,
	})
	if err != nil {
		return err
	}
	now := a.now().In(a.location)
	views := make([]map[string]any, len(messages))
	for i, msg := range messages {
		views[i] = map[string]any{
			"message": msg,
			"mine":    msg.SenderID == participantID,
			"time":    chat.FormatTime(msg.Timestamp.In(a.location), now, lang),
		}
	}
	data["conversation"] = req.Conversation
	data["messages"] = views
	// the inbox was read before the conversation opened
	if inbox, err = a.Queries.Inbox.Query(ctx, chatqueries.ConversationsInput{ParticipantID: participantID}); err == nil {
		data["inbox"] = inbox
	}
	return nil
}

// collectionRows decodes the listing into JSON shaped rows with a "cells"
// entry holding the column values in order.
func collectionRows(result adminqueries.ListResult, columns []string, lang string) ([]map[string]any, error) {
	var items any
	switch result.Collection {
	case admin.CollectionUsers:
		items = result.Users
	case admin.CollectionDrivers:
		items = result.Drivers
	case admin.CollectionRestaurants:
		items = result.Restaurants
	case admin.CollectionRides:
		items = result.Rides
	case admin.CollectionOrders:
		items = result.Orders
	case admin.CollectionPromotions:
		items = result.Promotions
	}
	raw, err := json.Marshal(items)
	if err != nil {
		return nil, fmt.Errorf("web: encode rows: %w", err)
	}
	var rows []map[string]any
	if err := json.Unmarshal(raw, &rows); err != nil {
		return nil, fmt.Errorf("web: decode rows: %w", err)
	}
	for _, row := range rows {
		if en, ok := row["nameEn"].(string); ok && en != "" && lang == dashboard.LocaleEnglish {
			row["name"] = en
		}
		cells := make([]string, len(columns))
		for i, col := range columns {
			cells[i] = formatCell(row[col])
		}
		row["cells"] = cells
	}
	return rows, nil
}

func columnLabel(key, lang string) string {
	if label := dashboard.Label(key, lang); label != key {
		return label
	}
	return strcase.ToCase(key, strcase.TitleCase, ' ')
}

func navigation(active, lang string) []map[string]any {
	items := []map[string]any{{
		"href":   PathAdmin,
		"label":  dashboard.Label("dashboard", lang),
		"active": active == PathAdmin,
		"testId": "nav-dashboard",
	}}
	for _, section := range AdminSections {
		href := PathAdmin + "/" + section
		items = append(items, map[string]any{
			"href":   href,
			"label":  dashboard.Label(section, lang),
			"active": active == href,
			"testId": "nav-" + strcase.ToKebab(section),
		})
	}
	return items
}

func direction(lang string) string {
	if lang == dashboard.LocaleArabic {
		return "rtl"
	}
	return "ltr"
}

// toViewData flattens structs into maps keyed by their JSON names so the
// templates address fields the same way the JSON API does.
func toViewData(data map[string]any) (map[string]any, error) {
	raw, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("web: encode view data: %w", err)
	}
	var view map[string]any
	if err := json.Unmarshal(raw, &view); err != nil {
		return nil, fmt.Errorf("web: decode view data: %w", err)
	}
	return normalizeNumbers(view).(map[string]any), nil
}

// normalizeNumbers turns integral JSON numbers back into integers so
// templates print "3" rather than "3.000000".
func normalizeNumbers(v any) any {
	switch value := v.(type) {
	case map[string]any:
		for k, item := range value {
			value[k] = normalizeNumbers(item)
		}
		return value
	case []any:
		for i, item := range value {
			value[i] = normalizeNumbers(item)
		}
		return value
	case float64:
		if value == math.Trunc(value) && math.Abs(value) < 1<<53 {
			return int64(value)
		}
		return value
	default:
		return v
	}
}

func formatCell(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case bool:
		if value {
			return "✓"
		}
		return "✗"
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	default:
		return fmt.Sprint(value)
	}
}
