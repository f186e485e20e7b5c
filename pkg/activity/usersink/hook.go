// Package usersink forwards activity events into a go-users activity sink.
package usersink

import (
	"context"

	"github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"

	"github.com/goliatone/go-transfers/pkg/activity"
)

// Namespace derives stable UUIDs for identifiers that are not UUIDs already
// (the fixtures use ids such as "admin_1" or "D003").
var Namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://transfers.example/activity"))

// Sink is the go-users activity logger.
type Sink interface {
	Log(ctx context.Context, record types.ActivityRecord) error
}

// Hook adapts a Sink into an activity.Hook.
type Hook struct {
	Sink Sink
}

var _ activity.Hook = Hook{}

// Notify maps the event to an ActivityRecord and logs it.
func (h Hook) Notify(ctx context.Context, evt activity.Event) error {
	if h.Sink == nil {
		return nil
	}
	evt = activity.NormalizeEvent(evt)
	if evt.Verb == "" {
		return nil
	}
	data := make(map[string]any, len(evt.Metadata)+4)
	for k, v := range evt.Metadata {
		data[k] = v
	}
	if evt.DefinitionCode != "" {
		data["definition_code"] = evt.DefinitionCode
	}
	if len(evt.Recipients) > 0 {
		data["recipients"] = evt.Recipients
	}
	record := types.ActivityRecord{
		ActorID:    resolveID(evt.ActorID, "actor_ref", data),
		UserID:     resolveID(evt.UserID, "user_ref", data),
		TenantID:   resolveID(evt.TenantID, "tenant_ref", data),
		Verb:       evt.Verb,
		ObjectType: evt.ObjectType,
		ObjectID:   evt.ObjectID,
		Channel:    evt.Channel,
		Data:       data,
		OccurredAt: evt.OccurredAt,
	}
	return h.Sink.Log(ctx, record)
}

func resolveID(raw, refKey string, data map[string]any) uuid.UUID {
	if raw == "" {
		return uuid.Nil
	}
	if id, err := uuid.Parse(raw); err == nil {
		return id
	}
	data[refKey] = raw
	return uuid.NewSHA1(Namespace, []byte(raw))
}
