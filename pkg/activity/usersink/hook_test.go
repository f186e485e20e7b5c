package usersink

import (
	"context"
	"testing"
	"time"

	"github.com/goliatone/go-users/pkg/types"
	"github.com/google/uuid"

	"github.com/goliatone/go-transfers/pkg/activity"
)

type recordingSink struct {
	records []types.ActivityRecord
	err     error
}

func (s *recordingSink) Log(_ context.Context, record types.ActivityRecord) error {
	s.records = append(s.records, record)
	return s.err
}

func TestHookNotifyMapsEvent(t *testing.T) {
	sink := &recordingSink{}
	hook := Hook{Sink: sink}

	now := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	actorID := uuid.New()
	userID := uuid.New()

	event := activity.Event{
		Verb:           "driver.verify",
		ActorID:        actorID.String(),
		UserID:         userID.String(),
		ObjectType:     "driver",
		ObjectID:       "D003",
		Channel:        "admin",
		DefinitionCode: "drivers:verify",
		Recipients:     []string{"ops@transfers.com"},
		Metadata:       map[string]any{"verified": true},
		OccurredAt:     now,
	}

	if err := hook.Notify(context.Background(), event); err != nil {
		t.Fatalf("notify: %v", err)
	}
	if len(sink.records) != 1 {
		t.Fatalf("expected 1 record, got %d", len(sink.records))
	}
	record := sink.records[0]
	if record.ActorID != actorID || record.UserID != userID {
		t.Fatalf("unexpected ids actor=%s user=%s", record.ActorID, record.UserID)
	}
	if record.TenantID != uuid.Nil {
		t.Fatalf("expected nil tenant, got %s", record.TenantID)
	}
	if record.Verb != "driver.verify" || record.ObjectType != "driver" || record.ObjectID != "D003" {
		t.Fatalf("unexpected record payload: %+v", record)
	}
	if record.Channel != "admin" || !record.OccurredAt.Equal(now) {
		t.Fatalf("unexpected channel/time: %+v", record)
	}
	if record.Data["definition_code"] != "drivers:verify" || record.Data["verified"] != true {
		t.Fatalf("unexpected data %v", record.Data)
	}
	recipients, ok := record.Data["recipients"].([]string)
	if !ok || len(recipients) != 1 {
		t.Fatalf("expected recipients metadata got %v", record.Data["recipients"])
	}
}

func TestHookDerivesStableIDsForPlainIdentifiers(t *testing.T) {
	sink := &recordingSink{}
	hook := Hook{Sink: sink}
	evt := activity.Event{Verb: "user.status", ObjectType: "user", ActorID: "admin_1"}

	_ = hook.Notify(context.Background(), evt)
	_ = hook.Notify(context.Background(), evt)

	if len(sink.records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(sink.records))
	}
	first, second := sink.records[0], sink.records[1]
	if first.ActorID == uuid.Nil || first.ActorID != second.ActorID {
		t.Fatalf("expected stable derived actor id, got %s and %s", first.ActorID, second.ActorID)
	}
	if first.Data["actor_ref"] != "admin_1" {
		t.Fatalf("expected original actor reference, got %v", first.Data["actor_ref"])
	}
}

func TestHookNotifySkipsMissingVerb(t *testing.T) {
	sink := &recordingSink{}
	_ = Hook{Sink: sink}.Notify(context.Background(), activity.Event{})
	if len(sink.records) != 0 {
		t.Fatalf("expected no records for empty event, got %d", len(sink.records))
	}
	if err := (Hook{}).Notify(context.Background(), activity.Event{Verb: "x"}); err != nil {
		t.Fatalf("nil sink should be a no-op, got %v", err)
	}
}
