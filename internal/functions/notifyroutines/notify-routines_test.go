package notifyroutines

import (
	"context"
	"testing"

	"github.com/habitflow-app/habitflow-backend/internal/firebase/structs"
	"github.com/habitflow-app/habitflow-backend/internal/messaging"
	"github.com/habitflow-app/habitflow-backend/internal/pubsub"
	"github.com/habitflow-app/habitflow-backend/internal/store"
	"github.com/stretchr/testify/assert"
)

var testConfig = Config{LeadMinutes: 10, Workers: 4}

var testBucket = Bucket{Date: "2024-06-01", Time: "7:00 AM"}

func TestNotifyUpcomingRoutines(t *testing.T) {
	ctx := context.Background()
	client := store.NewMemClient()
	sender := &messaging.MockClient{}

	client.Users["early-bird"] = structs.User{FcmToken: "token-1"}
	client.RoutineLogs["early-bird"] = []structs.RoutineLog{
		{Date: "2024-06-01", StartTime: "7:00 AM", Title: "Morning run", IsFinished: false},
		{Date: "2024-06-01", StartTime: "8:00 AM", Title: "Breakfast", IsFinished: false},
		{Date: "2024-05-31", StartTime: "7:00 AM", Title: "Yesterday", IsFinished: false},
	}

	summary, err := notifyUpcomingRoutines(ctx, &testConfig, client, sender, pubsub.MockClient{}, testBucket)
	if err != nil {
		t.Fatal(err)
	}

	if len(sender.Sent) != 1 {
		t.Fatalf("expected exactly one send, got %v", len(sender.Sent))
	}

	msg := sender.Sent[0]
	assert.Equal(t, "token-1", msg.Token)
	assert.Equal(t, "Routine in 10 minutes", msg.Notification.Title)
	assert.Equal(t, `"Morning run" starts in 10 minutes!`, msg.Notification.Body)
	assert.Equal(t, "high", msg.Android.Priority)
	assert.Equal(t, "default", msg.APNS.Payload.Aps.Sound)

	assert.Equal(t, int64(1), summary.Sent)
	assert.Equal(t, int64(0), summary.Failed)
}

func TestNotifyUpcomingRoutinesSkipsFinished(t *testing.T) {
	ctx := context.Background()
	client := store.NewMemClient()
	sender := &messaging.MockClient{}

	client.Users["done-already"] = structs.User{FcmToken: "token-1"}
	client.RoutineLogs["done-already"] = []structs.RoutineLog{
		{Date: "2024-06-01", StartTime: "7:00 AM", Title: "Morning run", IsFinished: true},
	}

	summary, err := notifyUpcomingRoutines(ctx, &testConfig, client, sender, pubsub.MockClient{}, testBucket)
	if err != nil {
		t.Fatal(err)
	}

	assert.Empty(t, sender.Sent)
	assert.Equal(t, int64(0), summary.Sent)
}

func TestNotifyUpcomingRoutinesSkipsUsersWithoutToken(t *testing.T) {
	ctx := context.Background()
	client := store.NewMemClient()
	sender := &messaging.MockClient{}

	client.Users["no-device"] = structs.User{}
	client.RoutineLogs["no-device"] = []structs.RoutineLog{
		{Date: "2024-06-01", StartTime: "7:00 AM", Title: "Morning run", IsFinished: false},
	}

	summary, err := notifyUpcomingRoutines(ctx, &testConfig, client, sender, pubsub.MockClient{}, testBucket)
	if err != nil {
		t.Fatal(err)
	}

	assert.Empty(t, sender.Sent)
	assert.Equal(t, int64(1), summary.Skipped)
}

func TestNotifyUpcomingRoutinesIsolatesSendFailures(t *testing.T) {
	ctx := context.Background()
	client := store.NewMemClient()
	sender := &messaging.MockClient{FailTokens: map[string]bool{"broken-token": true}}

	client.Users["broken"] = structs.User{FcmToken: "broken-token"}
	client.Users["healthy"] = structs.User{FcmToken: "healthy-token"}
	client.RoutineLogs["broken"] = []structs.RoutineLog{
		{Date: "2024-06-01", StartTime: "7:00 AM", Title: "Morning run", IsFinished: false},
	}
	client.RoutineLogs["healthy"] = []structs.RoutineLog{
		{Date: "2024-06-01", StartTime: "7:00 AM", Title: "Stretching", IsFinished: false},
	}

	summary, err := notifyUpcomingRoutines(ctx, &testConfig, client, sender, pubsub.MockClient{}, testBucket)
	if err != nil {
		t.Fatal(err)
	}

	if len(sender.Sent) != 1 {
		t.Fatalf("expected exactly one send, got %v", len(sender.Sent))
	}
	assert.Equal(t, "healthy-token", sender.Sent[0].Token)
	assert.Equal(t, int64(1), summary.Sent)
	assert.Equal(t, int64(1), summary.Failed)
}

func TestNotifyUpcomingRoutinesDuplicateStartTimes(t *testing.T) {
	ctx := context.Background()
	client := store.NewMemClient()
	sender := &messaging.MockClient{}

	client.Users["doubled"] = structs.User{FcmToken: "token-1"}
	client.RoutineLogs["doubled"] = []structs.RoutineLog{
		{Date: "2024-06-01", StartTime: "7:00 AM", Title: "Morning run", IsFinished: false},
		{Date: "2024-06-01", StartTime: "7:00 AM", Title: "Meditation", IsFinished: false},
	}

	summary, err := notifyUpcomingRoutines(ctx, &testConfig, client, sender, pubsub.MockClient{}, testBucket)
	if err != nil {
		t.Fatal(err)
	}

	// no uniqueness on start times, both routines get their own notification
	assert.Equal(t, 2, len(sender.Sent))
	assert.Equal(t, int64(2), summary.Sent)
}

func TestNotifyUpcomingRoutinesDefaultTitle(t *testing.T) {
	msg := buildMessage("token-1", "", 10)

	assert.Equal(t, `"routine" starts in 10 minutes!`, msg.Notification.Body)
}

func TestNotifyUpcomingRoutinesFatalOnEnumerationFailure(t *testing.T) {
	ctx := context.Background()
	client := store.NewMemClient()
	client.FailEnumeration = true

	_, err := notifyUpcomingRoutines(ctx, &testConfig, client, &messaging.MockClient{}, pubsub.MockClient{}, testBucket)
	assert.Error(t, err)
}
