package resetmissions

import (
	"context"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/habitflow-app/habitflow-backend/internal/firebase/structs"
	"github.com/habitflow-app/habitflow-backend/internal/pubsub"
	"github.com/habitflow-app/habitflow-backend/internal/store"
	"github.com/stretchr/testify/assert"
)

func TestResetDailyMissions(t *testing.T) {
	ctx := context.Background()
	client := store.NewMemClient()

	client.Users["a"] = structs.User{}
	client.Users["b"] = structs.User{}
	client.Missions["a"] = []structs.Mission{
		{RecentCount: 3, MissionRewarded: true},
		{RecentCount: 0, MissionRewarded: true},
	}
	client.Missions["b"] = []structs.Mission{
		{RecentCount: 7, MissionRewarded: false},
	}

	summary, err := resetDailyMissions(ctx, client, pubsub.MockClient{}, "2024-06-01")
	if err != nil {
		t.Fatal(err)
	}

	want := []structs.Mission{{}, {}}
	diff := cmp.Diff(want, client.Missions["a"])
	if diff != "" {
		t.Fatalf("missions mismatch (-want +got):\n%v", diff)
	}

	assert.Equal(t, []structs.Mission{{}}, client.Missions["b"])
	assert.Equal(t, int64(2), summary.Users)
	assert.Equal(t, int64(3), summary.Missions)
	assert.Equal(t, int64(0), summary.Failed)
}

func TestResetDailyMissionsIsolatesBatchFailure(t *testing.T) {
	ctx := context.Background()
	client := store.NewMemClient()

	client.Users["broken"] = structs.User{}
	client.Users["healthy"] = structs.User{}
	client.Missions["broken"] = []structs.Mission{{RecentCount: 4, MissionRewarded: true}}
	client.Missions["healthy"] = []structs.Mission{{RecentCount: 2, MissionRewarded: true}}
	client.FailMissionBatches["broken"] = true

	summary, err := resetDailyMissions(ctx, client, pubsub.MockClient{}, "2024-06-01")
	if err != nil {
		t.Fatal(err)
	}

	// the failed batch leaves that user untouched
	assert.Equal(t, []structs.Mission{{RecentCount: 4, MissionRewarded: true}}, client.Missions["broken"])
	assert.Equal(t, []structs.Mission{{}}, client.Missions["healthy"])
	assert.Equal(t, int64(1), summary.Failed)
}

func TestResetDailyMissionsNoMissions(t *testing.T) {
	ctx := context.Background()
	client := store.NewMemClient()

	client.Users["fresh"] = structs.User{}

	summary, err := resetDailyMissions(ctx, client, pubsub.MockClient{}, "2024-06-01")
	if err != nil {
		t.Fatal(err)
	}

	assert.Equal(t, int64(1), summary.Users)
	assert.Equal(t, int64(0), summary.Missions)
	assert.Equal(t, int64(0), summary.Failed)
}

func TestResetDailyMissionsFatalOnEnumerationFailure(t *testing.T) {
	ctx := context.Background()
	client := store.NewMemClient()
	client.FailEnumeration = true

	_, err := resetDailyMissions(ctx, client, pubsub.MockClient{}, "2024-06-01")
	assert.Error(t, err)
}
