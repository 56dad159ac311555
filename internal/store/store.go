package store

import (
	"context"
	"fmt"
	"sync"

	"cloud.google.com/go/firestore"
	"github.com/habitflow-app/habitflow-backend/internal/constants"
	"github.com/habitflow-app/habitflow-backend/internal/firebase"
	"github.com/habitflow-app/habitflow-backend/internal/firebase/structs"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// Storer is the user directory abstraction shared by the batch jobs.
type Storer interface {
	// ForEachUser streams the whole user population, one callback per user.
	// A callback error stops the enumeration and is returned as-is.
	ForEachUser(ctx context.Context, fn func(userID string, user structs.User) error) error
	// RoutineLogsByDate returns all routine logs of the user for given date.
	RoutineLogsByDate(ctx context.Context, userID string, date string) ([]structs.RoutineLog, error)
	// RoutinesStartingAt returns unfinished routine logs of the user with exactly
	// matching date and formatted start time.
	RoutinesStartingAt(ctx context.Context, userID string, date string, startTime string) ([]structs.RoutineLog, error)
	// UpdateStreak writes new streak fields of the user in one update.
	UpdateStreak(ctx context.Context, userID string, update structs.StreakUpdate) error
	// ResetMissions zeroes all mission counters of the user in a single atomic batch.
	// Returns the number of missions in the batch.
	ResetMissions(ctx context.Context, userID string) (int, error)
}

// Client to interact with storage API
type Client struct{}

func usersCollection() *firestore.CollectionRef {
	return firebase.Firestore().Collection(constants.CollectionUsers)
}

// ForEachUser streams the users collection via Firestore iterator.
func (i Client) ForEachUser(ctx context.Context, fn func(userID string, user structs.User) error) error {
	it := usersCollection().Documents(ctx)
	defer it.Stop()

	for {
		doc, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("Error while enumerating users: %v", err)
		}

		var user structs.User
		if err = doc.DataTo(&user); err != nil {
			return fmt.Errorf("Error while reading user %v: %v", doc.Ref.ID, err)
		}

		if err = fn(doc.Ref.ID, user); err != nil {
			return err
		}
	}

	return nil
}

// RoutineLogsByDate queries the routineLogs subcollection by the date field.
func (i Client) RoutineLogsByDate(ctx context.Context, userID string, date string) ([]structs.RoutineLog, error) {
	query := usersCollection().Doc(userID).
		Collection(constants.CollectionRoutineLogs).
		Where("date", "==", date)

	return readLogs(ctx, query)
}

// RoutinesStartingAt queries the routineLogs subcollection by exact equality on
// date, startTime and isFinished == false.
func (i Client) RoutinesStartingAt(ctx context.Context, userID string, date string, startTime string) ([]structs.RoutineLog, error) {
	query := usersCollection().Doc(userID).
		Collection(constants.CollectionRoutineLogs).
		Where("date", "==", date).
		Where("startTime", "==", startTime).
		Where("isFinished", "==", false)

	return readLogs(ctx, query)
}

func readLogs(ctx context.Context, query firestore.Query) ([]structs.RoutineLog, error) {
	docs, err := query.Documents(ctx).GetAll()
	if err != nil {
		return nil, fmt.Errorf("Error while querying Firestore: %v", err)
	}

	var logs []structs.RoutineLog
	for _, doc := range docs {
		var routineLog structs.RoutineLog
		if err = doc.DataTo(&routineLog); err != nil {
			return nil, fmt.Errorf("Error while reading routine log: %v", err)
		}
		logs = append(logs, routineLog)
	}

	return logs, nil
}

// UpdateStreak writes all streak fields of the user doc in one update.
func (i Client) UpdateStreak(ctx context.Context, userID string, update structs.StreakUpdate) error {
	_, err := usersCollection().Doc(userID).Update(ctx, []firestore.Update{
		{Path: "streakCount", Value: update.StreakCount},
		{Path: "maxStreak", Value: update.MaxStreak},
		{Path: "streakDate", Value: update.StreakDate},
	})
	if err != nil && status.Code(err) == codes.NotFound {
		// user deleted while the job was running, nothing to update
		return nil
	}
	return err
}

// ResetMissions resets all missions of the user in one Firestore write batch, so the
// user is never left with a half-reset mission set.
func (i Client) ResetMissions(ctx context.Context, userID string) (int, error) {
	it := usersCollection().Doc(userID).Collection(constants.CollectionMissions).DocumentRefs(ctx)

	batch := firebase.Firestore().Batch()
	var count int

	for {
		ref, err := it.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return 0, fmt.Errorf("Error while enumerating missions of %v: %v", userID, err)
		}

		batch.Update(ref, []firestore.Update{
			{Path: "recentCount", Value: 0},
			{Path: "missionRewarded", Value: false},
		})
		count++
	}

	if count == 0 {
		// committing an empty batch is an error in the client
		return 0, nil
	}

	if _, err := batch.Commit(ctx); err != nil {
		return 0, fmt.Errorf("Error while committing mission reset of %v: %v", userID, err)
	}

	return count, nil
}

// MemClient is an in-memory Storer for unit tests. Failure injection is per user,
// keyed by user id.
type MemClient struct {
	mu sync.Mutex

	Users       map[string]structs.User
	RoutineLogs map[string][]structs.RoutineLog
	Missions    map[string][]structs.Mission

	FailEnumeration    bool
	FailStreakUpdates  map[string]bool
	FailMissionBatches map[string]bool
	FailLogQueries     map[string]bool
}

// NewMemClient creates an empty in-memory store.
func NewMemClient() *MemClient {
	return &MemClient{
		Users:              map[string]structs.User{},
		RoutineLogs:        map[string][]structs.RoutineLog{},
		Missions:           map[string][]structs.Mission{},
		FailStreakUpdates:  map[string]bool{},
		FailMissionBatches: map[string]bool{},
		FailLogQueries:     map[string]bool{},
	}
}

// ForEachUser iterates all users. Order is unspecified, same as Firestore.
func (m *MemClient) ForEachUser(ctx context.Context, fn func(userID string, user structs.User) error) error {
	if m.FailEnumeration {
		return fmt.Errorf("enumeration failed")
	}

	m.mu.Lock()
	snapshot := make(map[string]structs.User, len(m.Users))
	for id, user := range m.Users {
		snapshot[id] = user
	}
	m.mu.Unlock()

	for id, user := range snapshot {
		if err := fn(id, user); err != nil {
			return err
		}
	}
	return nil
}

// RoutineLogsByDate filters the user logs by date.
func (m *MemClient) RoutineLogsByDate(ctx context.Context, userID string, date string) ([]structs.RoutineLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailLogQueries[userID] {
		return nil, fmt.Errorf("query failed for %v", userID)
	}

	var logs []structs.RoutineLog
	for _, routineLog := range m.RoutineLogs[userID] {
		if routineLog.Date == date {
			logs = append(logs, routineLog)
		}
	}
	return logs, nil
}

// RoutinesStartingAt filters the user logs by date, start time and isFinished == false.
func (m *MemClient) RoutinesStartingAt(ctx context.Context, userID string, date string, startTime string) ([]structs.RoutineLog, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailLogQueries[userID] {
		return nil, fmt.Errorf("query failed for %v", userID)
	}

	var logs []structs.RoutineLog
	for _, routineLog := range m.RoutineLogs[userID] {
		if routineLog.Date == date && routineLog.StartTime == startTime && !routineLog.IsFinished {
			logs = append(logs, routineLog)
		}
	}
	return logs, nil
}

// UpdateStreak writes the streak fields of the user.
func (m *MemClient) UpdateStreak(ctx context.Context, userID string, update structs.StreakUpdate) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailStreakUpdates[userID] {
		return fmt.Errorf("update failed for %v", userID)
	}

	user, ok := m.Users[userID]
	if !ok {
		return fmt.Errorf("user %v not found", userID)
	}

	user.StreakCount = update.StreakCount
	user.MaxStreak = update.MaxStreak
	user.StreakDate = update.StreakDate
	m.Users[userID] = user
	return nil
}

// ResetMissions resets all missions of the user, all or nothing.
func (m *MemClient) ResetMissions(ctx context.Context, userID string) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.FailMissionBatches[userID] {
		return 0, fmt.Errorf("batch commit failed for %v", userID)
	}

	missions := m.Missions[userID]
	for i := range missions {
		missions[i].RecentCount = 0
		missions[i].MissionRewarded = false
	}
	return len(missions), nil
}
