package updatestreaks

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/avast/retry-go"
	"github.com/habitflow-app/habitflow-backend/internal/constants"
	"github.com/habitflow-app/habitflow-backend/internal/firebase/structs"
	"github.com/habitflow-app/habitflow-backend/internal/logging"
	"github.com/habitflow-app/habitflow-backend/internal/pubsub"
	"github.com/habitflow-app/habitflow-backend/internal/secrets"
	"github.com/habitflow-app/habitflow-backend/internal/store"
	"github.com/habitflow-app/habitflow-backend/internal/utils"
	"github.com/habitflow-app/habitflow-backend/internal/utils/errors"
	httputils "github.com/habitflow-app/habitflow-backend/internal/utils/http"
	"github.com/sethvargo/go-envconfig"
)

//Config Configuration of the streak reconciliation job.
type Config struct {
	DailyGoal        int `env:"STREAK_DAILY_GOAL,default=5"`
	StreakCap        int `env:"STREAK_CAP,default=5"`
	UTCOffsetMinutes int `env:"TIME_OFFSET_MINUTES,default=540"`
	Workers          int `env:"JOB_WORKERS,default=8"`
}

type request struct {
	Date string `json:"date" validate:"required"`
}

//Summary Result of one reconciliation run.
type Summary struct {
	Job      string `json:"job"`
	Date     string `json:"date"`
	Users    int64  `json:"users"`
	Extended int64  `json:"extended"`
	Reset    int64  `json:"reset"`
	Skipped  int64  `json:"skipped"`
	Failed   int64  `json:"failed"`
}

type userRecord struct {
	id   string
	user structs.User
}

//UpdateStreaks Daily streak reconciliation handler. An optional body
//{"data": {"date": "YYYY-MM-DD"}} reconciles given day instead of today.
func UpdateStreaks(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()
	logger := logging.FromContext(ctx).Named("updatestreaks.UpdateStreaks")

	if !httputils.AuthorizeScheduler(w, r, secrets.Client{}) {
		return
	}

	var config Config
	if err := envconfig.Process(ctx, &config); err != nil {
		logger.Errorf("Could not load config: %v", err)
		http.Error(w, "Could not load config", 500)
		return
	}

	date := utils.FormatDate(utils.CivilTime(utils.GetTimeNow(), config.UTCOffsetMinutes))

	if r.ContentLength > 0 {
		var request request
		if !httputils.DecodeJSONOrReportError(w, r, &request) {
			return
		}
		if _, err := time.Parse(constants.DateFormat, request.Date); err != nil {
			httputils.SendErrorResponse(w, r, &errors.MalformedRequestError{Msg: fmt.Sprintf("Invalid date %q", request.Date)})
			return
		}
		date = request.Date
	}

	summary, err := updateStreaks(ctx, &config, store.Client{}, pubsub.Client{}, date)
	if err != nil {
		logger.Errorf("Streak reconciliation failed: %v", err)
		http.Error(w, fmt.Sprintf("Streak reconciliation failed: %v", err), 500)
		return
	}

	httputils.SendResponse(w, r, summary)
}

func updateStreaks(ctx context.Context, config *Config, client store.Storer, events pubsub.EventPublisher, date string) (*Summary, error) {
	logger := logging.FromContext(ctx).Named("updatestreaks.updateStreaks")

	summary := Summary{Job: "updateStreaks", Date: date}

	workers := config.Workers
	if workers < 1 {
		workers = 1
	}

	users := make(chan userRecord)
	var wg sync.WaitGroup

	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for rec := range users {
				reconcileUser(ctx, config, client, rec, date, &summary)
			}
		}()
	}

	err := client.ForEachUser(ctx, func(userID string, user structs.User) error {
		users <- userRecord{id: userID, user: user}
		return nil
	})
	close(users)
	wg.Wait()

	if err != nil {
		return nil, err
	}

	logger.Infof("Streak reconciliation for %v done: %+v", date, summary)

	if err := events.Publish(constants.TopicJobReports, summary); err != nil {
		logger.Warnf("Could not publish run summary: %v", err)
	}

	return &summary, nil
}

func reconcileUser(ctx context.Context, config *Config, client store.Storer, rec userRecord, date string, summary *Summary) {
	logger := logging.FromContext(ctx).Named("updatestreaks.reconcileUser")

	atomic.AddInt64(&summary.Users, 1)

	if rec.user.StreakDate == date {
		// already reconciled for this day, a re-run must not apply twice
		atomic.AddInt64(&summary.Skipped, 1)
		return
	}

	logs, err := client.RoutineLogsByDate(ctx, rec.id, date)
	if err != nil {
		logger.Warnf("Could not read routine logs of %v: %v", rec.id, err)
		atomic.AddInt64(&summary.Failed, 1)
		return
	}

	var completed int
	for _, routineLog := range logs {
		if routineLog.IsFinished && routineLog.XpEarned > 0 {
			completed++
		}
	}

	update := applyStreak(rec.user, completed, config)
	update.StreakDate = date

	err = retry.Do(
		func() error { return client.UpdateStreak(ctx, rec.id, update) },
		retry.Attempts(3),
	)
	if err != nil {
		logger.Warnf("Could not update streak of %v, leaving the user for the next run: %v", rec.id, err)
		atomic.AddInt64(&summary.Failed, 1)
		return
	}

	if update.StreakCount == 0 {
		atomic.AddInt64(&summary.Reset, 1)
	} else {
		atomic.AddInt64(&summary.Extended, 1)
	}
}

// applyStreak computes new streak fields of the user from the number of routines
// finished with earned XP on the reconciled day. Meeting the daily goal extends the
// streak up to the cap, missing it zeroes both counters. Note that maxStreak resets
// together with streakCount, it is not a historical maximum.
func applyStreak(user structs.User, completed int, config *Config) structs.StreakUpdate {
	if completed < config.DailyGoal {
		return structs.StreakUpdate{StreakCount: 0, MaxStreak: 0}
	}

	streak := user.StreakCount + 1
	if streak > config.StreakCap {
		streak = config.StreakCap
	}

	return structs.StreakUpdate{StreakCount: streak, MaxStreak: user.MaxStreak + 1}
}
