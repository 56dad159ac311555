package notifyroutines

import (
	"context"
	"fmt"
	"net/http"
	"sync"
	"sync/atomic"

	fbmessaging "firebase.google.com/go/messaging"
	"github.com/habitflow-app/habitflow-backend/internal/constants"
	"github.com/habitflow-app/habitflow-backend/internal/firebase/structs"
	"github.com/habitflow-app/habitflow-backend/internal/logging"
	"github.com/habitflow-app/habitflow-backend/internal/messaging"
	"github.com/habitflow-app/habitflow-backend/internal/pubsub"
	"github.com/habitflow-app/habitflow-backend/internal/secrets"
	"github.com/habitflow-app/habitflow-backend/internal/store"
	"github.com/habitflow-app/habitflow-backend/internal/utils"
	httputils "github.com/habitflow-app/habitflow-backend/internal/utils/http"
	"github.com/sethvargo/go-envconfig"
)

//Config Configuration of the routine notification job.
type Config struct {
	LeadMinutes      int `env:"NOTIFY_LEAD_MINUTES,default=10"`
	UTCOffsetMinutes int `env:"TIME_OFFSET_MINUTES,default=540"`
	Workers          int `env:"JOB_WORKERS,default=8"`
}

//Summary Result of one dispatch run.
type Summary struct {
	Job     string `json:"job"`
	Date    string `json:"date"`
	Time    string `json:"time"`
	Users   int64  `json:"users"`
	Sent    int64  `json:"sent"`
	Failed  int64  `json:"failed"`
	Skipped int64  `json:"skipped"`
}

type userRecord struct {
	id   string
	user structs.User
}

//NotifyUpcomingRoutines Minute dispatch handler, notifies users about routines
//starting one lead interval from now.
func NotifyUpcomingRoutines(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()
	logger := logging.FromContext(ctx).Named("notifyroutines.NotifyUpcomingRoutines")

	if !httputils.AuthorizeScheduler(w, r, secrets.Client{}) {
		return
	}

	var config Config
	if err := envconfig.Process(ctx, &config); err != nil {
		logger.Errorf("Could not load config: %v", err)
		http.Error(w, "Could not load config", 500)
		return
	}

	bucket := bucketAt(utils.GetTimeNow(), config.UTCOffsetMinutes, config.LeadMinutes)

	summary, err := notifyUpcomingRoutines(ctx, &config, store.Client{}, messaging.Client{}, pubsub.Client{}, bucket)
	if err != nil {
		logger.Errorf("Routine dispatch failed: %v", err)
		http.Error(w, fmt.Sprintf("Routine dispatch failed: %v", err), 500)
		return
	}

	httputils.SendResponse(w, r, summary)
}

func notifyUpcomingRoutines(ctx context.Context, config *Config, client store.Storer, pushSender messaging.PushSender, events pubsub.EventPublisher, bucket Bucket) (*Summary, error) {
	logger := logging.FromContext(ctx).Named("notifyroutines.notifyUpcomingRoutines")

	summary := Summary{Job: "notifyUpcomingRoutines", Date: bucket.Date, Time: bucket.Time}

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
				notifyUser(ctx, config, client, pushSender, rec, bucket, &summary)
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

	logger.Debugf("Routine dispatch for bucket %+v done: %+v", bucket, summary)

	if summary.Sent > 0 || summary.Failed > 0 {
		if err := events.Publish(constants.TopicJobReports, summary); err != nil {
			logger.Warnf("Could not publish run summary: %v", err)
		}
	}

	return &summary, nil
}

func notifyUser(ctx context.Context, config *Config, client store.Storer, pushSender messaging.PushSender, rec userRecord, bucket Bucket, summary *Summary) {
	logger := logging.FromContext(ctx).Named("notifyroutines.notifyUser")

	atomic.AddInt64(&summary.Users, 1)

	if rec.user.FcmToken == "" {
		atomic.AddInt64(&summary.Skipped, 1)
		return
	}

	routines, err := client.RoutinesStartingAt(ctx, rec.id, bucket.Date, bucket.Time)
	if err != nil {
		logger.Warnf("Could not query routines of %v: %v", rec.id, err)
		atomic.AddInt64(&summary.Failed, 1)
		return
	}

	// duplicate (date, startTime) entries are notified independently, there is no
	// uniqueness constraint on routine start times
	for _, routine := range routines {
		msg := buildMessage(rec.user.FcmToken, routine.Title, config.LeadMinutes)

		if err := pushSender.Send(ctx, msg); err != nil {
			logger.Warnf("Could not notify %v about %q: %v", rec.id, routine.Title, err)
			atomic.AddInt64(&summary.Failed, 1)
			continue
		}

		atomic.AddInt64(&summary.Sent, 1)
	}
}

func buildMessage(token string, title string, leadMinutes int) *fbmessaging.Message {
	if title == "" {
		title = "routine"
	}

	return &fbmessaging.Message{
		Token: token,
		Notification: &fbmessaging.Notification{
			Title: fmt.Sprintf("Routine in %d minutes", leadMinutes),
			Body:  fmt.Sprintf("\"%s\" starts in %d minutes!", title, leadMinutes),
		},
		Android: &fbmessaging.AndroidConfig{
			Priority: "high",
		},
		APNS: &fbmessaging.APNSConfig{
			Payload: &fbmessaging.APNSPayload{
				Aps: &fbmessaging.Aps{
					Sound: "default",
				},
			},
		},
	}
}
