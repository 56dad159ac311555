package resetmissions

import (
	"context"
	"fmt"
	"net/http"

	"github.com/habitflow-app/habitflow-backend/internal/constants"
	"github.com/habitflow-app/habitflow-backend/internal/firebase/structs"
	"github.com/habitflow-app/habitflow-backend/internal/logging"
	"github.com/habitflow-app/habitflow-backend/internal/pubsub"
	"github.com/habitflow-app/habitflow-backend/internal/secrets"
	"github.com/habitflow-app/habitflow-backend/internal/store"
	"github.com/habitflow-app/habitflow-backend/internal/utils"
	httputils "github.com/habitflow-app/habitflow-backend/internal/utils/http"
	"github.com/sethvargo/go-envconfig"
)

//Config Configuration of the mission reset job.
type Config struct {
	UTCOffsetMinutes int `env:"TIME_OFFSET_MINUTES,default=540"`
}

//Summary Result of one reset run.
type Summary struct {
	Job      string `json:"job"`
	Date     string `json:"date"`
	Users    int64  `json:"users"`
	Missions int64  `json:"missions"`
	Failed   int64  `json:"failed"`
}

//ResetDailyMissions Daily mission counter reset handler.
func ResetDailyMissions(w http.ResponseWriter, r *http.Request) {
	var ctx = r.Context()
	logger := logging.FromContext(ctx).Named("resetmissions.ResetDailyMissions")

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

	summary, err := resetDailyMissions(ctx, store.Client{}, pubsub.Client{}, date)
	if err != nil {
		logger.Errorf("Mission reset failed: %v", err)
		http.Error(w, fmt.Sprintf("Mission reset failed: %v", err), 500)
		return
	}

	httputils.SendResponse(w, r, summary)
}

func resetDailyMissions(ctx context.Context, client store.Storer, events pubsub.EventPublisher, date string) (*Summary, error) {
	logger := logging.FromContext(ctx).Named("resetmissions.resetDailyMissions")

	summary := Summary{Job: "resetDailyMissions", Date: date}

	err := client.ForEachUser(ctx, func(userID string, user structs.User) error {
		summary.Users++

		// one batch per user, the user either gets a full reset or keeps the old
		// counters until the next cycle
		count, err := client.ResetMissions(ctx, userID)
		if err != nil {
			logger.Warnf("Could not reset missions of %v: %v", userID, err)
			summary.Failed++
			return nil
		}

		summary.Missions += int64(count)
		return nil
	})
	if err != nil {
		return nil, err
	}

	logger.Infof("Mission reset for %v done: %+v", date, summary)

	if err := events.Publish(constants.TopicJobReports, summary); err != nil {
		logger.Warnf("Could not publish run summary: %v", err)
	}

	return &summary, nil
}
