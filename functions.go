// Package functions exports the Cloud Functions entry points of the habitflow
// batch backend. All three are invoked by Cloud Scheduler.
package functions

import (
	"net/http"

	"github.com/habitflow-app/habitflow-backend/internal/functions/notifyroutines"
	"github.com/habitflow-app/habitflow-backend/internal/functions/resetmissions"
	"github.com/habitflow-app/habitflow-backend/internal/functions/updatestreaks"
)

// UpdateStreaks Daily streak reconciliation handler.
func UpdateStreaks(w http.ResponseWriter, r *http.Request) {
	updatestreaks.UpdateStreaks(w, r)
}

// ResetDailyMissions Daily mission counter reset handler.
func ResetDailyMissions(w http.ResponseWriter, r *http.Request) {
	resetmissions.ResetDailyMissions(w, r)
}

// NotifyUpcomingRoutines Minute routine notification handler.
func NotifyUpcomingRoutines(w http.ResponseWriter, r *http.Request) {
	notifyroutines.NotifyUpcomingRoutines(w, r)
}
