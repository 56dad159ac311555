package http

import (
	"net/http"

	"github.com/habitflow-app/habitflow-backend/internal/constants"
	"github.com/habitflow-app/habitflow-backend/internal/logging"
	"github.com/habitflow-app/habitflow-backend/internal/secrets"
)

// AuthorizeScheduler checks the apikey query parameter against the scheduler api key
// in Secret Manager. On failure it reports to the client and returns false.
func AuthorizeScheduler(w http.ResponseWriter, r *http.Request, secretsClient secrets.Manager) bool {
	logger := logging.FromContext(r.Context()).Named("http.AuthorizeScheduler")

	apikey, err := secretsClient.Get(constants.SecretSchedulerAPIKey)
	if err != nil {
		logger.Warnf("Could not obtain api key: %v", err)
		http.Error(w, "Could not obtain api key", 500)
		return false
	}

	providedAPIKeys := r.URL.Query()["apikey"]
	if len(providedAPIKeys) != 1 || providedAPIKeys[0] != string(apikey) {
		http.Error(w, "Bad api key", 401)
		return false
	}

	return true
}
