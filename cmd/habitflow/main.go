package main

import (
	"net/http"
	"os"

	"github.com/habitflow-app/habitflow-backend/internal/functions/notifyroutines"
	"github.com/habitflow-app/habitflow-backend/internal/functions/resetmissions"
	"github.com/habitflow-app/habitflow-backend/internal/functions/updatestreaks"
	"github.com/habitflow-app/habitflow-backend/internal/logging"
	server "github.com/habitflow-app/habitflow-backend/pkg/httpserver"
	"github.com/sethvargo/go-signalcontext"
)

func main() {

	ctx, done := signalcontext.OnInterrupt()
	defer done()

	logger := logging.FromContext(ctx)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8081"
	}
	var config = server.Config{Port: port}

	mux := http.NewServeMux()
	mux.HandleFunc("/updateStreaks", updatestreaks.UpdateStreaks)
	mux.HandleFunc("/resetDailyMissions", resetmissions.ResetDailyMissions)
	mux.HandleFunc("/notifyUpcomingRoutines", notifyroutines.NotifyUpcomingRoutines)

	srv, err := server.NewServer(ctx, &config)
	if err != nil {
		logger.Fatalf("server.NewServer: %v", err)
	}

	logger.Infof("listening on :%s", config.Port)

	if err := srv.ServeHTTPHandler(ctx, mux); err != nil {
		logger.Fatal(err)
	}
}
