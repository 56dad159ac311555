package firebase

import (
	"context"
	"log"
	"os"
	"sync"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"firebase.google.com/go/messaging"
	"github.com/habitflow-app/habitflow-backend/internal/constants"
)

var (
	once            sync.Once
	firestoreClient *firestore.Client
	messagingClient *messaging.Client
)

func setup() {
	ctx := context.Background()

	projectID := constants.ProjectID
	id, exists := os.LookupEnv("PROJECT_ID")
	if exists {
		projectID = id
	}

	conf := &firebase.Config{
		ProjectID: projectID,
	}

	app, err := firebase.NewApp(ctx, conf)
	if err != nil {
		log.Fatalf("firebase.NewApp: %v", err)
	}
	firestoreClient, err = app.Firestore(ctx)
	if err != nil {
		log.Fatalf("app.Firestore: %v", err)
	}
	messagingClient, err = app.Messaging(ctx)
	if err != nil {
		log.Fatalf("app.Messaging: %v", err)
	}
}

//Firestore Process-wide Firestore client, created on first use.
func Firestore() *firestore.Client {
	once.Do(setup)
	return firestoreClient
}

//Messaging Process-wide FCM client, created on first use.
func Messaging() *messaging.Client {
	once.Do(setup)
	return messagingClient
}
