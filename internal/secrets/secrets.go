package secrets

import (
	"context"
	"fmt"
	"log"
	"os"
	"sync"

	secretmanager "cloud.google.com/go/secretmanager/apiv1"
	"github.com/habitflow-app/habitflow-backend/internal/constants"
	"github.com/habitflow-app/habitflow-backend/internal/logging"
	secretmanagerpb "google.golang.org/genproto/googleapis/cloud/secretmanager/v1"
)

var (
	once          sync.Once
	secretsClient *secretmanager.Client
	projectID     string
)

func setup() {
	ctx := context.Background()

	projectID = constants.ProjectID
	id, exists := os.LookupEnv("PROJECT_ID")
	if exists {
		projectID = id
	}

	var err error
	secretsClient, err = secretmanager.NewClient(ctx)
	if err != nil {
		log.Fatalf("secretmanager.NewClient: %v", err)
	}
}

//Manager is an abstraction over Secret Manager
type Manager interface {
	Get(name string) ([]byte, error)
}

//Client Real Secrets Manager client, created on first use.
type Client struct{}

//Get Gets value of specified secret.
func (c Client) Get(name string) ([]byte, error) {
	once.Do(setup)

	ctx := context.Background()
	var logger = logging.FromContext(ctx)

	logger.Debugf("Accessing secret '%v'", name)

	var req = secretmanagerpb.AccessSecretVersionRequest{
		Name: fmt.Sprintf("projects/%v/secrets/%v/versions/latest", projectID, name),
	}

	secret, err := secretsClient.AccessSecretVersion(ctx, &req)
	if err != nil {
		return nil, err
	}

	return secret.GetPayload().GetData(), nil
}

//MockClient NOOP Secrets Manager client.
type MockClient struct{}

//Get Gets value of specified secret.
func (c MockClient) Get(name string) ([]byte, error) {
	return []byte("mock42"), nil
}
