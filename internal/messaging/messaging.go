package messaging

import (
	"context"
	"fmt"
	"sync"

	"firebase.google.com/go/messaging"
	"github.com/habitflow-app/habitflow-backend/internal/firebase"
)

//PushSender Interface for FB messaging client
type PushSender interface {
	Send(ctx context.Context, msg *messaging.Message) error
}

//Client Real implementation of FB messaging client
type Client struct{}

//Send Sends the message
func (c Client) Send(ctx context.Context, msg *messaging.Message) error {
	_, err := firebase.Messaging().Send(ctx, msg)
	return err
}

//MockClient Recording FB messaging client for unit tests. Sends to tokens listed in
//FailTokens return an error.
type MockClient struct {
	mu         sync.Mutex
	Sent       []*messaging.Message
	FailTokens map[string]bool
}

//Send Records the message
func (c *MockClient) Send(ctx context.Context, msg *messaging.Message) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.FailTokens[msg.Token] {
		return fmt.Errorf("sending to %v failed", msg.Token)
	}

	c.Sent = append(c.Sent, msg)
	return nil
}
