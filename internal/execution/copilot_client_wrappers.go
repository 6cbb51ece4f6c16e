package execution

//go:generate go tool mockgen -source=copilot_client_wrappers.go -destination=copilot_client_mocks_test.go -package=execution

import (
	"context"

	copilot "github.com/github/copilot-sdk/go"
)

// copilotSession is the part of [*copilot.Session] a single prompt needs:
// subscribe to events, send the prompt, and name the session in logs.
type copilotSession interface {
	On(handler copilot.SessionEventHandler) func()
	SendAndWait(ctx context.Context, options copilot.MessageOptions) (*copilot.SessionEvent, error)
	SessionID() string
}

// copilotClient covers the client lifecycle used by CopilotEngine. Tests
// substitute the generated mock.
type copilotClient interface {
	Start(ctx context.Context) error
	CreateSession(ctx context.Context, config *copilot.SessionConfig) (copilotSession, error)
	Stop() error
}

func newCopilotClient(opts *copilot.ClientOptions) copilotClient {
	return &sdkClient{inner: copilot.NewClient(opts)}
}

type sdkClient struct {
	inner *copilot.Client
}

func (c *sdkClient) CreateSession(ctx context.Context, config *copilot.SessionConfig) (copilotSession, error) {
	sess, err := c.inner.CreateSession(ctx, config)
	if err != nil {
		return nil, err
	}
	return sdkSession{inner: sess}, nil
}

func (c *sdkClient) Start(ctx context.Context) error {
	return c.inner.Start(ctx)
}

func (c *sdkClient) Stop() error {
	return c.inner.Stop()
}

// sdkSession exposes the SessionID field of [copilot.Session] as a method.
type sdkSession struct {
	inner *copilot.Session
}

func (s sdkSession) On(handler copilot.SessionEventHandler) func() {
	return s.inner.On(handler)
}

func (s sdkSession) SendAndWait(ctx context.Context, options copilot.MessageOptions) (*copilot.SessionEvent, error) {
	return s.inner.SendAndWait(ctx, options)
}

func (s sdkSession) SessionID() string {
	return s.inner.SessionID
}
