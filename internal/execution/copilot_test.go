package execution

import (
	"context"
	"errors"
	"testing"
	"time"

	copilot "github.com/github/copilot-sdk/go"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

// sessionConfigMatcher compares the fields of a session config that the
// engine controls; the permission callback is a func and can't be compared.
type sessionConfigMatcher struct {
	model string
}

func (m sessionConfigMatcher) Matches(x any) bool {
	cfg, ok := x.(*copilot.SessionConfig)
	return ok && cfg.Model == m.model && cfg.OnPermissionRequest != nil
}

func (m sessionConfigMatcher) String() string {
	return "session config for model " + m.model
}

func newTestCopilotEngine(t *testing.T, clientMock *MockcopilotClient) *CopilotEngine {
	t.Helper()
	return NewCopilotEngineBuilder("gpt-4o-mini", &CopilotEngineBuilderOptions{
		NewCopilotClient: func(clientOptions *copilot.ClientOptions) copilotClient { return clientMock },
	}).Build()
}

// replyWith makes SendAndWait replay events into every handler registered with On.
func replyWith(sessionMock *MockcopilotSession, events ...copilot.SessionEvent) {
	var handlers []copilot.SessionEventHandler
	sessionMock.EXPECT().On(gomock.Any()).Times(2).DoAndReturn(func(h copilot.SessionEventHandler) func() {
		handlers = append(handlers, h)
		return func() {}
	})
	sessionMock.EXPECT().SendAndWait(gomock.Any(), gomock.Any()).DoAndReturn(
		func(ctx context.Context, options copilot.MessageOptions) (*copilot.SessionEvent, error) {
			for _, evt := range events {
				for _, h := range handlers {
					h(evt)
				}
			}
			return &copilot.SessionEvent{}, nil
		})
}

func TestCopilotExecute(t *testing.T) {
	ctrl := gomock.NewController(t)
	clientMock := NewMockcopilotClient(ctrl)
	sessionMock := NewMockcopilotSession(ctrl)

	clientMock.EXPECT().Start(gomock.Any())
	clientMock.EXPECT().CreateSession(gomock.Any(), sessionConfigMatcher{model: "this-model-wins"}).Return(sessionMock, nil)
	clientMock.EXPECT().Stop()

	content := `{"questions": []}`
	replyWith(sessionMock,
		copilot.SessionEvent{Type: copilot.AssistantMessage, Data: copilot.Data{Content: &content}},
		copilot.SessionEvent{Type: copilot.SessionIdle},
	)
	sessionMock.EXPECT().SessionID().Return("session-1")

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	engine := newTestCopilotEngine(t, clientMock)
	defer func() {
		require.NoError(t, engine.Shutdown(context.Background()))
	}()

	require.NoError(t, engine.Initialize(ctx))

	resp, err := engine.Execute(ctx, &ExecutionRequest{
		Purpose: PurposeQuestions,
		Message: "hello?",
		ModelID: "this-model-wins",
		Timeout: time.Minute,
	})
	require.NoError(t, err)
	require.Equal(t, "session-1", resp.SessionID)
	require.Empty(t, resp.ErrorMsg)
	require.True(t, resp.Success)
	require.Equal(t, "this-model-wins", resp.ModelID)
	require.Equal(t, content, resp.Output())
	require.Len(t, resp.Events, 2)
}

func TestCopilotExecute_DefaultModel(t *testing.T) {
	ctrl := gomock.NewController(t)
	clientMock := NewMockcopilotClient(ctrl)
	sessionMock := NewMockcopilotSession(ctrl)

	clientMock.EXPECT().Start(gomock.Any())
	clientMock.EXPECT().CreateSession(gomock.Any(), sessionConfigMatcher{model: "gpt-4o-mini"}).Return(sessionMock, nil)
	replyWith(sessionMock)
	sessionMock.EXPECT().SessionID().Return("session-2")

	engine := newTestCopilotEngine(t, clientMock)

	resp, err := engine.Execute(context.Background(), &ExecutionRequest{Message: "hi", Timeout: time.Minute})
	require.NoError(t, err)
	require.Equal(t, "gpt-4o-mini", resp.ModelID)
}

func TestCopilotExecute_SessionError(t *testing.T) {
	ctrl := gomock.NewController(t)
	clientMock := NewMockcopilotClient(ctrl)
	sessionMock := NewMockcopilotSession(ctrl)

	const sessionErrorMsg = "rate limited"

	clientMock.EXPECT().Start(gomock.Any())
	clientMock.EXPECT().CreateSession(gomock.Any(), gomock.Any()).Return(sessionMock, nil)
	sessionMock.EXPECT().On(gomock.Any()).Times(2).Return(func() {})
	sessionMock.EXPECT().SendAndWait(gomock.Any(), gomock.Any()).Return(nil, errors.New(sessionErrorMsg))
	sessionMock.EXPECT().SessionID().Return("session-3")

	engine := newTestCopilotEngine(t, clientMock)

	resp, err := engine.Execute(context.Background(), &ExecutionRequest{Message: "hi", Timeout: time.Minute})
	require.NoError(t, err)
	require.False(t, resp.Success)
	require.Equal(t, sessionErrorMsg, resp.ErrorMsg)
}

func TestCopilotExecute_StartsOnce(t *testing.T) {
	ctrl := gomock.NewController(t)
	clientMock := NewMockcopilotClient(ctrl)
	sessionMock := NewMockcopilotSession(ctrl)

	clientMock.EXPECT().Start(gomock.Any()).Times(1)
	clientMock.EXPECT().CreateSession(gomock.Any(), gomock.Any()).Times(2).Return(sessionMock, nil)
	sessionMock.EXPECT().On(gomock.Any()).Times(4).Return(func() {})
	sessionMock.EXPECT().SendAndWait(gomock.Any(), gomock.Any()).Times(2).Return(&copilot.SessionEvent{}, nil)
	sessionMock.EXPECT().SessionID().Times(2).Return("s")

	engine := newTestCopilotEngine(t, clientMock)

	for range 2 {
		_, err := engine.Execute(context.Background(), &ExecutionRequest{Message: "hi", Timeout: time.Minute})
		require.NoError(t, err)
	}
}

func TestCopilotExecute_StartFailure(t *testing.T) {
	ctrl := gomock.NewController(t)
	clientMock := NewMockcopilotClient(ctrl)

	clientMock.EXPECT().Start(gomock.Any()).Return(errors.New("no cli"))

	engine := newTestCopilotEngine(t, clientMock)

	_, err := engine.Execute(context.Background(), &ExecutionRequest{Message: "hi", Timeout: time.Minute})
	require.ErrorContains(t, err, "copilot failed to start")
}

func TestCopilotExecute_RequiresTimeout(t *testing.T) {
	ctrl := gomock.NewController(t)
	engine := newTestCopilotEngine(t, NewMockcopilotClient(ctrl))

	_, err := engine.Execute(context.Background(), &ExecutionRequest{Message: "hi"})
	require.ErrorContains(t, err, "positive Timeout")

	_, err = engine.Execute(context.Background(), nil)
	require.Error(t, err)
}

func TestCopilotShutdown_StopErrorIsLogged(t *testing.T) {
	ctrl := gomock.NewController(t)
	clientMock := NewMockcopilotClient(ctrl)
	clientMock.EXPECT().Stop().Return(errors.New("already stopped"))

	engine := newTestCopilotEngine(t, clientMock)

	require.NoError(t, engine.Shutdown(context.Background()))
}
