package notify

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSender struct {
	mock.Mock
	name string
}

func (m *MockSender) Send(ctx context.Context, title, message string) error {
	args := m.Called(ctx, title, message)
	return args.Error(0)
}

func (m *MockSender) Name() string {
	return m.name
}

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func TestNotifier_NilAndEmptyAreDisabled(t *testing.T) {
	var n *Notifier
	assert.False(t, n.Enabled())
	assert.NoError(t, n.Notify(context.Background(), EventListingCreated, "t", "m"))

	n = NewNotifier(nil, nil, discardLogger())
	assert.False(t, n.Enabled())
	assert.NoError(t, n.Notify(context.Background(), EventListingCreated, "t", "m"))
}

func TestNotifier_DeliversToAllSenders(t *testing.T) {
	a := &MockSender{name: "a"}
	b := &MockSender{name: "b"}
	a.On("Send", mock.Anything, "New listing", "Ivan listed x").Return(nil).Once()
	b.On("Send", mock.Anything, "New listing", "Ivan listed x").Return(nil).Once()

	n := NewNotifier([]Sender{a, b}, nil, discardLogger())
	require.NoError(t, n.Notify(context.Background(), EventListingCreated, "New listing", "Ivan listed x"))

	a.AssertExpectations(t)
	b.AssertExpectations(t)
}

func TestNotifier_FiltersEvents(t *testing.T) {
	s := &MockSender{name: "s"}
	s.On("Send", mock.Anything, "Storage", "down").Return(nil).Once()

	n := NewNotifier([]Sender{s}, []string{" storage_failure ", ""}, discardLogger())
	require.NoError(t, n.Notify(context.Background(), EventListingCreated, "New listing", "ignored"))
	require.NoError(t, n.Notify(context.Background(), EventStorageFailure, "Storage", "down"))

	s.AssertExpectations(t)
	s.AssertNumberOfCalls(t, "Send", 1)
}

func TestNotifier_OneFailureDoesNotStopOthers(t *testing.T) {
	bad := &MockSender{name: "bad"}
	good := &MockSender{name: "good"}
	sendErr := errors.New("webhook gone")
	bad.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(sendErr)
	good.On("Send", mock.Anything, mock.Anything, mock.Anything).Return(nil)

	n := NewNotifier([]Sender{bad, good}, nil, discardLogger())
	err := n.Notify(context.Background(), EventListingRemoved, "Listing removed", "x")

	require.Error(t, err)
	assert.ErrorIs(t, err, sendErr)
	assert.Contains(t, err.Error(), "bad")
	good.AssertNumberOfCalls(t, "Send", 1)
}

func TestTelegramSender_Send(t *testing.T) {
	var gotPath string
	var payload map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	s := NewTelegramSender("TOKEN", "42")
	s.apiBase = srv.URL

	require.NoError(t, s.Send(context.Background(), "New listing", "details"))
	assert.Equal(t, "/botTOKEN/sendMessage", gotPath)
	assert.Equal(t, "42", payload["chat_id"])
	assert.Equal(t, "*New listing*\ndetails", payload["text"])
	assert.Equal(t, "Markdown", payload["parse_mode"])
	assert.Equal(t, "telegram", s.Name())
}

func TestDiscordSender_Send(t *testing.T) {
	var payload map[string]string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	s := NewDiscordSender(srv.URL)
	require.NoError(t, s.Send(context.Background(), "Listing removed", "gone"))
	assert.Equal(t, "**Listing removed**\ngone", payload["content"])
}

func TestPostJSON_NonSuccessStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "chat not found", http.StatusBadRequest)
	}))
	defer srv.Close()

	err := postJSON(context.Background(), srv.Client(), srv.URL, []byte(`{}`), "telegram")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "telegram: unexpected status 400")
	assert.Contains(t, err.Error(), "chat not found")
}
