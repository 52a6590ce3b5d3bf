package notifier

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/taskforce-ops/sentinel/internal/domain"
)

type RoundTripFunc func(req *http.Request) *http.Response

func (f RoundTripFunc) RoundTrip(req *http.Request) (*http.Response, error) {
	return f(req), nil
}

func NewTestClient(fn RoundTripFunc) *http.Client {
	return &http.Client{Transport: fn}
}

func TestWebhook_Notify(t *testing.T) {
	t.Parallel()

	notification := domain.Notification{
		Channel:    domain.PlayersChannel,
		Kind:       domain.AlarmNotification,
		Title:      "Player count alarm",
		Body:       "25 players are on the server",
		Recipients: []string{"grizzly"},
	}

	t.Run("posts the payload", func(t *testing.T) {
		t.Parallel()

		var got webhookPayload

		client := NewTestClient(func(req *http.Request) *http.Response {
			assert.Equal(t, http.MethodPost, req.Method)
			assert.Equal(t, "application/json", req.Header.Get("Content-Type"))

			body, err := io.ReadAll(req.Body)
			require.NoError(t, err)
			require.NoError(t, json.Unmarshal(body, &got))

			return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}
		})

		w := NewWebhookWithHTTPClient(zap.NewNop(), nil, "https://hooks.example.com/sentinel", client)

		require.NoError(t, w.Notify(context.Background(), notification))

		assert.NotEmpty(t, got.DeliveryID)
		assert.Equal(t, "players", got.Channel)
		assert.Equal(t, "alarm", got.Kind)
		assert.Equal(t, []string{"grizzly"}, got.Recipients)
	})

	t.Run("non-2xx is an error", func(t *testing.T) {
		t.Parallel()

		client := NewTestClient(func(req *http.Request) *http.Response {
			return &http.Response{StatusCode: http.StatusBadGateway, Body: http.NoBody}
		})

		w := NewWebhookWithHTTPClient(zap.NewNop(), nil, "https://hooks.example.com/sentinel", client)

		assert.Error(t, w.Notify(context.Background(), notification))
	})

	t.Run("fresh delivery id per call", func(t *testing.T) {
		t.Parallel()

		var ids []string

		client := NewTestClient(func(req *http.Request) *http.Response {
			var p webhookPayload
			body, _ := io.ReadAll(req.Body)
			_ = json.Unmarshal(body, &p)
			ids = append(ids, p.DeliveryID)

			return &http.Response{StatusCode: http.StatusOK, Body: http.NoBody}
		})

		w := NewWebhookWithHTTPClient(zap.NewNop(), nil, "https://hooks.example.com/sentinel", client)

		require.NoError(t, w.Notify(context.Background(), notification))
		require.NoError(t, w.Notify(context.Background(), notification))

		require.Len(t, ids, 2)
		assert.NotEqual(t, ids[0], ids[1])
	})
}

func TestLog_Notify(t *testing.T) {
	t.Parallel()

	l := NewLog(zap.NewNop())
	assert.NoError(t, l.Notify(context.Background(), domain.Notification{Title: "anything"}))
}
