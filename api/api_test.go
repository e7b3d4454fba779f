package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/bwmarrin/discordgo"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xackery/replyquote/config"
	"github.com/xackery/replyquote/model"
	"github.com/xackery/replyquote/switchboard"
)

type fakeBoard struct {
	names []string
	reqs  []*model.SendRequest
	err   error
}

func (f *fakeBoard) Send(ctx context.Context, name string, req *model.SendRequest) (*discordgo.Message, error) {
	f.names = append(f.names, name)
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return nil, f.err
	}
	return &discordgo.Message{ID: "1", ChannelID: req.ChannelID, Content: req.Content.Body()}, nil
}

func newTestAPI(t *testing.T, cfg config.API, board Dispatcher) *API {
	a, err := New(context.Background(), cfg, board, func() string { return "{message}|{reply}" }, nil)
	require.NoError(t, err)
	return a
}

func do(t *testing.T, a *API, method string, path string, body string) (*httptest.ResponseRecorder, map[string]interface{}) {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	w := httptest.NewRecorder()
	a.Router().ServeHTTP(w, req)
	resp := map[string]interface{}{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	return w, resp
}

func TestNew_NoDispatcher(t *testing.T) {
	_, err := New(context.Background(), config.API{}, nil, nil, nil)
	assert.EqualError(t, err, "dispatcher must be set")
}

func TestAPI_SendMessage(t *testing.T) {
	board := &fakeBoard{}
	a := newTestAPI(t, config.API{}, board)

	w, resp := do(t, a, "POST", "/api/channels/100/messages", `{"content":"hi","message_reference":{"message_id":"900"},"silent":true}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "1", resp["id"])
	assert.Equal(t, "hi", resp["content"])

	require.Len(t, board.reqs, 1)
	assert.Equal(t, switchboard.SendOperation, board.names[0])
	req := board.reqs[0]
	assert.Equal(t, "100", req.ChannelID)
	ref, ok := req.Reply()
	require.True(t, ok)
	assert.Equal(t, "900", ref.MessageID)
	assert.True(t, req.Options.Silent)
}

func TestAPI_SendMessagePayload(t *testing.T) {
	board := &fakeBoard{}
	a := newTestAPI(t, config.API{}, board)

	w, _ := do(t, a, "POST", "/api/channels/100/messages", `{"payload":{"content":"hi","tts":true}}`)
	assert.Equal(t, http.StatusOK, w.Code)
	require.Len(t, board.reqs, 1)
	assert.True(t, board.reqs[0].Content.IsPayload())
	assert.Nil(t, board.reqs[0].Options)
}

func TestAPI_SendMessageErrors(t *testing.T) {
	tests := []struct {
		name   string
		body   string
		err    error
		status int
	}{
		{name: "bad body", body: `{`, status: http.StatusBadRequest},
		{name: "empty", body: `{}`, status: http.StatusBadRequest},
		{name: "reference without id", body: `{"content":"hi","message_reference":{}}`, status: http.StatusBadRequest},
		{name: "target not found", body: `{"content":"hi"}`, err: model.ErrTargetNotFound{ChannelID: "100", MessageID: "900"}, status: http.StatusConflict},
		{name: "unknown message", body: `{"content":"hi"}`, err: fmt.Errorf("send: %w", &discordgo.RESTError{
			Response: &http.Response{StatusCode: http.StatusBadRequest},
			Message:  &discordgo.APIErrorMessage{Code: discordgo.ErrCodeUnknownMessage},
		}), status: http.StatusNotFound},
		{name: "other", body: `{"content":"hi"}`, err: fmt.Errorf("boom"), status: http.StatusBadGateway},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			a := newTestAPI(t, config.API{}, &fakeBoard{err: tt.err})
			w, resp := do(t, a, "POST", "/api/channels/100/messages", tt.body)
			assert.Equal(t, tt.status, w.Code)
			assert.NotEmpty(t, resp["message"])
		})
	}
}

func TestAPI_RateLimit(t *testing.T) {
	board := &fakeBoard{}
	a := newTestAPI(t, config.API{RateLimit: 0.001, Burst: 1}, board)

	w, _ := do(t, a, "POST", "/api/channels/100/messages", `{"content":"hi"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	w, resp := do(t, a, "POST", "/api/channels/100/messages", `{"content":"hi"}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "rate limited", resp["message"])
	assert.Len(t, board.reqs, 1)

	// previews are not limited
	w, _ = do(t, a, "POST", "/api/template/preview", `{}`)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAPI_Preview(t *testing.T) {
	a := newTestAPI(t, config.API{}, &fakeBoard{})

	w, resp := do(t, a, "POST", "/api/template/preview", `{"record":{"id":"900","content":"hello"},"reply":"hi"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "{message}|{reply}", resp["template"])
	assert.Equal(t, "hello|hi", resp["content"])

	_, resp = do(t, a, "POST", "/api/template/preview", `{"template":"[{message_id}]","record":{"id":"900"}}`)
	assert.Equal(t, "[900]", resp["content"])

	w, _ = do(t, a, "POST", "/api/template/preview", `nope`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestAPI_Variables(t *testing.T) {
	a := newTestAPI(t, config.API{}, &fakeBoard{})
	w, resp := do(t, a, "GET", "/api/template/variables", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, resp["variables"], "{sent_unix}")
	assert.Contains(t, resp["default_template"], "{reply}")
}

func TestAPI_Index(t *testing.T) {
	a := newTestAPI(t, config.API{}, &fakeBoard{})
	w, resp := do(t, a, "GET", "/api", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "{message}|{reply}", resp["template"])
}

func TestAPI_ConnectDisabled(t *testing.T) {
	a := newTestAPI(t, config.API{}, &fakeBoard{})
	assert.NoError(t, a.Connect(context.Background()))
	assert.False(t, a.IsConnected())
	assert.NoError(t, a.Disconnect(context.Background()))
}

func TestAPI_ConnectDisconnect(t *testing.T) {
	a := newTestAPI(t, config.API{IsEnabled: true, Host: "127.0.0.1:0"}, &fakeBoard{})
	require.NoError(t, a.Connect(context.Background()))
	assert.True(t, a.IsConnected())
	require.NoError(t, a.Disconnect(context.Background()))
	assert.False(t, a.IsConnected())
	assert.NoError(t, a.Disconnect(context.Background()))
}
