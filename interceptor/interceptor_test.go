package interceptor

import (
	"context"
	"fmt"
	"net/http"
	"testing"
	"time"

	"github.com/bwmarrin/discordgo"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xackery/replyquote/model"
	"github.com/xackery/replyquote/quote"
)

type fakeSender struct {
	calls []*model.SendRequest
	errs  []error
}

func (f *fakeSender) send(ctx context.Context, req *model.SendRequest) (*discordgo.Message, error) {
	f.calls = append(f.calls, req)
	if len(f.errs) >= len(f.calls) && f.errs[len(f.calls)-1] != nil {
		return nil, f.errs[len(f.calls)-1]
	}
	return &discordgo.Message{ID: fmt.Sprintf("sent%d", len(f.calls)), ChannelID: req.ChannelID, Content: req.Content.Body()}, nil
}

type fakeLookup struct {
	records map[string]*model.MessageRecord
	err     error
	calls   int
}

func (f *fakeLookup) Message(ctx context.Context, channelID string, messageID string) (*model.MessageRecord, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	msg, ok := f.records[channelID+"/"+messageID]
	if !ok {
		return nil, model.ErrMessageNotFound
	}
	return msg, nil
}

type fakeNotifier struct {
	messages   []string
	severities []model.Severity
}

func (f *fakeNotifier) Notify(ctx context.Context, message string, severity model.Severity) {
	f.messages = append(f.messages, message)
	f.severities = append(f.severities, severity)
}

const testTemplate = "{author_id}: {message} | {reply}"

func newTest(records ...*model.MessageRecord) (*Interceptor, *fakeLookup, *fakeNotifier) {
	lookup := &fakeLookup{records: make(map[string]*model.MessageRecord)}
	for _, r := range records {
		lookup.records[r.ChannelID+"/"+r.ID] = r
	}
	notifier := &fakeNotifier{}
	i := New(lookup, notifier, func() string { return testTemplate }, quote.NewRenderer(nil))
	return i, lookup, notifier
}

func replyRequest(content string) *model.SendRequest {
	return &model.SendRequest{
		ChannelID: "100",
		Content:   model.Content{Text: content},
		Options: &model.SendOptions{
			MessageReference: &model.MessageReference{MessageID: "900", ChannelID: "100"},
		},
	}
}

func record(deleted bool) *model.MessageRecord {
	return &model.MessageRecord{
		ID:        "900",
		ChannelID: "100",
		AuthorID:  "42",
		Content:   "hello",
		Timestamp: time.Unix(1700000000, 0),
		Deleted:   deleted,
	}
}

func unknownMessageError() error {
	return &discordgo.RESTError{
		Response: &http.Response{StatusCode: http.StatusBadRequest},
		Message:  &discordgo.APIErrorMessage{Code: discordgo.ErrCodeUnknownMessage, Message: "Unknown Message"},
	}
}

func TestInterceptor_PassThrough(t *testing.T) {
	i, lookup, notifier := newTest()
	sender := &fakeSender{}
	req := model.NewTextRequest("100", "hi")

	resp, err := i.Wrap(sender.send)(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "sent1", resp.ID)
	require.Len(t, sender.calls, 1)
	assert.Same(t, req, sender.calls[0])
	assert.Equal(t, 0, lookup.calls)
	assert.Empty(t, notifier.messages)
}

func TestInterceptor_PassThroughError(t *testing.T) {
	i, _, _ := newTest()
	sendErr := errors.New("boom")
	sender := &fakeSender{errs: []error{sendErr}}

	_, err := i.Wrap(sender.send)(context.Background(), model.NewTextRequest("100", "hi"))
	assert.Equal(t, sendErr, err)
	assert.Len(t, sender.calls, 1)
}

func TestInterceptor_PassThroughUnknownMessageWithoutReply(t *testing.T) {
	i, lookup, _ := newTest()
	sendErr := unknownMessageError()
	sender := &fakeSender{errs: []error{sendErr}}

	_, err := i.Wrap(sender.send)(context.Background(), model.NewTextRequest("100", "hi"))
	assert.Equal(t, sendErr, err)
	assert.Len(t, sender.calls, 1)
	assert.Equal(t, 0, lookup.calls)
}

func TestInterceptor_ReplyToLiveMessage(t *testing.T) {
	i, _, notifier := newTest(record(false))
	sender := &fakeSender{}
	req := replyRequest("hi")

	_, err := i.Wrap(sender.send)(context.Background(), req)
	require.NoError(t, err)
	require.Len(t, sender.calls, 1)
	assert.Same(t, req, sender.calls[0])
	assert.Equal(t, "900", sender.calls[0].Options.MessageReference.MessageID)
	assert.Equal(t, "hi", sender.calls[0].Content.Text)
	assert.Empty(t, notifier.messages)
}

func TestInterceptor_ReplyToDeletedMessage(t *testing.T) {
	i, _, notifier := newTest(record(true))
	sender := &fakeSender{}
	req := replyRequest("hi")

	resp, err := i.Wrap(sender.send)(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, "42: hello | hi", resp.Content)
	require.Len(t, sender.calls, 1)

	sent := sender.calls[0]
	assert.Nil(t, sent.Options.MessageReference)
	assert.Equal(t, "42: hello | hi", sent.Content.Text)
	assert.Empty(t, notifier.messages)

	assert.Equal(t, "hi", req.Content.Text)
	assert.NotNil(t, req.Options.MessageReference)
}

func TestInterceptor_ReplyToDeletedMessagePayload(t *testing.T) {
	i, _, _ := newTest(record(true))
	sender := &fakeSender{}
	req := replyRequest("")
	req.Content = model.Content{Payload: &model.Payload{Content: "hi", TTS: true}}

	_, err := i.Wrap(sender.send)(context.Background(), req)
	require.NoError(t, err)
	sent := sender.calls[0]
	require.NotNil(t, sent.Content.Payload)
	assert.Equal(t, "42: hello | hi", sent.Content.Payload.Content)
	assert.True(t, sent.Content.Payload.TTS)
	assert.Equal(t, "hi", req.Content.Payload.Content)
}

func TestInterceptor_ReplyToDeletedMessageFailsOnce(t *testing.T) {
	i, lookup, _ := newTest(record(true))
	sendErr := unknownMessageError()
	sender := &fakeSender{errs: []error{sendErr, nil}}

	_, err := i.Wrap(sender.send)(context.Background(), replyRequest("hi"))
	assert.Equal(t, sendErr, err)
	assert.Len(t, sender.calls, 1)
	assert.Equal(t, 1, lookup.calls)
}

func TestInterceptor_ReplyTargetNotFound(t *testing.T) {
	i, _, notifier := newTest()
	sender := &fakeSender{}

	_, err := i.Wrap(sender.send)(context.Background(), replyRequest("hi"))
	require.Error(t, err)
	assert.True(t, model.IsTargetNotFound(err))
	assert.Empty(t, sender.calls)
	require.Len(t, notifier.messages, 1)
	assert.Equal(t, NotFoundMessage, notifier.messages[0])
	assert.Equal(t, model.SeverityFailure, notifier.severities[0])
}

func TestInterceptor_NilLookup(t *testing.T) {
	i := New(nil, nil, nil, nil)
	sender := &fakeSender{}

	_, err := i.Wrap(sender.send)(context.Background(), replyRequest("hi"))
	assert.True(t, model.IsTargetNotFound(err))
	assert.Empty(t, sender.calls)
}

func TestInterceptor_LookupFailure(t *testing.T) {
	i, lookup, notifier := newTest()
	lookup.err = errors.New("db down")
	sender := &fakeSender{}

	_, err := i.Wrap(sender.send)(context.Background(), replyRequest("hi"))
	require.Error(t, err)
	assert.False(t, model.IsTargetNotFound(err))
	assert.Contains(t, err.Error(), "db down")
	assert.Empty(t, sender.calls)
	assert.Empty(t, notifier.messages)
}

func TestInterceptor_RetryOnUnknownMessage(t *testing.T) {
	tests := []struct {
		name    string
		sendErr error
	}{
		{name: "code 10008", sendErr: unknownMessageError()},
		{name: "status 404", sendErr: &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusNotFound}}},
		{name: "wrapped", sendErr: errors.Wrap(unknownMessageError(), "send")},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			i, lookup, _ := newTest(record(false))
			sender := &fakeSender{errs: []error{tt.sendErr}}
			req := replyRequest("hi")

			resp, err := i.Wrap(sender.send)(context.Background(), req)
			require.NoError(t, err)
			assert.Equal(t, "sent2", resp.ID)
			require.Len(t, sender.calls, 2)
			assert.Equal(t, 2, lookup.calls)

			retried := sender.calls[1]
			assert.Nil(t, retried.Options.MessageReference)
			assert.Equal(t, "42: hello | hi", retried.Content.Text)
			assert.NotNil(t, req.Options.MessageReference)
		})
	}
}

func TestInterceptor_RetryFailurePropagates(t *testing.T) {
	i, _, _ := newTest(record(false))
	retryErr := errors.New("retry failed")
	sender := &fakeSender{errs: []error{unknownMessageError(), retryErr}}

	_, err := i.Wrap(sender.send)(context.Background(), replyRequest("hi"))
	assert.Equal(t, retryErr, err)
	assert.Len(t, sender.calls, 2)
}

func TestInterceptor_RetryCappedAtOne(t *testing.T) {
	i, _, _ := newTest(record(false))
	retryErr := unknownMessageError()
	sender := &fakeSender{errs: []error{unknownMessageError(), retryErr, nil}}

	_, err := i.Wrap(sender.send)(context.Background(), replyRequest("hi"))
	assert.Equal(t, retryErr, err)
	assert.Len(t, sender.calls, 2)
}

func TestInterceptor_UnknownMessageStillMissing(t *testing.T) {
	i, lookup, _ := newTest(record(false))
	sendErr := unknownMessageError()
	sender := &fakeSender{errs: []error{sendErr}}

	wrapped := i.Wrap(func(ctx context.Context, req *model.SendRequest) (*discordgo.Message, error) {
		delete(lookup.records, "100/900")
		return sender.send(ctx, req)
	})
	_, err := wrapped(context.Background(), replyRequest("hi"))
	assert.Equal(t, sendErr, err)
	assert.Len(t, sender.calls, 1)
}

func TestInterceptor_OtherFailureOnReplyNotRetried(t *testing.T) {
	i, lookup, _ := newTest(record(false))
	sendErr := &discordgo.RESTError{
		Response: &http.Response{StatusCode: http.StatusForbidden},
		Message:  &discordgo.APIErrorMessage{Code: discordgo.ErrCodeMissingPermissions},
	}
	sender := &fakeSender{errs: []error{sendErr}}

	_, err := i.Wrap(sender.send)(context.Background(), replyRequest("hi"))
	assert.Equal(t, sendErr, err)
	assert.Len(t, sender.calls, 1)
	assert.Equal(t, 1, lookup.calls)
}

func TestInterceptor_TemplateReadPerCall(t *testing.T) {
	tmpl := "first {reply}"
	lookup := &fakeLookup{records: map[string]*model.MessageRecord{"100/900": record(true)}}
	i := New(lookup, nil, func() string { return tmpl }, nil)
	sender := &fakeSender{}
	send := i.Wrap(sender.send)

	_, err := send(context.Background(), replyRequest("a"))
	require.NoError(t, err)
	tmpl = "second {reply}"
	_, err = send(context.Background(), replyRequest("b"))
	require.NoError(t, err)

	assert.Equal(t, "first a", sender.calls[0].Content.Text)
	assert.Equal(t, "second b", sender.calls[1].Content.Text)
}

type codedError struct {
	status int
	code   int
}

func (e codedError) Error() string   { return "coded" }
func (e codedError) StatusCode() int { return e.status }
func (e codedError) ErrorCode() int  { return e.code }

func TestIsUnknownMessage(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want bool
	}{
		{name: "nil"},
		{name: "plain", err: errors.New("boom")},
		{name: "rest code", err: unknownMessageError(), want: true},
		{name: "rest 404", err: &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusNotFound}}, want: true},
		{name: "rest 500", err: &discordgo.RESTError{Response: &http.Response{StatusCode: http.StatusInternalServerError}}},
		{name: "rest empty", err: &discordgo.RESTError{}},
		{name: "coded status", err: codedError{status: 404}, want: true},
		{name: "coded code", err: codedError{status: 400, code: 10008}, want: true},
		{name: "coded other", err: codedError{status: 400, code: 50013}},
		{name: "wrapped fmt", err: fmt.Errorf("send: %w", codedError{status: 404}), want: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, IsUnknownMessage(tt.err))
		})
	}
}
