package notify

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	nats "github.com/nats-io/nats.go"
	"github.com/pkg/errors"
	"github.com/xackery/replyquote/model"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/structpb"
)

// DefaultSubject is used when no NATS subject is configured
const DefaultSubject = "replyquote.notify"

// Publisher sends raw data to a subject, as *nats.Conn does
type Publisher interface {
	Publish(subject string, data []byte) error
}

// NATS publishes notifications as protobuf encoded google.protobuf.Struct messages
type NATS struct {
	conn    Publisher
	subject string
	now     func() time.Time
}

// ConnectNATS dials a NATS server at host, e.g. 127.0.0.1:4222
func ConnectNATS(host string) (*nats.Conn, error) {
	conn, err := nats.Connect(fmt.Sprintf("nats://%s", host), nats.Name("replyquote"))
	if err != nil {
		return nil, errors.Wrap(err, "nats connect")
	}
	return conn, nil
}

// NewNATS creates a new NATS notifier
func NewNATS(conn Publisher, subject string) *NATS {
	if subject == "" {
		subject = DefaultSubject
	}
	return &NATS{
		conn:    conn,
		subject: subject,
		now:     time.Now,
	}
}

// Notify satisfies Notifier. Failures are logged, since notifications are fire and forget
func (n *NATS) Notify(ctx context.Context, message string, severity model.Severity) {
	logger := model.NewLogger(ctx)
	data, err := Encode(message, severity, n.now())
	if err != nil {
		logger.Warn().Err(err).Msg("[notify->nats] encode")
		return
	}
	err = n.conn.Publish(n.subject, data)
	if err != nil {
		logger.Warn().Err(err).Str("subject", n.subject).Msg("[notify->nats] publish")
		return
	}
	logger.Debug().Str("subject", n.subject).Msgf("[notify->nats] %s", message)
}

// Encode builds the wire form of a notification
func Encode(message string, severity model.Severity, sent time.Time) ([]byte, error) {
	s, err := structpb.NewStruct(map[string]interface{}{
		"id":       uuid.NewString(),
		"message":  message,
		"severity": severity.String(),
		"sent":     sent.UTC().Format(time.RFC3339),
	})
	if err != nil {
		return nil, errors.Wrap(err, "new struct")
	}
	data, err := proto.Marshal(s)
	if err != nil {
		return nil, errors.Wrap(err, "marshal")
	}
	return data, nil
}

// Decode parses the wire form of a notification into its fields
func Decode(data []byte) (map[string]interface{}, error) {
	s := &structpb.Struct{}
	err := proto.Unmarshal(data, s)
	if err != nil {
		return nil, errors.Wrap(err, "unmarshal")
	}
	return s.AsMap(), nil
}
