package messagelog

import (
	"context"
	"database/sql"
	"fmt"
	"regexp"
	"time"

	//used for database connection
	_ "github.com/go-sql-driver/mysql"
	"github.com/pkg/errors"
	"github.com/xackery/replyquote/model"
	_ "modernc.org/sqlite"
)

var tableName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// SQLStore reads message records from a table maintained by an external message logger.
// Columns: id, channel_id, guild_id, author_id, author_username, content, timestamp (unix seconds), deleted
type SQLStore struct {
	db    *sql.DB
	query string
}

// OpenSQL connects to a message logger database. driver is mysql or sqlite
func OpenSQL(driver string, dsn string, table string) (*SQLStore, error) {
	switch driver {
	case "mysql", "sqlite":
	default:
		return nil, fmt.Errorf("unsupported driver %q", driver)
	}
	db, err := sql.Open(driver, dsn)
	if err != nil {
		return nil, errors.Wrap(err, "open")
	}
	s, err := NewSQLStore(db, table)
	if err != nil {
		db.Close()
		return nil, err
	}
	return s, nil
}

// NewSQLStore wraps an existing connection
func NewSQLStore(db *sql.DB, table string) (*SQLStore, error) {
	if !tableName.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	return &SQLStore{
		db:    db,
		query: fmt.Sprintf("SELECT id, channel_id, guild_id, author_id, author_username, content, timestamp, deleted FROM %s WHERE channel_id = ? AND id = ? LIMIT 1", table),
	}, nil
}

// Ping verifies the database is reachable
func (s *SQLStore) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// Message satisfies Lookup
func (s *SQLStore) Message(ctx context.Context, channelID string, messageID string) (*model.MessageRecord, error) {
	rec := &model.MessageRecord{}
	var guildID, username sql.NullString
	var sent int64
	err := s.db.QueryRowContext(ctx, s.query, channelID, messageID).Scan(
		&rec.ID,
		&rec.ChannelID,
		&guildID,
		&rec.AuthorID,
		&username,
		&rec.Content,
		&sent,
		&rec.Deleted,
	)
	if err == sql.ErrNoRows {
		return nil, model.ErrMessageNotFound
	}
	if err != nil {
		return nil, errors.Wrap(err, "query message")
	}
	rec.GuildID = guildID.String
	rec.AuthorUsername = username.String
	rec.Timestamp = time.Unix(sent, 0)
	return rec, nil
}

// Close closes the database connection
func (s *SQLStore) Close() error {
	return s.db.Close()
}
