package store

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/KareemHossny/Ghalya-BackEnd/internal/models"
)

const messageColumns = `id, name, email, subject, body, status, ip_address, user_agent, created_at, updated_at`

// MessageFilter selects a page of the inbox. Status "" means all.
type MessageFilter struct {
	Status models.MessageStatus
	Limit  int
	Offset int
}

type MessageStats struct {
	TotalMessages  int `json:"totalMessages"`
	NewMessages    int `json:"newMessages"`
	ReadMessages   int `json:"readMessages"`
	RecentMessages int `json:"recentMessages"`
}

func scanMessage(row interface{ Scan(...any) error }) (*models.Message, error) {
	var m models.Message
	var status string
	err := row.Scan(&m.ID, &m.Name, &m.Email, &m.Subject, &m.Body, &status, &m.IPAddress, &m.UserAgent, &m.CreatedAt, &m.UpdatedAt)
	if err != nil {
		return nil, err
	}
	m.Status = models.MessageStatus(status)
	return &m, nil
}

func (s *Store) CreateMessage(ctx context.Context, m *models.Message) error {
	now := s.timestamp()
	m.CreatedAt, m.UpdatedAt = now, now
	if m.Status == "" {
		m.Status = models.MessageNew
	}
	return s.DB.QueryRowContext(ctx, s.q(`
		INSERT INTO messages (name, email, subject, body, status, ip_address, user_agent, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`), m.Name, m.Email, m.Subject, m.Body, string(m.Status), m.IPAddress, m.UserAgent, m.CreatedAt, m.UpdatedAt).Scan(&m.ID)
}

// ListMessages returns one page newest first, plus the total matching count.
func (s *Store) ListMessages(ctx context.Context, f MessageFilter) ([]models.Message, int, error) {
	where := ``
	var args []any
	if f.Status != "" {
		where = ` WHERE status = ?`
		args = append(args, string(f.Status))
	}

	var total int
	if err := s.DB.QueryRowContext(ctx, s.q(`SELECT COUNT(*) FROM messages`+where), args...).Scan(&total); err != nil {
		return nil, 0, err
	}

	query := `SELECT ` + messageColumns + ` FROM messages` + where + ` ORDER BY created_at DESC, id DESC LIMIT ? OFFSET ?`
	rows, err := s.DB.QueryContext(ctx, s.q(query), append(args, f.Limit, f.Offset)...)
	if err != nil {
		return nil, 0, err
	}
	defer rows.Close()

	messages := []models.Message{}
	for rows.Next() {
		m, err := scanMessage(rows)
		if err != nil {
			return nil, 0, err
		}
		messages = append(messages, *m)
	}
	return messages, total, rows.Err()
}

func (s *Store) GetMessage(ctx context.Context, id int64) (*models.Message, error) {
	m, err := scanMessage(s.DB.QueryRowContext(ctx, s.q(`SELECT `+messageColumns+` FROM messages WHERE id = ?`), id))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return m, err
}

// OpenMessage fetches a message and marks it read if it was new. Only the
// first open changes the row.
func (s *Store) OpenMessage(ctx context.Context, id int64) (*models.Message, error) {
	_, err := s.DB.ExecContext(ctx, s.q(`UPDATE messages SET status = ?, updated_at = ? WHERE id = ? AND status = ?`),
		string(models.MessageRead), s.timestamp(), id, string(models.MessageNew))
	if err != nil {
		return nil, err
	}
	return s.GetMessage(ctx, id)
}

func (s *Store) UpdateMessageStatus(ctx context.Context, id int64, status models.MessageStatus) (*models.Message, error) {
	res, err := s.DB.ExecContext(ctx, s.q(`UPDATE messages SET status = ?, updated_at = ? WHERE id = ?`),
		string(status), s.timestamp(), id)
	if err != nil {
		return nil, err
	}
	if n, err := res.RowsAffected(); err != nil {
		return nil, err
	} else if n == 0 {
		return nil, ErrNotFound
	}
	return s.GetMessage(ctx, id)
}

func (s *Store) DeleteMessage(ctx context.Context, id int64) error {
	res, err := s.DB.ExecContext(ctx, s.q(`DELETE FROM messages WHERE id = ?`), id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

// GetMessageStats counts the inbox; "recent" is the last seven days.
func (s *Store) GetMessageStats(ctx context.Context) (*MessageStats, error) {
	stats := &MessageStats{}
	since := s.timestamp().Add(-7 * 24 * time.Hour)
	err := s.DB.QueryRowContext(ctx, s.q(`
		SELECT
			COUNT(*),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN status = ? THEN 1 ELSE 0 END), 0),
			COALESCE(SUM(CASE WHEN created_at >= ? THEN 1 ELSE 0 END), 0)
		FROM messages
	`), string(models.MessageNew), string(models.MessageRead), since).Scan(
		&stats.TotalMessages, &stats.NewMessages, &stats.ReadMessages, &stats.RecentMessages)
	if err != nil {
		return nil, err
	}
	return stats, nil
}
