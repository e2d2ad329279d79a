package repository

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hivehr/hivehr/internal/domain"
)

// ConversationRepository handles persistence of conversations.
type ConversationRepository struct {
	db dbtx
}

func NewConversationRepository(pool *pgxpool.Pool) *ConversationRepository {
	return &ConversationRepository{db: pool}
}

func (r *ConversationRepository) Create(ctx context.Context, c *domain.Conversation) error {
	_, err := r.db.Exec(ctx,
		`INSERT INTO conversations (id, org_id, employee_id, channel, status, started_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		c.ID, c.OrgID, c.EmployeeID, c.Channel, c.Status, c.StartedAt,
	)
	return err
}

func (r *ConversationRepository) GetByIDForOrg(ctx context.Context, id, orgID string) (*domain.Conversation, error) {
	var c domain.Conversation
	err := r.db.QueryRow(ctx,
		`SELECT id, org_id, employee_id, channel, status, started_at, ended_at
		 FROM conversations WHERE id = $1 AND org_id = $2`,
		id, orgID,
	).Scan(&c.ID, &c.OrgID, &c.EmployeeID, &c.Channel, &c.Status, &c.StartedAt, &c.EndedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrConversationNotFound
		}
		return nil, err
	}
	return &c, nil
}

func (r *ConversationRepository) ListByEmployee(ctx context.Context, orgID, employeeID string) ([]*domain.Conversation, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, org_id, employee_id, channel, status, started_at, ended_at
		 FROM conversations
		 WHERE org_id = $1 AND employee_id = $2
		 ORDER BY started_at DESC`,
		orgID, employeeID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var conversations []*domain.Conversation
	for rows.Next() {
		var c domain.Conversation
		if err := rows.Scan(&c.ID, &c.OrgID, &c.EmployeeID, &c.Channel, &c.Status, &c.StartedAt, &c.EndedAt); err != nil {
			return nil, err
		}
		conversations = append(conversations, &c)
	}
	return conversations, rows.Err()
}

func (r *ConversationRepository) Update(ctx context.Context, c *domain.Conversation) error {
	cmdTag, err := r.db.Exec(ctx,
		`UPDATE conversations SET status = $1, ended_at = $2 WHERE id = $3 AND org_id = $4`,
		c.Status, c.EndedAt, c.ID, c.OrgID,
	)
	if err != nil {
		return err
	}
	if cmdTag.RowsAffected() == 0 {
		return domain.ErrConversationNotFound
	}
	return nil
}

// MessageRepository handles persistence of conversation messages.
type MessageRepository struct {
	db dbtx
}

func NewMessageRepository(pool *pgxpool.Pool) *MessageRepository {
	return &MessageRepository{db: pool}
}

func (r *MessageRepository) Create(ctx context.Context, m *domain.Message) error {
	var toolCalls []byte
	if len(m.ToolCalls) > 0 {
		var err error
		toolCalls, err = json.Marshal(m.ToolCalls)
		if err != nil {
			return err
		}
	}
	_, err := r.db.Exec(ctx,
		`INSERT INTO messages (id, conversation_id, role, content, tool_calls, created_at)
		 VALUES ($1, $2, $3, $4, $5, $6)`,
		m.ID, m.ConversationID, m.Role, m.Content, toolCalls, m.CreatedAt,
	)
	return err
}

func (r *MessageRepository) ListByConversation(ctx context.Context, conversationID string) ([]*domain.Message, error) {
	rows, err := r.db.Query(ctx,
		`SELECT id, conversation_id, role, content, tool_calls, created_at
		 FROM messages
		 WHERE conversation_id = $1
		 ORDER BY created_at ASC`,
		conversationID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var messages []*domain.Message
	for rows.Next() {
		var m domain.Message
		var toolCalls []byte
		if err := rows.Scan(&m.ID, &m.ConversationID, &m.Role, &m.Content, &toolCalls, &m.CreatedAt); err != nil {
			return nil, err
		}
		if len(toolCalls) > 0 {
			if err := json.Unmarshal(toolCalls, &m.ToolCalls); err != nil {
				return nil, err
			}
		}
		messages = append(messages, &m)
	}
	return messages, rows.Err()
}
