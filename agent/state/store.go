package state

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var (
	ErrRecordNotFound      = errors.New("record not found")
	ErrInvalidConversation = errors.New("conversation id is empty")
	ErrNilMessage          = errors.New("message is nil")
)

// ConversationStore is the persistence contract used by the orchestrator.
type ConversationStore interface {
	CreateConversation(ctx context.Context, userID string) (*Conversation, error)
	GetConversation(ctx context.Context, id string) (*Conversation, error)
	GetConversationWithMessages(ctx context.Context, id string) (*Conversation, error)
	ListConversations(ctx context.Context, userID string) ([]*Conversation, error)
	DeleteConversation(ctx context.Context, id string) error
	TouchConversation(ctx context.Context, id string, title string, now time.Time) error
	AppendMessage(ctx context.Context, msg *Message) error
	RecentMessages(ctx context.Context, conversationID string, limit int) ([]*Message, error)
}

// StoreOption customizes BunStore.
type StoreOption func(*BunStore)

func WithClock(now func() time.Time) StoreOption {
	return func(s *BunStore) {
		if now != nil {
			s.now = now
		}
	}
}

func WithIDGenerator(newID func() string) StoreOption {
	return func(s *BunStore) {
		if newID != nil {
			s.newID = newID
		}
	}
}

// BunStore persists conversations, messages and the lookup records in Postgres.
type BunStore struct {
	db    bun.IDB
	now   func() time.Time
	newID func() string
}

var (
	_ ConversationStore = (*BunStore)(nil)
	_ LookupStore       = (*BunStore)(nil)
)

func NewBunStore(db bun.IDB, opts ...StoreOption) (*BunStore, error) {
	if db == nil {
		return nil, errors.New("bun db is required")
	}

	store := &BunStore{
		db:    db,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(store)
		}
	}
	return store, nil
}

func (s *BunStore) CreateConversation(ctx context.Context, userID string) (*Conversation, error) {
	userID = strings.TrimSpace(userID)
	if userID == "" {
		return nil, errors.New("user id is empty")
	}

	now := s.now().UTC()
	conv := &Conversation{
		ID:        s.newID(),
		UserID:    userID,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if _, err := s.db.NewInsert().Model(conv).Exec(ctx); err != nil {
		return nil, fmt.Errorf("insert conversation: %w", err)
	}
	return conv, nil
}

func (s *BunStore) GetConversation(ctx context.Context, id string) (*Conversation, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidConversation
	}
	if !isUUID(id) {
		return nil, ErrRecordNotFound
	}

	conv := new(Conversation)
	err := s.db.NewSelect().
		Model(conv).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err, "select conversation")
	}
	return conv, nil
}

func (s *BunStore) GetConversationWithMessages(ctx context.Context, id string) (*Conversation, error) {
	if strings.TrimSpace(id) == "" {
		return nil, ErrInvalidConversation
	}
	if !isUUID(id) {
		return nil, ErrRecordNotFound
	}

	conv := new(Conversation)
	err := s.db.NewSelect().
		Model(conv).
		Relation("Messages", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("created_at ASC")
		}).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)
	if err != nil {
		return nil, notFound(err, "select conversation with messages")
	}
	if conv.Messages == nil {
		conv.Messages = []*Message{}
	}
	return conv, nil
}

// ListConversations returns the user's conversations, most recently updated
// first, each carrying only its latest message for preview.
func (s *BunStore) ListConversations(ctx context.Context, userID string) ([]*Conversation, error) {
	convs := make([]*Conversation, 0)
	err := s.db.NewSelect().
		Model(&convs).
		Where("?TableAlias.user_id = ?", userID).
		Order("updated_at DESC").
		Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select conversations: %w", err)
	}
	if len(convs) == 0 {
		return convs, nil
	}

	ids := make([]string, 0, len(convs))
	for _, c := range convs {
		ids = append(ids, c.ID)
	}

	latest := make([]*Message, 0, len(convs))
	err = s.latestMessagesQuery(ids, &latest).Scan(ctx)
	if err != nil {
		return nil, fmt.Errorf("select latest messages: %w", err)
	}

	byConversation := make(map[string]*Message, len(latest))
	for _, m := range latest {
		byConversation[m.ConversationID] = m
	}
	for _, c := range convs {
		c.Messages = []*Message{}
		if m, ok := byConversation[c.ID]; ok {
			c.Messages = append(c.Messages, m)
		}
	}
	return convs, nil
}

func (s *BunStore) latestMessagesQuery(conversationIDs []string, dst *[]*Message) *bun.SelectQuery {
	return s.db.NewSelect().
		Model(dst).
		DistinctOn("conversation_id").
		Where("conversation_id IN (?)", bun.In(conversationIDs)).
		OrderExpr("conversation_id, created_at DESC")
}

func (s *BunStore) DeleteConversation(ctx context.Context, id string) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidConversation
	}
	if !isUUID(id) {
		return fmt.Errorf("%w: conversation=%s", ErrRecordNotFound, id)
	}

	res, err := s.db.NewDelete().
		Model((*Conversation)(nil)).
		Where("id = ?", id).
		Exec(ctx)
	if err != nil {
		return fmt.Errorf("delete conversation: %w", err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("%w: conversation=%s", ErrRecordNotFound, id)
	}
	return nil
}

// TouchConversation refreshes updated_at and sets the title only when none
// has been stored yet.
func (s *BunStore) TouchConversation(ctx context.Context, id string, title string, now time.Time) error {
	if strings.TrimSpace(id) == "" {
		return ErrInvalidConversation
	}

	_, err := s.touchQuery(id, title, now).Exec(ctx)
	if err != nil {
		return fmt.Errorf("update conversation: %w", err)
	}
	return nil
}

func (s *BunStore) touchQuery(id string, title string, now time.Time) *bun.UpdateQuery {
	return s.db.NewUpdate().
		Model((*Conversation)(nil)).
		Set("updated_at = ?", now.UTC()).
		Set("title = COALESCE(NULLIF(title, ''), ?)", title).
		Where("id = ?", id)
}

func (s *BunStore) AppendMessage(ctx context.Context, msg *Message) error {
	if msg == nil {
		return ErrNilMessage
	}
	if strings.TrimSpace(msg.ConversationID) == "" {
		return ErrInvalidConversation
	}
	if msg.ID == "" {
		msg.ID = s.newID()
	}
	if msg.CreatedAt.IsZero() {
		msg.CreatedAt = s.now().UTC()
	}
	if msg.ToolsUsed == nil {
		msg.ToolsUsed = []string{}
	}

	if _, err := s.db.NewInsert().Model(msg).Exec(ctx); err != nil {
		return fmt.Errorf("insert message: %w", err)
	}
	return nil
}

// RecentMessages returns at most limit of the newest messages, oldest first.
func (s *BunStore) RecentMessages(ctx context.Context, conversationID string, limit int) ([]*Message, error) {
	if strings.TrimSpace(conversationID) == "" {
		return nil, ErrInvalidConversation
	}

	msgs := make([]*Message, 0, limit)
	if err := s.recentMessagesQuery(conversationID, limit, &msgs).Scan(ctx); err != nil {
		return nil, fmt.Errorf("select recent messages: %w", err)
	}
	reverseMessages(msgs)
	return msgs, nil
}

func (s *BunStore) recentMessagesQuery(conversationID string, limit int, dst *[]*Message) *bun.SelectQuery {
	q := s.db.NewSelect().
		Model(dst).
		Where("conversation_id = ?", conversationID).
		Order("created_at DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	return q
}

func reverseMessages(msgs []*Message) {
	for i, j := 0, len(msgs)-1; i < j; i, j = i+1, j-1 {
		msgs[i], msgs[j] = msgs[j], msgs[i]
	}
}

func notFound(err error, op string) error {
	if errors.Is(err, sql.ErrNoRows) {
		return ErrRecordNotFound
	}
	return fmt.Errorf("%s: %w", op, err)
}

func isUUID(s string) bool {
	_, err := uuid.Parse(s)
	return err == nil
}
