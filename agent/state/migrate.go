package state

import (
	"context"
	"fmt"

	"github.com/uptrace/bun"
)

// Migrate creates the tables and indexes when they do not exist yet.
func Migrate(ctx context.Context, db bun.IDB) error {
	tables := []struct {
		name  string
		model any
		fks   []string
	}{
		{name: "conversations", model: (*Conversation)(nil)},
		{
			name:  "messages",
			model: (*Message)(nil),
			fks:   []string{`("conversation_id") REFERENCES "conversations" ("id") ON DELETE CASCADE`},
		},
		{name: "orders", model: (*Order)(nil)},
		{
			name:  "payments",
			model: (*Payment)(nil),
			fks:   []string{`("order_id") REFERENCES "orders" ("id") ON DELETE SET NULL`},
		},
		{name: "faqs", model: (*FAQ)(nil)},
	}

	for _, t := range tables {
		q := db.NewCreateTable().Model(t.model).IfNotExists()
		for _, fk := range t.fks {
			q = q.ForeignKey(fk)
		}
		if _, err := q.Exec(ctx); err != nil {
			return fmt.Errorf("create table %s: %w", t.name, err)
		}
	}

	indexes := []struct {
		name    string
		model   any
		columns []string
	}{
		{name: "messages_conversation_created_idx", model: (*Message)(nil), columns: []string{"conversation_id", "created_at"}},
		{name: "conversations_user_updated_idx", model: (*Conversation)(nil), columns: []string{"user_id", "updated_at"}},
		{name: "orders_user_idx", model: (*Order)(nil), columns: []string{"user_id"}},
		{name: "payments_user_idx", model: (*Payment)(nil), columns: []string{"user_id"}},
	}

	for _, idx := range indexes {
		_, err := db.NewCreateIndex().
			Model(idx.model).
			Index(idx.name).
			Column(idx.columns...).
			IfNotExists().
			Exec(ctx)
		if err != nil {
			return fmt.Errorf("create index %s: %w", idx.name, err)
		}
	}

	return nil
}
