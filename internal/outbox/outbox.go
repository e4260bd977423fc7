package outbox

import (
	"context"
	"encoding/json"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Message topics produced by the engine. Delivery is an external
// collaborator's job; the engine only writes the message in the same
// transaction as the state change it describes.
const (
	TopicEventCreated     = "event.created"
	TopicEventUpdated     = "event.updated"
	TopicPurchaseSettled  = "purchase.settled"
	TopicPurchaseFailed   = "purchase.failed"
	TopicPurchaseCanceled = "purchase.cancelled"
)

type Message struct {
	ID          snowflake.ID   `json:"id" gorm:"primaryKey"`
	Topic       string         `json:"topic" gorm:"type:text;not null"`
	MessageKey  string         `json:"message_key" gorm:"type:text;not null"`
	Payload     datatypes.JSON `json:"payload" gorm:"not null"`
	CreatedAt   time.Time      `json:"created_at" gorm:"not null"`
	PublishedAt *time.Time     `json:"published_at"`
}

func (Message) TableName() string { return "outbox_messages" }

type Outbox struct {
	genID *snowflake.Node
}

func New(genID *snowflake.Node) *Outbox {
	return &Outbox{genID: genID}
}

// PublishTx appends a message inside the caller's transaction.
func (o *Outbox) PublishTx(ctx context.Context, tx *gorm.DB, topic, key string, payload map[string]any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	return tx.WithContext(ctx).Exec(
		`INSERT INTO outbox_messages (id, topic, message_key, payload, created_at)
		 VALUES (?, ?, ?, ?, ?)`,
		o.genID.Generate(),
		topic,
		key,
		datatypes.JSON(body),
		time.Now().UTC(),
	).Error
}
