package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	kafkago "github.com/segmentio/kafka-go"

	"github.com/talx-hub/gopher-cashback/internal/model/customer"
)

// BalanceUpdated is emitted after a wallet balance changed.
// Consumers re-read the wallet to get the fresh balance.
type BalanceUpdated struct {
	WalletID   string    `json:"wallet_id"`
	OccurredAt time.Time `json:"occurred_at"`
}

type Publisher interface {
	Publish(ctx context.Context, e BalanceUpdated) error
	Close() error
}

// Writer is the part of kafka.Writer the publisher uses.
type Writer interface {
	WriteMessages(ctx context.Context, msgs ...kafkago.Message) error
	Close() error
}

type KafkaPublisher struct {
	writer Writer
}

func NewKafkaPublisher(brokers []string, topic string) *KafkaPublisher {
	return NewKafkaPublisherWithWriter(&kafkago.Writer{
		Addr:                   kafkago.TCP(brokers...),
		Topic:                  topic,
		Balancer:               &kafkago.Hash{},
		RequiredAcks:           kafkago.RequireAll,
		AllowAutoTopicCreation: true,
	})
}

func NewKafkaPublisherWithWriter(w Writer) *KafkaPublisher {
	return &KafkaPublisher{writer: w}
}

// Publish keys messages by wallet id so the events of one wallet stay ordered.
func (p *KafkaPublisher) Publish(ctx context.Context, e BalanceUpdated) error {
	value, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("failed to encode event: %w", err)
	}
	msg := kafkago.Message{
		Key:   []byte(e.WalletID),
		Value: value,
		Headers: []kafkago.Header{
			{Key: "event", Value: []byte("balanceUpdated")},
		},
	}
	if err = p.writer.WriteMessages(ctx, msg); err != nil {
		return fmt.Errorf("kafka write error: %w", err)
	}
	return nil
}

func (p *KafkaPublisher) Close() error {
	return p.writer.Close()
}

type walletReader interface {
	GetWallet(ctx context.Context, walletID string) (customer.Wallet, error)
}

// LogPublisher reads the wallet back and logs its balance.
type LogPublisher struct {
	wallets walletReader
	log     *slog.Logger
}

func NewLogPublisher(wallets walletReader, log *slog.Logger) *LogPublisher {
	return &LogPublisher{
		wallets: wallets,
		log:     log,
	}
}

func (p *LogPublisher) Publish(ctx context.Context, e BalanceUpdated) error {
	w, err := p.wallets.GetWallet(ctx, e.WalletID)
	if err != nil {
		return fmt.Errorf("failed to read wallet %s: %w", e.WalletID, err)
	}
	p.log.LogAttrs(ctx,
		slog.LevelInfo,
		"balance updated",
		slog.String("wallet_id", w.ID),
		slog.String("balance", w.Balance.String()),
	)
	return nil
}

func (p *LogPublisher) Close() error {
	return nil
}
