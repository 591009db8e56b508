package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/baechuer/account-service/internal/application/account"
	"github.com/baechuer/account-service/internal/domain"
	"github.com/baechuer/account-service/internal/logger"
	ctxpkg "github.com/baechuer/account-service/internal/pkg/context"
)

const (
	DefaultExchange = "account.events"

	RoutingAccountRegistered = "account.registered"
	RoutingSettingsUpdated   = "account.settings.updated"

	// Window to wait for the broker's Return / Confirm.
	publishWait = 500 * time.Millisecond
)

// Publisher implements account.EventPublisher over a confirm-mode channel.
// Messages are published mandatory, so an unbound routing key is an error.
type Publisher struct {
	url      string
	exchange string

	mu sync.Mutex

	conn *amqp.Connection
	ch   *amqp.Channel

	confirmCh <-chan amqp.Confirmation
	returnCh  <-chan amqp.Return
}

func NewPublisher(url, exchange string) (*Publisher, error) {
	if exchange == "" {
		exchange = DefaultExchange
	}
	p := &Publisher{
		url:      url,
		exchange: exchange,
	}
	if err := p.connect(); err != nil {
		return nil, domain.ErrRabbitUnavailable(err)
	}
	return p, nil
}

func (p *Publisher) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.resetConn()
	return nil
}

// ---- account.EventPublisher ----

func (p *Publisher) PublishAccountRegistered(ctx context.Context, evt account.AccountRegisteredEvent) error {
	return p.publishJSON(ctx, RoutingAccountRegistered, registeredPayload(evt))
}

func (p *Publisher) PublishSettingsUpdated(ctx context.Context, evt account.SettingsUpdatedEvent) error {
	return p.publishJSON(ctx, RoutingSettingsUpdated, settingsPayload(evt))
}

// ---- wire format ----

type registeredMessage struct {
	UserID            string `json:"user_id"`
	UserName          string `json:"user_name"`
	Email             string `json:"email"`
	Locale            string `json:"locale"`
	RequireActivation bool   `json:"require_activation"`
}

type settingsMessage struct {
	UserID string   `json:"user_id"`
	Fields []string `json:"fields"`
}

func registeredPayload(evt account.AccountRegisteredEvent) registeredMessage {
	return registeredMessage{
		UserID:            evt.UserID,
		UserName:          evt.UserName,
		Email:             evt.Email,
		Locale:            evt.Locale,
		RequireActivation: evt.RequireActivation,
	}
}

// settingsPayload never carries values, only the names of changed fields.
func settingsPayload(evt account.SettingsUpdatedEvent) settingsMessage {
	fields := evt.Fields
	if fields == nil {
		fields = []string{}
	}
	return settingsMessage{UserID: evt.UserID, Fields: fields}
}

// ---- internal ----

func (p *Publisher) connect() error {
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return fmt.Errorf("rabbitmq dial: %w", err)
	}

	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return fmt.Errorf("rabbitmq channel: %w", err)
	}

	// Declare topic exchange (idempotent).
	if err := ch.ExchangeDeclare(
		p.exchange,
		"topic",
		true,  // durable
		false, // auto-delete
		false,
		false,
		nil,
	); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("exchange declare: %w", err)
	}

	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return fmt.Errorf("confirm mode: %w", err)
	}

	p.confirmCh = ch.NotifyPublish(make(chan amqp.Confirmation, 1))
	p.returnCh = ch.NotifyReturn(make(chan amqp.Return, 1))

	p.conn = conn
	p.ch = ch
	return nil
}

func (p *Publisher) ensureConnected() error {
	if p.conn != nil && !p.conn.IsClosed() && p.ch != nil {
		return nil
	}
	return p.connect()
}

func (p *Publisher) publishJSON(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return domain.ErrInternal(fmt.Errorf("marshal payload: %w", err))
	}

	if _, ok := ctx.Deadline(); !ok {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, 2*time.Second)
		defer cancel()
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	if err := p.ensureConnected(); err != nil {
		return domain.ErrRabbitUnavailable(err)
	}

	// Drop stale confirm / return frames from an earlier publish.
drain:
	for {
		select {
		case <-p.confirmCh:
		case <-p.returnCh:
		default:
			break drain
		}
	}

	if err := p.ch.PublishWithContext(
		ctx,
		p.exchange,
		routingKey,
		true,  // mandatory
		false, // immediate
		amqp.Publishing{
			ContentType:   "application/json",
			DeliveryMode:  amqp.Persistent,
			Timestamp:     time.Now(),
			CorrelationId: ctxpkg.GetRequestID(ctx),
			Body:          body,
		},
	); err != nil {
		p.resetConn()
		return domain.ErrRabbitUnavailable(fmt.Errorf("publish: %w", err))
	}

	// A Return for a mandatory message is sent before its Ack.
	select {
	case ret := <-p.returnCh:
		return domain.ErrRabbitUnavailable(fmt.Errorf(
			"unroutable: key=%s code=%d text=%s",
			routingKey, ret.ReplyCode, ret.ReplyText,
		))

	case conf := <-p.confirmCh:
		select {
		case ret := <-p.returnCh:
			return domain.ErrRabbitUnavailable(fmt.Errorf(
				"unroutable: key=%s code=%d text=%s",
				routingKey, ret.ReplyCode, ret.ReplyText,
			))
		default:
		}
		if !conf.Ack {
			return domain.ErrRabbitUnavailable(fmt.Errorf("nack: key=%s deliveryTag=%d", routingKey, conf.DeliveryTag))
		}
		logger.WithCtx(ctx).Debug().
			Str("routing_key", routingKey).
			Uint64("delivery_tag", conf.DeliveryTag).
			Msg("event published")
		return nil

	case <-time.After(publishWait):
		return domain.ErrRabbitUnavailable(fmt.Errorf("publish timeout: key=%s", routingKey))

	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *Publisher) resetConn() {
	if p.ch != nil {
		_ = p.ch.Close()
		p.ch = nil
	}
	if p.conn != nil {
		_ = p.conn.Close()
		p.conn = nil
	}
}
