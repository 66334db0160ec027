package tracking

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	goredis "github.com/redis/go-redis/v9"

	pkgerrors "github.com/quickbite-dev/quickbite-backend/pkg/errors"
	"github.com/quickbite-dev/quickbite-backend/pkg/logger"
	"github.com/quickbite-dev/quickbite-backend/pkg/redis"
)

// redisFeed reads location updates off a Redis pub/sub channel so every API
// instance sees updates regardless of which instance ingested them.
type redisFeed struct {
	sub  *goredis.PubSub
	logg *logger.Logger
}

// NewRedisFeed subscribes to the tracking channel and returns a Feed over it.
func NewRedisFeed(ctx context.Context, client *redis.Client, channel string, logg *logger.Logger) (Feed, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if strings.TrimSpace(channel) == "" {
		return nil, fmt.Errorf("tracking channel required")
	}
	sub, err := client.Subscribe(ctx, channel)
	if err != nil {
		return nil, err
	}
	return &redisFeed{sub: sub, logg: logg}, nil
}

// Next blocks for the next well-formed update. Malformed payloads are logged
// and skipped rather than tearing the feed down.
func (f *redisFeed) Next(ctx context.Context) (LocationUpdate, error) {
	for {
		msg, err := f.sub.ReceiveMessage(ctx)
		if err != nil {
			return LocationUpdate{}, err
		}
		var update LocationUpdate
		if err := json.Unmarshal([]byte(msg.Payload), &update); err != nil {
			if f.logg != nil {
				f.logg.Warn(ctx, "discarding malformed tracking payload")
			}
			continue
		}
		return update, nil
	}
}

func (f *redisFeed) Close() error {
	return f.sub.Close()
}

type channelPublisher interface {
	Publish(ctx context.Context, channel string, payload any) error
}

// Publisher pushes courier location updates onto the tracking channel.
type Publisher struct {
	redis   channelPublisher
	channel string
}

// NewPublisher builds a publisher for the given tracking channel.
func NewPublisher(client channelPublisher, channel string) (*Publisher, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client required")
	}
	if strings.TrimSpace(channel) == "" {
		return nil, fmt.Errorf("tracking channel required")
	}
	return &Publisher{redis: client, channel: channel}, nil
}

// Publish validates and fans the update out to all subscribed instances.
func (p *Publisher) Publish(ctx context.Context, update LocationUpdate) error {
	if strings.TrimSpace(update.OrderID) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	payload, err := json.Marshal(update)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encoding location update")
	}
	if err := p.redis.Publish(ctx, p.channel, payload); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "publishing location update")
	}
	return nil
}
