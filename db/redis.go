package db

import (
	"context"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

var Redis *redis.Client
var Ctx = context.Background()

const ArticlesChangedChannel = "uptotimenews:articles:changed"

const publishTimeout = 5 * time.Second

func ConnectRedis(redisURL string) error {
	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		opt = &redis.Options{Addr: redisURL}
	}

	Redis = redis.NewClient(opt)

	_, err = Redis.Ping(Ctx).Result()
	return err
}

func CloseRedis() {
	if Redis != nil {
		Redis.Close()
	}
}

type ChangeMessage struct {
	Count int `json:"count"`
}

type counter interface {
	Count() int
}

// ChangePublisher is a rendering surface backed by Redis pub/sub: every
// data-changed signal becomes a message on ArticlesChangedChannel so remote
// views know to pull the list again.
type ChangePublisher struct {
	client  *redis.Client
	list    counter
	channel string
}

func NewChangePublisher(client *redis.Client, list counter) *ChangePublisher {
	return &ChangePublisher{
		client:  client,
		list:    list,
		channel: ArticlesChangedChannel,
	}
}

func (p *ChangePublisher) DataChanged() {
	payload, err := json.Marshal(ChangeMessage{Count: p.list.Count()})
	if err != nil {
		slog.Error("error encoding change message", "error", err)
		return
	}

	ctx, cancel := context.WithTimeout(Ctx, publishTimeout)
	defer cancel()

	if err := p.client.Publish(ctx, p.channel, payload).Err(); err != nil {
		slog.Error("error publishing change", "channel", p.channel, "error", err)
	}
}
