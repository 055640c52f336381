package publisher

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
)

// Stream names
const (
	StreamPlayersParsed = "hockeydb.players.parsed"
	StreamPlayersFailed = "hockeydb.players.failed"
)

// maxStreamLen caps each stream; older entries are trimmed approximately
const maxStreamLen = 10000

// RedisStreamPublisher publishes pipeline events to Redis streams
type RedisStreamPublisher struct {
	client *redis.Client
}

// NewRedisStreamPublisher creates a new Redis stream publisher from existing client
func NewRedisStreamPublisher(client *redis.Client) *RedisStreamPublisher {
	return &RedisStreamPublisher{
		client: client,
	}
}

// PlayerParsed is the payload of StreamPlayersParsed
type PlayerParsed struct {
	Source     string `json:"source"`
	HockeyDBID int    `json:"hockeydb_id,omitempty"`
	PlayerID   int    `json:"player_id,omitempty"`
	Name       string `json:"name"`
	IsGoalie   bool   `json:"is_goalie"`
	StatRows   int    `json:"stat_rows"`
}

// PlayerFailed is the payload of StreamPlayersFailed
type PlayerFailed struct {
	Source     string `json:"source"`
	HockeyDBID int    `json:"hockeydb_id,omitempty"`
	Name       string `json:"name,omitempty"`
	Error      string `json:"error"`
}

// PublishPlayerParsed announces a parsed (and possibly stored) player
func (rsp *RedisStreamPublisher) PublishPlayerParsed(ctx context.Context, event PlayerParsed) error {
	return rsp.publish(ctx, StreamPlayersParsed, event)
}

// PublishPlayerFailed announces a player that could not be fetched or stored
func (rsp *RedisStreamPublisher) PublishPlayerFailed(ctx context.Context, event PlayerFailed) error {
	return rsp.publish(ctx, StreamPlayersFailed, event)
}

func (rsp *RedisStreamPublisher) publish(ctx context.Context, stream string, payload interface{}) error {
	data, err := json.Marshal(payload)
	if err != nil {
		return err
	}

	return rsp.client.XAdd(ctx, &redis.XAddArgs{
		Stream: stream,
		MaxLen: maxStreamLen,
		Approx: true,
		Values: map[string]interface{}{
			"data":      string(data),
			"timestamp": time.Now().Unix(),
		},
	}).Err()
}
