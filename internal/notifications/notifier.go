// Package notifications publishes account events to per-user Redis channels.
// Delivery is best effort; subscribers that are offline miss the event.
package notifications

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"runtime/debug"
	"strconv"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

const userChannelPrefix = "notifications:user:"

// Event types.
const (
	EventFavoriteAdded = "favorite_added"
	EventRoleChanged   = "role_changed"
)

// Event is the JSON payload published on a user channel.
type Event struct {
	Type     string    `json:"type"`
	UserID   uint      `json:"userId,omitempty"`
	SellerID uint      `json:"sellerId,omitempty"`
	Role     string    `json:"role,omitempty"`
	At       time.Time `json:"at"`
}

// Notifier provides helpers to publish events into Redis channels.
type Notifier struct {
	rdb *redis.Client
}

// NewNotifier creates a new Notifier. A nil client turns every publish into a no-op.
func NewNotifier(rdb *redis.Client) *Notifier {
	return &Notifier{rdb: rdb}
}

// UserChannel returns the channel name for a user's events.
func UserChannel(userID uint) string {
	return fmt.Sprintf("%s%d", userChannelPrefix, userID)
}

// PublishUser sends an event to a user's channel.
func (n *Notifier) PublishUser(ctx context.Context, userID uint, ev Event) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	if ev.At.IsZero() {
		ev.At = time.Now().UTC()
	}
	payload, err := json.Marshal(ev)
	if err != nil {
		return err
	}
	return n.rdb.Publish(ctx, UserChannel(userID), payload).Err()
}

// StartUserSubscriber subscribes to every user channel and calls onEvent for
// each decodable message until ctx is cancelled.
func (n *Notifier) StartUserSubscriber(ctx context.Context, onEvent func(userID uint, ev Event)) error {
	if n == nil || n.rdb == nil {
		return nil
	}
	sub := n.rdb.PSubscribe(ctx, userChannelPrefix+"*")
	if _, err := sub.Receive(ctx); err != nil {
		_ = sub.Close()
		return err
	}
	ch := sub.Channel()

	go func() {
		defer func() { _ = sub.Close() }()
		for {
			select {
			case <-ctx.Done():
				return
			case msg, ok := <-ch:
				if !ok {
					return
				}
				userID, err := parseUserChannel(msg.Channel)
				if err != nil {
					continue
				}
				var ev Event
				if err := json.Unmarshal([]byte(msg.Payload), &ev); err != nil {
					slog.Warn("dropping malformed notification", slog.String("channel", msg.Channel))
					continue
				}
				func() {
					defer func() {
						if r := recover(); r != nil {
							slog.Error("panic in notification subscriber",
								slog.Any("panic", r), slog.String("stack", string(debug.Stack())))
						}
					}()
					onEvent(userID, ev)
				}()
			}
		}
	}()

	return nil
}

func parseUserChannel(channel string) (uint, error) {
	raw, ok := strings.CutPrefix(channel, userChannelPrefix)
	if !ok {
		return 0, fmt.Errorf("not a user channel: %s", channel)
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
