package relay

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"log/slog"

	"kickabout/internal/app"
	"kickabout/internal/protocol"
	"kickabout/internal/room"
)

const (
	directoryChannel  = "rooms:directory"
	announceInterval  = 3 * time.Second
	directoryTTL      = 10 * time.Second
	publishQueueDepth = 256
)

// busMessage is one published frame. Origin is the sending instance;
// receivers drop their own echoes, which is what keeps a line from
// reaching the same room twice.
type busMessage struct {
	Origin string              `json:"origin"`
	Code   string              `json:"code"`
	Event  *room.Event         `json:"event,omitempty"`
	Chat   *protocol.ChatEvent `json:"chat,omitempty"`
}

// announcement is one instance's periodic directory entry.
type announcement struct {
	Instance string      `json:"instance"`
	Addr     string      `json:"addr"`
	Rooms    []room.Info `json:"rooms"`
}

// RedisBus publishes chat and match events per room and trades room
// directories with sibling instances over pub/sub. Authority never
// moves: a room ticks on one instance only, the bus just tells the
// others it exists.
type RedisBus struct {
	id   string
	addr string
	rdb  *redis.Client
	log  *slog.Logger
	reg  *room.Registry
	out  chan busMessage

	mu      sync.RWMutex
	remotes map[string]remoteEntry
}

type remoteEntry struct {
	ann  announcement
	seen time.Time
}

// NewRedisBus connects to redis and verifies connectivity.
func NewRedisBus(ctx context.Context, cfg app.Config, log *slog.Logger, reg *room.Registry) (*RedisBus, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
		DB:   cfg.RedisDB,
	})
	if err := rdb.Ping(ctx).Err(); err != nil {
		return nil, err
	}
	b := &RedisBus{
		id:      uuid.NewString(),
		addr:    cfg.AdvertiseAddr,
		rdb:     rdb,
		log:     log,
		reg:     reg,
		out:     make(chan busMessage, publishQueueDepth),
		remotes: map[string]remoteEntry{},
	}
	log.Info("relay.connected", "redis", cfg.RedisAddr, "instance", b.id)
	return b, nil
}

// Run drives the bus until ctx ends. Start it on its own goroutine.
func (b *RedisBus) Run(ctx context.Context) {
	go b.publishLoop(ctx)
	go b.announceLoop(ctx)
	b.subscribe(ctx)
}

// Emit queues a room event for publishing. Called from room loops, so
// it drops rather than blocks when the queue is full.
func (b *RedisBus) Emit(ev room.Event) {
	m := busMessage{Origin: b.id, Code: ev.Code}
	if ev.Kind == room.EventChat && ev.Chat != nil {
		m.Chat = ev.Chat
	} else {
		evCopy := ev
		m.Event = &evCopy
	}
	select {
	case b.out <- m:
	default:
	}
}

// Remote lists rooms hosted by instances heard from recently.
func (b *RedisBus) Remote() []RemoteRoom {
	cutoff := time.Now().Add(-directoryTTL)
	b.mu.RLock()
	var out []RemoteRoom
	for id, e := range b.remotes {
		if id == b.id || e.seen.Before(cutoff) {
			continue
		}
		for _, info := range e.ann.Rooms {
			out = append(out, RemoteRoom{Info: info, Addr: e.ann.Addr})
		}
	}
	b.mu.RUnlock()
	sortRemote(out)
	return out
}

// Close shuts down the redis connection.
func (b *RedisBus) Close() error { return b.rdb.Close() }

func (b *RedisBus) publishLoop(ctx context.Context) {
	for {
		select {
		case <-ctx.Done():
			return
		case m := <-b.out:
			raw, err := json.Marshal(m)
			if err != nil {
				continue
			}
			ch := eventsChannel(m.Code)
			if m.Chat != nil {
				ch = chatChannel(m.Code)
			}
			if err := b.rdb.Publish(ctx, ch, raw).Err(); err != nil {
				b.log.Warn("relay.publish", "channel", ch, "err", err)
			}
		}
	}
}

func (b *RedisBus) announceLoop(ctx context.Context) {
	t := time.NewTicker(announceInterval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			ann := announcement{Instance: b.id, Addr: b.addr}
			for _, info := range b.reg.List() {
				if info.Public {
					ann.Rooms = append(ann.Rooms, info)
				}
			}
			raw, err := json.Marshal(ann)
			if err != nil {
				continue
			}
			if err := b.rdb.Publish(ctx, directoryChannel, raw).Err(); err != nil {
				b.log.Warn("relay.announce", "err", err)
			}
			b.prune()
		}
	}
}

func (b *RedisBus) subscribe(ctx context.Context) {
	pubsub := b.rdb.PSubscribe(ctx, chatChannel("*"), directoryChannel)
	ch := pubsub.Channel()
	for {
		select {
		case <-ctx.Done():
			_ = pubsub.Close()
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			if msg.Channel == directoryChannel {
				b.handleDirectory([]byte(msg.Payload))
			} else {
				b.handleChat([]byte(msg.Payload))
			}
		}
	}
}

func (b *RedisBus) handleDirectory(raw []byte) {
	var ann announcement
	if err := json.Unmarshal(raw, &ann); err != nil || ann.Instance == "" {
		return
	}
	if ann.Instance == b.id {
		return
	}
	b.mu.Lock()
	b.remotes[ann.Instance] = remoteEntry{ann: ann, seen: time.Now()}
	b.mu.Unlock()
}

func (b *RedisBus) handleChat(raw []byte) {
	var m busMessage
	if err := json.Unmarshal(raw, &m); err != nil || m.Chat == nil {
		return
	}
	if m.Origin == b.id {
		return
	}
	rm, err := b.reg.Find(m.Code)
	if err != nil {
		return
	}
	rm.InjectChat(*m.Chat)
}

func (b *RedisBus) prune() {
	cutoff := time.Now().Add(-directoryTTL)
	b.mu.Lock()
	for id, e := range b.remotes {
		if e.seen.Before(cutoff) {
			delete(b.remotes, id)
		}
	}
	b.mu.Unlock()
}

func chatChannel(code string) string   { return "room:" + code + ":chat" }
func eventsChannel(code string) string { return "room:" + code + ":events" }
