package service

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/websocket/v2"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"

	"github.com/openhack-labs/openhack-api/internal/dto"
	"github.com/openhack-labs/openhack-api/internal/observability"
)

const (
	// LeaderboardRoom is the websocket room leaderboard watchers join.
	LeaderboardRoom = "leaderboard"
	// LeaderboardUpdateEvent tells subscribers to re-fetch the boards.
	LeaderboardUpdateEvent = "leaderboard-update"

	realtimeSendBufferSize = 16
)

// RealtimeConnectionOptions wraps metadata extracted during the HTTP upgrade.
type RealtimeConnectionOptions struct {
	Room          string
	CorrelationID string
	Context       context.Context
}

// RealtimeService pushes refresh events to websocket subscribers. Events fan
// out across nodes through redis pub/sub and NATS; clients carry no payload
// back, they only listen.
type RealtimeService interface {
	ServeConnection(conn *websocket.Conn, opts RealtimeConnectionOptions)
	Publish(ctx context.Context, room, event string)
	Start(ctx context.Context)
}

type realtimeService struct {
	redis        *redis.Client
	redisChannel string
	nats         *nats.Conn
	natsSubject  string
	logger       zerolog.Logger
	hub          *realtimeHub
	nodeID       string
}

type realtimeHub struct {
	mu    sync.RWMutex
	rooms map[string]map[*realtimeClient]struct{}
	log   zerolog.Logger
}

type realtimeClient struct {
	conn    *websocket.Conn
	send    chan dto.RealtimeEvent
	options RealtimeConnectionOptions
	service *realtimeService
	closed  chan struct{}
	once    sync.Once
}

type realtimeEnvelope struct {
	Source string            `json:"source"`
	Room   string            `json:"room"`
	Event  dto.RealtimeEvent `json:"event"`
}

// NewRealtimeService creates a websocket fan-out service. Both the redis and
// NATS connections may be nil; the hub then serves this node only.
func NewRealtimeService(redisClient *redis.Client, channelBase string, natsConn *nats.Conn, logger zerolog.Logger) RealtimeService {
	hub := &realtimeHub{
		rooms: make(map[string]map[*realtimeClient]struct{}),
		log:   logger.With().Str("component", "realtime_hub").Logger(),
	}

	redisChannel := ""
	natsSubject := ""
	if channelBase != "" {
		redisChannel = channelBase + ":realtime"
		natsSubject = strings.ReplaceAll(channelBase, ":", ".") + ".realtime"
	}

	return &realtimeService{
		redis:        redisClient,
		redisChannel: redisChannel,
		nats:         natsConn,
		natsSubject:  natsSubject,
		logger:       logger.With().Str("component", "realtime_service").Logger(),
		hub:          hub,
		nodeID:       uuid.NewString(),
	}
}

func (s *realtimeService) Start(ctx context.Context) {
	if s.redis != nil && s.redisChannel != "" {
		go s.consumeRedis(ctx)
	}
	if s.nats != nil && s.natsSubject != "" {
		go s.consumeNATS(ctx)
	}
}

func (s *realtimeService) ServeConnection(conn *websocket.Conn, opts RealtimeConnectionOptions) {
	client := &realtimeClient{
		conn:    conn,
		send:    make(chan dto.RealtimeEvent, realtimeSendBufferSize),
		options: opts,
		service: s,
		closed:  make(chan struct{}),
	}

	s.hub.register(client)
	observability.RealtimeConnections().Inc()

	go client.writer()
	client.reader()
}

// Publish delivers the event to local subscribers and relays it to the other
// nodes.
func (s *realtimeService) Publish(ctx context.Context, room, event string) {
	payload := dto.RealtimeEvent{
		Event:     event,
		EmittedAt: time.Now().UTC(),
	}

	s.hub.broadcast(room, payload)
	observability.RealtimeEvents().WithLabelValues(room).Inc()

	envelope := realtimeEnvelope{
		Source: s.nodeID,
		Room:   room,
		Event:  payload,
	}
	raw, err := json.Marshal(envelope)
	if err != nil {
		return
	}

	if s.redis != nil && s.redisChannel != "" {
		if err := s.redis.Publish(ctx, s.redisChannel, raw).Err(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to relay realtime event via redis")
		}
	}

	if s.nats != nil && s.natsSubject != "" {
		if err := s.nats.Publish(s.natsSubject, raw); err != nil {
			s.logger.Warn().Err(err).Msg("failed to relay realtime event via nats")
		}
	}
}

func (s *realtimeService) consumeRedis(ctx context.Context) {
	pubsub := s.redis.Subscribe(ctx, s.redisChannel)
	defer func() {
		_ = pubsub.Close()
	}()
	for {
		msg, err := pubsub.ReceiveMessage(ctx)
		if err != nil {
			if errors.Is(err, context.Canceled) {
				return
			}
			s.logger.Error().Err(err).Msg("realtime redis subscription closed")
			return
		}
		s.handleEnvelope([]byte(msg.Payload))
	}
}

func (s *realtimeService) consumeNATS(ctx context.Context) {
	sub, err := s.nats.QueueSubscribe(s.natsSubject, "openhack-realtime", func(msg *nats.Msg) {
		s.handleEnvelope(msg.Data)
	})
	if err != nil {
		s.logger.Error().Err(err).Msg("failed to subscribe to nats realtime subject")
		return
	}
	go func() {
		<-ctx.Done()
		if err := sub.Drain(); err != nil {
			s.logger.Warn().Err(err).Msg("failed to drain realtime nats subscription")
		}
	}()
}

func (s *realtimeService) handleEnvelope(data []byte) {
	var envelope realtimeEnvelope
	if err := json.Unmarshal(data, &envelope); err != nil {
		s.logger.Warn().Err(err).Msg("invalid realtime event")
		return
	}

	if envelope.Source == s.nodeID {
		return
	}

	observability.RealtimeEvents().WithLabelValues(envelope.Room).Inc()
	s.hub.broadcast(envelope.Room, envelope.Event)
}

func (h *realtimeHub) register(client *realtimeClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room := client.options.Room
	if room == "" {
		room = LeaderboardRoom
	}

	if _, exists := h.rooms[room]; !exists {
		h.rooms[room] = make(map[*realtimeClient]struct{})
	}
	client.options.Room = room
	h.rooms[room][client] = struct{}{}
	h.log.Debug().Str("room", room).Msg("realtime client connected")
}

func (h *realtimeHub) unregister(client *realtimeClient) {
	h.mu.Lock()
	defer h.mu.Unlock()

	room := client.options.Room
	if clients, ok := h.rooms[room]; ok {
		delete(clients, client)
		if len(clients) == 0 {
			delete(h.rooms, room)
		}
	}
	h.log.Debug().Str("room", room).Msg("realtime client disconnected")
}

func (h *realtimeHub) broadcast(room string, event dto.RealtimeEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	clients := h.rooms[room]
	for client := range clients {
		select {
		case client.send <- event:
		default:
			h.log.Warn().Str("room", room).Msg("dropping realtime event for slow client")
		}
	}
}

// reader drains the connection; subscribers send nothing meaningful, but the
// read loop is what notices a departed peer.
func (c *realtimeClient) reader() {
	defer c.close()

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			c.service.logger.Debug().Err(err).Msg("realtime read loop ended")
			return
		}
	}
}

func (c *realtimeClient) writer() {
	defer c.close()

	for {
		select {
		case event, ok := <-c.send:
			if !ok {
				return
			}
			if err := c.conn.WriteJSON(event); err != nil {
				c.service.logger.Debug().Err(err).Msg("realtime write loop terminated")
				return
			}
		case <-time.After(30 * time.Second):
			if err := c.conn.WriteMessage(websocket.PingMessage, []byte("keepalive")); err != nil {
				c.service.logger.Debug().Err(err).Msg("realtime ping failed")
				return
			}
		case <-c.closed:
			return
		}
	}
}

func (c *realtimeClient) close() {
	c.once.Do(func() {
		close(c.closed)
		c.service.hub.unregister(c)
		_ = c.conn.Close()
	})
}
