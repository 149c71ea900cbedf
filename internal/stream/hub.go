package stream

import (
	"context"
	"strings"
	"sync"

	"backend-bandoxanh/internal/logging"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const (
	channelPrefix  = "bandoxanh:"
	channelSuffix  = ":events"
	channelPattern = channelPrefix + "*" + channelSuffix
)

// Hub fans topic payloads out to websocket clients. With Redis configured,
// every payload goes through pub/sub so all API instances deliver it.
type Hub struct {
	redis   *redis.Client
	pubsub  *redis.PubSub
	logger  *zap.Logger
	clients map[string]map[*Client]struct{}
	mu      sync.RWMutex
}

type Client struct {
	Topic string
	Send  chan []byte
}

func NewHub(redisClient *redis.Client, logger *zap.Logger) *Hub {
	h := &Hub{
		redis:   redisClient,
		logger:  logging.OrNop(logger),
		clients: map[string]map[*Client]struct{}{},
	}

	if redisClient != nil {
		ctx := context.Background()
		pubsub := redisClient.PSubscribe(ctx, channelPattern)
		if _, err := pubsub.Receive(ctx); err != nil {
			h.logger.Warn("redis subscribe failed, delivering locally", zap.Error(err))
			_ = pubsub.Close()
			h.redis = nil
		} else {
			h.pubsub = pubsub
			go h.forward(pubsub.Channel())
		}
	}
	return h
}

func (h *Hub) Register(topic string) *Client {
	client := &Client{
		Topic: topic,
		Send:  make(chan []byte, 64),
	}

	h.mu.Lock()
	defer h.mu.Unlock()
	if h.clients[topic] == nil {
		h.clients[topic] = map[*Client]struct{}{}
	}
	h.clients[topic][client] = struct{}{}
	return client
}

func (h *Hub) Unregister(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	topicClients, ok := h.clients[client.Topic]
	if !ok {
		return
	}
	if _, ok := topicClients[client]; !ok {
		return
	}
	delete(topicClients, client)
	if len(topicClients) == 0 {
		delete(h.clients, client.Topic)
	}
	close(client.Send)
}

// Subscribers reports how many clients listen on topic.
func (h *Hub) Subscribers(topic string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients[topic])
}

// Broadcast delivers payload to every client on topic. Slow clients drop
// messages rather than block the sender.
func (h *Hub) Broadcast(topic string, payload []byte) {
	if h.redis != nil {
		err := h.redis.Publish(context.Background(), redisChannel(topic), payload).Err()
		if err == nil {
			return
		}
		h.logger.Warn("redis publish failed", zap.String("topic", topic), zap.Error(err))
	}
	h.deliver(topic, payload)
}

func (h *Hub) Close() error {
	if h.pubsub == nil {
		return nil
	}
	return h.pubsub.Close()
}

func (h *Hub) forward(messages <-chan *redis.Message) {
	for msg := range messages {
		topic := topicFromChannel(msg.Channel)
		if topic == "" {
			continue
		}
		h.deliver(topic, []byte(msg.Payload))
	}
}

func (h *Hub) deliver(topic string, payload []byte) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	for client := range h.clients[topic] {
		select {
		case client.Send <- payload:
		default:
			h.logger.Debug("dropping message for slow client", zap.String("topic", topic))
		}
	}
}

func redisChannel(topic string) string {
	return channelPrefix + topic + channelSuffix
}

// topicFromChannel is the inverse of redisChannel.
func topicFromChannel(ch string) string {
	if len(ch) <= len(channelPrefix)+len(channelSuffix) {
		return ""
	}
	if !strings.HasPrefix(ch, channelPrefix) || !strings.HasSuffix(ch, channelSuffix) {
		return ""
	}
	return ch[len(channelPrefix) : len(ch)-len(channelSuffix)]
}
