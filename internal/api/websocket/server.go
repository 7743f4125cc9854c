package websocket

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/gorilla/websocket"
	"github.com/redis/go-redis/v9"

	"github.com/fortuna/augur/internal/cache"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // Allow all origins in development (TODO: restrict in production)
	},
}

// Streams relayed to connected clients
var relayed = []string{
	"features.dataset.basketball_nba",
	"predictions.moneyline.basketball_nba",
}

// Server pushes dataset and prediction events to WebSocket clients. Events
// arrive over the same Redis streams the rest of fortuna consumes, so
// browser dashboards see exactly what downstream services see.
type Server struct {
	port   string
	server *http.Server
	hub    *Hub
	cache  *cache.RedisCache
}

// NewServer creates a new WebSocket server
func NewServer(c *cache.RedisCache) *Server {
	return &Server{
		hub:   NewHub(),
		cache: c,
	}
}

// Start starts the WebSocket server and the stream relay
func (s *Server) Start(ctx context.Context, port string) error {
	s.port = port

	go s.hub.Run()
	go s.relayStreams(ctx)

	mux := http.NewServeMux()
	mux.HandleFunc("/ws/predictions", s.handlePredictions)
	mux.HandleFunc("/ws/health", s.handleHealth)

	s.server = &http.Server{
		Addr:    fmt.Sprintf(":%s", port),
		Handler: mux,
	}

	log.Printf("WebSocket server listening on :%s", port)
	return s.server.ListenAndServe()
}

// handlePredictions handles WebSocket connections for prediction updates
func (s *Server) handlePredictions(w http.ResponseWriter, r *http.Request) {
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		log.Printf("Failed to upgrade connection: %v", err)
		return
	}

	client := &Client{
		hub:  s.hub,
		conn: conn,
		send: make(chan []byte, 256),
	}

	client.hub.register <- client

	go client.writePump()
	go client.readPump()
}

// handleHealth returns WebSocket server health status
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	fmt.Fprintf(w, `{"status": "healthy", "clients": %d}`, s.hub.ClientCount())
}

// relayStreams tails the Redis streams and fans entries out to clients
func (s *Server) relayStreams(ctx context.Context) {
	// Start at the stream tails: clients only care about new events
	lastIDs := make([]string, len(relayed))
	for i := range lastIDs {
		lastIDs[i] = "$"
	}

	for {
		if ctx.Err() != nil {
			return
		}

		res, err := s.cache.Client().XRead(ctx, &redis.XReadArgs{
			Streams: append(append([]string{}, relayed...), lastIDs...),
			Block:   5 * time.Second,
		}).Result()
		if err != nil {
			if err == redis.Nil || ctx.Err() != nil {
				continue
			}
			log.Printf("⚠️  Stream read error: %v", err)
			select {
			case <-ctx.Done():
				return
			case <-time.After(2 * time.Second):
			}
			continue
		}

		for _, stream := range res {
			for _, msg := range stream.Messages {
				if data, ok := msg.Values["data"].(string); ok {
					s.hub.Broadcast([]byte(data))
				}
			}
			// Resume after the newest entry we saw
			for i, name := range relayed {
				if name == stream.Stream && len(stream.Messages) > 0 {
					lastIDs[i] = stream.Messages[len(stream.Messages)-1].ID
				}
			}
		}
	}
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.server != nil {
		return s.server.Shutdown(ctx)
	}
	return nil
}
