package server

import (
	"encoding/json"
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/zeusync/behave/internal/core/npc"
	"github.com/zeusync/behave/internal/core/observability/log"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
}

type client struct {
	conn   *websocket.Conn
	agent  string
	send   chan []byte
	done   chan struct{}
	closer sync.Once
}

func (c *client) close() {
	c.closer.Do(func() {
		close(c.done)
		_ = c.conn.Close()
	})
}

func filterReport(r npc.TickReport, agent string) npc.TickReport {
	out := r
	out.Agents = nil
	for _, a := range r.Agents {
		if a.Name == agent || a.ID == agent {
			out.Agents = append(out.Agents, a)
		}
	}
	return out
}

func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	if int(s.clientCount.Load()) >= s.config.MaxClients {
		http.Error(w, "too many clients", http.StatusServiceUnavailable)
		return
	}

	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.logger.Warn("Websocket upgrade failed", log.Error(err))
		return
	}

	c := &client{
		conn:  conn,
		agent: r.URL.Query().Get("agent"),
		send:  make(chan []byte, s.config.SendBuffer),
		done:  make(chan struct{}),
	}
	clientLogger := s.logger.With(log.String("remote_addr", conn.RemoteAddr().String()))

	s.clientsMu.Lock()
	s.clients[c] = struct{}{}
	s.clientsMu.Unlock()
	s.clientCount.Add(1)
	clientLogger.Info("Client connected", log.Int64("total_clients", s.clientCount.Load()))

	defer func() {
		s.clientsMu.Lock()
		delete(s.clients, c)
		s.clientsMu.Unlock()
		s.clientCount.Add(-1)
		c.close()
		clientLogger.Info("Client disconnected", log.Int64("total_clients", s.clientCount.Load()))
	}()

	if latest, ok := s.Latest(); ok {
		s.enqueue(c, latest, nil)
	}

	go s.writePump(c, clientLogger)

	// the stream is one-way; reading only notices the peer going away
	for {
		if _, _, err := conn.ReadMessage(); err != nil {
			return
		}
	}
}

func (s *Server) writePump(c *client, clientLogger log.Log) {
	ping := time.NewTicker(s.config.PingInterval)
	defer ping.Stop()

	for {
		select {
		case msg := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(s.config.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
				clientLogger.Debug("Write failed", log.Error(err))
				c.close()
				return
			}
		case <-ping.C:
			deadline := time.Now().Add(s.config.WriteTimeout)
			if err := c.conn.WriteControl(websocket.PingMessage, nil, deadline); err != nil {
				c.close()
				return
			}
		case <-c.done:
			return
		}
	}
}

func (s *Server) broadcast(r npc.TickReport) {
	full, err := json.Marshal(r)
	if err != nil {
		s.logger.Error("Failed to encode tick report", log.Error(err))
		return
	}

	s.clientsMu.Lock()
	defer s.clientsMu.Unlock()
	for c := range s.clients {
		s.enqueue(c, r, full)
	}
}

// enqueue never blocks: a client that cannot keep up misses reports.
func (s *Server) enqueue(c *client, r npc.TickReport, full []byte) {
	msg := full
	if c.agent != "" || msg == nil {
		if c.agent != "" {
			r = filterReport(r, c.agent)
		}
		b, err := json.Marshal(r)
		if err != nil {
			s.logger.Error("Failed to encode tick report", log.Error(err))
			return
		}
		msg = b
	}

	select {
	case c.send <- msg:
	case <-c.done:
	default:
		s.logger.Debug("Client lagging, report dropped", log.Uint64("tick", r.Tick))
	}
}
