// Copyright 2026 Blink Labs Software
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package viewapi

import (
	"errors"
	"net/http"
	"sync"
	"time"

	"github.com/blinklabs-io/sidewatch/activation"
	"github.com/blinklabs-io/sidewatch/event"
	"github.com/gorilla/websocket"
)

const (
	SnapshotMessageType = "activation.snapshot"

	defaultStreamQueueSize = 64
	streamWriteTimeout     = 10 * time.Second
	streamPongTimeout      = 60 * time.Second
	streamPingInterval     = streamPongTimeout * 9 / 10
)

var (
	errStreamClosed = errors.New("stream closed")
	errStreamFull   = errors.New("stream queue full")
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 4096,
}

// streamSubscriber is an event bus Subscriber backed by a websocket
// client. Deliver never blocks: a client that falls behind is dropped.
type streamSubscriber struct {
	conn      *websocket.Conn
	queue     chan event.Event
	done      chan struct{}
	full      chan struct{}
	closeOnce sync.Once
	fullOnce  sync.Once
}

func newStreamSubscriber(
	conn *websocket.Conn,
	queueSize int,
) *streamSubscriber {
	return &streamSubscriber{
		conn:  conn,
		queue: make(chan event.Event, queueSize),
		done:  make(chan struct{}),
		full:  make(chan struct{}),
	}
}

func (s *streamSubscriber) Deliver(evt event.Event) error {
	select {
	case <-s.done:
		return errStreamClosed
	default:
	}
	select {
	case s.queue <- evt:
		return nil
	default:
		s.fullOnce.Do(func() { close(s.full) })
		return errStreamFull
	}
}

func (s *streamSubscriber) Close() {
	s.closeOnce.Do(func() {
		close(s.done)
	})
}

func (s *streamSubscriber) write(msg StreamMessage) error {
	if err := s.conn.SetWriteDeadline(
		time.Now().Add(streamWriteTimeout),
	); err != nil {
		return err
	}
	return s.conn.WriteJSON(msg)
}

// writeLoop is the only writer on the connection once the snapshot is sent
func (s *streamSubscriber) writeLoop() (dropped bool) {
	ticker := time.NewTicker(streamPingInterval)
	defer ticker.Stop()
	for {
		select {
		case evt := <-s.queue:
			if err := s.write(StreamMessage{
				Type:      string(evt.Type),
				Timestamp: evt.Timestamp,
				Data:      evt.Data,
			}); err != nil {
				return false
			}
		case <-ticker.C:
			if err := s.conn.WriteControl(
				websocket.PingMessage,
				nil,
				time.Now().Add(streamWriteTimeout),
			); err != nil {
				return false
			}
		case <-s.full:
			s.closeWithReason(websocket.ClosePolicyViolation, "client too slow")
			return true
		case <-s.done:
			// The bus closes a subscriber whose queue overflowed
			select {
			case <-s.full:
				s.closeWithReason(websocket.ClosePolicyViolation, "client too slow")
				return true
			default:
			}
			s.closeWithReason(websocket.CloseGoingAway, "server shutting down")
			return false
		}
	}
}

func (s *streamSubscriber) closeWithReason(code int, reason string) {
	//nolint:errcheck
	s.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(code, reason),
		time.Now().Add(streamWriteTimeout),
	)
}

// readLoop drains client frames so pongs and close frames are handled. It
// closes the subscriber when the client goes away.
func (s *streamSubscriber) readLoop() {
	defer s.Close()
	//nolint:errcheck
	s.conn.SetReadDeadline(time.Now().Add(streamPongTimeout))
	s.conn.SetPongHandler(func(string) error {
		return s.conn.SetReadDeadline(time.Now().Add(streamPongTimeout))
	})
	for {
		if _, _, err := s.conn.ReadMessage(); err != nil {
			return
		}
	}
}

// handleStream upgrades to a websocket, sends the current table and then
// forwards every activation event as it is published
func (s *Server) handleStream(w http.ResponseWriter, r *http.Request) {
	if s.config.EventBus == nil {
		writeError(w, http.StatusServiceUnavailable, "event stream not configured")
		return
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		// Upgrade has already written the error response
		s.logger.Debug("websocket upgrade failed", "error", err)
		return
	}
	defer conn.Close()
	sub := newStreamSubscriber(conn, s.config.StreamQueueSize)
	if !s.addStream(sub) {
		sub.closeWithReason(websocket.CloseGoingAway, "server shutting down")
		return
	}
	defer s.removeStream(sub)

	// Register before taking the snapshot so no change is missed
	subIds := make(map[event.EventType]event.EventSubscriberId)
	for _, evtType := range activation.EventTypes {
		subIds[evtType] = s.config.EventBus.RegisterSubscriber(evtType, sub)
	}
	defer func() {
		for evtType, subId := range subIds {
			s.config.EventBus.Unsubscribe(evtType, subId)
		}
	}()

	th := s.view.Thresholds()
	rows := s.view.Rows()
	snapshot := TableResponse{
		Columns:    activation.Headers(),
		Rows:       make([]RowResponse, 0, len(rows)),
		Thresholds: th,
	}
	for i, rec := range rows {
		snapshot.Rows = append(snapshot.Rows, newRowResponse(i, rec, th))
	}
	if err := sub.write(StreamMessage{
		Type:      SnapshotMessageType,
		Timestamp: time.Now(),
		Data:      snapshot,
	}); err != nil {
		s.logger.Debug("failed to send stream snapshot", "error", err)
		return
	}
	s.logger.Debug("stream client connected", "remote", r.RemoteAddr)

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		sub.readLoop()
	}()
	if dropped := sub.writeLoop(); dropped {
		s.metrics.streamDropped.Inc()
		s.logger.Warn("dropped slow stream client", "remote", r.RemoteAddr)
	}
	sub.Close()
	// Closing the connection unblocks the reader
	conn.Close()
	wg.Wait()
	s.logger.Debug("stream client disconnected", "remote", r.RemoteAddr)
}
