// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"net/http"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/event"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/pborman/uuid"
	"github.com/pkg/errors"

	"github.com/vechain/streams/api/events"
	"github.com/vechain/streams/api/restutil"
	"github.com/vechain/streams/co"
	"github.com/vechain/streams/eventdb"
	"github.com/vechain/streams/log"
	"github.com/vechain/streams/thor"
)

var logger = log.WithContext("pkg", "subscriptions")

const (
	writeWait  = 10 * time.Second
	pongWait   = 60 * time.Second
	pingPeriod = pongWait * 7 / 10
	// listenerBacklog is the number of commits buffered per connection.
	listenerBacklog = 256
)

// Source feeds the events of committed calls.
type Source interface {
	SubscribeEvents(ch chan<- []*eventdb.Event) event.Subscription
}

type Subscriptions struct {
	upgrader *websocket.Upgrader
	hub      *hub
	goes     co.Goes
}

// New starts dispatching the events of src. Close must be called to release it.
func New(src Source, allowedOrigins []string) *Subscriptions {
	s := &Subscriptions{
		upgrader: &websocket.Upgrader{
			EnableCompression: true,
			CheckOrigin: func(r *http.Request) bool {
				origin := r.Header.Get("Origin")
				if origin == "" {
					return true
				}
				for _, allowed := range allowedOrigins {
					if allowed == "*" || strings.EqualFold(allowed, origin) {
						return true
					}
				}
				return false
			},
		},
		hub: newHub(),
	}

	in := make(chan []*eventdb.Event, 16)
	sub := src.SubscribeEvents(in)
	s.goes.Go(func() {
		s.hub.dispatchLoop(sub, in, s.goes.Quit())
	})
	return s
}

// criteria selects events by emitter, kind and indexed addresses. Unset fields match anything.
type criteria struct {
	address  *thor.Address
	kind     string
	account  *thor.Address
	rewarded *thor.Address
	reward   *thor.Address
}

func parseCriteria(req *http.Request) (*criteria, error) {
	query := req.URL.Query()
	c := &criteria{kind: query.Get("kind")}
	for name, dst := range map[string]**thor.Address{
		"address":  &c.address,
		"account":  &c.account,
		"rewarded": &c.rewarded,
		"reward":   &c.reward,
	} {
		if v := query.Get(name); v != "" {
			addr, err := thor.ParseAddress(v)
			if err != nil {
				return nil, errors.WithMessage(err, name)
			}
			*dst = addr
		}
	}
	return c, nil
}

func matchAddress(want, got *thor.Address) bool {
	return want == nil || (got != nil && *got == *want)
}

func (c *criteria) match(ev *eventdb.Event) bool {
	if c.address != nil && *c.address != ev.Address {
		return false
	}
	if c.kind != "" && c.kind != ev.Kind {
		return false
	}
	return matchAddress(c.account, ev.Account) &&
		matchAddress(c.rewarded, ev.Rewarded) &&
		matchAddress(c.reward, ev.Reward)
}

func (s *Subscriptions) handleSubscribeEvents(w http.ResponseWriter, req *http.Request) error {
	filter, err := parseCriteria(req)
	if err != nil {
		return restutil.BadRequest(err)
	}

	// listen before the handshake completes so nothing committed after it is missed
	ch := make(chan []*eventdb.Event, listenerBacklog)
	s.hub.subscribe(ch)
	defer s.hub.unsubscribe(ch)

	conn, err := s.upgrader.Upgrade(w, req, nil)
	if err != nil {
		// the upgrader has already answered the request
		logger.Debug("upgrade failed", "err", err)
		return nil
	}

	id := uuid.New()
	logger.Debug("subscription opened", "id", id, "remote", req.RemoteAddr)
	err = s.pipe(conn, ch, filter)
	logger.Debug("subscription closed", "id", id, "err", err)
	return nil
}

// pipe writes matching events to conn until the peer leaves or the service closes.
func (s *Subscriptions) pipe(conn *websocket.Conn, ch <-chan []*eventdb.Event, filter *criteria) error {
	var goes co.Goes
	defer func() {
		conn.Close()
		goes.Wait()
	}()

	closed := make(chan struct{})
	goes.Go(func() {
		defer close(closed)
		conn.SetReadDeadline(time.Now().Add(pongWait))
		conn.SetPongHandler(func(string) error {
			return conn.SetReadDeadline(time.Now().Add(pongWait))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	})

	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	quit := s.goes.Quit()
	for {
		select {
		case <-quit:
			return conn.WriteControl(websocket.CloseMessage,
				websocket.FormatCloseMessage(websocket.CloseGoingAway, ""),
				time.Now().Add(writeWait))
		case <-closed:
			return nil
		case evs := <-ch:
			for _, ev := range evs {
				if !filter.match(ev) {
					continue
				}
				conn.SetWriteDeadline(time.Now().Add(writeWait))
				if err := conn.WriteJSON(events.ConvertEvent(ev)); err != nil {
					return err
				}
			}
		case <-ticker.C:
			if err := conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(writeWait)); err != nil {
				return err
			}
		}
	}
}

// Close stops dispatching and tells open connections to go away.
func (s *Subscriptions) Close() {
	s.goes.Stop()
}

func (s *Subscriptions) Mount(root *mux.Router, pathPrefix string) {
	sub := root.PathPrefix(pathPrefix).Subrouter()

	sub.Path("/events").
		Methods(http.MethodGet).
		Name("WS /subscriptions/events").
		HandlerFunc(restutil.WrapHandlerFunc(s.handleSubscribeEvents))
}
