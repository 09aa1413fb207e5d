// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"sync"

	"github.com/ethereum/go-ethereum/event"

	"github.com/vechain/streams/eventdb"
)

// hub fans committed events out to websocket listeners.
type hub struct {
	listeners map[chan []*eventdb.Event]struct{}
	mu        sync.RWMutex
}

func newHub() *hub {
	return &hub{listeners: make(map[chan []*eventdb.Event]struct{})}
}

func (h *hub) subscribe(ch chan []*eventdb.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	h.listeners[ch] = struct{}{}
	metricActiveListeners().Set(int64(len(h.listeners)))
}

func (h *hub) unsubscribe(ch chan []*eventdb.Event) {
	h.mu.Lock()
	defer h.mu.Unlock()

	delete(h.listeners, ch)
	metricActiveListeners().Set(int64(len(h.listeners)))
}

func (h *hub) dispatchLoop(sub event.Subscription, in <-chan []*eventdb.Event, done <-chan struct{}) {
	defer sub.Unsubscribe()

	for {
		select {
		case evs := <-in:
			h.mu.RLock()
			for lsn := range h.listeners {
				select {
				case lsn <- evs:
				default: // a listener that fell behind misses this batch
				}
			}
			h.mu.RUnlock()
		case <-sub.Err():
			return
		case <-done:
			return
		}
	}
}
