// Copyright (c) 2025 The VeChainThor developers

// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package co holds small concurrency helpers.
package co

import (
	"sync"
)

// Goes runs goroutines and manages their life-cycle. The zero value is ready to use.
type Goes struct {
	wg      sync.WaitGroup
	mu      sync.Mutex
	quit    chan struct{}
	stopped bool
}

// Go run f in go routine.
func (g *Goes) Go(f func()) {
	g.wg.Add(1)
	go func() {
		defer g.wg.Done()
		f()
	}()
}

// Wait wait for all go routines started by 'Go' done.
func (g *Goes) Wait() {
	g.wg.Wait()
}

func (g *Goes) quitLocked() chan struct{} {
	if g.quit == nil {
		g.quit = make(chan struct{})
	}
	return g.quit
}

// Quit returns a channel closed by Stop.
func (g *Goes) Quit() <-chan struct{} {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.quitLocked()
}

// Stop closes the Quit channel and waits for the go routines. Later calls only wait.
func (g *Goes) Stop() {
	g.mu.Lock()
	quit := g.quitLocked()
	if !g.stopped {
		g.stopped = true
		close(quit)
	}
	g.mu.Unlock()

	g.wg.Wait()
}
