package node

import (
	"sync"
	"sync/atomic"
)

// State captures the epoch-cycle state of a simnode: AwaitingStart,
// Collecting, Complete, or Shutdown
type State uint32

const (
	//AwaitingStart is the state between epochs, before the supervisor opens
	//the next one.
	AwaitingStart State = iota
	//Collecting is the state of an open epoch with missing peer inputs
	Collecting
	//Complete is the state of an open epoch for which every expected input
	//was received; the result is being produced
	Complete
	//Shutdown is shutdown
	Shutdown
)

// String ...
func (s State) String() string {
	switch s {
	case AwaitingStart:
		return "AwaitingStart"
	case Collecting:
		return "Collecting"
	case Complete:
		return "Complete"
	case Shutdown:
		return "Shutdown"
	default:
		return "Unknown"
	}
}

// WGLIMIT is the maximum number of goroutines that can be launched through
// state.goFunc
const WGLIMIT = 20

type state struct {
	state   State
	wg      sync.WaitGroup
	wgCount int32
}

func (b *state) getState() State {
	stateAddr := (*uint32)(&b.state)
	return State(atomic.LoadUint32(stateAddr))
}

func (b *state) setState(s State) {
	stateAddr := (*uint32)(&b.state)
	atomic.StoreUint32(stateAddr, uint32(s))
}

// Start a goroutine and add it to waitgroup
func (b *state) goFunc(f func()) {
	tempWgCount := atomic.LoadInt32(&b.wgCount)
	if tempWgCount < WGLIMIT {
		b.wg.Add(1)
		atomic.AddInt32(&b.wgCount, 1)
		go func() {
			defer b.wg.Done()
			atomic.AddInt32(&b.wgCount, -1)
			f()
		}()
	}
}

func (b *state) waitRoutines() {
	b.wg.Wait()
}
