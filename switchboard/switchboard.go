// Package switchboard holds named send operations that can be patched and restored
package switchboard

import (
	"context"
	"fmt"
	"sync"

	"github.com/bwmarrin/discordgo"
	"github.com/xackery/replyquote/interceptor"
	"github.com/xackery/replyquote/model"
)

// SendOperation is the name of the outgoing message send operation
const SendOperation = "send"

// Switchboard contains a list of named send operations
type Switchboard struct {
	mu  sync.RWMutex
	ops map[string]interceptor.SendFunc
}

// Patch represents an installed wrapper around a named operation
type Patch struct {
	board    *Switchboard
	name     string
	original interceptor.SendFunc
	once     sync.Once
}

// New creates an empty switchboard
func New() *Switchboard {
	return &Switchboard{
		ops: make(map[string]interceptor.SendFunc),
	}
}

// Register sets the operation for name, replacing any previous one
func (s *Switchboard) Register(name string, fn interceptor.SendFunc) {
	s.mu.Lock()
	s.ops[name] = fn
	s.mu.Unlock()
}

// Operation returns the current operation for name
func (s *Switchboard) Operation(name string) (interceptor.SendFunc, bool) {
	s.mu.RLock()
	fn, ok := s.ops[name]
	s.mu.RUnlock()
	return fn, ok
}

// Send invokes the current operation registered as name
func (s *Switchboard) Send(ctx context.Context, name string, req *model.SendRequest) (*discordgo.Message, error) {
	fn, ok := s.Operation(name)
	if !ok {
		return nil, fmt.Errorf("operation %s not registered", name)
	}
	return fn(ctx, req)
}

// Install replaces the operation for name with wrap(current).
// Detaching the returned patch restores the operation present before install.
func (s *Switchboard) Install(name string, wrap func(next interceptor.SendFunc) interceptor.SendFunc) (*Patch, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	original, ok := s.ops[name]
	if !ok {
		return nil, fmt.Errorf("operation %s not registered", name)
	}
	s.ops[name] = wrap(original)
	return &Patch{
		board:    s,
		name:     name,
		original: original,
	}, nil
}

// Detach restores the operation that was present before the patch was installed.
// Calling it more than once is a no-op.
// If another patch was installed on top of this one afterwards, that patch is dropped as well.
func (p *Patch) Detach() {
	p.once.Do(func() {
		p.board.mu.Lock()
		p.board.ops[p.name] = p.original
		p.board.mu.Unlock()
	})
}
