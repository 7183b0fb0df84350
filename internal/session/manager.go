package session

import (
	"context"
	"fmt"
	"log"
	"sync"
)

// Manager tracks the current identity and publishes every transition to
// subscribers. Sign-in can only improve the situation: an interactive
// failure falls back to an anonymous identity instead of blocking the user.
type Manager struct {
	provider Provider
	store    Store

	mu      sync.Mutex
	current *Session
	loaded  bool
	subs    []chan *Session
}

func NewManager(p Provider, st Store) *Manager {
	return &Manager{provider: p, store: st}
}

// Current returns the in-memory session without touching the store.
func (m *Manager) Current() *Session {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.current
}

// Subscribe returns a channel receiving every identity transition, nil on
// sign-out. Slow subscribers only ever see the latest state.
func (m *Manager) Subscribe() <-chan *Session {
	ch := make(chan *Session, 1)
	m.mu.Lock()
	m.subs = append(m.subs, ch)
	m.mu.Unlock()
	return ch
}

// SignIn runs the interactive flow and falls back to an anonymous identity
// on any failure. It returns nil only if the anonymous flow itself failed.
func (m *Manager) SignIn(ctx context.Context, email, password string) *Session {
	s, err := m.provider.SignIn(ctx, email, password)
	if err != nil {
		log.Printf("session: interactive sign-in failed, continuing anonymously: %v", err)
		s, err = m.provider.Anonymous(ctx)
		if err != nil {
			log.Printf("session: anonymous sign-in failed: %v", err)
			return nil
		}
	}
	m.set(ctx, s)
	return s
}

// SignOut clears the session everywhere and notifies subscribers.
func (m *Manager) SignOut(ctx context.Context) {
	if err := m.store.Clear(ctx); err != nil {
		log.Printf("session: clearing stored session: %v", err)
	}
	m.mu.Lock()
	m.current = nil
	m.loaded = true
	m.mu.Unlock()
	m.notify(nil)
}

// Ensure returns the current session, restoring a persisted one if present
// and creating an anonymous identity when there is none at all.
func (m *Manager) Ensure(ctx context.Context) (*Session, error) {
	m.mu.Lock()
	if m.current != nil {
		s := m.current
		m.mu.Unlock()
		return s, nil
	}
	needLoad := !m.loaded
	m.mu.Unlock()

	if needLoad {
		s, err := m.store.Load(ctx)
		if err != nil {
			log.Printf("session: loading stored session: %v", err)
		}
		m.mu.Lock()
		m.loaded = true
		if s != nil && m.current == nil {
			m.current = s
		}
		cur := m.current
		m.mu.Unlock()
		if cur != nil {
			m.notify(cur)
			return cur, nil
		}
	}

	s, err := m.provider.Anonymous(ctx)
	if err != nil {
		return nil, fmt.Errorf("anonymous sign-in: %w", err)
	}
	m.set(ctx, s)
	return s, nil
}

func (m *Manager) set(ctx context.Context, s *Session) {
	if err := m.store.Save(ctx, s); err != nil {
		log.Printf("session: persisting session: %v", err)
	}
	m.mu.Lock()
	m.current = s
	m.loaded = true
	m.mu.Unlock()
	m.notify(s)
}

func (m *Manager) notify(s *Session) {
	m.mu.Lock()
	subs := make([]chan *Session, len(m.subs))
	copy(subs, m.subs)
	m.mu.Unlock()
	for _, ch := range subs {
		// latest state wins; drop a stale pending value if needed
		select {
		case ch <- s:
		default:
			select {
			case <-ch:
			default:
			}
			select {
			case ch <- s:
			default:
			}
		}
	}
}
