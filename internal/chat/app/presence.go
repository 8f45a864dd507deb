package app

import (
	"sort"
	"sync"
)

// PresenceRegistry userID -> 目前的連線 ID, 同一使用者只保留最後一條連線
type PresenceRegistry struct {
	mu    sync.RWMutex
	conns map[string]string
}

// NewPresenceRegistry create an empty registry
func NewPresenceRegistry() *PresenceRegistry {
	return &PresenceRegistry{conns: make(map[string]string)}
}

// Register 記錄或覆蓋使用者的連線
func (p *PresenceRegistry) Register(userID, connID string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.conns[userID] = connID
}

// Unregister 只在 connID 仍是目前連線時移除, 回傳是否真的移除
func (p *PresenceRegistry) Unregister(userID, connID string) bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	if cur, ok := p.conns[userID]; !ok || cur != connID {
		return false
	}
	delete(p.conns, userID)
	return true
}

// Lookup 取得使用者目前的連線
func (p *PresenceRegistry) Lookup(userID string) (string, bool) {
	p.mu.RLock()
	defer p.mu.RUnlock()
	connID, ok := p.conns[userID]
	return connID, ok
}

// IsOnline user has a live connection
func (p *PresenceRegistry) IsOnline(userID string) bool {
	_, ok := p.Lookup(userID)
	return ok
}

// OnlineUsers sorted ids of every registered user
func (p *PresenceRegistry) OnlineUsers() []string {
	p.mu.RLock()
	ids := make([]string, 0, len(p.conns))
	for id := range p.conns {
		ids = append(ids, id)
	}
	p.mu.RUnlock()

	sort.Strings(ids)
	return ids
}

// Clear drop every entry
func (p *PresenceRegistry) Clear() {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.conns = make(map[string]string)
}
