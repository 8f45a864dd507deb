package app

import "sync"

// ActiveChatTracker viewerID -> 正在看的對話對象
// 沒有過期機制, 離線時由 hub 移除
type ActiveChatTracker struct {
	mu    sync.RWMutex
	views map[string]string
}

// NewActiveChatTracker create an empty tracker
func NewActiveChatTracker() *ActiveChatTracker {
	return &ActiveChatTracker{views: make(map[string]string)}
}

// Open viewer 開始看與 peer 的對話
func (t *ActiveChatTracker) Open(viewerID, peerID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.views[viewerID] = peerID
}

// Close 只在目前記錄仍是 peer 時移除
func (t *ActiveChatTracker) Close(viewerID, peerID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.views[viewerID] == peerID {
		delete(t.views, viewerID)
	}
}

// IsViewing viewer is looking at the conversation with peer
func (t *ActiveChatTracker) IsViewing(viewerID, peerID string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	cur, ok := t.views[viewerID]
	return ok && cur == peerID
}

// Remove drop whatever viewer had open
func (t *ActiveChatTracker) Remove(viewerID string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	delete(t.views, viewerID)
}

// Clear drop every entry
func (t *ActiveChatTracker) Clear() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.views = make(map[string]string)
}
