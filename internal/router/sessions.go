package router

import "sync"

// pendingItem is one batch-recorded spending awaiting a category.
type pendingItem struct {
	Text string // the original input line, shown back in prompts
	Row  int64  // ledger row to update when a category arrives
}

// sessions keeps the pending categorization queue per chat, so two chats
// categorizing at the same time never interleave.
type sessions struct {
	mu     sync.Mutex
	byChat map[int64][]pendingItem
}

func newSessions() *sessions {
	return &sessions{byChat: make(map[int64][]pendingItem)}
}

func (s *sessions) set(chatID int64, queue []pendingItem) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(queue) == 0 {
		delete(s.byChat, chatID)
		return
	}
	s.byChat[chatID] = queue
}

func (s *sessions) clear(chatID int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.byChat, chatID)
}

func (s *sessions) peek(chatID int64) (pendingItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.byChat[chatID]
	if len(q) == 0 {
		return pendingItem{}, false
	}
	return q[0], true
}

// pop removes the head and returns the new head, if any.
func (s *sessions) pop(chatID int64) (pendingItem, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	q := s.byChat[chatID]
	if len(q) == 0 {
		return pendingItem{}, false
	}
	q = q[1:]
	if len(q) == 0 {
		delete(s.byChat, chatID)
		return pendingItem{}, false
	}
	s.byChat[chatID] = q
	return q[0], true
}

func (s *sessions) size(chatID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byChat[chatID])
}
