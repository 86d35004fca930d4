package policy

import (
	"context"
	"strings"
	"sync"

	"github.com/iamwavecut/warden/internal/db"
)

type stubStore struct {
	mu          sync.Mutex
	settings    map[int64]db.ChatSettings
	stickers    map[int64]map[string]bool
	words       map[int64][]db.CensoredWord
	settingsErr error
	stickerErr  error
	wordsErr    error
}

func newStubStore() *stubStore {
	return &stubStore{
		settings: map[int64]db.ChatSettings{},
		stickers: map[int64]map[string]bool{},
		words:    map[int64][]db.CensoredWord{},
	}
}

func (s *stubStore) GetChatSettings(_ context.Context, chatID int64) (*db.ChatSettings, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.settingsErr != nil {
		return nil, s.settingsErr
	}
	if v, ok := s.settings[chatID]; ok {
		return &v, nil
	}
	return db.DefaultSettings(chatID), nil
}

func (s *stubStore) IsStickerSetBlocked(_ context.Context, chatID int64, setID string) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stickerErr != nil {
		return false, s.stickerErr
	}
	return s.stickers[chatID][strings.ToLower(setID)], nil
}

func (s *stubStore) ListCensoredWords(_ context.Context, chatID int64) ([]db.CensoredWord, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.wordsErr != nil {
		return nil, s.wordsErr
	}
	return s.words[chatID], nil
}

func (s *stubStore) block(chatID int64, setID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.stickers[chatID] == nil {
		s.stickers[chatID] = map[string]bool{}
	}
	s.stickers[chatID][setID] = true
}

func (s *stubStore) unblock(chatID int64, setID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.stickers[chatID], setID)
}

func (s *stubStore) censor(chatID int64, word string, mode db.MatchMode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.words[chatID] = append(s.words[chatID], db.CensoredWord{ChatID: chatID, Word: word, MatchMode: mode})
}
