package mock

import (
	"context"
	"sync"
	"sync/atomic"
)

// MockTranslator is a test double for ai.Translator.
// By default it returns the input unchanged, or the phrase registered with
// WithPhrase for the target language.
type MockTranslator struct {
	// TranslateFunc is called by Translate if set.
	TranslateFunc func(ctx context.Context, text, source, target string) (string, error)

	mu        sync.RWMutex
	phrases   map[string]string
	callCount atomic.Int64
}

// NewMockTranslator creates a mock translator with identity behavior.
func NewMockTranslator() *MockTranslator {
	return &MockTranslator{}
}

// WithPhrase registers the translation of text into target.
func (m *MockTranslator) WithPhrase(text, target, translated string) *MockTranslator {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.phrases == nil {
		m.phrases = make(map[string]string)
	}
	m.phrases[target+"\x00"+text] = translated
	return m
}

// Translate returns the registered phrase or the text unchanged.
func (m *MockTranslator) Translate(ctx context.Context, text, source, target string) (string, error) {
	m.callCount.Add(1)

	if m.TranslateFunc != nil {
		return m.TranslateFunc(ctx, text, source, target)
	}

	m.mu.RLock()
	defer m.mu.RUnlock()
	if translated, ok := m.phrases[target+"\x00"+text]; ok {
		return translated, nil
	}
	return text, nil
}

// CallCount returns the number of times Translate was called.
func (m *MockTranslator) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears the call count, phrases and injected behavior.
func (m *MockTranslator) Reset() {
	m.callCount.Store(0)
	m.TranslateFunc = nil
	m.mu.Lock()
	m.phrases = nil
	m.mu.Unlock()
}
