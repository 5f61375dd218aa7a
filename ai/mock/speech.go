package mock

import (
	"context"
	"io"
	"sync/atomic"
)

// MockSynthesizer is a test double for ai.Synthesizer.
// By default it returns "mp3:<language>:<text>" as the audio bytes.
type MockSynthesizer struct {
	// SynthesizeFunc is called by Synthesize if set.
	SynthesizeFunc func(ctx context.Context, text, language string) ([]byte, error)

	callCount atomic.Int64
}

// NewMockSynthesizer creates a mock synthesizer with default behavior.
func NewMockSynthesizer() *MockSynthesizer {
	return &MockSynthesizer{}
}

// Synthesize returns fake audio for text.
func (m *MockSynthesizer) Synthesize(ctx context.Context, text, language string) ([]byte, error) {
	m.callCount.Add(1)
	if m.SynthesizeFunc != nil {
		return m.SynthesizeFunc(ctx, text, language)
	}
	return []byte("mp3:" + language + ":" + text), nil
}

// CallCount returns the number of times Synthesize was called.
func (m *MockSynthesizer) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears the call count and injected behavior.
func (m *MockSynthesizer) Reset() {
	m.callCount.Store(0)
	m.SynthesizeFunc = nil
}

// MockTranscriber is a test double for ai.Transcriber.
// By default it returns the audio bytes as the transcript.
type MockTranscriber struct {
	// TranscribeFunc is called by Transcribe if set.
	TranscribeFunc func(ctx context.Context, audio io.Reader, filename, language string) (string, error)

	callCount atomic.Int64
}

// NewMockTranscriber creates a mock transcriber with default behavior.
func NewMockTranscriber() *MockTranscriber {
	return &MockTranscriber{}
}

// Transcribe reads audio and returns it as text.
func (m *MockTranscriber) Transcribe(ctx context.Context, audio io.Reader, filename, language string) (string, error) {
	m.callCount.Add(1)
	if m.TranscribeFunc != nil {
		return m.TranscribeFunc(ctx, audio, filename, language)
	}
	data, err := io.ReadAll(audio)
	if err != nil {
		return "", err
	}
	return string(data), nil
}

// CallCount returns the number of times Transcribe was called.
func (m *MockTranscriber) CallCount() int {
	return int(m.callCount.Load())
}

// Reset clears the call count and injected behavior.
func (m *MockTranscriber) Reset() {
	m.callCount.Store(0)
	m.TranscribeFunc = nil
}
