// Package mock provides test doubles for AI services.
//
// The mocks allow testing without external AI service dependencies.
// Each mock supports custom behavior injection via exported function fields
// and counts calls atomically so it can be shared by concurrent workers.
//
// # Usage
//
//	mockEmbedder := mock.NewMockEmbedder().
//	    WithVector("Farmers get loan", []float32{1, 0}).
//	    WithVector("loan", []float32{1, 0})
//
//	mockEmbedder.EmbedTextsFunc = func(ctx context.Context, texts []string) ([][]float32, error) {
//	    return nil, errors.New("backend down")
//	}
//
//	// Check call counts
//	count := mockEmbedder.CallCount()
//
// # Default Behavior
//
//   - MockEmbedder: Returns deterministic unit vectors based on text hash
//   - MockTranslator: Returns registered phrases, otherwise the input unchanged
//   - MockSynthesizer: Returns "mp3:<language>:<text>" as audio bytes
//   - MockTranscriber: Returns the audio bytes as the transcript
//   - MockProvider: Aggregates all of the above
package mock
