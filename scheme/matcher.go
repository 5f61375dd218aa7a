// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package scheme

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/agrivoice/ai"
	"github.com/poiesic/agrivoice/core"
	"github.com/poiesic/agrivoice/storage"
)

const (
	// DefaultBatchSize is the number of scheme contexts sent per embedding call.
	DefaultBatchSize = 32

	// DefaultRetryDelay is the wait before the first retry of a failed batch.
	DefaultRetryDelay = 500 * time.Millisecond
)

// Matcher loads scheme corpora and answers questions against them.
// A Matcher is safe for concurrent use once constructed.
type Matcher struct {
	embedder    ai.Embedder
	translator  ai.Translator
	cache       storage.EmbeddingCache
	pool        *ants.Pool
	batchSize   int
	maxAttempts int
	retryDelay  time.Duration
	progress    func(done int)
	logger      *slog.Logger
}

// Option configures a Matcher.
type Option func(*Matcher) error

// WithPoolSize sets the number of concurrent embedding batches during Load.
// Default is runtime.NumCPU() / 2, with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(m *Matcher) error {
		if size < 1 {
			size = 1
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return err
		}
		if m.pool != nil {
			m.pool.Release()
		}
		m.pool = pool
		return nil
	}
}

// WithBatchSize sets the number of texts per embedding call during Load.
func WithBatchSize(size int) Option {
	return func(m *Matcher) error {
		if size < 1 {
			size = 1
		}
		m.batchSize = size
		return nil
	}
}

// WithRetry retries each failed embedding batch up to maxAttempts times in
// total, doubling the delay between attempts. Default is a single attempt.
func WithRetry(maxAttempts int, baseDelay time.Duration) Option {
	return func(m *Matcher) error {
		if maxAttempts < 1 {
			return ErrInvalidMaxAttempts
		}
		m.maxAttempts = maxAttempts
		m.retryDelay = baseDelay
		return nil
	}
}

// WithCache reuses vectors from cache during Load and stores new ones.
func WithCache(cache storage.EmbeddingCache) Option {
	return func(m *Matcher) error {
		m.cache = cache
		return nil
	}
}

// WithLoadProgress registers fn to be told how many records each Load step
// completed: once for the cache hits, then once per embedded batch. fn may be
// called from several goroutines at once.
func WithLoadProgress(fn func(done int)) Option {
	return func(m *Matcher) error {
		m.progress = fn
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(m *Matcher) error {
		if logger == nil {
			logger = slog.Default()
		}
		m.logger = logger.With("component", "scheme-matcher")
		return nil
	}
}

// NewMatcher creates a matcher that embeds with the provider's embedder and
// translates questions with its translator. A provider without a translator
// embeds questions as given.
func NewMatcher(provider ai.AIProvider, opts ...Option) (*Matcher, error) {
	if provider == nil {
		return nil, ErrAIProviderRequired
	}
	embedder := provider.Embedder()
	if embedder == nil {
		return nil, ErrEmbedderRequired
	}

	poolSize := runtime.NumCPU() / 2
	if poolSize < 1 {
		poolSize = 1
	}
	pool, err := ants.NewPool(poolSize)
	if err != nil {
		return nil, err
	}

	m := &Matcher{
		embedder:    embedder,
		translator:  provider.Translator(),
		pool:        pool,
		batchSize:   DefaultBatchSize,
		maxAttempts: 1,
		retryDelay:  DefaultRetryDelay,
		logger:      slog.Default().With("component", "scheme-matcher"),
	}

	for _, opt := range opts {
		if optErr := opt(m); optErr != nil {
			m.Release()
			return nil, optErr
		}
	}

	return m, nil
}

// Release releases the worker pool.
func (m *Matcher) Release() {
	if m.pool != nil {
		m.pool.Release()
	}
}

// Model returns the embedding model used for corpora and questions.
func (m *Matcher) Model() string {
	return m.embedder.Model()
}

// Load validates rows, builds their contexts and embeds them into an
// immutable corpus. Every failure is reported as core.ErrDataLoad.
func (m *Matcher) Load(ctx context.Context, rows []core.SchemeRow) (*core.Corpus, error) {
	if len(rows) == 0 {
		return nil, fmt.Errorf("%w: no scheme rows", core.ErrDataLoad)
	}

	records := make([]core.SchemeRecord, len(rows))
	texts := make([]string, len(rows))
	for i, row := range rows {
		// Blank names or descriptions fail the load instead of being coerced to text.
		if err := core.ValidateSchemeRow(row); err != nil {
			return nil, fmt.Errorf("%w: row %d: %w", core.ErrDataLoad, i+1, err)
		}
		records[i] = core.NewSchemeRecord(row)
		texts[i] = records[i].Context
	}

	model := m.embedder.Model()
	vectors := m.cachedVectors(ctx, model, texts)

	missing := make([]int, 0, len(texts))
	for i, v := range vectors {
		if v == nil {
			missing = append(missing, i)
		}
	}
	m.logger.Info("loading scheme corpus",
		"records", len(records),
		"cached", len(records)-len(missing),
		"model", model)
	m.reportProgress(len(records) - len(missing))

	if err := m.embedMissing(ctx, texts, vectors, missing); err != nil {
		m.logger.Error("failed to embed scheme corpus", "err", err)
		return nil, fmt.Errorf("%w: %w", core.ErrDataLoad, err)
	}

	if stale := staleHits(vectors, missing); len(stale) > 0 {
		m.logger.Warn("re-embedding cached vectors with unexpected dimension",
			"count", len(stale),
			"model", model)
		for _, i := range stale {
			vectors[i] = nil
		}
		if err := m.embedMissing(ctx, texts, vectors, stale); err != nil {
			m.logger.Error("failed to embed scheme corpus", "err", err)
			return nil, fmt.Errorf("%w: %w", core.ErrDataLoad, err)
		}
		missing = append(missing, stale...)
	}

	if err := checkDimensions(vectors); err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrDataLoad, err)
	}

	if m.cache != nil && len(missing) > 0 {
		fresh := make([]string, len(missing))
		freshVectors := make([][]float32, len(missing))
		for j, i := range missing {
			fresh[j] = texts[i]
			freshVectors[j] = vectors[i]
		}
		if err := m.cache.PutEmbeddings(ctx, model, fresh, freshVectors); err != nil {
			m.logger.Warn("failed to store embeddings in cache", "err", err)
		}
	}

	corpus, err := core.NewCorpus(records, vectors, model)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", core.ErrDataLoad, err)
	}
	return corpus, nil
}

// cachedVectors returns cache hits index-aligned with texts. Cache failures
// are logged and treated as misses.
func (m *Matcher) cachedVectors(ctx context.Context, model string, texts []string) [][]float32 {
	if m.cache == nil {
		return make([][]float32, len(texts))
	}
	vectors, err := m.cache.GetEmbeddings(ctx, model, texts)
	if err != nil || len(vectors) != len(texts) {
		m.logger.Warn("embedding cache lookup failed, embedding all records", "err", err)
		return make([][]float32, len(texts))
	}
	return vectors
}

// embedMissing embeds texts[i] for every i in missing, in batches on the
// worker pool, writing each result into vectors[i].
func (m *Matcher) embedMissing(ctx context.Context, texts []string, vectors [][]float32, missing []int) error {
	if len(missing) == 0 {
		return nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)
	fail := func(err error) {
		errOnce.Do(func() {
			firstErr = err
			cancel()
		})
	}

	for start := 0; start < len(missing); start += m.batchSize {
		end := min(start+m.batchSize, len(missing))
		batch := missing[start:end]

		wg.Add(1)
		err := m.pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				return
			}
			batchTexts := make([]string, len(batch))
			for j, i := range batch {
				batchTexts[j] = texts[i]
			}
			m.logger.Debug("embedding batch", "size", len(batch), "first", batch[0])
			var embeddings [][]float32
			err := retryWithBackoff(ctx, m.logger, func() error {
				var embedErr error
				embeddings, embedErr = m.embedder.EmbedTexts(ctx, batchTexts)
				return embedErr
			}, m.maxAttempts, m.retryDelay)
			if err != nil {
				fail(fmt.Errorf("%w: %v", core.ErrEmbedding, err))
				return
			}
			if len(embeddings) != len(batch) {
				fail(fmt.Errorf("embedding result mismatch: expected %d, received %d", len(batch), len(embeddings)))
				return
			}
			for j, i := range batch {
				vectors[i] = embeddings[j]
			}
			m.reportProgress(len(batch))
		})
		if err != nil {
			wg.Done()
			fail(err)
			break
		}
	}
	wg.Wait()

	if firstErr != nil {
		return firstErr
	}
	return ctx.Err()
}

func (m *Matcher) reportProgress(done int) {
	if m.progress != nil && done > 0 {
		m.progress(done)
	}
}

// checkDimensions requires every vector to be non-empty and of equal length.
// staleHits returns the cache hits whose dimension disagrees with the freshly
// embedded vectors. When everything came from the cache and the hits disagree
// among themselves, every index is stale.
func staleHits(vectors [][]float32, missing []int) []int {
	if len(missing) > 0 {
		fresh := make([]bool, len(vectors))
		for _, i := range missing {
			fresh[i] = true
		}
		dim := len(vectors[missing[0]])
		var stale []int
		for i, v := range vectors {
			if !fresh[i] && len(v) != dim {
				stale = append(stale, i)
			}
		}
		return stale
	}

	for _, v := range vectors[1:] {
		if len(v) != len(vectors[0]) {
			all := make([]int, len(vectors))
			for i := range all {
				all[i] = i
			}
			return all
		}
	}
	return nil
}

func checkDimensions(vectors [][]float32) error {
	dim := len(vectors[0])
	for i, v := range vectors {
		if len(v) == 0 {
			return fmt.Errorf("record %d has no embedding", i+1)
		}
		if len(v) != dim {
			return fmt.Errorf("record %d has dimension %d, expected %d", i+1, len(v), dim)
		}
	}
	return nil
}

// Query returns the scheme whose context is most similar to question.
func (m *Matcher) Query(ctx context.Context, corpus *core.Corpus, question string) (*core.Match, error) {
	return m.QueryWithMonitor(ctx, corpus, question, nil)
}

// QueryWithMonitor is Query with callbacks at each stage.
//
// The question is translated to English first. A failed translation is
// logged and the original question is embedded instead. Embedding failures
// are reported as core.ErrEmbedding.
func (m *Matcher) QueryWithMonitor(ctx context.Context, corpus *core.Corpus, question string, monitor QueryMonitor) (*core.Match, error) {
	if err := core.ValidateQuestion(question); err != nil {
		return nil, err
	}
	if corpus == nil {
		return nil, ErrCorpusRequired
	}
	if monitor == nil {
		monitor = &noopMonitor{}
	}

	monitor.Start(question)

	text, err := m.translate(ctx, question)
	monitor.AfterTranslation(text, err)

	vector, err := m.embedder.EmbedText(ctx, text)
	if err != nil {
		m.logger.Error("error generating embedding for question", "err", err)
		return nil, fmt.Errorf("%w: %v", core.ErrEmbedding, err)
	}
	if len(vector) != len(corpus.Embedding(0)) {
		m.logger.Error("question embedding does not match corpus",
			"dimension", len(vector),
			"corpus_dimension", len(corpus.Embedding(0)))
		return nil, fmt.Errorf("%w: dimension %d does not match corpus dimension %d",
			core.ErrEmbedding, len(vector), len(corpus.Embedding(0)))
	}
	monitor.AfterEmbedding(vector)

	index, score := Argmax(corpus, vector)
	record := corpus.Record(index)
	match := &core.Match{
		Description: record.Description,
		Index:       index,
		Score:       score,
		Record:      record,
		Question:    text,
	}
	m.logger.Debug("matched scheme", "index", index, "score", score, "scheme", record.Name)

	monitor.Finish(match)
	return match, nil
}

// translate returns question in English. On failure it returns the original
// question together with an error wrapping core.ErrTranslation.
func (m *Matcher) translate(ctx context.Context, question string) (string, error) {
	if m.translator == nil {
		return question, nil
	}
	translated, err := m.translator.Translate(ctx, question, ai.AutoDetect, ai.WorkingLanguage)
	if err != nil {
		m.logger.Warn("translation failed, using original question", "err", err)
		return question, fmt.Errorf("%w: %v", core.ErrTranslation, err)
	}
	if strings.TrimSpace(translated) == "" {
		m.logger.Warn("translation returned empty text, using original question")
		return question, fmt.Errorf("%w: empty translation", core.ErrTranslation)
	}
	return translated, nil
}
