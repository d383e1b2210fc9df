package translate

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"

	"substation/internal/srt"
)

const defaultWorkers = 10

// Translator turns one text fragment into the target language.
type Translator interface {
	Translate(ctx context.Context, text, sourceLang, targetLang string) (string, error)
}

// Pool fans cue translations out over a bounded number of workers.
type Pool struct {
	translator Translator
	workers    int
	logger     *slog.Logger
}

// NewPool builds a pool around the given translator.
func NewPool(translator Translator, workers int, logger *slog.Logger) *Pool {
	if workers <= 0 {
		workers = defaultWorkers
	}
	if logger != nil {
		logger = logger.With(slog.String("component", "translate"))
	} else {
		logger = slog.Default()
	}
	return &Pool{translator: translator, workers: workers, logger: logger}
}

// TranslateCues translates every cue and returns a new slice in the
// original order. The first translation error cancels the remaining work.
func (p *Pool) TranslateCues(ctx context.Context, cues []srt.Cue, sourceLang, targetLang string) ([]srt.Cue, error) {
	if len(cues) == 0 {
		return nil, nil
	}

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	out := make([]srt.Cue, len(cues))
	copy(out, cues)

	jobs := make(chan int)
	var wg sync.WaitGroup
	var once sync.Once
	var firstErr error

	fail := func(err error) {
		once.Do(func() {
			firstErr = err
			cancel()
		})
	}

	workers := p.workers
	if workers > len(cues) {
		workers = len(cues)
	}
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := range jobs {
				translated, err := p.translator.Translate(ctx, cues[i].Text(), sourceLang, targetLang)
				if err != nil {
					fail(fmt.Errorf("cue %d: %w", cues[i].Index, err))
					return
				}
				out[i].Lines = strings.Split(translated, "\n")
			}
		}()
	}

feed:
	for i := range cues {
		select {
		case jobs <- i:
		case <-ctx.Done():
			break feed
		}
	}
	close(jobs)
	wg.Wait()

	if firstErr != nil {
		return nil, firstErr
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// TranslateFile reads a SubRip file, translates it and writes the result
// to outPath.
func (p *Pool) TranslateFile(ctx context.Context, inPath, outPath, sourceLang, targetLang string) error {
	data, err := os.ReadFile(inPath)
	if err != nil {
		return fmt.Errorf("read subtitle: %w", err)
	}
	cues, err := srt.Parse(data)
	if err != nil {
		return fmt.Errorf("parse %s: %w", inPath, err)
	}

	p.logger.Info("translating subtitle",
		slog.String("path", inPath),
		slog.Int("cues", len(cues)),
		slog.String("target", targetLang))

	translated, err := p.TranslateCues(ctx, cues, sourceLang, targetLang)
	if err != nil {
		return err
	}
	if err := os.WriteFile(outPath, srt.Render(translated), 0o644); err != nil {
		return fmt.Errorf("write subtitle: %w", err)
	}
	return nil
}
