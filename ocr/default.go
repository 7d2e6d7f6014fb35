package ocr

import (
	"context"
	"fmt"
	"sync"
)

var (
	defaultMu     sync.RWMutex
	defaultEngine Engine = noopEngine{}
)

// DefaultEngine returns the registered default engine. Importing
// ocr/tesseract makes Tesseract the default; otherwise a no-op engine that
// recognizes nothing is returned.
func DefaultEngine() Engine {
	defaultMu.RLock()
	defer defaultMu.RUnlock()
	return defaultEngine
}

// SetDefaultEngine sets the default OCR engine.
func SetDefaultEngine(engine Engine) {
	if engine == nil {
		engine = noopEngine{}
	}
	defaultMu.Lock()
	defaultEngine = engine
	defaultMu.Unlock()
}

// Recognize invokes engine on every input. If the engine supports batch
// operation, it is used; otherwise calls are executed sequentially.
func Recognize(ctx context.Context, engine Engine, inputs []Input) ([]Result, error) {
	if engine == nil {
		engine = DefaultEngine()
	}
	if b, ok := engine.(BatchEngine); ok {
		results, err := b.RecognizeBatch(ctx, inputs)
		if err != nil {
			return nil, err
		}
		if len(results) != len(inputs) {
			return nil, fmt.Errorf("%s returned %d results for %d inputs", engine.Name(), len(results), len(inputs))
		}
		return results, nil
	}
	results := make([]Result, 0, len(inputs))
	for _, in := range inputs {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		res, err := engine.Recognize(ctx, in)
		if err != nil {
			return nil, fmt.Errorf("recognize %s: %w", in.ID, err)
		}
		results = append(results, res)
	}
	return results, nil
}

// NoopEngine returns an engine that echoes the input ID with no text.
func NoopEngine() Engine { return noopEngine{} }

type noopEngine struct{}

func (n noopEngine) Name() string {
	return "noop"
}

func (n noopEngine) Recognize(ctx context.Context, input Input) (Result, error) {
	return Result{InputID: input.ID}, nil
}
