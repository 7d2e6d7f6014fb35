package main

import (
	"bytes"
	"context"
	"image"
	"image/color"
	"image/jpeg"
	"image/png"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/wudi/receiptkit/config"
	"github.com/wudi/receiptkit/frame"
	"github.com/wudi/receiptkit/observability"
)

func writePNG(t *testing.T, dir, name string, w, h int) string {
	t.Helper()
	img := image.NewNRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			img.SetNRGBA(x, y, color.NRGBA{R: 20, G: 20, B: 20, A: 255})
		}
	}
	path := filepath.Join(dir, name)
	f, err := os.Create(path)
	require.NoError(t, err)
	defer f.Close()
	require.NoError(t, png.Encode(f, img))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := newRootCmd()
	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(append([]string{"--log-level", "error"}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func TestNormalizeCommand(t *testing.T) {
	t.Run("Should write one JPEG per input", func(t *testing.T) {
		dir := t.TempDir()
		a := writePNG(t, dir, "a.png", 6, 4)
		b := writePNG(t, dir, "b.png", 3, 9)
		out := filepath.Join(dir, "out")

		_, err := run(t, "normalize", "-o", out, a, b)
		require.NoError(t, err)

		for name, size := range map[string]image.Point{"a.jpg": image.Pt(6, 4), "b.jpg": image.Pt(3, 9)} {
			data, err := os.ReadFile(filepath.Join(out, name))
			require.NoError(t, err)
			img, err := jpeg.Decode(bytes.NewReader(data))
			require.NoError(t, err)
			assert.Equal(t, size, img.Bounds().Size())
			r, _, _, _ := img.At(0, 0).RGBA()
			assert.InDelta(t, 0, r>>8, 2)
		}
	})

	t.Run("Should fail on a non-image input", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "notes.txt")
		require.NoError(t, os.WriteFile(path, []byte("TOTAL 12.00"), 0o644))
		_, err := run(t, "normalize", "-o", filepath.Join(dir, "out"), path)
		assert.Error(t, err)
	})
}

func TestScanCommand(t *testing.T) {
	t.Run("Should report a missing total with the noop engine", func(t *testing.T) {
		t.Setenv("RECEIPTKIT_OCR_ENGINE", "noop")
		path := writePNG(t, t.TempDir(), "r.png", 4, 4)

		out, err := run(t, "scan", path)
		require.NoError(t, err)
		assert.Contains(t, out, "total: not found")
		assert.Contains(t, out, "confidence: 0.00")
	})
}

type spanRecorder struct {
	mu    sync.Mutex
	names []string
}

func (r *spanRecorder) StartSpan(ctx context.Context, name string) (context.Context, observability.Span) {
	r.mu.Lock()
	r.names = append(r.names, name)
	r.mu.Unlock()
	return observability.NopTracer().StartSpan(ctx, name)
}

func TestAppWiresTracer(t *testing.T) {
	t.Run("Should trace normalization and scans", func(t *testing.T) {
		cfg := config.Default()
		cfg.OCR.Engine = "noop"
		rec := &spanRecorder{}
		a := &app{cfg: cfg, logger: observability.NopLogger{}, tracer: rec}

		still := frame.NewStill(image.NewNRGBA(image.Rect(0, 0, 2, 2)))
		_, err := a.normalizer().Normalize(context.Background(), still)
		require.NoError(t, err)
		assert.Equal(t, []string{"normalize"}, rec.names)

		rec.names = nil
		_, err = a.scanner(a.normalizer()).Scan(context.Background(), still)
		require.NoError(t, err)
		assert.Contains(t, rec.names, "receipt.scan")
		assert.Contains(t, rec.names, "normalize")
	})
}

func TestInvalidConfig(t *testing.T) {
	t.Setenv("RECEIPTKIT_OCR_ENGINE", "paddle")
	_, err := run(t, "scan", "missing.png")
	assert.Error(t, err)
}
