package main

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/wudi/receiptkit/frame"
	"github.com/wudi/receiptkit/observability"
)

func newNormalizeCmd(a *app) *cobra.Command {
	var outDir string
	cmd := &cobra.Command{
		Use:   "normalize <image>...",
		Short: "Write thresholded JPEG copies of receipt images",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := os.MkdirAll(outDir, 0o755); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
			norm := a.normalizer()
			g, ctx := errgroup.WithContext(cmd.Context())
			g.SetLimit(runtime.GOMAXPROCS(0))
			for _, path := range args {
				g.Go(func() error {
					data, err := os.ReadFile(path)
					if err != nil {
						return err
					}
					still, err := frame.DecodeLimited(data, a.limits())
					if err != nil {
						return fmt.Errorf("%s: %w", path, err)
					}
					img, err := norm.Normalize(ctx, still)
					if err != nil {
						return fmt.Errorf("%s: %w", path, err)
					}
					base := strings.TrimSuffix(filepath.Base(path), filepath.Ext(path))
					out := filepath.Join(outDir, base+".jpg")
					if err := os.WriteFile(out, img.Data, 0o644); err != nil {
						return err
					}
					a.logger.Info("normalized",
						observability.String("input", path),
						observability.String("output", out),
						observability.Int("width", img.Width),
						observability.Int("height", img.Height),
					)
					return nil
				})
			}
			return g.Wait()
		},
	}
	cmd.Flags().StringVarP(&outDir, "out", "o", "normalized", "output directory")
	return cmd
}
