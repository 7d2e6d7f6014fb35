package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/wudi/receiptkit/frame"
)

func newScanCmd(a *app) *cobra.Command {
	var showText bool
	cmd := &cobra.Command{
		Use:   "scan <image>",
		Short: "Recognize a receipt and print its total",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := os.ReadFile(args[0])
			if err != nil {
				return err
			}
			still, err := frame.DecodeLimited(data, a.limits())
			if err != nil {
				return err
			}
			rec, err := a.scanner(a.normalizer()).Scan(cmd.Context(), still)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if rec.Total != nil {
				fmt.Fprintf(out, "total: %s\n", rec.Total.StringFixed(2))
			} else {
				fmt.Fprintln(out, "total: not found")
			}
			fmt.Fprintf(out, "confidence: %.2f\n", rec.Confidence)
			if showText {
				fmt.Fprintf(out, "\n%s\n", rec.Text)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&showText, "text", false, "print the recognized text")
	return cmd
}
