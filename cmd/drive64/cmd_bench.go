package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/aybabtme/uniplot/histogram"
	"github.com/spf13/cobra"

	"github.com/n64tools/drive64/pkg/app"
	"github.com/n64tools/drive64/pkg/proto"
)

var benchOps int

// One chunk unit per read keeps the transfer engine to a single chunk
// so each sample times exactly one command + bulk exchange.
const benchReadSize = 128 * 1024

var benchCmd = &cobra.Command{
	Use:   "bench",
	Short: "Measure link throughput",
	Long: `Repeatedly read the start of the ROM bank and print per-read
latency as a histogram, plus aggregate throughput. Does not modify the
cartridge.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := app.New()
		if err != nil {
			return err
		}
		defer s.Close()

		samples := make([]float64, 0, benchOps)
		start := time.Now()
		for i := 0; i < benchOps; i++ {
			opStart := time.Now()
			if _, err := s.Download(io.Discard, benchReadSize, 0, proto.BankCartROM, nil); err != nil {
				return fmt.Errorf("read %d: %w", i, err)
			}
			samples = append(samples, time.Since(opStart).Seconds())
		}
		took := time.Since(start)

		hist := histogram.Hist(10, samples)
		if err := histogram.Fprintf(os.Stdout, hist, histogram.Linear(40), func(v float64) string {
			return time.Duration(v * float64(time.Second)).Round(time.Microsecond).String()
		}); err != nil {
			return err
		}

		total := int64(benchOps) * benchReadSize
		slog.Info("Bench complete", "reads", benchOps, "bytes", total, "bps", int(float64(total)/took.Seconds()))
		return nil
	},
}
