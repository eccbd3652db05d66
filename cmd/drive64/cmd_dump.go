package main

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/n64tools/drive64/pkg/app"
	"github.com/n64tools/drive64/pkg/proto"
	"github.com/n64tools/drive64/pkg/resume"
)

var dumpCmd = &cobra.Command{
	Use:   "dump [file]",
	Short: "Download a memory bank from the cartridge",
	Long: `Download the selected memory bank into a file. Without --size
the dump runs to a fixed 256 MiB upper bound; the device cannot report
a bank's real capacity, so give --size when you know it.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		bank, err := proto.BankByName(transferBank)
		if err != nil {
			return err
		}
		offset, size, err := transferExtent()
		if err != nil {
			return err
		}

		path := args[0]
		var dst io.Writer
		var alreadyMoved int64

		if transferResume {
			st, err := resume.Load()
			if err != nil {
				return err
			}
			if st == nil || st.Direction != "dump" {
				return fmt.Errorf("no interrupted dump to resume")
			}
			if path == "-" {
				return fmt.Errorf("cannot resume a dump to stdout")
			}
			f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE, 0644)
			if err != nil {
				return fmt.Errorf("could not open %q: %w", path, err)
			}
			defer f.Close()
			if _, err := f.Seek(st.Moved, io.SeekStart); err != nil {
				return fmt.Errorf("seeking to resume position: %w", err)
			}
			dst = f
			offset = st.Offset
			alreadyMoved = st.Moved
			if size > 0 {
				size -= st.Moved
			}
			bank, err = proto.BankByName(st.Bank)
			if err != nil {
				return err
			}
			slog.Info("Resuming dump", "offset", fmt.Sprintf("0x%06X", offset), "already_read", st.Moved)
		} else if path == "-" {
			quiet = true
			dst = os.Stdout
		} else {
			f, err := os.Create(path)
			if err != nil {
				return fmt.Errorf("could not open %q: %w", path, err)
			}
			defer f.Close()
			dst = f
		}

		if size < 0 {
			slog.Warn("No size given; dumping to the 256 MiB upper bound")
		}

		s, err := app.New()
		if err != nil {
			return err
		}
		defer s.Close()

		start := time.Now()
		moved, err := s.Download(dst, size, offset, bank, progressFn("Downloading"))
		if err != nil {
			saveResumeState(err, &resume.State{
				Direction: "dump",
				File:      path,
				Bank:      bank.String(),
				Offset:    offset + uint32(moved),
				Moved:     alreadyMoved + moved,
			})
			return err
		}
		if transferResume {
			resume.Clear()
		}

		took := time.Since(start)
		slog.Info("Done", "bytes", moved, "seconds", int(took.Seconds()), "bps", int(float64(moved)/took.Seconds()))
		return nil
	},
}
