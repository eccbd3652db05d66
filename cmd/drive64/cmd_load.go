package main

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/n64tools/drive64/pkg/app"
	"github.com/n64tools/drive64/pkg/proto"
	"github.com/n64tools/drive64/pkg/resume"
	"github.com/n64tools/drive64/pkg/rom"
)

var (
	transferBank   string
	transferOffset string
	transferSize   string
	transferResume bool
)

var loadCmd = &cobra.Command{
	Use:   "load [file]",
	Short: "Upload a ROM or save image to the cartridge",
	Long: `Upload a file into the selected memory bank. ROM images in
byteswapped (.v64) or little-endian (.n64) order are normalized to the
console-native byte order before upload; anything without a ROM header
is sent as-is.`,
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
		var src io.ReadSeeker
		if path == "-" {
			quiet = true
			data, err := io.ReadAll(os.Stdin)
			if err != nil {
				return fmt.Errorf("reading stdin: %w", err)
			}
			img, err := rom.New(data)
			if err != nil {
				return err
			}
			src = img
		} else {
			img, err := rom.Open(path)
			if err != nil {
				return fmt.Errorf("could not open %q: %w", path, err)
			}
			if img.Order != rom.OrderUnknown {
				slog.Info("ROM image", "order", img.Order.String(), "bytes", img.Size())
			}
			src = img
		}

		var alreadySent int64
		if transferResume {
			st, err := resume.Load()
			if err != nil {
				return err
			}
			if st == nil || st.Direction != "load" {
				return fmt.Errorf("no interrupted load to resume")
			}
			if _, err := src.Seek(st.Moved, io.SeekStart); err != nil {
				return fmt.Errorf("seeking to resume position: %w", err)
			}
			offset = st.Offset
			alreadySent = st.Moved
			bank, err = proto.BankByName(st.Bank)
			if err != nil {
				return err
			}
			slog.Info("Resuming upload", "offset", fmt.Sprintf("0x%06X", offset), "already_sent", st.Moved)
		}

		s, err := app.New()
		if err != nil {
			return err
		}
		defer s.Close()

		start := time.Now()
		moved, err := s.Upload(src, size, offset, bank, progressFn("Uploading"))
		if err != nil {
			saveResumeState(err, &resume.State{
				Direction: "load",
				File:      path,
				Bank:      bank.String(),
				Offset:    offset + uint32(moved),
				Moved:     alreadySent + moved,
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

// transferExtent parses the shared --offset/--size flags. An empty
// size means "let the transfer engine decide".
func transferExtent() (uint32, int64, error) {
	var offset uint32
	size := int64(-1)
	if transferOffset != "" {
		v, err := parseNumber(transferOffset)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid offset")
		}
		offset = v
	}
	if transferSize != "" {
		v, err := parseNumber(transferSize)
		if err != nil {
			return 0, 0, fmt.Errorf("invalid size")
		}
		size = int64(v)
	}
	return offset, size, nil
}

func progressFn(verb string) proto.Progress {
	if quiet {
		return nil
	}
	return func(moved, total int64) {
		fmt.Fprintf(os.Stderr, "\r * %s... %3d%%", verb, proto.Percent(moved, total))
		if moved >= total {
			fmt.Fprintln(os.Stderr)
		}
	}
}

// saveResumeState records partial progress after an aborted transfer,
// if the failure left any behind.
func saveResumeState(err error, st *resume.State) {
	var terr *proto.TransferError
	if !errors.As(err, &terr) || terr.Moved == 0 {
		return
	}
	if serr := resume.Save(st); serr != nil {
		slog.Error("Could not save resume state", "err", serr)
		return
	}
	slog.Info("Partial progress saved; rerun with --resume to continue", "moved", st.Moved)
}
