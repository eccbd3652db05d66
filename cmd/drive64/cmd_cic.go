package main

import (
	"fmt"
	"log/slog"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/n64tools/drive64/pkg/app"
	"github.com/n64tools/drive64/pkg/proto"
)

var cicCmd = &cobra.Command{
	Use:   "cic [type]",
	Short: "Select the CIC boot chip the cartridge emulates",
	Long:  cicHelp(),
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		num, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid CIC %q", args[0])
		}
		cic, err := proto.CICByNumber(num)
		if err != nil {
			return err
		}

		s, err := app.New()
		if err != nil {
			return err
		}
		defer s.Close()

		if err := s.SetCIC(cic); err != nil {
			return err
		}
		slog.Info("CIC selected", "type", args[0])
		return nil
	},
}

func cicHelp() string {
	var b strings.Builder
	b.WriteString("Select the CIC boot chip the cartridge emulates (HW2 rev B only).\n")
	b.WriteString("The CIC must match the game or it will not boot.\n\nTYPE is one of:\n")
	for _, t := range proto.CICTypes {
		fmt.Fprintf(&b, "  %4d (%s)\n", t.Num, t.Desc)
	}
	return strings.TrimRight(b.String(), "\n")
}
