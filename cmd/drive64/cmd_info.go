package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/n64tools/drive64/pkg/app"
)

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show hardware version and revision of the attached device",
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := app.New()
		if err != nil {
			return err
		}
		defer s.Close()

		fmt.Printf("Device version: HW%d rev %s\n", s.Version.HWVersion, s.Version.VariantString())
		return nil
	},
}
