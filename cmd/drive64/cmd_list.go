package main

import (
	"fmt"

	"github.com/google/gousb"
	"github.com/spf13/cobra"

	"github.com/n64tools/drive64/pkg/ftdi"
)

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "List attached FTDI devices",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := gousb.NewContext()
		defer ctx.Close()

		infos, err := ftdi.List(ctx)
		if err != nil {
			return err
		}

		fmt.Printf(" * Found %d devices\n", len(infos))
		for i, d := range infos {
			fmt.Printf(" * Device %d: %q, manuf %q, serial %q\n",
				i, d.Product, d.Manufacturer, d.Serial)
		}
		return nil
	},
}
