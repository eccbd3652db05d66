package main

import (
	"flag"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

var rootCmd = &cobra.Command{
	Use:   "drive64",
	Short: "drive64 is a USB tool for the 64drive development cartridge",
	Long: `Loads and dumps the ROM, save RAM and EEPROM banks of a 64drive
development cartridge over USB, and selects the CIC boot chip the
cartridge emulates.

FILE arguments accept "-" for stdin (load) or stdout (dump). Loading
accepts .z64/.v64/.n64 ROM images in any byte order, raw save data,
and .xz compressed files.`,
	SilenceUsage: true,
}

var quiet bool

func main() {
	loadCmd.Flags().StringVarP(&transferBank, "bank", "b", "rom", "Memory bank: rom, sram256, sram768, flash, pokemon, eeprom")
	loadCmd.Flags().StringVarP(&transferOffset, "offset", "o", "0", "Bank offset to transfer at")
	loadCmd.Flags().StringVarP(&transferSize, "size", "s", "", "Bytes to transfer (default: entire file)")
	loadCmd.Flags().BoolVar(&transferResume, "resume", false, "Continue the last interrupted transfer")
	dumpCmd.Flags().StringVarP(&transferBank, "bank", "b", "rom", "Memory bank: rom, sram256, sram768, flash, pokemon, eeprom")
	dumpCmd.Flags().StringVarP(&transferOffset, "offset", "o", "0", "Bank offset to transfer at")
	dumpCmd.Flags().StringVarP(&transferSize, "size", "s", "", "Bytes to transfer (default: 256 MiB upper bound)")
	dumpCmd.Flags().BoolVar(&transferResume, "resume", false, "Continue the last interrupted transfer")
	benchCmd.Flags().IntVarP(&benchOps, "count", "n", 64, "Number of timed reads")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "No progress indicators")
	rootCmd.CompletionOptions.DisableDefaultCmd = true
	rootCmd.AddCommand(loadCmd)
	rootCmd.AddCommand(dumpCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(cicCmd)
	rootCmd.AddCommand(listCmd)
	rootCmd.AddCommand(benchCmd)
	rootCmd.Execute()
}

func init() {
	pflag.CommandLine.AddGoFlagSet(flag.CommandLine)
}

func parseNumber(s string) (uint32, error) {
	var err error
	var res uint64
	if strings.HasPrefix(strings.ToLower(s), "0x") {
		res, err = strconv.ParseUint(s[2:], 16, 32)
		if err != nil {
			return 0, fmt.Errorf("invalid number")
		}
	} else {
		res, err = strconv.ParseUint(s, 10, 32)
		if err != nil {
			res, err = strconv.ParseUint(s, 16, 32)
			if err != nil {
				return 0, fmt.Errorf("invalid number")
			}
		}
	}
	return uint32(res), nil
}
