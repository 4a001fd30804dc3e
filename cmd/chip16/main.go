// Copyright 2025, Jason S. McMullan <jason.mcmullan@gmail.com>

package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/ezrec/chip16/cpu"
	"github.com/ezrec/chip16/emulator"
	"github.com/ezrec/chip16/io"
)

// isSource reports whether a path names assembly source rather than a
// ROM image.
func isSource(path string) bool {
	switch filepath.Ext(path) {
	case ".s", ".asm", ".s16":
		return true
	}
	return false
}

func assemble(path string, verbose bool) (prog *cpu.Program, err error) {
	inf, err := os.Open(path)
	if err != nil {
		return
	}
	defer inf.Close()

	asm := &cpu.Assembler{Verbose: verbose}
	prog, err = asm.Parse(inf)

	return
}

func main() {
	rootCmd := &cobra.Command{
		Use:   "chip16",
		Short: "Chip16 assembler and emulator",
	}

	// asm command
	var output string
	var raw bool
	var start uint16
	var verbose bool

	asmCmd := &cobra.Command{
		Use:   "asm [source file]",
		Short: "Assemble a source file into a CH16 ROM image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prog, err := assemble(args[0], verbose)
			if err != nil {
				return err
			}

			image := prog.Binary()
			if !raw {
				rom := &io.Rom{Start: start, Data: image}
				image, err = rom.Encode()
				if err != nil {
					return err
				}
			}

			if output == "" {
				ext := ".c16"
				if raw {
					ext = ".bin"
				}
				output = strings.TrimSuffix(args[0], filepath.Ext(args[0])) + ext
			}
			if err := os.WriteFile(output, image, 0o644); err != nil {
				return err
			}

			fmt.Printf("%v: %d bytes\n", output, len(image))
			return nil
		},
	}
	asmCmd.Flags().StringVarP(&output, "output", "o", "", "Output file (default: input with .c16/.bin extension)")
	asmCmd.Flags().BoolVar(&raw, "raw", false, "Write a raw payload without the CH16 header")
	asmCmd.Flags().Uint16Var(&start, "start", 0, "Start address recorded in the header")
	asmCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	// run command
	var frames int
	var dump bool

	runCmd := &cobra.Command{
		Use:   "run [rom or source file]",
		Short: "Run a ROM image for a number of frames",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			emu := emulator.NewEmulator()
			emu.Verbose = verbose

			if isSource(args[0]) {
				prog, err := assemble(args[0], verbose)
				if err != nil {
					return err
				}
				emu.Program = prog
				emu.Rom.Data = prog.Binary()
			} else {
				image, err := os.ReadFile(args[0])
				if err != nil {
					return err
				}
				if err := emu.Rom.Decode(image); err != nil {
					return err
				}
			}

			if err := emu.Reset(); err != nil {
				return err
			}

			runErr := emu.Run(frames)

			fmt.Print(emu.Cpu.String())
			if dump {
				fmt.Print(emu.Cpu.MemoryString())
			}

			return runErr
		},
	}
	runCmd.Flags().IntVar(&frames, "frames", FramesDefault, "Number of frames to run")
	runCmd.Flags().BoolVar(&dump, "dump", false, "Dump written memory cells after the run")
	runCmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Verbose output")

	rootCmd.AddCommand(asmCmd, runCmd)

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

// FramesDefault is one second of emulated time.
const FramesDefault = emulator.FramesPerSecond
