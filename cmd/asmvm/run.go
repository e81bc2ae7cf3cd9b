package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/shaharkabesa/assembly-emulator/asm"
	"github.com/shaharkabesa/assembly-emulator/cpu"
)

func newRunCmd() *cobra.Command {
	var compatMode bool

	cmd := &cobra.Command{
		Use:   "run <source.asm>",
		Short: "Assemble and run a program to completion",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			res := asm.Compile(string(src))
			if len(res.Errors) > 0 {
				for _, e := range res.Errors {
					fmt.Fprintln(os.Stderr, e)
				}
				return fmt.Errorf("%d assembly error(s), not running", len(res.Errors))
			}

			state := cpu.NewState()
			state.CompatMode = compatMode
			cpu.Load(state, res.Image, res.Entry)
			state.Status = cpu.StatusRunning

			for {
				output, halted, err := cpu.Step(state)
				fmt.Print(output)
				if err != nil {
					slog.Error("program fault", "error", err, "ip", fmt.Sprintf("%04Xh", state.Registers.IP))
					return err
				}
				if halted {
					break
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&compatMode, "compat-mode", false, "Treat unknown opcodes as NOP instead of faulting")
	return cmd
}
