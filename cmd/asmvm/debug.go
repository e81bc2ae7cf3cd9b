package main

import (
	"bufio"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shaharkabesa/assembly-emulator/asm"
	"github.com/shaharkabesa/assembly-emulator/cpu"
)

func newDebugCmd() *cobra.Command {
	var compatMode bool

	cmd := &cobra.Command{
		Use:   "debug <source.asm>",
		Short: "Step a program interactively",
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
				return fmt.Errorf("%d assembly error(s), not debugging", len(res.Errors))
			}

			state := cpu.NewState()
			state.CompatMode = compatMode
			cpu.Load(state, res.Image, res.Entry)
			state.Status = cpu.StatusRunning

			runDebugRepl(state, res, strings.Split(string(src), "\n"))
			return nil
		},
	}

	cmd.Flags().BoolVar(&compatMode, "compat-mode", false, "Treat unknown opcodes as NOP instead of faulting")
	return cmd
}

// runDebugRepl is the single-step debugger: next/n advances one instruction,
// run/r free-runs until a breakpoint or halt, break/b <addr> toggles a
// breakpoint, and program prints the sourcemap-aware listing.
func runDebugRepl(state *cpu.State, res asm.Result, source []string) {
	fmt.Println("Commands:\n\tn or next: execute next instruction\n\tr or run: run program\n\tb or break <addr>: toggle breakpoint at hex address\n\tprogram: print listing\n")
	printState(state)

	reader := bufio.NewReader(os.Stdin)
	breakpoints := make(map[uint16]struct{})
	waitForInput := true

	for {
		var line string
		if waitForInput {
			fmt.Print("\n-> ")
			line, _ = reader.ReadString('\n')
			line = strings.ToLower(strings.TrimSpace(line))
		} else {
			if _, ok := breakpoints[state.Registers.IP]; ok {
				fmt.Printf("breakpoint at %04Xh\n", state.Registers.IP)
				printState(state)
				waitForInput = true
				continue
			}
		}

		switch {
		case !waitForInput, line == "n", line == "next":
			output, halted, err := cpu.Step(state)
			fmt.Print(output)
			if waitForInput {
				printState(state)
			}
			if err != nil {
				fmt.Println("fault:", err)
				return
			}
			if halted {
				fmt.Println("program finished")
				return
			}
		case line == "program":
			for _, l := range asm.Listing(res, source) {
				fmt.Println(l)
			}
		case line == "r", line == "run":
			waitForInput = false
		case strings.HasPrefix(line, "b"):
			arg := strings.TrimSpace(strings.TrimPrefix(strings.TrimPrefix(line, "break"), "b"))
			addr, err := strconv.ParseUint(strings.TrimSuffix(arg, "h"), 16, 16)
			if err != nil {
				fmt.Println("invalid address:", arg)
				continue
			}
			a := uint16(addr)
			if _, ok := breakpoints[a]; ok {
				delete(breakpoints, a)
			} else {
				breakpoints[a] = struct{}{}
			}
		}
	}
}

func printState(state *cpu.State) {
	r := state.Registers
	fmt.Printf("IP=%04Xh AX=%04Xh BX=%04Xh CX=%04Xh DX=%04Xh SP=%04Xh  ZF=%v SF=%v CF=%v OF=%v\n",
		r.IP, r.AX, r.BX, r.CX, r.DX, r.SP,
		state.Flags.ZF, state.Flags.SF, state.Flags.CF, state.Flags.OF)
}
