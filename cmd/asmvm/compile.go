package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/shaharkabesa/assembly-emulator/asm"
)

func newCompileCmd() *cobra.Command {
	var listing bool
	var asJSON bool
	var out string

	cmd := &cobra.Command{
		Use:   "compile <source.asm>",
		Short: "Assemble a source file into a bytecode image",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("reading %s: %w", args[0], err)
			}

			res := asm.Compile(string(src))
			for _, e := range res.Errors {
				fmt.Fprintln(os.Stderr, e)
			}

			if listing {
				lines := asm.Listing(res, strings.Split(string(src), "\n"))
				for _, l := range lines {
					fmt.Println(l)
				}
			}

			if asJSON {
				enc := json.NewEncoder(os.Stdout)
				enc.SetIndent("", "  ")
				return enc.Encode(compileOutput{
					Entry:  res.Entry,
					Errors: res.Errors,
					Image:  res.Image[:],
				})
			}

			if out != "" {
				if err := os.WriteFile(out, res.Image[:], 0o644); err != nil {
					return fmt.Errorf("writing %s: %w", out, err)
				}
				fmt.Printf("wrote %s (entry %04Xh)\n", out, res.Entry)
			}

			if len(res.Errors) > 0 {
				return fmt.Errorf("%d assembly error(s)", len(res.Errors))
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&listing, "listing", false, "Print a sourcemap-aware disassembly listing")
	cmd.Flags().BoolVar(&asJSON, "json", false, "Emit the compiled image and errors as JSON")
	cmd.Flags().StringVarP(&out, "output", "o", "", "Write the raw 64 KiB image to this file")

	return cmd
}

type compileOutput struct {
	Entry  uint16   `json:"entry"`
	Errors []string `json:"errors"`
	Image  []byte   `json:"image"`
}
