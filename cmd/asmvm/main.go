package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

func main() {
	rootCmd := &cobra.Command{
		Use:   "asmvm",
		Short: "Assemble and step an 8086-like bytecode image",
	}

	rootCmd.AddCommand(newCompileCmd(), newRunCmd(), newDebugCmd())

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
