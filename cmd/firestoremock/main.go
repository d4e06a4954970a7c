package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/automaxprocs/maxprocs"

	"github.com/restic/firestoremock/internal/debug"
	"github.com/restic/firestoremock/internal/errors"
)

func init() {
	// don't import `go.uber.org/automaxprocs` to disable the log output
	_, _ = maxprocs.Set()
}

// cmdRoot is the base command when no other command has been specified.
var cmdRoot = &cobra.Command{
	Use:   "firestoremock",
	Short: "Run and inspect an in-memory Firestore mock",
	Long: `
firestoremock hosts an in-memory mock of a Firestore Admin database for
local development and scripted tests, without a live emulator.
`,
	SilenceErrors:     true,
	SilenceUsage:      true,
	DisableAutoGenTag: true,
}

func main() {
	debug.Log("firestoremock %#v", os.Args)

	if err := cmdRoot.Execute(); err != nil {
		if errors.IsFatal(err) {
			fmt.Fprintf(os.Stderr, "%v\n", err)
		} else {
			fmt.Fprintf(os.Stderr, "%+v\n", err)
		}
		Exit(1)
	}
}

// Exit terminates the process with the given exit code.
func Exit(code int) {
	debug.Log("exiting with status code %d", code)
	os.Exit(code)
}
