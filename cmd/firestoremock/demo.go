package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/restic/firestoremock/internal/clock"
	"github.com/restic/firestoremock/internal/commit"
	"github.com/restic/firestoremock/internal/errors"
	"github.com/restic/firestoremock/internal/fspath"
	"github.com/restic/firestoremock/internal/value"

	fsmock "github.com/restic/firestoremock"
)

type demoOptions struct {
	ProjectID string
	Path      string
}

func (opts *demoOptions) AddFlags(f *pflag.FlagSet) {
	f.StringVar(&opts.ProjectID, "project", fsmock.DefaultProjectID, "project ID used to render the document reference")
	f.StringVar(&opts.Path, "path", "users/ada", "document path to write and read back")
}

func newDemoCommand() *cobra.Command {
	var opts demoOptions

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run a scripted walkthrough against an in-process controller",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runDemo(cmd, &opts)
		},
	}
	opts.AddFlags(cmd.Flags())
	return cmd
}

func init() {
	cmdRoot.AddCommand(newDemoCommand())
}

func runDemo(cmd *cobra.Command, opts *demoOptions) error {
	if opts.Path == "" {
		return errors.Fatal("--path must not be empty")
	}

	ctl := fsmock.NewControllerWithClock(fsmock.ControllerOptions{ProjectID: opts.ProjectID}, clock.System())
	defer ctl.Close()

	path, err := fspath.Assert(opts.Path, fspath.KindDocument)
	if err != nil {
		return err
	}

	batch := fsmock.NewWriteBatch().Set(path, map[string]value.Value{
		"name": value.Str("Ada Lovelace"),
		"born": value.Int(1815),
	}, nil)

	result, err := ctl.Commit(batch.Writes(), commit.Atomic)
	if err != nil {
		return err
	}

	doc, err := ctl.Get(path, nil)
	if err != nil {
		return err
	}

	out := map[string]interface{}{
		"reference":   ctl.ReferencePath(path),
		"commit_time": result.ServerTime,
		"document":    doc,
		"fingerprint": doc.Fingerprint(),
		"stats":       ctl.Stats(),
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return err
	}
	return nil
}
