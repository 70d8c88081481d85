package main

import (
	"fmt"

	"github.com/cespare/xxhash/v2"
	"github.com/fwojciec/html2md"
	"github.com/fwojciec/html2md/fs"
)

// Run executes the convert command.
func (c *ConvertCmd) Run(deps *Dependencies) error {
	files, err := deps.Source.Discover(deps.Ctx, c.InputDir)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", reason(err))
		return err
	}

	fmt.Fprintf(deps.Stdout, "Found %d HTML files\n", len(files))

	outPath, err := fs.ResolveOutputPath(c.InputDir, c.Output, c.OnExists, deps.Now())
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", reason(err))
		return err
	}

	progress := func(e html2md.ProgressEvent) {
		switch e.Type {
		case html2md.ProgressFailed:
			fmt.Fprintf(deps.Stderr, "skip %s: %s\n", e.Path, reason(e.Err))
			fmt.Fprintf(deps.Stdout, "[%d/%d] %s\n", e.Completed, e.Total, e.Path)
		case html2md.ProgressCompleted:
			fmt.Fprintf(deps.Stdout, "[%d/%d] %s\n", e.Completed, e.Total, e.Path)
		}
	}

	state, runErr := deps.Scheduler.RunAll(deps.Ctx, files, progress)
	if state == nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", reason(runErr))
		return runErr
	}

	printSummary(deps, state)

	if runErr != nil {
		fmt.Fprintln(deps.Stderr, "Interrupted, no output written")
		return runErr
	}
	if state.Succeeded() == 0 {
		return fmt.Errorf("all %d files failed to convert, no output written", state.Total)
	}

	doc, err := html2md.Assemble(state, c.Format)
	if err != nil {
		return err
	}

	store := deps.NewStore(outPath)
	if err := store.Save(deps.Ctx, doc); err != nil {
		_ = store.Abort()
		fmt.Fprintf(deps.Stderr, "error saving %s: %v\n", outPath, err)
		return err
	}
	if err := store.Commit(); err != nil {
		_ = store.Abort()
		fmt.Fprintf(deps.Stderr, "error committing %s: %v\n", outPath, err)
		return err
	}

	fmt.Fprintf(deps.Stdout, "Wrote %s (%d bytes, xxhash %016x)\n", outPath, len(doc), xxhash.Sum64String(doc))
	return nil
}

func printSummary(deps *Dependencies, state *html2md.State) {
	fmt.Fprintf(deps.Stdout, "Total: %d, succeeded: %d, failed: %d\n", state.Total, state.Succeeded(), state.Failed)
	failures := state.Failures()
	if len(failures) == 0 {
		return
	}
	fmt.Fprintln(deps.Stdout, "Failed files:")
	for _, r := range failures {
		fmt.Fprintf(deps.Stdout, "  %s: %s\n", r.File.Name(), html2md.FailureReason(r))
	}
}

// reason renders err for the user. Application errors show their message
// only; anything else is shown in full.
func reason(err error) string {
	if html2md.ErrorCode(err) == html2md.EINTERNAL {
		return err.Error()
	}
	return html2md.ErrorMessage(err)
}
