package cmd

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/WowJuicy/QuickLauncher-v2/internal/launch"
	"github.com/WowJuicy/QuickLauncher-v2/internal/queue"
)

var runCmd = &cobra.Command{
	Use:   "run [input]",
	Short: "Launch by keyword, or search for a program by name",
	Long: `Resolve the input and open it. Without input, start an interactive prompt.

Each command is a keyword with an optional argument ("wiki zelda") or a
program name to search for ("halo"). Separate several commands with two or
more spaces; quote the input to keep them:

  qlaunch run steam
  qlaunch run "halo  wiki master chief  yt lofi"

Ctrl-C during a search cancels it and drops the remaining commands.
Ctrl-C at the prompt exits.`,
	RunE: runRun,
}

func init() {
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.close()

	ctx, stop := context.WithCancel(cmd.Context())
	defer stop()

	in := newLineReader(os.Stdin)
	q := queue.New(queue.Deps{
		Cache:     a.cache,
		Searcher:  a.coord,
		Expander:  a.expander(),
		Opener:    launch.SystemOpener{},
		Processes: launch.SystemProcessChecker{},
		Chooser:   &promptChooser{in: in, flush: a.flush},
		Emitter:   a.em,
		Logger:    a.logger,
	})

	sigc := make(chan os.Signal, 1)
	signal.Notify(sigc, os.Interrupt)
	defer signal.Stop(sigc)
	go func() {
		for {
			select {
			case <-sigc:
				if q.Busy() {
					q.Cancel()
					continue
				}
				stop()
				return
			case <-ctx.Done():
				return
			}
		}
	}()

	if len(args) > 0 {
		_, err := q.Submit(ctx, strings.Join(args, " "))
		return err
	}

	fmt.Println("Enter a game name or command (Ctrl-C or \"exit\" to quit).")
	for {
		fmt.Print("qlaunch> ")
		line, err := in.readLine(ctx)
		if err != nil {
			fmt.Println()
			if errors.Is(err, io.EOF) || errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		}
		switch strings.TrimSpace(line) {
		case "exit", "quit":
			return nil
		}
		if _, err := q.Submit(ctx, line); err != nil {
			printErr("", err.Error())
		}
	}
}

// lineReader reads stdin on its own goroutine so waiting for a line can be
// abandoned when the context ends.
type lineReader struct {
	lines chan string
	err   chan error
}

func newLineReader(r io.Reader) *lineReader {
	lr := &lineReader{lines: make(chan string), err: make(chan error, 1)}
	go func() {
		sc := bufio.NewScanner(r)
		for sc.Scan() {
			lr.lines <- sc.Text()
		}
		if err := sc.Err(); err != nil {
			lr.err <- err
			return
		}
		lr.err <- io.EOF
	}()
	return lr
}

func (lr *lineReader) readLine(ctx context.Context) (string, error) {
	select {
	case line := <-lr.lines:
		return line, nil
	case err := <-lr.err:
		lr.err <- err // keep reporting it
		return "", err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// promptChooser lists candidates and reads the user's pick from stdin.
// Enter accepts the first candidate. flush, when set, runs before anything
// is printed so the list never interleaves with status output.
type promptChooser struct {
	in    *lineReader
	flush func(context.Context)
}

func (c *promptChooser) Choose(ctx context.Context, name string, candidates []string) (string, error) {
	if c.flush != nil {
		c.flush(ctx)
	}
	for i, p := range candidates {
		fmt.Printf("  %2d) %s\n", i+1, p)
	}
	for {
		fmt.Printf("Launch which %s? [1-%d, Enter=1, n=none] ", name, len(candidates))
		line, err := c.in.readLine(ctx)
		if err != nil {
			fmt.Println()
			return "", err
		}
		answer := strings.TrimSpace(strings.ToLower(line))
		switch answer {
		case "":
			return candidates[0], nil
		case "n", "no", "q":
			return "", queue.ErrNoChoice
		}
		n, err := strconv.Atoi(answer)
		if err == nil && n >= 1 && n <= len(candidates) {
			return candidates[n-1], nil
		}
		printWarn("", fmt.Sprintf("enter a number between 1 and %d", len(candidates)))
	}
}
