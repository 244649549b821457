package main

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/vango-dev/ripple/internal/errors"
	"github.com/vango-dev/ripple/pkg/hook"
	"github.com/vango-dev/ripple/pkg/reactive"
	"github.com/vango-dev/ripple/pkg/view"
)

func demoCmd() *cobra.Command {
	var steps int

	cmd := &cobra.Command{
		Use:   "demo",
		Short: "Run the counter scenario and print every render",
		Long: `Mount a parent component holding a count, increment the count a few
times and print each component that re-renders. Only the children that
read the count re-render; the parent does not.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if steps < 0 {
				return errors.New("R021").WithField("--steps").
					WithSuggestion("Pass a number of increments of 0 or more")
			}
			_, logger, err := loadConfig(cmd.ErrOrStderr())
			if err != nil {
				return err
			}
			graph := reactive.NewGraph(reactive.WithLogger(logger))
			return runDemo(cmd.OutOrStdout(), graph, steps, hook.WithLogger(logger))
		},
	}

	cmd.Flags().IntVarP(&steps, "steps", "n", 3, "Number of increments")

	return cmd
}

// runDemo mounts the counter app and increments it steps times, writing
// each render to w.
func runDemo(w io.Writer, graph *reactive.Graph, steps int, opts ...hook.TreeOption) error {
	opts = append(opts, hook.WithPatcher(hook.PatcherFunc(func(inst *hook.Instance, _, next any) {
		info(w, "%-8s %s", inst.Name(), renderString(next))
	})))
	app := newCounterApp(graph, nil, opts...)

	printBanner(w)
	fmt.Fprintln(w)
	success(w, "mounted %s", app.mount())
	for i := 1; i <= steps; i++ {
		fmt.Fprintf(w, "\n  count.Set(%d)\n", i)
		app.increment()
	}
	fmt.Fprintln(w)
	return nil
}

func renderString(v any) string {
	if n, ok := v.(*view.Node); ok {
		return n.String()
	}
	return fmt.Sprint(v)
}
