package collect

import (
	"context"
	"errors"
	"os"
	"sync"

	"golang.org/x/sync/errgroup"

	"tsmend/internal/config"
	"tsmend/internal/diag"
)

// Collector gathers diagnostics from the configured checker and linter.
type Collector struct {
	Runner Runner
	Cfg    config.ToolsConfig
	Root   string
}

// New builds a Collector with a real subprocess runner.
func New(root string, cfg config.ToolsConfig) *Collector {
	return &Collector{
		Runner: ExecRunner{Timeout: cfg.Timeout()},
		Cfg:    cfg,
		Root:   root,
	}
}

// Warning describes a non-fatal collection problem (one tool timing out
// or exiting unparseably) surfaced in the report.
type Warning struct {
	Tool string
	Err  error
}

// Collect runs both tools concurrently and parses their combined output.
// A missing binary is fatal; a timeout drops that one tool's records and
// is returned as a warning.
func (c *Collector) Collect(ctx context.Context, maxDiagnostics int) (*diag.Bag, []Warning, error) {
	bag := diag.NewBag(maxDiagnostics)
	parser := Parser{
		Root: c.Root,
		FileExists: func(path string) bool {
			_, err := os.Stat(path)
			return err == nil
		},
	}

	var (
		mu       sync.Mutex
		warnings []Warning
	)

	// Оба инструмента блокирующие и долгие; гоняем их параллельно,
	// парсим последовательно под мьютексом.
	g, gctx := errgroup.WithContext(ctx)

	run := func(name string, argv []string, parse func(string, *diag.Bag)) func() error {
		return func() error {
			if len(argv) == 0 {
				return nil
			}
			res, err := c.Runner.Run(gctx, c.Root, argv)
			if err != nil {
				if errors.Is(err, ErrToolTimeout) {
					mu.Lock()
					warnings = append(warnings, Warning{Tool: name, Err: err})
					mu.Unlock()
					return nil
				}
				return err // missing binary and friends: fatal
			}
			mu.Lock()
			parse(res.Combined(), bag)
			mu.Unlock()
			return nil
		}
	}

	g.Go(run("checker", c.Cfg.Checker, parser.ParseTsc))
	g.Go(run("linter", c.Cfg.Linter, parser.ParseEslint))

	if err := g.Wait(); err != nil {
		return nil, warnings, err
	}

	bag.Dedup()
	bag.Sort()
	return bag, warnings, nil
}

// Checkpoint re-runs the type-checker only and reports whether the
// project is clean. Used by the orchestrator between file batches.
func (c *Collector) Checkpoint(ctx context.Context) (bool, error) {
	res, err := c.Runner.Run(ctx, c.Root, c.Cfg.Checker)
	if err != nil {
		return false, err
	}
	return res.ExitCode == 0, nil
}
