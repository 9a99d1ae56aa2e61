// Command report prints one dashboard page as text tables.
package main

import (
	"flag"
	"fmt"
	"log/slog"
	"os"
	"shopstats/internal/config"
	"shopstats/internal/dashboard"
	"shopstats/internal/engine"
	"shopstats/internal/logging"
	"shopstats/internal/render"
	"strings"
)

// listFlag collects a repeatable, comma separated flag. Set records that
// the flag was given at all, so "-season=" selects nothing.
type listFlag struct {
	set    bool
	values []string
}

func (f *listFlag) String() string { return strings.Join(f.values, ",") }

func (f *listFlag) Set(s string) error {
	f.set = true
	for _, v := range strings.Split(s, ",") {
		if v = strings.TrimSpace(v); v != "" {
			f.values = append(f.values, v)
		}
	}
	return nil
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	var (
		category, season listFlag
		dataPath         = flag.String("data", cfg.DataPath, "path to the purchases CSV")
		slug             = flag.String("page", "home", "dashboard page to print")
		format           = flag.String("format", render.FormatTable, "output format: table or markdown")
	)
	flag.Var(&category, "category", "category filter, repeatable or comma separated")
	flag.Var(&season, "season", "season filter, repeatable or comma separated")
	flag.Parse()

	slog.SetDefault(logging.New(os.Stderr, cfg.LogLevel, cfg.LogFormat))

	if err := run(*dataPath, *slug, *format, selection(category, season)); err != nil {
		slog.Error("report failed", slog.Any("err", err))
		os.Exit(1)
	}
}

func selection(category, season listFlag) engine.Selection {
	sel := engine.Selection{}
	if category.set {
		sel[engine.ColCategory] = category.values
	}
	if season.set {
		sel[engine.ColSeason] = season.values
	}
	return sel
}

func run(path, slug, format string, sel engine.Selection) error {
	page, ok := dashboard.Lookup(slug)
	if !ok {
		return fmt.Errorf("unknown page %q", slug)
	}
	store, err := engine.LoadColumnar(path, engine.RetailSchema)
	if err != nil {
		return err
	}
	view, err := dashboard.Evaluate(store, page, sel)
	if err != nil {
		return err
	}
	out, err := render.PageTable(view, format)
	if err != nil {
		return err
	}
	fmt.Print(out)
	return nil
}
