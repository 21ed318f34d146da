package main

import (
	"context"
	"flag"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"

	"github.com/pennywise-app/pennywise/internal/importer"
	"github.com/pennywise-app/pennywise/internal/statement"
	"github.com/pennywise-app/pennywise/internal/store"
	"github.com/pennywise-app/pennywise/internal/tagging"
	"github.com/pennywise-app/pennywise/internal/ui"
)

const version = "0.1.0"

var (
	versionFlag = flag.Bool("version", false, "Show version")

	dbPath    = flag.String("db", "pennywise.db", "SQLite database file")
	rulesFile = flag.String("rules", "", "YAML rule file to load before importing")
	retag     = flag.String("retag", "", "Run the rules outside an import: untagged or all")
	dryRun    = flag.Bool("dry-run", false, "Parse the files without writing anything")
	verbose   = flag.Bool("verbose", false, "Show detailed parsing logs")
)

func main() {
	flag.Usage = func() {
		fmt.Fprint(os.Stderr, `pennywise - Bank statement importer

Usage:
  pennywise [flags] statement.csv [statement.csv ...]

Flags:
`)
		flag.PrintDefaults()
		fmt.Fprint(os.Stderr, `
Examples:
  # Import two statements into the default database
  pennywise august.csv september.csv

  # Seed tagging rules, then import
  pennywise -rules rules.yaml august.csv

  # Import every statement in a directory
  pennywise ~/statements

  # Re-tag everything after editing the rules
  pennywise -rules rules.yaml -retag all

  # Check what a file contains without writing
  pennywise -dry-run august.csv

`)
	}

	flag.Parse()

	if *versionFlag {
		fmt.Printf("pennywise version %s\n", version)
		os.Exit(0)
	}

	if *retag != "" && *retag != "untagged" && *retag != "all" {
		fmt.Fprintf(os.Stderr, "Error: -retag must be 'untagged' or 'all', got %q\n\n", *retag)
		flag.Usage()
		os.Exit(1)
	}

	if flag.NArg() == 0 && *retag == "" {
		fmt.Fprintf(os.Stderr, "Error: no statement files given\n\n")
		flag.Usage()
		os.Exit(1)
	}

	if err := run(); err != nil {
		ui.Error(err.Error())
		os.Exit(1)
	}
}

func run() error {
	ctx := context.Background()

	if *dryRun {
		return dryRunFiles(expandArgs(flag.Args()))
	}

	ui.Header("Pennywise Import")
	totalSteps := 4
	if *rulesFile != "" {
		totalSteps++
	}
	step := 0
	next := func(text string) {
		step++
		if !*verbose {
			ui.Step(step, totalSteps, text)
		} else {
			fmt.Fprintf(os.Stderr, "%s\n", text)
		}
	}

	next("Opening database")
	s, err := store.Open(*dbPath)
	if err != nil {
		return fmt.Errorf("failed to open database %s: %w", *dbPath, err)
	}
	defer s.Close()

	if *rulesFile != "" {
		next("Loading rules")
		n, err := tagging.LoadRuleFile(ctx, s, *rulesFile)
		if err != nil {
			return fmt.Errorf("failed to load rules from %s: %w", *rulesFile, err)
		}
		ui.Success(fmt.Sprintf("Loaded %d rules", n))
	}

	if *retag != "" && flag.NArg() == 0 {
		return runRetag(ctx, s)
	}

	next("Reading files")
	files, err := readFiles(expandArgs(flag.Args()))
	if err != nil {
		return err
	}

	next("Importing")
	im, err := importer.New(s)
	if err != nil {
		return err
	}
	res, err := im.Import(ctx, files)
	if err != nil {
		return err
	}

	next("Summary")
	ui.Success(fmt.Sprintf("%d transactions imported, %d duplicates skipped",
		len(res.Inserted), res.Duplicates))
	if res.TaggingErr != nil {
		ui.Warning(fmt.Sprintf("imported but tagging failed: %v", res.TaggingErr))
	} else if res.Tagging != nil && !res.Tagging.NoRules {
		ui.Info(fmt.Sprintf("%d transactions tagged", res.Tagging.Affected))
	}
	for _, b := range res.Balances {
		ui.Info(fmt.Sprintf("balance %s: %s as of %s",
			b.AccountID, b.Balance.StringFixed(2), b.AsOf.Format("2006-01-02")))
	}

	if *retag != "" {
		return runRetag(ctx, s)
	}
	return nil
}

// expandArgs replaces each directory argument with the CSV files it
// contains, non-recursively.
func expandArgs(args []string) []string {
	var out []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil || !info.IsDir() {
			out = append(out, arg)
			continue
		}
		matches, err := filepath.Glob(filepath.Join(arg, "*.csv"))
		if err != nil {
			out = append(out, arg)
			continue
		}
		out = append(out, matches...)
	}
	return out
}

// readFiles loads the statement files named on the command line, inferring
// the content type from the extension the way a browser upload would.
func readFiles(paths []string) ([]importer.File, error) {
	var files []importer.File
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
		ct := mime.TypeByExtension(filepath.Ext(path))
		if ct == "" || strings.HasPrefix(ct, "text/plain") {
			ct = "text/csv"
		}
		files = append(files, importer.File{
			Name:        filepath.Base(path),
			ContentType: ct,
			Data:        data,
		})
	}
	return files, nil
}

func dryRunFiles(paths []string) error {
	ui.Header("Pennywise Dry Run")
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}
		st, err := statement.Parse(string(data))
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		ui.Success(fmt.Sprintf("%s: %d transactions", filepath.Base(path), len(st.Drafts)))
		if st.Balance != nil {
			ui.Info(fmt.Sprintf("balance %s: %s as of %s",
				st.Balance.AccountID,
				st.Balance.Balance.StringFixed(2),
				st.Balance.AsOf.Format("2006-01-02")))
		}
		if *verbose {
			for _, d := range st.Drafts {
				fmt.Fprintf(os.Stderr, "  %s  %10s  %s\n",
					d.Date.Format("2006-01-02"), d.Amount.StringFixed(2), d.Description)
			}
		}
	}
	fmt.Printf("Dry run complete. Nothing was written.\n")
	return nil
}

func runRetag(ctx context.Context, s *store.Store) error {
	eng, err := tagging.NewEngine(s)
	if err != nil {
		return err
	}

	var res *tagging.Result
	if *retag == "untagged" {
		res, err = eng.ApplyUntagged(ctx)
	} else {
		res, err = eng.ApplyAll(ctx)
	}
	if err != nil {
		return err
	}
	if res.NoRules {
		ui.Warning("no rules defined, nothing to re-tag")
		return nil
	}
	ui.Success(fmt.Sprintf("%d transactions tagged across %d tags",
		res.Affected, len(res.TagsApplied)))
	return nil
}
