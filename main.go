// Package main implements hiltagg, the aggregating root processor of the
// Hilt Android integration as a standalone build step.
//
// Compilation units leave aggregated records behind: roots, processed root
// sentinels, aggregated deps, uninstall directives, early entry points,
// alias-of and define-component data. hiltagg collects them, validates the
// roots across units and computes the component trees a code generator must
// emit for the roots that are still unprocessed.
//
// Processing flow:
//
//  1. Find the root (directory containing go.mod) and resolve options from
//     generate.go, hilt.yaml, HILT_* env vars and flags
//  2. Read *.hilt.yaml record files below the metadata dir
//  3. Scan configured Go packages for //hilt: marker declarations
//  4. Validate roots against processed root sentinels
//  5. Build one ComponentTreeDeps per component tree
//  6. Write the trees plus a processed root sentinel per root
//
// Usage:
//
//	//go:generate go run github.com/iVampireSP/hiltagg@latest process
package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/iVampireSP/hiltagg/internal/classname"
	"github.com/iVampireSP/hiltagg/internal/ir"
	"github.com/iVampireSP/hiltagg/internal/metadata"
	"github.com/spf13/cobra"
)

// MetadataIgnoreFile holds ignore patterns for the metadata dir.
const MetadataIgnoreFile = ".hiltignore"

type app struct {
	dir        string
	configFile string
	verbose    bool
	logger     *log.Logger
}

func main() {
	a := &app{logger: log.NewWithOptions(os.Stderr, log.Options{Prefix: "hiltagg"})}
	if err := a.rootCommand().Execute(); err != nil {
		a.logger.Error(err)
		os.Exit(1)
	}
}

func (a *app) rootCommand() *cobra.Command {
	root := &cobra.Command{
		Use:   "hiltagg",
		Short: "Aggregate Hilt root metadata into component trees",
		Long: `hiltagg reads the aggregated records left by independently compiled units,
validates the roots and computes the component trees to generate.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRun: func(cmd *cobra.Command, _ []string) {
			a.logger.SetOutput(cmd.ErrOrStderr())
			if a.verbose {
				a.logger.SetLevel(log.DebugLevel)
			}
		},
	}

	defaults := ir.DefaultOptions()
	pf := root.PersistentFlags()
	pf.BoolVarP(&a.verbose, "verbose", "v", false, "enable verbose logging")
	pf.StringVarP(&a.dir, "dir", "C", ".", "directory to run in; the enclosing module root is used")
	pf.StringVar(&a.configFile, "config", "", "config file (default is <root>/hilt.yaml)")
	pf.String(keyMetadataDir, "build/hilt", "directory holding *.hilt.yaml record files")
	pf.String(keyOutputDir, "", "directory receiving generated records (default is the metadata dir)")
	pf.StringSlice(keyPackages, nil, "Go package patterns holding //hilt: markers")
	pf.StringSlice(keyExclude, nil, "gitignore-style patterns to skip")
	pf.Bool(keyDisableCrossCompilationRootValid, false, "skip validation against roots processed by earlier compilation units")
	pf.Bool(keyShareTestComponents, false, "merge compatible test roots into one shared component tree")
	pf.String(keyDefaultRoot, defaults.DefaultRoot.String(), "synthetic root of the shared and early entry point trees")
	pf.String(keySharedDestinationPackage, defaults.SharedDestinationPackage, "package of test trees when sharing is enabled")
	pf.StringSlice(keyEarlyEntryPointExcluded, []string{ir.SingletonComponent.String()}, "components whose entry points stay out of the early entry point tree")

	root.AddCommand(a.processCommand(), a.validateCommand(), a.namesCommand())
	return root
}

func (a *app) processCommand() *cobra.Command {
	var dryRun bool
	cmd := &cobra.Command{
		Use:   "process",
		Short: "Validate roots, build component trees and write them",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, set, err := a.load(cmd)
			if err != nil {
				return err
			}
			opts, err := cfg.PassOptions()
			if err != nil {
				return err
			}

			// ── Validate roots and build trees ──

			res, err := ir.Process(opts, set.Records)
			if err != nil {
				return err
			}
			if res.Empty() {
				a.logger.Info("no roots to process")
				return nil
			}
			a.logger.Debug("processing roots", "count", len(res.RootsToProcess), "test", res.IsTest, "shared", opts.SharedTestComponents)
			for _, tree := range res.Trees {
				a.logger.Debug("component tree", "name", tree.Name,
					"roots", len(tree.RootDeps), "deps", len(tree.AggregatedDeps),
					"uninstall", len(tree.UninstallModulesDeps), "early", len(tree.EarlyEntryPointDeps))
			}

			var docs []metadata.Doc
			for _, tree := range res.Trees {
				docs = append(docs, metadata.TreeDoc(tree))
			}
			for _, s := range res.Sentinels {
				docs = append(docs, metadata.SentinelDoc(s))
			}

			if dryRun {
				return metadata.Encode(cmd.OutOrStdout(), docs...)
			}
			w := &metadata.Writer{Dir: cfg.OutputDir}
			paths, err := w.Write(docs...)
			for _, p := range paths {
				a.logger.Debug("wrote", "path", p)
			}
			if err != nil {
				return err
			}
			a.logger.Info("generated component trees", "trees", len(res.Trees), "roots", len(res.RootsToProcess), "dir", cfg.OutputDir)
			return nil
		},
	}
	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "print generated records instead of writing them")
	return cmd
}

func (a *app) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate",
		Short: "Validate roots and list those still to process",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, set, err := a.load(cmd)
			if err != nil {
				return err
			}
			roots, err := ir.RootsToProcess(cfg.DisableCrossCompilationRootValidation, set.ProcessedRoots, set.Roots)
			if err != nil {
				return err
			}
			printRoots(cmd.OutOrStdout(), roots)
			return nil
		},
	}
}

func printRoots(out io.Writer, roots []ir.AggregatedRoot) {
	if len(roots) == 0 {
		fmt.Fprintln(out, "no roots to process")
		return
	}
	for _, r := range roots {
		kind := "app"
		if r.IsTestRoot() {
			kind = "test"
		}
		fmt.Fprintf(out, "%s\t%s\n", kind, r.Root)
	}
}

func (a *app) namesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "names ROOT...",
		Short: "Print the component tree name generated for each root",
		Long: `Print the component tree name generated for each root. With
--share-test-components the names are placed in the shared destination
package and disambiguated against each other.`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			root, err := findRoot(a.dir)
			if err != nil {
				return err
			}
			cfg, err := LoadConfig(root, a.configFile, cmd.Flags())
			if err != nil {
				return err
			}

			var roots []classname.ClassName
			for _, arg := range args {
				c, err := classname.Parse(arg)
				if err != nil {
					return err
				}
				if c.IsZero() {
					return fmt.Errorf("empty root name")
				}
				roots = append(roots, c)
			}

			gen := &ir.NameGenerator{}
			if cfg.ShareTestComponents {
				gen = &ir.NameGenerator{DestinationPackage: cfg.SharedDestinationPackage, OtherRootNames: roots}
			}
			for _, r := range roots {
				name, err := gen.Generate(r)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "%s\t%s\n", r, name)
			}
			return nil
		},
	}
}

// load resolves the configuration and collects every record visible to
// this pass.
func (a *app) load(cmd *cobra.Command) (*Config, *metadata.Set, error) {
	root, err := findRoot(a.dir)
	if err != nil {
		return nil, nil, err
	}
	cfg, err := LoadConfig(root, a.configFile, cmd.Flags())
	if err != nil {
		return nil, nil, err
	}
	a.logger.Debug("config", "root", cfg.Root, "module", cfg.Module, "metadata", cfg.MetadataDir)

	// ── Pass 1: record files ──

	set := &metadata.Set{}
	if _, err := os.Stat(cfg.MetadataDir); err == nil {
		ignore := NewIgnoreMatcher(LoadIgnoreFile(filepath.Join(cfg.MetadataDir, MetadataIgnoreFile)), cfg.Exclude...)
		set, err = metadata.Load(cfg.MetadataDir, ignore.Ignored)
		if err != nil {
			return nil, nil, err
		}
	} else if errors.Is(err, os.ErrNotExist) {
		a.logger.Warn("metadata dir does not exist", "dir", cfg.MetadataDir)
	} else {
		return nil, nil, err
	}
	a.logger.Debug("read record files", "records", set.Count(), "trees", len(set.Trees))

	// ── Pass 2: Go marker packages ──

	ignore := NewIgnoreMatcher(LoadIgnoreFile(filepath.Join(root, ".gitignore")), cfg.Exclude...)
	n, err := NewScanner(cfg, ignore).Scan(set)
	if err != nil {
		return nil, nil, err
	}
	if len(cfg.Packages) > 0 {
		a.logger.Debug("scanned marker packages", "patterns", cfg.Packages, "markers", n)
	}
	return cfg, set, nil
}
