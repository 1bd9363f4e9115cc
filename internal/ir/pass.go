package ir

import (
	"strings"

	"github.com/iVampireSP/hiltagg/internal/classname"
)

// ProcessedRootSentinelSuffix names the sentinel written for a processed root.
const ProcessedRootSentinelSuffix = "_ProcessedRootSentinel"

// ProcessedRootSentinelPackage holds every generated sentinel.
const ProcessedRootSentinelPackage = "dagger.hilt.internal.processedrootsentinel.codegen"

// PassOptions configure one root processing pass.
type PassOptions struct {
	Options
	// DisableCrossCompilationRootValidation skips checks against roots
	// processed by earlier compilation units.
	DisableCrossCompilationRootValidation bool
}

// Result is the outcome of a pass.
type Result struct {
	RootsToProcess []AggregatedRoot
	IsTest         bool
	Trees          []ComponentTreeDeps
	// Sentinels mark RootsToProcess as processed for later units.
	Sentinels []ProcessedRootSentinel
}

// Empty reports whether the pass had nothing to do.
func (r *Result) Empty() bool {
	return len(r.RootsToProcess) == 0
}

// Process validates the roots in recs and computes the component trees for
// the roots that still need processing.
func Process(opts PassOptions, recs Records) (*Result, error) {
	roots, err := RootsToProcess(opts.DisableCrossCompilationRootValidation, recs.ProcessedRoots, recs.Roots)
	if err != nil {
		return nil, err
	}
	res := &Result{RootsToProcess: roots}
	if len(roots) == 0 {
		return res, nil
	}

	// Mixed roots were rejected above, so any test root makes a test pass.
	for _, r := range roots {
		if r.IsTestRoot() {
			res.IsTest = true
			break
		}
	}

	input := recs
	input.Roots = roots
	trees, err := BuildComponentTrees(opts.Options, res.IsTest, input)
	if err != nil {
		return nil, err
	}
	res.Trees = trees

	for _, r := range roots {
		res.Sentinels = append(res.Sentinels, SentinelFor(r.Root))
	}
	return res, nil
}

// SentinelFor returns the sentinel recording root as processed.
func SentinelFor(root classname.ClassName) ProcessedRootSentinel {
	return ProcessedRootSentinel{
		FQName: classname.Get(ProcessedRootSentinelPackage, "_"+strings.ReplaceAll(root.String(), ".", "_")+ProcessedRootSentinelSuffix),
		Roots:  []classname.ClassName{root},
	}
}
