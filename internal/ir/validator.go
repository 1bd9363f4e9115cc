package ir

import (
	"errors"
	"fmt"
	"slices"
	"strings"

	"github.com/iVampireSP/hiltagg/internal/classname"
)

// ErrInvalidRoots matches every *InvalidRootsError via errors.Is.
var ErrInvalidRoots = errors.New("invalid roots")

// InvalidRootsKind classifies a root validation failure.
type InvalidRootsKind int

const (
	// MultipleAppRoots: more than one production root in this unit.
	MultipleAppRoots InvalidRootsKind = iota + 1
	// MixedAppAndTestRoots: test and production roots in the same unit.
	MixedAppAndTestRoots
	// StaleTestRootConflict: new roots after a test root was processed by
	// an earlier unit.
	StaleTestRootConflict
	// StaleAppRootConflict: new production roots after a production root
	// was processed by an earlier unit.
	StaleAppRootConflict
)

func (k InvalidRootsKind) String() string {
	switch k {
	case MultipleAppRoots:
		return "MultipleAppRoots"
	case MixedAppAndTestRoots:
		return "MixedAppAndTestRoots"
	case StaleTestRootConflict:
		return "StaleTestRootConflict"
	case StaleAppRootConflict:
		return "StaleAppRootConflict"
	default:
		return fmt.Sprintf("InvalidRootsKind(%d)", int(k))
	}
}

// InvalidRootsError reports a root configuration that cannot be processed.
// The message names every offending root.
type InvalidRootsError struct {
	Kind InvalidRootsKind
	Msg  string
}

func (e *InvalidRootsError) Error() string {
	return e.Msg
}

// Is makes errors.Is(err, ErrInvalidRoots) hold.
func (e *InvalidRootsError) Is(target error) bool {
	return target == ErrInvalidRoots
}

// RootsToProcess returns the aggregated roots not already covered by a
// processed root sentinel, sorted by root name.
//
// Unless crossValidationDisabled is set, roots processed by earlier
// compilation units are checked against the new ones as well.
func RootsToProcess(crossValidationDisabled bool, processed []ProcessedRootSentinel, roots []AggregatedRoot) ([]AggregatedRoot, error) {
	processedNames := make(map[classname.ClassName]bool)
	for _, p := range processed {
		for _, r := range p.Roots {
			processedNames[r] = true
		}
	}

	var toProcess []AggregatedRoot
	seen := make(map[AggregatedRoot]bool)
	for _, r := range roots {
		if processedNames[r.Root] || seen[r] {
			continue
		}
		seen[r] = true
		toProcess = append(toProcess, r)
	}
	sortRoots(toProcess)

	var testRoots, appRoots []AggregatedRoot
	for _, r := range toProcess {
		if r.IsTestRoot() {
			testRoots = append(testRoots, r)
		} else {
			appRoots = append(appRoots, r)
		}
	}

	if len(appRoots) > 1 {
		return nil, &InvalidRootsError{
			Kind: MultipleAppRoots,
			Msg: "Cannot process multiple app roots in the same compilation unit: " +
				rootsToString(appRoots),
		}
	}

	if len(testRoots) > 0 && len(appRoots) > 0 {
		return nil, &InvalidRootsError{
			Kind: MixedAppAndTestRoots,
			Msg: "Cannot process test roots and app roots in the same compilation unit:\n" +
				"  App root in this compilation unit: " + rootsToString(appRoots) + "\n" +
				"  Test roots in this compilation unit: " + rootsToString(testRoots),
		}
	}

	if crossValidationDisabled {
		return toProcess, nil
	}

	var processedTestRoots, processedAppRoots []AggregatedRoot
	for _, r := range roots {
		if !processedNames[r.Root] || seen[r] {
			continue
		}
		seen[r] = true
		if r.IsTestRoot() {
			processedTestRoots = append(processedTestRoots, r)
		} else {
			processedAppRoots = append(processedAppRoots, r)
		}
	}
	sortRoots(processedTestRoots)
	sortRoots(processedAppRoots)

	if len(processedTestRoots) > 0 && len(toProcess) > 0 {
		return nil, &InvalidRootsError{
			Kind: StaleTestRootConflict,
			Msg: "Cannot process new roots when there are test roots from a previous compilation unit:\n" +
				"  Test roots from previous compilation unit: " + rootsToString(processedTestRoots) + "\n" +
				"  All roots from this compilation unit: " + rootsToString(toProcess),
		}
	}

	if len(processedAppRoots) > 0 && len(appRoots) > 0 {
		return nil, &InvalidRootsError{
			Kind: StaleAppRootConflict,
			Msg: "Cannot process new app roots when there are app roots from a previous compilation unit:\n" +
				"  App roots in previous compilation unit: " + rootsToString(processedAppRoots) + "\n" +
				"  App roots in this compilation unit: " + rootsToString(appRoots),
		}
	}

	return toProcess, nil
}

func sortRoots(roots []AggregatedRoot) {
	slices.SortStableFunc(roots, func(a, b AggregatedRoot) int {
		if c := classname.Compare(a.Root, b.Root); c != 0 {
			return c
		}
		return classname.Compare(a.FQName, b.FQName)
	})
}

func rootsToString(roots []AggregatedRoot) string {
	names := make([]string, len(roots))
	for i, r := range roots {
		names[i] = r.Root.String()
	}
	return strings.Join(names, ", ")
}
