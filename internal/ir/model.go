// Package ir holds the aggregated metadata records of one root processing
// pass and the pure algorithms over them: root validation, component tree
// dependency creation and generated name assignment.
//
// Records are plain values. Nothing in this package performs I/O or keeps
// state between calls, so identical inputs always produce identical outputs
// no matter the order in which the records were discovered.
package ir

import (
	"slices"

	"github.com/iVampireSP/hiltagg/internal/classname"
)

// Well known classes of the Android integration.
var (
	HiltAndroidApp     = classname.Get("dagger.hilt.android", "HiltAndroidApp")
	HiltAndroidTest    = classname.Get("dagger.hilt.android.testing", "HiltAndroidTest")
	InternalTestRoot   = classname.Get("dagger.hilt.android.internal.testing", "InternalTestRoot")
	SingletonComponent = classname.Get("dagger.hilt.components", "SingletonComponent")

	// ApplicationComponent is the legacy name of SingletonComponent still
	// emitted by old processors.
	ApplicationComponent = classname.Get("dagger.hilt.android.components", "ApplicationComponent")

	DefaultRoot              = classname.Get("dagger.hilt.android.internal.testing.root", "Default")
	SharedDestinationPackage = "dagger.hilt.android.internal.testing.root"
)

var testRootAnnotations = []classname.ClassName{HiltAndroidTest, InternalTestRoot}

// IsTestRootAnnotation reports whether roots introduced by annotation are
// test roots.
func IsTestRootAnnotation(annotation classname.ClassName) bool {
	return slices.Contains(testRootAnnotations, annotation)
}

// AggregatedRoot is the marker left behind for every root found in some
// compilation unit.
type AggregatedRoot struct {
	FQName          classname.ClassName // the marker itself
	Root            classname.ClassName
	OriginatingRoot classname.ClassName // user written root; equals Root unless Root was generated
	RootAnnotation  classname.ClassName

	// AllowsSharingComponent lets a test root take part in the shared
	// test component. Decoders default it to true.
	AllowsSharingComponent bool
}

// IsTestRoot reports whether r was introduced by a test root annotation.
func (r AggregatedRoot) IsTestRoot() bool {
	return IsTestRootAnnotation(r.RootAnnotation)
}

// ProcessedRootSentinel lists roots already processed by an earlier
// compilation unit.
type ProcessedRootSentinel struct {
	FQName classname.ClassName
	Roots  []classname.ClassName
}

// AggregatedDeps is one module, entry point or component entry point
// contribution. Exactly one of Module, EntryPoint and ComponentEntryPoint is
// set. A zero Test means the contribution is global.
type AggregatedDeps struct {
	FQName              classname.ClassName
	Components          []classname.ClassName
	Test                classname.ClassName
	Replaces            []classname.ClassName
	Module              classname.ClassName
	EntryPoint          classname.ClassName
	ComponentEntryPoint classname.ClassName
}

// IsModule reports whether d contributes a module.
func (d AggregatedDeps) IsModule() bool {
	return !d.Module.IsZero()
}

// IsGlobal reports whether d is not bound to a specific test root.
func (d AggregatedDeps) IsGlobal() bool {
	return d.Test.IsZero()
}

// AggregatedUninstallModules lists modules a test root uninstalls.
type AggregatedUninstallModules struct {
	FQName           classname.ClassName
	Test             classname.ClassName
	UninstallModules []classname.ClassName
}

// AggregatedEarlyEntryPoint is an entry point usable before the test
// component is created.
type AggregatedEarlyEntryPoint struct {
	FQName          classname.ClassName
	EarlyEntryPoint classname.ClassName
}

// AliasOfPropagatedData records a scope alias; passed through unchanged.
type AliasOfPropagatedData struct {
	FQName               classname.ClassName
	DefineComponentScope classname.ClassName
	Alias                classname.ClassName
}

// DefineComponentClasses records a custom component declaration; passed
// through unchanged.
type DefineComponentClasses struct {
	FQName    classname.ClassName
	Component classname.ClassName
}

// ComponentTreeDeps is the resolved input of one generated component tree.
// All dependency sets hold marker fq names.
type ComponentTreeDeps struct {
	Name                 classname.ClassName
	RootDeps             Set
	DefineComponentDeps  Set
	AliasOfDeps          Set
	AggregatedDeps       Set
	UninstallModulesDeps Set
	EarlyEntryPointDeps  Set
}

// Records bundles every record visible to one processing pass.
type Records struct {
	Roots            []AggregatedRoot
	ProcessedRoots   []ProcessedRootSentinel
	DefineComponents []DefineComponentClasses
	AliasOfs         []AliasOfPropagatedData
	Deps             []AggregatedDeps
	UninstallModules []AggregatedUninstallModules
	EarlyEntryPoints []AggregatedEarlyEntryPoint
}

// Merge appends the records of o to r.
func (r *Records) Merge(o Records) {
	r.Roots = append(r.Roots, o.Roots...)
	r.ProcessedRoots = append(r.ProcessedRoots, o.ProcessedRoots...)
	r.DefineComponents = append(r.DefineComponents, o.DefineComponents...)
	r.AliasOfs = append(r.AliasOfs, o.AliasOfs...)
	r.Deps = append(r.Deps, o.Deps...)
	r.UninstallModules = append(r.UninstallModules, o.UninstallModules...)
	r.EarlyEntryPoints = append(r.EarlyEntryPoints, o.EarlyEntryPoints...)
}

// Count returns the total number of records.
func (r Records) Count() int {
	return len(r.Roots) + len(r.ProcessedRoots) + len(r.DefineComponents) +
		len(r.AliasOfs) + len(r.Deps) + len(r.UninstallModules) + len(r.EarlyEntryPoints)
}
