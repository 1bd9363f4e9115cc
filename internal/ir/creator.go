package ir

import (
	"fmt"
	"slices"

	"github.com/iVampireSP/hiltagg/internal/classname"
)

// Options tune component tree creation.
type Options struct {
	// SharedTestComponents merges compatible test roots into one tree.
	SharedTestComponents bool
	// DefaultRoot names the synthetic root of the shared / early entry
	// point tree. Zero means the package level DefaultRoot.
	DefaultRoot classname.ClassName
	// SharedDestinationPackage receives every test tree when sharing is
	// enabled. Empty means the package level SharedDestinationPackage.
	SharedDestinationPackage string
	// EarlyEntryPointExcludedComponents are components whose global entry
	// points are left out of the early entry point tree: they are already
	// installed there by the framework.
	EarlyEntryPointExcludedComponents []classname.ClassName
}

// DefaultOptions returns the options used by the Android integration.
func DefaultOptions() Options {
	return Options{
		DefaultRoot:                       DefaultRoot,
		SharedDestinationPackage:          SharedDestinationPackage,
		EarlyEntryPointExcludedComponents: []classname.ClassName{SingletonComponent},
	}
}

func (o Options) defaultRoot() classname.ClassName {
	if o.DefaultRoot.IsZero() {
		return DefaultRoot
	}
	return o.DefaultRoot
}

func (o Options) sharedDestinationPackage() string {
	if o.SharedDestinationPackage == "" {
		return SharedDestinationPackage
	}
	return o.SharedDestinationPackage
}

// BuildComponentTrees computes the component trees to generate for recs.
// recs.Roots must already be the roots to process (see RootsToProcess).
// The result is sorted by tree name.
func BuildComponentTrees(opts Options, isTest bool, recs Records) ([]ComponentTreeDeps, error) {
	c := &treeCreator{opts: opts, recs: recs}
	var (
		trees []ComponentTreeDeps
		err   error
	)
	if isTest {
		trees, err = c.testComponents()
	} else {
		trees, err = c.prodComponents()
	}
	if err != nil {
		return nil, err
	}
	slices.SortFunc(trees, func(a, b ComponentTreeDeps) int {
		return classname.Compare(a.Name, b.Name)
	})
	return trees, nil
}

type treeCreator struct {
	opts Options
	recs Records
}

func (c *treeCreator) defineComponentDeps() Set {
	return fqNames(c.recs.DefineComponents, func(d DefineComponentClasses) classname.ClassName { return d.FQName })
}

func (c *treeCreator) aliasOfDeps() Set {
	return fqNames(c.recs.AliasOfs, func(a AliasOfPropagatedData) classname.ClassName { return a.FQName })
}

func (c *treeCreator) prodComponents() ([]ComponentTreeDeps, error) {
	roots := distinctRoots(c.recs.Roots)
	if len(roots) != 1 {
		return nil, fmt.Errorf("expected exactly one production root, found %d: %s", len(roots), rootsToString(roots))
	}
	root := roots[0]

	gen := &NameGenerator{}
	name, err := gen.Generate(root.Root)
	if err != nil {
		return nil, err
	}

	// Deps with replacements come from test-only install directives and
	// never reach production components.
	var deps []classname.ClassName
	for _, d := range c.recs.Deps {
		if len(d.Replaces) == 0 {
			deps = append(deps, d.FQName)
		}
	}

	return []ComponentTreeDeps{{
		Name:                name,
		RootDeps:            NewSet(root.FQName),
		DefineComponentDeps: c.defineComponentDeps(),
		AliasOfDeps:         c.aliasOfDeps(),
		AggregatedDeps:      NewSet(deps...),
	}}, nil
}

func (c *treeCreator) testComponents() ([]ComponentTreeDeps, error) {
	defaultRoot := c.opts.defaultRoot()
	roots := distinctRoots(c.recs.Roots)

	rootsByName := make(map[classname.ClassName]AggregatedRoot, len(roots))
	for _, r := range roots {
		if _, ok := rootsByName[r.Root]; !ok {
			rootsByName[r.Root] = r
		}
	}

	shared := c.rootsUsingSharedComponent(roots)
	depsByRoot := c.aggregatedDepsByRoot(roots, shared, len(c.recs.EarlyEntryPoints) > 0)

	// A root may carry several uninstall directives. The tree takes their
	// union so the result does not depend on record order.
	uninstallByRoot := make(map[classname.ClassName][]classname.ClassName)
	for _, u := range c.recs.UninstallModules {
		uninstallByRoot[u.Test] = append(uninstallByRoot[u.Test], u.FQName)
	}

	// Generated names are based on the user written root, not a generated one.
	rootName := func(root classname.ClassName) classname.ClassName {
		if root == defaultRoot {
			return defaultRoot
		}
		return rootsByName[root].OriginatingRoot
	}

	gen := &NameGenerator{}
	if c.opts.SharedTestComponents {
		others := make([]classname.ClassName, 0, len(depsByRoot))
		for root := range depsByRoot {
			others = append(others, rootName(root))
		}
		gen = &NameGenerator{
			DestinationPackage: c.opts.sharedDestinationPackage(),
			OtherRootNames:     others,
		}
	}

	defineComponentDeps := c.defineComponentDeps()
	aliasOfDeps := c.aliasOfDeps()

	treeRoots := make([]classname.ClassName, 0, len(depsByRoot))
	for root := range depsByRoot {
		treeRoots = append(treeRoots, root)
	}
	slices.SortFunc(treeRoots, classname.Compare)

	namedBy := make(map[classname.ClassName]classname.ClassName, len(treeRoots))
	trees := make([]ComponentTreeDeps, 0, len(treeRoots))
	for _, root := range treeRoots {
		deps := depsByRoot[root]
		isDefault := root == defaultRoot
		name, err := gen.Generate(rootName(root))
		if err != nil {
			return nil, err
		}
		if other, ok := namedBy[name]; ok {
			return nil, fmt.Errorf("roots %s and %s both generate component tree %s", other, root, name)
		}
		namedBy[name] = root

		tree := ComponentTreeDeps{
			Name:                 name,
			DefineComponentDeps:  defineComponentDeps,
			AliasOfDeps:          aliasOfDeps,
			AggregatedDeps:       NewSet(deps...),
			UninstallModulesDeps: NewSet(uninstallByRoot[root]...),
		}
		switch {
		case isDefault:
			// Shared component: every merged root. Early entry point
			// component: empty.
			var rootDeps []classname.ClassName
			for _, r := range shared {
				rootDeps = append(rootDeps, rootsByName[r].FQName)
			}
			tree.RootDeps = NewSet(rootDeps...)
			if len(shared) == 0 {
				tree.EarlyEntryPointDeps = fqNames(c.recs.EarlyEntryPoints, func(e AggregatedEarlyEntryPoint) classname.ClassName { return e.FQName })
			}
		default:
			tree.RootDeps = NewSet(rootsByName[root].FQName)
		}
		trees = append(trees, tree)
	}
	return trees, nil
}

// rootsUsingSharedComponent returns the test roots folded into the default
// tree. A root with a local module or an uninstall directive keeps its own
// tree even when it allows sharing.
func (c *treeCreator) rootsUsingSharedComponent(roots []AggregatedRoot) Set {
	if !c.opts.SharedTestComponents {
		return nil
	}

	hasLocalModuleDeps := make(map[classname.ClassName]bool)
	for _, d := range c.recs.Deps {
		if d.IsModule() && !d.IsGlobal() {
			hasLocalModuleDeps[d.Test] = true
		}
	}
	for _, u := range c.recs.UninstallModules {
		hasLocalModuleDeps[u.Test] = true
	}

	var shared []classname.ClassName
	for _, r := range roots {
		if r.IsTestRoot() && r.AllowsSharingComponent && !hasLocalModuleDeps[r.Root] {
			shared = append(shared, r.Root)
		}
	}
	return NewSet(shared...)
}

func (c *treeCreator) aggregatedDepsByRoot(roots []AggregatedRoot, shared Set, hasEarlyEntryPoints bool) map[classname.ClassName][]classname.ClassName {
	testDepsByRoot := make(map[classname.ClassName][]classname.ClassName)
	var globalModules, globalEntryPoints, earlyTreeEntryPoints []classname.ClassName
	for _, d := range c.recs.Deps {
		switch {
		case !d.IsGlobal():
			testDepsByRoot[d.Test] = append(testDepsByRoot[d.Test], d.FQName)
		case d.IsModule():
			globalModules = append(globalModules, d.FQName)
		default:
			globalEntryPoints = append(globalEntryPoints, d.FQName)
			if c.installsInEarlyTree(d) {
				earlyTreeEntryPoints = append(earlyTreeEntryPoints, d.FQName)
			}
		}
	}

	result := make(map[classname.ClassName][]classname.ClassName)
	for _, r := range roots {
		if shared.Contains(r.Root) {
			continue
		}
		deps := result[r.Root]
		deps = append(deps, globalModules...)
		deps = append(deps, globalEntryPoints...)
		deps = append(deps, testDepsByRoot[r.Root]...)
		result[r.Root] = deps
	}

	defaultRoot := c.opts.defaultRoot()
	switch {
	case len(shared) > 0:
		deps := append(result[defaultRoot], globalModules...)
		deps = append(deps, globalEntryPoints...)
		for _, r := range shared {
			deps = append(deps, testDepsByRoot[r]...)
		}
		result[defaultRoot] = deps
	case hasEarlyEntryPoints:
		deps := append(result[defaultRoot], globalModules...)
		deps = append(deps, earlyTreeEntryPoints...)
		result[defaultRoot] = deps
	}
	return result
}

// installsInEarlyTree reports whether a global entry point targets at least
// one component that is not excluded from the early entry point tree.
func (c *treeCreator) installsInEarlyTree(d AggregatedDeps) bool {
	for _, comp := range d.Components {
		if !slices.Contains(c.opts.EarlyEntryPointExcludedComponents, comp) {
			return true
		}
	}
	return false
}

// distinctRoots drops duplicate records and sorts by root name.
func distinctRoots(roots []AggregatedRoot) []AggregatedRoot {
	seen := make(map[AggregatedRoot]bool, len(roots))
	out := make([]AggregatedRoot, 0, len(roots))
	for _, r := range roots {
		if !seen[r] {
			seen[r] = true
			out = append(out, r)
		}
	}
	sortRoots(out)
	return out
}
