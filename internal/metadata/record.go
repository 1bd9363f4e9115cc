// Package metadata reads and writes the aggregated records exchanged
// between compilation units. Records live in YAML documents, one or more
// per file, each tagged with its kind.
package metadata

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/iVampireSP/hiltagg/internal/classname"
	"github.com/iVampireSP/hiltagg/internal/ir"
	"gopkg.in/yaml.v3"
)

// Record kinds.
const (
	KindAggregatedRoot             = "aggregatedRoot"
	KindProcessedRootSentinel      = "processedRootSentinel"
	KindAggregatedDeps             = "aggregatedDeps"
	KindAggregatedUninstallModules = "aggregatedUninstallModules"
	KindAggregatedEarlyEntryPoint  = "aggregatedEarlyEntryPoint"
	KindAliasOfPropagatedData      = "aliasOfPropagatedData"
	KindDefineComponentClasses     = "defineComponentClasses"
	KindComponentTreeDeps          = "componentTreeDeps"
)

// Kinds lists every record kind understood by Decode.
var Kinds = []string{
	KindAggregatedRoot,
	KindProcessedRootSentinel,
	KindAggregatedDeps,
	KindAggregatedUninstallModules,
	KindAggregatedEarlyEntryPoint,
	KindAliasOfPropagatedData,
	KindDefineComponentClasses,
	KindComponentTreeDeps,
}

// Doc is the on-disk form of a record. Only the fields of its Kind are set.
type Doc struct {
	Kind   string              `yaml:"kind"`
	FQName classname.ClassName `yaml:"fqName,omitempty"`

	// aggregatedRoot
	Root                   classname.ClassName `yaml:"root,omitempty"`
	OriginatingRoot        classname.ClassName `yaml:"originatingRoot,omitempty"`
	RootAnnotation         classname.ClassName `yaml:"rootAnnotation,omitempty"`
	AllowsSharingComponent *bool               `yaml:"allowsSharingComponent,omitempty"`

	// processedRootSentinel
	Roots []classname.ClassName `yaml:"roots,omitempty"`

	// aggregatedDeps
	Components           []classname.ClassName `yaml:"components,omitempty"`
	Test                 classname.ClassName   `yaml:"test,omitempty"`
	Replaces             []classname.ClassName `yaml:"replaces,omitempty"`
	Modules              []classname.ClassName `yaml:"modules,omitempty"`
	EntryPoints          []classname.ClassName `yaml:"entryPoints,omitempty"`
	ComponentEntryPoints []classname.ClassName `yaml:"componentEntryPoints,omitempty"`

	// aggregatedUninstallModules
	UninstallModules []classname.ClassName `yaml:"uninstallModules,omitempty"`

	// aggregatedEarlyEntryPoint
	EarlyEntryPoint classname.ClassName `yaml:"earlyEntryPoint,omitempty"`

	// aliasOfPropagatedData
	DefineComponentScope classname.ClassName `yaml:"defineComponentScope,omitempty"`
	Alias                classname.ClassName `yaml:"alias,omitempty"`

	// defineComponentClasses
	Component classname.ClassName `yaml:"component,omitempty"`

	// componentTreeDeps
	RootDeps             []classname.ClassName `yaml:"rootDeps,omitempty"`
	DefineComponentDeps  []classname.ClassName `yaml:"defineComponentDeps,omitempty"`
	AliasOfDeps          []classname.ClassName `yaml:"aliasOfDeps,omitempty"`
	AggregatedDeps       []classname.ClassName `yaml:"aggregatedDeps,omitempty"`
	UninstallModulesDeps []classname.ClassName `yaml:"uninstallModulesDeps,omitempty"`
	EarlyEntryPointDeps  []classname.ClassName `yaml:"earlyEntryPointDeps,omitempty"`
}

// listFields are the Doc keys holding lists; used when building a Doc from
// flat key=value fields.
var listFields = map[string]bool{
	"roots": true, "components": true, "replaces": true, "modules": true,
	"entryPoints": true, "componentEntryPoints": true, "uninstallModules": true,
	"rootDeps": true, "defineComponentDeps": true, "aliasOfDeps": true,
	"aggregatedDeps": true, "uninstallModulesDeps": true, "earlyEntryPointDeps": true,
}

// DocFromFields builds a Doc of the given kind from flat string fields.
// List fields are comma separated.
func DocFromFields(kind string, fields map[string]string) (Doc, error) {
	m := map[string]any{"kind": kind}
	for k, v := range fields {
		if k == "allowsSharingComponent" {
			b, err := strconv.ParseBool(v)
			if err != nil {
				return Doc{}, fmt.Errorf("%s: %w", k, err)
			}
			m[k] = b
			continue
		}
		if listFields[k] {
			var items []string
			for _, item := range strings.Split(v, ",") {
				if item = strings.TrimSpace(item); item != "" {
					items = append(items, item)
				}
			}
			m[k] = items
			continue
		}
		m[k] = v
	}

	var node yaml.Node
	if err := node.Encode(m); err != nil {
		return Doc{}, fmt.Errorf("encode fields: %w", err)
	}
	var doc Doc
	if err := node.Decode(&doc); err != nil {
		return Doc{}, fmt.Errorf("decode %s fields: %w", kind, err)
	}
	return doc, nil
}

// Set holds everything decoded from a metadata store.
type Set struct {
	ir.Records
	// Trees are component tree records written by an earlier pass.
	Trees []ir.ComponentTreeDeps
}

// Add validates doc and appends the record it describes.
func (s *Set) Add(doc Doc) error {
	if doc.FQName.IsZero() {
		return fmt.Errorf("%s record without fqName", kindOrUnknown(doc.Kind))
	}

	switch doc.Kind {
	case KindAggregatedRoot:
		if doc.Root.IsZero() || doc.RootAnnotation.IsZero() {
			return fmt.Errorf("%s %s: root and rootAnnotation are required", doc.Kind, doc.FQName)
		}
		r := ir.AggregatedRoot{
			FQName:                 doc.FQName,
			Root:                   doc.Root,
			OriginatingRoot:        doc.OriginatingRoot,
			RootAnnotation:         doc.RootAnnotation,
			AllowsSharingComponent: doc.AllowsSharingComponent == nil || *doc.AllowsSharingComponent,
		}
		if r.OriginatingRoot.IsZero() {
			r.OriginatingRoot = r.Root
		}
		s.Roots = append(s.Roots, r)

	case KindProcessedRootSentinel:
		if len(doc.Roots) == 0 {
			return fmt.Errorf("%s %s: roots are required", doc.Kind, doc.FQName)
		}
		s.ProcessedRoots = append(s.ProcessedRoots, ir.ProcessedRootSentinel{FQName: doc.FQName, Roots: doc.Roots})

	case KindAggregatedDeps:
		d, err := aggregatedDeps(doc)
		if err != nil {
			return fmt.Errorf("%s %s: %w", doc.Kind, doc.FQName, err)
		}
		s.Deps = append(s.Deps, d)

	case KindAggregatedUninstallModules:
		if doc.Test.IsZero() {
			return fmt.Errorf("%s %s: test is required", doc.Kind, doc.FQName)
		}
		s.UninstallModules = append(s.UninstallModules, ir.AggregatedUninstallModules{
			FQName:           doc.FQName,
			Test:             doc.Test,
			UninstallModules: doc.UninstallModules,
		})

	case KindAggregatedEarlyEntryPoint:
		if doc.EarlyEntryPoint.IsZero() {
			return fmt.Errorf("%s %s: earlyEntryPoint is required", doc.Kind, doc.FQName)
		}
		s.EarlyEntryPoints = append(s.EarlyEntryPoints, ir.AggregatedEarlyEntryPoint{FQName: doc.FQName, EarlyEntryPoint: doc.EarlyEntryPoint})

	case KindAliasOfPropagatedData:
		s.AliasOfs = append(s.AliasOfs, ir.AliasOfPropagatedData{
			FQName:               doc.FQName,
			DefineComponentScope: doc.DefineComponentScope,
			Alias:                doc.Alias,
		})

	case KindDefineComponentClasses:
		s.DefineComponents = append(s.DefineComponents, ir.DefineComponentClasses{FQName: doc.FQName, Component: doc.Component})

	case KindComponentTreeDeps:
		s.Trees = append(s.Trees, ir.ComponentTreeDeps{
			Name:                 doc.FQName,
			RootDeps:             ir.NewSet(doc.RootDeps...),
			DefineComponentDeps:  ir.NewSet(doc.DefineComponentDeps...),
			AliasOfDeps:          ir.NewSet(doc.AliasOfDeps...),
			AggregatedDeps:       ir.NewSet(doc.AggregatedDeps...),
			UninstallModulesDeps: ir.NewSet(doc.UninstallModulesDeps...),
			EarlyEntryPointDeps:  ir.NewSet(doc.EarlyEntryPointDeps...),
		})

	default:
		return fmt.Errorf("unknown record kind %q (want one of %s)", doc.Kind, strings.Join(Kinds, ", "))
	}
	return nil
}

func kindOrUnknown(kind string) string {
	if kind == "" {
		return "untyped"
	}
	return kind
}

// aggregatedDeps checks that doc names components and exactly one
// dependency, and maps the legacy ApplicationComponent to
// SingletonComponent.
func aggregatedDeps(doc Doc) (ir.AggregatedDeps, error) {
	if len(doc.Components) == 0 {
		return ir.AggregatedDeps{}, errors.New("at least one component is required")
	}
	components := make([]classname.ClassName, len(doc.Components))
	for i, c := range doc.Components {
		if c == ir.ApplicationComponent {
			c = ir.SingletonComponent
		}
		components[i] = c
	}

	d := ir.AggregatedDeps{
		FQName:     doc.FQName,
		Components: components,
		Test:       doc.Test,
		Replaces:   doc.Replaces,
	}

	var deps []string
	if len(doc.Modules) > 0 {
		deps = append(deps, "modules")
	}
	if len(doc.EntryPoints) > 0 {
		deps = append(deps, "entryPoints")
	}
	if len(doc.ComponentEntryPoints) > 0 {
		deps = append(deps, "componentEntryPoints")
	}
	if n := len(doc.Modules) + len(doc.EntryPoints) + len(doc.ComponentEntryPoints); n != 1 {
		return ir.AggregatedDeps{}, fmt.Errorf("expected exactly one module, entry point or component entry point, got %d (%s)", n, strings.Join(deps, ", "))
	}

	switch {
	case len(doc.Modules) == 1:
		d.Module = doc.Modules[0]
	case len(doc.EntryPoints) == 1:
		d.EntryPoint = doc.EntryPoints[0]
	default:
		d.ComponentEntryPoint = doc.ComponentEntryPoints[0]
	}
	return d, nil
}

// TreeDoc returns the on-disk form of a component tree.
func TreeDoc(tree ir.ComponentTreeDeps) Doc {
	return Doc{
		Kind:                 KindComponentTreeDeps,
		FQName:               tree.Name,
		RootDeps:             tree.RootDeps,
		DefineComponentDeps:  tree.DefineComponentDeps,
		AliasOfDeps:          tree.AliasOfDeps,
		AggregatedDeps:       tree.AggregatedDeps,
		UninstallModulesDeps: tree.UninstallModulesDeps,
		EarlyEntryPointDeps:  tree.EarlyEntryPointDeps,
	}
}

// SentinelDoc returns the on-disk form of a processed root sentinel.
func SentinelDoc(s ir.ProcessedRootSentinel) Doc {
	return Doc{Kind: KindProcessedRootSentinel, FQName: s.FQName, Roots: s.Roots}
}
