package ir

import (
	"strings"

	"github.com/iVampireSP/hiltagg/internal/classname"
)

func cn(s string) classname.ClassName {
	return classname.MustParse(s)
}

func appRoot(name string) AggregatedRoot {
	return AggregatedRoot{
		FQName:                 cn("dagger.hilt.internal.aggregatedroot.codegen._" + strings.ReplaceAll(name, ".", "_")),
		Root:                   cn(name),
		OriginatingRoot:        cn(name),
		RootAnnotation:         HiltAndroidApp,
		AllowsSharingComponent: true,
	}
}

func testRoot(name string) AggregatedRoot {
	r := appRoot(name)
	r.RootAnnotation = HiltAndroidTest
	return r
}

func module(fq, test string, components ...string) AggregatedDeps {
	d := AggregatedDeps{FQName: cn(fq), Module: cn(fq + "Module"), Components: components2(components)}
	if test != "" {
		d.Test = cn(test)
	}
	return d
}

func entryPoint(fq, test string, components ...string) AggregatedDeps {
	d := AggregatedDeps{FQName: cn(fq), EntryPoint: cn(fq + "EntryPoint"), Components: components2(components)}
	if test != "" {
		d.Test = cn(test)
	}
	return d
}

func components2(names []string) []classname.ClassName {
	if len(names) == 0 {
		return []classname.ClassName{SingletonComponent}
	}
	out := make([]classname.ClassName, len(names))
	for i, n := range names {
		out[i] = cn(n)
	}
	return out
}

func sentinel(roots ...string) ProcessedRootSentinel {
	s := ProcessedRootSentinel{FQName: cn("dagger.hilt.internal.processedrootsentinel.codegen._" + strings.Join(roots, "_"))}
	for _, r := range roots {
		s.Roots = append(s.Roots, cn(r))
	}
	return s
}

func names(s Set) string {
	return strings.Join(s.Strings(), ",")
}
