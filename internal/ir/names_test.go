package ir

import (
	"slices"
	"testing"

	"github.com/iVampireSP/hiltagg/internal/classname"
)

func TestNameGenerator_NoOtherRoots(t *testing.T) {
	tests := []struct {
		root string
		dest string
		want string
	}{
		{root: "com.app.App", want: "com.app.App_ComponentTreeDeps"},
		{root: "com.app.Outer.Inner", want: "com.app.Outer_Inner_ComponentTreeDeps"},
		{root: "com.app.App", dest: "dagger.hilt.android.internal.testing.root", want: "dagger.hilt.android.internal.testing.root.App_ComponentTreeDeps"},
	}
	for _, tt := range tests {
		gen := &NameGenerator{DestinationPackage: tt.dest}
		got, err := gen.Generate(cn(tt.root))
		if err != nil {
			t.Fatalf("Generate(%s) error: %v", tt.root, err)
		}
		if got.String() != tt.want {
			t.Errorf("Generate(%s) = %s, want %s", tt.root, got, tt.want)
		}
	}
}

func TestNameGenerator_Disambiguates(t *testing.T) {
	tests := []struct {
		name   string
		others []string
		want   map[string]string
	}{
		{
			name:   "distinct simple names keep them",
			others: []string{"com.a.FooTest", "com.b.BarTest"},
			want: map[string]string{
				"com.a.FooTest": "FooTest_ComponentTreeDeps",
				"com.b.BarTest": "BarTest_ComponentTreeDeps",
			},
		},
		{
			name:   "package initials",
			others: []string{"com.b.FooTest", "com.a.FooTest"},
			want: map[string]string{
				"com.a.FooTest": "ca_FooTest_ComponentTreeDeps",
				"com.b.FooTest": "cb_FooTest_ComponentTreeDeps",
			},
		},
		{
			name:   "colliding initials get a counter",
			others: []string{"com.axe.FooTest", "com.abc.FooTest", "com.ant.FooTest"},
			want: map[string]string{
				"com.abc.FooTest": "ca_FooTest_ComponentTreeDeps",
				"com.ant.FooTest": "ca2_FooTest_ComponentTreeDeps",
				"com.axe.FooTest": "ca3_FooTest_ComponentTreeDeps",
			},
		},
		{
			name:   "enclosing class initials",
			others: []string{"com.a.MyTests.FooTest", "com.b.MyTests.FooTest"},
			want: map[string]string{
				"com.a.MyTests.FooTest": "MT_MyTests_FooTest_ComponentTreeDeps",
				"com.b.MyTests.FooTest": "MT2_MyTests_FooTest_ComponentTreeDeps",
			},
		},
	}

	const dest = "dagger.hilt.android.internal.testing.root"
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var others []classname.ClassName
			for _, o := range tt.others {
				others = append(others, cn(o))
			}
			forward := &NameGenerator{DestinationPackage: dest, OtherRootNames: others}
			reversed := slices.Clone(others)
			slices.Reverse(reversed)
			backward := &NameGenerator{DestinationPackage: dest, OtherRootNames: reversed}

			seen := make(map[string]bool)
			for root, want := range tt.want {
				got, err := forward.Generate(cn(root))
				if err != nil {
					t.Fatalf("Generate(%s) error: %v", root, err)
				}
				if got.String() != dest+"."+want {
					t.Errorf("Generate(%s) = %s, want %s.%s", root, got, dest, want)
				}
				again, err := backward.Generate(cn(root))
				if err != nil {
					t.Fatalf("Generate(%s) error: %v", root, err)
				}
				if again != got {
					t.Errorf("Generate(%s) depends on input order: %s vs %s", root, got, again)
				}
				if seen[got.String()] {
					t.Errorf("duplicate generated name %s", got)
				}
				seen[got.String()] = true
			}
		})
	}
}

func TestNameGenerator_UnknownRoot(t *testing.T) {
	gen := &NameGenerator{OtherRootNames: []classname.ClassName{cn("com.a.FooTest")}}
	if _, err := gen.Generate(cn("com.b.BarTest")); err == nil {
		t.Error("Generate() for a root outside OtherRootNames should fail")
	}
}
