package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResolve_IdentityOnEmptyTable(t *testing.T) {
	table := NewTable(nil)
	for _, name := range []string{"Foo", "A.B.C", "MyApp.Worker", "Enum"} {
		assert.Equal(t, name, table.Resolve(name))
	}
}

func TestResolve_ExplicitAlias(t *testing.T) {
	table := NewTable([]Binding{{Short: "Worker", Full: "MyApp.Jobs.Worker"}})

	assert.Equal(t, "MyApp.Jobs.Worker", table.Resolve("Worker"))
	// Remaining segments re-attach after substitution.
	assert.Equal(t, "MyApp.Jobs.Worker.Sub", table.Resolve("Worker.Sub"))
}

func TestResolve_ExplicitAliasOutranksNamespace(t *testing.T) {
	table := NewTable([]Binding{{Short: "Foo", Full: "A.B.Foo"}})
	table.Namespace = "A.B.Ns"

	assert.Equal(t, "A.B.Foo", table.Resolve("Foo"))
}

func TestResolve_ImplicitNamespace(t *testing.T) {
	table := NewTable(nil)
	table.Namespace = "A.B.Ns"

	assert.Equal(t, "A.B.Ns.Helper", table.Resolve("Helper"))
}

func TestResolve_NamespaceOnlyAppliesToUnqualifiedNames(t *testing.T) {
	table := NewTable(nil)
	table.Namespace = "A.B.Ns"

	// A dotted reference is already qualified; the namespace must not apply.
	assert.Equal(t, "Other.Mod", table.Resolve("Other.Mod"))
}

func TestResolve_ReservedNamesNeverNamespaceQualified(t *testing.T) {
	table := NewTable(nil)
	table.Namespace = "A.B.Ns"

	for _, name := range []string{"Enum", "String", "Kernel", "GenServer", "IO"} {
		assert.Equal(t, name, table.Resolve(name), "reserved name %s", name)
	}
}

func TestResolve_ReservedCheckIsExactMatch(t *testing.T) {
	table := NewTable(nil)
	table.Namespace = "A.B.Ns"

	// Enumerable is not Enum; it gets qualified like any other short name.
	assert.Equal(t, "A.B.Ns.Enumerable", table.Resolve("Enumerable"))
}

func TestResolve_ExplicitAliasMayShadowReservedName(t *testing.T) {
	table := NewTable([]Binding{{Short: "Enum", Full: "MyApp.Enum"}})
	assert.Equal(t, "MyApp.Enum", table.Resolve("Enum"))
}

func TestNewTable_LastBindingWins(t *testing.T) {
	table := NewTable([]Binding{
		{Short: "C", Full: "A.B.C"},
		{Short: "C", Full: "X.Y.C"},
	})

	assert.Equal(t, "X.Y.C", table.Resolve("C"))
}

func TestReserved(t *testing.T) {
	assert.True(t, Reserved("Enum"))
	assert.True(t, Reserved("Task"))
	assert.False(t, Reserved("MyApp"))
	assert.False(t, Reserved("enum"))
}
