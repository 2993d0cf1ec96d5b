package resolve

// reservedNames enumerates the top-level modules shipped by the Elixir
// standard library and runtime. References to these are never qualified with
// an enclosing namespace: `Enum` inside `defmodule A.B` still means `Enum`.
// The set is fixed data, checked by exact match on the first name segment.
var reservedNames = map[string]struct{}{
	"Access":              {},
	"Agent":               {},
	"Application":         {},
	"Atom":                {},
	"Base":                {},
	"Behaviour":           {},
	"Bitwise":             {},
	"Calendar":            {},
	"Code":                {},
	"Config":              {},
	"Date":                {},
	"DateTime":            {},
	"Duration":            {},
	"DynamicSupervisor":   {},
	"Enum":                {},
	"Exception":           {},
	"ExUnit":              {},
	"File":                {},
	"Float":               {},
	"Function":            {},
	"GenEvent":            {},
	"GenServer":           {},
	"IO":                  {},
	"Inspect":             {},
	"Integer":             {},
	"JSON":                {},
	"Kernel":              {},
	"Keyword":             {},
	"List":                {},
	"Logger":              {},
	"Macro":               {},
	"Map":                 {},
	"MapSet":              {},
	"Mix":                 {},
	"Module":              {},
	"NaiveDateTime":       {},
	"Node":                {},
	"OptionParser":        {},
	"PartitionSupervisor": {},
	"Path":                {},
	"Port":                {},
	"Process":             {},
	"Protocol":            {},
	"Range":               {},
	"Record":              {},
	"Regex":               {},
	"Registry":            {},
	"Stream":              {},
	"String":              {},
	"StringIO":            {},
	"Supervisor":          {},
	"System":              {},
	"Task":                {},
	"Time":                {},
	"Tuple":               {},
	"URI":                 {},
	"Version":             {},
}

// Reserved reports whether name is a standard-library or runtime module
// exempt from implicit namespace qualification.
func Reserved(name string) bool {
	_, ok := reservedNames[name]
	return ok
}
