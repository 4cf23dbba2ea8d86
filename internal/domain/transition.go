package domain

// Transition defines a valid state change: an event moves an entity from Src to Dst.
type Transition[S ~string, E ~string] struct {
	Event E
	Src   S
	Dst   S
}
