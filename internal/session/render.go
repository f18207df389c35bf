package session

// Action is one affordance offered to players. The controller hands the
// opaque ID back through Submit when a player invokes it.
type Action struct {
	ID    string
	Label string
}

// RenderState is the displayable projection of a session. The core knows
// nothing about embeds or message formats; the embedding bot turns this
// into whatever its chat platform wants.
type RenderState struct {
	SessionID  string
	Variant    Variant
	Status     Status
	Title      string
	Body       string
	StatusText string
	Actions    []Action
	Players    []PlayerSlot
	Wager      int64
}
