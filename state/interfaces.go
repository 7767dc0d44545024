// state/interfaces.go
package state

// RoundContext is what the phase machine needs to know about the table of
// locally seated players.
type RoundContext interface {
	PlayerCount() int
}
