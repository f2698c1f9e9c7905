package model

// AgentState represents the behavior state of a hostile agent
type AgentState int32

const (
	// StateIdle - agent is standing around, occasional random yaw drift
	StateIdle AgentState = iota
	// StateChase - agent is pursuing the last known player position
	StateChase
	// StateAttack - agent is in attack range and swinging at the player
	StateAttack
	// StateDeath - terminal state, no further movement or combat
	StateDeath
)

// String returns human-readable state name
func (s AgentState) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateChase:
		return "CHASE"
	case StateAttack:
		return "ATTACK"
	case StateDeath:
		return "DEATH"
	default:
		return "UNKNOWN"
	}
}
