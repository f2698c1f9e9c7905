package ai

import "github.com/ReisCook/100zombies/internal/model"

// DistanceTier is one of three update-cost bands controlling per-agent
// simulation fidelity, recomputed every tick from current positions.
type DistanceTier int32

const (
	// TierNear - full-rate animation, perception, and state updates
	TierNear DistanceTier = iota
	// TierFar - no animation mixing, coarse think cadence
	TierFar
	// TierVeryFar - additionally stops pulling position from physics
	TierVeryFar
)

// String returns human-readable tier name
func (t DistanceTier) String() string {
	switch t {
	case TierNear:
		return "NEAR"
	case TierFar:
		return "FAR"
	case TierVeryFar:
		return "VERY_FAR"
	default:
		return "UNKNOWN"
	}
}

// TierFor returns the distance tier for a distance to the player.
func TierFor(dist float64) DistanceTier {
	switch {
	case dist > veryFarDistance:
		return TierVeryFar
	case dist > farDistance:
		return TierFar
	default:
		return TierNear
	}
}

// AnimationFor selects the animation clip for a behavior state and distance
// tier. Animation is a pure function of (state, tier) evaluated each tick —
// the behavior state machine is the single source of truth, so the visual
// layer can never diverge from it. Beyond the far tier animation mixing is
// skipped entirely and no clip is selected.
func AnimationFor(state model.AgentState, tier DistanceTier) string {
	if tier != TierNear {
		return ""
	}

	switch state {
	case model.StateIdle:
		return "idle"
	case model.StateChase:
		return "run"
	case model.StateAttack:
		return "attack"
	case model.StateDeath:
		return "death"
	default:
		return ""
	}
}
