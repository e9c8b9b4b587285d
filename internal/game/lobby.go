package game

import (
	"fmt"
	"math/rand"
)

// lobbyWords feed the generated lobby name/password pairs. Display-only
// strings handed to players so they can find each other in the game client.
var lobbyWords = []string{
	"octane", "breakout", "dominus", "fennec", "marauder",
	"sunset", "wasteland", "mannfield", "utopia", "aquadome",
	"salvage", "turbine", "cyclone", "gravity", "voltage",
	"phantom", "ignition", "overdrive", "apex", "rampart",
}

// generateLobbyCredential returns one opaque display string, a random word
// with a two-digit suffix.
func generateLobbyCredential(rng *rand.Rand) string {
	return fmt.Sprintf("%s%02d", lobbyWords[rng.Intn(len(lobbyWords))], rng.Intn(100))
}
