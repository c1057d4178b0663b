package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a lobby-capable match.
	RpcQuickMatch = "quick_match"

	// MatchNameSeptica is the authoritative match handler name registered with Nakama.
	MatchNameSeptica = "septica_match"
)

// Op codes for client messages and server events.
const (
	// Client -> Server
	OpStartGame int64 = 1
	OpPlayCard  int64 = 2

	// Server -> Client events
	OpPlayerJoined int64 = 101
	OpPlayerLeft   int64 = 102
	OpGameStarted  int64 = 103
	OpHandDealt    int64 = 104 // sent privately
	OpCardPlayed   int64 = 105
	OpTrickWon     int64 = 106
	OpGameEnded    int64 = 107
	OpGameError    int64 = 108
)
