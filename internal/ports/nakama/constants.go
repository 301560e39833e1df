package nakama

const (
	// RpcQuickMatch is the Nakama RPC id clients call to find or create a table with free seats.
	RpcQuickMatch = "quick_match"

	// MatchNameTruco is the authoritative match handler name registered with Nakama.
	MatchNameTruco = "truco_match"

	// GameName tags truco matches in the match label.
	GameName = "truco"

	// EnvPrefix prefixes the runtime env keys that override the game config.
	EnvPrefix = "truco_"

	gameConfigPath  = "data/game_config.json"
	botIdentityPath = "data/bot_identities.json"
	matchTickRate   = 1 // ticks per second; bot and pause timers count ticks
)

// Op codes for client messages and server events. Payloads are JSON.
const (
	// Client -> Server
	OpStartRound      int64 = 1
	OpPlayCard        int64 = 2 // {"card_index":0,"hidden":false}
	OpCallTruco       int64 = 3
	OpRespondTruco    int64 = 4 // {"response":"accept"|"decline"|"raise"}
	OpRequestNewRound int64 = 5

	// Server -> Client events
	OpSnapshot     int64 = 101 // sent privately
	OpPlayerJoined int64 = 102
	OpPlayerLeft   int64 = 103
	OpGameStarted  int64 = 104
	OpRoundEnded   int64 = 105
	OpGameEnded    int64 = 106
	OpError        int64 = 107 // sent privately
)
