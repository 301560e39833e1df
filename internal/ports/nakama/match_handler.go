package nakama

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"math/rand"
	"time"

	"truco/internal/app"
	"truco/internal/bot"
	"truco/internal/config"
	"truco/internal/domain"
	"truco/internal/ports"

	"github.com/heroiclabs/nakama-common/runtime"
)

// MatchState holds the authoritative runtime state for the Nakama match handler.
type MatchState struct {
	Room                 *app.Room                   // Seats and game; Nakama runs the loop on one goroutine
	Config               config.GameConfig           // Rules and bot timings after env overrides
	Tick                 int64                       // Current tick of the match
	Presences            map[string]runtime.Presence // Map UserId -> Presence for targeted messaging
	Bots                 map[string]*bot.Agent       // Active bot agents
	BotWaitUntil         map[string]int64            // Tick when each bot may act
	LastSinglePlayerTick int64                       // Tick when a single human started waiting
	NextHandAt           int64                       // Tick when a paused round deals on its own
	Results              ports.ResultsPort           // Where finished games are recorded
	Label                string                      // Last label pushed to Nakama

	rng *rand.Rand
}

// GetHumanPlayerCount returns the number of seated humans.
func (ms *MatchState) GetHumanPlayerCount() int {
	count := 0
	for _, p := range ms.Room.Players() {
		if !p.Bot {
			count++
		}
	}
	return count
}

// NewMatch is the factory function registered with Nakama.
func NewMatch(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule) (runtime.Match, error) {
	return newMatchHandler(), nil
}

type matchHandler struct{}

func newMatchHandler() *matchHandler {
	return &matchHandler{}
}

// newMatchState builds the state of a fresh match.
func newMatchState(matchID string, cfg config.GameConfig, results ports.ResultsPort, rng *rand.Rand) *MatchState {
	if rng == nil {
		rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return &MatchState{
		Room:         app.NewRoom(matchID, app.RoomConfig{Rules: cfg.Rules(), Rand: rng}),
		Config:       cfg,
		Presences:    make(map[string]runtime.Presence),
		Bots:         make(map[string]*bot.Agent),
		BotWaitUntil: make(map[string]int64),
		Results:      results,
		rng:          rng,
	}
}

// MatchInit is called when the match is created.
func (mh *matchHandler) MatchInit(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, params map[string]interface{}) (interface{}, int, string) {
	logger.Debug("MatchInit: Initializing match handler.")

	if err := bot.LoadIdentities(botIdentityPath); err != nil {
		logger.Warn("MatchInit: Could not load bot identities: %v", err)
	}
	if err := config.LoadGameConfig(gameConfigPath); err != nil {
		logger.Warn("MatchInit: Could not load game config, using defaults: %v", err)
	}

	cfg := config.GetGameConfig()
	if env, ok := ctx.Value(runtime.RUNTIME_CTX_ENV).(map[string]string); ok {
		cfg.ApplyEnv(env, EnvPrefix)
	}
	matchID, _ := ctx.Value(runtime.RUNTIME_CTX_MATCH_ID).(string)

	state := newMatchState(matchID, cfg, NewNakamaResultsAdapter(nk), nil)

	label, err := labelFor(state.Room).Marshal()
	if err != nil {
		logger.Error("MatchInit: Failed to marshal label: %v", err)
		return nil, 0, ""
	}
	state.Label = label

	logger.Info("MatchInit: Match %s ready (target=%d auto_deal=%t bots=%t)", matchID, cfg.TargetScore, cfg.AutoDeal, cfg.BotsEnabled)
	return state, matchTickRate, label
}

func (mh *matchHandler) MatchJoinAttempt(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presence runtime.Presence, metadata map[string]string) (interface{}, bool, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, false, "state not found"
	}

	if _, seated := matchState.Room.SeatOf(presence.GetUserId()); seated {
		return state, true, ""
	}
	if matchState.Room.SeatedCount() < domain.SeatCount {
		return state, true, ""
	}
	// A full lobby still admits a human if a bot can give up its seat.
	if matchState.Room.Phase() == domain.PhaseNotStarted && findBotSeat(matchState.Room) >= 0 {
		return state, true, ""
	}
	return state, false, "Match full"
}

func (mh *matchHandler) MatchJoin(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchJoin: state not found")
		return state
	}

	for _, p := range presences {
		matchState.Presences[p.GetUserId()] = p
		identity := app.Identity{UserID: p.GetUserId(), Username: p.GetUsername()}

		seat, events, err := matchState.Room.Join(identity)
		if errors.Is(err, domain.ErrRoomFull) && matchState.Room.Phase() == domain.PhaseNotStarted {
			if botSeat := findBotSeat(matchState.Room); botSeat >= 0 {
				botPlayer, _ := matchState.Room.PlayerAt(botSeat)
				logger.Info("MatchJoin: Replacing bot %s with human %s in seat %d", botPlayer.UserID, p.GetUserId(), botSeat)
				mh.dispatchEvents(ctx, matchState, dispatcher, logger, mh.removeBot(matchState, botPlayer.UserID))
				seat, events, err = matchState.Room.Join(identity)
			}
		}
		if err != nil {
			logger.Warn("MatchJoin: User %s joined but no seat was available: %v", p.GetUserId(), err)
			continue
		}
		logger.Debug("MatchJoin: User %s took seat %d.", p.GetUserId(), seat)
		mh.dispatchEvents(ctx, matchState, dispatcher, logger, events)
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

// MatchLeave is called when one or more players leave the match.
func (mh *matchHandler) MatchLeave(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, presences []runtime.Presence) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		logger.Error("MatchLeave: state not found")
		return state
	}

	for _, p := range presences {
		delete(matchState.Presences, p.GetUserId())
		events, err := matchState.Room.Leave(p.GetUserId())
		if err != nil {
			logger.Debug("MatchLeave: User %s had no seat: %v", p.GetUserId(), err)
			continue
		}
		logger.Debug("MatchLeave: User %s left (phase %s).", p.GetUserId(), matchState.Room.Phase())
		mh.dispatchEvents(ctx, matchState, dispatcher, logger, events)
	}

	if matchState.Room.ConnectedHumans() == 0 {
		logger.Info("MatchLeave: Terminating match with no connected humans.")
		return nil
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) MatchLoop(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, messages []runtime.MatchData) interface{} {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state
	}

	matchState.Tick = tick

	for _, msg := range messages {
		switch msg.GetOpCode() {
		case OpStartRound:
			mh.handleStartRound(ctx, matchState, dispatcher, logger, msg)
		case OpPlayCard:
			mh.handlePlayCard(ctx, matchState, dispatcher, logger, msg)
		case OpCallTruco:
			mh.handleCallTruco(ctx, matchState, dispatcher, logger, msg)
		case OpRespondTruco:
			mh.handleRespondTruco(ctx, matchState, dispatcher, logger, msg)
		case OpRequestNewRound:
			mh.handleRequestNewRound(ctx, matchState, dispatcher, logger, msg)
		default:
			logger.Warn("MatchLoop: Unknown opcode received: %d", msg.GetOpCode())
		}
	}

	mh.processPause(ctx, matchState, dispatcher, logger)
	if matchState.Config.BotsEnabled {
		mh.processBots(ctx, matchState, dispatcher, logger)
	}

	mh.updateLabel(matchState, dispatcher, logger)
	return matchState
}

func (mh *matchHandler) handleStartRound(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	logger.Info("handleStartRound: Request received from %s (seated=%d)", senderID, state.Room.SeatedCount())

	events, err := state.Room.StartRound(senderID)
	mh.finish(ctx, state, dispatcher, logger, "handleStartRound", senderID, events, err)
}

func (mh *matchHandler) handlePlayCard(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	var req playCardRequest
	if err := decodeRequest(msg.GetData(), &req); err != nil {
		mh.finish(ctx, state, dispatcher, logger, "handlePlayCard", senderID, nil, err)
		return
	}

	events, err := state.Room.PlayCard(senderID, req.CardIndex, req.Hidden)
	mh.finish(ctx, state, dispatcher, logger, "handlePlayCard", senderID, events, err)
}

func (mh *matchHandler) handleCallTruco(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	events, err := state.Room.CallTruco(senderID)
	mh.finish(ctx, state, dispatcher, logger, "handleCallTruco", senderID, events, err)
}

func (mh *matchHandler) handleRespondTruco(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	var req respondTrucoRequest
	if err := decodeRequest(msg.GetData(), &req); err != nil {
		mh.finish(ctx, state, dispatcher, logger, "handleRespondTruco", senderID, nil, err)
		return
	}

	events, err := state.Room.RespondTruco(senderID, req.Response)
	mh.finish(ctx, state, dispatcher, logger, "handleRespondTruco", senderID, events, err)
}

func (mh *matchHandler) handleRequestNewRound(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, msg runtime.MatchData) {
	senderID := msg.GetUserId()
	events, err := state.Room.RequestNewRound(senderID)
	mh.finish(ctx, state, dispatcher, logger, "handleRequestNewRound", senderID, events, err)
}

// finish reports a rejected action to its sender or dispatches the events of
// an applied one.
func (mh *matchHandler) finish(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, handler, senderID string, events []app.Event, err error) {
	if err != nil {
		logger.Warn("%s: User %s rejected: %v", handler, senderID, err)
		mh.sendError(state, dispatcher, logger, senderID, err)
		return
	}
	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
}

// processPause deals the next hand of a paused room once the delay elapsed.
func (mh *matchHandler) processPause(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	if state.Room.Phase() != domain.PhaseRoundOver {
		state.NextHandAt = 0
		return
	}
	if state.NextHandAt == 0 {
		state.NextHandAt = state.Tick + int64(state.Config.NextHandDelaySeconds)
	}
	if state.Tick < state.NextHandAt {
		return
	}
	state.NextHandAt = 0

	players := state.Room.Players()
	if len(players) == 0 {
		return
	}
	events, err := state.Room.RequestNewRound(players[0].UserID)
	if err != nil {
		logger.Error("processPause: Failed to deal next hand: %v", err)
		return
	}
	logger.Debug("processPause: Dealt hand %d.", state.Room.Game().HandNumber)
	mh.dispatchEvents(ctx, state, dispatcher, logger, events)
}

func (mh *matchHandler) processBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	// 1. Auto-fill the lobby with bots if there's only one human player after delay.
	if state.Room.Phase() == domain.PhaseNotStarted {
		if state.GetHumanPlayerCount() == 1 {
			if state.LastSinglePlayerTick == 0 {
				state.LastSinglePlayerTick = state.Tick
				logger.Debug("processBots: Single player detected, starting auto-fill timer.")
			}
			if state.Tick-state.LastSinglePlayerTick >= int64(state.Config.BotAutoFillDelaySeconds) {
				mh.fillWithBots(ctx, state, dispatcher, logger)
				state.LastSinglePlayerTick = 0
			}
		} else {
			state.LastSinglePlayerTick = 0
		}
		return
	}

	// 2. Let one bot act per tick, after its think time.
	for _, p := range state.Room.Players() {
		if !p.Bot {
			continue
		}
		agent, ok := state.Bots[p.UserID]
		if !ok {
			continue
		}
		view := state.Room.Game().ViewFor(p.Seat)
		if !bot.NeedsAction(view) {
			state.BotWaitUntil[p.UserID] = 0
			continue
		}
		if state.BotWaitUntil[p.UserID] == 0 {
			delay := bot.Delay(state.rng, state.Config.BotMinDelaySeconds, state.Config.BotMaxDelaySeconds)
			state.BotWaitUntil[p.UserID] = state.Tick + int64(delay)
			logger.Debug("processBots: Bot %s (seat %d) will act at tick %d (current %d)", p.UserID, p.Seat, state.BotWaitUntil[p.UserID], state.Tick)
		}
		if state.Tick < state.BotWaitUntil[p.UserID] {
			continue
		}
		state.BotWaitUntil[p.UserID] = 0

		move, ok := agent.Act(view)
		if !ok {
			continue
		}
		events, err := applyBotMove(state.Room, p.UserID, move)
		if err != nil {
			logger.Error("processBots: Bot %s move %+v rejected: %v", p.UserID, move, err)
			continue
		}
		mh.dispatchEvents(ctx, state, dispatcher, logger, events)
		return
	}
}

func (mh *matchHandler) fillWithBots(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	seated := make(map[string]bool)
	for _, p := range state.Room.Players() {
		seated[p.UserID] = true
	}
	for i := state.Room.SeatedCount(); i < domain.SeatCount; i++ {
		identity := bot.GetBotIdentity(i, seated)
		agent, err := bot.NewAgent(identity)
		if err != nil {
			logger.Error("processBots: Failed to create bot agent for %s: %v", identity.UserID, err)
			return
		}
		name := identity.DisplayName
		if name == "" {
			name = identity.Username
		}
		seat, events, err := state.Room.Join(app.Identity{UserID: identity.UserID, Username: name, Bot: true})
		if err != nil {
			logger.Warn("processBots: Could not seat bot %s: %v", identity.UserID, err)
			return
		}
		seated[identity.UserID] = true
		state.Bots[identity.UserID] = agent
		logger.Info("processBots: Added bot %s (%s) to seat %d", name, identity.UserID, seat)
		mh.dispatchEvents(ctx, state, dispatcher, logger, events)
	}
}

func (mh *matchHandler) removeBot(state *MatchState, botID string) []app.Event {
	events, err := state.Room.Leave(botID)
	if err != nil {
		return nil
	}
	delete(state.Bots, botID)
	delete(state.BotWaitUntil, botID)
	return events
}

func applyBotMove(room *app.Room, userID string, move bot.Move) ([]app.Event, error) {
	switch move.Kind {
	case bot.MoveCallTruco:
		return room.CallTruco(userID)
	case bot.MoveRespond:
		return room.RespondTruco(userID, move.Response)
	default:
		return room.PlayCard(userID, move.CardIndex, move.Hidden)
	}
}

func findBotSeat(room *app.Room) int {
	for _, p := range room.Players() {
		if p.Bot {
			return p.Seat
		}
	}
	return -1
}

// dispatchEvents converts app events to Nakama messages and records results.
func (mh *matchHandler) dispatchEvents(ctx context.Context, state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, events []app.Event) {
	for _, ev := range events {
		if ev.Kind == app.EventGameEnded {
			mh.recordResult(ctx, state, logger, ev.Payload.(app.GameEndedPayload).Result)
		}
		mh.broadcastEvent(state, dispatcher, logger, ev)
	}
}

func (mh *matchHandler) recordResult(ctx context.Context, state *MatchState, logger runtime.Logger, result ports.GameResult) {
	logger.Info("recordResult: Team %d won %v after %d hands.", result.WinnerTeam, result.Scores, result.Hands)
	if state.Results == nil {
		return
	}
	if err := state.Results.RecordGameResult(ctx, result); err != nil {
		logger.Error("recordResult: Failed to record result: %v", err)
	}
}

// broadcastEvent handles the conversion and dispatching of one app event.
func (mh *matchHandler) broadcastEvent(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, ev app.Event) {
	opCode, ok := eventOpCodes[ev.Kind]
	if !ok {
		logger.Warn("Unknown event kind: %v", ev.Kind)
		return
	}

	bytes, err := json.Marshal(ev.Payload)
	if err != nil {
		logger.Error("Failed to marshal event %v: %v", ev.Kind, err)
		return
	}

	var recipients []runtime.Presence
	if len(ev.Recipients) > 0 {
		for _, uid := range ev.Recipients {
			if p, ok := state.Presences[uid]; ok {
				recipients = append(recipients, p)
			}
		}
		// Intended recipients that are not connected (bots) must not turn
		// into a broadcast.
		if len(recipients) == 0 {
			return
		}
	}

	if err := dispatcher.BroadcastMessage(opCode, bytes, recipients, nil, true); err != nil {
		logger.Error("Failed to send event %v: %v", ev.Kind, err)
	}
}

// sendError sends an error event to a specific user.
func (mh *matchHandler) sendError(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger, userID string, cause error) {
	bytes, err := json.Marshal(errorEvent{Code: domain.ErrorCode(cause), Message: cause.Error()})
	if err != nil {
		logger.Error("Failed to marshal error event: %v", err)
		return
	}

	presence, ok := state.Presences[userID]
	if !ok {
		logger.Warn("Cannot send error to %s: Presence not found", userID)
		return
	}

	if err := dispatcher.BroadcastMessage(OpError, bytes, []runtime.Presence{presence}, nil, true); err != nil {
		logger.Error("Failed to send error to %s: %v", userID, err)
	}
}

// updateLabel pushes the label when it changed.
func (mh *matchHandler) updateLabel(state *MatchState, dispatcher runtime.MatchDispatcher, logger runtime.Logger) {
	label, err := labelFor(state.Room).Marshal()
	if err != nil {
		logger.Error("UpdateLabel: Failed to marshal: %v", err)
		return
	}
	if label == state.Label {
		return
	}
	if err := dispatcher.MatchLabelUpdate(label); err != nil {
		logger.Error("UpdateLabel: Failed to update: %v", err)
		return
	}
	state.Label = label
}

func (mh *matchHandler) MatchTerminate(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, graceSeconds int) interface{} {
	logger.Debug("MatchTerminate: Match terminated with %d grace seconds", graceSeconds)
	return state
}

// MatchSignal answers "snapshot:<user id>" with that player's snapshot.
func (mh *matchHandler) MatchSignal(ctx context.Context, logger runtime.Logger, db *sql.DB, nk runtime.NakamaModule, dispatcher runtime.MatchDispatcher, tick int64, state interface{}, data string) (interface{}, string) {
	matchState, ok := state.(*MatchState)
	if !ok {
		return state, ""
	}
	const prefix = "snapshot:"
	if len(data) <= len(prefix) || data[:len(prefix)] != prefix {
		return state, ""
	}
	snap, err := matchState.Room.Snapshot(data[len(prefix):])
	if err != nil {
		return state, ""
	}
	b, err := json.Marshal(snap)
	if err != nil {
		logger.Error("MatchSignal: Failed to marshal snapshot: %v", err)
		return state, ""
	}
	return state, string(b)
}
