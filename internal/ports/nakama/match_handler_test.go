package nakama

import (
	"context"
	"encoding/json"
	"math/rand"
	"strings"
	"testing"

	"truco/internal/app"
	"truco/internal/config"
	"truco/internal/domain"
	"truco/internal/ports"

	jwt "github.com/form3tech-oss/jwt-go"
	"github.com/heroiclabs/nakama-common/api"
	"github.com/heroiclabs/nakama-common/runtime"
)

// noopLogger implements runtime.Logger for tests that only need to satisfy the interface.
type noopLogger struct{}

func (noopLogger) Debug(string, ...interface{}) {}
func (noopLogger) Info(string, ...interface{})  {}
func (noopLogger) Warn(string, ...interface{})  {}
func (noopLogger) Error(string, ...interface{}) {}
func (noopLogger) WithField(string, interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) WithFields(map[string]interface{}) runtime.Logger {
	return noopLogger{}
}
func (noopLogger) Fields() map[string]interface{} {
	return nil
}

// mockDispatcher records match dispatcher calls for assertions.
type mockDispatcher struct {
	broadcastCount int
	labelUpdates   int
	lastLabel      string
	lastOpCode     int64
	lastData       []byte
	lastPresences  []runtime.Presence
	opCodes        []int64
}

func (md *mockDispatcher) BroadcastMessage(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	md.broadcastCount++
	md.lastOpCode = opCode
	md.lastData = append([]byte(nil), data...)
	md.lastPresences = presences
	md.opCodes = append(md.opCodes, opCode)
	return nil
}

func (md *mockDispatcher) BroadcastMessageDeferred(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	return nil
}

func (md *mockDispatcher) MatchKick(presences []runtime.Presence) error {
	return nil
}

func (md *mockDispatcher) MatchLabelUpdate(label string) error {
	md.labelUpdates++
	md.lastLabel = label
	return nil
}

func (md *mockDispatcher) count(opCode int64) int {
	n := 0
	for _, op := range md.opCodes {
		if op == opCode {
			n++
		}
	}
	return n
}

type mockPresence struct {
	userID   string
	username string
}

func (p mockPresence) GetHidden() bool                   { return false }
func (p mockPresence) GetPersistence() bool              { return false }
func (p mockPresence) GetUsername() string               { return p.username }
func (p mockPresence) GetStatus() string                 { return "" }
func (p mockPresence) GetReason() runtime.PresenceReason { return runtime.PresenceReasonUnknown }
func (p mockPresence) GetUserId() string                 { return p.userID }
func (p mockPresence) GetSessionId() string              { return "session-" + p.userID }
func (p mockPresence) GetNodeId() string                 { return "node" }

type mockMatchData struct {
	mockPresence
	opCode int64
	data   []byte
}

func (d mockMatchData) GetOpCode() int64      { return d.opCode }
func (d mockMatchData) GetData() []byte       { return d.data }
func (d mockMatchData) GetReliable() bool     { return true }
func (d mockMatchData) GetReceiveTime() int64 { return 0 }

type mockResults struct {
	results []ports.GameResult
}

func (m *mockResults) RecordGameResult(ctx context.Context, result ports.GameResult) error {
	m.results = append(m.results, result)
	return nil
}

func card(r domain.Rank, s domain.Suit) domain.Card { return domain.Card{Rank: r, Suit: s} }

// Indicator 4D, manilha 5. Seat 0 takes the first trick with 3C.
func stackedDeal(*rand.Rand) (domain.Deal, error) {
	return domain.Deal{
		Hands: [domain.SeatCount][]domain.Card{
			{card(domain.RankThree, domain.SuitClubs), card(domain.RankKing, domain.SuitDiamonds), card(domain.RankTwo, domain.SuitDiamonds)},
			{card(domain.RankFour, domain.SuitSpades), card(domain.RankKing, domain.SuitSpades), card(domain.RankTwo, domain.SuitSpades)},
			{card(domain.RankSix, domain.SuitDiamonds), card(domain.RankQueen, domain.SuitDiamonds), card(domain.RankTwo, domain.SuitHearts)},
			{card(domain.RankSeven, domain.SuitDiamonds), card(domain.RankJack, domain.SuitDiamonds), card(domain.RankTwo, domain.SuitClubs)},
		},
		Indicator: card(domain.RankFour, domain.SuitDiamonds),
	}, nil
}

func testConfig() config.GameConfig {
	cfg := config.Default()
	cfg.BotsEnabled = false
	cfg.BotMinDelaySeconds = 0
	cfg.BotMaxDelaySeconds = 0
	cfg.BotAutoFillDelaySeconds = 2
	return cfg
}

func newTestState(cfg config.GameConfig, results ports.ResultsPort) *MatchState {
	state := newMatchState("match-1", cfg, results, rand.New(rand.NewSource(1)))
	state.Room = app.NewRoom("match-1", app.RoomConfig{
		Rules: cfg.Rules(),
		Rand:  rand.New(rand.NewSource(1)),
		Deal:  stackedDeal,
	})
	return state
}

func presence(userID string) mockPresence {
	return mockPresence{userID: userID, username: "name-" + userID}
}

func message(userID string, opCode int64, payload interface{}) runtime.MatchData {
	var data []byte
	if payload != nil {
		data, _ = json.Marshal(payload)
	}
	return mockMatchData{mockPresence: presence(userID), opCode: opCode, data: data}
}

func joinHumans(t *testing.T, handler *matchHandler, state *MatchState, dispatcher *mockDispatcher, userIDs ...string) {
	t.Helper()
	for _, uid := range userIDs {
		_, ok, reason := handler.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, dispatcher, state.Tick, state, presence(uid), nil)
		if !ok {
			t.Fatalf("join attempt for %s rejected: %s", uid, reason)
		}
		handler.MatchJoin(context.Background(), noopLogger{}, nil, nil, dispatcher, state.Tick, state, []runtime.Presence{presence(uid)})
	}
}

func loop(handler *matchHandler, state *MatchState, dispatcher *mockDispatcher, tick int64, messages ...runtime.MatchData) interface{} {
	return handler.MatchLoop(context.Background(), noopLogger{}, nil, nil, dispatcher, tick, state, messages)
}

func TestMatchLabel_Marshal(t *testing.T) {
	tests := []struct {
		name     string
		label    MatchLabel
		expected map[string]interface{}
	}{
		{
			name:     "Lobby",
			label:    MatchLabel{Open: 3, Game: GameName, Phase: domain.PhaseNotStarted},
			expected: map[string]interface{}{"open": 3.0, "game": "truco", "phase": "not_started"},
		},
		{
			name:     "Playing",
			label:    MatchLabel{Open: 0, Game: GameName, Phase: domain.PhaseTrickInProgress},
			expected: map[string]interface{}{"open": 0.0, "game": "truco", "phase": "trick_in_progress"},
		},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			payload, err := test.label.Marshal()
			if err != nil {
				t.Fatalf("Failed to marshal label: %v", err)
			}
			var got map[string]interface{}
			if err := json.Unmarshal([]byte(payload), &got); err != nil {
				t.Fatalf("Label is not JSON: %v", err)
			}
			if len(got) != len(test.expected) {
				t.Fatalf("Got %v, want %v", got, test.expected)
			}
			for k, v := range test.expected {
				if got[k] != v {
					t.Errorf("label[%s] = %v, want %v", k, got[k], v)
				}
			}
		})
	}
}

func TestMatchJoin_SeatsPlayersAndUpdatesLabel(t *testing.T) {
	handler := newMatchHandler()
	dispatcher := &mockDispatcher{}
	state := newTestState(testConfig(), nil)

	joinHumans(t, handler, state, dispatcher, "user-0", "user-1")

	if state.Room.SeatedCount() != 2 {
		t.Fatalf("Expected 2 seated players, got %d", state.Room.SeatedCount())
	}
	if seat, ok := state.Room.SeatOf("user-1"); !ok || seat != 1 {
		t.Fatalf("Expected user-1 in seat 1, got %d (%t)", seat, ok)
	}
	if dispatcher.labelUpdates != 2 {
		t.Fatalf("Expected 2 label updates, got %d", dispatcher.labelUpdates)
	}
	var label map[string]interface{}
	if err := json.Unmarshal([]byte(dispatcher.lastLabel), &label); err != nil {
		t.Fatalf("Label is not JSON: %v", err)
	}
	if label["open"] != 2.0 {
		t.Fatalf("Expected 2 open seats in label, got %s", dispatcher.lastLabel)
	}
	if dispatcher.count(OpPlayerJoined) != 2 {
		t.Fatalf("Expected 2 player joined events, got %d", dispatcher.count(OpPlayerJoined))
	}
}

func TestMatchJoinAttempt_RejectsFifthPlayer(t *testing.T) {
	handler := newMatchHandler()
	dispatcher := &mockDispatcher{}
	state := newTestState(testConfig(), nil)
	joinHumans(t, handler, state, dispatcher, "user-0", "user-1", "user-2", "user-3")

	_, ok, reason := handler.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, dispatcher, 0, state, presence("user-4"), nil)
	if ok {
		t.Fatalf("Expected fifth player to be rejected")
	}
	if reason != "Match full" {
		t.Fatalf("Unexpected reason %q", reason)
	}

	_, ok, _ = handler.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, dispatcher, 0, state, presence("user-2"), nil)
	if !ok {
		t.Fatalf("Expected a seated player to be allowed back in")
	}
}

func TestMatchLoop_OutOfTurnPlaySendsPrivateError(t *testing.T) {
	handler := newMatchHandler()
	dispatcher := &mockDispatcher{}
	state := newTestState(testConfig(), nil)
	joinHumans(t, handler, state, dispatcher, "user-0", "user-1", "user-2", "user-3")

	loop(handler, state, dispatcher, 1, message("user-0", OpStartRound, nil))
	if state.Room.Phase() != domain.PhaseTrickInProgress {
		t.Fatalf("Expected trick in progress, got %s", state.Room.Phase())
	}

	loop(handler, state, dispatcher, 2, message("user-1", OpPlayCard, playCardRequest{CardIndex: 0}))

	if dispatcher.lastOpCode != OpError {
		t.Fatalf("Expected error opcode %d, got %d", OpError, dispatcher.lastOpCode)
	}
	if len(dispatcher.lastPresences) != 1 || dispatcher.lastPresences[0].GetUserId() != "user-1" {
		t.Fatalf("Expected the error to reach only user-1, got %v", dispatcher.lastPresences)
	}
	var ev errorEvent
	if err := json.Unmarshal(dispatcher.lastData, &ev); err != nil {
		t.Fatalf("Failed to decode error event: %v", err)
	}
	if ev.Code != "NotYourTurnError" {
		t.Fatalf("Expected NotYourTurnError, got %s", ev.Code)
	}
	if got := len(state.Room.Game().Hands[1]); got != domain.HandSize {
		t.Fatalf("Rejected play changed the hand: %d cards", got)
	}
}

func TestMatchLoop_MalformedPayloadIsRejected(t *testing.T) {
	handler := newMatchHandler()
	dispatcher := &mockDispatcher{}
	state := newTestState(testConfig(), nil)
	joinHumans(t, handler, state, dispatcher, "user-0", "user-1", "user-2", "user-3")
	loop(handler, state, dispatcher, 1, message("user-0", OpStartRound, nil))

	bad := mockMatchData{mockPresence: presence("user-0"), opCode: OpPlayCard, data: []byte("{not json")}
	loop(handler, state, dispatcher, 2, bad)

	var ev errorEvent
	if err := json.Unmarshal(dispatcher.lastData, &ev); err != nil {
		t.Fatalf("Failed to decode error event: %v", err)
	}
	if dispatcher.lastOpCode != OpError || ev.Code != "NotAllowedError" {
		t.Fatalf("Expected NotAllowedError, got op %d code %s", dispatcher.lastOpCode, ev.Code)
	}
}

func TestMatchLoop_GameEndRecordsResult(t *testing.T) {
	handler := newMatchHandler()
	dispatcher := &mockDispatcher{}
	results := &mockResults{}
	state := newTestState(testConfig(), results)
	joinHumans(t, handler, state, dispatcher, "user-0", "user-1", "user-2", "user-3")

	loop(handler, state, dispatcher, 1, message("user-0", OpStartRound, nil))
	state.Room.Game().Score.Teams[domain.Team0].GameScore = 11

	loop(handler, state, dispatcher, 2,
		message("user-0", OpCallTruco, nil),
		message("user-3", OpRespondTruco, respondTrucoRequest{Response: domain.ResponseDecline}),
	)

	if state.Room.Phase() != domain.PhaseGameOver {
		t.Fatalf("Expected game over, got %s", state.Room.Phase())
	}
	if len(results.results) != 1 {
		t.Fatalf("Expected one recorded result, got %d", len(results.results))
	}
	res := results.results[0]
	if res.WinnerTeam != 0 || res.Scores != [2]int{12, 0} {
		t.Fatalf("Unexpected result %+v", res)
	}
	if dispatcher.count(OpGameEnded) != 1 || dispatcher.count(OpRoundEnded) != 1 {
		t.Fatalf("Expected one round ended and one game ended event, got %d and %d", dispatcher.count(OpRoundEnded), dispatcher.count(OpGameEnded))
	}
}

func TestProcessPause_DealsAfterDelay(t *testing.T) {
	handler := newMatchHandler()
	dispatcher := &mockDispatcher{}
	cfg := testConfig()
	cfg.AutoDeal = false
	cfg.NextHandDelaySeconds = 2
	state := newTestState(cfg, nil)
	joinHumans(t, handler, state, dispatcher, "user-0", "user-1", "user-2", "user-3")

	loop(handler, state, dispatcher, 1, message("user-0", OpStartRound, nil))
	loop(handler, state, dispatcher, 2,
		message("user-0", OpCallTruco, nil),
		message("user-1", OpRespondTruco, respondTrucoRequest{Response: domain.ResponseDecline}),
	)
	if state.Room.Phase() != domain.PhaseRoundOver {
		t.Fatalf("Expected round over, got %s", state.Room.Phase())
	}
	if state.NextHandAt != 4 {
		t.Fatalf("Expected next hand at tick 4, got %d", state.NextHandAt)
	}

	loop(handler, state, dispatcher, 3)
	if state.Room.Phase() != domain.PhaseRoundOver {
		t.Fatalf("Dealt before the delay elapsed")
	}

	loop(handler, state, dispatcher, 4)
	if state.Room.Phase() != domain.PhaseTrickInProgress {
		t.Fatalf("Expected a new hand, got %s", state.Room.Phase())
	}
	if state.Room.Game().HandNumber != 2 {
		t.Fatalf("Expected hand 2, got %d", state.Room.Game().HandNumber)
	}
	if state.NextHandAt != 0 {
		t.Fatalf("Expected pause timer reset, got %d", state.NextHandAt)
	}
}

func TestProcessBots_FillsSoloLobby(t *testing.T) {
	handler := newMatchHandler()
	dispatcher := &mockDispatcher{}
	cfg := testConfig()
	cfg.BotsEnabled = true
	state := newTestState(cfg, nil)
	joinHumans(t, handler, state, dispatcher, "user-0")
	labels := dispatcher.labelUpdates

	state.LastSinglePlayerTick = 8
	loop(handler, state, dispatcher, 10)

	if state.Room.SeatedCount() != domain.SeatCount {
		t.Fatalf("Expected a full table, got %d", state.Room.SeatedCount())
	}
	if len(state.Bots) != 3 {
		t.Fatalf("Expected 3 bots, got %d", len(state.Bots))
	}
	if state.GetHumanPlayerCount() != 1 {
		t.Fatalf("Expected 1 human, got %d", state.GetHumanPlayerCount())
	}
	if state.LastSinglePlayerTick != 0 {
		t.Fatalf("Expected auto-fill timer reset, got %d", state.LastSinglePlayerTick)
	}
	if dispatcher.labelUpdates != labels+1 {
		t.Fatalf("Expected one label update after auto-fill, got %d", dispatcher.labelUpdates-labels)
	}
}

func TestProcessBots_WaitsForAutoFillDelay(t *testing.T) {
	handler := newMatchHandler()
	dispatcher := &mockDispatcher{}
	cfg := testConfig()
	cfg.BotsEnabled = true
	state := newTestState(cfg, nil)
	joinHumans(t, handler, state, dispatcher, "user-0")

	loop(handler, state, dispatcher, 5)
	if state.LastSinglePlayerTick != 5 {
		t.Fatalf("Expected timer to start at tick 5, got %d", state.LastSinglePlayerTick)
	}
	loop(handler, state, dispatcher, 6)
	if state.Room.SeatedCount() != 1 {
		t.Fatalf("Bots joined before the delay: %d seated", state.Room.SeatedCount())
	}
}

func TestProcessBots_BotTakesItsTurn(t *testing.T) {
	handler := newMatchHandler()
	dispatcher := &mockDispatcher{}
	cfg := testConfig()
	cfg.BotsEnabled = true
	state := newTestState(cfg, nil)
	joinHumans(t, handler, state, dispatcher, "user-0")
	state.LastSinglePlayerTick = 1
	loop(handler, state, dispatcher, 3)

	loop(handler, state, dispatcher, 4,
		message("user-0", OpStartRound, nil),
		message("user-0", OpPlayCard, playCardRequest{CardIndex: 0}),
	)

	view := state.Room.Game().ViewFor(1)
	if len(view.Hand) != domain.HandSize-1 && view.Phase != domain.PhaseBiddingOpen {
		t.Fatalf("Expected the seat 1 bot to act, phase %s hand %d", view.Phase, len(view.Hand))
	}
}

func TestMatchJoin_HumanReplacesBotInLobby(t *testing.T) {
	handler := newMatchHandler()
	dispatcher := &mockDispatcher{}
	cfg := testConfig()
	cfg.BotsEnabled = true
	state := newTestState(cfg, nil)
	joinHumans(t, handler, state, dispatcher, "user-0")
	state.LastSinglePlayerTick = 1
	loop(handler, state, dispatcher, 3)

	joinHumans(t, handler, state, dispatcher, "user-9")

	seat, ok := state.Room.SeatOf("user-9")
	if !ok || seat != 1 {
		t.Fatalf("Expected user-9 to take bot seat 1, got %d (%t)", seat, ok)
	}
	if len(state.Bots) != 2 {
		t.Fatalf("Expected 2 bots left, got %d", len(state.Bots))
	}
	if state.GetHumanPlayerCount() != 2 {
		t.Fatalf("Expected 2 humans, got %d", state.GetHumanPlayerCount())
	}
}

func TestMatchLeave_TerminatesWithoutHumans(t *testing.T) {
	handler := newMatchHandler()
	dispatcher := &mockDispatcher{}
	state := newTestState(testConfig(), nil)
	joinHumans(t, handler, state, dispatcher, "user-0", "user-1")

	got := handler.MatchLeave(context.Background(), noopLogger{}, nil, nil, dispatcher, 0, state, []runtime.Presence{presence("user-0")})
	if got == nil {
		t.Fatalf("Match ended while a human was still connected")
	}
	got = handler.MatchLeave(context.Background(), noopLogger{}, nil, nil, dispatcher, 0, state, []runtime.Presence{presence("user-1")})
	if got != nil {
		t.Fatalf("Expected the match to terminate")
	}
}

func TestMatchLeave_KeepsSeatDuringGame(t *testing.T) {
	handler := newMatchHandler()
	dispatcher := &mockDispatcher{}
	state := newTestState(testConfig(), nil)
	joinHumans(t, handler, state, dispatcher, "user-0", "user-1", "user-2", "user-3")
	loop(handler, state, dispatcher, 1, message("user-0", OpStartRound, nil))

	handler.MatchLeave(context.Background(), noopLogger{}, nil, nil, dispatcher, 2, state, []runtime.Presence{presence("user-2")})
	if state.Room.SeatedCount() != domain.SeatCount {
		t.Fatalf("Expected the seat to be kept, got %d seated", state.Room.SeatedCount())
	}

	_, ok, _ := handler.MatchJoinAttempt(context.Background(), noopLogger{}, nil, nil, dispatcher, 3, state, presence("user-2"), nil)
	if !ok {
		t.Fatalf("Expected user-2 to rejoin")
	}
	handler.MatchJoin(context.Background(), noopLogger{}, nil, nil, dispatcher, 3, state, []runtime.Presence{presence("user-2")})
	if seat, _ := state.Room.SeatOf("user-2"); seat != 2 {
		t.Fatalf("Expected user-2 back in seat 2, got %d", seat)
	}
}

func TestMatchSignal_ReturnsSnapshot(t *testing.T) {
	handler := newMatchHandler()
	dispatcher := &mockDispatcher{}
	state := newTestState(testConfig(), nil)
	joinHumans(t, handler, state, dispatcher, "user-0")

	_, out := handler.MatchSignal(context.Background(), noopLogger{}, nil, nil, dispatcher, 0, state, "snapshot:user-0")
	if !strings.Contains(out, `"room_id":"match-1"`) {
		t.Fatalf("Unexpected snapshot %s", out)
	}
	_, out = handler.MatchSignal(context.Background(), noopLogger{}, nil, nil, dispatcher, 0, state, "snapshot:nobody")
	if out != "" {
		t.Fatalf("Expected no snapshot for a stranger, got %s", out)
	}
}

func TestExtractUserIDFromToken(t *testing.T) {
	token, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"uid": "user-42", "usn": "someone"}).SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("Failed to sign token: %v", err)
	}
	uid, err := extractUserIDFromToken(token)
	if err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if uid != "user-42" {
		t.Fatalf("uid = %s, want user-42", uid)
	}

	if _, err := extractUserIDFromToken("not-a-token"); err == nil {
		t.Fatalf("Expected an error for a malformed token")
	}

	noUID, _ := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"usn": "someone"}).SignedString([]byte("secret"))
	if _, err := extractUserIDFromToken(noUID); err == nil {
		t.Fatalf("Expected an error for a token without uid")
	}
}

type mockMultiUpdater struct {
	storageWrites []*runtime.StorageWrite
	walletUpdates []*runtime.WalletUpdate
	err           error
}

func (m *mockMultiUpdater) MultiUpdate(ctx context.Context, accountUpdates []*runtime.AccountUpdate, storageWrites []*runtime.StorageWrite, storageDeletes []*runtime.StorageDelete, walletUpdates []*runtime.WalletUpdate, updateLedger bool) ([]*api.StorageObjectAck, []*runtime.WalletUpdateResult, error) {
	m.storageWrites = storageWrites
	m.walletUpdates = walletUpdates
	return nil, nil, m.err
}

func TestResultsAdapter_CreditsHumanWinners(t *testing.T) {
	nk := &mockMultiUpdater{}
	adapter := NewNakamaResultsAdapter(nk)
	result := ports.GameResult{
		RoomID:     "match-1",
		WinnerTeam: 1,
		Scores:     [2]int{7, 12},
		Players: []ports.ResultPlayer{
			{UserID: "user-0", Seat: 0, Team: 0},
			{UserID: "user-1", Seat: 1, Team: 1},
			{UserID: "bot-2", Seat: 2, Team: 0, Bot: true},
			{UserID: "bot-3", Seat: 3, Team: 1, Bot: true},
		},
	}

	if err := adapter.RecordGameResult(context.Background(), result); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if len(nk.storageWrites) != 1 || nk.storageWrites[0].Key != "match-1" || nk.storageWrites[0].Collection != resultsCollection {
		t.Fatalf("Unexpected storage writes %+v", nk.storageWrites)
	}
	if len(nk.walletUpdates) != 1 || nk.walletUpdates[0].UserID != "user-1" {
		t.Fatalf("Expected only user-1 to be credited, got %+v", nk.walletUpdates)
	}
	if nk.walletUpdates[0].Changeset[winsWalletKey] != 1 {
		t.Fatalf("Expected one win, got %v", nk.walletUpdates[0].Changeset)
	}
}

func TestResultsAdapter_DuplicateIsIgnored(t *testing.T) {
	nk := &mockMultiUpdater{err: runtime.ErrStorageRejectedVersion}
	adapter := NewNakamaResultsAdapter(nk)

	err := adapter.RecordGameResult(context.Background(), ports.GameResult{RoomID: "match-1"})
	if err != nil {
		t.Fatalf("Expected a duplicate write to be ignored, got %v", err)
	}
	if err := adapter.RecordGameResult(context.Background(), ports.GameResult{}); err == nil {
		t.Fatalf("Expected an error without a room id")
	}
}

type mockAccounts struct {
	userID, username, displayName string
	metadata                      map[string]interface{}
}

func (m *mockAccounts) AccountUpdateId(ctx context.Context, userID, username string, metadata map[string]interface{}, displayName, timezone, location, langTag, avatarUrl string) error {
	m.userID, m.username, m.displayName, m.metadata = userID, username, displayName, metadata
	return nil
}

func TestAccountAdapter_TagsTrucoPlayers(t *testing.T) {
	nk := &mockAccounts{}
	if err := NewNakamaAccountAdapter(nk).UpdateProfile(context.Background(), "user-1", "BraveJack12", "Brave Jack"); err != nil {
		t.Fatalf("Unexpected error: %v", err)
	}
	if nk.userID != "user-1" || nk.username != "BraveJack12" || nk.displayName != "Brave Jack" {
		t.Fatalf("Unexpected update %+v", nk)
	}
	if nk.metadata["game"] != GameName {
		t.Fatalf("Expected game metadata, got %v", nk.metadata)
	}
}
