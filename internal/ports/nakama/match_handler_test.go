package nakama

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"septica/internal/app"
	"septica/internal/bot"
	"septica/internal/domain"

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
	broadcasts   []broadcastCall
	labelUpdates int
}

type broadcastCall struct {
	opCode     int64
	data       []byte
	recipients []runtime.Presence
}

func (md *mockDispatcher) BroadcastMessage(opCode int64, data []byte, presences []runtime.Presence, sender runtime.Presence, reliable bool) error {
	md.broadcasts = append(md.broadcasts, broadcastCall{
		opCode:     opCode,
		data:       append([]byte(nil), data...),
		recipients: presences,
	})
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
	return nil
}

func (md *mockDispatcher) last() broadcastCall {
	return md.broadcasts[len(md.broadcasts)-1]
}

func (md *mockDispatcher) byOpCode(op int64) []broadcastCall {
	var out []broadcastCall
	for _, b := range md.broadcasts {
		if b.opCode == op {
			out = append(out, b)
		}
	}
	return out
}

// mockPresence satisfies runtime.Presence for seat bookkeeping.
type mockPresence struct {
	userID   string
	username string
}

func (p *mockPresence) GetUserId() string                  { return p.userID }
func (p *mockPresence) GetSessionId() string               { return "session-" + p.userID }
func (p *mockPresence) GetNodeId() string                  { return "node" }
func (p *mockPresence) GetHidden() bool                    { return false }
func (p *mockPresence) GetPersistence() bool               { return true }
func (p *mockPresence) GetUsername() string                { return p.username }
func (p *mockPresence) GetStatus() string                  { return "" }
func (p *mockPresence) GetReason() runtime.PresenceReason  { return runtime.PresenceReasonUnknown }

// mockMatchData wraps a presence with an op code and payload.
type mockMatchData struct {
	mockPresence
	opCode int64
	data   []byte
}

func (m *mockMatchData) GetOpCode() int64      { return m.opCode }
func (m *mockMatchData) GetData() []byte       { return m.data }
func (m *mockMatchData) GetReliable() bool     { return true }
func (m *mockMatchData) GetReceiveTime() int64 { return 0 }

func init() {
	// Load bot identities for testing.
	if err := bot.LoadIdentities("test_bot_identities.json"); err != nil {
		panic("Failed to load bot identities for tests: " + err.Error())
	}
}

func lobbyState(humans ...string) *MatchState {
	state := &MatchState{
		Presences: make(map[string]runtime.Presence),
		App:       app.NewService(nil),
		OwnerSeat: -1,
		Bots:      make(map[string]*bot.Agent),
	}
	for i, id := range humans {
		state.Seats[i] = id
		state.Presences[id] = &mockPresence{userID: id, username: "name-" + id}
	}
	state.OwnerSeat = findFirstHumanSeat(state.Seats[:])
	return state
}

func TestFindFirstHumanSeat(t *testing.T) {
	bot1 := bot.GetBotIdentity(0).UserID
	bot2 := bot.GetBotIdentity(1).UserID

	tests := []struct {
		name  string
		seats []string
		want  int
	}{
		{
			name:  "FirstHumanAfterBot",
			seats: []string{bot1, "user-1", "", ""},
			want:  1,
		},
		{
			name:  "AllBots",
			seats: []string{bot1, bot2, "", ""},
			want:  -1,
		},
		{
			name:  "AllEmpty",
			seats: []string{"", "", "", ""},
			want:  -1,
		},
		{
			name:  "FirstHumanIsSeatZero",
			seats: []string{"user-1", bot1, "user-2", ""},
			want:  0,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			if got := findFirstHumanSeat(test.seats); got != test.want {
				t.Fatalf("findFirstHumanSeat() = %d, want %d", got, test.want)
			}
		})
	}
}

func TestShouldTerminateNoHumans(t *testing.T) {
	bot1 := bot.GetBotIdentity(0).UserID
	bot2 := bot.GetBotIdentity(1).UserID

	tests := []struct {
		name  string
		seats []string
		want  bool
	}{
		{
			name:  "BotsOnly",
			seats: []string{bot1, bot2, "", ""},
			want:  true,
		},
		{
			name:  "HumansPresent",
			seats: []string{bot1, "user-1", "", ""},
			want:  false,
		},
		{
			name:  "AllEmpty",
			seats: []string{"", "", "", ""},
			want:  true,
		},
	}

	for _, test := range tests {
		test := test
		t.Run(test.name, func(t *testing.T) {
			if got := shouldTerminateNoHumans(test.seats); got != test.want {
				t.Fatalf("shouldTerminateNoHumans() = %t, want %t", got, test.want)
			}
		})
	}
}

func TestMatchLabel_Marshal(t *testing.T) {
	payload, err := json.Marshal(&MatchLabel{Open: 3, Game: "septica", Phase: "lobby"})
	if err != nil {
		t.Fatalf("Failed to marshal label: %v", err)
	}
	want := `{"open":3,"game":"septica","phase":"lobby"}`
	if string(payload) != want {
		t.Errorf("Got %s, want %s", payload, want)
	}
}

func TestProcessBots_AutoFillsSoloLobby(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := lobbyState("user-1")
	state.BotsEnabled = true
	state.BotAutoFillDelay = 2
	state.LastSinglePlayerTick = 8
	state.Tick = 10

	handler.processBots(context.Background(), state, dispatcher, noopLogger{})

	botCount := 0
	for _, seat := range state.Seats {
		if isBotUserId(seat) {
			botCount++
		}
	}

	if botCount != 3 {
		t.Fatalf("Expected 3 bots after auto-fill, got %d", botCount)
	}
	if state.GetOpenSeatsCount() != 0 {
		t.Fatalf("Expected no open seats after auto-fill, got %d", state.GetOpenSeatsCount())
	}
	if state.LastSinglePlayerTick != 0 {
		t.Fatalf("Expected auto-fill timer reset, got %d", state.LastSinglePlayerTick)
	}
	if len(state.Bots) != 3 {
		t.Fatalf("Expected 3 bot agents, got %d", len(state.Bots))
	}
	if len(dispatcher.broadcasts) == 0 || dispatcher.labelUpdates == 0 {
		t.Fatalf("Expected match state broadcast and label update after auto-fill")
	}
}

func TestProcessBots_TimerResetsWhenSecondHumanJoins(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := lobbyState("user-1", "user-2")
	state.BotsEnabled = true
	state.BotAutoFillDelay = 2
	state.LastSinglePlayerTick = 8
	state.Tick = 100

	handler.processBots(context.Background(), state, dispatcher, noopLogger{})

	if state.LastSinglePlayerTick != 0 {
		t.Fatalf("Expected timer reset with two humans, got %d", state.LastSinglePlayerTick)
	}
	for _, seat := range state.Seats {
		if isBotUserId(seat) {
			t.Fatalf("No bot should be seated with two humans present")
		}
	}
}

func TestBotDelayTicks_ScalesWithProfile(t *testing.T) {
	tests := []struct {
		tier domain.Difficulty
		want int
	}{
		{domain.DifficultyEasy, 1},
		{domain.DifficultyMedium, 1},
		{domain.DifficultyHard, 2},
		{domain.DifficultyExpert, 2},
	}
	for _, tt := range tests {
		got := botDelayTicks(bot.ProfileFor(tt.tier), 1, 3)
		if got != tt.want {
			t.Errorf("%s bot delay = %d ticks, want %d", tt.tier, got, tt.want)
		}
	}

	// The configured window still bounds an out-of-range thinking time.
	slow := bot.DifficultyProfile{ThinkingTime: 10 * time.Second}
	if got := botDelayTicks(slow, 1, 3); got != 3 {
		t.Errorf("slow profile delay = %d ticks, want max of 3", got)
	}
	fast := bot.DifficultyProfile{ThinkingTime: 0}
	if got := botDelayTicks(fast, 1, 3); got != 1 {
		t.Errorf("instant profile delay = %d ticks, want min of 1", got)
	}
}

func TestProcessBots_TurnDelayFollowsThinkingTime(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	botID := bot.GetBotIdentity(0).UserID

	state := lobbyState("user-1")
	state.Seats[1] = botID
	state.BotsEnabled = true
	state.BotMinDelay = 1
	state.BotMaxDelay = 3
	state.Tick = 50
	state.Game = &domain.Game{
		Players: []*domain.Player{
			{ID: "user-1", Name: "name-user-1", Kind: domain.KindHuman,
				Hand: []domain.Card{{Suit: domain.Clubs, Rank: domain.RankNine}}},
			{ID: botID, Name: "Bot", Kind: domain.KindAutomated, Difficulty: domain.DifficultyExpert,
				Hand: []domain.Card{{Suit: domain.Spades, Rank: domain.RankJack}}},
		},
		Deck:         domain.NewDeckFromCards(nil),
		CurrentIndex: 1,
		TargetScore:  11,
		Phase:        domain.PhasePlaying,
	}

	handler.processBots(context.Background(), state, dispatcher, noopLogger{})

	// An expert thinks for 1.6s, so its move lands two ticks out.
	if want := state.Tick + 2; state.BotWaitUntil != want {
		t.Fatalf("Expected expert bot to act at tick %d, scheduled for %d", want, state.BotWaitUntil)
	}
	if len(state.Game.Table) != 0 {
		t.Fatalf("Bot must not play before its scheduled tick")
	}

	// Once the scheduled tick arrives the move goes through.
	state.Tick = state.BotWaitUntil
	handler.processBots(context.Background(), state, dispatcher, noopLogger{})
	if len(state.Game.Table) != 1 {
		t.Fatalf("Expected the bot to play at its scheduled tick, table has %d cards", len(state.Game.Table))
	}
}

func TestHandleStartGame_OwnerOnly(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := lobbyState("user-1", "user-2")

	msg := &mockMatchData{
		mockPresence: mockPresence{userID: "user-2"},
		opCode:       OpStartGame,
	}
	handler.handleStartGame(context.Background(), state, dispatcher, noopLogger{}, msg)

	if state.Game != nil {
		t.Fatal("Non-owner must not be able to start the game")
	}
}

func TestHandleStartGame_DealsAndBroadcasts(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := lobbyState("user-1", "user-2")

	msg := &mockMatchData{
		mockPresence: mockPresence{userID: "user-1"},
		opCode:       OpStartGame,
	}
	handler.handleStartGame(context.Background(), state, dispatcher, noopLogger{}, msg)

	if state.Game == nil {
		t.Fatal("Expected game to start")
	}
	if state.Game.Phase != domain.PhasePlaying {
		t.Fatalf("Expected playing phase, got %s", state.Game.Phase)
	}
	for _, p := range state.Game.Players {
		if len(p.Hand) != app.HandSize {
			t.Fatalf("Player %s has %d cards, want %d", p.ID, len(p.Hand), app.HandSize)
		}
	}

	started := dispatcher.byOpCode(OpGameStarted)
	if len(started) != 1 {
		t.Fatalf("Expected one game_started broadcast, got %d", len(started))
	}
	var ev GameStartedEvent
	if err := json.Unmarshal(started[0].data, &ev); err != nil {
		t.Fatalf("Failed to unmarshal GameStartedEvent: %v", err)
	}
	if ev.FirstTurnSeat != 0 {
		t.Errorf("Expected seat 0 to lead, got %d", ev.FirstTurnSeat)
	}

	dealt := dispatcher.byOpCode(OpHandDealt)
	if len(dealt) != 2 {
		t.Fatalf("Expected a private hand for each human, got %d", len(dealt))
	}
	for _, call := range dealt {
		if len(call.recipients) != 1 {
			t.Fatalf("Hand payload must target exactly one presence, got %d", len(call.recipients))
		}
	}
}

func TestHandlePlayCard_RejectsOutOfTurn(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := lobbyState("user-1", "user-2")

	start := &mockMatchData{mockPresence: mockPresence{userID: "user-1"}, opCode: OpStartGame}
	handler.handleStartGame(context.Background(), state, dispatcher, noopLogger{}, start)
	if state.Game == nil {
		t.Fatal("Expected game to start")
	}

	offTurn := state.Game.Players[1]
	body, _ := json.Marshal(PlayCardRequest{Card: offTurn.Hand[0]})
	msg := &mockMatchData{
		mockPresence: mockPresence{userID: offTurn.ID},
		opCode:       OpPlayCard,
		data:         body,
	}
	handler.handlePlayCard(context.Background(), state, dispatcher, noopLogger{}, msg)

	errs := dispatcher.byOpCode(OpGameError)
	if len(errs) != 1 {
		t.Fatalf("Expected one error payload, got %d", len(errs))
	}
	if len(errs[0].recipients) != 1 || errs[0].recipients[0].GetUserId() != offTurn.ID {
		t.Fatal("Error must go only to the offending player")
	}
	if len(state.Game.Table) != 0 {
		t.Fatal("Rejected play must not reach the table")
	}
}

func TestHandlePlayCard_AppliesLegalPlay(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	state := lobbyState("user-1", "user-2")

	start := &mockMatchData{mockPresence: mockPresence{userID: "user-1"}, opCode: OpStartGame}
	handler.handleStartGame(context.Background(), state, dispatcher, noopLogger{}, start)
	if state.Game == nil {
		t.Fatal("Expected game to start")
	}

	current := state.Game.CurrentPlayer()
	valid := state.App.ValidMovesForCurrent(state.Game)
	if len(valid) == 0 {
		t.Fatal("Leader must have valid moves")
	}
	body, _ := json.Marshal(PlayCardRequest{Card: valid[0]})
	msg := &mockMatchData{
		mockPresence: mockPresence{userID: current.ID},
		opCode:       OpPlayCard,
		data:         body,
	}
	handler.handlePlayCard(context.Background(), state, dispatcher, noopLogger{}, msg)

	played := dispatcher.byOpCode(OpCardPlayed)
	if len(played) != 1 {
		t.Fatalf("Expected one card_played broadcast, got %d", len(played))
	}
	var ev CardPlayedEvent
	if err := json.Unmarshal(played[0].data, &ev); err != nil {
		t.Fatalf("Failed to unmarshal CardPlayedEvent: %v", err)
	}
	if ev.Card != valid[0] {
		t.Errorf("Broadcast card %v, want %v", ev.Card, valid[0])
	}
	if len(state.Game.Table) != 1 {
		t.Fatalf("Expected one card on the table, got %d", len(state.Game.Table))
	}
}

func TestMatchJoin_ReplacesBotInLobby(t *testing.T) {
	handler := &matchHandler{}
	dispatcher := &mockDispatcher{}
	botID := bot.GetBotIdentity(0).UserID
	state := lobbyState("user-1")
	state.Seats[1] = botID
	state.Seats[2] = bot.GetBotIdentity(1).UserID
	state.Seats[3] = bot.GetBotIdentity(2).UserID
	agent, err := bot.NewAgent(botID, "Radu", domain.DifficultyEasy, nil)
	if err != nil {
		t.Fatal(err)
	}
	state.Bots[botID] = agent

	joiner := &mockPresence{userID: "user-2", username: "name-user-2"}
	result := handler.MatchJoin(context.Background(), noopLogger{}, nil, nil, dispatcher, 1, state, []runtime.Presence{joiner})

	joined, ok := result.(*MatchState)
	if !ok {
		t.Fatal("MatchJoin must return *MatchState")
	}
	if joined.Seats[1] != "user-2" {
		t.Fatalf("Expected user-2 to take the bot's seat, got %q", joined.Seats[1])
	}
	if _, exists := joined.Bots[botID]; exists {
		t.Fatal("Replaced bot agent must be removed")
	}
}
