package lobbystate

import (
	"testing"

	"github.com/seanwolter/fun-euchre/internal/cards"
)

func TestCreateSeatsHostAtNorth(t *testing.T) {
	result := Create("lobby-1", "player-1", "Alice")
	if !result.OK {
		t.Fatalf("Create() rejected: %s", result.Message)
	}
	s := result.State
	if s.Phase != PhaseWaiting {
		t.Fatalf("Phase = %s, want %s", s.Phase, PhaseWaiting)
	}
	if s.Seats[0].Seat != cards.North || s.Seats[0].PlayerID != "player-1" || s.Seats[0].DisplayName != "Alice" {
		t.Fatalf("host seat = %+v, want north/player-1/Alice", s.Seats[0])
	}
	if !s.Seats[0].Connected {
		t.Fatalf("host seat must start connected")
	}
}

func TestCreateRejectsBlankDisplayName(t *testing.T) {
	result := Create("lobby-1", "player-1", "   ")
	if result.OK || result.Code != CodeInvalidAction {
		t.Fatalf("Create() with blank name = %+v, want CodeInvalidAction", result)
	}
}

func TestJoinSeatsInNorthEastSouthWestOrder(t *testing.T) {
	s := Create("lobby-1", "player-1", "Alice").State
	r2 := Join(s, "player-2", "Bob")
	if !r2.OK {
		t.Fatalf("Join() rejected: %s", r2.Message)
	}
	if r2.State.Seats[1].Seat != cards.East || r2.State.Seats[1].PlayerID != "player-2" {
		t.Fatalf("second join seat = %+v, want east/player-2", r2.State.Seats[1])
	}
}

func TestJoinRejectsDuplicatePlayer(t *testing.T) {
	s := Create("lobby-1", "player-1", "Alice").State
	result := Join(s, "player-1", "Alice Again")
	if result.OK || result.Code != CodeInvalidAction {
		t.Fatalf("Join() with duplicate player = %+v, want CodeInvalidAction", result)
	}
}

func TestJoinRejectsWhenLobbyFull(t *testing.T) {
	s := Create("lobby-1", "player-1", "Alice").State
	for i, name := range []string{"Bob", "Carol", "Dave"} {
		r := Join(s, name, name)
		if !r.OK {
			t.Fatalf("Join(%s) rejected: %s", name, r.Message)
		}
		s = r.State
		_ = i
	}
	result := Join(s, "player-5", "Eve")
	if result.OK || result.Code != CodeInvalidState {
		t.Fatalf("Join() into a full lobby = %+v, want CodeInvalidState", result)
	}
}

func TestJoinRejectsOutsideWaitingPhase(t *testing.T) {
	s := Create("lobby-1", "player-1", "Alice").State
	s.Phase = PhaseInGame
	result := Join(s, "player-2", "Bob")
	if result.OK || result.Code != CodeInvalidState {
		t.Fatalf("Join() outside waiting = %+v, want CodeInvalidState", result)
	}
}

func TestUpdateDisplayNameRenamesSeatedPlayer(t *testing.T) {
	s := Create("lobby-1", "player-1", "Alice").State
	result := UpdateDisplayName(s, "player-1", "Alicia")
	if !result.OK {
		t.Fatalf("UpdateDisplayName() rejected: %s", result.Message)
	}
	if result.State.Seats[0].DisplayName != "Alicia" {
		t.Fatalf("DisplayName = %q, want Alicia", result.State.Seats[0].DisplayName)
	}
}

func TestUpdateDisplayNameRejectsUnseatedPlayer(t *testing.T) {
	s := Create("lobby-1", "player-1", "Alice").State
	result := UpdateDisplayName(s, "ghost", "Ghost")
	if result.OK || result.Code != CodeUnauthorized {
		t.Fatalf("UpdateDisplayName(unseated) = %+v, want CodeUnauthorized", result)
	}
}

func TestSetConnectionIsPhaseAgnostic(t *testing.T) {
	s := Create("lobby-1", "player-1", "Alice").State
	s.Phase = PhaseInGame
	result := SetConnection(s, "player-1", false)
	if !result.OK {
		t.Fatalf("SetConnection() rejected: %s", result.Message)
	}
	if result.State.Seats[0].Connected {
		t.Fatalf("Connected = true, want false")
	}
}

func TestStartRequiresHostAndFullLobby(t *testing.T) {
	s := Create("lobby-1", "player-1", "Alice").State

	if result := Start(s, "player-1"); result.OK || result.Code != CodeInvalidAction {
		t.Fatalf("Start() with empty seats = %+v, want CodeInvalidAction", result)
	}

	for _, name := range []string{"player-2", "player-3", "player-4"} {
		s = Join(s, name, name).State
	}

	if result := Start(s, "player-2"); result.OK || result.Code != CodeUnauthorized {
		t.Fatalf("Start() by non-host = %+v, want CodeUnauthorized", result)
	}

	result := Start(s, "player-1")
	if !result.OK {
		t.Fatalf("Start() by host on a full lobby rejected: %s", result.Message)
	}
	if result.State.Phase != PhaseInGame {
		t.Fatalf("Phase after Start() = %s, want %s", result.State.Phase, PhaseInGame)
	}
}

func TestStartRejectsAlreadyStartedLobby(t *testing.T) {
	s := Create("lobby-1", "player-1", "Alice").State
	s.Phase = PhaseInGame
	result := Start(s, "player-1")
	if result.OK || result.Code != CodeInvalidState {
		t.Fatalf("Start() on an in-progress lobby = %+v, want CodeInvalidState", result)
	}
}

func TestReassignHostPicksLowestSeatedPlayer(t *testing.T) {
	s := Create("lobby-1", "player-1", "Alice").State
	s = Join(s, "player-2", "Bob").State
	s.Seats[0].PlayerID = "" // host disconnected and was pruned
	result := ReassignHost(s)
	if !result.OK {
		t.Fatalf("ReassignHost() rejected")
	}
	if result.State.HostPlayerID != "player-2" {
		t.Fatalf("HostPlayerID = %q, want player-2 (lowest remaining seat)", result.State.HostPlayerID)
	}
}

func TestCloneIsIndependent(t *testing.T) {
	s := Create("lobby-1", "player-1", "Alice").State
	clone := s.Clone()
	clone.Seats[0].DisplayName = "Mutated"
	if s.Seats[0].DisplayName == "Mutated" {
		t.Fatalf("mutating a clone's seat mutated the original")
	}
}
