package coordinator

import "github.com/lukev/elpres/internal/view"

// PlayerRef is the minimal player identity carried in player_joined.
type PlayerRef struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// StateMsg is the filtered view sent to exactly one recipient.
type StateMsg struct {
	Type     string      `json:"type"`
	State    *view.State `json:"state"`
	PlayerID string      `json:"player_id"`
}

func newStateMsg(s *view.State, playerID string) StateMsg {
	return StateMsg{Type: "state", State: s, PlayerID: playerID}
}

// ErrorMsg reports a command-specific failure to the sender only.
type ErrorMsg struct {
	Type    string `json:"type"`
	Message string `json:"message"`
}

func newErrorMsg(message string) ErrorMsg {
	return ErrorMsg{Type: "error", Message: message}
}

// PlayerJoinedMsg announces a new live connection in the room.
type PlayerJoinedMsg struct {
	Type   string    `json:"type"`
	Player PlayerRef `json:"player"`
}

// PlayerDisconnectedMsg is a liveness hint; clients may instead rely on
// the disconnected flag inside State.
type PlayerDisconnectedMsg struct {
	Type     string `json:"type"`
	PlayerID string `json:"player_id"`
}

// GameOverMsg carries the finish order.
type GameOverMsg struct {
	Type    string   `json:"type"`
	Results []string `json:"results"`
}

// RestartVoteRequestedMsg announces a new restart vote to everyone but
// the initiator.
type RestartVoteRequestedMsg struct {
	Type          string `json:"type"`
	InitiatorName string `json:"initiator_name"`
}

// simpleMsg covers fixed, fieldless outbound kinds: restart_vote_passed,
// restart_vote_rejected, you_left.
type simpleMsg struct {
	Type string `json:"type"`
}
