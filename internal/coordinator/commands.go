package coordinator

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/lukev/elpres/internal/cards"
	"github.com/lukev/elpres/internal/liveness"
	"github.com/lukev/elpres/internal/model"
	"github.com/lukev/elpres/internal/rules"
	"github.com/lukev/elpres/internal/vote"
)

// envelope is the inbound command shape: a type tag and a command-
// specific payload.
type envelope struct {
	Type    string          `json:"type"`
	Payload json.RawMessage `json:"payload,omitempty"`
}

type playPayload struct {
	Cards []string `json:"cards"`
}

type claimTradePayload struct {
	Role string `json:"role"`
}

type restartVotePayload struct {
	Yes bool `json:"yes"`
}

type spectatorPreferencePayload struct {
	WantsToPlay bool `json:"wants_to_play"`
}

type tagDickPayload struct {
	TargetID string `json:"target_id"`
}

// HandleMessage dispatches one inbound command from playerID. Every
// branch is responsible for its own persistence and broadcast.
func (r *Room) HandleMessage(playerID string, raw []byte) {
	var env envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		r.mu.Lock()
		r.sendError(playerID, "malformed message")
		r.mu.Unlock()
		return
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	// Any inbound message proves the player is alive: cancel a running
	// grace countdown and push the heartbeat deadline out.
	if r.room.PlayerByID(playerID) != nil {
		if r.timers.Cancel(r.playerKey(playerID, liveness.DisconnectSubject)) {
			r.broadcastState()
		}
		r.armHeartbeat(playerID)
	}

	switch env.Type {
	case "heartbeat":
		// Handled above; a heartbeat carries no other effect.
	case "state_request":
		r.sendState(playerID)
	case "leave":
		r.handleLeave(playerID)
	case "play":
		r.handlePlay(playerID, env.Payload)
	case "pass":
		r.handlePass(playerID)
	case "start_game":
		r.handleStartGame(playerID)
	case "claim_trade":
		r.handleClaimTrade(playerID, env.Payload)
	case "request_restart_vote":
		r.handleRequestRestartVote(playerID)
	case "restart_vote":
		r.handleRestartVote(playerID, env.Payload)
	case "spectator_preference":
		r.handleSpectatorPreference(playerID, env.Payload)
	case "tag_dick":
		r.handleTagDick(playerID, env.Payload)
	default:
		r.sendError(playerID, fmt.Sprintf("unknown command %q", env.Type))
	}
}

func (r *Room) handleLeave(playerID string) {
	conn, ok := r.conns[playerID]
	if ok {
		conn.Send(simpleMsg{Type: "you_left"})
	}
	r.forceRemoveLocked(playerID)
	if closer, isCloser := conn.(interface{ CloseConn() }); ok && isCloser {
		closer.CloseConn()
	}
}

func (r *Room) handlePlay(playerID string, payload json.RawMessage) {
	g := r.room.CurrentGame
	if g == nil {
		r.sendError(playerID, "no game in progress")
		return
	}
	idx := g.PlayerIndex(playerID)
	if idx < 0 {
		r.sendError(playerID, "you are not seated in this game")
		return
	}

	var p playPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		r.sendError(playerID, "malformed play")
		return
	}
	play := cards.Play{Cards: make([]cards.Card, 0, len(p.Cards))}
	for _, s := range p.Cards {
		c, err := cards.ParseCard(s)
		if err != nil {
			r.sendError(playerID, "invalid card in play")
			return
		}
		play.Cards = append(play.Cards, c)
	}

	if err := r.engine.ApplyPlay(g, idx, play); err != nil {
		r.sendError(playerID, err.Error())
		return
	}

	if rules.IsGameOver(g) {
		r.engine.FinishGame(g)
		r.persist()
		r.broadcastState()
		r.handleGameOverLocked()
		return
	}
	r.persist()
	r.broadcastState()
}

func (r *Room) handlePass(playerID string) {
	g := r.room.CurrentGame
	if g == nil {
		r.sendError(playerID, "no game in progress")
		return
	}
	idx := g.PlayerIndex(playerID)
	if idx < 0 {
		r.sendError(playerID, "you are not seated in this game")
		return
	}
	if err := r.engine.ApplyPass(g, idx); err != nil {
		r.sendError(playerID, err.Error())
		return
	}
	r.persist()
	r.broadcastState()
}

func (r *Room) handleStartGame(playerID string) {
	if r.room.CurrentGame != nil {
		r.sendError(playerID, "a game is already in progress")
		return
	}
	if len(r.room.Players) < 2 {
		r.sendError(playerID, "need at least 2 players")
		return
	}
	var prevEP, prevSH string
	for _, p := range r.room.Players {
		switch p.PastAccolade {
		case model.ElPresidente:
			prevEP = p.ID
		case model.Shithead:
			prevSH = p.ID
		}
	}
	game, err := r.engine.StartNewGame(r.room.Players, rules.StartOptions{
		PrevElPresidenteID: prevEP,
		PrevShitheadID:     prevSH,
	})
	if err != nil {
		r.sendError(playerID, err.Error())
		return
	}
	r.room.CurrentGame = game
	r.persist()
	r.broadcastState()
}

func (r *Room) handleClaimTrade(playerID string, payload json.RawMessage) {
	g := r.room.CurrentGame
	if g == nil {
		r.sendError(playerID, "no game in progress")
		return
	}
	var p claimTradePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		r.sendError(playerID, "malformed claim")
		return
	}
	if err := r.engine.ApplyClaimTrade(g, playerID, rules.TradeRole(p.Role)); err != nil {
		r.sendError(playerID, err.Error())
		return
	}
	r.persist()
	r.broadcastState()
}

func (r *Room) handleRequestRestartVote(playerID string) {
	g := r.room.CurrentGame
	if g == nil || g.PlayerIndex(playerID) < 0 {
		r.sendError(playerID, "only a seated player may request a restart vote")
		return
	}
	var name string
	if p := r.room.PlayerByID(playerID); p != nil {
		name = p.Name
	}

	r.current = vote.New(playerID)
	r.timers.Schedule(r.key(liveness.VoteSubject), r.timing.RestartVoteTimeout, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.resolveVoteOnTimeoutLocked()
	})
	r.broadcastExcept(playerID, RestartVoteRequestedMsg{Type: "restart_vote_requested", InitiatorName: name})
}

func (r *Room) handleRestartVote(playerID string, payload json.RawMessage) {
	if r.current == nil {
		r.sendError(playerID, "no restart vote in progress")
		return
	}
	var p restartVotePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		r.sendError(playerID, "malformed vote")
		return
	}
	if g := r.room.CurrentGame; g == nil || g.PlayerIndex(playerID) < 0 {
		r.sendError(playerID, "only a seated player may vote")
		return
	}
	r.current.Record(playerID, p.Yes)
	r.resolveVoteLocked()
}

func (r *Room) eligibleVoters() []string {
	g := r.room.CurrentGame
	if g == nil {
		return nil
	}
	out := make([]string, len(g.Players))
	for i, p := range g.Players {
		out[i] = p.ID
	}
	return out
}

func (r *Room) resolveVoteLocked() {
	outcome := r.current.Resolve(r.eligibleVoters())
	r.concludeVoteIfDecidedLocked(outcome)
}

func (r *Room) resolveVoteOnTimeoutLocked() {
	if r.current == nil {
		return
	}
	outcome := r.current.ResolveOnTimeout(r.eligibleVoters())
	r.concludeVoteIfDecidedLocked(outcome)
}

func (r *Room) concludeVoteIfDecidedLocked(outcome vote.Outcome) {
	switch outcome {
	case vote.Passed:
		r.timers.Cancel(r.key(liveness.VoteSubject))
		r.timers.Cancel(r.key(liveness.NextGameSubject))
		r.current = nil
		for _, p := range r.room.Players {
			p.PastAccolade = model.Pleb
		}
		players := r.mergeSpectatorsLocked()
		for _, p := range players {
			p.PastAccolade = model.Pleb
		}
		game, err := r.engine.StartNewGame(players, rules.StartOptions{})
		if err != nil {
			return
		}
		r.room.CurrentGame = game
		r.broadcast(simpleMsg{Type: "restart_vote_passed"})
		r.persist()
		r.broadcastState()
	case vote.Rejected:
		r.timers.Cancel(r.key(liveness.VoteSubject))
		r.current = nil
		r.broadcast(simpleMsg{Type: "restart_vote_rejected"})
	case vote.Pending:
		// Wait for the next vote or the timeout.
	}
}

func (r *Room) handleSpectatorPreference(playerID string, payload json.RawMessage) {
	var p spectatorPreferencePayload
	if err := json.Unmarshal(payload, &p); err != nil {
		r.sendError(playerID, "malformed preference")
		return
	}
	r.room.SpectatorPreferences[playerID] = p.WantsToPlay
	r.persist()
	r.sendState(playerID)
}

func (r *Room) handleTagDick(playerID string, payload json.RawMessage) {
	var p tagDickPayload
	if err := json.Unmarshal(payload, &p); err != nil {
		r.sendError(playerID, "malformed tag")
		return
	}

	if r.room.DickTagHolderID == "" {
		if p.TargetID == playerID {
			r.sendError(playerID, "cannot tag yourself")
			return
		}
		if r.room.PlayerByID(p.TargetID) == nil {
			r.sendError(playerID, "unknown target")
			return
		}
		r.setDickTagLocked(p.TargetID)
		return
	}

	if r.room.DickTagHolderID != playerID {
		r.sendError(playerID, "only the current holder may transfer the tag")
		return
	}

	if p.TargetID == "" {
		r.clearDickTagLocked()
		return
	}
	if p.TargetID == playerID {
		r.sendError(playerID, "cannot tag yourself")
		return
	}
	if r.room.PlayerByID(p.TargetID) == nil {
		r.sendError(playerID, "unknown target")
		return
	}

	held := time.Duration(0)
	if r.room.DickTagHolderSinceUTC > 0 {
		held = time.Since(time.Unix(r.room.DickTagHolderSinceUTC, 0))
	}
	if held < r.timing.DickTagCooldown {
		remaining := r.timing.DickTagCooldown - held
		r.sendError(playerID, fmt.Sprintf("must hold the tag for %.0f more seconds", remaining.Seconds()))
		return
	}
	r.setDickTagLocked(p.TargetID)
}

func (r *Room) setDickTagLocked(targetID string) {
	r.room.DickTagHolderID = targetID
	r.room.DickTagHolderSinceUTC = time.Now().Unix()
	r.persist()
	r.broadcastState()
}

func (r *Room) clearDickTagLocked() {
	r.room.DickTagHolderID = ""
	r.room.DickTagHolderSinceUTC = 0
	r.persist()
	r.broadcastState()
}
