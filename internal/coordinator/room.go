// Package coordinator is the per-room session coordinator: it ingests
// client commands, drives the rules engine, persists the result, and
// fans out the filtered view to every connected recipient. All mutation
// of a Room's state passes through its own mutex, so concurrent
// commands against the same room never interleave.
package coordinator

import (
	"log"
	"sync"

	"github.com/lukev/elpres/internal/config"
	"github.com/lukev/elpres/internal/liveness"
	"github.com/lukev/elpres/internal/model"
	"github.com/lukev/elpres/internal/persistence"
	"github.com/lukev/elpres/internal/rules"
	"github.com/lukev/elpres/internal/view"
	"github.com/lukev/elpres/internal/vote"
)

// Conn is whatever the transport layer hands the coordinator to reach
// one connected client. Send must not block the coordinator goroutine
// for long; a slow or dead peer is the transport's problem, not ours.
type Conn interface {
	Send(msg interface{})
}

// Room owns one table's state and every timer and connection attached
// to it.
type Room struct {
	mu sync.Mutex

	name    string
	room    *model.Room
	engine  *rules.Engine
	store   *persistence.Store
	timing  config.Timing
	timers  *liveness.Timers
	conns   map[string]Conn
	current *vote.Vote
}

func newRoom(name string, store *persistence.Store, timing config.Timing, timers *liveness.Timers) *Room {
	return &Room{
		name:   name,
		room:   store.Load(name),
		engine: rules.New(),
		store:  store,
		timing: timing,
		timers: timers,
		conns:  make(map[string]Conn),
	}
}

func (r *Room) key(subject string) liveness.Key {
	return liveness.Key{Room: r.name, Subject: subject}
}

func (r *Room) playerKey(playerID, subject string) liveness.Key {
	return liveness.Key{Room: r.name, Subject: playerID + ":" + subject}
}

// HasPlayer reports whether id is a known member of this room (minted by
// the join endpoint, whether or not currently connected).
func (r *Room) HasPlayer(id string) bool {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.room.PlayerByID(id) != nil
}

// Join seats name in the room, minting id as their identity unless a
// player with that name already exists, in which case their existing id
// is returned instead so a refreshed browser tab can rejoin in place.
func (r *Room) Join(id, name string) string {
	r.mu.Lock()
	defer r.mu.Unlock()

	if existing := r.room.PlayerByName(name); existing != nil {
		return existing.ID
	}
	r.room.AddPlayer(id, name)
	r.persist()
	return id
}

// TryConnect registers a live connection for playerID unless one
// already exists: the liveness check and the registration happen under
// one lock, so two racing sockets for the same id cannot both win. On
// success it cancels any grace timer, arms the heartbeat deadline, and
// brings everyone's view up to date. Reports whether the connection was
// accepted.
func (r *Room) TryConnect(playerID string, conn Conn) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, live := r.conns[playerID]; live {
		return false
	}

	p := r.room.PlayerByID(playerID)
	r.conns[playerID] = conn
	r.timers.Cancel(r.playerKey(playerID, liveness.DisconnectSubject))
	r.armHeartbeat(playerID)

	if p != nil {
		r.broadcastExcept(playerID, PlayerJoinedMsg{Type: "player_joined", Player: PlayerRef{ID: p.ID, Name: p.Name}})
	}
	r.broadcastState()
	return true
}

// Disconnect drops playerID's live connection and starts its grace
// timer. The player remains in the room and, if seated, keeps their
// hand; only the timer's expiry forces removal.
func (r *Room) Disconnect(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.disconnectLocked(playerID)
}

func (r *Room) disconnectLocked(playerID string) {
	if _, ok := r.conns[playerID]; !ok {
		return
	}
	delete(r.conns, playerID)
	r.timers.Cancel(r.playerKey(playerID, "heartbeat"))
	r.timers.Schedule(r.playerKey(playerID, liveness.DisconnectSubject), r.timing.DisconnectGrace, func() {
		r.forceRemove(playerID)
	})
	r.broadcast(PlayerDisconnectedMsg{Type: "player_disconnected", PlayerID: playerID})
	r.broadcastState()
}

func (r *Room) armHeartbeat(playerID string) {
	r.timers.Schedule(r.playerKey(playerID, "heartbeat"), r.timing.HeartbeatTimeout, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		// A missed heartbeat while the socket is still open starts the
		// same grace countdown a hard disconnect would.
		if r.timers.Pending(r.playerKey(playerID, liveness.DisconnectSubject)) {
			return
		}
		r.timers.Schedule(r.playerKey(playerID, liveness.DisconnectSubject), r.timing.DisconnectGrace, func() {
			r.forceRemove(playerID)
		})
		r.broadcastState()
	})
}

// forceRemove is invoked from a timer goroutine, so it takes its own
// lock before delegating to forceRemoveLocked.
func (r *Room) forceRemove(playerID string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.forceRemoveLocked(playerID)
}

// forceRemoveLocked drops playerID from the room outright: the live
// connection (if any), every timer, their seat in any game in progress,
// and their lobby membership. Callers must hold r.mu.
func (r *Room) forceRemoveLocked(playerID string) {
	delete(r.conns, playerID)
	r.timers.Cancel(r.playerKey(playerID, "heartbeat"))
	r.timers.Cancel(r.playerKey(playerID, liveness.DisconnectSubject))

	if g := r.room.CurrentGame; g != nil {
		if idx := g.PlayerIndex(playerID); idx >= 0 {
			if r.engine.RemovePlayerFromGame(g, idx) {
				r.handleGameOverLocked()
			}
		}
	}
	r.room.RemovePlayer(playerID)
	if len(r.room.Players) == 0 {
		r.timers.Cancel(r.key(liveness.NextGameSubject))
		r.timers.Cancel(r.key(liveness.VoteSubject))
		r.current = nil
		r.room = model.NewRoom(r.name)
	}
	r.persist()
	r.broadcastState()
}

// disconnects snapshots every player currently under a disconnect grace
// timer, for the view projector's disconnected flag and waiting flyover.
func (r *Room) disconnects() view.Disconnects {
	if r.room.CurrentGame == nil {
		return nil
	}
	out := make(view.Disconnects)
	for _, p := range r.room.CurrentGame.Players {
		if remaining := r.timers.Remaining(r.playerKey(p.ID, liveness.DisconnectSubject)); remaining > 0 {
			out[p.ID] = remaining
		}
	}
	return out
}

func (r *Room) live() map[string]bool {
	out := make(map[string]bool, len(r.conns))
	for id := range r.conns {
		out[id] = true
	}
	return out
}

func (r *Room) viewFor(playerID string) *view.State {
	return view.Project(r.room, playerID, r.live(), r.disconnects(), r.engine)
}

func (r *Room) sendState(playerID string) {
	conn, ok := r.conns[playerID]
	if !ok {
		return
	}
	conn.Send(newStateMsg(r.viewFor(playerID), playerID))
}

func (r *Room) broadcastState() {
	for id := range r.conns {
		r.sendState(id)
	}
}

func (r *Room) broadcast(msg interface{}) {
	for _, conn := range r.conns {
		conn.Send(msg)
	}
}

func (r *Room) broadcastExcept(exclude string, msg interface{}) {
	for id, conn := range r.conns {
		if id == exclude {
			continue
		}
		conn.Send(msg)
	}
}

func (r *Room) sendError(playerID, message string) {
	if conn, ok := r.conns[playerID]; ok {
		conn.Send(newErrorMsg(message))
	}
}

func (r *Room) persist() {
	if err := r.store.Save(r.room); err != nil {
		log.Printf("coordinator: failed to persist room %q: %v", r.name, err)
	}
}

// handleGameOverLocked broadcasts game_over and schedules the single
// next-game task. Callers must hold r.mu.
func (r *Room) handleGameOverLocked() {
	g := r.room.CurrentGame
	r.broadcast(GameOverMsg{Type: "game_over", Results: g.Results})

	prevDealer := g.DealerIdx
	var prevEP, prevSH string
	for _, p := range g.Players {
		switch p.Accolade {
		case model.ElPresidente:
			prevEP = p.ID
		case model.Shithead:
			prevSH = p.ID
		}
	}
	for _, p := range g.Players {
		p.PastAccolade = p.Accolade
		if rp := r.room.PlayerByID(p.ID); rp != nil {
			rp.PastAccolade = p.Accolade
		}
	}

	r.timers.Schedule(r.key(liveness.NextGameSubject), r.timing.NextGameDelay, func() {
		r.mu.Lock()
		defer r.mu.Unlock()
		r.startNextGameLocked(&prevDealer, prevEP, prevSH)
	})
}

// startNextGameLocked deals the next game from the just-finished game's
// players plus any spectator who wants in, up to the 7-player cap. If
// too few players remain to deal (everyone else left during the score
// screen), the room drops back to the no-game lobby instead. Callers
// must hold r.mu.
func (r *Room) startNextGameLocked(prevDealer *int, prevEP, prevSH string) {
	players := r.mergeSpectatorsLocked()
	game, err := r.engine.StartNewGame(players, rules.StartOptions{
		PrevDealerIdx:      prevDealer,
		PrevElPresidenteID: prevEP,
		PrevShitheadID:     prevSH,
	})
	if err != nil {
		r.room.CurrentGame = nil
		r.persist()
		r.broadcastState()
		return
	}
	r.room.CurrentGame = game
	r.persist()
	r.broadcastState()
}

// mergeSpectatorsLocked returns the players for the next deal: the
// current game's players plus spectators who opted in, capped at 7.
func (r *Room) mergeSpectatorsLocked() []*model.Player {
	seated := map[string]bool{}
	var players []*model.Player
	if g := r.room.CurrentGame; g != nil {
		players = append(players, g.Players...)
		for _, p := range g.Players {
			seated[p.ID] = true
		}
	}
	for _, p := range r.room.Players {
		if len(players) >= 7 {
			break
		}
		if seated[p.ID] || !r.room.WantsToPlay(p.ID) {
			continue
		}
		// Membership plus preference is the whole test: a spectator in a
		// disconnect-grace window still holds their place, the same way a
		// seated player does.
		players = append(players, p)
		seated[p.ID] = true
	}
	return players
}
