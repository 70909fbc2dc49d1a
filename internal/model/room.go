package model

// Room is the persisted unit: a named table where players gather, with
// at most one Game in progress at a time.
type Room struct {
	Name                  string          `json:"name"`
	CurrentGame           *Game           `json:"current_game,omitempty"`
	Players               []*Player       `json:"players"`
	SpectatorPreferences  map[string]bool `json:"spectator_preferences"`
	DickTagHolderID       string          `json:"dick_tag_holder_id,omitempty"`
	DickTagHolderSinceUTC int64           `json:"dick_tag_timestamp,omitempty"`
}

// NewRoom returns an empty room ready to be joined.
func NewRoom(name string) *Room {
	return &Room{Name: name, SpectatorPreferences: make(map[string]bool)}
}

// PlayerByID returns the room-level player record for id, if present.
func (r *Room) PlayerByID(id string) *Player {
	for _, p := range r.Players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

// PlayerByName returns the room-level player record with the given
// display name, if present. Names are unique within a room so a
// returning player can rejoin under the same id rather than minting a
// fresh one.
func (r *Room) PlayerByName(name string) *Player {
	for _, p := range r.Players {
		if p.Name == name {
			return p
		}
	}
	return nil
}

// AddPlayer seats a brand-new player with the given id and name.
// Callers must first check PlayerByName to implement rejoin-by-name.
func (r *Room) AddPlayer(id, name string) *Player {
	p := NewPlayer(id, name)
	r.Players = append(r.Players, p)
	return p
}

// RemovePlayer drops id from the room's player list.
func (r *Room) RemovePlayer(id string) {
	out := r.Players[:0]
	for _, p := range r.Players {
		if p.ID != id {
			out = append(out, p)
		}
	}
	r.Players = out
	delete(r.SpectatorPreferences, id)
	if r.DickTagHolderID == id {
		r.DickTagHolderID = ""
		r.DickTagHolderSinceUTC = 0
	}
}

// WantsToPlay reports a player's spectator preference. A player who has
// never set one wants to play.
func (r *Room) WantsToPlay(id string) bool {
	v, ok := r.SpectatorPreferences[id]
	if !ok {
		return true
	}
	return v
}

// IsSpectator reports whether id is not seated in the current game. It
// does not check room membership; with no game in progress it reports
// false.
func (r *Room) IsSpectator(id string) bool {
	if r.CurrentGame == nil {
		return false
	}
	return r.CurrentGame.PlayerIndex(id) == -1
}
