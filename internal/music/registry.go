package music

import "sync"

// Registry owns one Player per guild for the life of the process.
type Registry struct {
	mu        sync.Mutex
	players   map[string]*Player
	connector VoiceConnector
	opts      Options
}

func NewRegistry(connector VoiceConnector, opts Options) *Registry {
	return &Registry{
		players:   make(map[string]*Player),
		connector: connector,
		opts:      opts,
	}
}

func (r *Registry) Get(guildID string) *Player {
	r.mu.Lock()
	defer r.mu.Unlock()

	if p, ok := r.players[guildID]; ok {
		return p
	}

	p := NewPlayer(guildID, r.connector, r.opts)
	r.players[guildID] = p
	return p
}

// Lookup returns the player without creating one.
func (r *Registry) Lookup(guildID string) (*Player, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.players[guildID]
	return p, ok
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.players)
}

// Active counts players that are playing or paused.
func (r *Registry) Active() int {
	active := 0
	for _, p := range r.snapshot() {
		if p.State().Status != StatusIdle {
			active++
		}
	}
	return active
}

func (r *Registry) Close() {
	for _, p := range r.snapshot() {
		p.Close()
	}
}

func (r *Registry) snapshot() []*Player {
	r.mu.Lock()
	defer r.mu.Unlock()

	out := make([]*Player, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, p)
	}
	return out
}
