package timeline

import "sync"

// Player is one narration audio element. Implementations wrap whatever can
// actually play audio (a media element, a test fake); the pool and the
// synchronizer only drive this interface.
type Player interface {
	Play()
	Pause()
	Seek(seconds float64)
	CurrentTime() float64
	Paused() bool
	Ended() bool
}

// PlayerFactory creates a player for a track. Called at most once per track
// id while the track exists.
type PlayerFactory func(track Track) Player

// Pool owns the track-id-to-player mapping. Get-or-create is idempotent per
// track id, and teardown (pause + release) is guaranteed on both track
// deletion and pool shutdown, so no playback can dangle past its track.
type Pool struct {
	factory PlayerFactory

	mu      sync.Mutex
	players map[string]Player
}

func NewPool(factory PlayerFactory) *Pool {
	return &Pool{
		factory: factory,
		players: make(map[string]Player),
	}
}

// Ensure returns the player for a track, creating it on first use.
func (p *Pool) Ensure(track Track) Player {
	p.mu.Lock()
	defer p.mu.Unlock()
	if player, ok := p.players[track.ID]; ok {
		return player
	}
	player := p.factory(track)
	p.players[track.ID] = player
	return player
}

// Get looks up an existing player without creating one.
func (p *Pool) Get(id string) (Player, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()
	player, ok := p.players[id]
	return player, ok
}

// Release pauses and removes a track's player. The player must be gone from
// the mapping before the track is considered deleted.
func (p *Pool) Release(id string) {
	p.mu.Lock()
	player, ok := p.players[id]
	if ok {
		delete(p.players, id)
	}
	p.mu.Unlock()
	if ok {
		player.Pause()
	}
}

// SyncTracks reconciles the pool with the current track list: players are
// created for new tracks and released for tracks that no longer exist.
func (p *Pool) SyncTracks(tracks []Track) {
	alive := make(map[string]struct{}, len(tracks))
	for _, track := range tracks {
		alive[track.ID] = struct{}{}
		p.Ensure(track)
	}

	p.mu.Lock()
	var stale []string
	for id := range p.players {
		if _, ok := alive[id]; !ok {
			stale = append(stale, id)
		}
	}
	p.mu.Unlock()

	for _, id := range stale {
		p.Release(id)
	}
}

// Len reports how many players are currently held.
func (p *Pool) Len() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.players)
}

// Shutdown pauses and releases every player.
func (p *Pool) Shutdown() {
	p.mu.Lock()
	players := p.players
	p.players = make(map[string]Player)
	p.mu.Unlock()
	for _, player := range players {
		player.Pause()
	}
}
