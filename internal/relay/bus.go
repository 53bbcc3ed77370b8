// Package relay connects room traffic to sibling server instances.
// Rooms are authoritative on exactly one instance; the relay only
// carries chat and match events outward and keeps a directory of what
// the other instances are hosting, so the listing API can show rooms
// that live elsewhere.
package relay

import (
	"sort"

	"kickabout/internal/room"
)

// Bus is what the rest of the server sees. Emit is wired in as the
// registry's event sink and is called from room goroutines, so
// implementations must never block in it.
type Bus interface {
	Emit(ev room.Event)
	Remote() []RemoteRoom
	Close() error
}

// RemoteRoom is a room hosted by another instance, with the address a
// client must dial to join it.
type RemoteRoom struct {
	room.Info
	Addr string `json:"addr"`
}

// NoopBus serves single-instance deployments, which is every
// deployment without REDIS_ADDR set.
type NoopBus struct{}

func (NoopBus) Emit(room.Event)      {}
func (NoopBus) Remote() []RemoteRoom { return nil }
func (NoopBus) Close() error         { return nil }

func sortRemote(rooms []RemoteRoom) {
	sort.Slice(rooms, func(i, j int) bool { return rooms[i].Code < rooms[j].Code })
}
