package httpx

import (
	"encoding/json"
	"net/http"
	"strings"

	"kickabout/internal/relay"
	"kickabout/internal/room"
)

type RoomsAPI struct {
	Rooms *room.Registry
	Bus   relay.Bus
	Addr  string // advertised to clients picking a room off the listing
}

type createRoomReq struct {
	Public   bool   `json:"public"`
	Passcode string `json:"passcode"`
}

// roomEntry is one row of the lobby listing.
type roomEntry struct {
	room.Info
	Addr string `json:"addr"`
}

// Create opens a room for the authenticated session and returns its
// join code.
func (a *RoomsAPI) Create(w http.ResponseWriter, r *http.Request) {
	var req createRoomReq
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "bad payload", http.StatusBadRequest)
		return
	}
	rm, err := a.Rooms.Create(req.Public, strings.TrimSpace(req.Passcode))
	if err != nil {
		http.Error(w, "could not create room", http.StatusInternalServerError)
		return
	}
	writeJSON(w, roomEntry{Info: rm.Info(), Addr: a.Addr})
}

// List returns public rooms on this instance plus any the relay has
// heard about from sibling instances.
func (a *RoomsAPI) List(w http.ResponseWriter, _ *http.Request) {
	local := a.Rooms.List()
	out := make([]roomEntry, 0, len(local))
	for _, in := range local {
		if !in.Public {
			continue
		}
		out = append(out, roomEntry{Info: in, Addr: a.Addr})
	}
	for _, rr := range a.Bus.Remote() {
		out = append(out, roomEntry{Info: rr.Info, Addr: rr.Addr})
	}
	writeJSON(w, out)
}

// Get reports one room by code, whatever its visibility. Protected
// tells the client to prompt for a passcode before dialing in.
func (a *RoomsAPI) Get(w http.ResponseWriter, r *http.Request) {
	rm, err := a.Rooms.Find(r.PathValue("code"))
	if err != nil {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}
	writeJSON(w, roomEntry{Info: rm.Info(), Addr: a.Addr})
}
