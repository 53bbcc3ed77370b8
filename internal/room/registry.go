package room

import (
	"crypto/rand"
	"fmt"
	"io"
	"log/slog"
	"math/big"
	"sort"
	"strings"
	"sync"

	"golang.org/x/crypto/bcrypt"

	"kickabout/pkg/metrics"
)

const (
	codeAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	codeLength   = 6
)

// Info is the listing view of a room. Each room republishes it on
// membership and lifecycle changes, so reads never wait on a tick.
type Info struct {
	Code       string `json:"code"`
	Players    int    `json:"players"`
	Capacity   int    `json:"capacity"`
	Red        int    `json:"red"`
	Blue       int    `json:"blue"`
	Spectators int    `json:"spectators"`
	Running    bool   `json:"running"`
	Public     bool   `json:"public"`
	Protected  bool   `json:"protected"`
}

// Registry tracks every open room on this instance by join code.
type Registry struct {
	log     *slog.Logger
	onEvent func(Event)

	mu    sync.RWMutex
	rooms map[string]*Room
}

func NewRegistry(log *slog.Logger) *Registry {
	return &Registry{log: log, rooms: map[string]*Room{}}
}

// SetEventSink routes room events to fn. Set it before creating rooms.
func (reg *Registry) SetEventSink(fn func(Event)) { reg.onEvent = fn }

// Create opens a room and starts its goroutine. A non-empty passcode
// is bcrypt-hashed and demanded from every joiner.
func (reg *Registry) Create(public bool, passcode string) (*Room, error) {
	var hash []byte
	if passcode != "" {
		h, err := bcrypt.GenerateFromPassword([]byte(passcode), bcrypt.DefaultCost)
		if err != nil {
			return nil, fmt.Errorf("hash passcode: %w", err)
		}
		hash = h
	}

	reg.mu.Lock()
	code, err := reg.freeCode()
	if err != nil {
		reg.mu.Unlock()
		return nil, err
	}
	rm := New(Config{
		Code:     code,
		Public:   public,
		PassHash: hash,
		Log:      reg.log,
		OnEmpty:  func(c string) { reg.Delete(c) },
		OnEvent:  reg.onEvent,
	})
	reg.rooms[code] = rm
	reg.mu.Unlock()

	go rm.Run()
	metrics.RoomsActive.Inc()
	reg.log.Info("room.created", "room", code, "public", public, "protected", hash != nil)
	if reg.onEvent != nil {
		reg.onEvent(Event{Kind: EventCreated, Code: code})
	}
	return rm, nil
}

// Find resolves a join code. Codes are case-insensitive on the way in.
func (reg *Registry) Find(code string) (*Room, error) {
	code = strings.ToUpper(strings.TrimSpace(code))
	reg.mu.RLock()
	rm := reg.rooms[code]
	reg.mu.RUnlock()
	if rm == nil {
		return nil, ErrRoomNotFound
	}
	return rm, nil
}

// Delete closes a room and drops it. Rooms call this themselves, via
// OnEmpty, when the last player leaves.
func (reg *Registry) Delete(code string) {
	reg.mu.Lock()
	rm := reg.rooms[code]
	delete(reg.rooms, code)
	reg.mu.Unlock()
	if rm == nil {
		return
	}
	rm.Close()
	metrics.RoomsActive.Dec()
	reg.log.Info("room.closed", "room", code)
	if reg.onEvent != nil {
		reg.onEvent(Event{Kind: EventClosed, Code: code})
	}
}

// List reports every room's latest metadata, ordered by code.
func (reg *Registry) List() []Info {
	reg.mu.RLock()
	out := make([]Info, 0, len(reg.rooms))
	for _, rm := range reg.rooms {
		out = append(out, rm.Info())
	}
	reg.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Code < out[j].Code })
	return out
}

// Len is the number of open rooms.
func (reg *Registry) Len() int {
	reg.mu.RLock()
	defer reg.mu.RUnlock()
	return len(reg.rooms)
}

// CloseAll shuts every room down. Called once on server exit.
func (reg *Registry) CloseAll() {
	reg.mu.Lock()
	rooms := reg.rooms
	reg.rooms = map[string]*Room{}
	reg.mu.Unlock()
	for code, rm := range rooms {
		rm.Close()
		metrics.RoomsActive.Dec()
		reg.log.Info("room.closed", "room", code)
	}
}

// freeCode draws codes until one is unused. Caller holds the lock.
func (reg *Registry) freeCode() (string, error) {
	for {
		code, err := generateCode(codeLength)
		if err != nil {
			return "", err
		}
		if _, taken := reg.rooms[code]; !taken {
			return code, nil
		}
	}
}

// codeRand feeds join code generation; tests swap it out.
var codeRand io.Reader = rand.Reader

func generateCode(n int) (string, error) {
	b := make([]byte, n)
	max := big.NewInt(int64(len(codeAlphabet)))
	for i := range b {
		idx, err := rand.Int(codeRand, max)
		if err != nil {
			return "", fmt.Errorf("draw join code: %w", err)
		}
		b[i] = codeAlphabet[idx.Int64()]
	}
	return string(b), nil
}
