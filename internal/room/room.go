package room

import (
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"time"
	"unicode"
	"unicode/utf8"

	"golang.org/x/crypto/bcrypt"

	"kickabout/internal/game"
	"kickabout/internal/protocol"
	"kickabout/pkg/metrics"
)

const maxChatLen = 120 // runes

// Config seeds a room. OnEmpty and OnEvent are invoked on the room
// goroutine and must not block.
type Config struct {
	Code     string
	Public   bool
	PassHash []byte
	Log      *slog.Logger
	OnEmpty  func(code string)
	OnEvent  func(Event)
}

// Room owns one match. A single goroutine (Run) consumes commands and
// ticker fires, so the simulation state needs no locks: joins, leaves
// and team switches serialize with ticks by construction. Everything
// below the inbox is loop-owned; the outside world talks through the
// exported methods.
type Room struct {
	code     string
	public   bool
	passHash []byte
	log      *slog.Logger
	onEmpty  func(string)
	onEvent  func(Event)

	inbox chan any
	done  chan struct{}
	once  sync.Once
	info  atomic.Pointer[Info]

	players   []*game.Player // join order
	conns     map[string]Conn
	ball      game.Ball
	score     protocol.Score
	redCount  int
	blueCount int
	lastTouch string
	running   bool
	gameTime  time.Duration
	lastTick  time.Time
	ticker    *time.Ticker
	tickC     <-chan time.Time
}

func New(cfg Config) *Room {
	r := &Room{
		code:     cfg.Code,
		public:   cfg.Public,
		passHash: cfg.PassHash,
		log:      cfg.Log.With("room", cfg.Code),
		onEmpty:  cfg.OnEmpty,
		onEvent:  cfg.OnEvent,
		inbox:    make(chan any, 256),
		done:     make(chan struct{}),
		conns:    map[string]Conn{},
		ball:     game.NewBall(),
	}
	r.refreshInfo()
	return r
}

// Code returns the join code.
func (r *Room) Code() string { return r.code }

// Info returns the last published metadata without touching the
// simulation goroutine.
func (r *Room) Info() Info { return *r.info.Load() }

// CheckPasscode verifies a join passcode. Rooms without one accept
// anything. This runs bcrypt, so callers keep it off the tick path.
func (r *Room) CheckPasscode(pass string) error {
	if len(r.passHash) == 0 {
		return nil
	}
	if bcrypt.CompareHashAndPassword(r.passHash, []byte(pass)) != nil {
		return ErrBadPasscode
	}
	return nil
}

// Run drives the room until Close. Start it on its own goroutine.
func (r *Room) Run() {
	for {
		select {
		case <-r.done:
			r.stop()
			for _, c := range r.conns {
				_ = c.Close()
			}
			if n := len(r.players); n > 0 {
				metrics.PlayersConnected.Sub(float64(n))
			}
			return
		case cmd := <-r.inbox:
			r.handle(cmd)
		case now := <-r.tickC:
			r.tick(now)
		}
	}
}

// Close shuts the loop down and hangs up every participant. Safe to
// call from any goroutine, any number of times.
func (r *Room) Close() {
	r.once.Do(func() { close(r.done) })
}

// Join adds a player, or hands the seat's connection over to c when the
// id is already present (a reconnect).
func (r *Room) Join(id, nickname string, c Conn) (game.Team, error) {
	reply := make(chan joinResult, 1)
	select {
	case r.inbox <- joinCmd{id: id, nickname: nickname, conn: c, reply: reply}:
	case <-r.done:
		return game.TeamNone, ErrRoomNotFound
	}
	select {
	case res := <-reply:
		return res.team, res.err
	case <-r.done:
		return game.TeamNone, ErrRoomNotFound
	}
}

// Leave detaches a player. Unknown ids are ignored. c names the socket
// the leave came from: a rejoin hands the seat to a new connection, and
// the replaced socket's teardown must not evict it. Pass nil to release
// the seat regardless.
func (r *Room) Leave(id string, c Conn) {
	select {
	case r.inbox <- leaveCmd{id: id, conn: c}:
	case <-r.done:
	}
}

// ApplyInput records a player's held keys. Best effort: when the inbox
// is full the stale input is dropped rather than queued behind a tick.
func (r *Room) ApplyInput(id string, in game.Input) {
	select {
	case r.inbox <- inputCmd{id: id, in: in}:
	default:
	}
}

// SwitchTeam moves a player to target. On ErrTeamFull nothing changed.
func (r *Room) SwitchTeam(id string, target game.Team) error {
	reply := make(chan error, 1)
	select {
	case r.inbox <- teamCmd{id: id, target: target, reply: reply}:
	case <-r.done:
		return ErrRoomNotFound
	}
	select {
	case err := <-reply:
		return err
	case <-r.done:
		return ErrRoomNotFound
	}
}

// Chat relays a line from a local player to the whole room.
func (r *Room) Chat(id, text string) {
	text, ok := CleanChat(text)
	if !ok {
		return
	}
	select {
	case r.inbox <- chatCmd{id: id, text: text}:
	default:
	}
}

// InjectChat delivers a line that arrived over the relay bus from
// another instance. It is broadcast as-is and not re-emitted.
func (r *Room) InjectChat(ev protocol.ChatEvent) {
	select {
	case r.inbox <- relayChatCmd{ev: ev}:
	default:
	}
}

// Start begins or restarts the tick schedule.
func (r *Room) Start() {
	select {
	case r.inbox <- startCmd{}:
	case <-r.done:
	}
}

// Stop pauses the simulation; positions and score stay put.
func (r *Room) Stop() {
	select {
	case r.inbox <- stopCmd{}:
	case <-r.done:
	}
}

// Snapshot returns the current authoritative state.
func (r *Room) Snapshot() (protocol.Snapshot, error) {
	reply := make(chan protocol.Snapshot, 1)
	select {
	case r.inbox <- queryCmd{reply: reply}:
	case <-r.done:
		return protocol.Snapshot{}, ErrRoomNotFound
	}
	select {
	case snap := <-reply:
		return snap, nil
	case <-r.done:
		return protocol.Snapshot{}, ErrRoomNotFound
	}
}

func (r *Room) handle(cmd any) {
	switch c := cmd.(type) {
	case joinCmd:
		c.reply <- r.handleJoin(c)
	case leaveCmd:
		r.handleLeave(c.id, c.conn)
	case inputCmd:
		// Unknown ids are dropped: a frame racing a disconnect must
		// not stall anything.
		if p := r.find(c.id); p != nil {
			p.Intent = c.in
			p.LastInput = time.Now()
		}
	case teamCmd:
		c.reply <- r.handleTeam(c.id, c.target)
	case chatCmd:
		r.handleChat(c.id, c.text)
	case relayChatCmd:
		r.broadcast(protocol.MsgChat, c.ev)
	case startCmd:
		r.start()
	case stopCmd:
		r.stop()
	case queryCmd:
		c.reply <- r.snapshot()
	}
}

func (r *Room) handleJoin(c joinCmd) joinResult {
	if p := r.find(c.id); p != nil {
		// Same session rejoining: swap the connection, keep the seat.
		if old := r.conns[c.id]; old != nil {
			_ = old.Close()
		}
		r.conns[c.id] = c.conn
		p.LastInput = time.Now()
		r.refreshInfo()
		r.log.Info("room.rejoin", "player", c.id)
		return joinResult{team: p.Team}
	}
	if len(r.players) >= game.RoomCapacity {
		return joinResult{team: game.TeamNone, err: ErrRoomFull}
	}
	team := r.autoAssign()
	p := game.NewPlayer(c.id, c.nickname, team, time.Now())
	r.players = append(r.players, p)
	r.conns[c.id] = c.conn
	switch team {
	case game.TeamRed:
		r.redCount++
	case game.TeamBlue:
		r.blueCount++
	}
	metrics.PlayersConnected.Inc()
	r.refreshInfo()
	r.log.Info("room.join",
		"player", c.id, "nickname", c.nickname,
		"team", team.String(), "players", len(r.players))
	return joinResult{team: team}
}

// autoAssign picks the smaller team, Red on ties, spectator once both
// sides are full.
func (r *Room) autoAssign() game.Team {
	if r.redCount <= r.blueCount {
		if r.redCount < game.TeamCapacity {
			return game.TeamRed
		}
		if r.blueCount < game.TeamCapacity {
			return game.TeamBlue
		}
	} else {
		if r.blueCount < game.TeamCapacity {
			return game.TeamBlue
		}
		if r.redCount < game.TeamCapacity {
			return game.TeamRed
		}
	}
	return game.TeamNone
}

func (r *Room) handleLeave(id string, conn Conn) {
	p := r.find(id)
	if p == nil {
		return
	}
	// A leave scoped to a conn that no longer owns the seat is stale:
	// the player rejoined on a new socket while the old one tore down.
	if conn != nil && r.conns[id] != conn {
		return
	}
	if c := r.conns[id]; c != nil {
		_ = c.Close()
	}
	delete(r.conns, id)
	for i, q := range r.players {
		if q.ID == id {
			r.players = append(r.players[:i], r.players[i+1:]...)
			break
		}
	}
	switch p.Team {
	case game.TeamRed:
		r.redCount--
	case game.TeamBlue:
		r.blueCount--
	}
	if r.lastTouch == id {
		r.lastTouch = ""
	}
	metrics.PlayersConnected.Dec()
	r.refreshInfo()
	r.log.Info("room.leave", "player", id, "players", len(r.players))
	if len(r.players) == 0 {
		r.stop()
		if r.onEmpty != nil {
			r.onEmpty(r.code)
		}
	}
}

func (r *Room) handleTeam(id string, target game.Team) error {
	p := r.find(id)
	if p == nil {
		return ErrPlayerNotFound
	}
	if p.Team == target {
		return nil
	}
	if target == game.TeamRed && r.redCount >= game.TeamCapacity {
		return ErrTeamFull
	}
	if target == game.TeamBlue && r.blueCount >= game.TeamCapacity {
		return ErrTeamFull
	}
	switch p.Team {
	case game.TeamRed:
		r.redCount--
	case game.TeamBlue:
		r.blueCount--
	}
	switch target {
	case game.TeamRed:
		r.redCount++
	case game.TeamBlue:
		r.blueCount++
	}
	p.Team = target
	if target != game.TeamNone {
		x, y := game.KickoffPosition(target)
		p.Body = game.Body{X: x, Y: y}
	}
	r.refreshInfo()
	r.log.Info("room.team", "player", id, "team", target.String())
	return nil
}

func (r *Room) handleChat(id, text string) {
	p := r.find(id)
	if p == nil {
		return
	}
	ev := protocol.ChatEvent{PlayerID: p.ID, Nickname: p.Nickname, Text: text}
	r.broadcast(protocol.MsgChat, ev)
	r.emit(Event{Kind: EventChat, Code: r.code, Chat: &ev})
}

// start is idempotent: a live ticker is replaced, never stacked.
func (r *Room) start() {
	if r.ticker != nil {
		r.ticker.Stop()
	}
	r.ticker = time.NewTicker(game.TickInterval)
	r.tickC = r.ticker.C
	r.lastTick = time.Now()
	if !r.running {
		r.running = true
		r.refreshInfo()
		r.log.Info("room.start")
		r.emit(Event{Kind: EventStarted, Code: r.code})
	}
}

func (r *Room) stop() {
	if !r.running {
		return
	}
	r.ticker.Stop()
	r.ticker = nil
	r.tickC = nil
	r.running = false
	r.refreshInfo()
	r.log.Info("room.stop", "gameTime", r.gameTime.Milliseconds())
	r.emit(Event{Kind: EventStopped, Code: r.code})
}

// tick advances the match by one scheduler fire. Wall time since the
// previous tick scales movement, so a late fire covers the full gap.
// The recover fence keeps one corrupt tick from killing the room: the
// frame is lost, the next fire starts clean.
func (r *Room) tick(now time.Time) {
	began := time.Now()
	defer func() {
		if p := recover(); p != nil {
			metrics.TickPanics.Inc()
			r.log.Error("tick.panic", "panic", p)
		}
	}()

	delta := now.Sub(r.lastTick)
	r.lastTick = now
	dt := float64(delta) / float64(game.TickInterval)

	// Movement: teamed players with fresh input, then the ball.
	// Inactive and teamless players do not move but the inactive ones
	// stay on the pitch as obstacles.
	for _, p := range r.players {
		if p.Team == game.TeamNone || !p.Active(now) {
			continue
		}
		game.Integrate(&p.Body, &p.Intent, dt)
		game.Constrain(&p.Body, game.PlayerRadius)
	}
	game.Integrate(&r.ball.Body, nil, dt)
	game.Constrain(&r.ball.Body, game.BallRadius)

	// Contacts: ball against every fielder first, remembering who
	// touched it last, then every unordered fielder pair.
	for _, p := range r.players {
		if p.Team == game.TeamNone {
			continue
		}
		if game.Collides(&p.Body, &r.ball.Body, game.PlayerRadius, game.BallRadius) {
			game.Resolve(&p.Body, &r.ball.Body,
				game.PlayerRadius, game.BallRadius,
				game.PlayerMass, game.BallMass)
			r.lastTouch = p.ID
		}
	}
	for i := 0; i < len(r.players); i++ {
		pi := r.players[i]
		if pi.Team == game.TeamNone {
			continue
		}
		for j := i + 1; j < len(r.players); j++ {
			pj := r.players[j]
			if pj.Team == game.TeamNone {
				continue
			}
			if game.Collides(&pi.Body, &pj.Body, game.PlayerRadius, game.PlayerRadius) {
				game.Resolve(&pi.Body, &pj.Body,
					game.PlayerRadius, game.PlayerRadius,
					game.PlayerMass, game.PlayerMass)
			}
		}
	}

	if team, ok := game.DetectGoal(&r.ball); ok {
		r.scoreGoal(team)
	}

	r.gameTime += delta

	if b, err := protocol.Encode(protocol.MsgState, r.snapshot()); err == nil {
		r.broadcastRaw(b)
	}

	metrics.TicksTotal.Inc()
	metrics.TickDuration.Observe(time.Since(began).Seconds())
}

func (r *Room) scoreGoal(team game.Team) {
	if team == game.TeamRed {
		r.score.Red++
	} else {
		r.score.Blue++
	}
	var scorer string
	if p := r.find(r.lastTouch); p != nil && p.Team == team {
		p.Goals++
		scorer = p.ID
	}
	r.lastTouch = ""

	game.ResetBall(&r.ball)
	for _, p := range r.players {
		if p.Team == game.TeamNone {
			continue
		}
		x, y := game.KickoffPosition(p.Team)
		p.Body = game.Body{X: x, Y: y}
	}

	metrics.GoalsTotal.WithLabelValues(team.String()).Inc()
	r.log.Info("room.goal",
		"team", team.String(), "scorer", scorer,
		"red", r.score.Red, "blue", r.score.Blue)

	ev := protocol.GoalEvent{
		Team: team.String(), ScorerID: scorer,
		Red: r.score.Red, Blue: r.score.Blue,
	}
	r.broadcast(protocol.MsgGoal, ev)
	r.emit(Event{Kind: EventGoal, Code: r.code, Goal: &ev})
}

func (r *Room) snapshot() protocol.Snapshot {
	snap := protocol.Snapshot{
		Players: make([]protocol.PlayerView, 0, len(r.players)),
		Ball: protocol.BallView{
			X:  game.Round2(r.ball.X),
			Y:  game.Round2(r.ball.Y),
			VX: game.Round2(r.ball.VX),
			VY: game.Round2(r.ball.VY),
		},
		Score:    r.score,
		GameTime: r.gameTime.Milliseconds(),
		Running:  r.running,
		RoomCode: r.code,
	}
	for _, p := range r.players {
		snap.Players = append(snap.Players, protocol.PlayerView{
			ID:       p.ID,
			Nickname: p.Nickname,
			X:        game.Round2(p.X),
			Y:        game.Round2(p.Y),
			VX:       game.Round2(p.VX),
			VY:       game.Round2(p.VY),
			Team:     p.Team.String(),
		})
	}
	return snap
}

func (r *Room) broadcast(t string, payload any) {
	b, err := protocol.Encode(t, payload)
	if err != nil {
		return
	}
	r.broadcastRaw(b)
}

// broadcastRaw fans one frame out to every participant, detaching the
// connections that report themselves dead.
func (r *Room) broadcastRaw(b []byte) {
	var failed []string
	for id, c := range r.conns {
		if c.Send(b) != nil {
			failed = append(failed, id)
		}
	}
	for _, id := range failed {
		r.handleLeave(id, nil)
	}
}

func (r *Room) emit(ev Event) {
	if r.onEvent != nil {
		r.onEvent(ev)
	}
}

func (r *Room) find(id string) *game.Player {
	for _, p := range r.players {
		if p.ID == id {
			return p
		}
	}
	return nil
}

func (r *Room) refreshInfo() {
	info := Info{
		Code:       r.code,
		Players:    len(r.players),
		Capacity:   game.RoomCapacity,
		Red:        r.redCount,
		Blue:       r.blueCount,
		Spectators: len(r.players) - r.redCount - r.blueCount,
		Running:    r.running,
		Public:     r.public,
		Protected:  len(r.passHash) > 0,
	}
	r.info.Store(&info)
}

// CleanChat strips control characters, trims surrounding space and caps
// the length. ok is false when nothing printable is left.
func CleanChat(text string) (string, bool) {
	var b strings.Builder
	for _, c := range text {
		if unicode.IsControl(c) || c == utf8.RuneError {
			continue
		}
		b.WriteRune(c)
	}
	out := strings.TrimSpace(b.String())
	if out == "" {
		return "", false
	}
	if utf8.RuneCountInString(out) > maxChatLen {
		out = string([]rune(out)[:maxChatLen])
	}
	return out, true
}
