package ws

import (
	"errors"
	"net/http"

	"log/slog"

	"nhooyr.io/websocket"

	"kickabout/internal/game"
	"kickabout/internal/protocol"
	"kickabout/internal/room"
	"kickabout/pkg/auth"
)

// Handler owns the /ws endpoint: it authenticates the session, resolves
// the room and then pumps frames between the socket and the room actor.
type Handler struct {
	log *slog.Logger
	reg *room.Registry
	jwt *auth.JWT
}

func NewHandler(log *slog.Logger, reg *room.Registry, jwt *auth.JWT) *Handler {
	return &Handler{log: log, reg: reg, jwt: jwt}
}

// ServeWS handles GET /ws?room=CODE&token=JWT[&passcode=..]. Browsers
// cannot set headers on websocket dials, so the token rides the query.
// Everything that can be refused cheaply is refused before the upgrade.
func (h *Handler) ServeWS(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	sess, err := h.jwt.Verify(q.Get("token"))
	if err != nil {
		http.Error(w, "invalid session token", http.StatusUnauthorized)
		return
	}
	rm, err := h.reg.Find(q.Get("room"))
	if err != nil {
		http.Error(w, "room not found", http.StatusNotFound)
		return
	}
	if err := rm.CheckPasscode(q.Get("passcode")); err != nil {
		http.Error(w, "bad passcode", http.StatusForbidden)
		return
	}

	sock, err := Accept(w, r)
	if err != nil {
		h.log.Error("ws.accept", "err", err)
		return
	}
	ctx := r.Context()
	c := NewConn(sock)

	team, err := rm.Join(sess.PlayerID, sess.Nickname, c)
	if err != nil {
		// The write loop is not running yet, so the refusal can go out
		// on the socket directly before the close frame.
		if b, encErr := protocol.Encode(protocol.MsgError, protocol.Error{
			Code:    errCode(err),
			Message: err.Error(),
		}); encErr == nil {
			_ = sock.Write(ctx, websocket.MessageText, b)
		}
		_ = sock.Close(websocket.StatusPolicyViolation, errCode(err))
		return
	}
	go c.WriteLoop(ctx)
	rm.Start()

	if b, err := protocol.Encode(protocol.MsgWelcome, protocol.Welcome{
		PlayerID: sess.PlayerID,
		RoomCode: rm.Code(),
		TickRate: game.TickRate,
	}); err == nil {
		_ = c.Send(b)
	}
	h.log.Info("ws.join",
		"room", rm.Code(), "player", sess.PlayerID, "team", team.String())

	for {
		payload, ok := c.Read(ctx)
		if !ok {
			break
		}
		h.route(rm, sess.PlayerID, c, payload)
	}

	rm.Leave(sess.PlayerID, c)
	_ = c.Close()
	h.log.Info("ws.close", "room", rm.Code(), "player", sess.PlayerID)
}

// route dispatches one client frame. Malformed frames are dropped: a
// broken client must not be able to stall or crash a room.
func (h *Handler) route(rm *room.Room, playerID string, c *Conn, payload []byte) {
	env, err := protocol.DecodeEnvelope(payload)
	if err != nil {
		return
	}
	switch env.T {
	case protocol.MsgInput:
		in, err := protocol.DecodePayload[protocol.Input](env)
		if err != nil {
			return
		}
		rm.ApplyInput(playerID, game.Input{
			Up: in.Up, Down: in.Down, Left: in.Left, Right: in.Right,
		})
	case protocol.MsgTeam:
		tc, err := protocol.DecodePayload[protocol.TeamChange](env)
		if err != nil {
			return
		}
		if err := rm.SwitchTeam(playerID, game.ParseTeam(tc.Team)); err != nil {
			h.sendError(c, err)
		}
	case protocol.MsgChat:
		msg, err := protocol.DecodePayload[protocol.Chat](env)
		if err != nil {
			return
		}
		rm.Chat(playerID, msg.Text)
	}
}

func (h *Handler) sendError(c *Conn, err error) {
	b, encErr := protocol.Encode(protocol.MsgError, protocol.Error{
		Code:    errCode(err),
		Message: err.Error(),
	})
	if encErr != nil {
		return
	}
	_ = c.Send(b)
}

func errCode(err error) string {
	switch {
	case errors.Is(err, room.ErrRoomFull):
		return "room_full"
	case errors.Is(err, room.ErrTeamFull):
		return "team_full"
	case errors.Is(err, room.ErrRoomNotFound):
		return "room_not_found"
	case errors.Is(err, room.ErrPlayerNotFound):
		return "unknown_player"
	case errors.Is(err, room.ErrBadPasscode):
		return "bad_passcode"
	default:
		return "internal"
	}
}
