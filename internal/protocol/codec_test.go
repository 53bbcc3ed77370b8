package protocol

import (
	"strings"
	"testing"
)

func TestEncodeDecodeRoundTrip(t *testing.T) {
	raw, err := Encode(MsgInput, Input{Up: true, Right: true})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	env, err := DecodeEnvelope(raw)
	if err != nil {
		t.Fatalf("decode envelope: %v", err)
	}
	if env.T != MsgInput {
		t.Fatalf("type = %q, want %q", env.T, MsgInput)
	}
	in, err := DecodePayload[Input](env)
	if err != nil {
		t.Fatalf("decode payload: %v", err)
	}
	if !in.Up || !in.Right || in.Down || in.Left {
		t.Fatalf("payload mangled: %+v", in)
	}
}

func TestDecodeRejectsGarbage(t *testing.T) {
	if _, err := DecodeEnvelope(nil); err == nil {
		t.Fatalf("empty frame accepted")
	}
	if _, err := DecodeEnvelope([]byte("not json")); err == nil {
		t.Fatalf("non-json frame accepted")
	}
	if _, err := DecodeEnvelope([]byte(`{"p":{}}`)); err == nil {
		t.Fatalf("frame without type accepted")
	}
	if _, err := DecodePayload[Input](Envelope{T: MsgInput}); err == nil {
		t.Fatalf("empty payload accepted")
	}
}

func TestSnapshotWireFormat(t *testing.T) {
	raw, err := Encode(MsgState, Snapshot{
		Players:  []PlayerView{{ID: "p1", Nickname: "ana", X: 200, Y: 200, Team: "red"}},
		Ball:     BallView{X: 400, Y: 200},
		Score:    Score{Red: 1},
		GameTime: 1500,
		Running:  true,
		RoomCode: "AB12CD",
	})
	if err != nil {
		t.Fatalf("encode: %v", err)
	}
	s := string(raw)
	for _, key := range []string{
		`"t":"state"`, `"players"`, `"nickname"`, `"vx"`, `"vy"`,
		`"team":"red"`, `"ball"`, `"score"`, `"red":1`, `"blue":0`,
		`"gameTime":1500`, `"running":true`, `"roomCode":"AB12CD"`,
	} {
		if !strings.Contains(s, key) {
			t.Fatalf("snapshot json missing %s: %s", key, s)
		}
	}
}
