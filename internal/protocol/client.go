package protocol

// Input is the held movement intent. Flags, not impulses: the client
// resends on change and the server keeps applying the last seen state.
type Input struct {
	Up    bool `json:"up,omitempty"`
	Down  bool `json:"down,omitempty"`
	Left  bool `json:"left,omitempty"`
	Right bool `json:"right,omitempty"`
}

// TeamChange requests a side: "red", "blue" or "spectator". Anything
// else reads as spectator.
type TeamChange struct {
	Team string `json:"team"`
}

// Chat carries one outgoing chat line.
type Chat struct {
	Text string `json:"text"`
}
