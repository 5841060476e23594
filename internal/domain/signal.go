package domain

import "encoding/json"

// Event tags a signaling envelope. The set is closed; dispatch must handle
// every variant and log anything else.
type Event string

const (
	EventOffer               Event = "OFFER"
	EventAnswer              Event = "ANSWER"
	EventICECandidate        Event = "ICE_CANDIDATE"
	EventUserJoined          Event = "USER_JOINED"
	EventUserLeft            Event = "USER_LEFT"
	EventUserRequest         Event = "USER_REQUEST"
	EventUserRequestAccepted Event = "USER_REQUEST_ACCEPTED"
	EventUserRequestRejected Event = "USER_REQUEST_REJECTED"
)

// Signal is the wire envelope relayed between participants.
// Sender and Name are stamped server-side; whatever the client put there is
// discarded. Data carries the negotiation payload for OFFER/ANSWER/
// ICE_CANDIDATE and is never inspected.
type Signal struct {
	Type     Event           `json:"type"`
	Sender   string          `json:"sender"`
	Name     string          `json:"name"`
	Receiver string          `json:"receiver,omitempty"`
	Data     json.RawMessage `json:"data,omitempty"`
}
