package websocket

// FrameType represents the type of a client-facing control frame using a
// custom enum type for better type safety
type FrameType string

// Control frame types - the inbound protocol plus acks
const (
	// Inbound (client -> engine)
	FrameSubscribe   FrameType = "channel.subscribe"
	FrameUnsubscribe FrameType = "channel.unsubscribe"
	FramePresenceSet FrameType = "presence.set"

	// Outbound (engine -> client)
	FrameConnected     FrameType = "connection.connect"
	FrameSubscribeOK   FrameType = "subscribe.ok"
	FrameUnsubscribeOK FrameType = "unsubscribe.ok"
	FrameError         FrameType = "error"
)

func (ft FrameType) String() string {
	return string(ft)
}

// IsValid checks if the FrameType is a valid inbound frame
func (ft FrameType) IsValid() bool {
	switch ft {
	case FrameSubscribe, FrameUnsubscribe, FramePresenceSet:
		return true
	default:
		return false
	}
}

// InboundFrame is one JSON frame read from a client connection.
type InboundFrame struct {
	Type      FrameType `json:"type"`
	ChannelID uint      `json:"channelId,omitempty"`
	Status    string    `json:"status,omitempty"`
}

// ControlFrame is a non-event frame written to a client: connect info,
// subscribe/unsubscribe acks and errors.
type ControlFrame struct {
	Type      FrameType `json:"type"`
	ChannelID uint      `json:"channelId,omitempty"`
	Code      string    `json:"code,omitempty"`
	Message   string    `json:"message,omitempty"`
	ClientID  string    `json:"clientId,omitempty"`
}

// Error codes carried on error frames
const (
	CodeNotAMember    = "NOT_A_MEMBER"
	CodeInvalidFrame  = "INVALID_FRAME"
	CodeInvalidStatus = "INVALID_STATUS"
	CodeInternal      = "INTERNAL_ERROR"
)

func NewConnectedFrame(clientID string) *ControlFrame {
	return &ControlFrame{Type: FrameConnected, ClientID: clientID}
}

func NewAckFrame(frameType FrameType, channelID uint) *ControlFrame {
	return &ControlFrame{Type: frameType, ChannelID: channelID}
}

func NewErrorFrame(code, message string) *ControlFrame {
	return &ControlFrame{Type: FrameError, Code: code, Message: message}
}
