package realtime

import "encoding/json"

// Control events exchanged on every socket.
const (
	EventJoin  = "join"
	EventLeave = "leave"
	EventAck   = "ack"
)

// Frame is the JSON envelope of every websocket text message. ID is set on
// client requests that expect an ack and echoed back on the ack.
type Frame struct {
	Event string          `json:"event"`
	ID    int64           `json:"id,omitempty"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// TokenPayload is the data of join and leave requests.
type TokenPayload struct {
	Hash string `json:"hash"`
}

// Ack is the data of an ack frame. An empty Err means success.
type Ack struct {
	Err string `json:"err,omitempty"`
}

// Encode marshals an event and its payload into a frame.
func Encode(event string, id int64, payload any) ([]byte, error) {
	f := Frame{Event: event, ID: id}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			return nil, err
		}
		f.Data = data
	}
	return json.Marshal(f)
}
