package proto

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

const (
	TypeChatMessage = "chat_message"
	TypeError       = "error"
)

// ID is a message identifier that accepts both JSON numbers and strings.
// Integer values are canonicalized so that 5 and "5" decode to the same ID.
type ID string

// UnmarshalJSON implements json.Unmarshaler.
func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(canonicalID(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("decode id: %w", err)
	}
	*id = ID(canonicalNumber(n))
	return nil
}

// MarshalJSON emits integer IDs as numbers and everything else as strings.
func (id ID) MarshalJSON() ([]byte, error) {
	if id == "" {
		return []byte("null"), nil
	}
	if _, err := strconv.ParseInt(string(id), 10, 64); err == nil {
		return []byte(id), nil
	}
	return json.Marshal(string(id))
}

func canonicalID(s string) string {
	s = strings.TrimSpace(s)
	if n, err := strconv.ParseInt(s, 10, 64); err == nil {
		return strconv.FormatInt(n, 10)
	}
	return s
}

// canonicalNumber folds integral JSON numbers such as 5.0 or 5e0 into their
// integer form.
func canonicalNumber(n json.Number) string {
	s := canonicalID(n.String())
	if _, err := strconv.ParseInt(s, 10, 64); err == nil {
		return s
	}
	f, err := n.Float64()
	if err != nil || math.IsInf(f, 0) || math.IsNaN(f) || f != math.Trunc(f) {
		return s
	}
	if f < math.MinInt64 || f >= math.MaxInt64 {
		return s
	}
	return strconv.FormatInt(int64(f), 10)
}

// Timestamp decodes RFC 3339 strings or unix seconds. Unparseable values
// decode to the zero time instead of failing the whole record.
type Timestamp struct {
	time.Time
}

// UnmarshalJSON implements json.Unmarshaler.
func (ts *Timestamp) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	ts.Time = time.Time{}
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return nil
		}
		if t, err := time.Parse(time.RFC3339Nano, s); err == nil {
			ts.Time = t
		}
		return nil
	}
	if secs, err := strconv.ParseFloat(string(data), 64); err == nil {
		ts.Time = time.Unix(int64(secs), 0).UTC()
	}
	return nil
}

// MarshalJSON implements json.Marshaler.
func (ts Timestamp) MarshalJSON() ([]byte, error) {
	if ts.IsZero() {
		return []byte("null"), nil
	}
	return json.Marshal(ts.UTC().Format(time.RFC3339Nano))
}

// UserRef is the nested user object some store responses carry.
type UserRef struct {
	Username string `json:"username"`
}

// Record is a chat message as the Message Store and the event channel
// encode it.
type Record struct {
	ID               ID        `json:"id"`
	SenderUsername   string    `json:"sender_username,omitempty"`
	Sender           *UserRef  `json:"sender,omitempty"`
	ReceiverUsername string    `json:"receiver_username,omitempty"`
	Receiver         *UserRef  `json:"receiver,omitempty"`
	Text             string    `json:"text"`
	CreatedAt        Timestamp `json:"created_at"`
}

// Author resolves the sender name, preferring the flat field over the
// nested object. Empty when neither is present.
func (r Record) Author() string {
	if name := strings.TrimSpace(r.SenderUsername); name != "" {
		return name
	}
	if r.Sender != nil {
		return strings.TrimSpace(r.Sender.Username)
	}
	return ""
}

// Recipient resolves the receiver name the same way as Author.
func (r Record) Recipient() string {
	if name := strings.TrimSpace(r.ReceiverUsername); name != "" {
		return name
	}
	if r.Receiver != nil {
		return strings.TrimSpace(r.Receiver.Username)
	}
	return ""
}

// CreateRequest is the body of a direct store write.
type CreateRequest struct {
	SenderUsername   string `json:"sender_username"`
	ReceiverUsername string `json:"receiver_username,omitempty"`
	Text             string `json:"text"`
}

// ChatFrame is the outgoing event channel frame for a chat message.
type ChatFrame struct {
	Type             string `json:"type"`
	SenderUsername   string `json:"sender_username"`
	Message          string `json:"message"`
	ReceiverUsername string `json:"receiver_username,omitempty"`
}

// Inbound is the envelope for frames coming from the event channel.
// Message holds a Record for chat frames and a string for error frames.
type Inbound struct {
	Type    string          `json:"type"`
	Message json.RawMessage `json:"message"`
}

var ErrMissingType = errors.New("frame has no type")

// ParseInbound decodes one event channel frame.
func ParseInbound(data []byte) (Inbound, error) {
	var in Inbound
	if err := json.Unmarshal(data, &in); err != nil {
		return Inbound{}, fmt.Errorf("decode frame: %w", err)
	}
	if in.Type == "" {
		return Inbound{}, ErrMissingType
	}
	return in, nil
}

// ChatRecord decodes the message payload of a chat frame.
func (in Inbound) ChatRecord() (Record, error) {
	var rec Record
	if len(in.Message) == 0 {
		return rec, errors.New("chat frame has no message")
	}
	if err := json.Unmarshal(in.Message, &rec); err != nil {
		return rec, fmt.Errorf("decode chat message: %w", err)
	}
	return rec, nil
}

// ErrorText returns the human-readable text of an error frame.
func (in Inbound) ErrorText() string {
	var s string
	if err := json.Unmarshal(in.Message, &s); err == nil {
		return s
	}
	return strings.TrimSpace(string(in.Message))
}
