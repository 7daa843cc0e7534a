package protocol

import (
	"encoding/json"
	"fmt"
	"team-relay/errors"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

var factories = map[MessageType]func() Message{
	TypeJoin:         func() Message { return &Join{} },
	TypeLeave:        func() Message { return &Leave{} },
	TypeAsk:          func() Message { return &Ask{} },
	TypeReply:        func() Message { return &Reply{} },
	TypeGetInbox:     func() Message { return &GetInbox{} },
	TypePing:         func() Message { return &Ping{} },
	TypeJoined:       func() Message { return &Joined{} },
	TypeLeft:         func() Message { return &Left{} },
	TypeMemberJoined: func() Message { return &MemberJoined{} },
	TypeMemberLeft:   func() Message { return &MemberLeft{} },
	TypeQuestion:     func() Message { return &Question{} },
	TypeAnswer:       func() Message { return &Answer{} },
	TypeQuestionSent: func() Message { return &QuestionSent{} },
	TypeInbox:        func() Message { return &Inbox{} },
	TypePong:         func() Message { return &Pong{} },
	TypeError:        func() Message { return &Error{} },
}

type header struct {
	Type      MessageType `json:"type"`
	RequestID string      `json:"requestId"`
}

// Encode serializes m as a single JSON object carrying its type. m is left
// untouched.
func Encode(m Message) ([]byte, error) {
	if m == nil {
		return nil, errors.Newf(errors.CodeInvalidMessage, "cannot encode a nil message")
	}
	data, err := json.Marshal(m.stamped())
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w", m.MessageType(), err)
	}
	return data, nil
}

// Decode parses one frame. Malformed JSON and unknown types fail with
// INVALID_MESSAGE, missing or invalid fields with VALIDATION_ERROR.
func Decode(data []byte) (Message, error) {
	var h header
	if err := json.Unmarshal(data, &h); err != nil {
		return nil, errors.Newf(errors.CodeInvalidMessage, "malformed frame: %v", err)
	}
	factory, ok := factories[h.Type]
	if !ok {
		return nil, errors.Newf(errors.CodeInvalidMessage, "unknown message type %q", h.Type)
	}
	msg := factory()
	if err := json.Unmarshal(data, msg); err != nil {
		return nil, errors.Newf(errors.CodeInvalidMessage, "malformed %s frame: %v", h.Type, err)
	}
	if err := validate.Struct(msg); err != nil {
		return nil, errors.Validation("invalid %s frame: %v", h.Type, err)
	}
	return msg, nil
}

// PeekRequestID extracts the request id of a frame that may not decode,
// so a failure can still be correlated.
func PeekRequestID(data []byte) string {
	var h header
	if err := json.Unmarshal(data, &h); err != nil {
		return ""
	}
	return h.RequestID
}

// NewError builds an ERROR frame from err, keeping its code.
func NewError(err error, requestID string) *Error {
	return &Error{
		Type:      TypeError,
		Code:      errors.CodeOf(err),
		Message:   err.Error(),
		RequestID: requestID,
	}
}

// AsError turns an ERROR frame back into a DomainError.
func (m *Error) AsError() error {
	return &errors.DomainError{Code: m.Code, Message: m.Message}
}
