package protocol

import (
	"encoding/json"
	"sync"
	"team-relay/errors"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestEncodeDecode_RoundTrip(t *testing.T) {
	at := time.Date(2026, 3, 4, 5, 6, 7, 891000000, time.UTC)
	alice := MemberInfo{MemberID: "m-1", TeamID: "frontend", TeamName: "Frontend", DisplayName: "Alice", Status: "ONLINE"}

	messages := []Message{
		&Join{TeamName: "Frontend", DisplayName: "Alice", RequestID: "r-1"},
		&Leave{RequestID: "r-2"},
		&Ask{ToTeam: "backend", Content: "how?", Format: "markdown", RequestID: "r-3"},
		&Reply{QuestionID: "q-1", Content: "like this", Format: "plain", RequestID: "r-4"},
		&GetInbox{RequestID: "r-5", IncludeAnswered: true},
		&Ping{},
		&Joined{Member: alice, MemberCount: 3, RequestID: "r-1"},
		&Left{MemberID: "m-1", RequestID: "r-2"},
		&MemberJoined{Member: alice},
		&MemberLeft{MemberID: "m-1", TeamID: "frontend"},
		&Question{QuestionID: "q-1", From: alice, Content: "how?", Format: "markdown", CreatedAt: at},
		&Answer{QuestionID: "q-1", From: alice, Content: "so", Format: "plain", AnsweredAt: at, RequestID: "r-3"},
		&QuestionSent{QuestionID: "q-1", ToTeamID: "backend", Status: "PENDING", RequestID: "r-3"},
		&Inbox{
			TeamID:   "backend",
			TeamName: "Backend",
			Questions: []InboxQuestion{
				{QuestionID: "q-1", From: alice, Content: "how?", Format: "plain", Status: "PENDING", CreatedAt: at, AgeMs: 1500},
			},
			TotalCount:   1,
			PendingCount: 1,
			RequestID:    "r-5",
		},
		&Pong{Timestamp: at},
		&Error{Code: errors.CodeTeamNotFound, Message: "team not found", RequestID: "r-3"},
	}

	for _, original := range messages {
		t.Run(string(original.MessageType()), func(t *testing.T) {
			req := require.New(t)

			// When a message is serialized then parsed
			data, err := Encode(original)
			req.NoError(err)
			decoded, err := Decode(data)
			req.NoError(err)

			// Then every field is reproduced and the original is left untouched
			req.Equal(original.stamped(), decoded)
			req.NotEqual(original, decoded)
			req.Equal(original.MessageType(), decoded.MessageType())
			req.Equal(RequestID(original), RequestID(decoded))
		})
	}
}

func TestEncode_Writes_Type_Discriminator(t *testing.T) {
	req := require.New(t)

	data, err := Encode(&Ping{})
	req.NoError(err)

	var raw map[string]any
	req.NoError(json.Unmarshal(data, &raw))
	req.Equal("PING", raw["type"])
}

func TestEncode_Shared_Message_Concurrently(t *testing.T) {
	req := require.New(t)
	shared := &MemberJoined{Member: MemberInfo{MemberID: "m-1", TeamID: "ops", TeamName: "Ops", DisplayName: "Alice", Status: "ONLINE"}}

	// When several connections encode the same pushed message
	var wg sync.WaitGroup
	frames := make([][]byte, 8)
	for i := range frames {
		wg.Add(1)
		go func() {
			defer wg.Done()
			frames[i], _ = Encode(shared)
		}()
	}
	wg.Wait()

	// Then each frame carries the type and the message is left as it was
	for _, frame := range frames {
		decoded, err := Decode(frame)
		req.NoError(err)
		req.Equal(TypeMemberJoined, decoded.MessageType())
		req.Equal("Alice", decoded.(*MemberJoined).Member.DisplayName)
	}
	req.Empty(shared.Type)
}

func TestEncode_Timestamps_Are_ISO8601(t *testing.T) {
	req := require.New(t)
	at := time.Date(2026, 3, 4, 5, 6, 7, 0, time.UTC)

	data, err := Encode(&Pong{Timestamp: at})
	req.NoError(err)
	req.JSONEq(`{"type":"PONG","timestamp":"2026-03-04T05:06:07Z"}`, string(data))
}

func TestDecode_Failures(t *testing.T) {
	tests := []struct {
		name string
		data string
		code string
	}{
		{"Not JSON", `not json`, errors.CodeInvalidMessage},
		{"Unknown type", `{"type":"SHOUT"}`, errors.CodeInvalidMessage},
		{"Missing type", `{"teamName":"a"}`, errors.CodeInvalidMessage},
		{"Wrong field type", `{"type":"JOIN","teamName":42,"displayName":"x"}`, errors.CodeInvalidMessage},
		{"Join without display name", `{"type":"JOIN","teamName":"frontend"}`, errors.CodeValidation},
		{"Ask without request id", `{"type":"ASK","toTeam":"backend","content":"hi"}`, errors.CodeValidation},
		{"Ask with unknown format", `{"type":"ASK","toTeam":"backend","content":"hi","format":"html","requestId":"r"}`, errors.CodeValidation},
		{"Reply without question", `{"type":"REPLY","content":"hi"}`, errors.CodeValidation},
		{"Inbox without request id", `{"type":"GET_INBOX"}`, errors.CodeValidation},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Decode([]byte(tt.data))
			require.Error(t, err)
			require.Equal(t, tt.code, errors.CodeOf(err))
		})
	}
}

func TestPeekRequestID(t *testing.T) {
	req := require.New(t)
	req.Equal("r-9", PeekRequestID([]byte(`{"type":"ASK","requestId":"r-9"}`)))
	req.Empty(PeekRequestID([]byte(`garbage`)))
}

func TestNewError_Keeps_Code(t *testing.T) {
	req := require.New(t)

	frame := NewError(errors.Newf(errors.CodeTeamNotFound, "team %q not found", "ops"), "r-1")
	req.Equal(errors.CodeTeamNotFound, frame.Code)
	req.Equal(`team "ops" not found`, frame.Message)
	req.Equal("r-1", frame.RequestID)
	req.ErrorIs(frame.AsError(), errors.ErrTeamNotFound)

	// Errors without a code become internal errors
	req.Equal(errors.CodeInternal, NewError(json.Unmarshal([]byte("x"), &struct{}{}), "").Code)
}

func TestJSONCodec_Keeps_Undecodable_Frames(t *testing.T) {
	req := require.New(t)
	codec := jsonCodec{}

	// Given a frame with an unknown type
	var frame Frame
	req.NoError(codec.Unmarshal([]byte(`{"type":"SHOUT","requestId":"r-7"}`), &frame))

	// Then the decode error is kept with the request id, not returned
	req.Nil(frame.Message)
	req.Equal("r-7", frame.RequestID)
	req.Equal(errors.CodeInvalidMessage, errors.CodeOf(frame.Err))

	// And a valid frame survives the codec both ways
	data, err := codec.Marshal(&Frame{Message: &Ping{}})
	req.NoError(err)
	var back Frame
	req.NoError(codec.Unmarshal(data, &back))
	req.NoError(back.Err)
	req.Equal(TypePing, back.Message.MessageType())

	_, err = codec.Marshal("not a frame")
	req.Error(err)
}
