// Package protocol defines the wire vocabulary exchanged between a hub and
// its clients. Every frame is one JSON object whose "type" field selects the
// message shape.
package protocol

import "time"

type MessageType string

// Client to hub.
const (
	TypeJoin     MessageType = "JOIN"
	TypeLeave    MessageType = "LEAVE"
	TypeAsk      MessageType = "ASK"
	TypeReply    MessageType = "REPLY"
	TypeGetInbox MessageType = "GET_INBOX"
	TypePing     MessageType = "PING"
)

// Hub to client.
const (
	TypeJoined       MessageType = "JOINED"
	TypeLeft         MessageType = "LEFT"
	TypeMemberJoined MessageType = "MEMBER_JOINED"
	TypeMemberLeft   MessageType = "MEMBER_LEFT"
	TypeQuestion     MessageType = "QUESTION"
	TypeAnswer       MessageType = "ANSWER"
	TypeQuestionSent MessageType = "QUESTION_SENT"
	TypeInbox        MessageType = "INBOX"
	TypePong         MessageType = "PONG"
	TypeError        MessageType = "ERROR"
)

// Message is implemented by every frame of the protocol.
type Message interface {
	MessageType() MessageType
	// stamped returns a copy of the message with its Type field set.
	// The receiver is never written, a message may be shared by several
	// connections.
	stamped() any
}

// MemberInfo describes a member as seen by other connections.
type MemberInfo struct {
	MemberID    string `json:"memberId"`
	TeamID      string `json:"teamId"`
	TeamName    string `json:"teamName"`
	DisplayName string `json:"displayName"`
	Status      string `json:"status"`
}

type Join struct {
	Type        MessageType `json:"type"`
	TeamName    string      `json:"teamName" validate:"required"`
	DisplayName string      `json:"displayName" validate:"required"`
	RequestID   string      `json:"requestId,omitempty"`
}

type Leave struct {
	Type      MessageType `json:"type"`
	RequestID string      `json:"requestId,omitempty"`
}

type Ask struct {
	Type      MessageType `json:"type"`
	ToTeam    string      `json:"toTeam" validate:"required"`
	Content   string      `json:"content"`
	Format    string      `json:"format,omitempty" validate:"omitempty,oneof=plain markdown"`
	RequestID string      `json:"requestId" validate:"required"`
}

type Reply struct {
	Type       MessageType `json:"type"`
	QuestionID string      `json:"questionId" validate:"required"`
	Content    string      `json:"content"`
	Format     string      `json:"format,omitempty" validate:"omitempty,oneof=plain markdown"`
	RequestID  string      `json:"requestId,omitempty"`
}

type GetInbox struct {
	Type            MessageType `json:"type"`
	RequestID       string      `json:"requestId" validate:"required"`
	IncludeAnswered bool        `json:"includeAnswered,omitempty"`
}

type Ping struct {
	Type MessageType `json:"type"`
}

type Joined struct {
	Type        MessageType `json:"type"`
	Member      MemberInfo  `json:"member"`
	MemberCount int         `json:"memberCount"`
	RequestID   string      `json:"requestId,omitempty"`
}

type Left struct {
	Type      MessageType `json:"type"`
	MemberID  string      `json:"memberId"`
	RequestID string      `json:"requestId,omitempty"`
}

type MemberJoined struct {
	Type   MessageType `json:"type"`
	Member MemberInfo  `json:"member"`
}

type MemberLeft struct {
	Type     MessageType `json:"type"`
	MemberID string      `json:"memberId"`
	TeamID   string      `json:"teamId"`
}

type Question struct {
	Type       MessageType `json:"type"`
	QuestionID string      `json:"questionId"`
	From       MemberInfo  `json:"from"`
	Content    string      `json:"content"`
	Format     string      `json:"format"`
	CreatedAt  time.Time   `json:"createdAt"`
}

// Answer echoes the request id of the ASK it resolves.
type Answer struct {
	Type       MessageType `json:"type"`
	QuestionID string      `json:"questionId"`
	From       MemberInfo  `json:"from"`
	Content    string      `json:"content"`
	Format     string      `json:"format"`
	AnsweredAt time.Time   `json:"answeredAt"`
	RequestID  string      `json:"requestId,omitempty"`
}

type QuestionSent struct {
	Type       MessageType `json:"type"`
	QuestionID string      `json:"questionId"`
	ToTeamID   string      `json:"toTeamId"`
	Status     string      `json:"status"`
	RequestID  string      `json:"requestId"`
}

type InboxQuestion struct {
	QuestionID string     `json:"questionId"`
	From       MemberInfo `json:"from"`
	Content    string     `json:"content"`
	Format     string     `json:"format"`
	Status     string     `json:"status"`
	CreatedAt  time.Time  `json:"createdAt"`
	AgeMs      int64      `json:"ageMs"`
}

type Inbox struct {
	Type         MessageType     `json:"type"`
	TeamID       string          `json:"teamId,omitempty"`
	TeamName     string          `json:"teamName,omitempty"`
	Questions    []InboxQuestion `json:"questions"`
	TotalCount   int             `json:"totalCount"`
	PendingCount int             `json:"pendingCount"`
	RequestID    string          `json:"requestId"`
}

type Pong struct {
	Type      MessageType `json:"type"`
	Timestamp time.Time   `json:"timestamp"`
}

type Error struct {
	Type      MessageType `json:"type"`
	Code      string      `json:"code"`
	Message   string      `json:"message"`
	RequestID string      `json:"requestId,omitempty"`
}

func (*Join) MessageType() MessageType         { return TypeJoin }
func (*Leave) MessageType() MessageType        { return TypeLeave }
func (*Ask) MessageType() MessageType          { return TypeAsk }
func (*Reply) MessageType() MessageType        { return TypeReply }
func (*GetInbox) MessageType() MessageType     { return TypeGetInbox }
func (*Ping) MessageType() MessageType         { return TypePing }
func (*Joined) MessageType() MessageType       { return TypeJoined }
func (*Left) MessageType() MessageType         { return TypeLeft }
func (*MemberJoined) MessageType() MessageType { return TypeMemberJoined }
func (*MemberLeft) MessageType() MessageType   { return TypeMemberLeft }
func (*Question) MessageType() MessageType     { return TypeQuestion }
func (*Answer) MessageType() MessageType       { return TypeAnswer }
func (*QuestionSent) MessageType() MessageType { return TypeQuestionSent }
func (*Inbox) MessageType() MessageType        { return TypeInbox }
func (*Pong) MessageType() MessageType         { return TypePong }
func (*Error) MessageType() MessageType        { return TypeError }

func (m *Join) stamped() any {
	c := *m
	c.Type = TypeJoin
	return &c
}

func (m *Leave) stamped() any {
	c := *m
	c.Type = TypeLeave
	return &c
}

func (m *Ask) stamped() any {
	c := *m
	c.Type = TypeAsk
	return &c
}

func (m *Reply) stamped() any {
	c := *m
	c.Type = TypeReply
	return &c
}

func (m *GetInbox) stamped() any {
	c := *m
	c.Type = TypeGetInbox
	return &c
}

func (m *Ping) stamped() any {
	c := *m
	c.Type = TypePing
	return &c
}

func (m *Joined) stamped() any {
	c := *m
	c.Type = TypeJoined
	return &c
}

func (m *Left) stamped() any {
	c := *m
	c.Type = TypeLeft
	return &c
}

func (m *MemberJoined) stamped() any {
	c := *m
	c.Type = TypeMemberJoined
	return &c
}

func (m *MemberLeft) stamped() any {
	c := *m
	c.Type = TypeMemberLeft
	return &c
}

func (m *Question) stamped() any {
	c := *m
	c.Type = TypeQuestion
	return &c
}

func (m *Answer) stamped() any {
	c := *m
	c.Type = TypeAnswer
	return &c
}

func (m *QuestionSent) stamped() any {
	c := *m
	c.Type = TypeQuestionSent
	return &c
}

func (m *Inbox) stamped() any {
	c := *m
	c.Type = TypeInbox
	return &c
}

func (m *Pong) stamped() any {
	c := *m
	c.Type = TypePong
	return &c
}

func (m *Error) stamped() any {
	c := *m
	c.Type = TypeError
	return &c
}

// RequestID returns the correlation id carried by m, if any.
func RequestID(m Message) string {
	switch msg := m.(type) {
	case *Join:
		return msg.RequestID
	case *Leave:
		return msg.RequestID
	case *Ask:
		return msg.RequestID
	case *Reply:
		return msg.RequestID
	case *GetInbox:
		return msg.RequestID
	case *Joined:
		return msg.RequestID
	case *Left:
		return msg.RequestID
	case *Answer:
		return msg.RequestID
	case *QuestionSent:
		return msg.RequestID
	case *Inbox:
		return msg.RequestID
	case *Error:
		return msg.RequestID
	}
	return ""
}
