// Package domain contains core concepts of the relay.
// This file defines the identifiers of every entity.
// Each kind of id is its own type so a TeamID can never be passed where a
// MemberID is expected.
package domain

import (
	"log/slog"
	"regexp"
	"strings"
	"team-relay/errors"

	"github.com/google/uuid"
)

var teamIDPattern = regexp.MustCompile(`^[a-z][a-z0-9-]*$`)

type MemberID struct{ value string }

type TeamID struct{ value string }

type QuestionID struct{ value string }

type AnswerID struct{ value string }

func NewMemberID() MemberID { return MemberID{value: uuid.NewString()} }

func NewQuestionID() QuestionID { return QuestionID{value: uuid.NewString()} }

func NewAnswerID() AnswerID { return AnswerID{value: uuid.NewString()} }

// NewTeamID normalizes a team name into its id: trimmed and lowercased.
// The result must start with a letter and contain only letters, digits and
// dashes.
func NewTeamID(name string) (TeamID, error) {
	normalized := strings.ToLower(strings.TrimSpace(name))
	if normalized == "" {
		return TeamID{}, errors.Validation("team name must not be empty")
	}
	if !teamIDPattern.MatchString(normalized) {
		return TeamID{}, errors.Validation("invalid team name %q: must match %s", name, teamIDPattern.String())
	}
	return TeamID{value: normalized}, nil
}

func ParseMemberID(s string) (MemberID, error) {
	if strings.TrimSpace(s) == "" {
		return MemberID{}, errors.Validation("member id must not be empty")
	}
	return MemberID{value: s}, nil
}

func ParseQuestionID(s string) (QuestionID, error) {
	if strings.TrimSpace(s) == "" {
		return QuestionID{}, errors.Validation("question id must not be empty")
	}
	return QuestionID{value: s}, nil
}

func ParseAnswerID(s string) (AnswerID, error) {
	if strings.TrimSpace(s) == "" {
		return AnswerID{}, errors.Validation("answer id must not be empty")
	}
	return AnswerID{value: s}, nil
}

func (id MemberID) String() string   { return id.value }
func (id TeamID) String() string     { return id.value }
func (id QuestionID) String() string { return id.value }
func (id AnswerID) String() string   { return id.value }

func (id MemberID) IsZero() bool   { return id.value == "" }
func (id TeamID) IsZero() bool     { return id.value == "" }
func (id QuestionID) IsZero() bool { return id.value == "" }
func (id AnswerID) IsZero() bool   { return id.value == "" }

func (id MemberID) LogValue() slog.Value   { return slog.StringValue(id.value) }
func (id TeamID) LogValue() slog.Value     { return slog.StringValue(id.value) }
func (id QuestionID) LogValue() slog.Value { return slog.StringValue(id.value) }
func (id AnswerID) LogValue() slog.Value   { return slog.StringValue(id.value) }

func (id MemberID) MarshalText() ([]byte, error)   { return []byte(id.value), nil }
func (id TeamID) MarshalText() ([]byte, error)     { return []byte(id.value), nil }
func (id QuestionID) MarshalText() ([]byte, error) { return []byte(id.value), nil }
func (id AnswerID) MarshalText() ([]byte, error)   { return []byte(id.value), nil }
