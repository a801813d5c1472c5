// Package action encodes the identifiers carried by buttons and select menus.
//
// An identifier is "w1." followed by the unpadded base64url encoding of a
// protobuf-wire message with three fields: kind (varint), game id (varint) and
// target (bytes). Fields are typed, so a target that looks numeric or contains
// separators can never be mistaken for the game id.
package action

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"

	"google.golang.org/protobuf/encoding/protowire"
)

// Kind names what a click asks the game to do.
type Kind uint8

const (
	KindUnknown Kind = iota

	// Lobby and configuration.
	KindJoin
	KindLeave
	KindBeginConfig
	KindRules
	KindRoleToggle
	KindRoleAuto
	KindRoleStart

	// Round flow.
	KindStartNight
	KindEndDiscussion
	KindEndVoting
	KindNewGame

	// Night actions.
	KindWerewolfKill
	KindSeerReveal
	KindDetectiveInvestigate
	KindGuardianProtect
	KindSniperShoot
	KindSniperSkip
	KindReviverRevive
	KindReviverSkip
	KindWizardProtect
	KindWizardPoison
	KindWizardSkip
	KindWizardProtectTarget
	KindWizardPoisonTarget

	KindVote

	kindEnd
)

var kindNames = map[Kind]string{
	KindJoin:                 "join",
	KindLeave:                "leave",
	KindBeginConfig:          "begin_config",
	KindRules:                "rules",
	KindRoleToggle:           "role_toggle",
	KindRoleAuto:             "role_auto",
	KindRoleStart:            "role_start",
	KindStartNight:           "start_night",
	KindEndDiscussion:        "end_discussion",
	KindEndVoting:            "end_voting",
	KindNewGame:              "new_game",
	KindWerewolfKill:         "werewolf_kill",
	KindSeerReveal:           "seer_reveal",
	KindDetectiveInvestigate: "detective_investigate",
	KindGuardianProtect:      "guardian_protect",
	KindSniperShoot:          "sniper_shoot",
	KindSniperSkip:           "sniper_skip",
	KindReviverRevive:        "reviver_revive",
	KindReviverSkip:          "reviver_skip",
	KindWizardProtect:        "wizard_protect",
	KindWizardPoison:         "wizard_poison",
	KindWizardSkip:           "wizard_skip",
	KindWizardProtectTarget:  "wizard_protect_target",
	KindWizardPoisonTarget:   "wizard_poison_target",
	KindVote:                 "vote",
}

func (k Kind) String() string {
	if s, ok := kindNames[k]; ok {
		return s
	}
	return fmt.Sprintf("kind(%d)", uint8(k))
}

// Valid reports whether k is a known kind.
func (k Kind) Valid() bool {
	return k > KindUnknown && k < kindEnd
}

// FromSelect reports whether the target of k comes from a select menu value
// rather than from the identifier itself.
func (k Kind) FromSelect() bool {
	return k == KindWizardProtectTarget || k == KindWizardPoisonTarget
}

// Prefix is the version tag of the current encoding.
const Prefix = "w1."

// MaxEncodedLength is the longest identifier chat platforms accept.
const MaxEncodedLength = 100

const (
	fieldKind   protowire.Number = 1
	fieldGameID protowire.Number = 2
	fieldTarget protowire.Number = 3
)

var (
	ErrMalformed = errors.New("malformed action id")
	ErrVersion   = errors.New("unsupported action id version")
	ErrTooLong   = errors.New("action id too long")
)

// ID is the decoded payload of a button or select menu.
type ID struct {
	Kind   Kind
	GameID int64
	Target string
}

// New builds an ID without a target.
func New(kind Kind, gameID int64) ID {
	return ID{Kind: kind, GameID: gameID}
}

// WithTarget returns a copy of id aimed at target.
func (id ID) WithTarget(target string) ID {
	id.Target = target
	return id
}

// Encode returns the wire form of id.
func (id ID) Encode() string {
	var b []byte
	b = protowire.AppendTag(b, fieldKind, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(id.Kind))
	b = protowire.AppendTag(b, fieldGameID, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(id.GameID))
	if id.Target != "" {
		b = protowire.AppendTag(b, fieldTarget, protowire.BytesType)
		b = protowire.AppendString(b, id.Target)
	}
	return Prefix + base64.RawURLEncoding.EncodeToString(b)
}

func (id ID) String() string {
	return fmt.Sprintf("%s game=%d target=%q", id.Kind, id.GameID, id.Target)
}

// Decode parses an identifier produced by Encode. Unknown fields are skipped.
func Decode(s string) (ID, error) {
	if len(s) > MaxEncodedLength {
		return ID{}, ErrTooLong
	}
	rest, ok := strings.CutPrefix(s, Prefix)
	if !ok {
		if i := strings.IndexByte(s, '.'); i > 0 && s[0] == 'w' {
			return ID{}, fmt.Errorf("%w: %s", ErrVersion, s[:i])
		}
		return ID{}, ErrMalformed
	}
	b, err := base64.RawURLEncoding.DecodeString(rest)
	if err != nil {
		return ID{}, fmt.Errorf("%w: %v", ErrMalformed, err)
	}

	var (
		id      ID
		hasKind bool
		hasGame bool
	)
	for len(b) > 0 {
		num, typ, n := protowire.ConsumeTag(b)
		if n < 0 {
			return ID{}, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
		}
		b = b[n:]
		switch {
		case num == fieldKind && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return ID{}, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
			}
			id.Kind = Kind(v)
			hasKind = true
			b = b[n:]
		case num == fieldGameID && typ == protowire.VarintType:
			v, n := protowire.ConsumeVarint(b)
			if n < 0 {
				return ID{}, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
			}
			id.GameID = int64(v)
			hasGame = true
			b = b[n:]
		case num == fieldTarget && typ == protowire.BytesType:
			v, n := protowire.ConsumeString(b)
			if n < 0 {
				return ID{}, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
			}
			id.Target = v
			b = b[n:]
		default:
			n := protowire.ConsumeFieldValue(num, typ, b)
			if n < 0 {
				return ID{}, fmt.Errorf("%w: %v", ErrMalformed, protowire.ParseError(n))
			}
			b = b[n:]
		}
	}
	if !hasKind || !hasGame {
		return ID{}, fmt.Errorf("%w: missing kind or game id", ErrMalformed)
	}
	if !id.Kind.Valid() {
		return ID{}, fmt.Errorf("%w: unknown kind %d", ErrMalformed, uint8(id.Kind))
	}
	return id, nil
}
