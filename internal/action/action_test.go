package action

import (
	"encoding/base64"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/protobuf/encoding/protowire"
)

func TestEncodeDecode_TargetsThatLookLikeIDs(t *testing.T) {
	targets := []string{
		"",
		"123456789012345678",
		"42_17_9",
		"user_with_underscores",
		"w1.nested",
	}
	for _, target := range targets {
		id := New(KindVote, 42).WithTarget(target)
		enc := id.Encode()
		assert.True(t, strings.HasPrefix(enc, Prefix))
		assert.LessOrEqual(t, len(enc), MaxEncodedLength)

		got, err := Decode(enc)
		require.NoError(t, err, target)
		assert.Equal(t, id, got)
	}
}

func TestDecode_Rejects(t *testing.T) {
	_, err := Decode("vote_42_17")
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = Decode("w2.AAAA")
	assert.ErrorIs(t, err, ErrVersion)

	_, err = Decode(Prefix + "!!!")
	assert.ErrorIs(t, err, ErrMalformed)

	_, err = Decode(Prefix + strings.Repeat("A", MaxEncodedLength))
	assert.ErrorIs(t, err, ErrTooLong)
}

func TestDecode_UnknownKind(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, fieldKind, protowire.VarintType)
	b = protowire.AppendVarint(b, 200)
	b = protowire.AppendTag(b, fieldGameID, protowire.VarintType)
	b = protowire.AppendVarint(b, 1)
	_, err := Decode(Prefix + base64.RawURLEncoding.EncodeToString(b))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestDecode_SkipsUnknownFields(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, fieldKind, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(KindJoin))
	b = protowire.AppendTag(b, 9, protowire.BytesType)
	b = protowire.AppendString(b, "future")
	b = protowire.AppendTag(b, fieldGameID, protowire.VarintType)
	b = protowire.AppendVarint(b, 7)

	got, err := Decode(Prefix + base64.RawURLEncoding.EncodeToString(b))
	require.NoError(t, err)
	assert.Equal(t, New(KindJoin, 7), got)
}

func TestDecode_MissingGameID(t *testing.T) {
	var b []byte
	b = protowire.AppendTag(b, fieldKind, protowire.VarintType)
	b = protowire.AppendVarint(b, uint64(KindJoin))
	_, err := Decode(Prefix + base64.RawURLEncoding.EncodeToString(b))
	assert.ErrorIs(t, err, ErrMalformed)
}

func TestKind_FromSelect(t *testing.T) {
	assert.True(t, KindWizardPoisonTarget.FromSelect())
	assert.False(t, KindWizardPoison.FromSelect())
	assert.Equal(t, "vote", KindVote.String())
}
