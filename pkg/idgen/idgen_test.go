package idgen

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPublicIDRoundTripAndTypeCheck(t *testing.T) {
	seed, err := GenerateRandomSeed()
	require.NoError(t, err)
	require.Len(t, seed, 32)
	require.NoError(t, InitSqidsEncoderWithSeed(seed))

	postID, err := GeneratePublicID(42, EntityTypePost)
	require.NoError(t, err)
	assert.GreaterOrEqual(t, len(postID), 6)

	dbID, err := DecodeEntityID(postID, EntityTypePost)
	require.NoError(t, err)
	assert.Equal(t, uint(42), dbID)

	_, err = DecodeEntityID(postID, EntityTypeUser)
	assert.ErrorIs(t, err, ErrInvalidPublicID)
}

func TestShuffleAlphabetIsDeterministic(t *testing.T) {
	a := shuffleAlphabet("same-seed")
	b := shuffleAlphabet("same-seed")
	assert.Equal(t, a, b)
	assert.NotEqual(t, DefaultAlphabet, a)
	assert.ElementsMatch(t, []rune(DefaultAlphabet), []rune(a))
}
