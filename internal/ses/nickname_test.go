package ses

import (
	"testing"

	"github.com/saslab/sasdevices/internal/topology"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const snicOutput = `  SMC       SC846-P           0001
Subenclosure nickname status diagnostic page:
  number of secondary subenclosures: 0
  generation code: 0x0
  subenclosure identifier: 0 (primary)
    nickname status: 0
    nickname additional status: 0
    nickname: rack2-jbod1
`

func TestParseNickname(t *testing.T) {
	nick, err := parseNickname(snicOutput)
	require.NoError(t, err)
	assert.Equal(t, "rack2-jbod1", nick)
}

func TestParseNicknameAbsent(t *testing.T) {
	_, err := parseNickname("Subenclosure nickname status diagnostic page:\n")
	assert.ErrorIs(t, err, ErrNoNickname)

	_, err = parseNickname("    nickname: \n")
	assert.ErrorIs(t, err, ErrNoNickname)
}

func TestNamerOverrideWins(t *testing.T) {
	n := &Namer{Overrides: map[string]string{"5000ccab0401d23f": "shelf-a"}}

	nick, ok := n.Nickname(&topology.Enclosure{SASAddress: "5000ccab0401d23f", SG: "sg12"})
	require.True(t, ok)
	assert.Equal(t, "shelf-a", nick)
}

func TestNamerNoSGDevice(t *testing.T) {
	n := &Namer{}
	_, ok := n.Nickname(&topology.Enclosure{SASAddress: "5000ccab0401d23f"})
	assert.False(t, ok)
}
