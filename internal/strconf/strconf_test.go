package strconf

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `# strings.conf
#system
!system 207 Confirmed %d card(s) from the top:
!system 1000 Deck
!system 1603 %ls is Normal Summoned.
!system 1610 %ls (%ls, %d) is targeted.
!system 0x1F hex id
!counter 0x1 Spell Counter
!victory 0x10 Exodia
!system zz broken
not a template line
!setname 0x8d Ghostrick`

func TestParse(t *testing.T) {
	ts, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	assert.Equal(t, 8, ts.Len())
	assert.Equal(t, 1, ts.Skipped)

	tpl, ok := ts.Lookup(System, 1603)
	require.True(t, ok)
	assert.Equal(t, "%ls is Normal Summoned.", tpl.RawText)
	assert.Equal(t, 1, tpl.Placeholders())

	_, ok = ts.Lookup(System, 0x1F)
	assert.True(t, ok)
	c, ok := ts.Lookup(Counter, 1)
	require.True(t, ok)
	assert.Equal(t, "0x1", c.RawID)
	_, ok = ts.Lookup(Setname, 0x8d)
	assert.True(t, ok)
}

func TestInstantiate(t *testing.T) {
	ts, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	tpl, _ := ts.Lookup(System, 1610)
	s, err := tpl.Instantiate("Dark Magician", "Monster Zone", 3)
	require.NoError(t, err)
	assert.Equal(t, "Dark Magician (Monster Zone, 3) is targeted.", s)

	_, err = tpl.Instantiate("Dark Magician")
	assert.ErrorIs(t, err, ErrMissingArgument)

	_, err = tpl.Instantiate("", "x", 1)
	assert.ErrorIs(t, err, ErrMissingArgument)

	plain, _ := ts.Lookup(System, 1000)
	s, err = plain.Instantiate()
	require.NoError(t, err)
	assert.Equal(t, "Deck", s)
}

func TestInstantiateHex(t *testing.T) {
	ts := New()
	ts.Define(System, 1, "code %X")
	assert.Equal(t, "code 1F", ts.Render(System, 1, 31))
}

func TestRenderDegrades(t *testing.T) {
	ts, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)

	assert.Equal(t, "<<missing template: system#9999>>", ts.Render(System, 9999))
	assert.Equal(t, "<<bad template arguments: system#1603>>", ts.Render(System, 1603))
	assert.Equal(t, "Confirmed 2 card(s) from the top:", ts.Render(System, 207, 2))

	var none *Templates
	assert.Equal(t, "<<missing template: system#1>>", none.Render(System, 1))
}

func TestSegments(t *testing.T) {
	segs := parseSegments("%ls and %d")
	require.Len(t, segs, 3)
	assert.True(t, segs[0].IsPayload)
	assert.Equal(t, "%ls", segs[0].Verb)
	assert.Equal(t, " and ", segs[1].Text)
	assert.Equal(t, 1, segs[2].Index)
}
