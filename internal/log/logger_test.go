package log

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryLoggerNumbersEvents(t *testing.T) {
	l := NewMemoryLogger()
	assert.Equal(t, GameEvent{}, l.LastEvent())

	l.Log(NewTurnEvent(1, 0))
	l.Log(NewDrawEvent(1, "Draw Phase", 0, "Pot of Greed"))
	l.Log(NewHPChangeEvent(1, "Main Phase 1", 1, 8000, 7000))

	require.Len(t, l.Events(), 3)
	assert.Equal(t, []int{1, 2, 3}, []int{l.Events()[0].Seq, l.Events()[1].Seq, l.Events()[2].Seq})
	assert.Len(t, l.EventsOfType(EventDraw), 1)
	assert.Equal(t, EventHPChange, l.LastEvent().Type)
	assert.Equal(t, "P2 LP: 8000 → 7000", l.LastEvent().Details)
}

func TestFormatEventPadsPhase(t *testing.T) {
	line := FormatEvent(NewPhaseChangeEvent(3, "Main Phase 1"))
	assert.Equal(t, "T3  Main Phase 1    | Phase → Main Phase 1", line)

	line = FormatEvent(NewTurnEvent(12, 1))
	assert.True(t, strings.HasPrefix(line, "T12 "))
	assert.True(t, strings.HasSuffix(line, "| === Turn 12 (P2) ==="))
}

func TestTextLoggerWritesLines(t *testing.T) {
	var buf bytes.Buffer
	l := NewTextLogger(&buf)
	l.Log(NewShuffleEvent(2, "Main Phase 1", 0, "hand"))
	l.Log(NewForfeitEvent(2, "Main Phase 1", 1))

	assert.Equal(t, FormatAll(l.Events()), buf.String())
	assert.Contains(t, buf.String(), "P1 shuffled their hand")
	assert.Contains(t, buf.String(), "Replay ends while P2 is deciding")
}

func TestEventTypeNames(t *testing.T) {
	assert.Equal(t, "Draw", EventDraw.String())
	assert.Equal(t, "Forfeit", EventForfeit.String())
	assert.Equal(t, "Unknown", EventType(99).String())
}
