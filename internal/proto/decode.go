package proto

import (
	"encoding/binary"
	"fmt"
)

// reader walks a little-endian buffer. The first short read latches an
// error; later reads return zero values.
type reader struct {
	buf []byte
	off int
	err error
}

func (r *reader) fail(format string, args ...any) {
	if r.err == nil {
		r.err = &ParseError{Buffer: r.buf, Offset: r.off, Reason: fmt.Sprintf(format, args...)}
	}
}

func (r *reader) take(n int) []byte {
	if r.err != nil {
		return nil
	}
	if n < 0 || r.off+n > len(r.buf) {
		r.fail("need %d bytes, %d left", n, len(r.buf)-r.off)
		return nil
	}
	b := r.buf[r.off : r.off+n]
	r.off += n
	return b
}

func (r *reader) remaining() int { return len(r.buf) - r.off }

func (r *reader) u8() uint8 {
	b := r.take(1)
	if b == nil {
		return 0
	}
	return b[0]
}

func (r *reader) bool() bool { return r.u8() != 0 }

func (r *reader) u16() uint16 {
	b := r.take(2)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint16(b)
}

func (r *reader) u32() uint32 {
	b := r.take(4)
	if b == nil {
		return 0
	}
	return binary.LittleEndian.Uint32(b)
}

func (r *reader) i32() int32 { return int32(r.u32()) }

// count validates an element count against the bytes left.
func (r *reader) count(n int) int {
	if r.err != nil {
		return 0
	}
	if n < 0 || n > r.remaining() {
		r.fail("element count %d exceeds %d remaining bytes", n, r.remaining())
		return 0
	}
	return n
}

func (r *reader) loc() Location { return Location(r.u8()) }

func (r *reader) locInfo() LocInfo {
	return LocInfo{
		Controller: r.u8(),
		Location:   r.loc(),
		Sequence:   r.u8(),
		Position:   r.u8(),
	}
}

// cardLoc reads code(4) controller(1) location(1) sequence(1).
func (r *reader) cardLoc() CardLoc {
	return CardLoc{Code: r.u32(), Controller: r.u8(), Location: r.loc(), Sequence: r.u8()}
}

func (r *reader) cardLocs(n int) []CardLoc {
	n = r.count(n)
	out := make([]CardLoc, 0, n)
	for i := 0; i < n && r.err == nil; i++ {
		out = append(out, r.cardLoc())
	}
	return out
}

func (r *reader) locInfos(n int) []LocInfo {
	n = r.count(n)
	out := make([]LocInfo, 0, n)
	for i := 0; i < n && r.err == nil; i++ {
		out = append(out, r.locInfo())
	}
	return out
}

func (r *reader) codes(n int) []uint32 {
	n = r.count(n)
	out := make([]uint32, 0, n)
	for i := 0; i < n && r.err == nil; i++ {
		out = append(out, r.u32())
	}
	return out
}

func (r *reader) ints(n int) []int32 {
	n = r.count(n)
	out := make([]int32, 0, n)
	for i := 0; i < n && r.err == nil; i++ {
		out = append(out, r.i32())
	}
	return out
}

// cardOptions reads code(4) + locinfo(4) entries.
func (r *reader) cardOptions(n int) []CardOption {
	n = r.count(n)
	out := make([]CardOption, 0, n)
	for i := 0; i < n && r.err == nil; i++ {
		out = append(out, CardOption{Code: r.u32(), Loc: r.locInfo()})
	}
	return out
}

// Decode splits a raw engine buffer into messages.
func Decode(buf []byte) ([]Message, error) {
	r := &reader{buf: buf}
	var out []Message
	for r.remaining() > 0 {
		m := r.message()
		if r.err != nil {
			return out, r.err
		}
		out = append(out, m)
	}
	return out, nil
}

// DecodeOne decodes a buffer that must hold exactly one message.
func DecodeOne(buf []byte) (Message, error) {
	msgs, err := Decode(buf)
	if err != nil {
		return nil, err
	}
	if len(msgs) != 1 {
		return nil, &ParseError{Buffer: buf, Reason: fmt.Sprintf("expected one message, got %d", len(msgs))}
	}
	return msgs[0], nil
}

func (r *reader) message() Message {
	start := r.off
	t := MsgType(r.u8())
	switch t {
	case MsgRetry, MsgWaiting, MsgSummoned, MsgSpSummoned, MsgFlipSummoned,
		MsgChainEnd, MsgReverseDeck, MsgAttackDisabled, MsgDamageStepStart,
		MsgDamageStepEnd:
		return &Simple{Msg: t}

	case MsgHint:
		return &Hint{HintType: HintType(r.u8()), Player: r.u8(), Data: r.i32()}

	case MsgStart:
		m := &Start{Player: r.u8()}
		m.StartLP[0] = r.i32()
		m.StartLP[1] = r.i32()
		for p := 0; p < 2; p++ {
			m.DeckCount[p].Main = int(r.u16())
			m.DeckCount[p].Extra = int(r.u16())
		}
		return m

	case MsgWin:
		return &Win{Player: r.u8(), Reason: r.u8()}

	case MsgUpdateData:
		m := &UpdateData{Player: r.u8(), Location: r.loc()}
		for r.err == nil && r.remaining() > 0 {
			m.Cards = append(m.Cards, r.cardInfo())
		}
		return m

	case MsgUpdateCard:
		return &UpdateCard{Player: r.u8(), Location: r.loc(), Sequence: r.u8(), Info: r.cardInfo()}

	case MsgSelectBattleCmd:
		m := &SelectBattleCmd{Player: r.u8()}
		n := int(r.u8())
		for i := 0; i < n && r.err == nil; i++ {
			m.Activatable = append(m.Activatable, ActivatableCard{CardLoc: r.cardLoc(), Description: r.i32()})
		}
		n = int(r.u8())
		for i := 0; i < n && r.err == nil; i++ {
			m.Attackable = append(m.Attackable, AttackableCard{CardLoc: r.cardLoc(), Direct: r.bool()})
		}
		m.CanMain2 = r.bool()
		m.CanEnd = r.bool()
		return m

	case MsgSelectIdleCmd:
		m := &SelectIdleCmd{Player: r.u8()}
		m.Summonable = r.cardLocs(int(r.u8()))
		m.SpSummon = r.cardLocs(int(r.u8()))
		m.Repos = r.cardLocs(int(r.u8()))
		m.MSet = r.cardLocs(int(r.u8()))
		m.SSet = r.cardLocs(int(r.u8()))
		n := int(r.u8())
		for i := 0; i < n && r.err == nil; i++ {
			m.Activatable = append(m.Activatable, ActivatableCard{CardLoc: r.cardLoc(), Description: r.i32()})
		}
		m.CanBattle = r.bool()
		m.CanEnd = r.bool()
		m.CanShuffle = r.bool()
		return m

	case MsgSelectEffectYn:
		return &SelectEffectYn{Player: r.u8(), Code: r.u32(), Loc: r.locInfo(), Description: r.i32()}

	case MsgSelectYesNo:
		return &SelectYesNo{Player: r.u8(), Description: r.i32()}

	case MsgSelectOption:
		m := &SelectOption{Player: r.u8()}
		m.Options = r.ints(int(r.u8()))
		return m

	case MsgSelectCard, MsgSelectTribute:
		m := &SelectCard{Msg: t, Player: r.u8(), Cancelable: r.bool(), Min: r.u8(), Max: r.u8()}
		m.Cards = r.cardOptions(int(r.u8()))
		return m

	case MsgSelectUnselectCard:
		m := &SelectUnselectCard{Player: r.u8(), Finishable: r.bool(), Cancelable: r.bool(), Min: r.u8(), Max: r.u8()}
		m.Selectable = r.cardOptions(int(r.u8()))
		m.Selected = r.cardOptions(int(r.u8()))
		return m

	case MsgSelectChain:
		m := &SelectChain{Player: r.u8()}
		n := int(r.u8())
		m.SpeCount = r.u8()
		m.Forced = r.bool()
		m.HintTiming = r.i32()
		m.HintTimingOpp = r.i32()
		for i := 0; i < n && r.err == nil; i++ {
			m.Chains = append(m.Chains, ChainOption{
				EffectDesc:  r.u8(),
				Forced:      r.bool(),
				Code:        r.u32(),
				Loc:         r.locInfo(),
				Description: r.i32(),
			})
		}
		return m

	case MsgSelectPlace, MsgSelectDisfield:
		return &SelectPlace{Msg: t, Player: r.u8(), Count: r.u8(), Field: r.u32()}

	case MsgSelectPosition:
		return &SelectPosition{Player: r.u8(), Code: r.u32(), Positions: Position(r.u8())}

	case MsgSortChain, MsgSortCard:
		m := &SortCards{Msg: t, Player: r.u8()}
		m.Cards = r.cardLocs(int(r.u8()))
		return m

	case MsgSelectCounter:
		m := &SelectCounter{Player: r.u8(), CounterType: r.u16(), Count: r.u16()}
		n := int(r.u8())
		for i := 0; i < n && r.err == nil; i++ {
			m.Cards = append(m.Cards, CounterOption{CardLoc: r.cardLoc(), Counters: r.u16()})
		}
		return m

	case MsgSelectSum:
		m := &SelectSum{Mode: r.u8(), Player: r.u8(), Sum: r.i32(), Min: r.u8(), Max: r.u8()}
		m.Must = r.sumOptions(int(r.u8()))
		m.Cards = r.sumOptions(int(r.u8()))
		return m

	case MsgAnnounceRace, MsgAnnounceAttrib:
		return &Announce{Msg: t, Player: r.u8(), Count: r.u8(), Available: r.u32()}

	case MsgAnnounceCard, MsgAnnounceNumber:
		m := &AnnounceValues{Msg: t, Player: r.u8()}
		m.Values = r.ints(int(r.u8()))
		return m

	case MsgRockPaperScissors:
		return &RockPaperScissors{Player: r.u8()}

	case MsgConfirmDecktop, MsgConfirmExtratop, MsgConfirmCards:
		m := &ConfirmCards{Msg: t, Player: r.u8()}
		m.Cards = r.cardLocs(int(r.u8()))
		return m

	case MsgShuffleDeck, MsgRefreshDeck, MsgSwapGraveDeck:
		return &PlayerEvent{Msg: t, Player: r.u8()}

	case MsgShuffleHand, MsgShuffleExtra:
		m := &ShuffleCodes{Msg: t, Player: r.u8()}
		m.Codes = r.codes(int(r.u8()))
		return m

	case MsgShuffleSetCard:
		m := &ShuffleSetCard{Location: r.loc()}
		n := int(r.u8())
		m.Previous = r.locInfos(n)
		m.Current = r.locInfos(n)
		return m

	case MsgDeckTop:
		return &DeckTop{Player: r.u8(), Sequence: r.u8(), Code: r.u32()}

	case MsgNewTurn:
		return &NewTurn{Player: r.u8()}

	case MsgNewPhase:
		return &NewPhase{Phase: Phase(r.u16())}

	case MsgMove:
		return &Move{Code: r.u32(), Previous: r.locInfo(), Current: r.locInfo(), Reason: r.u32()}

	case MsgPosChange:
		return &PosChange{
			Code:       r.u32(),
			Controller: r.u8(),
			Location:   r.loc(),
			Sequence:   r.u8(),
			Previous:   Position(r.u8()),
			Current:    Position(r.u8()),
		}

	case MsgSet:
		return &Set{Code: r.u32(), Loc: r.locInfo()}

	case MsgSwap:
		return &Swap{FirstCode: r.u32(), First: r.locInfo(), SecondCode: r.u32(), Second: r.locInfo()}

	case MsgFieldDisabled:
		return &FieldDisabled{Field: r.u32()}

	case MsgSummoning, MsgSpSummoning, MsgFlipSummoning:
		return &Summoning{Msg: t, Code: r.u32(), Loc: r.locInfo()}

	case MsgChaining:
		return &Chaining{
			Code:            r.u32(),
			Controller:      r.u8(),
			Location:        r.loc(),
			Sequence:        r.u8(),
			Subsequence:     r.u8(),
			ChainController: r.u8(),
			ChainLocation:   r.loc(),
			ChainSequence:   r.u8(),
			Description:     r.i32(),
			ChainCount:      r.u8(),
		}

	case MsgChained, MsgChainSolving, MsgChainSolved, MsgChainNegated, MsgChainDisabled:
		return &ChainStep{Msg: t, Chain: r.u8()}

	case MsgCardSelected, MsgRandomSelected:
		m := &Targets{Msg: t, Player: r.u8()}
		m.Cards = r.locInfos(int(r.u8()))
		return m

	case MsgBecomeTarget:
		m := &Targets{Msg: t}
		m.Cards = r.locInfos(int(r.u8()))
		return m

	case MsgDraw:
		m := &Draw{Player: r.u8()}
		m.Cards = r.codes(int(r.u8()))
		return m

	case MsgDamage, MsgRecover, MsgLPUpdate, MsgPayLPCost:
		return &LifePoints{Msg: t, Player: r.u8(), Value: r.i32()}

	case MsgEquip, MsgCardTarget, MsgCancelTarget, MsgAttack:
		return &CardPair{Msg: t, First: r.locInfo(), Second: r.locInfo()}

	case MsgUnequip:
		return &Unequip{Card: r.locInfo()}

	case MsgAddCounter, MsgRemoveCounter:
		return &Counter{
			Msg:         t,
			CounterType: r.u16(),
			Controller:  r.u8(),
			Location:    r.loc(),
			Sequence:    r.u8(),
			Count:       r.u16(),
		}

	case MsgBattle:
		m := &Battle{}
		m.Attacker = Combatant{Loc: r.locInfo(), Attack: r.i32(), Defense: r.i32(), Destroyed: r.bool()}
		m.Defender = Combatant{Loc: r.locInfo(), Attack: r.i32(), Defense: r.i32(), Destroyed: r.bool()}
		return m

	case MsgMissedEffect:
		return &MissedEffect{Loc: r.locInfo(), Code: r.u32()}

	case MsgTossCoin, MsgTossDice:
		m := &Toss{Msg: t, Player: r.u8()}
		n := int(r.u8())
		if b := r.take(n); b != nil {
			m.Results = append([]uint8(nil), b...)
		}
		return m

	case MsgHandRes:
		return &HandRes{Result: r.u8()}

	case MsgCardHint:
		return &CardHint{Loc: r.locInfo(), HintType: r.u8(), Value: r.i32()}

	case MsgPlayerHint:
		return &PlayerHint{Player: r.u8(), HintType: r.u8(), Value: r.i32()}

	case MsgMatchKill:
		return &MatchKill{Code: r.u32()}
	}

	r.off = start
	r.fail("unknown message type %d", uint8(t))
	return nil
}

func (r *reader) sumOptions(n int) []SumOption {
	n = r.count(n)
	out := make([]SumOption, 0, n)
	for i := 0; i < n && r.err == nil; i++ {
		out = append(out, SumOption{CardLoc: r.cardLoc(), Param: r.i32()})
	}
	return out
}

// cardInfo reads one length-prefixed query record. The length includes its
// own four bytes; a record of four bytes or fewer is a vacant slot.
func (r *reader) cardInfo() CardInfo {
	size := int(r.i32())
	if r.err != nil {
		return CardInfo{}
	}
	if size <= 4 {
		return CardInfo{Empty: true}
	}
	body := r.take(size - 4)
	if body == nil {
		return CardInfo{}
	}
	sub := &reader{buf: body}
	ci := sub.queryFields()
	if sub.err != nil {
		pe := sub.err.(*ParseError)
		r.err = &ParseError{Buffer: r.buf, Offset: r.off - len(body) + pe.Offset, Reason: "card record: " + pe.Reason}
	}
	return ci
}

func (r *reader) queryFields() CardInfo {
	ci := CardInfo{Flags: QueryFlag(r.u32())}
	if ci.Has(QueryCode) {
		ci.Code = r.u32()
	}
	if ci.Has(QueryPosition) {
		ci.Position = Position(r.u32() >> 24)
	}
	if ci.Has(QueryAlias) {
		ci.Alias = r.u32()
	}
	if ci.Has(QueryType) {
		ci.CardType = r.u32()
	}
	if ci.Has(QueryLevel) {
		ci.Level = r.u32()
	}
	if ci.Has(QueryRank) {
		ci.Rank = r.u32()
	}
	if ci.Has(QueryAttribute) {
		ci.Attribute = r.u32()
	}
	if ci.Has(QueryRace) {
		ci.Race = r.u32()
	}
	if ci.Has(QueryAttack) {
		ci.Attack = r.i32()
	}
	if ci.Has(QueryDefense) {
		ci.Defense = r.i32()
	}
	if ci.Has(QueryBaseAttack) {
		ci.BaseAttack = r.i32()
	}
	if ci.Has(QueryBaseDefense) {
		ci.BaseDefense = r.i32()
	}
	if ci.Has(QueryReason) {
		ci.Reason = r.u32()
	}
	if ci.Has(QueryReasonCard) {
		li := r.locInfo()
		ci.ReasonCard = &li
	}
	if ci.Has(QueryEquipCard) {
		li := r.locInfo()
		ci.EquipCard = &li
	}
	if ci.Has(QueryTargetCard) {
		ci.Targets = r.locInfos(int(r.i32()))
	}
	if ci.Has(QueryOverlayCard) {
		ci.Overlay = r.codes(int(r.i32()))
	}
	if ci.Has(QueryCounters) {
		ci.Counters = r.codes(int(r.i32()))
	}
	if ci.Has(QueryOwner) {
		ci.Owner = uint8(r.u32())
	}
	if ci.Has(QueryStatus) {
		ci.Status = r.u32()
	}
	if ci.Has(QueryIsPublic) {
		ci.Public = r.u32() != 0
	}
	if ci.Has(QueryLScale) {
		ci.LScale = r.u32()
	}
	if ci.Has(QueryRScale) {
		ci.RScale = r.u32()
	}
	if ci.Has(QueryLink) {
		ci.LinkRating = r.u32()
		ci.LinkMarker = r.u32()
	}
	return ci
}
