package host

import (
	"github.com/ghlin/ego/internal/proto"
)

// Query masks. The field mask asks for owner-only detail on top of the
// public attributes; pile masks leave out scales and link data.
const (
	RefreshPileFlags   proto.QueryFlag = 0x181FFF
	RefreshFieldFlags  proto.QueryFlag = 0xF81FFF
	RefreshSingleFlags proto.QueryFlag = 0xF81FFF
)

// InitialRefresh queries both players' Deck and Extra once, before the
// first engine message.
func InitialRefresh(q Querier) ([]proto.Message, error) {
	return collect(
		func() ([]proto.Message, error) { return refreshBoth(q, proto.LocationDeck, RefreshPileFlags) },
		func() ([]proto.Message, error) { return refreshBoth(q, proto.LocationExtra, RefreshPileFlags) },
	)
}

// PlanFollowUp returns the refresh messages to splice in right after m.
// Most messages need none.
func PlanFollowUp(q Querier, m proto.Message) ([]proto.Message, error) {
	switch m := m.(type) {
	case *proto.SelectBattleCmd, *proto.SelectIdleCmd:
		return refreshBoard(q)

	case *proto.NewPhase:
		return refreshBoard(q)

	case *proto.Simple:
		switch m.Msg {
		case proto.MsgSummoned, proto.MsgSpSummoned, proto.MsgFlipSummoned,
			proto.MsgChainEnd, proto.MsgDamageStepStart:
			return refreshBoard(q)
		case proto.MsgReverseDeck:
			return refreshBoth(q, proto.LocationDeck, RefreshPileFlags)
		}

	case *proto.ChainStep:
		if m.Msg == proto.MsgChained || m.Msg == proto.MsgChainSolved {
			return refreshBoard(q)
		}

	case *proto.PlayerEvent:
		switch m.Msg {
		case proto.MsgShuffleDeck:
			return refreshOne(q, m.Player, proto.LocationDeck, RefreshPileFlags)
		case proto.MsgSwapGraveDeck:
			return refreshOne(q, m.Player, proto.LocationGrave, RefreshPileFlags)
		}

	case *proto.Move:
		cur, prev := m.Current, m.Previous
		if cur.Location != proto.LocationNone && !cur.Location.IsOverlay() &&
			(cur.Location != prev.Location || cur.Controller != prev.Controller) {
			return refreshSingle(q, cur.Controller, cur.Location, cur.Sequence)
		}
	}
	return nil, nil
}

// Inflate returns m followed by its follow-up refreshes.
func Inflate(q Querier, m proto.Message) ([]proto.Message, error) {
	extra, err := PlanFollowUp(q, m)
	if err != nil {
		return nil, err
	}
	return append([]proto.Message{m}, extra...), nil
}

// refreshBoard covers monster zones, spell/trap zones and hands of both
// players, in that order.
func refreshBoard(q Querier) ([]proto.Message, error) {
	return collect(
		func() ([]proto.Message, error) { return refreshBoth(q, proto.LocationMZone, RefreshFieldFlags) },
		func() ([]proto.Message, error) { return refreshBoth(q, proto.LocationSZone, RefreshFieldFlags) },
		func() ([]proto.Message, error) { return refreshBoth(q, proto.LocationHand, RefreshFieldFlags) },
	)
}

func refreshBoth(q Querier, loc proto.Location, flags proto.QueryFlag) ([]proto.Message, error) {
	return collect(
		func() ([]proto.Message, error) { return refreshOne(q, 0, loc, flags) },
		func() ([]proto.Message, error) { return refreshOne(q, 1, loc, flags) },
	)
}

func refreshOne(q Querier, player uint8, loc proto.Location, flags proto.QueryFlag) ([]proto.Message, error) {
	data, err := q.QueryFieldCard(player, loc, flags)
	if err != nil {
		return nil, hostErr("query_field_card", err)
	}
	buf := proto.NewBuilder(proto.MsgUpdateData).U8(player).U8(uint8(loc)).Raw(data).Bytes()
	msgs, err := proto.Decode(buf)
	if err != nil {
		return nil, hostErr("parse field refresh", err)
	}
	return msgs, nil
}

func refreshSingle(q Querier, player uint8, loc proto.Location, seq uint8) ([]proto.Message, error) {
	data, err := q.QueryCard(player, loc, seq, RefreshSingleFlags)
	if err != nil {
		return nil, hostErr("query_card", err)
	}
	buf := proto.NewBuilder(proto.MsgUpdateCard).U8(player).U8(uint8(loc)).U8(seq).Raw(data).Bytes()
	msgs, err := proto.Decode(buf)
	if err != nil {
		return nil, hostErr("parse card refresh", err)
	}
	return msgs, nil
}

func collect(parts ...func() ([]proto.Message, error)) ([]proto.Message, error) {
	var out []proto.Message
	for _, part := range parts {
		msgs, err := part()
		if err != nil {
			return nil, err
		}
		out = append(out, msgs...)
	}
	return out, nil
}
