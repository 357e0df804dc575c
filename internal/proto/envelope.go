package proto

import (
	"encoding/json"
	"fmt"
)

// Envelope is the JSON form of a message: a stable type name and the
// message body.
type Envelope struct {
	Type string          `json:"type"`
	Body json.RawMessage `json:"body"`
}

// Wrap builds the envelope for m.
func Wrap(m Message) (Envelope, error) {
	body, err := json.Marshal(m)
	if err != nil {
		return Envelope{}, fmt.Errorf("marshaling %s: %w", m.Type(), err)
	}
	return Envelope{Type: m.Type().String(), Body: body}, nil
}

// MarshalEnvelope encodes m as an envelope.
func MarshalEnvelope(m Message) ([]byte, error) {
	env, err := Wrap(m)
	if err != nil {
		return nil, err
	}
	return json.Marshal(env)
}

// Unwrap restores the concrete message held by env.
func (env Envelope) Unwrap() (Message, error) {
	t, ok := msgTypesByName[env.Type]
	if !ok {
		return nil, fmt.Errorf("%w: unknown envelope type %q", ErrProtocolParse, env.Type)
	}
	m := newMessage(t)
	if m == nil {
		return nil, fmt.Errorf("%w: no body type for %s", ErrProtocolParse, env.Type)
	}
	if len(env.Body) > 0 {
		if err := json.Unmarshal(env.Body, m); err != nil {
			return nil, fmt.Errorf("%w: %s body: %v", ErrProtocolParse, env.Type, err)
		}
	}
	return m, nil
}

// UnmarshalEnvelope decodes a JSON envelope into its concrete message.
func UnmarshalEnvelope(data []byte) (Message, error) {
	var env Envelope
	if err := json.Unmarshal(data, &env); err != nil {
		return nil, fmt.Errorf("%w: envelope: %v", ErrProtocolParse, err)
	}
	return env.Unwrap()
}

func newMessage(t MsgType) Message {
	switch t {
	case MsgRetry, MsgWaiting, MsgSummoned, MsgSpSummoned, MsgFlipSummoned,
		MsgChainEnd, MsgReverseDeck, MsgAttackDisabled, MsgDamageStepStart,
		MsgDamageStepEnd:
		return &Simple{Msg: t}
	case MsgHint:
		return &Hint{}
	case MsgStart:
		return &Start{}
	case MsgWin:
		return &Win{}
	case MsgUpdateData:
		return &UpdateData{}
	case MsgUpdateCard:
		return &UpdateCard{}
	case MsgSelectBattleCmd:
		return &SelectBattleCmd{}
	case MsgSelectIdleCmd:
		return &SelectIdleCmd{}
	case MsgSelectEffectYn:
		return &SelectEffectYn{}
	case MsgSelectYesNo:
		return &SelectYesNo{}
	case MsgSelectOption:
		return &SelectOption{}
	case MsgSelectCard, MsgSelectTribute:
		return &SelectCard{Msg: t}
	case MsgSelectUnselectCard:
		return &SelectUnselectCard{}
	case MsgSelectChain:
		return &SelectChain{}
	case MsgSelectPlace, MsgSelectDisfield:
		return &SelectPlace{Msg: t}
	case MsgSelectPosition:
		return &SelectPosition{}
	case MsgSortChain, MsgSortCard:
		return &SortCards{Msg: t}
	case MsgSelectCounter:
		return &SelectCounter{}
	case MsgSelectSum:
		return &SelectSum{}
	case MsgAnnounceRace, MsgAnnounceAttrib:
		return &Announce{Msg: t}
	case MsgAnnounceCard, MsgAnnounceNumber:
		return &AnnounceValues{Msg: t}
	case MsgRockPaperScissors:
		return &RockPaperScissors{}
	case MsgConfirmDecktop, MsgConfirmExtratop, MsgConfirmCards:
		return &ConfirmCards{Msg: t}
	case MsgShuffleDeck, MsgRefreshDeck, MsgSwapGraveDeck:
		return &PlayerEvent{Msg: t}
	case MsgShuffleHand, MsgShuffleExtra:
		return &ShuffleCodes{Msg: t}
	case MsgShuffleSetCard:
		return &ShuffleSetCard{}
	case MsgDeckTop:
		return &DeckTop{}
	case MsgNewTurn:
		return &NewTurn{}
	case MsgNewPhase:
		return &NewPhase{}
	case MsgMove:
		return &Move{}
	case MsgPosChange:
		return &PosChange{}
	case MsgSet:
		return &Set{}
	case MsgSwap:
		return &Swap{}
	case MsgFieldDisabled:
		return &FieldDisabled{}
	case MsgSummoning, MsgSpSummoning, MsgFlipSummoning:
		return &Summoning{Msg: t}
	case MsgChaining:
		return &Chaining{}
	case MsgChained, MsgChainSolving, MsgChainSolved, MsgChainNegated, MsgChainDisabled:
		return &ChainStep{Msg: t}
	case MsgCardSelected, MsgRandomSelected, MsgBecomeTarget:
		return &Targets{Msg: t}
	case MsgDraw:
		return &Draw{}
	case MsgDamage, MsgRecover, MsgLPUpdate, MsgPayLPCost:
		return &LifePoints{Msg: t}
	case MsgEquip, MsgCardTarget, MsgCancelTarget, MsgAttack:
		return &CardPair{Msg: t}
	case MsgUnequip:
		return &Unequip{}
	case MsgAddCounter, MsgRemoveCounter:
		return &Counter{Msg: t}
	case MsgBattle:
		return &Battle{}
	case MsgMissedEffect:
		return &MissedEffect{}
	case MsgTossCoin, MsgTossDice:
		return &Toss{Msg: t}
	case MsgHandRes:
		return &HandRes{}
	case MsgCardHint:
		return &CardHint{}
	case MsgPlayerHint:
		return &PlayerHint{}
	case MsgMatchKill:
		return &MatchKill{}
	}
	return nil
}
