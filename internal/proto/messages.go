package proto

import "fmt"

// MsgType is the leading tag byte of every engine message.
type MsgType uint8

const (
	MsgRetry              MsgType = 1
	MsgHint               MsgType = 2
	MsgWaiting            MsgType = 3
	MsgStart              MsgType = 4
	MsgWin                MsgType = 5
	MsgUpdateData         MsgType = 6
	MsgUpdateCard         MsgType = 7
	MsgSelectBattleCmd    MsgType = 10
	MsgSelectIdleCmd      MsgType = 11
	MsgSelectEffectYn     MsgType = 12
	MsgSelectYesNo        MsgType = 13
	MsgSelectOption       MsgType = 14
	MsgSelectCard         MsgType = 15
	MsgSelectChain        MsgType = 16
	MsgSelectPlace        MsgType = 18
	MsgSelectPosition     MsgType = 19
	MsgSelectTribute      MsgType = 20
	MsgSortChain          MsgType = 21
	MsgSelectCounter      MsgType = 22
	MsgSelectSum          MsgType = 23
	MsgSelectDisfield     MsgType = 24
	MsgSortCard           MsgType = 25
	MsgSelectUnselectCard MsgType = 26
	MsgConfirmDecktop     MsgType = 30
	MsgConfirmCards       MsgType = 31
	MsgShuffleDeck        MsgType = 32
	MsgShuffleHand        MsgType = 33
	MsgRefreshDeck        MsgType = 34
	MsgSwapGraveDeck      MsgType = 35
	MsgShuffleSetCard     MsgType = 36
	MsgReverseDeck        MsgType = 37
	MsgDeckTop            MsgType = 38
	MsgShuffleExtra       MsgType = 39
	MsgNewTurn            MsgType = 40
	MsgNewPhase           MsgType = 41
	MsgConfirmExtratop    MsgType = 42
	MsgMove               MsgType = 50
	MsgPosChange          MsgType = 53
	MsgSet                MsgType = 54
	MsgSwap               MsgType = 55
	MsgFieldDisabled      MsgType = 56
	MsgSummoning          MsgType = 60
	MsgSummoned           MsgType = 61
	MsgSpSummoning        MsgType = 62
	MsgSpSummoned         MsgType = 63
	MsgFlipSummoning      MsgType = 64
	MsgFlipSummoned       MsgType = 65
	MsgChaining           MsgType = 70
	MsgChained            MsgType = 71
	MsgChainSolving       MsgType = 72
	MsgChainSolved        MsgType = 73
	MsgChainEnd           MsgType = 74
	MsgChainNegated       MsgType = 75
	MsgChainDisabled      MsgType = 76
	MsgCardSelected       MsgType = 80
	MsgRandomSelected     MsgType = 81
	MsgBecomeTarget       MsgType = 83
	MsgDraw               MsgType = 90
	MsgDamage             MsgType = 91
	MsgRecover            MsgType = 92
	MsgEquip              MsgType = 93
	MsgLPUpdate           MsgType = 94
	MsgUnequip            MsgType = 95
	MsgCardTarget         MsgType = 96
	MsgCancelTarget       MsgType = 97
	MsgPayLPCost          MsgType = 100
	MsgAddCounter         MsgType = 101
	MsgRemoveCounter      MsgType = 102
	MsgAttack             MsgType = 110
	MsgBattle             MsgType = 111
	MsgAttackDisabled     MsgType = 112
	MsgDamageStepStart    MsgType = 113
	MsgDamageStepEnd      MsgType = 114
	MsgMissedEffect       MsgType = 120
	MsgTossCoin           MsgType = 130
	MsgTossDice           MsgType = 131
	MsgRockPaperScissors  MsgType = 132
	MsgHandRes            MsgType = 133
	MsgAnnounceRace       MsgType = 140
	MsgAnnounceAttrib     MsgType = 141
	MsgAnnounceCard       MsgType = 142
	MsgAnnounceNumber     MsgType = 143
	MsgCardHint           MsgType = 160
	MsgTagSwap            MsgType = 161
	MsgPlayerHint         MsgType = 165
	MsgMatchKill          MsgType = 170
)

var msgNames = map[MsgType]string{
	MsgRetry:              "MSG_RETRY",
	MsgHint:               "MSG_HINT",
	MsgWaiting:            "MSG_WAITING",
	MsgStart:              "MSG_START",
	MsgWin:                "MSG_WIN",
	MsgUpdateData:         "MSG_UPDATE_DATA",
	MsgUpdateCard:         "MSG_UPDATE_CARD",
	MsgSelectBattleCmd:    "MSG_SELECT_BATTLECMD",
	MsgSelectIdleCmd:      "MSG_SELECT_IDLECMD",
	MsgSelectEffectYn:     "MSG_SELECT_EFFECTYN",
	MsgSelectYesNo:        "MSG_SELECT_YESNO",
	MsgSelectOption:       "MSG_SELECT_OPTION",
	MsgSelectCard:         "MSG_SELECT_CARD",
	MsgSelectChain:        "MSG_SELECT_CHAIN",
	MsgSelectPlace:        "MSG_SELECT_PLACE",
	MsgSelectPosition:     "MSG_SELECT_POSITION",
	MsgSelectTribute:      "MSG_SELECT_TRIBUTE",
	MsgSortChain:          "MSG_SORT_CHAIN",
	MsgSelectCounter:      "MSG_SELECT_COUNTER",
	MsgSelectSum:          "MSG_SELECT_SUM",
	MsgSelectDisfield:     "MSG_SELECT_DISFIELD",
	MsgSortCard:           "MSG_SORT_CARD",
	MsgSelectUnselectCard: "MSG_SELECT_UNSELECT_CARD",
	MsgConfirmDecktop:     "MSG_CONFIRM_DECKTOP",
	MsgConfirmCards:       "MSG_CONFIRM_CARDS",
	MsgShuffleDeck:        "MSG_SHUFFLE_DECK",
	MsgShuffleHand:        "MSG_SHUFFLE_HAND",
	MsgRefreshDeck:        "MSG_REFRESH_DECK",
	MsgSwapGraveDeck:      "MSG_SWAP_GRAVE_DECK",
	MsgShuffleSetCard:     "MSG_SHUFFLE_SET_CARD",
	MsgReverseDeck:        "MSG_REVERSE_DECK",
	MsgDeckTop:            "MSG_DECK_TOP",
	MsgShuffleExtra:       "MSG_SHUFFLE_EXTRA",
	MsgNewTurn:            "MSG_NEW_TURN",
	MsgNewPhase:           "MSG_NEW_PHASE",
	MsgConfirmExtratop:    "MSG_CONFIRM_EXTRATOP",
	MsgMove:               "MSG_MOVE",
	MsgPosChange:          "MSG_POS_CHANGE",
	MsgSet:                "MSG_SET",
	MsgSwap:               "MSG_SWAP",
	MsgFieldDisabled:      "MSG_FIELD_DISABLED",
	MsgSummoning:          "MSG_SUMMONING",
	MsgSummoned:           "MSG_SUMMONED",
	MsgSpSummoning:        "MSG_SPSUMMONING",
	MsgSpSummoned:         "MSG_SPSUMMONED",
	MsgFlipSummoning:      "MSG_FLIPSUMMONING",
	MsgFlipSummoned:       "MSG_FLIPSUMMONED",
	MsgChaining:           "MSG_CHAINING",
	MsgChained:            "MSG_CHAINED",
	MsgChainSolving:       "MSG_CHAIN_SOLVING",
	MsgChainSolved:        "MSG_CHAIN_SOLVED",
	MsgChainEnd:           "MSG_CHAIN_END",
	MsgChainNegated:       "MSG_CHAIN_NEGATED",
	MsgChainDisabled:      "MSG_CHAIN_DISABLED",
	MsgCardSelected:       "MSG_CARD_SELECTED",
	MsgRandomSelected:     "MSG_RANDOM_SELECTED",
	MsgBecomeTarget:       "MSG_BECOME_TARGET",
	MsgDraw:               "MSG_DRAW",
	MsgDamage:             "MSG_DAMAGE",
	MsgRecover:            "MSG_RECOVER",
	MsgEquip:              "MSG_EQUIP",
	MsgLPUpdate:           "MSG_LPUPDATE",
	MsgUnequip:            "MSG_UNEQUIP",
	MsgCardTarget:         "MSG_CARD_TARGET",
	MsgCancelTarget:       "MSG_CANCEL_TARGET",
	MsgPayLPCost:          "MSG_PAY_LPCOST",
	MsgAddCounter:         "MSG_ADD_COUNTER",
	MsgRemoveCounter:      "MSG_REMOVE_COUNTER",
	MsgAttack:             "MSG_ATTACK",
	MsgBattle:             "MSG_BATTLE",
	MsgAttackDisabled:     "MSG_ATTACK_DISABLED",
	MsgDamageStepStart:    "MSG_DAMAGE_STEP_START",
	MsgDamageStepEnd:      "MSG_DAMAGE_STEP_END",
	MsgMissedEffect:       "MSG_MISSED_EFFECT",
	MsgTossCoin:           "MSG_TOSS_COIN",
	MsgTossDice:           "MSG_TOSS_DICE",
	MsgRockPaperScissors:  "MSG_ROCK_PAPER_SCISSORS",
	MsgHandRes:            "MSG_HAND_RES",
	MsgAnnounceRace:       "MSG_ANNOUNCE_RACE",
	MsgAnnounceAttrib:     "MSG_ANNOUNCE_ATTRIB",
	MsgAnnounceCard:       "MSG_ANNOUNCE_CARD",
	MsgAnnounceNumber:     "MSG_ANNOUNCE_NUMBER",
	MsgCardHint:           "MSG_CARD_HINT",
	MsgTagSwap:            "MSG_TAG_SWAP",
	MsgPlayerHint:         "MSG_PLAYER_HINT",
	MsgMatchKill:          "MSG_MATCH_KILL",
}

var msgTypesByName = func() map[string]MsgType {
	m := make(map[string]MsgType, len(msgNames))
	for t, name := range msgNames {
		m[name] = t
	}
	return m
}()

func (t MsgType) String() string {
	if name, ok := msgNames[t]; ok {
		return name
	}
	return fmt.Sprintf("MSG_%d", uint8(t))
}

// Message is one decoded record of the engine's message stream.
type Message interface {
	Type() MsgType
}

// Question is a message that blocks the engine until exactly one response
// from Responder has been fed.
type Question interface {
	Message
	Responder() uint8
}

// IsQuestion reports whether m requires a response before the stream can
// continue.
func IsQuestion(m Message) bool {
	_, ok := m.(Question)
	return ok
}

// --- Shared payload shapes ---

// CardLoc is a card code together with where it sits.
type CardLoc struct {
	Code       uint32   `json:"code"`
	Controller uint8    `json:"controller"`
	Location   Location `json:"location"`
	Sequence   uint8    `json:"sequence"`
}

// CardOption is a selectable card in a question.
type CardOption struct {
	Code  uint32  `json:"code"`
	Loc   LocInfo `json:"loc"`
	Param int32   `json:"param,omitempty"`
}

// ActivatableCard is a card whose effect may be activated from a command menu.
type ActivatableCard struct {
	CardLoc
	Description int32 `json:"description"`
}

// --- Administrative messages ---

// Simple is a message without a payload (retry, waiting, chain end, ...).
type Simple struct {
	Msg MsgType `json:"-"`
}

func (m *Simple) Type() MsgType { return m.Msg }

type Hint struct {
	HintType HintType `json:"type"`
	Player   uint8    `json:"player"`
	Data     int32    `json:"data"`
}

func (*Hint) Type() MsgType { return MsgHint }

// DeckCount is the main/extra deck size of one player.
type DeckCount struct {
	Main  int `json:"main_deck"`
	Extra int `json:"extra_deck"`
}

type Start struct {
	Player    uint8        `json:"player"`
	StartLP   [2]int32     `json:"start_lp"`
	DeckCount [2]DeckCount `json:"deck_count"`
}

func (*Start) Type() MsgType { return MsgStart }

type Win struct {
	Player uint8 `json:"player"`
	Reason uint8 `json:"type"`
}

func (*Win) Type() MsgType { return MsgWin }

// CardInfo is one decoded card query record. Empty is set for vacant slots.
type CardInfo struct {
	Empty       bool      `json:"empty,omitempty"`
	Flags       QueryFlag `json:"flags,omitempty"`
	Code        uint32    `json:"code,omitempty"`
	Position    Position  `json:"position,omitempty"`
	Alias       uint32    `json:"alias,omitempty"`
	CardType    uint32    `json:"card_type,omitempty"`
	Level       uint32    `json:"level,omitempty"`
	Rank        uint32    `json:"rank,omitempty"`
	Attribute   uint32    `json:"attribute,omitempty"`
	Race        uint32    `json:"race,omitempty"`
	Attack      int32     `json:"attack,omitempty"`
	Defense     int32     `json:"defense,omitempty"`
	BaseAttack  int32     `json:"base_attack,omitempty"`
	BaseDefense int32     `json:"base_defense,omitempty"`
	Reason      uint32    `json:"reason,omitempty"`
	ReasonCard  *LocInfo  `json:"reason_card,omitempty"`
	EquipCard   *LocInfo  `json:"equip_card,omitempty"`
	Targets     []LocInfo `json:"targets,omitempty"`
	Overlay     []uint32  `json:"overlay,omitempty"`
	Counters    []uint32  `json:"counters,omitempty"`
	Owner       uint8     `json:"owner,omitempty"`
	Status      uint32    `json:"status,omitempty"`
	Public      bool      `json:"public,omitempty"`
	LScale      uint32    `json:"lscale,omitempty"`
	RScale      uint32    `json:"rscale,omitempty"`
	LinkRating  uint32    `json:"link,omitempty"`
	LinkMarker  uint32    `json:"link_marker,omitempty"`
}

// Has reports whether the record carries the given attribute.
func (ci *CardInfo) Has(f QueryFlag) bool {
	return ci.Flags&f != 0
}

// UpdateData is a whole-zone refresh: one record per slot of the zone.
type UpdateData struct {
	Player   uint8      `json:"player"`
	Location Location   `json:"location"`
	Cards    []CardInfo `json:"cards"`
}

func (*UpdateData) Type() MsgType { return MsgUpdateData }

// UpdateCard refreshes a single slot.
type UpdateCard struct {
	Player   uint8    `json:"player"`
	Location Location `json:"location"`
	Sequence uint8    `json:"sequence"`
	Info     CardInfo `json:"info"`
}

func (*UpdateCard) Type() MsgType { return MsgUpdateCard }

// --- Questions ---

type SelectBattleCmd struct {
	Player      uint8             `json:"player"`
	Activatable []ActivatableCard `json:"activatable"`
	Attackable  []AttackableCard  `json:"attackable"`
	CanMain2    bool              `json:"can_main2"`
	CanEnd      bool              `json:"can_end"`
}

// AttackableCard is a monster able to declare an attack.
type AttackableCard struct {
	CardLoc
	Direct bool `json:"direct"`
}

func (*SelectBattleCmd) Type() MsgType      { return MsgSelectBattleCmd }
func (m *SelectBattleCmd) Responder() uint8 { return m.Player }

type SelectIdleCmd struct {
	Player      uint8             `json:"player"`
	Summonable  []CardLoc         `json:"summonable"`
	SpSummon    []CardLoc         `json:"spsummonable"`
	Repos       []CardLoc         `json:"repos"`
	MSet        []CardLoc         `json:"mset"`
	SSet        []CardLoc         `json:"sset"`
	Activatable []ActivatableCard `json:"activatable"`
	CanBattle   bool              `json:"can_battle"`
	CanEnd      bool              `json:"can_end"`
	CanShuffle  bool              `json:"can_shuffle"`
}

func (*SelectIdleCmd) Type() MsgType      { return MsgSelectIdleCmd }
func (m *SelectIdleCmd) Responder() uint8 { return m.Player }

type SelectEffectYn struct {
	Player      uint8   `json:"player"`
	Code        uint32  `json:"code"`
	Loc         LocInfo `json:"loc"`
	Description int32   `json:"description"`
}

func (*SelectEffectYn) Type() MsgType      { return MsgSelectEffectYn }
func (m *SelectEffectYn) Responder() uint8 { return m.Player }

type SelectYesNo struct {
	Player      uint8 `json:"player"`
	Description int32 `json:"description"`
}

func (*SelectYesNo) Type() MsgType      { return MsgSelectYesNo }
func (m *SelectYesNo) Responder() uint8 { return m.Player }

type SelectOption struct {
	Player  uint8   `json:"player"`
	Options []int32 `json:"options"`
}

func (*SelectOption) Type() MsgType      { return MsgSelectOption }
func (m *SelectOption) Responder() uint8 { return m.Player }

// SelectCard covers MSG_SELECT_CARD and MSG_SELECT_TRIBUTE.
type SelectCard struct {
	Msg        MsgType      `json:"-"`
	Player     uint8        `json:"player"`
	Cancelable bool         `json:"cancelable"`
	Min        uint8        `json:"min"`
	Max        uint8        `json:"max"`
	Cards      []CardOption `json:"cards"`
}

func (m *SelectCard) Type() MsgType    { return m.Msg }
func (m *SelectCard) Responder() uint8 { return m.Player }

type SelectUnselectCard struct {
	Player     uint8        `json:"player"`
	Finishable bool         `json:"finishable"`
	Cancelable bool         `json:"cancelable"`
	Min        uint8        `json:"min"`
	Max        uint8        `json:"max"`
	Selectable []CardOption `json:"selectable"`
	Selected   []CardOption `json:"selected"`
}

func (*SelectUnselectCard) Type() MsgType      { return MsgSelectUnselectCard }
func (m *SelectUnselectCard) Responder() uint8 { return m.Player }

// ChainOption is one activatable effect offered by MSG_SELECT_CHAIN.
type ChainOption struct {
	EffectDesc  uint8   `json:"edesc"`
	Forced      bool    `json:"forced"`
	Code        uint32  `json:"code"`
	Loc         LocInfo `json:"loc"`
	Description int32   `json:"description"`
}

type SelectChain struct {
	Player        uint8         `json:"player"`
	SpeCount      uint8         `json:"specount"`
	Forced        bool          `json:"forced"`
	HintTiming    int32         `json:"hint_timing"`
	HintTimingOpp int32         `json:"hint_timing_opp"`
	Chains        []ChainOption `json:"chains"`
}

func (*SelectChain) Type() MsgType      { return MsgSelectChain }
func (m *SelectChain) Responder() uint8 { return m.Player }

// SelectPlace covers MSG_SELECT_PLACE and MSG_SELECT_DISFIELD.
type SelectPlace struct {
	Msg    MsgType `json:"-"`
	Player uint8   `json:"player"`
	Count  uint8   `json:"count"`
	Field  uint32  `json:"field"`
}

func (m *SelectPlace) Type() MsgType    { return m.Msg }
func (m *SelectPlace) Responder() uint8 { return m.Player }

type SelectPosition struct {
	Player    uint8    `json:"player"`
	Code      uint32   `json:"code"`
	Positions Position `json:"positions"`
}

func (*SelectPosition) Type() MsgType      { return MsgSelectPosition }
func (m *SelectPosition) Responder() uint8 { return m.Player }

// SortCards covers MSG_SORT_CHAIN and MSG_SORT_CARD.
type SortCards struct {
	Msg    MsgType   `json:"-"`
	Player uint8     `json:"player"`
	Cards  []CardLoc `json:"cards"`
}

func (m *SortCards) Type() MsgType    { return m.Msg }
func (m *SortCards) Responder() uint8 { return m.Player }

// CounterOption is a card that may have counters removed.
type CounterOption struct {
	CardLoc
	Counters uint16 `json:"counters"`
}

type SelectCounter struct {
	Player      uint8           `json:"player"`
	CounterType uint16          `json:"counter_type"`
	Count       uint16          `json:"count"`
	Cards       []CounterOption `json:"cards"`
}

func (*SelectCounter) Type() MsgType      { return MsgSelectCounter }
func (m *SelectCounter) Responder() uint8 { return m.Player }

// SumOption is a card contributing a value to MSG_SELECT_SUM.
type SumOption struct {
	CardLoc
	Param int32 `json:"param"`
}

type SelectSum struct {
	Mode   uint8       `json:"mode"`
	Player uint8       `json:"player"`
	Sum    int32       `json:"sum"`
	Min    uint8       `json:"min"`
	Max    uint8       `json:"max"`
	Must   []SumOption `json:"must"`
	Cards  []SumOption `json:"cards"`
}

func (*SelectSum) Type() MsgType      { return MsgSelectSum }
func (m *SelectSum) Responder() uint8 { return m.Player }

// Announce covers MSG_ANNOUNCE_RACE and MSG_ANNOUNCE_ATTRIB.
type Announce struct {
	Msg       MsgType `json:"-"`
	Player    uint8   `json:"player"`
	Count     uint8   `json:"count"`
	Available uint32  `json:"available"`
}

func (m *Announce) Type() MsgType    { return m.Msg }
func (m *Announce) Responder() uint8 { return m.Player }

// AnnounceValues covers MSG_ANNOUNCE_CARD and MSG_ANNOUNCE_NUMBER.
type AnnounceValues struct {
	Msg    MsgType `json:"-"`
	Player uint8   `json:"player"`
	Values []int32 `json:"values"`
}

func (m *AnnounceValues) Type() MsgType    { return m.Msg }
func (m *AnnounceValues) Responder() uint8 { return m.Player }

type RockPaperScissors struct {
	Player uint8 `json:"player"`
}

func (*RockPaperScissors) Type() MsgType      { return MsgRockPaperScissors }
func (m *RockPaperScissors) Responder() uint8 { return m.Player }

// --- Pile messages ---

// ConfirmCards covers MSG_CONFIRM_DECKTOP, MSG_CONFIRM_EXTRATOP and
// MSG_CONFIRM_CARDS.
type ConfirmCards struct {
	Msg    MsgType   `json:"-"`
	Player uint8     `json:"player"`
	Cards  []CardLoc `json:"cards"`
}

func (m *ConfirmCards) Type() MsgType { return m.Msg }

// PlayerEvent covers single-player administrative messages: shuffle deck,
// refresh deck, swap grave/deck.
type PlayerEvent struct {
	Msg    MsgType `json:"-"`
	Player uint8   `json:"player"`
}

func (m *PlayerEvent) Type() MsgType { return m.Msg }

// ShuffleCodes covers MSG_SHUFFLE_HAND and MSG_SHUFFLE_EXTRA.
type ShuffleCodes struct {
	Msg    MsgType  `json:"-"`
	Player uint8    `json:"player"`
	Codes  []uint32 `json:"cards"`
}

func (m *ShuffleCodes) Type() MsgType { return m.Msg }

type ShuffleSetCard struct {
	Location Location  `json:"location"`
	Previous []LocInfo `json:"previous"`
	Current  []LocInfo `json:"current"`
}

func (*ShuffleSetCard) Type() MsgType { return MsgShuffleSetCard }

type DeckTop struct {
	Player   uint8  `json:"player"`
	Sequence uint8  `json:"sequence"`
	Code     uint32 `json:"code"`
}

func (*DeckTop) Type() MsgType { return MsgDeckTop }

type NewTurn struct {
	Player uint8 `json:"player"`
}

func (*NewTurn) Type() MsgType { return MsgNewTurn }

type NewPhase struct {
	Phase Phase `json:"phase"`
}

func (*NewPhase) Type() MsgType { return MsgNewPhase }

// --- Card movement ---

type Move struct {
	Code     uint32  `json:"code"`
	Previous LocInfo `json:"previous"`
	Current  LocInfo `json:"current"`
	Reason   uint32  `json:"reason"`
}

func (*Move) Type() MsgType { return MsgMove }

type PosChange struct {
	Code       uint32   `json:"code"`
	Controller uint8    `json:"current_controller"`
	Location   Location `json:"current_location"`
	Sequence   uint8    `json:"current_sequence"`
	Previous   Position `json:"previous_position"`
	Current    Position `json:"current_position"`
}

func (*PosChange) Type() MsgType { return MsgPosChange }

type Set struct {
	Code uint32  `json:"code"`
	Loc  LocInfo `json:"loc"`
}

func (*Set) Type() MsgType { return MsgSet }

type Swap struct {
	FirstCode  uint32  `json:"first_code"`
	First      LocInfo `json:"first"`
	SecondCode uint32  `json:"second_code"`
	Second     LocInfo `json:"second"`
}

func (*Swap) Type() MsgType { return MsgSwap }

type FieldDisabled struct {
	Field uint32 `json:"field"`
}

func (*FieldDisabled) Type() MsgType { return MsgFieldDisabled }

// Summoning covers the three "summon in progress" messages.
type Summoning struct {
	Msg  MsgType `json:"-"`
	Code uint32  `json:"code"`
	Loc  LocInfo `json:"loc"`
}

func (m *Summoning) Type() MsgType { return m.Msg }

// --- Chain ---

type Chaining struct {
	Code            uint32   `json:"code"`
	Controller      uint8    `json:"controller"`
	Location        Location `json:"location"`
	Sequence        uint8    `json:"sequence"`
	Subsequence     uint8    `json:"subsequence"`
	ChainController uint8    `json:"chain_controller"`
	ChainLocation   Location `json:"chain_location"`
	ChainSequence   uint8    `json:"chain_sequence"`
	Description     int32    `json:"description"`
	ChainCount      uint8    `json:"chain_count"`
}

func (*Chaining) Type() MsgType { return MsgChaining }

// ChainStep covers chained/solving/solved/negated/disabled.
type ChainStep struct {
	Msg   MsgType `json:"-"`
	Chain uint8   `json:"chain"`
}

func (m *ChainStep) Type() MsgType { return m.Msg }

// Targets covers MSG_BECOME_TARGET, MSG_CARD_SELECTED and
// MSG_RANDOM_SELECTED.
type Targets struct {
	Msg    MsgType   `json:"-"`
	Player uint8     `json:"player"`
	Cards  []LocInfo `json:"cards"`
}

func (m *Targets) Type() MsgType { return m.Msg }

type Draw struct {
	Player uint8    `json:"player"`
	Cards  []uint32 `json:"cards"`
}

func (*Draw) Type() MsgType { return MsgDraw }

// LifePoints covers damage, recover, LP update and LP cost payment.
type LifePoints struct {
	Msg    MsgType `json:"-"`
	Player uint8   `json:"player"`
	Value  int32   `json:"value"`
}

func (m *LifePoints) Type() MsgType { return m.Msg }

// CardPair covers equip, card-target, cancel-target and attack.
type CardPair struct {
	Msg    MsgType `json:"-"`
	First  LocInfo `json:"first"`
	Second LocInfo `json:"second"`
}

func (m *CardPair) Type() MsgType { return m.Msg }

type Unequip struct {
	Card LocInfo `json:"card"`
}

func (*Unequip) Type() MsgType { return MsgUnequip }

// Counter covers add/remove counter.
type Counter struct {
	Msg         MsgType  `json:"-"`
	CounterType uint16   `json:"counter_type"`
	Controller  uint8    `json:"controller"`
	Location    Location `json:"location"`
	Sequence    uint8    `json:"sequence"`
	Count       uint16   `json:"count"`
}

func (m *Counter) Type() MsgType { return m.Msg }

// Combatant is one side of MSG_BATTLE.
type Combatant struct {
	Loc       LocInfo `json:"loc"`
	Attack    int32   `json:"attack"`
	Defense   int32   `json:"defense"`
	Destroyed bool    `json:"destroyed"`
}

type Battle struct {
	Attacker Combatant `json:"attacker"`
	Defender Combatant `json:"defender"`
}

func (*Battle) Type() MsgType { return MsgBattle }

type MissedEffect struct {
	Loc  LocInfo `json:"loc"`
	Code uint32  `json:"code"`
}

func (*MissedEffect) Type() MsgType { return MsgMissedEffect }

// Toss covers coin and dice results.
type Toss struct {
	Msg     MsgType `json:"-"`
	Player  uint8   `json:"player"`
	Results []uint8 `json:"results"`
}

func (m *Toss) Type() MsgType { return m.Msg }

type HandRes struct {
	Result uint8 `json:"result"`
}

func (*HandRes) Type() MsgType { return MsgHandRes }

type CardHint struct {
	Loc      LocInfo `json:"loc"`
	HintType uint8   `json:"type"`
	Value    int32   `json:"value"`
}

func (*CardHint) Type() MsgType { return MsgCardHint }

type PlayerHint struct {
	Player   uint8 `json:"player"`
	HintType uint8 `json:"type"`
	Value    int32 `json:"value"`
}

func (*PlayerHint) Type() MsgType { return MsgPlayerHint }

type MatchKill struct {
	Code uint32 `json:"code"`
}

func (*MatchKill) Type() MsgType { return MsgMatchKill }
