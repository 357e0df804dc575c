// Package ocgcore binds the ygopro rule engine shared library with purego,
// so no cgo toolchain is needed to run replays.
package ocgcore

import (
	"fmt"

	"github.com/ebitengine/purego"
)

// library holds the engine's exported functions. The duel handle is the
// engine's pointer-sized "ptr".
type library struct {
	handle uintptr

	createDuel      func(seed uint32) uintptr
	startDuel       func(duel uintptr, options int32)
	endDuel         func(duel uintptr)
	setPlayerInfo   func(duel uintptr, player, lp, startCount, drawCount int32)
	getMessage      func(duel uintptr, buf *byte) int32
	process         func(duel uintptr) int32
	newCard         func(duel uintptr, code uint32, owner, player, location, sequence, position uint8)
	queryCard       func(duel uintptr, player, location, sequence uint8, flags int32, buf *byte, useCache int32) int32
	queryFieldCard  func(duel uintptr, player, location uint8, flags int32, buf *byte, useCache int32) int32
	setResponseb    func(duel uintptr, buf *byte)
	setScriptReader func(reader uintptr)
	setCardReader   func(reader uintptr)
}

func openLibrary(path string) (*library, error) {
	handle, err := purego.Dlopen(path, purego.RTLD_NOW|purego.RTLD_GLOBAL)
	if err != nil {
		return nil, fmt.Errorf("load engine %s: %w", path, err)
	}
	lib := &library{handle: handle}
	symbols := []struct {
		name string
		fn   any
	}{
		{"create_duel", &lib.createDuel},
		{"start_duel", &lib.startDuel},
		{"end_duel", &lib.endDuel},
		{"set_player_info", &lib.setPlayerInfo},
		{"get_message", &lib.getMessage},
		{"process", &lib.process},
		{"new_card", &lib.newCard},
		{"query_card", &lib.queryCard},
		{"query_field_card", &lib.queryFieldCard},
		{"set_responseb", &lib.setResponseb},
		{"set_script_reader", &lib.setScriptReader},
		{"set_card_reader", &lib.setCardReader},
	}
	for _, s := range symbols {
		sym, err := purego.Dlsym(handle, s.name)
		if err != nil {
			purego.Dlclose(handle)
			return nil, fmt.Errorf("load engine %s: symbol %s: %w", path, s.name, err)
		}
		purego.RegisterFunc(s.fn, sym)
	}
	return lib, nil
}

func (l *library) close() error {
	return purego.Dlclose(l.handle)
}
