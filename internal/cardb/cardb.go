// Package cardb loads card records from a cards.cdb SQLite database.
package cardb

import (
	"context"
	"database/sql"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	_ "modernc.org/sqlite"
)

// TypeLink marks link monsters; their def column holds the link markers.
const TypeLink uint32 = 0x4000000

// TextCount is the number of effect description strings per card.
const TextCount = 16

// Record is one card's print data and texts.
type Record struct {
	Code        uint32            `json:"code"`
	Alias       uint32            `json:"alias,omitempty"`
	Setcode     uint64            `json:"setcode,omitempty"`
	Type        uint32            `json:"type"`
	Level       uint32            `json:"level"`
	Attribute   uint32            `json:"attribute"`
	Race        uint32            `json:"race"`
	Attack      int32             `json:"attack"`
	Defense     int32             `json:"defense"`
	LScale      uint32            `json:"lscale,omitempty"`
	RScale      uint32            `json:"rscale,omitempty"`
	LinkMarker  uint32            `json:"link_marker,omitempty"`
	Name        string            `json:"name"`
	Description string            `json:"desc"`
	Texts       [TextCount]string `json:"texts"`
}

// IsLink reports whether the record is a link monster.
func (r *Record) IsLink() bool {
	return r.Type&TypeLink != 0
}

// FromRow unpacks the packed level/scale column and moves a link monster's
// markers out of the defense column.
func FromRow(code, alias uint32, setcode uint64, typ, level, attribute, race uint32, atk, def int32) Record {
	r := Record{
		Code:      code,
		Alias:     alias,
		Setcode:   setcode,
		Type:      typ,
		Level:     level & 0xFF,
		LScale:    (level >> 24) & 0xFF,
		RScale:    (level >> 16) & 0xFF,
		Attribute: attribute,
		Race:      race,
		Attack:    atk,
		Defense:   def,
	}
	if r.IsLink() {
		r.LinkMarker = uint32(def)
		r.Defense = 0
	}
	return r
}

// Store indexes records by code.
type Store struct {
	records map[uint32]*Record
}

// NewStore returns an empty store.
func NewStore() *Store {
	return &Store{records: make(map[uint32]*Record)}
}

// Add inserts or replaces a record.
func (s *Store) Add(r Record) {
	s.records[r.Code] = &r
}

// Lookup returns the record for code.
func (s *Store) Lookup(code uint32) (*Record, bool) {
	if s == nil {
		return nil, false
	}
	r, ok := s.records[code]
	return r, ok
}

// Name returns the card name for code.
func (s *Store) Name(code uint32) (string, bool) {
	r, ok := s.Lookup(code)
	if !ok {
		return "", false
	}
	return r.Name, true
}

// Text returns the index-th description string of code. Empty strings count
// as missing.
func (s *Store) Text(code uint32, index int) (string, bool) {
	r, ok := s.Lookup(code)
	if !ok || index < 0 || index >= TextCount || r.Texts[index] == "" {
		return "", false
	}
	return r.Texts[index], true
}

// Len returns the number of records.
func (s *Store) Len() int {
	if s == nil {
		return 0
	}
	return len(s.records)
}

// Codes returns every stored code in ascending order.
func (s *Store) Codes() []uint32 {
	codes := make([]uint32, 0, len(s.records))
	for c := range s.records {
		codes = append(codes, c)
	}
	sort.Slice(codes, func(i, j int) bool { return codes[i] < codes[j] })
	return codes
}

const selectRecords = `
SELECT
	datas.id, datas.alias, datas.setcode, datas.type, datas.level,
	datas.attribute, datas.race, datas.atk, datas.def,
	texts.name, texts.desc,
	texts.str1, texts.str2, texts.str3, texts.str4,
	texts.str5, texts.str6, texts.str7, texts.str8,
	texts.str9, texts.str10, texts.str11, texts.str12,
	texts.str13, texts.str14, texts.str15, texts.str16
FROM datas JOIN texts ON datas.id = texts.id`

// Load reads every card of the cards.cdb at path.
func Load(ctx context.Context, path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("card database path is required")
	}
	if _, err := os.Stat(path); err != nil {
		return nil, fmt.Errorf("card database: %w", err)
	}
	db, err := sql.Open("sqlite", filepath.Clean(path))
	if err != nil {
		return nil, fmt.Errorf("open card db: %w", err)
	}
	defer db.Close()

	if err := db.PingContext(ctx); err != nil {
		return nil, fmt.Errorf("ping card db: %w", err)
	}
	return LoadDB(ctx, db)
}

// LoadDB reads every card from an open database handle.
func LoadDB(ctx context.Context, db *sql.DB) (*Store, error) {
	rows, err := db.QueryContext(ctx, selectRecords)
	if err != nil {
		return nil, fmt.Errorf("query cards: %w", err)
	}
	defer rows.Close()

	store := NewStore()
	for rows.Next() {
		var (
			code, alias, setcode, typ, level, attribute, race, atk, def int64
			name, desc                                                  sql.NullString
			strs                                                        [TextCount]sql.NullString
		)
		dest := []any{&code, &alias, &setcode, &typ, &level, &attribute, &race, &atk, &def, &name, &desc}
		for i := range strs {
			dest = append(dest, &strs[i])
		}
		if err := rows.Scan(dest...); err != nil {
			return nil, fmt.Errorf("scan card: %w", err)
		}

		r := FromRow(uint32(code), uint32(alias), uint64(setcode), uint32(typ), uint32(level),
			uint32(attribute), uint32(race), int32(atk), int32(def))
		r.Name = name.String
		r.Description = desc.String
		for i, s := range strs {
			r.Texts[i] = s.String
		}
		store.Add(r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate cards: %w", err)
	}
	return store, nil
}
