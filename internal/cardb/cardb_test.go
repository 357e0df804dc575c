package cardb

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const schema = `
CREATE TABLE datas(id integer primary key, ot integer, alias integer, setcode integer,
	type integer, atk integer, def integer, level integer, race integer, attribute integer,
	category integer);
CREATE TABLE texts(id integer primary key, name text, desc text,
	str1 text, str2 text, str3 text, str4 text, str5 text, str6 text, str7 text, str8 text,
	str9 text, str10 text, str11 text, str12 text, str13 text, str14 text, str15 text, str16 text);
`

func writeTestDB(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cards.cdb")
	db, err := sql.Open("sqlite", path)
	require.NoError(t, err)
	defer db.Close()

	_, err = db.Exec(schema)
	require.NoError(t, err)

	// Dark Magician: plain level 7 monster.
	_, err = db.Exec(`INSERT INTO datas VALUES (46986414, 3, 0, 16, 17, 2500, 2100, 7, 1, 32, 0)`)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO texts (id, name, desc, str1, str3) VALUES (46986414, 'Dark Magician', 'The ultimate wizard.', 'first', 'third')`)
	require.NoError(t, err)

	// Pendulum monster: scales packed into level.
	_, err = db.Exec(`INSERT INTO datas VALUES (16178681, 3, 0, 0, 16777249, 2500, 2000, ?, 2, 32, 0)`, (8<<24)|(8<<16)|7)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO texts (id, name, desc) VALUES (16178681, 'Odd-Eyes Pendulum Dragon', '')`)
	require.NoError(t, err)

	// Link monster: markers stored in def.
	_, err = db.Exec(`INSERT INTO datas VALUES (1861629, 3, 0, 0, ?, 2500, 168, 4, 8192, 32, 0)`, 0x4000021)
	require.NoError(t, err)
	_, err = db.Exec(`INSERT INTO texts (id, name, desc) VALUES (1861629, 'Decode Talker', '')`)
	require.NoError(t, err)

	// No text row: excluded by the join.
	_, err = db.Exec(`INSERT INTO datas VALUES (1, 3, 0, 0, 17, 0, 0, 1, 1, 1, 0)`)
	require.NoError(t, err)
	return path
}

func TestLoad(t *testing.T) {
	store, err := Load(context.Background(), writeTestDB(t))
	require.NoError(t, err)
	assert.Equal(t, 3, store.Len())
	assert.Equal(t, []uint32{1861629, 16178681, 46986414}, store.Codes())

	dm, ok := store.Lookup(46986414)
	require.True(t, ok)
	assert.Equal(t, "Dark Magician", dm.Name)
	assert.Equal(t, uint32(7), dm.Level)
	assert.Equal(t, int32(2500), dm.Attack)
	assert.Equal(t, int32(2100), dm.Defense)
	assert.Equal(t, uint64(16), dm.Setcode)

	text, ok := store.Text(46986414, 2)
	require.True(t, ok)
	assert.Equal(t, "third", text)
	_, ok = store.Text(46986414, 1)
	assert.False(t, ok)

	odd, _ := store.Lookup(16178681)
	assert.Equal(t, uint32(7), odd.Level)
	assert.Equal(t, uint32(8), odd.LScale)
	assert.Equal(t, uint32(8), odd.RScale)

	link, _ := store.Lookup(1861629)
	assert.True(t, link.IsLink())
	assert.Equal(t, int32(0), link.Defense)
	assert.Equal(t, uint32(168), link.LinkMarker)

	name, ok := store.Name(1861629)
	require.True(t, ok)
	assert.Equal(t, "Decode Talker", name)
	_, ok = store.Name(1)
	assert.False(t, ok)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(context.Background(), filepath.Join(t.TempDir(), "nope.cdb"))
	assert.Error(t, err)

	_, err = Load(context.Background(), " ")
	assert.Error(t, err)
}

func TestNilStore(t *testing.T) {
	var s *Store
	_, ok := s.Name(1)
	assert.False(t, ok)
	assert.Equal(t, 0, s.Len())
}
