package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var pngBytes = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR")

// withTmpHome points config, data and session files at a temp dir.
func withTmpHome(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(dir, "cfg"))
	t.Setenv("XDG_DATA_HOME", filepath.Join(dir, "data"))
	for _, k := range []string{
		"CARDKEEPER_BACKEND", "CARDKEEPER_SQLITE_PATH", "CARDKEEPER_POSTGRES_DSN",
		"CARDKEEPER_REDIS_ADDR", "CARDKEEPER_REDIS_PASSWORD", "CARDKEEPER_REDIS_DB",
		"CARDKEEPER_REDIS_PREFIX", "CARDKEEPER_LOG_LEVEL",
	} {
		t.Setenv(k, "")
	}
	return dir
}

type result struct {
	code   int
	out    string
	errOut string
}

func cli(t *testing.T, stdin string, args ...string) result {
	t.Helper()
	var out, errOut bytes.Buffer
	code := run(context.Background(), append([]string{"--env-file", ""}, args...), strings.NewReader(stdin), &out, &errOut)
	return result{code: code, out: out.String(), errOut: errOut.String()}
}

func mustOK(t *testing.T, args ...string) string {
	t.Helper()
	r := cli(t, "", args...)
	require.Equal(t, 0, r.code, "cardkeeper %v: %s", args, r.errOut)
	return r.out
}

func decode[T any](t *testing.T, s string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(s), &v), s)
	return v
}

func addCard(t *testing.T, ident, code string) cardRow {
	t.Helper()
	out := mustOK(t, "card", "add",
		"--id-number", ident, "--code", code,
		"--first-name", "Ann", "--surname", "Lee",
		"--city", "Rome", "--identity", "passport",
		"--gender", "female", "--marital", "single")
	return decode[cardRow](t, out)
}

func TestRootCommand(t *testing.T) {
	cmd := newRootCommand(&app{})
	require.NotNil(t, cmd)
	assert.Equal(t, "cardkeeper", cmd.Use)

	for _, name := range []string{"version", "login", "logout", "reset-pin", "card", "sheet", "media", "settings"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err, "command %s should exist", name)
		assert.Equal(t, name, sub.Name())
	}
	for _, path := range [][]string{
		{"card", "add"}, {"card", "edit"}, {"card", "rm"}, {"card", "show"}, {"card", "list"},
		{"sheet", "new"}, {"sheet", "set"}, {"sheet", "add-row"}, {"sheet", "rm-col"}, {"sheet", "import"}, {"sheet", "export"},
		{"media", "add"}, {"media", "export"}, {"settings", "dark-mode"},
	} {
		sub, _, err := cmd.Find(path)
		require.NoError(t, err)
		assert.Equal(t, path[1], sub.Name())
	}

	backend := cmd.PersistentFlags().Lookup("backend")
	require.NotNil(t, backend)
	assert.Equal(t, "", backend.DefValue)
}

func TestVersion_NeedsNoStorage(t *testing.T) {
	withTmpHome(t)
	r := cli(t, "", "--backend", "postgres", "version")
	require.Equal(t, 0, r.code, r.errOut)
	assert.Contains(t, r.out, "cardkeeper dev")
}

func TestUsageErrors(t *testing.T) {
	withTmpHome(t)

	assert.Equal(t, 2, cli(t, "", "card", "list", "--bogus").code)
	assert.Equal(t, 2, cli(t, "", "card", "show").code)
	assert.Equal(t, 2, cli(t, "", "card", "show", "not-a-uuid").code)
	assert.Equal(t, 2, cli(t, "", "--backend", "etcd", "card", "list").code)
	assert.Equal(t, 2, cli(t, "", "card", "list", "--gender", "other").code)
	assert.Equal(t, 2, cli(t, "", "frobnicate").code)
}

func TestSession_SaveLoadClear(t *testing.T) {
	base := withTmpHome(t)

	_, err := loadSession()
	require.Error(t, err)

	require.NoError(t, saveSession("tok"))
	assert.True(t, strings.HasPrefix(sessionPath(), filepath.Join(base, "cfg", "cardkeeper")))
	tok, err := loadSession()
	require.NoError(t, err)
	assert.Equal(t, "tok", tok)

	info, err := os.Stat(sessionPath())
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	require.NoError(t, clearSession())
	require.NoError(t, clearSession())
	_, err = loadSession()
	require.Error(t, err)
}

func TestLoginLogoutFlow(t *testing.T) {
	withTmpHome(t)

	r := cli(t, "", "card", "list")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.errOut, "not logged in")

	r = cli(t, "", "login", "1111")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.errOut, "incorrect PIN")

	r = cli(t, "2208\n", "login")
	require.Equal(t, 0, r.code, r.errOut)
	assert.Equal(t, "ok\n", r.out)

	assert.Equal(t, "[]\n", mustOK(t, "card", "list"))

	mustOK(t, "logout")
	assert.Equal(t, 1, cli(t, "", "card", "list").code)
}

func TestResetPIN(t *testing.T) {
	withTmpHome(t)
	mustOK(t, "login", "2208")

	assert.Equal(t, 2, cli(t, "", "reset-pin", "--answer", "ludo", "--new-pin", "12").code)
	r := cli(t, "", "reset-pin", "--answer", "nope", "--new-pin", "4321")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.errOut, "incorrect security answer")

	mustOK(t, "reset-pin", "--answer", "Ludo", "--new-pin", "4321")
	assert.Equal(t, 1, cli(t, "", "card", "list").code, "reset must end the saved session")
	assert.Equal(t, 1, cli(t, "", "login", "2208").code)
	mustOK(t, "login", "4321")
	mustOK(t, "card", "list")
}

func TestCardCommands(t *testing.T) {
	withTmpHome(t)
	mustOK(t, "login", "2208")

	a := addCard(t, "002", "ABC")
	assert.Equal(t, "Ann Lee", a.Name)
	b := addCard(t, "001", "DEF")

	r := cli(t, "", "card", "add", "--id-number", "002", "--code", "XYZ",
		"--first-name", "X", "--surname", "Y", "--city", "Z", "--identity", "id",
		"--gender", "male", "--marital", "married")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.errOut, "identifier already exists")

	r = cli(t, "", "card", "add", "--id-number", "003", "--code", "xyz")
	assert.Equal(t, 1, r.code)
	assert.Contains(t, r.errOut, "invalid")

	rows := decode[[]cardRow](t, mustOK(t, "card", "list", "--sort", "id", "--order", "desc"))
	require.Len(t, rows, 2)
	assert.Equal(t, "002", rows[0].Identifier)
	assert.Equal(t, "001", rows[1].Identifier)

	edited := decode[cardRow](t, mustOK(t, "card", "edit", b.ID.String(), "--city", "Oslo"))
	assert.Equal(t, "Oslo", edited.City)
	assert.Equal(t, "001", edited.Identifier)

	rows = decode[[]cardRow](t, mustOK(t, "card", "list", "--city", "osl"))
	require.Len(t, rows, 1)
	assert.Equal(t, b.ID, rows[0].ID)

	pic := filepath.Join(t.TempDir(), "me.png")
	require.NoError(t, os.WriteFile(pic, pngBytes, 0o600))
	withPic := decode[cardRow](t, mustOK(t, "card", "edit", a.ID.String(), "--picture", pic))
	assert.True(t, withPic.HasPicture)

	full := mustOK(t, "card", "show", a.ID.String())
	assert.Contains(t, full, `"profilePicture": "data:image/png;base64,`)

	assert.Contains(t, mustOK(t, "card", "rm", a.ID.String()), `"deleted": true`)
	assert.Contains(t, mustOK(t, "card", "rm", a.ID.String()), `"deleted": false`)
	assert.Equal(t, 1, cli(t, "", "card", "show", a.ID.String()).code)
}

func TestSheetCommands(t *testing.T) {
	withTmpHome(t)
	mustOK(t, "login", "2208")

	s := decode[sheetRow](t, mustOK(t, "sheet", "new", "budget"))
	assert.Equal(t, "budget.xlsx", s.Name)
	assert.Equal(t, 10, s.Rows)
	assert.Equal(t, 5, s.Cols)
	id := s.ID.String()

	grid := mustOK(t, "sheet", "set", id, "B2", "hello")
	assert.Contains(t, grid, "hello")
	assert.Contains(t, grid, "A")

	mustOK(t, "sheet", "add-col", id)
	mustOK(t, "sheet", "rm-row", id, "10")
	mustOK(t, "sheet", "rm-col", id, "F")
	assert.Equal(t, 2, cli(t, "", "sheet", "rm-row", id, "0").code)

	csv := mustOK(t, "sheet", "export", id)
	lines := strings.Split(strings.TrimSuffix(csv, "\n"), "\n")
	require.Len(t, lines, 9)
	assert.Equal(t, ",hello,,,", lines[1])

	in := filepath.Join(t.TempDir(), "people.csv")
	require.NoError(t, os.WriteFile(in, []byte("name,city\nann\n"), 0o600))
	imp := decode[sheetRow](t, mustOK(t, "sheet", "import", in))
	assert.Equal(t, "people.xlsx", imp.Name)
	assert.Equal(t, 2, imp.Rows)

	list := decode[[]sheetRow](t, mustOK(t, "sheet", "list", "--search", "PEOPLE"))
	require.Len(t, list, 1)

	mustOK(t, "sheet", "rename", id, "plan")
	list = decode[[]sheetRow](t, mustOK(t, "sheet", "list", "-s", "plan"))
	require.Len(t, list, 1)
	assert.Equal(t, "plan.xlsx", list[0].Name)

	out := filepath.Join(t.TempDir(), "out.csv")
	mustOK(t, "sheet", "export", id, out)
	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, csv, string(b))

	assert.Contains(t, mustOK(t, "sheet", "rm", id), `"deleted": true`)
}

func TestMediaAndSettingsCommands(t *testing.T) {
	withTmpHome(t)
	mustOK(t, "login", "2208")
	c := addCard(t, "001", "ABC")

	dir := t.TempDir()
	img := filepath.Join(dir, "photo.png")
	require.NoError(t, os.WriteFile(img, pngBytes, 0o600))
	txt := filepath.Join(dir, "notes.txt")
	require.NoError(t, os.WriteFile(txt, []byte("just text"), 0o600))

	added := decode[[]mediaRow](t, mustOK(t, "media", "add", c.ID.String(), img))
	require.Len(t, added, 1)
	assert.Equal(t, "image", string(added[0].Kind))
	assert.Equal(t, 1, cli(t, "", "media", "add", c.ID.String(), txt).code)

	list := decode[[]mediaRow](t, mustOK(t, "media", "list", c.ID.String()))
	require.Len(t, list, 1)

	out := filepath.Join(dir, "copy.png")
	assert.Contains(t, mustOK(t, "media", "export", added[0].ID.String(), out), "image/png")
	b, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, pngBytes, b)

	mustOK(t, "card", "rm", c.ID.String())
	assert.Equal(t, "[]\n", mustOK(t, "media", "list", c.ID.String()))

	assert.Contains(t, mustOK(t, "settings", "show"), `"darkMode": false`)
	assert.Contains(t, mustOK(t, "settings", "dark-mode", "on"), `"darkMode": true`)
	assert.Contains(t, mustOK(t, "settings", "show"), `"darkMode": true`)
	assert.Equal(t, 2, cli(t, "", "settings", "dark-mode", "maybe").code)
}
