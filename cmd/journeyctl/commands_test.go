package main

import (
	"bytes"
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/x-govuk/questions/journey"
	"github.com/x-govuk/questions/state"
)

type addPerson struct {
	Name string `json:"name"`
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)

	err := cmd.ExecuteContext(context.Background())
	return out.String(), err
}

func seed(t *testing.T, dir string) journey.InstanceID {
	t.Helper()

	types := state.NewTypeRegistry()
	require.NoError(t, state.RegisterType[*addPerson](types))
	store := state.NewJSONStore(state.NewFileBackend(dir), state.NewCodec(types))

	d := journey.DescriptorFor[*addPerson]("add-person")
	id, ok := journey.CreateNewInstanceID(d, journey.RouteValues{})
	require.True(t, ok)

	entry := state.Entry{
		State: &addPerson{Name: "Ada"},
		Path:  journey.NewPath(journey.StepFromURL(id.EnsureURLHasKey("/name"))),
	}
	require.NoError(t, store.SetState(context.Background(), id, d, entry))
	return id
}

func TestParse(t *testing.T) {
	key := journey.NewKey()
	out, err := run(t, "parse", "fdc:x-govuk.org:questions/edit-person?personid=42&_jid="+key)
	require.NoError(t, err)

	var parsed parsedID
	require.NoError(t, json.Unmarshal([]byte(out), &parsed))
	assert.Equal(t, "edit-person", parsed.Journey)
	assert.Equal(t, key, parsed.Key)
	assert.Equal(t, journey.RouteValues{"personid": "42"}, parsed.RouteValues)

	_, err = run(t, "parse", "https://example.com/")
	assert.ErrorIs(t, err, journey.ErrFormat)
}

func TestMint(t *testing.T) {
	out, err := run(t, "mint", "Edit-Person", "PersonId=42")
	require.NoError(t, err)

	id, err := journey.ParseInstanceID(strings.TrimSpace(out))
	require.NoError(t, err)
	assert.Equal(t, "edit-person", id.JourneyName())
	v, _ := id.RouteValue("personid")
	assert.Equal(t, "42", v)
	assert.True(t, journey.IsValidKey(id.Key()))

	_, err = run(t, "mint", "edit-person", "personId")
	assert.Error(t, err)
}

func TestStoreCommands(t *testing.T) {
	dir := t.TempDir()
	id := seed(t, dir)
	storeArgs := []string{"--backend", "file", "--path", dir}

	out, err := run(t, append([]string{"list"}, storeArgs...)...)
	require.NoError(t, err)
	assert.Equal(t, id.String()+"\n", out)

	out, err = run(t, append([]string{"inspect", id.String()}, storeArgs...)...)
	require.NoError(t, err)

	var raw state.RawEntry
	require.NoError(t, json.Unmarshal([]byte(out), &raw))
	assert.Equal(t, journey.TypeName(journey.DescriptorFor[*addPerson]("x").StateType()), raw.StateTypeName)
	assert.JSONEq(t, `{"name":"Ada"}`, string(raw.State))
	assert.Equal(t, 1, raw.Path.Len())

	out, err = run(t, append([]string{"delete", id.String()}, storeArgs...)...)
	require.NoError(t, err)
	assert.Equal(t, "deleted "+id.String()+"\n", out)

	_, err = run(t, append([]string{"inspect", id.String()}, storeArgs...)...)
	assert.ErrorIs(t, err, state.ErrNotFound)

	out, err = run(t, append([]string{"list"}, storeArgs...)...)
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestStoreCommands_InvalidBackend(t *testing.T) {
	_, err := run(t, "list", "--backend", "file")
	assert.ErrorIs(t, err, state.ErrInvalidConfig)
}
