package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	json "github.com/goccy/go-json"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const petSchema = `
name: string
age: integer
`

const ownerSchema = `{
  "name": "string",
  "birthdate": "date",
  "tags": [{"value": "integer"}],
  "pets": {"$embeds_many": "pet"}
}`

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func schemaArgs(t *testing.T) []string {
	t.Helper()
	dir := t.TempDir()
	return []string{
		"--schema", "pet=" + writeFile(t, dir, "pet.yaml", petSchema),
		"--schema", "owner=" + writeFile(t, dir, "owner.json", ownerSchema),
	}
}

func run(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	cmd := newRootCmd()
	cmd.SetArgs(args)
	cmd.SetIn(strings.NewReader(stdin))
	cmd.SetOut(&out)
	cmd.SetErr(&errOut)
	err := cmd.Execute()
	return out.String(), err
}

func TestValidate_OK(t *testing.T) {
	args := append(schemaArgs(t), "validate", "--parser", "parse_owner", "-o", "json")
	out, err := run(t, `{"name":"Ann","pets":[{"name":"Rex","age":"3"}]}`, args...)
	require.NoError(t, err)

	var rec map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &rec))
	assert.Equal(t, "Ann", rec["name"])
	assert.Equal(t, []any{map[string]any{"name": "Rex", "age": float64(3)}}, rec["pets"])
}

func TestValidate_Text(t *testing.T) {
	args := append(schemaArgs(t), "validate", "-p", "owner")
	out, err := run(t, `{"name":"Ann"}`, args...)
	require.NoError(t, err)
	assert.Equal(t, "Owner: ok\n", out)
}

func TestValidate_Invalid(t *testing.T) {
	args := append(schemaArgs(t), "validate", "-p", "owner")
	out, err := run(t, `{"tags":[{"value":"1"},{"value":"bad"}],"pets":{}}`, args...)
	assert.ErrorIs(t, err, errInvalid)
	assert.Contains(t, out, "tags[1].value: is invalid (expected integer)")
	assert.Contains(t, out, "pets: is invalid (expected array)")
}

func TestValidate_StrictKeys(t *testing.T) {
	args := append(schemaArgs(t), "validate", "-p", "owner", "--strict-keys")
	out, err := run(t, `{"name":"a","name":"b"}`, args...)
	assert.ErrorIs(t, err, errInvalid)
	assert.Equal(t, "name: is duplicated\n", out)
}

func TestValidate_YAMLFileAndLanguage(t *testing.T) {
	doc := writeFile(t, t.TempDir(), "doc.yml", "tags:\n  - value: x\n")
	args := append(schemaArgs(t), "--lang", "en", "validate", "-p", "owner", "--fail-fast", doc)
	out, err := run(t, "", args...)
	assert.ErrorIs(t, err, errInvalid)
	assert.Equal(t, 1, strings.Count(out, "\n"))
}

func TestValidate_Errors(t *testing.T) {
	_, err := run(t, "{}", append(schemaArgs(t), "validate")...)
	assert.EqualError(t, err, "--parser is required")

	_, err = run(t, "{}", append(schemaArgs(t), "validate", "-p", "ghost")...)
	assert.EqualError(t, err, `unknown parser "ghost"`)

	_, err = run(t, "{}", "--schema", "broken", "validate", "-p", "x")
	assert.Error(t, err)

	// owner embeds pet, so pet must be defined first
	dir := t.TempDir()
	_, err = run(t, "{}",
		"--schema", "owner="+writeFile(t, dir, "owner.json", ownerSchema),
		"validate", "-p", "owner")
	assert.ErrorContains(t, err, "invalid_reference")
}

func TestInspect(t *testing.T) {
	out, err := run(t, "", append(schemaArgs(t), "inspect")...)
	require.NoError(t, err)
	assert.Contains(t, out, "owner (parse_owner)\n")
	assert.Contains(t, out, "  Owner.Tags{value:integer}\n")
	assert.Contains(t, out, "pet (parse_pet)\n")
	assert.Contains(t, out, "  Pet{age:integer name:string}\n")
}

func TestInspect_JSONSchema(t *testing.T) {
	out, err := run(t, "", append(schemaArgs(t), "inspect", "owner", "--jsonschema")...)
	require.NoError(t, err)
	var schema map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &schema))
	assert.Equal(t, "Owner", schema["title"])

	_, err = run(t, "", append(schemaArgs(t), "inspect", "--jsonschema")...)
	assert.Error(t, err)
}

func TestConfigFile(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, dir, "pet.yaml", petSchema)
	cfg := writeFile(t, dir, "defparser.yaml", "language: ja\nschemas:\n  - name: pet\n    path: pet.yaml\n")

	out, err := run(t, "", "--config", cfg, "inspect")
	require.NoError(t, err)
	assert.Contains(t, out, "pet (parse_pet)")

	_, err = run(t, `{"age":"old"}`, "--config", cfg, "--lang", "en", "validate", "-p", "pet")
	assert.ErrorIs(t, err, errInvalid)
}

func TestTypes(t *testing.T) {
	out, err := run(t, "", "types")
	require.NoError(t, err)
	assert.Contains(t, out, "integer\n")
	assert.Contains(t, out, "utc_datetime\n")
}
