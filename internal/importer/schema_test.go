package importer

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSchemaFor_KnownEntities(t *testing.T) {
	for _, entity := range []EntityType{EntityContacts, EntityListings, EntityOffers, EntityTasks} {
		s, err := SchemaFor(entity)
		require.NoError(t, err)
		assert.Equal(t, entity, s.Entity)
		assert.NotEmpty(t, s.Expected)
	}
}

func TestSchemaFor_Unknown(t *testing.T) {
	_, err := SchemaFor("invoices")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown entity type")
}

func TestAliasesFor_IncludesFieldName(t *testing.T) {
	s, _ := SchemaFor(EntityContacts)
	aliases := s.AliasesFor(FieldPhone)
	assert.Equal(t, FieldPhone, aliases[0])
	assert.Contains(t, aliases, "mobile")
}

func TestLoadSchemaOverrides_ReplacesEntity(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schemas.yaml")
	yaml := `
- entity: contacts
  expected: [name, email]
  aliases:
    name: [kontakt, ansprechpartner]
    email: [e-mail]
`
	require.NoError(t, os.WriteFile(path, []byte(yaml), 0644))

	schemas, err := LoadSchemaOverrides(path)
	require.NoError(t, err)

	contacts := schemas[EntityContacts]
	assert.Equal(t, []string{"name", "email"}, contacts.Expected)
	assert.Contains(t, contacts.Aliases["name"], "kontakt")

	// Entities not named in the file keep the built-ins.
	listings := schemas[EntityListings]
	assert.Contains(t, listings.Aliases[FieldPrice], "amt")
}

func TestLoadSchemaOverrides_UnknownEntity(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "schemas.yaml")
	require.NoError(t, os.WriteFile(path, []byte("- entity: invoices\n  expected: [total]\n"), 0644))

	_, err := LoadSchemaOverrides(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown entity type")
}

func TestLoadSchemaOverrides_MissingFile(t *testing.T) {
	_, err := LoadSchemaOverrides("/nonexistent/schemas.yaml")
	require.Error(t, err)
}
