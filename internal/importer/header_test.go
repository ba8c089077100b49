package importer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestResolveHeaders_LowercasesAndTrims(t *testing.T) {
	got := ResolveHeaders([]string{" Name ", "EMAIL", "Phone Number"})
	assert.Equal(t, []string{"name", "email", "phone number"}, got)
}

func TestResolveHeaders_EmptyGetsPositionalName(t *testing.T) {
	got := ResolveHeaders([]string{"name", "", "phone"})
	assert.Equal(t, []string{"name", "column_1", "phone"}, got)
}

func TestResolveHeaders_DuplicatesGetSuffix(t *testing.T) {
	got := ResolveHeaders([]string{"Phone", "phone", "PHONE"})
	assert.Equal(t, []string{"phone", "phone_1", "phone_2"}, got)
}

func TestResolveHeaders_SuffixCollidesWithRawHeader(t *testing.T) {
	// The renamed duplicate must not land on a name another column
	// already holds, or two columns would key the same row cell.
	got := ResolveHeaders([]string{"Foo", "Foo_1", "Foo"})
	assert.Equal(t, []string{"foo", "foo_1", "foo_2"}, got)

	got = ResolveHeaders([]string{"Foo_1", "Foo", "Foo"})
	assert.Equal(t, []string{"foo_1", "foo", "foo_2"}, got)

	rows := BuildRows(got, [][]string{{"a", "b", "c"}})
	require.Len(t, rows[0], 3)
}

func TestResolveHeaders_Idempotent(t *testing.T) {
	raw := []string{"Name", "name", "", "Price"}
	once := ResolveHeaders(raw)
	twice := ResolveHeaders(once)
	assert.Equal(t, once, twice)
}

func TestMapFields_SubstringMatch(t *testing.T) {
	schema, err := SchemaFor(EntityListings)
	require.NoError(t, err)

	headers := ResolveHeaders([]string{"PropertyAddress", "OwnerLastName", "SaleAmt", "ListingStage"})
	fields, err := MapFields(headers, schema)
	require.NoError(t, err)

	assert.Equal(t, "propertyaddress", fields[FieldAddress])
	assert.Equal(t, "ownerlastname", fields[FieldSeller])
	assert.Equal(t, "saleamt", fields[FieldPrice])
	assert.Equal(t, "listingstage", fields[FieldStatus])
}

func TestMapFields_LeftmostWins(t *testing.T) {
	schema, err := SchemaFor(EntityContacts)
	require.NoError(t, err)

	headers := ResolveHeaders([]string{"home phone", "work phone"})
	fields, err := MapFields(headers, schema)
	require.NoError(t, err)
	assert.Equal(t, "home phone", fields[FieldPhone])
}

func TestMapFields_NoColumnsResolved(t *testing.T) {
	schema, err := SchemaFor(EntityContacts)
	require.NoError(t, err)

	_, err = MapFields([]string{"qty", "sku", "warehouse"}, schema)
	require.ErrorIs(t, err, ErrNoColumns)
}

func TestMapFields_PartialResolutionIsFine(t *testing.T) {
	schema, err := SchemaFor(EntityContacts)
	require.NoError(t, err)

	fields, err := MapFields([]string{"name", "qty"}, schema)
	require.NoError(t, err)
	assert.Equal(t, "name", fields[FieldName])
	_, hasPhone := fields[FieldPhone]
	assert.False(t, hasPhone)
}

func TestMapFields_AuxiliaryAliases(t *testing.T) {
	schema, err := SchemaFor(EntityListings)
	require.NoError(t, err)

	// "settlement" is not in Expected but still resolves via aliases.
	headers := ResolveHeaders([]string{"Address", "Owner", "SettleDate"})
	fields, err := MapFields(headers, schema)
	require.NoError(t, err)
	assert.Equal(t, "settledate", fields[FieldSettlement])
}

func TestBuildRows_ShortRowsPadWithEmpty(t *testing.T) {
	headers := []string{"name", "email", "phone"}
	rows := BuildRows(headers, [][]string{{"John", "j@x.com"}})
	require.Len(t, rows, 1)
	assert.Equal(t, "John", rows[0]["name"])
	assert.Equal(t, "", rows[0]["phone"])
}

func TestRow_Empty(t *testing.T) {
	assert.True(t, Row{"a": "", "b": ""}.Empty())
	assert.False(t, Row{"a": "", "b": "x"}.Empty())
}
