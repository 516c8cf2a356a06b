package directory

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sheetCSV = `export,,,
,,,
,no,name,cookie,status
,1,ShopAlpha,SPC_EC=abc; csrftoken=tok1,active
,2,shopbeta,SPC_EC=def; csrftoken=tok2,active
,3,NoCredential,,active
,4,,orphan-cookie,active
`

func TestParse(t *testing.T) {
	entries, err := Parse(strings.NewReader(sheetCSV))
	require.NoError(t, err)
	require.Len(t, entries, 3) // empty-name row skipped

	assert.Equal(t, "ShopAlpha", entries[0].Name)
	assert.Equal(t, "SPC_EC=abc; csrftoken=tok1", entries[0].Credential)
	assert.Equal(t, "NoCredential", entries[2].Name)
	assert.Empty(t, entries[2].Credential)
}

func TestParseNoHeader(t *testing.T) {
	_, err := Parse(strings.NewReader("a,b,c\n1,2,3\n"))
	require.Error(t, err)
}

func TestCredentialCaseInsensitive(t *testing.T) {
	d := New("http://unused", "")
	entries, err := Parse(strings.NewReader(sheetCSV))
	require.NoError(t, err)
	d.byName = map[string]Entry{}
	for _, e := range entries {
		d.byName[strings.ToLower(e.Name)] = e
	}

	cred, ok := d.Credential("SHOPALPHA")
	require.True(t, ok)
	assert.Equal(t, "SPC_EC=abc; csrftoken=tok1", cred)

	cred, ok = d.Credential(" shopAlpha ")
	require.True(t, ok)
	assert.Equal(t, "SPC_EC=abc; csrftoken=tok1", cred)

	_, ok = d.Credential("NoCredential")
	assert.False(t, ok, "empty credential should not resolve")

	_, ok = d.Credential("unknown")
	assert.False(t, ok)
}
