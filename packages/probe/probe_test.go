package probe

import (
	"testing"

	"github.com/abdul-hamid-achik/volt/packages/http"
	"github.com/abdul-hamid-achik/volt/packages/jsonvalue"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReference_JSON(t *testing.T) {
	p := New(&http.Response{Body: `{"data":{"id":7,"tags":["a"]}}`})

	l, err := p.JSON("data.tags[0]")
	require.NoError(t, err)
	assert.True(t, l.Found)
	assert.Equal(t, `"a"`, l.Serialized())

	l, err = p.JSON("data.missing")
	require.NoError(t, err)
	assert.False(t, l.Found)
}

func TestReference_InvalidJSON(t *testing.T) {
	p := New(&http.Response{Body: "<html>"})
	_, err := p.JSON("a")
	assert.ErrorIs(t, err, jsonvalue.ErrInvalidJSON)
}

func TestReference_Regexp(t *testing.T) {
	p := New(&http.Response{})
	re, err := p.Regexp(`id=(\d+)`)
	require.NoError(t, err)
	assert.Equal(t, []string{"id=4", "4"}, re.FindStringSubmatch("x id=4"))

	_, err = p.Regexp("[")
	assert.Error(t, err)
}
