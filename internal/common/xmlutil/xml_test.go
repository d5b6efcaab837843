package xmlutil

import (
	"bytes"
	"encoding/xml"
	"testing"

	"github.com/deploymenttheory/go-etl-bridge/internal/common/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseTree(t *testing.T) {
	doc := `<Root a="1"><Wrap><Item id="x"> hello </Item></Wrap><Item id="y"/></Root>`

	root, err := Parse([]byte(doc))
	require.NoError(t, err)

	assert.Equal(t, "Root", root.Name)
	assert.Equal(t, "1", root.Attr("a"))
	assert.Equal(t, "", root.Attr("missing"))

	items := root.Iter("Item")
	require.Len(t, items, 2)
	assert.Equal(t, "x", items[0].Attr("id"))
	assert.Equal(t, "hello", items[0].Text)
	assert.Equal(t, "y", items[1].Attr("id"))

	assert.Nil(t, root.Child("Nope"))
	assert.Equal(t, "hello", root.Child("Wrap").ChildText("Item"))
	assert.Len(t, root.ChildrenNamed("Item"), 1)
}

func TestParseAcceptsBOM(t *testing.T) {
	data := append(append([]byte{}, BOM...), []byte(`<?xml version="1.0" encoding="utf-8"?><A/>`)...)

	root, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "A", root.Name)
}

func TestParseLatin1Declaration(t *testing.T) {
	// 0xE9 is "é" in ISO-8859-1
	data := []byte("<?xml version=\"1.0\" encoding=\"ISO-8859-1\"?><A>caf\xe9</A>")

	root, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, "café", root.Text)
}

func TestParseErrors(t *testing.T) {
	_, err := Parse([]byte(`<A><B></A>`))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrParse))

	var syntaxErr *xml.SyntaxError
	assert.True(t, errors.As(err, &syntaxErr))

	_, err = Parse([]byte("   "))
	require.Error(t, err)
	assert.True(t, errors.Is(err, errors.ErrEmptyDocument))
}

func TestMarshal(t *testing.T) {
	root := NewElement("Doc").SetAttr("v", "1")
	root.AddChild("Name").SetText("a & b")
	root.AddChild("Empty")

	withBOM, err := Marshal(root, true)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(withBOM, BOM))

	plain, err := Marshal(root, false)
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(plain, []byte(Header)))
	assert.Contains(t, string(plain), "a &amp; b")

	back, err := Parse(withBOM)
	require.NoError(t, err)
	assert.Equal(t, "1", back.Attr("v"))
	assert.Equal(t, "a & b", back.ChildText("Name"))
	assert.NotNil(t, back.Child("Empty"))
}

func TestSetAttrReplaces(t *testing.T) {
	el := NewElement("X").SetAttr("k", "1").SetAttr("k", "2")
	require.Len(t, el.Attrs, 1)

	v, ok := el.LookupAttr("k")
	assert.True(t, ok)
	assert.Equal(t, "2", v)
}
