package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestKind_Valid(t *testing.T) {
	assert.True(t, KindFolder.Valid())
	assert.True(t, KindFile.Valid())
	assert.True(t, KindImage.Valid())
	assert.False(t, Kind("archive").Valid())
	assert.False(t, Kind("").Valid())
}

func TestKind_RequiresData(t *testing.T) {
	assert.False(t, KindFolder.RequiresData())
	assert.True(t, KindFile.RequiresData())
	assert.True(t, KindImage.RequiresData())
}

func TestParentRef(t *testing.T) {
	assert.True(t, Root.IsRoot())
	assert.Equal(t, "0", Root.String())

	_, ok := Root.FolderID()
	assert.False(t, ok)

	p := Folder("abc-123")
	assert.False(t, p.IsRoot())
	id, ok := p.FolderID()
	assert.True(t, ok)
	assert.Equal(t, "abc-123", id)
	assert.Equal(t, "abc-123", p.String())
}

func TestParseParentRef(t *testing.T) {
	assert.True(t, ParseParentRef("").IsRoot())
	assert.True(t, ParseParentRef("0").IsRoot())
	assert.False(t, ParseParentRef("abc").IsRoot())
}
