package access

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/dvolkovs/filevault/internal/server/models"
)

func TestCanRead(t *testing.T) {
	tests := []struct {
		name      string
		isPublic  bool
		owner     string
		requester string
		want      bool
	}{
		{"owner reads private", false, "u1", "u1", true},
		{"other denied private", false, "u1", "u2", false},
		{"anonymous denied private", false, "u1", Anonymous, false},
		{"owner reads public", true, "u1", "u1", true},
		{"other reads public", true, "u1", "u2", true},
		{"anonymous reads public", true, "u1", Anonymous, true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			node := &models.FileNode{OwnerID: tc.owner, IsPublic: tc.isPublic}
			assert.Equal(t, tc.want, CanRead(node, tc.requester))
		})
	}
}

func TestCanWrite(t *testing.T) {
	node := &models.FileNode{OwnerID: "u1", IsPublic: true}

	assert.True(t, CanWrite(node, "u1"))
	assert.False(t, CanWrite(node, "u2"))
	assert.False(t, CanWrite(node, Anonymous))
}

func TestCanWrite_AnonymousOwnerNeverMatches(t *testing.T) {
	// a node can never legitimately have an empty owner, but an anonymous
	// requester must not match one either
	node := &models.FileNode{OwnerID: ""}
	assert.False(t, CanWrite(node, Anonymous))
	assert.False(t, CanRead(node, Anonymous))
}
