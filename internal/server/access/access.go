// Package access decides read/write eligibility for file nodes. The model
// is deliberately small: owner or public for reads, owner only for writes.
package access

import "github.com/dvolkovs/filevault/internal/server/models"

// Anonymous is the requester id of an unauthenticated caller.
const Anonymous = ""

// CanRead reports whether requesterID may see node. Public nodes are
// visible to everyone, including anonymous callers.
func CanRead(node *models.FileNode, requesterID string) bool {
	if node.IsPublic {
		return true
	}
	return requesterID != Anonymous && requesterID == node.OwnerID
}

// CanWrite reports whether requesterID may modify node. Only the owner may.
func CanWrite(node *models.FileNode, requesterID string) bool {
	return requesterID != Anonymous && requesterID == node.OwnerID
}
