package models

import "time"

// Kind is the closed set of file-node types.
type Kind string

const (
	KindFolder Kind = "folder"
	KindFile   Kind = "file"
	KindImage  Kind = "image"
)

// Valid reports whether k is one of the known kinds.
func (k Kind) Valid() bool {
	switch k {
	case KindFolder, KindFile, KindImage:
		return true
	}
	return false
}

// RequiresData reports whether nodes of this kind carry raw bytes.
func (k Kind) RequiresData() bool {
	return k == KindFile || k == KindImage
}

// ParentRef points at a node's parent: either the namespace root or an
// existing folder. The zero value is Root, so there is no ambiguous
// sentinel id.
type ParentRef struct {
	folderID string
}

// Root is the top of the namespace.
var Root = ParentRef{}

// Folder references the folder with the given id.
func Folder(id string) ParentRef {
	return ParentRef{folderID: id}
}

// IsRoot reports whether the reference points at the namespace root.
func (p ParentRef) IsRoot() bool {
	return p.folderID == ""
}

// FolderID returns the referenced folder id. ok is false for Root.
func (p ParentRef) FolderID() (id string, ok bool) {
	return p.folderID, p.folderID != ""
}

// String renders the reference in the wire form used by the API:
// "0" for the root, the folder id otherwise.
func (p ParentRef) String() string {
	if p.IsRoot() {
		return "0"
	}
	return p.folderID
}

// ParseParentRef interprets an API-supplied parent id. Empty and "0"
// both mean the root.
func ParseParentRef(s string) ParentRef {
	if s == "" || s == "0" {
		return Root
	}
	return Folder(s)
}

// FileNode is one record in the hierarchical namespace. StorageKey is set
// iff Kind is file or image. OwnerID never changes after creation.
type FileNode struct {
	ID         string
	OwnerID    string
	Name       string
	Kind       Kind
	IsPublic   bool
	Parent     ParentRef
	StorageKey string
	CreatedAt  time.Time
}
