package httpapi

import (
	"encoding/json"
	"fmt"

	"github.com/dvolkovs/filevault/internal/server/models"
)

type createUserRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type userDoc struct {
	ID    string `json:"id"`
	Email string `json:"email"`
}

type tokenDoc struct {
	Token string `json:"token"`
}

type statusDoc struct {
	Redis bool `json:"redis"`
	DB    bool `json:"db"`
}

type statsDoc struct {
	Users int64 `json:"users"`
	Files int64 `json:"files"`
}

// flexID accepts both "0" and 0 on the wire; older clients send the root
// parent as a bare number.
type flexID string

func (f *flexID) UnmarshalJSON(b []byte) error {
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*f = flexID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(b, &n); err == nil {
		*f = flexID(n.String())
		return nil
	}
	return fmt.Errorf("invalid parentId")
}

type createFileRequest struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	ParentID flexID `json:"parentId"`
	IsPublic bool   `json:"isPublic"`
	Data     string `json:"data"`
}

// fileDoc is the wire form of a file node. ParentID uses the "0"
// sentinel for the namespace root.
type fileDoc struct {
	ID       string `json:"id"`
	UserID   string `json:"userId"`
	Name     string `json:"name"`
	Type     string `json:"type"`
	IsPublic bool   `json:"isPublic"`
	ParentID string `json:"parentId"`
}

func newFileDoc(n *models.FileNode) fileDoc {
	return fileDoc{
		ID:       n.ID,
		UserID:   n.OwnerID,
		Name:     n.Name,
		Type:     string(n.Kind),
		IsPublic: n.IsPublic,
		ParentID: n.Parent.String(),
	}
}

func newFileDocs(nodes []*models.FileNode) []fileDoc {
	docs := make([]fileDoc, 0, len(nodes))
	for _, n := range nodes {
		docs = append(docs, newFileDoc(n))
	}
	return docs
}
