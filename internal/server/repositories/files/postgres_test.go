package files

import (
	"context"
	"database/sql"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/dvolkovs/filevault/internal/common"
	"github.com/dvolkovs/filevault/internal/server/models"
)

const (
	nodeID  = "6e1bafc2-8a9e-4f3e-9c5d-0b2f43c8a111"
	ownerID = "91d7c0de-13a2-47ab-8c5f-2f90b1a4e222"
)

func newRepoWithMock(t *testing.T) (*PostgresRepository, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.QueryMatcherOption(sqlmock.QueryMatcherRegexp))
	if err != nil {
		t.Fatalf("sqlmock.New error: %v", err)
	}
	return NewPostgresRepository(db), mock, db
}

func nodeRows(t *testing.T, nodes ...*models.FileNode) *sqlmock.Rows {
	t.Helper()
	rows := sqlmock.NewRows([]string{"id", "user_id", "name", "type", "is_public", "parent_id", "storage_key", "created_at"})
	for _, n := range nodes {
		var parent any
		if id, ok := n.Parent.FolderID(); ok {
			parent = id
		}
		var key any
		if n.StorageKey != "" {
			key = n.StorageKey
		}
		rows.AddRow(n.ID, n.OwnerID, n.Name, string(n.Kind), n.IsPublic, parent, key, n.CreatedAt)
	}
	return rows
}

func TestCreate_Folder(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+files\s*\(user_id,\s*name,\s*type,\s*is_public,\s*parent_id,\s*storage_key\)\s*VALUES\s*\(\$1,\s*\$2,\s*\$3,\s*\$4,\s*\$5,\s*\$6\)\s*RETURNING\s+id,\s*created_at\s*$`

	rows := sqlmock.NewRows([]string{"id", "created_at"}).AddRow(nodeID, time.Now())
	mock.ExpectQuery(q).
		WithArgs(ownerID, "Docs", "folder", false, nil, nil).
		WillReturnRows(rows)

	node := &models.FileNode{OwnerID: ownerID, Name: "Docs", Kind: models.KindFolder, Parent: models.Root}
	got, err := repo.Create(context.Background(), node)
	if err != nil {
		t.Fatalf("Create error: %v", err)
	}
	if got.ID != nodeID {
		t.Fatalf("unexpected node: %+v", got)
	}
}

func TestCreate_FileUnderFolder(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^INSERT\s+INTO\s+files`

	rows := sqlmock.NewRows([]string{"id", "created_at"}).AddRow(nodeID, time.Now())
	mock.ExpectQuery(q).
		WithArgs(ownerID, "notes.txt", "file", false, "parent-1", "key-1").
		WillReturnRows(rows)

	node := &models.FileNode{
		OwnerID:    ownerID,
		Name:       "notes.txt",
		Kind:       models.KindFile,
		Parent:     models.Folder("parent-1"),
		StorageKey: "key-1",
	}
	if _, err := repo.Create(context.Background(), node); err != nil {
		t.Fatalf("Create error: %v", err)
	}
}

func TestGetByID_Found(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+.*\s+FROM\s+files\s+WHERE\s+id\s*=\s*\$1\s*$`

	want := &models.FileNode{ID: nodeID, OwnerID: ownerID, Name: "pic.png", Kind: models.KindImage, StorageKey: "key-9", CreatedAt: time.Now()}
	mock.ExpectQuery(q).WithArgs(nodeID).WillReturnRows(nodeRows(t, want))

	got, err := repo.GetByID(context.Background(), nodeID)
	if err != nil {
		t.Fatalf("GetByID error: %v", err)
	}
	if got.Name != "pic.png" || got.Kind != models.KindImage || got.StorageKey != "key-9" {
		t.Fatalf("unexpected node: %+v", got)
	}
	if !got.Parent.IsRoot() {
		t.Fatalf("expected root parent, got %v", got.Parent)
	}
}

func TestGetByID_NotFound(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^SELECT`).WithArgs(nodeID).WillReturnError(sql.ErrNoRows)

	_, err := repo.GetByID(context.Background(), nodeID)
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestGetByID_RejectsNonUUID(t *testing.T) {
	repo, _, db := newRepoWithMock(t)
	defer db.Close()

	// no query must be issued for a malformed id
	_, err := repo.GetByID(context.Background(), "../../etc/passwd")
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestList_UnderFolder(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+.*\s+FROM\s+files\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+parent_id\s*=\s*\$2\s+ORDER\s+BY\s+created_at,\s*id\s+LIMIT\s+\$3\s+OFFSET\s+\$4\s*$`

	a := &models.FileNode{ID: "a", OwnerID: ownerID, Name: "one", Kind: models.KindFile, Parent: models.Folder("p"), StorageKey: "k1", CreatedAt: time.Now()}
	b := &models.FileNode{ID: "b", OwnerID: ownerID, Name: "two", Kind: models.KindFile, Parent: models.Folder("p"), StorageKey: "k2", CreatedAt: time.Now()}
	mock.ExpectQuery(q).WithArgs(ownerID, "p", 20, 40).WillReturnRows(nodeRows(t, a, b))

	got, err := repo.List(context.Background(), ownerID, models.Folder("p"), 2, 20)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 2 || got[0].Name != "one" || got[1].Name != "two" {
		t.Fatalf("unexpected page: %+v", got)
	}
}

func TestList_UnderRoot(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^SELECT\s+.*\s+FROM\s+files\s+WHERE\s+user_id\s*=\s*\$1\s+AND\s+parent_id\s+IS\s+NULL\s+ORDER\s+BY\s+created_at,\s*id\s+LIMIT\s+\$2\s+OFFSET\s+\$3\s*$`

	mock.ExpectQuery(q).WithArgs(ownerID, 20, 0).WillReturnRows(nodeRows(t))

	got, err := repo.List(context.Background(), ownerID, models.Root, 0, 20)
	if err != nil {
		t.Fatalf("List error: %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("expected empty page, got %+v", got)
	}
}

func TestSetVisibility_Success(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	q := `(?s)^UPDATE\s+files\s+SET\s+is_public\s*=\s*\$1\s+WHERE\s+id\s*=\s*\$2\s+AND\s+user_id\s*=\s*\$3\s+RETURNING`

	want := &models.FileNode{ID: nodeID, OwnerID: ownerID, Name: "pic.png", Kind: models.KindImage, IsPublic: true, StorageKey: "key-9", CreatedAt: time.Now()}
	mock.ExpectQuery(q).WithArgs(true, nodeID, ownerID).WillReturnRows(nodeRows(t, want))

	got, err := repo.SetVisibility(context.Background(), nodeID, ownerID, true)
	if err != nil {
		t.Fatalf("SetVisibility error: %v", err)
	}
	if !got.IsPublic {
		t.Fatalf("expected public node, got %+v", got)
	}
}

func TestSetVisibility_NotOwner(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	mock.ExpectQuery(`(?s)^UPDATE\s+files`).
		WithArgs(true, nodeID, ownerID).
		WillReturnError(sql.ErrNoRows)

	_, err := repo.SetVisibility(context.Background(), nodeID, ownerID, true)
	if !errors.Is(err, common.ErrNotFound) {
		t.Fatalf("want common.ErrNotFound, got %v", err)
	}
}

func TestCount(t *testing.T) {
	repo, mock, db := newRepoWithMock(t)
	defer db.Close()

	rows := sqlmock.NewRows([]string{"count"}).AddRow(int64(7))
	mock.ExpectQuery(`(?s)^SELECT\s+COUNT\(\*\)\s+FROM\s+files\s*$`).WillReturnRows(rows)

	n, err := repo.Count(context.Background())
	if err != nil {
		t.Fatalf("Count error: %v", err)
	}
	if n != 7 {
		t.Fatalf("want 7, got %d", n)
	}
}
