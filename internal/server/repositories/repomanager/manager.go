package repomanager

import (
	"context"
	"database/sql"

	"github.com/dvolkovs/filevault/internal/dbx"
	"github.com/dvolkovs/filevault/internal/server/repositories/files"
	"github.com/dvolkovs/filevault/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Files(db dbx.DBTX) files.Repository
}
