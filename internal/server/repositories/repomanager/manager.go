package repomanager

import (
	"context"
	"database/sql"

	"github.com/mbayed/filevault/internal/dbx"
	"github.com/mbayed/filevault/internal/server/repositories/files"
	"github.com/mbayed/filevault/internal/server/repositories/recoveries"
	"github.com/mbayed/filevault/internal/server/repositories/users"
)

type RepositoryManager interface {
	RunMigrations(context.Context, *sql.DB) error
	Users(db dbx.DBTX) users.Repository
	Files(db dbx.DBTX) files.Repository
	Recoveries(db dbx.DBTX) recoveries.Repository
}
