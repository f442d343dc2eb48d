package handler

// DI for all handlers.

import (
	"github.com/yumyai/protclass/pkg/db"
	"github.com/yumyai/protclass/pkg/model"
)

type AppContext struct {
	Analyzer  *model.Analyzer
	Store     *db.ResultStore
	UniProt   model.MetadataSource // nil disables accession lookups
	BatchJobs *BatchJobManager
}
