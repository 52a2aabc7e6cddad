package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/devtrail/devtrail-backend/internal/services"
)

type ImportHandler struct {
	importerService services.ImporterService
	catalogDir      string
}

func NewImportHandler(importerService services.ImporterService, catalogDir string) *ImportHandler {
	return &ImportHandler{importerService: importerService, catalogDir: catalogDir}
}

func (ih *ImportHandler) Run(c *gin.Context) {
	result, err := ih.importerService.ImportCatalog(c.Request.Context(), ih.catalogDir)
	if err != nil {
		RespondServiceError(c, err)
		return
	}
	RespondOK(c, gin.H{"success": true, "imported": result.Imported, "skipped": result.Skipped})
}
