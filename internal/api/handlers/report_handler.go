package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// ReportResolver maps a report name to a local file.
type ReportResolver interface {
	Resolve(filename string) (string, error)
}

type ReportHandler struct {
	reports ReportResolver
}

func NewReportHandler(reports ReportResolver) *ReportHandler {
	return &ReportHandler{reports: reports}
}

// GetReport serves a generated HTML report by file name.
func (h *ReportHandler) GetReport(c *gin.Context) {
	path, err := h.reports.Resolve(c.Param("filename"))
	if err != nil {
		c.JSON(http.StatusNotFound, errorBody{Error: "report not found", Kind: KindBadInput})
		return
	}
	c.Header("Content-Type", "text/html; charset=utf-8")
	c.File(path)
}
