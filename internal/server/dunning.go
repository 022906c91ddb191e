package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	dunningdomain "github.com/smallbiznis/recurrent/internal/dunning/domain"
	"github.com/smallbiznis/recurrent/pkg/db/pagination"
)

func (s *Server) ListDunningCases(c *gin.Context) {
	var query struct {
		pagination.Pagination
		Status string `form:"status"`
	}
	if err := c.ShouldBindQuery(&query); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.dunningSvc.List(c.Request.Context(), dunningdomain.ListCaseRequest{
		Status:    strings.TrimSpace(query.Status),
		PageToken: query.PageToken,
		PageSize:  int32(query.PageSize),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
