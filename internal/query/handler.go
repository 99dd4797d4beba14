package query

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	httperr "github.com/offershow-lab/offershow/internal/core/errors"
)

// RegisterRoutes registers the statistics read API on the given router.
func (s *Service) RegisterRoutes(r gin.IRouter) {
	r.GET("/v1/statistics/salary", s.HandleSalaryStatistics)
	r.GET("/v1/statistics/trend", s.HandleTrendStatistics)
}

// HandleSalaryStatistics handles GET /v1/statistics/salary
// Query parameters: dimension, start_date, end_date (all optional).
func (s *Service) HandleSalaryStatistics(c *gin.Context) {
	var params struct {
		Dimension string `form:"dimension"`
		StartDate string `form:"start_date"`
		EndDate   string `form:"end_date"`
	}
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidQueryError,
			Message:   "Invalid query parameters",
			Details:   err.Error(),
		})
		return
	}

	resp, err := s.GetSalaryStatistics(c.Request.Context(), SalaryQuery{
		Dimension: params.Dimension,
		StartDate: params.StartDate,
		EndDate:   params.EndDate,
	})
	if err != nil {
		writeQueryError(c, err, "Failed to query salary statistics")
		return
	}

	c.JSON(http.StatusOK, resp)
}

// HandleTrendStatistics handles GET /v1/statistics/trend
// Query parameters: type, dimension, dimension_value, start_date, end_date.
func (s *Service) HandleTrendStatistics(c *gin.Context) {
	var params struct {
		Type           string `form:"type"`
		Dimension      string `form:"dimension"`
		DimensionValue string `form:"dimension_value"`
		StartDate      string `form:"start_date"`
		EndDate        string `form:"end_date"`
	}
	if err := c.ShouldBindQuery(&params); err != nil {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidQueryError,
			Message:   "Invalid query parameters",
			Details:   err.Error(),
		})
		return
	}

	resp, err := s.GetTrendStatistics(c.Request.Context(), TrendQuery{
		Type:           params.Type,
		Dimension:      params.Dimension,
		DimensionValue: params.DimensionValue,
		StartDate:      params.StartDate,
		EndDate:        params.EndDate,
	})
	if err != nil {
		writeQueryError(c, err, "Failed to query trend statistics")
		return
	}

	c.JSON(http.StatusOK, resp)
}

func writeQueryError(c *gin.Context, err error, message string) {
	if errors.Is(err, ErrInvalidQuery) {
		c.JSON(http.StatusBadRequest, httperr.ErrorResponse{
			ErrorType: httperr.HttpInvalidQueryError,
			Message:   message,
			Details:   err.Error(),
		})
		return
	}

	c.JSON(http.StatusInternalServerError, httperr.ErrorResponse{
		ErrorType: httperr.HttpInternalError,
		Message:   message,
		Details:   err.Error(),
	})
}
