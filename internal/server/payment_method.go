package server

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	paymentmethoddomain "github.com/smallbiznis/recurrent/internal/paymentmethod/domain"
)

type createPaymentMethodRequest struct {
	CustomerID string `json:"customer_id"`
	CardNumber string `json:"card_number"`
}

func (s *Server) CreatePaymentMethod(c *gin.Context) {
	var req createPaymentMethodRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		AbortWithError(c, invalidRequestError())
		return
	}

	resp, err := s.paymentMethodSvc.Create(c.Request.Context(), paymentmethoddomain.CreatePaymentMethodRequest{
		CustomerID: strings.TrimSpace(req.CustomerID),
		CardNumber: strings.TrimSpace(req.CardNumber),
	})
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}

func (s *Server) GetPaymentMethodByID(c *gin.Context) {
	id := strings.TrimSpace(c.Param("id"))
	resp, err := s.paymentMethodSvc.GetByID(c.Request.Context(), id)
	if err != nil {
		AbortWithError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": resp})
}
