package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/smsrates/pricefeed/internal/repository"
)

type OfferHandler struct {
	offers *repository.OfferRepository
}

func NewOfferHandler(offers *repository.OfferRepository) *OfferHandler {
	return &OfferHandler{offers: offers}
}

func (h *OfferHandler) List(c *gin.Context) {
	supplierID, _ := strconv.ParseInt(c.Query("supplier_id"), 10, 64)
	connectionID, _ := strconv.ParseInt(c.Query("connection_id"), 10, 64)

	offers, err := h.offers.List(c.Request.Context(), supplierID, connectionID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": offers})
}

func (h *OfferHandler) History(c *gin.Context) {
	offerID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid offer id"})
		return
	}

	hist, err := h.offers.History(c.Request.Context(), offerID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": hist})
}
