package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/smsrates/pricefeed/internal/dto"
	"github.com/smsrates/pricefeed/internal/model"
	"github.com/smsrates/pricefeed/internal/repository"
)

type SupplierHandler struct {
	suppliers *repository.SupplierRepository
}

func NewSupplierHandler(suppliers *repository.SupplierRepository) *SupplierHandler {
	return &SupplierHandler{suppliers: suppliers}
}

func (h *SupplierHandler) List(c *gin.Context) {
	suppliers, err := h.suppliers.List(c.Request.Context())
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": suppliers})
}

func (h *SupplierHandler) Create(c *gin.Context) {
	var req dto.CreateSupplierRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	supplier := &model.Supplier{
		OrganizationName: req.OrganizationName,
		PerDelivered:     req.PerDelivered,
	}
	if err := h.suppliers.Insert(c.Request.Context(), supplier); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, supplier)
}

func (h *SupplierHandler) ListConnections(c *gin.Context) {
	supplierID, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid supplier id"})
		return
	}

	conns, err := h.suppliers.ListConnections(c.Request.Context(), supplierID)
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": conns})
}
