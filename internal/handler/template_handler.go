package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/smsrates/pricefeed/internal/dto"
	"github.com/smsrates/pricefeed/internal/model"
	"github.com/smsrates/pricefeed/internal/repository"
)

type TemplateHandler struct {
	templates *repository.TemplateRepository
}

func NewTemplateHandler(templates *repository.TemplateRepository) *TemplateHandler {
	return &TemplateHandler{templates: templates}
}

func (h *TemplateHandler) List(c *gin.Context) {
	var (
		tpls []model.ParsingTemplate
		err  error
	)
	if c.Query("enabled") == "true" {
		tpls, err = h.templates.ListEnabled(c.Request.Context())
	} else {
		tpls, err = h.templates.List(c.Request.Context())
	}
	if err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": tpls})
}

func (h *TemplateHandler) Create(c *gin.Context) {
	var req dto.CreateTemplateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	enabled := true
	if req.Enabled != nil {
		enabled = *req.Enabled
	}

	tpl := &model.ParsingTemplate{
		SupplierID:   req.SupplierID,
		ConnectionID: req.ConnectionID,
		Name:         req.Name,
		Enabled:      enabled,
		Conditions:   req.Conditions,
		Mapping:      req.Mapping,
		Options:      req.Options,
	}
	if err := h.templates.Insert(c.Request.Context(), tpl); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusCreated, tpl)
}

func (h *TemplateHandler) SetEnabled(c *gin.Context) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid template id"})
		return
	}

	var body struct {
		Enabled bool `json:"enabled"`
	}
	if err := c.ShouldBindJSON(&body); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	if err := h.templates.SetEnabled(c.Request.Context(), id, body.Enabled); err != nil {
		c.Error(err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"id": id, "enabled": body.Enabled})
}
