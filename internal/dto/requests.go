package dto

import "github.com/smsrates/pricefeed/internal/model"

type CreateSupplierRequest struct {
	OrganizationName string `json:"organization_name" binding:"required"`
	PerDelivered     bool   `json:"per_delivered"`
}

type CreateTemplateRequest struct {
	SupplierID   int64                 `json:"supplier_id" binding:"required"`
	ConnectionID int64                 `json:"connection_id" binding:"required"`
	Name         string                `json:"name" binding:"required"`
	Enabled      *bool                 `json:"enabled"`
	Conditions   model.MatchConditions `json:"conditions"`
	Mapping      model.FieldMapping    `json:"mapping"`
	Options      model.TemplateOptions `json:"options"`
}
