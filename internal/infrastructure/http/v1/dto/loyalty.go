package dto

import (
	"tillage/internal/domain/loyalty"
)

// ValidateCodeResponse is the read-only register check of a voucher.
type ValidateCodeResponse struct {
	Code            string `json:"code"`
	Valid           bool   `json:"valid"`
	DiscountPercent int64  `json:"discountPercent,omitempty"`
}

// MintStaffCodeRequest issues a staff discount code.
type MintStaffCodeRequest struct {
	Note string `json:"note"`
}

// DiscountCodeResponse represents a voucher in API responses.
type DiscountCodeResponse struct {
	BaseResponse
	Code   string `json:"code"`
	Kind   string `json:"kind"`
	Phone  string `json:"phone,omitempty"`
	Active bool   `json:"active"`
}

// FromDiscountCode creates DiscountCodeResponse from domain entity.
func FromDiscountCode(dc *loyalty.DiscountCode) DiscountCodeResponse {
	return DiscountCodeResponse{
		BaseResponse: FromBaseDocument(dc.BaseDocument),
		Code:         dc.Code,
		Kind:         string(dc.Kind),
		Phone:        dc.Phone,
		Active:       dc.Active,
	}
}
