package dto

import (
	profiledto "github.com/fekuna/omnipos-storefront/internal/profile/dto"
)

// CustomerData is the checkout draft kept in the session between steps.
type CustomerData struct {
	User    profiledto.UserForm    `json:"user"`
	Address profiledto.AddressForm `json:"address"`
}

type UpdateStatusInput struct {
	Status string `json:"status" validate:"required,oneof=P A S C"`
}
