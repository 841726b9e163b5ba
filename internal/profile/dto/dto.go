package dto

import "github.com/fekuna/omnipos-storefront/internal/model"

// AddressForm is shared by the profile page and checkout.
type AddressForm struct {
	Country   string `json:"country" form:"country" validate:"required,max=128"`
	City      string `json:"city" form:"city" validate:"required,max=128"`
	Street    string `json:"street" form:"street" validate:"required,max=128"`
	Postcode  string `json:"postcode" form:"postcode" validate:"required,len=6,numeric"`
	House     string `json:"house" form:"house" validate:"required,max=10"`
	Apartment string `json:"apartment" form:"apartment" validate:"required,max=10"`
}

type UserForm struct {
	FirstName string `json:"first_name" form:"first_name" validate:"required,max=64"`
	LastName  string `json:"last_name" form:"last_name" validate:"required,max=64"`
	Email     string `json:"email" form:"email" validate:"required,email,max=64"`
}

type RegisterInput struct {
	Username  string `json:"username" form:"username" validate:"required,max=150,alphanumunicode"`
	Email     string `json:"email" form:"email" validate:"required,email,max=254"`
	Password1 string `json:"password1" form:"password1" validate:"required,min=8,max=128"`
	Password2 string `json:"password2" form:"password2" validate:"required,eqfield=Password1"`
}

type LoginInput struct {
	Username string `json:"username" form:"username" validate:"required"`
	Password string `json:"password" form:"password" validate:"required"`
}

type ProfileInput struct {
	User    UserForm    `json:"user" validate:"required"`
	Address AddressForm `json:"address" validate:"required"`
}

// FromModels fills the forms from stored rows. Missing address parts stay empty.
func FromModels(u *model.User, a *model.Address) ProfileInput {
	var p ProfileInput
	if u != nil {
		p.User = UserForm{FirstName: u.FirstName, LastName: u.LastName, Email: u.Email}
	}
	if a != nil {
		p.Address = AddressForm{
			Country:   deref(a.Country),
			City:      deref(a.City),
			Street:    deref(a.Street),
			Postcode:  deref(a.Postcode),
			House:     deref(a.House),
			Apartment: deref(a.Apartment),
		}
	}
	return p
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}

type LoginResult struct {
	User  *model.User `json:"user"`
	Token string      `json:"token,omitempty"`
}
