package model

import "fmt"

type User struct {
	BaseModel
	Username     string `db:"username" json:"username"`
	Email        string `db:"email" json:"email"`
	FirstName    string `db:"first_name" json:"first_name"`
	LastName     string `db:"last_name" json:"last_name"`
	PasswordHash string `db:"password_hash" json:"-"`
	IsStaff      bool   `db:"is_staff" json:"is_staff"`
}

func (u *User) FullName() string {
	return fmt.Sprintf("%s %s", u.FirstName, u.LastName)
}

// Address is created empty together with its user and filled in later.
type Address struct {
	BaseModel
	UserID    string  `db:"user_id" json:"user_id"`
	Country   *string `db:"country" json:"country"`
	City      *string `db:"city" json:"city"`
	Street    *string `db:"street" json:"street"`
	Postcode  *string `db:"postcode" json:"postcode"`
	House     *string `db:"house" json:"house"`
	Apartment *string `db:"apartment" json:"apartment"`
}
