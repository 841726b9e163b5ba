package dto

type AddReminderInput struct {
	ProductID string `json:"product" validate:"required,uuid"`
	Email     string `json:"email" validate:"required,email,max=254"`
}
