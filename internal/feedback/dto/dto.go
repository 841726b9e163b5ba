package dto

type FeedbackForm struct {
	Name    string `json:"name" form:"name" validate:"required,max=128"`
	Email   string `json:"email" form:"email" validate:"required,email,max=128"`
	Message string `json:"message" form:"message" validate:"required"`
}
