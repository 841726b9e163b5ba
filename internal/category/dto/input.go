package dto

type CreateCategoryInput struct {
	ParentID *string `json:"parent_id"`
	Title    string  `json:"title" validate:"required,max=255"`
}
