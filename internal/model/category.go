package model

const UnassignedCategory = "Unassigned"

type Category struct {
	BaseModel
	ParentID *string    `db:"parent_id" json:"parent_id"`
	Title    string     `db:"title" json:"title"`
	Slug     string     `db:"slug" json:"slug"`
	Children []Category `db:"-" json:"children,omitempty"`
}
