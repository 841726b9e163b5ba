package dto

type CategoryFilters struct {
	ParentID *string // nil ignores the parent, "" selects roots
	Page     int
	PageSize int
}
