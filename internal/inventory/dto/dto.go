package dto

type MovementFilters struct {
	ProductID    string
	MovementType string
	Page         int
	PageSize     int
}
