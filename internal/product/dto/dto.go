package dto

type ProductFilters struct {
	CategoryIDs []string `json:"category_ids,omitempty"`
	SearchQuery string   `json:"q,omitempty"`
	Page        int      `json:"page"`
	PageSize    int      `json:"page_size"`
}
