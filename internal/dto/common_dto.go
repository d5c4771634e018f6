package dto

// ErrorResponse is the envelope every failed request renders.
type ErrorResponse struct {
	StatusCode int      `json:"statusCode" example:"404"`
	Message    string   `json:"message" example:"Quiz not found"`
	Error      string   `json:"error" example:"Not Found"`
	Details    []string `json:"details,omitempty"`
	Timestamp  string   `json:"timestamp" example:"2024-01-01T00:00:00Z"`
	Path       string   `json:"path" example:"/api/v1/quizzes/123"`
}

type PaginationQuery struct {
	Page  int `form:"page" binding:"omitempty,min=1"`
	Limit int `form:"limit" binding:"omitempty,min=1"`
}

type PageMeta struct {
	Total      int64 `json:"total"`
	Page       int   `json:"page"`
	Limit      int   `json:"limit"`
	TotalPages int   `json:"totalPages"`
}

type Page[T any] struct {
	Data []T      `json:"data"`
	Meta PageMeta `json:"meta"`
}

func NewPage[T any](data []T, total int64, page, limit int) Page[T] {
	if data == nil {
		data = []T{}
	}
	totalPages := 0
	if limit > 0 {
		totalPages = int((total + int64(limit) - 1) / int64(limit))
	}
	return Page[T]{
		Data: data,
		Meta: PageMeta{Total: total, Page: page, Limit: limit, TotalPages: totalPages},
	}
}

type HealthResponse struct {
	Status    string `json:"status" example:"ok"`
	Database  string `json:"database,omitempty" example:"up"`
	Timestamp string `json:"timestamp"`
}
