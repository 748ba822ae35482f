package models

import "time"

// Response shapes used by the swagger annotations. Handlers build the same
// envelope with fiber.Map.

type MessageResponse struct {
	Success bool   `json:"success" example:"true"`
	Message string `json:"message" example:"Operation completed"`
}

type HealthResponse struct {
	Success   bool      `json:"success" example:"true"`
	Message   string    `json:"message" example:"Server is running"`
	Timestamp time.Time `json:"timestamp"`
}

type ErrorResponse struct {
	Success bool   `json:"success" example:"false"`
	Message string `json:"message" example:"Resource not found"`
}

type FieldError struct {
	Field string `json:"field" example:"email"`
	Tag   string `json:"tag" example:"required"`
	Msg   string `json:"message" example:"email is required"`
}

type ValidationErrorResponse struct {
	Success bool         `json:"success" example:"false"`
	Message string       `json:"message" example:"Validation failed"`
	Errors  []FieldError `json:"errors"`
}

type ListResponse[T any] struct {
	Success bool `json:"success" example:"true"`
	Count   int  `json:"count" example:"1"`
	Data    []T  `json:"data"`
}

type ItemResponse[T any] struct {
	Success bool `json:"success" example:"true"`
	Data    T    `json:"data"`
}

type PageResponse[T any] struct {
	Success bool  `json:"success" example:"true"`
	Data    []T   `json:"data"`
	Total   int64 `json:"total" example:"42"`
	Page    int64 `json:"page" example:"1"`
	Limit   int64 `json:"limit" example:"20"`
}
