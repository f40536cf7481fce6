package models

// Page is a snapshot of one server-side page
type Page[T any] struct {
	Number           int   `json:"number"`
	NumberOfElements int   `json:"numberOfElements"`
	Size             int   `json:"size"`
	TotalPages       int   `json:"totalPages"`
	TotalElements    int64 `json:"totalElements"`
	Content          []T   `json:"content"`
}

// EmailPage is a page of emails
type EmailPage = Page[Email]

// Valid reports whether the element count matches the content
func (p *Page[T]) Valid() bool {
	return p.NumberOfElements == len(p.Content)
}

// Empty reports whether the page carries no rows
func (p *Page[T]) Empty() bool {
	return len(p.Content) == 0
}

// NewPage slices items into the page'th page of the given size
func NewPage[T any](items []T, page, size int) Page[T] {
	total := len(items)
	totalPages := 0
	if size > 0 {
		totalPages = (total + size - 1) / size
	}
	start := page * size
	if start > total {
		start = total
	}
	end := start + size
	if end > total {
		end = total
	}
	content := make([]T, end-start)
	copy(content, items[start:end])
	return Page[T]{
		Number:           page,
		NumberOfElements: len(content),
		Size:             size,
		TotalPages:       totalPages,
		TotalElements:    int64(total),
		Content:          content,
	}
}
