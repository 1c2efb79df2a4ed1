package schema

import "time"

type Token struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int    `json:"expires_in"`
}

type Message struct {
	Message string `json:"message"`
}

type JobNote struct {
	ID        uint      `json:"id"`
	Content   string    `json:"content"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	JobID     uint      `json:"job_id"`
}

type Job struct {
	ID              uint       `json:"id"`
	Title           string     `json:"title"`
	Company         string     `json:"company"`
	Location        *string    `json:"location"`
	Description     *string    `json:"description"`
	Status          string     `json:"status"`
	ApplicationDate *time.Time `json:"application_date"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
	OwnerID         uint       `json:"owner_id"`
	Notes           []JobNote  `json:"notes"`
}

type User struct {
	ID        uint      `json:"id"`
	Email     string    `json:"email"`
	IsActive  bool      `json:"is_active"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
	Jobs      []Job     `json:"jobs"`
}

// Page 为列表接口共用的分页包装。
type Page[T any] struct {
	Items []T   `json:"items"`
	Total int64 `json:"total"`
	Page  int   `json:"page"`
	Size  int   `json:"size"`
	Pages int   `json:"pages"`
}

// NewPage 包装一页数据：page = offset/size + 1，pages = ceil(total/size)。
func NewPage[T any](items []T, total int64, offset, size int) Page[T] {
	if items == nil {
		items = []T{}
	}
	p := Page[T]{Items: items, Total: total, Size: size, Page: 1}
	if size > 0 {
		p.Page = offset/size + 1
		p.Pages = int((total + int64(size) - 1) / int64(size))
	}
	return p
}
