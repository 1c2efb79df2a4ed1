// Package schema 定义 HTTP API 的请求与响应结构，以及处理器执行前的输入校验规则。
package schema

import "time"

// TokenRequest 为 OAuth2 password grant 表单，username 字段携带邮箱。
type TokenRequest struct {
	GrantType string `form:"grant_type" binding:"omitempty,eq=password"`
	Username  string `form:"username" binding:"required"`
	Password  string `form:"password" binding:"required"`
}

type UserCreate struct {
	Email    string `json:"email" binding:"required,email,max=255"`
	Password string `json:"password" binding:"required,min=8,max=72,bcryptmax"`
}

// JobCreate 同时用于创建与整体替换式更新，省略的可选字段存为 null。
type JobCreate struct {
	Title           string  `json:"title" binding:"required,notblank,max=255"`
	Company         string  `json:"company" binding:"required,notblank,max=255"`
	Location        *string `json:"location" binding:"omitempty,max=255"`
	Description     *string `json:"description" binding:"omitempty,max=10000"`
	Status          string  `json:"status" binding:"required,notblank,max=50"`
	ApplicationDate *string `json:"application_date" binding:"omitempty,timestamp"`
}

// ApplicationTime 返回解析后的投递时间，未填写时为 nil。需在校验通过后调用。
func (r JobCreate) ApplicationTime() *time.Time {
	if r.ApplicationDate == nil || *r.ApplicationDate == "" {
		return nil
	}
	t, err := ParseTimestamp(*r.ApplicationDate)
	if err != nil {
		return nil
	}
	return &t
}

type JobNoteCreate struct {
	Content string `json:"content" binding:"required,notblank,max=10000"`
}

// PageQuery 为列表接口共用的 offset/limit 参数。
type PageQuery struct {
	Skip  int `form:"skip,default=0" binding:"min=0"`
	Limit int `form:"limit,default=10" binding:"min=1,max=100"`
}

type JobListQuery struct {
	PageQuery
	Status  string `form:"status" binding:"max=50"`
	Company string `form:"company" binding:"max=255"`
	Search  string `form:"search" binding:"max=255"`
}

type NoteListQuery struct {
	PageQuery
}
