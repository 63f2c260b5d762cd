// Package types 定义 HTTP 层的请求与响应结构体，供 handler 与 service 共用.
package types

import "time"

// RegisterRequest 用户注册参数.
type RegisterRequest struct {
	// Email 登录邮箱，大小写敏感，全库唯一
	Email string `form:"email" json:"email" rule:"required,email,max=255"`
	// Name 展示名
	Name string `form:"name" json:"name" rule:"required,max=255"`
	// Password 明文密码，服务端仅存 bcrypt 哈希
	Password string `form:"password" json:"password" rule:"required,min=8,max=72"`
}

// LoginRequest 用户登录参数.
type LoginRequest struct {
	Email    string `form:"email" json:"email" rule:"required,email"`
	Password string `form:"password" json:"password" rule:"required"`
}

// ChangePasswordRequest 修改密码参数。改密后所有既有令牌立即失效.
type ChangePasswordRequest struct {
	OldPassword string `form:"old_password" json:"old_password" rule:"required"`
	NewPassword string `form:"new_password" json:"new_password" rule:"required,min=8,max=72"`
}

// UserInfo 用户的公开信息.
type UserInfo struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Name      string    `json:"name"`
	Role      string    `json:"role"`
	Banned    bool      `json:"banned,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// AuthResponse 注册/登录的响应体，携带访问令牌与用户信息.
type AuthResponse struct {
	// Token JWT 访问令牌
	Token string `json:"token"`
	// ExpiresAt 令牌过期时间（UTC）
	ExpiresAt time.Time `json:"expires_at"`
	User      UserInfo  `json:"user"`
}
