package types

// AdminStatsResponse 管理台总览统计.
type AdminStatsResponse struct {
	Users          int64 `json:"users"`
	Documents      int64 `json:"documents"`
	PendingReviews int64 `json:"pending_reviews"`
	Verified       int64 `json:"verified"`
	Rejected       int64 `json:"rejected"`
	Certificates   int64 `json:"certificates"`
	Shares         int64 `json:"shares"`
	// StorageBytes 未删除文档的总字节数
	StorageBytes int64 `json:"storage_bytes"`
	// StatusCounts 按验证状态细分的文档计数
	StatusCounts map[string]int64 `json:"status_counts"`
}

// ListUsersRequest 用户列表查询参数.
type ListUsersRequest struct {
	Page     int    `form:"page" json:"page"`
	PageSize int    `form:"page_size" json:"page_size"`
	Role     string `form:"role" json:"role"`
	// Search 按邮箱或名字模糊匹配
	Search string `form:"search" json:"search"`
}

// AdminUserInfo 管理视角的用户信息，附带文档计数.
type AdminUserInfo struct {
	UserInfo
	DocumentCount int64 `json:"document_count"`
}

// ListUsersResponse 用户列表响应体.
type ListUsersResponse struct {
	Users    []AdminUserInfo `json:"users"`
	Total    int64           `json:"total"`
	Page     int             `json:"page"`
	PageSize int             `json:"page_size"`
}

// UpdateRoleRequest 角色变更参数.
type UpdateRoleRequest struct {
	Role string `form:"role" json:"role" rule:"required,oneof=user verifier admin"`
}

// SetBanRequest 封禁/解封参数.
type SetBanRequest struct {
	Banned bool `form:"banned" json:"banned"`
}

// ResetPasswordRequest 管理员重置密码参数.
type ResetPasswordRequest struct {
	NewPassword string `form:"new_password" json:"new_password" rule:"required,min=8,max=72"`
}
