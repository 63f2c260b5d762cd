package service

import (
	"github.com/docshield/docshield/pkg/apperr"
	"github.com/docshield/docshield/pkg/internal/model"
)

// Action 访问控制动作分类.
type Action int

const (
	// ActionView 查看文档内容与元数据.
	ActionView Action = iota
	// ActionMutate 修改或删除文档.
	ActionMutate
	// ActionReview 审核类动作（队列、人工/快速审核）.
	ActionReview
	// ActionAdmin 管理类动作（用户管理、指派审核员）.
	ActionAdmin
)

// gateDocument 文档访问判定，按固定优先级求值：
// 封禁 > 所有权 > 管理员 > 审核员 > 拒绝。
// 被拒绝的所有权类访问返回 NotFound 而不是 Forbidden，不泄露资源存在性.
func gateDocument(actor *model.User, doc *model.Document, action Action) error {
	if actor == nil {
		return apperr.Unauthorized("authentication required")
	}

	if actor.Banned {
		return apperr.Forbidden("account banned")
	}

	if doc != nil && doc.UserID == actor.ID {
		// 属主允许查看与修改自己的文档，审核与管理动作仍按角色判定
		if action == ActionView || action == ActionMutate {
			return nil
		}
	}

	if actor.Role == model.RoleAdmin {
		return nil
	}

	if actor.Role == model.RoleVerifier && (action == ActionReview || action == ActionView) {
		return nil
	}

	if action == ActionAdmin || action == ActionReview {
		return apperr.Forbidden("insufficient role")
	}

	return apperr.NotFound("document not found")
}

// requireRole 纯角色判定，封禁优先.
func requireRole(actor *model.User, roles ...model.Role) error {
	if actor == nil {
		return apperr.Unauthorized("authentication required")
	}

	if actor.Banned {
		return apperr.Forbidden("account banned")
	}

	for _, r := range roles {
		if actor.Role == r {
			return nil
		}
	}

	return apperr.Forbidden("insufficient role")
}
