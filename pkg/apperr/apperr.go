// Package apperr 定义服务内部统一的错误分类，handler 层据此映射 HTTP 状态码.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
)

// Kind 错误类别.
type Kind int

const (
	KindInternal Kind = iota // 未分类的内部错误
	KindClient               // 参数或请求格式错误
	KindUnauthorized
	KindForbidden
	KindNotFound
	KindGone     // 资源曾经存在但已过期
	KindConflict // 与现有资源冲突（重复上传、重复证书等）
	KindCollaborator
)

// Error 带类别的错误，支持 errors.Is/As 链.
type Error struct {
	kind Kind
	msg  string
	err  error
	// Ref 指向冲突的既有资源 ID，便于调用方定位而不是盲目重试
	Ref string
}

func (e *Error) Error() string {
	if e.err != nil {
		return fmt.Sprintf("%s: %v", e.msg, e.err)
	}

	return e.msg
}

func (e *Error) Unwrap() error { return e.err }

// Kind 返回错误类别.
func (e *Error) Kind() Kind { return e.kind }

// New 构造指定类别的错误.
func New(kind Kind, msg string) *Error {
	return &Error{kind: kind, msg: msg}
}

// Newf 构造指定类别的格式化错误.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{kind: kind, msg: fmt.Sprintf(format, args...)}
}

// Wrap 包装底层错误并赋予类别.
func Wrap(kind Kind, msg string, err error) *Error {
	return &Error{kind: kind, msg: msg, err: err}
}

// Client 参数错误.
func Client(msg string) *Error { return New(KindClient, msg) }

// Clientf 格式化参数错误.
func Clientf(format string, args ...any) *Error { return Newf(KindClient, format, args...) }

// Unauthorized 未认证或凭证失效.
func Unauthorized(msg string) *Error { return New(KindUnauthorized, msg) }

// Forbidden 已认证但无权限.
func Forbidden(msg string) *Error { return New(KindForbidden, msg) }

// NotFound 资源不存在。所有权保护的资源一律返回该类别，避免泄露存在性.
func NotFound(msg string) *Error { return New(KindNotFound, msg) }

// Gone 资源已过期（如超时的分享链接）.
func Gone(msg string) *Error { return New(KindGone, msg) }

// Conflict 与既有资源冲突，ref 指向既有资源 ID.
func Conflict(msg, ref string) *Error {
	e := New(KindConflict, msg)
	e.Ref = ref

	return e
}

// Collaborator 外部协作方（分析器、签名、渲染）失败.
func Collaborator(msg string, err error) *Error { return Wrap(KindCollaborator, msg, err) }

// KindOf 提取错误类别，非 *Error 一律视为内部错误.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.kind
	}

	return KindInternal
}

// RefOf 提取冲突引用，没有则为空串.
func RefOf(err error) string {
	var e *Error
	if errors.As(err, &e) {
		return e.Ref
	}

	return ""
}

// HTTPStatus 类别到 HTTP 状态码的映射.
func HTTPStatus(err error) int {
	switch KindOf(err) {
	case KindClient:
		return http.StatusBadRequest
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindNotFound:
		return http.StatusNotFound
	case KindGone:
		return http.StatusGone
	case KindConflict:
		return http.StatusConflict
	case KindCollaborator:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
