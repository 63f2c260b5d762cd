// Package middleware 提供 HTTP 中间件：日志、追踪、指标、限流、熔断、
// 认证、响应缓存，以及把存储管理器和调度器挂到请求上下文的胶水.
package middleware
