// Package router 提供控制面的路由表与 HTTP 中间件。
//
// Router 按 (method, path) 精确分派，未匹配的请求得到 NOT_FOUND 信封；
// 中间件（Recovery、RequestID、RequestLogger、CORS、Metrics、OTelTracing、
// RateLimiter）通过 Chain 组合在路由器外层。CORS 只对已注册的路径应答
// OPTIONS 预检，其余 OPTIONS 请求同样由路由器返回 NOT_FOUND。
package router
