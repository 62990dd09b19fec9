package router

import (
	"net/http"
	"sync"

	"github.com/BaSui01/mascotctl/api/handlers"
	"github.com/BaSui01/mascotctl/types"
	"go.uber.org/zap"
)

// UnmatchedLabel 未匹配路由的请求在指标中的路径标签
const UnmatchedLabel = "unmatched"

// Route 一条 (method, path) → handler 映射
type Route struct {
	Method  string
	Path    string
	Handler http.Handler
}

type routeKey struct {
	method string
	path   string
}

// Router 按注册顺序保存路由表，精确匹配方法与大小写敏感的路径。
// 服务器启动时调用 Freeze，之后路由表只读。
type Router struct {
	mu     sync.RWMutex
	routes []Route
	index  map[routeKey]int
	frozen bool
	logger *zap.Logger
}

// New 创建路由器
func New(logger *zap.Logger) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Router{
		index:  make(map[routeKey]int),
		logger: logger.With(zap.String("component", "router")),
	}
}

// Register 注册路由。重复的 (method, path) 返回 DUPLICATE_ROUTE，
// 冻结后返回 ROUTES_FROZEN。
func (rt *Router) Register(method, path string, h http.Handler) error {
	if method == "" || path == "" || h == nil {
		return types.Errorf(types.ErrBadRequest, "invalid route %q %q", method, path)
	}

	rt.mu.Lock()
	defer rt.mu.Unlock()

	if rt.frozen {
		return types.Errorf(types.ErrRoutesFrozen, "cannot register %s %s after server start", method, path)
	}
	key := routeKey{method: method, path: path}
	if _, exists := rt.index[key]; exists {
		return types.Errorf(types.ErrDuplicateRoute, "route %s %s already registered", method, path)
	}

	rt.index[key] = len(rt.routes)
	rt.routes = append(rt.routes, Route{Method: method, Path: path, Handler: h})
	rt.logger.Debug("route registered", zap.String("method", method), zap.String("path", path))
	return nil
}

// Handle 注册经 handlers.Guard 包装的处理函数
func (rt *Router) Handle(method, path string, fn handlers.HandlerFunc) error {
	return rt.Register(method, path, handlers.Guard(rt.logger, fn))
}

// HandleFunc 注册普通 http.HandlerFunc
func (rt *Router) HandleFunc(method, path string, fn http.HandlerFunc) error {
	return rt.Register(method, path, fn)
}

// Freeze 冻结路由表
func (rt *Router) Freeze() {
	rt.mu.Lock()
	rt.frozen = true
	rt.mu.Unlock()
}

// Frozen 报告路由表是否已冻结
func (rt *Router) Frozen() bool {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	return rt.frozen
}

// Routes 按注册顺序返回路由表快照
func (rt *Router) Routes() []Route {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	out := make([]Route, len(rt.routes))
	copy(out, rt.routes)
	return out
}

// Match 返回请求命中的处理器
func (rt *Router) Match(method, path string) (http.Handler, bool) {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	i, ok := rt.index[routeKey{method: method, path: path}]
	if !ok {
		return nil, false
	}
	return rt.routes[i].Handler, true
}

// Methods 按注册顺序返回路径上已注册的方法，未注册的路径返回 nil。
func (rt *Router) Methods(path string) []string {
	rt.mu.RLock()
	defer rt.mu.RUnlock()
	var methods []string
	for _, r := range rt.routes {
		if r.Path == path {
			methods = append(methods, r.Method)
		}
	}
	return methods
}

// Label 返回请求的指标路径标签，未注册的路径折叠为 UnmatchedLabel。
func (rt *Router) Label(r *http.Request) string {
	if _, ok := rt.Match(r.Method, r.URL.Path); ok {
		return r.URL.Path
	}
	return UnmatchedLabel
}

// ServeHTTP 分派请求；没有匹配时写出 NOT_FOUND 信封。
// 已知路径上的未知方法同样视为 NOT_FOUND。
func (rt *Router) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h, ok := rt.Match(r.Method, r.URL.Path); ok {
		h.ServeHTTP(w, r)
		return
	}
	rs := handlers.NewResponder(w, r, rt.logger)
	_ = rs.Failure(handlers.MsgNotFound, types.Errorf(types.ErrNotFound, "%s %s", r.Method, r.URL.Path))
}
