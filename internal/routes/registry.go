package routes

import (
	"fmt"
	"strings"
	"sync"
)

// Match 路由解析结果
type Match struct {
	Node     *Node
	FullPath string
	Params   map[string]string
}

// Registry 已注册路由表
// 持有固定的公共路由和登录后动态注册的可访问路由，
// 按绝对路径解析导航目标，按名称做全树唯一索引
type Registry struct {
	mu      sync.RWMutex
	public  []*Node
	dynamic []*Node
	byName  map[string]string // name -> 绝对路径
}

// NewRegistry 创建路由表，公共路由立即注册
func NewRegistry(public []*Node) (*Registry, error) {
	r := &Registry{
		public: CloneTree(public),
		byName: make(map[string]string),
	}
	if err := r.indexTree(r.public); err != nil {
		return nil, err
	}
	return r, nil
}

// Register 注册动态路由树
// 重复注册同名同路径的节点是幂等的；同名不同路径视为冲突
func (r *Registry) Register(tree []*Node) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	cp := CloneTree(tree)
	if err := r.indexTree(cp); err != nil {
		return err
	}

	existing := make(map[string]struct{}, len(r.dynamic))
	for _, node := range r.dynamic {
		existing[node.Name+"\x00"+node.Path] = struct{}{}
	}
	for _, node := range cp {
		if _, ok := existing[node.Name+"\x00"+node.Path]; ok {
			continue
		}
		r.dynamic = append(r.dynamic, node)
	}
	return nil
}

// indexTree 建立名称索引，校验全树名称唯一
// 调用方持有写锁
func (r *Registry) indexTree(tree []*Node) error {
	type entry struct {
		node *Node
		base string
	}
	stack := make([]entry, 0, len(tree))
	for i := len(tree) - 1; i >= 0; i-- {
		stack = append(stack, entry{node: tree[i], base: ""})
	}

	added := make(map[string]string)
	for len(stack) > 0 {
		e := stack[len(stack)-1]
		stack = stack[:len(stack)-1]

		full := joinPath(e.base, e.node.Path)
		if e.node.Name != "" {
			if existing, ok := r.byName[e.node.Name]; ok && existing != full {
				return fmt.Errorf("duplicate route name %q: %s vs %s", e.node.Name, existing, full)
			}
			if existing, ok := added[e.node.Name]; ok && existing != full {
				return fmt.Errorf("duplicate route name %q: %s vs %s", e.node.Name, existing, full)
			}
			added[e.node.Name] = full
		}
		for i := len(e.node.Children) - 1; i >= 0; i-- {
			stack = append(stack, entry{node: e.node.Children[i], base: full})
		}
	}

	for name, full := range added {
		r.byName[name] = full
	}
	return nil
}

// ResetDynamic 清除动态路由，仅保留公共路由
func (r *Registry) ResetDynamic() {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.dynamic = nil
	r.byName = make(map[string]string)
	// 公共路由名称在构造时已校验过
	_ = r.indexTree(r.public)
}

// HasDynamic 是否已注册动态路由
func (r *Registry) HasDynamic() bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.dynamic) > 0
}

// Routes 返回当前全部已注册路由（公共+动态）
func (r *Registry) Routes() []*Node {
	r.mu.RLock()
	defer r.mu.RUnlock()

	res := make([]*Node, 0, len(r.public)+len(r.dynamic))
	res = append(res, CloneTree(r.public)...)
	res = append(res, CloneTree(r.dynamic)...)
	return res
}

// PathByName 按名称查找绝对路径
func (r *Registry) PathByName(name string) (string, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	path, ok := r.byName[name]
	return path, ok
}

// Resolve 按绝对路径解析路由
// 支持":param"形式的参数段
func (r *Registry) Resolve(target string) (*Match, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	segments := splitPath(target)
	if m := resolveTree(r.public, "", segments); m != nil {
		return m, true
	}
	if m := resolveTree(r.dynamic, "", segments); m != nil {
		return m, true
	}
	return nil, false
}

// resolveTree 在树中查找与目标段完全匹配的节点
func resolveTree(tree []*Node, base string, target []string) *Match {
	for _, node := range tree {
		full := joinPath(base, node.Path)
		own := splitPath(full)

		if params, ok := matchSegments(own, target); ok {
			return &Match{Node: node, FullPath: full, Params: params}
		}
		// 仅当目标在当前前缀之下时才需要深入
		if len(own) < len(target) {
			if _, ok := matchSegments(own, target[:len(own)]); ok || len(own) == 0 {
				if m := resolveTree(node.Children, full, target); m != nil {
					return m
				}
			}
		}
	}
	return nil
}

// matchSegments 逐段匹配，":x"匹配任意单段
func matchSegments(pattern, target []string) (map[string]string, bool) {
	if len(pattern) != len(target) {
		return nil, false
	}
	var params map[string]string
	for i, p := range pattern {
		if strings.HasPrefix(p, ":") {
			if params == nil {
				params = make(map[string]string)
			}
			params[p[1:]] = target[i]
			continue
		}
		if p != target[i] {
			return nil, false
		}
	}
	return params, true
}

// joinPath 拼接父子路径
func joinPath(base, path string) string {
	if strings.HasPrefix(path, "/") {
		return normalizePath(path)
	}
	if base == "" || base == "/" {
		return normalizePath("/" + path)
	}
	return normalizePath(base + "/" + path)
}

// normalizePath 去除尾部斜杠（根路径除外）
func normalizePath(path string) string {
	if path != "/" {
		path = strings.TrimSuffix(path, "/")
	}
	return path
}

// splitPath 拆分为路径段
func splitPath(path string) []string {
	path = strings.Trim(path, "/")
	if path == "" {
		return nil
	}
	return strings.Split(path, "/")
}
