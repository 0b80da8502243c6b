package utils

import "net/http"

// Doer 接口，*http.Client 满足该接口，测试中可替换为假实现
type Doer interface {
	Do(*http.Request) (*http.Response, error)
}

// DoerFunc 把普通函数适配为 Doer
type DoerFunc func(*http.Request) (*http.Response, error)

// Do 调用 f(req)
func (f DoerFunc) Do(req *http.Request) (*http.Response, error) {
	return f(req)
}
