package api

// AskRequest POST /ask 的请求体
type AskRequest struct {
	Question string `json:"question"`
}

// AskResponse POST /ask 的响应体，Answer 为 nil 表示字段缺失
type AskResponse struct {
	Answer *string `json:"answer"`
}

// HealthResponse GET / 的响应体
type HealthResponse struct {
	Status  string `json:"status"`
	Message string `json:"message"`
}
