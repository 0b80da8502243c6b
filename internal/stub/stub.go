// Package stub 是问答后端的本地替身，提供与真实后端相同的 HTTP 接口。
// cmd/ragstub 用它做手工调试，api/chat 的测试用它做集成测试。
package stub

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/cors"
	"gopkg.in/yaml.v3"
)

// DefaultAnswer 没有匹配到问题时返回的答案
const DefaultAnswer = "I could not find anything about that in the knowledge base."

// Options 替身服务配置
type Options struct {
	// Answers 问题（忽略大小写和首尾空白）到答案的映射
	Answers map[string]string
	// ForceStatus 非零时所有 /ask 请求都返回该状态码
	ForceStatus int
	// AllowedOrigins CORS 允许的来源
	AllowedOrigins []string
	Logger         *slog.Logger
}

// Server 问答后端替身
type Server struct {
	router  *chi.Mux
	opts    Options
	mu      sync.RWMutex
	answers map[string]string
	asked   atomic.Int64
}

// DefaultAnswers 覆盖界面里的四个推荐问题
func DefaultAnswers() map[string]string {
	return map[string]string{
		"What is Spring Boot?": "Spring Boot is an opinionated framework for building stand-alone, production-grade Spring applications.",
		"What is MongoDB?":     "MongoDB is a document database that stores data as flexible JSON-like documents.",
		"What is LangChain?":   "LangChain is a framework for composing LLM applications from prompts, retrievers and chains.",
		"How does RAG work?":   "RAG combines retrieval with generation: relevant passages are fetched first and handed to the model as context.",
		"What is RAG?":         "RAG combines retrieval with generation.",
	}
}

// LoadAnswers 从 yaml 文件读取问答对
func LoadAnswers(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("读取答案文件失败: %w", err)
	}
	answers := make(map[string]string)
	if err := yaml.Unmarshal(data, &answers); err != nil {
		return nil, fmt.Errorf("解析答案文件失败: %w", err)
	}
	return answers, nil
}

// New 创建替身服务
func New(opts Options) *Server {
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if len(opts.AllowedOrigins) == 0 {
		opts.AllowedOrigins = []string{"*"}
	}
	if opts.Answers == nil {
		opts.Answers = DefaultAnswers()
	}

	s := &Server{
		router:  chi.NewRouter(),
		opts:    opts,
		answers: make(map[string]string, len(opts.Answers)),
	}
	for q, a := range opts.Answers {
		s.answers[normalize(q)] = a
	}

	s.router.Use(cors.Handler(cors.Options{
		AllowedOrigins: opts.AllowedOrigins,
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
		MaxAge:         300,
	}))
	s.routes()
	return s
}

func (s *Server) routes() {
	s.router.Get("/", s.handleHealth)
	s.router.Post("/ask", s.handleAsk)
}

// ServeHTTP 实现 http.Handler
func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// Asked 返回收到的 /ask 请求数
func (s *Server) Asked() int {
	return int(s.asked.Load())
}

// SetAnswer 添加或替换一个问答对
func (s *Server) SetAnswer(question, answer string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.answers[normalize(question)] = answer
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"message": "RAG Assistant stub is running",
	})
}

func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	s.asked.Add(1)
	log := s.opts.Logger.With("request_id", r.Header.Get("X-Request-ID"))

	if s.opts.ForceStatus != 0 {
		log.Info("forced failure", "status", s.opts.ForceStatus)
		writeJSON(w, s.opts.ForceStatus, map[string]string{"detail": http.StatusText(s.opts.ForceStatus)})
		return
	}

	var req struct {
		Question string `json:"question"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusUnprocessableEntity, map[string]string{"detail": "invalid request body"})
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		writeJSON(w, http.StatusBadRequest, map[string]string{"detail": "Question cannot be empty."})
		return
	}

	s.mu.RLock()
	answer, ok := s.answers[normalize(req.Question)]
	s.mu.RUnlock()
	if !ok {
		answer = DefaultAnswer
	}
	log.Info("answered", "question", req.Question, "matched", ok)
	writeJSON(w, http.StatusOK, map[string]string{"answer": answer})
}

func normalize(q string) string {
	return strings.ToLower(strings.TrimSpace(q))
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}
