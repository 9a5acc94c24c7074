package handler

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"cinematch-go/internal/model"
	"cinematch-go/internal/service"
	"cinematch-go/pkg/log"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许所有来源
	},
}

// StreamHandler 通过 WebSocket 流式返回推荐结果：
// 先一次性下发完整排名，再在每条结果的元数据查询完成时逐条推送卡片。
// 排名永远先于任何外部查询完成；单条查询失败/超时不影响其余卡片。
type StreamHandler struct {
	recommendService service.RecommendService
}

// NewStreamHandler 创建一个新的 StreamHandler。
func NewStreamHandler(recommendService service.RecommendService) *StreamHandler {
	return &StreamHandler{recommendService: recommendService}
}

// streamRequest 是客户端通过 WebSocket 发送的推荐请求。
type streamRequest struct {
	Title string `json:"title"`
	K     int    `json:"k"`
}

// streamMessage 是服务端下发的消息。
// type 取值: ranked(完整排名) / card(单条补全结果) / done / error
type streamMessage struct {
	Type    string                    `json:"type"`
	Message string                    `json:"message,omitempty"`
	Ranked  []model.RecommendationDTO `json:"ranked,omitempty"`
	Card    *model.RecommendationDTO  `json:"card,omitempty"`
}

// Handle 处理一个传入的 WebSocket 连接。
func (h *StreamHandler) Handle(c *gin.Context) {
	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		log.Error("WebSocket 升级失败", err)
		return
	}
	defer conn.Close()

	log.Infof("[StreamHandler] WebSocket 连接已建立, client: %s", c.ClientIP())

	// gorilla/websocket 要求同一连接同一时刻只有一个写入者
	var writeMu sync.Mutex
	send := func(msg streamMessage) {
		writeMu.Lock()
		defer writeMu.Unlock()
		if err := conn.WriteJSON(msg); err != nil {
			log.Warnf("[StreamHandler] 写入 WebSocket 消息失败: %v", err)
		}
	}

	for {
		_, message, err := conn.ReadMessage()
		if err != nil {
			log.Warnf("[StreamHandler] 从 WebSocket 读取消息失败: %v", err)
			break
		}

		var req streamRequest
		if err := json.Unmarshal(message, &req); err != nil || req.Title == "" {
			send(streamMessage{Type: "error", Message: "无效的请求"})
			continue
		}
		log.Infof("[StreamHandler] 收到流式推荐请求, title: '%s', k: %d", req.Title, req.K)

		// 1. 排名（纯内存读取，先于一切外部查询完成）
		results, err := h.recommendService.Rank(req.Title, req.K)
		if err != nil {
			if errors.Is(err, service.ErrIndexNotReady) {
				send(streamMessage{Type: "error", Message: "推荐索引尚未就绪"})
			} else {
				send(streamMessage{Type: "error", Message: "推荐失败"})
			}
			continue
		}
		send(streamMessage{Type: "ranked", Ranked: results})

		// 2. 并发补全元数据，每条完成即推送；互不等待、互不拖累
		var wg sync.WaitGroup
		for i := range results {
			wg.Add(1)
			go func(dto model.RecommendationDTO) {
				defer wg.Done()
				h.recommendService.Enrich(c.Request.Context(), &dto)
				send(streamMessage{Type: "card", Card: &dto})
			}(results[i])
		}
		wg.Wait()

		send(streamMessage{Type: "done"})
	}
}
