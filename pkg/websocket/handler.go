package websocket

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"social-app/config"
	"social-app/pkg/jwt"
	"social-app/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true // 允许跨域
	},
}

// WsHandler WebSocket接入处理
// token通过query或Sec-WebSocket-Protocol传递（浏览器WebSocket不支持自定义请求头）
func WsHandler(jwtSvc *jwt.JWTService, wsCfg config.WebSocketConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := c.Query("token")
		if token == "" {
			token = strings.TrimPrefix(c.GetHeader("Sec-WebSocket-Protocol"), "Bearer ")
		}
		if token == "" {
			response.Unauthenticated(c, "缺少token")
			return
		}

		claims, err := jwtSvc.ValidateToken(token)
		if err != nil {
			response.Unauthenticated(c, "token无效或已过期")
			return
		}
		userID, _ := strconv.ParseUint(claims.Subject, 10, 32)
		if userID == 0 {
			response.Unauthenticated(c, "token无效")
			return
		}

		// 回显子协议，避免客户端提示 "Server sent no subprotocol"
		respHeader := http.Header{}
		if protocol := c.GetHeader("Sec-WebSocket-Protocol"); protocol != "" {
			respHeader.Set("Sec-WebSocket-Protocol", protocol)
		}

		conn, err := upgrader.Upgrade(c.Writer, c.Request, respHeader)
		if err != nil {
			return
		}

		client := &Client{
			UserID: uint(userID),
			Conn:   conn,
			Send:   make(chan []byte, 256),
		}
		GetManager().AddClient(uint(userID), client)
		defer GetManager().RemoveClient(uint(userID))

		// 写协程 + 定时发送ping心跳
		go func() {
			ticker := time.NewTicker(wsCfg.PingInterval)
			defer ticker.Stop()
			for {
				select {
				case msg, ok := <-client.Send:
					if !ok {
						return
					}
					_ = conn.WriteMessage(websocket.TextMessage, msg)
				case <-ticker.C:
					if err := conn.WriteControl(websocket.PingMessage, []byte("ping"), time.Now().Add(5*time.Second)); err != nil {
						return
					}
				}
			}
		}()

		// 读循环只消费心跳，超时未收到任何读事件则断开
		_ = conn.SetReadDeadline(time.Now().Add(wsCfg.ReadTimeout))
		conn.SetPongHandler(func(appData string) error {
			return conn.SetReadDeadline(time.Now().Add(wsCfg.ReadTimeout))
		})
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				break
			}
			_ = conn.SetReadDeadline(time.Now().Add(wsCfg.ReadTimeout))
		}
	}
}
