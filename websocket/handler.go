package websocket

import (
	"net/http"
	"os"
	"strings"

	"github.com/golang-jwt/jwt"
	"github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

var upgrader = websocket.Upgrader{
	CheckOrigin: func(r *http.Request) bool {
		return true
	},
}

// wsClaims mirrors the JWT claims issued at login, duplicated here so the
// websocket package does not import the HTTP middleware.
type wsClaims struct {
	UserID string `json:"userId"`
	jwt.StandardClaims
}

// HandleWebSocket upgrades the connection and registers the client. Clients
// connect unauthenticated and send "AUTH:<jwt>" as their first message.
func HandleWebSocket(c echo.Context, hub *Hub, userID primitive.ObjectID) error {
	conn, err := upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return err
	}

	client := &Client{
		UserID:        userID,
		Conn:          conn,
		Authenticated: userID != primitive.NilObjectID,
	}

	hub.register <- client

	if client.Authenticated {
		client.WriteEvent(Event{
			Type:    "connected",
			Message: "WebSocket connection established",
			UserID:  userID.Hex(),
		})
	} else {
		client.WriteEvent(Event{
			Type:         "connected",
			Message:      "WebSocket connection established. Authenticate to receive messages.",
			RequiresAuth: true,
		})
	}

	go func() {
		defer func() {
			hub.unregister <- client
		}()

		for {
			messageType, message, err := conn.ReadMessage()
			if err != nil {
				break
			}

			if messageType != websocket.TextMessage {
				continue
			}

			messageStr := string(message)
			if strings.HasPrefix(messageStr, "AUTH:") {
				token := strings.TrimPrefix(messageStr, "AUTH:")
				uid, err := validateSocketToken(token)
				if err != nil {
					client.WriteEvent(Event{
						Type:         "auth_response",
						Message:      "Authentication failed",
						RequiresAuth: true,
					})
					continue
				}
				hub.AuthenticateClient(client, uid)
				client.WriteEvent(Event{
					Type:    "auth_response",
					Message: "Authenticated",
					UserID:  uid.Hex(),
				})
			}
		}
	}()

	return nil
}

// validateSocketToken verifies the JWT sent over the socket and returns the
// user's id.
func validateSocketToken(tokenString string) (primitive.ObjectID, error) {
	claims := &wsClaims{}
	token, err := jwt.ParseWithClaims(tokenString, claims, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, jwt.ErrSignatureInvalid
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return primitive.NilObjectID, jwt.ErrSignatureInvalid
	}
	return primitive.ObjectIDFromHex(claims.UserID)
}
