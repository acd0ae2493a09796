// Package websocket reaches a verifier behind a websocket serial bridge.
package websocket

import (
	"fmt"
	"net/url"

	"golang.org/x/net/websocket"
)

// Dial connects to a websocket bridge. The connection is used as a plain
// byte stream, each received frame payload is read in order.
func Dial(bridgeURL string) (*websocket.Conn, error) {
	u, err := url.Parse(bridgeURL)
	if err != nil {
		return nil, err
	}
	origin := "http://" + u.Host
	if u.Scheme == "wss" {
		origin = "https://" + u.Host
	}
	conn, err := websocket.Dial(bridgeURL, "", origin)
	if err != nil {
		return nil, fmt.Errorf("dial bridge %s: %w", bridgeURL, err)
	}
	conn.PayloadType = websocket.TextFrame
	return conn, nil
}
