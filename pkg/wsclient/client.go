package wsclient

import (
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/Strophox/tetro-tui-sub001/pkg/game"
	"github.com/Strophox/tetro-tui-sub001/pkg/protocol"
)

// Client is a websocket client for playing on a remote game server.
type Client struct {
	conn       *websocket.Conn
	url        string
	mu         sync.RWMutex
	connected  bool
	maxRetries int
	retryDelay time.Duration

	// Callbacks.
	onMessage      func(*protocol.Message)
	onConnected    func()
	onDisconnected func()
	onError        func(error)
}

// New creates a client for the given websocket URL.
func New(url string) *Client {
	return &Client{
		url:        url,
		maxRetries: 5,
		retryDelay: 3 * time.Second,
	}
}

// SetOnMessage registers the handler for incoming messages.
func (c *Client) SetOnMessage(fn func(*protocol.Message)) {
	c.onMessage = fn
}

// SetOnConnected registers the connect callback.
func (c *Client) SetOnConnected(fn func()) {
	c.onConnected = fn
}

// SetOnDisconnected registers the disconnect callback.
func (c *Client) SetOnDisconnected(fn func()) {
	c.onDisconnected = fn
}

// SetOnError registers the error callback.
func (c *Client) SetOnError(fn func(error)) {
	c.onError = fn
}

// SetMaxRetries sets how often Connect retries before giving up.
func (c *Client) SetMaxRetries(n int) {
	c.maxRetries = n
}

// SetRetryDelay sets the wait between connection retries.
func (c *Client) SetRetryDelay(d time.Duration) {
	c.retryDelay = d
}

// Connect establishes the websocket connection, retrying on failure, and
// starts the read loop.
func (c *Client) Connect() error {
	var lastErr error
	for attempt := 0; attempt <= c.maxRetries; attempt++ {
		if attempt > 0 {
			time.Sleep(c.retryDelay)
		}
		conn, _, err := websocket.DefaultDialer.Dial(c.url, nil)
		if err != nil {
			lastErr = err
			if c.onError != nil {
				c.onError(err)
			}
			continue
		}

		c.mu.Lock()
		c.conn = conn
		c.connected = true
		c.mu.Unlock()

		if c.onConnected != nil {
			c.onConnected()
		}
		go c.listen()
		return nil
	}
	return lastErr
}

// IsConnected reports whether the connection is up.
func (c *Client) IsConnected() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.connected
}

// SendInput transmits a button transition with its game timestamp.
func (c *Client) SendInput(buttons game.ButtonSet, at time.Duration) error {
	msg, err := protocol.NewMessage(protocol.MessageTypeInput, protocol.InputMessage{
		Buttons:  buttons.Packed(),
		AtMicros: at.Microseconds(),
	})
	if err != nil {
		return err
	}
	return c.sendMessage(msg)
}

func (c *Client) sendMessage(msg *protocol.Message) error {
	data, err := msg.Serialize()
	if err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if !c.connected || c.conn == nil {
		return ErrNotConnected
	}
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// listen receives messages until the connection drops, answering pings
// automatically.
func (c *Client) listen() {
	defer c.handleDisconnect()

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			if c.onError != nil {
				c.onError(err)
			}
			return
		}

		msg, err := protocol.Deserialize(data)
		if err != nil {
			if c.onError != nil {
				c.onError(err)
			}
			continue
		}

		if msg.Type == protocol.MessageTypePing {
			pong, err := protocol.NewMessage(protocol.MessageTypePong, protocol.PingMessage{Timestamp: time.Now().UnixMilli()})
			if err == nil {
				c.sendMessage(pong)
			}
			continue
		}

		if c.onMessage != nil {
			c.onMessage(msg)
		}
	}
}

func (c *Client) handleDisconnect() {
	c.mu.Lock()
	wasConnected := c.connected
	c.connected = false
	if c.conn != nil {
		c.conn.Close()
		c.conn = nil
	}
	c.mu.Unlock()

	if wasConnected && c.onDisconnected != nil {
		c.onDisconnected()
	}
}

// Close shuts the connection down.
func (c *Client) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.connected = false
	if c.conn != nil {
		c.conn.WriteMessage(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
		c.conn.Close()
		c.conn = nil
	}
}
