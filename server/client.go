package server

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/gorilla/websocket"
	"github.com/pkg/errors"
)

const (
	// Time allowed to write a message to the peer.
	writeWait = 10 * time.Second
	// Time allowed to read the next pong message from the peer.
	pongWait = 60 * time.Second
	// Send pings to peer with this period. Must be less than pongWait.
	pingPeriod = (pongWait * 9) / 10
	// Maximum message size allowed from peer.
	maxMessageSize = 512
	// Snapshots queued per client before it counts as slow.
	sendBuffer = 256
)

// Command types sent by the page
const (
	CmdToggle           = "toggle"
	CmdHover            = "hover"
	CmdUnhover          = "unhover"
	CmdPlay             = "play"
	CmdPause            = "pause"
	CmdPlayPause        = "play_pause"
	CmdStep             = "step"
	CmdClear            = "clear"
	CmdIncreaseTickRate = "increase_tick_rate"
	CmdDecreaseTickRate = "decrease_tick_rate"
)

// ErrUnknownCommand is returned for a command type the board does not handle
var ErrUnknownCommand = errors.New("unknown command")

// Command is one input event from the page. X and Y are only read by
// toggle and hover.
type Command struct {
	Type string `json:"type"`
	X    int    `json:"x"`
	Y    int    `json:"y"`
}

// Client is one websocket connection
type Client struct {
	id    string
	hub   *Hub
	board Board
	conn  *websocket.Conn
	send  chan []byte
}

func newClient(id string, hub *Hub, board Board, conn *websocket.Conn) *Client {
	return &Client{
		id:    id,
		hub:   hub,
		board: board,
		conn:  conn,
		send:  make(chan []byte, sendBuffer),
	}
}

// readPump decodes commands from the connection and applies them to the board.
func (c *Client) readPump() {
	defer func() {
		c.hub.leave(c)
		c.conn.Close()
	}()
	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})
	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.logger.Warnf("client %s read error: %v", c.id, err)
				c.hub.metrics.RecordWSError()
			}
			return
		}
		c.hub.metrics.RecordWSMessage(true)

		var cmd Command
		if err := json.Unmarshal(message, &cmd); err != nil {
			c.hub.logger.Warnf("client %s sent malformed command: %v", c.id, err)
			c.hub.metrics.RecordCommand(err)
			continue
		}

		err = dispatch(c.board, cmd)
		c.hub.metrics.RecordCommand(err)
		if err != nil {
			c.hub.logger.Warnf("client %s: %v", c.id, err)
			continue
		}
		if cmd.Type != CmdHover && cmd.Type != CmdUnhover {
			c.hub.logger.Event(cmd.Type, c.id, fmt.Sprintf("(%d, %d)", cmd.X, cmd.Y))
		}
	}
}

// dispatch routes a command to the board by coordinates
func dispatch(board Board, cmd Command) error {
	switch cmd.Type {
	case CmdToggle:
		return errors.Wrap(board.Toggle(cmd.X, cmd.Y), "[dispatch] toggle")
	case CmdHover:
		return errors.Wrap(board.Highlight(cmd.X, cmd.Y), "[dispatch] hover")
	case CmdUnhover:
		board.Unhighlight()
	case CmdPlay:
		board.Play()
	case CmdPause:
		board.Pause()
	case CmdPlayPause:
		board.PlayPause()
	case CmdStep:
		board.Step()
	case CmdClear:
		board.Clear()
	case CmdIncreaseTickRate:
		board.IncreaseTickRate()
	case CmdDecreaseTickRate:
		board.DecreaseTickRate()
	default:
		return errors.Wrapf(ErrUnknownCommand, "[dispatch] %q", cmd.Type)
	}
	return nil
}

// writePump sends queued snapshots and keeps the connection alive with pings.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()
	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// The hub closed the channel.
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				c.hub.metrics.RecordWSError()
				return
			}
			c.hub.metrics.RecordWSMessage(false)
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
