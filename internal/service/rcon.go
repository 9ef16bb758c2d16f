package service

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gorcon/rcon"

	"github.com/turingcompletejeff/blogsite/internal/config"
	internal_errors "github.com/turingcompletejeff/blogsite/internal/errors"
	"github.com/turingcompletejeff/blogsite/internal/logger"
)

// rconConn is the slice of *rcon.Conn the console uses; tests swap the
// dialer for a fake.
type rconConn interface {
	Execute(command string) (string, error)
	Close() error
}

// Console is a thin client over the game server's remote console. One
// connection per command: the server is on a LAN and commands are rare
// (admin dashboard only), so holding a session open buys nothing.
type Console struct {
	address  string
	password string
	dial     func(address, password string) (rconConn, error)
}

func NewConsole(cfg config.Rcon) *Console {
	return &Console{
		address:  cfg.Address,
		password: cfg.Password,
		dial: func(address, password string) (rconConn, error) {
			return rcon.Dial(address, password)
		},
	}
}

// Enabled reports whether a console address is configured at all. The
// dashboard hides the console panel when it is not.
func (c *Console) Enabled() bool {
	return c.address != ""
}

// Command runs a single console command and returns the server's response.
func (c *Console) Command(command string) (string, error) {
	command = strings.TrimSpace(command)
	if command == "" {
		return "", &internal_errors.ErrorWithStatusCode{Message: "Command is empty", StatusCode: http.StatusBadRequest}
	}
	if !c.Enabled() {
		return "", &internal_errors.ErrorWithStatusCode{Message: "Console is not configured", StatusCode: http.StatusServiceUnavailable}
	}

	conn, err := c.dial(c.address, c.password)
	if err != nil {
		logger.Log.Error("rcon dial failed", "address", c.address, "error", err)
		return "", &internal_errors.ErrorWithStatusCode{Message: "Game server unreachable", StatusCode: http.StatusBadGateway}
	}
	defer conn.Close()

	response, err := conn.Execute(command)
	if err != nil {
		return "", fmt.Errorf("rcon command failed: %w", err)
	}

	logger.Log.Info("rcon command executed", "command", command)
	return response, nil
}

// Status asks the server who is online. Minecraft answers "list" with a
// player summary; other games understood by the protocol answer their own
// equivalent.
func (c *Console) Status() (string, error) {
	return c.Command("list")
}
