package redis

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// Session reads sit on every request path.
const (
	dialTimeout  = time.Second
	ioTimeout    = 500 * time.Millisecond
	pingTimeout  = 2 * time.Second
	minIdleConns = 2
)

// Client is the connection shared by the session store and the rate
// limiter. A nil *Client means "no Redis"; both consumers accept it.
type Client struct {
	rdb  *goredis.Client
	addr string
}

func New(addr, password string, db int) *Client {
	rdb := goredis.NewClient(&goredis.Options{
		Addr:         addr,
		Password:     password,
		DB:           db,
		DialTimeout:  dialTimeout,
		ReadTimeout:  ioTimeout,
		WriteTimeout: ioTimeout,
		MinIdleConns: minIdleConns,
	})
	return &Client{rdb: rdb, addr: addr}
}

// Ping is used at startup and by /healthz.
func (c *Client) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := c.rdb.Ping(ctx).Err(); err != nil {
		return fmt.Errorf("redis ping %s: %w", c.addr, err)
	}
	return nil
}

func (c *Client) Close() error {
	return c.rdb.Close()
}
