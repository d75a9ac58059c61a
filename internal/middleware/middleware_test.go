package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMemoryDeduperWindow(t *testing.T) {
	now := time.Unix(1000, 0)
	d := newMemoryDeduper(time.Second, func() time.Time { return now })
	ctx := context.Background()

	dup, err := d.Seen(ctx, "menu:1:admin")
	require.NoError(t, err)
	assert.False(t, dup)

	dup, _ = d.Seen(ctx, "menu:1:admin")
	assert.True(t, dup)

	dup, _ = d.Seen(ctx, "menu:1:shop")
	assert.False(t, dup, "different key is independent")

	now = now.Add(1100 * time.Millisecond)
	dup, _ = d.Seen(ctx, "menu:1:admin")
	assert.False(t, dup, "window expired")
}

func TestNewDeduperFallsBackToMemory(t *testing.T) {
	d := NewDeduper(nil, "tg:update", 0)
	_, ok := d.(*memoryDeduper)
	assert.True(t, ok)

	client, err := NewRedisClient("", "", 0)
	assert.NoError(t, err)
	assert.Nil(t, client)
}

func TestTelegramUpdateDedup(t *testing.T) {
	e := echo.New()
	calls := 0
	handler := TelegramUpdateDedup(NewMemoryDeduper(time.Minute))(func(c echo.Context) error {
		calls++
		return c.NoContent(http.StatusOK)
	})

	send := func(body string) {
		req := httptest.NewRequest(http.MethodPost, "/webhook/x", strings.NewReader(body))
		rec := httptest.NewRecorder()
		require.NoError(t, handler(e.NewContext(req, rec)))
		assert.Equal(t, http.StatusOK, rec.Code)
	}

	send(`{"update_id":7}`)
	send(`{"update_id":7}`)
	send(`{"update_id":8}`)
	send(`not json`)
	assert.Equal(t, 3, calls)
}

func TestTelegramIPCheck(t *testing.T) {
	assert.True(t, IsTelegramIP("149.154.167.99"))
	assert.True(t, IsTelegramIP("91.108.6.1"))
	assert.True(t, IsTelegramIP("127.0.0.1"))
	assert.False(t, IsTelegramIP("8.8.8.8"))

	e := echo.New()
	h := TelegramIPCheck()(func(c echo.Context) error { return c.NoContent(http.StatusOK) })
	req := httptest.NewRequest(http.MethodPost, "/", nil)
	req.RemoteAddr = "8.8.8.8:1234"
	rec := httptest.NewRecorder()
	require.NoError(t, h(e.NewContext(req, rec)))
	assert.Equal(t, http.StatusForbidden, rec.Code)
}
