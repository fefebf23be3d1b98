package cache

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestDisabledCacheIsAlwaysMiss(t *testing.T) {
	ctx := context.Background()
	assert.NoError(t, Connect(ctx, ""))

	key := NowServingKey(time.Now())
	Set(ctx, key, 7, NowServingTTL)
	var got int
	assert.False(t, Get(ctx, key, &got))
	assert.Equal(t, 0, got)

	InvalidateMenu(ctx)
	Del(ctx, key)
	assert.NoError(t, Close())
}

func TestMenuKey(t *testing.T) {
	assert.Equal(t, "canteen:menu:all", MenuKey(""))
	assert.Equal(t, "canteen:menu:snacks", MenuKey("snacks"))
}

func TestNowServingKeyChangesAtMidnight(t *testing.T) {
	ist := time.FixedZone("IST", 5*3600+1800)
	before := time.Date(2026, 3, 2, 23, 59, 55, 0, ist)
	after := before.Add(10 * time.Second)

	assert.Equal(t, "canteen:now-serving:2026-03-02", NowServingKey(before))
	assert.Equal(t, "canteen:now-serving:2026-03-03", NowServingKey(after))
}
