package timeutil

import (
	"testing"
	"time"

	"bookkeeping/config"

	"github.com/stretchr/testify/assert"
)

func setTestTimezone(name string, offset int) func() {
	config.GlobalConfig = &config.Config{
		Timezone: config.TimezoneConfig{Name: name, OffsetHours: offset},
	}
	return func() { config.GlobalConfig = nil }
}

func TestLocation(t *testing.T) {
	// 未初始化配置时使用 UTC
	config.GlobalConfig = nil
	assert.Equal(t, time.UTC, Location())

	// 合法时区名
	defer setTestTimezone("Asia/Jakarta", 7)()
	loc := Location()
	_, offset := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC).In(loc).Zone()
	assert.Equal(t, 7*3600, offset)
}

func TestLocationFallbackOffset(t *testing.T) {
	// 无法解析的时区名退回固定偏移
	defer setTestTimezone("Not/AZone", 7)()
	loc := Location()
	_, offset := time.Now().In(loc).Zone()
	assert.Equal(t, 7*3600, offset)
}

func TestUTCToLocal(t *testing.T) {
	defer setTestTimezone("Asia/Jakarta", 7)()

	utc := time.Date(2024, 1, 15, 10, 0, 0, 0, time.UTC)
	local := UTCToLocal(utc)
	assert.Equal(t, 17, local.Hour())
	assert.True(t, utc.Equal(local))

	// 零值原样返回
	assert.True(t, UTCToLocal(time.Time{}).IsZero())
}

func TestLocalToUTC(t *testing.T) {
	defer setTestTimezone("Asia/Jakarta", 7)()

	local := time.Date(2024, 1, 15, 17, 0, 0, 0, Location())
	utc := LocalToUTC(local)
	assert.Equal(t, 10, utc.Hour())
	assert.Equal(t, time.UTC, utc.Location())
}

func TestFormatDateTime(t *testing.T) {
	defer setTestTimezone("Asia/Jakarta", 7)()

	assert.Equal(t, "-", FormatDateTime(time.Time{}))
	assert.Equal(t, "15-01-2024 17:04", FormatDateTime(time.Date(2024, 1, 15, 10, 4, 0, 0, time.UTC)))
}
