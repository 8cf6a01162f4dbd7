package timeutil

import (
	"time"

	"bookkeeping/config"
)

// Location 返回配置的展示时区
// 时区名解析失败时退回配置的 UTC 偏移构造固定时区
func Location() *time.Location {
	cfg := config.GlobalConfig
	if cfg == nil {
		return time.UTC
	}
	if cfg.Timezone.Name != "" {
		if loc, err := time.LoadLocation(cfg.Timezone.Name); err == nil {
			return loc
		}
	}
	return time.FixedZone(cfg.Timezone.Name, cfg.Timezone.OffsetHours*3600)
}

// UTCToLocal UTC 时间转为展示时区时间
func UTCToLocal(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.In(Location())
}

// LocalToUTC 展示时区时间转为 UTC 存储时间
func LocalToUTC(t time.Time) time.Time {
	if t.IsZero() {
		return t
	}
	return t.UTC()
}

// NowLocal 当前展示时区时间
func NowLocal() time.Time {
	return time.Now().In(Location())
}

// FormatDateTime 按展示时区格式化时间，零值返回 "-"
func FormatDateTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return UTCToLocal(t).Format("02-01-2006 15:04")
}
