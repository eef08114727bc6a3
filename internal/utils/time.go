package utils

import "time"

const clockLayout = "15:04:05"

// NowMillis returns t as epoch milliseconds.
func NowMillis(t time.Time) int64 {
	return t.UnixMilli()
}

// Clock formats t as HH:mm:ss in local time.
func Clock(t time.Time) string {
	return t.Local().Format(clockLayout)
}
