// Package expiry, "7d" / "24h" / "15m" formatındaki süre string'lerini parse eder.
//
// time.ParseDuration gün birimini ("d") tanımaz ve "1h30m" gibi bileşik
// ifadelere izin verir. Config'te beklenen format daha dar: tek bir sayı ve
// tek bir birim. Tanınmayan her değer hata yerine fallback'e düşer;
// Parse ikinci dönüş değeriyle bunu caller'a bildirir, caller log'lar.
package expiry

import (
	"regexp"
	"strconv"
	"time"
)

var pattern = regexp.MustCompile(`^(\d+)([dhm])$`)

// Parse, s'yi süreye çevirir. Format eşleşmezse (fallback, false) döner.
//
//	Parse("7d", x)  → 168h, true
//	Parse("24h", x) → 24h, true
//	Parse("15m", x) → 15m, true
//	Parse("1w", x)  → x, false
func Parse(s string, fallback time.Duration) (time.Duration, bool) {
	m := pattern.FindStringSubmatch(s)
	if m == nil {
		return fallback, false
	}

	n, err := strconv.ParseInt(m[1], 10, 64)
	if err != nil {
		// Sayı int64'e sığmıyor
		return fallback, false
	}

	var unit time.Duration
	switch m[2] {
	case "d":
		unit = 24 * time.Hour
	case "h":
		unit = time.Hour
	case "m":
		unit = time.Minute
	}

	// Taşma kontrolü: n * unit int64 sınırını aşarsa fallback
	if n > int64(1<<62)/int64(unit) {
		return fallback, false
	}

	return time.Duration(n) * unit, true
}
