// lyceum-crm/config/rates.go
package config

import (
	"log/slog"
	"os"
	"strconv"
)

// fallbackHourlyRate - ставка по умолчанию (тенге/час), если у преподавателя
// не задана индивидуальная ставка и переменная окружения отсутствует.
const fallbackHourlyRate = 210.0

// DefaultHourlyRate возвращает системную почасовую ставку из окружения
// (DEFAULT_HOURLY_RATE) или значение по умолчанию.
func DefaultHourlyRate() float64 {
	raw := os.Getenv("DEFAULT_HOURLY_RATE")
	if raw == "" {
		return fallbackHourlyRate
	}

	rate, err := strconv.ParseFloat(raw, 64)
	if err != nil || rate <= 0 {
		slog.Warn("Некорректное значение DEFAULT_HOURLY_RATE, используем ставку по умолчанию", "value", raw)
		return fallbackHourlyRate
	}
	return rate
}
