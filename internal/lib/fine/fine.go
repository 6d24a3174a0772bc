package fine

import (
	"time"
)

// DaysLate считает число начатых суток просрочки между due и returned.
// Возврат в срок дает 0, любое опоздание считается минимум за одни сутки.
func DaysLate(due, returned time.Time) int {
	if !returned.After(due) {
		return 0
	}
	return int(returned.Sub(due).Hours()/24) + 1
}

// Calculate возвращает штраф за просрочку: число начатых суток опоздания,
// умноженное на суточную ставку. При возврате в срок штраф равен нулю.
func Calculate(due, returned time.Time, dailyRate float64) float64 {
	return float64(DaysLate(due, returned)) * dailyRate
}
