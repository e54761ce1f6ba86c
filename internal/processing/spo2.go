package processing

// ValidateSpO2 проверяет сырое значение сатурации.
// Значения меньше 1 считаются невалидными и заменяются нулём,
// остальные возвращаются без изменений.
func ValidateSpO2(raw int) int {
	if raw < 1 {
		return 0
	}
	return raw
}
