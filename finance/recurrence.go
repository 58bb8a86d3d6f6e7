package finance

import (
	"time"

	"pontocom/models"
)

// NextExecution avança uma data pelo intervalo da recorrência. Recorrência
// desconhecida cai no mensal, que é o contrato mais comum.
func NextExecution(from time.Time, recurrence string) time.Time {
	switch recurrence {
	case models.RECURRENCE_WEEKLY:
		return from.AddDate(0, 0, 7)
	case models.RECURRENCE_BIWEEKLY:
		return from.AddDate(0, 0, 14)
	case models.RECURRENCE_MONTHLY:
		return from.AddDate(0, 1, 0)
	case models.RECURRENCE_BIMONTHLY:
		return from.AddDate(0, 2, 0)
	case models.RECURRENCE_QUARTERLY:
		return from.AddDate(0, 3, 0)
	case models.RECURRENCE_SEMIANNUAL:
		return from.AddDate(0, 6, 0)
	case models.RECURRENCE_ANNUAL:
		return from.AddDate(1, 0, 0)
	default:
		return from.AddDate(0, 1, 0)
	}
}

// ValidRecurrence diz se o código de recorrência é um dos aceitos.
func ValidRecurrence(recurrence string) bool {
	switch recurrence {
	case models.RECURRENCE_WEEKLY,
		models.RECURRENCE_BIWEEKLY,
		models.RECURRENCE_MONTHLY,
		models.RECURRENCE_BIMONTHLY,
		models.RECURRENCE_QUARTERLY,
		models.RECURRENCE_SEMIANNUAL,
		models.RECURRENCE_ANNUAL:
		return true
	}
	return false
}
