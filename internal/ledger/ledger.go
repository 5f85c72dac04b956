// Package ledger считает оценочный остаток наличных по движениям кассы.
package ledger

import (
	"errors"
	"strings"

	"puntoventa/internal/model"
)

// ErrNoOpenRegister возвращается, когда касса не находится в открытом состоянии.
var ErrNoOpenRegister = errors.New("no open register")

// ErrInvalidAmount возвращается для нулевой или отрицательной суммы движения.
var ErrInvalidAmount = errors.New("movement amount must be positive")

// ErrInvalidDescription возвращается для пустого описания движения.
var ErrInvalidDescription = errors.New("movement description must not be empty")

// ErrInvalidMovementType возвращается для типа вне пары ingreso/egreso.
var ErrInvalidMovementType = errors.New("invalid movement type")

// EstimatedBalance возвращает оценочный остаток открытой кассы:
// сумма открытия плюс ручные приходы минус ручные расходы.
//
// Выручка от завершённых продаж в остаток не входит. Это документированное
// ограничение, унаследованное от исходной реализации: остаток отражает
// только вручную занесённые движения.
func EstimatedBalance(status model.RegisterStatus, movements []model.CashMovement) (float64, error) {
	if status.State != model.RegisterOpen {
		return 0, ErrNoOpenRegister
	}

	income, expense := Totals(movements)
	return status.OpeningAmount + income - expense, nil
}

// Totals возвращает по отдельности суммы приходов и расходов.
func Totals(movements []model.CashMovement) (income, expense float64) {
	for _, m := range movements {
		switch m.Type {
		case model.MovementIncome:
			income += m.Amount
		case model.MovementExpense:
			expense += m.Amount
		}
	}
	return income, expense
}

// ValidateMovement проверяет движение перед отправкой во внешний API.
// Проверка выполняется локально, чтобы не тратить сетевой вызов на заведомо
// некорректный ввод; авторитетную валидацию всё равно выполняет сервер.
func ValidateMovement(t model.MovementType, amount float64, description string) error {
	if t != model.MovementIncome && t != model.MovementExpense {
		return ErrInvalidMovementType
	}
	if amount <= 0 {
		return ErrInvalidAmount
	}
	if strings.TrimSpace(description) == "" {
		return ErrInvalidDescription
	}
	return nil
}
