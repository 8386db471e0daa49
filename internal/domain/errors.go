package domain

import "errors"

// Errores de dominio (sin dependencias externas).
var (
	ErrNotFound     = errors.New("recurso no encontrado")
	ErrUnknownSKU   = errors.New("sku desconocido")
	ErrUnknownBatch = errors.New("lote desconocido")
	ErrInvalidInput = errors.New("entrada inválida")
	ErrDuplicate    = errors.New("recurso duplicado")
	ErrConflict     = errors.New("conflicto con el estado actual")
	ErrOutOfStock   = errors.New("sin stock disponible para asignar")
)
