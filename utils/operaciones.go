package utils

import (
	"log/slog"
	"time"

	"golang.org/x/exp/constraints"
)

// DuracionTick es la unidad de tiempo abstracta del emulador.
// SLEEP(n) y la frecuencia del generador de procesos se escalan por este valor.
const DuracionTick = 100 * time.Millisecond

// AplicarRetardo bloquea el hilo actual durante ticks unidades de tiempo
func AplicarRetardo(operacion string, ticks int) {
	if ticks <= 0 {
		return
	}
	slog.Debug("Aplicando retardo", "operación", operacion, "ticks", ticks)
	time.Sleep(time.Duration(ticks) * DuracionTick)
}

// SumaSaturada suma dos valores de 16 bits saturando en 65535
func SumaSaturada(a, b uint16) uint16 {
	resultado := uint32(a) + uint32(b)
	if resultado > 65535 {
		return 65535
	}
	return uint16(resultado)
}

// RestaSaturada resta dos valores de 16 bits saturando en 0
func RestaSaturada(a, b uint16) uint16 {
	if b > a {
		return 0
	}
	return a - b
}

// Clamp limita un valor al rango [minimo, maximo]
func Clamp[T constraints.Ordered](valor, minimo, maximo T) T {
	if valor < minimo {
		return minimo
	}
	if valor > maximo {
		return maximo
	}
	return valor
}
