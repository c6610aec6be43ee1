package memoria

import (
	"sync"

	"github.com/sisoputnfrba/emulador-so-2025-2c/utils"
)

// AsignadorMarcos administra los marcos físicos de memoria. Los marcos
// liberados se reutilizan en orden FIFO: el primero en liberarse es el
// primero en volver a asignarse.
type AsignadorMarcos struct {
	mu       sync.Mutex
	ocupados []bool
	libres   []int
	total    int
	tamanio  int
}

// NuevoAsignadorMarcos divide memoriaTotal en marcos de tamanioMarco bytes
func NuevoAsignadorMarcos(memoriaTotal int, tamanioMarco int) *AsignadorMarcos {
	total := memoriaTotal / tamanioMarco

	a := &AsignadorMarcos{
		ocupados: make([]bool, total),
		libres:   make([]int, 0, total),
		total:    total,
		tamanio:  tamanioMarco,
	}
	for i := 0; i < total; i++ {
		a.libres = append(a.libres, i)
	}
	return a
}

// AsignarMarco entrega el próximo marco libre
func (a *AsignadorMarcos) AsignarMarco() (int, error) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if len(a.libres) == 0 {
		return -1, ErrSinMarcos
	}

	marco := a.libres[0]
	a.libres = a.libres[1:]
	a.ocupados[marco] = true

	utils.InfoLog.Debug("Marco asignado", "marco", marco, "libres", len(a.libres))
	return marco, nil
}

// LiberarMarco devuelve un marco al final de la lista de libres.
// Liberar un marco no asignado no tiene efecto.
func (a *AsignadorMarcos) LiberarMarco(marco int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	if marco < 0 || marco >= a.total || !a.ocupados[marco] {
		return
	}

	a.ocupados[marco] = false
	a.libres = append(a.libres, marco)
	utils.InfoLog.Debug("Marco liberado", "marco", marco, "libres", len(a.libres))
}

// MarcosLibres cuenta los marcos disponibles
func (a *AsignadorMarcos) MarcosLibres() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return len(a.libres)
}

// MarcosTotales devuelve la cantidad total de marcos
func (a *AsignadorMarcos) MarcosTotales() int {
	return a.total
}

// TamanioMarco devuelve el tamaño de cada marco en bytes
func (a *AsignadorMarcos) TamanioMarco() int {
	return a.tamanio
}
