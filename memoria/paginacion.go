package memoria

import (
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/sisoputnfrba/emulador-so-2025-2c/utils"
)

// TamanioRegionSimbolos son los bytes reservados al inicio del espacio
// virtual de cada proceso para la tabla de símbolos
const TamanioRegionSimbolos = 64

// MemoriaVirtual implementa paginación por demanda con desalojo LRU global.
// Cada proceso tiene su tabla de páginas; las direcciones virtuales
// arrancan en 0. Las fallas de página se atienden de a una por vez.
type MemoriaVirtual struct {
	mu      sync.RWMutex
	faltaMu sync.Mutex

	fisica   []byte
	tablas   map[int]*TablaPaginas
	tamanios map[int]int

	marcos   *AsignadorMarcos
	respaldo *AlmacenRespaldo

	tamanioPagina int

	contadorAccesos atomic.Uint64
	fallosPagina    atomic.Uint64
	paginasSubidas  atomic.Uint64
	paginasBajadas  atomic.Uint64
}

// NuevaMemoriaVirtual arma el administrador con su asignador de marcos y
// su almacén de respaldo
func NuevaMemoriaVirtual(memoriaTotal, tamanioPagina int, respaldo *AlmacenRespaldo) *MemoriaVirtual {
	return &MemoriaVirtual{
		fisica:        make([]byte, memoriaTotal),
		tablas:        make(map[int]*TablaPaginas),
		tamanios:      make(map[int]int),
		marcos:        NuevoAsignadorMarcos(memoriaTotal, tamanioPagina),
		respaldo:      respaldo,
		tamanioPagina: tamanioPagina,
	}
}

// Asignar crea la tabla de páginas del proceso. Todas las entradas nacen
// no presentes con su bloque de respaldo ya reservado (paginación por demanda).
func (mv *MemoriaVirtual) Asignar(pid int, tamanio int) error {
	mv.mu.Lock()
	defer mv.mu.Unlock()

	if tamanio < TamanioRegionSimbolos {
		return fmt.Errorf("%w: %d bytes", ErrTamanioInsuficiente, tamanio)
	}
	if _, existe := mv.tablas[pid]; existe {
		return fmt.Errorf("%w: pid %d", ErrYaAsignado, pid)
	}

	paginas := (tamanio + mv.tamanioPagina - 1) / mv.tamanioPagina
	tabla := &TablaPaginas{Entradas: make([]EntradaTabla, paginas)}
	for i := range tabla.Entradas {
		tabla.Entradas[i].OffsetDisco = mv.respaldo.AsignarBloque()
	}

	mv.tablas[pid] = tabla
	mv.tamanios[pid] = tamanio

	utils.InfoLog.Info("Memoria virtual asignada", "pid", pid, "tamanio", tamanio, "paginas", paginas)
	return nil
}

// Liberar devuelve los marcos presentes y los bloques de respaldo del proceso
func (mv *MemoriaVirtual) Liberar(pid int) {
	mv.mu.Lock()
	defer mv.mu.Unlock()

	tabla, existe := mv.tablas[pid]
	if !existe {
		return
	}

	for _, entrada := range tabla.Entradas {
		if entrada.Presente {
			mv.marcos.LiberarMarco(entrada.Marco)
		}
		mv.respaldo.LiberarBloque(entrada.OffsetDisco)
	}

	delete(mv.tablas, pid)
	delete(mv.tamanios, pid)

	utils.InfoLog.Info("Memoria virtual liberada", "pid", pid)
}

// Leer devuelve el valor de 16 bits en la dirección virtual dada
// (little-endian, dos bytes consecutivos)
func (mv *MemoriaVirtual) Leer(pid int, direccion int) (uint16, error) {
	if err := mv.validarAcceso(pid, direccion); err != nil {
		return 0, err
	}

	for {
		valor, presente := mv.leerSiPresente(pid, direccion)
		if presente {
			return valor, nil
		}
		if err := mv.atenderFalla(pid, direccion/mv.tamanioPagina); err != nil {
			return 0, err
		}
	}
}

// Escribir almacena un valor de 16 bits en la dirección virtual dada y
// marca la página como sucia
func (mv *MemoriaVirtual) Escribir(pid int, direccion int, valor uint16) error {
	if err := mv.validarAcceso(pid, direccion); err != nil {
		return err
	}

	for {
		if mv.escribirSiPresente(pid, direccion, valor) {
			return nil
		}
		if err := mv.atenderFalla(pid, direccion/mv.tamanioPagina); err != nil {
			return err
		}
	}
}

// validarAcceso chequea que la dirección caiga dentro del espacio virtual
// del proceso
func (mv *MemoriaVirtual) validarAcceso(pid int, direccion int) error {
	mv.mu.RLock()
	defer mv.mu.RUnlock()

	tamanio, existe := mv.tamanios[pid]
	if !existe {
		return fmt.Errorf("%w: pid %d", ErrProcesoDesconocido, pid)
	}
	if direccion < 0 || direccion >= tamanio {
		return fmt.Errorf("%w: pid %d, dirección %d, tamaño %d", ErrFueraDeRango, pid, direccion, tamanio)
	}
	return nil
}

// leerSiPresente intenta la lectura sin atender fallas. Devuelve false si
// la página no está presente.
func (mv *MemoriaVirtual) leerSiPresente(pid int, direccion int) (uint16, bool) {
	mv.mu.Lock()
	defer mv.mu.Unlock()

	tabla, existe := mv.tablas[pid]
	if !existe {
		return 0, false
	}
	entrada := &tabla.Entradas[direccion/mv.tamanioPagina]
	if !entrada.Presente {
		return 0, false
	}
	mv.tocarEntrada(entrada)

	base := entrada.Marco*mv.tamanioPagina + direccion%mv.tamanioPagina
	valor := uint16(mv.fisica[base])
	if base+1 < len(mv.fisica) {
		valor |= uint16(mv.fisica[base+1]) << 8
	}
	return valor, true
}

// escribirSiPresente intenta la escritura sin atender fallas
func (mv *MemoriaVirtual) escribirSiPresente(pid int, direccion int, valor uint16) bool {
	mv.mu.Lock()
	defer mv.mu.Unlock()

	tabla, existe := mv.tablas[pid]
	if !existe {
		return false
	}
	entrada := &tabla.Entradas[direccion/mv.tamanioPagina]
	if !entrada.Presente {
		return false
	}
	mv.tocarEntrada(entrada)
	entrada.Sucia = true

	base := entrada.Marco*mv.tamanioPagina + direccion%mv.tamanioPagina
	mv.fisica[base] = byte(valor)
	if base+1 < len(mv.fisica) {
		mv.fisica[base+1] = byte(valor >> 8)
	}
	return true
}

// tocarEntrada actualiza el tick de acceso y el bit de referencia
func (mv *MemoriaVirtual) tocarEntrada(entrada *EntradaTabla) {
	entrada.UltimoAcceso = mv.contadorAccesos.Add(1)
	entrada.Referenciada = true
}

// atenderFalla carga una página desde el respaldo, desalojando una víctima
// LRU si no quedan marcos libres. Las fallas se atienden de a una.
func (mv *MemoriaVirtual) atenderFalla(pid int, pagina int) error {
	mv.faltaMu.Lock()
	defer mv.faltaMu.Unlock()

	mv.mu.Lock()
	defer mv.mu.Unlock()

	tabla, existe := mv.tablas[pid]
	if !existe {
		return fmt.Errorf("%w: pid %d", ErrProcesoDesconocido, pid)
	}
	entrada := &tabla.Entradas[pagina]
	if entrada.Presente {
		// Otro hilo resolvió la misma falla
		return nil
	}

	marco, err := mv.marcos.AsignarMarco()
	if err != nil {
		if err := mv.desalojarVictima(); err != nil {
			return err
		}
		marco, err = mv.marcos.AsignarMarco()
		if err != nil {
			return fmt.Errorf("sin marcos tras desalojar víctima: %w", err)
		}
	}

	datos, err := mv.respaldo.Cargar(entrada.OffsetDisco)
	if err != nil {
		mv.marcos.LiberarMarco(marco)
		return err
	}
	copy(mv.fisica[marco*mv.tamanioPagina:(marco+1)*mv.tamanioPagina], datos)

	entrada.Presente = true
	entrada.Sucia = false
	entrada.Marco = marco
	entrada.Referenciada = true
	entrada.UltimoAcceso = mv.contadorAccesos.Add(1)

	mv.fallosPagina.Add(1)
	mv.paginasSubidas.Add(1)

	utils.InfoLog.Debug("Falla de página atendida", "pid", pid, "pagina", pagina, "marco", marco)
	return nil
}

// desalojarVictima elige la página presente con menor tick de acceso en
// todo el sistema. Empates se resuelven por (pid, página) ascendente.
func (mv *MemoriaVirtual) desalojarVictima() error {
	victimaPID := -1
	victimaPagina := -1
	var menorAcceso uint64

	for pid, tabla := range mv.tablas {
		for i := range tabla.Entradas {
			entrada := &tabla.Entradas[i]
			if !entrada.Presente {
				continue
			}
			if victimaPID < 0 ||
				entrada.UltimoAcceso < menorAcceso ||
				(entrada.UltimoAcceso == menorAcceso && (pid < victimaPID || (pid == victimaPID && i < victimaPagina))) {
				victimaPID = pid
				victimaPagina = i
				menorAcceso = entrada.UltimoAcceso
			}
		}
	}

	if victimaPID < 0 {
		return fmt.Errorf("%w: no hay páginas presentes para desalojar", ErrSinMarcos)
	}

	entrada := &mv.tablas[victimaPID].Entradas[victimaPagina]
	if entrada.Sucia {
		base := entrada.Marco * mv.tamanioPagina
		if err := mv.respaldo.Guardar(entrada.OffsetDisco, mv.fisica[base:base+mv.tamanioPagina]); err != nil {
			return err
		}
		mv.paginasBajadas.Add(1)
	}

	entrada.Presente = false
	entrada.Sucia = false
	entrada.Referenciada = false
	mv.marcos.LiberarMarco(entrada.Marco)

	utils.InfoLog.Debug("Página desalojada", "pid", victimaPID, "pagina", victimaPagina)
	return nil
}

// TamanioProceso devuelve el tamaño virtual del proceso, 0 si no tiene memoria
func (mv *MemoriaVirtual) TamanioProceso(pid int) int {
	mv.mu.RLock()
	defer mv.mu.RUnlock()
	return mv.tamanios[pid]
}

// ProcesosConMemoria lista los PID con memoria virtual asignada
func (mv *MemoriaVirtual) ProcesosConMemoria() []int {
	mv.mu.RLock()
	defer mv.mu.RUnlock()

	pids := make([]int, 0, len(mv.tablas))
	for pid := range mv.tablas {
		pids = append(pids, pid)
	}
	return pids
}

// Stats arma la foto actual de contadores y uso de marcos
func (mv *MemoriaVirtual) Stats() Estadisticas {
	mv.mu.RLock()
	defer mv.mu.RUnlock()

	libres := mv.marcos.MarcosLibres()
	usados := mv.marcos.MarcosTotales() - libres

	return Estadisticas{
		FallosPagina:   mv.fallosPagina.Load(),
		PaginasSubidas: mv.paginasSubidas.Load(),
		PaginasBajadas: mv.paginasBajadas.Load(),
		MarcosUsados:   usados,
		MarcosLibres:   libres,
		BytesTotales:   len(mv.fisica),
		BytesUsados:    usados * mv.tamanioPagina,
		BytesLibres:    libres * mv.tamanioPagina,
	}
}

// TablaDeProceso expone una copia de la tabla de páginas, para inspección
func (mv *MemoriaVirtual) TablaDeProceso(pid int) ([]EntradaTabla, bool) {
	mv.mu.RLock()
	defer mv.mu.RUnlock()

	tabla, existe := mv.tablas[pid]
	if !existe {
		return nil, false
	}
	entradas := make([]EntradaTabla, len(tabla.Entradas))
	copy(entradas, tabla.Entradas)
	return entradas, true
}
