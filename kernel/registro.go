package kernel

import (
	"fmt"
	"sync"

	"github.com/sisoputnfrba/emulador-so-2025-2c/memoria"
	"github.com/sisoputnfrba/emulador-so-2025-2c/utils"
)

// RegistroProcesos es la lista canónica de procesos del emulador: altas en
// orden de creación, búsqueda por nombre, mapa de cores, contador de
// quantums y admisión a memoria. Implementa los callbacks que necesita el
// planificador (Notificador) para cortar la dependencia circular.
type RegistroProcesos struct {
	mu         sync.Mutex
	porPID     map[int]*Proceso
	porNombre  map[string]*Proceso
	orden      []*Proceso
	terminados []*Proceso
	cores      map[int]int
	pendientes []*Proceso

	proximoPID      int
	contadorQuantum int
	numCores        int
	muestras        []float64

	cola     *ColaReady
	contigua *memoria.AsignadorContiguo
	virtual  *memoria.MemoriaVirtual
	admision *utils.Semaforo
}

// NuevoRegistro arma el registro para fase 1 (asignador contiguo) o fase 2
// (memoria virtual); a lo sumo uno de los dos administradores es no nil.
// Sin administrador, la admisión no reserva memoria.
func NuevoRegistro(numCores int, cola *ColaReady, contigua *memoria.AsignadorContiguo, virtual *memoria.MemoriaVirtual, gradoMultiprogramacion int) *RegistroProcesos {
	r := &RegistroProcesos{
		porPID:    make(map[int]*Proceso),
		porNombre: make(map[string]*Proceso),
		cores:     make(map[int]int),
		numCores:  numCores,
		cola:      cola,
		contigua:  contigua,
		virtual:   virtual,
	}
	if contigua != nil {
		r.admision = utils.NewSemaforo(gradoMultiprogramacion)
	}
	return r
}

// NuevoPID entrega un identificador único y monótono
func (r *RegistroProcesos) NuevoPID() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.proximoPID++
	return r.proximoPID
}

// AdmitirProceso registra el proceso y lo encola si la memoria alcanza.
// En fase 1 un proceso sin lugar queda pendiente y se reintenta con cada
// liberación y con cada admisión exitosa. Devuelve true si el proceso entró
// a la cola de ready.
func (r *RegistroProcesos) AdmitirProceso(p *Proceso) (bool, error) {
	r.mu.Lock()

	if _, existe := r.porNombre[p.Nombre]; existe {
		r.mu.Unlock()
		return false, fmt.Errorf("ya existe un proceso llamado %q", p.Nombre)
	}

	// Un proceso sin instrucciones nace no vivo: se registra pero jamás
	// consume memoria ni pasa por la cola de ready
	if !p.Vivo() {
		r.registrar(p)
		r.terminados = append(r.terminados, p)
		r.mu.Unlock()
		return false, nil
	}

	if admitido, err := r.asignarMemoria(p); !admitido {
		if err != nil {
			r.mu.Unlock()
			return false, err
		}
		r.pendientes = append(r.pendientes, p)
		r.mu.Unlock()
		utils.InfoLog.Info("Proceso en espera de memoria", "pid", p.PID, "nombre", p.Nombre)
		return false, nil
	}

	r.registrar(p)
	r.mu.Unlock()

	r.cola.Encolar(p)
	utils.InfoLog.Info("Proceso admitido", "pid", p.PID, "nombre", p.Nombre)
	r.reintentarPendientes()
	return true, nil
}

// asignarMemoria intenta reservar memoria según la fase. Se invoca con el
// mutex tomado.
func (r *RegistroProcesos) asignarMemoria(p *Proceso) (bool, error) {
	if r.contigua != nil {
		if !r.admision.TryWait() {
			return false, nil
		}
		if !r.contigua.Asignar(p.PID, p.Nombre) {
			r.admision.Signal()
			return false, nil
		}
		return true, nil
	}

	if r.virtual != nil {
		if err := r.virtual.Asignar(p.PID, p.TamanioVirtual); err != nil {
			return false, err
		}
	}
	return true, nil
}

func (r *RegistroProcesos) registrar(p *Proceso) {
	r.porPID[p.PID] = p
	r.porNombre[p.Nombre] = p
	r.orden = append(r.orden, p)
}

// AsignarCore marca al proceso como en ejecución sobre un core
func (r *RegistroProcesos) AsignarCore(pid int, core int) {
	r.mu.Lock()
	r.cores[pid] = core
	if p, existe := r.porPID[pid]; existe {
		p.asignarCore(core)
	}
	r.muestras = append(r.muestras, float64(len(r.cores))/float64(r.numCores))
	r.mu.Unlock()
}

// LiberarCore desasigna el core del proceso
func (r *RegistroProcesos) LiberarCore(pid int) {
	r.mu.Lock()
	delete(r.cores, pid)
	if p, existe := r.porPID[pid]; existe {
		p.asignarCore(-1)
	}
	r.muestras = append(r.muestras, float64(len(r.cores))/float64(r.numCores))
	r.mu.Unlock()
}

// LiberarMemoria devuelve la memoria del proceso retirado y reintenta la
// admisión de los pendientes
func (r *RegistroProcesos) LiberarMemoria(p *Proceso) {
	if r.contigua != nil {
		r.contigua.Liberar(p.PID)
		r.admision.Signal()
	} else if r.virtual != nil {
		r.virtual.Liberar(p.PID)
	}

	r.mu.Lock()
	r.terminados = append(r.terminados, p)
	r.mu.Unlock()

	utils.InfoLog.Info("Proceso retirado", "pid", p.PID, "nombre", p.Nombre)
	r.reintentarPendientes()
}

// reintentarPendientes admite en orden FIFO a los procesos que esperaban
// memoria, hasta el primero que sigue sin entrar
func (r *RegistroProcesos) reintentarPendientes() {
	for {
		r.mu.Lock()
		if len(r.pendientes) == 0 {
			r.mu.Unlock()
			return
		}

		p := r.pendientes[0]
		admitido, err := r.asignarMemoria(p)
		if !admitido {
			r.mu.Unlock()
			if err != nil {
				utils.ErrorLog.Error("Admisión pendiente falló", "pid", p.PID, "error", err)
			}
			return
		}

		r.pendientes = r.pendientes[1:]
		r.registrar(p)
		r.mu.Unlock()

		r.cola.Encolar(p)
		utils.InfoLog.Info("Proceso pendiente admitido", "pid", p.PID, "nombre", p.Nombre)
	}
}

// IncrementarQuantum avanza el contador global de rodajas Round-Robin.
// En fase 1, cada quantum deja su snapshot de memoria.
func (r *RegistroProcesos) IncrementarQuantum() int {
	r.mu.Lock()
	r.contadorQuantum++
	quantum := r.contadorQuantum
	r.mu.Unlock()

	if r.contigua != nil {
		if err := r.contigua.GenerarSnapshot(quantum); err != nil {
			utils.ErrorLog.Error("No se pudo generar el snapshot de memoria", "quantum", quantum, "error", err)
		}
	}
	return quantum
}

// ContadorQuantum devuelve la cantidad de rodajas RR completadas
func (r *RegistroProcesos) ContadorQuantum() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.contadorQuantum
}

// BuscarPorNombre localiza un proceso por su nombre
func (r *RegistroProcesos) BuscarPorNombre(nombre string) (*Proceso, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, existe := r.porNombre[nombre]
	return p, existe
}

// Procesos devuelve todos los procesos en orden de creación
func (r *RegistroProcesos) Procesos() []*Proceso {
	r.mu.Lock()
	defer r.mu.Unlock()
	copia := make([]*Proceso, len(r.orden))
	copy(copia, r.orden)
	return copia
}

// EnEjecucion devuelve los procesos vivos
func (r *RegistroProcesos) EnEjecucion() []*Proceso {
	r.mu.Lock()
	defer r.mu.Unlock()

	var vivos []*Proceso
	for _, p := range r.orden {
		if p.Vivo() {
			vivos = append(vivos, p)
		}
	}
	return vivos
}

// Terminados devuelve los procesos retirados en orden de finalización
func (r *RegistroProcesos) Terminados() []*Proceso {
	r.mu.Lock()
	defer r.mu.Unlock()
	copia := make([]*Proceso, len(r.terminados))
	copy(copia, r.terminados)
	return copia
}

// CoreDeProceso devuelve el core asignado a un proceso, -1 si no corre
func (r *RegistroProcesos) CoreDeProceso(pid int) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	if core, existe := r.cores[pid]; existe {
		return core
	}
	return -1
}

// CoresUsados cuenta los cores con un proceso asignado
func (r *RegistroProcesos) CoresUsados() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.cores)
}

// NumCores devuelve la cantidad de cores configurada
func (r *RegistroProcesos) NumCores() int {
	return r.numCores
}

// Utilizacion devuelve la fracción de cores ocupados en este instante
func (r *RegistroProcesos) Utilizacion() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return float64(len(r.cores)) / float64(r.numCores)
}

// HistorialUtilizacion devuelve las muestras tomadas en cada transición
// de core, para los agregados del reporte
func (r *RegistroProcesos) HistorialUtilizacion() []float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	copia := make([]float64, len(r.muestras))
	copy(copia, r.muestras)
	return copia
}

// Pendientes devuelve cuántos procesos esperan memoria
func (r *RegistroProcesos) Pendientes() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.pendientes)
}
