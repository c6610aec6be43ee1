package kernel

import (
	"sync"
	"sync/atomic"

	"github.com/sisoputnfrba/emulador-so-2025-2c/config"
	"github.com/sisoputnfrba/emulador-so-2025-2c/utils"
)

// Notificador es la interfaz angosta que el planificador necesita del
// registro de procesos. Evita la dependencia circular
// planificador -> registro -> planificador.
type Notificador interface {
	AsignarCore(pid int, core int)
	LiberarCore(pid int)
	LiberarMemoria(p *Proceso)
	IncrementarQuantum() int
}

// Ejecutor interpreta una instrucción del proceso: ejecuta la instrucción
// bajo el cursor, la registra en el log y avanza el cursor
type Ejecutor interface {
	Ejecutar(p *Proceso) error
}

// Planificador corre numCores workers que toman procesos de la cola de
// ready y los ejecutan según FCFS o Round-Robin. El quantum se cuenta en
// instrucciones por rodaja.
type Planificador struct {
	cola        *ColaReady
	ejecutor    Ejecutor
	notificador Notificador

	algoritmo    string
	quantum      int
	numCores     int
	retardoTicks int

	wg         sync.WaitGroup
	iniciado   atomic.Bool
	errFatal   atomic.Value
	detenerUna sync.Once
}

// NuevoPlanificador arma el pool de workers sin iniciarlo
func NuevoPlanificador(cfg *config.Config, cola *ColaReady, ejecutor Ejecutor, notificador Notificador) *Planificador {
	return &Planificador{
		cola:         cola,
		ejecutor:     ejecutor,
		notificador:  notificador,
		algoritmo:    cfg.Scheduler,
		quantum:      cfg.QuantumCycles,
		numCores:     cfg.NumCPU,
		retardoTicks: cfg.DelayPerExec,
	}
}

// Iniciar lanza los workers, uno por core
func (pl *Planificador) Iniciar() {
	if !pl.iniciado.CompareAndSwap(false, true) {
		return
	}

	utils.InfoLog.Info("Planificador iniciado", "algoritmo", pl.algoritmo, "cores", pl.numCores, "quantum", pl.quantum)

	for core := 0; core < pl.numCores; core++ {
		pl.wg.Add(1)
		go pl.worker(core)
	}
}

// Detener cierra la cola de ready: los workers drenan lo pendiente,
// terminan la instrucción en curso y salen. Bloquea hasta que el último
// worker termina.
func (pl *Planificador) Detener() {
	pl.detenerUna.Do(func() {
		pl.cola.Cerrar()
	})
	pl.wg.Wait()
	utils.InfoLog.Info("Planificador detenido")
}

// ErrorFatal devuelve la falla que forzó la detención, si la hubo
func (pl *Planificador) ErrorFatal() error {
	if err, ok := pl.errFatal.Load().(error); ok {
		return err
	}
	return nil
}

func (pl *Planificador) worker(core int) {
	defer pl.wg.Done()

	for {
		p, ok := pl.cola.Desencolar()
		if !ok {
			return
		}

		pl.notificador.AsignarCore(p.PID, core)

		var err error
		if pl.algoritmo == config.AlgoritmoFCFS {
			err = pl.rodajaFCFS(p)
		} else {
			err = pl.rodajaRR(p)
		}

		pl.notificador.LiberarCore(p.PID)

		if err != nil {
			utils.ErrorLog.Error("Falla fatal durante la ejecución, deteniendo", "pid", p.PID, "core", core, "error", err)
			pl.errFatal.Store(err)
			pl.detenerUna.Do(func() {
				pl.cola.Cerrar()
			})
			return
		}
	}
}

// rodajaFCFS ejecuta el proceso hasta agotar sus instrucciones; el worker
// no cede el core
func (pl *Planificador) rodajaFCFS(p *Proceso) error {
	for p.Vivo() {
		if err := pl.ejecutarUna(p); err != nil {
			return err
		}
	}

	pl.notificador.LiberarMemoria(p)
	return nil
}

// rodajaRR ejecuta a lo sumo quantum instrucciones. Toda rodaja, completa
// o no, incrementa el contador global de quantums.
func (pl *Planificador) rodajaRR(p *Proceso) error {
	// Un quantum de 0 degeneraría en rodajas vacías que requeuean para siempre
	cuota := pl.quantum
	if cuota < 1 {
		cuota = 1
	}

	for ejecutadas := 0; p.Vivo() && ejecutadas < cuota; ejecutadas++ {
		if err := pl.ejecutarUna(p); err != nil {
			return err
		}
	}

	pl.notificador.IncrementarQuantum()

	if p.Vivo() {
		pl.cola.Encolar(p)
		return nil
	}

	pl.notificador.LiberarMemoria(p)
	return nil
}

func (pl *Planificador) ejecutarUna(p *Proceso) error {
	if err := pl.ejecutor.Ejecutar(p); err != nil {
		return err
	}
	utils.AplicarRetardo("exec", pl.retardoTicks)
	return nil
}
