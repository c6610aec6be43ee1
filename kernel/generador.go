package kernel

import (
	"fmt"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/sisoputnfrba/emulador-so-2025-2c/config"
	"github.com/sisoputnfrba/emulador-so-2025-2c/utils"
)

// GeneradorProcesos emite procesos sintéticos a intervalos regulares:
// uno cada batch-process-freq ticks, el primero inmediatamente al arrancar.
type GeneradorProcesos struct {
	registro *RegistroProcesos
	cfg      *config.Config

	mu       sync.Mutex
	rng      *rand.Rand
	contador int

	detener chan struct{}
	wg      sync.WaitGroup
	activo  bool
}

// NuevoGenerador crea el generador sin arrancarlo
func NuevoGenerador(cfg *config.Config, registro *RegistroProcesos) *GeneradorProcesos {
	return &GeneradorProcesos{
		registro: registro,
		cfg:      cfg,
		rng:      rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// Iniciar lanza el hilo generador
func (g *GeneradorProcesos) Iniciar() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.activo {
		return
	}
	g.activo = true
	g.detener = make(chan struct{})

	g.wg.Add(1)
	go g.bucle(g.detener)
	utils.InfoLog.Info("Generador de procesos iniciado", "frecuencia_ticks", g.cfg.BatchProcessFreq)
}

// Detener frena la emisión y espera a que el hilo termine
func (g *GeneradorProcesos) Detener() {
	g.mu.Lock()
	if !g.activo {
		g.mu.Unlock()
		return
	}
	g.activo = false
	close(g.detener)
	g.mu.Unlock()

	g.wg.Wait()
	utils.InfoLog.Info("Generador de procesos detenido")
}

// Activo indica si el generador está emitiendo
func (g *GeneradorProcesos) Activo() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.activo
}

func (g *GeneradorProcesos) bucle(detener chan struct{}) {
	defer g.wg.Done()

	periodo := time.Duration(g.cfg.BatchProcessFreq) * utils.DuracionTick
	ticker := time.NewTicker(periodo)
	defer ticker.Stop()

	// Primera emisión inmediata
	g.emitirProceso()

	for {
		select {
		case <-detener:
			return
		case <-ticker.C:
			g.emitirProceso()
		}
	}
}

func (g *GeneradorProcesos) emitirProceso() {
	p := g.CrearProceso()
	if _, err := g.registro.AdmitirProceso(p); err != nil {
		utils.ErrorLog.Error("No se pudo admitir el proceso generado", "nombre", p.Nombre, "error", err)
	}
}

// CrearProceso sintetiza un proceso con nombre p<NN> y un stream aleatorio
// de instrucciones
func (g *GeneradorProcesos) CrearProceso() *Proceso {
	g.mu.Lock()
	g.contador++
	nombre := fmt.Sprintf("p%02d", g.contador)
	g.mu.Unlock()

	return g.CrearProcesoLlamado(nombre)
}

// CrearProcesoLlamado sintetiza un proceso con el nombre dado (screen -s)
func (g *GeneradorProcesos) CrearProcesoLlamado(nombre string) *Proceso {
	g.mu.Lock()

	cantidad := g.cfg.MinInstrucciones + g.rng.Intn(g.cfg.MaxInstrucciones-g.cfg.MinInstrucciones+1)

	instrucciones := make([]string, 0, cantidad)
	for i := 0; i < cantidad; i++ {
		instrucciones = append(instrucciones, g.instruccionAleatoria(nombre, true))
	}

	tamanio := 0
	if g.cfg.MemoriaVirtual {
		tamanio = g.cfg.MinMemPerProc + g.rng.Intn(g.cfg.MaxMemPerProc-g.cfg.MinMemPerProc+1)
	}
	g.mu.Unlock()

	p := NuevoProceso(g.registro.NuevoPID(), nombre, instrucciones)
	p.TamanioVirtual = tamanio
	return p
}

// instruccionAleatoria elige uniformemente del set de la fase. Dentro de un
// FOR no se emiten ni FOR ni SLEEP. Se invoca con el mutex tomado.
func (g *GeneradorProcesos) instruccionAleatoria(nombreProceso string, nivelSuperior bool) string {
	tipos := []string{"PRINT", "DECLARE", "ADD", "SUBTRACT"}
	if nivelSuperior {
		tipos = append(tipos, "SLEEP", "FOR")
	}
	if g.cfg.MemoriaVirtual {
		tipos = append(tipos, "READ", "WRITE")
	}

	switch tipos[g.rng.Intn(len(tipos))] {
	case "PRINT":
		return fmt.Sprintf("PRINT(\"Hello world from %s!\")", nombreProceso)
	case "DECLARE":
		return fmt.Sprintf("DECLARE(%s, %d)", g.variableAleatoria(), g.rng.Intn(65536))
	case "ADD":
		return fmt.Sprintf("ADD(%s, %s, %s)", g.variableAleatoria(), g.variableAleatoria(), g.operandoAleatorio())
	case "SUBTRACT":
		return fmt.Sprintf("SUBTRACT(%s, %s, %s)", g.variableAleatoria(), g.variableAleatoria(), g.operandoAleatorio())
	case "SLEEP":
		return fmt.Sprintf("SLEEP(%d)", 1+g.rng.Intn(10))
	case "FOR":
		return g.forAleatorio(nombreProceso)
	case "READ":
		return fmt.Sprintf("READ(%s, 0x%X)", g.variableAleatoria(), g.direccionAleatoria())
	default:
		return fmt.Sprintf("WRITE(0x%X, %d)", g.direccionAleatoria(), g.rng.Intn(65536))
	}
}

// forAleatorio arma un FOR con 1 a 3 instrucciones internas
func (g *GeneradorProcesos) forAleatorio(nombreProceso string) string {
	cantidad := 1 + g.rng.Intn(3)
	repeticiones := 1 + g.rng.Intn(5)

	internas := make([]string, 0, cantidad)
	for i := 0; i < cantidad; i++ {
		internas = append(internas, g.instruccionAleatoria(nombreProceso, false))
	}

	return fmt.Sprintf("FOR(%s, %d)", strings.Join(internas, ";"), repeticiones)
}

func (g *GeneradorProcesos) operandoAleatorio() string {
	if g.rng.Intn(2) == 0 {
		return g.variableAleatoria()
	}
	return fmt.Sprintf("%d", g.rng.Intn(65536))
}

func (g *GeneradorProcesos) variableAleatoria() string {
	return fmt.Sprintf("var%d", g.rng.Intn(MaxVariables))
}

// direccionAleatoria genera direcciones pares dentro del tamaño mínimo por
// proceso, para que todo acceso generado quede en rango
func (g *GeneradorProcesos) direccionAleatoria() int {
	limite := g.cfg.MinMemPerProc
	if limite < 2 {
		limite = 2
	}
	return g.rng.Intn(limite/2) * 2
}
