package main

import (
	"bufio"
	"fmt"
	"os"
	"strings"

	"github.com/sisoputnfrba/emulador-so-2025-2c/config"
	"github.com/sisoputnfrba/emulador-so-2025-2c/cpu"
	"github.com/sisoputnfrba/emulador-so-2025-2c/kernel"
	"github.com/sisoputnfrba/emulador-so-2025-2c/memoria"
	"github.com/sisoputnfrba/emulador-so-2025-2c/utils"
)

// Emulador agrupa los subsistemas vivos de una sesión inicializada
type Emulador struct {
	cfg          *config.Config
	cola         *kernel.ColaReady
	registro     *kernel.RegistroProcesos
	planificador *kernel.Planificador
	generador    *kernel.GeneradorProcesos
	contigua     *memoria.AsignadorContiguo
	virtual      *memoria.MemoriaVirtual
	respaldo     *memoria.AlmacenRespaldo
}

func main() {
	utils.InicializarLogger("info", "Emulador")

	rutaConfig := "config.json"
	if len(os.Args) > 1 {
		rutaConfig = os.Args[1]
	}

	fmt.Println("CSOPESY emulator. Escriba 'help' para ver los comandos.")

	var emu *Emulador
	scanner := bufio.NewScanner(os.Stdin)

	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			break
		}

		linea := strings.TrimSpace(scanner.Text())
		if linea == "" {
			continue
		}

		salir, codigo := despachar(&emu, rutaConfig, linea)
		if salir {
			os.Exit(codigo)
		}
	}

	if emu != nil {
		os.Exit(emu.apagar())
	}
}

// despachar interpreta una línea de la consola. Devuelve (true, código)
// cuando el emulador debe terminar.
func despachar(emu **Emulador, rutaConfig string, linea string) (bool, int) {
	campos := strings.Fields(linea)
	comando := campos[0]

	if comando == "exit" {
		codigo := 0
		if *emu != nil {
			codigo = (*emu).apagar()
		}
		return true, codigo
	}

	if comando == "initialize" {
		if *emu != nil {
			(*emu).apagar()
		}
		nuevo, err := inicializar(rutaConfig)
		if err != nil {
			fmt.Printf("Error de configuración: %v\n", err)
			return false, 0
		}
		*emu = nuevo
		fmt.Println("Emulador inicializado.")
		return false, 0
	}

	if comando == "help" {
		imprimirAyuda()
		return false, 0
	}

	if comando == "clear" {
		fmt.Print("\033[H\033[2J")
		return false, 0
	}

	if *emu == nil {
		fmt.Println("Ejecute 'initialize' primero.")
		return false, 0
	}

	(*emu).ejecutarComando(comando, campos[1:], linea)
	return false, 0
}

// inicializar carga y valida la configuración y arma los subsistemas
func inicializar(rutaConfig string) (*Emulador, error) {
	cfg, err := cargarConfig(rutaConfig)
	if err != nil {
		return nil, err
	}

	if err := utils.InicializarLoggerConArchivo(cfg.LogLevel, "Emulador", "emulador.log"); err != nil {
		utils.InicializarLogger(cfg.LogLevel, "Emulador")
		utils.InfoLog.Warn("Sin log en archivo", "error", err)
	}

	emu := &Emulador{cfg: cfg}
	emu.cola = kernel.NuevaColaReady()

	if cfg.MemoriaVirtual {
		respaldo, err := memoria.NuevoAlmacenRespaldo("csopesy-backing-store.txt", cfg.MemPerFrame)
		if err != nil {
			return nil, err
		}
		emu.respaldo = respaldo
		emu.virtual = memoria.NuevaMemoriaVirtual(cfg.MaxOverallMem, cfg.MemPerFrame, respaldo)
	} else {
		emu.contigua = memoria.NuevoAsignadorContiguo(cfg.MaxOverallMem, cfg.MemPerProc, cfg.MemPerFrame, cfg.HoleFitPolicy)
	}

	grado := cfg.MaxOverallMem / cfg.MemPerProc
	emu.registro = kernel.NuevoRegistro(cfg.NumCPU, emu.cola, emu.contigua, emu.virtual, grado)
	emu.generador = kernel.NuevoGenerador(cfg, emu.registro)

	interprete := cpu.NuevoInterprete(emu.virtual)
	emu.planificador = kernel.NuevoPlanificador(cfg, emu.cola, interprete, emu.registro)

	return emu, nil
}

// cargarConfig lee el archivo si existe; si no, usa la configuración por defecto
func cargarConfig(ruta string) (*config.Config, error) {
	if _, err := os.Stat(ruta); err != nil {
		utils.InfoLog.Warn("Sin archivo de configuración, usando valores por defecto", "ruta", ruta)
		return config.PorDefecto(), nil
	}
	return config.Cargar(ruta)
}

// apagar detiene generador y planificador. Devuelve el código de salida.
func (e *Emulador) apagar() int {
	e.generador.Detener()
	e.planificador.Detener()

	if e.respaldo != nil {
		e.respaldo.Cerrar()
	}

	if err := e.planificador.ErrorFatal(); err != nil {
		fmt.Printf("El emulador se detuvo por una falla fatal: %v\n", err)
		return 1
	}
	return 0
}

func imprimirAyuda() {
	fmt.Println(`Comandos disponibles:
  initialize                         carga la configuración y arma el emulador
  scheduler-start                    inicia los workers y el generador de procesos
  scheduler-stop                     detiene el generador (los workers drenan la cola)
  scheduler-test                     inicia los workers y el generador de procesos de prueba
  report-util                        escribe csopesy-log.txt con la utilización
  screen -s <nombre> [tamanio]       crea un proceso con instrucciones aleatorias
  screen -c <nombre> <tamanio> "..." crea un proceso con instrucciones dadas
  screen -r <nombre>                 muestra el estado y la salida de un proceso
  screen -ls                         lista todos los procesos
  process-smi                        resumen de procesos y memoria
  vmstat                             estadísticas de memoria virtual
  clear                              limpia la pantalla
  exit                               termina el emulador`)
}
