package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/sisoputnfrba/emulador-so-2025-2c/kernel"
)

// ejecutarComando atiende un comando de consola sobre un emulador inicializado
func (e *Emulador) ejecutarComando(comando string, argumentos []string, lineaCompleta string) {
	switch comando {
	case "scheduler-start":
		e.planificador.Iniciar()
		e.generador.Iniciar()
		fmt.Println("Planificador y generador iniciados.")

	case "scheduler-stop":
		e.generador.Detener()
		fmt.Println("Generador detenido; los workers drenan la cola.")

	case "scheduler-test":
		e.planificador.Iniciar()
		e.generador.Iniciar()
		fmt.Println("Generación de procesos de prueba iniciada.")

	case "report-util":
		if err := kernel.GenerarReporte(e.registro, "csopesy-log.txt"); err != nil {
			fmt.Printf("No se pudo generar el reporte: %v\n", err)
			return
		}
		fmt.Println("Reporte escrito en csopesy-log.txt")

	case "screen":
		e.comandoScreen(argumentos, lineaCompleta)

	case "process-smi":
		e.mostrarProcesos()

	case "vmstat":
		e.mostrarVmstat()

	default:
		fmt.Printf("Comando desconocido: %s\n", comando)
	}
}

func (e *Emulador) comandoScreen(argumentos []string, lineaCompleta string) {
	if len(argumentos) == 0 {
		fmt.Println("Uso: screen -s|-r|-c|-ls ...")
		return
	}

	switch argumentos[0] {
	case "-ls":
		e.listarProcesos()

	case "-r":
		if len(argumentos) < 2 {
			fmt.Println("Uso: screen -r <nombre>")
			return
		}
		e.mostrarProceso(argumentos[1])

	case "-s":
		if len(argumentos) < 2 {
			fmt.Println("Uso: screen -s <nombre> [tamanio]")
			return
		}
		tamanio := 0
		if len(argumentos) >= 3 {
			if t, err := strconv.Atoi(argumentos[2]); err == nil {
				tamanio = t
			}
		}
		e.crearProcesoAleatorio(argumentos[1], tamanio)

	case "-c":
		e.crearProcesoManual(argumentos, lineaCompleta)

	default:
		fmt.Printf("Opción desconocida: %s\n", argumentos[0])
	}
}

// crearProcesoAleatorio arma un proceso con stream generado, como los del
// generador pero con nombre elegido por el usuario
func (e *Emulador) crearProcesoAleatorio(nombre string, tamanio int) {
	p := e.generador.CrearProcesoLlamado(nombre)
	if tamanio > 0 {
		p.TamanioVirtual = tamanio
	}

	e.admitir(p)
}

// crearProcesoManual atiende screen -c <nombre> <tamanio> "<instr>;<instr>;…"
func (e *Emulador) crearProcesoManual(argumentos []string, lineaCompleta string) {
	if len(argumentos) < 4 {
		fmt.Println("Uso: screen -c <nombre> <tamanio> \"<instr>;<instr>;…\"")
		return
	}

	nombre := argumentos[1]
	tamanio, err := strconv.Atoi(argumentos[2])
	if err != nil {
		fmt.Printf("Tamaño inválido: %s\n", argumentos[2])
		return
	}

	abre := strings.Index(lineaCompleta, "\"")
	cierra := strings.LastIndex(lineaCompleta, "\"")
	if abre < 0 || cierra <= abre {
		fmt.Println("Las instrucciones van entre comillas.")
		return
	}

	var instrucciones []string
	for _, cruda := range strings.Split(lineaCompleta[abre+1:cierra], ";") {
		if cruda = strings.TrimSpace(cruda); cruda != "" {
			instrucciones = append(instrucciones, cruda)
		}
	}

	p := kernel.NuevoProceso(e.registro.NuevoPID(), nombre, instrucciones)
	p.TamanioVirtual = tamanio
	e.admitir(p)
}

func (e *Emulador) admitir(p *kernel.Proceso) {
	encolado, err := e.registro.AdmitirProceso(p)
	if err != nil {
		fmt.Printf("No se pudo admitir %s: %v\n", p.Nombre, err)
		return
	}
	if !encolado {
		fmt.Printf("Proceso %s registrado (a la espera de memoria o sin instrucciones).\n", p.Nombre)
		return
	}
	fmt.Printf("Proceso %s creado.\n", p.Nombre)
}

func (e *Emulador) mostrarProceso(nombre string) {
	p, existe := e.registro.BuscarPorNombre(nombre)
	if !existe {
		fmt.Printf("No existe el proceso %s\n", nombre)
		return
	}

	fmt.Printf("Proceso: %s (PID %d)\n", p.Nombre, p.PID)
	fmt.Printf("Instrucción actual: %d / %d\n", p.PC(), p.TotalInstrucciones())
	if p.Vivo() {
		fmt.Println("Estado: en ejecución")
	} else {
		fmt.Println("Estado: Finished!")
	}

	salida := p.Salida()
	if len(salida) > 0 {
		fmt.Println("Salida:")
		for _, linea := range salida {
			fmt.Printf("  %s\n", linea)
		}
	}
}

func (e *Emulador) listarProcesos() {
	fmt.Printf("CPU utilization: %.0f%%\n", e.registro.Utilizacion()*100)
	fmt.Printf("Cores used: %d / %d\n", e.registro.CoresUsados(), e.registro.NumCores())

	fmt.Println("\nRunning processes:")
	for _, p := range e.registro.EnEjecucion() {
		core := "--"
		if c := e.registro.CoreDeProceso(p.PID); c >= 0 {
			core = strconv.Itoa(c)
		}
		fmt.Printf("  %-12s Core: %-3s %5d / %d\n", p.Nombre, core, p.PC(), p.TotalInstrucciones())
	}

	fmt.Println("\nFinished processes:")
	for _, p := range e.registro.Terminados() {
		fmt.Printf("  %-12s Finished   %5d / %d\n", p.Nombre, p.TotalInstrucciones(), p.TotalInstrucciones())
	}
}

func (e *Emulador) mostrarProcesos() {
	fmt.Println("--------------------------------------")
	fmt.Println("| PROCESS-SMI v1.0        Driver CSOPESY |")
	fmt.Println("--------------------------------------")
	e.listarProcesos()

	if e.contigua != nil {
		fmt.Printf("\nMemoria contigua: %d procesos residentes, fragmentación externa %d bytes\n",
			e.contigua.ProcesosEnMemoria(), e.contigua.FragmentacionExterna())
	}
	if e.virtual != nil {
		stats := e.virtual.Stats()
		fmt.Printf("\nMemoria: %d / %d bytes usados\n", stats.BytesUsados, stats.BytesTotales)
	}
}

func (e *Emulador) mostrarVmstat() {
	if e.virtual == nil {
		fmt.Println("La memoria virtual no está habilitada (fase 1).")
		return
	}

	stats := e.virtual.Stats()
	fmt.Printf("Total memory:  %d bytes\n", stats.BytesTotales)
	fmt.Printf("Used memory:   %d bytes\n", stats.BytesUsados)
	fmt.Printf("Free memory:   %d bytes\n", stats.BytesLibres)
	fmt.Printf("Frames used:   %d\n", stats.MarcosUsados)
	fmt.Printf("Frames free:   %d\n", stats.MarcosLibres)
	fmt.Printf("Page faults:   %d\n", stats.FallosPagina)
	fmt.Printf("Pages in:      %d\n", stats.PaginasSubidas)
	fmt.Printf("Pages out:     %d\n", stats.PaginasBajadas)
	fmt.Printf("Quantum count: %d\n", e.registro.ContadorQuantum())
}
