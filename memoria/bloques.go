package memoria

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/markphelps/optional"

	"github.com/sisoputnfrba/emulador-so-2025-2c/config"
	"github.com/sisoputnfrba/emulador-so-2025-2c/utils"
)

// Bloque es un tramo contiguo del espacio de direcciones físico
type Bloque struct {
	Inicio  int
	Tamanio int
	Libre   bool
	PID     int
	Nombre  string
}

// Fin devuelve la dirección siguiente al último byte del bloque
func (b Bloque) Fin() int {
	return b.Inicio + b.Tamanio
}

// AsignadorContiguo administra la memoria como bloques contiguos con
// políticas first/best/worst fit y fusión inmediata de huecos adyacentes.
// Los bloques cubren [0, memoriaTotal) sin superposición en todo momento.
type AsignadorContiguo struct {
	mu                sync.Mutex
	bloques           []Bloque
	memoriaTotal      int
	memoriaPorProceso int
	tamanioMarco      int
	politica          string
	directorioStamps  string
}

// NuevoAsignadorContiguo inicializa el espacio como un único bloque libre
func NuevoAsignadorContiguo(memoriaTotal, memoriaPorProceso, tamanioMarco int, politica string) *AsignadorContiguo {
	a := &AsignadorContiguo{
		memoriaTotal:      memoriaTotal,
		memoriaPorProceso: memoriaPorProceso,
		tamanioMarco:      tamanioMarco,
		politica:          politica,
		directorioStamps:  "memory_stamps",
	}
	a.bloques = []Bloque{{Inicio: 0, Tamanio: memoriaTotal, Libre: true, PID: -1}}
	return a
}

// ConDirectorioSnapshots cambia el directorio donde se escriben los
// memory_stamp_<NN>.txt
func (a *AsignadorContiguo) ConDirectorioSnapshots(directorio string) *AsignadorContiguo {
	a.directorioStamps = directorio
	return a
}

// Asignar busca un hueco para el proceso según la política configurada.
// Devuelve false cuando ningún bloque libre alcanza; el llamador retiene
// el proceso fuera de la cola de ready.
func (a *AsignadorContiguo) Asignar(pid int, nombre string) bool {
	a.mu.Lock()
	defer a.mu.Unlock()

	requerido := a.memoriaPorProceso
	if requerido > a.memoriaTotal {
		return false
	}

	indice := a.buscarHueco(requerido)
	if indice < 0 {
		utils.InfoLog.Debug("Sin hueco para el proceso", "pid", pid, "requerido", requerido)
		return false
	}

	bloque := &a.bloques[indice]
	if bloque.Tamanio == requerido {
		bloque.Libre = false
		bloque.PID = pid
		bloque.Nombre = nombre
	} else {
		resto := Bloque{
			Inicio:  bloque.Inicio + requerido,
			Tamanio: bloque.Tamanio - requerido,
			Libre:   true,
			PID:     -1,
		}
		bloque.Tamanio = requerido
		bloque.Libre = false
		bloque.PID = pid
		bloque.Nombre = nombre

		a.bloques = append(a.bloques, Bloque{})
		copy(a.bloques[indice+2:], a.bloques[indice+1:])
		a.bloques[indice+1] = resto
	}

	utils.InfoLog.Info("Memoria contigua asignada", "pid", pid, "inicio", a.bloques[indice].Inicio, "tamanio", requerido)
	return true
}

// buscarHueco aplica la política de ajuste sobre los bloques libres
func (a *AsignadorContiguo) buscarHueco(requerido int) int {
	elegido := -1

	for i, bloque := range a.bloques {
		if !bloque.Libre || bloque.Tamanio < requerido {
			continue
		}

		switch a.politica {
		case config.PoliticaBestFit:
			if elegido < 0 || bloque.Tamanio < a.bloques[elegido].Tamanio {
				elegido = i
			}
		case config.PoliticaWorstFit:
			if elegido < 0 || bloque.Tamanio > a.bloques[elegido].Tamanio {
				elegido = i
			}
		default: // first fit
			return i
		}
	}

	return elegido
}

// Liberar marca como libres todos los bloques del proceso y fusiona los
// huecos adyacentes hasta el punto fijo
func (a *AsignadorContiguo) Liberar(pid int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	liberados := 0
	for i := range a.bloques {
		if !a.bloques[i].Libre && a.bloques[i].PID == pid {
			a.bloques[i].Libre = true
			a.bloques[i].PID = -1
			a.bloques[i].Nombre = ""
			liberados++
		}
	}

	if liberados == 0 {
		return
	}

	a.fusionarHuecos()
	utils.InfoLog.Info("Memoria contigua liberada", "pid", pid, "bloques", liberados)
}

func (a *AsignadorContiguo) fusionarHuecos() {
	for i := 0; i < len(a.bloques)-1; {
		if a.bloques[i].Libre && a.bloques[i+1].Libre {
			a.bloques[i].Tamanio += a.bloques[i+1].Tamanio
			a.bloques = append(a.bloques[:i+1], a.bloques[i+2:]...)
			continue
		}
		i++
	}
}

// FragmentacionExterna suma los huecos estrictamente menores al tamaño por
// proceso. Si el total libre no alcanza para un proceso, todo el espacio
// libre cuenta como fragmentación.
func (a *AsignadorContiguo) FragmentacionExterna() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	totalLibre := 0
	inutilizable := 0
	for _, bloque := range a.bloques {
		if !bloque.Libre {
			continue
		}
		totalLibre += bloque.Tamanio
		if bloque.Tamanio < a.memoriaPorProceso {
			inutilizable += bloque.Tamanio
		}
	}

	if totalLibre < a.memoriaPorProceso {
		return totalLibre
	}
	return inutilizable
}

// MapaMemoriaProceso devuelve el menor inicio y el mayor fin entre los
// bloques del proceso; ausentes si el proceso no posee bloques
func (a *AsignadorContiguo) MapaMemoriaProceso(pid int) (optional.Int, optional.Int) {
	a.mu.Lock()
	defer a.mu.Unlock()

	var inicio, fin optional.Int
	for _, bloque := range a.bloques {
		if bloque.Libre || bloque.PID != pid {
			continue
		}
		if v, err := inicio.Get(); err != nil || bloque.Inicio < v {
			inicio = optional.NewInt(bloque.Inicio)
		}
		if v, err := fin.Get(); err != nil || bloque.Fin() > v {
			fin = optional.NewInt(bloque.Fin())
		}
	}
	return inicio, fin
}

// ProcesosEnMemoria cuenta los procesos con al menos un bloque asignado
func (a *AsignadorContiguo) ProcesosEnMemoria() int {
	a.mu.Lock()
	defer a.mu.Unlock()

	vistos := make(map[int]struct{})
	for _, bloque := range a.bloques {
		if !bloque.Libre && bloque.PID >= 0 {
			vistos[bloque.PID] = struct{}{}
		}
	}
	return len(vistos)
}

// Bloques devuelve una copia del estado actual, de menor a mayor dirección
func (a *AsignadorContiguo) Bloques() []Bloque {
	a.mu.Lock()
	defer a.mu.Unlock()

	copia := make([]Bloque, len(a.bloques))
	copy(copia, a.bloques)
	return copia
}

// GenerarSnapshot vuelca el mapa de memoria del quantum actual a
// memory_stamps/memory_stamp_<NN>.txt
func (a *AsignadorContiguo) GenerarSnapshot(quantum int) error {
	if err := os.MkdirAll(a.directorioStamps, 0755); err != nil {
		return fmt.Errorf("creando directorio de snapshots: %w", err)
	}

	ruta := filepath.Join(a.directorioStamps, fmt.Sprintf("memory_stamp_%02d.txt", quantum))

	var sb strings.Builder
	fmt.Fprintf(&sb, "Timestamp: (%s)\n", time.Now().Format("01/02/2006 03:04:05PM"))
	fmt.Fprintf(&sb, "Number of processes in memory: %d\n", a.ProcesosEnMemoria())
	fmt.Fprintf(&sb, "Total external fragmentation in KB: %d\n", a.FragmentacionExterna()/1024)
	sb.WriteString("\n")
	sb.WriteString(a.representacionASCII())

	if err := os.WriteFile(ruta, []byte(sb.String()), 0644); err != nil {
		return fmt.Errorf("escribiendo snapshot %s: %w", ruta, err)
	}

	utils.InfoLog.Debug("Snapshot de memoria generado", "quantum", quantum, "ruta", ruta)
	return nil
}

// representacionASCII lista los bloques asignados de arriba hacia abajo:
// dirección de fin, nombre del dueño, dirección de inicio
func (a *AsignadorContiguo) representacionASCII() string {
	a.mu.Lock()
	ordenados := make([]Bloque, len(a.bloques))
	copy(ordenados, a.bloques)
	a.mu.Unlock()

	sort.Slice(ordenados, func(i, j int) bool {
		return ordenados[i].Inicio > ordenados[j].Inicio
	})

	var sb strings.Builder
	fmt.Fprintf(&sb, "----end---- = %d\n\n", a.memoriaTotal)

	for _, bloque := range ordenados {
		if bloque.Libre {
			continue
		}
		fmt.Fprintf(&sb, "%d\n%s\n%d\n\n", bloque.Fin(), bloque.Nombre, bloque.Inicio)
	}

	sb.WriteString("----start---- = 0\n")
	return sb.String()
}
