package memoria

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sisoputnfrba/emulador-so-2025-2c/config"
)

func TestAsignadorContiguo_FirstFitConFusion(t *testing.T) {
	a := NuevoAsignadorContiguo(100, 20, 16, config.PoliticaFirstFit)

	for pid := 1; pid <= 5; pid++ {
		if !a.Asignar(pid, "p") {
			t.Fatalf("Expected asignar PID %d, got rechazo", pid)
		}
	}
	if a.Asignar(6, "p06") {
		t.Fatal("Expected rechazo con la memoria llena, got asignación")
	}

	a.Liberar(2)
	a.Liberar(4)

	// Cada hueco de 20 alcanza para un proceso: fragmentación 0
	if frag := a.FragmentacionExterna(); frag != 0 {
		t.Errorf("Expected fragmentación externa 0, got %d", frag)
	}

	// First fit: el nuevo proceso va al hueco que dejó P2
	if !a.Asignar(6, "p06") {
		t.Fatal("Expected asignar PID 6, got rechazo")
	}
	inicio, fin := a.MapaMemoriaProceso(6)
	if v, err := inicio.Get(); err != nil || v != 20 {
		t.Errorf("Expected inicio 20 para PID 6, got %v (%v)", v, err)
	}
	if v, err := fin.Get(); err != nil || v != 40 {
		t.Errorf("Expected fin 40 para PID 6, got %v (%v)", v, err)
	}

	// Liberar todo vuelve al bloque libre único
	for _, pid := range []int{1, 3, 5, 6} {
		a.Liberar(pid)
	}
	bloques := a.Bloques()
	if len(bloques) != 1 {
		t.Fatalf("Expected un único bloque, got %d", len(bloques))
	}
	if !bloques[0].Libre || bloques[0].Inicio != 0 || bloques[0].Tamanio != 100 {
		t.Errorf("Expected bloque libre [0,100), got %+v", bloques[0])
	}
}

func TestAsignadorContiguo_SinFusionParcial(t *testing.T) {
	a := NuevoAsignadorContiguo(60, 20, 16, config.PoliticaFirstFit)

	a.Asignar(1, "p01")
	a.Asignar(2, "p02")
	a.Asignar(3, "p03")
	a.Liberar(2)

	// Tras liberar no quedan dos bloques libres adyacentes
	bloques := a.Bloques()
	for i := 0; i < len(bloques)-1; i++ {
		if bloques[i].Libre && bloques[i+1].Libre {
			t.Errorf("Expected huecos fusionados, got dos libres adyacentes en %d", i)
		}
	}
}

func TestAsignadorContiguo_MejorYPeorAjuste(t *testing.T) {
	// Huecos de 20 y 40 tras liberar: best fit elige el de 20,
	// worst fit el de 40
	preparar := func(politica string) *AsignadorContiguo {
		a := NuevoAsignadorContiguo(100, 20, 16, politica)
		// [P1:20][P2:20][P3:20][P4:40 libres al liberar P4 y P5]
		a.Asignar(1, "p01")
		a.Asignar(2, "p02")
		a.Asignar(3, "p03")
		a.Asignar(4, "p04")
		a.Asignar(5, "p05")
		a.Liberar(2)
		a.Liberar(4)
		a.Liberar(5)
		return a
	}

	mejor := preparar(config.PoliticaBestFit)
	mejor.Asignar(9, "p09")
	inicio, _ := mejor.MapaMemoriaProceso(9)
	if v, _ := inicio.Get(); v != 20 {
		t.Errorf("Expected best fit en 20, got %d", v)
	}

	peor := preparar(config.PoliticaWorstFit)
	peor.Asignar(9, "p09")
	inicio, _ = peor.MapaMemoriaProceso(9)
	if v, _ := inicio.Get(); v != 60 {
		t.Errorf("Expected worst fit en 60, got %d", v)
	}
}

func TestAsignadorContiguo_FragmentacionTotalInsuficiente(t *testing.T) {
	a := NuevoAsignadorContiguo(50, 20, 16, config.PoliticaFirstFit)

	a.Asignar(1, "p01")
	a.Asignar(2, "p02")

	// Queda un hueco de 10 (< 20): todo el espacio libre es fragmentación
	if frag := a.FragmentacionExterna(); frag != 10 {
		t.Errorf("Expected fragmentación 10, got %d", frag)
	}
}

func TestAsignadorContiguo_TamanioExacto(t *testing.T) {
	a := NuevoAsignadorContiguo(20, 20, 16, config.PoliticaFirstFit)

	if !a.Asignar(1, "p01") {
		t.Error("Expected asignación con tamaño exacto, got rechazo")
	}
	if a.Asignar(2, "p02") {
		t.Error("Expected rechazo sin espacio restante, got asignación")
	}

	chico := NuevoAsignadorContiguo(19, 20, 16, config.PoliticaFirstFit)
	if chico.Asignar(1, "p01") {
		t.Error("Expected rechazo con proceso más grande que la memoria, got asignación")
	}
}

func TestAsignadorContiguo_MapaProcesoAusente(t *testing.T) {
	a := NuevoAsignadorContiguo(40, 20, 16, config.PoliticaFirstFit)

	inicio, fin := a.MapaMemoriaProceso(7)
	if inicio.Present() || fin.Present() {
		t.Error("Expected mapa ausente para un PID sin bloques")
	}
}

func TestAsignadorContiguo_Snapshot(t *testing.T) {
	directorio := t.TempDir()
	a := NuevoAsignadorContiguo(100, 20, 16, config.PoliticaFirstFit).ConDirectorioSnapshots(directorio)

	a.Asignar(1, "p01")
	a.Asignar(2, "p02")

	if err := a.GenerarSnapshot(3); err != nil {
		t.Fatalf("Expected snapshot, got error %v", err)
	}

	contenido, err := os.ReadFile(filepath.Join(directorio, "memory_stamp_03.txt"))
	if err != nil {
		t.Fatalf("Expected archivo de snapshot, got error %v", err)
	}

	texto := string(contenido)
	for _, fragmento := range []string{
		"Timestamp: (",
		"Number of processes in memory: 2",
		"Total external fragmentation in KB: 0",
		"----end---- = 100",
		"----start---- = 0",
		"p01",
		"p02",
	} {
		if !strings.Contains(texto, fragmento) {
			t.Errorf("Expected snapshot con %q, got:\n%s", fragmento, texto)
		}
	}
}
