package kernel

import (
	"testing"
	"time"
)

func TestColaReady_FIFO(t *testing.T) {
	cola := NuevaColaReady()

	a := NuevoProceso(1, "a", []string{"x"})
	b := NuevoProceso(2, "b", []string{"x"})
	cola.Encolar(a)
	cola.Encolar(b)

	primero, ok := cola.Desencolar()
	if !ok || primero != a {
		t.Errorf("Expected a primero, got %v", primero)
	}
	segundo, ok := cola.Desencolar()
	if !ok || segundo != b {
		t.Errorf("Expected b segundo, got %v", segundo)
	}
}

func TestColaReady_DesencolarBloqueaHastaEncolar(t *testing.T) {
	cola := NuevaColaReady()
	listo := make(chan *Proceso)

	go func() {
		p, _ := cola.Desencolar()
		listo <- p
	}()

	p := NuevoProceso(1, "a", []string{"x"})
	cola.Encolar(p)

	select {
	case recibido := <-listo:
		if recibido != p {
			t.Errorf("Expected el proceso encolado, got %v", recibido)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Expected desencolar tras el encolado, got timeout")
	}
}

func TestColaReady_CerrarDespiertaYDrena(t *testing.T) {
	cola := NuevaColaReady()
	cola.Encolar(NuevoProceso(1, "a", []string{"x"}))
	cola.Cerrar()

	// Con la cola cerrada primero se drena lo pendiente
	if p, ok := cola.Desencolar(); !ok || p == nil {
		t.Fatal("Expected drenar el proceso pendiente")
	}

	// Vacía y cerrada: los workers terminan
	if _, ok := cola.Desencolar(); ok {
		t.Error("Expected fin de cola, got proceso")
	}
}

func TestColaReady_CerrarDesbloqueaWorkers(t *testing.T) {
	cola := NuevaColaReady()
	terminado := make(chan bool)

	go func() {
		_, ok := cola.Desencolar()
		terminado <- ok
	}()

	cola.Cerrar()

	select {
	case ok := <-terminado:
		if ok {
			t.Error("Expected ok == false al cerrar la cola vacía")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Expected el worker desbloqueado, got timeout")
	}
}
