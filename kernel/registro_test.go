package kernel

import (
	"testing"

	"github.com/sisoputnfrba/emulador-so-2025-2c/config"
	"github.com/sisoputnfrba/emulador-so-2025-2c/memoria"
)

func TestRegistro_AdmisionFase1ConPendientes(t *testing.T) {
	cola := NuevaColaReady()
	contigua := memoria.NuevoAsignadorContiguo(40, 20, 16, config.PoliticaFirstFit)
	registro := NuevoRegistro(1, cola, contigua, nil, 2)

	a := NuevoProceso(registro.NuevoPID(), "a", []string{"x"})
	b := NuevoProceso(registro.NuevoPID(), "b", []string{"x"})
	c := NuevoProceso(registro.NuevoPID(), "c", []string{"x"})

	for _, p := range []*Proceso{a, b} {
		encolado, err := registro.AdmitirProceso(p)
		if err != nil || !encolado {
			t.Fatalf("Expected admitir %s, got encolado=%t err=%v", p.Nombre, encolado, err)
		}
	}

	// Sin memoria: c queda pendiente, fuera de la cola de ready
	encolado, err := registro.AdmitirProceso(c)
	if err != nil {
		t.Fatalf("Expected pendiente sin error, got %v", err)
	}
	if encolado {
		t.Fatal("Expected c fuera de la cola por falta de memoria")
	}
	if registro.Pendientes() != 1 {
		t.Errorf("Expected 1 pendiente, got %d", registro.Pendientes())
	}
	if cola.Tamanio() != 2 {
		t.Errorf("Expected 2 en ready, got %d", cola.Tamanio())
	}

	// Al retirarse a, el pendiente entra
	registro.LiberarMemoria(a)
	if registro.Pendientes() != 0 {
		t.Errorf("Expected 0 pendientes tras liberar, got %d", registro.Pendientes())
	}
	if cola.Tamanio() != 3 {
		t.Errorf("Expected c encolado, got %d en ready", cola.Tamanio())
	}
	if _, existe := registro.BuscarPorNombre("c"); !existe {
		t.Error("Expected c registrado tras la readmisión")
	}
}

func TestRegistro_ProcesoSinInstrucciones(t *testing.T) {
	cola := NuevaColaReady()
	registro := NuevoRegistro(1, cola, nil, nil, 0)

	p := NuevoProceso(registro.NuevoPID(), "vacio", nil)
	encolado, err := registro.AdmitirProceso(p)
	if err != nil {
		t.Fatalf("Expected admisión sin error, got %v", err)
	}
	if encolado {
		t.Error("Expected proceso no vivo fuera de la cola")
	}
	if cola.Tamanio() != 0 {
		t.Errorf("Expected cola vacía, got %d", cola.Tamanio())
	}
	if terminados := registro.Terminados(); len(terminados) != 1 || terminados[0] != p {
		t.Errorf("Expected proceso directamente terminado, got %v", terminados)
	}
}

func TestRegistro_NombreDuplicado(t *testing.T) {
	registro := NuevoRegistro(1, NuevaColaReady(), nil, nil, 0)

	a := NuevoProceso(registro.NuevoPID(), "p01", []string{"x"})
	b := NuevoProceso(registro.NuevoPID(), "p01", []string{"x"})

	if _, err := registro.AdmitirProceso(a); err != nil {
		t.Fatalf("Expected admitir a, got %v", err)
	}
	if _, err := registro.AdmitirProceso(b); err == nil {
		t.Error("Expected error por nombre duplicado, got nil")
	}
}

func TestRegistro_CoresYUtilizacion(t *testing.T) {
	registro := NuevoRegistro(4, NuevaColaReady(), nil, nil, 0)

	p := NuevoProceso(registro.NuevoPID(), "p01", []string{"x"})
	registro.AdmitirProceso(p)

	registro.AsignarCore(p.PID, 2)
	if core := registro.CoreDeProceso(p.PID); core != 2 {
		t.Errorf("Expected core 2, got %d", core)
	}
	if p.CoreAsignado() != 2 {
		t.Errorf("Expected core 2 en el proceso, got %d", p.CoreAsignado())
	}
	if u := registro.Utilizacion(); u != 0.25 {
		t.Errorf("Expected utilización 0.25, got %f", u)
	}

	registro.LiberarCore(p.PID)
	if core := registro.CoreDeProceso(p.PID); core != -1 {
		t.Errorf("Expected core -1 tras liberar, got %d", core)
	}
	if u := registro.Utilizacion(); u != 0 {
		t.Errorf("Expected utilización 0, got %f", u)
	}

	if muestras := registro.HistorialUtilizacion(); len(muestras) != 2 {
		t.Errorf("Expected 2 muestras, got %d", len(muestras))
	}
}

func TestRegistro_ContadorQuantum(t *testing.T) {
	registro := NuevoRegistro(1, NuevaColaReady(), nil, nil, 0)

	for i := 1; i <= 3; i++ {
		if n := registro.IncrementarQuantum(); n != i {
			t.Errorf("Expected quantum %d, got %d", i, n)
		}
	}
	if registro.ContadorQuantum() != 3 {
		t.Errorf("Expected contador 3, got %d", registro.ContadorQuantum())
	}
}

func TestRegistro_PIDsMonotonos(t *testing.T) {
	registro := NuevoRegistro(1, NuevaColaReady(), nil, nil, 0)

	anterior := registro.NuevoPID()
	for i := 0; i < 5; i++ {
		siguiente := registro.NuevoPID()
		if siguiente <= anterior {
			t.Errorf("Expected PID creciente, got %d después de %d", siguiente, anterior)
		}
		anterior = siguiente
	}
}
