package memoria

import "testing"

func TestAsignadorMarcos_ReusoFIFO(t *testing.T) {
	a := NuevoAsignadorMarcos(64, 16) // 4 marcos

	var asignados []int
	for i := 0; i < 4; i++ {
		marco, err := a.AsignarMarco()
		if err != nil {
			t.Fatalf("Expected marco libre, got error %v", err)
		}
		asignados = append(asignados, marco)
	}

	for i, marco := range asignados {
		if marco != i {
			t.Errorf("Expected marco %d en la posición %d, got %d", i, i, marco)
		}
	}

	if _, err := a.AsignarMarco(); err == nil {
		t.Error("Expected error sin marcos libres, got nil")
	}

	// El primero en liberarse es el primero en reasignarse
	a.LiberarMarco(2)
	a.LiberarMarco(0)

	marco, err := a.AsignarMarco()
	if err != nil {
		t.Fatalf("Expected marco tras liberar, got error %v", err)
	}
	if marco != 2 {
		t.Errorf("Expected marco 2 (liberado primero), got %d", marco)
	}

	marco, _ = a.AsignarMarco()
	if marco != 0 {
		t.Errorf("Expected marco 0, got %d", marco)
	}
}

func TestAsignadorMarcos_LiberarNoAsignado(t *testing.T) {
	a := NuevoAsignadorMarcos(32, 16)

	// Liberar un marco nunca asignado no tiene efecto
	a.LiberarMarco(1)
	a.LiberarMarco(-5)
	a.LiberarMarco(99)

	if libres := a.MarcosLibres(); libres != 2 {
		t.Errorf("Expected 2 marcos libres, got %d", libres)
	}

	primero, _ := a.AsignarMarco()
	segundo, _ := a.AsignarMarco()
	if primero == segundo {
		t.Errorf("Expected marcos distintos, got %d y %d", primero, segundo)
	}
}

func TestAsignadorMarcos_Contadores(t *testing.T) {
	a := NuevoAsignadorMarcos(64, 16)

	if a.MarcosTotales() != 4 {
		t.Errorf("Expected 4 marcos totales, got %d", a.MarcosTotales())
	}

	a.AsignarMarco()
	a.AsignarMarco()

	if libres := a.MarcosLibres(); libres != 2 {
		t.Errorf("Expected 2 marcos libres, got %d", libres)
	}
}
