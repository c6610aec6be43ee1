package kernel

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestReporte_Contenido(t *testing.T) {
	registro := NuevoRegistro(2, NuevaColaReady(), nil, nil, 0)

	corriendo := NuevoProceso(registro.NuevoPID(), "p01", []string{"a", "b", "c"})
	terminado := NuevoProceso(registro.NuevoPID(), "p02", nil)
	registro.AdmitirProceso(corriendo)
	registro.AdmitirProceso(terminado)

	registro.AsignarCore(corriendo.PID, 0)

	texto := FormatearReporte(registro)

	for _, fragmento := range []string{
		"CPU Utilization Report",
		"CPU utilization: 50%",
		"Cores used: 1",
		"Cores available: 1",
		"Average utilization:",
		"p01",
		"p02",
		"Finished",
	} {
		if !strings.Contains(texto, fragmento) {
			t.Errorf("Expected reporte con %q, got:\n%s", fragmento, texto)
		}
	}
}

func TestReporte_EscribeArchivo(t *testing.T) {
	registro := NuevoRegistro(1, NuevaColaReady(), nil, nil, 0)

	ruta := filepath.Join(t.TempDir(), "csopesy-log.txt")
	if err := GenerarReporte(registro, ruta); err != nil {
		t.Fatalf("Expected generar reporte, got %v", err)
	}

	contenido, err := os.ReadFile(ruta)
	if err != nil {
		t.Fatalf("Expected leer el reporte, got %v", err)
	}
	if !strings.Contains(string(contenido), "CPU Utilization Report") {
		t.Error("Expected encabezado del reporte")
	}
}
