package kernel

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gonum.org/v1/gonum/stat"

	"github.com/sisoputnfrba/emulador-so-2025-2c/utils"
)

// GenerarReporte vuelca el reporte de utilización de CPU y el estado de
// cada proceso a un archivo (csopesy-log.txt por convención)
func GenerarReporte(registro *RegistroProcesos, ruta string) error {
	contenido := FormatearReporte(registro)

	if err := os.WriteFile(ruta, []byte(contenido), 0644); err != nil {
		return fmt.Errorf("escribiendo reporte %s: %w", ruta, err)
	}

	utils.InfoLog.Info("Reporte generado", "ruta", ruta)
	return nil
}

// FormatearReporte arma el texto del reporte: utilización instantánea,
// promedio histórico y las líneas de estado por proceso
func FormatearReporte(registro *RegistroProcesos) string {
	var sb strings.Builder

	sb.WriteString("CPU Utilization Report\n")
	fmt.Fprintf(&sb, "Timestamp: %s\n", time.Now().Format("01/02/2006, 03:04:05 PM"))
	sb.WriteString("-----------------------------------------\n")

	fmt.Fprintf(&sb, "CPU utilization: %.0f%%\n", registro.Utilizacion()*100)
	fmt.Fprintf(&sb, "Cores used: %d\n", registro.CoresUsados())
	fmt.Fprintf(&sb, "Cores available: %d\n", registro.NumCores()-registro.CoresUsados())

	if muestras := registro.HistorialUtilizacion(); len(muestras) > 0 {
		media := stat.Mean(muestras, nil)
		desvio := stat.StdDev(muestras, nil)
		fmt.Fprintf(&sb, "Average utilization: %.1f%% (stddev %.1f%%)\n", media*100, desvio*100)
	}

	sb.WriteString("\nRunning processes:\n")
	for _, p := range registro.EnEjecucion() {
		sb.WriteString(formatearInfoProceso(p, registro.CoreDeProceso(p.PID), false))
		sb.WriteString("\n")
	}

	sb.WriteString("\nFinished processes:\n")
	for _, p := range registro.Terminados() {
		sb.WriteString(formatearInfoProceso(p, -1, true))
		sb.WriteString("\n")
	}

	return sb.String()
}

// formatearInfoProceso arma la línea de estado de un proceso
func formatearInfoProceso(p *Proceso, core int, terminado bool) string {
	var sb strings.Builder

	fmt.Fprintf(&sb, "%-12s ", p.Nombre)
	fmt.Fprintf(&sb, "(%s)", p.HoraCreacion.Format("01/02/2006, 03:04:05 PM"))

	if terminado {
		sb.WriteString("     Finished    ")
		fmt.Fprintf(&sb, "%5d / %d", p.TotalInstrucciones(), p.TotalInstrucciones())
	} else {
		if core >= 0 {
			fmt.Fprintf(&sb, "     Core: %-2d    ", core)
		} else {
			sb.WriteString("     Core: --    ")
		}
		fmt.Fprintf(&sb, "%5d / %d", p.PC(), p.TotalInstrucciones())
	}

	return sb.String()
}
