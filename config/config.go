package config

import (
	"fmt"

	"github.com/sisoputnfrba/emulador-so-2025-2c/utils"
)

const (
	AlgoritmoFCFS = "fcfs"
	AlgoritmoRR   = "rr"

	PoliticaFirstFit = "F"
	PoliticaBestFit  = "B"
	PoliticaWorstFit = "W"
)

// Config reúne todos los parámetros del emulador en un único objeto compartido
type Config struct {
	NumCPU             int    `json:"num-cpu"`
	Scheduler          string `json:"scheduler"`
	QuantumCycles      int    `json:"quantum-cycles"`
	BatchProcessFreq   int    `json:"batch-process-freq"`
	MinInstrucciones   int    `json:"min-ins"`
	MaxInstrucciones   int    `json:"max-ins"`
	DelayPerExec       int    `json:"delay-per-exec"`
	MaxOverallMem      int    `json:"max-overall-mem"`
	MemPerFrame        int    `json:"mem-per-frame"`
	MemPerProc         int    `json:"mem-per-proc"`
	HoleFitPolicy      string `json:"hole-fit-policy"`
	MemoriaVirtual     bool   `json:"enable-virtual-memory"`
	MinMemPerProc      int    `json:"min-mem-per-proc"`
	MaxMemPerProc      int    `json:"max-mem-per-proc"`
	PageReplacementAlg string `json:"page-replacement-alg"`
	LogLevel           string `json:"log-level"`
}

// PorDefecto devuelve la configuración base del enunciado
func PorDefecto() *Config {
	return &Config{
		NumCPU:             4,
		Scheduler:          AlgoritmoRR,
		QuantumCycles:      5,
		BatchProcessFreq:   1,
		MinInstrucciones:   5,
		MaxInstrucciones:   20,
		DelayPerExec:       0,
		MaxOverallMem:      16384,
		MemPerFrame:        16,
		MemPerProc:         4096,
		HoleFitPolicy:      PoliticaFirstFit,
		MemoriaVirtual:     false,
		MinMemPerProc:      64,
		MaxMemPerProc:      4096,
		PageReplacementAlg: "LRU",
		LogLevel:           "info",
	}
}

// Cargar lee el archivo JSON de configuración y lo valida
func Cargar(ruta string) (*Config, error) {
	cfg, err := utils.CargarConfiguracion[Config](ruta)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validar(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validar verifica los rangos de cada parámetro. Una configuración inválida
// bloquea el comando initialize.
func (c *Config) Validar() error {
	if c.NumCPU < 1 || c.NumCPU > 128 {
		return fmt.Errorf("num-cpu debe estar en [1,128]: %d", c.NumCPU)
	}
	if c.Scheduler != AlgoritmoFCFS && c.Scheduler != AlgoritmoRR {
		return fmt.Errorf("scheduler debe ser %q o %q: %q", AlgoritmoFCFS, AlgoritmoRR, c.Scheduler)
	}
	if c.QuantumCycles < 0 {
		return fmt.Errorf("quantum-cycles debe ser >= 0: %d", c.QuantumCycles)
	}
	if c.BatchProcessFreq < 1 {
		return fmt.Errorf("batch-process-freq debe ser >= 1: %d", c.BatchProcessFreq)
	}
	if c.MinInstrucciones < 1 {
		return fmt.Errorf("min-ins debe ser >= 1: %d", c.MinInstrucciones)
	}
	if c.MaxInstrucciones < c.MinInstrucciones {
		return fmt.Errorf("max-ins (%d) debe ser >= min-ins (%d)", c.MaxInstrucciones, c.MinInstrucciones)
	}
	if c.DelayPerExec < 0 {
		return fmt.Errorf("delay-per-exec debe ser >= 0: %d", c.DelayPerExec)
	}
	if c.MaxOverallMem < 1 {
		return fmt.Errorf("max-overall-mem debe ser >= 1: %d", c.MaxOverallMem)
	}
	if c.MemPerFrame < 1 {
		return fmt.Errorf("mem-per-frame debe ser >= 1: %d", c.MemPerFrame)
	}
	if c.MemPerProc < 1 || c.MemPerProc > c.MaxOverallMem {
		return fmt.Errorf("mem-per-proc debe estar en [1,%d]: %d", c.MaxOverallMem, c.MemPerProc)
	}
	switch c.HoleFitPolicy {
	case PoliticaFirstFit, PoliticaBestFit, PoliticaWorstFit:
	default:
		return fmt.Errorf("hole-fit-policy debe ser F, B o W: %q", c.HoleFitPolicy)
	}
	if c.MemoriaVirtual {
		if c.MinMemPerProc < 64 || c.MinMemPerProc > 65536 {
			return fmt.Errorf("min-mem-per-proc debe estar en [64,65536]: %d", c.MinMemPerProc)
		}
		if c.MaxMemPerProc < c.MinMemPerProc || c.MaxMemPerProc > 65536 {
			return fmt.Errorf("max-mem-per-proc debe estar en [%d,65536]: %d", c.MinMemPerProc, c.MaxMemPerProc)
		}
	}
	switch c.PageReplacementAlg {
	case "", "LRU", "FIFO":
	default:
		return fmt.Errorf("page-replacement-alg debe ser LRU o FIFO: %q", c.PageReplacementAlg)
	}
	return nil
}
