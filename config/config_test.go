package config

import (
	"os"
	"path/filepath"
	"testing"
)

func TestConfig_PorDefectoValida(t *testing.T) {
	if err := PorDefecto().Validar(); err != nil {
		t.Errorf("Expected configuración por defecto válida, got %v", err)
	}
}

func TestConfig_Validaciones(t *testing.T) {
	casos := []struct {
		nombre    string
		modificar func(*Config)
	}{
		{"num-cpu fuera de rango", func(c *Config) { c.NumCPU = 0 }},
		{"num-cpu excesivo", func(c *Config) { c.NumCPU = 200 }},
		{"scheduler desconocido", func(c *Config) { c.Scheduler = "sjf" }},
		{"quantum negativo", func(c *Config) { c.QuantumCycles = -1 }},
		{"batch-freq cero", func(c *Config) { c.BatchProcessFreq = 0 }},
		{"min-ins cero", func(c *Config) { c.MinInstrucciones = 0 }},
		{"max-ins menor a min-ins", func(c *Config) { c.MinInstrucciones = 10; c.MaxInstrucciones = 5 }},
		{"delay negativo", func(c *Config) { c.DelayPerExec = -1 }},
		{"memoria total cero", func(c *Config) { c.MaxOverallMem = 0 }},
		{"frame cero", func(c *Config) { c.MemPerFrame = 0 }},
		{"mem-per-proc mayor al total", func(c *Config) { c.MemPerProc = c.MaxOverallMem + 1 }},
		{"política desconocida", func(c *Config) { c.HoleFitPolicy = "X" }},
		{"min-mem-per-proc chico", func(c *Config) { c.MemoriaVirtual = true; c.MinMemPerProc = 32 }},
		{"max-mem-per-proc menor al min", func(c *Config) {
			c.MemoriaVirtual = true
			c.MinMemPerProc = 128
			c.MaxMemPerProc = 64
		}},
		{"reemplazo desconocido", func(c *Config) { c.PageReplacementAlg = "CLOCK" }},
	}

	for _, caso := range casos {
		cfg := PorDefecto()
		caso.modificar(cfg)
		if err := cfg.Validar(); err == nil {
			t.Errorf("Expected error en %q, got nil", caso.nombre)
		}
	}
}

func TestConfig_CargarJSON(t *testing.T) {
	contenido := `{
		"num-cpu": 2,
		"scheduler": "rr",
		"quantum-cycles": 4,
		"batch-process-freq": 2,
		"min-ins": 3,
		"max-ins": 9,
		"delay-per-exec": 1,
		"max-overall-mem": 1024,
		"mem-per-frame": 32,
		"mem-per-proc": 256,
		"hole-fit-policy": "B",
		"enable-virtual-memory": true,
		"min-mem-per-proc": 64,
		"max-mem-per-proc": 512,
		"page-replacement-alg": "LRU"
	}`

	ruta := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(ruta, []byte(contenido), 0644); err != nil {
		t.Fatalf("Expected escribir el archivo, got %v", err)
	}

	cfg, err := Cargar(ruta)
	if err != nil {
		t.Fatalf("Expected cargar, got error %v", err)
	}

	if cfg.NumCPU != 2 {
		t.Errorf("Expected num-cpu 2, got %d", cfg.NumCPU)
	}
	if cfg.Scheduler != AlgoritmoRR {
		t.Errorf("Expected scheduler rr, got %q", cfg.Scheduler)
	}
	if cfg.QuantumCycles != 4 {
		t.Errorf("Expected quantum 4, got %d", cfg.QuantumCycles)
	}
	if !cfg.MemoriaVirtual {
		t.Error("Expected memoria virtual habilitada")
	}
	if cfg.HoleFitPolicy != PoliticaBestFit {
		t.Errorf("Expected política B, got %q", cfg.HoleFitPolicy)
	}
	if cfg.MaxMemPerProc != 512 {
		t.Errorf("Expected max-mem-per-proc 512, got %d", cfg.MaxMemPerProc)
	}
}

func TestConfig_CargarInvalida(t *testing.T) {
	ruta := filepath.Join(t.TempDir(), "config.json")
	if err := os.WriteFile(ruta, []byte(`{"num-cpu": 0}`), 0644); err != nil {
		t.Fatalf("Expected escribir el archivo, got %v", err)
	}

	if _, err := Cargar(ruta); err == nil {
		t.Error("Expected error de validación, got nil")
	}
}
