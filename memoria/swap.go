package memoria

import (
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/sisoputnfrba/emulador-so-2025-2c/utils"
)

// AlmacenRespaldo persiste páginas desalojadas en un único archivo binario,
// leído y escrito por offset. Los offsets se asignan en forma monótona;
// un bloque liberado queda disponible para reutilizarse sin compactar el archivo.
type AlmacenRespaldo struct {
	mu            sync.Mutex
	archivo       *os.File
	ruta          string
	tamanioBloque int
	proximoOffset int64
	libres        []int64
}

// NuevoAlmacenRespaldo abre (o crea) el archivo de respaldo
func NuevoAlmacenRespaldo(ruta string, tamanioBloque int) (*AlmacenRespaldo, error) {
	archivo, err := os.OpenFile(ruta, os.O_CREATE|os.O_RDWR, 0644)
	if err != nil {
		return nil, fmt.Errorf("%w: abriendo %s: %v", ErrSwap, ruta, err)
	}

	utils.InfoLog.Info("Archivo de respaldo abierto", "ruta", ruta, "tamanio_bloque", tamanioBloque)

	return &AlmacenRespaldo{
		archivo:       archivo,
		ruta:          ruta,
		tamanioBloque: tamanioBloque,
	}, nil
}

// AsignarBloque reserva un offset para una página. Reutiliza bloques
// liberados antes de extender el archivo.
func (s *AlmacenRespaldo) AsignarBloque() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()

	if n := len(s.libres); n > 0 {
		offset := s.libres[0]
		s.libres = s.libres[1:]
		return offset
	}

	offset := s.proximoOffset
	s.proximoOffset += int64(s.tamanioBloque)
	return offset
}

// LiberarBloque marca un offset como reutilizable
func (s *AlmacenRespaldo) LiberarBloque(offset int64) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.libres = append(s.libres, offset)
}

// Guardar escribe una página completa en el offset dado. La escritura queda
// sincronizada a disco antes de retornar.
func (s *AlmacenRespaldo) Guardar(offset int64, datos []byte) error {
	if len(datos) != s.tamanioBloque {
		return fmt.Errorf("%w: se esperaban %d bytes, llegaron %d", ErrSwap, s.tamanioBloque, len(datos))
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.archivo.WriteAt(datos, offset); err != nil {
		return fmt.Errorf("%w: escribiendo en offset %d: %v", ErrSwap, offset, err)
	}
	if err := s.archivo.Sync(); err != nil {
		return fmt.Errorf("%w: sincronizando %s: %v", ErrSwap, s.ruta, err)
	}

	utils.InfoLog.Debug("Página guardada en respaldo", "offset", offset)
	return nil
}

// Cargar lee una página completa desde el offset dado. Un bloque nunca
// escrito se devuelve en ceros.
func (s *AlmacenRespaldo) Cargar(offset int64) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	// Un offset más allá del final del archivo corresponde a una página que
	// todavía no fue volcada: su contenido inicial son ceros.
	datos := make([]byte, s.tamanioBloque)
	_, err := s.archivo.ReadAt(datos, offset)
	if err != nil && err != io.EOF {
		return nil, fmt.Errorf("%w: leyendo offset %d: %v", ErrSwap, offset, err)
	}

	return datos, nil
}

// Cerrar cierra el archivo de respaldo
func (s *AlmacenRespaldo) Cerrar() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.archivo.Close()
}
