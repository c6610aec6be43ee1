package kernel

import "sync"

// ColaReady es la cola FIFO de procesos listos. Varios workers la consumen;
// el generador y las rodajas Round-Robin la alimentan. Al cerrarse, los
// workers drenan lo que queda y recién entonces salen.
type ColaReady struct {
	mu       sync.Mutex
	cond     *sync.Cond
	procesos []*Proceso
	cerrada  bool
}

// NuevaColaReady crea la cola vacía
func NuevaColaReady() *ColaReady {
	c := &ColaReady{}
	c.cond = sync.NewCond(&c.mu)
	return c
}

// Encolar agrega un proceso al final y despierta a un worker
func (c *ColaReady) Encolar(p *Proceso) {
	c.mu.Lock()
	c.procesos = append(c.procesos, p)
	c.mu.Unlock()
	c.cond.Signal()
}

// Desencolar bloquea hasta que haya un proceso o la cola esté cerrada y
// vacía. Devuelve false cuando el worker debe terminar.
func (c *ColaReady) Desencolar() (*Proceso, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	for len(c.procesos) == 0 && !c.cerrada {
		c.cond.Wait()
	}

	if len(c.procesos) == 0 {
		return nil, false
	}

	p := c.procesos[0]
	c.procesos = c.procesos[1:]
	return p, true
}

// Cerrar señala el fin: los workers bloqueados despiertan, drenan la cola
// y salen al encontrarla vacía
func (c *ColaReady) Cerrar() {
	c.mu.Lock()
	c.cerrada = true
	c.mu.Unlock()
	c.cond.Broadcast()
}

// Tamanio devuelve la cantidad de procesos encolados
func (c *ColaReady) Tamanio() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.procesos)
}
