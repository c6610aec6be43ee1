package cpu

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/sisoputnfrba/emulador-so-2025-2c/kernel"
	"github.com/sisoputnfrba/emulador-so-2025-2c/memoria"
	"github.com/sisoputnfrba/emulador-so-2025-2c/utils"
)

// ProfundidadMaximaFor limita el anidamiento de FOR
const ProfundidadMaximaFor = 3

var (
	errParse       = errors.New("instrucción mal formada")
	errProfundidad = errors.New("FOR supera la profundidad máxima")
)

// Interprete decodifica y ejecuta las instrucciones de un proceso. En fase 2
// resuelve READ/WRITE contra la memoria virtual; en fase 1 (vm nil) esos
// accesos se ignoran.
type Interprete struct {
	vm *memoria.MemoriaVirtual
}

// NuevoInterprete arma el intérprete; vm puede ser nil (fase 1)
func NuevoInterprete(vm *memoria.MemoriaVirtual) *Interprete {
	return &Interprete{vm: vm}
}

// Ejecutar toma la instrucción bajo el cursor, la ejecuta, la registra en
// el log del proceso y avanza el cursor. Los errores de parseo o de rango
// descartan la instrucción y la ejecución continúa; sólo las fallas de E/S
// del respaldo se propagan.
func (in *Interprete) Ejecutar(p *kernel.Proceso) error {
	instruccion, ok := p.InstruccionActual()
	if !ok {
		return nil
	}

	err := in.ejecutarInstruccion(p, instruccion, 0)
	switch {
	case err == nil:
		p.RegistrarEjecucion(instruccion)
	case errors.Is(err, memoria.ErrSwap):
		return err
	default:
		utils.ErrorLog.Error("Instrucción descartada", "pid", p.PID, "pc", p.PC(), "instruccion", instruccion, "error", err)
	}

	p.AvanzarInstruccion()
	return nil
}

func (in *Interprete) ejecutarInstruccion(p *kernel.Proceso, instruccion string, profundidad int) error {
	nombre, argumentos, err := descomponer(instruccion)
	if err != nil {
		return err
	}

	switch nombre {
	case "PRINT":
		return in.ejecutarPrint(p, argumentos)
	case "DECLARE":
		return in.ejecutarDeclare(p, argumentos)
	case "ADD", "SUBTRACT":
		return in.ejecutarAritmetica(p, nombre, argumentos)
	case "SLEEP":
		return in.ejecutarSleep(argumentos)
	case "FOR":
		return in.ejecutarFor(p, argumentos, profundidad)
	case "READ":
		return in.ejecutarRead(p, argumentos)
	case "WRITE":
		return in.ejecutarWrite(p, argumentos)
	default:
		return fmt.Errorf("%w: operación desconocida %q", errParse, nombre)
	}
}

// descomponer separa NOMBRE(args) en sus partes
func descomponer(instruccion string) (string, string, error) {
	abre := strings.Index(instruccion, "(")
	if abre <= 0 || !strings.HasSuffix(instruccion, ")") {
		return "", "", fmt.Errorf("%w: %q", errParse, instruccion)
	}
	return instruccion[:abre], instruccion[abre+1 : len(instruccion)-1], nil
}

func (in *Interprete) ejecutarPrint(p *kernel.Proceso, argumentos string) error {
	literal, resto, err := extraerLiteral(argumentos)
	if err != nil {
		return err
	}

	texto := literal
	if resto != "" {
		variable := strings.TrimSpace(strings.TrimPrefix(resto, "+"))
		if !strings.HasPrefix(strings.TrimSpace(resto), "+") || variable == "" {
			return fmt.Errorf("%w: concatenación inválida en PRINT: %q", errParse, argumentos)
		}
		texto += strconv.Itoa(int(p.AsegurarVariable(variable)))
	}

	p.RegistrarSalida(texto)
	utils.InfoLog.Info(fmt.Sprintf("PID: %d - PRINT: %s", p.PID, texto))
	return nil
}

// extraerLiteral lee el literal entre comillas al inicio y devuelve lo que
// siga después de la comilla de cierre
func extraerLiteral(argumentos string) (string, string, error) {
	recortado := strings.TrimSpace(argumentos)
	if !strings.HasPrefix(recortado, "\"") {
		return "", "", fmt.Errorf("%w: PRINT requiere un literal entre comillas", errParse)
	}

	cierre := strings.Index(recortado[1:], "\"")
	if cierre < 0 {
		return "", "", fmt.Errorf("%w: literal sin cerrar en PRINT", errParse)
	}

	literal := recortado[1 : cierre+1]
	resto := strings.TrimSpace(recortado[cierre+2:])
	return literal, resto, nil
}

func (in *Interprete) ejecutarDeclare(p *kernel.Proceso, argumentos string) error {
	partes := separarArgumentos(argumentos)
	if len(partes) != 2 {
		return fmt.Errorf("%w: DECLARE requiere (nombre, valor): %q", errParse, argumentos)
	}

	valor, err := strconv.ParseUint(partes[1], 10, 16)
	if err != nil {
		return fmt.Errorf("%w: valor fuera de [0,65535] en DECLARE: %q", errParse, partes[1])
	}

	// Con la tabla llena, un nombre nuevo se descarta en silencio
	p.DeclararVariable(partes[0], uint16(valor))
	return nil
}

func (in *Interprete) ejecutarAritmetica(p *kernel.Proceso, operacion string, argumentos string) error {
	partes := separarArgumentos(argumentos)
	if len(partes) != 3 {
		return fmt.Errorf("%w: %s requiere (destino, op1, op2): %q", errParse, operacion, argumentos)
	}

	op1 := in.resolver(p, partes[1])
	op2 := in.resolver(p, partes[2])

	var resultado uint16
	if operacion == "ADD" {
		resultado = utils.SumaSaturada(op1, op2)
	} else {
		resultado = utils.RestaSaturada(op1, op2)
	}

	p.DeclararVariable(partes[0], resultado)
	return nil
}

// resolver interpreta un operando: todo dígitos se parsea saturando a
// [0,65535]; de lo contrario es una variable que se autodeclara en 0
func (in *Interprete) resolver(p *kernel.Proceso, operando string) uint16 {
	if esNumerico(operando) {
		valor, err := strconv.ParseUint(operando, 10, 64)
		if err != nil {
			// Demasiados dígitos para uint64: satura igual
			return 65535
		}
		return uint16(utils.Clamp(valor, 0, 65535))
	}
	return p.AsegurarVariable(operando)
}

func esNumerico(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}

func (in *Interprete) ejecutarSleep(argumentos string) error {
	ticks, err := strconv.Atoi(strings.TrimSpace(argumentos))
	if err != nil || ticks < 0 {
		return fmt.Errorf("%w: SLEEP requiere una cantidad de ticks: %q", errParse, argumentos)
	}

	utils.AplicarRetardo("sleep", ticks)
	return nil
}

// ejecutarFor corre la secuencia interna la cantidad de veces indicada.
// Un FOR más profundo que el nivel 3 aborta el bucle interno sin fallar
// la instrucción externa.
func (in *Interprete) ejecutarFor(p *kernel.Proceso, argumentos string, profundidad int) error {
	if profundidad >= ProfundidadMaximaFor {
		return errProfundidad
	}

	separador := strings.LastIndex(argumentos, ",")
	if separador < 0 {
		return fmt.Errorf("%w: FOR requiere (instrucciones, repeticiones): %q", errParse, argumentos)
	}

	cuerpo := strings.TrimSpace(argumentos[:separador])
	repeticiones, err := strconv.Atoi(strings.TrimSpace(argumentos[separador+1:]))
	if err != nil || repeticiones < 0 {
		return fmt.Errorf("%w: repeticiones inválidas en FOR: %q", errParse, argumentos)
	}

	internas := strings.Split(cuerpo, ";")

	for vuelta := 0; vuelta < repeticiones; vuelta++ {
		for _, interna := range internas {
			interna = strings.TrimSpace(interna)
			if interna == "" {
				continue
			}
			if err := in.ejecutarInstruccion(p, interna, profundidad+1); err != nil {
				if errors.Is(err, errProfundidad) {
					// Aborta el bucle interno, no la instrucción externa
					return nil
				}
				return err
			}
		}
	}
	return nil
}

func (in *Interprete) ejecutarRead(p *kernel.Proceso, argumentos string) error {
	partes := separarArgumentos(argumentos)
	if len(partes) != 2 {
		return fmt.Errorf("%w: READ requiere (nombre, dirección): %q", errParse, argumentos)
	}

	direccion, err := parsearDireccion(partes[1])
	if err != nil {
		return err
	}

	// Fase 1: el intérprete no tiene memoria virtual, la lectura rinde 0
	if in.vm == nil {
		p.DeclararVariable(partes[0], 0)
		return nil
	}

	valor, err := in.vm.Leer(p.PID, direccion)
	if err != nil {
		return err
	}

	p.DeclararVariable(partes[0], valor)
	return nil
}

func (in *Interprete) ejecutarWrite(p *kernel.Proceso, argumentos string) error {
	partes := separarArgumentos(argumentos)
	if len(partes) != 2 {
		return fmt.Errorf("%w: WRITE requiere (dirección, valor): %q", errParse, argumentos)
	}

	direccion, err := parsearDireccion(partes[0])
	if err != nil {
		return err
	}
	valor := in.resolver(p, partes[1])

	// Fase 1: sin memoria virtual no hay efecto
	if in.vm == nil {
		return nil
	}

	return in.vm.Escribir(p.PID, direccion, valor)
}

// parsearDireccion acepta hexadecimal con prefijo 0x o decimal
func parsearDireccion(s string) (int, error) {
	s = strings.TrimSpace(s)

	var direccion int64
	var err error
	if strings.HasPrefix(s, "0x") || strings.HasPrefix(s, "0X") {
		direccion, err = strconv.ParseInt(s[2:], 16, 64)
	} else {
		direccion, err = strconv.ParseInt(s, 10, 64)
	}
	if err != nil || direccion < 0 {
		return 0, fmt.Errorf("%w: dirección inválida %q", errParse, s)
	}
	return int(direccion), nil
}

// separarArgumentos divide por comas respetando que ningún argumento simple
// contiene comas (las listas de FOR se tratan aparte)
func separarArgumentos(argumentos string) []string {
	crudos := strings.Split(argumentos, ",")
	partes := make([]string, 0, len(crudos))
	for _, crudo := range crudos {
		partes = append(partes, strings.TrimSpace(crudo))
	}
	return partes
}
