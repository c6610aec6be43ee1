package utils

import (
	"io"
	"log/slog"
	"os"
)

var (
	InfoLog  = slog.Default()
	ErrorLog = slog.Default()
)

// InicializarLogger configura los loggers globales
func InicializarLogger(logLevel string, moduleName string) {
	configurarLogger(os.Stdout, logLevel, moduleName)
}

// InicializarLoggerConArchivo escribe simultáneamente a consola y archivo
func InicializarLoggerConArchivo(logLevel string, moduleName string, rutaArchivo string) error {
	archivo, err := os.OpenFile(rutaArchivo, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	configurarLogger(io.MultiWriter(os.Stdout, archivo), logLevel, moduleName)
	return nil
}

func configurarLogger(salida io.Writer, logLevel string, moduleName string) {
	var level slog.Level

	switch logLevel {
	case "debug":
		level = slog.LevelDebug
	case "info":
		level = slog.LevelInfo
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	handler := slog.NewTextHandler(salida, &slog.HandlerOptions{
		Level: level,
	})

	logger := slog.New(handler).With("modulo", moduleName)

	InfoLog = logger
	ErrorLog = logger
}
