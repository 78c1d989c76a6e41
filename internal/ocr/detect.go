package ocr

import (
	"fmt"

	"go.uber.org/zap"
)

// Engine selectors accepted by Detect.
const (
	EngineAuto      = "auto"
	EngineTesseract = "tesseract"
	EngineGosseract = "gosseract"
	EngineSimulated = "simulated"
	EngineDual      = "dual"
)

type Config struct {
	Engine      string
	Binary      string
	Language    string
	PageSegMode int
	Preprocess  bool
}

// Detect picks the engine once at startup. "auto" prefers the tesseract
// binary, then the compiled-in binding, and falls back to the simulated engine.
func Detect(cfg Config, logger *zap.Logger) (Engine, error) {
	tess := NewTesseractEngine(cfg.Binary, cfg.Language, cfg.PageSegMode, cfg.Preprocess)

	switch cfg.Engine {
	case EngineAuto, "":
		if tess.Available() {
			logger.Info("ocr engine selected", zap.String("engine", tess.Name()))
			return tess, nil
		}
		if GosseractCompiled {
			logger.Info("ocr engine selected", zap.String("engine", EngineGosseract))
			return NewGosseractEngine(cfg.Language, cfg.PageSegMode, cfg.Preprocess), nil
		}
		logger.Warn("tesseract not available, OCR will be simulated")
		return NewSimulatedEngine(), nil
	case EngineTesseract:
		if !tess.Available() {
			return nil, fmt.Errorf("%w: %s not found in PATH", ErrEngineUnavailable, tess.binary)
		}
		return tess, nil
	case EngineGosseract:
		if !GosseractCompiled {
			return nil, fmt.Errorf("%w: gosseract requires -tags ocr", ErrEngineUnavailable)
		}
		return NewGosseractEngine(cfg.Language, cfg.PageSegMode, cfg.Preprocess), nil
	case EngineSimulated:
		return NewSimulatedEngine(), nil
	case EngineDual:
		if !tess.Available() || !GosseractCompiled {
			return nil, fmt.Errorf("%w: dual mode needs both the tesseract binary and -tags ocr", ErrEngineUnavailable)
		}
		return NewDualEngine(tess, NewGosseractEngine(cfg.Language, cfg.PageSegMode, cfg.Preprocess)), nil
	default:
		return nil, fmt.Errorf("unknown ocr engine %q", cfg.Engine)
	}
}
