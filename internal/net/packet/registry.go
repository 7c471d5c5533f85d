package packet

import (
	"fmt"

	"go.uber.org/zap"
)

// HandlerFunc decodes one frame whose opcode it was registered for.
type HandlerFunc func(r *Reader) error

// Registry maps opcodes to frame handlers.
type Registry struct {
	handlers map[byte]HandlerFunc
	cs       Charset
	log      *zap.Logger
}

func NewRegistry(cs Charset, log *zap.Logger) *Registry {
	return &Registry{
		handlers: make(map[byte]HandlerFunc),
		cs:       cs,
		log:      log,
	}
}

// Register maps an opcode to a handler.
func (reg *Registry) Register(opcode byte, fn HandlerFunc) {
	reg.handlers[opcode] = fn
}

// Dispatch calls the handler for the opcode in data[0]. Unknown opcodes are
// logged and skipped.
func (reg *Registry) Dispatch(data []byte) error {
	if len(data) == 0 {
		return fmt.Errorf("empty frame")
	}
	opcode := data[0]
	fn, ok := reg.handlers[opcode]
	if !ok {
		reg.log.Debug("unknown opcode", zap.Uint8("opcode", opcode), zap.Int("size", len(data)))
		return nil
	}
	return reg.safeCall(fn, NewReader(data, reg.cs), opcode)
}

// safeCall keeps a corrupt frame from taking the reader down.
func (reg *Registry) safeCall(fn HandlerFunc, r *Reader, opcode byte) (err error) {
	defer func() {
		if rec := recover(); rec != nil {
			reg.log.Error("frame handler panic recovered",
				zap.Uint8("opcode", opcode),
				zap.Any("panic", rec),
			)
			err = fmt.Errorf("handler panic for opcode %d: %v", opcode, rec)
		}
	}()
	return fn(r)
}
