package messagebus

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jhoicas/Asignacion-api/internal/domain/message"
	"github.com/jhoicas/Asignacion-api/pkg/logger"
)

// HandlerFunc procesa un mensaje y puede devolver mensajes de seguimiento
// (los que drenó el Unit of Work tras el commit, más los que el propio
// handler decida encolar). Los mensajes devueltos se agregan al final de la
// cola de la llamada en curso.
type HandlerFunc func(ctx context.Context, m message.Message) ([]message.Message, error)

// Result registra los eventos despachados durante una llamada a Handle,
// en orden de aparición. Los entrypoints lo inspeccionan para conocer el
// resultado de negocio (p. ej. Allocated vs OutOfStock).
type Result struct {
	Events []message.Event
}

// Bus despacha comandos y eventos drenando una cola FIFO por llamada.
// Comandos: exactamente un handler, sus fallos abortan la cadena completa.
// Eventos: cero o más handlers en orden de registro, con fallos aislados.
// El bus no guarda estado entre llamadas: cada Handle es independiente.
type Bus struct {
	log      *logger.Logger
	commands map[string]HandlerFunc
	events   map[string][]HandlerFunc
}

// New construye un bus vacío. Los handlers se registran al arrancar el proceso.
func New(log *logger.Logger) *Bus {
	return &Bus{
		log:      log,
		commands: make(map[string]HandlerFunc),
		events:   make(map[string][]HandlerFunc),
	}
}

// RegisterCommand asocia el único handler de un comando. Registrar dos
// handlers para el mismo comando es un error de programación.
func (b *Bus) RegisterCommand(name string, h HandlerFunc) {
	if _, ok := b.commands[name]; ok {
		panic("messagebus: handler duplicado para el comando " + name)
	}
	b.commands[name] = h
}

// RegisterEvent agrega un handler a la lista ordenada de un evento.
func (b *Bus) RegisterEvent(name string, h HandlerFunc) {
	b.events[name] = append(b.events[name], h)
}

// Handle procesa el mensaje y toda la cascada que genere, en anchura:
// los mensajes nuevos van al final de la cola. Termina cuando la cola queda
// vacía o cuando falla un comando; el fallo de un comando se propaga al
// caller con la cola restante sin procesar.
func (b *Bus) Handle(ctx context.Context, m message.Message) (*Result, error) {
	log := b.log.With().Str("dispatch_id", uuid.NewString()).Logger()
	res := &Result{}
	queue := []message.Message{m}

	for len(queue) > 0 {
		head := queue[0]
		queue = queue[1:]

		switch msg := head.(type) {
		case message.Command:
			handler, ok := b.commands[msg.Name()]
			if !ok {
				return res, fmt.Errorf("comando sin handler registrado: %s", msg.Name())
			}
			log.Debug().Str("command", msg.Name()).Msg("procesando comando")
			followUps, err := handler(ctx, msg)
			if err != nil {
				return res, fmt.Errorf("comando %s: %w", msg.Name(), err)
			}
			queue = append(queue, followUps...)

		case message.Event:
			res.Events = append(res.Events, msg)
			for _, handler := range b.events[msg.Name()] {
				followUps, err := handler(ctx, msg)
				if err != nil {
					// Fallo aislado: se registra y se sigue con los demás
					// handlers y con el resto de la cola.
					log.Error().Err(err).Str("event", msg.Name()).Msg("handler de evento falló")
					continue
				}
				queue = append(queue, followUps...)
			}

		default:
			return res, fmt.Errorf("mensaje que no es comando ni evento: %T", head)
		}
	}
	return res, nil
}
