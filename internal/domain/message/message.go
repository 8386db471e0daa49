package message

// Message es la unión discriminada de comandos y eventos del dominio.
// El bus resuelve handlers por Name(), no por inspección de tipos en runtime.
type Message interface {
	Name() string
}

// Command representa una orden imperativa: tiene exactamente un handler
// y sus fallos llegan al caller del bus.
type Command interface {
	Message
	isCommand()
}

// Event representa un hecho ya ocurrido: cero o más handlers,
// con fallos aislados por handler.
type Event interface {
	Message
	isEvent()
}
